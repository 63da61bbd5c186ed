// Package docstore provides the document database that notes are persisted in.
//
// The store is treated as a black box by the rest of the application: it
// accepts arbitrary structured documents, assigns their ids, and answers
// equality-filtered queries without any ordering guarantee.
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// OpEqual is the only filter operator the store understands.
const OpEqual = "=="

var (
	ErrUnsupportedOperator = errors.New("docstore: unsupported operator")
	ErrInvalidField        = errors.New("docstore: invalid field path")
	ErrInvalidCollection   = errors.New("docstore: invalid collection name")
)

// Store is the remote document store contract.
type Store interface {
	// Create stores data in collection and returns the new document id.
	// Fields holding ServerTimestamp are replaced with the store's clock.
	Create(ctx context.Context, collection string, data map[string]any) (string, error)
	// Query returns the documents of collection matching where, in no
	// particular order.
	Query(ctx context.Context, collection string, where Where) ([]Document, error)
	Close() error
}

// Document is a stored document together with its id.
type Document struct {
	ID   string
	Data map[string]any
}

// Decode unmarshals the document data into v.
func (d Document) Decode(v any) error {
	raw, err := json.Marshal(d.Data)
	if err != nil {
		return fmt.Errorf("docstore: encode %s: %w", d.ID, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("docstore: decode %s: %w", d.ID, err)
	}
	return nil
}

// Where is a single-field filter. Field is a dotted path into the document.
type Where struct {
	Field string
	Op    string
	Value any
}

// Eq returns an equality filter on field.
func Eq(field string, value any) Where {
	return Where{Field: field, Op: OpEqual, Value: value}
}

var fieldRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// CollectionPattern matches valid collection names.
var CollectionPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func (w Where) validate() error {
	if w.Op != OpEqual {
		return fmt.Errorf("%w: %q", ErrUnsupportedOperator, w.Op)
	}
	if !fieldRe.MatchString(w.Field) {
		return fmt.Errorf("%w: %q", ErrInvalidField, w.Field)
	}
	return nil
}

// matches evaluates w against a decoded document.
func (w Where) matches(data map[string]any) bool {
	v, ok := lookup(data, w.Field)
	if !ok {
		return false
	}
	return sameJSON(v, w.Value)
}

func validateCollection(name string) error {
	if !CollectionPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidCollection, name)
	}
	return nil
}

func lookup(data map[string]any, path string) (any, bool) {
	var cur any = data
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// sameJSON compares two values by their JSON encoding, so that an int
// filter value matches the float64 produced by decoding.
func sameJSON(a, b any) bool {
	ra, err := json.Marshal(a)
	if err != nil {
		return false
	}
	rb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ra, rb)
}

type serverValue struct{ name string }

// ServerTimestamp marks a field to be filled with the store's write time.
var ServerTimestamp = &serverValue{name: "serverTimestamp"}

// resolveServerValues returns a copy of data with every ServerTimestamp
// marker replaced by now.
func resolveServerValues(data map[string]any, now time.Time) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		switch val := v.(type) {
		case *serverValue:
			if val == ServerTimestamp {
				out[k] = now
				continue
			}
			out[k] = v
		case map[string]any:
			out[k] = resolveServerValues(val, now)
		default:
			out[k] = v
		}
	}
	return out
}
