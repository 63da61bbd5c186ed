package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// errUnreadable marks a document file whose body is not a JSON object.
var errUnreadable = errors.New("docstore: unreadable document")

const (
	docExt    = ".json"
	tmpPrefix = ".lifenote-tmp-"
)

// FS implements Store with one JSON file per document:
// <root>/<collection>/<id>.json.
type FS struct {
	root string // absolute path
	now  func() time.Time

	mu      sync.Mutex
	written map[string]struct{} // ids created through this instance
}

var _ Store = (*FS)(nil)

// NewFS creates an FS store rooted at root, creating the directory if needed.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("docstore: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("docstore: mkdir root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("docstore: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("docstore: root is not a directory: %s", abs)
	}
	return &FS{root: abs, now: time.Now, written: make(map[string]struct{})}, nil
}

// Close is a no-op; FS holds no open handles between calls.
func (f *FS) Close() error { return nil }

func (f *FS) collectionDir(collection string) (string, error) {
	if err := validateCollection(collection); err != nil {
		return "", err
	}
	return filepath.Join(f.root, collection), nil
}

// Create atomically writes a new document file and returns its id.
func (f *FS) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir, err := f.collectionDir(collection)
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(resolveServerValues(data, f.now().UTC()))
	if err != nil {
		return "", fmt.Errorf("docstore: encode document: %w", err)
	}
	id := uuid.New().String()

	f.mu.Lock()
	f.written[id] = struct{}{}
	f.mu.Unlock()

	if err := writeAtomic(dir, id+docExt, body); err != nil {
		f.mu.Lock()
		delete(f.written, id)
		f.mu.Unlock()
		return "", err
	}
	return id, nil
}

// Query reads every document of collection and filters them in memory.
func (f *FS) Query(ctx context.Context, collection string, where Where) ([]Document, error) {
	dir, err := f.collectionDir(collection)
	if err != nil {
		return nil, err
	}
	if err := where.validate(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("docstore: list %s: %w", collection, err)
	}

	var out []Document
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !isDocFile(e.Name()) || e.IsDir() {
			continue
		}
		doc, err := readDoc(filepath.Join(dir, e.Name()))
		if err != nil {
			// Files dropped in by other writers may be partial, corrupt or
			// already gone; none of them can match a filter.
			if errors.Is(err, errUnreadable) || errors.Is(err, fs.ErrNotExist) {
				slog.Warn("docstore: skipping unreadable document",
					slog.String("collection", collection),
					slog.String("file", e.Name()),
					slog.String("error", err.Error()))
				continue
			}
			return nil, err
		}
		if where.matches(doc.Data) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (f *FS) ownWrite(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.written[id]
	return ok
}

func isDocFile(name string) bool {
	return strings.HasSuffix(name, docExt) && !strings.HasPrefix(name, ".")
}

func readDoc(path string) (Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("docstore: read %s: %w", filepath.Base(path), err)
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return Document{}, fmt.Errorf("%w: decode %s: %w", errUnreadable, filepath.Base(path), err)
	}
	return Document{ID: strings.TrimSuffix(filepath.Base(path), docExt), Data: data}, nil
}

// writeAtomic writes content to dir/name: tmp file → fsync → rename.
func writeAtomic(dir, name string, content []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("docstore: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tmpPrefix+"*")
	if err != nil {
		return fmt.Errorf("docstore: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("docstore: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("docstore: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("docstore: close temp: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("docstore: rename: %w", err)
	}
	success = true
	return nil
}
