// Package testutil provides shared test helpers for setting up document stores.
package testutil

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/starford/lifenote/internal/docstore"
)

// ErrUnreachable is returned by a store created with FailingStore.
var ErrUnreachable = errors.New("store unreachable")

// TestDB creates a temporary SQLite document store that is automatically cleaned up.
func TestDB(t *testing.T) *docstore.SQLite {
	t.Helper()
	dbFile, err := os.CreateTemp("", "lifenote-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := docstore.OpenSQLite(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestFS creates a temporary directory-backed document store.
func TestFS(t *testing.T) *docstore.FS {
	t.Helper()
	store, err := docstore.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return store
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// CountingStore wraps a Store and records how often it was called.
type CountingStore struct {
	docstore.Store

	mu      sync.Mutex
	creates int
	queries int
}

// NewCountingStore wraps inner.
func NewCountingStore(inner docstore.Store) *CountingStore {
	return &CountingStore{Store: inner}
}

func (c *CountingStore) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	c.mu.Lock()
	c.creates++
	c.mu.Unlock()
	return c.Store.Create(ctx, collection, data)
}

func (c *CountingStore) Query(ctx context.Context, collection string, where docstore.Where) ([]docstore.Document, error) {
	c.mu.Lock()
	c.queries++
	c.mu.Unlock()
	return c.Store.Query(ctx, collection, where)
}

// Creates returns the number of Create calls.
func (c *CountingStore) Creates() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.creates
}

// Queries returns the number of Query calls.
func (c *CountingStore) Queries() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queries
}

// FailingStore returns a store whose every call fails with ErrUnreachable.
func FailingStore() docstore.Store {
	return failingStore{}
}

type failingStore struct{}

func (failingStore) Create(context.Context, string, map[string]any) (string, error) {
	return "", ErrUnreachable
}

func (failingStore) Query(context.Context, string, docstore.Where) ([]docstore.Document, error) {
	return nil, ErrUnreachable
}

func (failingStore) Close() error { return nil }
