package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	collection TEXT NOT NULL,
	body       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);
`

const (
	insertDocumentStatement = `
	INSERT INTO documents (id, collection, body, created_at)
	VALUES (?, ?, ?, ?)
	`

	queryDocumentsStatement = `
	SELECT id, body
	FROM documents
	WHERE collection = ? AND json_extract(body, ?) = ?
	`
)

// SQLite implements Store on top of a single SQLite file, keeping each
// document as a JSON body.
type SQLite struct {
	conn *sql.DB
	now  func() time.Time
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens (or creates) the database at dsn and applies the schema.
func OpenSQLite(dsn string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("docstore: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("docstore: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("docstore: apply schema: %w", err)
	}
	return &SQLite{conn: conn, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

// Create inserts a new document and returns its id.
func (s *SQLite) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	if err := validateCollection(collection); err != nil {
		return "", err
	}
	now := s.now().UTC()
	body, err := json.Marshal(resolveServerValues(data, now))
	if err != nil {
		return "", fmt.Errorf("docstore: encode document: %w", err)
	}
	id := uuid.New().String()
	if _, err := s.conn.ExecContext(ctx, insertDocumentStatement, id, collection, string(body), now); err != nil {
		return "", fmt.Errorf("docstore: insert document: %w", err)
	}
	return id, nil
}

// Query returns documents of collection whose field equals the filter value.
func (s *SQLite) Query(ctx context.Context, collection string, where Where) ([]Document, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	if err := where.validate(); err != nil {
		return nil, err
	}
	rows, err := s.conn.QueryContext(ctx, queryDocumentsStatement, collection, "$."+where.Field, where.Value)
	if err != nil {
		return nil, fmt.Errorf("docstore: query: %w", err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var (
			id   string
			body string
		)
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("docstore: scan: %w", err)
		}
		var data map[string]any
		if err := json.Unmarshal([]byte(body), &data); err != nil {
			return nil, fmt.Errorf("docstore: decode %s: %w", id, err)
		}
		out = append(out, Document{ID: id, Data: data})
	}
	return out, rows.Err()
}
