// Package sqlite implements store.Store on SQLite.
package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/kotonoha/talktrend/pkg/talktrend/internalerr"
	"github.com/kotonoha/talktrend/pkg/talktrend/store"
)

type sqliteStore struct {
	db      *sql.DB
	entropy *ulid.MonotonicEntropy
}

// Open opens a SQLite archive with WAL mode enabled, creating the schema
// if needed.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL for better concurrency between the server and CLI tooling.
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}, nil
}

// Close closes the database connection.
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS imports (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	created_at TEXT NOT NULL,
	message_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	import_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	ts TEXT NOT NULL,
	author TEXT NOT NULL,
	text TEXT NOT NULL,
	tokens TEXT NOT NULL,
	PRIMARY KEY(import_id, seq),
	FOREIGN KEY(import_id) REFERENCES imports(id) ON DELETE CASCADE
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveImport stores one parsed talk history under a fresh ULID.
func (s *sqliteStore) SaveImport(ctx context.Context, name string, messages []store.ArchivedMessage) (store.Import, error) {
	imp := store.Import{
		ID:           ulid.MustNew(ulid.Now(), s.entropy).String(),
		Name:         name,
		CreatedAt:    time.Now().UTC(),
		MessageCount: len(messages),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.Import{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO imports (id, name, created_at, message_count) VALUES (?, ?, ?, ?)`,
		imp.ID, imp.Name, imp.CreatedAt.Format(time.RFC3339), imp.MessageCount)
	if err != nil {
		return store.Import{}, err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO messages (import_id, seq, ts, author, text, tokens) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return store.Import{}, err
	}
	defer stmt.Close()

	for i, m := range messages {
		tokens, err := json.Marshal(m.Tokens)
		if err != nil {
			return store.Import{}, err
		}
		if _, err := stmt.ExecContext(ctx, imp.ID, i,
			m.Timestamp.Format(time.RFC3339), m.Author, m.Text, string(tokens)); err != nil {
			return store.Import{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return store.Import{}, err
	}
	return imp, nil
}

// ListImports returns all imports, newest first.
func (s *sqliteStore) ListImports(ctx context.Context) ([]store.Import, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at, message_count FROM imports ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var imports []store.Import
	for rows.Next() {
		imp, err := scanImport(rows)
		if err != nil {
			return nil, err
		}
		imports = append(imports, imp)
	}
	return imports, rows.Err()
}

// GetImport loads one import and its messages in original order.
func (s *sqliteStore) GetImport(ctx context.Context, id string) (store.Import, []store.ArchivedMessage, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, message_count FROM imports WHERE id = ?`, id)
	imp, err := scanImport(row)
	if err == sql.ErrNoRows {
		return store.Import{}, nil, fmt.Errorf("%w: import %s", internalerr.ErrInvalidInput, id)
	}
	if err != nil {
		return store.Import{}, nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT ts, author, text, tokens FROM messages WHERE import_id = ? ORDER BY seq`, id)
	if err != nil {
		return store.Import{}, nil, err
	}
	defer rows.Close()

	var messages []store.ArchivedMessage
	for rows.Next() {
		var tsStr, tokensJSON string
		var m store.ArchivedMessage
		if err := rows.Scan(&tsStr, &m.Author, &m.Text, &tokensJSON); err != nil {
			return store.Import{}, nil, err
		}
		if m.Timestamp, err = time.Parse(time.RFC3339, tsStr); err != nil {
			return store.Import{}, nil, err
		}
		if err := json.Unmarshal([]byte(tokensJSON), &m.Tokens); err != nil {
			return store.Import{}, nil, err
		}
		messages = append(messages, m)
	}
	return imp, messages, rows.Err()
}

// DeleteImport removes an import and its messages.
func (s *sqliteStore) DeleteImport(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM imports WHERE id = ?`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanImport(r rowScanner) (store.Import, error) {
	var imp store.Import
	var createdAt string
	if err := r.Scan(&imp.ID, &imp.Name, &createdAt, &imp.MessageCount); err != nil {
		return store.Import{}, err
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return store.Import{}, err
	}
	imp.CreatedAt = t
	return imp, nil
}
