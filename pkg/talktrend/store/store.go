// Package store archives parsed talk histories so imports can be listed
// and re-analyzed later without re-uploading the export file.
package store

import (
	"context"
	"time"
)

// ArchivedMessage is one parsed message with the tokens extracted from it.
type ArchivedMessage struct {
	Timestamp time.Time
	Author    string
	Text      string
	Tokens    []string
}

// Import describes one archived talk history.
type Import struct {
	ID           string // ULID, assigned by the store
	Name         string
	CreatedAt    time.Time
	MessageCount int
}

// Store persists parsed imports.
type Store interface {
	Close() error

	SaveImport(ctx context.Context, name string, messages []ArchivedMessage) (Import, error)
	ListImports(ctx context.Context) ([]Import, error)
	GetImport(ctx context.Context, id string) (Import, []ArchivedMessage, error)
	DeleteImport(ctx context.Context, id string) error
}
