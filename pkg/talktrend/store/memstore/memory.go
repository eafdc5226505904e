// Package memstore is an in-memory store.Store implementation for tests.
package memstore

import (
	"context"
	"crypto/rand"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kotonoha/talktrend/pkg/talktrend/internalerr"
	"github.com/kotonoha/talktrend/pkg/talktrend/store"
)

// Store holds imports in memory.
type Store struct {
	mu       sync.RWMutex
	entropy  *ulid.MonotonicEntropy
	imports  map[string]store.Import
	messages map[string][]store.ArchivedMessage
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		entropy:  ulid.Monotonic(rand.Reader, 0),
		imports:  make(map[string]store.Import),
		messages: make(map[string][]store.ArchivedMessage),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveImport implements store.Store.
func (s *Store) SaveImport(ctx context.Context, name string, messages []store.ArchivedMessage) (store.Import, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	imp := store.Import{
		ID:           ulid.MustNew(ulid.Now(), s.entropy).String(),
		Name:         name,
		CreatedAt:    time.Now().UTC(),
		MessageCount: len(messages),
	}
	s.imports[imp.ID] = imp
	s.messages[imp.ID] = append([]store.ArchivedMessage(nil), messages...)
	return imp, nil
}

// ListImports implements store.Store; newest first.
func (s *Store) ListImports(ctx context.Context) ([]store.Import, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	imports := make([]store.Import, 0, len(s.imports))
	for _, imp := range s.imports {
		imports = append(imports, imp)
	}
	sort.Slice(imports, func(i, j int) bool {
		if imports[i].CreatedAt.Equal(imports[j].CreatedAt) {
			return imports[i].ID > imports[j].ID
		}
		return imports[i].CreatedAt.After(imports[j].CreatedAt)
	})
	return imports, nil
}

// GetImport implements store.Store.
func (s *Store) GetImport(ctx context.Context, id string) (store.Import, []store.ArchivedMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	imp, ok := s.imports[id]
	if !ok {
		return store.Import{}, nil, fmt.Errorf("%w: import %s", internalerr.ErrInvalidInput, id)
	}
	return imp, append([]store.ArchivedMessage(nil), s.messages[id]...), nil
}

// DeleteImport implements store.Store.
func (s *Store) DeleteImport(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.imports, id)
	delete(s.messages, id)
	return nil
}
