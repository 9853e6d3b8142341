// Package memory is an in-process backend for list screens, used by tests and local runs.
package memory

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/janisto/enseada-console/internal/listpage"
	"github.com/janisto/enseada-console/internal/platform/pagination"
)

// ErrNotFound is returned when removing an identifier that is not stored.
var ErrNotFound = errors.New("resource not found")

// Store keeps items ordered by identifier, matching the document order of the
// Firestore backend.
type Store[T any] struct {
	mu    sync.RWMutex
	mapID listpage.IDFunc[T]
	items map[string]T
}

// NewStore creates a store seeded with items. Later items replace earlier ones with
// the same identifier.
func NewStore[T any](mapID listpage.IDFunc[T], items ...T) *Store[T] {
	s := &Store[T]{
		mapID: mapID,
		items: make(map[string]T, len(items)),
	}
	for _, item := range items {
		s.items[mapID(item)] = item
	}
	return s
}

// List returns the window of the ordered collection described by q.
func (s *Store[T]) List(ctx context.Context, q pagination.Query) (pagination.Page[T], error) {
	if err := ctx.Err(); err != nil {
		return pagination.Page[T]{}, err
	}
	q = q.Normalize()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return pagination.Window(s.sorted(), q), nil
}

// Remove deletes the item with id.
func (s *Store[T]) Remove(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}

// Put stores item, replacing any item with the same identifier.
func (s *Store[T]) Put(item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[s.mapID(item)] = item
}

// Len returns the number of stored items.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Clear removes all items (useful for test cleanup).
func (s *Store[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]T)
}

func (s *Store[T]) sorted() []T {
	ids := make([]string, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, cmp.Compare[string])

	out := make([]T, len(ids))
	for i, id := range ids {
		out[i] = s.items[id]
	}
	return out
}
