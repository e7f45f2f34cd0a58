package models

import (
	"context"
	"errors"
	"sync"
)

// ContentStore resolves an identifier to the current raw text of its page.
// Implementations return an error wrapping ErrPageNotFound for missing pages.
type ContentStore interface {
	Fetch(ctx context.Context, id Identifier) (string, error)
}

// PageExists reports whether store holds a page for id. Errors other than
// ErrPageNotFound are returned as is.
func PageExists(ctx context.Context, store ContentStore, id Identifier) (bool, error) {
	_, err := store.Fetch(ctx, id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrPageNotFound) {
		return false, nil
	}
	return false, err
}

// MapStore is an in-memory ContentStore keyed by normalized identifier.
type MapStore struct {
	mu    sync.RWMutex
	pages map[Identifier]string
}

// NewMapStore builds a MapStore from raw titles to page text.
func NewMapStore(pages map[string]string) *MapStore {
	s := &MapStore{pages: make(map[Identifier]string, len(pages))}
	for title, text := range pages {
		s.pages[NewIdentifier(title)] = text
	}
	return s
}

// Fetch implements ContentStore.
func (s *MapStore) Fetch(ctx context.Context, id Identifier) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.pages[id]
	if !ok {
		return "", ErrPageNotFound
	}
	return text, nil
}

// Put stores text under id.
func (s *MapStore) Put(id Identifier, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[id] = text
}
