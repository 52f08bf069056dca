// Package memory provides an in-memory persistence backend, used as the
// default store and in tests.
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"drawboard/internal/document"
)

type memStore struct {
	mu   sync.Mutex
	data []byte
}

// NewStore creates an empty in-memory store.
func NewStore() *memStore {
	return &memStore{}
}

func (s *memStore) Load(ctx context.Context) (*document.BoardFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return document.Normalize(s.data), nil
}

func (s *memStore) Save(ctx context.Context, bf *document.BoardFile) error {
	data, err := json.Marshal(bf)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}
