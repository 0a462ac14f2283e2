package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
)

// MemoryStore keeps documents in process memory. Used for local development
// and as the backing store in tests.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]json.RawMessage // collection -> id -> document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]map[string]json.RawMessage),
	}
}

func (s *MemoryStore) Put(ctx context.Context, collection, id string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.docs[collection] == nil {
		s.docs[collection] = make(map[string]json.RawMessage)
	}
	s.docs[collection][id] = data
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (json.RawMessage, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[collection][id]
	if !ok {
		return nil, false, nil
	}
	return doc, true, nil
}

func (s *MemoryStore) List(ctx context.Context, collection string) ([]json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.docs[collection]))
	for id := range s.docs[collection] {
		ids = append(ids, id)
	}
	// Stable listing order for callers and tests
	sort.Strings(ids)

	docs := make([]json.RawMessage, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, s.docs[collection][id])
	}
	return docs, nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs[collection], id)
	return nil
}
