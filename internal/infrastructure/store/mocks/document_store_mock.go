package mocks

import (
	"context"
	"encoding/json"
	"sync"
)

// MockDocumentStore is a mock implementation of store.DocumentStore for testing
type MockDocumentStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]json.RawMessage

	// For tracking calls in tests
	PutCalls []PutCall
	PutErr   error
	// PutErrOnce fails only the next Put call, then clears itself.
	// Used to simulate transient store failures.
	PutErrOnce error
	GetErr     error
	DeleteErr  error
}

// PutCall records parameters passed to Put
type PutCall struct {
	Collection string
	ID         string
	Doc        any
}

// NewMockDocumentStore creates a new MockDocumentStore
func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{
		docs:     make(map[string]map[string]json.RawMessage),
		PutCalls: make([]PutCall, 0),
	}
}

// Put stores a document in memory
func (m *MockDocumentStore) Put(ctx context.Context, collection, id string, doc any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Record the call
	m.PutCalls = append(m.PutCalls, PutCall{
		Collection: collection,
		ID:         id,
		Doc:        doc,
	})

	if m.PutErrOnce != nil {
		err := m.PutErrOnce
		m.PutErrOnce = nil
		return err
	}
	if m.PutErr != nil {
		return m.PutErr
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if m.docs[collection] == nil {
		m.docs[collection] = make(map[string]json.RawMessage)
	}
	m.docs[collection][id] = data
	return nil
}

// Get retrieves a document by id
func (m *MockDocumentStore) Get(ctx context.Context, collection, id string) (json.RawMessage, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.GetErr != nil {
		return nil, false, m.GetErr
	}

	doc, ok := m.docs[collection][id]
	if !ok {
		return nil, false, nil
	}
	return doc, true, nil
}

// List returns all documents in a collection
func (m *MockDocumentStore) List(ctx context.Context, collection string) ([]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := make([]json.RawMessage, 0, len(m.docs[collection]))
	for _, doc := range m.docs[collection] {
		docs = append(docs, doc)
	}
	return docs, nil
}

// Delete removes a document
func (m *MockDocumentStore) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.docs[collection], id)
	return nil
}

// Count returns the number of documents stored in a collection
func (m *MockDocumentStore) Count(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs[collection])
}

// Reset clears all documents and recorded calls
func (m *MockDocumentStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = make(map[string]map[string]json.RawMessage)
	m.PutCalls = make([]PutCall, 0)
	m.PutErr = nil
	m.PutErrOnce = nil
	m.GetErr = nil
	m.DeleteErr = nil
}
