package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore keeps documents in process. Used for local runs and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]string
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: map[string]map[string]string{}}
}

func (m *MemoryStore) Load(_ context.Context) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var docs []document
	for collection, byID := range m.docs {
		for id, body := range byID {
			docs = append(docs, document{Collection: collection, ID: id, Body: body})
		}
	}
	return buildSnapshot(docs), nil
}

func (m *MemoryStore) List(_ context.Context, collection string) ([]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byID := m.docs[collection]
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]json.RawMessage, len(ids))
	for i, id := range ids {
		out[i] = json.RawMessage(byID[id])
	}
	return out, nil
}

func (m *MemoryStore) Get(_ context.Context, collection, id string, dest any) error {
	m.mu.RLock()
	body, ok := m.docs[collection][id]
	m.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal([]byte(body), dest); err != nil {
		return fmt.Errorf("failed to decode %s/%s: %w", collection, id, err)
	}
	return nil
}

func (m *MemoryStore) Upsert(_ context.Context, collection, id string, doc any) error {
	body, err := encode(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs[collection] == nil {
		m.docs[collection] = map[string]string{}
	}
	m.docs[collection][id] = body
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs[collection], id)
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
