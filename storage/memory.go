// Package storage provides the agent's key/value memory persistence.
//
// Information Hiding:
// - Synchronization strategy (mutex vs connection pool)
// - Persistence backend (in-process map or SQLite)

package storage

import (
	"context"
	"sync"
)

// MemoryStore is the key/value memory contract, scoped per project. Saving an
// existing key overwrites its value; all operations are idempotent.
type MemoryStore interface {
	// Save stores or overwrites a value under a key.
	Save(ctx context.Context, projectID, key, value string) error

	// Recall fetches a value. The bool reports whether the key exists.
	Recall(ctx context.Context, projectID, key string) (string, bool, error)

	// List returns all key/value pairs for a project.
	List(ctx context.Context, projectID string) (map[string]string, error)

	// Delete removes a key, reporting whether it existed.
	Delete(ctx context.Context, projectID, key string) (bool, error)
}

// InMemory is a mutex-guarded MemoryStore for tests and ephemeral sessions.
type InMemory struct {
	mu       sync.RWMutex
	projects map[string]map[string]string
}

// NewInMemory creates an empty in-process store.
func NewInMemory() *InMemory {
	return &InMemory{
		projects: make(map[string]map[string]string),
	}
}

func (m *InMemory) Save(_ context.Context, projectID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bucket, ok := m.projects[projectID]
	if !ok {
		bucket = make(map[string]string)
		m.projects[projectID] = bucket
	}
	bucket[key] = value
	return nil
}

func (m *InMemory) Recall(_ context.Context, projectID, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.projects[projectID][key]
	return value, ok, nil
}

func (m *InMemory) List(_ context.Context, projectID string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]string, len(m.projects[projectID]))
	for k, v := range m.projects[projectID] {
		result[k] = v
	}
	return result, nil
}

func (m *InMemory) Delete(_ context.Context, projectID, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bucket, ok := m.projects[projectID]
	if !ok {
		return false, nil
	}
	if _, exists := bucket[key]; !exists {
		return false, nil
	}
	delete(bucket, key)
	return true, nil
}

// Verify InMemory implements MemoryStore
var _ MemoryStore = (*InMemory)(nil)
