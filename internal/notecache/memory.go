package notecache

import (
	"context"
	"sync"
)

// MemoryStore keeps every entry in process memory for the lifetime of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]string),
	}
}

func (store *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	text, ok := store.entries[key]
	return text, ok, nil
}

func (store *MemoryStore) Put(_ context.Context, key, text string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.entries[key] = text
	return nil
}

func (store *MemoryStore) Len() int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return len(store.entries)
}

func (store *MemoryStore) Close() error {
	return nil
}
