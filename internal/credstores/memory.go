package credstores

import (
	"context"
	"sync"

	"github.com/systmms/sitectl/internal/secure"
	"github.com/systmms/sitectl/pkg/credstore"
)

// MemoryStore is an in-process credential store. Used for literal
// credentials from configuration and as the store backend in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	username string
	password string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

// Name returns the store identifier
func (s *MemoryStore) Name() string {
	return "memory"
}

// Set stores a credential under key, replacing any existing entry.
func (s *MemoryStore) Set(key, username, password string) {
	s.mu.Lock()
	s.entries[key] = memoryEntry{username: username, password: password}
	s.mu.Unlock()
}

// Lookup returns the credential stored under key.
func (s *MemoryStore) Lookup(ctx context.Context, key string) (credstore.Credential, error) {
	if err := ctx.Err(); err != nil {
		return credstore.Credential{}, err
	}

	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return credstore.Credential{}, credstore.NotFoundError{Store: s.Name(), Key: key}
	}
	return credstore.Credential{
		Username: entry.username,
		Secret:   secure.NewBufferFromString(entry.password),
	}, nil
}
