package credstores

import (
	"fmt"

	"github.com/systmms/sitectl/internal/config"
	"github.com/systmms/sitectl/pkg/credstore"
)

// Registry creates credential stores from configuration
type Registry struct {
	supportedTypes map[string]bool
}

// NewRegistry creates a registry with the built-in store types
func NewRegistry() *Registry {
	registry := &Registry{supportedTypes: make(map[string]bool)}

	storeTypes := []string{
		"keyring",
		"memory",
	}
	for _, storeType := range storeTypes {
		registry.supportedTypes[storeType] = true
	}

	return registry
}

// CreateStore creates a credential store instance from configuration.
// An empty type defaults to the OS keyring.
func (r *Registry) CreateStore(cfg config.CredentialStoreConfig) (credstore.Store, error) {
	storeType := cfg.Type
	if storeType == "" {
		storeType = "keyring"
	}
	if !r.IsSupported(storeType) {
		return nil, fmt.Errorf("unknown credential store type: %s", storeType)
	}

	switch storeType {
	case "keyring":
		return NewKeyringStore(cfg.Service), nil
	case "memory":
		store := NewMemoryStore()
		for key, entry := range cfg.Entries {
			store.Set(key, entry.Username, entry.Password)
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown credential store type: %s", storeType)
}

// GetSupportedTypes returns a list of supported store types
func (r *Registry) GetSupportedTypes() []string {
	types := make([]string, 0, len(r.supportedTypes))
	for storeType := range r.supportedTypes {
		types = append(types, storeType)
	}
	return types
}

// IsSupported checks if a store type is supported
func (r *Registry) IsSupported(storeType string) bool {
	return r.supportedTypes[storeType]
}
