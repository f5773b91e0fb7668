package credstores_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/sitectl/internal/config"
	"github.com/systmms/sitectl/internal/credstores"
	"github.com/systmms/sitectl/pkg/credstore"
)

// configFor builds a credential store configuration for the given type,
// with a seed entry for the memory store.
func configFor(storeType string) config.CredentialStoreConfig {
	cfg := config.CredentialStoreConfig{Type: storeType}
	if storeType == "memory" {
		cfg.Entries = map[string]config.StoreEntry{
			"https://contoso.example": {Username: "dev", Password: "devpw"},
		}
	}
	return cfg
}

func TestMemoryStoreLookup(t *testing.T) {
	t.Parallel()

	store := credstores.NewMemoryStore()
	store.Set("contoso.example", "alice", "pw")

	cred, err := store.Lookup(context.Background(), "contoso.example")
	require.NoError(t, err)
	assert.Equal(t, "alice", cred.Username)

	secret, err := cred.Secret.Reveal()
	require.NoError(t, err)
	assert.Equal(t, "pw", secret)
}

func TestMemoryStoreNotFound(t *testing.T) {
	t.Parallel()

	store := credstores.NewMemoryStore()

	_, err := store.Lookup(context.Background(), "missing")
	var notFound credstore.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "memory", notFound.Store)
}

func TestMemoryStoreSetReplaces(t *testing.T) {
	t.Parallel()

	store := credstores.NewMemoryStore()
	store.Set("key", "old", "oldpw")
	store.Set("key", "new", "newpw")

	cred, err := store.Lookup(context.Background(), "key")
	require.NoError(t, err)
	assert.Equal(t, "new", cred.Username)
}
