package credstores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/systmms/sitectl/internal/secure"
	"github.com/systmms/sitectl/pkg/credstore"
)

// KeyringClient abstracts the OS keyring (macOS Keychain, Windows
// Credential Manager, Linux Secret Service). Exists so tests can inject a
// fake.
type KeyringClient interface {
	Get(service, user string) (string, error)
}

// keyringEntry is the JSON payload stored under each address key. The OS
// keyring stores a single opaque string per (service, user) pair, so the
// username travels inside the payload.
type keyringEntry struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// KeyringStore looks up credentials in the OS keyring. Entries live under
// a fixed service name with the address string as the account, e.g.
//
//	service: "sitectl"  account: "https://contoso.example/sites/teamA"
//
// The stored secret is a JSON document carrying username and password.
// Plain (non-JSON) secrets are accepted too and yield a credential with
// an empty username.
type KeyringStore struct {
	service string
	client  KeyringClient
}

// defaultKeyringClient delegates to the zalando/go-keyring package-level API.
type defaultKeyringClient struct{}

func (defaultKeyringClient) Get(service, user string) (string, error) {
	return keyring.Get(service, user)
}

// NewKeyringStore creates a keyring-backed store. service defaults to
// "sitectl" when empty.
func NewKeyringStore(service string) *KeyringStore {
	return NewKeyringStoreWithClient(service, defaultKeyringClient{})
}

// NewKeyringStoreWithClient creates a keyring store with a custom client.
// Primarily for testing.
func NewKeyringStoreWithClient(service string, client KeyringClient) *KeyringStore {
	if service == "" {
		service = "sitectl"
	}
	return &KeyringStore{service: service, client: client}
}

// Name returns the store identifier
func (s *KeyringStore) Name() string {
	return "keyring"
}

// Lookup queries the keyring for an entry stored under key.
func (s *KeyringStore) Lookup(ctx context.Context, key string) (credstore.Credential, error) {
	if err := ctx.Err(); err != nil {
		return credstore.Credential{}, err
	}

	raw, err := s.client.Get(s.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) || isKeyringNotFound(err) {
			return credstore.Credential{}, credstore.NotFoundError{Store: s.Name(), Key: key}
		}
		return credstore.Credential{}, credstore.AccessError{Store: s.Name(), Err: err}
	}

	return decodeEntry(raw), nil
}

// decodeEntry parses a stored secret. JSON payloads carry the username;
// anything else is treated as a bare password.
func decodeEntry(raw string) credstore.Credential {
	var entry keyringEntry
	if strings.HasPrefix(strings.TrimSpace(raw), "{") {
		if err := json.Unmarshal([]byte(raw), &entry); err == nil {
			return credstore.Credential{
				Username: entry.Username,
				Secret:   secure.NewBufferFromString(entry.Password),
			}
		}
	}
	return credstore.Credential{Secret: secure.NewBufferFromString(raw)}
}

// isKeyringNotFound catches backend-specific "no such item" errors that
// the keyring package does not normalize on every platform.
func isKeyringNotFound(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") ||
		strings.Contains(msg, "no such") ||
		strings.Contains(msg, "does not exist")
}

// EncodeEntry renders the JSON payload format for a username/password
// pair, for users populating the keyring out of band:
//
//	secret-tool store --label=sitectl service sitectl account <url>
func EncodeEntry(username, password string) (string, error) {
	data, err := json.Marshal(keyringEntry{Username: username, Password: password})
	if err != nil {
		return "", fmt.Errorf("failed to encode keyring entry: %w", err)
	}
	return string(data), nil
}
