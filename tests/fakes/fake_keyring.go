package fakes

import (
	"errors"
	"sync"

	"github.com/zalando/go-keyring"
)

// ErrFakeKeyringLocked simulates a keyring backend that exists but
// refuses access, e.g. a locked Secret Service collection.
var ErrFakeKeyringLocked = errors.New("keyring access denied: collection is locked")

// FakeKeyringClient is an in-memory stand-in for the OS keyring.
type FakeKeyringClient struct {
	mu      sync.Mutex
	secrets map[string]map[string]string

	// GetErr, when set, is returned by every Get call.
	GetErr error
}

// NewFakeKeyringClient creates an empty fake keyring.
func NewFakeKeyringClient() *FakeKeyringClient {
	return &FakeKeyringClient{secrets: make(map[string]map[string]string)}
}

// SetSecret stores a secret under (service, user).
func (f *FakeKeyringClient) SetSecret(service, user, secret string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.secrets[service] == nil {
		f.secrets[service] = make(map[string]string)
	}
	f.secrets[service][user] = secret
}

// Get returns the stored secret or keyring.ErrNotFound.
func (f *FakeKeyringClient) Get(service, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GetErr != nil {
		return "", f.GetErr
	}
	secret, ok := f.secrets[service][user]
	if !ok {
		return "", keyring.ErrNotFound
	}
	return secret, nil
}
