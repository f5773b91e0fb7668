// Package credstore defines the interface to local named-credential
// stores: systems that map free-form address strings to a username and
// secret pair, such as the OS keyring.
//
// A store is a pure lookup surface. sitectl never writes through this
// interface; populating the store is the user's (or their platform's)
// concern. Keys are the address strings the credential resolver derives
// from a target URL, e.g.:
//
//	https://contoso.example/sites/teamA
//	https://contoso.example
//	contoso.example
//
// Implementations must be safe for concurrent use and must never log the
// secret material they return.
package credstore

import (
	"context"

	"github.com/systmms/sitectl/internal/secure"
)

// Store is a local named-credential store queried by address string.
type Store interface {
	// Name returns the store's stable identifier, used in error messages
	// and configuration ("keyring", "memory").
	Name() string

	// Lookup returns the credential stored under key, or NotFoundError if
	// no entry exists. Lookups are local; implementations must not reach
	// the network.
	Lookup(ctx context.Context, key string) (Credential, error)
}

// Credential is a username and protected secret returned by a store.
type Credential struct {
	Username string

	// Secret holds the password or secret in a protected buffer.
	// Never logged in full.
	Secret *secure.Buffer
}

// IsZero reports whether the credential carries no usable identity.
func (c Credential) IsZero() bool {
	return c.Username == "" && c.Secret == nil
}

// NotFoundError indicates no entry exists under the queried key.
type NotFoundError struct {
	Store string
	Key   string
}

func (e NotFoundError) Error() string {
	return "no credential stored under '" + e.Key + "' in " + e.Store
}

// AccessError indicates the store exists but refused or failed the query
// (locked keyring, denied prompt, missing DBus session).
type AccessError struct {
	Store string
	Err   error
}

func (e AccessError) Error() string {
	return "credential store " + e.Store + " is not accessible: " + e.Err.Error()
}

func (e AccessError) Unwrap() error {
	return e.Err
}
