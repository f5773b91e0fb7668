// Package credentials implements the ordered fallback search that maps a
// target address to a stored credential: the full address first, then
// progressively shorter path prefixes, then scheme://host, then the bare
// host. A credential stored for a parent site matches every address
// beneath it.
package credentials

import (
	"context"
	"errors"
	"net/url"
	"strings"

	scerrors "github.com/systmms/sitectl/internal/errors"
	"github.com/systmms/sitectl/internal/logging"
	"github.com/systmms/sitectl/internal/strategy"
	"github.com/systmms/sitectl/pkg/credstore"
)

// Resolver searches a credential store by address prefix.
type Resolver struct {
	store  credstore.Store
	logger *logging.Logger
}

// New creates a resolver over the given store.
func New(store credstore.Store, logger *logging.Logger) *Resolver {
	return &Resolver{store: store, logger: logger}
}

// Resolve returns the first credential found along the fallback chain,
// or CredentialUnresolvedError after every candidate missed. Each step
// is a single local store lookup; the search stops at the first hit.
// Resolution is idempotent for unchanged store state.
func (r *Resolver) Resolve(ctx context.Context, address *url.URL) (strategy.ResolvedCredential, error) {
	for _, key := range LookupKeys(address) {
		cred, err := r.store.Lookup(ctx, key)
		if err != nil {
			var notFound credstore.NotFoundError
			if errors.As(err, &notFound) {
				continue
			}
			return strategy.ResolvedCredential{}, err
		}

		r.logger.Debug("Resolved credential for %s at store key %s (user %s)", address, key, cred.Username)
		return strategy.ResolvedCredential{
			Username:   cred.Username,
			Secret:     cred.Secret,
			MatchedKey: key,
		}, nil
	}

	r.logger.Debug("No stored credential for %s at any prefix", address)
	return strategy.ResolvedCredential{}, scerrors.CredentialUnresolvedError{Address: address.String()}
}

// LookupKeys returns the ordered candidate store keys for an address:
//
//  1. the exact address
//  2. the address with its last path segment stripped, repeated until
//     the path is empty
//  3. scheme://host with any port dropped
//  4. the bare host
//
// Duplicates from overlapping steps are removed while preserving order.
func LookupKeys(address *url.URL) []string {
	host := address.Hostname()
	base := address.Scheme + "://" + address.Host

	var keys []string
	seen := make(map[string]bool)
	add := func(key string) {
		if key != "" && !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}

	path := strings.TrimRight(address.Path, "/")
	add(base + path)
	for path != "" {
		path = stripLastSegment(path)
		add(base + path)
	}

	add(address.Scheme + "://" + host)
	add(host)
	return keys
}

// stripLastSegment drops the final /segment of a path, returning "" once
// nothing but the root remains.
func stripLastSegment(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx <= 0 {
		return ""
	}
	return path[:idx]
}
