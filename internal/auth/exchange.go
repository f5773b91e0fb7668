// Package auth holds the exchange collaborators: one per authentication
// strategy family. Each collaborator turns a validated strategy into an
// opaque authorization context, delegating the actual protocol work to
// the Azure identity SDK, oauth2, or a signed local assertion. The
// connection factory orchestrates which collaborator runs; it never sees
// token material itself.
package auth

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/systmms/sitectl/internal/strategy"
)

// Options carries the request parameters every exchange receives
// alongside its strategy: the connect tuning plus the addresses the
// resulting context will authorize against.
type Options struct {
	// Resource is the base address of the target server, used as the
	// token audience (scope "<resource>/.default" for AAD flows).
	Resource string

	// AdminResource is the admin-site address override, when set.
	AdminResource string

	SkipAdminCheck   bool
	RequestTimeoutMs int
	RetryCount       int
	RetryWaitSeconds int
}

// Exchanger performs the authentication exchange for one strategy kind.
type Exchanger interface {
	Kind() strategy.Kind

	// Exchange runs the strategy-specific authentication and returns an
	// authorization context, or a typed error (AuthFailedError,
	// NetworkError, CertificateError). Exchanges block until completion;
	// cancellation mid-exchange is not supported beyond ctx deadline
	// enforcement by the underlying library.
	Exchange(ctx context.Context, s strategy.AuthStrategy, opts Options) (*Context, error)
}

// Context is the opaque product of a successful exchange. Downstream
// request code calls Authorize on every outgoing request; how the
// request is decorated (bearer token, basic credential, cookies) is
// private to the strategy that produced it.
type Context struct {
	kind      strategy.Kind
	acquired  time.Time
	principal string

	mu        sync.Mutex
	authorize func(req *http.Request) error

	wrapTransport func(base http.RoundTripper) http.RoundTripper
}

// NewContext builds an authorization context. principal is a loggable
// identity hint (username, client id); it must never contain secret
// material.
func NewContext(kind strategy.Kind, principal string, authorize func(req *http.Request) error) *Context {
	return &Context{
		kind:      kind,
		acquired:  time.Now(),
		principal: principal,
		authorize: authorize,
	}
}

// Kind returns the strategy that produced this context.
func (c *Context) Kind() strategy.Kind {
	return c.kind
}

// Principal returns the loggable identity this context authenticates as.
func (c *Context) Principal() string {
	return c.principal
}

// AcquiredAt returns when the exchange completed.
func (c *Context) AcquiredAt() time.Time {
	return c.acquired
}

// WithTransport attaches a transport wrapper for strategies whose
// authentication happens at the transport level (challenge negotiation)
// rather than as a per-request header. The session layer installs the
// wrapper on the connection's HTTP client.
func (c *Context) WithTransport(wrap func(base http.RoundTripper) http.RoundTripper) *Context {
	c.wrapTransport = wrap
	return c
}

// WrapTransport applies this context's transport wrapper to base, or
// returns base unchanged when the strategy authenticates per-request.
func (c *Context) WrapTransport(base http.RoundTripper) http.RoundTripper {
	if c.wrapTransport == nil {
		return base
	}
	return c.wrapTransport(base)
}

// Authorize decorates an outgoing request with this context's
// authentication. Safe for concurrent use; token refresh inside the
// closure is serialized.
func (c *Context) Authorize(req *http.Request) error {
	if c.authorize == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authorize(req)
}
