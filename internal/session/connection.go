package session

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sony/gobreaker"

	"github.com/systmms/sitectl/internal/auth"
)

// Connection is the reusable handle a successful connect produces. It is
// fully populated on construction and immutable afterwards; replacing
// the process-wide slot is the only lifecycle transition.
type Connection struct {
	id             string
	baseURL        *url.URL
	authCtx        *auth.Context
	policy         RetryPolicy
	adminURL       string
	skipAdminCheck bool
	createdAt      time.Time

	client  *retryablehttp.Client
	breaker *gobreaker.CircuitBreaker
}

// ID returns the connection's unique identifier.
func (c *Connection) ID() string { return c.id }

// BaseURL returns the connected server address.
func (c *Connection) BaseURL() *url.URL { return c.baseURL }

// Strategy returns the authentication strategy kind that produced the
// connection, as a string for display.
func (c *Connection) Strategy() string { return string(c.authCtx.Kind()) }

// Principal returns the loggable identity the connection authenticates as.
func (c *Connection) Principal() string { return c.authCtx.Principal() }

// Policy returns the retry policy attached at construction.
func (c *Connection) Policy() RetryPolicy { return c.policy }

// AdminURL returns the admin-site override, or "" when unset.
func (c *Connection) AdminURL() string { return c.adminURL }

// SkipAdminCheck reports whether admin-site verification was waived.
func (c *Connection) SkipAdminCheck() bool { return c.skipAdminCheck }

// CreatedAt returns when the connection became active.
func (c *Connection) CreatedAt() time.Time { return c.createdAt }

// Execute issues a request for a server-relative path through the
// connection's retry policy, health gate, and circuit breaker. The
// caller owns the response body.
func (c *Connection) Execute(ctx context.Context, method, relPath string) (*http.Response, error) {
	rel, err := url.Parse(strings.TrimLeft(relPath, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid request path %q: %w", relPath, err)
	}
	target := *c.baseURL
	target.Path = strings.TrimRight(target.Path, "/") + "/" + rel.Path
	target.RawQuery = rel.RawQuery

	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := retryablehttp.NewRequestWithContext(ctx, method, target.String(), nil)
		if err != nil {
			return nil, err
		}
		if err := c.authCtx.Authorize(req.Request); err != nil {
			return nil, err
		}

		start := time.Now()
		resp, err := c.client.Do(req)
		observeRequest(time.Since(start), err == nil)
		if err != nil {
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, fmt.Errorf("connection to %s is suspended after repeated failures: %w", c.baseURL, err)
		}
		return nil, err
	}
	return result.(*http.Response), nil
}
