package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/systmms/sitectl/internal/auth"
	scerrors "github.com/systmms/sitectl/internal/errors"
	"github.com/systmms/sitectl/internal/logging"
	"github.com/systmms/sitectl/internal/strategy"
	"github.com/systmms/sitectl/internal/tokencache"
)

// Factory runs the strategy-specific exchange and, on success, installs
// the resulting connection in the slot. Failure at any stage leaves the
// slot exactly as it was.
type Factory struct {
	slot       *Slot
	exchangers map[strategy.Kind]auth.Exchanger
	cache      *tokencache.Cache
	logger     *logging.Logger
}

// NewFactory wires the factory to its collaborators.
func NewFactory(slot *Slot, exchangers map[strategy.Kind]auth.Exchanger, cache *tokencache.Cache, logger *logging.Logger) *Factory {
	return &Factory{
		slot:       slot,
		exchangers: exchangers,
		cache:      cache,
		logger:     logger,
	}
}

// Connect executes the selected strategy's exchange against the
// request's target and replaces the current connection on success.
func (f *Factory) Connect(ctx context.Context, selected strategy.AuthStrategy, req strategy.ConnectRequest) (*Connection, error) {
	target, err := req.TargetURL()
	if err != nil {
		return nil, err
	}
	policy, err := PolicyFromRequest(req)
	if err != nil {
		return nil, err
	}

	if req.IgnoreSSLErrors {
		EnableInsecureTransport(f.logger)
	}

	if err := f.prepareTokenCache(selected); err != nil {
		recordConnect(string(selected.Kind()), "failure")
		return nil, err
	}

	exchanger, ok := f.exchangers[selected.Kind()]
	if !ok {
		recordConnect(string(selected.Kind()), "failure")
		return nil, scerrors.UserError{
			Message:    fmt.Sprintf("%s authentication is not supported by this client", selected.Kind()),
			Suggestion: "choose a different authentication strategy",
		}
	}

	opts := auth.Options{
		Resource:         target.Scheme + "://" + target.Host,
		AdminResource:    req.AdminURL,
		SkipAdminCheck:   req.SkipAdminCheck,
		RequestTimeoutMs: policy.RequestTimeoutMs,
		RetryCount:       policy.RetryCount,
		RetryWaitSeconds: policy.RetryWaitSeconds,
	}

	f.logger.Debug("Connecting to %s using %s authentication", target, selected.Kind())
	authCtx, err := exchanger.Exchange(ctx, selected, opts)
	if err != nil {
		recordConnect(string(selected.Kind()), "failure")
		return nil, err
	}

	client := newRetryClient(policy)
	client.HTTPClient.Transport = authCtx.WrapTransport(client.HTTPClient.Transport)

	conn := &Connection{
		id:             uuid.NewString(),
		baseURL:        target,
		authCtx:        authCtx,
		policy:         policy,
		adminURL:       req.AdminURL,
		skipAdminCheck: req.SkipAdminCheck,
		createdAt:      time.Now(),
		client:         client,
		breaker:        newBreaker(target.Host),
	}

	f.slot.replace(conn)
	recordConnect(string(selected.Kind()), "success")
	f.logger.Info("Connected to %s as %s (%s)", target, authCtx.Principal(), selected.Kind())
	return conn, nil
}

// prepareTokenCache handles the cache artifact for AAD-backed
// strategies: the directory always exists before an exchange, and the
// file is deleted first when a clean sign-in was requested. A missing
// file is fine; a file that cannot be removed fails the connect.
func (f *Factory) prepareTokenCache(selected strategy.AuthStrategy) error {
	usesCache, clear := tokenCacheUse(selected)
	if !usesCache || f.cache == nil {
		return nil
	}
	if err := f.cache.EnsureDir(); err != nil {
		return err
	}
	if clear {
		return f.cache.Clear(f.logger)
	}
	return nil
}

// tokenCacheUse reports whether the strategy authenticates through AAD
// (and therefore keeps a cache artifact) and whether the caller asked
// for the cache to be cleared first.
func tokenCacheUse(selected strategy.AuthStrategy) (usesCache, clear bool) {
	switch s := selected.(type) {
	case strategy.NativeAppAAD:
		return true, s.ClearCache
	case strategy.AppOnlyAAD:
		return true, s.ClearCache
	case strategy.ManagementShell:
		return true, s.ClearCache
	case strategy.WebLogin:
		return true, false
	}
	return false, false
}
