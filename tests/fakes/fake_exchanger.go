package fakes

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/systmms/sitectl/internal/auth"
	"github.com/systmms/sitectl/internal/strategy"
)

// FakeExchanger is an Exchanger that hands back a canned context or
// error without any network activity.
type FakeExchanger struct {
	StrategyKind strategy.Kind

	// Principal names the identity the fake context reports.
	Principal string

	// Err, when set, fails every exchange.
	Err error

	// Header is added to every authorized request, so tests can assert
	// the context was applied.
	Header string

	calls atomic.Int64
}

// Kind returns the strategy kind this fake serves.
func (f *FakeExchanger) Kind() strategy.Kind {
	return f.StrategyKind
}

// Exchange returns the canned result.
func (f *FakeExchanger) Exchange(ctx context.Context, s strategy.AuthStrategy, opts auth.Options) (*auth.Context, error) {
	f.calls.Add(1)
	if f.Err != nil {
		return nil, f.Err
	}
	return auth.NewContext(f.StrategyKind, f.Principal, func(req *http.Request) error {
		if f.Header != "" {
			req.Header.Set("X-Fake-Auth", f.Header)
		}
		return nil
	}), nil
}

// Calls reports how many exchanges ran.
func (f *FakeExchanger) Calls() int {
	return int(f.calls.Load())
}
