package auth

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/user"
	"strings"
	"time"

	"github.com/Azure/go-ntlmssp"

	scerrors "github.com/systmms/sitectl/internal/errors"
	"github.com/systmms/sitectl/internal/logging"
	"github.com/systmms/sitectl/internal/strategy"
)

// CurrentUserExchanger authenticates as the identity the process runs
// as. Requests ride a negotiating transport that answers NTLM and
// Negotiate challenges with the session identity; servers that only
// offer basic receive the identity directly. The exchange probes the
// target once so a server that rejects the session identity fails the
// connect instead of producing a connection that cannot authenticate.
type CurrentUserExchanger struct {
	logger *logging.Logger

	// Transport overrides the negotiator's inner transport. For tests.
	Transport http.RoundTripper
}

func (e *CurrentUserExchanger) Kind() strategy.Kind { return strategy.KindCurrentUser }

func (e *CurrentUserExchanger) Exchange(ctx context.Context, s strategy.AuthStrategy, opts Options) (*Context, error) {
	if _, ok := s.(strategy.CurrentUser); !ok {
		return nil, fmt.Errorf("current-user exchanger invoked with %s strategy", s.Kind())
	}

	principal := ambientPrincipal()
	wrap := e.negotiator()

	probe := strings.TrimRight(opts.Resource, "/") + "/"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probe, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(principal, "")

	timeout := 30 * time.Second
	if opts.RequestTimeoutMs > 0 {
		timeout = time.Duration(opts.RequestTimeoutMs) * time.Millisecond
	}
	client := &http.Client{Transport: wrap(nil), Timeout: timeout}

	resp, err := client.Do(req)
	if err != nil {
		return nil, classifyHTTPError(e.Kind(), probe, err)
	}
	resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, scerrors.AuthFailedError{
			Strategy: string(e.Kind()),
			Reason:   fmt.Sprintf("server did not accept the session identity %s (%d)", principal, resp.StatusCode),
		}
	}

	e.logger.Debug("Negotiated session identity %s for %s", principal, opts.Resource)
	return NewContext(e.Kind(), principal, func(req *http.Request) error {
		req.SetBasicAuth(principal, "")
		return nil
	}).WithTransport(wrap), nil
}

// negotiator wraps a base transport in the NTLM/Negotiate handshake.
// The negotiator engages only when the server challenges; unchallenged
// requests pass through untouched.
func (e *CurrentUserExchanger) negotiator() func(base http.RoundTripper) http.RoundTripper {
	return func(base http.RoundTripper) http.RoundTripper {
		if e.Transport != nil {
			base = e.Transport
		}
		if base == nil {
			base = http.DefaultTransport
		}
		return ntlmssp.Negotiator{RoundTripper: base}
	}
}

// ambientPrincipal derives the domain-qualified name of the user the
// process runs as. USERDOMAIN qualifies the bare account name on
// domain-joined machines where user.Current does not.
func ambientPrincipal() string {
	u, err := user.Current()
	if err != nil || u.Username == "" {
		return "current user"
	}
	name := u.Username
	if domain := os.Getenv("USERDOMAIN"); domain != "" && !strings.ContainsRune(name, '\\') {
		name = domain + `\` + name
	}
	return name
}
