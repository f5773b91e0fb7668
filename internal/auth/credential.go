package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	scerrors "github.com/systmms/sitectl/internal/errors"
	"github.com/systmms/sitectl/internal/logging"
	"github.com/systmms/sitectl/internal/strategy"
)

// CredentialExchanger authenticates an explicit or resolved
// username/secret pair directly against the server. In default mode the
// credential rides on every request; in forms mode a sign-in request is
// made once and the session cookies ride instead.
type CredentialExchanger struct {
	logger *logging.Logger

	// HTTPClient overrides the probe/sign-in client. For tests.
	HTTPClient *http.Client
}

func (e *CredentialExchanger) Kind() strategy.Kind { return strategy.KindInteractiveCredential }

func (e *CredentialExchanger) Exchange(ctx context.Context, s strategy.AuthStrategy, opts Options) (*Context, error) {
	cred, ok := s.(strategy.InteractiveCredential)
	if !ok {
		return nil, fmt.Errorf("credential exchanger invoked with %s strategy", s.Kind())
	}

	password, err := cred.Secret.Reveal()
	if err != nil {
		return nil, scerrors.AuthFailedError{Strategy: string(e.Kind()), Reason: "secret no longer available", Err: err}
	}

	if cred.Mode == strategy.AuthModeForms {
		return e.formsSignIn(ctx, cred.Username, password, opts)
	}
	return e.defaultSignIn(ctx, cred.Username, password, opts)
}

// defaultSignIn verifies the credential with a single probe and returns
// a context that presents it on every request.
func (e *CredentialExchanger) defaultSignIn(ctx context.Context, username, password string, opts Options) (*Context, error) {
	probe := strings.TrimRight(opts.Resource, "/") + "/"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probe, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(username, password)

	resp, err := e.client(opts).Do(req)
	if err != nil {
		return nil, classifyHTTPError(e.Kind(), probe, err)
	}
	resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, scerrors.AuthFailedError{
			Strategy: string(e.Kind()),
			Reason:   fmt.Sprintf("server rejected credential for %s (%d)", username, resp.StatusCode),
		}
	}

	e.logger.Debug("Credential accepted for %s", username)
	return NewContext(e.Kind(), username, func(req *http.Request) error {
		req.SetBasicAuth(username, password)
		return nil
	}), nil
}

// formsSignIn performs the forms-based sign-in once and carries the
// resulting cookies on every request.
func (e *CredentialExchanger) formsSignIn(ctx context.Context, username, password string, opts Options) (*Context, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client := *e.client(opts)
	client.Jar = jar

	endpoint := strings.TrimRight(opts.Resource, "/") + "/_forms/default.aspx?wa=wsignin1.0"
	form := url.Values{
		"username": {username},
		"password": {password},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return nil, classifyHTTPError(e.Kind(), endpoint, err)
	}
	resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, scerrors.AuthFailedError{
			Strategy: string(e.Kind()),
			Reason:   fmt.Sprintf("forms sign-in rejected for %s (%d)", username, resp.StatusCode),
		}
	}

	base, err := url.Parse(opts.Resource)
	if err != nil {
		return nil, err
	}
	if len(jar.Cookies(base)) == 0 {
		return nil, scerrors.AuthFailedError{
			Strategy: string(e.Kind()),
			Reason:   "forms sign-in returned no session cookies",
		}
	}

	e.logger.Debug("Forms sign-in succeeded for %s", username)
	return NewContext(e.Kind(), username, func(req *http.Request) error {
		for _, cookie := range jar.Cookies(req.URL) {
			req.AddCookie(cookie)
		}
		return nil
	}), nil
}

func (e *CredentialExchanger) client(opts Options) *http.Client {
	if e.HTTPClient != nil {
		return e.HTTPClient
	}
	timeout := 30 * time.Second
	if opts.RequestTimeoutMs > 0 {
		timeout = time.Duration(opts.RequestTimeoutMs) * time.Millisecond
	}
	return &http.Client{Timeout: timeout}
}
