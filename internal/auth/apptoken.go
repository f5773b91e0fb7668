package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	scerrors "github.com/systmms/sitectl/internal/errors"
	"github.com/systmms/sitectl/internal/logging"
	"github.com/systmms/sitectl/internal/strategy"
)

const (
	// accessControlHost issues app tokens for registered apps.
	accessControlHost = "accounts.accesscontrol.windows.net"

	// serverPrincipalID is the well-known principal of the resource
	// server in the access-control service.
	serverPrincipalID = "00000003-0000-0ff1-ce00-000000000000"
)

// AppTokenExchanger performs the client-credentials exchange for
// registered apps. When the request carries no realm, the realm is
// discovered from the server's bearer challenge first.
type AppTokenExchanger struct {
	logger *logging.Logger

	// TokenHost overrides the access-control host. For tests.
	TokenHost string
	// HTTPClient overrides the client used for discovery and the token
	// exchange. For tests.
	HTTPClient *http.Client
}

func (e *AppTokenExchanger) Kind() strategy.Kind { return strategy.KindAppToken }

func (e *AppTokenExchanger) Exchange(ctx context.Context, s strategy.AuthStrategy, opts Options) (*Context, error) {
	app, ok := s.(strategy.AppToken)
	if !ok {
		return nil, fmt.Errorf("app-token exchanger invoked with %s strategy", s.Kind())
	}

	realm := app.Realm
	if realm == "" {
		discovered, err := e.discoverRealm(ctx, opts.Resource)
		if err != nil {
			return nil, err
		}
		realm = discovered
		e.logger.Debug("Discovered realm %s for %s", realm, opts.Resource)
	}

	target, err := url.Parse(opts.Resource)
	if err != nil {
		return nil, scerrors.ValidationError{Strategy: string(e.Kind()), Message: "invalid resource address"}
	}

	host := e.TokenHost
	if host == "" {
		host = accessControlHost
	}

	// Principal names are realm-scoped: "<id>@<realm>" for the client,
	// "<principal>/<host>@<realm>" for the audience.
	cfg := clientcredentials.Config{
		ClientID:     app.AppID + "@" + realm,
		ClientSecret: app.AppSecret,
		TokenURL:     fmt.Sprintf("https://%s/%s/tokens/OAuth/2", host, realm),
		EndpointParams: url.Values{
			"resource": {fmt.Sprintf("%s/%s@%s", serverPrincipalID, target.Hostname(), realm)},
		},
		AuthStyle: oauth2.AuthStyleInParams,
	}

	if e.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, e.HTTPClient)
	}

	source := cfg.TokenSource(ctx)
	if _, err := source.Token(); err != nil {
		return nil, classifyHTTPError(e.Kind(), cfg.TokenURL, err)
	}

	return NewContext(e.Kind(), app.AppID, func(req *http.Request) error {
		token, err := source.Token()
		if err != nil {
			return classifyHTTPError(e.Kind(), cfg.TokenURL, err)
		}
		token.SetAuthHeader(req)
		return nil
	}), nil
}

// discoverRealm asks the server for its realm by sending an empty bearer
// header and reading the authentication challenge off the 401.
func (e *AppTokenExchanger) discoverRealm(ctx context.Context, resource string) (string, error) {
	client := e.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	endpoint := strings.TrimRight(resource, "/") + "/_vti_bin/client.svc"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer")

	resp, err := client.Do(req)
	if err != nil {
		return "", classifyHTTPError(e.Kind(), endpoint, err)
	}
	defer resp.Body.Close()

	realm := parseRealm(resp.Header.Get("WWW-Authenticate"))
	if realm == "" {
		return "", scerrors.AuthFailedError{
			Strategy: string(e.Kind()),
			Reason:   "server did not advertise a realm; supply --realm explicitly",
		}
	}
	return realm, nil
}

// parseRealm extracts the realm parameter from a bearer challenge like
//
//	Bearer realm="c1b3...",client_id="..."
func parseRealm(challenge string) string {
	const marker = `realm="`
	idx := strings.Index(challenge, marker)
	if idx < 0 {
		return ""
	}
	rest := challenge[idx+len(marker):]
	end := strings.Index(rest, `"`)
	if end < 0 {
		return ""
	}
	return rest[:end]
}
