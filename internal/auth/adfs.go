package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"

	scerrors "github.com/systmms/sitectl/internal/errors"
	"github.com/systmms/sitectl/internal/logging"
	"github.com/systmms/sitectl/internal/strategy"
)

// ADFSExchanger authenticates a username/secret pair against the
// federation service's token endpoint rather than the server itself.
// The handshake is delegated to the oauth2 resource-owner grant; this
// collaborator only wires the credential and audience into it.
type ADFSExchanger struct {
	logger *logging.Logger

	// TokenEndpoint overrides the federation token endpoint. When empty
	// it defaults to the conventional /adfs/oauth2/token path on the
	// target's host.
	TokenEndpoint string
	// HTTPClient overrides the exchange client. For tests.
	HTTPClient *http.Client
}

func (e *ADFSExchanger) Kind() strategy.Kind { return strategy.KindADFS }

func (e *ADFSExchanger) Exchange(ctx context.Context, s strategy.AuthStrategy, opts Options) (*Context, error) {
	adfs, ok := s.(strategy.ADFS)
	if !ok {
		return nil, fmt.Errorf("adfs exchanger invoked with %s strategy", s.Kind())
	}

	password, err := adfs.Secret.Reveal()
	if err != nil {
		return nil, scerrors.AuthFailedError{Strategy: string(e.Kind()), Reason: "secret no longer available", Err: err}
	}

	endpoint := e.TokenEndpoint
	if endpoint == "" {
		target, err := url.Parse(opts.Resource)
		if err != nil {
			return nil, scerrors.ValidationError{Strategy: string(e.Kind()), Message: "invalid resource address"}
		}
		endpoint = fmt.Sprintf("%s://%s/adfs/oauth2/token", target.Scheme, target.Host)
	}

	cfg := oauth2.Config{
		ClientID: strategy.ManagementShellClientID,
		Endpoint: oauth2.Endpoint{TokenURL: endpoint},
	}

	if e.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, e.HTTPClient)
	}

	e.logger.Debug("Requesting federation token from %s for %s", endpoint, adfs.Username)
	token, err := cfg.PasswordCredentialsToken(ctx, adfs.Username, password)
	if err != nil {
		return nil, classifyHTTPError(e.Kind(), endpoint, err)
	}

	source := cfg.TokenSource(ctx, token)
	return NewContext(e.Kind(), adfs.Username, func(req *http.Request) error {
		current, err := source.Token()
		if err != nil {
			return classifyHTTPError(e.Kind(), endpoint, err)
		}
		current.SetAuthHeader(req)
		return nil
	}), nil
}
