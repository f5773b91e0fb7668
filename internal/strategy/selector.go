package strategy

import (
	"context"
	"errors"
	"net/url"

	scerrors "github.com/systmms/sitectl/internal/errors"
	"github.com/systmms/sitectl/internal/secure"
)

// ResolvedCredential is a credential found in the local store, tagged
// with the address prefix it was found under for diagnostics.
type ResolvedCredential struct {
	Username string
	Secret   *secure.Buffer

	// MatchedKey is the store key the fallback search hit. Safe to log.
	MatchedKey string
}

// CredentialResolver searches the local credential store by
// progressively broader address prefixes. Implemented by
// internal/credentials; an interface here so selection stays free of
// store machinery and tests can inject a stub.
type CredentialResolver interface {
	Resolve(ctx context.Context, address *url.URL) (ResolvedCredential, error)
}

// Selector maps a connect request to exactly one authentication
// strategy. Selection is a pure function of the request and the store
// state the resolver sees: no network activity, no mutation.
type Selector struct {
	// Resolver is consulted by the federated and default branches when no
	// explicit credential was supplied. May be nil, in which case every
	// lookup is unresolved.
	Resolver CredentialResolver

	// OnPremises gates the high-trust strategy, which is meaningless
	// against the hosted service.
	OnPremises bool
}

// NewSelector creates a selector for the current build flavor.
func NewSelector(resolver CredentialResolver) *Selector {
	return &Selector{Resolver: resolver, OnPremises: onPremisesBuild}
}

// Input groups in priority order. The names appear in conflict errors.
const (
	groupAppToken        = "app-token"
	groupWebLogin        = "web-login"
	groupADFS            = "adfs"
	groupManagementShell = "management-shell"
	groupAzureAD         = "azure-ad"
	groupHighTrust       = "high-trust"
)

// Select returns the single strategy the request engages, or a
// validation/conflict error. Engaging more than one input group is a
// caller error surfaced before any branch evaluates; the original
// first-match precedence was deliberately promoted to an explicit error.
func (s *Selector) Select(ctx context.Context, req ConnectRequest) (AuthStrategy, error) {
	target, err := req.TargetURL()
	if err != nil {
		return nil, err
	}
	if req.AuthMode != "" && req.AuthMode != AuthModeDefault && req.AuthMode != AuthModeForms {
		return nil, scerrors.ValidationError{Strategy: "connect", Message: "auth-mode must be 'default' or 'forms'"}
	}

	engaged := engagedGroups(req)
	if len(engaged) > 1 {
		return nil, scerrors.ConflictError{Groups: engaged}
	}

	if len(engaged) == 1 {
		switch engaged[0] {
		case groupAppToken:
			return NewAppToken(req.AppID, req.AppSecret, req.Realm)
		case groupWebLogin:
			return WebLogin{AzureEnvironment: req.AzureEnvironment}, nil
		case groupADFS:
			return s.selectADFS(ctx, req, target)
		case groupManagementShell:
			return NewManagementShell(req.AzureEnvironment, req.ClearTokenCache)
		case groupAzureAD:
			if req.Tenant != "" || req.CertPath != "" || req.CertPassword != "" {
				return NewAppOnlyAAD(req.ClientID, req.Tenant, req.CertPath, req.CertPassword, req.AzureEnvironment, req.ClearTokenCache)
			}
			return NewNativeAppAAD(req.ClientID, req.RedirectURI, req.AzureEnvironment, req.ClearTokenCache)
		case groupHighTrust:
			if !s.OnPremises {
				return nil, scerrors.ValidationError{
					Strategy: string(KindHighTrustCertificate),
					Message:  "high-trust authentication is only supported against on-premises servers",
				}
			}
			return NewHighTrustCertificate(req.ClientID, req.HighTrustCertPath, req.HighTrustCertPassword, req.IssuerID)
		}
	}

	return s.selectDefault(ctx, req, target)
}

// selectADFS resolves the credential for the federated branch when none
// was supplied explicitly.
func (s *Selector) selectADFS(ctx context.Context, req ConnectRequest, target *url.URL) (AuthStrategy, error) {
	if req.HasExplicitCredential() {
		return NewADFS(req.Username, req.Password)
	}
	resolved, err := s.resolve(ctx, target)
	if err != nil {
		return nil, err
	}
	return NewADFS(resolved.Username, resolved.Secret)
}

// selectDefault implements the lowest-priority branch: explicit
// credential, then store resolution, then the current-user switch. A
// resolved credential is never discarded in favor of a prompt; the
// caller prompts only on CredentialUnresolvedError.
func (s *Selector) selectDefault(ctx context.Context, req ConnectRequest, target *url.URL) (AuthStrategy, error) {
	if req.HasExplicitCredential() {
		return NewInteractiveCredential(req.Username, req.Password, req.AuthMode)
	}

	resolved, err := s.resolve(ctx, target)
	if err == nil {
		return NewInteractiveCredential(resolved.Username, resolved.Secret, req.AuthMode)
	}

	var unresolved scerrors.CredentialUnresolvedError
	if !errors.As(err, &unresolved) {
		return nil, err
	}
	if req.CurrentUser {
		return CurrentUser{}, nil
	}
	return nil, unresolved
}

func (s *Selector) resolve(ctx context.Context, target *url.URL) (ResolvedCredential, error) {
	if s.Resolver == nil {
		return ResolvedCredential{}, scerrors.CredentialUnresolvedError{Address: target.String()}
	}
	return s.Resolver.Resolve(ctx, target)
}

// engagedGroups returns the mutually exclusive input groups the request
// triggers, in priority order. Partial inputs still engage a group so
// that a lone --app-id reports a missing app-secret instead of silently
// falling through to credential authentication.
func engagedGroups(req ConnectRequest) []string {
	highTrust := req.HighTrustCertPath != "" || req.HighTrustCertPassword != "" || req.IssuerID != ""
	azureAD := req.RedirectURI != "" || req.Tenant != "" || req.CertPath != "" || req.CertPassword != "" ||
		(req.ClientID != "" && !highTrust)

	var groups []string
	if req.AppID != "" || req.AppSecret != "" {
		groups = append(groups, groupAppToken)
	}
	if req.WebLogin {
		groups = append(groups, groupWebLogin)
	}
	if req.UseADFS {
		groups = append(groups, groupADFS)
	}
	if req.ManagementShell {
		groups = append(groups, groupManagementShell)
	}
	if azureAD {
		groups = append(groups, groupAzureAD)
	}
	if highTrust {
		groups = append(groups, groupHighTrust)
	}
	return groups
}
