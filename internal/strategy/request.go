package strategy

import (
	"net/url"
	"strings"

	scerrors "github.com/systmms/sitectl/internal/errors"
	"github.com/systmms/sitectl/internal/secure"
)

// AuthMode selects how an explicit credential is presented to the server.
type AuthMode string

const (
	// AuthModeDefault presents the credential via the standard
	// challenge/response negotiation.
	AuthModeDefault AuthMode = "default"

	// AuthModeForms performs a forms-based sign-in and carries the
	// resulting cookies on every request.
	AuthModeForms AuthMode = "forms"
)

// AzureEnvironment names the cloud instance AAD-based strategies
// authenticate against.
type AzureEnvironment string

const (
	AzureEnvironmentProduction   AzureEnvironment = "production"
	AzureEnvironmentUSGovernment AzureEnvironment = "usgovernment"
	AzureEnvironmentChina        AzureEnvironment = "china"
	AzureEnvironmentGermany      AzureEnvironment = "germany"
)

// Valid reports whether the environment is a recognized cloud instance.
func (e AzureEnvironment) Valid() bool {
	switch e {
	case AzureEnvironmentProduction, AzureEnvironmentUSGovernment, AzureEnvironmentChina, AzureEnvironmentGermany:
		return true
	}
	return false
}

// Request tuning defaults. The retry policy is generous because the
// server throttles under load and every downstream request flows through
// it.
const (
	DefaultRetryCount         = 10
	DefaultRetryWaitSeconds   = 1
	DefaultRequestTimeoutMs   = 1800000
	DefaultMinimalHealthScore = -1
)

// ConnectRequest is the raw bag of caller-supplied inputs for a connect
// attempt. It is assembled once (flags merged over an optional site
// profile) and treated as immutable by the selector and factory.
type ConnectRequest struct {
	// URL is the target server address. Required.
	URL string

	// Explicit credential. Password may be nil when only a username was
	// supplied; the caller prompts before selection in that case.
	Username string
	Password *secure.Buffer

	// Strategy switches and inputs. Exactly one input group may be
	// engaged per request.
	CurrentUser     bool
	UseADFS         bool
	AuthMode        AuthMode
	AppID           string
	AppSecret       string
	Realm           string
	WebLogin        bool
	ManagementShell bool

	ClientID         string
	RedirectURI      string
	Tenant           string
	CertPath         string
	CertPassword     string
	AzureEnvironment AzureEnvironment
	ClearTokenCache  bool

	HighTrustCertPath     string
	HighTrustCertPassword string
	IssuerID              string

	// Connection tuning.
	AdminURL           string
	SkipAdminCheck     bool
	MinimalHealthScore int
	RetryCount         int
	RetryWaitSeconds   int
	RequestTimeoutMs   int
	IgnoreSSLErrors    bool
}

// NewConnectRequest returns a request for the given target with the
// documented tuning defaults applied.
func NewConnectRequest(target string) ConnectRequest {
	return ConnectRequest{
		URL:                target,
		AuthMode:           AuthModeDefault,
		AzureEnvironment:   AzureEnvironmentProduction,
		MinimalHealthScore: DefaultMinimalHealthScore,
		RetryCount:         DefaultRetryCount,
		RetryWaitSeconds:   DefaultRetryWaitSeconds,
		RequestTimeoutMs:   DefaultRequestTimeoutMs,
	}
}

// TargetURL parses and normalizes the request address. The fragment and
// query are dropped and a trailing slash is trimmed so credential lookup
// keys are stable.
func (r ConnectRequest) TargetURL() (*url.URL, error) {
	if strings.TrimSpace(r.URL) == "" {
		return nil, scerrors.ValidationError{Strategy: "connect", MissingField: "url"}
	}
	parsed, err := url.Parse(strings.TrimSpace(r.URL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, scerrors.ValidationError{
			Strategy: "connect",
			Message:  "url must be absolute, like https://contoso.example/sites/teamA",
		}
	}
	parsed.Fragment = ""
	parsed.RawQuery = ""
	parsed.Path = strings.TrimRight(parsed.Path, "/")
	return parsed, nil
}

// HasExplicitCredential reports whether the caller supplied a credential
// directly rather than relying on store resolution.
func (r ConnectRequest) HasExplicitCredential() bool {
	return r.Username != "" || r.Password != nil
}
