package strategy

import (
	scerrors "github.com/systmms/sitectl/internal/errors"
	"github.com/systmms/sitectl/internal/secure"
)

// Kind identifies an authentication strategy variant.
type Kind string

const (
	KindInteractiveCredential Kind = "credential"
	KindCurrentUser           Kind = "current-user"
	KindADFS                  Kind = "adfs"
	KindAppToken              Kind = "app-token"
	KindWebLogin              Kind = "web-login"
	KindNativeAppAAD          Kind = "aad-native"
	KindAppOnlyAAD            Kind = "aad-app-only"
	KindManagementShell       Kind = "management-shell"
	KindHighTrustCertificate  Kind = "high-trust"
)

// The management shell is a pre-registered public application; its
// client id and redirect are fixed and never caller-supplied.
const (
	ManagementShellClientID    = "9bc3ab49-b65d-410a-85ad-de819febfddc"
	ManagementShellRedirectURI = "urn:ietf:wg:oauth:2.0:oob"
)

// AuthStrategy is one fully validated authentication strategy variant.
// Constructing a variant through its New* constructor enforces the
// required-field contract, so a selected strategy is never incomplete.
type AuthStrategy interface {
	Kind() Kind
}

// InteractiveCredential authenticates with a username and secret, either
// explicitly supplied, resolved from the credential store, or prompted.
type InteractiveCredential struct {
	Username string
	Secret   *secure.Buffer
	Mode     AuthMode
}

func (InteractiveCredential) Kind() Kind { return KindInteractiveCredential }

// NewInteractiveCredential validates and constructs the credential variant.
func NewInteractiveCredential(username string, secret *secure.Buffer, mode AuthMode) (InteractiveCredential, error) {
	if username == "" {
		return InteractiveCredential{}, scerrors.ValidationError{Strategy: string(KindInteractiveCredential), MissingField: "username"}
	}
	if secret == nil {
		return InteractiveCredential{}, scerrors.ValidationError{Strategy: string(KindInteractiveCredential), MissingField: "password"}
	}
	if mode == "" {
		mode = AuthModeDefault
	}
	return InteractiveCredential{Username: username, Secret: secret, Mode: mode}, nil
}

// CurrentUser authenticates as the ambient process identity.
type CurrentUser struct{}

func (CurrentUser) Kind() Kind { return KindCurrentUser }

// ADFS authenticates a username and secret against the federation
// service instead of the server directly.
type ADFS struct {
	Username string
	Secret   *secure.Buffer
}

func (ADFS) Kind() Kind { return KindADFS }

// NewADFS validates and constructs the federated credential variant.
func NewADFS(username string, secret *secure.Buffer) (ADFS, error) {
	if username == "" {
		return ADFS{}, scerrors.ValidationError{Strategy: string(KindADFS), MissingField: "username"}
	}
	if secret == nil {
		return ADFS{}, scerrors.ValidationError{Strategy: string(KindADFS), MissingField: "password"}
	}
	return ADFS{Username: username, Secret: secret}, nil
}

// AppToken authenticates as a registered app with an id/secret pair.
// Realm is discovered from the server when empty.
type AppToken struct {
	AppID     string
	AppSecret string
	Realm     string
}

func (AppToken) Kind() Kind { return KindAppToken }

// NewAppToken validates and constructs the app-token variant.
func NewAppToken(appID, appSecret, realm string) (AppToken, error) {
	if appID == "" {
		return AppToken{}, scerrors.ValidationError{Strategy: string(KindAppToken), MissingField: "app-id"}
	}
	if appSecret == "" {
		return AppToken{}, scerrors.ValidationError{Strategy: string(KindAppToken), MissingField: "app-secret"}
	}
	return AppToken{AppID: appID, AppSecret: appSecret, Realm: realm}, nil
}

// WebLogin authenticates through a browser sign-in flow with no
// pre-registered application of its own.
type WebLogin struct {
	AzureEnvironment AzureEnvironment
}

func (WebLogin) Kind() Kind { return KindWebLogin }

// NativeAppAAD authenticates interactively through a caller-registered
// native AAD application.
type NativeAppAAD struct {
	ClientID         string
	RedirectURI      string
	AzureEnvironment AzureEnvironment
	ClearCache       bool
}

func (NativeAppAAD) Kind() Kind { return KindNativeAppAAD }

// NewNativeAppAAD validates and constructs the native-app variant.
func NewNativeAppAAD(clientID, redirectURI string, env AzureEnvironment, clearCache bool) (NativeAppAAD, error) {
	if clientID == "" {
		return NativeAppAAD{}, scerrors.ValidationError{Strategy: string(KindNativeAppAAD), MissingField: "client-id"}
	}
	if redirectURI == "" {
		return NativeAppAAD{}, scerrors.ValidationError{Strategy: string(KindNativeAppAAD), MissingField: "redirect-uri"}
	}
	if !env.Valid() {
		return NativeAppAAD{}, scerrors.ValidationError{Strategy: string(KindNativeAppAAD), Message: "unknown azure environment"}
	}
	return NativeAppAAD{ClientID: clientID, RedirectURI: redirectURI, AzureEnvironment: env, ClearCache: clearCache}, nil
}

// AppOnlyAAD authenticates app-only with a client certificate, with no
// user identity involved.
type AppOnlyAAD struct {
	ClientID            string
	Tenant              string
	CertificatePath     string
	CertificatePassword string
	AzureEnvironment    AzureEnvironment
	ClearCache          bool
}

func (AppOnlyAAD) Kind() Kind { return KindAppOnlyAAD }

// NewAppOnlyAAD validates and constructs the app-only variant.
func NewAppOnlyAAD(clientID, tenant, certPath, certPassword string, env AzureEnvironment, clearCache bool) (AppOnlyAAD, error) {
	missing := ""
	switch {
	case clientID == "":
		missing = "client-id"
	case tenant == "":
		missing = "tenant"
	case certPath == "":
		missing = "cert-path"
	case certPassword == "":
		missing = "cert-password"
	}
	if missing != "" {
		return AppOnlyAAD{}, scerrors.ValidationError{Strategy: string(KindAppOnlyAAD), MissingField: missing}
	}
	if !env.Valid() {
		return AppOnlyAAD{}, scerrors.ValidationError{Strategy: string(KindAppOnlyAAD), Message: "unknown azure environment"}
	}
	return AppOnlyAAD{
		ClientID:            clientID,
		Tenant:              tenant,
		CertificatePath:     certPath,
		CertificatePassword: certPassword,
		AzureEnvironment:    env,
		ClearCache:          clearCache,
	}, nil
}

// ManagementShell authenticates through the fixed pre-registered
// management application.
type ManagementShell struct {
	ClientID         string
	RedirectURI      string
	AzureEnvironment AzureEnvironment
	ClearCache       bool
}

func (ManagementShell) Kind() Kind { return KindManagementShell }

// NewManagementShell constructs the management-shell variant with the
// baked-in client id and redirect.
func NewManagementShell(env AzureEnvironment, clearCache bool) (ManagementShell, error) {
	if !env.Valid() {
		return ManagementShell{}, scerrors.ValidationError{Strategy: string(KindManagementShell), Message: "unknown azure environment"}
	}
	return ManagementShell{
		ClientID:         ManagementShellClientID,
		RedirectURI:      ManagementShellRedirectURI,
		AzureEnvironment: env,
		ClearCache:       clearCache,
	}, nil
}

// HighTrustCertificate authenticates server-to-server with a locally held
// certificate that the on-premises farm trusts as a token issuer.
type HighTrustCertificate struct {
	ClientID     string
	CertPath     string
	CertPassword string
	IssuerID     string
}

func (HighTrustCertificate) Kind() Kind { return KindHighTrustCertificate }

// NewHighTrustCertificate validates and constructs the high-trust variant.
func NewHighTrustCertificate(clientID, certPath, certPassword, issuerID string) (HighTrustCertificate, error) {
	missing := ""
	switch {
	case clientID == "":
		missing = "client-id"
	case certPath == "":
		missing = "high-trust-cert-path"
	case issuerID == "":
		missing = "issuer-id"
	}
	if missing != "" {
		return HighTrustCertificate{}, scerrors.ValidationError{Strategy: string(KindHighTrustCertificate), MissingField: missing}
	}
	return HighTrustCertificate{
		ClientID:     clientID,
		CertPath:     certPath,
		CertPassword: certPassword,
		IssuerID:     issuerID,
	}, nil
}
