package auth

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	scerrors "github.com/systmms/sitectl/internal/errors"
	"github.com/systmms/sitectl/internal/logging"
	"github.com/systmms/sitectl/internal/strategy"
)

// azureCloud maps an environment name to the matching cloud instance
// configuration. Germany has no canned configuration in the SDK; its
// authority host is set explicitly.
func azureCloud(env strategy.AzureEnvironment) cloud.Configuration {
	switch env {
	case strategy.AzureEnvironmentUSGovernment:
		return cloud.AzureGovernment
	case strategy.AzureEnvironmentChina:
		return cloud.AzureChina
	case strategy.AzureEnvironmentGermany:
		return cloud.Configuration{ActiveDirectoryAuthorityHost: "https://login.microsoftonline.de/"}
	default:
		return cloud.AzurePublic
	}
}

// resourceScope turns a base address into the default AAD scope for it.
func resourceScope(resource string) string {
	return resource + "/.default"
}

// bearerContext wraps a token credential into an authorization context
// that refreshes shortly before expiry. Refresh goes back through the
// credential, which consults its own cache first.
func bearerContext(kind strategy.Kind, principal, scope string, cred azcore.TokenCredential) *Context {
	var token azcore.AccessToken
	return NewContext(kind, principal, func(req *http.Request) error {
		if token.Token == "" || time.Until(token.ExpiresOn) < time.Minute {
			refreshed, err := cred.GetToken(req.Context(), policy.TokenRequestOptions{Scopes: []string{scope}})
			if err != nil {
				return classifyAADError(kind, err)
			}
			token = refreshed
		}
		req.Header.Set("Authorization", "Bearer "+token.Token)
		return nil
	})
}

// acquire performs the initial blocking token acquisition so that a
// connect attempt fails synchronously rather than on first use.
func acquire(ctx context.Context, kind strategy.Kind, principal, scope string, cred azcore.TokenCredential) (*Context, error) {
	if _, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{scope}}); err != nil {
		return nil, classifyAADError(kind, err)
	}
	return bearerContext(kind, principal, scope, cred), nil
}

// NativeAppExchanger signs a user in interactively through a
// caller-registered native application, via the system browser.
type NativeAppExchanger struct {
	logger *logging.Logger
}

func (e *NativeAppExchanger) Kind() strategy.Kind { return strategy.KindNativeAppAAD }

func (e *NativeAppExchanger) Exchange(ctx context.Context, s strategy.AuthStrategy, opts Options) (*Context, error) {
	native, ok := s.(strategy.NativeAppAAD)
	if !ok {
		return nil, fmt.Errorf("native-app exchanger invoked with %s strategy", s.Kind())
	}

	cred, err := azidentity.NewInteractiveBrowserCredential(&azidentity.InteractiveBrowserCredentialOptions{
		ClientID:    native.ClientID,
		RedirectURL: native.RedirectURI,
		ClientOptions: policy.ClientOptions{
			Cloud: azureCloud(native.AzureEnvironment),
		},
	})
	if err != nil {
		return nil, scerrors.AuthFailedError{Strategy: string(e.Kind()), Reason: "failed to initialize browser sign-in", Err: err}
	}

	e.logger.Debug("Starting browser sign-in for client %s", native.ClientID)
	return acquire(ctx, e.Kind(), native.ClientID, resourceScope(opts.Resource), cred)
}

// WebLoginExchanger signs a user in through a device-code flow: the user
// completes the sign-in in any browser, on any machine. Used when no
// application of the caller's own is registered.
type WebLoginExchanger struct {
	logger *logging.Logger
}

func (e *WebLoginExchanger) Kind() strategy.Kind { return strategy.KindWebLogin }

func (e *WebLoginExchanger) Exchange(ctx context.Context, s strategy.AuthStrategy, opts Options) (*Context, error) {
	web, ok := s.(strategy.WebLogin)
	if !ok {
		return nil, fmt.Errorf("web-login exchanger invoked with %s strategy", s.Kind())
	}

	cred, err := azidentity.NewDeviceCodeCredential(&azidentity.DeviceCodeCredentialOptions{
		ClientOptions: policy.ClientOptions{
			Cloud: azureCloud(web.AzureEnvironment),
		},
		UserPrompt: func(ctx context.Context, message azidentity.DeviceCodeMessage) error {
			fmt.Fprintln(os.Stderr, message.Message)
			return nil
		},
	})
	if err != nil {
		return nil, scerrors.AuthFailedError{Strategy: string(e.Kind()), Reason: "failed to initialize device-code sign-in", Err: err}
	}

	return acquire(ctx, e.Kind(), "device-code user", resourceScope(opts.Resource), cred)
}

// ManagementShellExchanger signs in through the fixed pre-registered
// management application.
type ManagementShellExchanger struct {
	logger *logging.Logger
}

func (e *ManagementShellExchanger) Kind() strategy.Kind { return strategy.KindManagementShell }

func (e *ManagementShellExchanger) Exchange(ctx context.Context, s strategy.AuthStrategy, opts Options) (*Context, error) {
	shell, ok := s.(strategy.ManagementShell)
	if !ok {
		return nil, fmt.Errorf("management-shell exchanger invoked with %s strategy", s.Kind())
	}

	cred, err := azidentity.NewDeviceCodeCredential(&azidentity.DeviceCodeCredentialOptions{
		ClientID: shell.ClientID,
		ClientOptions: policy.ClientOptions{
			Cloud: azureCloud(shell.AzureEnvironment),
		},
		UserPrompt: func(ctx context.Context, message azidentity.DeviceCodeMessage) error {
			fmt.Fprintln(os.Stderr, message.Message)
			return nil
		},
	})
	if err != nil {
		return nil, scerrors.AuthFailedError{Strategy: string(e.Kind()), Reason: "failed to initialize management-shell sign-in", Err: err}
	}

	return acquire(ctx, e.Kind(), shell.ClientID, resourceScope(opts.Resource), cred)
}

// AppOnlyExchanger authenticates app-only with a client certificate.
type AppOnlyExchanger struct {
	logger *logging.Logger
}

func (e *AppOnlyExchanger) Kind() strategy.Kind { return strategy.KindAppOnlyAAD }

func (e *AppOnlyExchanger) Exchange(ctx context.Context, s strategy.AuthStrategy, opts Options) (*Context, error) {
	appOnly, ok := s.(strategy.AppOnlyAAD)
	if !ok {
		return nil, fmt.Errorf("app-only exchanger invoked with %s strategy", s.Kind())
	}

	certs, key, err := loadCertificate(appOnly.CertificatePath, appOnly.CertificatePassword)
	if err != nil {
		return nil, err
	}

	cred, err := azidentity.NewClientCertificateCredential(appOnly.Tenant, appOnly.ClientID, certs, key, &azidentity.ClientCertificateCredentialOptions{
		ClientOptions: policy.ClientOptions{
			Cloud: azureCloud(appOnly.AzureEnvironment),
		},
		SendCertificateChain: true,
	})
	if err != nil {
		return nil, scerrors.AuthFailedError{Strategy: string(e.Kind()), Reason: "failed to initialize certificate credential", Err: err}
	}

	e.logger.Debug("Requesting app-only token for client %s in tenant %s", appOnly.ClientID, appOnly.Tenant)
	return acquire(ctx, e.Kind(), appOnly.ClientID, resourceScope(opts.Resource), cred)
}
