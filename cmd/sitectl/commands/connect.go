package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systmms/sitectl/internal/auth"
	"github.com/systmms/sitectl/internal/config"
	"github.com/systmms/sitectl/internal/credentials"
	"github.com/systmms/sitectl/internal/credstores"
	scerrors "github.com/systmms/sitectl/internal/errors"
	"github.com/systmms/sitectl/internal/secure"
	"github.com/systmms/sitectl/internal/session"
	"github.com/systmms/sitectl/internal/strategy"
	"github.com/systmms/sitectl/internal/tokencache"
)

func NewConnectCommand(rt *Runtime) *cobra.Command {
	var (
		siteName string

		username string
		password string

		currentUser     bool
		useADFS         bool
		authMode        string
		appID           string
		appSecret       string
		realm           string
		webLogin        bool
		managementShell bool

		clientID         string
		redirectURI      string
		tenant           string
		certPath         string
		certPassword     string
		azureEnvironment string
		clearTokenCache  bool

		highTrustCertPath     string
		highTrustCertPassword string
		issuerID              string

		adminURL           string
		skipAdminCheck     bool
		minimalHealthScore int
		retryCount         int
		retryWait          int
		requestTimeout     int
		ignoreSSLErrors    bool
	)

	cmd := &cobra.Command{
		Use:   "connect [url]",
		Short: "Authenticate against a site server and open the connection",
		Long: `Authenticate against a site server and install the resulting
connection as the current one for this process.

Exactly one authentication strategy is engaged per attempt. With no
strategy flags, the credential store is searched for an entry matching
the target address, falling back to progressively broader address
prefixes; if nothing matches you are prompted.

Examples:
  # Credential from the OS keyring, or an interactive prompt
  sitectl connect https://contoso.example/sites/teamA

  # Connect via a named site profile from sitectl.yaml
  sitectl connect --site teamA

  # App-only token authentication
  sitectl connect https://contoso.example --app-id <id> --app-secret <secret>

  # Device-code sign-in from a browserless host
  sitectl connect https://contoso.example --web-login`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rt.Config
			if err := cfg.Load(); err != nil {
				return err
			}

			var profile config.SiteProfile
			if siteName != "" {
				site, err := cfg.GetSite(siteName)
				if err != nil {
					return err
				}
				profile = site
			}

			target := profile.URL
			if len(args) == 1 {
				target = args[0]
			}
			if target == "" {
				return scerrors.UserError{
					Message:    "A target URL is required",
					Suggestion: "Pass the site URL as an argument or use --site <name>",
				}
			}

			req := strategy.NewConnectRequest(target)

			req.Username = username
			if cmd.Flags().Changed("password") {
				req.Password = secure.NewBufferFromString(password)
			}
			req.CurrentUser = currentUser
			req.UseADFS = useADFS
			req.AuthMode = strategy.AuthMode(authMode)
			req.AppID = appID
			req.AppSecret = appSecret
			req.Realm = realm
			req.WebLogin = webLogin
			req.ManagementShell = managementShell
			req.ClientID = clientID
			req.RedirectURI = redirectURI
			req.Tenant = tenant
			req.CertPath = certPath
			req.CertPassword = certPassword
			req.AzureEnvironment = strategy.AzureEnvironment(azureEnvironment)
			req.ClearTokenCache = clearTokenCache
			req.HighTrustCertPath = highTrustCertPath
			req.HighTrustCertPassword = highTrustCertPassword
			req.IssuerID = issuerID
			req.AdminURL = adminURL
			req.SkipAdminCheck = skipAdminCheck
			req.MinimalHealthScore = minimalHealthScore
			req.RetryCount = retryCount
			req.RetryWaitSeconds = retryWait
			req.RequestTimeoutMs = requestTimeout
			req.IgnoreSSLErrors = ignoreSSLErrors

			applySiteProfile(&req, profile, cmd.Flags().Changed)
			applyConfigDefaults(&req, cfg.Definition.Defaults, cmd.Flags().Changed)

			if !req.AzureEnvironment.Valid() {
				return scerrors.ConfigError{
					Field:      "azure-environment",
					Value:      string(req.AzureEnvironment),
					Message:    "unknown Azure environment",
					Suggestion: "Use one of: production, usgovernment, china, germany",
				}
			}

			conn, err := runConnect(cmd.Context(), rt, req)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Connected to %s as %s (%s)\n",
				conn.BaseURL(), conn.Principal(), conn.Strategy())
			return nil
		},
	}

	cmd.Flags().StringVar(&siteName, "site", "", "Named site profile from sitectl.yaml")

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username for credential authentication")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password for credential authentication (prefer the credential store)")

	cmd.Flags().BoolVar(&currentUser, "current-user", false, "Use the current OS session when no credential resolves")
	cmd.Flags().BoolVar(&useADFS, "adfs", false, "Authenticate through the federation token endpoint")
	cmd.Flags().StringVar(&authMode, "auth-mode", string(strategy.AuthModeDefault), "Credential presentation mode: default or forms")
	cmd.Flags().StringVar(&appID, "app-id", "", "Application ID for app-token authentication")
	cmd.Flags().StringVar(&appSecret, "app-secret", "", "Application secret for app-token authentication")
	cmd.Flags().StringVar(&realm, "realm", "", "Token realm; discovered from the server when omitted")
	cmd.Flags().BoolVar(&webLogin, "web-login", false, "Sign in with a device code in an external browser")
	cmd.Flags().BoolVar(&managementShell, "management-shell", false, "Device-code sign-in using the management shell application")

	cmd.Flags().StringVar(&clientID, "client-id", "", "Azure AD application (client) ID")
	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "Redirect URI of the Azure AD native application")
	cmd.Flags().StringVar(&tenant, "tenant", "", "Azure AD tenant for app-only certificate authentication")
	cmd.Flags().StringVar(&certPath, "cert-path", "", "Certificate file for app-only certificate authentication")
	cmd.Flags().StringVar(&certPassword, "cert-password", "", "Password of the certificate file")
	cmd.Flags().StringVar(&azureEnvironment, "azure-environment", string(strategy.AzureEnvironmentProduction), "Azure cloud instance: production, usgovernment, china, germany")
	cmd.Flags().BoolVar(&clearTokenCache, "clear-token-cache", false, "Delete the token cache before signing in")

	cmd.Flags().StringVar(&highTrustCertPath, "high-trust-cert-path", "", "Certificate file for high-trust authentication (on-premises only)")
	cmd.Flags().StringVar(&highTrustCertPassword, "high-trust-cert-password", "", "Password of the high-trust certificate file")
	cmd.Flags().StringVar(&issuerID, "issuer-id", "", "Registered issuer ID for high-trust authentication")

	cmd.Flags().StringVar(&adminURL, "admin-url", "", "Admin endpoint override")
	cmd.Flags().BoolVar(&skipAdminCheck, "skip-admin-check", false, "Skip probing the admin endpoint")
	cmd.Flags().IntVar(&minimalHealthScore, "minimal-health-score", strategy.DefaultMinimalHealthScore, "Reject responses whose health score exceeds this value (-1 disables)")
	cmd.Flags().IntVar(&retryCount, "retry-count", strategy.DefaultRetryCount, "Retry attempts for throttled or unhealthy responses")
	cmd.Flags().IntVar(&retryWait, "retry-wait", strategy.DefaultRetryWaitSeconds, "Base wait between retries, in seconds")
	cmd.Flags().IntVar(&requestTimeout, "request-timeout", strategy.DefaultRequestTimeoutMs, "Per-request timeout in milliseconds")
	cmd.Flags().BoolVar(&ignoreSSLErrors, "ignore-ssl-errors", false, "Disable TLS certificate verification for this process")

	return cmd
}

// applySiteProfile fills request fields from the named profile. A flag
// the user set explicitly always wins over the profile value.
func applySiteProfile(req *strategy.ConnectRequest, profile config.SiteProfile, changed func(string) bool) {
	if profile.AuthMode != "" && !changed("auth-mode") {
		req.AuthMode = strategy.AuthMode(profile.AuthMode)
	}
	if profile.ClientID != "" && !changed("client-id") {
		req.ClientID = profile.ClientID
	}
	if profile.RedirectURI != "" && !changed("redirect-uri") {
		req.RedirectURI = profile.RedirectURI
	}
	if profile.Tenant != "" && !changed("tenant") {
		req.Tenant = profile.Tenant
	}
	if profile.AzureEnvironment != "" && !changed("azure-environment") {
		req.AzureEnvironment = strategy.AzureEnvironment(profile.AzureEnvironment)
	}
	if profile.AdminURL != "" && !changed("admin-url") {
		req.AdminURL = profile.AdminURL
	}
	if profile.SkipAdminCheck && !changed("skip-admin-check") {
		req.SkipAdminCheck = true
	}
}

// applyConfigDefaults overlays tuning defaults from sitectl.yaml onto
// request fields the user left at their built-in defaults.
func applyConfigDefaults(req *strategy.ConnectRequest, defaults config.Defaults, changed func(string) bool) {
	if defaults.RetryCount != nil && !changed("retry-count") {
		req.RetryCount = *defaults.RetryCount
	}
	if defaults.RetryWaitSeconds != nil && !changed("retry-wait") {
		req.RetryWaitSeconds = *defaults.RetryWaitSeconds
	}
	if defaults.RequestTimeoutMs != nil && !changed("request-timeout") {
		req.RequestTimeoutMs = *defaults.RequestTimeoutMs
	}
	if defaults.MinimalHealthScore != nil && !changed("minimal-health-score") {
		req.MinimalHealthScore = *defaults.MinimalHealthScore
	}
}

// runConnect drives strategy selection and the exchange. When selection
// fails only because no credential could be resolved, the user is
// prompted once and selection runs again with the prompted credential.
func runConnect(ctx context.Context, rt *Runtime, req strategy.ConnectRequest) (*session.Connection, error) {
	cfg := rt.Config
	logger := cfg.Logger

	store, err := credstores.NewRegistry().CreateStore(cfg.Definition.CredentialStore)
	if err != nil {
		return nil, scerrors.ConfigError{
			Field:      "credentialStore.type",
			Value:      cfg.Definition.CredentialStore.Type,
			Message:    err.Error(),
			Suggestion: "Supported store types: keyring, memory",
		}
	}

	selector := strategy.NewSelector(credentials.New(store, logger))
	selected, err := selector.Select(ctx, req)
	if err != nil {
		var unresolved scerrors.CredentialUnresolvedError
		if !errors.As(err, &unresolved) || cfg.NonInteractive || rt.Prompter == nil {
			return nil, err
		}
		prompted, promptErr := rt.Prompter.PromptCredential(
			fmt.Sprintf("Enter credentials for %s", unresolved.Address))
		if promptErr != nil {
			return nil, promptErr
		}
		req.Username = prompted.Username
		req.Password = prompted.Secret
		selected, err = selector.Select(ctx, req)
		if err != nil {
			return nil, err
		}
	}

	cache, err := tokencache.New()
	if err != nil {
		logger.Warn("Token cache unavailable: %v", err)
		cache = nil
	}

	factory := session.NewFactory(rt.Slot, auth.DefaultExchangers(logger), cache, logger)
	return factory.Connect(ctx, selected, req)
}
