package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	scerrors "github.com/systmms/sitectl/internal/errors"
	"github.com/systmms/sitectl/internal/logging"
)

// Config holds the runtime configuration
type Config struct {
	Path           string
	Logger         *logging.Logger
	NonInteractive bool
	Definition     *Definition

	loaded bool
}

// Definition represents the sitectl.yaml structure
type Definition struct {
	Version         int                    `yaml:"version"`
	Defaults        Defaults               `yaml:"defaults,omitempty"`
	CredentialStore CredentialStoreConfig  `yaml:"credentialStore,omitempty"`
	Sites           map[string]SiteProfile `yaml:"sites,omitempty"`
}

// Defaults carries retry and timeout tuning applied to every connection
// unless overridden on the command line.
type Defaults struct {
	RetryCount         *int `yaml:"retryCount,omitempty"`
	RetryWaitSeconds   *int `yaml:"retryWaitSeconds,omitempty"`
	RequestTimeoutMs   *int `yaml:"requestTimeoutMs,omitempty"`
	MinimalHealthScore *int `yaml:"minimalHealthScore,omitempty"`
}

// CredentialStoreConfig selects and configures the local credential store
type CredentialStoreConfig struct {
	Type    string                 `yaml:"type,omitempty"`
	Service string                 `yaml:"service,omitempty"`
	Entries map[string]StoreEntry  `yaml:"entries,omitempty"`
	Config  map[string]interface{} `yaml:",inline"`
}

// StoreEntry is a literal credential for the memory store type. Intended
// for development setups only; production credentials belong in the
// OS keyring.
type StoreEntry struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// SiteProfile is a named connection target with pre-filled request fields.
// Explicit command-line flags always win over profile values.
type SiteProfile struct {
	URL              string `yaml:"url"`
	AdminURL         string `yaml:"adminUrl,omitempty"`
	AuthMode         string `yaml:"authMode,omitempty"`
	ClientID         string `yaml:"clientId,omitempty"`
	RedirectURI      string `yaml:"redirectUri,omitempty"`
	Tenant           string `yaml:"tenant,omitempty"`
	AzureEnvironment string `yaml:"azureEnvironment,omitempty"`
	SkipAdminCheck   bool   `yaml:"skipAdminCheck,omitempty"`
}

// Load reads and parses the sitectl.yaml file. A missing file is not an
// error: all configuration is optional and the command line carries the
// full surface.
func (c *Config) Load() error {
	if c.loaded {
		return nil
	}

	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			c.Definition = &Definition{Version: 1}
			c.loaded = true
			return nil
		}
		return scerrors.UserError{
			Message:    fmt.Sprintf("Failed to read config file '%s'", c.Path),
			Details:    err.Error(),
			Suggestion: "Check the file exists and is readable",
		}
	}

	if err := ValidateDocument(data); err != nil {
		return err
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return scerrors.ConfigError{
			Field:      "sitectl.yaml",
			Message:    "invalid YAML: " + err.Error(),
			Suggestion: "Check for indentation errors and missing quotes",
		}
	}

	if def.Version == 0 {
		def.Version = 1
	}
	if def.Version != 1 {
		return scerrors.ConfigError{
			Field:      "version",
			Value:      def.Version,
			Message:    "unsupported config version",
			Suggestion: "This sitectl release supports version 1",
		}
	}

	c.Definition = &def
	c.loaded = true
	return nil
}

// GetSite returns the named site profile
func (c *Config) GetSite(name string) (SiteProfile, error) {
	if c.Definition == nil || c.Definition.Sites == nil {
		return SiteProfile{}, scerrors.ConfigError{
			Field:      "sites",
			Value:      name,
			Message:    "no sites configured",
			Suggestion: fmt.Sprintf("Add a 'sites.%s' entry to %s", name, c.Path),
		}
	}

	site, ok := c.Definition.Sites[name]
	if !ok {
		available := make([]string, 0, len(c.Definition.Sites))
		for siteName := range c.Definition.Sites {
			available = append(available, siteName)
		}
		return SiteProfile{}, scerrors.ConfigError{
			Field:      "sites",
			Value:      name,
			Message:    "site profile not found",
			Suggestion: fmt.Sprintf("Available sites: %v", available),
		}
	}
	return site, nil
}
