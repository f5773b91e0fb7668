package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/systmms/sitectl/cmd/sitectl/commands"
	"github.com/systmms/sitectl/internal/config"
	"github.com/systmms/sitectl/internal/logging"
	"github.com/systmms/sitectl/internal/secure"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	defer secure.Purge()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Global flags
	var (
		configFile     string
		noColor        bool
		debug          bool
		nonInteractive bool
	)

	// Create config placeholder
	cfg := &config.Config{}
	rt := commands.NewRuntime(cfg)

	rootCmd := &cobra.Command{
		Use:   "sitectl",
		Short: "Connect to site servers and issue authenticated requests",
		Long: `sitectl authenticates against a site server using one of several
strategies (stored credentials, federation, app tokens, Azure AD,
high-trust certificates) and holds the resulting connection for
downstream requests.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize logger with parsed flags
			logger := logging.New(debug, noColor)

			// Update config with parsed values
			cfg.Path = configFile
			cfg.Logger = logger
			cfg.NonInteractive = nonInteractive
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "sitectl.yaml", "Config file path")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Never prompt for credentials")

	// Add commands
	rootCmd.AddCommand(
		commands.NewConnectCommand(rt),
		commands.NewStatusCommand(rt),
		commands.NewInvokeCommand(rt),
		commands.NewSitesCommand(rt),
		commands.NewShellCommand(rt),
		commands.NewCompletionCommand(rt),
	)

	return rootCmd.Execute()
}
