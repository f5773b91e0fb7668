package commands

import (
	"github.com/systmms/sitectl/internal/auth"
	"github.com/systmms/sitectl/internal/config"
	"github.com/systmms/sitectl/internal/session"
)

// Runtime is the state shared by every command in a process: the parsed
// configuration, the single connection slot, and the credential prompt.
// Commands receive it instead of reaching for globals so the shell
// command and tests can run them against their own instances.
type Runtime struct {
	Config   *config.Config
	Slot     *session.Slot
	Prompter auth.CredentialPrompter
}

// NewRuntime creates the process runtime around a config placeholder.
// The config's Logger and Path are filled in by the root command's
// PersistentPreRun once flags are parsed.
func NewRuntime(cfg *config.Config) *Runtime {
	return &Runtime{
		Config:   cfg,
		Slot:     session.NewSlot(),
		Prompter: auth.TerminalPrompter{},
	}
}
