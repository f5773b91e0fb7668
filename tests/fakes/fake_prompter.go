package fakes

import (
	"github.com/systmms/sitectl/internal/auth"
	"github.com/systmms/sitectl/internal/secure"
)

// FakePrompter returns a fixed credential, or an error, instead of
// touching the terminal.
type FakePrompter struct {
	Username string
	Password string
	Err      error

	// Prompts records every title the prompt was shown with.
	Prompts []string
}

// PromptCredential returns the canned credential.
func (f *FakePrompter) PromptCredential(title string) (auth.PromptedCredential, error) {
	f.Prompts = append(f.Prompts, title)
	if f.Err != nil {
		return auth.PromptedCredential{}, f.Err
	}
	return auth.PromptedCredential{
		Username: f.Username,
		Secret:   secure.NewBufferFromString(f.Password),
	}, nil
}
