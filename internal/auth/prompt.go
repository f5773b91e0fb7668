package auth

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	scerrors "github.com/systmms/sitectl/internal/errors"
	"github.com/systmms/sitectl/internal/secure"
)

// PromptedCredential is what an interactive prompt returns.
type PromptedCredential struct {
	Username string
	Secret   *secure.Buffer
}

// CredentialPrompter asks the user for a credential. Implemented by
// TerminalPrompter; tests inject their own.
type CredentialPrompter interface {
	PromptCredential(title string) (PromptedCredential, error)
}

// TerminalPrompter reads a username and password from the controlling
// terminal, with the password hidden from echo.
type TerminalPrompter struct{}

// PromptCredential prompts on stderr and reads from stdin. An empty
// username or EOF cancels the prompt.
func (TerminalPrompter) PromptCredential(title string) (PromptedCredential, error) {
	fmt.Fprintf(os.Stderr, "%s\n", title)

	fmt.Fprint(os.Stderr, "Username: ")
	reader := bufio.NewReader(os.Stdin)
	username, err := reader.ReadString('\n')
	if err != nil {
		return PromptedCredential{}, scerrors.PromptCancelledError{}
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return PromptedCredential{}, scerrors.PromptCancelledError{}
	}

	fmt.Fprint(os.Stderr, "Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return PromptedCredential{}, scerrors.PromptCancelledError{}
	}

	return PromptedCredential{
		Username: username,
		Secret:   secure.NewBuffer(password),
	}, nil
}
