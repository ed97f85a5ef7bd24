package archive

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// PasswordPrompt captures a secret from the user. Implementations return the
// entered secret, which may be empty. The pipeline holds the result in
// memory only and never logs it.
type PasswordPrompt func(promptText string) (string, error)

// TerminalPrompt reads a password from the controlling terminal without
// echoing it. The prompt itself goes to stderr so piped stdout stays clean.
func TerminalPrompt(promptText string) (string, error) {
	fmt.Fprint(os.Stderr, promptText)
	passwordBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(passwordBytes), nil
}
