package cmd

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/skillauth/cli/internal/auth"
	"github.com/skillauth/cli/internal/oauth"
)

// hintStyle renders interactive progress lines on stderr. Stdout carries
// nothing but the final JSON object.
var hintStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

// errorBody is the JSON failure shape every command emits on stdout.
type errorBody struct {
	Error       bool   `json:"error"`
	Message     string `json:"message"`
	Remediation string `json:"remediation,omitempty"`
}

// emit writes v as an indented JSON object to stdout.
func emit(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// remediation maps the error taxonomy to the command the user should run next.
func remediation(err error) string {
	switch {
	case errors.Is(err, auth.ErrCorruptStore):
		return "Inspect the store file, or delete it and log in again."
	case errors.Is(err, auth.ErrAccountNotFound), errors.Is(err, auth.ErrNoDefaultAccount):
		return "Run 'skillauth accounts' to see stored accounts, or 'skillauth login' to add one."
	case errors.Is(err, auth.ErrReauthRequired):
		return "Run 'skillauth login' to reauthorize this account."
	case errors.Is(err, oauth.ErrAuthorizationTimeout):
		return "Re-run the command and complete the browser flow within the time limit."
	default:
		return ""
	}
}

// runJSON wraps a command handler so every outcome lands on stdout as a
// single JSON object, the error shape included, and the process still exits
// non-zero on failure.
func runJSON(fn func(cmd *cobra.Command, args []string) (any, error)) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		result, err := fn(cmd, args)
		if err != nil {
			_ = emit(errorBody{Error: true, Message: err.Error(), Remediation: remediation(err)})
			return err
		}
		return emit(result)
	}
}
