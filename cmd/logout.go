package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/skillauth/cli/internal/auth"
)

var (
	logoutProvider string
	logoutAccount  string
)

type logoutResult struct {
	Provider string `json:"provider"`
	Account  string `json:"account_label,omitempty"`
	Removed  bool   `json:"removed"`
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove a stored account credential",
	Long: `Remove the credential for an account. With --account the named account is
removed; without it the provider's default account is. Logging out an
account that does not exist is a no-op, so logout is safe to re-run.`,
	RunE: runJSON(runLogout),
}

func runLogout(cmd *cobra.Command, args []string) (any, error) {
	store, err := loadStore()
	if err != nil {
		return nil, err
	}

	label := logoutAccount
	if label == "" {
		rec, err := store.Resolve(logoutProvider, "")
		if errors.Is(err, auth.ErrNoDefaultAccount) && len(store.List(logoutProvider)) == 0 {
			// Nothing stored for this provider; idempotent success.
			return logoutResult{Provider: logoutProvider, Removed: false}, nil
		}
		if err != nil {
			return nil, err
		}
		label = rec.AccountLabel
	}

	existed := len(store.Providers[logoutProvider]) > 0
	if existed {
		_, existed = store.Providers[logoutProvider][label]
	}
	store.Remove(logoutProvider, label)
	if existed {
		if err := store.Save(); err != nil {
			return nil, err
		}
	}

	return logoutResult{Provider: logoutProvider, Account: label, Removed: existed}, nil
}

func init() {
	logoutCmd.Flags().StringVar(&logoutProvider, "provider", "", "Provider to log out of (required)")
	logoutCmd.Flags().StringVar(&logoutAccount, "account", "", "Account label (defaults to the provider's default account)")
	_ = logoutCmd.MarkFlagRequired("provider")

	rootCmd.AddCommand(logoutCmd)
}
