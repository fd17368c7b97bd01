package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/skillauth/cli/internal/auth"
	"github.com/skillauth/cli/internal/oauth"
)

var (
	tokenProvider string
	tokenAccount  string
)

// tokenResult hands the bearer credential to the calling skill. This is the
// one command whose output intentionally carries the secret: its entire
// purpose is "give me a credential I can attach to a request".
type tokenResult struct {
	Provider  string          `json:"provider"`
	Account   string          `json:"account_label"`
	Kind      auth.SecretKind `json:"kind"`
	TokenType string          `json:"token_type,omitempty"`
	Token     string          `json:"token"`
	ExpiresAt *time.Time      `json:"expires_at"`
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a currently-usable bearer credential",
	Long: `Resolve an account, refresh its token if it is expired or about to
expire, and print the bearer credential as JSON. Skill scripts call this
instead of touching the store themselves.

Examples:
  skillauth token --provider google
  skillauth token --provider slack --account myteam`,
	RunE: runJSON(runToken),
}

func runToken(cmd *cobra.Command, args []string) (any, error) {
	registry, err := loadRegistry()
	if err != nil {
		return nil, err
	}
	store, err := loadStore()
	if err != nil {
		return nil, err
	}

	rec, err := store.Resolve(tokenProvider, tokenAccount)
	if err != nil {
		return nil, err
	}

	manager := auth.NewManager(store, oauth.NewClient(registry))
	rec, err = manager.EnsureFresh(cmd.Context(), rec)
	if err != nil {
		return nil, err
	}

	// Persist the last_used_at stamp from Resolve. EnsureFresh already saved
	// when it refreshed; saving twice is harmless.
	if err := store.Save(); err != nil {
		return nil, err
	}

	return tokenResult{
		Provider:  rec.Provider,
		Account:   rec.AccountLabel,
		Kind:      rec.Secret.Kind,
		TokenType: rec.Secret.TokenType,
		Token:     rec.Secret.Bearer(),
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

func init() {
	tokenCmd.Flags().StringVar(&tokenProvider, "provider", "", "Provider to get a credential for (required)")
	tokenCmd.Flags().StringVar(&tokenAccount, "account", "", "Account label (defaults to the provider's default account)")
	_ = tokenCmd.MarkFlagRequired("provider")

	rootCmd.AddCommand(tokenCmd)
}
