package cmd

import (
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/skillauth/cli/internal/auth"
)

// statusAccount is one account in status output, secret masked for display.
type statusAccount struct {
	Provider     string          `json:"provider"`
	Account      string          `json:"account_label"`
	Kind         auth.SecretKind `json:"kind"`
	Default      bool            `json:"default"`
	MaskedSecret string          `json:"masked_secret"`
	ExpiresAt    *time.Time      `json:"expires_at"`
	LastUsedAt   time.Time       `json:"last_used_at"`
}

type statusResult struct {
	Store     string          `json:"store"`
	Providers []string        `json:"configured_providers"`
	Accounts  []statusAccount `json:"accounts"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current authentication state",
	RunE: runJSON(func(cmd *cobra.Command, args []string) (any, error) {
		registry, err := loadRegistry()
		if err != nil {
			return nil, err
		}
		store, err := loadStore()
		if err != nil {
			return nil, err
		}

		accounts := []statusAccount{}
		for _, acct := range store.List("") {
			rec := store.Providers[acct.Provider][acct.Label]
			accounts = append(accounts, statusAccount{
				Provider:     acct.Provider,
				Account:      acct.Label,
				Kind:         acct.Kind,
				Default:      acct.Default,
				MaskedSecret: rec.Secret.Masked(),
				ExpiresAt:    rec.ExpiresAt,
				LastUsedAt:   rec.LastUsedAt,
			})
		}

		names := registry.Names()
		sort.Strings(names)

		return statusResult{
			Store:     store.Path(),
			Providers: names,
			Accounts:  accounts,
		}, nil
	}),
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
