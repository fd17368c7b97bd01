package cmd

import (
	"github.com/spf13/cobra"

	"github.com/skillauth/cli/internal/auth"
)

var (
	accountsProvider   string
	setDefaultProvider string
	setDefaultAccount  string
)

type accountsResult struct {
	Accounts []auth.Account `json:"accounts"`
}

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List stored accounts",
	Long: `List stored accounts across providers, or for one provider with
--provider. Secret material is never included.`,
	RunE: runJSON(func(cmd *cobra.Command, args []string) (any, error) {
		store, err := loadStore()
		if err != nil {
			return nil, err
		}
		return accountsResult{Accounts: store.List(accountsProvider)}, nil
	}),
}

var setDefaultCmd = &cobra.Command{
	Use:   "set-default",
	Short: "Mark an account as its provider's default",
	RunE: runJSON(func(cmd *cobra.Command, args []string) (any, error) {
		store, err := loadStore()
		if err != nil {
			return nil, err
		}
		if err := store.SetDefault(setDefaultProvider, setDefaultAccount); err != nil {
			return nil, err
		}
		if err := store.Save(); err != nil {
			return nil, err
		}
		return accountsResult{Accounts: store.List(setDefaultProvider)}, nil
	}),
}

func init() {
	accountsCmd.Flags().StringVar(&accountsProvider, "provider", "", "Only list accounts for this provider")

	setDefaultCmd.Flags().StringVar(&setDefaultProvider, "provider", "", "Provider the account belongs to (required)")
	setDefaultCmd.Flags().StringVar(&setDefaultAccount, "account", "", "Account label to make default (required)")
	_ = setDefaultCmd.MarkFlagRequired("provider")
	_ = setDefaultCmd.MarkFlagRequired("account")

	accountsCmd.AddCommand(setDefaultCmd)
	rootCmd.AddCommand(accountsCmd)
}
