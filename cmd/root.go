package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillauth/cli/internal/auth"
	"github.com/skillauth/cli/internal/config"
)

var (
	// Command line flags
	storePath  string
	configPath string
	version    = "1.0.0" // This will be set during build
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "skillauth",
	Short: "skillauth - Credential and session manager for skill scripts",
	Long: `skillauth manages per-provider, per-account authentication material for
skill scripts: it stores secrets on local disk, refreshes expiring OAuth
tokens, and drives the one-time browser authorization when no valid
credential exists.

All command output is a single JSON object on stdout; prompts and progress
go to stderr.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// loadStore opens the credential store, honoring --store and SKILLAUTH_STORE.
func loadStore() (*auth.Store, error) {
	path := storePath
	if path == "" {
		var err error
		path, err = auth.DefaultStorePath()
		if err != nil {
			return nil, err
		}
	}
	return auth.Load(path)
}

// loadRegistry opens the provider registry, honoring --config and SKILLAUTH_CONFIG.
func loadRegistry() (*config.Registry, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}
	return config.LoadRegistry(path)
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "Path to the credential store file (default ~/.skillauth/credentials.json)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the provider config file (default ~/.skillauth/providers.yaml)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of skillauth",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("skillauth v%s\n", version)
		},
	}

	rootCmd.AddCommand(versionCmd)
}
