package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/skillauth/cli/internal/auth"
	"github.com/skillauth/cli/internal/config"
	"github.com/skillauth/cli/internal/oauth"
)

var (
	loginProvider string
	loginAccount  string
	loginAPIKey   string
	loginBotToken string
	loginCookie   string
)

// loginResult is the stdout shape on a successful login. Secret material
// never appears here.
type loginResult struct {
	Provider  string          `json:"provider"`
	Account   string          `json:"account_label"`
	Kind      auth.SecretKind `json:"kind"`
	Default   bool            `json:"default"`
	ExpiresAt *time.Time      `json:"expires_at"`
	Store     string          `json:"store"`
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate an account with a provider",
	Long: `Log in to a provider and store the resulting credential.

OAuth providers open a browser for a one-time authorization; key- and
token-based providers take the secret on the command line instead.

Examples:
  # Browser-based OAuth login
  skillauth login --provider google --account work

  # Non-expiring secrets, no browser involved
  skillauth login --provider fal --api-key KEY
  skillauth login --provider slack --account myteam --bot-token xoxb-...
  skillauth login --provider wyze --cookie SESSION`,
	RunE: runJSON(runLogin),
}

func runLogin(cmd *cobra.Command, args []string) (any, error) {
	registry, err := loadRegistry()
	if err != nil {
		return nil, err
	}
	provider, err := registry.Lookup(loginProvider)
	if err != nil {
		return nil, err
	}
	store, err := loadStore()
	if err != nil {
		return nil, err
	}

	label := loginAccount
	if label == "" {
		label = "default"
	}

	secret, expiresAt, err := obtainSecret(cmd, registry, provider)
	if err != nil {
		return nil, err
	}

	rec := auth.NewRecord(provider.Name, label, secret, expiresAt)
	store.Put(rec)
	if err := store.Save(); err != nil {
		return nil, err
	}

	return loginResult{
		Provider:  rec.Provider,
		Account:   rec.AccountLabel,
		Kind:      rec.Secret.Kind,
		Default:   rec.Default,
		ExpiresAt: rec.ExpiresAt,
		Store:     store.Path(),
	}, nil
}

// obtainSecret picks the login path: pasted secret flags for non-expiring
// kinds, the browser flow for OAuth providers.
func obtainSecret(cmd *cobra.Command, registry *config.Registry, provider config.Provider) (auth.Secret, *time.Time, error) {
	pasted := 0
	for _, v := range []string{loginAPIKey, loginBotToken, loginCookie} {
		if v != "" {
			pasted++
		}
	}
	if pasted > 1 {
		return auth.Secret{}, nil, fmt.Errorf("pass at most one of --api-key, --bot-token, --cookie")
	}

	switch {
	case loginAPIKey != "":
		return auth.Secret{Kind: auth.KindAPIKey, APIKey: loginAPIKey}, nil, nil
	case loginBotToken != "":
		return auth.Secret{Kind: auth.KindBotToken, BotToken: loginBotToken}, nil, nil
	case loginCookie != "":
		return auth.Secret{Kind: auth.KindCookie, Cookie: loginCookie}, nil, nil
	}

	if !provider.OAuth() {
		flag := map[auth.SecretKind]string{
			auth.KindAPIKey:   "--api-key",
			auth.KindBotToken: "--bot-token",
			auth.KindCookie:   "--cookie",
		}[provider.Kind]
		return auth.Secret{}, nil, fmt.Errorf("provider %q uses %s secrets: pass %s", provider.Name, provider.Kind, flag)
	}

	// The browser flow blocks on user action; refuse to hang in headless
	// contexts (CI, cron, piped stdin).
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return auth.Secret{}, nil, fmt.Errorf("interactive login for %q requires a terminal: run 'skillauth login --provider %s' interactively first",
			provider.Name, provider.Name)
	}

	fmt.Fprintln(os.Stderr, hintStyle.Render(fmt.Sprintf("Authorizing with %s", provider.Name)))

	flow := oauth.NewFlow(oauth.NewClient(registry), os.Stderr)
	secret, expiresAt, err := flow.Authorize(cmd.Context(), provider)
	if err != nil {
		return auth.Secret{}, nil, err
	}
	return secret, &expiresAt, nil
}

func init() {
	loginCmd.Flags().StringVar(&loginProvider, "provider", "", "Provider to authenticate with (required)")
	loginCmd.Flags().StringVar(&loginAccount, "account", "", "Account label (default \"default\")")
	loginCmd.Flags().StringVar(&loginAPIKey, "api-key", "", "Store this API key instead of running the browser flow")
	loginCmd.Flags().StringVar(&loginBotToken, "bot-token", "", "Store this bot token instead of running the browser flow")
	loginCmd.Flags().StringVar(&loginCookie, "cookie", "", "Store this session cookie instead of running the browser flow")
	_ = loginCmd.MarkFlagRequired("provider")

	rootCmd.AddCommand(loginCmd)
}
