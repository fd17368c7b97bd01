package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/skillauth/cli/internal/auth"
)

// providersFile is the YAML file name for provider overrides
const providersFile = "providers.yaml"

// Provider describes how to authenticate against one external service: which
// secret kind it uses and, for OAuth providers, the endpoints and client to
// drive the flow with.
type Provider struct {
	Name         string          `yaml:"-"`
	Kind         auth.SecretKind `yaml:"kind"`
	AuthURL      string          `yaml:"auth_url,omitempty"`
	TokenURL     string          `yaml:"token_url,omitempty"`
	ClientID     string          `yaml:"client_id,omitempty"`
	ClientSecret string          `yaml:"client_secret,omitempty"`
	Scopes       []string        `yaml:"scopes,omitempty"`
}

// OAuth reports whether the provider authenticates with browser-driven OAuth
// rather than a pasted key or token.
func (p Provider) OAuth() bool {
	return p.Kind == auth.KindOAuth
}

// builtins covers the providers the skills ship with. Endpoint URLs only;
// client id/secret always come from providers.yaml or the environment.
var builtins = map[string]Provider{
	"google": {
		Kind:     auth.KindOAuth,
		AuthURL:  "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL: "https://oauth2.googleapis.com/token",
		Scopes:   []string{"https://www.googleapis.com/auth/userinfo.email"},
	},
	"discord": {
		Kind:     auth.KindOAuth,
		AuthURL:  "https://discord.com/api/oauth2/authorize",
		TokenURL: "https://discord.com/api/oauth2/token",
		Scopes:   []string{"identify"},
	},
	"twitter": {
		Kind:     auth.KindOAuth,
		AuthURL:  "https://twitter.com/i/oauth2/authorize",
		TokenURL: "https://api.twitter.com/2/oauth2/token",
		Scopes:   []string{"tweet.read", "users.read", "offline.access"},
	},
	"reddit": {
		Kind:     auth.KindOAuth,
		AuthURL:  "https://www.reddit.com/api/v1/authorize",
		TokenURL: "https://www.reddit.com/api/v1/access_token",
		Scopes:   []string{"identity", "read"},
	},
	"linkedin": {
		Kind:     auth.KindOAuth,
		AuthURL:  "https://www.linkedin.com/oauth/v2/authorization",
		TokenURL: "https://www.linkedin.com/oauth/v2/accessToken",
		Scopes:   []string{"openid", "profile"},
	},
	"slack":      {Kind: auth.KindBotToken},
	"notion":     {Kind: auth.KindBotToken},
	"fal":        {Kind: auth.KindAPIKey},
	"elevenlabs": {Kind: auth.KindAPIKey},
	"linear":     {Kind: auth.KindAPIKey},
	"wyze":       {Kind: auth.KindCookie},
}

// Registry resolves provider names to their authentication configuration:
// built-in defaults, overlaid by providers.yaml, overlaid by environment
// variables (SKILLAUTH_<PROVIDER>_CLIENT_ID / _CLIENT_SECRET).
type Registry struct {
	providers map[string]Provider
}

// DefaultConfigPath returns ~/.skillauth/providers.yaml, or the value of
// SKILLAUTH_CONFIG when set.
func DefaultConfigPath() (string, error) {
	if p := os.Getenv("SKILLAUTH_CONFIG"); p != "" {
		return p, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".skillauth", providersFile), nil
}

// LoadRegistry builds the provider registry, merging the YAML file at path
// (if it exists) over the built-in defaults. A malformed file is an error; a
// missing one is not.
func LoadRegistry(path string) (*Registry, error) {
	providers := make(map[string]Provider, len(builtins))
	for name, p := range builtins {
		p.Name = name
		providers[name] = p
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err == nil {
		var file struct {
			Providers map[string]Provider `yaml:"providers"`
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		for name, override := range file.Providers {
			merged, ok := providers[name]
			if !ok {
				merged = Provider{}
			}
			merged.Name = name
			if override.Kind != "" {
				if _, err := auth.ValidKind(string(override.Kind)); err != nil {
					return nil, fmt.Errorf("provider %q in %s: %w", name, path, err)
				}
				merged.Kind = override.Kind
			}
			if override.AuthURL != "" {
				merged.AuthURL = override.AuthURL
			}
			if override.TokenURL != "" {
				merged.TokenURL = override.TokenURL
			}
			if override.ClientID != "" {
				merged.ClientID = override.ClientID
			}
			if override.ClientSecret != "" {
				merged.ClientSecret = override.ClientSecret
			}
			if len(override.Scopes) > 0 {
				merged.Scopes = override.Scopes
			}
			providers[name] = merged
		}
	}

	return &Registry{providers: providers}, nil
}

// Lookup returns the configuration for a provider, with environment variable
// overrides applied. Unknown providers default to the api_key kind so the
// open provider set stays open for key-based services.
func (r *Registry) Lookup(name string) (Provider, error) {
	if name == "" {
		return Provider{}, fmt.Errorf("provider name is required")
	}
	p, ok := r.providers[name]
	if !ok {
		p = Provider{Name: name, Kind: auth.KindAPIKey}
	}

	envKey := strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(name))
	if v := os.Getenv("SKILLAUTH_" + envKey + "_CLIENT_ID"); v != "" {
		p.ClientID = v
	}
	if v := os.Getenv("SKILLAUTH_" + envKey + "_CLIENT_SECRET"); v != "" {
		p.ClientSecret = v
	}

	if p.OAuth() {
		if p.AuthURL == "" || p.TokenURL == "" {
			return Provider{}, fmt.Errorf("provider %q is missing auth_url/token_url (add them to providers.yaml)", name)
		}
		if p.ClientID == "" {
			return Provider{}, fmt.Errorf("provider %q has no OAuth client configured (set client_id in providers.yaml or SKILLAUTH_%s_CLIENT_ID)", name, envKey)
		}
	}
	return p, nil
}

// Names lists every configured provider name, for status output.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
