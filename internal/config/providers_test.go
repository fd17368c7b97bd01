package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillauth/cli/internal/auth"
	"github.com/skillauth/cli/internal/testutils"
)

func loadTestRegistry(t *testing.T, yamlBody string) *Registry {
	t.Helper()
	path := filepath.Join(t.TempDir(), "providers.yaml")
	if yamlBody != "" {
		require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0600))
	}
	registry, err := LoadRegistry(path)
	require.NoError(t, err)
	return registry
}

func TestLookupBuiltins(t *testing.T) {
	registry := loadTestRegistry(t, "")

	tests := []struct {
		name     string
		provider string
		kind     auth.SecretKind
	}{
		{name: "Slack uses bot tokens", provider: "slack", kind: auth.KindBotToken},
		{name: "FAL uses API keys", provider: "fal", kind: auth.KindAPIKey},
		{name: "Wyze uses cookies", provider: "wyze", kind: auth.KindCookie},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := registry.Lookup(tt.provider)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, p.Kind)
			assert.False(t, p.OAuth())
		})
	}
}

func TestLookupOAuthRequiresClient(t *testing.T) {
	registry := loadTestRegistry(t, "")

	// Built-in OAuth providers ship endpoints but never a client.
	_, err := registry.Lookup("google")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no OAuth client configured")
}

func TestLookupEnvOverrides(t *testing.T) {
	registry := loadTestRegistry(t, "")

	cleanup := testutils.SetEnv(t, map[string]string{
		"SKILLAUTH_GOOGLE_CLIENT_ID":     "env-client",
		"SKILLAUTH_GOOGLE_CLIENT_SECRET": "env-secret",
	})
	defer cleanup()

	p, err := registry.Lookup("google")
	require.NoError(t, err)
	assert.Equal(t, "env-client", p.ClientID)
	assert.Equal(t, "env-secret", p.ClientSecret)
	assert.Equal(t, "https://accounts.google.com/o/oauth2/v2/auth", p.AuthURL)
	assert.Equal(t, "https://oauth2.googleapis.com/token", p.TokenURL)
}

func TestLoadRegistryYAMLOverrides(t *testing.T) {
	registry := loadTestRegistry(t, `
providers:
  google:
    client_id: file-client
    client_secret: file-secret
    scopes: [openid, email]
  homelab:
    kind: oauth
    auth_url: https://auth.homelab.test/authorize
    token_url: https://auth.homelab.test/token
    client_id: lab
`)

	p, err := registry.Lookup("google")
	require.NoError(t, err)
	assert.Equal(t, "file-client", p.ClientID)
	assert.Equal(t, []string{"openid", "email"}, p.Scopes)

	p, err = registry.Lookup("homelab")
	require.NoError(t, err)
	assert.True(t, p.OAuth())
	assert.Equal(t, "https://auth.homelab.test/token", p.TokenURL)
}

func TestLoadRegistryRejectsBadKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "providers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("providers:\n  weird:\n    kind: magic\n"), 0600))

	_, err := LoadRegistry(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid secret kind")
}

func TestLookupUnknownProviderDefaultsToAPIKey(t *testing.T) {
	registry := loadTestRegistry(t, "")

	p, err := registry.Lookup("some-new-saas")
	require.NoError(t, err)
	assert.Equal(t, auth.KindAPIKey, p.Kind)
}

func TestLookupEmptyName(t *testing.T) {
	registry := loadTestRegistry(t, "")
	_, err := registry.Lookup("")
	assert.Error(t, err)
}
