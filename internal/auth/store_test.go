package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempStorePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "credentials.json")
}

func TestLoadMissingFile(t *testing.T) {
	store, err := Load(tempStorePath(t))
	require.NoError(t, err)
	assert.Empty(t, store.Providers)
	assert.Empty(t, store.List(""))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := tempStorePath(t)
	store, err := Load(path)
	require.NoError(t, err)

	expires := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	store.Put(NewRecord("google", "work", Secret{
		Kind:         KindOAuth,
		AccessToken:  "ya29.access",
		RefreshToken: "1//refresh",
		TokenType:    "Bearer",
	}, &expires))
	store.Put(NewRecord("slack", "default", Secret{
		Kind:     KindBotToken,
		BotToken: "xoxb-123",
	}, nil))
	require.NoError(t, store.Save())

	loaded, err := Load(path)
	require.NoError(t, err)

	rec, err := loaded.Resolve("google", "work")
	require.NoError(t, err)
	assert.Equal(t, "ya29.access", rec.Secret.AccessToken)
	assert.Equal(t, "1//refresh", rec.Secret.RefreshToken)
	require.NotNil(t, rec.ExpiresAt)
	assert.True(t, rec.ExpiresAt.Equal(expires))

	rec, err = loaded.Resolve("slack", "")
	require.NoError(t, err)
	assert.Equal(t, KindBotToken, rec.Secret.Kind)
	assert.Nil(t, rec.ExpiresAt)
}

func TestSaveIsStableAcrossRoundTrips(t *testing.T) {
	path := tempStorePath(t)
	store, err := Load(path)
	require.NoError(t, err)
	store.Put(NewRecord("fal", "default", Secret{Kind: KindAPIKey, APIKey: "fal-key"}, nil))
	require.NoError(t, store.Save())

	first, err := os.ReadFile(path)
	require.NoError(t, err)

	reloaded, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, reloaded.Save())

	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestSaveRestrictsPermissions(t *testing.T) {
	path := tempStorePath(t)
	store, err := Load(path)
	require.NoError(t, err)
	store.Put(NewRecord("fal", "default", Secret{Kind: KindAPIKey, APIKey: "k"}, nil))
	require.NoError(t, store.Save())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadCorruptStore(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "Not JSON", body: "not json at all {"},
		{name: "Wrong top-level shape", body: `{"providers": []}`},
		{name: "Unknown secret kind", body: `{"providers": {"slack": {"default": {
			"provider": "slack", "account_label": "default",
			"secret_material": {"kind": "magic"}}}}}`},
		{name: "Missing account label", body: `{"providers": {"slack": {"default": {
			"provider": "slack",
			"secret_material": {"kind": "bot_token", "bot_token": "xoxb"}}}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tempStorePath(t)
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0600))

			_, err := Load(path)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCorruptStore)
		})
	}
}

func TestSaveCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "credentials.json")
	store, err := Load(path)
	require.NoError(t, err)
	store.Put(NewRecord("fal", "default", Secret{Kind: KindAPIKey, APIKey: "k"}, nil))
	require.NoError(t, store.Save())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
