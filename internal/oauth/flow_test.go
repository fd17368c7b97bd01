package oauth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBrowser simulates the user's browser: it parses the authorization URL
// and immediately hits the redirect URI with the configured query values.
func fakeBrowser(t *testing.T, mutate func(redirect *url.URL, authQuery url.Values)) func(string) error {
	t.Helper()
	return func(rawURL string) error {
		parsed, err := url.Parse(rawURL)
		if err != nil {
			return err
		}
		query := parsed.Query()
		redirect, err := url.Parse(query.Get("redirect_uri"))
		if err != nil {
			return err
		}
		mutate(redirect, query)
		go func() {
			resp, err := http.Get(redirect.String())
			if err == nil {
				resp.Body.Close()
			}
		}()
		return nil
	}
}

func newTestFlow(t *testing.T, tokenURL string) *Flow {
	t.Helper()
	registry := registryFor(t, "https://consent.test/authorize", tokenURL)
	flow := NewFlow(NewClient(registry), io.Discard)
	flow.Timeout = 5 * time.Second
	return flow
}

func TestAuthorizeSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "good-code", r.PostFormValue("code"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token": "granted", "refresh_token": "1//r", "token_type": "Bearer", "expires_in": 3600}`)
	}))
	defer server.Close()

	flow := newTestFlow(t, server.URL)
	flow.OpenBrowser = fakeBrowser(t, func(redirect *url.URL, authQuery url.Values) {
		q := redirect.Query()
		q.Set("code", "good-code")
		q.Set("state", authQuery.Get("state"))
		redirect.RawQuery = q.Encode()
	})

	registry := registryFor(t, "https://consent.test/authorize", server.URL)
	p, err := registry.Lookup("testprov")
	require.NoError(t, err)

	secret, expiresAt, err := flow.Authorize(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "granted", secret.AccessToken)
	assert.Equal(t, "1//r", secret.RefreshToken)
	assert.True(t, expiresAt.After(time.Now()))
}

func TestAuthorizeTimeout(t *testing.T) {
	flow := newTestFlow(t, "https://example.test/token")
	flow.Timeout = 50 * time.Millisecond
	flow.OpenBrowser = func(string) error { return nil } // user never completes

	registry := registryFor(t, "https://consent.test/authorize", "https://example.test/token")
	p, err := registry.Lookup("testprov")
	require.NoError(t, err)

	_, _, err = flow.Authorize(context.Background(), p)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthorizationTimeout)
}

func TestAuthorizeStateMismatch(t *testing.T) {
	flow := newTestFlow(t, "https://example.test/token")
	flow.OpenBrowser = fakeBrowser(t, func(redirect *url.URL, authQuery url.Values) {
		q := redirect.Query()
		q.Set("code", "stolen-code")
		q.Set("state", "forged")
		redirect.RawQuery = q.Encode()
	})

	registry := registryFor(t, "https://consent.test/authorize", "https://example.test/token")
	p, err := registry.Lookup("testprov")
	require.NoError(t, err)

	_, _, err = flow.Authorize(context.Background(), p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state mismatch")
}

func TestAuthorizeProviderDenied(t *testing.T) {
	flow := newTestFlow(t, "https://example.test/token")
	flow.OpenBrowser = fakeBrowser(t, func(redirect *url.URL, authQuery url.Values) {
		q := redirect.Query()
		q.Set("error", "access_denied")
		q.Set("state", authQuery.Get("state"))
		redirect.RawQuery = q.Encode()
	})

	registry := registryFor(t, "https://consent.test/authorize", "https://example.test/token")
	p, err := registry.Lookup("testprov")
	require.NoError(t, err)

	_, _, err = flow.Authorize(context.Background(), p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access_denied")
}

func TestAuthorizeContextCancelled(t *testing.T) {
	flow := newTestFlow(t, "https://example.test/token")
	flow.OpenBrowser = func(string) error { return nil }

	registry := registryFor(t, "https://consent.test/authorize", "https://example.test/token")
	p, err := registry.Lookup("testprov")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = flow.Authorize(ctx, p)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildAuthURL(t *testing.T) {
	registry := registryFor(t, "https://consent.test/authorize", "https://example.test/token")
	p, err := registry.Lookup("testprov")
	require.NoError(t, err)

	raw := buildAuthURL(p, "http://127.0.0.1:9999/callback", "the-state")
	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	q := parsed.Query()
	assert.Equal(t, "test-client", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "the-state", q.Get("state"))
	assert.Equal(t, "http://127.0.0.1:9999/callback", q.Get("redirect_uri"))
	assert.Equal(t, "read", q.Get("scope"))
}
