package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/skillauth/cli/internal/auth"
	"github.com/skillauth/cli/internal/config"
)

// defaultExpiresIn is assumed when a token endpoint omits expires_in.
const defaultExpiresIn = 3600

// Client talks to provider token endpoints: refresh-token grants for the
// lifecycle manager and authorization-code exchange for the interactive flow.
// It satisfies auth.Refresher.
type Client struct {
	Registry   *config.Registry
	HTTPClient *http.Client
}

// NewClient creates a token-endpoint client over the given provider registry.
func NewClient(registry *config.Registry) *Client {
	return &Client{
		Registry: registry,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// tokenResponse is the OAuth2 token endpoint response, success or error shape.
type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int64  `json:"expires_in"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Refresh exchanges the stored refresh token for a fresh access token. A
// rejected refresh token (invalid_grant, or any 4xx from the token endpoint)
// maps to auth.ErrReauthRequired; transport failures surface as-is and are
// never retried here.
func (c *Client) Refresh(ctx context.Context, provider string, secret auth.Secret) (auth.Secret, time.Time, error) {
	if secret.Kind != auth.KindOAuth || secret.RefreshToken == "" {
		return auth.Secret{}, time.Time{}, fmt.Errorf("no refresh token stored: %w", auth.ErrReauthRequired)
	}

	p, err := c.Registry.Lookup(provider)
	if err != nil {
		return auth.Secret{}, time.Time{}, err
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {secret.RefreshToken},
		"client_id":     {p.ClientID},
	}
	if p.ClientSecret != "" {
		form.Set("client_secret", p.ClientSecret)
	}

	tok, err := c.postToken(ctx, p.TokenURL, form)
	if err != nil {
		return auth.Secret{}, time.Time{}, err
	}

	fresh := auth.Secret{
		Kind:         auth.KindOAuth,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
	}
	if fresh.RefreshToken == "" {
		// Most providers only issue the refresh token once.
		fresh.RefreshToken = secret.RefreshToken
	}
	return fresh, expiry(tok), nil
}

// Exchange trades an authorization code from the browser flow for tokens.
func (c *Client) Exchange(ctx context.Context, p config.Provider, code, redirectURI string) (auth.Secret, time.Time, error) {
	form := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {redirectURI},
		"client_id":    {p.ClientID},
	}
	if p.ClientSecret != "" {
		form.Set("client_secret", p.ClientSecret)
	}

	tok, err := c.postToken(ctx, p.TokenURL, form)
	if err != nil {
		return auth.Secret{}, time.Time{}, err
	}
	secret := auth.Secret{
		Kind:         auth.KindOAuth,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
	}
	return secret, expiry(tok), nil
}

func (c *Client) postToken(ctx context.Context, tokenURL string, form url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token endpoint request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, fmt.Errorf("token endpoint returned HTTP %d with unparseable body", resp.StatusCode)
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return nil, fmt.Errorf("token endpoint rejected the grant (HTTP %d, %s): %w",
			resp.StatusCode, oauthErrorText(&tok), auth.ErrReauthRequired)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned HTTP %d: %s", resp.StatusCode, oauthErrorText(&tok))
	}
	if tok.Error != "" {
		return nil, fmt.Errorf("token endpoint rejected the grant (%s): %w", oauthErrorText(&tok), auth.ErrReauthRequired)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("token endpoint returned no access token")
	}
	return &tok, nil
}

func oauthErrorText(tok *tokenResponse) string {
	if tok.Error == "" {
		return "no error detail"
	}
	if tok.ErrorDescription == "" {
		return tok.Error
	}
	return tok.Error + ": " + tok.ErrorDescription
}

func expiry(tok *tokenResponse) time.Time {
	secs := tok.ExpiresIn
	if secs <= 0 {
		secs = defaultExpiresIn
	}
	return time.Now().UTC().Add(time.Duration(secs) * time.Second)
}
