package auth

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SecretKind discriminates the shape of a Secret. The set is closed: the
// store schema rejects records with a kind it does not know about.
type SecretKind string

const (
	// KindOAuth is an OAuth2 access/refresh token pair. The only expiring kind.
	KindOAuth SecretKind = "oauth"
	// KindAPIKey is a long-lived API key (FAL, Eleven Labs, and similar).
	KindAPIKey SecretKind = "api_key"
	// KindBotToken is a non-expiring workspace bot token (Slack, Discord).
	KindBotToken SecretKind = "bot_token"
	// KindCookie is a captured browser session cookie.
	KindCookie SecretKind = "cookie"
)

// ValidKind checks if the given string names a known SecretKind.
func ValidKind(kind string) (SecretKind, error) {
	switch SecretKind(kind) {
	case KindOAuth:
		return KindOAuth, nil
	case KindAPIKey:
		return KindAPIKey, nil
	case KindBotToken:
		return KindBotToken, nil
	case KindCookie:
		return KindCookie, nil
	default:
		return "", fmt.Errorf("invalid secret kind %q: must be 'oauth', 'api_key', 'bot_token', or 'cookie'", kind)
	}
}

// Secret is the tagged secret-material variant. Kind selects which fields are
// meaningful; the registry itself never interprets them beyond that.
type Secret struct {
	Kind         SecretKind `json:"kind"`
	AccessToken  string     `json:"access_token,omitempty"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	TokenType    string     `json:"token_type,omitempty"`
	APIKey       string     `json:"api_key,omitempty"`
	BotToken     string     `json:"bot_token,omitempty"`
	Cookie       string     `json:"cookie,omitempty"`
}

// Bearer returns the value a caller attaches to an outgoing request for this
// secret, without the header name. Empty when the secret has no usable value.
func (s Secret) Bearer() string {
	switch s.Kind {
	case KindOAuth:
		return s.AccessToken
	case KindAPIKey:
		return s.APIKey
	case KindBotToken:
		return s.BotToken
	case KindCookie:
		return s.Cookie
	default:
		return ""
	}
}

// Expiring reports whether this kind of secret ever expires. Only OAuth
// access tokens do; keys, bot tokens and cookies are valid until revoked.
func (s Secret) Expiring() bool {
	return s.Kind == KindOAuth
}

// Masked returns the bearer value with the middle elided, safe for display.
func (s Secret) Masked() string {
	v := s.Bearer()
	if len(v) <= 8 {
		return "****"
	}
	return v[:4] + "..." + v[len(v)-4:]
}

// Record is one stored credential: a (provider, account label) pair plus its
// secret material and bookkeeping timestamps.
type Record struct {
	ID           string     `json:"id"`
	Provider     string     `json:"provider"`
	AccountLabel string     `json:"account_label"`
	Secret       Secret     `json:"secret_material"`
	Default      bool       `json:"default,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at"`
	CreatedAt    time.Time  `json:"created_at"`
	LastUsedAt   time.Time  `json:"last_used_at"`
}

// NewRecord builds a Record for a freshly obtained secret. expiresAt is nil
// for non-expiring secret kinds.
func NewRecord(provider, label string, secret Secret, expiresAt *time.Time) *Record {
	now := time.Now().UTC()
	return &Record{
		ID:           uuid.NewString(),
		Provider:     provider,
		AccountLabel: label,
		Secret:       secret,
		ExpiresAt:    expiresAt,
		CreatedAt:    now,
		LastUsedAt:   now,
	}
}

// Usable reports whether the secret can be attached to a request right now,
// i.e. it is non-expiring or its expiry is still ahead of the margin.
func (r *Record) Usable(margin time.Duration) bool {
	if r.Secret.Bearer() == "" {
		return false
	}
	if r.ExpiresAt == nil {
		return true
	}
	return time.Until(*r.ExpiresAt) > margin
}
