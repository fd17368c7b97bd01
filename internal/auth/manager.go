package auth

import (
	"context"
	"fmt"
	"time"
)

// FreshnessMargin is how far ahead of expiry a stored token still counts as
// usable without a refresh.
const FreshnessMargin = 60 * time.Second

// Refresher exchanges an expired secret for a fresh one against the
// provider's token endpoint. Implementations return ErrReauthRequired when
// the refresh token itself is no longer honored.
type Refresher interface {
	Refresh(ctx context.Context, provider string, secret Secret) (Secret, time.Time, error)
}

// Manager is the token lifecycle manager: it guarantees a record handed to a
// caller carries a currently-usable secret, refreshing and persisting it when
// necessary.
type Manager struct {
	store     *Store
	refresher Refresher
	margin    time.Duration
	now       func() time.Time
}

// NewManager builds a Manager over store using refresher for expired secrets.
func NewManager(store *Store, refresher Refresher) *Manager {
	return &Manager{
		store:     store,
		refresher: refresher,
		margin:    FreshnessMargin,
		now:       time.Now,
	}
}

// EnsureFresh returns rec with a usable secret. Non-expiring records pass
// through untouched, as do records still ahead of the freshness margin.
// Anything else triggers exactly one refresh attempt; on success the updated
// record is persisted before it is returned. There is no internal retry: a
// failed refresh surfaces immediately.
func (m *Manager) EnsureFresh(ctx context.Context, rec *Record) (*Record, error) {
	if rec.ExpiresAt == nil {
		return rec, nil
	}
	if rec.ExpiresAt.Sub(m.now()) > m.margin {
		return rec, nil
	}

	secret, expiresAt, err := m.refresher.Refresh(ctx, rec.Provider, rec.Secret)
	if err != nil {
		return nil, fmt.Errorf("refresh for %s/%s failed: %w", rec.Provider, rec.AccountLabel, err)
	}

	rec.Secret = secret
	rec.ExpiresAt = &expiresAt
	rec.LastUsedAt = m.now().UTC()
	if err := m.store.Save(); err != nil {
		return nil, fmt.Errorf("refreshed token for %s/%s but could not persist it: %w", rec.Provider, rec.AccountLabel, err)
	}
	return rec, nil
}
