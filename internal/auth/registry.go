package auth

import (
	"fmt"
	"sort"
	"time"
)

// Account is the listing view of a stored record. It never carries secret
// material.
type Account struct {
	Provider       string     `json:"provider"`
	Label          string     `json:"account_label"`
	Kind           SecretKind `json:"kind"`
	Default        bool       `json:"default"`
	HasValidSecret bool       `json:"has_valid_secret"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

// Resolve returns the record for (provider, label). With an empty label the
// provider's default account is returned: the only account when there is one,
// otherwise the account carrying the default marker. Resolution stamps
// last_used_at on the record; persisting that is the caller's save.
func (s *Store) Resolve(provider, label string) (*Record, error) {
	accounts := s.Providers[provider]

	if label != "" {
		rec, ok := accounts[label]
		if !ok {
			return nil, fmt.Errorf("%w: no %q account %q (run 'skillauth login --provider %s --account %s')",
				ErrAccountNotFound, provider, label, provider, label)
		}
		rec.LastUsedAt = time.Now().UTC()
		return rec, nil
	}

	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w for provider %q (run 'skillauth login --provider %s')",
			ErrNoDefaultAccount, provider, provider)
	}
	if len(accounts) == 1 {
		for _, rec := range accounts {
			rec.LastUsedAt = time.Now().UTC()
			return rec, nil
		}
	}

	var def *Record
	for _, rec := range accounts {
		if rec.Default {
			if def != nil {
				// Two default markers should not happen; treat as none.
				def = nil
				break
			}
			def = rec
		}
	}
	if def == nil {
		return nil, fmt.Errorf("%w: provider %q has %d accounts (pass --account, or run 'skillauth accounts set-default')",
			ErrNoDefaultAccount, provider, len(accounts))
	}
	def.LastUsedAt = time.Now().UTC()
	return def, nil
}

// List enumerates stored accounts, optionally filtered by provider, sorted by
// provider then label. An empty store lists as an empty slice.
func (s *Store) List(provider string) []Account {
	out := []Account{}
	for prov, accounts := range s.Providers {
		if provider != "" && prov != provider {
			continue
		}
		for label, rec := range accounts {
			out = append(out, Account{
				Provider:       prov,
				Label:          label,
				Kind:           rec.Secret.Kind,
				Default:        rec.Default || len(accounts) == 1,
				HasValidSecret: rec.Usable(0),
				ExpiresAt:      rec.ExpiresAt,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Provider != out[j].Provider {
			return out[i].Provider < out[j].Provider
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// Put inserts or replaces the record under its (provider, label) key. The
// first account stored for a provider becomes its default.
func (s *Store) Put(rec *Record) {
	accounts := s.Providers[rec.Provider]
	if accounts == nil {
		accounts = map[string]*Record{}
		s.Providers[rec.Provider] = accounts
	}
	if prev, ok := accounts[rec.AccountLabel]; ok {
		rec.Default = prev.Default
		rec.CreatedAt = prev.CreatedAt
	} else if len(accounts) == 0 {
		rec.Default = true
	}
	accounts[rec.AccountLabel] = rec
}

// Remove deletes the record for (provider, label). Removing an absent account
// is a no-op: logout is idempotent. When the removed account was the default
// and exactly one account remains, the survivor inherits the marker.
func (s *Store) Remove(provider, label string) {
	accounts := s.Providers[provider]
	if accounts == nil {
		return
	}
	removed, ok := accounts[label]
	if !ok {
		return
	}
	delete(accounts, label)
	if len(accounts) == 0 {
		delete(s.Providers, provider)
		return
	}
	if removed.Default && len(accounts) == 1 {
		for _, rec := range accounts {
			rec.Default = true
		}
	}
}

// SetDefault marks (provider, label) as the provider's default account and
// clears the marker from its siblings.
func (s *Store) SetDefault(provider, label string) error {
	accounts := s.Providers[provider]
	target, ok := accounts[label]
	if !ok {
		return fmt.Errorf("%w: no %q account %q", ErrAccountNotFound, provider, label)
	}
	for _, rec := range accounts {
		rec.Default = false
	}
	target.Default = true
	return nil
}
