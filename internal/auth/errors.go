package auth

import "errors"

var (
	// ErrCorruptStore means the store file exists but cannot be parsed or
	// fails schema validation. Fatal: the user must inspect or delete it.
	ErrCorruptStore = errors.New("credential store is corrupt")

	// ErrAccountNotFound means an explicitly named account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrNoDefaultAccount means the account label was omitted and the
	// provider has zero accounts, or several without a default marker.
	ErrNoDefaultAccount = errors.New("no default account")

	// ErrReauthRequired means the refresh token was rejected and the only
	// way forward is to re-run the interactive login flow.
	ErrReauthRequired = errors.New("reauthorization required")
)
