package auth

import "errors"

var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// the HTTP layer cannot leak which of the two happened.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrUnauthenticated means no usable identity: missing, expired or
	// revoked token, or a token pointing at a deleted/disabled account.
	ErrUnauthenticated = errors.New("auth: unauthenticated")

	// ErrForbidden means a valid identity whose role is not in the
	// permission table for the requested action.
	ErrForbidden = errors.New("auth: forbidden")

	// ErrAccountLocked is returned while a lockout window is open.
	ErrAccountLocked = errors.New("auth: account locked")

	// ErrAccountDisabled marks a deactivated account. The HTTP layer
	// collapses it into the generic invalid-credentials response.
	ErrAccountDisabled = errors.New("auth: account disabled")

	ErrNotFound     = errors.New("auth: not found")
	ErrConflict     = errors.New("auth: resource conflict")
	ErrInvalidInput = errors.New("auth: invalid input")
)
