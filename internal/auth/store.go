package auth

import (
	"context"
	"time"
)

// UserStore describes persistence operations required by the auth subsystem.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)

	// RecordLoginFailure persists the new attempt counter and, when the
	// threshold was crossed, the lockout deadline.
	RecordLoginFailure(ctx context.Context, id string, attempts int, lockedUntil *time.Time) error
	// RecordLoginSuccess clears failure state and stamps last_login_at.
	RecordLoginSuccess(ctx context.Context, id string, at time.Time) error

	UpdateRole(ctx context.Context, id string, role Role) error
	SetActive(ctx context.Context, id string, active bool) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	// BumpTokenVersion increments the revocation counter, invalidating every
	// outstanding session token for the user.
	BumpTokenVersion(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error

	// CountActiveByRole backs the last-SUPER_ADMIN invariant.
	CountActiveByRole(ctx context.Context, role Role) (int, error)
}
