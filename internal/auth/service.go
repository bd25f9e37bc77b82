package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"freshport.io/internal/obs"
)

const (
	maxFailedLogins = 5
	lockoutDuration = 15 * time.Minute
	minPasswordLen  = 8
)

// AuditRecorder appends an immutable trail entry. Implementations must never
// fail the calling request; see internal/audit.
type AuditRecorder interface {
	Record(ctx context.Context, actorID, action, entityType, entityID string, details map[string]any)
}

type noopAudit struct{}

func (noopAudit) Record(context.Context, string, string, string, string, map[string]any) {}

// Service implements login, the request gate and admin user management on
// top of a UserStore.
type Service struct {
	store  UserStore
	tokens *TokenIssuer
	audit  AuditRecorder
	now    func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithAudit wires the audit trail recorder.
func WithAudit(rec AuditRecorder) ServiceOption {
	return func(s *Service) {
		if rec != nil {
			s.audit = rec
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs Service with optional configuration.
func NewService(store UserStore, tokens *TokenIssuer, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("auth: user store is required")
	}
	if tokens == nil {
		return nil, errors.New("auth: token issuer is required")
	}
	svc := &Service{
		store:  store,
		tokens: tokens,
		audit:  noopAudit{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Login verifies credentials and issues a session token. Unknown email and
// wrong password return the same error; both paths cost one bcrypt compare.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, time.Time, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	user, err := s.store.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		_ = VerifyPassword(string(dummyHash), password)
		obs.CountLoginFailure()
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := s.now().UTC()
	if user.Locked(now) {
		return nil, "", time.Time{}, ErrAccountLocked
	}
	if !user.IsActive {
		_ = VerifyPassword(string(dummyHash), password)
		obs.CountLoginFailure()
		return nil, "", time.Time{}, ErrAccountDisabled
	}

	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, s.recordFailedAttempt(ctx, user, now)
	}

	if err := s.store.RecordLoginSuccess(ctx, user.ID, now); err != nil {
		return nil, "", time.Time{}, err
	}
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	s.audit.Record(ctx, user.ID, "LOGIN", "user", user.ID, map[string]any{"email": user.Email})
	return user, token, expiresAt, nil
}

func (s *Service) recordFailedAttempt(ctx context.Context, user *User, now time.Time) error {
	obs.CountLoginFailure()
	attempts := user.FailedLoginAttempts + 1
	var lockedUntil *time.Time
	if attempts >= maxFailedLogins {
		deadline := now.Add(lockoutDuration)
		lockedUntil = &deadline
	}
	if err := s.store.RecordLoginFailure(ctx, user.ID, attempts, lockedUntil); err != nil {
		return err
	}
	if lockedUntil != nil {
		obs.CountLockout()
		s.audit.Record(ctx, user.ID, "ACCOUNT_LOCKOUT", "user", user.ID, map[string]any{
			"email":        user.Email,
			"attempts":     attempts,
			"locked_until": lockedUntil.Format(time.RFC3339),
		})
		return ErrAccountLocked
	}
	return ErrInvalidCredentials
}

// Authenticate resolves a session token into a live identity. The token's
// claims are only trusted for locating the row: active flag, role and the
// revocation counter are re-read from storage so deactivation and forced
// logout take effect immediately.
func (s *Service) Authenticate(ctx context.Context, token string) (Identity, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return Identity{}, ErrUnauthenticated
	}
	user, err := s.store.Find(ctx, claims.Subject)
	if errors.Is(err, ErrNotFound) {
		return Identity{}, ErrUnauthenticated
	}
	if err != nil {
		return Identity{}, err
	}
	if !user.IsActive {
		return Identity{}, ErrUnauthenticated
	}
	if user.TokenVersion != claims.TokenVersion {
		return Identity{}, ErrUnauthenticated
	}
	return Identity{ID: user.ID, Email: user.Email, Role: user.Role}, nil
}

// Require is the request gate: Authenticate plus a permission-table check
// against the freshly read role. Fails closed on every path.
func (s *Service) Require(ctx context.Context, token string, action Action) (Identity, error) {
	identity, err := s.Authenticate(ctx, token)
	if err != nil {
		return Identity{}, err
	}
	if !HasPermission(identity.Role, action) {
		return Identity{}, ErrForbidden
	}
	return identity, nil
}

// Logout bumps the caller's revocation counter so every outstanding token
// dies immediately, not just the one presented.
func (s *Service) Logout(ctx context.Context, token string) error {
	identity, err := s.Authenticate(ctx, token)
	if err != nil {
		return err
	}
	if err := s.store.BumpTokenVersion(ctx, identity.ID); err != nil {
		return err
	}
	s.audit.Record(ctx, identity.ID, "LOGOUT", "user", identity.ID, nil)
	return nil
}

// CreateUser registers a new admin account.
func (s *Service) CreateUser(ctx context.Context, actor Identity, email, password string, role Role) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLen)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actor.ID, "USER_CREATE", "user", user.ID, map[string]any{
		"email": user.Email,
		"role":  string(user.Role),
	})
	return user, nil
}

// ListUsers returns every admin account.
func (s *Service) ListUsers(ctx context.Context) ([]*User, error) {
	return s.store.List(ctx)
}

// ChangeRole updates a user's role. Demoting the last active SUPER_ADMIN is
// rejected; a successful change revokes the target's outstanding tokens.
func (s *Service) ChangeRole(ctx context.Context, actor Identity, userID string, role Role) (*User, error) {
	user, err := s.store.Find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == role {
		return user, nil
	}
	if user.Role == RoleSuperAdmin && user.IsActive {
		if err := s.ensureAnotherSuperAdmin(ctx); err != nil {
			return nil, err
		}
	}
	if err := s.store.UpdateRole(ctx, userID, role); err != nil {
		return nil, err
	}
	if err := s.store.BumpTokenVersion(ctx, userID); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actor.ID, "USER_ROLE_CHANGE", "user", userID, map[string]any{
		"email": user.Email,
		"from":  string(user.Role),
		"to":    string(role),
	})
	user.Role = role
	return user, nil
}

// SetUserActive toggles the active flag. Deactivating the last active
// SUPER_ADMIN is rejected; deactivation revokes outstanding tokens.
func (s *Service) SetUserActive(ctx context.Context, actor Identity, userID string, active bool) (*User, error) {
	user, err := s.store.Find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsActive == active {
		return user, nil
	}
	if !active && user.Role == RoleSuperAdmin {
		if err := s.ensureAnotherSuperAdmin(ctx); err != nil {
			return nil, err
		}
	}
	if err := s.store.SetActive(ctx, userID, active); err != nil {
		return nil, err
	}
	if !active {
		if err := s.store.BumpTokenVersion(ctx, userID); err != nil {
			return nil, err
		}
	}
	s.audit.Record(ctx, actor.ID, "USER_STATUS_CHANGE", "user", userID, map[string]any{
		"email":  user.Email,
		"active": active,
	})
	user.IsActive = active
	return user, nil
}

// ResetPassword sets a new password for the target and revokes their
// outstanding tokens. This is the audited replacement for out-of-band
// credential scripts.
func (s *Service) ResetPassword(ctx context.Context, actor Identity, userID, password string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLen)
	}
	user, err := s.store.Find(ctx, userID)
	if err != nil {
		return err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.store.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	if err := s.store.BumpTokenVersion(ctx, userID); err != nil {
		return err
	}
	s.audit.Record(ctx, actor.ID, "USER_PASSWORD_RESET", "user", userID, map[string]any{
		"email": user.Email,
	})
	return nil
}

// DeleteUser removes an admin account. Self-deletion and deleting the last
// active SUPER_ADMIN are rejected regardless of the caller's role.
func (s *Service) DeleteUser(ctx context.Context, actor Identity, userID string) error {
	if userID == actor.ID {
		return fmt.Errorf("%w: cannot delete own account", ErrInvalidInput)
	}
	user, err := s.store.Find(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role == RoleSuperAdmin && user.IsActive {
		if err := s.ensureAnotherSuperAdmin(ctx); err != nil {
			return err
		}
	}
	if err := s.store.Delete(ctx, userID); err != nil {
		return err
	}
	s.audit.Record(ctx, actor.ID, "USER_DELETE", "user", userID, map[string]any{
		"email": user.Email,
		"role":  string(user.Role),
	})
	return nil
}

func (s *Service) ensureAnotherSuperAdmin(ctx context.Context) error {
	count, err := s.store.CountActiveByRole(ctx, RoleSuperAdmin)
	if err != nil {
		return err
	}
	if count <= 1 {
		return fmt.Errorf("%w: at least one active SUPER_ADMIN must remain", ErrConflict)
	}
	return nil
}
