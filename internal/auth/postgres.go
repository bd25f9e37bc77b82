package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"freshport.io/internal/ids"
)

const pgErrUniqueViolation = "23505"

var _ UserStore = (*PGUserStore)(nil)

// PGUserStore implements UserStore using PostgreSQL.
type PGUserStore struct {
	db *sql.DB
}

// NewPGUserStore wraps the given connection pool.
func NewPGUserStore(db *sql.DB) *PGUserStore {
	return &PGUserStore{db: db}
}

const userColumns = `id, email, password_hash, role, is_active,
	failed_login_attempts, locked_until, token_version, last_login_at,
	created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive,
		&u.FailedLoginAttempts, &u.LockedUntil, &u.TokenVersion, &u.LastLoginAt,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PGUserStore) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = ids.New()
	}
	row := s.db.QueryRowContext(ctx, `
		insert into admin_users (id, email, password_hash, role, is_active)
		values ($1, $2, $3, $4, $5)
		returning created_at, updated_at
	`, u.ID, u.Email, u.PasswordHash, u.Role, u.IsActive)
	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *PGUserStore) Find(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from admin_users where id = $1`, id)
	return scanUser(row)
}

func (s *PGUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from admin_users where email = $1`, email)
	return scanUser(row)
}

func (s *PGUserStore) List(ctx context.Context) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+userColumns+` from admin_users order by created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *PGUserStore) RecordLoginFailure(ctx context.Context, id string, attempts int, lockedUntil *time.Time) error {
	return s.exec(ctx, `
		update admin_users
		set failed_login_attempts = $2, locked_until = $3, updated_at = now()
		where id = $1
	`, id, attempts, lockedUntil)
}

func (s *PGUserStore) RecordLoginSuccess(ctx context.Context, id string, at time.Time) error {
	return s.exec(ctx, `
		update admin_users
		set failed_login_attempts = 0, locked_until = null, last_login_at = $2, updated_at = now()
		where id = $1
	`, id, at)
}

func (s *PGUserStore) UpdateRole(ctx context.Context, id string, role Role) error {
	return s.exec(ctx,
		`update admin_users set role = $2, updated_at = now() where id = $1`, id, role)
}

func (s *PGUserStore) SetActive(ctx context.Context, id string, active bool) error {
	return s.exec(ctx,
		`update admin_users set is_active = $2, updated_at = now() where id = $1`, id, active)
}

func (s *PGUserStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return s.exec(ctx,
		`update admin_users set password_hash = $2, updated_at = now() where id = $1`, id, passwordHash)
}

func (s *PGUserStore) BumpTokenVersion(ctx context.Context, id string) error {
	return s.exec(ctx,
		`update admin_users set token_version = token_version + 1, updated_at = now() where id = $1`, id)
}

func (s *PGUserStore) Delete(ctx context.Context, id string) error {
	return s.exec(ctx, `delete from admin_users where id = $1`, id)
}

func (s *PGUserStore) CountActiveByRole(ctx context.Context, role Role) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`select count(*) from admin_users where role = $1 and is_active`, role).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *PGUserStore) exec(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func maybePgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}
