package ratelimit

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var _ Limiter = (*PGLimiter)(nil)

// PGLimiter persists window counters in the rate_limits table. The whole
// check-and-increment runs as one upsert, so concurrent requests in the same
// window cannot both pass a nearly exhausted counter.
type PGLimiter struct {
	db  *sql.DB
	now func() time.Time
}

// PGOption configures PGLimiter.
type PGOption func(*PGLimiter)

// WithPGClock overrides the time source (useful for tests).
func WithPGClock(fn func() time.Time) PGOption {
	return func(l *PGLimiter) {
		if fn != nil {
			l.now = fn
		}
	}
}

// NewPGLimiter wraps the given connection pool.
func NewPGLimiter(db *sql.DB, opts ...PGOption) *PGLimiter {
	l := &PGLimiter{db: db, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// allowQuery reuses an elapsed window in place and caps the counter at
// limit+1 so denied bursts cannot grow the row unbounded.
const allowQuery = `
	insert into rate_limits (key, count, reset_at)
	values ($1, 1, $2)
	on conflict (key) do update set
		count = case
			when rate_limits.reset_at <= $3 then 1
			else least(rate_limits.count + 1, $4 + 1)
		end,
		reset_at = case
			when rate_limits.reset_at <= $3 then excluded.reset_at
			else rate_limits.reset_at
		end
	returning count, reset_at`

// Allow implements Limiter.
func (l *PGLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	if l.db == nil {
		return Result{}, errors.New("ratelimit: database connection unavailable")
	}
	now := l.now().UTC()

	var (
		count   int
		resetAt time.Time
	)
	err := l.db.QueryRowContext(ctx, allowQuery, key, now.Add(window), now, limit).
		Scan(&count, &resetAt)
	if err != nil {
		return Result{}, err
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   count <= limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}
