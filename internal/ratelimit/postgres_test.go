package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGLimiterAllow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	resetAt := now.Add(15 * time.Minute)
	mock.ExpectQuery("insert into rate_limits").
		WithArgs("login:203.0.113.9", resetAt, now, 5).
		WillReturnRows(sqlmock.NewRows([]string{"count", "reset_at"}).AddRow(3, resetAt))

	lim := NewPGLimiter(db, WithPGClock(func() time.Time { return now }))
	res, err := lim.Allow(context.Background(), Key("login", "203.0.113.9"), 5, 15*time.Minute)
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if !res.Allowed || res.Remaining != 2 {
		t.Fatalf("expected allowed with remaining 2, got %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGLimiterDeniesAtCap(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	resetAt := now.Add(15 * time.Minute)
	// counter is capped at limit+1, so a saturated window returns 6
	mock.ExpectQuery("insert into rate_limits").
		WithArgs("login:203.0.113.9", resetAt, now, 5).
		WillReturnRows(sqlmock.NewRows([]string{"count", "reset_at"}).AddRow(6, resetAt))

	lim := NewPGLimiter(db, WithPGClock(func() time.Time { return now }))
	res, err := lim.Allow(context.Background(), Key("login", "203.0.113.9"), 5, 15*time.Minute)
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if res.Allowed {
		t.Fatal("saturated window must deny")
	}
	if res.Remaining != 0 {
		t.Fatalf("remaining = %d, want 0", res.Remaining)
	}
	if !res.ResetAt.Equal(resetAt) {
		t.Fatalf("reset_at = %v, want %v", res.ResetAt, resetAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGLimiterRequiresDB(t *testing.T) {
	lim := NewPGLimiter(nil)
	if _, err := lim.Allow(context.Background(), "k", 5, time.Minute); err == nil {
		t.Fatal("expected error without a database")
	}
}
