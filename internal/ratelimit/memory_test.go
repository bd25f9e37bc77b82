package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryWindowSemantics(t *testing.T) {
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	lim := NewMemory(WithMemoryClock(func() time.Time { return clock }))
	key := Key("login", "203.0.113.9")

	for i, wantRemaining := range []int{4, 3, 2, 1, 0} {
		res, err := lim.Allow(context.Background(), key, 5, 15*time.Minute)
		if err != nil {
			t.Fatalf("allow %d: %v", i+1, err)
		}
		if !res.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		if res.Remaining != wantRemaining {
			t.Fatalf("request %d: remaining = %d, want %d", i+1, res.Remaining, wantRemaining)
		}
	}

	res, err := lim.Allow(context.Background(), key, 5, 15*time.Minute)
	if err != nil {
		t.Fatalf("sixth allow: %v", err)
	}
	if res.Allowed {
		t.Fatal("sixth request in window must be denied")
	}
	if want := clock.Add(15 * time.Minute); !res.ResetAt.Equal(want) {
		t.Fatalf("reset_at = %v, want %v", res.ResetAt, want)
	}
}

func TestMemoryWindowRollover(t *testing.T) {
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	lim := NewMemory(WithMemoryClock(func() time.Time { return clock }))
	key := Key("inquiry", "203.0.113.9")

	for i := 0; i < 3; i++ {
		if res, _ := lim.Allow(context.Background(), key, 3, 10*time.Minute); !res.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if res, _ := lim.Allow(context.Background(), key, 3, 10*time.Minute); res.Allowed {
		t.Fatal("over-limit request must be denied")
	}

	clock = clock.Add(10 * time.Minute)
	res, err := lim.Allow(context.Background(), key, 3, 10*time.Minute)
	if err != nil {
		t.Fatalf("post-rollover allow: %v", err)
	}
	if !res.Allowed || res.Remaining != 2 {
		t.Fatalf("expected fresh window (allowed, remaining 2), got %+v", res)
	}
	if want := clock.Add(10 * time.Minute); !res.ResetAt.Equal(want) {
		t.Fatalf("reset_at = %v, want %v", res.ResetAt, want)
	}
}

func TestMemoryKeysAreIndependent(t *testing.T) {
	lim := NewMemory()
	for i := 0; i < 3; i++ {
		if res, _ := lim.Allow(context.Background(), Key("login", "a"), 3, time.Minute); !res.Allowed {
			t.Fatalf("key a request %d should be allowed", i+1)
		}
	}
	if res, _ := lim.Allow(context.Background(), Key("login", "a"), 3, time.Minute); res.Allowed {
		t.Fatal("key a must be exhausted")
	}
	if res, _ := lim.Allow(context.Background(), Key("login", "b"), 3, time.Minute); !res.Allowed {
		t.Fatal("key b must not be affected by key a")
	}
	if res, _ := lim.Allow(context.Background(), Key("inquiry", "a"), 3, time.Minute); !res.Allowed {
		t.Fatal("different action for the same caller must not be affected")
	}
}
