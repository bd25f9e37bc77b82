// Package ratelimit implements the fixed-window counters protecting the
// login and inquiry endpoints. Counters are persisted per key
// (action plus caller address); a window that has elapsed is reused in
// place, so stale rows need no garbage collection.
package ratelimit

import (
	"context"
	"time"
)

// Result reports the outcome of one Allow call.
type Result struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

// Limiter is a fixed-window counter keyed by an arbitrary string.
//
// Semantics: the first request in a window sets count=1 and expiry
// now+window; requests beyond limit are denied until the window rolls over.
// Both implementations apply the increment-and-compare atomically, so the
// limit holds under concurrent load.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Result, error)
}

// Key builds the canonical "action:caller" counter key.
func Key(action, caller string) string {
	return action + ":" + caller
}
