// Package audit keeps the append-only trail of administrative mutations.
// Writes are fire-and-forget: a failing trail must never block the action it
// describes, so errors go to the operational log only.
package audit

import (
	"context"
	"strings"
	"time"

	"freshport.io/internal/obs"
)

// Entry is one immutable trail record.
type Entry struct {
	ID         string         `json:"id"`
	OccurredAt time.Time      `json:"occurred_at"`
	ActorID    string         `json:"actor_id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
}

// Store appends immutable entries. No update or delete exists by design of
// the table, not just the interface.
type Store interface {
	Append(ctx context.Context, entry *Entry) error
	Recent(ctx context.Context, limit int, action string) ([]Entry, error)
}

// Recorder writes entries through a Store, swallowing failures.
type Recorder struct {
	store Store
	now   func() time.Time
}

// RecorderOption configures Recorder.
type RecorderOption func(*Recorder)

// WithRecorderClock overrides the time source (useful for tests).
func WithRecorderClock(fn func() time.Time) RecorderOption {
	return func(r *Recorder) {
		if fn != nil {
			r.now = fn
		}
	}
}

// NewRecorder wraps a Store.
func NewRecorder(store Store, opts ...RecorderOption) *Recorder {
	r := &Recorder{store: store, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record appends one entry. Append failures are logged and dropped.
func (r *Recorder) Record(ctx context.Context, actorID, action, entityType, entityID string, details map[string]any) {
	action = strings.TrimSpace(action)
	if action == "" || r.store == nil {
		return
	}
	entry := &Entry{
		OccurredAt: r.now().UTC(),
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	}
	if err := r.store.Append(ctx, entry); err != nil {
		obs.LogError("audit append failed", err, map[string]any{
			"action": action,
			"entity": entityType,
		})
	}
}

// Recent returns the most recent entries, optionally filtered by action.
func (r *Recorder) Recent(ctx context.Context, limit int, action string) ([]Entry, error) {
	if r.store == nil {
		return nil, nil
	}
	return r.store.Recent(ctx, limit, action)
}
