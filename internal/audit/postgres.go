package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"freshport.io/internal/ids"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

// NewPGStore wraps the given connection pool.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Append(ctx context.Context, entry *Entry) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	if entry.ID == "" {
		entry.ID = ids.New()
	}
	details, _ := json.Marshal(entry.Details)
	_, err := s.db.ExecContext(ctx, `
		insert into audit_log (id, occurred_at, actor_id, action, entity_type, entity_id, details)
		values ($1, $2, $3, $4, $5, $6, $7)
	`, entry.ID, entry.OccurredAt, entry.ActorID, entry.Action, entry.EntityType, entry.EntityID, details)
	return err
}

func (s *PGStore) Recent(ctx context.Context, limit int, action string) ([]Entry, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `
		select id, occurred_at, actor_id, action, entity_type, entity_id, details
		from audit_log`
	args := []any{limit}
	if action != "" {
		query += ` where action = $2`
		args = append(args, action)
	}
	query += ` order by occurred_at desc limit $1`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			details []byte
		)
		if err := rows.Scan(&e.ID, &e.OccurredAt, &e.ActorID, &e.Action, &e.EntityType, &e.EntityID, &details); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			_ = json.Unmarshal(details, &e.Details)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
