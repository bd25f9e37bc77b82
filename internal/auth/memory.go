package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"freshport.io/internal/ids"
)

var _ UserStore = (*MemoryUserStore)(nil)

// MemoryUserStore keeps users in a map. Used in tests and database-less
// demo runs.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[string]*User
}

// NewMemoryUserStore constructs an empty store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*User)}
}

func (s *MemoryUserStore) Create(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrConflict
		}
	}
	if u.ID == "" {
		u.ID = ids.New()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	clone := *u
	s.users[u.ID] = &clone
	return nil
}

func (s *MemoryUserStore) Find(_ context.Context, id string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *MemoryUserStore) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStore) List(_ context.Context) ([]*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*User, 0, len(s.users))
	for _, u := range s.users {
		clone := *u
		out = append(out, &clone)
	}
	return out, nil
}

func (s *MemoryUserStore) RecordLoginFailure(_ context.Context, id string, attempts int, lockedUntil *time.Time) error {
	return s.mutate(id, func(u *User) {
		u.FailedLoginAttempts = attempts
		u.LockedUntil = lockedUntil
	})
}

func (s *MemoryUserStore) RecordLoginSuccess(_ context.Context, id string, at time.Time) error {
	return s.mutate(id, func(u *User) {
		u.FailedLoginAttempts = 0
		u.LockedUntil = nil
		u.LastLoginAt = &at
	})
}

func (s *MemoryUserStore) UpdateRole(_ context.Context, id string, role Role) error {
	return s.mutate(id, func(u *User) { u.Role = role })
}

func (s *MemoryUserStore) SetActive(_ context.Context, id string, active bool) error {
	return s.mutate(id, func(u *User) { u.IsActive = active })
}

func (s *MemoryUserStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	return s.mutate(id, func(u *User) { u.PasswordHash = passwordHash })
}

func (s *MemoryUserStore) BumpTokenVersion(_ context.Context, id string) error {
	return s.mutate(id, func(u *User) { u.TokenVersion++ })
}

func (s *MemoryUserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *MemoryUserStore) CountActiveByRole(_ context.Context, role Role) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, u := range s.users {
		if u.Role == role && u.IsActive {
			count++
		}
	}
	return count, nil
}

func (s *MemoryUserStore) mutate(id string, fn func(*User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	fn(u)
	u.UpdatedAt = time.Now().UTC()
	return nil
}
