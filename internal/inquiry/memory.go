package inquiry

import (
	"context"
	"sort"
	"sync"
	"time"

	"freshport.io/internal/ids"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps inquiries in a map. Used in tests and database-less
// demo runs.
type MemoryStore struct {
	mu        sync.Mutex
	inquiries map[string]*Inquiry
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{inquiries: make(map[string]*Inquiry)}
}

func (s *MemoryStore) Create(_ context.Context, inq *Inquiry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inq.ID == "" {
		inq.ID = ids.New()
	}
	now := time.Now().UTC()
	inq.CreatedAt = now
	inq.UpdatedAt = now
	clone := *inq
	s.inquiries[inq.ID] = &clone
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Inquiry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inq, ok := s.inquiries[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *inq
	return &clone, nil
}

func (s *MemoryStore) List(_ context.Context, status Status) ([]*Inquiry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Inquiry, 0, len(s.inquiries))
	for _, inq := range s.inquiries {
		if status != "" && inq.Status != status {
			continue
		}
		clone := *inq
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) SetStatus(_ context.Context, id string, status Status) (*Inquiry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inq, ok := s.inquiries[id]
	if !ok {
		return nil, ErrNotFound
	}
	inq.Status = status
	inq.UpdatedAt = time.Now().UTC()
	clone := *inq
	return &clone, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inquiries[id]; !ok {
		return ErrNotFound
	}
	delete(s.inquiries, id)
	return nil
}
