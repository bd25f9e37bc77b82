// Package inquiry handles customer inquiries submitted through the public
// site and triaged in the back office.
package inquiry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"freshport.io/internal/stream"
)

var (
	ErrInvalidInput = errors.New("inquiry: invalid input")
	ErrNotFound     = errors.New("inquiry: not found")
)

// Status is the triage state of an inquiry.
type Status string

const (
	StatusNew      Status = "new"
	StatusRead     Status = "read"
	StatusReplied  Status = "replied"
	StatusResolved Status = "resolved"
	StatusArchived Status = "archived"
)

// Statuses lists every valid status.
var Statuses = []Status{StatusNew, StatusRead, StatusReplied, StatusResolved, StatusArchived}

// ParseStatus validates a raw status string against the closed set.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.TrimSpace(strings.ToLower(raw)))
	for _, s := range Statuses {
		if status == s {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, raw)
}

// Inquiry is one customer message.
type Inquiry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	Message   string    `json:"message"`
	ProductID string    `json:"product_id,omitempty"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Submission is the public form payload.
type Submission struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`
	Message   string `json:"message"`
	ProductID string `json:"product_id"`
}

// Store persists inquiries.
type Store interface {
	Create(ctx context.Context, inq *Inquiry) error
	Get(ctx context.Context, id string) (*Inquiry, error)
	// List returns inquiries newest first; status "" means all.
	List(ctx context.Context, status Status) ([]*Inquiry, error)
	SetStatus(ctx context.Context, id string, status Status) (*Inquiry, error)
	Delete(ctx context.Context, id string) error
}

// Service validates input, delegates to the store and publishes events for
// the admin live feed.
type Service struct {
	store  Store
	stream *stream.Stream
}

// NewService constructs Service. The stream is optional.
func NewService(store Store, st *stream.Stream) (*Service, error) {
	if store == nil {
		return nil, errors.New("inquiry store is required")
	}
	return &Service{store: store, stream: st}, nil
}

// Submit records a new inquiry from the public site.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Inquiry, error) {
	name := strings.TrimSpace(sub.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	email := strings.TrimSpace(strings.ToLower(sub.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	message := strings.TrimSpace(sub.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalidInput)
	}

	inq := &Inquiry{
		Name:      name,
		Email:     email,
		Phone:     strings.TrimSpace(sub.Phone),
		Company:   strings.TrimSpace(sub.Company),
		Message:   message,
		ProductID: strings.TrimSpace(sub.ProductID),
		Status:    StatusNew,
	}
	if err := s.store.Create(ctx, inq); err != nil {
		return nil, err
	}
	s.publish(inq)
	return inq, nil
}

// Get returns one inquiry by id.
func (s *Service) Get(ctx context.Context, id string) (*Inquiry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: inquiry id is required", ErrInvalidInput)
	}
	return s.store.Get(ctx, id)
}

// List returns inquiries, optionally filtered by status.
func (s *Service) List(ctx context.Context, status Status) ([]*Inquiry, error) {
	return s.store.List(ctx, status)
}

// MarkRead moves an inquiry out of the "new" state.
func (s *Service) MarkRead(ctx context.Context, id string) (*Inquiry, error) {
	return s.SetStatus(ctx, id, StatusRead)
}

// SetStatus transitions an inquiry to any of the fixed states.
func (s *Service) SetStatus(ctx context.Context, id string, status Status) (*Inquiry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: inquiry id is required", ErrInvalidInput)
	}
	if _, err := ParseStatus(string(status)); err != nil {
		return nil, err
	}
	inq, err := s.store.SetStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.publish(inq)
	return inq, nil
}

// Delete removes an inquiry.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: inquiry id is required", ErrInvalidInput)
	}
	return s.store.Delete(ctx, id)
}

func (s *Service) publish(inq *Inquiry) {
	if s.stream == nil {
		return
	}
	s.stream.Publish(stream.InquiryEvent{
		InquiryID: inq.ID,
		Name:      inq.Name,
		Company:   inq.Company,
		ProductID: inq.ProductID,
		Status:    string(inq.Status),
		Timestamp: time.Now().UTC(),
	})
}
