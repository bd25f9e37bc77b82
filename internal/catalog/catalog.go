// Package catalog manages the produce catalog shown on the marketing site
// and edited through the back office.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidInput = errors.New("catalog: invalid input")
	ErrNotFound     = errors.New("catalog: not found")
	ErrConflict     = errors.New("catalog: resource conflict")
)

// Product is one catalog entry.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	OriginCountry string    `json:"origin_country"`
	Description   string    `json:"description,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	IsFeatured    bool      `json:"is_featured"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProductUpdate carries optional field changes; nil means keep.
type ProductUpdate struct {
	Name          *string
	Category      *string
	OriginCountry *string
	Description   *string
	ImageURL      *string
	IsFeatured    *bool
	IsActive      *bool
}

// Store persists products.
type Store interface {
	Create(ctx context.Context, p *Product) error
	Get(ctx context.Context, id string) (*Product, error)
	// List returns products ordered by creation; inactive entries are
	// included only when includeInactive is set (admin views).
	List(ctx context.Context, includeInactive bool) ([]*Product, error)
	Update(ctx context.Context, id string, upd ProductUpdate) (*Product, error)
	Delete(ctx context.Context, id string) error
}

// Service validates input and delegates to the store.
type Service struct {
	store Store
}

// NewService constructs Service.
func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("catalog store is required")
	}
	return &Service{store: store}, nil
}

// Create registers a new product. New products start active.
func (s *Service) Create(ctx context.Context, name, category, origin, description, imageURL string, featured bool) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: product name is required", ErrInvalidInput)
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, fmt.Errorf("%w: category is required", ErrInvalidInput)
	}
	p := &Product{
		Name:          name,
		Category:      category,
		OriginCountry: strings.TrimSpace(origin),
		Description:   strings.TrimSpace(description),
		ImageURL:      strings.TrimSpace(imageURL),
		IsFeatured:    featured,
		IsActive:      true,
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns one product by id.
func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: product id is required", ErrInvalidInput)
	}
	return s.store.Get(ctx, id)
}

// List returns the catalog. Admin callers pass includeInactive.
func (s *Service) List(ctx context.Context, includeInactive bool) ([]*Product, error) {
	return s.store.List(ctx, includeInactive)
}

// Update applies partial changes to a product.
func (s *Service) Update(ctx context.Context, id string, upd ProductUpdate) (*Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: product id is required", ErrInvalidInput)
	}
	if upd.Name != nil {
		trimmed := strings.TrimSpace(*upd.Name)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: product name is required", ErrInvalidInput)
		}
		upd.Name = &trimmed
	}
	if upd.Category != nil {
		trimmed := strings.TrimSpace(*upd.Category)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: category is required", ErrInvalidInput)
		}
		upd.Category = &trimmed
	}
	return s.store.Update(ctx, id, upd)
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: product id is required", ErrInvalidInput)
	}
	return s.store.Delete(ctx, id)
}
