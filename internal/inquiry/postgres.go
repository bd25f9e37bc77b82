package inquiry

import (
	"context"
	"database/sql"
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

const inquiryColumns = `id, name, email, phone, company, message,
	coalesce(product_id, ''), status, created_at, updated_at`

func scanInquiry(row interface{ Scan(...any) error }) (*Inquiry, error) {
	var inq Inquiry
	err := row.Scan(
		&inq.ID, &inq.Name, &inq.Email, &inq.Phone, &inq.Company, &inq.Message,
		&inq.ProductID, &inq.Status, &inq.CreatedAt, &inq.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inq, nil
}

func (s *PGStore) Create(ctx context.Context, inq *Inquiry) error {
	if inq.ID == "" {
		inq.ID = ids.New()
	}
	var productID any
	if inq.ProductID != "" {
		productID = inq.ProductID
	}
	row := s.db.QueryRowContext(ctx, `
		insert into inquiries (id, name, email, phone, company, message, product_id, status)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
		returning created_at, updated_at
	`, inq.ID, inq.Name, inq.Email, inq.Phone, inq.Company, inq.Message, productID, inq.Status)
	return row.Scan(&inq.CreatedAt, &inq.UpdatedAt)
}

func (s *PGStore) Get(ctx context.Context, id string) (*Inquiry, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+inquiryColumns+` from inquiries where id = $1`, id)
	return scanInquiry(row)
}

func (s *PGStore) List(ctx context.Context, status Status) ([]*Inquiry, error) {
	query := `select ` + inquiryColumns + ` from inquiries`
	var args []any
	if status != "" {
		query += ` where status = $1`
		args = append(args, status)
	}
	query += ` order by created_at desc`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var inquiries []*Inquiry
	for rows.Next() {
		inq, err := scanInquiry(rows)
		if err != nil {
			return nil, err
		}
		inquiries = append(inquiries, inq)
	}
	return inquiries, rows.Err()
}

func (s *PGStore) SetStatus(ctx context.Context, id string, status Status) (*Inquiry, error) {
	row := s.db.QueryRowContext(ctx, `
		update inquiries set status = $2, updated_at = now()
		where id = $1
		returning `+inquiryColumns, id, status)
	return scanInquiry(row)
}

func (s *PGStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from inquiries where id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
