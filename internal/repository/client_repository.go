package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/JulianGiraldo97/pagadiario-sub000/internal/db"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/domain"
)

type ClientRepository struct {
	DB *db.Postgres
}

type CreateClientParams struct {
	Name       string
	DocumentID string
	Phone      string
	Address    string
	CreatedBy  uuid.UUID
}

func (r ClientRepository) Create(ctx context.Context, p CreateClientParams) (*domain.Client, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO clients (name, document_id, phone, address, created_by, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5, now(), now())
		RETURNING id, name, document_id, phone, address, created_by, created_at, updated_at
	`, p.Name, p.DocumentID, p.Phone, p.Address, p.CreatedBy)
	return scanClient(row)
}

func (r ClientRepository) List(ctx context.Context, limit int) ([]domain.Client, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, name, document_id, phone, address, created_by, created_at, updated_at
		FROM clients
		WHERE deleted_at IS NULL
		ORDER BY name ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

func (r ClientRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT id, name, document_id, phone, address, created_by, created_at, updated_at
		FROM clients
		WHERE id=$1 AND deleted_at IS NULL
	`, id)
	c, err := scanClient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

type UpdateClientParams struct {
	Name       string
	DocumentID string
	Phone      string
	Address    string
}

func (r ClientRepository) Update(ctx context.Context, id uuid.UUID, p UpdateClientParams) (*domain.Client, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE clients SET name=$2, document_id=$3, phone=$4, address=$5, updated_at=now()
		WHERE id=$1 AND deleted_at IS NULL
		RETURNING id, name, document_id, phone, address, created_by, created_at, updated_at
	`, id, p.Name, p.DocumentID, p.Phone, p.Address)
	c, err := scanClient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// Delete soft-deletes a client. Clients with active debts stay untouched
// and the call reports ErrReferenced.
func (r ClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var activeDebts int
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT count(*) FROM debts WHERE client_id=$1 AND status='active'
	`, id).Scan(&activeDebts)
	if err != nil {
		return err
	}
	if activeDebts > 0 {
		return ErrReferenced
	}
	tag, err := r.DB.Pool.Exec(ctx, `UPDATE clients SET deleted_at=now() WHERE id=$1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanClient(row interface {
	Scan(dest ...any) error
}) (*domain.Client, error) {
	var c domain.Client
	if err := row.Scan(
		&c.ID,
		&c.Name,
		&c.DocumentID,
		&c.Phone,
		&c.Address,
		&c.CreatedBy,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}
