package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/JulianGiraldo97/pagadiario-sub000/internal/db"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/domain"
)

type DebtRepository struct {
	DB *db.Postgres
}

type CreateDebtParams struct {
	ClientID          uuid.UUID
	TotalAmount       decimal.Decimal
	InstallmentAmount decimal.Decimal
	Frequency         domain.Frequency
	StartDate         time.Time
	CreatedBy         uuid.UUID
}

// CreateWithSchedule inserts the debt and its full installment plan in a
// single transaction, so a failed schedule insert never leaves an orphan
// debt row behind.
func (r DebtRepository) CreateWithSchedule(ctx context.Context, p CreateDebtParams, items []domain.ScheduleItem) (*domain.Debt, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var debt domain.Debt
	err = tx.QueryRow(ctx, `
		INSERT INTO debts (client_id, total_amount, installment_amount, frequency, start_date, status, created_by, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,'active',$6, now(), now())
		RETURNING id, client_id, total_amount, installment_amount, frequency, start_date, status, created_by, created_at, updated_at
	`, p.ClientID, p.TotalAmount, p.InstallmentAmount, p.Frequency, p.StartDate, p.CreatedBy).Scan(
		&debt.ID, &debt.ClientID, &debt.TotalAmount, &debt.InstallmentAmount,
		&debt.Frequency, &debt.StartDate, &debt.Status, &debt.CreatedBy,
		&debt.CreatedAt, &debt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	for _, it := range items {
		_, err := tx.Exec(ctx, `
			INSERT INTO payment_schedule (debt_id, installment_number, due_date, amount, status)
			VALUES ($1,$2,$3,$4,'pending')
		`, debt.ID, it.InstallmentNumber, it.DueDate, it.Amount)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &debt, nil
}

func (r DebtRepository) List(ctx context.Context, clientID *uuid.UUID, status *domain.DebtStatus, limit int) ([]domain.Debt, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT d.id, d.client_id, c.name, d.total_amount, d.installment_amount,
		       d.frequency, d.start_date, d.status, d.created_by, d.created_at, d.updated_at
		FROM debts d
		JOIN clients c ON c.id = d.client_id
		WHERE ($1::uuid IS NULL OR d.client_id=$1)
		  AND ($2::text IS NULL OR d.status=$2)
		ORDER BY d.created_at DESC
		LIMIT $3
	`, clientID, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var debts []domain.Debt
	for rows.Next() {
		var d domain.Debt
		if err := rows.Scan(
			&d.ID, &d.ClientID, &d.ClientName, &d.TotalAmount, &d.InstallmentAmount,
			&d.Frequency, &d.StartDate, &d.Status, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, err
		}
		debts = append(debts, d)
	}
	return debts, rows.Err()
}

func (r DebtRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Debt, error) {
	var d domain.Debt
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT d.id, d.client_id, c.name, d.total_amount, d.installment_amount,
		       d.frequency, d.start_date, d.status, d.created_by, d.created_at, d.updated_at
		FROM debts d
		JOIN clients c ON c.id = d.client_id
		WHERE d.id=$1
	`, id).Scan(
		&d.ID, &d.ClientID, &d.ClientName, &d.TotalAmount, &d.InstallmentAmount,
		&d.Frequency, &d.StartDate, &d.Status, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// SetStatus performs a debt lifecycle transition. Debts are never
// physically deleted while schedule rows reference them.
func (r DebtRepository) SetStatus(ctx context.Context, id uuid.UUID, status domain.DebtStatus) error {
	tag, err := r.DB.Pool.Exec(ctx, `UPDATE debts SET status=$2, updated_at=now() WHERE id=$1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
