package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/JulianGiraldo97/pagadiario-sub000/internal/db"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/domain"
)

type ScheduleRepository struct {
	DB *db.Postgres
}

func (r ScheduleRepository) ListByDebt(ctx context.Context, debtID uuid.UUID) ([]domain.ScheduleItem, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, debt_id, installment_number, due_date, amount, status
		FROM payment_schedule
		WHERE debt_id=$1
		ORDER BY installment_number ASC
	`, debtID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.ScheduleItem
	for rows.Next() {
		var it domain.ScheduleItem
		if err := rows.Scan(&it.ID, &it.DebtID, &it.InstallmentNumber, &it.DueDate, &it.Amount, &it.Status); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r ScheduleRepository) Get(ctx context.Context, id uuid.UUID) (*domain.ScheduleItem, error) {
	var it domain.ScheduleItem
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT id, debt_id, installment_number, due_date, amount, status
		FROM payment_schedule
		WHERE id=$1
	`, id).Scan(&it.ID, &it.DebtID, &it.InstallmentNumber, &it.DueDate, &it.Amount, &it.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

// NextDue returns the earliest unpaid installment of a debt, or
// ErrNotFound when everything is settled.
func (r ScheduleRepository) NextDue(ctx context.Context, debtID uuid.UUID) (*domain.ScheduleItem, error) {
	var it domain.ScheduleItem
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT id, debt_id, installment_number, due_date, amount, status
		FROM payment_schedule
		WHERE debt_id=$1 AND status <> 'paid'
		ORDER BY installment_number ASC
		LIMIT 1
	`, debtID).Scan(&it.ID, &it.DebtID, &it.InstallmentNumber, &it.DueDate, &it.Amount, &it.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

// MarkOverdue materializes the overdue status for every pending
// installment whose due date has passed, and reports how many rows moved.
func (r ScheduleRepository) MarkOverdue(ctx context.Context) (int64, error) {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE payment_schedule SET status='overdue'
		WHERE status='pending' AND due_date < CURRENT_DATE
	`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
