package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/JulianGiraldo97/pagadiario-sub000/internal/db"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/domain"
)

type PaymentRepository struct {
	DB *db.Postgres
}

type RecordPaymentParams struct {
	AssignmentID   uuid.UUID
	DebtID         uuid.UUID
	ScheduleItemID *uuid.UUID
	Status         domain.PaymentStatus
	AmountPaid     *decimal.Decimal
	EvidencePhoto  *string
	Notes          string
	RecordedBy     uuid.UUID
}

// Record inserts the payment and applies its side effects in one
// transaction: the visited assignment, the paid installment, and the debt
// completion when the final installment settles. The unique constraint on
// payments.assignment_id makes a second outcome for the same visit fail
// with ErrDuplicate instead of racing a prior existence check.
func (r PaymentRepository) Record(ctx context.Context, p RecordPaymentParams) (*domain.Payment, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var pay domain.Payment
	err = tx.QueryRow(ctx, `
		INSERT INTO payments (assignment_id, debt_id, schedule_item_id, status, amount_paid, evidence_photo, notes, recorded_by, recorded_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8, now(), now())
		RETURNING id, assignment_id, debt_id, schedule_item_id, status, amount_paid, evidence_photo, notes, recorded_by, recorded_at, updated_at
	`, p.AssignmentID, p.DebtID, p.ScheduleItemID, p.Status, p.AmountPaid, p.EvidencePhoto, p.Notes, p.RecordedBy).Scan(
		&pay.ID, &pay.AssignmentID, &pay.DebtID, &pay.ScheduleItemID, &pay.Status,
		&pay.AmountPaid, &pay.EvidencePhoto, &pay.Notes, &pay.RecordedBy, &pay.RecordedAt, &pay.UpdatedAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	if _, err := tx.Exec(ctx, `UPDATE route_assignments SET status='visited' WHERE id=$1`, p.AssignmentID); err != nil {
		return nil, err
	}

	if p.Status == domain.PaymentPaid && p.ScheduleItemID != nil {
		if _, err := tx.Exec(ctx, `UPDATE payment_schedule SET status='paid' WHERE id=$1`, *p.ScheduleItemID); err != nil {
			return nil, err
		}
		var unpaid int
		err = tx.QueryRow(ctx, `
			SELECT count(*) FROM payment_schedule WHERE debt_id=$1 AND status <> 'paid'
		`, p.DebtID).Scan(&unpaid)
		if err != nil {
			return nil, err
		}
		if unpaid == 0 {
			if _, err := tx.Exec(ctx, `UPDATE debts SET status='completed', updated_at=now() WHERE id=$1`, p.DebtID); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &pay, nil
}

func (r PaymentRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	var pay domain.Payment
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT id, assignment_id, debt_id, schedule_item_id, status, amount_paid, evidence_photo, notes, recorded_by, recorded_at, updated_at
		FROM payments
		WHERE id=$1
	`, id).Scan(
		&pay.ID, &pay.AssignmentID, &pay.DebtID, &pay.ScheduleItemID, &pay.Status,
		&pay.AmountPaid, &pay.EvidencePhoto, &pay.Notes, &pay.RecordedBy, &pay.RecordedAt, &pay.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &pay, nil
}

func (r PaymentRepository) GetByAssignment(ctx context.Context, assignmentID uuid.UUID) (*domain.Payment, error) {
	var pay domain.Payment
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT id, assignment_id, debt_id, schedule_item_id, status, amount_paid, evidence_photo, notes, recorded_by, recorded_at, updated_at
		FROM payments
		WHERE assignment_id=$1
	`, assignmentID).Scan(
		&pay.ID, &pay.AssignmentID, &pay.DebtID, &pay.ScheduleItemID, &pay.Status,
		&pay.AmountPaid, &pay.EvidencePhoto, &pay.Notes, &pay.RecordedBy, &pay.RecordedAt, &pay.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &pay, nil
}

type UpdatePaymentParams struct {
	Status     domain.PaymentStatus
	AmountPaid *decimal.Decimal
	Notes      string
}

// Update rewrites a payment's outcome and re-derives the linked
// installment's status from the new outcome.
func (r PaymentRepository) Update(ctx context.Context, id uuid.UUID, p UpdatePaymentParams) (*domain.Payment, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var pay domain.Payment
	err = tx.QueryRow(ctx, `
		UPDATE payments SET status=$2, amount_paid=$3, notes=$4, updated_at=now()
		WHERE id=$1
		RETURNING id, assignment_id, debt_id, schedule_item_id, status, amount_paid, evidence_photo, notes, recorded_by, recorded_at, updated_at
	`, id, p.Status, p.AmountPaid, p.Notes).Scan(
		&pay.ID, &pay.AssignmentID, &pay.DebtID, &pay.ScheduleItemID, &pay.Status,
		&pay.AmountPaid, &pay.EvidencePhoto, &pay.Notes, &pay.RecordedBy, &pay.RecordedAt, &pay.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if pay.ScheduleItemID != nil {
		itemStatus := domain.InstallmentPending
		if pay.Status == domain.PaymentPaid {
			itemStatus = domain.InstallmentPaid
		}
		if _, err := tx.Exec(ctx, `UPDATE payment_schedule SET status=$2 WHERE id=$1`, *pay.ScheduleItemID, itemStatus); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &pay, nil
}

// Delete removes a payment and reverts its side effects: the assignment
// goes back to pending and a paid installment back to pending.
func (r PaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var (
		assignmentID   uuid.UUID
		scheduleItemID *uuid.UUID
		debtID         uuid.UUID
	)
	err = tx.QueryRow(ctx, `
		DELETE FROM payments WHERE id=$1
		RETURNING assignment_id, schedule_item_id, debt_id
	`, id).Scan(&assignmentID, &scheduleItemID, &debtID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if _, err := tx.Exec(ctx, `UPDATE route_assignments SET status='pending' WHERE id=$1`, assignmentID); err != nil {
		return err
	}
	if scheduleItemID != nil {
		if _, err := tx.Exec(ctx, `UPDATE payment_schedule SET status='pending' WHERE id=$1 AND status='paid'`, *scheduleItemID); err != nil {
			return err
		}
		// Deleting the payment that completed the debt reopens it.
		if _, err := tx.Exec(ctx, `UPDATE debts SET status='active', updated_at=now() WHERE id=$1 AND status='completed'`, debtID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
