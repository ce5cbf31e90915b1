package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JulianGiraldo97/pagadiario-sub000/internal/domain"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/repository"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/schedule"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/validate"
)

// DebtStore is the slice of the debt repository the service needs.
type DebtStore interface {
	CreateWithSchedule(ctx context.Context, p repository.CreateDebtParams, items []domain.ScheduleItem) (*domain.Debt, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Debt, error)
	SetStatus(ctx context.Context, id uuid.UUID, status domain.DebtStatus) error
}

type ClientGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Client, error)
}

type DebtService struct {
	Debts   DebtStore
	Clients ClientGetter
}

// maxInstallments bounds a plan to ten years of daily collection.
const maxInstallments = 3650

// ValidationError carries the per-field messages of a rejected form.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// CreateDebt validates the form, generates the installment plan and
// persists debt plus plan atomically.
func (s DebtService) CreateDebt(ctx context.Context, form validate.DebtForm, createdBy uuid.UUID) (*domain.Debt, []domain.ScheduleItem, error) {
	if res := validate.Debt(form); !res.Valid {
		return nil, nil, &ValidationError{Fields: res.Errors}
	}

	clientID := uuid.MustParse(form.ClientID)
	if _, err := s.Clients.Get(ctx, clientID); err != nil {
		return nil, nil, fmt.Errorf("client lookup: %w", err)
	}

	total, _ := decimal.NewFromString(form.TotalAmount)
	installment, _ := decimal.NewFromString(form.InstallmentAmount)
	startDate, _ := time.Parse("2006-01-02", form.StartDate)
	freq := domain.Frequency(form.Frequency)

	// Bound the plan length before generating it, so a tiny installment
	// against a large total cannot build a multi-million row schedule.
	if count := total.Div(installment).Ceil(); count.GreaterThan(decimal.NewFromInt(maxInstallments)) {
		return nil, nil, &ValidationError{Fields: map[string]string{
			"installment_amount": fmt.Sprintf("produces more than %d installments", maxInstallments),
		}}
	}

	items := schedule.Generate(total, installment, freq, startDate)
	if len(items) == 0 {
		return nil, nil, &ValidationError{Fields: map[string]string{"total_amount": "produces an empty schedule"}}
	}

	debt, err := s.Debts.CreateWithSchedule(ctx, repository.CreateDebtParams{
		ClientID:          clientID,
		TotalAmount:       total,
		InstallmentAmount: installment,
		Frequency:         freq,
		StartDate:         startDate,
		CreatedBy:         createdBy,
	}, items)
	if err != nil {
		return nil, nil, err
	}
	return debt, items, nil
}

// Transition moves a debt through its lifecycle. Completed and cancelled
// debts are terminal except that a cancelled debt cannot complete.
func (s DebtService) Transition(ctx context.Context, id uuid.UUID, next domain.DebtStatus) error {
	if !next.Valid() {
		return &ValidationError{Fields: map[string]string{"status": "must be one of: active, completed, cancelled"}}
	}
	debt, err := s.Debts.Get(ctx, id)
	if err != nil {
		return err
	}
	if !validTransition(debt.Status, next) {
		return &ValidationError{Fields: map[string]string{
			"status": fmt.Sprintf("cannot move from %s to %s", debt.Status, next),
		}}
	}
	return s.Debts.SetStatus(ctx, id, next)
}

func validTransition(from, to domain.DebtStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case domain.DebtActive:
		return true
	case domain.DebtCompleted:
		// Reopening a completed debt is an admin correction.
		return to == domain.DebtActive
	case domain.DebtCancelled:
		return to == domain.DebtActive
	}
	return false
}
