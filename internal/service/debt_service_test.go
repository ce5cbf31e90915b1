package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JulianGiraldo97/pagadiario-sub000/internal/domain"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/repository"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/validate"
)

type fakeDebtStore struct {
	created *repository.CreateDebtParams
	items   []domain.ScheduleItem
	debts   map[uuid.UUID]*domain.Debt
	status  map[uuid.UUID]domain.DebtStatus
}

func newFakeDebtStore() *fakeDebtStore {
	return &fakeDebtStore{debts: map[uuid.UUID]*domain.Debt{}, status: map[uuid.UUID]domain.DebtStatus{}}
}

func (f *fakeDebtStore) CreateWithSchedule(_ context.Context, p repository.CreateDebtParams, items []domain.ScheduleItem) (*domain.Debt, error) {
	f.created = &p
	f.items = items
	debt := &domain.Debt{
		ID:                uuid.New(),
		ClientID:          p.ClientID,
		TotalAmount:       p.TotalAmount,
		InstallmentAmount: p.InstallmentAmount,
		Frequency:         p.Frequency,
		StartDate:         p.StartDate,
		Status:            domain.DebtActive,
	}
	f.debts[debt.ID] = debt
	return debt, nil
}

func (f *fakeDebtStore) Get(_ context.Context, id uuid.UUID) (*domain.Debt, error) {
	d, ok := f.debts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return d, nil
}

func (f *fakeDebtStore) SetStatus(_ context.Context, id uuid.UUID, status domain.DebtStatus) error {
	if _, ok := f.debts[id]; !ok {
		return repository.ErrNotFound
	}
	f.debts[id].Status = status
	f.status[id] = status
	return nil
}

type fakeClientGetter struct {
	known map[uuid.UUID]bool
}

func (f fakeClientGetter) Get(_ context.Context, id uuid.UUID) (*domain.Client, error) {
	if !f.known[id] {
		return nil, repository.ErrNotFound
	}
	return &domain.Client{ID: id, Name: "Juan Pérez"}, nil
}

func validDebtForm(clientID uuid.UUID) validate.DebtForm {
	return validate.DebtForm{
		ClientID:          clientID.String(),
		TotalAmount:       "1000",
		InstallmentAmount: "300",
		Frequency:         "daily",
		StartDate:         "2024-01-01",
	}
}

func TestCreateDebt_GeneratesAndPersistsSchedule(t *testing.T) {
	clientID := uuid.New()
	store := newFakeDebtStore()
	svc := DebtService{Debts: store, Clients: fakeClientGetter{known: map[uuid.UUID]bool{clientID: true}}}

	debt, items, err := svc.CreateDebt(context.Background(), validDebtForm(clientID), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, domain.DebtActive, debt.Status)
	require.Len(t, items, 4)
	assert.True(t, items[3].Amount.Equal(decimal.NewFromInt(100)))
	require.NotNil(t, store.created)
	assert.Equal(t, clientID, store.created.ClientID)

	total := decimal.Zero
	for _, it := range store.items {
		total = total.Add(it.Amount)
	}
	assert.True(t, total.Equal(decimal.NewFromInt(1000)), "persisted schedule must sum to the debt total")
}

func TestCreateDebt_RejectsInvalidForm(t *testing.T) {
	svc := DebtService{Debts: newFakeDebtStore(), Clients: fakeClientGetter{}}

	form := validDebtForm(uuid.New())
	form.Frequency = "monthly"
	_, _, err := svc.CreateDebt(context.Background(), form, uuid.New())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "frequency")
}

func TestCreateDebt_RejectsOversizedPlan(t *testing.T) {
	clientID := uuid.New()
	store := newFakeDebtStore()
	svc := DebtService{Debts: store, Clients: fakeClientGetter{known: map[uuid.UUID]bool{clientID: true}}}

	form := validDebtForm(clientID)
	form.TotalAmount = "150000"
	form.InstallmentAmount = "0.01"
	_, _, err := svc.CreateDebt(context.Background(), form, uuid.New())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "installment_amount")
	assert.Nil(t, store.created, "an oversized plan must not reach the store")
}

func TestCreateDebt_AcceptsPlanAtCap(t *testing.T) {
	clientID := uuid.New()
	store := newFakeDebtStore()
	svc := DebtService{Debts: store, Clients: fakeClientGetter{known: map[uuid.UUID]bool{clientID: true}}}

	form := validDebtForm(clientID)
	form.TotalAmount = "3650"
	form.InstallmentAmount = "1"
	_, items, err := svc.CreateDebt(context.Background(), form, uuid.New())
	require.NoError(t, err)
	assert.Len(t, items, maxInstallments)
}

func TestCreateDebt_UnknownClient(t *testing.T) {
	svc := DebtService{Debts: newFakeDebtStore(), Clients: fakeClientGetter{known: map[uuid.UUID]bool{}}}

	_, _, err := svc.CreateDebt(context.Background(), validDebtForm(uuid.New()), uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTransition(t *testing.T) {
	store := newFakeDebtStore()
	svc := DebtService{Debts: store, Clients: fakeClientGetter{}}

	debt := &domain.Debt{ID: uuid.New(), Status: domain.DebtActive, StartDate: time.Now()}
	store.debts[debt.ID] = debt

	require.NoError(t, svc.Transition(context.Background(), debt.ID, domain.DebtCancelled))
	assert.Equal(t, domain.DebtCancelled, store.status[debt.ID])

	// A cancelled debt cannot complete.
	err := svc.Transition(context.Background(), debt.ID, domain.DebtCompleted)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	// But it can be reactivated.
	require.NoError(t, svc.Transition(context.Background(), debt.ID, domain.DebtActive))

	err = svc.Transition(context.Background(), debt.ID, domain.DebtStatus("paused"))
	require.ErrorAs(t, err, &verr)
}
