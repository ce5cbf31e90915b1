package service

import (
	"context"
	"io"
	"strings"
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

type fakePaymentStore struct {
	byID       map[uuid.UUID]*domain.Payment
	taken      map[uuid.UUID]bool
	deleted    []uuid.UUID
	lastRecord *repository.RecordPaymentParams
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{byID: map[uuid.UUID]*domain.Payment{}, taken: map[uuid.UUID]bool{}}
}

func (f *fakePaymentStore) Record(_ context.Context, p repository.RecordPaymentParams) (*domain.Payment, error) {
	if f.taken[p.AssignmentID] {
		return nil, repository.ErrDuplicate
	}
	f.taken[p.AssignmentID] = true
	f.lastRecord = &p
	pay := &domain.Payment{
		ID:             uuid.New(),
		AssignmentID:   p.AssignmentID,
		DebtID:         p.DebtID,
		ScheduleItemID: p.ScheduleItemID,
		Status:         p.Status,
		AmountPaid:     p.AmountPaid,
		EvidencePhoto:  p.EvidencePhoto,
		Notes:          p.Notes,
		RecordedBy:     p.RecordedBy,
		RecordedAt:     time.Now(),
	}
	f.byID[pay.ID] = pay
	return pay, nil
}

func (f *fakePaymentStore) Get(_ context.Context, id uuid.UUID) (*domain.Payment, error) {
	pay, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return pay, nil
}

func (f *fakePaymentStore) Update(_ context.Context, id uuid.UUID, p repository.UpdatePaymentParams) (*domain.Payment, error) {
	pay, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	pay.Status = p.Status
	pay.AmountPaid = p.AmountPaid
	pay.Notes = p.Notes
	return pay, nil
}

func (f *fakePaymentStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeAssignmentStore struct {
	assignments map[uuid.UUID]*domain.RouteAssignment
}

func (f fakeAssignmentStore) GetAssignment(_ context.Context, id uuid.UUID) (*domain.RouteAssignment, error) {
	a, ok := f.assignments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return a, nil
}

type fakeScheduleStore struct {
	items map[uuid.UUID]*domain.ScheduleItem
}

func (f fakeScheduleStore) Get(_ context.Context, id uuid.UUID) (*domain.ScheduleItem, error) {
	it, ok := f.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return it, nil
}

type fakePhotos struct {
	saved   []string
	removed []string
	fail    error
}

func (f *fakePhotos) Save(originalName, _ string, _ int64, _ io.Reader) (string, error) {
	if f.fail != nil {
		return "", f.fail
	}
	name := "123-abcd-" + originalName
	f.saved = append(f.saved, name)
	return name, nil
}

func (f *fakePhotos) Remove(name string) error {
	f.removed = append(f.removed, name)
	return nil
}

type paymentFixture struct {
	svc          PaymentService
	store        *fakePaymentStore
	photos       *fakePhotos
	assignmentID uuid.UUID
	collector    uuid.UUID
}

func newPaymentFixture() *paymentFixture {
	assignmentID := uuid.New()
	itemID := uuid.New()
	debtID := uuid.New()

	store := newFakePaymentStore()
	photos := &fakePhotos{}
	svc := PaymentService{
		Payments: store,
		Assignments: fakeAssignmentStore{assignments: map[uuid.UUID]*domain.RouteAssignment{
			assignmentID: {ID: assignmentID, ScheduleItemID: &itemID},
		}},
		Schedule: fakeScheduleStore{items: map[uuid.UUID]*domain.ScheduleItem{
			itemID: {ID: itemID, DebtID: debtID, InstallmentNumber: 1, Amount: decimal.NewFromInt(300)},
		}},
		Photos: photos,
	}
	return &paymentFixture{svc: svc, store: store, photos: photos, assignmentID: assignmentID, collector: uuid.New()}
}

func paidForm(assignmentID uuid.UUID) validate.PaymentForm {
	return validate.PaymentForm{
		AssignmentID:  assignmentID.String(),
		PaymentStatus: "paid",
		AmountPaid:    "300",
		Notes:         "cuota 1",
	}
}

func TestRecord_Paid(t *testing.T) {
	fx := newPaymentFixture()

	pay, err := fx.svc.Record(context.Background(), paidForm(fx.assignmentID), nil, fx.collector)
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentPaid, pay.Status)
	require.NotNil(t, pay.AmountPaid)
	assert.True(t, pay.AmountPaid.Equal(decimal.NewFromInt(300)))
	require.NotNil(t, fx.store.lastRecord)
	assert.Equal(t, fx.collector, fx.store.lastRecord.RecordedBy)
}

func TestRecord_DuplicateAssignment(t *testing.T) {
	fx := newPaymentFixture()

	_, err := fx.svc.Record(context.Background(), paidForm(fx.assignmentID), nil, fx.collector)
	require.NoError(t, err)

	_, err = fx.svc.Record(context.Background(), paidForm(fx.assignmentID), nil, fx.collector)
	assert.ErrorIs(t, err, ErrDuplicatePayment)
}

func TestRecord_DuplicateDiscardsUploadedPhoto(t *testing.T) {
	fx := newPaymentFixture()
	_, err := fx.svc.Record(context.Background(), paidForm(fx.assignmentID), nil, fx.collector)
	require.NoError(t, err)

	photo := &EvidenceUpload{Filename: "recibo.jpg", ContentType: "image/jpeg", Size: 10, Body: strings.NewReader("x")}
	_, err = fx.svc.Record(context.Background(), paidForm(fx.assignmentID), photo, fx.collector)
	require.ErrorIs(t, err, ErrDuplicatePayment)
	require.Len(t, fx.photos.removed, 1)
	assert.Equal(t, fx.photos.saved[0], fx.photos.removed[0])
}

func TestRecord_AbsentNeedsNoAmount(t *testing.T) {
	fx := newPaymentFixture()

	form := validate.PaymentForm{AssignmentID: fx.assignmentID.String(), PaymentStatus: "client_absent"}
	pay, err := fx.svc.Record(context.Background(), form, nil, fx.collector)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentAbsent, pay.Status)
	assert.Nil(t, pay.AmountPaid)
}

func TestRecord_InvalidForm(t *testing.T) {
	fx := newPaymentFixture()

	form := paidForm(fx.assignmentID)
	form.AmountPaid = "-1"
	_, err := fx.svc.Record(context.Background(), form, nil, fx.collector)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "amount_paid")
}

func TestAmend_WindowAndOwnership(t *testing.T) {
	fx := newPaymentFixture()
	pay, err := fx.svc.Record(context.Background(), paidForm(fx.assignmentID), nil, fx.collector)
	require.NoError(t, err)

	in := AmendInput{Status: "not_paid", Notes: "se corrigió"}

	// Another collector cannot touch it.
	_, err = fx.svc.Amend(context.Background(), pay.ID, in, uuid.New(), domain.RoleCollector)
	assert.ErrorIs(t, err, ErrNotRecorder)

	// The recorder can, inside the window.
	updated, err := fx.svc.Amend(context.Background(), pay.ID, in, fx.collector, domain.RoleCollector)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentNotPaid, updated.Status)

	// Outside the window the recorder is locked out, admins are not.
	fx.store.byID[pay.ID].RecordedAt = time.Now().Add(-25 * time.Hour)
	_, err = fx.svc.Amend(context.Background(), pay.ID, in, fx.collector, domain.RoleCollector)
	assert.ErrorIs(t, err, ErrEditWindowClosed)

	_, err = fx.svc.Amend(context.Background(), pay.ID, in, uuid.New(), domain.RoleAdmin)
	assert.NoError(t, err)
}

func TestRemove_DiscardsPhoto(t *testing.T) {
	fx := newPaymentFixture()
	photo := &EvidenceUpload{Filename: "recibo.jpg", ContentType: "image/jpeg", Size: 10, Body: strings.NewReader("x")}
	pay, err := fx.svc.Record(context.Background(), paidForm(fx.assignmentID), photo, fx.collector)
	require.NoError(t, err)
	require.NotNil(t, pay.EvidencePhoto)

	require.NoError(t, fx.svc.Remove(context.Background(), pay.ID, fx.collector, domain.RoleCollector))
	assert.Contains(t, fx.photos.removed, *pay.EvidencePhoto)
	assert.Contains(t, fx.store.deleted, pay.ID)
}
