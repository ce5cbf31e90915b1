package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JulianGiraldo97/pagadiario-sub000/internal/domain"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/repository"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/validate"
)

// DefaultEditWindow bounds how long a collector may amend or delete a
// payment they recorded. Deliberate business rule, not a technical limit.
const DefaultEditWindow = 24 * time.Hour

var (
	ErrDuplicatePayment = errors.New("assignment already has a payment")
	ErrEditWindowClosed = errors.New("payment can no longer be modified")
	ErrNotRecorder      = errors.New("only the original recorder may modify this payment")
)

type PaymentStore interface {
	Record(ctx context.Context, p repository.RecordPaymentParams) (*domain.Payment, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	Update(ctx context.Context, id uuid.UUID, p repository.UpdatePaymentParams) (*domain.Payment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type AssignmentStore interface {
	GetAssignment(ctx context.Context, id uuid.UUID) (*domain.RouteAssignment, error)
}

type ScheduleStore interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.ScheduleItem, error)
}

type PhotoSaver interface {
	Save(originalName, contentType string, size int64, r io.Reader) (string, error)
	Remove(name string) error
}

type PaymentService struct {
	Payments    PaymentStore
	Assignments AssignmentStore
	Schedule    ScheduleStore
	Photos      PhotoSaver
	EditWindow  time.Duration
}

// EvidenceUpload is an optional photo attached to an outcome.
type EvidenceUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Record validates and stores a visit outcome. At most one payment may
// exist per assignment; the store's uniqueness constraint backs this, so
// concurrent submissions cannot both land.
func (s PaymentService) Record(ctx context.Context, form validate.PaymentForm, photo *EvidenceUpload, recordedBy uuid.UUID) (*domain.Payment, error) {
	if res := validate.Payment(form); !res.Valid {
		return nil, &ValidationError{Fields: res.Errors}
	}

	assignment, err := s.Assignments.GetAssignment(ctx, uuid.MustParse(form.AssignmentID))
	if err != nil {
		return nil, err
	}

	// The linked installment names the debt the outcome settles against.
	if assignment.ScheduleItemID == nil {
		return nil, &ValidationError{Fields: map[string]string{
			"assignment_id": "assignment has no installment to collect",
		}}
	}
	item, err := s.Schedule.Get(ctx, *assignment.ScheduleItemID)
	if err != nil {
		return nil, err
	}

	var amount *decimal.Decimal
	if form.AmountPaid != "" {
		v, _ := decimal.NewFromString(form.AmountPaid)
		amount = &v
	}

	var photoName *string
	if photo != nil {
		name, err := s.Photos.Save(photo.Filename, photo.ContentType, photo.Size, photo.Body)
		if err != nil {
			return nil, &ValidationError{Fields: map[string]string{"photo": err.Error()}}
		}
		photoName = &name
	}

	pay, err := s.Payments.Record(ctx, repository.RecordPaymentParams{
		AssignmentID:   assignment.ID,
		DebtID:         item.DebtID,
		ScheduleItemID: assignment.ScheduleItemID,
		Status:         domain.PaymentStatus(form.PaymentStatus),
		AmountPaid:     amount,
		EvidencePhoto:  photoName,
		Notes:          form.Notes,
		RecordedBy:     recordedBy,
	})
	if err != nil {
		// The photo is orphaned if the insert lost the race; drop it.
		if photoName != nil {
			_ = s.Photos.Remove(*photoName)
		}
		if repository.IsDuplicate(err) {
			return nil, ErrDuplicatePayment
		}
		return nil, err
	}
	return pay, nil
}

type AmendInput struct {
	Status     string
	AmountPaid string
	Notes      string
}

// Amend updates an outcome. Collectors may only amend their own payments
// and only inside the edit window; admins bypass both checks.
func (s PaymentService) Amend(ctx context.Context, id uuid.UUID, in AmendInput, actor uuid.UUID, actorRole domain.Role) (*domain.Payment, error) {
	form := validate.PaymentForm{
		AssignmentID:  uuid.Nil.String(),
		PaymentStatus: in.Status,
		AmountPaid:    in.AmountPaid,
		Notes:         in.Notes,
	}
	if res := validate.Payment(form); !res.Valid {
		delete(res.Errors, "assignment_id")
		if len(res.Errors) > 0 {
			return nil, &ValidationError{Fields: res.Errors}
		}
	}

	pay, err := s.Payments.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(pay, actor, actorRole); err != nil {
		return nil, err
	}

	var amount *decimal.Decimal
	if in.AmountPaid != "" {
		v, _ := decimal.NewFromString(in.AmountPaid)
		amount = &v
	}
	return s.Payments.Update(ctx, id, repository.UpdatePaymentParams{
		Status:     domain.PaymentStatus(in.Status),
		AmountPaid: amount,
		Notes:      in.Notes,
	})
}

// Remove deletes an outcome under the same authorization rules as Amend,
// reverting the installment and assignment, and discarding the photo.
func (s PaymentService) Remove(ctx context.Context, id uuid.UUID, actor uuid.UUID, actorRole domain.Role) error {
	pay, err := s.Payments.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(pay, actor, actorRole); err != nil {
		return err
	}
	if err := s.Payments.Delete(ctx, id); err != nil {
		return err
	}
	if pay.EvidencePhoto != nil {
		_ = s.Photos.Remove(*pay.EvidencePhoto)
	}
	return nil
}

func (s PaymentService) authorize(pay *domain.Payment, actor uuid.UUID, actorRole domain.Role) error {
	if domain.HasPermission(actorRole, domain.RoleAdmin) {
		return nil
	}
	if pay.RecordedBy != actor {
		return ErrNotRecorder
	}
	window := s.EditWindow
	if window <= 0 {
		window = DefaultEditWindow
	}
	if time.Since(pay.RecordedAt) > window {
		return ErrEditWindowClosed
	}
	return nil
}
