package handler

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JulianGiraldo97/pagadiario-sub000/internal/domain"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/repository"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/sanitize"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/seclog"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/server/authctx"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/service"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/validate"
)

type PaymentHandler struct {
	Service service.PaymentService
	Audit   *seclog.Log

	// PublicBaseURL prefixes evidence photo links. Empty means
	// server-relative paths.
	PublicBaseURL string

	// MaxUpload caps the multipart memory buffer. Zero means 8 MiB.
	MaxUpload int64
}

func (h PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Post("/assignments/{id}/payment", h.record)
	r.Put("/payments/{id}", h.amend)
	r.Delete("/payments/{id}", h.remove)
	r.Get("/payments/{id}", h.get)
}

// record stores the outcome of a visit. The evidence photo, when present,
// arrives as the multipart part named "photo"; plain JSON bodies are
// accepted for outcomes without one.
func (h PaymentHandler) record(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	assignmentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	form, photo, ok := h.decodeOutcome(w, r)
	if !ok {
		return
	}
	form.AssignmentID = assignmentID.String()
	form.Notes = sanitize.Text(form.Notes, 500)

	pay, err := h.Service.Record(r.Context(), form, photo, user.ID)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			h.auditOutcome(r, user, seclog.EventValidationFailed, false, firstKey(verr.Fields))
			writeFieldErrors(w, verr.Fields)
		case errors.Is(err, service.ErrDuplicatePayment):
			h.auditOutcome(r, user, seclog.EventPaymentRecorded, false, "duplicate for assignment "+assignmentID.String())
			writeError(w, http.StatusConflict, "assignment already has a payment")
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "assignment not found")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	h.auditOutcome(r, user, seclog.EventPaymentRecorded, true, string(pay.Status))
	writeJSON(w, http.StatusCreated, h.paymentJSON(*pay))
}

func (h PaymentHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	pay, err := h.Service.Payments.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "payment not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.paymentJSON(*pay))
}

func (h PaymentHandler) amend(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req struct {
		PaymentStatus string `json:"payment_status"`
		AmountPaid    string `json:"amount_paid"`
		Notes         string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	pay, err := h.Service.Amend(r.Context(), id, service.AmendInput{
		Status:     req.PaymentStatus,
		AmountPaid: req.AmountPaid,
		Notes:      sanitize.Text(req.Notes, 500),
	}, user.ID, user.Role)
	if err != nil {
		h.writeAmendError(w, r, user, err)
		return
	}
	writeJSON(w, http.StatusOK, h.paymentJSON(*pay))
}

func (h PaymentHandler) remove(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Service.Remove(r.Context(), id, user.ID, user.Role); err != nil {
		h.writeAmendError(w, r, user, err)
		return
	}
	h.auditOutcome(r, user, seclog.EventPaymentDeleted, true, id.String())
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeOutcome reads the payment fields from either a multipart form or
// a JSON body. On failure it has already written the response.
func (h PaymentHandler) decodeOutcome(w http.ResponseWriter, r *http.Request) (validate.PaymentForm, *service.EvidenceUpload, bool) {
	var form validate.PaymentForm

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if !strings.HasPrefix(ct, "multipart/") {
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			writeError(w, http.StatusBadRequest, "invalid payload")
			return form, nil, false
		}
		return form, nil, true
	}

	maxMem := h.MaxUpload
	if maxMem <= 0 {
		maxMem = 8 << 20
	}
	if err := r.ParseMultipartForm(maxMem); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart payload")
		return form, nil, false
	}
	form.PaymentStatus = r.FormValue("payment_status")
	form.AmountPaid = r.FormValue("amount_paid")
	form.Notes = r.FormValue("notes")

	file, header, err := r.FormFile("photo")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return form, nil, true
		}
		writeError(w, http.StatusBadRequest, "invalid photo upload")
		return form, nil, false
	}
	// The reader stays open for the service; ParseMultipartForm cleanup
	// closes it when the request ends.
	return form, &service.EvidenceUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}, true
}

func (h PaymentHandler) writeAmendError(w http.ResponseWriter, r *http.Request, user *authctx.CurrentUser, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeFieldErrors(w, verr.Fields)
	case errors.Is(err, service.ErrNotRecorder):
		h.auditOutcome(r, user, seclog.EventAccessDenied, false, "not the recorder")
		writeError(w, http.StatusForbidden, "only the original recorder may modify this payment")
	case errors.Is(err, service.ErrEditWindowClosed):
		h.auditOutcome(r, user, seclog.EventAccessDenied, false, "edit window closed")
		writeError(w, http.StatusForbidden, "payment can no longer be modified")
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "payment not found")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h PaymentHandler) auditOutcome(r *http.Request, user *authctx.CurrentUser, event string, success bool, details string) {
	level := seclog.LevelInfo
	if !success {
		level = seclog.LevelWarning
	}
	h.Audit.Record(seclog.Entry{
		Level: level, Event: event,
		UserID: &user.ID, Role: user.Role,
		Path: r.URL.Path, Details: details, Success: success,
	})
}

func (h PaymentHandler) paymentJSON(p domain.Payment) map[string]any {
	m := map[string]any{
		"id":             p.ID,
		"assignment_id":  p.AssignmentID,
		"debt_id":        p.DebtID,
		"payment_status": p.Status,
		"notes":          p.Notes,
		"recorded_by":    p.RecordedBy,
		"recorded_at":    p.RecordedAt,
		"updated_at":     p.UpdatedAt,
	}
	if p.ScheduleItemID != nil {
		m["schedule_item_id"] = p.ScheduleItemID
	}
	if p.AmountPaid != nil {
		m["amount_paid"] = p.AmountPaid
	}
	if p.EvidencePhoto != nil {
		m["evidence_photo"] = strings.TrimSuffix(h.PublicBaseURL, "/") + "/uploads/" + *p.EvidencePhoto
	}
	return m
}
