package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JulianGiraldo97/pagadiario-sub000/internal/domain"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/repository"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/server/authctx"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/service"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/validate"
)

type DebtHandler struct {
	Service  service.DebtService
	Repo     repository.DebtRepository
	Schedule repository.ScheduleRepository
}

func (h DebtHandler) RegisterRoutes(r chi.Router) {
	r.Get("/debts", h.list)
	r.Post("/debts", h.create)
	r.Get("/debts/{id}", h.get)
	r.Get("/debts/{id}/schedule", h.schedule)
	r.Put("/debts/{id}/status", h.setStatus)
	r.Post("/schedule/refresh-overdue", h.refreshOverdue)
}

func (h DebtHandler) list(w http.ResponseWriter, r *http.Request) {
	var clientID *uuid.UUID
	if raw := r.URL.Query().Get("clientId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid clientId")
			return
		}
		clientID = &id
	}
	var status *domain.DebtStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := domain.DebtStatus(raw)
		if !s.Valid() {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		status = &s
	}

	debts, err := h.Repo.List(r.Context(), clientID, status, 200)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(debts))
	for _, d := range debts {
		resp = append(resp, debtJSON(d))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h DebtHandler) create(w http.ResponseWriter, r *http.Request) {
	var form validate.DebtForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	debt, items, err := h.Service.CreateDebt(r.Context(), form, user.ID)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			writeFieldErrors(w, verr.Fields)
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "client not found")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"debt":         debtJSON(*debt),
		"installments": len(items),
	})
}

func (h DebtHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	debt, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "debt not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, debtJSON(*debt))
}

func (h DebtHandler) schedule(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	items, err := h.Schedule.ListByDebt(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, it := range items {
		resp = append(resp, map[string]any{
			"id":                 it.ID,
			"installment_number": it.InstallmentNumber,
			"due_date":           it.DueDate.Format(dateLayout),
			"amount":             it.Amount,
			"status":             it.Status,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h DebtHandler) setStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.Service.Transition(r.Context(), id, domain.DebtStatus(req.Status)); err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			writeFieldErrors(w, verr.Fields)
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "debt not found")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h DebtHandler) refreshOverdue(w http.ResponseWriter, r *http.Request) {
	moved, err := h.Schedule.MarkOverdue(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"marked_overdue": moved})
}

func debtJSON(d domain.Debt) map[string]any {
	return map[string]any{
		"id":                 d.ID,
		"client_id":          d.ClientID,
		"client_name":        d.ClientName,
		"total_amount":       d.TotalAmount,
		"installment_amount": d.InstallmentAmount,
		"frequency":          d.Frequency,
		"start_date":         d.StartDate.Format(dateLayout),
		"status":             d.Status,
		"created_at":         d.CreatedAt,
	}
}
