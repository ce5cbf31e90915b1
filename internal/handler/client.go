package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JulianGiraldo97/pagadiario-sub000/internal/domain"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/repository"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/sanitize"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/seclog"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/server/authctx"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/validate"
)

type ClientHandler struct {
	Repo  repository.ClientRepository
	Audit *seclog.Log
}

// RegisterRoutes mounts the admin CRUD surface.
func (h ClientHandler) RegisterRoutes(r chi.Router) {
	r.Get("/clients", h.list)
	r.Post("/clients", h.create)
	r.Put("/clients/{id}", h.update)
	r.Delete("/clients/{id}", h.delete)
}

// RegisterReadRoutes mounts the read-only view collectors get.
func (h ClientHandler) RegisterReadRoutes(r chi.Router) {
	r.Get("/clients/{id}", h.get)
}

func (h ClientHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.Repo.List(r.Context(), 500)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, c := range items {
		resp = append(resp, clientJSON(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h ClientHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	c, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "client not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, clientJSON(*c))
}

func (h ClientHandler) create(w http.ResponseWriter, r *http.Request) {
	form, fields, ok := h.decodeForm(w, r)
	if !ok {
		return
	}
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	c, err := h.Repo.Create(r.Context(), repository.CreateClientParams{
		Name:       fields.name,
		DocumentID: sanitize.Text(form.DocumentID, 20),
		Phone:      fields.phone,
		Address:    fields.address,
		CreatedBy:  user.ID,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, clientJSON(*c))
}

func (h ClientHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	form, fields, ok := h.decodeForm(w, r)
	if !ok {
		return
	}
	c, err := h.Repo.Update(r.Context(), id, repository.UpdateClientParams{
		Name:       fields.name,
		DocumentID: sanitize.Text(form.DocumentID, 20),
		Phone:      fields.phone,
		Address:    fields.address,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "client not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, clientJSON(*c))
}

func (h ClientHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrReferenced):
			writeError(w, http.StatusConflict, "client has active debts")
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "client not found")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type sanitizedClient struct {
	name    string
	phone   string
	address string
}

// decodeForm parses, validates and sanitizes the client payload. On
// failure it has already written the response.
func (h ClientHandler) decodeForm(w http.ResponseWriter, r *http.Request) (validate.ClientForm, sanitizedClient, bool) {
	var form validate.ClientForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return form, sanitizedClient{}, false
	}
	if res := validate.Client(form); !res.Valid {
		h.auditRejection(r, res.Errors)
		writeFieldErrors(w, res.Errors)
		return form, sanitizedClient{}, false
	}

	fields := sanitizedClient{}
	errs := map[string]string{}
	var err error
	if fields.name, err = sanitize.Name(form.Name); err != nil {
		errs["name"] = err.Error()
	}
	if fields.phone, err = sanitize.Phone(form.Phone); err != nil {
		errs["phone"] = err.Error()
	}
	if fields.address, err = sanitize.Address(form.Address); err != nil {
		errs["address"] = err.Error()
	}
	if len(errs) > 0 {
		h.auditRejection(r, errs)
		writeFieldErrors(w, errs)
		return form, sanitizedClient{}, false
	}
	return form, fields, true
}

func (h ClientHandler) auditRejection(r *http.Request, fields map[string]string) {
	entry := seclog.Entry{
		Level: seclog.LevelWarning, Event: seclog.EventValidationFailed,
		Path: r.URL.Path, Details: firstKey(fields),
	}
	if user := authctx.FromContext(r.Context()); user != nil {
		entry.UserID = &user.ID
		entry.Role = user.Role
	}
	h.Audit.Record(entry)
}

func firstKey(m map[string]string) string {
	for k := range m {
		return k
	}
	return ""
}

func clientJSON(c domain.Client) map[string]any {
	return map[string]any{
		"id":          c.ID,
		"name":        c.Name,
		"document_id": c.DocumentID,
		"phone":       c.Phone,
		"address":     c.Address,
		"created_at":  c.CreatedAt,
		"updated_at":  c.UpdatedAt,
	}
}
