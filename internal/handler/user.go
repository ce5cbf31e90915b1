package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/JulianGiraldo97/pagadiario-sub000/internal/domain"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/repository"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/sanitize"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/server/authctx"
)

// UserHandler is the admin surface for managing collector and admin accounts.
type UserHandler struct {
	Repo repository.UserRepository
}

func (h UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/users", h.list)
	r.Post("/users", h.create)
	r.Put("/users/{id}", h.update)
	r.Delete("/users/{id}", h.delete)
}

func (h UserHandler) list(w http.ResponseWriter, r *http.Request) {
	var role *domain.Role
	if q := r.URL.Query().Get("role"); q != "" {
		v := domain.Role(q)
		if !v.Valid() {
			writeError(w, http.StatusBadRequest, "invalid role")
			return
		}
		role = &v
	}
	users, err := h.Repo.List(r.Context(), role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(users))
	for _, u := range users {
		resp = append(resp, userJSON(u))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h UserHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Role     string `json:"role"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	errs := map[string]string{}
	name, err := sanitize.Name(req.Name)
	if err != nil {
		errs["name"] = err.Error()
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		errs["email"] = "must be a valid email"
	}
	role := domain.Role(req.Role)
	if !role.Valid() {
		errs["role"] = "must be admin or collector"
	}
	if len(req.Password) < 8 {
		errs["password"] = "must be at least 8 characters"
	}
	if len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	hashed := string(hash)
	user, err := h.Repo.Create(r.Context(), repository.CreateUserParams{
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        sanitize.Text(req.Phone, 20),
		Role:         role,
		PasswordHash: &hashed,
	})
	if err != nil {
		if repository.IsDuplicate(err) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, userJSON(*user))
}

func (h UserHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
		Role  string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	name, err := sanitize.Name(req.Name)
	if err != nil {
		writeFieldErrors(w, map[string]string{"name": err.Error()})
		return
	}
	role := domain.Role(req.Role)
	if !role.Valid() {
		writeFieldErrors(w, map[string]string{"role": "must be admin or collector"})
		return
	}
	user, err := h.Repo.Update(r.Context(), id, repository.UpdateUserParams{
		Name:  name,
		Phone: sanitize.Text(req.Phone, 20),
		Role:  role,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, userJSON(*user))
}

func (h UserHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	// An admin cannot remove their own account.
	if user := authctx.FromContext(r.Context()); user != nil && user.ID == id {
		writeError(w, http.StatusConflict, "cannot delete your own account")
		return
	}
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func userJSON(u domain.User) map[string]any {
	return map[string]any{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"phone":      u.Phone,
		"role":       u.Role,
		"created_at": u.CreatedAt,
		"updated_at": u.UpdatedAt,
	}
}
