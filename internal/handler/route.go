package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JulianGiraldo97/pagadiario-sub000/internal/domain"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/repository"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/server/authctx"
)

type RouteHandler struct {
	Repo     repository.RouteRepository
	Schedule repository.ScheduleRepository
}

// RegisterRoutes mounts the admin route-planning surface.
func (h RouteHandler) RegisterRoutes(r chi.Router) {
	r.Get("/routes", h.list)
	r.Post("/routes", h.create)
	r.Post("/routes/{id}/assignments", h.addAssignment)
	r.Delete("/assignments/{id}", h.removeAssignment)
}

// RegisterCollectorRoutes mounts the collector's day view.
func (h RouteHandler) RegisterCollectorRoutes(r chi.Router) {
	r.Get("/routes/today", h.today)
	r.Get("/routes/{id}", h.get)
	r.Get("/routes/{id}/assignments", h.assignments)
}

func (h RouteHandler) list(w http.ResponseWriter, r *http.Request) {
	from, err := parseDateQuery(r, "startDate")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid startDate")
		return
	}
	to, err := parseDateQuery(r, "endDate")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid endDate")
		return
	}
	routes, err := h.Repo.List(r.Context(), from, to, 200)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(routes))
	for _, rt := range routes {
		resp = append(resp, routeJSON(rt))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h RouteHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CollectorID string `json:"collector_id"`
		RouteDate   string `json:"route_date"`
		Notes       string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	collectorID, err := uuid.Parse(req.CollectorID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid collector_id")
		return
	}
	date, err := time.Parse(dateLayout, req.RouteDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "route_date must be YYYY-MM-DD")
		return
	}
	route, err := h.Repo.Create(r.Context(), repository.CreateRouteParams{
		CollectorID: collectorID,
		RouteDate:   date,
		Notes:       req.Notes,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			writeError(w, http.StatusConflict, "collector already has a route for that date")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, routeJSON(*route))
}

func (h RouteHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	route, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "route not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !h.mayViewRoute(r, route) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	writeJSON(w, http.StatusOK, routeJSON(*route))
}

// today returns the calling collector's route for the current date with
// its assignments expanded.
func (h RouteHandler) today(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	route, err := h.Repo.GetForCollectorOn(r.Context(), user.ID, startOfDay(time.Now()))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no route for today")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	items, err := h.Repo.ListAssignments(r.Context(), route.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"route":       routeJSON(*route),
		"assignments": assignmentsJSON(items),
	})
}

func (h RouteHandler) assignments(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	route, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "route not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !h.mayViewRoute(r, route) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	items, err := h.Repo.ListAssignments(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, assignmentsJSON(items))
}

func (h RouteHandler) addAssignment(w http.ResponseWriter, r *http.Request) {
	routeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req struct {
		ClientID string `json:"client_id"`
		DebtID   string `json:"debt_id"`
		Position int    `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid client_id")
		return
	}

	// Link the visit to the debt's earliest unpaid installment, so the
	// collector sees what is due at the door.
	var itemID *uuid.UUID
	if req.DebtID != "" {
		debtID, err := uuid.Parse(req.DebtID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid debt_id")
			return
		}
		item, err := h.Schedule.NextDue(r.Context(), debtID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				writeError(w, http.StatusConflict, "debt has no unpaid installments")
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		itemID = &item.ID
	}

	a, err := h.Repo.AddAssignment(r.Context(), repository.AddAssignmentParams{
		RouteID:        routeID,
		ClientID:       clientID,
		ScheduleItemID: itemID,
		Position:       req.Position,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":               a.ID,
		"route_id":         a.RouteID,
		"client_id":        a.ClientID,
		"schedule_item_id": a.ScheduleItemID,
		"position":         a.Position,
		"status":           a.Status,
	})
}

func (h RouteHandler) removeAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Repo.RemoveAssignment(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusConflict, "assignment not found or already has a payment")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// mayViewRoute allows admins everywhere and collectors on their own routes.
func (h RouteHandler) mayViewRoute(r *http.Request, route *domain.Route) bool {
	user := authctx.FromContext(r.Context())
	if user == nil {
		return false
	}
	if domain.HasPermission(user.Role, domain.RoleAdmin) {
		return true
	}
	return route.CollectorID == user.ID
}

func routeJSON(rt domain.Route) map[string]any {
	return map[string]any{
		"id":           rt.ID,
		"collector_id": rt.CollectorID,
		"collector":    rt.Collector,
		"route_date":   rt.RouteDate.Format(dateLayout),
		"notes":        rt.Notes,
	}
}

func assignmentsJSON(items []domain.RouteAssignment) []map[string]any {
	resp := make([]map[string]any, 0, len(items))
	for _, a := range items {
		m := map[string]any{
			"id":       a.ID,
			"position": a.Position,
			"status":   a.Status,
		}
		if a.Client != nil {
			m["client"] = map[string]any{
				"id":      a.Client.ID,
				"name":    a.Client.Name,
				"phone":   a.Client.Phone,
				"address": a.Client.Address,
			}
		}
		if a.DueItem != nil {
			m["due_installment"] = map[string]any{
				"id":                 a.DueItem.ID,
				"debt_id":            a.DueItem.DebtID,
				"installment_number": a.DueItem.InstallmentNumber,
				"due_date":           a.DueItem.DueDate.Format(dateLayout),
				"amount":             a.DueItem.Amount,
				"status":             a.DueItem.Status,
			}
		}
		resp = append(resp, m)
	}
	return resp
}
