package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JulianGiraldo97/pagadiario-sub000/internal/repository"
)

type DashboardHandler struct {
	Repo     repository.DashboardRepository
	Currency string
}

func (h DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard/summary", h.summary)
	r.Get("/dashboard/collectors", h.collectors)
	r.Get("/dashboard/daily", h.daily)
}

func (h DashboardHandler) summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.Repo.Summary(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	rate := 0.0
	if s.VisitsToday > 0 {
		rate = float64(s.PaidVisitsToday) / float64(s.VisitsToday)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"currency":          h.Currency,
		"active_debts":      s.ActiveDebts,
		"total_outstanding": s.TotalOutstanding,
		"collected_today":   s.CollectedToday,
		"visits_today":      s.VisitsToday,
		"paid_visits_today": s.PaidVisitsToday,
		"collection_rate":   rate,
	})
}

func (h DashboardHandler) collectors(w http.ResponseWriter, r *http.Request) {
	from, to, err := dashboardWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.Repo.PerCollector(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, it := range items {
		resp = append(resp, map[string]any{
			"collector":  it.Name,
			"collected":  it.Collected,
			"visits":     it.Visits,
			"paid_count": it.PaidCount,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h DashboardHandler) daily(w http.ResponseWriter, r *http.Request) {
	days := 30
	if q := r.URL.Query().Get("days"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > 365 {
			writeError(w, http.StatusBadRequest, "days must be between 1 and 365")
			return
		}
		days = n
	}
	points, err := h.Repo.Daily(r.Context(), days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(points))
	for _, p := range points {
		resp = append(resp, map[string]any{
			"date":      p.Date.Format(dateLayout),
			"collected": p.Collected,
			"payments":  p.Payments,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// dashboardWindow resolves the startDate/endDate query pair, defaulting to
// the last 30 days.
func dashboardWindow(r *http.Request) (time.Time, time.Time, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -30)
	if p, err := parseDateQuery(r, "startDate"); err != nil {
		return from, to, err
	} else if p != nil {
		from = *p
	}
	if p, err := parseDateQuery(r, "endDate"); err != nil {
		return from, to, err
	} else if p != nil {
		to = *p
	}
	return from, to, nil
}
