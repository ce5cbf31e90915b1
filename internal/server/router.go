package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"log/slog"

	"github.com/JulianGiraldo97/pagadiario-sub000/internal/config"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/domain"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/handler"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/seclog"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Health    handler.HealthHandler
	Auth      handler.AuthHandler
	Clients   handler.ClientHandler
	Debts     handler.DebtHandler
	Routes    handler.RouteHandler
	Payments  handler.PaymentHandler
	Users     handler.UserHandler
	Dashboard handler.DashboardHandler
	Reports   handler.ReportHandler
	Security  handler.SecurityLogHandler
	Docs      handler.DocsHandler
}

// NewRouter wires HTTP routes and middleware.
func NewRouter(cfg config.Config, logger *slog.Logger, audit *seclog.Log, h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(200, 1*time.Minute))
	r.Use(MetricsMiddleware)

	h.Health.RegisterRoutes(r)
	h.Auth.RegisterRoutes(r)
	h.Docs.RegisterRoutes(r)
	r.Method("GET", "/metrics", promhttp.Handler())

	// Evidence photos are stored on local disk and served read-only.
	fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir)))
	r.Get("/uploads/*", fs.ServeHTTP)

	r.Group(func(pr chi.Router) {
		pr.Use(AuthMiddleware(cfg.JWTSecret, audit))
		h.Auth.RegisterProtectedRoutes(pr)

		// collector-level (collector or admin)
		pr.Group(func(cr chi.Router) {
			cr.Use(RequireRole(domain.RoleCollector, audit))
			h.Routes.RegisterCollectorRoutes(cr)
			h.Payments.RegisterRoutes(cr)
			h.Clients.RegisterReadRoutes(cr)
		})
		// admin-level
		pr.Group(func(ar chi.Router) {
			ar.Use(RequireRole(domain.RoleAdmin, audit))
			h.Clients.RegisterRoutes(ar)
			h.Debts.RegisterRoutes(ar)
			h.Routes.RegisterRoutes(ar)
			h.Users.RegisterRoutes(ar)
			h.Dashboard.RegisterRoutes(ar)
			h.Reports.RegisterRoutes(ar)
			h.Security.RegisterRoutes(ar)
		})
	})

	return r
}
