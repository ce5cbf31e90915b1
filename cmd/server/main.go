package main

import (
	"context"
	"encoding/base64"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/JulianGiraldo97/pagadiario-sub000/internal/config"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/db"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/handler"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/repository"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/seclog"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/server"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/service"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/storage"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect database", "err", err)
		os.Exit(1)
	}
	defer pg.Close()

	if err := db.Migrate(ctx, pg); err != nil {
		logger.Error("failed to migrate schema", "err", err)
		os.Exit(1)
	}

	// Firebase Auth (optional)
	var firebaseAuth *auth.Client
	if cfg.FirebaseProjectID != "" {
		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, firebaseOptions(cfg)...)
		if err != nil {
			logger.Error("failed to init firebase app", "err", err)
			os.Exit(1)
		}
		client, err := app.Auth(ctx)
		if err != nil {
			logger.Error("failed to init firebase auth", "err", err)
			os.Exit(1)
		}
		firebaseAuth = client
	}

	audit := seclog.New(cfg.SecurityLogEntries, logger)

	// repositories
	userRepo := repository.UserRepository{DB: pg}
	clientRepo := repository.ClientRepository{DB: pg}
	debtRepo := repository.DebtRepository{DB: pg}
	scheduleRepo := repository.ScheduleRepository{DB: pg}
	routeRepo := repository.RouteRepository{DB: pg}
	paymentRepo := repository.PaymentRepository{DB: pg}
	dashboardRepo := repository.DashboardRepository{DB: pg}
	reportRepo := repository.ReportRepository{DB: pg}

	if email, password := os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD"); email != "" && password != "" {
		if err := userRepo.SeedAdmin(ctx, email, password); err != nil {
			logger.Error("failed to seed admin", "err", err)
			os.Exit(1)
		}
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		logger.Error("failed to create upload dir", "err", err)
		os.Exit(1)
	}
	photos := storage.PhotoStore{Dir: cfg.UploadDir, MaxBytes: cfg.MaxPhotoBytes}

	// services
	authSvc := service.AuthService{Config: cfg, Users: userRepo, Logger: logger, FirebaseAuth: firebaseAuth}
	debtSvc := service.DebtService{Debts: debtRepo, Clients: clientRepo}
	paymentSvc := service.PaymentService{
		Payments:    paymentRepo,
		Assignments: routeRepo,
		Schedule:    scheduleRepo,
		Photos:      photos,
		EditWindow:  cfg.PaymentEditWindow,
	}

	handlers := server.Handlers{
		Health:    handler.HealthHandler{DB: pg},
		Auth:      handler.AuthHandler{Service: &authSvc, Audit: audit},
		Clients:   handler.ClientHandler{Repo: clientRepo, Audit: audit},
		Debts:     handler.DebtHandler{Service: debtSvc, Repo: debtRepo, Schedule: scheduleRepo},
		Routes:    handler.RouteHandler{Repo: routeRepo, Schedule: scheduleRepo},
		Payments:  handler.PaymentHandler{Service: paymentSvc, Audit: audit, PublicBaseURL: cfg.PublicBaseURL, MaxUpload: cfg.MaxPhotoBytes},
		Users:     handler.UserHandler{Repo: userRepo},
		Dashboard: handler.DashboardHandler{Repo: dashboardRepo, Currency: cfg.DefaultCurrency},
		Reports:   handler.ReportHandler{Repo: reportRepo},
		Security:  handler.SecurityLogHandler{Audit: audit},
		Docs:      handler.DocsHandler{OpenAPIPath: "openapi.yaml"},
	}

	router := server.NewRouter(cfg, logger, audit, handlers)

	if err := server.Start(ctx, cfg, router, logger); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}

func firebaseOptions(cfg config.Config) []option.ClientOption {
	if cfg.FirebaseCredFile == "" {
		return nil
	}

	cred := cfg.FirebaseCredFile
	// Allow inline JSON or base64-encoded JSON in env to avoid writing a file.
	if strings.HasPrefix(strings.TrimSpace(cred), "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cred))}
	}
	if decoded, err := base64.StdEncoding.DecodeString(cred); err == nil && strings.HasPrefix(strings.TrimSpace(string(decoded)), "{") {
		return []option.ClientOption{option.WithCredentialsJSON(decoded)}
	}

	return []option.ClientOption{option.WithCredentialsFile(cred)}
}
