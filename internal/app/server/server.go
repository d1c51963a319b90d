package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"ems/internal/auth"
	"ems/internal/platform/config"
	"ems/internal/platform/jobs"
	adminhandler "ems/internal/transport/http/handlers/admin"
	authhandler "ems/internal/transport/http/handlers/auth"
	corehandler "ems/internal/transport/http/handlers/core"
	leavehandler "ems/internal/transport/http/handlers/leave"
	payrollhandler "ems/internal/transport/http/handlers/payroll"
	performancehandler "ems/internal/transport/http/handlers/performance"
	reportshandler "ems/internal/transport/http/handlers/reports"
	"ems/internal/transport/http/middleware"
)

const shutdownTimeout = 10 * time.Second

func Run() error {
	cfg := config.Load()
	slog.SetDefault(newLogger(cfg.Environment))
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret"
		slog.Warn("JWT_SECRET not set, using development secret")
	}

	ws, err := OpenWorkspace(WorkspaceOptions{DataDir: cfg.DataDir, ReportDir: cfg.ReportDir, PayslipPDF: cfg.PayslipPDF})
	if err != nil {
		return err
	}
	slog.Info("ledger loaded", "dir", cfg.DataDir, "employees", len(ws.Store.Employees()), "tasks", len(ws.Store.Tasks()))

	users, err := auth.LoadDirectory(cfg.CredentialsFile)
	if err != nil {
		return fmt.Errorf("credentials: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jobsSvc := jobs.New()
	jobsSvc.Every(jobs.JobAutosave, cfg.AutosaveInterval, ws.Save)
	jobsSvc.Start(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(cfg, ws, users, jobsSvc),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("EMS server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("server shutdown failed", "err", err)
	}
	if _, err := ws.Save(shutdownCtx); err != nil {
		return err
	}
	slog.Info("EMS server stopped")
	return nil
}

// NewRouter mounts every API route on a chi router.
func NewRouter(cfg config.Config, ws *Workspace, users *auth.Directory, jobsSvc *jobs.Service) http.Handler {
	lock := ws.Locker()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(chimw.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.Logger(ws.Metrics))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(ws.Metrics.Snapshot()); err != nil {
				slog.Warn("write metrics failed", "err", err)
			}
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.SensitiveRateLimit(cfg.RateLimit, time.Minute))
		r.Use(middleware.RateLimit(cfg.RateLimit, time.Minute))

		authHandler := authhandler.NewHandler(users, cfg.JWTSecret, cfg.TokenTTL)
		r.Post("/auth/login", authHandler.HandleLogin)

		corehandler.NewHandler(ws.Store, lock).RegisterRoutes(r)
		leavehandler.NewHandler(ws.Store, lock).RegisterRoutes(r)
		payrollhandler.NewHandler(ws.Store, ws.Payroll, jobsSvc, ws.Metrics, lock).RegisterRoutes(r)
		performancehandler.NewHandler(ws.Performance, lock).RegisterRoutes(r)
		reportshandler.NewHandler(ws.Reports, lock).RegisterRoutes(r)
		adminhandler.NewHandler(jobsSvc, ws.Save).RegisterRoutes(r)
	})
	return router
}

func newLogger(env string) *slog.Logger {
	level := slog.LevelInfo
	if env == "development" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
