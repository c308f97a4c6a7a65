package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/p-n-ai/pai-lab/internal/catalog"
	"github.com/p-n-ai/pai-lab/internal/labapi"
	"github.com/p-n-ai/pai-lab/internal/platform/cache"
	"github.com/p-n-ai/pai-lab/internal/platform/config"
	"github.com/p-n-ai/pai-lab/internal/platform/database"
	"github.com/p-n-ai/pai-lab/internal/workbench"
)

// healthCheck reports whether a backing service is reachable.
type healthCheck func(ctx context.Context) error

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg.Log))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	cat, err := loadCatalog(cfg.Lab.CatalogPath)
	if err != nil {
		return err
	}

	events, checks, cleanup, err := newEventLogger(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	engine := workbench.NewEngine(workbench.EngineConfig{
		Catalog:      cat,
		Store:        workbench.NewMemoryStore(cfg.Lab.MaxBenches),
		Events:       events,
		AdvanceDelay: cfg.Lab.AdvanceDelay,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      newMux(labapi.New(engine), checks),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr, "events", cfg.Events.Sink)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listening: %w", err)
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	return nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadDir(path)
}

// newEventLogger connects the configured event sink. The returned cleanup
// closes whatever was opened.
func newEventLogger(ctx context.Context, cfg *config.Config) (workbench.EventLogger, map[string]healthCheck, func(), error) {
	checks := map[string]healthCheck{}
	noop := func() {}

	switch cfg.Events.Sink {
	case config.SinkMemory:
		return workbench.NewMemoryEventLogger(), checks, noop, nil
	case config.SinkPostgres:
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, nil, noop, err
		}
		checks["database"] = db.HealthCheck
		return workbench.NewPostgresEventLogger(db), checks, db.Close, nil
	case config.SinkRedis:
		c, err := cache.New(ctx, cfg.Cache.URL, cfg.Events.Stream, cfg.Events.StreamMax)
		if err != nil {
			return nil, nil, noop, err
		}
		checks["cache"] = c.HealthCheck
		return workbench.NewRedisEventLogger(c), checks, func() { _ = c.Close() }, nil
	default:
		return workbench.NopEventLogger{}, checks, noop, nil
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newMux creates the HTTP router with health, metrics, and lab endpoints.
func newMux(lab *labapi.Handler, checks map[string]healthCheck) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", handleReadyz(checks))
	mux.Handle("GET /metrics", promhttp.Handler())
	if lab != nil {
		lab.Register(mux)
	}
	return mux
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func handleReadyz(checks map[string]healthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		failed := map[string]string{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				failed[name] = err.Error()
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if len(failed) > 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "unavailable", "failed": failed})
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}
}
