// Package main is the entrypoint for the OpeningCoach API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openingcoach/openingcoach/internal/analysis"
	"github.com/openingcoach/openingcoach/internal/api"
	"github.com/openingcoach/openingcoach/internal/api/handler"
	mw "github.com/openingcoach/openingcoach/internal/api/middleware"
	"github.com/openingcoach/openingcoach/internal/api/response"
	"github.com/openingcoach/openingcoach/internal/cache"
	"github.com/openingcoach/openingcoach/internal/config"
	"github.com/openingcoach/openingcoach/internal/dispatch"
	"github.com/openingcoach/openingcoach/internal/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "env", cfg.Server.Env, "workers", cfg.Jobs.MaxWorkers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Open the job store
	jobStore, err := store.NewFileStore(cfg.Jobs.Dir)
	if err != nil {
		return fmt.Errorf("open job store: %w", err)
	}
	slog.Info("job store ready", "dir", cfg.Jobs.Dir)

	// 3. Create the cache. Redis is optional; without it everything still
	// works off the file store.
	var jobCache cache.Cache = cache.NewNoopCache()
	if cfg.Redis.URL != "" {
		redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("create redis cache: %w", err)
		}
		defer redisCache.Close()

		if err := redisCache.Ping(ctx); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		slog.Info("redis connected")
		jobCache = redisCache
	}

	// 4. Build the analysis pipeline
	analyzer := analysis.NewAnalyzer(analysis.Options{
		Limits: analysis.ParseLimits{
			MinMoves: cfg.Analyze.MinMoves,
			MaxMoves: cfg.Analyze.MaxMoves,
			MaxGames: cfg.Analyze.MaxGames,
		},
		Thresholds: analysis.DefaultMistakeThresholds(),
		Recommend: analysis.RecommendOptions{
			TopOpenings:        cfg.Analyze.TopOpenings,
			MinMovesPerOpening: cfg.Analyze.MinMovesPerOpening,
		},
		EnginePath:       cfg.Engine.Path,
		EngineDepth:      cfg.Engine.Depth,
		EngineMoveTimeMS: cfg.Engine.MoveTimeMS,
	})
	if cfg.Engine.Path != "" {
		slog.Info("engine evaluation enabled", "path", cfg.Engine.Path, "depth", cfg.Engine.Depth)
	} else {
		slog.Info("no engine configured, using material evaluation")
	}

	// 5. Create the worker pool and dispatcher
	pool := dispatch.NewPool(cfg.Jobs.MaxWorkers)
	defer pool.Close()

	dispatcher := dispatch.NewDispatcher(jobStore, jobCache, pool, analyzer.Analyze, cfg.Jobs.Timeout)

	// 6. Reconcile jobs left mid-flight by a previous process
	if cfg.Jobs.ReconcileOnStart {
		n, err := dispatcher.FailInterrupted(ctx)
		if err != nil {
			return fmt.Errorf("reconcile interrupted jobs: %w", err)
		}
		if n > 0 {
			slog.Info("failed interrupted jobs", "count", n)
		}
	}

	// 7. Build router with dependencies
	jobs := handler.NewJobs(dispatcher, jobStore, jobCache, cfg.Jobs.UploadsDir)
	rateLimit := mw.NewRateLimit(jobCache, cfg.Jobs.RateLimitPerMin)

	deps := api.Dependencies{
		RateLimit: rateLimit,

		HealthHandler:    healthHandler(jobStore, jobCache),
		SubmitJobHandler: jobs.Submit,
		JobStatusHandler: jobs.Status,
		ListJobsHandler:  jobs.List,
		DeleteJobHandler: jobs.Delete,
	}

	router := api.NewRouter(deps)

	// 8. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// healthHandler checks store and cache connectivity.
func healthHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"store": "ok",
			"cache": "ok",
		}

		if err := s.Ping(r.Context()); err != nil {
			checks["store"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		degraded := checks["store"] != "ok" || checks["cache"] != "ok"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":    "ok",
			"service":   "openingcoach",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"services":  checks,
		})
	}
}
