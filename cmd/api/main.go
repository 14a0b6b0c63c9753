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

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/posrecon/internal/app"
	"github.com/MrJamesThe3rd/posrecon/internal/config"
	posHttp "github.com/MrJamesThe3rd/posrecon/internal/http"
	"github.com/MrJamesThe3rd/posrecon/internal/http/health"
	reconcileHandler "github.com/MrJamesThe3rd/posrecon/internal/http/reconcile"
	txHandler "github.com/MrJamesThe3rd/posrecon/internal/http/transaction"
	uploadHandler "github.com/MrJamesThe3rd/posrecon/internal/http/upload"
	"github.com/MrJamesThe3rd/posrecon/internal/scheduler"
)

const shutdownTimeout = 15 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := app.NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}

	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close connections", "error", err)
		}
	}()

	sched, err := scheduler.New(scheduler.Params{
		Logger:      logger,
		Reconciler:  a.Reconciler,
		Tracker:     a.Tracker,
		Metrics:     a.ReconcileMetrics,
		Interval:    cfg.Sync.Interval,
		PassTimeout: cfg.Sync.PassTimeout,
		BatchSize:   cfg.Sync.BatchSize,
	})
	if err != nil {
		return err
	}

	router := posHttp.New(posHttp.Params{
		Transactions: txHandler.NewHandler(a.Transactions),
		Upload:       uploadHandler.NewHandler(a.Upload, cfg.Ingest.MaxUploadBytes),
		Reconcile:    reconcileHandler.NewHandler(sched, a.Staging, a.Tracker),
		Health: health.NewHandler(map[string]health.Check{
			"database": a.DB.PingContext,
			"staging":  a.Redis.Ping,
		}),
		Gatherer:       a.Registry,
		CORSOrigins:    cfg.App.CORSOrigins,
		RequestTimeout: cfg.Server.Timeout,
		SyncTimeout:    cfg.Sync.PassTimeout + cfg.Server.Timeout,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server", "addr", srv.Addr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info("shutting down server")

		return srv.Shutdown(shutdownCtx)
	})

	if cfg.Sync.Enabled {
		g.Go(func() error {
			return sched.Run(gctx)
		})
	} else {
		logger.Info("scheduled reconciliation disabled, use POST /api/v1/sync")
	}

	return g.Wait()
}
