package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/MrJamesThe3rd/posrecon/internal/config"
	"github.com/MrJamesThe3rd/posrecon/internal/database"
	"github.com/MrJamesThe3rd/posrecon/internal/importer"
	"github.com/MrJamesThe3rd/posrecon/internal/importer/record"
	"github.com/MrJamesThe3rd/posrecon/internal/metrics"
	"github.com/MrJamesThe3rd/posrecon/internal/reconcile"
	"github.com/MrJamesThe3rd/posrecon/internal/redisconn"
	stagingStore "github.com/MrJamesThe3rd/posrecon/internal/staging/store"
	"github.com/MrJamesThe3rd/posrecon/internal/status"
	"github.com/MrJamesThe3rd/posrecon/internal/transaction"
	txStore "github.com/MrJamesThe3rd/posrecon/internal/transaction/store"
	"github.com/MrJamesThe3rd/posrecon/internal/upload"
	"github.com/MrJamesThe3rd/posrecon/internal/vendor"
)

// App holds the services shared by the API server, the CLI and the TUI.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	DB       *sql.DB
	Redis    *redisconn.Conn
	Registry *prometheus.Registry
	Tracker  *status.Tracker
	Vendors  *vendor.Registry

	Importer     *importer.Service
	Staging      *stagingStore.Store
	Transactions *transaction.Service
	Reconciler   *reconcile.Service
	Upload       *upload.Service

	ReconcileMetrics *metrics.Reconcile
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	if cfg.App.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

// NewImporter builds the ingestion service from the built-in vendors, extended by the
// optional mapping file.
func NewImporter(mappingFile string, logger *slog.Logger) (*importer.Service, *vendor.Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	vendors := vendor.Default()
	aliases := record.DefaultAliases()

	if mappingFile != "" {
		m, err := importer.LoadMapping(mappingFile)
		if err != nil {
			return nil, nil, err
		}

		if aliases, err = m.Apply(vendors); err != nil {
			return nil, nil, fmt.Errorf("apply mapping: %w", err)
		}

		logger.Info("loaded mapping file", "path", mappingFile, "vendors", len(m.Vendors), "aliases", len(m.Aliases))
	}

	return importer.NewService(record.NewParser(vendors, aliases), logger), vendors, nil
}

// New connects the canonical store and prepares the staging connection. Redis is
// dialed lazily on first use.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	imp, vendors, err := NewImporter(cfg.Ingest.MappingFile, logger)
	if err != nil {
		return nil, err
	}

	db, err := database.New(ctx, cfg.ConnectionString(), database.PoolOptions{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}

	conn, err := redisconn.New(redisconn.Options{
		URL:         cfg.Redis.URL,
		Addr:        cfg.Redis.Addr,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		DialTimeout: cfg.Redis.DialTimeout,
	}, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("redis options: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var (
		tracker    = status.NewTracker()
		staging    = stagingStore.New(conn, logger)
		txService  = transaction.NewService(txStore.New(db))
		reconciler = reconcile.NewService(staging, txService, logger)
		uploadSvc  = upload.NewService(imp, staging, tracker, metrics.NewIngest(reg), logger)
	)

	return &App{
		Config:           cfg,
		Logger:           logger,
		DB:               db,
		Redis:            conn,
		Registry:         reg,
		Tracker:          tracker,
		Vendors:          vendors,
		Importer:         imp,
		Staging:          staging,
		Transactions:     txService,
		Reconciler:       reconciler,
		Upload:           uploadSvc,
		ReconcileMetrics: metrics.NewReconcile(reg),
	}, nil
}

func (a *App) Close() error {
	return multierr.Combine(a.Redis.Close(), a.DB.Close())
}
