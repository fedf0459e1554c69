package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ledgerline/reportsync/internal/aggregation"
	"github.com/ledgerline/reportsync/internal/catalog"
	corecfg "github.com/ledgerline/reportsync/internal/core/config"
	"github.com/ledgerline/reportsync/internal/core/storage"
	"github.com/ledgerline/reportsync/internal/core/storage/postgres"
	"github.com/ledgerline/reportsync/internal/document"
	"github.com/ledgerline/reportsync/internal/ingestion"
	"github.com/ledgerline/reportsync/internal/mapping"
	"github.com/ledgerline/reportsync/internal/marketplace"
	"github.com/ledgerline/reportsync/internal/migrations"
	"github.com/ledgerline/reportsync/internal/projection"
	"github.com/ledgerline/reportsync/internal/server"
)

func main() {
	configPath := flag.String("config", "reportsync.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config",
		"server_port", cfg.Server.Port,
		"tenants", len(cfg.Tenants),
		"mappings_source", cfg.Mappings.SourceType,
		"import_schedule", cfg.Import.Schedule)

	// 2. Initialize Storage (PostgreSQL)
	dbAdapter, err := postgres.NewAdapter(
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
	)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer dbAdapter.Close()

	// 2.1. Run Database Migrations, then prepare statements against the migrated schema
	if err := migrations.Run(dbAdapter.DB(), cfg.Database.AutoMigrate); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}
	if err := dbAdapter.Prepare(); err != nil {
		slog.Error("Failed to prepare database statements", "error", err)
		os.Exit(1)
	}

	// 3. Category Mappings
	var mappingStore storage.MappingStore = dbAdapter
	if cfg.Mappings.SourceType == "filesystem" {
		fsRepo, err := mapping.NewFileSystemRepository(cfg.Mappings.Path)
		if err != nil {
			slog.Error("Failed to load category mappings", "path", cfg.Mappings.Path, "error", err)
			os.Exit(1)
		}
		mappingStore = fsRepo
	}
	loader := mapping.NewLoader(mappingStore)

	// 4. Ingestion
	client := marketplace.NewClient(marketplace.Config{
		BaseURL:   cfg.Marketplace.BaseURL,
		Timeout:   cfg.Marketplace.TimeoutDuration(),
		PageLimit: cfg.Marketplace.PageLimit,
		Tokens:    cfg.TenantTokens(),
	})
	ingestionSvc := ingestion.NewService(client, dbAdapter, ingestion.Options{
		BatchSize:          cfg.Import.BatchSize,
		WindowConcurrency:  cfg.Import.WindowConcurrency,
		DefaultGranularity: cfg.Import.ImportGranularity(),
	})

	// 5. Aggregation and documents
	aggregationSvc := aggregation.NewService(dbAdapter, loader, cfg.Aggregation.PageSize)
	categories := catalog.New(dbAdapter, cfg.Catalog.CacheCapacity, cfg.Catalog.TTL())
	generator := document.NewGenerator(categories, dbAdapter, document.NewQueueRecomputer(dbAdapter))
	documentHandler := document.NewHandler(generator, aggregationSvc)

	// 6. Initialize Projection (category timelines)
	projectionSvc := projection.NewService(dbAdapter, loader, categories)

	// 7. Initialize Server
	srv := server.New(
		fmtAddr(cfg.Server.Host, cfg.Server.Port),
		dbAdapter,
		cfg.Server.Mode,
		int64(cfg.Server.MaxBodySizeMB)<<20,
	)
	ingestionSvc.RegisterRoutes(srv.Engine)
	aggregationSvc.RegisterRoutes(srv.Engine)
	documentHandler.RegisterRoutes(srv.Engine)
	projectionSvc.RegisterRoutes(srv.Engine)

	// 8. Start Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Import.Schedule != "" {
		scheduler, err := ingestion.NewScheduler(cfg.Import.Schedule, ingestionSvc, cfg.TenantIDs(), cfg.Import.LookbackDays)
		if err != nil {
			slog.Error("Failed to create import scheduler", "error", err)
			os.Exit(1)
		}
		go func() {
			if err := scheduler.Start(ctx); err != nil {
				slog.Error("Import scheduler stopped with error", "error", err)
			}
		}()
	} else {
		slog.Info("Scheduled imports disabled by config")
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
