package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/gyarab/2025-wt-prj-khudanych/internal/config"
	"github.com/gyarab/2025-wt-prj-khudanych/internal/ingest"
	"github.com/gyarab/2025-wt-prj-khudanych/internal/logger"
	"github.com/gyarab/2025-wt-prj-khudanych/internal/source"
	"github.com/gyarab/2025-wt-prj-khudanych/internal/store"
	"github.com/gyarab/2025-wt-prj-khudanych/internal/telemetry"
)

func main() {
	reset := flag.Bool("reset", false, "wipe all tables before running")
	phase := flag.String("phase", "all", "pipeline phase: all, seed, countries, extras")
	category := flag.String("category", "all", "extras category: all, historical, international, territory")
	dataset := flag.String("dataset", "", "override the bulk dataset file path")
	flag.Parse()

	initialLogger, err := logger.NewLogger("development", "info")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	cfg := config.Load(initialLogger)

	appLogger, err := logger.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		initialLogger.Fatal("failed to initialize logger", zap.Error(err))
	}
	defer appLogger.Sync()

	tel, err := telemetry.NewTelemetry(appLogger)
	if err != nil {
		appLogger.Fatal("failed to initialize telemetry", zap.Error(err))
	}

	factory := store.NewFactory(appLogger)
	st, err := factory.CreateStore(cfg.StoreConfig)
	if err != nil {
		appLogger.Fatal("failed to create store", zap.Error(err))
	}

	client := source.NewClient(cfg.SparqlEndpoint, appLogger)
	pipeline := ingest.NewPipeline(st, client, appLogger, tel.Meter)

	opts := ingest.Options{
		Reset:       *reset,
		Phase:       ingest.Phase(*phase),
		Category:    ingest.Category(*category),
		DatasetFile: cfg.DatasetFile,
	}
	if *dataset != "" {
		opts.DatasetFile = *dataset
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := pipeline.Run(ctx, opts); err != nil {
		appLogger.Fatal("pipeline run failed", zap.Error(err))
	}
}
