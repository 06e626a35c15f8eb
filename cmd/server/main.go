package main

import (
	"log"

	"go.uber.org/zap"

	"github.com/gyarab/2025-wt-prj-khudanych/internal/app"
	"github.com/gyarab/2025-wt-prj-khudanych/internal/config"
	"github.com/gyarab/2025-wt-prj-khudanych/internal/logger"
)

func main() {
	// Bootstrap logger; replaced once configuration is loaded.
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

	application, err := app.NewApp(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := application.Run(); err != nil {
		appLogger.Fatal("application terminated", zap.Error(err))
	}
}
