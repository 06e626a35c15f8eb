package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config holds all runtime settings for both the server and the ingest pipeline.
type Config struct {
	Environment string
	LogLevel    string
	Port        string

	// StoreConfig is a JSON provider config understood by store.NewFactory.
	StoreConfig string

	// SparqlEndpoint is the Wikidata SPARQL endpoint URL.
	SparqlEndpoint string
	// DatasetFile is the path to the bulk countries JSON file (mledoze/countries).
	DatasetFile string

	RPSLimit int
	RPSBurst int
}

// Load reads configuration from the environment, optionally seeded from a .env file.
func Load(logger *zap.Logger) *Config {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, using environment variables only")
	}

	cfg := &Config{
		Environment:    getEnv("ENVIRONMENT", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Port:           getEnv("PORT", "8080"),
		StoreConfig:    getEnv("STORE_CONFIG", ""),
		SparqlEndpoint: getEnv("SPARQL_ENDPOINT", "https://query.wikidata.org/sparql"),
		DatasetFile:    getEnv("DATASET_FILE", "data/countries.json"),
		RPSLimit:       getEnvInt("RPS_LIMIT", 50, logger),
		RPSBurst:       getEnvInt("RPS_BURST", 100, logger),
	}

	logger.Info("configuration loaded",
		zap.String("environment", cfg.Environment),
		zap.String("sparql_endpoint", cfg.SparqlEndpoint),
		zap.String("dataset_file", cfg.DatasetFile),
	)
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int, logger *zap.Logger) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn("invalid integer in environment, using default",
			zap.String("key", key), zap.String("value", v), zap.Int("default", fallback))
		return fallback
	}
	return n
}
