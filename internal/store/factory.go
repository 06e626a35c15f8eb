package store

import (
	"encoding/json"
	"fmt"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DbType identifies a store backend.
type DbType string

const (
	DbTypePostgres DbType = "postgres"
	DbTypeSQLite   DbType = "sqlite"
	DbTypeMemory   DbType = "memory"
)

func (t DbType) String() string {
	return string(t)
}

func (t DbType) IsValid() bool {
	switch t {
	case DbTypePostgres, DbTypeSQLite, DbTypeMemory:
		return true
	}
	return false
}

// Config selects and parameterizes a store backend.
type Config struct {
	DbType       DbType                 `json:"db_type"`
	ExtraDetails map[string]interface{} `json:"extra_details"`
}

// Factory creates store providers from a JSON configuration.
type Factory struct {
	logger *zap.Logger
}

func NewFactory(logger *zap.Logger) *Factory {
	return &Factory{logger: logger.Named("factory")}
}

// CreateStore parses the JSON config and opens the matching backend. An empty
// config falls back to an in-memory store.
func (f *Factory) CreateStore(configJSON string) (Store, error) {
	config := Config{DbType: DbTypeMemory}
	if configJSON != "" {
		if err := json.Unmarshal([]byte(configJSON), &config); err != nil {
			return nil, fmt.Errorf("failed to parse store configuration JSON: %w", err)
		}
	}

	if !config.DbType.IsValid() {
		return nil, fmt.Errorf("unsupported store type: %s", config.DbType)
	}

	f.logger.Info("creating store",
		zap.String("db_type", config.DbType.String()))

	switch config.DbType {
	case DbTypePostgres:
		connStr, ok := config.ExtraDetails["conn_str"].(string)
		if !ok {
			return nil, fmt.Errorf("conn_str is required for the postgres store")
		}
		return f.open(postgres.Open(connStr))
	case DbTypeSQLite:
		path, ok := config.ExtraDetails["path"].(string)
		if !ok {
			return nil, fmt.Errorf("path is required for the sqlite store")
		}
		return f.open(sqlite.Open(path))
	case DbTypeMemory:
		return f.open(sqlite.Open(":memory:"))
	default:
		return nil, fmt.Errorf("unsupported store type: %s", config.DbType)
	}
}

func (f *Factory) open(dialector gorm.Dialector) (Store, error) {
	return newGormStore(dialector, f.logger)
}
