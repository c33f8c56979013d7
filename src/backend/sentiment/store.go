package sentiment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hannes/sentimento/src/backend/config"
	"github.com/hannes/sentimento/src/backend/logging"
)

// NewHistoryStore opens the history backend named in dbCfg. A database that
// cannot be opened falls back to in-memory storage; only an unknown backend
// name is an error.
func NewHistoryStore(ctx context.Context, dbCfg config.DatabaseConfig, histCfg config.HistoryConfig) (HistoryStore, error) {
	logger := logging.Named("HistoryStore")

	switch dbCfg.Backend {
	case config.BackendMemory, "":
		logger.Info("using in-memory history")
		return NewMemoryHistoryStore(histCfg.MaxEntriesPerSession, nil), nil

	case config.BackendSQLite:
		store, err := NewSQLiteHistoryStore(ctx, SQLiteConfig{
			Path:       dbCfg.Path,
			MaxEntries: histCfg.MaxEntriesPerSession,
		})
		if err != nil {
			logger.Warn("failed to open SQLite history, falling back to in-memory history",
				zap.String("path", dbCfg.Path), zap.Error(err))
			return NewMemoryHistoryStore(histCfg.MaxEntriesPerSession, nil), nil
		}
		logger.Info("SQLite history enabled", zap.String("path", dbCfg.Path))
		return store, nil

	case config.BackendPostgres:
		store, err := NewPostgresHistoryStore(ctx, PostgresConfig{
			Host:         dbCfg.Host,
			Port:         dbCfg.Port,
			Database:     dbCfg.Database,
			Username:     dbCfg.Username,
			Password:     dbCfg.Password,
			SSLMode:      dbCfg.SSLMode,
			MaxOpenConns: dbCfg.MaxOpenConns,
			MaxIdleConns: dbCfg.MaxIdleConns,
			MaxLifetime:  time.Duration(dbCfg.MaxLifetime) * time.Second,
			MaxEntries:   histCfg.MaxEntriesPerSession,
		})
		if err != nil {
			logger.Warn("failed to open PostgreSQL history, falling back to in-memory history",
				zap.String("host", dbCfg.Host), zap.Error(err))
			return NewMemoryHistoryStore(histCfg.MaxEntriesPerSession, nil), nil
		}
		logger.Info("PostgreSQL history enabled", zap.String("host", dbCfg.Host))
		return store, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, dbCfg.Backend)
	}
}
