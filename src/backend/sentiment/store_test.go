package sentiment

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hannes/sentimento/src/backend/config"
)

func TestNewHistoryStore_Memory(t *testing.T) {
	cfg := config.DefaultConfig()
	store, err := NewHistoryStore(context.Background(), cfg.Database, cfg.History)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	defer store.Close()

	if _, ok := store.(*MemoryHistoryStore); !ok {
		t.Errorf("expected *MemoryHistoryStore, got %T", store)
	}
}

func TestNewHistoryStore_SQLite(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Database.Backend = config.BackendSQLite
	cfg.Database.Path = filepath.Join(t.TempDir(), "history.db")

	store, err := NewHistoryStore(context.Background(), cfg.Database, cfg.History)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	defer store.Close()

	if _, ok := store.(*SQLiteHistoryStore); !ok {
		t.Errorf("expected *SQLiteHistoryStore, got %T", store)
	}
}

func TestNewHistoryStore_PostgresFallsBackToMemory(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Database.Backend = config.BackendPostgres
	cfg.Database.Host = "127.0.0.1"
	cfg.Database.Port = 1 // nothing listens here

	store, err := NewHistoryStore(context.Background(), cfg.Database, cfg.History)
	if err != nil {
		t.Fatalf("expected fallback instead of error, got: %v", err)
	}
	defer store.Close()

	if _, ok := store.(*MemoryHistoryStore); !ok {
		t.Errorf("expected fallback *MemoryHistoryStore, got %T", store)
	}
}

func TestNewHistoryStore_UnknownBackend(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Database.Backend = "redis"

	_, err := NewHistoryStore(context.Background(), cfg.Database, cfg.History)
	if !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("expected ErrUnknownBackend, got: %v", err)
	}
}
