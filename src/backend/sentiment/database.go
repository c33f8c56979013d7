package sentiment

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/hannes/sentimento/src/backend/logging"
)

// SQLiteConfig holds SQLite history configuration
type SQLiteConfig struct {
	Path       string // Path to SQLite database file
	MaxEntries int    // Entries kept per session
	DebugMode  bool
}

// SQLiteHistoryStore implements HistoryStore for SQLite
type SQLiteHistoryStore struct {
	db         *sql.DB
	maxEntries int
	debugMode  bool
	logger     *zap.Logger
}

// NewSQLiteHistoryStore creates a new SQLite history store
func NewSQLiteHistoryStore(ctx context.Context, config SQLiteConfig) (*SQLiteHistoryStore, error) {
	dbPath := config.Path
	if dbPath == "" {
		dbPath = "sentimento.db"
	}

	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// SQLite works best with a single writer connection
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := createSQLiteTables(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	maxEntries := config.MaxEntries
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntriesPerSession
	}

	return &SQLiteHistoryStore{
		db:         db,
		maxEntries: maxEntries,
		debugMode:  config.DebugMode,
		logger:     logging.Named("SQLiteHistoryStore"),
	}, nil
}

// createSQLiteTables creates the required tables if they don't exist
func createSQLiteTables(ctx context.Context, db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS history (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			session_id TEXT NOT NULL,
			text TEXT NOT NULL,
			label TEXT NOT NULL,
			confidence REAL NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_session ON history(session_id, seq)`,
		`CREATE INDEX IF NOT EXISTS idx_history_created_at ON history(created_at)`,
	}

	for _, query := range queries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute: %s: %w", query, err)
		}
	}
	return nil
}

// SetDebugMode enables or disables debug logging
func (s *SQLiteHistoryStore) SetDebugMode(enabled bool) {
	s.debugMode = enabled
}

func (s *SQLiteHistoryStore) Append(ctx context.Context, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO history (id, session_id, text, label, confidence, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.SessionID, truncateText(entry.Text), entry.Label, entry.Confidence, entry.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}

	// Keep only the newest maxEntries of the session
	_, err = tx.ExecContext(ctx,
		`DELETE FROM history WHERE session_id = ? AND seq NOT IN (
			SELECT seq FROM history WHERE session_id = ? ORDER BY seq DESC LIMIT ?
		)`, entry.SessionID, entry.SessionID, s.maxEntries)
	if err != nil {
		return fmt.Errorf("failed to trim session history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit history entry: %w", err)
	}

	if s.debugMode {
		s.logger.Debug("stored history entry",
			zap.String("session", entry.SessionID), zap.String("label", entry.Label))
	}
	return nil
}

func (s *SQLiteHistoryStore) List(ctx context.Context, sessionID string, limit, offset int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, text, label, confidence, created_at FROM history
		 WHERE session_id = ? ORDER BY seq ASC LIMIT ? OFFSET ?`,
		sessionID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanEntries(rows)
}

func (s *SQLiteHistoryStore) Count(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM history WHERE session_id = ?`, sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return count, nil
}

func (s *SQLiteHistoryStore) Clear(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (s *SQLiteHistoryStore) CleanupOlderThan(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UnixNano()
	result, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup history: %w", err)
	}
	return result.RowsAffected()
}

func (s *SQLiteHistoryStore) Close() error {
	return s.db.Close()
}

// scanEntries reads history rows whose created_at column holds unix nanoseconds
func scanEntries(rows *sql.Rows) ([]Entry, error) {
	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Text, &e.Label, &e.Confidence, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		e.CreatedAt = time.Unix(0, createdAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return entries, nil
}
