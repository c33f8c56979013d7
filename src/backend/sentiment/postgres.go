package sentiment

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresConfig holds PostgreSQL history configuration
type PostgresConfig struct {
	Host         string
	Port         int
	Database     string
	Username     string
	Password     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	MaxEntries   int // Entries kept per session
}

// PostgresHistoryStore implements HistoryStore for PostgreSQL
type PostgresHistoryStore struct {
	db         *sql.DB
	maxEntries int
}

// NewPostgresHistoryStore creates a new PostgreSQL history store
func NewPostgresHistoryStore(ctx context.Context, config PostgresConfig) (*PostgresHistoryStore, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.Username, config.Password, config.Database, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.MaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := createPostgresTables(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	maxEntries := config.MaxEntries
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntriesPerSession
	}
	return &PostgresHistoryStore{db: db, maxEntries: maxEntries}, nil
}

func createPostgresTables(ctx context.Context, db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS history (
			seq BIGSERIAL PRIMARY KEY,
			id UUID NOT NULL UNIQUE,
			session_id TEXT NOT NULL,
			text TEXT NOT NULL,
			label VARCHAR(16) NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
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

func (p *PostgresHistoryStore) Append(ctx context.Context, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO history (id, session_id, text, label, confidence, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.SessionID, truncateText(entry.Text), entry.Label, entry.Confidence, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM history WHERE session_id = $1 AND seq NOT IN (
			SELECT seq FROM history WHERE session_id = $1 ORDER BY seq DESC LIMIT $2
		)`, entry.SessionID, p.maxEntries)
	if err != nil {
		return fmt.Errorf("failed to trim session history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit history entry: %w", err)
	}
	return nil
}

func (p *PostgresHistoryStore) List(ctx context.Context, sessionID string, limit, offset int) ([]Entry, error) {
	if offset < 0 {
		offset = 0
	}

	var limitArg interface{}
	if limit > 0 {
		limitArg = limit
	} // NULL means no limit

	rows, err := p.db.QueryContext(ctx,
		`SELECT id, session_id, text, label, confidence, created_at FROM history
		 WHERE session_id = $1 ORDER BY seq ASC LIMIT $2 OFFSET $3`,
		sessionID, limitArg, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Text, &e.Label, &e.Confidence, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return entries, nil
}

func (p *PostgresHistoryStore) Count(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM history WHERE session_id = $1`, sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return count, nil
}

func (p *PostgresHistoryStore) Clear(ctx context.Context, sessionID string) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM history WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (p *PostgresHistoryStore) CleanupOlderThan(ctx context.Context, olderThan time.Duration) (int64, error) {
	result, err := p.db.ExecContext(ctx,
		`DELETE FROM history WHERE created_at < NOW() - $1 * INTERVAL '1 second'`,
		int64(olderThan.Seconds()))
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup history: %w", err)
	}
	return result.RowsAffected()
}

func (p *PostgresHistoryStore) Close() error {
	return p.db.Close()
}
