package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// History backends
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level          string `mapstructure:"level" json:"level"`   // debug, info, warn, error
	Format         string `mapstructure:"format" json:"format"` // json or console
	LogRequests    bool   `mapstructure:"log_requests" json:"log_requests"`
	LogPredictions bool   `mapstructure:"log_predictions" json:"log_predictions"` // Log text and predicted label
	DebugMode      bool   `mapstructure:"debug_mode" json:"debug_mode"`           // Enable debug logging for database operations
}

// ModelConfig holds classifier configuration
type ModelConfig struct {
	Directory          string `mapstructure:"directory" json:"directory"`
	RuntimeLibraryPath string `mapstructure:"runtime_library_path" json:"runtime_library_path"`
	MaxSequenceLength  int    `mapstructure:"max_sequence_length" json:"max_sequence_length"`
	UseTokenTypeIDs    bool   `mapstructure:"use_token_type_ids" json:"use_token_type_ids"`
	OutputName         string `mapstructure:"output_name" json:"output_name"`
	ReloadToken        string `mapstructure:"reload_token" json:"-"` // Bearer token for POST /api/model/reload; empty disables reload
}

// DatabaseConfig holds history storage configuration
type DatabaseConfig struct {
	Backend      string `mapstructure:"backend" json:"backend"` // memory, sqlite or postgres
	Path         string `mapstructure:"path" json:"path"`       // SQLite database file
	Host         string `mapstructure:"host" json:"host"`
	Port         int    `mapstructure:"port" json:"port"`
	Database     string `mapstructure:"database" json:"database"`
	Username     string `mapstructure:"username" json:"username"`
	Password     string `mapstructure:"password" json:"password"`
	SSLMode      string `mapstructure:"ssl_mode" json:"ssl_mode"`
	MaxOpenConns int    `mapstructure:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" json:"max_idle_conns"`
	MaxLifetime  int    `mapstructure:"max_lifetime" json:"max_lifetime"` // Connection max lifetime in seconds
}

// HistoryConfig holds history retention configuration
type HistoryConfig struct {
	MaxEntriesPerSession int    `mapstructure:"max_entries_per_session" json:"max_entries_per_session"`
	RetentionHours       int    `mapstructure:"retention_hours" json:"retention_hours"`
	CleanupSchedule      string `mapstructure:"cleanup_schedule" json:"cleanup_schedule"` // cron spec
}

// SessionConfig holds cookie session configuration
type SessionConfig struct {
	Secret     string `mapstructure:"secret" json:"secret"`
	CookieName string `mapstructure:"cookie_name" json:"cookie_name"`
	MaxAgeDays int    `mapstructure:"max_age_days" json:"max_age_days"`
	Secure     bool   `mapstructure:"secure" json:"secure"`
}

// RateLimitConfig holds per-session rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled" json:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute" json:"requests_per_minute"`
	Burst             int  `mapstructure:"burst" json:"burst"`
}

// CacheConfig holds prediction cache configuration
type CacheConfig struct {
	Enabled    bool `mapstructure:"enabled" json:"enabled"`
	TTLSeconds int  `mapstructure:"ttl_seconds" json:"ttl_seconds"`
}

// SentryConfig holds error reporting configuration
type SentryConfig struct {
	DSN         string `mapstructure:"dsn" json:"dsn"`
	Environment string `mapstructure:"environment" json:"environment"`
}

// WordCloudConfig holds word cloud rendering configuration
type WordCloudConfig struct {
	Width    int `mapstructure:"width" json:"width"`
	Height   int `mapstructure:"height" json:"height"`
	MaxWords int `mapstructure:"max_words" json:"max_words"`
}

// Config holds all configuration for the sentiment service
type Config struct {
	ServerPort string          `mapstructure:"server_port" json:"server_port"`
	Model      ModelConfig     `mapstructure:"model" json:"model"`
	Database   DatabaseConfig  `mapstructure:"database" json:"database"`
	History    HistoryConfig   `mapstructure:"history" json:"history"`
	Session    SessionConfig   `mapstructure:"session" json:"session"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit" json:"rate_limit"`
	Cache      CacheConfig     `mapstructure:"cache" json:"cache"`
	Sentry     SentryConfig    `mapstructure:"sentry" json:"sentry"`
	WordCloud  WordCloudConfig `mapstructure:"word_cloud" json:"word_cloud"`
	Logging    LoggingConfig   `mapstructure:"logging" json:"logging"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		ServerPort: ":8501",
		Model: ModelConfig{
			Directory:         "modelo_final",
			MaxSequenceLength: 512,
			UseTokenTypeIDs:   true,
			OutputName:        "logits",
		},
		Database: DatabaseConfig{
			Backend:      BackendMemory,
			Path:         "sentimento.db",
			Host:         "localhost",
			Port:         5432,
			Database:     "sentimento",
			Username:     "postgres",
			Password:     "",
			SSLMode:      "disable",
			MaxOpenConns: 25,
			MaxIdleConns: 25,
			MaxLifetime:  300,
		},
		History: HistoryConfig{
			MaxEntriesPerSession: 1000,
			RetentionHours:       24,
			CleanupSchedule:      "@hourly",
		},
		Session: SessionConfig{
			Secret:     "",
			CookieName: "sentimento_session",
			MaxAgeDays: 1,
			Secure:     false,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 60,
			Burst:             10,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 600,
		},
		WordCloud: WordCloudConfig{
			Width:    800,
			Height:   400,
			MaxWords: 200,
		},
		Logging: LoggingConfig{
			Level:          "info",
			Format:         "console",
			LogRequests:    true,
			LogPredictions: false, // Texts may be sensitive
		},
	}
}

// CacheTTL returns the prediction cache TTL as a duration
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// Retention returns how long history entries are kept
func (hc HistoryConfig) Retention() time.Duration {
	return time.Duration(hc.RetentionHours) * time.Hour
}

// ValidateConfig checks the configuration and reports every problem found
func (c *Config) ValidateConfig() error {
	var errs []string

	if err := validatePort(c.ServerPort, "ServerPort"); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateBackend(c.Database.Backend, "Database.Backend"); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Model.Directory == "" {
		errs = append(errs, "Model.Directory: directory cannot be empty")
	}
	if c.Model.MaxSequenceLength < 2 || c.Model.MaxSequenceLength > 512 {
		errs = append(errs, fmt.Sprintf("Model.MaxSequenceLength: must be between 2 and 512 (current value: %d)", c.Model.MaxSequenceLength))
	}
	if c.RateLimit.Enabled {
		if err := validatePositive(c.RateLimit.RequestsPerMinute, "RateLimit.RequestsPerMinute"); err != nil {
			errs = append(errs, err.Error())
		}
		if err := validatePositive(c.RateLimit.Burst, "RateLimit.Burst"); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validatePositive(c.History.MaxEntriesPerSession, "History.MaxEntriesPerSession"); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validatePositive(c.WordCloud.MaxWords, "WordCloud.MaxWords"); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validatePort(port, fieldName string) error {
	if port == "" {
		return fmt.Errorf("%s: port cannot be empty", fieldName)
	}
	if !strings.HasPrefix(port, ":") {
		return fmt.Errorf("%s: port must be in format ':PORT' where PORT is numeric (current value: %s)", fieldName, port)
	}
	p, err := strconv.Atoi(port[1:])
	if err != nil {
		return fmt.Errorf("%s: port must be in format ':PORT' where PORT is numeric (current value: %s)", fieldName, port)
	}
	if p < 1 || p > 65535 {
		return fmt.Errorf("%s: port must be between 1 and 65535 (current value: %d)", fieldName, p)
	}
	return nil
}

func validateBackend(backend, fieldName string) error {
	switch backend {
	case BackendMemory, BackendSQLite, BackendPostgres:
		return nil
	default:
		return fmt.Errorf("%s: unknown backend %q (expected memory, sqlite or postgres)", fieldName, backend)
	}
}

func validatePositive(value int, fieldName string) error {
	if value <= 0 {
		return fmt.Errorf("%s: must be greater than zero (current value: %d)", fieldName, value)
	}
	return nil
}
