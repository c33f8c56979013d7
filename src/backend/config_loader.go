package main

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hannes/sentimento/src/backend/config"
	"github.com/hannes/sentimento/src/backend/logging"
)

const TRUE = "true"

// loadDotEnv loads variables from a .env file in the working directory
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: could not load .env file: %v\n", err)
	}
}

// loadConfigFromFile loads configuration from a JSON, YAML or TOML file
func loadConfigFromFile(path string, cfg *config.Config) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to decode config file %s: %w", path, err)
	}
	return nil
}

// loadConfigFromEnv loads configuration from environment variables
func loadConfigFromEnv(cfg *config.Config) {
	loadApplicationConfig(cfg)
	loadModelConfig(cfg)
	loadDatabaseConfig(cfg)
	loadHistoryConfig(cfg)
	loadSessionConfig(cfg)
	loadLoggingConfig(cfg)
}

// loadApplicationConfig loads application configuration from environment variables
func loadApplicationConfig(cfg *config.Config) {
	if serverPort := os.Getenv("SERVER_PORT"); serverPort != "" {
		cfg.ServerPort = serverPort
	}

	if enabled := os.Getenv("RATE_LIMIT_ENABLED"); enabled != "" {
		cfg.RateLimit.Enabled = enabled == TRUE
	}
	setInt("RATE_LIMIT_PER_MINUTE", &cfg.RateLimit.RequestsPerMinute)
	setInt("RATE_LIMIT_BURST", &cfg.RateLimit.Burst)

	if enabled := os.Getenv("CACHE_ENABLED"); enabled != "" {
		cfg.Cache.Enabled = enabled == TRUE
	}
	setInt("CACHE_TTL_SECONDS", &cfg.Cache.TTLSeconds)

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		cfg.Sentry.DSN = dsn
	}
	if env := os.Getenv("SENTRY_ENVIRONMENT"); env != "" {
		cfg.Sentry.Environment = env
	}

	setInt("WORDCLOUD_MAX_WORDS", &cfg.WordCloud.MaxWords)
}

// loadModelConfig loads classifier configuration from environment variables
func loadModelConfig(cfg *config.Config) {
	if dir := os.Getenv("MODEL_DIR"); dir != "" {
		cfg.Model.Directory = dir
	}

	// Same variable the classifier checks when resolving the runtime library
	if lib := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"); lib != "" {
		cfg.Model.RuntimeLibraryPath = lib
	}

	setInt("MAX_SEQ_LEN", &cfg.Model.MaxSequenceLength)

	if output := os.Getenv("MODEL_OUTPUT_NAME"); output != "" {
		cfg.Model.OutputName = output
	}

	if token := os.Getenv("MODEL_RELOAD_TOKEN"); token != "" {
		cfg.Model.ReloadToken = token
	}
}

// loadDatabaseConfig loads history storage configuration from environment variables
func loadDatabaseConfig(cfg *config.Config) {
	if backend := os.Getenv("HISTORY_BACKEND"); backend != "" {
		cfg.Database.Backend = backend
	}

	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}

	setInt("DB_PORT", &cfg.Database.Port)

	if dbName := os.Getenv("DB_NAME"); dbName != "" {
		cfg.Database.Database = dbName
	}

	if user := os.Getenv("DB_USER"); user != "" {
		cfg.Database.Username = user
	}

	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.Database.Password = password
	}

	if sslMode := os.Getenv("DB_SSL_MODE"); sslMode != "" {
		cfg.Database.SSLMode = sslMode
	}
}

// loadHistoryConfig loads history retention configuration from environment variables
func loadHistoryConfig(cfg *config.Config) {
	setInt("HISTORY_MAX_ENTRIES", &cfg.History.MaxEntriesPerSession)
	setInt("HISTORY_RETENTION_HOURS", &cfg.History.RetentionHours)

	if schedule := os.Getenv("HISTORY_CLEANUP_SCHEDULE"); schedule != "" {
		cfg.History.CleanupSchedule = schedule
	}
}

// loadSessionConfig loads cookie session configuration from environment variables
func loadSessionConfig(cfg *config.Config) {
	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		cfg.Session.Secret = secret
	}

	if secure := os.Getenv("SESSION_SECURE"); secure != "" {
		cfg.Session.Secure = secure == TRUE
	}
}

// loadLoggingConfig loads logging configuration from environment variables
func loadLoggingConfig(cfg *config.Config) {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}

	if format := os.Getenv("LOG_FORMAT"); format != "" {
		cfg.Logging.Format = format
	}

	if logRequests := os.Getenv("LOG_REQUESTS"); logRequests != "" {
		cfg.Logging.LogRequests = logRequests == TRUE
	}

	if logPredictions := os.Getenv("LOG_PREDICTIONS"); logPredictions != "" {
		cfg.Logging.LogPredictions = logPredictions == TRUE
	}

	if debugMode := os.Getenv("DB_DEBUG"); debugMode != "" {
		cfg.Logging.DebugMode = debugMode == TRUE
	}
}

func setInt(key string, target *int) {
	value := os.Getenv(key)
	if value == "" {
		return
	}
	if n, err := strconv.Atoi(value); err == nil {
		*target = n
	}
}

// extractEmbeddedModelFiles copies the files under root in modelFS into targetDir
func extractEmbeddedModelFiles(modelFS fs.FS, root, targetDir string) error {
	if err := os.MkdirAll(targetDir, 0750); err != nil {
		return err
	}

	return fs.WalkDir(modelFS, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip directories
		if d.IsDir() {
			return nil
		}

		content, err := fs.ReadFile(modelFS, p)
		if err != nil {
			return err
		}

		targetPath := filepath.Join(targetDir, path.Base(p))
		if err := os.WriteFile(targetPath, content, 0600); err != nil {
			return err
		}

		logging.L().Debug("extracted model file",
			zap.String("path", targetPath),
			zap.Int("size", len(content)))
		return nil
	})
}
