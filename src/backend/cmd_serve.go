package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hannes/sentimento/src/backend/sentiment"
	"github.com/hannes/sentimento/src/backend/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server (default)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	models := newModelManager(cfg)
	defer func() {
		if err := models.Close(); err != nil {
			logger.Warn("failed to close classifier", zap.Error(err))
		}
	}()
	if !models.IsHealthy() {
		// The page still loads; predictions answer 503 until a reload succeeds
		logger.Warn("starting without a usable model", zap.Error(models.GetLastError()))
	}

	history, err := sentiment.NewHistoryStore(ctx, cfg.Database, cfg.History)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	if sqliteStore, ok := history.(*sentiment.SQLiteHistoryStore); ok {
		sqliteStore.SetDebugMode(cfg.Logging.DebugMode)
	}
	defer func() {
		if err := history.Close(); err != nil {
			logger.Warn("failed to close history store", zap.Error(err))
		}
	}()

	retention, err := sentiment.NewRetentionJob(history, cfg.History.CleanupSchedule, cfg.History.Retention())
	if err != nil {
		return err
	}
	retention.Start()
	defer retention.Stop()

	analyzer := sentiment.NewAnalyzer(models, history, sentiment.AnalyzerOptions{
		CacheEnabled:   cfg.Cache.Enabled,
		CacheTTL:       cfg.CacheTTL(),
		LogPredictions: cfg.Logging.LogPredictions,
	})

	srv, err := server.NewServer(cfg, analyzer, models)
	if err != nil {
		return err
	}
	return srv.Start(ctx)
}

// withSignals is used by the one-shot commands so Ctrl-C aborts a slow inference
func withSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
