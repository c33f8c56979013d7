package main

import (
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hannes/sentimento/src/backend/config"
	"github.com/hannes/sentimento/src/backend/logging"
	"github.com/hannes/sentimento/src/backend/sentiment"
	"github.com/hannes/sentimento/src/backend/sentiment/classifiers"
)

var (
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sentimento",
	Short: "Economic sentiment analysis for Portuguese text",
	Long: `sentimento classifies Portuguese economic text as Negativo, Neutro or
Positivo with a fine-tuned BERT model and serves the results on a web page
with a confidence gauge, a probability chart, a word cloud and a per-session
history.

Run without arguments to start the web server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loadDotEnv()

		cfg = config.DefaultConfig()
		if configPath != "" {
			if err := loadConfigFromFile(configPath, cfg); err != nil {
				return err
			}
		}
		loadConfigFromEnv(cfg)
		if verbose {
			cfg.Logging.Level = "debug"
		}
		if err := cfg.ValidateConfig(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		var err error
		logger, err = logging.Init(cfg.Logging.Level, cfg.Logging.Format)
		if err != nil {
			return err
		}

		if cfg.Sentry.DSN != "" {
			if err := sentry.Init(sentry.ClientOptions{
				Dsn:              cfg.Sentry.DSN,
				Environment:      cfg.Sentry.Environment,
				AttachStacktrace: true,
			}); err != nil {
				logger.Warn("failed to initialize Sentry", zap.Error(err))
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if cfg != nil && cfg.Sentry.DSN != "" {
			sentry.Flush(2 * time.Second)
		}
		if err := classifiers.ShutdownRuntime(); err != nil && logger != nil {
			logger.Warn("failed to shut down ONNX Runtime", zap.Error(err))
		}
		logging.Sync()
	},
	RunE: runServe,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (JSON, YAML or TOML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	historyCmd.Flags().StringVar(&historySession, "session", "", "Session id to print (required)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "Maximum number of entries (0 = all)")
	_ = historyCmd.MarkFlagRequired("session")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newModelManager prepares the model directory and loads it
func newModelManager(cfg *config.Config) *sentiment.ModelManager {
	if embeddedModel {
		logger.Info("extracting embedded model files", zap.String("directory", cfg.Model.Directory))
		if err := extractEmbeddedModelFiles(modelFiles, "modelo_final", cfg.Model.Directory); err != nil {
			logger.Warn("failed to extract model files, falling back to file system model files", zap.Error(err))
		}
	}

	return sentiment.NewModelManager(cfg.Model.Directory, sentiment.ONNXLoader(classifiers.Options{
		MaxSequenceLength:  cfg.Model.MaxSequenceLength,
		UseTokenTypeIDs:    cfg.Model.UseTokenTypeIDs,
		OutputName:         cfg.Model.OutputName,
		RuntimeLibraryPath: cfg.Model.RuntimeLibraryPath,
	}))
}
