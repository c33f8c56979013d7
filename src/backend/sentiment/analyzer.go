package sentiment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/hannes/sentimento/src/backend/logging"
	"github.com/hannes/sentimento/src/backend/metrics"
	"github.com/hannes/sentimento/src/backend/sentiment/classifiers"
)

// ClassifierProvider is an interface for getting the current classifier
type ClassifierProvider interface {
	GetClassifier() (classifiers.Classifier, error)
}

// AnalyzerOptions configures an Analyzer
type AnalyzerOptions struct {
	CacheEnabled   bool
	CacheTTL       time.Duration
	LogPredictions bool // Log analysed text and label
}

// Result is the outcome of one analysis
type Result struct {
	Prediction  classifiers.Prediction `json:"prediction"`
	Entry       Entry                  `json:"entry"`
	HistorySize int                    `json:"history_size"`
	Cached      bool                   `json:"cached"`
}

// Analyzer classifies texts and records them in the session history
type Analyzer struct {
	provider       ClassifierProvider
	history        HistoryStore
	cache          *cache.Cache
	logPredictions bool
	logger         *zap.Logger
}

// NewAnalyzer creates a new analyzer
func NewAnalyzer(provider ClassifierProvider, history HistoryStore, opts AnalyzerOptions) *Analyzer {
	a := &Analyzer{
		provider:       provider,
		history:        history,
		logPredictions: opts.LogPredictions,
		logger:         logging.Named("Analyzer"),
	}
	if opts.CacheEnabled && opts.CacheTTL > 0 {
		a.cache = cache.New(opts.CacheTTL, 2*opts.CacheTTL)
	}
	return a
}

// Analyze classifies text and appends the result to the history of sessionID
func (a *Analyzer) Analyze(ctx context.Context, sessionID, text string) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, classifiers.ErrEmptyInput
	}

	pred, cached, err := a.classify(ctx, text)
	if err != nil {
		return Result{}, err
	}
	metrics.PredictionsTotal.WithLabelValues(pred.Label).Inc()

	if a.logPredictions {
		a.logger.Info("prediction",
			zap.String("session", sessionID),
			zap.String("text", text),
			zap.String("label", pred.Label),
			zap.Float64("confidence", pred.Confidence),
			zap.Bool("cached", cached))
	}

	entry := Entry{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		Text:       truncateText(text),
		Label:      pred.Label,
		Confidence: pred.Confidence,
		CreatedAt:  time.Now(),
	}

	// A failed history write does not invalidate the prediction
	if err := a.history.Append(ctx, entry); err != nil {
		metrics.HistoryWrites.WithLabelValues("failure").Inc()
		a.logger.Error("failed to append history entry", zap.String("session", sessionID), zap.Error(err))
		a.report(ctx, err)
	} else {
		metrics.HistoryWrites.WithLabelValues("success").Inc()
	}

	size, err := a.history.Count(ctx, sessionID)
	if err != nil {
		a.logger.Warn("failed to count history", zap.Error(err))
	}

	return Result{Prediction: pred, Entry: entry, HistorySize: size, Cached: cached}, nil
}

func (a *Analyzer) classify(ctx context.Context, text string) (classifiers.Prediction, bool, error) {
	key := cacheKey(text)
	if a.cache != nil {
		if v, ok := a.cache.Get(key); ok {
			metrics.PredictionCacheHits.WithLabelValues("hit").Inc()
			return v.(classifiers.Prediction), true, nil
		}
		metrics.PredictionCacheHits.WithLabelValues("miss").Inc()
	}

	// A reload may close the classifier between GetClassifier and Classify.
	// Retry while the manager hands out a different one.
	var last classifiers.Classifier
	for {
		classifier, err := a.provider.GetClassifier()
		if err != nil {
			if !errors.Is(err, ErrModelUnavailable) {
				err = fmt.Errorf("%w: %v", ErrModelUnavailable, err)
			}
			return classifiers.Prediction{}, false, err
		}
		if classifier == last {
			return classifiers.Prediction{}, false, fmt.Errorf("%w: %v", ErrModelUnavailable, classifiers.ErrClassifierClosed)
		}
		last = classifier

		start := time.Now()
		pred, err := classifier.Classify(ctx, classifiers.Input{Text: text})
		metrics.InferenceDuration.Observe(time.Since(start).Seconds())
		if errors.Is(err, classifiers.ErrClassifierClosed) {
			a.logger.Debug("classifier closed by a reload, retrying", zap.String("classifier", classifier.GetName()))
			continue
		}
		if err != nil {
			if errors.Is(err, classifiers.ErrEmptyInput) || errors.Is(err, context.Canceled) {
				return classifiers.Prediction{}, false, err
			}
			metrics.InferenceErrors.Inc()
			a.logger.Error("classification failed", zap.String("classifier", classifier.GetName()), zap.Error(err))
			a.report(ctx, err)
			return classifiers.Prediction{}, false, fmt.Errorf("classification failed: %w", err)
		}

		if a.cache != nil {
			a.cache.SetDefault(key, pred)
		}
		return pred, false, nil
	}
}

// report sends err to Sentry through the request hub when there is one
func (a *Analyzer) report(ctx context.Context, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.CaptureException(err)
}

// History returns the session history, oldest first, and its total size
func (a *Analyzer) History(ctx context.Context, sessionID string, limit, offset int) ([]Entry, int, error) {
	entries, err := a.history.List(ctx, sessionID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := a.history.Count(ctx, sessionID)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// ClearHistory removes every entry of the session history
func (a *Analyzer) ClearHistory(ctx context.Context, sessionID string) error {
	return a.history.Clear(ctx, sessionID)
}

// FlushCache drops every cached prediction, e.g. after a model reload
func (a *Analyzer) FlushCache() {
	if a.cache != nil {
		a.cache.Flush()
	}
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
