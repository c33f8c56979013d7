package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hannes/sentimento/src/backend/config"
	"github.com/hannes/sentimento/src/backend/logging"
	"github.com/hannes/sentimento/src/backend/sentiment"
)

// ModelService exposes model state and hot reload to the HTTP layer
type ModelService interface {
	IsHealthy() bool
	GetInfo() sentiment.ModelInfo
	ReloadModel(ctx context.Context, directory string) error
}

// Server represents the HTTP server
type Server struct {
	config       *config.Config
	analyzer     *sentiment.Analyzer
	models       ModelService
	sessionStore *sessions.CookieStore
	limiter      *SessionRateLimiter
	page         *template.Template
	httpServer   *http.Server
	logger       *zap.Logger
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, analyzer *sentiment.Analyzer, models ModelService) (*Server, error) {
	page, err := parsePageTemplate()
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	sessionStore, err := newSessionStore(cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session store: %w", err)
	}

	var limiter *SessionRateLimiter
	if cfg.RateLimit.Enabled {
		limiter = NewSessionRateLimiter(float64(cfg.RateLimit.RequestsPerMinute)/60, cfg.RateLimit.Burst, nil)
	}

	return &Server{
		config:       cfg,
		analyzer:     analyzer,
		models:       models,
		sessionStore: sessionStore,
		limiter:      limiter,
		page:         page,
		logger:       logging.Named("Server"),
	}, nil
}

// Handler builds the routed handler with all middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// UI
	mux.Handle("/", s.withSession(s.limitPost(http.HandlerFunc(s.handleIndex))))

	// API
	mux.Handle("/api/sentiment", s.api(s.withSession(s.limitPost(http.HandlerFunc(s.handleSentiment)))))
	mux.Handle("/api/history", s.api(s.withSession(http.HandlerFunc(s.handleHistory))))
	mux.Handle("/api/charts/gauge.svg", s.api(http.HandlerFunc(s.handleGauge)))
	mux.Handle("/api/charts/probabilities.svg", s.api(http.HandlerFunc(s.handleProbabilities)))
	mux.Handle("/api/charts/wordcloud.svg", s.api(s.withSession(s.limitPost(http.HandlerFunc(s.handleWordCloud)))))
	mux.Handle("/api/model", s.api(http.HandlerFunc(s.handleModelInfo)))
	// No CORS: reload is for operators, not browser pages
	mux.Handle("/api/model/reload", s.requireReloadToken(http.HandlerFunc(s.handleModelReload)))

	// Operations
	mux.Handle("/health", s.api(http.HandlerFunc(s.healthCheck)))
	mux.Handle("/metrics", promhttp.Handler())

	var h http.Handler = s.instrument(mux)
	if s.config.Sentry.DSN != "" {
		h = sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle(h)
	}
	return h
}

// Start starts the HTTP server and blocks until ctx is cancelled or the
// listener fails. Cancelling ctx shuts the server down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting sentiment service", zap.String("port", s.config.ServerPort))

	if s.models != nil {
		info := s.models.GetInfo()
		if info.Healthy {
			s.logger.Info("sentiment model ready",
				zap.String("classifier", info.Classifier),
				zap.String("directory", info.Directory))
		} else {
			s.logger.Warn("sentiment model unavailable; analyses will fail until a reload succeeds",
				zap.String("directory", info.Directory))
		}
	}

	// Create server with timeout configuration
	s.httpServer = &http.Server{
		Addr:         s.config.ServerPort,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	}
}

// api adds CORS headers and answers preflight requests
func (s *Server) api(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.corsHandler(w, r)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// corsHandler adds CORS headers to the response
func (s *Server) corsHandler(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "false")
	} else {
		// For requests with origin, echo it back (allows credentials)
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}

	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// healthCheck reports service health together with the model state
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	status := "healthy"
	var model *sentiment.ModelInfo
	if s.models != nil {
		info := s.models.GetInfo()
		model = &info
		if !info.Healthy {
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  status,
		"service": "Sentimento",
		"model":   model,
	})
}

// Close releases server resources
func (s *Server) Close() error {
	if s.limiter != nil {
		s.limiter.Reset()
	}
	return nil
}
