package server

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hannes/sentimento/src/backend/metrics"
)

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument records request metrics and, when enabled, logs each request
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		// ServeMux stores the matched pattern on the request
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		metrics.HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())

		if s.config.Logging.LogRequests {
			s.logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", elapsed))
		}
	})
}

// withSession makes sure the caller has a session id and stores it in the request context
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := s.sessionID(w, r)
		if err != nil {
			s.logger.Warn("failed to save session", zap.Error(err))
		}
		next.ServeHTTP(w, r.WithContext(withSessionID(r.Context(), id)))
	})
}

// limitPost applies the per-session rate limit to POST requests
func (s *Server) limitPost(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && r.Method == http.MethodPost {
			if !s.limiter.Allow(sessionIDFrom(r.Context())) {
				metrics.RateLimitedTotal.Inc()
				if strings.HasPrefix(r.URL.Path, "/api/") {
					writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				} else {
					http.Error(w, "Muitas solicitações. Tente novamente em instantes.", http.StatusTooManyRequests)
				}
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requireReloadToken rejects requests without the configured bearer token.
// An empty token disables the route.
func (s *Server) requireReloadToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := s.config.Model.ReloadToken
		if token == "" {
			writeError(w, http.StatusForbidden, "model reload is disabled")
			return
		}
		got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			s.logger.Warn("rejected model reload", zap.String("remote", r.RemoteAddr))
			w.Header().Set("WWW-Authenticate", `Bearer realm="sentimento"`)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
