package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hannes/sentimento/src/backend/charts"
	"github.com/hannes/sentimento/src/backend/sentiment/classifiers"
	"github.com/hannes/sentimento/src/backend/wordcloud"
)

const maxBodySize = 1 << 20 // 1MB

type sentimentRequest struct {
	Text string `json:"text"`
}

type sentimentResponse struct {
	Label         string             `json:"label"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`
	Vector        []float64          `json:"probability_vector"`
	Cached        bool               `json:"cached"`
	EntryID       string             `json:"entry_id"`
	HistorySize   int                `json:"history_size"`
}

// handleSentiment classifies a JSON {"text": ...} body
func (s *Server) handleSentiment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req sentimentRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	result, err := s.analyzer.Analyze(ctx, sessionIDFrom(r.Context()), req.Text)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("analysis failed", zap.Error(err))
		}
		writeError(w, status, err.Error())
		return
	}

	probs := make(map[string]float64, len(classifiers.Labels))
	for i, label := range classifiers.Labels {
		if i < len(result.Prediction.Probabilities) {
			probs[label] = result.Prediction.Probabilities[i]
		}
	}

	writeJSON(w, http.StatusOK, sentimentResponse{
		Label:         result.Prediction.Label,
		Confidence:    result.Prediction.Confidence,
		Probabilities: probs,
		Vector:        result.Prediction.Probabilities,
		Cached:        result.Cached,
		EntryID:       result.Entry.ID,
		HistorySize:   result.HistorySize,
	})
}

// handleHistory lists (GET) or clears (DELETE) the session history
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	sessionID := sessionIDFrom(r.Context())

	switch r.Method {
	case http.MethodGet:
		limit := 100 // Default limit
		offset := 0  // Default offset

		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 {
				limit = parsedLimit
			}
		}
		if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
			if parsedOffset, err := strconv.Atoi(offsetStr); err == nil && parsedOffset >= 0 {
				offset = parsedOffset
			}
		}

		entries, total, err := s.analyzer.History(ctx, sessionID, limit, offset)
		if err != nil {
			s.logger.Error("failed to retrieve history", zap.Error(err))
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to retrieve history: %v", err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"entries": entries,
			"total":   total,
			"limit":   limit,
			"offset":  offset,
		})

	case http.MethodDelete:
		if err := s.analyzer.ClearHistory(ctx, sessionID); err != nil {
			s.logger.Error("failed to clear history", zap.Error(err))
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to clear history: %v", err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleGauge renders the confidence gauge for ?value=&label=
func (s *Server) handleGauge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	value, err := strconv.ParseFloat(r.URL.Query().Get("value"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "value must be a number")
		return
	}
	label := r.URL.Query().Get("label")
	if !isKnownLabel(label) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("label must be one of %s", strings.Join(classifiers.Labels, ", ")))
		return
	}

	svg, err := charts.Gauge(value, label)
	if err != nil {
		s.logger.Error("failed to render gauge", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to render gauge")
		return
	}
	writeSVG(w, svg)
}

// handleProbabilities renders the probability bars for ?p=neg,neu,pos
func (s *Server) handleProbabilities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	probs, err := parseProbabilities(r.URL.Query().Get("p"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	svg, err := charts.ProbabilityBars(classifiers.Labels, probs)
	if err != nil {
		s.logger.Error("failed to render probability chart", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to render probability chart")
		return
	}
	writeSVG(w, svg)
}

// handleWordCloud renders a word cloud of the request body, either raw text
// or a JSON {"text": ...} object
func (s *Server) handleWordCloud(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "body too large")
		return
	}

	text := string(body)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req sentimentRequest
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		text = req.Text
	}

	svg, err := wordcloud.Render(text, s.wordCloudOptions())
	if err != nil {
		s.logger.Error("failed to render word cloud", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to render word cloud")
		return
	}
	writeSVG(w, svg)
}

// handleModelInfo reports the current model state
func (s *Server) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.models == nil {
		writeError(w, http.StatusServiceUnavailable, "model manager not configured")
		return
	}
	writeJSON(w, http.StatusOK, s.models.GetInfo())
}

// handleModelReload hot-reloads the model from {"directory": ...}, or from
// the current directory when none is given
func (s *Server) handleModelReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.models == nil {
		writeError(w, http.StatusServiceUnavailable, "model manager not configured")
		return
	}

	var req struct {
		Directory string `json:"directory"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}
	directory := req.Directory
	if directory == "" {
		directory = s.models.GetInfo().Directory
	}

	if err := s.models.ReloadModel(r.Context(), directory); err != nil {
		// Details stay in the log; they name server paths
		s.logger.Error("model reload failed", zap.String("directory", directory), zap.Error(err))
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":   "model reload failed",
			"healthy": s.models.IsHealthy(),
		})
		return
	}

	// Cached predictions belong to the previous model
	s.analyzer.FlushCache()
	writeJSON(w, http.StatusOK, s.models.GetInfo())
}

func (s *Server) wordCloudOptions() wordcloud.Options {
	opts := wordcloud.DefaultOptions()
	opts.Width = s.config.WordCloud.Width
	opts.Height = s.config.WordCloud.Height
	opts.MaxWords = s.config.WordCloud.MaxWords
	return opts
}

func isKnownLabel(label string) bool {
	for _, l := range classifiers.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// parseProbabilities parses exactly one comma-separated probability per label
func parseProbabilities(raw string) ([]float64, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != classifiers.NumLabels {
		return nil, fmt.Errorf("p must hold %d comma-separated probabilities", classifiers.NumLabels)
	}
	probs := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid probability %q", part)
		}
		probs[i] = v
	}
	return probs, nil
}
