package server

import (
	"context"
	"embed"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hannes/sentimento/src/backend/charts"
	"github.com/hannes/sentimento/src/backend/sentiment"
	"github.com/hannes/sentimento/src/backend/sentiment/classifiers"
	"github.com/hannes/sentimento/src/backend/wordcloud"
)

//go:embed templates/index.html
var templateFS embed.FS

// Page copy
const (
	PageTitle      = "Projeto ML"
	Header         = "Business Analytics e Machine Learning Para Projetos Econômicos"
	Subheader      = "Análise de Sentimento Econômico no Brasil com Machine Learning"
	Tagline        = "Tomando decisões de investimento com base no sentimento do mercado."
	InputLabel     = "Digite o texto para analisar o sentimento:"
	ButtonLabel    = "Analisar Sentimento"
	EmptyInputMsg  = "Por favor, digite o texto para analisar."
	UnavailableMsg = "O modelo de sentimento não está disponível no momento."
)

type pageData struct {
	PageTitle   string
	Header      string
	Subheader   string
	Tagline     string
	InputLabel  string
	ButtonLabel string
	Text        string
	Message     string
	Error       string
	Result      *pageResult
	History     []historyRow
}

type pageResult struct {
	Label      string
	Confidence string
	GaugeURI   template.URL
	BarsURI    template.URL
	CloudURI   template.URL
}

type historyRow struct {
	Text       string
	Label      string
	Confidence string
}

func parsePageTemplate() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/index.html")
}

func newPageData() pageData {
	return pageData{
		PageTitle:   PageTitle,
		Header:      Header,
		Subheader:   Subheader,
		Tagline:     Tagline,
		InputLabel:  InputLabel,
		ButtonLabel: ButtonLabel,
	}
}

// handleIndex serves the page (GET) and analyses the submitted form (POST)
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()
	sessionID := sessionIDFrom(r.Context())
	data := newPageData()
	status := http.StatusOK

	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Formulário inválido", http.StatusBadRequest)
			return
		}
		data.Text = r.PostFormValue("text")

		result, err := s.analyzer.Analyze(ctx, sessionID, data.Text)
		switch {
		case err == nil:
			data.Result, err = s.renderResult(data.Text, result)
			if err != nil {
				s.logger.Error("failed to render charts", zap.Error(err))
				data.Error = "Falha ao gerar os gráficos."
				status = http.StatusInternalServerError
			}
		case errors.Is(err, classifiers.ErrEmptyInput):
			data.Message = EmptyInputMsg
		case errors.Is(err, sentiment.ErrModelUnavailable):
			data.Error = UnavailableMsg
			status = http.StatusServiceUnavailable
		default:
			s.logger.Error("analysis failed", zap.Error(err))
			data.Error = fmt.Sprintf("Falha na análise: %v", err)
			status = statusFor(err)
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entries, _, err := s.analyzer.History(ctx, sessionID, 0, 0)
	if err != nil {
		s.logger.Warn("failed to load history", zap.Error(err))
	}
	for _, e := range entries {
		data.History = append(data.History, historyRow{
			Text:       e.Text,
			Label:      e.Label,
			Confidence: fmt.Sprintf("%.4f", e.Confidence),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.page.Execute(w, data); err != nil {
		s.logger.Error("failed to render page", zap.Error(err))
	}
}

// renderResult draws the gauge, bars and word cloud of one analysis
func (s *Server) renderResult(text string, result sentiment.Result) (*pageResult, error) {
	pred := result.Prediction

	gauge, err := charts.Gauge(pred.Confidence, pred.Label)
	if err != nil {
		return nil, err
	}
	bars, err := charts.ProbabilityBars(classifiers.Labels, pred.Probabilities)
	if err != nil {
		return nil, err
	}
	cloud, err := wordcloud.Render(text, s.wordCloudOptions())
	if err != nil {
		return nil, err
	}

	return &pageResult{
		Label:      pred.Label,
		Confidence: fmt.Sprintf("%.2f", pred.Confidence),
		GaugeURI:   svgDataURI(gauge),
		BarsURI:    svgDataURI(bars),
		CloudURI:   svgDataURI(cloud),
	}, nil
}

func svgDataURI(svg []byte) template.URL {
	// #nosec G203 - Content is SVG produced by this service and base64-encoded
	return template.URL("data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(svg))
}
