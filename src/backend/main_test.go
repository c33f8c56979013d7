package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/hannes/sentimento/src/backend/config"
	"github.com/hannes/sentimento/src/backend/sentiment"
	"github.com/hannes/sentimento/src/backend/sentiment/classifiers"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9000")
	t.Setenv("MODEL_DIR", "/models/bert")
	t.Setenv("MAX_SEQ_LEN", "256")
	t.Setenv("HISTORY_BACKEND", "sqlite")
	t.Setenv("DB_PATH", "/tmp/history.db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("CACHE_TTL_SECONDS", "30")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_REQUESTS", "false")
	t.Setenv("SESSION_SECRET", "segredo")
	t.Setenv("HISTORY_CLEANUP_SCHEDULE", "@daily")

	cfg := config.DefaultConfig()
	loadConfigFromEnv(cfg)

	if cfg.ServerPort != ":9000" {
		t.Errorf("expected server port :9000, got %s", cfg.ServerPort)
	}
	if cfg.Model.Directory != "/models/bert" {
		t.Errorf("expected model directory /models/bert, got %s", cfg.Model.Directory)
	}
	if cfg.Model.MaxSequenceLength != 256 {
		t.Errorf("expected max sequence length 256, got %d", cfg.Model.MaxSequenceLength)
	}
	if cfg.Database.Backend != config.BackendSQLite || cfg.Database.Path != "/tmp/history.db" {
		t.Errorf("unexpected database config: %+v", cfg.Database)
	}
	if cfg.Database.Port != 6543 {
		t.Errorf("expected db port 6543, got %d", cfg.Database.Port)
	}
	if cfg.RateLimit.Enabled {
		t.Error("expected rate limiting to be disabled")
	}
	if cfg.CacheTTL() != 30*time.Second {
		t.Errorf("expected cache TTL 30s, got %v", cfg.CacheTTL())
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogRequests {
		t.Errorf("unexpected logging config: %+v", cfg.Logging)
	}
	if cfg.Session.Secret != "segredo" {
		t.Errorf("expected session secret to be set")
	}
	if cfg.History.CleanupSchedule != "@daily" {
		t.Errorf("expected @daily schedule, got %s", cfg.History.CleanupSchedule)
	}
}

func TestLoadConfigFromEnvIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("MAX_SEQ_LEN", "muitos")

	cfg := config.DefaultConfig()
	loadConfigFromEnv(cfg)

	if cfg.Model.MaxSequenceLength != 512 {
		t.Errorf("expected default max sequence length, got %d", cfg.Model.MaxSequenceLength)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	testCases := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "json",
			file: "config.json",
			content: `{
  "server_port": ":8600",
  "model": {"directory": "outro_modelo"},
  "database": {"backend": "postgres", "host": "db"},
  "history": {"max_entries_per_session": 50}
}`,
		},
		{
			name: "yaml",
			file: "config.yaml",
			content: `server_port: ":8600"
model:
  directory: outro_modelo
database:
  backend: postgres
  host: db
history:
  max_entries_per_session: 50
`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tc.file)
			if err := os.WriteFile(path, []byte(tc.content), 0600); err != nil {
				t.Fatal(err)
			}

			cfg := config.DefaultConfig()
			if err := loadConfigFromFile(path, cfg); err != nil {
				t.Fatalf("failed to load config: %v", err)
			}

			if cfg.ServerPort != ":8600" {
				t.Errorf("expected server port :8600, got %s", cfg.ServerPort)
			}
			if cfg.Model.Directory != "outro_modelo" {
				t.Errorf("expected model directory outro_modelo, got %s", cfg.Model.Directory)
			}
			if cfg.Database.Backend != config.BackendPostgres || cfg.Database.Host != "db" {
				t.Errorf("unexpected database config: %+v", cfg.Database)
			}
			if cfg.History.MaxEntriesPerSession != 50 {
				t.Errorf("expected 50 entries per session, got %d", cfg.History.MaxEntriesPerSession)
			}
			// Values absent from the file keep their defaults
			if cfg.Model.MaxSequenceLength != 512 {
				t.Errorf("expected default max sequence length, got %d", cfg.Model.MaxSequenceLength)
			}
			if cfg.Database.Port != 5432 {
				t.Errorf("expected default db port, got %d", cfg.Database.Port)
			}
		})
	}
}

func TestLoadConfigFromFileMissing(t *testing.T) {
	cfg := config.DefaultConfig()
	err := loadConfigFromFile(filepath.Join(t.TempDir(), "missing.yaml"), cfg)
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestExtractEmbeddedModelFiles(t *testing.T) {
	modelFS := fstest.MapFS{
		"modelo_final/model.onnx":     {Data: []byte("onnx")},
		"modelo_final/tokenizer.json": {Data: []byte(`{"model":{}}`)},
		"outro/ignored.txt":           {Data: []byte("x")},
	}
	target := filepath.Join(t.TempDir(), "modelo")

	if err := extractEmbeddedModelFiles(modelFS, "modelo_final", target); err != nil {
		t.Fatalf("extraction failed: %v", err)
	}

	for name, want := range map[string]string{
		"model.onnx":     "onnx",
		"tokenizer.json": `{"model":{}}`,
	} {
		got, err := os.ReadFile(filepath.Join(target, name))
		if err != nil {
			t.Fatalf("expected %s to be extracted: %v", name, err)
		}
		if string(got) != want {
			t.Errorf("%s: expected %q, got %q", name, want, got)
		}
	}
	if _, err := os.Stat(filepath.Join(target, "ignored.txt")); !os.IsNotExist(err) {
		t.Error("expected files outside the model root to be skipped")
	}
}

func TestReadText(t *testing.T) {
	text, err := readText([]string{"O", "PIB", "cresceu"}, strings.NewReader("ignorado"))
	if err != nil || text != "O PIB cresceu" {
		t.Errorf("expected joined args, got %q (%v)", text, err)
	}

	text, err = readText(nil, strings.NewReader("A inflação subiu\n"))
	if err != nil || text != "A inflação subiu\n" {
		t.Errorf("expected stdin text, got %q (%v)", text, err)
	}
}

func TestWritePrediction(t *testing.T) {
	prediction := classifiers.NewPrediction([]float32{0.1, 0.2, 2.5})

	var buf bytes.Buffer
	writePrediction(&buf, prediction)
	out := buf.String()

	if !strings.Contains(out, "Sentimento: Positivo") {
		t.Errorf("expected predicted label in output, got:\n%s", out)
	}
	for _, label := range classifiers.Labels {
		if !strings.Contains(out, label) {
			t.Errorf("expected %s row in output", label)
		}
	}
}

func TestWriteHistory(t *testing.T) {
	entries := []sentiment.Entry{
		{Text: "O desemprego caiu", Label: "Positivo", Confidence: 0.91234, CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
		{Text: "A bolsa fechou estável", Label: "Neutro", Confidence: 0.5, CreatedAt: time.Date(2024, 3, 1, 12, 5, 0, 0, time.UTC)},
	}

	var buf bytes.Buffer
	writeHistory(&buf, entries)
	out := buf.String()

	for _, want := range []string{"O desemprego caiu", "Positivo", "0.9123", "Neutro", "2024-03-01 12:05:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got:\n%s", want, out)
		}
	}
	// Header order matches the page table
	if strings.Index(out, "TEXTO") > strings.Index(out, "SENTIMENTO") {
		t.Errorf("expected Texto column before Sentimento, got:\n%s", out)
	}
}

func TestCheckPersistentBackend(t *testing.T) {
	testCases := []struct {
		backend string
		wantErr bool
	}{
		{config.BackendMemory, true},
		{"", true},
		{config.BackendSQLite, false},
		{config.BackendPostgres, false},
	}

	for _, tc := range testCases {
		err := checkPersistentBackend(config.DatabaseConfig{Backend: tc.backend})
		if tc.wantErr && !errors.Is(err, errVolatileHistory) {
			t.Errorf("backend %q: expected errVolatileHistory, got %v", tc.backend, err)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("backend %q: expected no error, got %v", tc.backend, err)
		}
	}
}

func TestRunHistoryRejectsMemoryBackend(t *testing.T) {
	cfg = config.DefaultConfig()
	t.Cleanup(func() { cfg = nil })

	err := runHistory(historyCmd, nil)
	if !errors.Is(err, errVolatileHistory) {
		t.Fatalf("expected errVolatileHistory, got %v", err)
	}
}
