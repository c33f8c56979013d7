//go:build integration && onnx
// +build integration,onnx

package classifiers

import (
	"context"
	"math"
	"os"
	"strings"
	"testing"
)

// Test paths - adjust based on your local setup or use environment variables
var (
	testModelPath     = getEnvOrDefault("ONNX_MODEL_PATH", "../../../../modelo_final/model.onnx")
	testTokenizerPath = getEnvOrDefault("ONNX_TOKENIZER_PATH", "../../../../modelo_final/tokenizer.json")
)

func getEnvOrDefault(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func skipIfNoONNX(t *testing.T) {
	if _, err := os.Stat(testModelPath); os.IsNotExist(err) {
		t.Skipf("Skipping: model file not found at %s", testModelPath)
	}
	if _, err := os.Stat(testTokenizerPath); os.IsNotExist(err) {
		t.Skipf("Skipping: tokenizer file not found at %s", testTokenizerPath)
	}
}

func newIntegrationClassifier(t *testing.T) *ONNXClassifier {
	t.Helper()
	skipIfNoONNX(t)

	classifier, err := NewONNXClassifier(testModelPath, testTokenizerPath, Options{UseTokenTypeIDs: true})
	if err != nil {
		t.Fatalf("Failed to create classifier: %v", err)
	}
	t.Cleanup(func() { _ = classifier.Close() })
	return classifier
}

func TestONNXClassifier_ExampleTexts(t *testing.T) {
	classifier := newIntegrationClassifier(t)

	examples := []struct {
		text     string
		expected string
	}{
		{"A inflação está alta e o crescimento da economia está abaixo do esperado.", LabelNegative},
		{"A economia está com aumento do investimento estrangeiro.", LabelPositive},
		{"O cenário econômico brasileiro apresenta indicadores variados, refletindo diferentes tendências nos setores produtivos.", LabelNeutral},
	}

	for _, ex := range examples {
		prediction, err := classifier.Classify(context.Background(), Input{Text: ex.text})
		if err != nil {
			t.Fatalf("Classify failed: %v", err)
		}

		var sum float64
		for _, p := range prediction.Probabilities {
			sum += p
		}
		if math.Abs(sum-1) > 1e-5 {
			t.Errorf("Expected probabilities to sum to 1, got %f", sum)
		}
		if prediction.Label != ex.expected {
			t.Logf("Model predicted %s (%.2f) for %q, expected %s", prediction.Label, prediction.Confidence, ex.text, ex.expected)
		}
	}
}

func TestONNXClassifier_LongText(t *testing.T) {
	classifier := newIntegrationClassifier(t)

	text := strings.Repeat("O mercado financeiro reagiu bem às notícias. ", 200)
	prediction, err := classifier.Classify(context.Background(), Input{Text: text})
	if err != nil {
		t.Fatalf("Classify failed for long text: %v", err)
	}
	if len(prediction.Probabilities) != NumLabels {
		t.Errorf("Expected %d probabilities, got %d", NumLabels, len(prediction.Probabilities))
	}
}
