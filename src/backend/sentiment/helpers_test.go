package sentiment

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/hannes/sentimento/src/backend/sentiment/classifiers"
)

// fakeClassifier returns a fixed prediction and counts calls
type fakeClassifier struct {
	mu     sync.Mutex
	name   string
	pred   classifiers.Prediction
	err    error
	calls  int
	closed bool
}

func newFakeClassifier(logits ...float32) *fakeClassifier {
	return &fakeClassifier{name: "fake", pred: classifiers.NewPrediction(logits)}
}

func (f *fakeClassifier) GetName() string { return f.name }

func (f *fakeClassifier) Classify(ctx context.Context, input classifiers.Input) (classifiers.Prediction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.closed {
		return classifiers.Prediction{}, classifiers.ErrClassifierClosed
	}
	if f.err != nil {
		return classifiers.Prediction{}, f.err
	}
	return f.pred, nil
}

func (f *fakeClassifier) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeClassifier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// staticProvider hands out a single classifier or a fixed error
type staticProvider struct {
	classifier classifiers.Classifier
	err        error
}

func (p staticProvider) GetClassifier() (classifiers.Classifier, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.classifier == nil {
		return nil, errors.New("no classifier")
	}
	return p.classifier, nil
}

// newModelDir creates a directory holding placeholder model files
func newModelDir(t *testing.T, withLabelConfig bool) string {
	t.Helper()
	dir := t.TempDir()
	files := []string{ModelFileName, TokenizerFileName}
	if withLabelConfig {
		files = append(files, LabelConfigName)
	}
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("placeholder "+name), 0600); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return dir
}
