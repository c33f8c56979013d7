package sentiment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hannes/sentimento/src/backend/logging"
	"github.com/hannes/sentimento/src/backend/metrics"
	"github.com/hannes/sentimento/src/backend/sentiment/classifiers"
)

// Files expected in a model directory
const (
	ModelFileName     = "model.onnx"
	TokenizerFileName = "tokenizer.json"
	LabelConfigName   = "config.json" // optional
)

// validationText is classified after every load to prove the model works
const validationText = "A economia brasileira cresceu no último trimestre."

// ErrModelUnavailable is returned when no healthy model is loaded
var ErrModelUnavailable = errors.New("sentiment model is unavailable")

// ModelFiles holds paths to the files of a model directory
type ModelFiles struct {
	ModelPath       string
	TokenizerPath   string
	LabelConfigPath string // empty when the directory has no config.json
}

// ClassifierLoader builds a classifier from validated model files
type ClassifierLoader func(files ModelFiles) (classifiers.Classifier, error)

// ONNXLoader returns a loader that builds ONNX classifiers with opts
func ONNXLoader(opts classifiers.Options) ClassifierLoader {
	return func(files ModelFiles) (classifiers.Classifier, error) {
		o := opts
		o.LabelConfigPath = files.LabelConfigPath
		return classifiers.NewONNXClassifier(files.ModelPath, files.TokenizerPath, o)
	}
}

// ModelManager manages the classifier lifecycle with thread-safe hot reload
type ModelManager struct {
	mu                sync.RWMutex
	currentClassifier classifiers.Classifier
	modelDirectory    string
	modelSHA256       string
	loadedAt          time.Time
	isHealthy         bool
	lastError         error
	load              ClassifierLoader
	logger            *zap.Logger
}

// NewModelManager creates a model manager and loads the given directory.
// A failed initial load leaves the manager unhealthy instead of failing, so
// the server can still start and report the problem.
func NewModelManager(directory string, load ClassifierLoader) *ModelManager {
	mm := &ModelManager{
		modelDirectory: directory,
		load:           load,
		logger:         logging.Named("ModelManager"),
	}

	if err := mm.ReloadModel(context.Background(), directory); err != nil {
		mm.logger.Warn("failed to load initial model; manager is unhealthy",
			zap.String("directory", directory), zap.Error(err))
	}

	return mm
}

// GetClassifier returns the current classifier in a thread-safe manner
func (mm *ModelManager) GetClassifier() (classifiers.Classifier, error) {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	if !mm.isHealthy {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, mm.lastError)
	}
	if mm.currentClassifier == nil {
		return nil, fmt.Errorf("%w: no classifier loaded", ErrModelUnavailable)
	}
	return mm.currentClassifier, nil
}

// ReloadModel loads the model in newDirectory, validates it with one
// inference and swaps it in. The previous classifier keeps serving if any
// step fails.
func (mm *ModelManager) ReloadModel(ctx context.Context, newDirectory string) error {
	mm.logger.Info("reloading model", zap.String("directory", newDirectory))

	files, err := validateDirectory(newDirectory)
	if err != nil {
		mm.fail(err)
		return fmt.Errorf("validation failed: %w", err)
	}

	checksum, err := fileSHA256(files.ModelPath)
	if err != nil {
		mm.fail(err)
		return fmt.Errorf("failed to hash model: %w", err)
	}

	// Load outside the lock to minimize blocking
	newClassifier, err := mm.load(files)
	if err != nil {
		mm.fail(err)
		return fmt.Errorf("failed to load model: %w", err)
	}

	if _, err := newClassifier.Classify(ctx, classifiers.Input{Text: validationText}); err != nil {
		if closeErr := newClassifier.Close(); closeErr != nil {
			mm.logger.Warn("failed to close rejected classifier", zap.Error(closeErr))
		}
		mm.fail(err)
		return fmt.Errorf("model validation failed: %w", err)
	}

	mm.mu.Lock()
	oldClassifier := mm.currentClassifier
	mm.currentClassifier = newClassifier
	mm.modelDirectory = newDirectory
	mm.modelSHA256 = checksum
	mm.loadedAt = time.Now()
	mm.isHealthy = true
	mm.lastError = nil
	mm.mu.Unlock()

	metrics.ModelHealthy.Set(1)
	metrics.ModelReloads.WithLabelValues("success").Inc()

	if oldClassifier != nil {
		if err := oldClassifier.Close(); err != nil {
			mm.logger.Warn("failed to close old classifier", zap.Error(err))
		}
	}

	mm.logger.Info("model reload complete",
		zap.String("directory", newDirectory),
		zap.String("sha256", checksum))
	return nil
}

// fail records a reload failure. A healthy classifier that is already
// serving stays in place.
func (mm *ModelManager) fail(err error) {
	mm.mu.Lock()
	mm.lastError = err
	if mm.currentClassifier == nil {
		mm.isHealthy = false
	}
	healthy := mm.isHealthy
	mm.mu.Unlock()

	if !healthy {
		metrics.ModelHealthy.Set(0)
	}
	metrics.ModelReloads.WithLabelValues("failure").Inc()
	mm.logger.Error("model reload failed", zap.Error(err))
}

// IsHealthy returns whether the current model is healthy
func (mm *ModelManager) IsHealthy() bool {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return mm.isHealthy
}

// GetLastError returns the last error encountered (if any)
func (mm *ModelManager) GetLastError() error {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return mm.lastError
}

// ModelInfo describes the current model state
type ModelInfo struct {
	Directory  string     `json:"directory"`
	Healthy    bool       `json:"healthy"`
	Error      *string    `json:"error"`
	SHA256     string     `json:"sha256,omitempty"`
	LoadedAt   *time.Time `json:"loaded_at,omitempty"`
	Classifier string     `json:"classifier,omitempty"`
	Labels     []string   `json:"labels"`
}

// GetInfo returns information about the current model state
func (mm *ModelManager) GetInfo() ModelInfo {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	info := ModelInfo{
		Directory: mm.modelDirectory,
		Healthy:   mm.isHealthy,
		SHA256:    mm.modelSHA256,
		Labels:    classifiers.Labels,
	}
	if mm.lastError != nil {
		msg := mm.lastError.Error()
		info.Error = &msg
	}
	if !mm.loadedAt.IsZero() {
		loadedAt := mm.loadedAt
		info.LoadedAt = &loadedAt
	}
	if mm.currentClassifier != nil {
		info.Classifier = mm.currentClassifier.GetName()
	}
	return info
}

// validateDirectory checks that the directory exists and contains all required files
func validateDirectory(dir string) (ModelFiles, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return ModelFiles{}, fmt.Errorf("directory does not exist: %s", dir)
		}
		return ModelFiles{}, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return ModelFiles{}, fmt.Errorf("path is not a directory: %s", dir)
	}

	var missingFiles []string
	for _, filename := range []string{ModelFileName, TokenizerFileName} {
		if _, err := os.Stat(filepath.Join(dir, filename)); os.IsNotExist(err) {
			missingFiles = append(missingFiles, filename)
		}
	}
	if len(missingFiles) > 0 {
		return ModelFiles{}, fmt.Errorf("missing required files in directory: %v", missingFiles)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		absDir = dir
	}

	files := ModelFiles{
		ModelPath:     filepath.Join(absDir, ModelFileName),
		TokenizerPath: filepath.Join(absDir, TokenizerFileName),
	}
	if _, err := os.Stat(filepath.Join(absDir, LabelConfigName)); err == nil {
		files.LabelConfigPath = filepath.Join(absDir, LabelConfigName)
	}
	return files, nil
}

func fileSHA256(path string) (string, error) {
	// #nosec G304 - Path comes from the validated model directory
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Close closes the current classifier and cleans up resources
func (mm *ModelManager) Close() error {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	if mm.currentClassifier != nil {
		mm.logger.Info("closing current classifier")
		if err := mm.currentClassifier.Close(); err != nil {
			return fmt.Errorf("failed to close classifier: %w", err)
		}
		mm.currentClassifier = nil
	}

	mm.isHealthy = false
	metrics.ModelHealthy.Set(0)
	return nil
}
