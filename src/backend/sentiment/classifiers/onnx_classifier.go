package classifiers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/daulet/tokenizers"
	onnxruntime "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"

	"github.com/hannes/sentimento/src/backend/logging"
)

const (
	DefaultMaxSequenceLength = 512
	DefaultOutputName        = "logits"
)

// Options configures an ONNXClassifier
type Options struct {
	MaxSequenceLength  int
	UseTokenTypeIDs    bool
	OutputName         string
	RuntimeLibraryPath string
	LabelConfigPath    string // optional HuggingFace config.json
}

// encoder turns text into model inputs
type encoder interface {
	encode(text string) encodedText
	Close() error
}

// runner executes one forward pass
type runner interface {
	run(in encodedText) ([]float32, error)
	destroy() error
}

// ONNXClassifier implements Classifier using a BERT sequence classifier exported to ONNX
type ONNXClassifier struct {
	mu        sync.Mutex
	encoder   encoder
	runner    runner
	newRunner func() (runner, error)
	modelPath string
	maxSeqLen int
	closed    bool
	logger    *zap.Logger
}

// NewONNXClassifier creates a new ONNX sentiment classifier
func NewONNXClassifier(modelPath, tokenizerPath string, opts Options) (*ONNXClassifier, error) {
	opts = withDefaults(opts)

	if err := initRuntime(opts.RuntimeLibraryPath); err != nil {
		return nil, err
	}

	if opts.LabelConfigPath != "" {
		if err := checkLabelConfig(opts.LabelConfigPath); err != nil {
			return nil, err
		}
	}

	tk, err := tokenizers.FromFile(tokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer: %w", err)
	}

	c := &ONNXClassifier{
		encoder:   &hfEncoder{tk: tk},
		modelPath: modelPath,
		maxSeqLen: opts.MaxSequenceLength,
		logger:    logging.Named("Classifier"),
	}
	c.newRunner = func() (runner, error) {
		return newONNXRunner(modelPath, opts)
	}

	// Session and tensors are created on first use
	return c, nil
}

func withDefaults(opts Options) Options {
	if opts.MaxSequenceLength <= 0 {
		opts.MaxSequenceLength = DefaultMaxSequenceLength
	}
	if opts.OutputName == "" {
		opts.OutputName = DefaultOutputName
	}
	return opts
}

// GetName returns the name of this classifier
func (c *ONNXClassifier) GetName() string {
	return "onnx_bert_sentiment"
}

// Classify runs a single forward pass and returns the arg-max label
func (c *ONNXClassifier) Classify(ctx context.Context, input Input) (Prediction, error) {
	if strings.TrimSpace(input.Text) == "" {
		return Prediction{}, ErrEmptyInput
	}
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}

	// Tensors are shared between calls
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return Prediction{}, ErrClassifierClosed
	}
	if c.runner == nil {
		r, err := c.newRunner()
		if err != nil {
			return Prediction{}, fmt.Errorf("failed to initialize session: %w", err)
		}
		c.runner = r
	}

	enc := c.encoder.encode(input.Text)
	if enc.len() > c.maxSeqLen {
		c.logger.Debug("truncating input",
			zap.Int("tokens", enc.len()),
			zap.Int("max_tokens", c.maxSeqLen))
	}
	enc = truncateEncoding(enc, c.maxSeqLen)

	logits, err := c.runner.run(enc)
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to run inference: %w", err)
	}
	if len(logits) < NumLabels {
		return Prediction{}, fmt.Errorf("model returned %d logits, expected %d", len(logits), NumLabels)
	}

	return NewPrediction(logits[:NumLabels]), nil
}

// Close releases the session, tensors and tokenizer. The ONNX environment
// stays up; see ShutdownRuntime.
func (c *ONNXClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	var errs []error
	if c.runner != nil {
		if err := c.runner.destroy(); err != nil {
			errs = append(errs, err)
		}
		c.runner = nil
	}
	if c.encoder != nil {
		if err := c.encoder.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close tokenizer: %w", err))
		}
		c.encoder = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}
	return nil
}

// checkLabelConfig verifies a HuggingFace config.json declares three labels
func checkLabelConfig(path string) error {
	// #nosec G304 - Path comes from the validated model directory
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read model configuration: %w", err)
	}

	var cfg struct {
		ID2Label map[string]string `json:"id2label"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse model configuration: %w", err)
	}
	if len(cfg.ID2Label) != NumLabels {
		return fmt.Errorf("model declares %d labels, expected %d", len(cfg.ID2Label), NumLabels)
	}
	return nil
}

// hfEncoder wraps a HuggingFace tokenizer.json tokenizer
type hfEncoder struct {
	tk *tokenizers.Tokenizer
}

func (e *hfEncoder) encode(text string) encodedText {
	encoding := e.tk.EncodeWithOptions(text, true,
		tokenizers.WithReturnTypeIDs(),
		tokenizers.WithReturnAttentionMask())

	enc := encodedText{
		ids:     toInt64(encoding.IDs),
		typeIDs: toInt64(encoding.TypeIDs),
		mask:    toInt64(encoding.AttentionMask),
	}
	if len(enc.typeIDs) != len(enc.ids) {
		enc.typeIDs = make([]int64, len(enc.ids))
	}
	if len(enc.mask) != len(enc.ids) {
		enc.mask = ones(len(enc.ids))
	}
	return enc
}

func (e *hfEncoder) Close() error {
	return e.tk.Close()
}

// onnxRunner owns a fixed-shape [1, maxSeqLen] session
type onnxRunner struct {
	session      *onnxruntime.AdvancedSession
	inputTensor  *onnxruntime.Tensor[int64]
	maskTensor   *onnxruntime.Tensor[int64]
	typeTensor   *onnxruntime.Tensor[int64]
	outputTensor *onnxruntime.Tensor[float32]
}

func newONNXRunner(modelPath string, opts Options) (*onnxRunner, error) {
	seqLen := int64(opts.MaxSequenceLength)
	batchSize := int64(1)
	r := &onnxRunner{}

	inputShape := onnxruntime.NewShape(batchSize, seqLen)
	var err error
	if r.inputTensor, err = onnxruntime.NewTensor(inputShape, make([]int64, seqLen)); err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	if r.maskTensor, err = onnxruntime.NewTensor(inputShape, make([]int64, seqLen)); err != nil {
		r.destroyQuietly()
		return nil, fmt.Errorf("failed to create mask tensor: %w", err)
	}

	inputNames := []string{"input_ids", "attention_mask"}
	inputs := []onnxruntime.Value{r.inputTensor, r.maskTensor}
	if opts.UseTokenTypeIDs {
		if r.typeTensor, err = onnxruntime.NewTensor(inputShape, make([]int64, seqLen)); err != nil {
			r.destroyQuietly()
			return nil, fmt.Errorf("failed to create token type tensor: %w", err)
		}
		inputNames = append(inputNames, "token_type_ids")
		inputs = append(inputs, r.typeTensor)
	}

	outputShape := onnxruntime.NewShape(batchSize, int64(NumLabels))
	if r.outputTensor, err = onnxruntime.NewEmptyTensor[float32](outputShape); err != nil {
		r.destroyQuietly()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	r.session, err = onnxruntime.NewAdvancedSession(modelPath,
		inputNames,
		[]string{opts.OutputName},
		inputs,
		[]onnxruntime.Value{r.outputTensor},
		nil)
	if err != nil {
		r.destroyQuietly()
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return r, nil
}

func (r *onnxRunner) run(in encodedText) ([]float32, error) {
	padInto(r.inputTensor.GetData(), in.ids)
	padInto(r.maskTensor.GetData(), in.mask)
	if r.typeTensor != nil {
		padInto(r.typeTensor.GetData(), in.typeIDs)
	}

	if err := r.session.Run(); err != nil {
		return nil, err
	}

	out := r.outputTensor.GetData()
	logits := make([]float32, len(out))
	copy(logits, out)
	return logits, nil
}

func (r *onnxRunner) destroy() error {
	var errs []error

	if r.session != nil {
		if err := r.session.Destroy(); err != nil {
			errs = append(errs, fmt.Errorf("failed to destroy session: %w", err))
		}
	}
	if r.inputTensor != nil {
		if err := r.inputTensor.Destroy(); err != nil {
			errs = append(errs, fmt.Errorf("failed to destroy input tensor: %w", err))
		}
	}
	if r.maskTensor != nil {
		if err := r.maskTensor.Destroy(); err != nil {
			errs = append(errs, fmt.Errorf("failed to destroy mask tensor: %w", err))
		}
	}
	if r.typeTensor != nil {
		if err := r.typeTensor.Destroy(); err != nil {
			errs = append(errs, fmt.Errorf("failed to destroy token type tensor: %w", err))
		}
	}
	if r.outputTensor != nil {
		if err := r.outputTensor.Destroy(); err != nil {
			errs = append(errs, fmt.Errorf("failed to destroy output tensor: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}
	return nil
}

func (r *onnxRunner) destroyQuietly() {
	if err := r.destroy(); err != nil {
		logging.Named("Classifier").Warn("failed to clean up after session error", zap.Error(err))
	}
}
