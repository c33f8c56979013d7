package classifiers

import "errors"

// Sentiment labels in model class-id order
const (
	LabelNegative = "Negativo"
	LabelNeutral  = "Neutro"
	LabelPositive = "Positivo"
)

// Labels is indexed by the model's output class id
var Labels = []string{LabelNegative, LabelNeutral, LabelPositive}

// NumLabels is the fixed size of the model's output layer
const NumLabels = 3

// ErrEmptyInput is returned when the text is empty or only whitespace
var ErrEmptyInput = errors.New("input text is empty")

// ErrClassifierClosed is returned by Classify after Close
var ErrClassifierClosed = errors.New("classifier is closed")

// Input represents the input for sentiment classification
type Input struct {
	Text string `json:"text"`
}

// Prediction represents the output of a single forward pass
type Prediction struct {
	Label         string    `json:"label"`
	Index         int       `json:"index"`
	Confidence    float64   `json:"confidence"`
	Probabilities []float64 `json:"probabilities"` // ordered like Labels
}

// Probability returns the probability assigned to label, or 0 if unknown
func (p Prediction) Probability(label string) float64 {
	for i, l := range Labels {
		if l == label && i < len(p.Probabilities) {
			return p.Probabilities[i]
		}
	}
	return 0
}
