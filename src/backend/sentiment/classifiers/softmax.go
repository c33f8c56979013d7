package classifiers

import "math"

// Softmax converts logits to probabilities. The max logit is subtracted
// first so large logits do not overflow.
func Softmax(logits []float32) []float64 {
	if len(logits) == 0 {
		return nil
	}

	maxLogit := float64(logits[0])
	for _, l := range logits[1:] {
		if float64(l) > maxLogit {
			maxLogit = float64(l)
		}
	}

	probs := make([]float64, len(logits))
	var sum float64
	for i, l := range logits {
		probs[i] = math.Exp(float64(l) - maxLogit)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// Argmax returns the index of the largest value; ties go to the lowest index.
// Returns -1 for an empty slice.
func Argmax(values []float64) int {
	if len(values) == 0 {
		return -1
	}
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}

// NewPrediction builds a Prediction from the model's raw logits
func NewPrediction(logits []float32) Prediction {
	probs := Softmax(logits)
	idx := Argmax(probs)

	label := ""
	if idx >= 0 && idx < len(Labels) {
		label = Labels[idx]
	}

	var confidence float64
	if idx >= 0 {
		confidence = probs[idx]
	}

	return Prediction{
		Label:         label,
		Index:         idx,
		Confidence:    confidence,
		Probabilities: probs,
	}
}
