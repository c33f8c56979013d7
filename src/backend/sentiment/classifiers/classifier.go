package classifiers

import (
	"context"
)

type Classifier interface {
	GetName() string
	Classify(ctx context.Context, input Input) (Prediction, error)
	Close() error
}
