package reviewsense

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

//go:generate mockgen -destination=mocks/mock_scorer.go -package=mocks github.com/tsawler/reviewsense Scorer

// ErrPredictionShape means a Scorer produced something other than two class
// scores.
var ErrPredictionShape = errors.New("prediction must have exactly 2 values")

// A Scorer runs the pretrained network on one Feature and returns the class
// scores. Implementations own their failure modes, including rejecting a
// Feature of the wrong shape.
type Scorer interface {
	Score(ctx context.Context, feature Feature) (Prediction, error)
}

// ScorerFunc adapts a plain function to the Scorer interface.
type ScorerFunc func(ctx context.Context, feature Feature) (Prediction, error)

// Score calls f(ctx, feature).
func (f ScorerFunc) Score(ctx context.Context, feature Feature) (Prediction, error) {
	return f(ctx, feature)
}

// An AdapterError wraps a failure of the Scorer. It is returned unchanged to
// the caller; nothing in this package retries.
type AdapterError struct {
	Err error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("scorer: %v", e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

type serializedScorer struct {
	mu     sync.Mutex
	scorer Scorer
}

// Serialized wraps a Scorer that is not safe for concurrent use so that calls
// run one at a time.
func Serialized(s Scorer) Scorer {
	return &serializedScorer{scorer: s}
}

func (s *serializedScorer) Score(ctx context.Context, feature Feature) (Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}
	return s.scorer.Score(ctx, feature)
}

// predictionFromSlice checks the arity of a raw model output.
func predictionFromSlice(values []float64) (Prediction, error) {
	if len(values) != len(Prediction{}) {
		return Prediction{}, fmt.Errorf("%w: got %d", ErrPredictionShape, len(values))
	}
	return Prediction{values[0], values[1]}, nil
}
