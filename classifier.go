package reviewsense

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"
)

// A Classifier turns review text into a Verdict:
//
//	text -> Tokenizer -> Encode (Vocabulary) -> Feature -> Scorer -> Prediction -> Interpret
//
// Its collaborators are injected and never mutated, so a Classifier is safe
// for concurrent use as long as its Scorer is (see Serialized).
type Classifier struct {
	vocab     *Vocabulary
	scorer    Scorer
	tokenizer Tokenizer
	segmenter Segmenter
	length    int
	timeout   time.Duration
	logger    *slog.Logger
	metrics   *Metrics
}

// A ClassifierOpt represents a setting that changes how reviews are classified.
//
// For example, it might bound the time spent in the scorer:
//
//	c, err := reviewsense.NewClassifier(vocab, model, reviewsense.WithScoreTimeout(time.Second))
type ClassifierOpt func(c *Classifier)

// UsingTokenizer specifies the Tokenizer to use.
func UsingTokenizer(t Tokenizer) ClassifierOpt {
	return func(c *Classifier) {
		c.tokenizer = t
	}
}

// UsingSegmenter specifies the Segmenter used for review metadata. A nil
// Segmenter selects the default English one.
func UsingSegmenter(s Segmenter) ClassifierOpt {
	return func(c *Classifier) {
		c.segmenter = s
	}
}

// WithoutSegmenter skips sentence counting; SentenceCount stays 0 and the
// English sentence model is never loaded.
func WithoutSegmenter() ClassifierOpt {
	return func(c *Classifier) {
		c.segmenter = noSegmenter
	}
}

var noSegmenter = segmenterFunc(func(string) []string { return nil })

// WithFeatureLength overrides FeatureLength. It must match the scorer's input.
func WithFeatureLength(length int) ClassifierOpt {
	return func(c *Classifier) {
		c.length = length
	}
}

// WithScoreTimeout bounds each Scorer call. Zero means no timeout.
func WithScoreTimeout(timeout time.Duration) ClassifierOpt {
	return func(c *Classifier) {
		c.timeout = timeout
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) ClassifierOpt {
	return func(c *Classifier) {
		c.logger = logger
	}
}

// WithMetrics records outcomes in m.
func WithMetrics(m *Metrics) ClassifierOpt {
	return func(c *Classifier) {
		c.metrics = m
	}
}

// NewClassifier wires a Classifier. Unless UsingSegmenter or WithoutSegmenter
// is given, the English sentence model is loaded here.
func NewClassifier(vocab *Vocabulary, scorer Scorer, opts ...ClassifierOpt) (*Classifier, error) {
	if vocab == nil {
		return nil, errors.New("classifier: vocabulary is required")
	}
	if scorer == nil {
		return nil, errors.New("classifier: scorer is required")
	}

	c := &Classifier{
		vocab:     vocab,
		scorer:    scorer,
		tokenizer: NewWordTokenizer(),
		length:    FeatureLength,
		logger:    discardLogger(),
	}

	for _, applyOpt := range opts {
		applyOpt(c)
	}
	if c.tokenizer == nil {
		c.tokenizer = NewWordTokenizer()
	}
	if c.segmenter == nil {
		seg, err := NewSegmenter()
		if err != nil {
			return nil, err
		}
		c.segmenter = seg
	}

	if c.length < 0 {
		return nil, errors.New("classifier: feature length must not be negative")
	}
	return c, nil
}

// Classify runs the whole pipeline on one review. Tokenization and encoding
// cannot fail; the only error is an *AdapterError from the Scorer.
func (c *Classifier) Classify(ctx context.Context, text string) (*Review, error) {
	start := time.Now()
	review := &Review{
		Text: text,
		Metadata: ReviewMetadata{
			ID:          uuid.NewString(),
			ProcessedAt: start,
		},
	}

	review.Tokens = c.tokenizer.Tokenize(text)
	ids := c.vocab.Ids(review.Tokens)
	review.Feature = Normalize(ids, c.length)

	review.Metadata.TokenCount = len(ids)
	review.Metadata.UnknownCount = countUnknown(ids)
	review.Metadata.Truncated = len(ids) > c.length
	c.describe(review)

	prediction, err := c.score(ctx, review.Feature)
	if err != nil {
		c.logger.Warn("scoring failed", "review_id", review.Metadata.ID, "error", err)
		return nil, &AdapterError{Err: err}
	}

	review.Prediction = prediction
	review.Verdict = Interpret(prediction)
	review.Metadata.ProcessingTime = time.Since(start)
	c.metrics.observeReview(review)

	c.logger.Debug("review classified",
		"review_id", review.Metadata.ID,
		"tokens", review.Metadata.TokenCount,
		"unknown", review.Metadata.UnknownCount,
		"truncated", review.Metadata.Truncated,
		"positive", prediction.Positive(),
		"verdict", review.Verdict,
	)

	return review, nil
}

func (c *Classifier) score(ctx context.Context, feature Feature) (Prediction, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	begin := time.Now()
	prediction, err := c.scorer.Score(ctx, feature)
	c.metrics.observeScore(time.Since(begin), err)
	return prediction, err
}

// describe fills the informational metadata. None of it feeds the model.
func (c *Classifier) describe(review *Review) {
	review.Metadata.SentenceCount = len(c.segmenter.Segment(review.Text))

	if len(review.Tokens) == 0 {
		return
	}
	info := whatlanggo.Detect(review.Text)
	review.Metadata.Language = info.Lang.Iso6391()
	if info.IsReliable() && review.Metadata.Language != "en" {
		c.logger.Warn("review does not look English; tokenization is English-only",
			"review_id", review.Metadata.ID, "language", review.Metadata.Language)
	}
}
