package reviewsense

import (
	"time"
)

const (
	// FeatureLength is the number of ids the pretrained network accepts per review.
	FeatureLength = 600

	// PadID fills the tail of a Feature shorter than FeatureLength.
	PadID = 0

	// UnknownID is returned by Lookup for words outside the vocabulary. It
	// shares the value of PadID; id 0 is reserved and can never be assigned
	// to a real word (see LoadVocabulary).
	UnknownID = 0
)

// A Feature is a fixed-length sequence of vocabulary ids: the only input
// shape a Scorer accepts.
type Feature []int

// A Prediction is the two-class output of a Scorer. Values are expected in
// [0, 1] but need not sum exactly to 1.
type Prediction [2]float64

// Negative returns the score of the negative class.
func (p Prediction) Negative() float64 {
	return p[1-PositiveIndex]
}

// Positive returns the score of the positive class.
func (p Prediction) Positive() float64 {
	return p[PositiveIndex]
}

// Verdict is the human-readable label derived from a Prediction.
type Verdict string

const (
	Positive Verdict = "positive"
	Negative Verdict = "negative"
)

// IsPositive reports whether v is the Positive verdict.
func (v Verdict) IsPositive() bool {
	return v == Positive
}

// String returns the label text.
func (v Verdict) String() string {
	return string(v)
}

// ReviewMetadata contains metadata about a classified review
type ReviewMetadata struct {
	ID             string        // Random id used to correlate log lines
	Language       string        // ISO 639-1 guess, informational only
	SentenceCount  int           // Sentences found by the segmenter
	TokenCount     int           // Tokens before normalization
	UnknownCount   int           // Tokens that mapped to UnknownID
	Truncated      bool          // TokenCount > len(Feature)
	ProcessedAt    time.Time     // When classification started
	ProcessingTime time.Duration // Wall time of the whole pipeline
}

// A Review is the result of classifying one piece of text.
type Review struct {
	Text       string
	Tokens     []string
	Feature    Feature
	Prediction Prediction
	Verdict    Verdict
	Metadata   ReviewMetadata
}
