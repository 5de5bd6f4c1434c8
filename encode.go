package reviewsense

import (
	"github.com/samber/lo"
)

// Ids maps each token to its vocabulary id, preserving order. Unknown tokens
// map to UnknownID.
func (v *Vocabulary) Ids(tokens []string) []int {
	return lo.Map(tokens, func(tok string, _ int) int {
		return v.Lookup(tok)
	})
}

// Normalize resizes ids to exactly length entries. Longer input keeps its
// first length ids; shorter input is right-padded with PadID. The result never
// shares memory with ids. A negative length is treated as 0.
func Normalize(ids []int, length int) Feature {
	if length < 0 {
		length = 0
	}

	// make zero-fills, so the tail is already PadID.
	feature := make(Feature, length)
	copy(feature, ids)
	return feature
}

// Encode turns tokens into the fixed-length Feature the network expects.
func Encode(tokens []string, vocab *Vocabulary, length int) Feature {
	return Normalize(vocab.Ids(tokens), length)
}

// countUnknown returns how many ids are UnknownID.
func countUnknown(ids []int) int {
	return lo.Count(ids, UnknownID)
}
