package reviewsense

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		ids      []int
		length   int
		expected Feature
		desc     string
	}{
		{nil, 4, Feature{0, 0, 0, 0}, "Empty input is all padding"},
		{[]int{7, 8}, 4, Feature{7, 8, 0, 0}, "Right padding"},
		{[]int{7, 8, 9, 10}, 4, Feature{7, 8, 9, 10}, "Exact length"},
		{[]int{7, 8, 9, 10, 11, 12}, 4, Feature{7, 8, 9, 10}, "Keeps the first ids"},
		{[]int{7, 0, 9}, 4, Feature{7, 0, 9, 0}, "Unknown ids stay in place"},
		{[]int{7, 8}, 0, Feature{}, "Zero length"},
		{[]int{7, 8}, -3, Feature{}, "Negative length"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			require.Equal(t, tt.expected, Normalize(tt.ids, tt.length))
		})
	}
}

func TestNormalizeDoesNotAlias(t *testing.T) {
	ids := []int{1, 2, 3}
	feature := Normalize(ids, 3)
	feature[0] = 99
	require.Equal(t, 1, ids[0])
}

func TestEncodeProperties(t *testing.T) {
	words := map[string]int{}
	for i := 1; i <= 50; i++ {
		words["w"+strconv.Itoa(i)] = i
	}
	vocab, err := NewVocabulary(words)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 200; trial++ {
		n := rng.Intn(2 * FeatureLength)
		tokens := make([]string, n)
		for i := range tokens {
			// Roughly one in six tokens is out of vocabulary.
			tokens[i] = "w" + strconv.Itoa(rng.Intn(60)+1)
		}

		feature := Encode(tokens, vocab, FeatureLength)
		require.Len(t, feature, FeatureLength)

		kept := min(n, FeatureLength)
		for i := 0; i < kept; i++ {
			require.Equal(t, vocab.Lookup(tokens[i]), feature[i], "trial %d position %d", trial, i)
		}
		for i := kept; i < FeatureLength; i++ {
			require.Equal(t, PadID, feature[i], "trial %d position %d", trial, i)
		}
	}
}

func TestEncodeTruncatesTheEnd(t *testing.T) {
	vocab, err := NewVocabulary(map[string]int{"head": 1, "tail": 2})
	require.NoError(t, err)

	tokens := make([]string, 0, FeatureLength+10)
	for i := 0; i < FeatureLength; i++ {
		tokens = append(tokens, "head")
	}
	for i := 0; i < 10; i++ {
		tokens = append(tokens, "tail")
	}

	feature := Encode(tokens, vocab, FeatureLength)
	require.Len(t, feature, FeatureLength)
	require.NotContains(t, feature, 2)
}

func TestEncodeText(t *testing.T) {
	vocab, err := NewVocabulary(map[string]int{"this": 11, "film": 19, "is": 6, "really": 63, "good": 49})
	require.NoError(t, err)

	tokens := NewWordTokenizer().Tokenize("this film is really good")
	feature := Encode(tokens, vocab, FeatureLength)

	require.Len(t, feature, FeatureLength)
	require.Equal(t, Feature{11, 19, 6, 63, 49}, feature[:5])
	require.Equal(t, make(Feature, FeatureLength-5), feature[5:])

	empty := Encode(NewWordTokenizer().Tokenize(""), vocab, FeatureLength)
	require.Equal(t, make(Feature, FeatureLength), empty)
}

func TestIdsAndUnknownCount(t *testing.T) {
	vocab, err := NewVocabulary(map[string]int{"good": 49})
	require.NoError(t, err)

	ids := vocab.Ids([]string{"good", "meh", "good", "zzz"})
	require.Equal(t, []int{49, UnknownID, 49, UnknownID}, ids)
	require.Equal(t, 2, countUnknown(ids))
	require.Empty(t, vocab.Ids(nil))
}
