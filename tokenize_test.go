package reviewsense

import (
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		text     string
		expected []string
		desc     string
	}{
		{"this film is really good", []string{"this", "film", "is", "really", "good"}, "Plain words"},
		{"This Film IS Really GOOD", []string{"this", "film", "is", "really", "good"}, "Mixed case"},
		{"Great, fun... and LOUD!!!", []string{"great", "fun", "and", "loud"}, "Punctuation stripped"},
		{"great,fun", []string{"great", "fun"}, "Punctuation separates"},
		{"I don't like it", []string{"i", "don't", "like", "it"}, "Apostrophe kept"},
		{"I don’t like it", []string{"i", "don't", "like", "it"}, "Curly apostrophe folded"},
		{"“Wow”", []string{"wow"}, "Curly quotes removed"},
		{"  tabs\tand\nnewlines  ", []string{"tabs", "and", "newlines"}, "Whitespace variants"},
		{"one<br /><br />two", []string{"one", "br", "br", "two"}, "HTML line breaks"},
		{"10/10 would watch", []string{"10", "10", "would", "watch"}, "Numbers"},
		{"café naïve", []string{"café", "naïve"}, "Non-ASCII letters"},
		{"it was 'great' fun", []string{"it", "was", "great", "fun"}, "Single quotes trimmed"},
		{"it was ‘great’", []string{"it", "was", "great"}, "Curly single quotes trimmed"},
		{"the actors' best 'tis", []string{"the", "actors", "best", "tis"}, "Leading and trailing apostrophes"},
		{"good… really—bad", []string{"good", "really", "bad"}, "Ellipsis and em dash separate"},
		{"«superbe» ¡wow!", []string{"superbe", "wow"}, "Guillemets and inverted marks"},
		{"a – b · c „d“", []string{"a", "b", "c", "d"}, "Other Unicode punctuation"},
	}

	tokenizer := NewWordTokenizer()
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			require.Equal(t, tt.expected, tokenizer.Tokenize(tt.text))
		})
	}
}

func TestTokenizeEmpty(t *testing.T) {
	tokenizer := NewWordTokenizer()
	for _, text := range []string{"", "   ", "\n\t", "!!! ... ???", "---", "'' '", "… — «»"} {
		tokens := tokenizer.Tokenize(text)
		require.NotNil(t, tokens, "text %q", text)
		require.Empty(t, tokens, "text %q", text)
	}
}

func TestTokenizeIsDeterministic(t *testing.T) {
	tokenizer := NewWordTokenizer()
	text := "An uneven, occasionally brilliant film; the ending didn't land."

	first := tokenizer.Tokenize(text)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, tokenizer.Tokenize(text))
	}
}

func TestTokenizerOptions(t *testing.T) {
	t.Run("Without lowercase", func(t *testing.T) {
		tokenizer := NewWordTokenizer(UsingLowercase(false))
		require.Equal(t, []string{"Great", "Film"}, tokenizer.Tokenize("Great Film!"))
	})

	t.Run("Custom filters", func(t *testing.T) {
		tokenizer := NewWordTokenizer(UsingFilters("|"))
		require.Equal(t, []string{"a", "b,c"}, tokenizer.Tokenize("a|b,c"))
	})

	t.Run("Custom sanitizer", func(t *testing.T) {
		tokenizer := NewWordTokenizer(UsingSanitizer(strings.NewReplacer("flick", "film")))
		require.Equal(t, []string{"good", "film"}, tokenizer.Tokenize("good flick"))
	})

	t.Run("Stop words", func(t *testing.T) {
		tokenizer := NewWordTokenizer(UsingStopwords("en"))
		tokens := tokenizer.Tokenize("the film and the music")
		require.NotContains(t, tokens, "the")
		require.NotContains(t, tokens, "and")
		require.Contains(t, tokens, "film")
		require.Contains(t, tokens, "music")

		tokens = tokenizer.Tokenize("10 out of 10 film, 2nd viewing")
		require.Equal(t, []string{"10", "10"}, numbers(tokens))
		require.Contains(t, tokens, "film")
		require.Contains(t, tokens, "2nd")
	})

	t.Run("Custom filters keep other punctuation", func(t *testing.T) {
		tokenizer := NewWordTokenizer(UsingFilters(" "))
		require.Equal(t, []string{"good…", "great"}, tokenizer.Tokenize("good… 'great'"))
	})
}

func numbers(tokens []string) []string {
	var out []string
	for _, tok := range tokens {
		if strings.IndexFunc(tok, unicode.IsLetter) < 0 {
			out = append(out, tok)
		}
	}
	return out
}

func TestSegmenter(t *testing.T) {
	segmenter, err := NewSegmenter()
	require.NoError(t, err)

	sentences := segmenter.Segment("I loved the first half. The ending was a mess! Would I watch it again?")
	require.Len(t, sentences, 3)
	require.Equal(t, "I loved the first half.", sentences[0])

	require.Empty(t, segmenter.Segment(""))
}
