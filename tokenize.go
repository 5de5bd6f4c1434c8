package reviewsense

import (
	"strings"
	"unicode"

	"github.com/bbalet/stopwords"
	"gopkg.in/neurosnap/sentences.v1/english"
)

// A Tokenizer splits review text into an ordered sequence of word tokens.
// Implementations must be deterministic and must not fail on any input.
type Tokenizer interface {
	Tokenize(string) []string
}

// wordTokenizer splits a review into lowercase words.
type wordTokenizer struct {
	sanitizer *strings.Replacer
	filters   string
	punct     bool
	lowercase bool
	stopLang  string
}

type TokenizerOptFunc func(*wordTokenizer)

// UsingFilters replaces the set of characters treated as separators. It also
// turns off splitting on other Unicode punctuation.
func UsingFilters(x string) TokenizerOptFunc {
	return func(tokenizer *wordTokenizer) {
		tokenizer.filters = x
		tokenizer.punct = false
	}
}

// Use the provided sanitizer.
func UsingSanitizer(x *strings.Replacer) TokenizerOptFunc {
	return func(tokenizer *wordTokenizer) {
		tokenizer.sanitizer = x
	}
}

// UsingLowercase can enable (the default) or disable lowercasing.
func UsingLowercase(x bool) TokenizerOptFunc {
	return func(tokenizer *wordTokenizer) {
		tokenizer.lowercase = x
	}
}

// UsingStopwords drops stop words of the given ISO 639-1 language. The
// pretrained network saw stop words during training, so this is off by
// default.
func UsingStopwords(lang string) TokenizerOptFunc {
	return func(tokenizer *wordTokenizer) {
		tokenizer.stopLang = lang
	}
}

// Constructor for default wordTokenizer
func NewWordTokenizer(opts ...TokenizerOptFunc) *wordTokenizer {
	tok := new(wordTokenizer)

	// Set default parameters
	tok.filters = filters
	tok.punct = true
	tok.lowercase = true
	tok.sanitizer = sanitizer

	for _, applyOpt := range opts {
		applyOpt(tok)
	}

	return tok
}

// Tokenize splits text into words. Filter characters and any other Unicode
// punctuation act as separators, so "great,fun" and "good…really" both yield
// two words. Apostrophes are kept inside a word so "don't" stays whole, and
// trimmed from its ends so "'great'" becomes great.
func (t *wordTokenizer) Tokenize(text string) []string {
	clean := text
	if t.sanitizer != nil {
		clean = t.sanitizer.Replace(clean)
	}
	if t.lowercase {
		clean = strings.ToLower(clean)
	}

	fields := strings.FieldsFunc(clean, t.isSeparator)
	words := make([]string, 0, len(fields))
	for _, w := range fields {
		w = strings.Trim(w, "'")
		if w == "" {
			continue
		}
		if t.stopLang != "" && t.isStopword(w) {
			continue
		}
		words = append(words, w)
	}

	return words
}

func (t *wordTokenizer) isSeparator(r rune) bool {
	if unicode.IsSpace(r) || strings.ContainsRune(t.filters, r) {
		return true
	}
	return t.punct && r != '\'' && unicode.IsPunct(r)
}

// isStopword relies on CleanString removing a word it considers a stop word.
// CleanString also drops anything without letters, so such tokens are kept.
func (t *wordTokenizer) isStopword(word string) bool {
	if strings.IndexFunc(word, unicode.IsLetter) < 0 {
		return false
	}
	return strings.TrimSpace(stopwords.CleanString(word, t.stopLang, false)) == ""
}

// A Segmenter splits review text into sentences.
type Segmenter interface {
	Segment(string) []string
}

// NewSegmenter loads the English punkt sentence model from
// neurosnap/sentences.
func NewSegmenter() (Segmenter, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, err
	}
	return segmenterFunc(func(text string) []string {
		var out []string
		for _, s := range tokenizer.Tokenize(text) {
			if trimmed := strings.TrimSpace(s.Text); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	}), nil
}

type segmenterFunc func(string) []string

func (f segmenterFunc) Segment(text string) []string {
	return f(text)
}

// filters matches the punctuation stripped when the network's training
// corpus was tokenized. The apostrophe is not a filter.
const filters = "!\"#$%&()*+,-./:;<=>?@[\\]^_`{|}~\t\n"

var sanitizer = strings.NewReplacer(
	"\u201c", `"`,
	"\u201d", `"`,
	"\u2018", "'",
	"\u2019", "'",
	"&rsquo;", "'")
