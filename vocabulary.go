package reviewsense

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

var (
	// ErrEmptyVocabulary means the source contained no entries.
	ErrEmptyVocabulary = errors.New("vocabulary is empty")
	// ErrMalformedLine means a line is not of the form word,id.
	ErrMalformedLine = errors.New("malformed vocabulary line")
	// ErrReservedID means an entry used an id <= 0.
	ErrReservedID = errors.New("vocabulary id is reserved")
	// ErrConflictingID means a word was listed twice with different ids.
	ErrConflictingID = errors.New("conflicting vocabulary id")
)

// A LoadError reports why a vocabulary or model artifact could not be loaded.
// Line is 0 when the failure is not tied to a specific line.
type LoadError struct {
	Path string
	Line int
	Err  error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("load %s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// A Vocabulary maps lowercase words to the ids the pretrained network was
// trained with. It is immutable once loaded and safe for concurrent use.
//
// Lookups are case-sensitive; the resource is expected to be lowercase,
// matching the output of the default Tokenizer.
type Vocabulary struct {
	ids map[string]int
}

type vocabularyOpts struct {
	allowOverrides bool
	logger         *slog.Logger
}

// VocabularyOpt changes how a vocabulary resource is read.
type VocabularyOpt func(*vocabularyOpts)

// AllowOverrides makes a word listed twice with different ids keep the last
// id instead of failing the load. Every override is counted and logged.
func AllowOverrides() VocabularyOpt {
	return func(o *vocabularyOpts) {
		o.allowOverrides = true
	}
}

// WithVocabularyLogger sets the logger used for load diagnostics.
func WithVocabularyLogger(logger *slog.Logger) VocabularyOpt {
	return func(o *vocabularyOpts) {
		o.logger = logger
	}
}

// LoadVocabulary reads a word,id resource from disk.
func LoadVocabulary(path string, opts ...VocabularyOpt) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()
	return readVocabulary(f, path, opts)
}

// VocabularyFromFS reads a word,id resource named name from filesys.
func VocabularyFromFS(filesys fs.FS, name string, opts ...VocabularyOpt) (*Vocabulary, error) {
	f, err := filesys.Open(name)
	if err != nil {
		return nil, &LoadError{Path: name, Err: err}
	}
	defer f.Close()
	return readVocabulary(f, name, opts)
}

// ReadVocabulary reads a word,id resource from r.
func ReadVocabulary(r io.Reader, opts ...VocabularyOpt) (*Vocabulary, error) {
	return readVocabulary(r, "<reader>", opts)
}

// NewVocabulary builds a Vocabulary from an in-memory mapping. The map is
// copied; ids must be positive.
func NewVocabulary(entries map[string]int) (*Vocabulary, error) {
	if len(entries) == 0 {
		return nil, &LoadError{Path: "<map>", Err: ErrEmptyVocabulary}
	}
	ids := make(map[string]int, len(entries))
	for word, id := range entries {
		if word == "" {
			return nil, &LoadError{Path: "<map>", Err: fmt.Errorf("%w: empty word", ErrMalformedLine)}
		}
		if id <= PadID {
			return nil, &LoadError{Path: "<map>", Err: fmt.Errorf("%w: %q has id %d", ErrReservedID, word, id)}
		}
		ids[word] = id
	}
	return &Vocabulary{ids: ids}, nil
}

func readVocabulary(r io.Reader, name string, opts []VocabularyOpt) (*Vocabulary, error) {
	o := vocabularyOpts{logger: discardLogger()}
	for _, applyOpt := range opts {
		applyOpt(&o)
	}

	ids := make(map[string]int)
	overrides := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if line == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		word, id, err := parseEntry(text)
		if err != nil {
			return nil, &LoadError{Path: name, Line: line, Err: err}
		}

		if prev, found := ids[word]; found && prev != id {
			if !o.allowOverrides {
				return nil, &LoadError{Path: name, Line: line,
					Err: fmt.Errorf("%w: %q is %d, was %d", ErrConflictingID, word, id, prev)}
			}
			overrides++
		}
		ids[word] = id
	}
	if err := scanner.Err(); err != nil {
		return nil, &LoadError{Path: name, Err: err}
	}
	if len(ids) == 0 {
		return nil, &LoadError{Path: name, Err: ErrEmptyVocabulary}
	}

	if overrides > 0 {
		o.logger.Warn("vocabulary entries overridden", "source", name, "overrides", overrides)
	}
	o.logger.Debug("vocabulary loaded", "source", name, "words", len(ids))

	return &Vocabulary{ids: ids}, nil
}

// parseEntry splits on the last comma so that words containing commas survive.
func parseEntry(text string) (string, int, error) {
	sep := strings.LastIndexByte(text, ',')
	if sep < 0 {
		return "", 0, fmt.Errorf("%w: missing ','", ErrMalformedLine)
	}

	word := strings.TrimSpace(text[:sep])
	if word == "" {
		return "", 0, fmt.Errorf("%w: empty word", ErrMalformedLine)
	}

	id, err := strconv.Atoi(strings.TrimSpace(text[sep+1:]))
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrMalformedLine, err)
	}
	if id <= PadID {
		return "", 0, fmt.Errorf("%w: %q has id %d", ErrReservedID, word, id)
	}

	return word, id, nil
}

// Lookup returns the id of word, or UnknownID when word is not present.
func (v *Vocabulary) Lookup(word string) int {
	if id, found := v.ids[word]; found {
		return id
	}
	return UnknownID
}

// Contains reports whether word has an id.
func (v *Vocabulary) Contains(word string) bool {
	_, found := v.ids[word]
	return found
}

// Len returns the number of words.
func (v *Vocabulary) Len() int {
	return len(v.ids)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
