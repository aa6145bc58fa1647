// Package splitting implements the external Splitter contract: pure,
// deterministic functions that break a document string into an ordered
// sequence of non-empty atomic segments. The planner never inspects segment
// semantics, only their length and identity, so any implementation of
// Splitter is interchangeable from the planner's point of view.
package splitting

import (
	"regexp"
	"strings"

	"github.com/kara-engine/kara/internal/domain"
)

// Splitter breaks a document into an ordered sequence of non-empty
// segments whose concatenation reconstructs the document, modulo whatever
// whitespace rule the splitter itself applies.
type Splitter interface {
	Split(text string) ([]domain.Segment, error)
}

// RecursiveCharacterSplitter splits at every occurrence of any separator
// in a descending-priority list — the same alternation-based approach as
// the reference recursive splitter, not a true recursive subdivision.
// Separators are tried together via regex alternation rather than one at a
// time: the text is cut at each leftmost match, and where several
// separators match at the same position the earlier-listed one wins. An
// empty separator (the last of the defaults) matches at every position, so
// with the default list each segment is a single character plus any
// separator that follows it.
type RecursiveCharacterSplitter struct {
	// Separators are matched together; at a position where several match,
	// the earlier-listed one wins. Defaults to {"\n\n", "\n", " ", ""}.
	Separators []string
	// KeepSeparator appends each separator to the segment that precedes
	// it, so the segments concatenate back to the original text exactly.
	KeepSeparator bool
}

// NewRecursiveCharacterSplitter returns a splitter with the default
// separator list and KeepSeparator enabled.
func NewRecursiveCharacterSplitter() *RecursiveCharacterSplitter {
	return &RecursiveCharacterSplitter{
		Separators:    []string{"\n\n", "\n", " ", ""},
		KeepSeparator: true,
	}
}

// Split implements Splitter.
func (s *RecursiveCharacterSplitter) Split(text string) ([]domain.Segment, error) {
	separators := s.Separators
	if len(separators) == 0 {
		separators = []string{"\n\n", "\n", " ", ""}
	}
	return splitWithSeparators(text, separators, s.KeepSeparator), nil
}

// SimpleSeparatorSplitter splits on a single separator.
type SimpleSeparatorSplitter struct {
	Separator     string
	KeepSeparator bool
}

// NewSimpleSeparatorSplitter returns a splitter on sep with separator
// retention enabled.
func NewSimpleSeparatorSplitter(sep string) *SimpleSeparatorSplitter {
	return &SimpleSeparatorSplitter{Separator: sep, KeepSeparator: true}
}

// Split implements Splitter.
func (s *SimpleSeparatorSplitter) Split(text string) ([]domain.Segment, error) {
	return splitWithSeparators(text, []string{s.Separator}, s.KeepSeparator), nil
}

// splitWithSeparators splits text on any of the given separators (tried
// together via alternation) and, when keepSeparator is set, reattaches each
// separator to the segment preceding it. Blank segments (after trimming
// whitespace for the emptiness check only — the returned segment itself is
// not trimmed) are dropped.
func splitWithSeparators(text string, separators []string, keepSeparator bool) []domain.Segment {
	if text == "" {
		return nil
	}

	quoted := make([]string, len(separators))
	for i, sep := range separators {
		quoted[i] = regexp.QuoteMeta(sep)
	}
	pattern := strings.Join(quoted, "|")
	re := regexp.MustCompile("(" + pattern + ")")

	var raw []string
	if keepSeparator {
		start := 0
		for _, m := range re.FindAllStringIndex(text, -1) {
			raw = append(raw, text[start:m[1]])
			start = m[1]
		}
		if start < len(text) {
			raw = append(raw, text[start:])
		}
	} else {
		raw = re.Split(text, -1)
	}

	segments := make([]domain.Segment, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r) == "" {
			continue
		}
		segments = append(segments, domain.Segment(r))
	}
	return segments
}

// FixedSizeSplitter slices text into segments of ChunkSize characters
// (bytes), advancing by ChunkSize-Overlap each step. With a non-zero
// Overlap, consecutive segments share Overlap bytes, so their concatenation
// repeats that text and does not reconstruct the input.
type FixedSizeSplitter struct {
	ChunkSize int
	Overlap   int
}

// NewFixedSizeSplitter returns a splitter with the given chunk size and no
// overlap.
func NewFixedSizeSplitter(chunkSize int) *FixedSizeSplitter {
	return &FixedSizeSplitter{ChunkSize: chunkSize}
}

// Split implements Splitter.
func (s *FixedSizeSplitter) Split(text string) ([]domain.Segment, error) {
	if text == "" {
		return nil, nil
	}
	if len(text) <= s.ChunkSize {
		return []domain.Segment{domain.Segment(text)}, nil
	}

	var segments []domain.Segment
	start := 0
	for start < len(text) {
		end := start + s.ChunkSize
		if end > len(text) {
			end = len(text)
		}
		segments = append(segments, domain.Segment(text[start:end]))

		next := end - s.Overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return segments, nil
}

// TokenSplitter splits text using a caller-supplied tokenizer-and-inverse
// pair: Tokenize breaks the text into tokens, Join reassembles a group of
// tokens back into text. TokensPerSegment controls how many tokens are
// grouped into each emitted segment.
type TokenSplitter struct {
	Tokenize         func(text string) []string
	Join             func(tokens []string) string
	TokensPerSegment int
}

// Split implements Splitter.
func (s *TokenSplitter) Split(text string) ([]domain.Segment, error) {
	if text == "" {
		return nil, nil
	}
	perSegment := s.TokensPerSegment
	if perSegment <= 0 {
		perSegment = 1
	}

	tokens := s.Tokenize(text)
	var segments []domain.Segment
	for i := 0; i < len(tokens); i += perSegment {
		end := i + perSegment
		if end > len(tokens) {
			end = len(tokens)
		}
		joined := s.Join(tokens[i:end])
		if joined == "" {
			continue
		}
		segments = append(segments, domain.Segment(joined))
	}
	return segments, nil
}
