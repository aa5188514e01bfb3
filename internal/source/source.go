// Package source implements the append-only code source buffer shared by
// the tokenizer and parser: a growing string, a path label, scan cursors,
// and checkpoint/restore for lookahead.
package source

import (
	"bytes"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// normalize strips a UTF-8 BOM, applies NFC normalization, and expands
// tabs to four spaces so that column reporting never has to special-case
// tab width.
func normalize(text string) string {
	b := []byte(text)
	b = bytes.TrimPrefix(b, bomUTF8)
	if !norm.NFC.IsNormal(b) {
		b = norm.NFC.Bytes(b)
	}
	return strings.ReplaceAll(string(b), "\t", "    ")
}

// Span is a half-open byte-offset range [Start, End) into a Source.
type Span struct {
	Start int
	End   int
}

// Checkpoint captures both scan cursors so a parser can roll back after
// speculative lookahead.
type Checkpoint struct {
	start int
	end   int
}

// Source is the append-only buffer the tokenizer and parser read from.
// start marks the beginning of the token currently being scanned; end is
// the read cursor.
type Source struct {
	Path  string
	Text  string
	start int
	end   int
}

// New creates a Source from an initial chunk of text.
func New(path, text string) *Source {
	return &Source{Path: path, Text: normalize(text)}
}

// Append grows the buffer with another chunk of text (used by the REPL to
// feed continuation lines). The scan cursors are left where they are; use
// Rewind to rescan from the beginning.
func (s *Source) Append(text string) {
	s.Text += normalize(text)
}

// HasMore reports whether there is unconsumed input at the end cursor.
func (s *Source) HasMore() bool {
	return s.end < len(s.Text)
}

// Peek returns the byte at the end cursor without advancing, or 0 at EOF.
func (s *Source) Peek() byte {
	if !s.HasMore() {
		return 0
	}
	return s.Text[s.end]
}

// PeekAt returns the byte offset bytes ahead of the end cursor, or 0 past
// EOF.
func (s *Source) PeekAt(offset int) byte {
	i := s.end + offset
	if i < 0 || i >= len(s.Text) {
		return 0
	}
	return s.Text[i]
}

// Consume returns the byte at the end cursor and advances past it.
func (s *Source) Consume() byte {
	ch := s.Peek()
	if s.HasMore() {
		s.end++
	}
	return ch
}

// ConsumeAndPeek advances past the current byte and returns the new
// current byte (0 at EOF).
func (s *Source) ConsumeAndPeek() byte {
	s.Consume()
	return s.Peek()
}

// Match checks whether literal occurs at the end cursor and, if so,
// advances past it, returning true.
func (s *Source) Match(literal string) bool {
	if strings.HasPrefix(s.Text[s.end:], literal) {
		s.end += len(literal)
		return true
	}
	return false
}

// StartScan marks the beginning of the token currently being scanned.
func (s *Source) StartScan() {
	s.start = s.end
}

// GetScan returns the substring scanned since the last StartScan.
func (s *Source) GetScan() string {
	return s.Text[s.start:s.end]
}

// GetSpan returns the span scanned since the last StartScan.
func (s *Source) GetSpan() Span {
	return Span{Start: s.start, End: s.end}
}

// Checkpoint saves both cursors for later Restore.
func (s *Source) Checkpoint() Checkpoint {
	return Checkpoint{start: s.start, end: s.end}
}

// Restore resets both cursors to a previously saved Checkpoint.
func (s *Source) Restore(cp Checkpoint) {
	s.start = cp.start
	s.end = cp.end
}

// Rewind resets both cursors to the start of the buffer, so a fresh parse
// attempt retokenizes everything accumulated so far (used by the REPL
// after appending a continuation line to a statement that previously
// read as incomplete).
func (s *Source) Rewind() {
	s.start = 0
	s.end = 0
}

// LineCol converts a byte offset into a 1-based line and column.
func (s *Source) LineCol(offset int) (line, col int) {
	line, col = 1, 1
	if offset > len(s.Text) {
		offset = len(s.Text)
	}
	for i := 0; i < offset; i++ {
		if s.Text[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
