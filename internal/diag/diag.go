// Package diag implements Yoku's structured diagnostic type: one Report
// struct per failure, wrapped so it survives errors.As, plus
// source-excerpt rendering.
package diag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ejrbuss/yoku-sub000/internal/source"
)

// Code identifies a diagnostic's category, spec §7.
type Code string

const (
	LexError   Code = "LEX"
	ParseError Code = "PAR"
	ResError   Code = "RES" // resolution / scope error
	TypeError  Code = "TYP"
	RunError   Code = "RUN"
)

// Report is the canonical diagnostic carried between stages (spec §6.4).
type Report struct {
	Kind           Code
	Note           string
	Path           string
	Span           source.Span
	NeedsMoreInput bool
}

// reportErr wraps a *Report as an error so it survives errors.As.
type reportErr struct {
	Rep *Report
}

func (e *reportErr) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return fmt.Sprintf("%s: %s", e.Rep.Kind, e.Rep.Note)
}

// Wrap turns a *Report into an error.
func Wrap(r *Report) error {
	if r == nil {
		return nil
	}
	return &reportErr{Rep: r}
}

// As extracts a *Report from an error chain, if present.
func As(err error) (*Report, bool) {
	var re *reportErr
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// New builds a Report.
func New(kind Code, path string, span source.Span, note string) *Report {
	return &Report{Kind: kind, Note: note, Path: path, Span: span}
}

// NeedsMore builds a parse-error Report flagged as needing more input,
// spec §4.3/§7 — the REPL signal that a fragment is syntactically
// incomplete rather than invalid.
func NeedsMore(path string, span source.Span, note string) *Report {
	return &Report{Kind: ParseError, Note: note, Path: path, Span: span, NeedsMoreInput: true}
}

// Render formats the diagnostic as "path:line:col", a caret-annotated
// source excerpt, and the note (spec §6.4).
func Render(r *Report, src *source.Source) string {
	line, col := src.LineCol(r.Span.Start)
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s:%d:%d: %s\n", r.Path, line, col, r.Note)

	lineStart, lineEnd := lineBounds(src.Text, r.Span.Start)
	fmt.Fprintf(&sb, "  %s\n", src.Text[lineStart:lineEnd])

	caretLen := r.Span.End - r.Span.Start
	if caretLen < 1 {
		caretLen = 1
	}
	if r.Span.Start-lineStart+caretLen > lineEnd-lineStart {
		caretLen = lineEnd - r.Span.Start
		if caretLen < 1 {
			caretLen = 1
		}
	}
	fmt.Fprintf(&sb, "  %s%s\n", strings.Repeat(" ", r.Span.Start-lineStart), strings.Repeat("^", caretLen))
	return sb.String()
}

func lineBounds(text string, offset int) (start, end int) {
	start = offset
	for start > 0 && text[start-1] != '\n' {
		start--
	}
	end = offset
	for end < len(text) && text[end] != '\n' {
		end++
	}
	return start, end
}
