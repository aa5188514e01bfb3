package session

import (
	"io"

	"github.com/ejrbuss/yoku-sub000/internal/check"
	"github.com/ejrbuss/yoku-sub000/internal/diag"
	"github.com/ejrbuss/yoku-sub000/internal/eval"
	"github.com/ejrbuss/yoku-sub000/internal/parser"
	"github.com/ejrbuss/yoku-sub000/internal/source"
)

// Session is a long-lived interpreter instance: one type checker and one
// evaluator whose scopes persist across every input they see (spec §4.6).
type Session struct {
	Config Config
	Path   string

	checker *check.Checker
	eval    *eval.Evaluator

	// replSrc accumulates the lines of one in-progress REPL statement. It
	// is discarded (set back to nil) whenever a statement completes,
	// successfully or not, so the next statement starts over a fresh
	// source rather than re-lexing stale, already-consumed text.
	replSrc *source.Source

	// lastSrc is whichever source produced the most recent StepResult or
	// RunModule error, kept around so the caller can render a diagnostic
	// with its source excerpt (spec §6.4).
	lastSrc *source.Source
}

// Render renders a diagnostic against the source it was produced from.
func (s *Session) Render(err *diag.Report) string {
	return diag.Render(err, s.lastSrc)
}

// New creates a Session with a fresh checker and evaluator, writing
// evaluated output to out. path labels diagnostics and the module/REPL
// source buffer.
func New(cfg Config, path string, out io.Writer) *Session {
	e := eval.New(out, path)
	e.RunTests = cfg.RunTests
	return &Session{
		Config:  cfg,
		Path:    path,
		checker: check.New(path),
		eval:    e,
	}
}

// RunModule parses, type-checks, and evaluates text end-to-end as a
// single module. Any error aborts the run and is returned (spec §4.6
// "Module mode"); later stages never run once an earlier one fails.
func (s *Session) RunModule(text string) *diag.Report {
	src := source.New(s.Path, text)
	s.lastSrc = src
	root, err := parser.ParseRoot(src, true)
	if err != nil {
		return err
	}
	if err := check.CheckRoot(s.checker, root); err != nil {
		return err
	}
	_, err = eval.EvalRoot(s.eval, root)
	return err
}

// StepResult is the outcome of one Session.Step call.
type StepResult struct {
	// NeedsMoreInput is set when the accumulated input parses as an
	// incomplete statement at end-of-stream; the caller should prompt
	// for a continuation line without discarding session state.
	NeedsMoreInput bool

	// Err holds any diagnostic other than "needs more input": a genuine
	// parse/check/runtime error. Resets "need more input" state (spec
	// §7).
	Err *diag.Report

	// Value is the pretty-printed result of a successfully evaluated
	// statement. Empty when Err is set or NeedsMoreInput is true.
	Value string
}

// Step feeds one line of REPL input into the session (spec §4.6 "REPL
// mode"). Lines belonging to the same in-progress statement are appended
// to the same code source and retokenized from the start, since a
// "needs more input" failure only happens once the previous attempt's
// scan cursor has already run past every token it saw; a complete
// statement is type-checked under a transactional snapshot (rolled back
// on failure) and then evaluated.
func (s *Session) Step(line string) StepResult {
	if s.replSrc == nil {
		s.replSrc = source.New(s.Path, line)
	} else {
		s.replSrc.Append("\n" + line)
	}
	s.replSrc.Rewind()
	s.lastSrc = s.replSrc

	root, err := parser.ParseRoot(s.replSrc, false)
	if err != nil {
		if err.NeedsMoreInput {
			return StepResult{NeedsMoreInput: true}
		}
		s.replSrc = nil
		return StepResult{Err: err}
	}
	s.replSrc = nil

	// A blank line (or one that is all whitespace/comments) parses to an
	// empty root; there is nothing to check, evaluate, or echo.
	if len(root.Items) == 0 {
		return StepResult{}
	}

	snap := s.checker.Snapshot()
	if err := check.CheckRoot(s.checker, root); err != nil {
		s.checker.Restore(snap)
		return StepResult{Err: err}
	}

	v, err := eval.EvalRoot(s.eval, root)
	if err != nil {
		return StepResult{Err: err}
	}
	return StepResult{Value: v.String()}
}
