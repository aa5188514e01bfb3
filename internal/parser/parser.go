// Package parser implements Yoku's top-down recursive-descent parser with
// operator-precedence climbing for binary expressions, split across
// files by grammar concern (declarations, statements, expressions,
// patterns, type expressions).
package parser

import (
	"fmt"

	"github.com/ejrbuss/yoku-sub000/internal/ast"
	"github.com/ejrbuss/yoku-sub000/internal/diag"
	"github.com/ejrbuss/yoku-sub000/internal/lexer"
	"github.com/ejrbuss/yoku-sub000/internal/source"
)

// Parser holds two tokens of lookahead over a lexer.Lexer.
type Parser struct {
	src  *source.Source
	lex  *lexer.Lexer
	path string
	cur  lexer.Token
	peek lexer.Token

	// noStructLiteral suppresses parsing `Ident {` as a struct
	// constructor while parsing the test expression of if/while/match,
	// so that the following block is never swallowed as field inits —
	// the same ambiguity C-family grammars hit and resolve the same way.
	noStructLiteral bool
}

// New creates a Parser over src.
func New(src *source.Source) *Parser {
	p := &Parser{src: src, lex: lexer.New(src), path: src.Path}
	p.cur = p.lex.Next()
	p.peek = p.lex.Next()
	return p
}

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.lex.Next()
}

type bookmark struct {
	srcCP source.Checkpoint
	cur   lexer.Token
	peek  lexer.Token
}

func (p *Parser) mark() bookmark {
	return bookmark{srcCP: p.src.Checkpoint(), cur: p.cur, peek: p.peek}
}

func (p *Parser) reset(b bookmark) {
	p.src.Restore(b.srcCP)
	p.cur = b.cur
	p.peek = b.peek
}

// atEOF reports whether the current token is end-of-stream, which is the
// signal the REPL uses to distinguish "needs more input" from a genuine
// syntax error (spec §4.3/§7).
func (p *Parser) atEOF() bool {
	return p.cur.Kind == lexer.EOF
}

func (p *Parser) fail(note string) *diag.Report {
	if p.cur.Kind == lexer.Error {
		return diag.New(diag.LexError, p.path, p.cur.Span, p.cur.Note)
	}
	if p.atEOF() {
		return diag.NeedsMore(p.path, p.cur.Span, note)
	}
	return diag.New(diag.ParseError, p.path, p.cur.Span, note)
}

func (p *Parser) failExpected(what string) *diag.Report {
	return p.fail(fmt.Sprintf("expected %s, got %s", what, p.cur))
}

func (p *Parser) atPunc(image string) bool {
	return p.cur.Kind == lexer.Punc && p.cur.Image == image
}

func (p *Parser) atOp(image string) bool {
	return p.cur.Kind == lexer.Op && p.cur.Image == image
}

func (p *Parser) atKeyword(word string) bool {
	return p.cur.Kind == lexer.Keyword && p.cur.Image == word
}

func (p *Parser) atId() bool {
	return p.cur.Kind == lexer.Id
}

func (p *Parser) expectPunc(image string) (lexer.Token, *diag.Report) {
	if !p.atPunc(image) {
		return lexer.Token{}, p.failExpected(fmt.Sprintf("%q", image))
	}
	t := p.cur
	p.advance()
	return t, nil
}

func (p *Parser) expectOp(image string) (lexer.Token, *diag.Report) {
	if !p.atOp(image) {
		return lexer.Token{}, p.failExpected(fmt.Sprintf("%q", image))
	}
	t := p.cur
	p.advance()
	return t, nil
}

func (p *Parser) expectKeyword(word string) (lexer.Token, *diag.Report) {
	if !p.atKeyword(word) {
		return lexer.Token{}, p.failExpected(fmt.Sprintf("%q", word))
	}
	t := p.cur
	p.advance()
	return t, nil
}

func (p *Parser) expectId() (lexer.Token, *diag.Report) {
	if !p.atId() {
		return lexer.Token{}, p.failExpected("identifier")
	}
	t := p.cur
	p.advance()
	return t, nil
}

// lookaheadHasAssert scans ahead, without consuming, for a top-level
// `assert` keyword before the next top-level `=` or `;` — used by
// parseVarDecl to decide whether its pattern is in an asserted context
// before the `assert` keyword itself has been reached (spec §4.3: it
// follows the type annotation, which follows the pattern).
func (p *Parser) lookaheadHasAssert() bool {
	b := p.mark()
	defer p.reset(b)

	depth := 0
	for !p.atEOF() {
		switch {
		case depth == 0 && p.atKeyword("assert"):
			return true
		case depth == 0 && (p.atOp("=") || p.atPunc(";")):
			return false
		case p.atPunc("(") || p.atPunc("[") || p.atPunc("{"):
			depth++
		case p.atPunc(")") || p.atPunc("]") || p.atPunc("}"):
			depth--
		}
		p.advance()
	}
	return false
}

func span(start, end source.Span) source.Span {
	return source.Span{Start: start.Start, End: end.End}
}

// ParseRoot parses one Root: a module file parses every declaration to
// EOF; a REPL line parses a single `;`-terminated unit.
func ParseRoot(src *source.Source, isModule bool) (*ast.Root, *diag.Report) {
	p := New(src)
	root := &ast.Root{IsModule: isModule}
	startSpan := p.cur.Span

	if isModule {
		for !p.atEOF() {
			item, err := p.parseBlockItem("")
			if err != nil {
				return nil, err
			}
			root.Items = append(root.Items, item)
		}
	} else {
		if p.atEOF() {
			root.Sp = startSpan
			return root, nil
		}
		item, err := p.parseBlockItem("")
		if err != nil {
			return nil, err
		}
		root.Items = append(root.Items, item)
		if !p.atEOF() {
			return nil, p.fail("unexpected trailing input")
		}
	}

	root.Sp = span(startSpan, p.cur.Span)
	return root, nil
}
