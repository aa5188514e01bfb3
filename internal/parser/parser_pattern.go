package parser

import (
	"github.com/ejrbuss/yoku-sub000/internal/ast"
	"github.com/ejrbuss/yoku-sub000/internal/diag"
	"github.com/ejrbuss/yoku-sub000/internal/lexer"
	"github.com/ejrbuss/yoku-sub000/internal/source"
)

// parsePattern parses a pattern (spec §3.2 "Patterns"). allowLiteral gates
// literal patterns, which the grammar only admits in an asserted context
// (assert, match, if-let, or `var … assert`, spec §4.3).
func (p *Parser) parsePattern(allowLiteral bool) (ast.Pattern, *diag.Report) {
	left, err := p.parseBasePattern(allowLiteral)
	if err != nil {
		return nil, err
	}
	for p.atKeyword("as") {
		p.advance()
		right, err := p.parseBasePattern(allowLiteral)
		if err != nil {
			return nil, err
		}
		left = &ast.AsPattern{Left: left, Right: right, Sp: span(left.Span(), right.Span())}
	}
	return left, nil
}

func (p *Parser) parseBasePattern(allowLiteral bool) (ast.Pattern, *diag.Report) {
	switch {
	case p.atKeyword("_"):
		start := p.cur.Span
		p.advance()
		return &ast.WildcardPattern{Sp: start}, nil
	case p.cur.Kind == lexer.Lit:
		if !allowLiteral {
			return nil, diag.New(diag.ParseError, p.path, p.cur.Span, "literal pattern outside an asserted context")
		}
		tok := p.cur
		p.advance()
		kind, ok := literalKindOf(tok.Value)
		if !ok {
			return nil, diag.New(diag.ParseError, p.path, tok.Span, "invalid literal pattern")
		}
		return &ast.LiteralPattern{Kind: kind, Value: tok.Value, Sp: tok.Span}, nil
	case p.atPunc("("):
		return p.parseTuplePattern(allowLiteral)
	case p.atId():
		return p.parseIdentOrConstructorPattern(allowLiteral)
	default:
		return nil, p.failExpected("a pattern")
	}
}

// parseTuplePattern parses `()` (matches Unit), `(P)` (a plain grouped
// pattern, identical in meaning to P), `(P,)` (a 1-tuple pattern), and
// `(P1, P2, …)` — the pattern-level mirror of parseTupleOrGroup's
// expression boundary cases (spec §8). allowLiteral carries the
// enclosing context's literal gate down into every sub-pattern.
func (p *Parser) parseTuplePattern(allowLiteral bool) (ast.Pattern, *diag.Report) {
	start := p.cur.Span
	if _, err := p.expectPunc("("); err != nil {
		return nil, err
	}
	if p.atPunc(")") {
		closeTok, _ := p.expectPunc(")")
		return &ast.TuplePattern{Sp: span(start, closeTok.Span)}, nil
	}

	first, err := p.parsePattern(allowLiteral)
	if err != nil {
		return nil, err
	}
	if p.atPunc(")") {
		p.expectPunc(")")
		return first, nil
	}

	items := []ast.Pattern{first}
	for p.atPunc(",") {
		p.advance()
		if p.atPunc(")") {
			break
		}
		item, err := p.parsePattern(allowLiteral)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	closeTok, err := p.expectPunc(")")
	if err != nil {
		return nil, err
	}
	return &ast.TuplePattern{Items: items, Sp: span(start, closeTok.Span)}, nil
}

// parseIdentOrConstructorPattern disambiguates a plain binding identifier
// from a qualified enum-variant pattern (`Enum.Variant`, optionally with a
// tuple- or record-form field list) and from an unqualified struct pattern
// (`Name { … }` / `Name( … )`). A bare identifier with no dot and no
// constructor body is always a binding, never a zero-field constant
// reference — those are only reachable through the qualified `Enum.Variant`
// form (spec §8 scenario 3: `Color.Red`, never bare `Red`).
func (p *Parser) parseIdentOrConstructorPattern(allowLiteral bool) (ast.Pattern, *diag.Report) {
	nameTok := p.cur
	p.advance()

	if p.atOp(".") && p.peek.Kind == lexer.Id {
		p.advance() // '.'
		variantTok := p.cur
		p.advance()
		fields, tupleForm, closeSpan, err := p.parsePatternCtorBodyOptional(allowLiteral)
		if err != nil {
			return nil, err
		}
		end := variantTok.Span
		if closeSpan.End != 0 {
			end = closeSpan
		}
		return &ast.VariantPattern{
			EnumName: nameTok.Image, VariantName: variantTok.Image,
			TupleForm: tupleForm, Fields: fields, Sp: span(nameTok.Span, end),
		}, nil
	}

	if p.atPunc("{") || p.atPunc("(") {
		fields, tupleForm, closeSpan, err := p.parsePatternCtorBodyOptional(allowLiteral)
		if err != nil {
			return nil, err
		}
		return &ast.StructPattern{
			Name: nameTok.Image, TupleForm: tupleForm, Fields: fields,
			Sp: span(nameTok.Span, closeSpan),
		}, nil
	}

	return &ast.IdentPattern{Name: nameTok.Image, Sp: nameTok.Span}, nil
}

// parsePatternCtorBodyOptional parses a constructor pattern body if one is
// present (`{ … }` or `( … )`); if neither delimiter follows, it returns no
// fields and a zero span, the shape of a constant enum variant pattern
// like `Color.Red`.
func (p *Parser) parsePatternCtorBodyOptional(allowLiteral bool) ([]ast.FieldPattern, bool, source.Span, *diag.Report) {
	switch {
	case p.atPunc("("):
		return p.parsePatternTupleBody(allowLiteral)
	case p.atPunc("{"):
		return p.parsePatternRecordBody(allowLiteral)
	default:
		return nil, false, source.Span{}, nil
	}
}

func (p *Parser) parsePatternTupleBody(allowLiteral bool) ([]ast.FieldPattern, bool, source.Span, *diag.Report) {
	if _, err := p.expectPunc("("); err != nil {
		return nil, false, source.Span{}, err
	}
	var fields []ast.FieldPattern
	first := true
	for !p.atPunc(")") {
		if !first {
			if _, err := p.expectPunc(","); err != nil {
				return nil, false, source.Span{}, err
			}
			if p.atPunc(")") {
				break
			}
		}
		first = false
		pat, err := p.parsePattern(allowLiteral)
		if err != nil {
			return nil, false, source.Span{}, err
		}
		fields = append(fields, ast.FieldPattern{Pattern: pat})
	}
	closeTok, err := p.expectPunc(")")
	if err != nil {
		return nil, false, source.Span{}, err
	}
	return fields, true, closeTok.Span, nil
}

// parsePatternRecordBody parses `{ name: pat, name2, … }`, with bare-name
// field punning binding an identifier pattern of the same name.
func (p *Parser) parsePatternRecordBody(allowLiteral bool) ([]ast.FieldPattern, bool, source.Span, *diag.Report) {
	if _, err := p.expectPunc("{"); err != nil {
		return nil, false, source.Span{}, err
	}
	var fields []ast.FieldPattern
	first := true
	for !p.atPunc("}") {
		if !first {
			if _, err := p.expectPunc(","); err != nil {
				return nil, false, source.Span{}, err
			}
			if p.atPunc("}") {
				break
			}
		}
		first = false
		fieldTok, err := p.expectId()
		if err != nil {
			return nil, false, source.Span{}, err
		}
		var pat ast.Pattern
		if p.atPunc(":") {
			p.advance()
			pt, err := p.parsePattern(allowLiteral)
			if err != nil {
				return nil, false, source.Span{}, err
			}
			pat = pt
		} else {
			pat = &ast.IdentPattern{Name: fieldTok.Image, Sp: fieldTok.Span}
		}
		fields = append(fields, ast.FieldPattern{Name: fieldTok.Image, Pattern: pat})
	}
	closeTok, err := p.expectPunc("}")
	if err != nil {
		return nil, false, source.Span{}, err
	}
	return fields, false, closeTok.Span, nil
}
