package parser

import (
	"github.com/ejrbuss/yoku-sub000/internal/ast"
	"github.com/ejrbuss/yoku-sub000/internal/diag"
)

// parseTypeExpr parses a type expression as written in source: an
// identifier, the wildcard `_`, a procedure type `proc (T, …) -> R`, or a
// parenthesized tuple/group type (spec §3.2 "Type expressions").
func (p *Parser) parseTypeExpr() (ast.TypeExpr, *diag.Report) {
	switch {
	case p.atKeyword("_"):
		start := p.cur.Span
		p.advance()
		return &ast.WildcardTypeExpr{Sp: start}, nil
	case p.atKeyword("proc"):
		return p.parseProcTypeExpr()
	case p.atPunc("("):
		return p.parseTupleOrGroupTypeExpr()
	case p.atId():
		tok := p.cur
		p.advance()
		return &ast.IdentTypeExpr{Name: tok.Image, Sp: tok.Span}, nil
	default:
		return nil, p.failExpected("a type expression")
	}
}

func (p *Parser) parseProcTypeExpr() (ast.TypeExpr, *diag.Report) {
	start := p.cur.Span
	if _, err := p.expectKeyword("proc"); err != nil {
		return nil, err
	}
	if _, err := p.expectPunc("("); err != nil {
		return nil, err
	}
	var params []ast.TypeExpr
	first := true
	for !p.atPunc(")") {
		if !first {
			if _, err := p.expectPunc(","); err != nil {
				return nil, err
			}
			if p.atPunc(")") {
				break
			}
		}
		first = false
		pt, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		params = append(params, pt)
	}
	if _, err := p.expectPunc(")"); err != nil {
		return nil, err
	}
	var returns ast.TypeExpr
	end := p.cur.Span
	if p.atPunc("->") {
		p.advance()
		rt, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		returns = rt
		end = rt.Span()
	}
	return &ast.ProcTypeExpr{Params: params, Returns: returns, Sp: span(start, end)}, nil
}

// parseTupleOrGroupTypeExpr parses `()` (Unit), `(T)` (a plain grouped
// type, identical in meaning to T), `(T,)` (a 1-tuple type), and
// `(T1, T2, …)` (a tuple type) — the type-level mirror of
// parseTupleOrGroup's expression boundary cases (spec §8).
func (p *Parser) parseTupleOrGroupTypeExpr() (ast.TypeExpr, *diag.Report) {
	start := p.cur.Span
	if _, err := p.expectPunc("("); err != nil {
		return nil, err
	}
	if p.atPunc(")") {
		closeTok, _ := p.expectPunc(")")
		return &ast.TupleTypeExpr{Sp: span(start, closeTok.Span)}, nil
	}

	first, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	if p.atPunc(")") {
		p.expectPunc(")")
		return first, nil
	}

	items := []ast.TypeExpr{first}
	for p.atPunc(",") {
		p.advance()
		if p.atPunc(")") {
			break
		}
		item, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	closeTok, err := p.expectPunc(")")
	if err != nil {
		return nil, err
	}
	return &ast.TupleTypeExpr{Items: items, Sp: span(start, closeTok.Span)}, nil
}
