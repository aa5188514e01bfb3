package parser

import (
	"math/big"

	"github.com/ejrbuss/yoku-sub000/internal/ast"
	"github.com/ejrbuss/yoku-sub000/internal/diag"
	"github.com/ejrbuss/yoku-sub000/internal/lexer"
	"github.com/ejrbuss/yoku-sub000/internal/source"
)

// binPrec returns the binary precedence of an Op image, low to high per
// spec §4.3, or 0 if image is not a binary operator.
func binPrec(image string) int {
	switch image {
	case "|":
		return 1
	case "&":
		return 2
	case "==", "!=", "===", "!==":
		return 3
	case "<", "<=", ">", ">=":
		return 4
	case "+", "-":
		return 5
	case "*", "/", "%", "?":
		return 6
	default:
		return 0
	}
}

func isUnaryOp(image string) bool {
	return image == "-" || image == "!" || image == "..."
}

func (p *Parser) parseExpr() (ast.Expr, *diag.Report) {
	return p.parseBinary(1)
}

func (p *Parser) parseBinary(minPrec int) (ast.Expr, *diag.Report) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur.Kind == lexer.Op {
		prec := binPrec(p.cur.Image)
		if prec == 0 || prec < minPrec {
			break
		}
		op := p.cur.Image
		start := left.Span()
		p.advance()
		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, Sp: span(start, right.Span())}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expr, *diag.Report) {
	if p.cur.Kind == lexer.Op && isUnaryOp(p.cur.Image) {
		start := p.cur.Span
		op := p.cur.Image
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: op, Expr: operand, Sp: span(start, operand.Span())}, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (ast.Expr, *diag.Report) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.atOp("."):
			p.advance()
			var field string
			switch {
			case p.atId():
				field = p.cur.Image
				p.advance()
			case p.cur.Kind == lexer.Lit:
				if n, ok := p.cur.Value.(*big.Int); ok {
					field = n.String()
					p.advance()
				} else {
					return nil, p.failExpected("field name or tuple index")
				}
			default:
				return nil, p.failExpected("field name or tuple index")
			}
			e = &ast.MemberExpr{Target: e, Field: field, Sp: span(e.Span(), p.cur.Span)}
		case p.atPunc("("):
			args, closeSpan, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			e = &ast.CallExpr{Callee: e, Args: args, Sp: span(e.Span(), closeSpan)}
		default:
			return e, nil
		}
	}
}

// parseCallArgs parses a `(` arg, arg, ... `)` list and returns the span
// of the closing paren.
func (p *Parser) parseCallArgs() ([]ast.Expr, source.Span, *diag.Report) {
	if _, err := p.expectPunc("("); err != nil {
		return nil, source.Span{}, err
	}
	savedNSL := p.noStructLiteral
	p.noStructLiteral = false
	defer func() { p.noStructLiteral = savedNSL }()
	var args []ast.Expr
	first := true
	for !p.atPunc(")") {
		if !first {
			if _, err := p.expectPunc(","); err != nil {
				return nil, source.Span{}, err
			}
			if p.atPunc(")") {
				break
			}
		}
		first = false
		arg, err := p.parseExpr()
		if err != nil {
			return nil, source.Span{}, err
		}
		args = append(args, arg)
	}
	closeTok, err := p.expectPunc(")")
	if err != nil {
		return nil, source.Span{}, err
	}
	return args, closeTok.Span, nil
}

// parsePrimary parses the atomic expression forms: blocks, tuples/groups,
// struct/enum-variant constructors, if/match/throw, procedure literals,
// type-value expressions, literals, and identifiers.
func (p *Parser) parsePrimary() (ast.Expr, *diag.Report) {
	switch {
	case p.atPunc("{"):
		return p.parseBlockExpr()
	case p.atPunc("("):
		return p.parseTupleOrGroup()
	case p.atKeyword("if"):
		return p.parseIfExpr()
	case p.atKeyword("match"):
		return p.parseMatchExpr()
	case p.atKeyword("do"):
		return p.parseDoExpr()
	case p.atKeyword("throw"):
		return p.parseThrowExpr()
	case p.atKeyword("proc"):
		return p.parseProcLitAfterName(p.cur.Span)
	case p.atKeyword("type"):
		return p.parseTypeValueExpr()
	case p.cur.Kind == lexer.Lit:
		return p.parseLiteralExpr()
	case p.atId():
		return p.parseIdentOrConstructor()
	default:
		return nil, p.failExpected("an expression")
	}
}

func (p *Parser) parseLiteralExpr() (*ast.LiteralExpr, *diag.Report) {
	tok := p.cur
	p.advance()
	kind, ok := literalKindOf(tok.Value)
	if !ok {
		return nil, diag.New(diag.ParseError, p.path, tok.Span, "invalid literal")
	}
	return &ast.LiteralExpr{Kind: kind, Value: tok.Value, Sp: tok.Span}, nil
}

func literalKindOf(value interface{}) (ast.LiteralKind, bool) {
	switch value.(type) {
	case bool:
		return ast.BoolLit, true
	case *big.Int:
		return ast.IntLit, true
	case float64:
		return ast.FloatLit, true
	case string:
		return ast.StringLit, true
	default:
		return 0, false
	}
}

// parseIdentOrConstructor disambiguates a bare identifier from a struct
// constructor (`Name { … }`) and from a qualified enum-variant record
// constructor (`Enum.Variant { … }`). The tuple forms (`Name( … )`,
// `Enum.Variant( … )`) are deliberately NOT claimed here: they parse as
// ordinary postfix calls — over the struct's module binding or the
// variant's constructor — which is also what keeps a plain member call
// like `point.scale(2)` unambiguous.
func (p *Parser) parseIdentOrConstructor() (ast.Expr, *diag.Report) {
	nameTok := p.cur
	p.advance()

	if p.atOp(".") && p.peek.Kind == lexer.Id {
		save := p.mark()
		p.advance() // '.'
		variantTok := p.cur
		p.advance()
		if !p.noStructLiteral && p.atPunc("{") {
			fields, spread, closeSpan, err := p.parseCtorBody()
			if err != nil {
				return nil, err
			}
			return &ast.EnumVariantExpr{
				EnumName: nameTok.Image, VariantName: variantTok.Image,
				Fields: fields, Spread: spread, Sp: span(nameTok.Span, closeSpan),
			}, nil
		}
		p.reset(save)
	}

	if !p.noStructLiteral && p.atPunc("{") {
		fields, spread, closeSpan, err := p.parseCtorBody()
		if err != nil {
			return nil, err
		}
		return &ast.StructExpr{Name: nameTok.Image, Fields: fields, Spread: spread, Sp: span(nameTok.Span, closeSpan)}, nil
	}

	return &ast.IdentExpr{Name: nameTok.Image, Sp: nameTok.Span}, nil
}

// parseCtorBody parses a `{ name = expr, …, ...spread }` record body,
// used by both struct and enum-variant construction. A bare `name` puns
// the variable of the same name, mirroring the record pattern form; the
// `=` matches how record values pretty-print back out.
func (p *Parser) parseCtorBody() ([]ast.FieldInit, ast.Expr, source.Span, *diag.Report) {
	if _, err := p.expectPunc("{"); err != nil {
		return nil, nil, source.Span{}, err
	}
	savedNSL := p.noStructLiteral
	p.noStructLiteral = false
	defer func() { p.noStructLiteral = savedNSL }()

	var fields []ast.FieldInit
	var spread ast.Expr
	first := true
	for !p.atPunc("}") {
		if !first {
			if _, err := p.expectPunc(","); err != nil {
				return nil, nil, source.Span{}, err
			}
			if p.atPunc("}") {
				break
			}
		}
		first = false

		if p.atOp("...") {
			p.advance()
			s, err := p.parseExpr()
			if err != nil {
				return nil, nil, source.Span{}, err
			}
			spread = s
			continue
		}

		fieldTok, err := p.expectId()
		if err != nil {
			return nil, nil, source.Span{}, err
		}
		var value ast.Expr
		if p.atOp("=") {
			p.advance()
			value, err = p.parseExpr()
			if err != nil {
				return nil, nil, source.Span{}, err
			}
		} else {
			value = &ast.IdentExpr{Name: fieldTok.Image, Sp: fieldTok.Span}
		}
		fields = append(fields, ast.FieldInit{Name: fieldTok.Image, Value: value})
	}
	closeTok, err := p.expectPunc("}")
	if err != nil {
		return nil, nil, source.Span{}, err
	}
	return fields, spread, closeTok.Span, nil
}

// parseTupleOrGroup parses `()` (Unit), `(e)` (a Group), `(e,)` (a
// 1-tuple), and `(e1, e2, …)` (a Tuple) — spec §8 boundary cases.
func (p *Parser) parseTupleOrGroup() (ast.Expr, *diag.Report) {
	start := p.cur.Span
	if _, err := p.expectPunc("("); err != nil {
		return nil, err
	}
	savedNSL := p.noStructLiteral
	p.noStructLiteral = false
	defer func() { p.noStructLiteral = savedNSL }()

	if p.atPunc(")") {
		closeTok, _ := p.expectPunc(")")
		return &ast.TupleExpr{Sp: span(start, closeTok.Span)}, nil
	}

	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.atPunc(")") {
		closeTok, _ := p.expectPunc(")")
		return &ast.GroupExpr{Inner: first, Sp: span(start, closeTok.Span)}, nil
	}

	items := []ast.Expr{first}
	for p.atPunc(",") {
		p.advance()
		if p.atPunc(")") {
			break
		}
		item, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	closeTok, err := p.expectPunc(")")
	if err != nil {
		return nil, err
	}
	return &ast.TupleExpr{Items: items, Sp: span(start, closeTok.Span)}, nil
}

// parseBlockExpr parses `{ item; item; … }`.
func (p *Parser) parseBlockExpr() (*ast.BlockExpr, *diag.Report) {
	start := p.cur.Span
	if _, err := p.expectPunc("{"); err != nil {
		return nil, err
	}
	savedNSL := p.noStructLiteral
	p.noStructLiteral = false
	defer func() { p.noStructLiteral = savedNSL }()
	var items []ast.Node
	for !p.atPunc("}") {
		item, err := p.parseBlockItem("}")
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	closeTok, err := p.expectPunc("}")
	if err != nil {
		return nil, err
	}
	return &ast.BlockExpr{Items: items, Sp: span(start, closeTok.Span)}, nil
}

// parseDoExpr parses `do { … }`, a block used purely for its expression
// value in statement position (spec §4.3 keyword table includes `do`).
func (p *Parser) parseDoExpr() (ast.Expr, *diag.Report) {
	if _, err := p.expectKeyword("do"); err != nil {
		return nil, err
	}
	return p.parseBlockExpr()
}

func (p *Parser) parseThrowExpr() (*ast.ThrowExpr, *diag.Report) {
	start := p.cur.Span
	if _, err := p.expectKeyword("throw"); err != nil {
		return nil, err
	}
	v, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.ThrowExpr{Value: v, Sp: span(start, v.Span())}, nil
}

// parseIfExpr parses both `if e { } else { }` and the `if let P := e { }`
// destructuring form (spec §6.3).
func (p *Parser) parseIfExpr() (*ast.IfExpr, *diag.Report) {
	start := p.cur.Span
	if _, err := p.expectKeyword("if"); err != nil {
		return nil, err
	}

	var pat ast.Pattern
	var assertedType ast.TypeExpr
	// The destructuring form is introduced by a contextual `let`: it is
	// not a reserved word (the keyword set omits it), so it lexes as an
	// identifier and only acts as a marker directly after `if`, and only
	// when a pattern followed by `:=` actually follows it. `:=` is not
	// its own token; it is the two-token sequence Punc(":") Op("=")
	// scanned back to back.
	if p.atId() && p.cur.Image == "let" && p.looksLikeIfLet() {
		p.advance() // `let`
		var err *diag.Report
		pat, err = p.parsePattern(true)
		if err != nil {
			return nil, err
		}
		if p.atPunc(":") && !p.atColonEquals() {
			p.advance()
			assertedType, err = p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
		}
		if err := p.expectColonEquals(); err != nil {
			return nil, err
		}
	}

	savedNSL := p.noStructLiteral
	p.noStructLiteral = true
	test, err := p.parseExpr()
	p.noStructLiteral = savedNSL
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlockExpr()
	if err != nil {
		return nil, err
	}
	var elseBranch ast.Expr
	if p.atKeyword("else") {
		p.advance()
		if p.atKeyword("if") {
			elseBranch, err = p.parseIfExpr()
		} else {
			elseBranch, err = p.parseBlockExpr()
		}
		if err != nil {
			return nil, err
		}
	}
	return &ast.IfExpr{
		Pattern: pat, AssertedType: assertedType, Test: test, Then: then, Else: elseBranch,
		Sp: span(start, p.cur.Span),
	}, nil
}

// looksLikeIfLet performs bounded lookahead past the contextual `let` to
// tell the destructuring form (a pattern followed eventually by `:=`)
// from a plain boolean test over a variable that happens to be named
// `let`, by scanning forward with a bookmark and restoring it
// unconditionally.
func (p *Parser) looksLikeIfLet() bool {
	save := p.mark()
	defer p.reset(save)
	p.advance() // the contextual `let`
	if _, err := p.parsePattern(true); err != nil {
		return false
	}
	if p.atPunc(":") && !p.atColonEquals() {
		p.advance()
		if _, err := p.parseTypeExpr(); err != nil {
			return false
		}
	}
	return p.atColonEquals()
}

// atColonEquals reports whether the cursor sits at the two-token `:=`
// sequence (Punc(":") immediately followed by Op("=")) without consuming
// it; `:=` is not its own token per spec §4.2.
func (p *Parser) atColonEquals() bool {
	return p.atPunc(":") && p.peek.Kind == lexer.Op && p.peek.Image == "="
}

// expectColonEquals consumes the `:=` two-token sequence.
func (p *Parser) expectColonEquals() *diag.Report {
	if !p.atColonEquals() {
		return p.failExpected("':='")
	}
	p.advance() // ':'
	p.advance() // '='
	return nil
}

func (p *Parser) parseMatchExpr() (*ast.MatchExpr, *diag.Report) {
	start := p.cur.Span
	if _, err := p.expectKeyword("match"); err != nil {
		return nil, err
	}
	var test ast.Expr
	if !p.atPunc("{") {
		savedNSL := p.noStructLiteral
		p.noStructLiteral = true
		t, err := p.parseExpr()
		p.noStructLiteral = savedNSL
		if err != nil {
			return nil, err
		}
		test = t
	}
	if _, err := p.expectPunc("{"); err != nil {
		return nil, err
	}
	var cases []ast.MatchCase
	first := true
	for !p.atPunc("}") {
		if !first {
			if _, err := p.expectPunc(","); err != nil {
				return nil, err
			}
			if p.atPunc("}") {
				break
			}
		}
		first = false

		var pat ast.Pattern
		if p.atKeyword("else") {
			p.advance()
		} else {
			pt, err := p.parsePattern(true)
			if err != nil {
				return nil, err
			}
			pat = pt
		}
		var assertedType ast.TypeExpr
		if p.atPunc(":") {
			p.advance()
			te, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			assertedType = te
		}
		var guard ast.Expr
		if p.atKeyword("if") {
			p.advance()
			g, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			guard = g
		}
		if _, err := p.expectPunc("=>"); err != nil {
			return nil, err
		}
		body, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		cases = append(cases, ast.MatchCase{Pattern: pat, AssertedType: assertedType, Guard: guard, Body: body})
	}
	closeTok, err := p.expectPunc("}")
	if err != nil {
		return nil, err
	}
	return &ast.MatchExpr{Test: test, Cases: cases, Sp: span(start, closeTok.Span)}, nil
}

func (p *Parser) parseTypeValueExpr() (*ast.TypeValueExpr, *diag.Report) {
	start := p.cur.Span
	if _, err := p.expectKeyword("type"); err != nil {
		return nil, err
	}
	te, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	return &ast.TypeValueExpr{Type: te, Sp: span(start, te.Span())}, nil
}

// parseProcLitAfterName parses the `(params) -> R? { body }` suffix
// shared by both `proc f(...)` declarations and anonymous `proc (...) {}`
// literals; startSpan anchors the overall span at the `proc` keyword.
func (p *Parser) parseProcLitAfterName(startSpan source.Span) (*ast.ProcLit, *diag.Report) {
	if p.atKeyword("proc") {
		if _, err := p.expectKeyword("proc"); err != nil {
			return nil, err
		}
	}
	if _, err := p.expectPunc("("); err != nil {
		return nil, err
	}
	var params []ast.Param
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
		nameTok, err := p.expectId()
		if err != nil {
			return nil, err
		}
		param := ast.Param{Name: nameTok.Image, Sp: nameTok.Span}
		if p.atPunc(":") {
			p.advance()
			pt, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			param.Type = pt
		}
		params = append(params, param)
	}
	if _, err := p.expectPunc(")"); err != nil {
		return nil, err
	}
	var returnType ast.TypeExpr
	if p.atPunc("->") {
		p.advance()
		rt, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		returnType = rt
	}
	body, err := p.parseBlockExpr()
	if err != nil {
		return nil, err
	}
	return &ast.ProcLit{Params: params, ReturnType: returnType, Body: body, Sp: span(startSpan, body.Span())}, nil
}
