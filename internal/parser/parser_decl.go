package parser

import (
	"github.com/ejrbuss/yoku-sub000/internal/ast"
	"github.com/ejrbuss/yoku-sub000/internal/diag"
	"github.com/ejrbuss/yoku-sub000/internal/lexer"
)

// consumeTerminator implements the `;`-termination / closing-`}`-relaxation
// rule from spec §4.3.
func (p *Parser) consumeTerminator(closer string) *diag.Report {
	if p.atPunc(";") {
		p.advance()
		return nil
	}
	if closer != "" && p.atPunc(closer) {
		return nil
	}
	if closer == "" && p.atEOF() {
		return nil
	}
	return p.failExpected("';'")
}

// parseBlockItem parses one declaration or statement and its terminator.
// closer is the block's closing delimiter ("}" for a block body, "" for a
// module/REPL root terminated by end-of-input).
func (p *Parser) parseBlockItem(closer string) (ast.Node, *diag.Report) {
	var item ast.Node
	var err *diag.Report

	switch {
	case p.atKeyword("var") || p.atKeyword("const"):
		item, err = p.parseVarDecl()
	case p.atKeyword("proc") && p.peek.Kind == lexer.Id:
		item, err = p.parseProcDecl()
	case p.atKeyword("struct"):
		item, err = p.parseStructDecl()
	case p.atKeyword("enum"):
		item, err = p.parseEnumDecl()
	case p.atKeyword("type"):
		item, err = p.parseTypeAliasDecl()
	case p.atKeyword("test"):
		item, err = p.parseTestDecl()
	case p.atKeyword("break"):
		item, err = p.parseBreakStmt()
	case p.atKeyword("continue"):
		item, err = p.parseContinueStmt()
	case p.atKeyword("return"):
		item, err = p.parseReturnStmt()
	case p.atKeyword("assert"):
		item, err = p.parseAssertStmt()
	case p.atKeyword("loop"):
		item, err = p.parseLoopStmt()
	case p.atKeyword("while"):
		item, err = p.parseWhileStmt()
	default:
		item, err = p.parseStmtOrAssign()
	}
	if err != nil {
		return nil, err
	}
	if err := p.consumeTerminator(closer); err != nil {
		return nil, err
	}
	return item, nil
}

func (p *Parser) parseVarDecl() (*ast.VarDecl, *diag.Report) {
	start := p.cur.Span
	isConst := p.atKeyword("const")
	if isConst {
		p.advance()
	} else if _, err := p.expectKeyword("var"); err != nil {
		return nil, err
	}

	// The `assert` keyword, when present, follows the type annotation
	// (`var x: T assert = e;`) — after the pattern. Look ahead for it so
	// literal patterns can be gated correctly in `var … assert` contexts
	// (spec §4.3, §8).
	pat, err := p.parsePattern(p.lookaheadHasAssert())
	if err != nil {
		return nil, err
	}

	var typeAnn ast.TypeExpr
	assertFlag := false
	if p.atPunc(":") {
		p.advance()
		typeAnn, err = p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		if p.atKeyword("assert") {
			p.advance()
			assertFlag = true
		}
	}

	if _, err := p.expectOp("="); err != nil {
		return nil, err
	}
	init, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	return &ast.VarDecl{
		Const: isConst, Pattern: pat, TypeAnn: typeAnn, Assert: assertFlag,
		Init: init, Sp: span(start, p.cur.Span),
	}, nil
}

func (p *Parser) parseProcDecl() (*ast.ProcDecl, *diag.Report) {
	start := p.cur.Span
	if _, err := p.expectKeyword("proc"); err != nil {
		return nil, err
	}
	nameTok, err := p.expectId()
	if err != nil {
		return nil, err
	}
	lit, err := p.parseProcLitAfterName(start)
	if err != nil {
		return nil, err
	}
	return &ast.ProcDecl{Name: nameTok.Image, Lit: lit, Sp: span(start, p.cur.Span)}, nil
}

func (p *Parser) parseTypeAliasDecl() (*ast.TypeAliasDecl, *diag.Report) {
	start := p.cur.Span
	if _, err := p.expectKeyword("type"); err != nil {
		return nil, err
	}
	nameTok, err := p.expectId()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectOp("="); err != nil {
		return nil, err
	}
	te, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	return &ast.TypeAliasDecl{Name: nameTok.Image, Type: te, Sp: span(start, p.cur.Span)}, nil
}

func (p *Parser) parseStructFieldList(closer string) ([]ast.StructFieldDecl, bool, *diag.Report) {
	var fields []ast.StructFieldDecl
	tupleForm := false
	first := true
	for !p.atPunc(closer) {
		if !first {
			if _, err := p.expectPunc(","); err != nil {
				return nil, false, err
			}
			if p.atPunc(closer) {
				break
			}
		}
		first = false

		mutable := false
		if p.atKeyword("var") {
			mutable = true
			p.advance()
		}
		if p.atId() && (p.peek.Kind == lexer.Punc && p.peek.Image == ":") {
			nameTok, _ := p.expectId()
			p.advance() // ':'
			ft, err := p.parseTypeExpr()
			if err != nil {
				return nil, false, err
			}
			fields = append(fields, ast.StructFieldDecl{Mutable: mutable, Name: nameTok.Image, Type: ft})
		} else {
			// Tuple-form positional field: just a type expression.
			tupleForm = true
			ft, err := p.parseTypeExpr()
			if err != nil {
				return nil, false, err
			}
			fields = append(fields, ast.StructFieldDecl{Mutable: mutable, Type: ft})
		}
	}
	return fields, tupleForm, nil
}

func (p *Parser) parseStructDecl() (*ast.StructDecl, *diag.Report) {
	start := p.cur.Span
	if _, err := p.expectKeyword("struct"); err != nil {
		return nil, err
	}
	nameTok, err := p.expectId()
	if err != nil {
		return nil, err
	}

	decl := &ast.StructDecl{Name: nameTok.Image}
	switch {
	case p.atPunc("{"):
		p.advance()
		fields, _, err := p.parseStructFieldList("}")
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunc("}"); err != nil {
			return nil, err
		}
		decl.Fields = fields
	case p.atPunc("("):
		p.advance()
		fields, _, err := p.parseStructFieldList(")")
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunc(")"); err != nil {
			return nil, err
		}
		decl.TupleForm = true
		decl.Fields = fields
	default:
		return nil, p.failExpected("'{' or '(' in struct declaration")
	}
	decl.Sp = span(start, p.cur.Span)
	return decl, nil
}

func (p *Parser) parseEnumDecl() (*ast.EnumDecl, *diag.Report) {
	start := p.cur.Span
	if _, err := p.expectKeyword("enum"); err != nil {
		return nil, err
	}
	nameTok, err := p.expectId()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunc("{"); err != nil {
		return nil, err
	}

	var variants []ast.EnumVariantDecl
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

		vTok, err := p.expectId()
		if err != nil {
			return nil, err
		}
		variant := ast.EnumVariantDecl{Name: vTok.Image, Constant: true}
		switch {
		case p.atPunc("("):
			p.advance()
			fields, _, err := p.parseStructFieldList(")")
			if err != nil {
				return nil, err
			}
			if _, err := p.expectPunc(")"); err != nil {
				return nil, err
			}
			variant.TupleForm = true
			variant.Fields = fields
			variant.Constant = false
		case p.atPunc("{"):
			p.advance()
			fields, _, err := p.parseStructFieldList("}")
			if err != nil {
				return nil, err
			}
			if _, err := p.expectPunc("}"); err != nil {
				return nil, err
			}
			variant.Fields = fields
			variant.Constant = false
		}
		variants = append(variants, variant)
	}
	if _, err := p.expectPunc("}"); err != nil {
		return nil, err
	}
	return &ast.EnumDecl{Name: nameTok.Image, Variants: variants, Sp: span(start, p.cur.Span)}, nil
}

func (p *Parser) parseTestDecl() (*ast.TestDecl, *diag.Report) {
	start := p.cur.Span
	if _, err := p.expectKeyword("test"); err != nil {
		return nil, err
	}
	if p.cur.Kind != lexer.Lit {
		return nil, p.failExpected("string literal test name")
	}
	name, _ := p.cur.Value.(string)
	p.advance()
	body, err := p.parseBlockExpr()
	if err != nil {
		return nil, err
	}
	return &ast.TestDecl{Name: name, Body: body, Sp: span(start, p.cur.Span)}, nil
}
