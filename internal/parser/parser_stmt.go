package parser

import (
	"github.com/ejrbuss/yoku-sub000/internal/ast"
	"github.com/ejrbuss/yoku-sub000/internal/diag"
)

// parseOptionalLabel parses a bare identifier label, used by loop/break/
// continue (spec §6.3: `loop outer { … }`, `break outer`, …).
func (p *Parser) parseOptionalLabel() *string {
	if p.atId() {
		name := p.cur.Image
		p.advance()
		return &name
	}
	return nil
}

func (p *Parser) parseBreakStmt() (*ast.BreakStmt, *diag.Report) {
	start := p.cur.Span
	if _, err := p.expectKeyword("break"); err != nil {
		return nil, err
	}
	label := p.parseOptionalLabel()
	return &ast.BreakStmt{Label: label, Sp: span(start, p.cur.Span)}, nil
}

func (p *Parser) parseContinueStmt() (*ast.ContinueStmt, *diag.Report) {
	start := p.cur.Span
	if _, err := p.expectKeyword("continue"); err != nil {
		return nil, err
	}
	label := p.parseOptionalLabel()
	return &ast.ContinueStmt{Label: label, Sp: span(start, p.cur.Span)}, nil
}

func (p *Parser) parseReturnStmt() (*ast.ReturnStmt, *diag.Report) {
	start := p.cur.Span
	if _, err := p.expectKeyword("return"); err != nil {
		return nil, err
	}
	var value ast.Expr
	if !p.atPunc(";") && !p.atPunc("}") && !p.atEOF() {
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		value = v
	}
	return &ast.ReturnStmt{Value: value, Sp: span(start, p.cur.Span)}, nil
}

func (p *Parser) parseAssertStmt() (*ast.AssertStmt, *diag.Report) {
	start := p.cur.Span
	if _, err := p.expectKeyword("assert"); err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.AssertStmt{Expr: e, Sp: span(start, p.cur.Span)}, nil
}

func (p *Parser) parseLoopStmt() (*ast.LoopStmt, *diag.Report) {
	start := p.cur.Span
	if _, err := p.expectKeyword("loop"); err != nil {
		return nil, err
	}
	var label *string
	if p.atId() {
		// An identifier here is always a label: a loop body must start
		// with `{`, which an identifier never does.
		label = p.parseOptionalLabel()
	}
	body, err := p.parseBlockExpr()
	if err != nil {
		return nil, err
	}
	return &ast.LoopStmt{Label: label, Body: body, Sp: span(start, p.cur.Span)}, nil
}

func (p *Parser) parseWhileStmt() (*ast.WhileStmt, *diag.Report) {
	start := p.cur.Span
	if _, err := p.expectKeyword("while"); err != nil {
		return nil, err
	}
	savedNSL := p.noStructLiteral
	p.noStructLiteral = true
	test, err := p.parseExpr()
	p.noStructLiteral = savedNSL
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlockExpr()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Test: test, Body: body, Sp: span(start, p.cur.Span)}, nil
}

// parseStmtOrAssign handles the three remaining block-item forms that
// share an expression prefix: assign-to-variable, assign-to-field, and a
// plain expression statement (spec §3.2).
func (p *Parser) parseStmtOrAssign() (ast.Stmt, *diag.Report) {
	start := p.cur.Span
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.atOp("=") {
		return &ast.ExprStmt{Expr: e, Sp: span(start, p.cur.Span)}, nil
	}
	p.advance()
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	switch target := e.(type) {
	case *ast.IdentExpr:
		return &ast.AssignVarStmt{Target: target.Name, Value: value, Sp: span(start, p.cur.Span)}, nil
	case *ast.MemberExpr:
		return &ast.AssignFieldStmt{Target: target.Target, Field: target.Field, Value: value, Sp: span(start, p.cur.Span)}, nil
	default:
		return nil, diag.New(diag.ParseError, p.path, e.Span(), "invalid left-hand side for assignment")
	}
}
