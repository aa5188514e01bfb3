package parser

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ejrbuss/yoku-sub000/internal/ast"
	"github.com/ejrbuss/yoku-sub000/internal/source"
)

func parseModule(t *testing.T, text string) *ast.Root {
	t.Helper()
	src := source.New("test", text)
	root, err := ParseRoot(src, true)
	if err != nil {
		t.Fatalf("parse error: %s", err.Note)
	}
	return root
}

// summarizeExpr renders an expression as a canonical parenthesized form,
// ignoring spans and resolved types, so tests can compare shapes with
// go-cmp instead of hand-building full AST literals.
func summarizeExpr(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.LiteralExpr:
		return fmt.Sprintf("%v", n.Value)
	case *ast.IdentExpr:
		return n.Name
	case *ast.BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", n.Op, summarizeExpr(n.Left), summarizeExpr(n.Right))
	case *ast.UnaryExpr:
		return fmt.Sprintf("(%s %s)", n.Op, summarizeExpr(n.Expr))
	case *ast.CallExpr:
		args := ""
		for _, a := range n.Args {
			args += " " + summarizeExpr(a)
		}
		return fmt.Sprintf("(call %s%s)", summarizeExpr(n.Callee), args)
	case *ast.GroupExpr:
		return fmt.Sprintf("(group %s)", summarizeExpr(n.Inner))
	case *ast.TupleExpr:
		items := ""
		for _, it := range n.Items {
			items += " " + summarizeExpr(it)
		}
		return fmt.Sprintf("(tuple%s)", items)
	case *ast.MemberExpr:
		return fmt.Sprintf("(. %s %s)", summarizeExpr(n.Target), n.Field)
	default:
		return fmt.Sprintf("%T", e)
	}
}

func firstExprStmt(t *testing.T, root *ast.Root) ast.Expr {
	t.Helper()
	if len(root.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(root.Items))
	}
	stmt, ok := root.Items[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected ExprStmt, got %T", root.Items[0])
	}
	return stmt.Expr
}

func TestParserBinaryPrecedence(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3;", "(+ 1 (* 2 3))"},
		{"1 * 2 + 3;", "(+ (* 1 2) 3)"},
		{"1 < 2 & 3 < 4;", "(& (< 1 2) (< 3 4))"},
		{"a | b & c;", "(| a (& b c))"},
		{"-1 + 2;", "(+ (- 1) 2)"},
	}
	for _, tt := range tests {
		root := parseModule(t, tt.src)
		got := summarizeExpr(firstExprStmt(t, root))
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("%q: mismatch (-want +got):\n%s", tt.src, diff)
		}
	}
}

func TestParserTupleBoundaryCases(t *testing.T) {
	tests := []struct {
		src      string
		wantLen  int
		wantKind string
	}{
		{"();", 0, "tuple"},
		{"(1);", -1, "group"},
		{"(1,);", 1, "tuple"},
		{"(1, 2);", 2, "tuple"},
	}
	for _, tt := range tests {
		root := parseModule(t, tt.src)
		e := firstExprStmt(t, root)
		switch tt.wantKind {
		case "tuple":
			tup, ok := e.(*ast.TupleExpr)
			if !ok {
				t.Fatalf("%q: expected TupleExpr, got %T", tt.src, e)
			}
			if len(tup.Items) != tt.wantLen {
				t.Errorf("%q: expected %d items, got %d", tt.src, tt.wantLen, len(tup.Items))
			}
		case "group":
			if _, ok := e.(*ast.GroupExpr); !ok {
				t.Fatalf("%q: expected GroupExpr, got %T", tt.src, e)
			}
		}
	}
}

func TestParserMemberAndCall(t *testing.T) {
	root := parseModule(t, "a.b.c(1, 2);")
	got := summarizeExpr(firstExprStmt(t, root))
	want := "(call (. (. a b) c) 1 2)"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestParserVarDecl(t *testing.T) {
	root := parseModule(t, "var x: Int = 1;\nconst y = 2;")
	if len(root.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(root.Items))
	}
	v1 := root.Items[0].(*ast.VarDecl)
	if v1.Const {
		t.Errorf("`var` decl should not be const")
	}
	if v1.TypeAnn == nil {
		t.Errorf("expected a type annotation")
	}
	v2 := root.Items[1].(*ast.VarDecl)
	if !v2.Const {
		t.Errorf("`const` decl should be const")
	}
}

func TestParserLoopLabelsAndBreak(t *testing.T) {
	root := parseModule(t, "loop outer { loop { break outer; } }")
	loop, ok := root.Items[0].(*ast.LoopStmt)
	if !ok {
		t.Fatalf("expected LoopStmt, got %T", root.Items[0])
	}
	if loop.Label == nil || *loop.Label != "outer" {
		t.Fatalf("expected label %q, got %v", "outer", loop.Label)
	}
	inner := loop.Body.Items[0].(*ast.LoopStmt)
	brk := inner.Body.Items[0].(*ast.BreakStmt)
	if brk.Label == nil || *brk.Label != "outer" {
		t.Errorf("expected break label %q, got %v", "outer", brk.Label)
	}
}

func TestParserIfLet(t *testing.T) {
	root := parseModule(t, "if let x := 1 { x; } else { 0; }")
	ifExpr := firstExprStmt(t, root).(*ast.IfExpr)
	if ifExpr.Pattern == nil {
		t.Fatalf("expected an `if let` pattern to be parsed")
	}
	ident, ok := ifExpr.Pattern.(*ast.IdentPattern)
	if !ok || ident.Name != "x" {
		t.Errorf("expected IdentPattern %q, got %#v", "x", ifExpr.Pattern)
	}
}

func TestParserLiteralPatternGatedInSubPatterns(t *testing.T) {
	// A plain var declaration is not an asserted context, so a literal
	// may not appear even nested inside a tuple sub-pattern.
	src := source.New("test", "var (x, 1) = (5, 1);")
	_, err := ParseRoot(src, true)
	if err == nil {
		t.Fatalf("expected a parse error for a literal sub-pattern outside an asserted context")
	}
	if err.NeedsMoreInput {
		t.Errorf("expected a hard parse error, got needs-more-input")
	}

	// The same pattern is fine once `assert` puts it in an asserted
	// context.
	src = source.New("test", "var (x, 1): _ assert = (5, 1);")
	if _, err := ParseRoot(src, true); err != nil {
		t.Errorf("expected the asserted form to parse, got: %s", err.Note)
	}
}

func TestParserReplLineNeedsMoreInput(t *testing.T) {
	src := source.New("repl", "if x {")
	_, err := ParseRoot(src, false)
	if err == nil {
		t.Fatalf("expected an error")
	}
	if !err.NeedsMoreInput {
		t.Errorf("expected NeedsMoreInput, got a hard error: %s", err.Note)
	}
}

func TestParserReplTrailingInputRejected(t *testing.T) {
	src := source.New("repl", "1; 2;")
	_, err := ParseRoot(src, false)
	if err == nil {
		t.Fatalf("expected a trailing-input error")
	}
	if err.NeedsMoreInput {
		t.Errorf("a second complete statement is a hard error, not needs-more-input")
	}
}
