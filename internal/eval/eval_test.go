package eval

import (
	"bytes"
	"testing"

	"github.com/ejrbuss/yoku-sub000/internal/check"
	"github.com/ejrbuss/yoku-sub000/internal/diag"
	"github.com/ejrbuss/yoku-sub000/internal/parser"
	"github.com/ejrbuss/yoku-sub000/internal/source"
)

// run parses, type-checks, and evaluates text as one module, returning the
// final value's pretty-print plus everything `print` wrote.
func run(t *testing.T, text string) (string, string) {
	t.Helper()
	src := source.New("test", text)
	root, err := parser.ParseRoot(src, true)
	if err != nil {
		t.Fatalf("parse error: %s", err.Note)
	}
	c := check.New("test")
	if err := check.CheckRoot(c, root); err != nil {
		t.Fatalf("check error: %s", err.Note)
	}
	var out bytes.Buffer
	e := New(&out, "test")
	v, rerr := EvalRoot(e, root)
	if rerr != nil {
		t.Fatalf("eval error: %s", rerr.Note)
	}
	return v.String(), out.String()
}

func runErr(t *testing.T, text string) *diag.Report {
	t.Helper()
	src := source.New("test", text)
	root, err := parser.ParseRoot(src, true)
	if err != nil {
		t.Fatalf("parse error: %s", err.Note)
	}
	c := check.New("test")
	if err := check.CheckRoot(c, root); err != nil {
		t.Fatalf("check error: %s", err.Note)
	}
	e := New(&bytes.Buffer{}, "test")
	_, rerr := EvalRoot(e, root)
	return rerr
}

func TestEvalArithmetic(t *testing.T) {
	v, _ := run(t, "1 + 2 * 3;")
	if v != "7" {
		t.Errorf("got %q, want %q", v, "7")
	}
}

func TestEvalClosureCapture(t *testing.T) {
	v, _ := run(t, `
var mk = proc (x: Int) -> proc (Int) -> Int {
	proc (y: Int) -> Int { x + y }
};
mk(3)(4);
`)
	if v != "7" {
		t.Errorf("got %q, want %q", v, "7")
	}
}

func TestEvalEnumMatch(t *testing.T) {
	v, _ := run(t, `
enum Color { Red, Green, Blue };
match Color.Red {
	Color.Red => 1,
	Color.Green => 2,
	Color.Blue => 3,
};
`)
	if v != "1" {
		t.Errorf("got %q, want %q", v, "1")
	}
}

func TestEvalLoopLabels(t *testing.T) {
	v, _ := run(t, `
loop outer {
	loop {
		break outer;
	};
	assert false;
};
`)
	if v != "()" {
		t.Errorf("got %q, want %q", v, "()")
	}
}

func TestEvalClosureDoesNotMutateCaller(t *testing.T) {
	v, _ := run(t, `
var x = 1;
var f = proc () -> Int { x };
var g = proc (y: Int) -> Int { y + 1 };
g(f());
x;
`)
	if v != "1" {
		t.Errorf("captured closure call should not mutate caller locals, got %q", v)
	}
}

func TestEvalStructPrettyPrint(t *testing.T) {
	v, _ := run(t, `
struct Point { x: Int, y: Int };
Point { x = 1, y = 2 };
`)
	if v != "Point { x = 1, y = 2 }" {
		t.Errorf("got %q", v)
	}
}

func TestEvalTupleForm(t *testing.T) {
	v, _ := run(t, "(1, 2, 3);")
	if v != "(1, 2, 3)" {
		t.Errorf("got %q", v)
	}
	v, _ = run(t, "(1,);")
	if v != "(1,)" {
		t.Errorf("1-tuple should pretty-print with a trailing comma, got %q", v)
	}
	v, _ = run(t, "();")
	if v != "()" {
		t.Errorf("empty tuple is Unit, got %q", v)
	}
}

func TestEvalProcedurePrettyPrint(t *testing.T) {
	v, _ := run(t, `
proc add(x: Int, y: Int) -> Int { x + y };
add;
`)
	if v != "proc add (Int, Int) -> Int" {
		t.Errorf("got %q", v)
	}
}

func TestEvalVariantFieldsMatch(t *testing.T) {
	v, _ := run(t, `
enum Shape { Dot, Line(Int) };
match Shape.Line(3) {
	Shape.Dot => 0,
	Shape.Line(n) => n,
};
`)
	if v != "3" {
		t.Errorf("got %q, want %q", v, "3")
	}
}

func TestEvalStructEqualityIsStructural(t *testing.T) {
	v, _ := run(t, `
struct Point { x: Int, y: Int };
Point { x = 1, y = 2 } == Point { x = 1, y = 2 };
`)
	if v != "true" {
		t.Errorf("separately constructed structs with equal fields should compare equal, got %q", v)
	}
	v, _ = run(t, `
struct Point { x: Int, y: Int };
Point { x = 1, y = 2 } === Point { x = 1, y = 2 };
`)
	if v != "false" {
		t.Errorf("identity comparison should distinguish separately constructed structs, got %q", v)
	}
}

func TestEvalReturnFromProcedure(t *testing.T) {
	v, _ := run(t, `
proc f(x: Int) -> Int { return x + 1; };
f(2);
`)
	if v != "3" {
		t.Errorf("got %q, want %q", v, "3")
	}
}

func TestEvalMatchWithoutScrutinee(t *testing.T) {
	v, _ := run(t, `
var x = 2;
match {
	_ if x == 1 => 1,
	else => 9,
};
`)
	if v != "9" {
		t.Errorf("got %q, want %q", v, "9")
	}
}

func TestEvalIfLetDestructuring(t *testing.T) {
	v, _ := run(t, `
if let (a, b) := (1, 2) { a + b } else { 0 };
`)
	if v != "3" {
		t.Errorf("got %q, want %q", v, "3")
	}
}

func TestEvalThrowIsRuntimeError(t *testing.T) {
	err := runErr(t, `throw "boom";`)
	if err == nil {
		t.Fatalf("expected a runtime error")
	}
	if err.Kind != diag.RunError {
		t.Errorf("expected RunError, got %v", err.Kind)
	}
}

func TestEvalAssertFailureIsRuntimeError(t *testing.T) {
	err := runErr(t, "assert 1 == 2;")
	if err == nil {
		t.Fatalf("expected a runtime error")
	}
	if err.Kind != diag.RunError {
		t.Errorf("expected RunError, got %v", err.Kind)
	}
}

func TestEvalTestDeclRunsOnlyInTestMode(t *testing.T) {
	src := source.New("test", `test "always passes" { assert true; }`)
	root, err := parser.ParseRoot(src, true)
	if err != nil {
		t.Fatalf("parse error: %s", err.Note)
	}
	c := check.New("test")
	if err := check.CheckRoot(c, root); err != nil {
		t.Fatalf("check error: %s", err.Note)
	}

	var out bytes.Buffer
	e := New(&out, "test")
	if _, rerr := EvalRoot(e, root); rerr != nil {
		t.Fatalf("eval error: %s", rerr.Note)
	}
	if out.String() != "" {
		t.Errorf("test declarations should be inert outside test mode, got output %q", out.String())
	}

	out.Reset()
	e2 := New(&out, "test")
	e2.RunTests = true
	if _, rerr := EvalRoot(e2, root); rerr != nil {
		t.Fatalf("eval error: %s", rerr.Note)
	}
	if out.Len() == 0 {
		t.Errorf("expected a PASS/FAIL line in test mode")
	}
}
