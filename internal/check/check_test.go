package check

import (
	"strings"
	"testing"

	"github.com/ejrbuss/yoku-sub000/internal/diag"
	"github.com/ejrbuss/yoku-sub000/internal/parser"
	"github.com/ejrbuss/yoku-sub000/internal/source"
)

func checkText(t *testing.T, text string) *diag.Report {
	t.Helper()
	src := source.New("test", text)
	root, err := parser.ParseRoot(src, true)
	if err != nil {
		t.Fatalf("parse error: %s", err.Note)
	}
	c := New("test")
	return CheckRoot(c, root)
}

func TestCheckTypeFailureMentionsBothTypes(t *testing.T) {
	err := checkText(t, `var x: Int = "hi";`)
	if err == nil {
		t.Fatalf("expected a type error")
	}
	if err.Kind != diag.TypeError {
		t.Errorf("expected TypeError, got %v", err.Kind)
	}
	if !strings.Contains(err.Note, "Str") || !strings.Contains(err.Note, "Int") {
		t.Errorf("expected note to mention both Str and Int, got %q", err.Note)
	}
}

func TestCheckAssignConstIsScopeError(t *testing.T) {
	err := checkText(t, "const x = 1;\nx = 2;")
	if err == nil {
		t.Fatalf("expected an error")
	}
	if err.Kind == diag.TypeError {
		t.Errorf("assignment to a const should be a resolution/scope error, not a type error, got %v: %s", err.Kind, err.Note)
	}
}

func TestCheckOkModulePassesCleanly(t *testing.T) {
	err := checkText(t, "var x: Int = 1;\nvar y = x + 2;")
	if err != nil {
		t.Fatalf("unexpected error: %s", err.Note)
	}
}

func TestCheckDuplicateFieldInitializer(t *testing.T) {
	err := checkText(t, `
struct Point { x: Int, y: Int };
Point { x = 1, x = 2, y = 3 };
`)
	if err == nil {
		t.Fatalf("expected a type error for a duplicate field initializer")
	}
	if err.Kind != diag.TypeError {
		t.Errorf("expected TypeError, got %v", err.Kind)
	}
	if !strings.Contains(err.Note, "duplicate") || !strings.Contains(err.Note, "x") {
		t.Errorf("expected note to name the duplicated field, got %q", err.Note)
	}
}

func TestCheckModuleTypeName(t *testing.T) {
	// The bare identifier `Point` names the struct's module/namespace
	// binding (static type *types.Module), distinct from a `Point{...}`
	// literal (static type *types.Struct) — only the former is
	// assignable into the pre-declared `Module` name.
	err := checkText(t, `
struct Point { x: Int, y: Int };
var p: Module = Point;
`)
	if err != nil {
		t.Fatalf("expected Point's module binding to be assignable into the pre-declared Module name, got: %s", err.Note)
	}
}
