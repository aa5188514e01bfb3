package eval

import (
	"fmt"

	"github.com/ejrbuss/yoku-sub000/internal/ast"
	"github.com/ejrbuss/yoku-sub000/internal/diag"
	"github.com/ejrbuss/yoku-sub000/internal/types"
	"github.com/fatih/color"
)

var (
	testPass = color.New(color.FgGreen).SprintFunc()
	testFail = color.New(color.FgRed).SprintFunc()
)

func (e *Evaluator) evalDecl(d ast.Decl) *diag.Report {
	switch decl := d.(type) {
	case *ast.VarDecl:
		return e.evalVarDecl(decl)
	case *ast.ProcDecl:
		return e.evalProcDecl(decl)
	case *ast.TypeAliasDecl:
		return nil
	case *ast.StructDecl:
		return e.evalStructDecl(decl)
	case *ast.EnumDecl:
		return e.evalEnumDecl(decl)
	case *ast.TestDecl:
		return e.evalTestDecl(decl)
	}
	return diag.New(diag.RunError, e.Path, d.Span(), "unsupported declaration")
}

func (e *Evaluator) evalVarDecl(d *ast.VarDecl) *diag.Report {
	v, sig, err := e.evalExpr(d.Init)
	if err != nil {
		return err
	}
	if sig.kind != sigNone {
		return diag.New(diag.RunError, e.Path, d.Sp, "break/continue/return outside a procedure or loop")
	}
	return e.bindPattern(d.Pattern, v, !d.Const)
}

// evalProcDecl closes over the current scope before declaring the
// procedure's own name: for a top-level declaration the current scope is
// the global frame, and Capture shares that frame by pointer, so the
// later Declare below is visible inside the closure too, enabling
// self-recursion (spec §3.4's Capture semantics; no such guarantee holds
// for a proc declared inside a block).
func (e *Evaluator) evalProcDecl(d *ast.ProcDecl) *diag.Report {
	params := make([]string, len(d.Lit.Params))
	for i, p := range d.Lit.Params {
		params[i] = p.Name
	}
	name := d.Name
	proc := &ProcedureValue{
		Name: &name,
		Typ:  d.Lit.ResolvedType().(*types.Proc),
		Impl: &UserProc{Params: params, Body: d.Lit.Body, Captured: e.Values.Capture()},
	}
	if err := e.Values.Declare(d.Name, false, true, proc); err != nil {
		return diag.New(diag.RunError, e.Path, d.Sp, err.Error())
	}
	return nil
}

func (e *Evaluator) evalStructDecl(d *ast.StructDecl) *diag.Report {
	st := d.Resolved.(*types.Struct)
	mod := &types.Module{Name: d.Name, Assoc: st, Fields: map[string]types.Type{}, Types: map[string]types.Type{}}
	if err := e.Values.Declare(d.Name, false, true, &ModuleValue{Typ: mod}); err != nil {
		return diag.New(diag.RunError, e.Path, d.Sp, err.Error())
	}
	return nil
}

func (e *Evaluator) evalEnumDecl(d *ast.EnumDecl) *diag.Report {
	en := d.Resolved.(*types.Enum)
	mod := &types.Module{Name: d.Name, Assoc: en, Fields: map[string]types.Type{}, Types: map[string]types.Type{}}
	if err := e.Values.Declare(d.Name, false, true, &ModuleValue{Typ: mod}); err != nil {
		return diag.New(diag.RunError, e.Path, d.Sp, err.Error())
	}
	return nil
}

// evalTestDecl runs a test declaration's body only when the driver is in
// test mode (spec §4.5); outside test mode a test declaration is inert. A
// failing body is reported as a colored FAIL line rather than aborting the
// run, so the remaining tests in the module still execute.
func (e *Evaluator) evalTestDecl(d *ast.TestDecl) *diag.Report {
	if !e.RunTests {
		return nil
	}
	_, sig, err := e.evalBlockExpr(d.Body)
	if err != nil {
		fmt.Fprintf(e.Out, "%s %s: %s\n", testFail("FAIL"), d.Name, err.Note)
		return nil
	}
	if sig.kind != sigNone {
		fmt.Fprintf(e.Out, "%s %s: break/continue/return outside a procedure or loop\n", testFail("FAIL"), d.Name)
		return nil
	}
	fmt.Fprintf(e.Out, "%s %s\n", testPass("PASS"), d.Name)
	return nil
}
