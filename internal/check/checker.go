// Package check implements Yoku's bidirectional type checker: a single
// destination-type-threading pass over the AST that resolves names against
// lexical scopes, reconciles structural/nominal types, and annotates the
// AST in place.
package check

import (
	"github.com/ejrbuss/yoku-sub000/internal/ast"
	"github.com/ejrbuss/yoku-sub000/internal/diag"
	"github.com/ejrbuss/yoku-sub000/internal/types"
)

// Checker carries the parallel lexical scopes the checker stage works
// over: type-name bindings, the static type of every value binding, and
// the loop labels currently in scope.
type Checker struct {
	Path   string
	Types  *types.Scope[types.Type]
	Values *types.Scope[types.Type]
	Labels types.Labels

	inProc         bool
	expectedReturn types.Type
}

// New creates a Checker with the pre-declared primitive types and builtin
// procedures bound in the global frame (spec §6.5).
func New(path string) *Checker {
	c := &Checker{
		Path:   path,
		Types:  types.NewScope[types.Type](),
		Values: types.NewScope[types.Type](),
	}
	c.declarePrimitives()
	c.declareBuiltins()
	return c
}

func (c *Checker) declarePrimitives() {
	prims := []struct {
		name string
		typ  types.Type
	}{
		{"Bool", types.BoolType}, {"Int", types.IntType}, {"Float", types.FloatType},
		{"Str", types.StrType}, {"Type", types.TypeType}, {"Any", types.AnyType},
		{"Never", types.NeverType}, {"Module", types.ModuleNameType},
	}
	for _, p := range prims {
		c.Types.Declare(p.name, false, false, p.typ)
	}
}

func (c *Checker) declareBuiltins() {
	proc := func(params []types.Type, ret types.Type) types.Type {
		return &types.Proc{Params: params, Returns: ret}
	}
	c.Values.Declare("print", false, false, proc([]types.Type{types.AnyType}, types.UnitType))
	c.Values.Declare("clock", false, false, proc(nil, types.IntType))
	c.Values.Declare("cat", false, false, proc([]types.Type{types.AnyType, types.AnyType}, types.StrType))
	c.Values.Declare("print_type", false, false, proc([]types.Type{types.AnyType}, types.StrType))
}

// Snapshot captures enough state to roll back a failed REPL check (spec
// §4.6/§7): a deep clone of every scope frame.
type Snapshot struct {
	types  *types.Scope[types.Type]
	values *types.Scope[types.Type]
}

// Snapshot clones the current checker state so a failed REPL input never
// leaves stray declarations behind.
func (c *Checker) Snapshot() Snapshot {
	return Snapshot{types: c.Types.Clone(), values: c.Values.Clone()}
}

// Restore resets the checker back to a prior Snapshot.
func (c *Checker) Restore(s Snapshot) {
	c.Types = s.types
	c.Values = s.values
}

// CheckNode type-checks one root-level Decl or Stmt.
func (c *Checker) CheckNode(n ast.Node) *diag.Report {
	switch node := n.(type) {
	case ast.Decl:
		return c.checkDecl(node)
	case ast.Stmt:
		return c.checkStmt(node)
	}
	return diag.New(diag.TypeError, c.Path, n.Span(), "unsupported top-level node")
}

// CheckRoot type-checks every item of root in order.
func CheckRoot(c *Checker, root *ast.Root) *diag.Report {
	for _, item := range root.Items {
		if err := c.CheckNode(item); err != nil {
			return err
		}
	}
	return nil
}
