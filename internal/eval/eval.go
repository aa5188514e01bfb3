package eval

import (
	"io"

	"github.com/ejrbuss/yoku-sub000/internal/ast"
	"github.com/ejrbuss/yoku-sub000/internal/diag"
	"github.com/ejrbuss/yoku-sub000/internal/types"
)

// Evaluator walks an already-checked AST, threading a value scope that
// mirrors the checker's value-type scope frame for frame (spec §4.6).
type Evaluator struct {
	Values *types.Scope[Value]
	Out    io.Writer
	Path   string

	// RunTests gates `test` declaration execution (spec §4.5): a test
	// declaration is only executed when the driver runs in test mode.
	RunTests bool

	constants map[*types.Variant]*EnumValue
}

// New creates an Evaluator with the builtin procedures bound in the
// global frame, writing `print` output to out.
func New(out io.Writer, path string) *Evaluator {
	e := &Evaluator{
		Values:    types.NewScope[Value](),
		Out:       out,
		Path:      path,
		constants: map[*types.Variant]*EnumValue{},
	}
	e.declareBuiltins()
	return e
}

// signalKind distinguishes the three forms of non-local control flow a
// block can unwind through. evalExpr/evalStmt thread a signal value
// rather than using Go panics for these (spec §4.6).
type signalKind int

const (
	sigNone signalKind = iota
	sigBreak
	sigContinue
	sigReturn
)

type signal struct {
	kind  signalKind
	label *string
	value Value
}

var noSignal = signal{kind: sigNone}

// EvalNode evaluates one root-level Decl or Stmt, returning its value
// (Unit for declarations) and any unwound signal, which EvalRoot and the
// REPL driver both treat as an error at the top level.
func (e *Evaluator) EvalNode(n ast.Node) (Value, signal, *diag.Report) {
	switch node := n.(type) {
	case ast.Decl:
		err := e.evalDecl(node)
		return UnitValue{}, noSignal, err
	case ast.Stmt:
		return e.evalStmt(node)
	}
	return nil, noSignal, diag.New(diag.RunError, e.Path, n.Span(), "unsupported top-level node")
}

// EvalRoot evaluates every item of root in order, returning the value of
// the last item (module-level bodies read like a block body).
func EvalRoot(e *Evaluator, root *ast.Root) (Value, *diag.Report) {
	result := Value(UnitValue{})
	for _, item := range root.Items {
		v, sig, err := e.EvalNode(item)
		if err != nil {
			return nil, err
		}
		if sig.kind != sigNone {
			return nil, diag.New(diag.RunError, e.Path, item.Span(), "break/continue/return outside a procedure or loop")
		}
		result = v
	}
	return result, nil
}
