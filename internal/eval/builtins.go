package eval

import (
	"fmt"
	"time"

	"github.com/ejrbuss/yoku-sub000/internal/diag"
	"github.com/ejrbuss/yoku-sub000/internal/types"
)

func (e *Evaluator) declareBuiltins() {
	e.declareBuiltin("print", []types.Type{types.AnyType}, types.UnitType, func(args []Value) (Value, *diag.Report) {
		fmt.Fprintln(e.Out, args[0].String())
		return UnitValue{}, nil
	})
	e.declareBuiltin("clock", nil, types.IntType, func(args []Value) (Value, *diag.Report) {
		return NewInt(time.Now().UnixNano() / int64(time.Millisecond)), nil
	})
	e.declareBuiltin("cat", []types.Type{types.AnyType, types.AnyType}, types.StrType, func(args []Value) (Value, *diag.Report) {
		return StrValue(args[0].String() + args[1].String()), nil
	})
	e.declareBuiltin("print_type", []types.Type{types.AnyType}, types.StrType, func(args []Value) (Value, *diag.Report) {
		return StrValue(fmt.Sprint(args[0].Type())), nil
	})
}

func (e *Evaluator) declareBuiltin(name string, params []types.Type, ret types.Type, fn func([]Value) (Value, *diag.Report)) {
	proc := &ProcedureValue{
		Name: &name,
		Typ:  &types.Proc{Params: params, Returns: ret},
		Impl: &Builtin{Fn: fn},
	}
	e.Values.Declare(name, false, false, proc)
}
