package eval

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/ejrbuss/yoku-sub000/internal/ast"
	"github.com/ejrbuss/yoku-sub000/internal/diag"
	"github.com/ejrbuss/yoku-sub000/internal/source"
	"github.com/ejrbuss/yoku-sub000/internal/types"
)

func (e *Evaluator) evalExpr(expr ast.Expr) (Value, signal, *diag.Report) {
	switch ex := expr.(type) {
	case *ast.BlockExpr:
		return e.evalBlockExpr(ex)
	case *ast.TupleExpr:
		return e.evalTupleExpr(ex)
	case *ast.StructExpr:
		return e.evalStructExpr(ex)
	case *ast.EnumVariantExpr:
		return e.evalEnumVariantExpr(ex)
	case *ast.GroupExpr:
		return e.evalExpr(ex.Inner)
	case *ast.IfExpr:
		return e.evalIfExpr(ex)
	case *ast.MatchExpr:
		return e.evalMatchExpr(ex)
	case *ast.ThrowExpr:
		return e.evalThrowExpr(ex)
	case *ast.ProcLit:
		return e.evalProcLit(ex)
	case *ast.TypeValueExpr:
		return TypeValue{T: ex.Referent}, noSignal, nil
	case *ast.BinaryExpr:
		return e.evalBinaryExpr(ex)
	case *ast.UnaryExpr:
		return e.evalUnaryExpr(ex)
	case *ast.MemberExpr:
		return e.evalMemberExpr(ex)
	case *ast.CallExpr:
		return e.evalCallExpr(ex)
	case *ast.LiteralExpr:
		return e.evalLiteralExpr(ex)
	case *ast.IdentExpr:
		return e.evalIdentExpr(ex)
	}
	return nil, noSignal, diag.New(diag.RunError, e.Path, expr.Span(), "unsupported expression")
}

func (e *Evaluator) evalBlockExpr(b *ast.BlockExpr) (Value, signal, *diag.Report) {
	e.Values.Push()
	defer e.Values.Pop()

	result := Value(UnitValue{})
	for i, item := range b.Items {
		isLast := i == len(b.Items)-1
		switch node := item.(type) {
		case ast.Decl:
			if err := e.evalDecl(node); err != nil {
				return nil, noSignal, err
			}
		case ast.Stmt:
			if isLast {
				if es, ok := node.(*ast.ExprStmt); ok {
					v, sig, err := e.evalExpr(es.Expr)
					if err != nil || sig.kind != sigNone {
						return nil, sig, err
					}
					result = v
					continue
				}
			}
			_, sig, err := e.evalStmt(node)
			if err != nil || sig.kind != sigNone {
				return nil, sig, err
			}
		default:
			return nil, noSignal, diag.New(diag.RunError, e.Path, item.Span(), "invalid block item")
		}
	}
	return result, noSignal, nil
}

func (e *Evaluator) evalTupleExpr(ex *ast.TupleExpr) (Value, signal, *diag.Report) {
	items := make([]Value, len(ex.Items))
	for i, it := range ex.Items {
		v, sig, err := e.evalExpr(it)
		if err != nil || sig.kind != sigNone {
			return nil, sig, err
		}
		items[i] = v
	}
	return &TupleValue{Items: items, Typ: ex.ResolvedType().(*types.Tuple)}, noSignal, nil
}

func (e *Evaluator) evalFieldInits(fields []types.Field, inits []ast.FieldInit, spread ast.Expr) (map[string]Value, signal, *diag.Report) {
	result := make(map[string]Value, len(fields))
	posIdx := 0
	for _, fi := range inits {
		name := fi.Name
		if name == "" {
			name = fields[posIdx].Name
			posIdx++
		}
		v, sig, err := e.evalExpr(fi.Value)
		if err != nil || sig.kind != sigNone {
			return nil, sig, err
		}
		result[name] = v
	}
	if spread != nil {
		sv, sig, err := e.evalExpr(spread)
		if err != nil || sig.kind != sigNone {
			return nil, sig, err
		}
		switch s := sv.(type) {
		case *StructValue:
			for k, v := range s.Fields {
				if _, ok := result[k]; !ok {
					result[k] = v
				}
			}
		case *EnumValue:
			for k, v := range s.Fields {
				if _, ok := result[k]; !ok {
					result[k] = v
				}
			}
		}
	}
	return result, noSignal, nil
}

func (e *Evaluator) evalStructExpr(ex *ast.StructExpr) (Value, signal, *diag.Report) {
	st := ex.ResolvedType().(*types.Struct)
	fields, sig, err := e.evalFieldInits(st.Fields, ex.Fields, ex.Spread)
	if err != nil || sig.kind != sigNone {
		return nil, sig, err
	}
	return &StructValue{Fields: fields, Typ: st}, noSignal, nil
}

func (e *Evaluator) evalEnumVariantExpr(ex *ast.EnumVariantExpr) (Value, signal, *diag.Report) {
	v := ex.ResolvedType().(*types.Variant)
	fields, sig, err := e.evalFieldInits(v.Fields, ex.Fields, ex.Spread)
	if err != nil || sig.kind != sigNone {
		return nil, sig, err
	}
	return &EnumValue{Fields: fields, Typ: v}, noSignal, nil
}

// evalIfExpr scopes `if let` bindings to the then branch: the frame
// holding them is dropped before the else branch runs, so a partial
// match never leaks phantom bindings into it.
func (e *Evaluator) evalIfExpr(ex *ast.IfExpr) (Value, signal, *diag.Report) {
	tv, sig, err := e.evalExpr(ex.Test)
	if err != nil || sig.kind != sigNone {
		return nil, sig, err
	}

	if ex.Pattern != nil {
		e.Values.Push()
		matched, merr := e.matchPattern(ex.Pattern, tv, false)
		if merr != nil {
			e.Values.Pop()
			return nil, noSignal, merr
		}
		if matched {
			v, sig, err := e.evalExpr(ex.Then)
			e.Values.Pop()
			return v, sig, err
		}
		e.Values.Pop()
	} else if b, _ := tv.(BoolValue); bool(b) {
		return e.evalExpr(ex.Then)
	}

	if ex.Else != nil {
		return e.evalExpr(ex.Else)
	}
	return UnitValue{}, noSignal, nil
}

func (e *Evaluator) evalMatchExpr(ex *ast.MatchExpr) (Value, signal, *diag.Report) {
	// A match with no test scrutinizes Unit; its cases are guard-driven.
	tv := Value(UnitValue{})
	if ex.Test != nil {
		v, sig, err := e.evalExpr(ex.Test)
		if err != nil || sig.kind != sigNone {
			return nil, sig, err
		}
		tv = v
	}
	for _, cs := range ex.Cases {
		e.Values.Push()
		matched := true
		if cs.Pattern != nil {
			m, merr := e.matchPattern(cs.Pattern, tv, false)
			if merr != nil {
				e.Values.Pop()
				return nil, noSignal, merr
			}
			matched = m
		}
		if matched && cs.Guard != nil {
			gv, gsig, gerr := e.evalExpr(cs.Guard)
			if gerr != nil || gsig.kind != sigNone {
				e.Values.Pop()
				return nil, gsig, gerr
			}
			gb, _ := gv.(BoolValue)
			matched = bool(gb)
		}
		if matched {
			v, sig, err := e.evalExpr(cs.Body)
			e.Values.Pop()
			return v, sig, err
		}
		e.Values.Pop()
	}
	return UnitValue{}, noSignal, nil
}

func (e *Evaluator) evalThrowExpr(ex *ast.ThrowExpr) (Value, signal, *diag.Report) {
	v, sig, err := e.evalExpr(ex.Value)
	if err != nil || sig.kind != sigNone {
		return nil, sig, err
	}
	return nil, noSignal, diag.New(diag.RunError, e.Path, ex.Sp, v.String())
}

func (e *Evaluator) evalProcLit(ex *ast.ProcLit) (Value, signal, *diag.Report) {
	params := make([]string, len(ex.Params))
	for i, p := range ex.Params {
		params[i] = p.Name
	}
	proc := &ProcedureValue{
		Typ:  ex.ResolvedType().(*types.Proc),
		Impl: &UserProc{Params: params, Body: ex.Body, Captured: e.Values.Capture()},
	}
	return proc, noSignal, nil
}

func (e *Evaluator) evalLiteralExpr(ex *ast.LiteralExpr) (Value, signal, *diag.Report) {
	switch ex.Kind {
	case ast.IntLit:
		return IntValue{V: ex.Value.(*big.Int)}, noSignal, nil
	case ast.FloatLit:
		return FloatValue(ex.Value.(float64)), noSignal, nil
	case ast.StringLit:
		return StrValue(ex.Value.(string)), noSignal, nil
	case ast.BoolLit:
		return BoolValue(ex.Value.(bool)), noSignal, nil
	}
	return nil, noSignal, diag.New(diag.RunError, e.Path, ex.Sp, "invalid literal")
}

func (e *Evaluator) evalIdentExpr(ex *ast.IdentExpr) (Value, signal, *diag.Report) {
	d, ok := e.Values.Lookup(ex.Name)
	if !ok {
		return nil, noSignal, diag.New(diag.RunError, e.Path, ex.Sp, fmt.Sprintf("undeclared name %q", ex.Name))
	}
	return d.Value, noSignal, nil
}

func (e *Evaluator) evalMemberExpr(ex *ast.MemberExpr) (Value, signal, *diag.Report) {
	tv, sig, err := e.evalExpr(ex.Target)
	if err != nil || sig.kind != sigNone {
		return nil, sig, err
	}
	switch t := tv.(type) {
	case *TupleValue:
		idx, perr := strconv.Atoi(ex.Field)
		if perr != nil || idx < 0 || idx >= len(t.Items) {
			return nil, noSignal, diag.New(diag.RunError, e.Path, ex.Sp, fmt.Sprintf("no field %q on tuple", ex.Field))
		}
		return t.Items[idx], noSignal, nil
	case *StructValue:
		v, ok := t.Fields[ex.Field]
		if !ok {
			return nil, noSignal, diag.New(diag.RunError, e.Path, ex.Sp, fmt.Sprintf("no field %q", ex.Field))
		}
		return v, noSignal, nil
	case *EnumValue:
		v, ok := t.Fields[ex.Field]
		if !ok {
			return nil, noSignal, diag.New(diag.RunError, e.Path, ex.Sp, fmt.Sprintf("no field %q", ex.Field))
		}
		return v, noSignal, nil
	case *ModuleValue:
		if en, ok := t.Typ.Assoc.(*types.Enum); ok {
			v, ok := en.Variant(ex.Field)
			if !ok {
				return nil, noSignal, diag.New(diag.RunError, e.Path, ex.Sp, fmt.Sprintf("enum %s has no variant %q", en.Name, ex.Field))
			}
			if v.Constant {
				return e.memoConstant(v), noSignal, nil
			}
			return &variantCtor{V: v}, noSignal, nil
		}
		return nil, noSignal, diag.New(diag.RunError, e.Path, ex.Sp, fmt.Sprintf("no member %q", ex.Field))
	}
	return nil, noSignal, diag.New(diag.RunError, e.Path, ex.Sp, fmt.Sprintf("cannot access field on %s", tv.Type()))
}

func (e *Evaluator) memoConstant(v *types.Variant) *EnumValue {
	if ev, ok := e.constants[v]; ok {
		return ev
	}
	ev := &EnumValue{Fields: map[string]Value{}, Typ: v}
	e.constants[v] = ev
	return ev
}

// evalCallExpr special-cases the bare `Name(args)` tuple-struct
// constructor, matching the checker's special case for the same
// CallExpr shape (there's no dedicated construction node for it).
func (e *Evaluator) evalCallExpr(ex *ast.CallExpr) (Value, signal, *diag.Report) {
	if ident, ok := ex.Callee.(*ast.IdentExpr); ok {
		if d, ok := e.Values.Lookup(ident.Name); ok {
			if mv, ok := d.Value.(*ModuleValue); ok {
				if st, ok := mv.Typ.Assoc.(*types.Struct); ok && st.TupleForm {
					return e.evalPositionalCall(ex, st.Fields, func(fields map[string]Value) Value {
						return &StructValue{Fields: fields, Typ: st}
					})
				}
			}
		}
	}

	calleeVal, sig, err := e.evalExpr(ex.Callee)
	if err != nil || sig.kind != sigNone {
		return nil, sig, err
	}

	if ctor, ok := calleeVal.(*variantCtor); ok {
		return e.evalPositionalCall(ex, ctor.V.Fields, func(fields map[string]Value) Value {
			return &EnumValue{Fields: fields, Typ: ctor.V}
		})
	}

	proc, ok := calleeVal.(*ProcedureValue)
	if !ok {
		return nil, noSignal, diag.New(diag.RunError, e.Path, ex.Sp, "cannot call a non-procedure value")
	}
	args := make([]Value, len(ex.Args))
	for i, a := range ex.Args {
		av, asig, aerr := e.evalExpr(a)
		if aerr != nil || asig.kind != sigNone {
			return nil, asig, aerr
		}
		args[i] = av
	}
	return e.callProcedure(proc, args, ex.Sp)
}

func (e *Evaluator) evalPositionalCall(ex *ast.CallExpr, fields []types.Field, build func(map[string]Value) Value) (Value, signal, *diag.Report) {
	values := make(map[string]Value, len(fields))
	for i, a := range ex.Args {
		v, sig, err := e.evalExpr(a)
		if err != nil || sig.kind != sigNone {
			return nil, sig, err
		}
		values[fields[i].Name] = v
	}
	return build(values), noSignal, nil
}

func (e *Evaluator) callProcedure(proc *ProcedureValue, args []Value, sp source.Span) (Value, signal, *diag.Report) {
	switch impl := proc.Impl.(type) {
	case *Builtin:
		v, err := impl.Fn(args)
		if err != nil {
			return nil, noSignal, err
		}
		return v, noSignal, nil
	case *UserProc:
		saved := e.Values
		e.Values = impl.Captured
		e.Values.Push()
		for i, p := range impl.Params {
			e.Values.Declare(p, false, true, args[i])
		}
		v, sig, err := e.evalExpr(impl.Body)
		e.Values.Pop()
		e.Values = saved
		if err != nil {
			return nil, noSignal, err
		}
		switch sig.kind {
		case sigReturn:
			return sig.value, noSignal, nil
		case sigNone:
			return v, noSignal, nil
		}
		return nil, noSignal, diag.New(diag.RunError, e.Path, sp, "break/continue outside a loop")
	}
	return nil, noSignal, diag.New(diag.RunError, e.Path, sp, "unknown procedure implementation")
}

// PrettyPrint renders a value the way the REPL echoes an expression
// result (spec §3.2).
func PrettyPrint(v Value) string {
	if v == nil {
		return "()"
	}
	return v.String()
}
