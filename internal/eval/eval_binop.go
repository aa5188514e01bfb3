package eval

import (
	"fmt"
	"math"
	"math/big"

	"github.com/ejrbuss/yoku-sub000/internal/ast"
	"github.com/ejrbuss/yoku-sub000/internal/diag"
	"github.com/ejrbuss/yoku-sub000/internal/types"
)

func (e *Evaluator) evalBinaryExpr(be *ast.BinaryExpr) (Value, signal, *diag.Report) {
	switch be.Op {
	case "|":
		return e.evalLogical(be, true)
	case "&":
		return e.evalLogical(be, false)
	}
	lv, rv, sig, err := e.evalBinaryOperands(be)
	if err != nil || sig.kind != sigNone {
		return nil, sig, err
	}
	v, err := e.applyBinaryOp(be, lv, rv)
	if err != nil {
		return nil, noSignal, err
	}
	return v, noSignal, nil
}

func (e *Evaluator) evalLogical(be *ast.BinaryExpr, isOr bool) (Value, signal, *diag.Report) {
	lv, sig, err := e.evalExpr(be.Left)
	if err != nil || sig.kind != sigNone {
		return nil, sig, err
	}
	lb, _ := lv.(BoolValue)
	if bool(lb) == isOr {
		return BoolValue(isOr), noSignal, nil
	}
	return e.evalExpr(be.Right)
}

// evalBinaryOperands evaluates Left and Right exactly once, so that
// assertion failures can report both operands without re-running
// expressions that might have side effects.
func (e *Evaluator) evalBinaryOperands(be *ast.BinaryExpr) (Value, Value, signal, *diag.Report) {
	lv, sig, err := e.evalExpr(be.Left)
	if err != nil || sig.kind != sigNone {
		return nil, nil, sig, err
	}
	rv, sig, err := e.evalExpr(be.Right)
	if err != nil || sig.kind != sigNone {
		return nil, nil, sig, err
	}
	return lv, rv, noSignal, nil
}

func (e *Evaluator) applyBinaryOp(be *ast.BinaryExpr, lv, rv Value) (Value, *diag.Report) {
	switch be.Op {
	case "==":
		return BoolValue(valuesEqual(lv, rv)), nil
	case "!=":
		return BoolValue(!valuesEqual(lv, rv)), nil
	case "===":
		return BoolValue(identityEqual(lv, rv)), nil
	case "!==":
		return BoolValue(!identityEqual(lv, rv)), nil
	case "<", "<=", ">", ">=":
		return e.evalCompare(be, lv, rv)
	case "+", "-", "*", "/", "%":
		return e.evalArith(be, lv, rv)
	case "?":
		tv, ok := rv.(TypeValue)
		if !ok {
			return nil, diag.New(diag.RunError, e.Path, be.Sp, "right operand of ? must be a type")
		}
		return BoolValue(types.Assertable(lv.Type(), tv.T)), nil
	}
	return nil, diag.New(diag.RunError, e.Path, be.Sp, fmt.Sprintf("unknown operator %q", be.Op))
}

func (e *Evaluator) evalCompare(be *ast.BinaryExpr, lv, rv Value) (Value, *diag.Report) {
	var cmp int
	switch l := lv.(type) {
	case IntValue:
		switch r := rv.(type) {
		case IntValue:
			cmp = l.V.Cmp(r.V)
		case FloatValue:
			lf, _ := new(big.Float).SetInt(l.V).Float64()
			cmp = floatCmp(lf, float64(r))
		default:
			return nil, diag.New(diag.RunError, e.Path, be.Sp, "comparison requires numeric operands")
		}
	case FloatValue:
		switch r := rv.(type) {
		case FloatValue:
			cmp = floatCmp(float64(l), float64(r))
		case IntValue:
			rf, _ := new(big.Float).SetInt(r.V).Float64()
			cmp = floatCmp(float64(l), rf)
		default:
			return nil, diag.New(diag.RunError, e.Path, be.Sp, "comparison requires numeric operands")
		}
	default:
		return nil, diag.New(diag.RunError, e.Path, be.Sp, "comparison requires numeric operands")
	}
	switch be.Op {
	case "<":
		return BoolValue(cmp < 0), nil
	case "<=":
		return BoolValue(cmp <= 0), nil
	case ">":
		return BoolValue(cmp > 0), nil
	case ">=":
		return BoolValue(cmp >= 0), nil
	}
	return nil, diag.New(diag.RunError, e.Path, be.Sp, "unknown comparison operator")
}

func floatCmp(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (e *Evaluator) evalArith(be *ast.BinaryExpr, lv, rv Value) (Value, *diag.Report) {
	if be.Op == "+" {
		if ls, ok := lv.(StrValue); ok {
			rs, ok := rv.(StrValue)
			if !ok {
				return nil, diag.New(diag.RunError, e.Path, be.Sp, "cannot concatenate Str with non-Str")
			}
			return StrValue(string(ls) + string(rs)), nil
		}
	}
	if li, ok := lv.(IntValue); ok {
		if ri, ok := rv.(IntValue); ok {
			return e.intArith(be, li, ri)
		}
	}
	lf, lok := toFloat(lv)
	rf, rok := toFloat(rv)
	if !lok || !rok {
		return nil, diag.New(diag.RunError, e.Path, be.Sp, "arithmetic requires numeric operands")
	}
	return e.floatArith(be, lf, rf)
}

func toFloat(v Value) (float64, bool) {
	switch x := v.(type) {
	case FloatValue:
		return float64(x), true
	case IntValue:
		f, _ := new(big.Float).SetInt(x.V).Float64()
		return f, true
	}
	return 0, false
}

func (e *Evaluator) intArith(be *ast.BinaryExpr, li, ri IntValue) (Value, *diag.Report) {
	result := new(big.Int)
	switch be.Op {
	case "+":
		result.Add(li.V, ri.V)
	case "-":
		result.Sub(li.V, ri.V)
	case "*":
		result.Mul(li.V, ri.V)
	case "/":
		if ri.V.Sign() == 0 {
			return nil, diag.New(diag.RunError, e.Path, be.Sp, "division by zero")
		}
		result.Quo(li.V, ri.V)
	case "%":
		if ri.V.Sign() == 0 {
			return nil, diag.New(diag.RunError, e.Path, be.Sp, "division by zero")
		}
		result.Rem(li.V, ri.V)
	default:
		return nil, diag.New(diag.RunError, e.Path, be.Sp, fmt.Sprintf("unknown operator %q", be.Op))
	}
	return IntValue{V: result}, nil
}

func (e *Evaluator) floatArith(be *ast.BinaryExpr, lf, rf float64) (Value, *diag.Report) {
	switch be.Op {
	case "+":
		return FloatValue(lf + rf), nil
	case "-":
		return FloatValue(lf - rf), nil
	case "*":
		return FloatValue(lf * rf), nil
	case "/":
		if rf == 0 {
			return nil, diag.New(diag.RunError, e.Path, be.Sp, "division by zero")
		}
		return FloatValue(lf / rf), nil
	case "%":
		if rf == 0 {
			return nil, diag.New(diag.RunError, e.Path, be.Sp, "division by zero")
		}
		return FloatValue(math.Mod(lf, rf)), nil
	}
	return nil, diag.New(diag.RunError, e.Path, be.Sp, fmt.Sprintf("unknown operator %q", be.Op))
}

func (e *Evaluator) evalUnaryExpr(ue *ast.UnaryExpr) (Value, signal, *diag.Report) {
	switch ue.Op {
	case "-":
		v, sig, err := e.evalExpr(ue.Expr)
		if err != nil || sig.kind != sigNone {
			return nil, sig, err
		}
		switch x := v.(type) {
		case IntValue:
			return IntValue{V: new(big.Int).Neg(x.V)}, noSignal, nil
		case FloatValue:
			return FloatValue(-x), noSignal, nil
		}
		return nil, noSignal, diag.New(diag.RunError, e.Path, ue.Sp, "unary - requires a numeric operand")
	case "!":
		v, sig, err := e.evalExpr(ue.Expr)
		if err != nil || sig.kind != sigNone {
			return nil, sig, err
		}
		b, ok := v.(BoolValue)
		if !ok {
			return nil, noSignal, diag.New(diag.RunError, e.Path, ue.Sp, "unary ! requires a Bool operand")
		}
		return BoolValue(!b), noSignal, nil
	case "...":
		return e.evalExpr(ue.Expr)
	}
	return nil, noSignal, diag.New(diag.RunError, e.Path, ue.Sp, fmt.Sprintf("unknown unary operator %q", ue.Op))
}

func identityEqual(a, b Value) bool {
	switch av := a.(type) {
	case *TupleValue:
		bv, ok := b.(*TupleValue)
		return ok && av == bv
	case *StructValue:
		bv, ok := b.(*StructValue)
		return ok && av == bv
	case *EnumValue:
		bv, ok := b.(*EnumValue)
		return ok && av == bv
	case *ProcedureValue:
		bv, ok := b.(*ProcedureValue)
		return ok && av == bv
	case *ModuleValue:
		bv, ok := b.(*ModuleValue)
		return ok && av == bv
	}
	return valuesEqual(a, b)
}

// valuesEqual is structural: tuples, structs, and enum variants compare
// field-wise (identity comparison is what `===` is for).
func valuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case UnitValue:
		_, ok := b.(UnitValue)
		return ok
	case BoolValue:
		bv, ok := b.(BoolValue)
		return ok && av == bv
	case IntValue:
		switch bv := b.(type) {
		case IntValue:
			return av.V.Cmp(bv.V) == 0
		case FloatValue:
			lf, _ := new(big.Float).SetInt(av.V).Float64()
			return lf == float64(bv)
		}
		return false
	case FloatValue:
		switch bv := b.(type) {
		case FloatValue:
			return av == bv
		case IntValue:
			rf, _ := new(big.Float).SetInt(bv.V).Float64()
			return float64(av) == rf
		}
		return false
	case StrValue:
		bv, ok := b.(StrValue)
		return ok && av == bv
	case *TupleValue:
		bv, ok := b.(*TupleValue)
		if !ok || len(av.Items) != len(bv.Items) {
			return false
		}
		for i := range av.Items {
			if !valuesEqual(av.Items[i], bv.Items[i]) {
				return false
			}
		}
		return true
	case *StructValue:
		bv, ok := b.(*StructValue)
		if !ok || av.Typ != bv.Typ {
			return false
		}
		for _, f := range av.Typ.Fields {
			if !valuesEqual(av.Fields[f.Name], bv.Fields[f.Name]) {
				return false
			}
		}
		return true
	case *EnumValue:
		bv, ok := b.(*EnumValue)
		if !ok || av.Typ != bv.Typ {
			return false
		}
		for _, f := range av.Typ.Fields {
			if !valuesEqual(av.Fields[f.Name], bv.Fields[f.Name]) {
				return false
			}
		}
		return true
	case *ProcedureValue:
		bv, ok := b.(*ProcedureValue)
		return ok && av == bv
	case *ModuleValue:
		bv, ok := b.(*ModuleValue)
		return ok && av == bv
	case TypeValue:
		bv, ok := b.(TypeValue)
		return ok && av.T == bv.T
	}
	return false
}
