package eval

import (
	"fmt"

	"github.com/ejrbuss/yoku-sub000/internal/ast"
	"github.com/ejrbuss/yoku-sub000/internal/diag"
)

func (e *Evaluator) evalStmt(s ast.Stmt) (Value, signal, *diag.Report) {
	switch stmt := s.(type) {
	case *ast.BreakStmt:
		return UnitValue{}, signal{kind: sigBreak, label: stmt.Label}, nil
	case *ast.ContinueStmt:
		return UnitValue{}, signal{kind: sigContinue, label: stmt.Label}, nil
	case *ast.ReturnStmt:
		if stmt.Value == nil {
			return UnitValue{}, signal{kind: sigReturn, value: UnitValue{}}, nil
		}
		v, sig, err := e.evalExpr(stmt.Value)
		if err != nil || sig.kind != sigNone {
			return nil, sig, err
		}
		return UnitValue{}, signal{kind: sigReturn, value: v}, nil
	case *ast.AssertStmt:
		return e.evalAssertStmt(stmt)
	case *ast.LoopStmt:
		return e.evalLoop(stmt.Label, stmt.Body, nil)
	case *ast.WhileStmt:
		return e.evalLoop(nil, stmt.Body, stmt.Test)
	case *ast.AssignVarStmt:
		return e.evalAssignVarStmt(stmt)
	case *ast.AssignFieldStmt:
		return e.evalAssignFieldStmt(stmt)
	case *ast.ExprStmt:
		return e.evalExpr(stmt.Expr)
	}
	return nil, noSignal, diag.New(diag.RunError, e.Path, s.Span(), "unsupported statement")
}

// evalAssertStmt avoids double-evaluating the comparison's operands when
// building the failure note: it evaluates Left/Right once and reuses
// them both for the operator and for the rendered note.
func (e *Evaluator) evalAssertStmt(s *ast.AssertStmt) (Value, signal, *diag.Report) {
	if be, ok := s.Expr.(*ast.BinaryExpr); ok && be.Op != "|" && be.Op != "&" {
		lv, rv, sig, err := e.evalBinaryOperands(be)
		if err != nil || sig.kind != sigNone {
			return nil, sig, err
		}
		res, aerr := e.applyBinaryOp(be, lv, rv)
		if aerr != nil {
			return nil, noSignal, aerr
		}
		if b, ok := res.(BoolValue); ok && bool(b) {
			return UnitValue{}, noSignal, nil
		}
		note := fmt.Sprintf("assertion failed: %s %s %s", lv.String(), be.Op, rv.String())
		return nil, noSignal, diag.New(diag.RunError, e.Path, s.Sp, note)
	}

	v, sig, err := e.evalExpr(s.Expr)
	if err != nil || sig.kind != sigNone {
		return nil, sig, err
	}
	if b, ok := v.(BoolValue); ok && bool(b) {
		return UnitValue{}, noSignal, nil
	}
	return nil, noSignal, diag.New(diag.RunError, e.Path, s.Sp, "assertion failed")
}

// evalLoop drives both `loop` (optionally labeled, no test) and `while`
// (never labeled, always a test): an unlabeled break/continue always
// targets the innermost loop; a labeled one propagates past unlabeled
// loops until it finds the loop carrying that label.
func (e *Evaluator) evalLoop(label *string, body *ast.BlockExpr, test ast.Expr) (Value, signal, *diag.Report) {
	for {
		if test != nil {
			tv, sig, err := e.evalExpr(test)
			if err != nil || sig.kind != sigNone {
				return nil, sig, err
			}
			b, _ := tv.(BoolValue)
			if !bool(b) {
				return UnitValue{}, noSignal, nil
			}
		}
		_, sig, err := e.evalBlockExpr(body)
		if err != nil {
			return nil, noSignal, err
		}
		switch sig.kind {
		case sigBreak:
			if matchesLabel(label, sig.label) {
				return UnitValue{}, noSignal, nil
			}
			return UnitValue{}, sig, nil
		case sigContinue:
			if matchesLabel(label, sig.label) {
				continue
			}
			return UnitValue{}, sig, nil
		case sigReturn:
			return nil, sig, nil
		}
	}
}

func matchesLabel(loopLabel, sigLabel *string) bool {
	if sigLabel == nil {
		return true
	}
	return loopLabel != nil && *loopLabel == *sigLabel
}

func (e *Evaluator) evalAssignVarStmt(s *ast.AssignVarStmt) (Value, signal, *diag.Report) {
	v, sig, err := e.evalExpr(s.Value)
	if err != nil || sig.kind != sigNone {
		return nil, sig, err
	}
	if aerr := e.Values.Assign(s.Target, v); aerr != nil {
		return nil, noSignal, diag.New(diag.RunError, e.Path, s.Sp, aerr.Error())
	}
	return UnitValue{}, noSignal, nil
}

func (e *Evaluator) evalAssignFieldStmt(s *ast.AssignFieldStmt) (Value, signal, *diag.Report) {
	tv, sig, err := e.evalExpr(s.Target)
	if err != nil || sig.kind != sigNone {
		return nil, sig, err
	}
	v, sig, err := e.evalExpr(s.Value)
	if err != nil || sig.kind != sigNone {
		return nil, sig, err
	}
	switch t := tv.(type) {
	case *StructValue:
		t.Fields[s.Field] = v
	case *EnumValue:
		t.Fields[s.Field] = v
	default:
		return nil, noSignal, diag.New(diag.RunError, e.Path, s.Sp, fmt.Sprintf("cannot assign field on %s", tv.Type()))
	}
	return UnitValue{}, noSignal, nil
}
