package check

import (
	"fmt"

	"github.com/ejrbuss/yoku-sub000/internal/ast"
	"github.com/ejrbuss/yoku-sub000/internal/diag"
	"github.com/ejrbuss/yoku-sub000/internal/types"
)

func (c *Checker) checkStmt(s ast.Stmt) *diag.Report {
	switch stmt := s.(type) {
	case *ast.BreakStmt:
		return c.checkBreakStmt(stmt)
	case *ast.ContinueStmt:
		return c.checkContinueStmt(stmt)
	case *ast.ReturnStmt:
		return c.checkReturnStmt(stmt)
	case *ast.AssertStmt:
		_, err := c.checkExpr(stmt.Expr, nil)
		return err
	case *ast.LoopStmt:
		return c.checkLoopStmt(stmt)
	case *ast.WhileStmt:
		return c.checkWhileStmt(stmt)
	case *ast.AssignVarStmt:
		return c.checkAssignVarStmt(stmt)
	case *ast.AssignFieldStmt:
		return c.checkAssignFieldStmt(stmt)
	case *ast.ExprStmt:
		_, err := c.checkExpr(stmt.Expr, nil)
		return err
	}
	return diag.New(diag.TypeError, c.Path, s.Span(), "unsupported statement")
}

func (c *Checker) checkBreakStmt(s *ast.BreakStmt) *diag.Report {
	if !c.Labels.Contains(s.Label) {
		label := "loop"
		if s.Label != nil {
			label = fmt.Sprintf("label %q", *s.Label)
		}
		return diag.New(diag.ResError, c.Path, s.Sp, fmt.Sprintf("break outside %s", label))
	}
	return nil
}

func (c *Checker) checkContinueStmt(s *ast.ContinueStmt) *diag.Report {
	if !c.Labels.Contains(s.Label) {
		label := "loop"
		if s.Label != nil {
			label = fmt.Sprintf("label %q", *s.Label)
		}
		return diag.New(diag.ResError, c.Path, s.Sp, fmt.Sprintf("continue outside %s", label))
	}
	return nil
}

func (c *Checker) checkReturnStmt(s *ast.ReturnStmt) *diag.Report {
	if !c.inProc {
		return diag.New(diag.ResError, c.Path, s.Sp, "return outside procedure")
	}
	var valType types.Type = types.UnitType
	if s.Value != nil {
		t, err := c.checkExpr(s.Value, c.expectedReturn)
		if err != nil {
			return err
		}
		valType = t
	}
	if c.expectedReturn != nil && !types.Assignable(valType, c.expectedReturn) {
		return diag.New(diag.TypeError, c.Path, s.Sp,
			fmt.Sprintf("cannot return %s, expected %s", valType, c.expectedReturn))
	}
	return nil
}

func (c *Checker) checkLoopStmt(s *ast.LoopStmt) *diag.Report {
	c.Labels.Push(s.Label)
	_, err := c.checkBlockExpr(s.Body, nil)
	c.Labels.Pop()
	return err
}

func (c *Checker) checkWhileStmt(s *ast.WhileStmt) *diag.Report {
	testType, err := c.checkExpr(s.Test, types.BoolType)
	if err != nil {
		return err
	}
	if !types.Assignable(testType, types.BoolType) {
		return diag.New(diag.TypeError, c.Path, s.Test.Span(), fmt.Sprintf("while test has type %s, expected Bool", testType))
	}
	c.Labels.Push(nil)
	_, err = c.checkBlockExpr(s.Body, nil)
	c.Labels.Pop()
	return err
}

func (c *Checker) checkAssignVarStmt(s *ast.AssignVarStmt) *diag.Report {
	d, ok := c.Values.Lookup(s.Target)
	if !ok {
		return diag.New(diag.ResError, c.Path, s.Sp, fmt.Sprintf("undeclared name %q", s.Target))
	}
	if !d.Mutable {
		return diag.New(diag.ResError, c.Path, s.Sp, fmt.Sprintf("cannot assign immutable variable %q", s.Target))
	}
	valType, err := c.checkExpr(s.Value, d.Value)
	if err != nil {
		return err
	}
	if !types.Assignable(valType, d.Value) {
		return diag.New(diag.TypeError, c.Path, s.Value.Span(),
			fmt.Sprintf("cannot assign %s into %s", valType, d.Value))
	}
	return nil
}

// lookupField resolves the Field a member-access target names. Only
// Struct and Variant targets are searched; any other type reports no field.
func lookupField(target types.Type, field string) (types.Field, bool) {
	switch t := target.(type) {
	case *types.Struct:
		return t.Field(field)
	case *types.Variant:
		return t.Field(field)
	}
	return types.Field{}, false
}

func (c *Checker) checkAssignFieldStmt(s *ast.AssignFieldStmt) *diag.Report {
	targetType, err := c.checkExpr(s.Target, nil)
	if err != nil {
		return err
	}
	f, ok := lookupField(targetType, s.Field)
	if !ok {
		return diag.New(diag.ResError, c.Path, s.Sp, fmt.Sprintf("no field %q on %s", s.Field, targetType))
	}
	if !f.Mutable {
		return diag.New(diag.ResError, c.Path, s.Sp, fmt.Sprintf("field %q is immutable", s.Field))
	}
	valType, verr := c.checkExpr(s.Value, f.Type)
	if verr != nil {
		return verr
	}
	if !types.Assignable(valType, f.Type) {
		return diag.New(diag.TypeError, c.Path, s.Value.Span(),
			fmt.Sprintf("cannot assign %s into field %q of type %s", valType, s.Field, f.Type))
	}
	return nil
}
