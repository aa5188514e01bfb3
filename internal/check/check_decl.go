package check

import (
	"fmt"

	"github.com/ejrbuss/yoku-sub000/internal/ast"
	"github.com/ejrbuss/yoku-sub000/internal/diag"
	"github.com/ejrbuss/yoku-sub000/internal/types"
)

func (c *Checker) checkDecl(d ast.Decl) *diag.Report {
	switch decl := d.(type) {
	case *ast.VarDecl:
		return c.checkVarDecl(decl)
	case *ast.ProcDecl:
		return c.checkProcDecl(decl)
	case *ast.TypeAliasDecl:
		return c.checkTypeAliasDecl(decl)
	case *ast.StructDecl:
		return c.checkStructDecl(decl)
	case *ast.EnumDecl:
		return c.checkEnumDecl(decl)
	case *ast.TestDecl:
		return c.checkTestDecl(decl)
	}
	return diag.New(diag.TypeError, c.Path, d.Span(), "unsupported declaration")
}

func (c *Checker) checkVarDecl(d *ast.VarDecl) *diag.Report {
	var dest types.Type
	if d.TypeAnn != nil {
		t, err := c.resolveTypeExpr(d.TypeAnn)
		if err != nil {
			return err
		}
		dest = t
	}

	initType, err := c.checkExpr(d.Init, dest)
	if err != nil {
		return err
	}

	declType := initType
	if dest != nil {
		if d.Assert {
			if !types.Assertable(initType, dest) {
				return diag.New(diag.TypeError, c.Path, d.Init.Span(),
					fmt.Sprintf("cannot assert %s into %s", initType, dest))
			}
		} else if !types.Assignable(initType, dest) {
			return diag.New(diag.TypeError, c.Path, d.Init.Span(),
				fmt.Sprintf("cannot assign %s into %s", initType, dest))
		}
		declType = dest
	}

	return c.unifyPattern(d.Pattern, declType, !d.Const, d.Assert)
}

// checkProcLit bidirectionally checks a procedure literal: parameter
// types come from annotations, falling back to dest's parameter types;
// the return type comes from an annotation, falling back to dest's
// return type, falling back to whatever the body infers.
func (c *Checker) checkProcLit(lit *ast.ProcLit, dest types.Type) (types.Type, *diag.Report) {
	var destProc *types.Proc
	if dp, ok := dest.(*types.Proc); ok {
		destProc = dp
	}

	paramTypes := make([]types.Type, len(lit.Params))
	for i, p := range lit.Params {
		switch {
		case p.Type != nil:
			t, err := c.resolveTypeExpr(p.Type)
			if err != nil {
				return nil, err
			}
			paramTypes[i] = t
		case destProc != nil && i < len(destProc.Params):
			paramTypes[i] = destProc.Params[i]
		default:
			return nil, diag.New(diag.TypeError, c.Path, p.Sp,
				fmt.Sprintf("parameter %q requires a type annotation", p.Name))
		}
	}

	var wantReturn types.Type
	if lit.ReturnType != nil {
		rt, err := c.resolveTypeExpr(lit.ReturnType)
		if err != nil {
			return nil, err
		}
		wantReturn = rt
	} else if destProc != nil {
		wantReturn = destProc.Returns
	}

	c.Values.Push()
	c.Types.Push()
	savedLabels := c.Labels
	savedReturn := c.expectedReturn
	savedInProc := c.inProc
	c.Labels = types.Labels{}
	c.expectedReturn = wantReturn
	c.inProc = true

	for i, p := range lit.Params {
		c.Values.Declare(p.Name, false, true, paramTypes[i])
	}

	bodyType, err := c.checkExpr(lit.Body, wantReturn)

	c.Labels = savedLabels
	c.expectedReturn = savedReturn
	c.inProc = savedInProc
	c.Types.Pop()
	c.Values.Pop()
	if err != nil {
		return nil, err
	}

	finalReturn := wantReturn
	if finalReturn == nil {
		finalReturn = bodyType
	} else if !types.Assignable(bodyType, finalReturn) {
		return nil, diag.New(diag.TypeError, c.Path, lit.Body.Span(),
			fmt.Sprintf("procedure body has type %s, expected %s", bodyType, finalReturn))
	}

	procType := &types.Proc{Params: paramTypes, Returns: finalReturn}
	lit.SetResolvedType(procType)
	return procType, nil
}

// checkProcDecl pre-declares the procedure's own name, when fully
// annotated, so that its body may call itself recursively.
func (c *Checker) checkProcDecl(d *ast.ProcDecl) *diag.Report {
	canPreDeclare := d.Lit.ReturnType != nil
	var preParamTypes []types.Type
	if canPreDeclare {
		preParamTypes = make([]types.Type, len(d.Lit.Params))
		for i, p := range d.Lit.Params {
			if p.Type == nil {
				canPreDeclare = false
				break
			}
			t, err := c.resolveTypeExpr(p.Type)
			if err != nil {
				return err
			}
			preParamTypes[i] = t
		}
	}
	if canPreDeclare {
		rt, err := c.resolveTypeExpr(d.Lit.ReturnType)
		if err != nil {
			return err
		}
		if derr := c.Values.Declare(d.Name, false, true, &types.Proc{Params: preParamTypes, Returns: rt}); derr != nil {
			return diag.New(diag.ResError, c.Path, d.Sp, derr.Error())
		}
	}

	t, err := c.checkProcLit(d.Lit, nil)
	if err != nil {
		return err
	}

	if !canPreDeclare {
		if derr := c.Values.Declare(d.Name, false, true, t); derr != nil {
			return diag.New(diag.ResError, c.Path, d.Sp, derr.Error())
		}
	}
	return nil
}

func (c *Checker) checkTypeAliasDecl(d *ast.TypeAliasDecl) *diag.Report {
	t, err := c.resolveTypeExpr(d.Type)
	if err != nil {
		return err
	}
	if derr := c.Types.Declare(d.Name, false, true, t); derr != nil {
		return diag.New(diag.ResError, c.Path, d.Sp, derr.Error())
	}
	return nil
}

func fieldName(name string, tupleForm bool, index int) string {
	if tupleForm {
		return fmt.Sprintf("%d", index)
	}
	return name
}

func (c *Checker) checkStructDecl(d *ast.StructDecl) *diag.Report {
	st := &types.Struct{Name: d.Name, TupleForm: d.TupleForm}
	if derr := c.Types.Declare(d.Name, false, true, st); derr != nil {
		return diag.New(diag.ResError, c.Path, d.Sp, derr.Error())
	}

	fields := make([]types.Field, len(d.Fields))
	for i, f := range d.Fields {
		ft, err := c.resolveTypeExpr(f.Type)
		if err != nil {
			return err
		}
		fields[i] = types.Field{Mutable: f.Mutable, Name: fieldName(f.Name, d.TupleForm, i), Type: ft}
	}
	st.Fields = fields
	d.Resolved = st

	mod := &types.Module{Name: d.Name, Assoc: st, Fields: map[string]types.Type{}, Types: map[string]types.Type{}}
	if derr := c.Values.Declare(d.Name, false, true, mod); derr != nil {
		return diag.New(diag.ResError, c.Path, d.Sp, derr.Error())
	}
	return nil
}

func (c *Checker) checkEnumDecl(d *ast.EnumDecl) *diag.Report {
	en := &types.Enum{Name: d.Name}
	variants := make([]*types.Variant, len(d.Variants))
	for i, v := range d.Variants {
		fields := make([]types.Field, len(v.Fields))
		for j, f := range v.Fields {
			ft, err := c.resolveTypeExpr(f.Type)
			if err != nil {
				return err
			}
			fields[j] = types.Field{Mutable: f.Mutable, Name: fieldName(f.Name, v.TupleForm, j), Type: ft}
		}
		variants[i] = &types.Variant{
			Name: v.Name, Constant: v.Constant, TupleForm: v.TupleForm, Fields: fields, Parent: en,
		}
	}
	en.Variants = variants
	d.Resolved = en

	if derr := c.Types.Declare(d.Name, false, true, en); derr != nil {
		return diag.New(diag.ResError, c.Path, d.Sp, derr.Error())
	}
	mod := &types.Module{Name: d.Name, Assoc: en, Fields: map[string]types.Type{}, Types: map[string]types.Type{}}
	if derr := c.Values.Declare(d.Name, false, true, mod); derr != nil {
		return diag.New(diag.ResError, c.Path, d.Sp, derr.Error())
	}
	return nil
}

func (c *Checker) checkTestDecl(d *ast.TestDecl) *diag.Report {
	_, err := c.checkExpr(d.Body, nil)
	return err
}
