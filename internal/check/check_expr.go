package check

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/ejrbuss/yoku-sub000/internal/ast"
	"github.com/ejrbuss/yoku-sub000/internal/diag"
	"github.com/ejrbuss/yoku-sub000/internal/source"
	"github.com/ejrbuss/yoku-sub000/internal/types"
)

// checkExpr checks e against a destination type, then records the
// inferred type back onto the node (spec §4.4, in-place annotation).
func (c *Checker) checkExpr(e ast.Expr, dest types.Type) (types.Type, *diag.Report) {
	t, err := c.checkExprInner(e, dest)
	if err != nil {
		return nil, err
	}
	e.SetResolvedType(t)
	return t, nil
}

func (c *Checker) checkExprInner(e ast.Expr, dest types.Type) (types.Type, *diag.Report) {
	switch expr := e.(type) {
	case *ast.BlockExpr:
		return c.checkBlockExpr(expr, dest)
	case *ast.TupleExpr:
		return c.checkTupleExpr(expr, dest)
	case *ast.StructExpr:
		return c.checkStructExpr(expr, dest)
	case *ast.EnumVariantExpr:
		return c.checkEnumVariantExpr(expr, dest)
	case *ast.GroupExpr:
		return c.checkGroupExpr(expr, dest)
	case *ast.IfExpr:
		return c.checkIfExpr(expr, dest)
	case *ast.MatchExpr:
		return c.checkMatchExpr(expr, dest)
	case *ast.ThrowExpr:
		return c.checkThrowExpr(expr, dest)
	case *ast.ProcLit:
		return c.checkProcLit(expr, dest)
	case *ast.TypeValueExpr:
		return c.checkTypeValueExpr(expr, dest)
	case *ast.BinaryExpr:
		return c.checkBinaryExpr(expr, dest)
	case *ast.UnaryExpr:
		return c.checkUnaryExpr(expr, dest)
	case *ast.MemberExpr:
		return c.checkMemberExpr(expr, dest)
	case *ast.CallExpr:
		return c.checkCallExpr(expr, dest)
	case *ast.LiteralExpr:
		return c.checkLiteralExpr(expr, dest)
	case *ast.IdentExpr:
		return c.checkIdentExpr(expr, dest)
	}
	return nil, diag.New(diag.TypeError, c.Path, e.Span(), "unsupported expression")
}

func (c *Checker) checkBlockExpr(b *ast.BlockExpr, dest types.Type) (types.Type, *diag.Report) {
	c.Values.Push()
	c.Types.Push()
	defer func() {
		c.Types.Pop()
		c.Values.Pop()
	}()

	resultType := types.Type(types.UnitType)
	for i, item := range b.Items {
		isLast := i == len(b.Items)-1
		switch node := item.(type) {
		case ast.Decl:
			if err := c.checkDecl(node); err != nil {
				return nil, err
			}
		case ast.Stmt:
			if isLast {
				if es, ok := node.(*ast.ExprStmt); ok {
					t, err := c.checkExpr(es.Expr, dest)
					if err != nil {
						return nil, err
					}
					resultType = t
					continue
				}
			}
			if err := c.checkStmt(node); err != nil {
				return nil, err
			}
			if isLast {
				switch node.(type) {
				case *ast.ReturnStmt, *ast.BreakStmt, *ast.ContinueStmt:
					// The block never yields a value on this path.
					resultType = types.NeverType
				}
			}
		default:
			return nil, diag.New(diag.TypeError, c.Path, item.Span(), "invalid block item")
		}
	}
	return resultType, nil
}

func (c *Checker) checkTupleExpr(e *ast.TupleExpr, dest types.Type) (types.Type, *diag.Report) {
	var destTuple *types.Tuple
	if dt, ok := dest.(*types.Tuple); ok {
		destTuple = dt
	}
	items := make([]types.Type, len(e.Items))
	for i, it := range e.Items {
		var d types.Type
		if destTuple != nil && i < len(destTuple.Items) {
			d = destTuple.Items[i]
		}
		t, err := c.checkExpr(it, d)
		if err != nil {
			return nil, err
		}
		items[i] = t
	}
	return &types.Tuple{Items: items}, nil
}

func fieldByName(fields []types.Field, name string) (types.Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return types.Field{}, false
}

// checkFieldInits checks a struct- or variant-literal's field
// initializers, covering both record form (named FieldInit entries)
// and tuple form (positional entries, empty Name, matched in order).
func (c *Checker) checkFieldInits(fields []types.Field, inits []ast.FieldInit, spread ast.Expr, resultType types.Type, sp source.Span) *diag.Report {
	seen := make(map[string]bool, len(inits))
	posIdx := 0
	for _, fi := range inits {
		name := fi.Name
		if name == "" {
			if posIdx >= len(fields) {
				return diag.New(diag.TypeError, c.Path, fi.Value.Span(), "too many fields")
			}
			name = fields[posIdx].Name
			posIdx++
		}
		f, ok := fieldByName(fields, name)
		if !ok {
			return diag.New(diag.ResError, c.Path, fi.Value.Span(), fmt.Sprintf("no field %q", name))
		}
		if seen[name] {
			return diag.New(diag.TypeError, c.Path, fi.Value.Span(), fmt.Sprintf("duplicate field initializer %q", name))
		}
		vt, err := c.checkExpr(fi.Value, f.Type)
		if err != nil {
			return err
		}
		if !types.Assignable(vt, f.Type) {
			return diag.New(diag.TypeError, c.Path, fi.Value.Span(),
				fmt.Sprintf("field %q has type %s, expected %s", name, vt, f.Type))
		}
		seen[name] = true
	}
	if spread != nil {
		st, err := c.checkExpr(spread, resultType)
		if err != nil {
			return err
		}
		if !types.Assignable(st, resultType) {
			return diag.New(diag.TypeError, c.Path, spread.Span(),
				fmt.Sprintf("spread has type %s, expected %s", st, resultType))
		}
		return nil
	}
	for _, f := range fields {
		if !seen[f.Name] {
			return diag.New(diag.ResError, c.Path, sp, fmt.Sprintf("missing field %q", f.Name))
		}
	}
	return nil
}

func (c *Checker) checkStructExpr(e *ast.StructExpr, dest types.Type) (types.Type, *diag.Report) {
	d, ok := c.Types.Lookup(e.Name)
	if !ok {
		return nil, diag.New(diag.ResError, c.Path, e.Sp, fmt.Sprintf("undeclared type %q", e.Name))
	}
	st, ok := d.Value.(*types.Struct)
	if !ok {
		return nil, diag.New(diag.TypeError, c.Path, e.Sp, fmt.Sprintf("%q is not a struct type", e.Name))
	}
	if err := c.checkFieldInits(st.Fields, e.Fields, e.Spread, st, e.Sp); err != nil {
		return nil, err
	}
	return st, nil
}

func (c *Checker) checkEnumVariantExpr(e *ast.EnumVariantExpr, dest types.Type) (types.Type, *diag.Report) {
	d, ok := c.Types.Lookup(e.EnumName)
	if !ok {
		return nil, diag.New(diag.ResError, c.Path, e.Sp, fmt.Sprintf("undeclared type %q", e.EnumName))
	}
	en, ok := d.Value.(*types.Enum)
	if !ok {
		return nil, diag.New(diag.TypeError, c.Path, e.Sp, fmt.Sprintf("%q is not an enum type", e.EnumName))
	}
	v, ok := en.Variant(e.VariantName)
	if !ok {
		return nil, diag.New(diag.ResError, c.Path, e.Sp, fmt.Sprintf("enum %s has no variant %q", en.Name, e.VariantName))
	}
	if err := c.checkFieldInits(v.Fields, e.Fields, e.Spread, v, e.Sp); err != nil {
		return nil, err
	}
	return v, nil
}

func (c *Checker) checkGroupExpr(e *ast.GroupExpr, dest types.Type) (types.Type, *diag.Report) {
	return c.checkExpr(e.Inner, dest)
}

// checkIfExpr scopes any `if let` pattern bindings to the then branch
// only; the else branch must not see them. An if with no else admits
// Unit as the not-taken result, the same fallthrough rule match uses.
func (c *Checker) checkIfExpr(e *ast.IfExpr, dest types.Type) (types.Type, *diag.Report) {
	var thenType types.Type
	if e.Pattern != nil {
		testType, err := c.checkExpr(e.Test, nil)
		if err != nil {
			return nil, err
		}
		assertedType := testType
		if e.AssertedType != nil {
			at, aerr := c.resolveTypeExpr(e.AssertedType)
			if aerr != nil {
				return nil, aerr
			}
			assertedType = at
		}
		c.Values.Push()
		c.Types.Push()
		perr := c.unifyPattern(e.Pattern, assertedType, false, true)
		if perr == nil {
			thenType, perr = c.checkExpr(e.Then, dest)
		}
		c.Types.Pop()
		c.Values.Pop()
		if perr != nil {
			return nil, perr
		}
	} else {
		testType, err := c.checkExpr(e.Test, types.BoolType)
		if err != nil {
			return nil, err
		}
		if !types.Assignable(testType, types.BoolType) {
			return nil, diag.New(diag.TypeError, c.Path, e.Test.Span(), "if test must be Bool")
		}
		thenType, err = c.checkExpr(e.Then, dest)
		if err != nil {
			return nil, err
		}
	}

	if e.Else == nil {
		return types.Union([]types.Type{thenType, types.UnitType}), nil
	}
	elseType, err := c.checkExpr(e.Else, dest)
	if err != nil {
		return nil, err
	}
	return types.Union([]types.Type{thenType, elseType}), nil
}

// checkMatchExpr checks a match against its scrutinee (Unit when the
// test is omitted and the cases are purely guard-driven). Unit is
// admitted as an implicit fallthrough case type unless the match is
// exhaustive: an else branch exists, an unguarded wildcard/identifier
// branch with an assignable asserted type exists, or the scrutinee is an
// enum and every variant appears as a pattern.
func (c *Checker) checkMatchExpr(e *ast.MatchExpr, dest types.Type) (types.Type, *diag.Report) {
	testType := types.Type(types.UnitType)
	if e.Test != nil {
		t, err := c.checkExpr(e.Test, nil)
		if err != nil {
			return nil, err
		}
		testType = t
	}

	var resultType types.Type
	hasElse := false
	irrefutable := false
	covered := map[*types.Variant]bool{}
	for i := range e.Cases {
		cs := &e.Cases[i]
		c.Values.Push()
		c.Types.Push()

		bt, berr := func() (types.Type, *diag.Report) {
			if cs.Pattern == nil {
				hasElse = true
			} else {
				assertedType := testType
				if cs.AssertedType != nil {
					at, aerr := c.resolveTypeExpr(cs.AssertedType)
					if aerr != nil {
						return nil, aerr
					}
					assertedType = at
				}
				if perr := c.unifyPattern(cs.Pattern, assertedType, false, true); perr != nil {
					return nil, perr
				}
				if cs.Guard == nil {
					switch pat := cs.Pattern.(type) {
					case *ast.WildcardPattern, *ast.IdentPattern:
						if cs.AssertedType == nil || types.Assignable(testType, assertedType) {
							irrefutable = true
						}
					case *ast.VariantPattern:
						if v, ok := pat.ResolvedType().(*types.Variant); ok && fieldsIrrefutable(pat.Fields) {
							covered[v] = true
						}
					}
				}
			}
			if cs.Guard != nil {
				gt, gerr := c.checkExpr(cs.Guard, types.BoolType)
				if gerr != nil {
					return nil, gerr
				}
				if !types.Assignable(gt, types.BoolType) {
					return nil, diag.New(diag.TypeError, c.Path, cs.Guard.Span(), "match guard must be Bool")
				}
			}
			return c.checkExpr(cs.Body, dest)
		}()

		c.Types.Pop()
		c.Values.Pop()
		if berr != nil {
			return nil, berr
		}
		if resultType == nil {
			resultType = bt
		} else {
			resultType = types.Union([]types.Type{resultType, bt})
		}
	}

	exhaustive := hasElse || irrefutable
	if !exhaustive {
		switch t := testType.(type) {
		case *types.Enum:
			exhaustive = len(t.Variants) > 0
			for _, v := range t.Variants {
				if !covered[v] {
					exhaustive = false
					break
				}
			}
		case *types.Variant:
			exhaustive = covered[t]
		}
	}
	if !exhaustive {
		if resultType == nil {
			resultType = types.UnitType
		} else {
			resultType = types.Union([]types.Type{resultType, types.UnitType})
		}
	}
	return resultType, nil
}

// fieldsIrrefutable reports whether every field sub-pattern always
// matches (a wildcard or a plain binding), which is what lets a variant
// pattern count toward covering its variant for exhaustiveness.
func fieldsIrrefutable(fields []ast.FieldPattern) bool {
	for _, f := range fields {
		switch f.Pattern.(type) {
		case *ast.WildcardPattern, *ast.IdentPattern:
		default:
			return false
		}
	}
	return true
}

func (c *Checker) checkThrowExpr(e *ast.ThrowExpr, dest types.Type) (types.Type, *diag.Report) {
	if _, err := c.checkExpr(e.Value, nil); err != nil {
		return nil, err
	}
	return types.NeverType, nil
}

func (c *Checker) checkTypeValueExpr(e *ast.TypeValueExpr, dest types.Type) (types.Type, *diag.Report) {
	t, err := c.resolveTypeExpr(e.Type)
	if err != nil {
		return nil, err
	}
	e.Referent = t
	return types.TypeType, nil
}

func isNumeric(t types.Type) bool {
	return t == types.IntType || t == types.FloatType
}

func (c *Checker) checkBinaryExpr(e *ast.BinaryExpr, dest types.Type) (types.Type, *diag.Report) {
	switch e.Op {
	case "|", "&":
		lt, err := c.checkExpr(e.Left, types.BoolType)
		if err != nil {
			return nil, err
		}
		rt, err := c.checkExpr(e.Right, types.BoolType)
		if err != nil {
			return nil, err
		}
		if !types.Assignable(lt, types.BoolType) || !types.Assignable(rt, types.BoolType) {
			return nil, diag.New(diag.TypeError, c.Path, e.Sp, fmt.Sprintf("operator %q requires Bool operands", e.Op))
		}
		return types.BoolType, nil
	case "==", "!=", "===", "!==":
		lt, err := c.checkExpr(e.Left, nil)
		if err != nil {
			return nil, err
		}
		rt, err := c.checkExpr(e.Right, lt)
		if err != nil {
			return nil, err
		}
		if !types.Assignable(rt, lt) && !types.Assignable(lt, rt) {
			return nil, diag.New(diag.TypeError, c.Path, e.Sp, fmt.Sprintf("cannot compare %s and %s", lt, rt))
		}
		return types.BoolType, nil
	case "<", "<=", ">", ">=":
		return c.checkNumericCompare(e)
	case "+", "-", "*", "/", "%":
		return c.checkArith(e)
	case "?":
		if _, err := c.checkExpr(e.Left, nil); err != nil {
			return nil, err
		}
		rt, err := c.checkExpr(e.Right, types.TypeType)
		if err != nil {
			return nil, err
		}
		if !types.Assignable(rt, types.TypeType) {
			return nil, diag.New(diag.TypeError, c.Path, e.Sp, "right operand of ? must be a type")
		}
		return types.BoolType, nil
	}
	return nil, diag.New(diag.TypeError, c.Path, e.Sp, fmt.Sprintf("unknown operator %q", e.Op))
}

func (c *Checker) checkNumericCompare(e *ast.BinaryExpr) (types.Type, *diag.Report) {
	lt, err := c.checkExpr(e.Left, nil)
	if err != nil {
		return nil, err
	}
	rt, err := c.checkExpr(e.Right, lt)
	if err != nil {
		return nil, err
	}
	if !isNumeric(lt) || !isNumeric(rt) {
		return nil, diag.New(diag.TypeError, c.Path, e.Sp, fmt.Sprintf("operator %q requires numeric operands", e.Op))
	}
	return types.BoolType, nil
}

func (c *Checker) checkArith(e *ast.BinaryExpr) (types.Type, *diag.Report) {
	lt, err := c.checkExpr(e.Left, nil)
	if err != nil {
		return nil, err
	}
	if e.Op == "+" && lt == types.StrType {
		rt, rerr := c.checkExpr(e.Right, types.StrType)
		if rerr != nil {
			return nil, rerr
		}
		if rt != types.StrType {
			return nil, diag.New(diag.TypeError, c.Path, e.Sp, "cannot concatenate Str with non-Str")
		}
		return types.StrType, nil
	}
	rt, err := c.checkExpr(e.Right, lt)
	if err != nil {
		return nil, err
	}
	if !isNumeric(lt) || !isNumeric(rt) {
		return nil, diag.New(diag.TypeError, c.Path, e.Sp, fmt.Sprintf("operator %q requires numeric operands", e.Op))
	}
	if lt == types.FloatType || rt == types.FloatType {
		return types.FloatType, nil
	}
	return types.IntType, nil
}

func (c *Checker) checkUnaryExpr(e *ast.UnaryExpr, dest types.Type) (types.Type, *diag.Report) {
	switch e.Op {
	case "-":
		t, err := c.checkExpr(e.Expr, dest)
		if err != nil {
			return nil, err
		}
		if !isNumeric(t) {
			return nil, diag.New(diag.TypeError, c.Path, e.Sp, "unary - requires a numeric operand")
		}
		return t, nil
	case "!":
		t, err := c.checkExpr(e.Expr, types.BoolType)
		if err != nil {
			return nil, err
		}
		if !types.Assignable(t, types.BoolType) {
			return nil, diag.New(diag.TypeError, c.Path, e.Sp, "unary ! requires a Bool operand")
		}
		return types.BoolType, nil
	case "...":
		return c.checkExpr(e.Expr, dest)
	}
	return nil, diag.New(diag.TypeError, c.Path, e.Sp, fmt.Sprintf("unknown unary operator %q", e.Op))
}

func (c *Checker) checkMemberExpr(e *ast.MemberExpr, dest types.Type) (types.Type, *diag.Report) {
	targetType, err := c.checkExpr(e.Target, nil)
	if err != nil {
		return nil, err
	}
	switch t := targetType.(type) {
	case *types.Tuple:
		idx, perr := strconv.Atoi(e.Field)
		if perr != nil || idx < 0 || idx >= len(t.Items) {
			return nil, diag.New(diag.ResError, c.Path, e.Sp, fmt.Sprintf("no field %q on tuple", e.Field))
		}
		return t.Items[idx], nil
	case *types.Struct:
		f, ok := t.Field(e.Field)
		if !ok {
			return nil, diag.New(diag.ResError, c.Path, e.Sp, fmt.Sprintf("no field %q on %s", e.Field, t.Name))
		}
		return f.Type, nil
	case *types.Variant:
		f, ok := t.Field(e.Field)
		if !ok {
			return nil, diag.New(diag.ResError, c.Path, e.Sp, fmt.Sprintf("no field %q on %s", e.Field, t.Name))
		}
		return f.Type, nil
	case *types.Module:
		if en, ok := t.Assoc.(*types.Enum); ok {
			v, ok := en.Variant(e.Field)
			if !ok {
				return nil, diag.New(diag.ResError, c.Path, e.Sp, fmt.Sprintf("enum %s has no variant %q", en.Name, e.Field))
			}
			if v.Constant {
				return v, nil
			}
			params := make([]types.Type, len(v.Fields))
			for i, f := range v.Fields {
				params[i] = f.Type
			}
			return &types.Proc{Params: params, Returns: v}, nil
		}
		return nil, diag.New(diag.ResError, c.Path, e.Sp, fmt.Sprintf("no member %q", e.Field))
	}
	return nil, diag.New(diag.TypeError, c.Path, e.Sp, fmt.Sprintf("cannot access field on %s", targetType))
}

// checkCallExpr special-cases the bare `Name(args)` tuple-struct
// constructor (the parser never builds a dedicated node for it — it's
// an ordinary CallExpr over an IdentExpr naming the struct's module).
func (c *Checker) checkCallExpr(e *ast.CallExpr, dest types.Type) (types.Type, *diag.Report) {
	if ident, ok := e.Callee.(*ast.IdentExpr); ok {
		if d, ok := c.Values.Lookup(ident.Name); ok {
			if mod, ok := d.Value.(*types.Module); ok {
				if st, ok := mod.Assoc.(*types.Struct); ok && st.TupleForm {
					ident.SetResolvedType(mod)
					if err := c.checkPositionalArgs(e.Args, st.Fields, e.Sp); err != nil {
						return nil, err
					}
					return st, nil
				}
			}
		}
	}

	calleeType, err := c.checkExpr(e.Callee, nil)
	if err != nil {
		return nil, err
	}
	proc, ok := calleeType.(*types.Proc)
	if !ok {
		return nil, diag.New(diag.TypeError, c.Path, e.Callee.Span(), fmt.Sprintf("cannot call value of type %s", calleeType))
	}
	if len(e.Args) != len(proc.Params) {
		return nil, diag.New(diag.TypeError, c.Path, e.Sp,
			fmt.Sprintf("expected %d arguments, got %d", len(proc.Params), len(e.Args)))
	}
	for i, a := range e.Args {
		at, aerr := c.checkExpr(a, proc.Params[i])
		if aerr != nil {
			return nil, aerr
		}
		if !types.Assignable(at, proc.Params[i]) {
			return nil, diag.New(diag.TypeError, c.Path, a.Span(),
				fmt.Sprintf("argument %d has type %s, expected %s", i+1, at, proc.Params[i]))
		}
	}
	return proc.Returns, nil
}

func (c *Checker) checkPositionalArgs(args []ast.Expr, fields []types.Field, sp source.Span) *diag.Report {
	if len(args) != len(fields) {
		return diag.New(diag.TypeError, c.Path, sp, fmt.Sprintf("expected %d arguments, got %d", len(fields), len(args)))
	}
	for i, a := range args {
		at, err := c.checkExpr(a, fields[i].Type)
		if err != nil {
			return err
		}
		if !types.Assignable(at, fields[i].Type) {
			return diag.New(diag.TypeError, c.Path, a.Span(),
				fmt.Sprintf("argument %d has type %s, expected %s", i+1, at, fields[i].Type))
		}
	}
	return nil
}

const safeIntBound = int64(1) << 53

func isSafeInt(b *big.Int) bool {
	return b.IsInt64() && b.Int64() <= safeIntBound && b.Int64() >= -safeIntBound
}

func (c *Checker) checkLiteralExpr(e *ast.LiteralExpr, dest types.Type) (types.Type, *diag.Report) {
	switch e.Kind {
	case ast.IntLit:
		if dest == types.FloatType {
			if bi, ok := e.Value.(*big.Int); ok && isSafeInt(bi) {
				f, _ := new(big.Float).SetInt(bi).Float64()
				e.Kind = ast.FloatLit
				e.Value = f
				return types.FloatType, nil
			}
		}
		return types.IntType, nil
	case ast.FloatLit:
		return types.FloatType, nil
	case ast.StringLit:
		return types.StrType, nil
	case ast.BoolLit:
		return types.BoolType, nil
	}
	return nil, diag.New(diag.TypeError, c.Path, e.Sp, "invalid literal")
}

func (c *Checker) checkIdentExpr(e *ast.IdentExpr, dest types.Type) (types.Type, *diag.Report) {
	d, ok := c.Values.Lookup(e.Name)
	if !ok {
		return nil, diag.New(diag.ResError, c.Path, e.Sp, fmt.Sprintf("undeclared name %q", e.Name))
	}
	return d.Value, nil
}
