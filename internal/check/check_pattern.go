package check

import (
	"fmt"

	"github.com/ejrbuss/yoku-sub000/internal/ast"
	"github.com/ejrbuss/yoku-sub000/internal/diag"
	"github.com/ejrbuss/yoku-sub000/internal/source"
	"github.com/ejrbuss/yoku-sub000/internal/types"
)

// unifyPattern checks a pattern against a scrutinee type, declaring any
// names it binds in the value scope. assertOnly permits the assert-only
// widenings (match arms, if-let, `var … assert`) rather than plain
// assignability (var declarations without `assert`).
func (c *Checker) unifyPattern(p ast.Pattern, scrutinee types.Type, mutable, assertOnly bool) *diag.Report {
	_, err := c.unifyPatternInner(p, scrutinee, mutable, assertOnly)
	return err
}

func assignableCheck(from, into types.Type, assertOnly bool) bool {
	if assertOnly {
		return types.Assertable(from, into)
	}
	return types.Assignable(from, into)
}

// unifyPatternInner recurses on every pattern it matches, including those
// nested inside a tuple/struct/variant/as pattern, and sets each node's
// resolved type as it returns so the evaluator can rely on ResolvedType()
// for nominal identity regardless of nesting depth.
func (c *Checker) unifyPatternInner(p ast.Pattern, scrutinee types.Type, mutable, assertOnly bool) (resultType types.Type, err *diag.Report) {
	defer func() {
		if err == nil {
			p.SetResolvedType(resultType)
		}
	}()
	return c.unifyPatternCase(p, scrutinee, mutable, assertOnly)
}

func (c *Checker) unifyPatternCase(p ast.Pattern, scrutinee types.Type, mutable, assertOnly bool) (types.Type, *diag.Report) {
	switch pat := p.(type) {
	case *ast.WildcardPattern:
		return scrutinee, nil

	case *ast.LiteralPattern:
		lt := literalPatternType(pat.Kind)
		if !assignableCheck(lt, scrutinee, assertOnly) {
			return nil, diag.New(diag.TypeError, c.Path, pat.Sp,
				fmt.Sprintf("pattern of type %s cannot match %s", lt, scrutinee))
		}
		return lt, nil

	case *ast.IdentPattern:
		// Pattern bindings may themselves be shadowed later; only the
		// builtins (declared non-shadowable in the global frame) block a
		// redeclaration.
		if derr := c.Values.Declare(pat.Name, mutable, true, scrutinee); derr != nil {
			return nil, diag.New(diag.ResError, c.Path, pat.Sp, derr.Error())
		}
		return scrutinee, nil

	case *ast.AsPattern:
		lt, err := c.unifyPatternInner(pat.Left, scrutinee, mutable, assertOnly)
		if err != nil {
			return nil, err
		}
		rt, err := c.unifyPatternInner(pat.Right, lt, mutable, assertOnly)
		if err != nil {
			return nil, err
		}
		return rt, nil

	case *ast.TuplePattern:
		tup, ok := scrutinee.(*types.Tuple)
		if !ok || len(tup.Items) != len(pat.Items) {
			return nil, diag.New(diag.TypeError, c.Path, pat.Sp,
				fmt.Sprintf("tuple pattern of %d items cannot match %s", len(pat.Items), scrutinee))
		}
		items := make([]types.Type, len(pat.Items))
		for i, sub := range pat.Items {
			it, err := c.unifyPatternInner(sub, tup.Items[i], mutable, assertOnly)
			if err != nil {
				return nil, err
			}
			items[i] = it
		}
		return &types.Tuple{Items: items}, nil

	case *ast.StructPattern:
		d, ok := c.Types.Lookup(pat.Name)
		if !ok {
			return nil, diag.New(diag.ResError, c.Path, pat.Sp, fmt.Sprintf("undeclared type %q", pat.Name))
		}
		st, ok := d.Value.(*types.Struct)
		if !ok {
			return nil, diag.New(diag.TypeError, c.Path, pat.Sp, fmt.Sprintf("%q is not a struct type", pat.Name))
		}
		if !assignableCheck(st, scrutinee, assertOnly) {
			return nil, diag.New(diag.TypeError, c.Path, pat.Sp,
				fmt.Sprintf("pattern of type %s cannot match %s", st, scrutinee))
		}
		if err := c.unifyFieldPatterns(st.Fields, pat.Fields, mutable, assertOnly, pat.Sp); err != nil {
			return nil, err
		}
		return st, nil

	case *ast.VariantPattern:
		d, ok := c.Types.Lookup(pat.EnumName)
		if !ok {
			return nil, diag.New(diag.ResError, c.Path, pat.Sp, fmt.Sprintf("undeclared type %q", pat.EnumName))
		}
		en, ok := d.Value.(*types.Enum)
		if !ok {
			return nil, diag.New(diag.TypeError, c.Path, pat.Sp, fmt.Sprintf("%q is not an enum type", pat.EnumName))
		}
		v, ok := en.Variant(pat.VariantName)
		if !ok {
			return nil, diag.New(diag.ResError, c.Path, pat.Sp,
				fmt.Sprintf("enum %s has no variant %q", en.Name, pat.VariantName))
		}
		if !assignableCheck(v, scrutinee, assertOnly) {
			return nil, diag.New(diag.TypeError, c.Path, pat.Sp,
				fmt.Sprintf("pattern of type %s cannot match %s", v, scrutinee))
		}
		if err := c.unifyFieldPatterns(v.Fields, pat.Fields, mutable, assertOnly, pat.Sp); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, diag.New(diag.TypeError, c.Path, p.Span(), "unsupported pattern")
}

func (c *Checker) unifyFieldPatterns(fields []types.Field, pats []ast.FieldPattern, mutable, assertOnly bool, sp source.Span) *diag.Report {
	posIdx := 0
	for _, fp := range pats {
		name := fp.Name
		if name == "" {
			if posIdx >= len(fields) {
				return diag.New(diag.TypeError, c.Path, sp, "too many field patterns")
			}
			name = fields[posIdx].Name
			posIdx++
		}
		f, ok := fieldByName(fields, name)
		if !ok {
			return diag.New(diag.ResError, c.Path, sp, fmt.Sprintf("no field %q", name))
		}
		if _, err := c.unifyPatternInner(fp.Pattern, f.Type, mutable, assertOnly); err != nil {
			return err
		}
	}
	return nil
}

func literalPatternType(kind ast.LiteralKind) types.Type {
	switch kind {
	case ast.IntLit:
		return types.IntType
	case ast.FloatLit:
		return types.FloatType
	case ast.StringLit:
		return types.StrType
	case ast.BoolLit:
		return types.BoolType
	}
	return types.NeverType
}
