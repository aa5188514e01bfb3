package eval

import (
	"math/big"

	"github.com/ejrbuss/yoku-sub000/internal/ast"
	"github.com/ejrbuss/yoku-sub000/internal/diag"
	"github.com/ejrbuss/yoku-sub000/internal/types"
)

// bindPattern unifies a pattern against v unconditionally, as a `var`/
// `const` declaration does: the checker has already proven the pattern
// matches structurally, so a runtime mismatch can only come from an
// assert-narrowed declaration whose dynamic value didn't hold up.
func (e *Evaluator) bindPattern(p ast.Pattern, v Value, mutable bool) *diag.Report {
	matched, err := e.matchPattern(p, v, mutable)
	if err != nil {
		return err
	}
	if !matched {
		return diag.New(diag.RunError, e.Path, p.Span(), "assertion failed: value does not match pattern")
	}
	return nil
}

// matchPattern attempts to match p against v, declaring any names it
// binds (at the requested mutability) as it goes, and reports whether the
// match succeeded. A caller that wants to discard bindings on a failed
// match (match/if-let) should do so by popping the scope frame it pushed
// before calling this, not by inspecting the bool (bindings made before a
// nested failure are simply left unused).
func (e *Evaluator) matchPattern(p ast.Pattern, v Value, mutable bool) (bool, *diag.Report) {
	switch pat := p.(type) {
	case *ast.WildcardPattern:
		return true, nil

	case *ast.LiteralPattern:
		lv, err := literalPatternValue(e.Path, pat)
		if err != nil {
			return false, err
		}
		return valuesEqual(lv, v), nil

	case *ast.IdentPattern:
		if err := e.Values.Declare(pat.Name, mutable, true, v); err != nil {
			return false, diag.New(diag.RunError, e.Path, pat.Sp, err.Error())
		}
		return true, nil

	case *ast.AsPattern:
		ok, err := e.matchPattern(pat.Left, v, mutable)
		if err != nil || !ok {
			return ok, err
		}
		return e.matchPattern(pat.Right, v, mutable)

	case *ast.TuplePattern:
		tv, ok := v.(*TupleValue)
		if !ok || len(tv.Items) != len(pat.Items) {
			return false, nil
		}
		for i, sub := range pat.Items {
			ok, err := e.matchPattern(sub, tv.Items[i], mutable)
			if err != nil || !ok {
				return ok, err
			}
		}
		return true, nil

	case *ast.StructPattern:
		sv, ok := v.(*StructValue)
		if !ok {
			return false, nil
		}
		st, ok := pat.ResolvedType().(*types.Struct)
		if !ok || st != sv.Typ {
			return false, nil
		}
		return e.matchFieldPatterns(pat.Fields, st.Fields, sv.Fields, mutable)

	case *ast.VariantPattern:
		ev, ok := v.(*EnumValue)
		if !ok {
			return false, nil
		}
		vt, ok := pat.ResolvedType().(*types.Variant)
		if !ok || vt != ev.Typ {
			return false, nil
		}
		return e.matchFieldPatterns(pat.Fields, vt.Fields, ev.Fields, mutable)
	}
	return false, diag.New(diag.RunError, e.Path, p.Span(), "unsupported pattern")
}

// matchFieldPatterns matches each field sub-pattern against its runtime
// value, resolving a positional (tuple-form) sub-pattern's field name from
// declFields in declaration order, mirroring the checker's
// unifyFieldPatterns.
func (e *Evaluator) matchFieldPatterns(pats []ast.FieldPattern, declFields []types.Field, values map[string]Value, mutable bool) (bool, *diag.Report) {
	posIdx := 0
	for _, fp := range pats {
		name := fp.Name
		if name == "" {
			name = declFields[posIdx].Name
			posIdx++
		}
		fv, ok := values[name]
		if !ok {
			return false, nil
		}
		ok, err := e.matchPattern(fp.Pattern, fv, mutable)
		if err != nil || !ok {
			return ok, err
		}
	}
	return true, nil
}

func literalPatternValue(path string, pat *ast.LiteralPattern) (Value, *diag.Report) {
	switch pat.Kind {
	case ast.IntLit:
		return IntValue{V: pat.Value.(*big.Int)}, nil
	case ast.FloatLit:
		return FloatValue(pat.Value.(float64)), nil
	case ast.StringLit:
		return StrValue(pat.Value.(string)), nil
	case ast.BoolLit:
		return BoolValue(pat.Value.(bool)), nil
	}
	return nil, diag.New(diag.RunError, path, pat.Sp, "invalid literal pattern")
}
