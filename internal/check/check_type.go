package check

import (
	"fmt"

	"github.com/ejrbuss/yoku-sub000/internal/ast"
	"github.com/ejrbuss/yoku-sub000/internal/diag"
	"github.com/ejrbuss/yoku-sub000/internal/types"
)

// resolveTypeExpr turns a parsed type expression into a type term,
// looking identifiers up in the type-name scope.
func (c *Checker) resolveTypeExpr(te ast.TypeExpr) (types.Type, *diag.Report) {
	switch t := te.(type) {
	case *ast.IdentTypeExpr:
		d, ok := c.Types.Lookup(t.Name)
		if !ok {
			return nil, diag.New(diag.ResError, c.Path, t.Sp, fmt.Sprintf("undeclared type %q", t.Name))
		}
		return d.Value, nil
	case *ast.WildcardTypeExpr:
		return types.WildcardType, nil
	case *ast.ProcTypeExpr:
		params := make([]types.Type, len(t.Params))
		for i, p := range t.Params {
			pt, err := c.resolveTypeExpr(p)
			if err != nil {
				return nil, err
			}
			params[i] = pt
		}
		ret := types.Type(types.UnitType)
		if t.Returns != nil {
			rt, err := c.resolveTypeExpr(t.Returns)
			if err != nil {
				return nil, err
			}
			ret = rt
		}
		return &types.Proc{Params: params, Returns: ret}, nil
	case *ast.TupleTypeExpr:
		items := make([]types.Type, len(t.Items))
		for i, it := range t.Items {
			it2, err := c.resolveTypeExpr(it)
			if err != nil {
				return nil, err
			}
			items[i] = it2
		}
		return &types.Tuple{Items: items}, nil
	}
	return nil, diag.New(diag.TypeError, c.Path, te.Span(), "invalid type expression")
}
