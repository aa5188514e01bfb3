// Package eval implements Yoku's tree-walking evaluator: the final stage
// of the pipeline, run only over an already-checked AST.
package eval

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ejrbuss/yoku-sub000/internal/ast"
	"github.com/ejrbuss/yoku-sub000/internal/diag"
	"github.com/ejrbuss/yoku-sub000/internal/types"
)

// Value is a runtime value. Every concrete kind reports its static Type
// and renders itself the way `print`/the REPL display values.
type Value interface {
	Type() types.Type
	String() string
}

type UnitValue struct{}

func (UnitValue) Type() types.Type { return types.UnitType }
func (UnitValue) String() string   { return "()" }

type BoolValue bool

func (b BoolValue) Type() types.Type { return types.BoolType }
func (b BoolValue) String() string {
	if b {
		return "true"
	}
	return "false"
}

type IntValue struct {
	V *big.Int
}

func NewInt(v int64) IntValue { return IntValue{V: big.NewInt(v)} }

func (i IntValue) Type() types.Type { return types.IntType }
func (i IntValue) String() string   { return i.V.String() }

type FloatValue float64

func (f FloatValue) Type() types.Type { return types.FloatType }
func (f FloatValue) String() string   { return strconv.FormatFloat(float64(f), 'g', -1, 64) }

type StrValue string

func (s StrValue) Type() types.Type { return types.StrType }
func (s StrValue) String() string   { return string(s) }

type TupleValue struct {
	Items []Value
	Typ   *types.Tuple
}

func (t *TupleValue) Type() types.Type { return t.Typ }
func (t *TupleValue) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, it := range t.Items {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(it.String())
	}
	if len(t.Items) == 1 {
		sb.WriteByte(',')
	}
	sb.WriteByte(')')
	return sb.String()
}

// StructValue is one instance of a declared struct type; Fields is keyed
// by field name even for tuple-form structs (field names "0", "1", ...).
type StructValue struct {
	Fields map[string]Value
	Typ    *types.Struct
}

func (s *StructValue) Type() types.Type { return s.Typ }
func (s *StructValue) String() string   { return renderFields(s.Typ.Name, s.Typ.TupleForm, s.Typ.Fields, s.Fields) }

// EnumValue is one instance of a declared enum variant.
type EnumValue struct {
	Fields map[string]Value
	Typ    *types.Variant
}

func (e *EnumValue) Type() types.Type { return e.Typ }
func (e *EnumValue) String() string {
	name := e.Typ.Parent.Name + "." + e.Typ.Name
	if len(e.Typ.Fields) == 0 {
		return name
	}
	return renderFields(name, e.Typ.TupleForm, e.Typ.Fields, e.Fields)
}

func renderFields(name string, tupleForm bool, fields []types.Field, values map[string]Value) string {
	var sb strings.Builder
	sb.WriteString(name)
	if tupleForm {
		sb.WriteByte('(')
		for i, f := range fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(values[f.Name].String())
		}
		sb.WriteByte(')')
	} else {
		sb.WriteString(" { ")
		for i, f := range fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s = %s", f.Name, values[f.Name].String())
		}
		sb.WriteString(" }")
	}
	return sb.String()
}

// Implementation is the body of a ProcedureValue: either user Yoku code
// closed over its defining scope, or a host builtin.
type Implementation interface {
	implementation()
}

type UserProc struct {
	Params   []string
	Body     ast.Expr
	Captured *types.Scope[Value]
}

func (*UserProc) implementation() {}

type Builtin struct {
	Fn func(args []Value) (Value, *diag.Report)
}

func (*Builtin) implementation() {}

type ProcedureValue struct {
	Name *string // nil for anonymous closures
	Typ  *types.Proc
	Impl Implementation
}

func (p *ProcedureValue) Type() types.Type { return p.Typ }

// String renders a procedure as its type with its name substituted after
// `proc` (spec §6.5), e.g. `proc add (Int, Int) -> Int`; an anonymous
// closure prints with no name, e.g. `proc (Int) -> Int`.
func (p *ProcedureValue) String() string {
	if p.Name != nil {
		return "proc " + *p.Name + " " + procSignature(p.Typ)
	}
	return "proc " + procSignature(p.Typ)
}

func procSignature(t *types.Proc) string {
	return strings.TrimPrefix(t.String(), "proc ")
}

// ModuleValue is the runtime binding for a declared struct/enum name: a
// namespace a caller can construct instances from or read variants off
// of (spec §4.2, module-as-namespace).
type ModuleValue struct {
	Typ *types.Module
}

func (m *ModuleValue) Type() types.Type { return m.Typ }
func (m *ModuleValue) String() string   { return fmt.Sprintf("<module %s>", m.Typ.Name) }

// TypeValue reifies a type as a first-class value (the `type T` form).
type TypeValue struct {
	T types.Type
}

func (TypeValue) Type() types.Type { return types.TypeType }
func (t TypeValue) String() string { return fmt.Sprint(t.T) }

// variantCtor is the runtime stand-in for a non-constant enum variant
// accessed bare (not yet called): a callable that produces an EnumValue
// once applied to its fields (spec §4.2).
type variantCtor struct {
	V *types.Variant
}

func (c *variantCtor) Type() types.Type {
	params := make([]types.Type, len(c.V.Fields))
	for i, f := range c.V.Fields {
		params[i] = f.Type
	}
	return &types.Proc{Params: params, Returns: c.V}
}

func (c *variantCtor) String() string {
	t := c.Type().(*types.Proc)
	return "proc " + c.V.Parent.Name + "." + c.V.Name + " " + procSignature(t)
}
