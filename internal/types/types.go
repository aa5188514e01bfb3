// Package types implements Yoku's structural/nominal type system: type
// terms, reconciliation (assignability and assertability), and the
// scope-stack family shared by the checker and evaluator.
package types

import (
	"fmt"
	"strings"
)

// Type is a type term. Primitive terms are identity-compared singletons;
// Struct/Enum/Variant are nominal (identity-compared, one term per
// declaration); Tuple/Proc are structural (compared element-wise).
type Type interface {
	String() string
	typeTerm()
}

// Primitive is one of the pre-declared terms. There is exactly one
// instance per name; equality is pointer (identity) equality.
type Primitive struct {
	Name string
}

func (p *Primitive) String() string { return p.Name }
func (*Primitive) typeTerm()        {}

// The pre-declared primitive singletons.
var (
	BoolType  = &Primitive{Name: "Bool"}
	IntType   = &Primitive{Name: "Int"}
	FloatType = &Primitive{Name: "Float"}
	StrType   = &Primitive{Name: "Str"}
	TypeType  = &Primitive{Name: "Type"}
	AnyType   = &Primitive{Name: "Any"}
	NeverType = &Primitive{Name: "Never"}

	// ModuleNameType is the pre-declared `Module` type name (spec §6.5):
	// the generic static type of any struct/enum's carrier value, as
	// opposed to the specific *Module term each declaration produces.
	ModuleNameType = &Primitive{Name: "Module"}
)

// Wildcard is the resolution-only marker used inside unresolved type
// expressions (the `_` type). A type, once it has been checked, must
// never contain a Wildcard (invariant 2, spec §8).
type Wildcard struct{}

func (*Wildcard) String() string { return "_" }
func (*Wildcard) typeTerm()      {}

// WildcardType is the shared Wildcard instance.
var WildcardType = &Wildcard{}

// Tuple is a structural product type. An empty Tuple is the Unit type.
type Tuple struct {
	Items []Type
}

func (t *Tuple) String() string {
	if len(t.Items) == 0 {
		return "()"
	}
	parts := make([]string, len(t.Items))
	for i, it := range t.Items {
		parts[i] = it.String()
	}
	suffix := ""
	if len(t.Items) == 1 {
		suffix = ","
	}
	return "(" + strings.Join(parts, ", ") + suffix + ")"
}
func (*Tuple) typeTerm() {}

// UnitType is the empty tuple.
var UnitType = &Tuple{}

// Proc is a structural procedure type.
type Proc struct {
	Params  []Type
	Returns Type
}

func (p *Proc) String() string {
	parts := make([]string, len(p.Params))
	for i, pr := range p.Params {
		parts[i] = pr.String()
	}
	ret := "Unit"
	if p.Returns != nil {
		ret = p.Returns.String()
	}
	return fmt.Sprintf("proc (%s) -> %s", strings.Join(parts, ", "), ret)
}
func (*Proc) typeTerm() {}

// Field is one field of a Struct or Variant: Name is either a field
// identifier or a tuple-form positional index rendered as a string.
type Field struct {
	Mutable bool
	Name    string
	Type    Type
}

// Struct is a nominal structural record or tuple-form type.
type Struct struct {
	Name      string
	TupleForm bool
	Fields    []Field
}

func (s *Struct) String() string { return s.Name }
func (*Struct) typeTerm()        {}

func (s *Struct) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Enum is a nominal sum type; its Variants are appended during its own
// declaration, before the Enum is exposed via scope (spec §3.3 lifecycle).
type Enum struct {
	Name     string
	Variants []*Variant
}

func (e *Enum) String() string { return e.Name }
func (*Enum) typeTerm()        {}

func (e *Enum) Variant(name string) (*Variant, bool) {
	for _, v := range e.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return nil, false
}

// Variant is one case of an Enum. Parent is a non-owning back-reference:
// a Variant is only ever reachable through its Enum.
type Variant struct {
	Name      string
	Constant  bool // no fields: the variant is itself a value, not a constructor
	TupleForm bool
	Fields    []Field
	Parent    *Enum
}

func (v *Variant) String() string { return v.Parent.Name + "." + v.Name }
func (*Variant) typeTerm()        {}

func (v *Variant) Field(name string) (Field, bool) {
	for _, f := range v.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Module is the runtime/type carrier for a declared type, letting it be
// referenced as a value (e.g. a struct name used as its own constructor,
// or an enum name used to reach `Enum.Variant`).
type Module struct {
	Name   string
	Assoc  Type // the struct/enum this module carries, or nil
	Fields map[string]Type
	Types  map[string]Type
}

func (m *Module) String() string { return m.Name }
func (*Module) typeTerm()        {}
