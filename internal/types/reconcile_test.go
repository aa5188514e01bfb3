package types

import "testing"

func TestReconcilePrimitives(t *testing.T) {
	if !Assignable(IntType, IntType) {
		t.Errorf("Int should be assignable into Int")
	}
	if Assignable(IntType, StrType) {
		t.Errorf("Int should not be assignable into Str")
	}
	if !Assignable(IntType, AnyType) {
		t.Errorf("anything should be assignable into Any")
	}
	if !Assignable(NeverType, IntType) {
		t.Errorf("Never should be assignable into anything")
	}
}

func TestReconcileWildcard(t *testing.T) {
	resolved, ok := Reconcile(IntType, WildcardType, false)
	if !ok || resolved != Type(IntType) {
		t.Errorf("wildcard destination should resolve to the source type, got %v, %v", resolved, ok)
	}
	resolved, ok = Reconcile(WildcardType, StrType, false)
	if !ok || resolved != Type(StrType) {
		t.Errorf("wildcard source should resolve to the destination type, got %v, %v", resolved, ok)
	}
}

func TestReconcileTuplesStructural(t *testing.T) {
	a := &Tuple{Items: []Type{IntType, StrType}}
	b := &Tuple{Items: []Type{IntType, StrType}}
	if !Assignable(a, b) {
		t.Errorf("structurally identical tuples should be assignable")
	}
	c := &Tuple{Items: []Type{IntType, IntType}}
	if Assignable(a, c) {
		t.Errorf("tuples with different element types should not be assignable")
	}
}

func TestReconcileStructsNominal(t *testing.T) {
	s1 := &Struct{Name: "Point", Fields: []Field{{Name: "x", Type: IntType}}}
	s2 := &Struct{Name: "Point", Fields: []Field{{Name: "x", Type: IntType}}}
	if Assignable(s1, s2) {
		t.Errorf("two separately declared structs with the same shape should not be assignable (nominal identity)")
	}
	if !Assignable(s1, s1) {
		t.Errorf("a struct should be assignable into itself")
	}
}

func TestReconcileVariantAssertableIntoEnum(t *testing.T) {
	enum := &Enum{Name: "Color"}
	red := &Variant{Name: "Red", Constant: true, Parent: enum}
	enum.Variants = []*Variant{red}

	if Assignable(red, enum) {
		t.Fatalf("a Variant should not be plainly assignable into its Enum")
	}
	if !Assertable(red, enum) {
		t.Errorf("a Variant should be assertable into its Enum")
	}
	if !Assertable(enum, red) {
		t.Errorf("an Enum scrutinee should be assertable into one of its own Variants")
	}
}

func TestReconcileModuleNameAdmitsAnyCarrier(t *testing.T) {
	st := &Struct{Name: "Point"}
	mod := &Module{Name: "Point", Assoc: st}
	if !Assignable(mod, ModuleNameType) {
		t.Errorf("a specific module carrier should be assignable into the pre-declared Module name")
	}
	if Assignable(IntType, ModuleNameType) {
		t.Errorf("a non-module value should not be assignable into the pre-declared Module name")
	}
}

func TestUnion(t *testing.T) {
	got := Union([]Type{IntType, IntType})
	if got != Type(IntType) {
		t.Errorf("union of identical types should be that type, got %v", got)
	}
	got = Union([]Type{IntType, StrType})
	if got != Type(AnyType) {
		t.Errorf("union of unrelated types should fall back to Any, got %v", got)
	}
}
