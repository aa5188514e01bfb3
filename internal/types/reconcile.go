package types

// pairKey identifies one (from, into) reconciliation in progress, used to
// detect cycles in structurally recursive types (e.g. a procedure type
// whose parameter refers back to itself).
type pairKey struct {
	from Type
	into Type
}

// reconciler carries the in-progress cycle stack for one top-level
// Reconcile call, per spec §4.4 ("a stack that records (from-node,
// into-node, result-in-progress) triples").
type reconciler struct {
	assert  bool
	visited map[pairKey]Type
}

// Reconcile walks from and into in lockstep and returns the resolved type
// with wildcards filled in, or ok=false if the two terms cannot be
// reconciled. assert enables the additional assertability widenings
// (spec §4.4): Any asserted from the left into anything, and a Variant
// asserted from its parent Enum.
func Reconcile(from, into Type, assert bool) (Type, bool) {
	r := &reconciler{assert: assert, visited: map[pairKey]Type{}}
	return r.reconcile(from, into)
}

// Assignable reports whether from ⤳ into holds.
func Assignable(from, into Type) bool {
	_, ok := Reconcile(from, into, false)
	return ok
}

// Assertable reports whether from ⤳! into holds.
func Assertable(from, into Type) bool {
	_, ok := Reconcile(from, into, true)
	return ok
}

func (r *reconciler) reconcile(from, into Type) (Type, bool) {
	key := pairKey{from, into}
	if result, ok := r.visited[key]; ok {
		return result, true
	}

	switch {
	case from == nil || into == nil:
		return nil, false

	// Wildcard resolution: a wildcard on either side resolves to the
	// other side. Both wildcard is explicitly undefined by the spec; we
	// resolve it to the wildcard itself rather than fail.
	case isWildcard(into) && isWildcard(from):
		return WildcardType, true
	case isWildcard(into):
		return from, true
	case isWildcard(from):
		return into, true

	// Any admits anything on the right.
	case into == Type(AnyType):
		return from, true

	// Never admits anything on the left.
	case from == Type(NeverType):
		return into, true

	// The pre-declared `Module` name admits any specific module carrier
	// (spec §6.5): it is the generic static type an `enum`/`struct`
	// declaration's value can be named through.
	case into == Type(ModuleNameType):
		if _, ok := from.(*Module); ok {
			return from, true
		}
	}

	if r.assert && from == Type(AnyType) {
		return into, true
	}

	r.visited[key] = into // placeholder for cycle detection

	switch f := from.(type) {
	case *Primitive:
		if i, ok := into.(*Primitive); ok && i == f {
			return f, true
		}
	case *Tuple:
		i, ok := into.(*Tuple)
		if !ok || len(i.Items) != len(f.Items) {
			break
		}
		items := make([]Type, len(f.Items))
		for idx := range f.Items {
			it, ok := r.reconcile(f.Items[idx], i.Items[idx])
			if !ok {
				return nil, false
			}
			items[idx] = it
		}
		return &Tuple{Items: items}, true
	case *Proc:
		i, ok := into.(*Proc)
		if !ok || len(i.Params) != len(f.Params) {
			break
		}
		params := make([]Type, len(f.Params))
		for idx := range f.Params {
			p, ok := r.reconcile(f.Params[idx], i.Params[idx])
			if !ok {
				return nil, false
			}
			params[idx] = p
		}
		ret, ok := r.reconcile(f.Returns, i.Returns)
		if !ok {
			return nil, false
		}
		return &Proc{Params: params, Returns: ret}, true
	case *Struct:
		if i, ok := into.(*Struct); ok && i == f {
			return f, true
		}
	case *Enum:
		if i, ok := into.(*Enum); ok && i == f {
			return f, true
		}
	case *Variant:
		if i, ok := into.(*Variant); ok && i == f {
			return f, true
		}
		if r.assert {
			if i, ok := into.(*Enum); ok && i == f.Parent {
				return f, true
			}
			// A variant may be asserted across to a sibling of the same
			// enum; whether the narrowing holds is decided at runtime,
			// exactly as for an Enum scrutinee.
			if i, ok := into.(*Variant); ok && i.Parent == f.Parent {
				return i, true
			}
		}
	case *Module:
		if i, ok := into.(*Module); ok && i == f {
			return f, true
		}
	}

	// Assertable also admits narrowing an Enum scrutinee into one of its
	// own Variants (spec §4.4).
	if r.assert {
		if fe, ok := from.(*Enum); ok {
			if iv, ok := into.(*Variant); ok && iv.Parent == fe {
				return iv, true
			}
		}
	}

	return nil, false
}

func isWildcard(t Type) bool {
	_, ok := t.(*Wildcard)
	return ok
}

// Union returns the first t in ts such that every t' in ts is assignable
// into t; if no such t exists, it returns AnyType (spec §4.4, invariant 6
// of spec §8).
func Union(ts []Type) Type {
	for _, candidate := range ts {
		all := true
		for _, other := range ts {
			if !Assignable(other, candidate) {
				all = false
				break
			}
		}
		if all {
			return candidate
		}
	}
	return AnyType
}
