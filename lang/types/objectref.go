package types

// Resolver looks up a previously-declared custom type by its fully
// qualified name. The symbol table satisfies this interface; it is
// spelled out locally here (rather than imported) so this package never
// depends on lang/symtab.
type Resolver interface {
	ResolveCustom(fqn string) (Custom, bool)
}

// ObjectTypeRef is a weak, by-name handle to a custom type, used anywhere
// a type needs to refer back to its owner without holding a strong
// reference to it — most importantly Function.MethodOf, which would
// otherwise cycle with the owning Virtual's own member list (§SUPPLEMENTED
// FEATURES, grounded on original_source's object_type_reference: a
// reference that is "born" unresolved and rehydrated by FQN lookup once
// the referent is known to exist).
//
// A reference is constructed with just the FQN; Resolve performs (and
// memoises) the actual lookup the first time it's needed, which is
// always after the prototype pass has finished declaring every type, so
// by then the lookup cannot fail for a well-formed program.
type ObjectTypeRef struct {
	fqn      string
	resolved Custom
}

// NewObjectTypeRef creates an unresolved reference to the custom type
// named fqn.
func NewObjectTypeRef(fqn string) *ObjectTypeRef {
	return &ObjectTypeRef{fqn: fqn}
}

// RefFor creates an already-resolved reference directly from a live
// Custom value, for the common case where the owner is at hand at
// construction time and a lookup would be redundant.
func RefFor(c Custom) *ObjectTypeRef {
	return &ObjectTypeRef{fqn: c.FQN(), resolved: c}
}

// FQN returns the referenced type's fully qualified name, whether or not
// it has been resolved yet.
func (r *ObjectTypeRef) FQN() string { return r.fqn }

// Resolve returns the referenced Custom type, looking it up through res
// and caching the result on first success. Subsequent calls (with any
// resolver, including nil) return the cached value directly.
func (r *ObjectTypeRef) Resolve(res Resolver) (Custom, bool) {
	if r.resolved != nil {
		return r.resolved, true
	}
	if res == nil {
		return nil, false
	}
	c, ok := res.ResolveCustom(r.fqn)
	if ok {
		r.resolved = c
	}
	return c, ok
}
