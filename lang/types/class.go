package types

// NewClass creates a new class type. Classes may declare data members,
// virtual methods and static members, and may inherit from zero or more
// other classes and interfaces (§3, SUPPLEMENTED FEATURES: multiple
// inheritance).
func NewClass(namespace, name string, decl any) *Virtual {
	return NewVirtual(KindClass, namespace, name, decl)
}

// IsClass reports whether v is a class (as opposed to an interface).
func (v *Virtual) IsClass() bool { return v.Kind == KindClass }
