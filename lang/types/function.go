package types

import "strings"

// Function is the type of a function or method: a result type and an
// ordered parameter type list (§3 "function"). A method's Function type
// additionally carries a weak back-reference to the enclosing custom
// type, so that overload resolution and codegen can recover "this"'s
// static type without the function type itself holding a strong
// reference to (and so keeping alive, and potentially cycling with) the
// owner (§SUPPLEMENTED FEATURES, object_type_reference.{hpp,cpp}).
type Function struct {
	Params   []Type
	Result   Type
	MethodOf *ObjectTypeRef // nil for a free function
}

func NewFunction(params []Type, result Type) *Function {
	return &Function{Params: params, Result: result}
}

func (f *Function) FQN() string {
	var b strings.Builder
	b.WriteString("fn(")
	for i, p := range f.Params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.FQN())
	}
	b.WriteString(")->")
	if f.Result == nil {
		b.WriteString(Void.FQN())
	} else {
		b.WriteString(f.Result.FQN())
	}
	return b.String()
}

func (f *Function) String() string { return f.FQN() }

func (f *Function) IsValid() bool {
	if f.Result != nil && !f.Result.IsValid() {
		return false
	}
	for _, p := range f.Params {
		if !p.IsValid() {
			return false
		}
	}
	return true
}

// IsMethod reports whether f is bound to an enclosing custom type.
func (f *Function) IsMethod() bool { return f.MethodOf != nil }
