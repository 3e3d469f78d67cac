// Package types implements the closed algebraic universe of types
// described in §3: primitive, undefined/void, function, namespace,
// struct, class, interface and object-handle. Equality is always by FQN
// (§4.2), and every concrete type knows how to encode its own FQN
// recursively, so Equal and the assignability rules are implemented once,
// generically, on top of the Type interface.
package types

import "fmt"

// Type is implemented by every member of the type universe.
type Type interface {
	fmt.Stringer

	// FQN returns the type's canonical, recursively-encoded name (§4.2).
	// Two types are equal iff their FQNs match.
	FQN() string

	// IsValid reports whether this type is fully resolved. Undefined is
	// never valid; a function/custom type is valid once every referenced
	// type in its signature/members is itself valid.
	IsValid() bool
}

// Equal reports whether a and b denote the same type, per §4.2: "Two
// types are equal iff their canonical FQNs match."
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.FQN() == b.FQN()
}

// undefinedType is the sentinel for "not yet resolved". It is never valid.
type undefinedType struct{}

func (undefinedType) String() string { return "<undefined>" }
func (undefinedType) FQN() string    { return "<undefined>" }
func (undefinedType) IsValid() bool  { return false }

// Undefined is the single shared instance of the undefined sentinel type.
var Undefined Type = undefinedType{}

// voidType represents the absence of a value (a function's implicit
// return type, or an explicit "-> void" annotation).
type voidType struct{}

func (voidType) String() string { return "void" }
func (voidType) FQN() string    { return "void" }
func (voidType) IsValid() bool  { return true }

// Void is the single shared instance of the void type.
var Void Type = voidType{}

// IsAssignableFrom reports whether a value of type `from` may be assigned
// to a location of type `to`, per §4.2:
//
//   - primitive <- primitive: always true (implicit numeric coercion)
//   - object-handle(V) <- object-handle(W): true iff W == V or any super
//     of W is (transitively) assignable to V
//   - otherwise: false
func IsAssignableFrom(to, from Type) bool {
	if !to.IsValid() || !from.IsValid() {
		return false
	}
	if Equal(to, from) {
		return true
	}
	if _, ok := to.(*Primitive); ok {
		if _, ok := from.(*Primitive); ok {
			return true
		}
		return false
	}
	toHandle, toOK := to.(*ObjectHandle)
	fromHandle, fromOK := from.(*ObjectHandle)
	if toOK && fromOK {
		return handleAssignable(toHandle.Referent, fromHandle.Referent)
	}
	return false
}

func handleAssignable(to, from *Virtual) bool {
	if to == nil || from == nil {
		return false
	}
	if Equal(to, from) {
		return true
	}
	for _, s := range from.Supers {
		if handleAssignable(to, s) {
			return true
		}
	}
	return false
}

// MostSpecialized returns whichever of a and b is more specific per the
// specialization-score table (§4.2), ties favoring a (the left-hand
// operand in a binary expression).
func MostSpecialized(a, b *Primitive) *Primitive {
	if b.Score > a.Score {
		return b
	}
	return a
}
