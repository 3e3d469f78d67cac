package types

import (
	"github.com/emberlang/ember/lang/ast"
	"github.com/emberlang/ember/lang/token"
)

// Member is a single declared member of a struct, class or interface: a
// field or a method, tagged with the classifiers it was declared with
// (§3 "Members").
type Member struct {
	Name        string
	Type        Type
	Classifiers token.Classifiers
	Decl        ast.Node // the *ast.VarDecl or *ast.FuncDecl this came from
}

func (m *Member) IsVirtual() bool  { return m.Classifiers.Has(token.VIRTUAL) }
func (m *Member) IsStatic() bool   { return m.Classifiers.Has(token.STATIC) }
func (m *Member) IsAbstract() bool { return m.Classifiers.Has(token.ABSTRACT) }
func (m *Member) IsOverride() bool { return m.Classifiers.Has(token.OVERRIDE) }
func (m *Member) IsPublic() bool   { return m.Classifiers.Has(token.PUBLIC) }
func (m *Member) IsPrivate() bool  { return m.Classifiers.Has(token.PRIVATE) }

// Custom is the shared base satisfied by both Struct and Virtual (and so,
// transitively, by Class and Interface): any type that carries its own
// named member list (§3 "custom").
type Custom interface {
	Type
	Members() []*Member
	Member(name string) *Member
}

// MemberLocator pairs a member with the custom type that physically
// declared it (its "residence"), so that code emitting a member access
// through an inherited member can walk from the presenting type down to
// the ancestor subobject that actually owns the field or vtable slot.
type MemberLocator struct {
	Member    *Member
	Residence Custom
}
