package ast

import (
	"fmt"

	"github.com/emberlang/ember/lang/token"
)

// ClassInherit is the optional "inherits" clause of a class or interface
// declaration, e.g. "class B : A1, A2 { ... }".
type ClassInherit struct {
	Colon  token.Pos
	Supers []*QualifiedName
}

type (
	// FuncDecl declares a free function, a namespace function or a method
	// (when its enclosing scope is a struct/class/interface body).
	FuncDecl struct {
		Fn          token.Pos
		Name        *IdentExpr
		Classifiers token.Classifiers
		Params      []*Param
		ResultType  Type // nil: return type to be inferred from the body
		Body        *Block // nil for an interface method without a default body
		End         token.Pos

		// Function is filled in by the prototype pass; it is a
		// *sema.Function but kept as `any` here to avoid an import cycle
		// between ast and sema.
		Function any
	}

	// VarDecl declares a global, namespace-scoped, local, or field
	// variable/const. IsConst distinguishes "const" from "var".
	VarDecl struct {
		Start       token.Pos
		IsConst     bool
		Name        *IdentExpr
		Classifiers token.Classifiers
		DeclType    Type // nil: type inferred from Init
		Init        Expr // nil: zero-initialized
		EndPos      token.Pos
	}

	// StructDecl declares a value type.
	StructDecl struct {
		Struct      token.Pos
		Name        *IdentExpr
		Classifiers token.Classifiers
		Members     []Decl
		End         token.Pos

		// Type is filled in by the prototype pass; it is a *types.Struct
		// but kept as `any` here to avoid an import cycle between ast and
		// types.
		Type any
	}

	// ClassDecl declares a reference type with virtual dispatch.
	ClassDecl struct {
		Class       token.Pos
		Name        *IdentExpr
		Classifiers token.Classifiers
		Inherits    *ClassInherit // nil if no "inherits" clause
		Members     []Decl
		End         token.Pos

		// Type is filled in by the prototype pass; it is a *types.Virtual
		// but kept as `any` here to avoid an import cycle between ast and
		// types.
		Type any
	}

	// InterfaceDecl declares an interface.
	InterfaceDecl struct {
		Interface   token.Pos
		Name        *IdentExpr
		Classifiers token.Classifiers
		Inherits    *ClassInherit // nil if no "inherits" clause (interfaces may extend interfaces)
		Members     []Decl
		End         token.Pos

		// Type is filled in by the prototype pass; it is a *types.Virtual
		// but kept as `any` here to avoid an import cycle between ast and
		// types.
		Type any
	}

	// NamespaceDecl declares a namespace. Global marks the file-level
	// implicit namespace declaration ("ns X" at the top of a file), whose
	// FQN is its bare name rather than a concatenation onto an enclosing
	// namespace.
	NamespaceDecl struct {
		Ns     token.Pos
		Name   *IdentExpr
		Global bool
		Decls  []Decl
		End    token.Pos
	}
)

func (n *FuncDecl) String() string {
	return fmt.Sprintf("fn %s (%d params)", n.Name.Lit, len(n.Params))
}
func (n *FuncDecl) Span() (start, end token.Pos) { return n.Fn, n.End }
func (n *FuncDecl) Walk(v Visitor) {
	Walk(v, n.Name)
	for _, p := range n.Params {
		Walk(v, p.Name)
		if p.Type != nil {
			Walk(v, p.Type)
		}
	}
	if n.ResultType != nil {
		Walk(v, n.ResultType)
	}
	if n.Body != nil {
		Walk(v, n.Body)
	}
}
func (n *FuncDecl) stmt()                 {}
func (n *FuncDecl) decl()                 {}
func (n *FuncDecl) DeclName() *IdentExpr  { return n.Name }

func (n *VarDecl) String() string {
	kind := "var"
	if n.IsConst {
		kind = "const"
	}
	return kind + " " + n.Name.Lit
}
func (n *VarDecl) Span() (start, end token.Pos) { return n.Start, n.EndPos }
func (n *VarDecl) Walk(v Visitor) {
	Walk(v, n.Name)
	if n.DeclType != nil {
		Walk(v, n.DeclType)
	}
	if n.Init != nil {
		Walk(v, n.Init)
	}
}
func (n *VarDecl) stmt()                {}
func (n *VarDecl) decl()                {}
func (n *VarDecl) DeclName() *IdentExpr { return n.Name }

func (n *StructDecl) String() string {
	return fmt.Sprintf("struct %s (%d members)", n.Name.Lit, len(n.Members))
}
func (n *StructDecl) Span() (start, end token.Pos) { return n.Struct, n.End }
func (n *StructDecl) Walk(v Visitor) {
	Walk(v, n.Name)
	for _, m := range n.Members {
		Walk(v, m)
	}
}
func (n *StructDecl) stmt()                {}
func (n *StructDecl) decl()                {}
func (n *StructDecl) DeclName() *IdentExpr { return n.Name }

func (n *ClassDecl) String() string {
	return fmt.Sprintf("class %s (%d members)", n.Name.Lit, len(n.Members))
}
func (n *ClassDecl) Span() (start, end token.Pos) { return n.Class, n.End }
func (n *ClassDecl) Walk(v Visitor) {
	Walk(v, n.Name)
	if n.Inherits != nil {
		for _, s := range n.Inherits.Supers {
			Walk(v, s)
		}
	}
	for _, m := range n.Members {
		Walk(v, m)
	}
}
func (n *ClassDecl) stmt()                {}
func (n *ClassDecl) decl()                {}
func (n *ClassDecl) DeclName() *IdentExpr { return n.Name }

func (n *InterfaceDecl) String() string {
	return fmt.Sprintf("interface %s (%d members)", n.Name.Lit, len(n.Members))
}
func (n *InterfaceDecl) Span() (start, end token.Pos) { return n.Interface, n.End }
func (n *InterfaceDecl) Walk(v Visitor) {
	Walk(v, n.Name)
	if n.Inherits != nil {
		for _, s := range n.Inherits.Supers {
			Walk(v, s)
		}
	}
	for _, m := range n.Members {
		Walk(v, m)
	}
}
func (n *InterfaceDecl) stmt()                {}
func (n *InterfaceDecl) decl()                {}
func (n *InterfaceDecl) DeclName() *IdentExpr { return n.Name }

func (n *NamespaceDecl) String() string {
	return fmt.Sprintf("namespace %s (%d decls)", n.Name.Lit, len(n.Decls))
}
func (n *NamespaceDecl) Span() (start, end token.Pos) { return n.Ns, n.End }
func (n *NamespaceDecl) Walk(v Visitor) {
	Walk(v, n.Name)
	for _, d := range n.Decls {
		Walk(v, d)
	}
}
func (n *NamespaceDecl) stmt()                {}
func (n *NamespaceDecl) decl()                {}
func (n *NamespaceDecl) DeclName() *IdentExpr { return n.Name }
