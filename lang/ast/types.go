package ast

import (
	"strings"

	"github.com/emberlang/ember/lang/token"
)

// Type is an unresolved type reference as written in source: either a
// dotted qualified name or an inline function type. Resolving a Type node
// to a types.Type is the prototype pass's job (lang/sema).
type Type interface {
	Node
	typ()
}

// QualifiedName is a dotted identifier list, e.g. "a.b.c". A bare
// identifier is a QualifiedName with a single part.
type QualifiedName struct {
	Parts []*IdentExpr
}

func (n *QualifiedName) String() string {
	parts := make([]string, len(n.Parts))
	for i, p := range n.Parts {
		parts[i] = p.Lit
	}
	return strings.Join(parts, ".")
}
func (n *QualifiedName) Span() (start, end token.Pos) {
	start, _ = n.Parts[0].Span()
	_, end = n.Parts[len(n.Parts)-1].Span()
	return start, end
}
func (n *QualifiedName) Walk(v Visitor) {
	for _, p := range n.Parts {
		Walk(v, p)
	}
}
func (n *QualifiedName) typ() {}

// FuncType is an inline function type, e.g. "fn(i32, i32) -> bool".
type FuncType struct {
	Fn      token.Pos
	Params  []Type
	Arrow   token.Pos // zero if no explicit return type (implies void)
	Result  Type      // nil if Arrow is zero
	EndPos  token.Pos
}

func (n *FuncType) String() string { return "fn-type" }
func (n *FuncType) Span() (start, end token.Pos) { return n.Fn, n.EndPos }
func (n *FuncType) Walk(v Visitor) {
	for _, p := range n.Params {
		Walk(v, p)
	}
	if n.Result != nil {
		Walk(v, n.Result)
	}
}
func (n *FuncType) typ() {}
