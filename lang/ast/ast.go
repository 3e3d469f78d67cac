// Package ast defines the abstract syntax tree consumed by the semantic
// core. The tree is produced by an external parser (out of scope for this
// repository) and is only ever read and annotated here: the resolver
// attaches symbols to identifiers, the prototype pass attaches resolved
// function signatures, and so on.
package ast

import (
	"fmt"

	"github.com/emberlang/ember/lang/token"
)

// Node is any node in the tree.
type Node interface {
	fmt.Stringer

	// Span reports the node's start and end byte offsets in its source file.
	Span() (start, end token.Pos)

	// Walk visits each child node in declaration/evaluation order.
	Walk(v Visitor)
}

// Expr is an expression node.
type Expr interface {
	Node
	expr()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmt()
}

// Decl is a declaration: a function, variable, const, struct, class,
// interface or namespace. A Decl is always also a Stmt, since declarations
// may appear anywhere a statement may (at the top level, inside a
// namespace, or as a local declaration inside a function body).
type Decl interface {
	Stmt
	decl()

	// DeclName returns the identifier under which this declaration is bound,
	// or nil for declarations that bind multiple names (never the case for
	// the declaration kinds in this language).
	DeclName() *IdentExpr
}

// TranslationUnit is the root of a single compiled file: a list of
// top-level declarations and an opaque back-reference to whatever parser
// state is needed for diagnostic pretty-printing (position-to-source-line
// mapping). The core never inspects Parser; it only round-trips it back to
// whatever printed the diagnostic.
type TranslationUnit struct {
	Name   string
	Decls  []Decl
	Parser any
}

func (n *TranslationUnit) String() string { return "translation-unit " + n.Name }
func (n *TranslationUnit) Span() (start, end token.Pos) {
	if len(n.Decls) == 0 {
		return token.NoPos, token.NoPos
	}
	start, _ = n.Decls[0].Span()
	_, end = n.Decls[len(n.Decls)-1].Span()
	return start, end
}
func (n *TranslationUnit) Walk(v Visitor) {
	for _, d := range n.Decls {
		Walk(v, d)
	}
}

// Block is a brace-delimited sequence of statements.
type Block struct {
	Lbrace, Rbrace token.Pos
	Stmts          []Stmt
}

func (n *Block) String() string { return fmt.Sprintf("block {%d stmts}", len(n.Stmts)) }
func (n *Block) Span() (start, end token.Pos) { return n.Lbrace, n.Rbrace }
func (n *Block) Walk(v Visitor) {
	for _, s := range n.Stmts {
		Walk(v, s)
	}
}

// Param is a single function parameter: a name and its declared type. The
// type is never inferred for parameters (only return types and variable
// declarations may omit an explicit type).
type Param struct {
	Name *IdentExpr
	Type Type
}

func (p *Param) Span() (start, end token.Pos) {
	start, _ = p.Name.Span()
	if p.Type != nil {
		_, end = p.Type.Span()
	} else {
		_, end = p.Name.Span()
	}
	return start, end
}
