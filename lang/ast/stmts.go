package ast

import (
	"github.com/emberlang/ember/lang/token"
)

type (
	// ExprStmt is an expression used as a statement (a call, possibly
	// wrapped in an assignment).
	ExprStmt struct {
		X Expr
	}

	// ReturnStmt is a return statement, with an optional result expression
	// (nil for a bare "return").
	ReturnStmt struct {
		Start  token.Pos
		Result Expr
	}

	// IfStmt is "if cond { then } [else { else_ }]". An "else if" chain is
	// represented by Else containing a single block whose only statement is
	// another *IfStmt.
	IfStmt struct {
		If   token.Pos
		Cond Expr
		Then *Block
		Else *Block // nil if no else clause
	}

	// ForStmt is a range-based for loop, "for ident in start..end [step
	// step] { body }". Per this language's design, the core never emits
	// LLIR for a ForStmt (see the resolver/codegen open questions); it
	// exists so the parser contract can produce one.
	ForStmt struct {
		For   token.Pos
		Var   *IdentExpr
		Start Expr
		End   Expr
		Step  Expr // nil if no explicit step
		Body  *Block
	}

	// BlockStmt is a bare nested block, introducing a synthetic scope.
	BlockStmt struct {
		Body *Block
	}
)

func (n *ExprStmt) String() string              { return "expr-stmt" }
func (n *ExprStmt) Span() (start, end token.Pos) { return n.X.Span() }
func (n *ExprStmt) Walk(v Visitor)               { Walk(v, n.X) }
func (n *ExprStmt) stmt()                        {}

func (n *ReturnStmt) String() string { return "return" }
func (n *ReturnStmt) Span() (start, end token.Pos) {
	end = n.Start + 6
	if n.Result != nil {
		_, end = n.Result.Span()
	}
	return n.Start, end
}
func (n *ReturnStmt) Walk(v Visitor) {
	if n.Result != nil {
		Walk(v, n.Result)
	}
}
func (n *ReturnStmt) stmt() {}

func (n *IfStmt) String() string { return "if" }
func (n *IfStmt) Span() (start, end token.Pos) {
	_, end = n.Then.Span()
	if n.Else != nil {
		_, end = n.Else.Span()
	}
	return n.If, end
}
func (n *IfStmt) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Then)
	if n.Else != nil {
		Walk(v, n.Else)
	}
}
func (n *IfStmt) stmt() {}

func (n *ForStmt) String() string { return "for" }
func (n *ForStmt) Span() (start, end token.Pos) {
	_, end = n.Body.Span()
	return n.For, end
}
func (n *ForStmt) Walk(v Visitor) {
	Walk(v, n.Var)
	Walk(v, n.Start)
	Walk(v, n.End)
	if n.Step != nil {
		Walk(v, n.Step)
	}
	Walk(v, n.Body)
}
func (n *ForStmt) stmt() {}

func (n *BlockStmt) String() string              { return "block-stmt" }
func (n *BlockStmt) Span() (start, end token.Pos) { return n.Body.Span() }
func (n *BlockStmt) Walk(v Visitor)               { Walk(v, n.Body) }
func (n *BlockStmt) stmt()                        {}
