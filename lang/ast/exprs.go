package ast

import (
	"fmt"

	"github.com/emberlang/ember/lang/token"
)

// IsAssignable reports whether e can appear on the left-hand side of an
// assignment. Only identifiers and member accesses chained onto an
// assignable expression qualify.
func IsAssignable(e Expr) bool {
	switch e := e.(type) {
	case *IdentExpr:
		return true
	case *MemberExpr:
		return IsAssignable(e.Receiver)
	default:
		return false
	}
}

type (
	// IdentExpr is a bare identifier, resolved by the symbol table.
	IdentExpr struct {
		Start token.Pos
		Lit   string

		// Symbol is filled in during resolution; kept as `any` (a
		// *symtab.Symbol) to avoid an import cycle.
		Symbol any
	}

	// NumberLit is an integer or floating-point literal. Sign, Integer,
	// Fraction and Exponent mirror the parser's decomposition of the raw
	// literal text; Classifier is the optional trailing suffix (u, i16,
	// f32, z, ...) that overrides the literal's default type.
	NumberLit struct {
		StartPos   token.Pos
		Raw        string
		Negative   bool
		Integer    string
		Fraction   string // "" if no fractional part
		Exponent   string // "" if no exponent, may start with '-'
		Classifier string // "" if no trailing type suffix
	}

	// BoolLit is a boolean literal.
	BoolLit struct {
		Start token.Pos
		Value bool
	}

	// CallExpr is a function or method call.
	CallExpr struct {
		Fn     Expr
		Args   []Expr
		Rparen token.Pos
	}

	// MemberExpr is a "receiver.name" member access, used for both field and
	// method access, in both read and write position.
	MemberExpr struct {
		Receiver Expr
		Dot      token.Pos
		Name     *IdentExpr
	}

	// UnaryExpr is a unary arithmetic expression, "-x" (negate) or "~x"
	// (bitwise complement).
	UnaryExpr struct {
		Op      token.Token // token.NEG or token.NOT
		OpPos   token.Pos
		Operand Expr
	}

	// BinaryExpr is a binary arithmetic, bitwise, or logical expression.
	BinaryExpr struct {
		Left  Expr
		Op    token.Token
		OpPos token.Pos
		Right Expr
	}

	// AssignExpr is an assignment expression, "lhs = rhs". Left must satisfy
	// IsAssignable.
	AssignExpr struct {
		Left  Expr
		Eq    token.Pos
		Right Expr
	}

	// CastExpr is an "expr as Type" expression.
	CastExpr struct {
		Operand Expr
		As      token.Pos
		Type    Type
	}
)

func (n *IdentExpr) String() string              { return n.Lit }
func (n *IdentExpr) Span() (start, end token.Pos) { return n.Start, n.Start + token.Pos(len(n.Lit)) }
func (n *IdentExpr) Walk(v Visitor)               {}
func (n *IdentExpr) expr()                        {}

func (n *NumberLit) String() string              { return n.Raw }
func (n *NumberLit) Span() (start, end token.Pos) { return n.StartPos, n.StartPos + token.Pos(len(n.Raw)) }
func (n *NumberLit) Walk(v Visitor)               {}
func (n *NumberLit) expr()                        {}

func (n *BoolLit) String() string              { return fmt.Sprintf("%v", n.Value) }
func (n *BoolLit) Span() (start, end token.Pos) { return n.Start, n.Start + 5 }
func (n *BoolLit) Walk(v Visitor)               {}
func (n *BoolLit) expr()                        {}

func (n *CallExpr) String() string              { return fmt.Sprintf("call (%d args)", len(n.Args)) }
func (n *CallExpr) Span() (start, end token.Pos) { start, _ = n.Fn.Span(); return start, n.Rparen }
func (n *CallExpr) Walk(v Visitor) {
	Walk(v, n.Fn)
	for _, a := range n.Args {
		Walk(v, a)
	}
}
func (n *CallExpr) expr() {}

func (n *MemberExpr) String() string { return "." + n.Name.Lit }
func (n *MemberExpr) Span() (start, end token.Pos) {
	start, _ = n.Receiver.Span()
	_, end = n.Name.Span()
	return start, end
}
func (n *MemberExpr) Walk(v Visitor) {
	Walk(v, n.Receiver)
	Walk(v, n.Name)
}
func (n *MemberExpr) expr() {}

func (n *UnaryExpr) String() string { return "unary " + n.Op.GoString() }
func (n *UnaryExpr) Span() (start, end token.Pos) {
	_, end = n.Operand.Span()
	return n.OpPos, end
}
func (n *UnaryExpr) Walk(v Visitor) { Walk(v, n.Operand) }
func (n *UnaryExpr) expr()          {}

func (n *BinaryExpr) String() string { return "binary " + n.Op.GoString() }
func (n *BinaryExpr) Span() (start, end token.Pos) {
	start, _ = n.Left.Span()
	_, end = n.Right.Span()
	return start, end
}
func (n *BinaryExpr) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}
func (n *BinaryExpr) expr() {}

func (n *AssignExpr) String() string { return "assign" }
func (n *AssignExpr) Span() (start, end token.Pos) {
	start, _ = n.Left.Span()
	_, end = n.Right.Span()
	return start, end
}
func (n *AssignExpr) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}
func (n *AssignExpr) expr() {}

func (n *CastExpr) String() string { return "cast" }
func (n *CastExpr) Span() (start, end token.Pos) {
	start, _ = n.Operand.Span()
	_, end = n.Type.Span()
	return start, end
}
func (n *CastExpr) Walk(v Visitor) {
	Walk(v, n.Operand)
	Walk(v, n.Type)
}
func (n *CastExpr) expr() {}
