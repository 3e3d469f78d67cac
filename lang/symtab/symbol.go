// Package symtab implements the FQN-keyed symbol table described in
// C1: a single flat map from fully-qualified name to Symbol, backed by
// github.com/dolthub/swiss (an open-addressing hash map), plus a scope
// stack that knows how to turn a short, lexical name into the FQN the
// map is actually keyed by.
package symtab

import (
	"github.com/emberlang/ember/lang/ast"
	"github.com/emberlang/ember/lang/token"
	"github.com/emberlang/ember/lang/types"
)

// Origin records where a symbol came from, for diagnostics and for the
// "imported" distinction described in §4.3 (a symbol pulled in from
// another translation unit's namespace vs. one declared locally).
type Origin struct {
	Decl ast.Node
	Pos  token.Pos
}

// Symbol is a single named entity: any declaration (variable, function
// overload, struct/class/interface, or namespace) once it has been
// entered into the table.
type Symbol struct {
	// Name is the symbol's local (unqualified, but possibly
	// backtick-suffixed for an overload) name, as it appears inside its
	// declaring scope.
	Name string
	// FQN is Name qualified by every enclosing scope, dot-joined (§4.2).
	FQN string

	Type        types.Type
	Classifiers token.Classifiers
	Origin      Origin
	Imported    bool

	// Value is the backend value this symbol lowers to once codegen has
	// run: an llir.Value for a local, an llir.Func for a function
	// overload, an llir.Global for a static/global variable. Left nil
	// until codegen visits the declaration.
	Value any
}

func (s *Symbol) IsVirtual() bool { return s.Classifiers.Has(token.VIRTUAL) }
func (s *Symbol) IsStatic() bool  { return s.Classifiers.Has(token.STATIC) }
func (s *Symbol) IsConst() bool   { return s.Classifiers.Has(token.CONST) }
