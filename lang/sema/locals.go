package sema

import (
	"github.com/emberlang/ember/lang/ast"
	"github.com/emberlang/ember/lang/pass"
	"github.com/emberlang/ember/lang/symtab"
	"github.com/emberlang/ember/lang/token"
	"github.com/emberlang/ember/lang/types"
)

// LocalsPass implements §4.4.3: within a function body, infer each local
// variable declaration's type (from its initializer, when no explicit
// type is written) and define it in the symbol table under the
// function's scope, re-running to convergence so a local whose
// initializer calls a not-yet-resolved overload picks up the right type
// once that overload's prototype is known.
//
// Per the Open Question decisions recorded in DESIGN.md, this pass only
// type-checks an expression statement's direct top-level expression (a
// bare call, or an assignment), not expressions nested arbitrarily deep
// inside other expression statements; the language's grammar keeps
// expression-statements shallow enough in practice for this depth to
// suffice.
type LocalsPass struct{}

func (LocalsPass) Name() string { return "locals" }

func (LocalsPass) Enter(ctx *pass.Context, n ast.Node) int {
	scope := ctx.Table.CurrentScope()
	switch d := n.(type) {
	case *ast.VarDecl:
		return enterLocalVar(ctx, scope, d)
	case *ast.ExprStmt:
		_, _ = exprType(ctx, scope, d.X)
		return 0
	case *ast.ReturnStmt:
		if d.Result != nil {
			_, _ = exprType(ctx, scope, d.Result)
		}
		return 0
	case *ast.IfStmt:
		_, _ = exprType(ctx, scope, d.Cond)
		return 0
	default:
		return 0
	}
}

func (LocalsPass) Exit(*pass.Context, ast.Node) int { return 0 }

func enterLocalVar(ctx *pass.Context, scope *symtab.Scope, d *ast.VarDecl) int {
	var (
		t  types.Type
		ok bool
	)
	if d.DeclType != nil {
		t, ok = ResolveType(ctx, scope, d.DeclType)
	} else if d.Init != nil {
		t, ok = exprType(ctx, scope, d.Init)
	} else {
		t, ok = types.Undefined, false
	}
	classifiers := d.Classifiers
	if d.IsConst {
		classifiers = append(append(token.Classifiers{}, classifiers...), token.CONST)
	}
	fqn := scope.Qualify(d.Name.Lit)
	existing, found := ctx.Table.FindNamed(scope, d.Name.Lit)
	changed := 0
	if !found || !types.Equal(existing.Type, t) {
		changed = 1
	}
	ctx.Table.Define(&symtab.Symbol{
		Name:        d.Name.Lit,
		FQN:         fqn,
		Type:        t,
		Classifiers: classifiers,
		Origin:      symtab.Origin{Decl: d, Pos: d.Start},
	})
	_ = ok
	return changed
}

var _ pass.Pass = LocalsPass{}
