// Package pass implements the fixed-point AST pass framework described
// in C3: semantic analysis runs as a short, ordered list of passes, each
// walking the whole tree and reporting how many things it changed;
// passes that can still make progress (most importantly the prototype
// pass, §4.4.2) are re-run until a full walk changes nothing: a "keep
// iterating until stable" shape generalized here to a list of walks run
// to convergence, rather than a single fixed walk.
package pass

import (
	"github.com/emberlang/ember/lang/ast"
	"github.com/emberlang/ember/lang/diag"
	"github.com/emberlang/ember/lang/llir"
	"github.com/emberlang/ember/lang/symtab"
	"github.com/emberlang/ember/lang/token"
	"github.com/emberlang/ember/lang/types"
)

// MaxIterations bounds the fixed-point loop for a single pass, so a bug
// that makes a pass report "changed" forever can't hang the compiler.
const MaxIterations = 64

// Context is the state threaded through every pass: the symbol table,
// the diagnostics bag, the backend module builder, and the position
// information needed to turn an ast.Pos into a diag.Position.
type Context struct {
	Table   *symtab.Table
	Diags   *diag.Bag
	Builder llir.Builder
	Fset    *token.FileSet
}

// Position converts an AST position into the form diag.Bag expects.
func (c *Context) Position(p token.Pos) token.Position {
	if c.Fset == nil || !p.IsValid() {
		return token.Position{}
	}
	return c.Fset.Position(p)
}

// Pass is one semantic analysis stage. Enter is called on the way down
// the tree (before a node's children are visited), Exit on the way back
// up. Either may do nothing and return 0. Both report how many things they changed (a
// symbol newly defined, a type newly resolved, etc.); a pass is re-run
// until one full walk reports zero total changes.
type Pass interface {
	Name() string
	Enter(ctx *Context, n ast.Node) (changed int)
	Exit(ctx *Context, n ast.Node) (changed int)
}

// scopeName returns the name a node introduces onto the scope stack, and
// whether it introduces one at all. Function/struct/class/interface/
// namespace bodies are scopes; everything else is transparent.
func scopeName(n ast.Node) (name string, isScope bool) {
	switch d := n.(type) {
	case *ast.NamespaceDecl:
		return d.Name.Lit, true
	case *ast.StructDecl:
		return d.Name.Lit, true
	case *ast.ClassDecl:
		return d.Name.Lit, true
	case *ast.InterfaceDecl:
		return d.Name.Lit, true
	case *ast.FuncDecl:
		return d.Name.Lit, true
	default:
		return "", false
	}
}

// walker drives a single Pass over a single tree, pushing/popping scopes
// as declaration bodies are entered and exited so ctx.Table.CurrentScope
// always reflects the node currently being visited.
type walker struct {
	ctx     *Context
	p       Pass
	changed int
}

func (w *walker) Visit(n ast.Node, dir ast.VisitDirection) ast.Visitor {
	name, isScope := scopeName(n)
	if dir == ast.VisitEnter {
		w.changed += w.p.Enter(w.ctx, n)
		if isScope {
			w.ctx.Table.EnterScope(name)
		}
		return w
	}
	if isScope {
		w.ctx.Table.ExitScope()
	}
	w.changed += w.p.Exit(w.ctx, n)
	return nil
}

// Run walks unit once with p, returning how many changes p reported.
func Run(ctx *Context, p Pass, unit *ast.TranslationUnit) int {
	w := &walker{ctx: ctx, p: p}
	ast.Walk(w, unit)
	return w.changed
}

// RunToFixedPoint runs p repeatedly until a full walk changes nothing or
// MaxIterations is reached, per §4.4.2's "re-run until no declaration's
// type changes". It stops early if the diagnostics bag already failed,
// since further iterations over a tree with unresolved errors cannot
// converge.
func RunToFixedPoint(ctx *Context, p Pass, unit *ast.TranslationUnit) (iterations int) {
	for iterations = 0; iterations < MaxIterations; iterations++ {
		if ctx.Diags.Failed() {
			return iterations
		}
		if Run(ctx, p, unit) == 0 {
			return iterations + 1
		}
	}
	return iterations
}

// RunPipeline runs each pass in order, to convergence, matching C3's
// "overload-renaming, then prototype (re-run to convergence), then
// locals (re-run to convergence)" pipeline shape.
func RunPipeline(ctx *Context, passes []Pass, unit *ast.TranslationUnit) {
	for _, p := range passes {
		RunToFixedPoint(ctx, p, unit)
	}
}

// Universe is a convenience bundle so main-level code can pass one value
// around instead of four; individual passes still only see *Context.
type Universe struct {
	Resolver types.Resolver
}
