package sema

import (
	"strings"

	"github.com/emberlang/ember/lang/ast"
	"github.com/emberlang/ember/lang/pass"
	"github.com/emberlang/ember/lang/token"
	"github.com/emberlang/ember/lang/types"
)

// ValidatePass re-checks every method's classifiers once prototype
// resolution has converged. It is deliberately a separate, single-shot
// pass (run once, not to a fixed point) rather than folded into
// PrototypePass's own Enter: classifier errors depend on a method's
// owner having its full super list resolved, which is only guaranteed
// true once the fixed point has already been reached, and running this
// check mid-convergence would report spurious "no inherited virtual
// member" errors for perfectly valid overrides whose base class simply
// hadn't been linked up by an earlier iteration yet.
//
// Grounded on original_source's decl_classifiers.cpp: `override` must
// shadow an inherited virtual member of the same name, `virtual` may not
// redeclare one, a class method that shadows one must carry `override`,
// `virtual` and `override` may not both be present, `static` may not
// also be `virtual` or `override` (statics never go through the
// vtable), and `abstract` only makes sense alongside `virtual`. A
// `new`/`discard` method must return void and carry no classifier
// other than an access classifier.
type ValidatePass struct{}

func (ValidatePass) Name() string { return "validate" }

func (ValidatePass) Enter(ctx *pass.Context, n ast.Node) int {
	d, ok := n.(*ast.FuncDecl)
	if !ok {
		return 0
	}
	fn, ok := d.Function.(*Function)
	if !ok || fn.Type == nil {
		return 0
	}
	cl := d.Classifiers
	if cl.Has(token.STATIC) && (cl.Has(token.VIRTUAL) || cl.Has(token.OVERRIDE)) {
		ctx.Diags.Errorf(ctx.Position(d.Fn), "static method %q may not be declared virtual or override", d.Name.Lit)
	}
	if d.Body != nil && !types.Equal(fn.Type.Result, types.Void) && !bodyEndsInReturn(d.Body) {
		ctx.Diags.Errorf(ctx.Position(d.End), "control reaches end of non-void function %q", d.Name.Lit)
	}
	if !fn.Type.IsMethod() {
		if cl.Has(token.OVERRIDE) {
			ctx.Diags.Errorf(ctx.Position(d.Fn), "override method %q declared outside a class or interface", d.Name.Lit)
		}
		return 0
	}
	if base, _, _ := strings.Cut(d.Name.Lit, "`"); base == "new" || base == "discard" {
		if !types.Equal(fn.Type.Result, types.Void) {
			ctx.Diags.Errorf(ctx.Position(d.Fn), "%s method must return void", base)
		}
		for _, c := range cl {
			if c != token.PUBLIC && c != token.PRIVATE && c != token.PROTECTED {
				ctx.Diags.Errorf(ctx.Position(d.Fn), "%s method may not be declared %s", base, c)
				break
			}
		}
	}
	owner, ok := fn.Type.MethodOf.Resolve(ctx.Table)
	if !ok {
		return 0
	}
	v, isVirtual := owner.(*types.Virtual)
	if cl.Has(token.ABSTRACT) && !cl.Has(token.VIRTUAL) && !(isVirtual && v.IsInterface()) {
		ctx.Diags.Errorf(ctx.Position(d.Fn), "abstract method %q must also be declared virtual", d.Name.Lit)
	}
	if !isVirtual {
		return 0
	}
	inherited := false
	for _, s := range v.Supers {
		inherited = inherited || findVirtual(s, d.Name.Lit) != nil
	}
	switch {
	case cl.Has(token.VIRTUAL) && cl.Has(token.OVERRIDE):
		ctx.Diags.Errorf(ctx.Position(d.Fn), "method %q may not be declared both virtual and override", d.Name.Lit)
	case cl.Has(token.VIRTUAL) && inherited:
		ctx.Diags.Errorf(ctx.Position(d.Fn), "virtual method %q redeclares an inherited virtual member; use override", d.Name.Lit)
	case cl.Has(token.OVERRIDE) && !inherited:
		ctx.Diags.Errorf(ctx.Position(d.Fn), "method %q marked override but no inherited virtual member of that name exists", d.Name.Lit)
	case !cl.Has(token.OVERRIDE) && inherited:
		ctx.Diags.Errorf(ctx.Position(d.Fn), "method %q shadows an inherited virtual member without override", d.Name.Lit)
	}
	return 0
}

func (ValidatePass) Exit(*pass.Context, ast.Node) int { return 0 }

// bodyEndsInReturn reports whether every path through block's last
// statement ends in a ReturnStmt. Like LocalsPass's expression-statement
// checking, this is deliberately shallow: it only looks at a statement's
// immediate shape (an if's Then/Else both ending in return, a bare
// nested block's last statement) rather than performing full
// control-flow reachability analysis (e.g. it does not know a ForStmt
// with a statically-true condition always runs its body, or that a call
// to a function that never returns makes the statements after it
// unreachable). A function whose last statement is a loop or a bare
// expression is always flagged, even when every concrete input happens
// to return earlier.
func bodyEndsInReturn(block *ast.Block) bool {
	if len(block.Stmts) == 0 {
		return false
	}
	switch last := block.Stmts[len(block.Stmts)-1].(type) {
	case *ast.ReturnStmt:
		return true
	case *ast.IfStmt:
		return last.Else != nil && bodyEndsInReturn(last.Then) && bodyEndsInReturn(last.Else)
	case *ast.BlockStmt:
		return bodyEndsInReturn(last.Body)
	default:
		return false
	}
}

func findVirtual(v *types.Virtual, name string) *types.MemberLocator {
	for _, loc := range v.GetVirtualMembers() {
		if loc.Member.Name == name {
			loc := loc
			return &loc
		}
	}
	return nil
}

var _ pass.Pass = ValidatePass{}
