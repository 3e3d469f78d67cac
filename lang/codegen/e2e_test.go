package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emberlang/ember/lang/ast"
	"github.com/emberlang/ember/lang/pass"
	"github.com/emberlang/ember/lang/sema"
	"github.com/emberlang/ember/lang/session"
	"github.com/emberlang/ember/lang/token"
	"github.com/emberlang/ember/lang/types"
)

// qualName builds a single-segment *ast.QualifiedName, the shape
// ResolveType expects for a bare primitive name like "i64".
func qualName(name string) *ast.QualifiedName {
	return &ast.QualifiedName{Parts: []*ast.IdentExpr{{Lit: name}}}
}

func intLit(v string) *ast.NumberLit {
	return &ast.NumberLit{Raw: v, Integer: v}
}

func runPipeline(t *testing.T, unit *ast.TranslationUnit) *session.Session {
	t.Helper()
	sess := session.New("", 64)
	ctx := sess.Context()
	pass.RunPipeline(ctx, []pass.Pass{
		sema.OverloadPass{},
		sema.NewPrototypePass(),
		sema.ValidatePass{},
		sema.LocalsPass{},
	}, unit)
	require.False(t, sess.Diags.Failed(), "semantic passes reported errors: %v", sess.Diags.All())
	NewGenerator(ctx).EmitTranslationUnit(unit)
	require.False(t, sess.Diags.Failed(), "emission reported errors: %v", sess.Diags.All())
	return sess
}

// TestArithmeticReturn hand-builds "fn main() -> i64 { return 3 + 5 }"
// (§8 scenario 1) and runs it through the full pipeline down to LLIR,
// since no parser and no LLIR-executing interpreter exist in this
// repository's scope (§1): the assertion is on the emitted module's
// structure and the resolved symbol's type, not on a computed runtime
// result.
func TestArithmeticReturn(t *testing.T) {
	main := &ast.FuncDecl{
		Name:       &ast.IdentExpr{Lit: "main"},
		ResultType: qualName("i64"),
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ReturnStmt{Result: &ast.BinaryExpr{
				Left:  intLit("3"),
				Op:    token.ADD,
				Right: intLit("5"),
			}},
		}},
	}
	unit := &ast.TranslationUnit{Name: "arith", Decls: []ast.Decl{main}}

	sess := runPipeline(t, unit)

	sym, ok := sess.Table.Lookup("main")
	require.True(t, ok)
	fn, ok := sym.Type.(*types.Function)
	require.True(t, ok)
	require.True(t, types.Equal(fn.Result, types.LookupPrimitive("i64")))

	ir := sess.Builder.Module().String()
	require.Contains(t, ir, "@main")
	require.Contains(t, ir, "add")
	require.Contains(t, ir, "ret i64")
}

// TestOverloadResolutionByArity hand-builds two "add" overloads (one
// taking one i64 parameter, one taking two) and a "main" that calls the
// two-argument form, exercising §4.4.1's overload renaming alongside
// §4.6.1's overload resolution at a real call site.
func TestOverloadResolutionByArity(t *testing.T) {
	addOne := &ast.FuncDecl{
		Name:       &ast.IdentExpr{Lit: "add"},
		ResultType: qualName("i64"),
		Params:     []*ast.Param{{Name: &ast.IdentExpr{Lit: "a"}, Type: qualName("i64")}},
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ReturnStmt{Result: &ast.IdentExpr{Lit: "a"}},
		}},
	}
	addTwo := &ast.FuncDecl{
		Name:       &ast.IdentExpr{Lit: "add"},
		ResultType: qualName("i64"),
		Params: []*ast.Param{
			{Name: &ast.IdentExpr{Lit: "a"}, Type: qualName("i64")},
			{Name: &ast.IdentExpr{Lit: "b"}, Type: qualName("i64")},
		},
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ReturnStmt{Result: &ast.BinaryExpr{
				Left:  &ast.IdentExpr{Lit: "a"},
				Op:    token.ADD,
				Right: &ast.IdentExpr{Lit: "b"},
			}},
		}},
	}
	main := &ast.FuncDecl{
		Name:       &ast.IdentExpr{Lit: "main"},
		ResultType: qualName("i64"),
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ReturnStmt{Result: &ast.CallExpr{
				Fn:   &ast.IdentExpr{Lit: "add"},
				Args: []ast.Expr{intLit("1"), intLit("2")},
			}},
		}},
	}
	unit := &ast.TranslationUnit{Name: "overload", Decls: []ast.Decl{addOne, addTwo, main}}

	sess := runPipeline(t, unit)

	// the two "add" declarations were renamed to "add`0"/"add`1" by
	// OverloadPass, so the unsuffixed name is no longer directly defined.
	_, ok := sess.Table.Lookup("add")
	require.False(t, ok)
	overloads := sess.Table.FindOverloaded(nil, "add")
	require.Len(t, overloads, 2)

	ir := sess.Builder.Module().String()
	require.Contains(t, ir, "@main")
	// main's call site must have resolved to the two-argument overload.
	calls := strings.Count(ir, "call i64")
	require.Equal(t, 1, calls)
}

// classDecl builds a *ast.ClassDecl, optionally inheriting from the given
// super names, holding members.
func classDecl(name string, supers []string, members ...ast.Decl) *ast.ClassDecl {
	d := &ast.ClassDecl{Name: &ast.IdentExpr{Lit: name}, Members: members}
	if len(supers) > 0 {
		inh := &ast.ClassInherit{}
		for _, s := range supers {
			inh.Supers = append(inh.Supers, qualName(s))
		}
		d.Inherits = inh
	}
	return d
}

func fieldDecl(name string, classifiers token.Classifiers, init ast.Expr) *ast.VarDecl {
	return &ast.VarDecl{Name: &ast.IdentExpr{Lit: name}, Classifiers: classifiers, Init: init}
}

func methodDecl(name string, classifiers token.Classifiers, resultType ast.Type, body *ast.Block) *ast.FuncDecl {
	return &ast.FuncDecl{Name: &ast.IdentExpr{Lit: name}, Classifiers: classifiers, ResultType: resultType, Body: body}
}

func returnBlock(result ast.Expr) *ast.Block {
	return &ast.Block{Stmts: []ast.Stmt{&ast.ReturnStmt{Result: result}}}
}

// TestInheritedFieldAccess hand-builds "class A { var a = 4 } class B : A
// { var b = 5 } fn main() -> i64 { var v: B; return v.a }" (§8 scenario
// 3) and checks that B's own __CATA_INIT routine calls down into A's, so
// a field A declares is initialized by A's own initializer rather than
// left untouched by B's, and that the emitted module carries both
// routines.
func TestInheritedFieldAccess(t *testing.T) {
	classA := classDecl("A", nil, fieldDecl("a", nil, intLit("4")))
	classB := classDecl("B", []string{"A"}, fieldDecl("b", nil, intLit("5")))
	main := &ast.FuncDecl{
		Name:       &ast.IdentExpr{Lit: "main"},
		ResultType: qualName("i64"),
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.VarDecl{Name: &ast.IdentExpr{Lit: "v"}, DeclType: qualName("B")},
			&ast.ReturnStmt{Result: &ast.MemberExpr{
				Receiver: &ast.IdentExpr{Lit: "v"},
				Name:     &ast.IdentExpr{Lit: "a"},
			}},
		}},
	}
	unit := &ast.TranslationUnit{Name: "inherit-field", Decls: []ast.Decl{classA, classB, main}}

	sess := runPipeline(t, unit)

	ir := sess.Builder.Module().String()
	require.Contains(t, ir, "@__CATA_INIT.A")
	require.Contains(t, ir, "@__CATA_INIT.B")
	// B's own init routine must call down into A's, so A's field is
	// initialized by A's own initializer.
	require.Contains(t, ir, "call void @__CATA_INIT.A")
	require.Contains(t, ir, "@main")
}

// TestVirtualOverrideDispatch hand-builds "class Base { virtual fn
// test() -> i64 {...} } class Derived : Base { override fn test() -> i64
// {...} } fn main() -> i64 { var v: Derived; return v.test() }" (§8
// scenario 4) and checks the call lowers through a vtable slot (a
// metadata object is built and a slot is loaded and indirectly called)
// rather than a direct call to either implementation's symbol.
func TestVirtualOverrideDispatch(t *testing.T) {
	base := classDecl("Base", nil,
		methodDecl("test", token.Classifiers{token.VIRTUAL}, qualName("i64"), returnBlock(intLit("1"))))
	derived := classDecl("Derived", []string{"Base"},
		methodDecl("test", token.Classifiers{token.OVERRIDE}, qualName("i64"), returnBlock(intLit("2"))))
	main := &ast.FuncDecl{
		Name:       &ast.IdentExpr{Lit: "main"},
		ResultType: qualName("i64"),
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.VarDecl{Name: &ast.IdentExpr{Lit: "v"}, DeclType: qualName("Derived")},
			&ast.ReturnStmt{Result: &ast.CallExpr{
				Fn: &ast.MemberExpr{Receiver: &ast.IdentExpr{Lit: "v"}, Name: &ast.IdentExpr{Lit: "test"}},
			}},
		}},
	}
	unit := &ast.TranslationUnit{Name: "virtual-dispatch", Decls: []ast.Decl{base, derived, main}}

	sess := runPipeline(t, unit)

	ir := sess.Builder.Module().String()
	// every ancestor a Derived instance presents as gets its own metadata
	// object, built once BuildMetadataObject is actually wired in.
	require.Contains(t, ir, "vtable_as")
	require.Contains(t, ir, ".Derived.vtable_as..Derived")
	require.Contains(t, ir, ".Derived.vtable_as..Base")
	// main's call site dispatches through a loaded function pointer, not a
	// direct call to either @Base.test or @Derived.test. Only main's body
	// is checked: the Derived-as-Base thunk elsewhere in the module calls
	// @Derived.test directly by design.
	mainStart := strings.Index(ir, "@main()")
	require.NotEqual(t, -1, mainStart)
	mainIR := ir[mainStart:]
	if end := strings.Index(mainIR, "\n}"); end >= 0 {
		mainIR = mainIR[:end]
	}
	require.NotContains(t, mainIR, "call i64 @Base.test")
	require.NotContains(t, mainIR, "call i64 @Derived.test")
	calls := strings.Count(mainIR, "call i64")
	require.Equal(t, 1, calls)
}

// TestMultipleInheritanceLeftmostWins hand-builds "class A { fn test() ->
// i64 {...} } class D { fn test() -> i64 {...} } class MI : D, A {} fn
// main() -> i64 { var v: MI; return v.test() }" (§8 scenario 5): D and A
// each declare an unrelated, non-virtual "test" method, and MI lists D
// before A, so a call through MI must resolve to D's implementation with
// no "ambiguous call" diagnostic, rather than finding two same-named
// candidates and refusing to pick one.
func TestMultipleInheritanceLeftmostWins(t *testing.T) {
	classA := classDecl("A", nil,
		methodDecl("test", nil, qualName("i64"), returnBlock(intLit("4"))))
	classD := classDecl("D", nil,
		methodDecl("test", nil, qualName("i64"), returnBlock(intLit("44"))))
	classMI := classDecl("MI", []string{"D", "A"})
	main := &ast.FuncDecl{
		Name:       &ast.IdentExpr{Lit: "main"},
		ResultType: qualName("i64"),
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.VarDecl{Name: &ast.IdentExpr{Lit: "v"}, DeclType: qualName("MI")},
			&ast.ReturnStmt{Result: &ast.CallExpr{
				Fn: &ast.MemberExpr{Receiver: &ast.IdentExpr{Lit: "v"}, Name: &ast.IdentExpr{Lit: "test"}},
			}},
		}},
	}
	unit := &ast.TranslationUnit{Name: "mi-leftmost", Decls: []ast.Decl{classA, classD, classMI, main}}

	// runPipeline already fails the test if any diagnostic (including an
	// "ambiguous call to test") was reported, which is exactly what the
	// old, pointer-identity-only dedup in collectNonVirtualMembers used to
	// produce for this shape.
	sess := runPipeline(t, unit)

	ir := sess.Builder.Module().String()
	// the call must resolve to D's test, leftmost base wins, never A's.
	require.Contains(t, ir, "call i64 @D.test")
	require.NotContains(t, ir, "call i64 @A.test")
	calls := strings.Count(ir, "call i64")
	require.Equal(t, 1, calls)
}
