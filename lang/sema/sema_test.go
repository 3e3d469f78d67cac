package sema

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emberlang/ember/lang/ast"
	"github.com/emberlang/ember/lang/pass"
	"github.com/emberlang/ember/lang/session"
	"github.com/emberlang/ember/lang/token"
	"github.com/emberlang/ember/lang/types"
)

func qualName(name string) *ast.QualifiedName {
	return &ast.QualifiedName{Parts: []*ast.IdentExpr{{Lit: name}}}
}

func newCtx() *pass.Context {
	return session.New("", 16).Context()
}

func TestOverloadPassRenamesGroupsOfTwoOrMore(t *testing.T) {
	f0 := &ast.FuncDecl{Name: &ast.IdentExpr{Lit: "f"}}
	f1 := &ast.FuncDecl{Name: &ast.IdentExpr{Lit: "f"}}
	g := &ast.FuncDecl{Name: &ast.IdentExpr{Lit: "g"}}
	unit := &ast.TranslationUnit{Decls: []ast.Decl{f0, f1, g}}

	ctx := newCtx()
	pass.RunToFixedPoint(ctx, OverloadPass{}, unit)

	require.Equal(t, "f`0", f0.Name.Lit)
	require.Equal(t, "f`1", f1.Name.Lit)
	require.Equal(t, "g", g.Name.Lit, "a singleton group is left untouched")
}

func TestOverloadPassIsIdempotent(t *testing.T) {
	f0 := &ast.FuncDecl{Name: &ast.IdentExpr{Lit: "f"}}
	f1 := &ast.FuncDecl{Name: &ast.IdentExpr{Lit: "f"}}
	unit := &ast.TranslationUnit{Decls: []ast.Decl{f0, f1}}

	ctx := newCtx()
	iterations := pass.RunToFixedPoint(ctx, OverloadPass{}, unit)
	require.Equal(t, 2, iterations, "one walk renames the group, a second confirms no further change")
}

func voidFunc(name string, classifiers ...token.Token) *ast.FuncDecl {
	return &ast.FuncDecl{
		Name:        &ast.IdentExpr{Lit: name},
		Classifiers: token.Classifiers(classifiers),
		Body:        &ast.Block{},
	}
}

func TestPrototypePassResolvesClassHierarchyAndMethodOwner(t *testing.T) {
	base := &ast.ClassDecl{
		Name:    &ast.IdentExpr{Lit: "Base"},
		Members: []ast.Decl{voidFunc("area", token.VIRTUAL)},
	}
	derived := &ast.ClassDecl{
		Name:     &ast.IdentExpr{Lit: "Derived"},
		Inherits: &ast.ClassInherit{Supers: []*ast.QualifiedName{qualName("Base")}},
		Members:  []ast.Decl{voidFunc("area", token.OVERRIDE)},
	}
	unit := &ast.TranslationUnit{Decls: []ast.Decl{base, derived}}

	ctx := newCtx()
	pass.RunToFixedPoint(ctx, NewPrototypePass(), unit)

	baseSym, ok := ctx.Table.Lookup("Base")
	require.True(t, ok)
	baseType, ok := baseSym.Type.(*types.Virtual)
	require.True(t, ok)

	derivedSym, ok := ctx.Table.Lookup("Derived")
	require.True(t, ok)
	derivedType, ok := derivedSym.Type.(*types.Virtual)
	require.True(t, ok)
	require.Equal(t, []*types.Virtual{baseType}, derivedType.Supers)

	areaFn, ok := base.Members[0].(*ast.FuncDecl).Function.(*Function)
	require.True(t, ok)
	require.True(t, areaFn.Type.IsMethod())
	owner, ok := areaFn.Type.MethodOf.Resolve(ctx.Table)
	require.True(t, ok)
	require.Same(t, baseType, owner)

	overrideFn, ok := derived.Members[0].(*ast.FuncDecl).Function.(*Function)
	require.True(t, ok)
	owner, ok = overrideFn.Type.MethodOf.Resolve(ctx.Table)
	require.True(t, ok)
	require.Same(t, derivedType, owner)

	// GetVirtualMembers must show the override in Base's original slot,
	// residing on Derived, not appended as a second slot.
	members := derivedType.GetVirtualMembers()
	require.Len(t, members, 1)
	require.Same(t, derivedType, members[0].Residence)
}

func TestPrototypePassResolvesFreeFunctionSignature(t *testing.T) {
	fn := &ast.FuncDecl{
		Name:       &ast.IdentExpr{Lit: "add"},
		ResultType: qualName("i64"),
		Params: []*ast.Param{
			{Name: &ast.IdentExpr{Lit: "a"}, Type: qualName("i64")},
			{Name: &ast.IdentExpr{Lit: "b"}, Type: qualName("i64")},
		},
		Body: &ast.Block{},
	}
	unit := &ast.TranslationUnit{Decls: []ast.Decl{fn}}

	ctx := newCtx()
	pass.RunToFixedPoint(ctx, NewPrototypePass(), unit)

	sym, ok := ctx.Table.Lookup("add")
	require.True(t, ok)
	ft, ok := sym.Type.(*types.Function)
	require.True(t, ok)
	require.False(t, ft.IsMethod())
	require.Len(t, ft.Params, 2)
	require.True(t, types.Equal(ft.Result, types.LookupPrimitive("i64")))
}

func runValidate(t *testing.T, decls []ast.Decl) *pass.Context {
	t.Helper()
	unit := &ast.TranslationUnit{Decls: decls}
	ctx := newCtx()
	pass.RunPipeline(ctx, []pass.Pass{
		OverloadPass{},
		NewPrototypePass(),
		ValidatePass{},
	}, unit)
	return ctx
}

func TestValidatePassFlagsStaticVirtualConflict(t *testing.T) {
	cls := &ast.ClassDecl{
		Name:    &ast.IdentExpr{Lit: "Bad"},
		Members: []ast.Decl{voidFunc("m", token.STATIC, token.VIRTUAL)},
	}
	ctx := runValidate(t, []ast.Decl{cls})
	require.True(t, ctx.Diags.Failed())
}

func TestValidatePassFlagsOverrideWithoutInheritedVirtual(t *testing.T) {
	cls := &ast.ClassDecl{
		Name:    &ast.IdentExpr{Lit: "Orphan"},
		Members: []ast.Decl{voidFunc("m", token.OVERRIDE)},
	}
	ctx := runValidate(t, []ast.Decl{cls})
	require.True(t, ctx.Diags.Failed())
}

func TestValidatePassAcceptsLegitimateOverride(t *testing.T) {
	base := &ast.ClassDecl{
		Name:    &ast.IdentExpr{Lit: "Base"},
		Members: []ast.Decl{voidFunc("area", token.VIRTUAL)},
	}
	derived := &ast.ClassDecl{
		Name:     &ast.IdentExpr{Lit: "Derived"},
		Inherits: &ast.ClassInherit{Supers: []*ast.QualifiedName{qualName("Base")}},
		Members:  []ast.Decl{voidFunc("area", token.OVERRIDE)},
	}
	ctx := runValidate(t, []ast.Decl{base, derived})
	require.False(t, ctx.Diags.Failed(), "%v", ctx.Diags.All())
}

func TestValidatePassFlagsMissingReturn(t *testing.T) {
	fn := &ast.FuncDecl{
		Name:       &ast.IdentExpr{Lit: "compute"},
		ResultType: qualName("i64"),
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ExprStmt{X: &ast.NumberLit{Raw: "1", Integer: "1"}},
		}},
	}
	ctx := runValidate(t, []ast.Decl{fn})
	require.True(t, ctx.Diags.Failed())
}

func TestValidatePassAcceptsReturnInBothIfBranches(t *testing.T) {
	fn := &ast.FuncDecl{
		Name:       &ast.IdentExpr{Lit: "compute"},
		ResultType: qualName("i64"),
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.IfStmt{
				Cond: &ast.BoolLit{Value: true},
				Then: &ast.Block{Stmts: []ast.Stmt{&ast.ReturnStmt{Result: &ast.NumberLit{Raw: "1", Integer: "1"}}}},
				Else: &ast.Block{Stmts: []ast.Stmt{&ast.ReturnStmt{Result: &ast.NumberLit{Raw: "2", Integer: "2"}}}},
			},
		}},
	}
	ctx := runValidate(t, []ast.Decl{fn})
	require.False(t, ctx.Diags.Failed(), "%v", ctx.Diags.All())
}

func TestValidatePassFlagsIfWithoutElseAsMissingReturn(t *testing.T) {
	fn := &ast.FuncDecl{
		Name:       &ast.IdentExpr{Lit: "compute"},
		ResultType: qualName("i64"),
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.IfStmt{
				Cond: &ast.BoolLit{Value: true},
				Then: &ast.Block{Stmts: []ast.Stmt{&ast.ReturnStmt{Result: &ast.NumberLit{Raw: "1", Integer: "1"}}}},
			},
		}},
	}
	ctx := runValidate(t, []ast.Decl{fn})
	require.True(t, ctx.Diags.Failed(), "no else clause means control can still fall through")
}

func TestResolveTypePrimitiveAndVoid(t *testing.T) {
	ctx := newCtx()
	got, ok := ResolveType(ctx, nil, qualName("i64"))
	require.True(t, ok)
	require.Same(t, types.LookupPrimitive("i64"), got)

	got, ok = ResolveType(ctx, nil, qualName("void"))
	require.True(t, ok)
	require.Equal(t, types.Void, got)
}

func TestResolveTypeCustomWrapsObjectHandle(t *testing.T) {
	cls := &ast.ClassDecl{Name: &ast.IdentExpr{Lit: "Widget"}}
	unit := &ast.TranslationUnit{Decls: []ast.Decl{cls}}
	ctx := newCtx()
	pass.RunToFixedPoint(ctx, NewPrototypePass(), unit)

	got, ok := ResolveType(ctx, nil, qualName("Widget"))
	require.True(t, ok)
	handle, ok := got.(*types.ObjectHandle)
	require.True(t, ok)
	require.Equal(t, "Widget", handle.Referent.Name)
}

func TestResolveTypeUnknownNameIsUndefined(t *testing.T) {
	ctx := newCtx()
	got, ok := ResolveType(ctx, nil, qualName("Nope"))
	require.False(t, ok)
	require.Equal(t, types.Undefined, got)
}

func TestExprTypeBinaryPicksMostSpecialized(t *testing.T) {
	ctx := newCtx()
	e := &ast.BinaryExpr{
		Left:  &ast.NumberLit{Raw: "1", Integer: "1"},
		Op:    token.ADD,
		Right: &ast.NumberLit{Raw: "1.5", Integer: "1", Fraction: "5"},
	}
	got, ok := exprType(ctx, nil, e)
	require.True(t, ok)
	require.Same(t, types.LookupPrimitive("f64"), got)
}

func TestExprTypeCallResolvesOverloadByArity(t *testing.T) {
	addOne := &ast.FuncDecl{
		Name:       &ast.IdentExpr{Lit: "add"},
		ResultType: qualName("i64"),
		Params:     []*ast.Param{{Name: &ast.IdentExpr{Lit: "a"}, Type: qualName("i64")}},
		Body:       &ast.Block{},
	}
	addTwo := &ast.FuncDecl{
		Name:       &ast.IdentExpr{Lit: "add"},
		ResultType: qualName("f64"),
		Params: []*ast.Param{
			{Name: &ast.IdentExpr{Lit: "a"}, Type: qualName("f64")},
			{Name: &ast.IdentExpr{Lit: "b"}, Type: qualName("f64")},
		},
		Body: &ast.Block{},
	}
	unit := &ast.TranslationUnit{Decls: []ast.Decl{addOne, addTwo}}
	ctx := newCtx()
	pass.RunPipeline(ctx, []pass.Pass{OverloadPass{}, NewPrototypePass()}, unit)

	call := &ast.CallExpr{
		Fn:   &ast.IdentExpr{Lit: "add"},
		Args: []ast.Expr{&ast.NumberLit{Raw: "1", Integer: "1"}, &ast.NumberLit{Raw: "2", Integer: "2"}},
	}
	got, ok := exprType(ctx, nil, call)
	require.True(t, ok)
	require.Same(t, types.LookupPrimitive("f64"), got, "the two-argument overload's result type wins by arity")
}
