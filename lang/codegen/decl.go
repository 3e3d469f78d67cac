package codegen

import (
	"fmt"
	"strings"

	"github.com/emberlang/ember/lang/ast"
	"github.com/emberlang/ember/lang/llir"
	"github.com/emberlang/ember/lang/sema"
	"github.com/emberlang/ember/lang/symtab"
	"github.com/emberlang/ember/lang/types"
)

// EmitTranslationUnit lowers every declaration in unit. It must only be
// called once every semantic pass has converged (see lang/pass), since
// it assumes every *ast.FuncDecl.Function and symbol Type is final.
//
// Emission runs in two passes over the whole tree: declareDecls first
// builds every struct/class layout and declares (but does not define)
// every function and global, so every symbol's backend Value exists
// before any body is emitted; emitDecls then fills in bodies and
// initializers. Without this split, a function that calls a sibling
// declared later in the same file (or a method that calls another
// method of its own class) would see a nil Symbol.Value, since a single
// interleaved declare-and-define pass only knows about declarations it
// has already visited.
func (g *Generator) EmitTranslationUnit(unit *ast.TranslationUnit) {
	g.declareDecls(unit.Decls)
	g.emitDecls(unit.Decls)
}

func (g *Generator) declareDecls(decls []ast.Decl) {
	for _, d := range decls {
		g.declareDecl(d)
	}
}

func (g *Generator) declareDecl(d ast.Decl) {
	switch n := d.(type) {
	case *ast.NamespaceDecl:
		g.declareDecls(n.Decls)
	case *ast.StructDecl:
		st, _ := n.Type.(*types.Struct)
		if st == nil {
			return
		}
		g.structLayout(st)
		g.declareInitFunc(st)
		g.declareMembers(n.Members)
	case *ast.ClassDecl:
		v, _ := n.Type.(*types.Virtual)
		if v == nil {
			return
		}
		g.virtualLayout(v)
		g.declareInitFunc(v)
		g.declareMembers(n.Members)
	case *ast.InterfaceDecl:
		g.declareMembers(n.Members)
	case *ast.FuncDecl:
		g.declareFunc(n)
	case *ast.VarDecl:
		g.declareGlobalVar(n)
	}
}

func (g *Generator) declareMembers(members []ast.Decl) {
	for _, m := range members {
		if fd, ok := m.(*ast.FuncDecl); ok {
			g.declareFunc(fd)
		}
	}
}

func (g *Generator) emitDecls(decls []ast.Decl) {
	for _, d := range decls {
		g.emitDecl(d)
	}
}

func (g *Generator) emitDecl(d ast.Decl) {
	switch n := d.(type) {
	case *ast.NamespaceDecl:
		g.emitDecls(n.Decls)
	case *ast.StructDecl:
		st, _ := n.Type.(*types.Struct)
		if st == nil {
			return
		}
		g.defineInitFunc(st, n.Members)
		g.emitMembers(n.Members)
	case *ast.ClassDecl:
		v, _ := n.Type.(*types.Virtual)
		if v == nil {
			return
		}
		g.defineInitFunc(v, n.Members)
		g.emitMembers(n.Members)
	case *ast.InterfaceDecl:
		// Interfaces carry no data layout or init routine of their own,
		// but a default (non-abstract) method body still needs emitting.
		g.emitMembers(n.Members)
	case *ast.FuncDecl:
		g.defineFunc(n)
	case *ast.VarDecl:
		g.emitGlobalVar(n)
	}
}

func (g *Generator) emitMembers(members []ast.Decl) {
	for _, m := range members {
		if fd, ok := m.(*ast.FuncDecl); ok {
			g.defineFunc(fd)
		}
	}
}

// initFuncs remembers the llir.Func declared for owner's __CATA_INIT
// routine between declareInitFunc and defineInitFunc, since the two run
// in separate tree walks (see EmitTranslationUnit).
//
// declareInitFunc builds owner's __CATA_INIT function declaration (a
// function taking a pointer to owner's layout); defineInitFunc fills in
// its body, running every data member's own field initializer with
// `this` bound so one initializer may reference an earlier member
// (§SUPPLEMENTED FEATURES, grounded on original_source's
// decl_proto_pass.cpp). A member with no initializer is stored its
// type's zero value (zeroConst).
func (g *Generator) declareInitFunc(owner types.Custom) llir.Func {
	ptrType := g.mod.Pointer(g.LLIRType(ownerHandleType(owner)))
	name := fmt.Sprintf("%s.%s", InitFuncPrefix, ownerFQNPart(owner))
	fn := g.mod.NewFunc(name, g.mod.Void(), ptrType)
	fn.SetDSOLocal(true)
	g.initFuncs[owner] = fn
	return fn
}

// defineInitFunc fills in owner's __CATA_INIT body. For a class, every
// immediate super's own __CATA_INIT runs first against
// its embedded subobject (so an inherited field is initialized by its
// own declaring class, §SUPPLEMENTED FEATURES' decl_class.cpp
// call_inits), then owner's own field initializers run, and finally
// every vtable-pointer slot the instance carries — owner's own and every
// ancestor's embedded one — is stamped with the metadata object built
// for owner presenting as that slot's ancestor, so a call through any of
// them dispatches to owner's actual overrides (decl_class.cpp's
// CreateStore after call_inits).
func (g *Generator) defineInitFunc(owner types.Custom, members []ast.Decl) {
	fn, ok := g.initFuncs[owner]
	if !ok {
		return
	}
	ptrType := g.mod.Pointer(g.LLIRType(ownerHandleType(owner)))

	fc := &funcCtx{gen: g, fn: fn, owner: owner, this: fn.Param(0), thisPtrType: ptrType, resultStatic: types.Void, locals: map[string]*localSlot{}}
	fc.block = fn.NewBlock("entry")
	fc.entry = fc.block
	fc.scope = symtab.ScopeChain(ownerFQN(owner))

	v, isVirtual := owner.(*types.Virtual)
	if isVirtual {
		g.initSupers(fc, v)
	}

	for _, m := range members {
		vd, ok := m.(*ast.VarDecl)
		if !ok {
			continue
		}
		member := owner.Member(vd.Name.Lit)
		if member == nil || member.IsStatic() {
			continue
		}
		if vd.Init == nil {
			dst, dstType := fc.emitMemberAddr(fc.this, owner, vd.Name.Lit)
			fc.block.Store(g.zeroConst(dstType), dst)
			continue
		}
		val, valType := fc.emitExpr(vd.Init)
		dst, dstType := fc.emitMemberAddr(fc.this, owner, vd.Name.Lit)
		fc.block.Store(fc.coerceTo(dstType, valType, val), dst)
	}

	if isVirtual {
		g.storeVTables(fc, v, v, fc.this)
	}

	if !fc.terminated {
		fc.block.RetVoid()
	}
}

// declareFunc builds d's llir.Func declaration and binds it onto its
// symbol, without touching its body; defineFunc fills the body in once
// every sibling declaration (including ones appearing later in the same
// file) already has its own Symbol.Value populated, so a call to a
// forward-declared function or a sibling method resolves to a real
// value instead of a nil one.
func (g *Generator) declareFunc(d *ast.FuncDecl) {
	fn, ok := d.Function.(*sema.Function)
	if !ok || fn.Type == nil {
		return
	}

	paramTypes := make([]llir.Type, 0, len(d.Params)+1)
	if fn.Type.IsMethod() {
		if owner, ok := fn.Type.MethodOf.Resolve(g); ok {
			paramTypes = append(paramTypes, g.mod.Pointer(g.LLIRType(ownerHandleType(owner))))
		}
	}
	for _, pt := range fn.Type.Params {
		paramTypes = append(paramTypes, g.LLIRType(pt))
	}
	resultType := g.LLIRType(fn.Type.Result)

	llirFn := g.mod.NewFunc(fn.Symbol.FQN, resultType, paramTypes...)
	llirFn.SetDSOLocal(true)
	fn.LLIR = llirFn
	fn.Symbol.Value = llirFn
}

// defineFunc lowers d's body, if it has one (an abstract or interface
// method declaration never does, and stays declaration-only).
func (g *Generator) defineFunc(d *ast.FuncDecl) {
	fn, ok := d.Function.(*sema.Function)
	if !ok || fn.Type == nil || d.Body == nil {
		return
	}
	llirFn, ok := fn.LLIR.(llir.Func)
	if !ok {
		return
	}

	var (
		owner       types.Custom
		thisPtrType llir.Type
	)
	if fn.Type.IsMethod() {
		if o, ok := fn.Type.MethodOf.Resolve(g); ok {
			owner = o
			thisPtrType = g.mod.Pointer(g.LLIRType(ownerHandleType(owner)))
		}
	}

	fc := &funcCtx{gen: g, fn: llirFn, owner: owner, resultType: g.LLIRType(fn.Type.Result), resultStatic: fn.Type.Result, locals: map[string]*localSlot{}}
	fc.block = llirFn.NewBlock("entry")
	fc.entry = fc.block
	fc.scope = symtab.ScopeChain(parentFQN(fn.Symbol.FQN))

	argOffset := 0
	if owner != nil {
		fc.this = llirFn.Param(0)
		fc.thisPtrType = thisPtrType
		argOffset = 1
	}
	for i, p := range d.Params {
		pt := fn.Type.Params[i]
		paramVal := llirFn.Param(i + argOffset)
		slot := fc.block.Alloca(g.LLIRType(pt))
		fc.block.Store(paramVal, slot)
		fc.locals[p.Name.Lit] = &localSlot{ptr: slot, t: pt}
	}

	fc.emitBlock(d.Body)
	if !fc.terminated {
		// A well-typed, exhaustively-returning body always reaches an
		// explicit ReturnStmt on every path; falling off the end here
		// means either the result is void or the validate pass should
		// have already flagged a missing return upstream. Either way the
		// module must stay well-formed, so close the block off.
		if types.Equal(fn.Type.Result, types.Void) {
			fc.block.RetVoid()
		} else {
			fc.block.Ret(g.zeroValue(fc.block, fn.Type.Result))
		}
	}
}

// declareGlobalVar declares a module-scope global's storage, leaving its
// initializer for emitGlobalVar; a global's own initializer expression
// may reference another global declared later in the same file (§4.4.2's
// fixed-point resolution already allows forward references at the type
// level), so the declaration itself must exist before any initializer in
// the translation unit is lowered.
func (g *Generator) declareGlobalVar(d *ast.VarDecl) {
	sym, ok := d.Name.Symbol.(*symtab.Symbol)
	if !ok || sym.Type == nil {
		return
	}
	glob := g.mod.NewGlobal(sym.FQN, g.LLIRType(sym.Type))
	glob.SetDSOLocal(true)
	if d.IsConst {
		glob.SetConstant(true)
	}
	sym.Value = glob
}

// emitGlobalVar fills in a previously declared global's initializer,
// with a constant initializer when Init is a literal the const-builder
// can fold, or a zero initializer otherwise (this language has no
// non-constant global initializers, §3).
func (g *Generator) emitGlobalVar(d *ast.VarDecl) {
	sym, ok := d.Name.Symbol.(*symtab.Symbol)
	if !ok || sym.Type == nil {
		return
	}
	glob, ok := sym.Value.(llir.Global)
	if !ok {
		return
	}
	if d.Init != nil {
		if c, ok := g.constExpr(d.Init, sym.Type); ok {
			glob.SetInitializer(c)
			return
		}
	}
	glob.SetInitializer(g.zeroConst(sym.Type))
}

func ownerHandleType(owner types.Custom) types.Type {
	if v, ok := owner.(*types.Virtual); ok {
		return types.NewObjectHandle(v)
	}
	return owner
}

func ownerFQNPart(owner types.Custom) string {
	switch o := owner.(type) {
	case *types.Struct:
		return o.Name
	case *types.Virtual:
		return o.Name
	default:
		return "anon"
	}
}

// ownerFQN returns the fully qualified name of owner's own scope, so a
// method or init routine's body can be given the same lexical scope the
// declaration itself resolved its names under.
func ownerFQN(owner types.Custom) string {
	switch o := owner.(type) {
	case *types.Struct:
		if o.Namespace == "" {
			return o.Name
		}
		return o.Namespace + "." + o.Name
	case *types.Virtual:
		if o.Namespace == "" {
			return o.Name
		}
		return o.Namespace + "." + o.Name
	default:
		return ""
	}
}

// parentFQN strips the last dot-separated component off fqn, turning a
// function's own FQN into the scope it was declared in.
func parentFQN(fqn string) string {
	i := strings.LastIndexByte(fqn, '.')
	if i < 0 {
		return ""
	}
	return fqn[:i]
}
