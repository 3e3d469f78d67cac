package sema

import (
	"github.com/emberlang/ember/lang/ast"
	"github.com/emberlang/ember/lang/pass"
	"github.com/emberlang/ember/lang/symtab"
	"github.com/emberlang/ember/lang/token"
	"github.com/emberlang/ember/lang/types"
)

// Function is what *ast.FuncDecl.Function is set to once the prototype
// pass has resolved a declaration's signature: its type, the symbol it
// was entered into the table under, and (later) the backend function
// codegen builds for it.
type Function struct {
	Decl   *ast.FuncDecl
	Symbol *symtab.Symbol
	Type   *types.Function
	LLIR   any // set by lang/codegen when the function is declared
}

// PrototypePass implements §4.4.2: it walks every declaration, resolving
// its type against whatever is already known and defining (or
// refining) its symbol table entry, re-running to convergence as later
// declarations make earlier forward references resolvable. It owns the
// per-scope bookkeeping (which FQN is a struct, which is a class or
// interface, which is a function body) that lets a nested VarDecl or
// FuncDecl tell what kind of container it was declared in.
type PrototypePass struct {
	structs  map[string]*types.Struct
	virtuals map[string]*types.Virtual
	funcFQN  map[string]bool
}

func NewPrototypePass() *PrototypePass {
	return &PrototypePass{
		structs:  map[string]*types.Struct{},
		virtuals: map[string]*types.Virtual{},
		funcFQN:  map[string]bool{},
	}
}

func (p *PrototypePass) Name() string { return "prototype" }

func (p *PrototypePass) Enter(ctx *pass.Context, n ast.Node) int {
	parent := ctx.Table.CurrentScope()
	switch d := n.(type) {
	case *ast.NamespaceDecl:
		return p.enterNamespace(ctx, parent, d)
	case *ast.StructDecl:
		return p.enterStruct(ctx, parent, d)
	case *ast.ClassDecl:
		return p.enterClass(ctx, parent, d)
	case *ast.InterfaceDecl:
		return p.enterInterface(ctx, parent, d)
	case *ast.FuncDecl:
		return p.enterFunc(ctx, parent, d)
	case *ast.VarDecl:
		return p.enterVar(ctx, parent, d)
	default:
		return 0
	}
}

func (p *PrototypePass) Exit(*pass.Context, ast.Node) int { return 0 }

func (p *PrototypePass) enterNamespace(ctx *pass.Context, parent *symtab.Scope, d *ast.NamespaceDecl) int {
	fqn := parent.Qualify(d.Name.Lit)
	ns := types.NewNamespace(fqn)
	return p.define(ctx, fqn, d.Name.Lit, ns, nil, d, d.Ns)
}

func (p *PrototypePass) enterStruct(ctx *pass.Context, parent *symtab.Scope, d *ast.StructDecl) int {
	fqn := parent.Qualify(d.Name.Lit)
	st, ok := p.structs[fqn]
	if !ok {
		st = types.NewStruct(parent.FQN(), d.Name.Lit, d)
		p.structs[fqn] = st
	}
	d.Type = st
	return p.define(ctx, fqn, d.Name.Lit, st, d.Classifiers, d, d.Struct)
}

func (p *PrototypePass) enterClass(ctx *pass.Context, parent *symtab.Scope, d *ast.ClassDecl) int {
	fqn := parent.Qualify(d.Name.Lit)
	v, ok := p.virtuals[fqn]
	if !ok {
		v = types.NewClass(parent.FQN(), d.Name.Lit, d)
		p.virtuals[fqn] = v
	}
	d.Type = v
	changed := p.define(ctx, fqn, d.Name.Lit, v, d.Classifiers, d, d.Class)
	changed += p.resolveSupers(ctx, parent, v, d.Inherits)
	return changed
}

func (p *PrototypePass) enterInterface(ctx *pass.Context, parent *symtab.Scope, d *ast.InterfaceDecl) int {
	fqn := parent.Qualify(d.Name.Lit)
	v, ok := p.virtuals[fqn]
	if !ok {
		v = types.NewInterface(parent.FQN(), d.Name.Lit, d)
		p.virtuals[fqn] = v
	}
	d.Type = v
	changed := p.define(ctx, fqn, d.Name.Lit, v, d.Classifiers, d, d.Interface)
	changed += p.resolveSupers(ctx, parent, v, d.Inherits)
	return changed
}

func (p *PrototypePass) resolveSupers(ctx *pass.Context, parent *symtab.Scope, v *types.Virtual, inherits *ast.ClassInherit) int {
	if inherits == nil {
		return 0
	}
	supers := make([]*types.Virtual, 0, len(inherits.Supers))
	for _, q := range inherits.Supers {
		sym, ok := ctx.Table.FindNamed(parent, q.String())
		if !ok {
			continue
		}
		if sv, ok := sym.Type.(*types.Virtual); ok {
			supers = append(supers, sv)
		}
	}
	if len(supers) != len(inherits.Supers) {
		// Not every super is resolvable yet; keep whatever we found this
		// round and let the next iteration pick up the rest.
		if v.SetSupers(supers) {
			return 1
		}
		return 0
	}
	if v.SetSupers(supers) {
		return 1
	}
	return 0
}

func (p *PrototypePass) enterFunc(ctx *pass.Context, parent *symtab.Scope, d *ast.FuncDecl) int {
	if p.funcFQN[parent.FQN()] {
		// A declaration nested inside a function body is a local,
		// not a prototype-level declaration; skip it here.
		return 0
	}
	fqn := parent.Qualify(d.Name.Lit)
	p.funcFQN[fqn] = true

	changed := 0
	params := make([]types.Type, len(d.Params))
	allOK := true
	for i, prm := range d.Params {
		pt, ok := ResolveType(ctx, parent, prm.Type)
		params[i] = pt
		allOK = allOK && ok
	}
	result := types.Type(types.Void)
	if d.ResultType != nil {
		rt, ok := ResolveType(ctx, parent, d.ResultType)
		result = rt
		allOK = allOK && ok
	}
	fnType := types.NewFunction(params, result)

	if owner, ok := p.owner(parent.FQN()); ok {
		fnType.MethodOf = types.RefFor(owner)
		member := &types.Member{Name: d.Name.Lit, Type: fnType, Classifiers: d.Classifiers, Decl: d}
		upsertMember(owner, member)
	}

	// allOK is false while some referenced type is still a forward
	// reference; the symbol is defined anyway (with an Undefined piece)
	// so downstream lookups succeed, and gets refined on a later
	// iteration once the blocking name resolves.
	_ = allOK

	sym := &symtab.Symbol{
		Name:        d.Name.Lit,
		FQN:         fqn,
		Type:        fnType,
		Classifiers: d.Classifiers,
		Origin:      symtab.Origin{Decl: d, Pos: d.Fn},
	}
	prevFn, _ := d.Function.(*Function)
	if prevFn == nil || !types.Equal(prevFn.Type, fnType) {
		changed++
	}
	ctx.Table.Define(sym)
	d.Function = &Function{Decl: d, Symbol: sym, Type: fnType}
	return changed
}

func (p *PrototypePass) enterVar(ctx *pass.Context, parent *symtab.Scope, d *ast.VarDecl) int {
	if p.funcFQN[parent.FQN()] {
		return 0 // local: lang/sema's LocalsPass owns these
	}
	fqn := parent.Qualify(d.Name.Lit)
	var (
		declType types.Type
		ok       bool
	)
	if d.DeclType != nil {
		declType, ok = ResolveType(ctx, parent, d.DeclType)
	} else if d.Init != nil {
		declType, ok = exprType(ctx, parent, d.Init)
	}
	if declType == nil {
		declType, ok = types.Undefined, false
	}

	if owner, isMember := p.owner(parent.FQN()); isMember {
		member := &types.Member{Name: d.Name.Lit, Type: declType, Classifiers: d.Classifiers, Decl: d}
		upsertMember(owner, member)
	}

	classifiers := d.Classifiers
	if d.IsConst {
		classifiers = append(append(token.Classifiers{}, classifiers...), token.CONST)
	}
	sym := &symtab.Symbol{
		Name:        d.Name.Lit,
		FQN:         fqn,
		Type:        declType,
		Classifiers: classifiers,
		Origin:      symtab.Origin{Decl: d, Pos: d.Start},
	}
	changed := 0
	if existing, found := ctx.Table.FindNamed(parent, d.Name.Lit); !found || !types.Equal(existing.Type, declType) {
		changed = 1
	}
	_ = ok
	ctx.Table.Define(sym)
	d.Name.Symbol = sym
	return changed
}

// owner reports the struct/virtual container a scope FQN corresponds to,
// if any.
func (p *PrototypePass) owner(fqn string) (types.Custom, bool) {
	if s, ok := p.structs[fqn]; ok {
		return s, true
	}
	if v, ok := p.virtuals[fqn]; ok {
		return v, true
	}
	return nil, false
}

func (p *PrototypePass) define(ctx *pass.Context, fqn, name string, t types.Type, classifiers token.Classifiers, decl ast.Node, pos token.Pos) int {
	sym := &symtab.Symbol{
		Name:        name,
		FQN:         fqn,
		Type:        t,
		Classifiers: classifiers,
		Origin:      symtab.Origin{Decl: decl, Pos: pos},
	}
	changed := 0
	if existing, found := ctx.Table.FindNamed(ctx.Table.CurrentScope(), name); !found || !types.Equal(existing.Type, t) {
		changed = 1
	}
	ctx.Table.Define(sym)
	return changed
}

func upsertMember(owner types.Custom, m *types.Member) {
	switch o := owner.(type) {
	case *types.Struct:
		o.UpsertMember(m)
	case *types.Virtual:
		o.UpsertMember(m)
	}
}

var _ pass.Pass = (*PrototypePass)(nil)
