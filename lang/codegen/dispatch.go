package codegen

import (
	"fmt"

	"github.com/emberlang/ember/lang/ast"
	"github.com/emberlang/ember/lang/llir"
	"github.com/emberlang/ember/lang/sema"
	"github.com/emberlang/ember/lang/types"
)

// emitCall lowers a call expression, dispatching on the callee's shape:
// a dotted name resolves against the symbol table as a free function
// first (covering both a bare identifier and a namespace-qualified
// global function), a member access that isn't a free function is a
// method call, and anything else is an indirect call through a
// function-pointer-valued expression (§4.6.1, §4.6.3).
func (fc *funcCtx) emitCall(n *ast.CallExpr) (llir.Value, types.Type) {
	switch callee := n.Fn.(type) {
	case *ast.IdentExpr:
		if cands := fc.freeFunctionCandidates(callee.Lit); len(cands) > 0 {
			return fc.resolveAndEmitFree(n, cands, callee.Lit)
		}
		return fc.emitIndirectCall(n)
	case *ast.MemberExpr:
		if name, ok := calleeNameLike(callee); ok {
			if cands := fc.freeFunctionCandidates(name); len(cands) > 0 {
				return fc.resolveAndEmitFree(n, cands, name)
			}
		}
		return fc.emitMethodCall(n, callee)
	default:
		return fc.emitIndirectCall(n)
	}
}

// freeFunctionCandidates looks up every overload of name visible from
// fc's scope: lang/sema's OverloadPass only renames (and so only
// FindOverloaded-populates) a name with more than one declaration, so a
// non-overloaded function is recovered as a one-element slice via
// FindNamed instead.
func (fc *funcCtx) freeFunctionCandidates(name string) []candidate {
	if syms := fc.gen.ctx.Table.FindOverloaded(fc.scope, name); len(syms) > 0 {
		out := make([]candidate, 0, len(syms))
		for _, s := range syms {
			if f, ok := s.Type.(*types.Function); ok {
				out = append(out, candidate{fn: f, sym: s})
			}
		}
		return out
	}
	if sym, ok := fc.gen.ctx.Table.FindNamed(fc.scope, name); ok {
		if f, ok := sym.Type.(*types.Function); ok {
			return []candidate{{fn: f, sym: sym}}
		}
	}
	return nil
}

func (fc *funcCtx) resolveAndEmitFree(n *ast.CallExpr, cands []candidate, displayName string) (llir.Value, types.Type) {
	argTypes, argVals := fc.emitArgExprs(n.Args, cands)
	chosen, status := resolveOverload(cands, argTypes, fc.expectHint)
	switch status {
	case resolvedNone:
		fc.reportOverloadError(n, "no overload of %q matches the given arguments", displayName)
		return nil, types.Undefined
	case resolvedAmbiguous:
		fc.reportOverloadError(n, "ambiguous call to %q", displayName)
		return nil, types.Undefined
	}
	calleeVal, ok := chosen.sym.Value.(llir.Value)
	if !ok {
		return nil, types.Undefined
	}
	args := fc.coerceArgs(chosen.fn, argTypes, argVals)
	fnType := fc.gen.mod.Func(fc.gen.LLIRType(chosen.fn.Result), paramLLIRTypes(fc.gen, chosen.fn)...)
	return fc.block.Call(calleeVal, fnType, args...), chosen.fn.Result
}

// emitIndirectCall lowers a call through a function-pointer-valued
// expression: evaluate the callee, then the arguments, coercing each
// argument to the callee's own declared parameter types.
func (fc *funcCtx) emitIndirectCall(n *ast.CallExpr) (llir.Value, types.Type) {
	calleeVal, calleeType := fc.emitExpr(n.Fn)
	fnType, ok := calleeType.(*types.Function)
	if !ok {
		return nil, types.Undefined
	}
	argTypes, argVals := fc.emitArgExprsFor(n.Args, fnType.Params)
	args := fc.coerceArgs(fnType, argTypes, argVals)
	llirFnType := fc.gen.mod.Func(fc.gen.LLIRType(fnType.Result), paramLLIRTypes(fc.gen, fnType)...)
	return fc.block.Call(calleeVal, llirFnType, args...), fnType.Result
}

// emitArgExprs evaluates n.Args once, before the eventual candidate is
// chosen, using the parameter types of the first candidate whose arity
// matches as expecting-type hints (no hint when none matches), and
// returns the argument values and their static types in order for
// resolveOverload to filter cands against.
func (fc *funcCtx) emitArgExprs(args []ast.Expr, cands []candidate) ([]types.Type, []llir.Value) {
	var hintSource *types.Function
	for _, c := range cands {
		if len(c.fn.Params) == len(args) {
			hintSource = c.fn
			break
		}
	}
	types_ := make([]types.Type, len(args))
	vals := make([]llir.Value, len(args))
	for i, a := range args {
		if hintSource != nil {
			fc.withExpect(hintSource.Params[i], func() {
				vals[i], types_[i] = fc.emitExpr(a)
			})
		} else {
			vals[i], types_[i] = fc.emitExpr(a)
		}
	}
	return types_, vals
}

func (fc *funcCtx) emitArgExprsFor(args []ast.Expr, params []types.Type) ([]types.Type, []llir.Value) {
	types_ := make([]types.Type, len(args))
	vals := make([]llir.Value, len(args))
	for i, a := range args {
		if i < len(params) {
			fc.withExpect(params[i], func() {
				vals[i], types_[i] = fc.emitExpr(a)
			})
		} else {
			vals[i], types_[i] = fc.emitExpr(a)
		}
	}
	return types_, vals
}

func (fc *funcCtx) coerceArgs(fn *types.Function, argTypes []types.Type, argVals []llir.Value) []llir.Value {
	out := make([]llir.Value, len(argVals))
	for i, v := range argVals {
		if i < len(fn.Params) {
			out[i] = fc.coerceTo(fn.Params[i], argTypes[i], v)
		} else {
			out[i] = v
		}
	}
	return out
}

func paramLLIRTypes(g *Generator, fn *types.Function) []llir.Type {
	out := make([]llir.Type, len(fn.Params))
	for i, p := range fn.Params {
		out[i] = g.LLIRType(p)
	}
	return out
}

// gatherMethodCandidates collects every member of owner (and, for a
// Virtual, every ancestor) named name: the virtual member flattening
// covers every virtual/override method by its single, most-derived
// slot, and collectNonVirtualMembers separately walks for the plain,
// non-virtual methods GetVirtualMembers never lists (§4.6.1's overload
// set for a method call spans both).
func gatherMethodCandidates(owner types.Custom, name string) []candidate {
	var out []candidate
	seen := map[*types.Member]bool{}
	if v, ok := owner.(*types.Virtual); ok {
		for _, loc := range v.GetVirtualMembers() {
			if baseOverloadName(loc.Member.Name) != name {
				continue
			}
			if f, ok := loc.Member.Type.(*types.Function); ok {
				loc := loc
				out = append(out, candidate{fn: f, method: &loc})
				seen[loc.Member] = true
			}
		}
	}
	collectNonVirtualMembers(owner, name, seen, &out)
	return out
}

// collectNonVirtualMembers walks owner (and, for a Virtual, its Supers
// depth-first, left to right) collecting plain, non-virtual candidates
// named name. A name is claimed by the first (leftmost) declaration
// found for it: once owner's own members, or an earlier super, have
// contributed at least one candidate for name, no later super
// contributes a competing one — the "leftmost base wins, no ambiguity"
// rule a plain method-name clash across unrelated bases resolves to
// (multiple_inheritance.cpp's "Function name conflict"/"Diamond" cases),
// as opposed to virtual/override members, which unify by name instead of
// by declaration order.
func collectNonVirtualMembers(owner types.Custom, name string, seen map[*types.Member]bool, out *[]candidate) {
	claimed := false
	_, ownerIsVirtual := owner.(*types.Virtual)
	for _, m := range owner.Members() {
		if seen[m] || (ownerIsVirtual && (m.IsVirtual() || m.IsOverride())) {
			continue
		}
		if baseOverloadName(m.Name) != name {
			continue
		}
		f, ok := m.Type.(*types.Function)
		if !ok {
			continue
		}
		loc := types.MemberLocator{Member: m, Residence: owner}
		*out = append(*out, candidate{fn: f, method: &loc})
		seen[m] = true
		claimed = true
	}
	if claimed {
		return
	}
	if v, ok := owner.(*types.Virtual); ok {
		for _, s := range v.Supers {
			before := len(*out)
			collectNonVirtualMembers(s, name, seen, out)
			if len(*out) > before {
				return
			}
		}
	}
}

// emitMethodCall resolves the receiver's instance pointer, gathers the
// candidate methods visible on its static type, resolves the overload,
// and dispatches it either virtually or statically.
func (fc *funcCtx) emitMethodCall(n *ast.CallExpr, callee *ast.MemberExpr) (llir.Value, types.Type) {
	instPtr, owner, ok := fc.receiverInstancePointer(callee.Receiver)
	if !ok {
		return nil, types.Undefined
	}
	name := callee.Name.Lit
	cands := gatherMethodCandidates(owner, name)
	if len(cands) == 0 {
		fc.reportOverloadError(n, "%s has no member %q", fmt.Sprint(owner), name)
		return nil, types.Undefined
	}
	argTypes, argVals := fc.emitArgExprs(n.Args, cands)
	chosen, status := resolveOverload(cands, argTypes, fc.expectHint)
	switch status {
	case resolvedNone:
		fc.reportOverloadError(n, "no overload of %q matches the given arguments", name)
		return nil, types.Undefined
	case resolvedAmbiguous:
		fc.reportOverloadError(n, "ambiguous call to %q", name)
		return nil, types.Undefined
	}
	args := fc.coerceArgs(chosen.fn, argTypes, argVals)
	return fc.emitMethodDispatch(instPtr, owner, chosen, args)
}

// receiverInstancePointer resolves callee's instance pointer: an
// addressable receiver (a variable, a member chain) goes through
// emitAddr+instancePointer as usual; anything else (the result of a
// nested call, a cast expression) is evaluated directly, since it is
// already a handle value rather than a variable's storage address.
func (fc *funcCtx) receiverInstancePointer(recv ast.Expr) (llir.Value, types.Custom, bool) {
	if addr, t, ok := fc.emitAddr(recv); ok {
		return fc.instancePointer(addr, t)
	}
	val, t := fc.emitExpr(recv)
	if h, ok := t.(*types.ObjectHandle); ok && h.Referent != nil {
		return val, h.Referent, true
	}
	if s, ok := t.(*types.Struct); ok {
		return val, s, true
	}
	return nil, nil, false
}

// emitMethodDispatch calls the resolved method candidate against
// instPtr, which is already typed as a pointer to owner's own layout.
// A virtual/override member dispatches through owner's own vtable slot
// (owner's GetVirtualMembers ordering, not the runtime subtype's: the
// instance's vtable-pointer field when viewed at owner's static type is
// always populated with the metadata object built for owner specifically
// as the presenting-as ancestor, so the slot index only needs to agree
// with owner's own flattening, per inherit.BuildMetadataObject's
// per-ancestor metadata model). Anything else is a direct call, bitcast-
// adjusting `this` only when the implementation physically resides on a
// different ancestor than owner.
func (fc *funcCtx) emitMethodDispatch(instPtr llir.Value, owner types.Custom, c *candidate, args []llir.Value) (llir.Value, types.Type) {
	v, ownerIsVirtual := owner.(*types.Virtual)
	if ownerIsVirtual && (c.method.Member.IsVirtual() || c.method.Member.IsOverride()) {
		return fc.emitVirtualCall(instPtr, v, c, args)
	}
	return fc.emitStaticCall(instPtr, owner, c, args)
}

func (fc *funcCtx) emitVirtualCall(instPtr llir.Value, owner *types.Virtual, c *candidate, args []llir.Value) (llir.Value, types.Type) {
	members := owner.GetVirtualMembers()
	slot := -1
	for i, loc := range members {
		if loc.Member.Name == c.method.Member.Name {
			slot = i
			break
		}
	}
	if slot < 0 {
		return nil, types.Undefined
	}
	vtableField := fc.block.StructGEP(fc.gen.virtualLayout(owner), instPtr, 0)
	metaType := fc.gen.vtableArrayType(owner)
	vtablePtr := fc.block.Load(fc.gen.mod.Pointer(metaType), vtableField)
	elemArrType := fc.gen.vtableElemArrayType(owner)
	arrField := fc.block.StructGEP(metaType, vtablePtr, 0)
	idx := fc.gen.mod.IntConst(fc.gen.mod.Int(32), int64(slot))
	zero := fc.gen.mod.IntConst(fc.gen.mod.Int(32), 0)
	slotAddr := fc.block.GEP(elemArrType, arrField, zero, idx)
	rawFn := fc.block.Load(fc.gen.fnPtrType, slotAddr)
	resultLLIR := fc.gen.LLIRType(c.fn.Result)
	paramLLIR := append([]llir.Type{fc.gen.mod.Pointer(fc.gen.virtualLayout(owner))}, paramLLIRTypes(fc.gen, c.fn)...)
	fnType := fc.gen.mod.Func(resultLLIR, paramLLIR...)
	typedFn := fc.block.BitCast(rawFn, fc.gen.mod.Pointer(fnType))
	callArgs := append([]llir.Value{instPtr}, args...)
	return fc.block.Call(typedFn, fnType, callArgs...), c.fn.Result
}

// emitStaticCall resolves the concrete llir.Func a non-virtual (or
// statically-devirtualized) method lowers to and calls it directly,
// adjusting `this` by the static ancestor offset when the method's
// declaring type differs from owner.
func (fc *funcCtx) emitStaticCall(instPtr llir.Value, owner types.Custom, c *candidate, args []llir.Value) (llir.Value, types.Type) {
	impl, implOwner, ok := memberFuncValue(c.method.Member)
	if !ok {
		return nil, types.Undefined
	}
	thisPtr := instPtr
	if ownerV, okO := owner.(*types.Virtual); okO {
		if implV, okI := implOwner.(*types.Virtual); okI && !types.Equal(ownerV, implV) {
			thisPtr = fc.emitClassCast(instPtr, ownerV, implV)
		}
	}
	paramLLIR := append([]llir.Type{fc.gen.customPtrType(implOwner)}, paramLLIRTypes(fc.gen, c.fn)...)
	fnType := fc.gen.mod.Func(fc.gen.LLIRType(c.fn.Result), paramLLIR...)
	callArgs := append([]llir.Value{thisPtr}, args...)
	return fc.block.Call(impl, fnType, callArgs...), c.fn.Result
}

// memberFuncValue recovers the llir.Func an already-emitted method
// member lowers to, along with the Custom type that physically declares
// it (its member locator's own Decl, not the caller's presenting-as
// type), from the *sema.Function the prototype pass attached to its
// *ast.FuncDecl.
func memberFuncValue(m *types.Member) (llir.Func, types.Custom, bool) {
	fd, ok := m.Decl.(*ast.FuncDecl)
	if !ok {
		return nil, nil, false
	}
	fn, ok := fd.Function.(*sema.Function)
	if !ok || fn.Symbol == nil {
		return nil, nil, false
	}
	llirFn, ok := fn.Symbol.Value.(llir.Func)
	if !ok {
		return nil, nil, false
	}
	// fn.Type.MethodOf was already resolved once by decl.go's declareFunc,
	// during declaration emission, which always runs before any call site
	// can reach it; ObjectTypeRef.Resolve caches that result and returns
	// it for a nil resolver, so no resolver needs threading through here.
	owner, ok := fn.Type.MethodOf.Resolve(nil)
	if !ok {
		return nil, nil, false
	}
	return llirFn, owner, true
}

func (fc *funcCtx) reportOverloadError(n *ast.CallExpr, format string, args ...any) {
	start, _ := n.Span()
	fc.gen.ctx.Diags.Errorf(fc.gen.ctx.Position(start), format, args...)
}
