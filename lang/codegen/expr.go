package codegen

import (
	"strconv"

	"github.com/emberlang/ember/lang/ast"
	"github.com/emberlang/ember/lang/llir"
	"github.com/emberlang/ember/lang/sema"
	"github.com/emberlang/ember/lang/symtab"
	"github.com/emberlang/ember/lang/token"
	"github.com/emberlang/ember/lang/types"
)

// emitExpr lowers e to its runtime value, returning the value's static
// type alongside it so the caller (an assignment, a return, an argument
// slot) knows what coercion, if any, still needs to run (§4.6).
func (fc *funcCtx) emitExpr(e ast.Expr) (llir.Value, types.Type) {
	switch n := e.(type) {
	case *ast.NumberLit:
		t := fc.literalType(n)
		return fc.numberLitValue(n, t), t
	case *ast.BoolLit:
		boolT := types.LookupPrimitive("bool")
		v := int64(0)
		if n.Value {
			v = 1
		}
		return fc.gen.mod.IntConst(fc.gen.primitive(boolT), v), boolT
	case *ast.IdentExpr:
		return fc.emitIdentRead(n)
	case *ast.MemberExpr:
		return fc.emitMemberRead(n)
	case *ast.CallExpr:
		return fc.emitCall(n)
	case *ast.UnaryExpr:
		return fc.emitUnary(n)
	case *ast.BinaryExpr:
		return fc.emitBinary(n)
	case *ast.AssignExpr:
		return fc.emitAssign(n)
	case *ast.CastExpr:
		return fc.emitCast(n)
	default:
		return nil, types.Undefined
	}
}

// literalType resolves a NumberLit's static type: an explicit classifier
// suffix wins outright; otherwise, an expecting type in scope (the
// destination of an assignment, return, or declaration this literal is
// the direct value of) is adopted as long as it agrees on "floatness"
// with the literal's own written form, matching §4.2's "a literal with
// no classifier adopts the expecting type"; absent either, integer
// literals default to i64 and fractional/exponent literals to f64.
func (fc *funcCtx) literalType(n *ast.NumberLit) types.Type {
	if n.Classifier != "" {
		if p := types.LookupPrimitive(n.Classifier); p != nil {
			return p
		}
	}
	isFloatLit := n.Fraction != "" || n.Exponent != ""
	if hint, ok := fc.expectHint.(*types.Primitive); ok {
		if hint.Float || !isFloatLit {
			return hint
		}
	}
	if isFloatLit {
		return types.LookupPrimitive("f64")
	}
	return types.LookupPrimitive("i64")
}

func (fc *funcCtx) numberLitValue(n *ast.NumberLit, t types.Type) llir.Value {
	p, ok := t.(*types.Primitive)
	if !ok {
		return nil
	}
	return numberLitConst(fc.gen, n, p)
}

func numberLitConst(g *Generator, n *ast.NumberLit, p *types.Primitive) llir.Constant {
	llt := g.primitive(p)
	if p.Float {
		return g.mod.FloatConst(llt, parseFloatLit(n))
	}
	return g.mod.IntConst(llt, parseIntLit(n))
}

func parseFloatLit(n *ast.NumberLit) float64 {
	s := n.Integer
	if n.Fraction != "" {
		s += "." + n.Fraction
	}
	if n.Exponent != "" {
		s += "e" + n.Exponent
	}
	if n.Negative {
		s = "-" + s
	}
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func parseIntLit(n *ast.NumberLit) int64 {
	if v, err := strconv.ParseInt(n.Integer, 0, 64); err == nil {
		if n.Negative {
			return -v
		}
		return v
	}
	if v, err := strconv.ParseUint(n.Integer, 0, 64); err == nil {
		return int64(v)
	}
	return 0
}

// resolveIdentSymbol recovers the *symtab.Symbol an identifier denotes:
// the prototype/locals passes already attach one to every identifier
// they type-check (see lang/sema's exprType), but an identifier codegen
// reaches that neither pass ever visited (a call's callee name handled
// elsewhere, a chain fragment) falls back to a fresh lookup against the
// reconstructed lexical scope.
func (fc *funcCtx) resolveIdentSymbol(n *ast.IdentExpr) *symtab.Symbol {
	if sym, ok := n.Symbol.(*symtab.Symbol); ok && sym != nil {
		return sym
	}
	if sym, ok := fc.gen.ctx.Table.FindNamed(fc.scope, n.Lit); ok {
		return sym
	}
	return nil
}

func (fc *funcCtx) emitIdentRead(n *ast.IdentExpr) (llir.Value, types.Type) {
	if slot, ok := fc.locals[n.Lit]; ok {
		return fc.block.Load(fc.gen.LLIRType(slot.t), slot.ptr), slot.t
	}
	sym := fc.resolveIdentSymbol(n)
	if sym == nil {
		return nil, types.Undefined
	}
	val, ok := sym.Value.(llir.Value)
	if !ok {
		return nil, types.Undefined
	}
	return fc.block.Load(fc.gen.LLIRType(sym.Type), val), sym.Type
}

// emitAddr computes the address of the storage location e denotes, for
// an assignable expression (§4.6.2 "lvalue"): a local, a global, or a
// member access chain rooted at one. The returned type is the static
// type of the variable/member itself (not yet dereferenced through an
// object-handle indirection — see instancePointer for that next step),
// so a struct-typed slot's address is the struct's own layout address
// while an object-handle-typed slot's address is the address of the
// pointer variable, not the pointee.
func (fc *funcCtx) emitAddr(e ast.Expr) (llir.Value, types.Type, bool) {
	switch n := e.(type) {
	case *ast.IdentExpr:
		if slot, ok := fc.locals[n.Lit]; ok {
			return slot.ptr, slot.t, true
		}
		sym := fc.resolveIdentSymbol(n)
		if sym == nil {
			return nil, types.Undefined, false
		}
		val, ok := sym.Value.(llir.Value)
		if !ok {
			return nil, types.Undefined, false
		}
		return val, sym.Type, true
	case *ast.MemberExpr:
		if name, ok := calleeNameLike(n); ok {
			if sym, found := fc.gen.ctx.Table.FindNamed(fc.scope, name); found {
				if _, isFn := sym.Type.(*types.Function); !isFn {
					if val, okv := sym.Value.(llir.Value); okv {
						return val, sym.Type, true
					}
				}
			}
		}
		recvAddr, recvType, ok := fc.emitAddr(n.Receiver)
		if !ok {
			return nil, types.Undefined, false
		}
		instPtr, owner, ok := fc.instancePointer(recvAddr, recvType)
		if !ok {
			return nil, types.Undefined, false
		}
		return fc.memberFieldAddr(instPtr, owner, n.Name.Lit)
	default:
		return nil, types.Undefined, false
	}
}

// instancePointer turns the address of a variable of type t into the
// instance pointer member-address computations walk from: loading
// through an object-handle slot (the slot itself holds a pointer value),
// or using a struct/virtual slot's own address directly, since a struct
// value lives inline in its variable's storage.
func (fc *funcCtx) instancePointer(addr llir.Value, t types.Type) (llir.Value, types.Custom, bool) {
	switch tt := t.(type) {
	case *types.ObjectHandle:
		if tt.Referent == nil {
			return nil, nil, false
		}
		handleVal := fc.block.Load(fc.gen.LLIRType(tt), addr)
		return handleVal, tt.Referent, true
	case *types.Struct:
		return addr, tt, true
	case *types.Virtual:
		return addr, tt, true
	default:
		return nil, nil, false
	}
}

// memberFieldAddr returns the address of owner's member name, given an
// instance pointer already typed to owner's own layout.
func (fc *funcCtx) memberFieldAddr(instPtr llir.Value, owner types.Custom, name string) (llir.Value, types.Type, bool) {
	switch o := owner.(type) {
	case *types.Struct:
		return fc.gen.structMemberAddr(fc.block, instPtr, o, name)
	case *types.Virtual:
		return fc.gen.virtualMemberAddr(fc.block, instPtr, o, name)
	default:
		return nil, nil, false
	}
}

// emitMemberAddr is memberFieldAddr's export to lang/codegen's own
// decl.go, whose defineInitFunc already has an instance pointer in hand
// (the init routine's own `this` parameter) and so skips emitAddr's
// variable-resolution step entirely.
func (fc *funcCtx) emitMemberAddr(basePtr llir.Value, owner types.Custom, name string) (llir.Value, types.Type) {
	ptr, t, ok := fc.memberFieldAddr(basePtr, owner, name)
	if !ok {
		return nil, types.Undefined
	}
	return ptr, t
}

// structFieldIndex returns s's non-function member name's position
// within structLayout(s)'s field list, which (see codegen.go's
// structLayout) skips function members but keeps everything else,
// static or not, in declaration order.
func structFieldIndex(s *types.Struct, name string) int {
	idx := 0
	for _, m := range s.Members() {
		if _, isFn := m.Type.(*types.Function); isFn {
			continue
		}
		if m.Name == name {
			return idx
		}
		idx++
	}
	return -1
}

func (g *Generator) structMemberAddr(block llir.Block, basePtr llir.Value, s *types.Struct, name string) (llir.Value, types.Type, bool) {
	idx := structFieldIndex(s, name)
	if idx < 0 {
		return nil, nil, false
	}
	m := s.Member(name)
	return block.StructGEP(g.structLayout(s), basePtr, idx), m.Type, true
}

// virtualOwnFieldIndex returns v's own non-function, non-static member's
// position within virtualLayout(v)'s field list: slot 0 is the vtable
// pointer, the next len(v.Supers) slots are v's embedded ancestor
// subobjects in order, and v's own data members follow (see codegen.go's
// virtualLayout).
func virtualOwnFieldIndex(v *types.Virtual, name string) int {
	idx := 1 + len(v.Supers)
	for _, m := range v.Members() {
		if _, isFn := m.Type.(*types.Function); isFn {
			continue
		}
		if m.IsStatic() {
			continue
		}
		if m.Name == name {
			return idx
		}
		idx++
	}
	return -1
}

// virtualMemberAddr finds name's physical address starting from an
// instance pointer typed to v's own layout, checking v's own data
// members first and then recursing, in declaration order, through each
// embedded super subobject (§6.5's "member access through an inherited
// field walks down to the ancestor subobject that owns it").
func (g *Generator) virtualMemberAddr(block llir.Block, basePtr llir.Value, v *types.Virtual, name string) (llir.Value, types.Type, bool) {
	if m := v.Member(name); m != nil {
		if _, isFn := m.Type.(*types.Function); !isFn {
			if idx := virtualOwnFieldIndex(v, name); idx >= 0 {
				return block.StructGEP(g.virtualLayout(v), basePtr, idx), m.Type, true
			}
		}
	}
	for i, s := range v.Supers {
		superPtr := block.StructGEP(g.virtualLayout(v), basePtr, 1+i)
		if ptr, t, ok := g.virtualMemberAddr(block, superPtr, s, name); ok {
			return ptr, t, true
		}
	}
	return nil, nil, false
}

func (fc *funcCtx) emitMemberRead(n *ast.MemberExpr) (llir.Value, types.Type) {
	ptr, t, ok := fc.emitAddr(n)
	if !ok {
		return nil, types.Undefined
	}
	return fc.block.Load(fc.gen.LLIRType(t), ptr), t
}

func (fc *funcCtx) emitAssign(n *ast.AssignExpr) (llir.Value, types.Type) {
	ptr, t, ok := fc.emitAddr(n.Left)
	if !ok {
		return nil, types.Undefined
	}
	var (
		val     llir.Value
		valType types.Type
	)
	fc.withExpect(t, func() {
		val, valType = fc.emitExpr(n.Right)
	})
	coerced := fc.coerceTo(t, valType, val)
	fc.block.Store(coerced, ptr)
	return coerced, t
}

func (fc *funcCtx) emitUnary(n *ast.UnaryExpr) (llir.Value, types.Type) {
	v, t := fc.emitExpr(n.Operand)
	p, ok := t.(*types.Primitive)
	if !ok {
		return nil, types.Undefined
	}
	switch n.Op {
	case token.NEG:
		zero := fc.gen.zeroConst(p)
		if p.Float {
			return fc.block.BinOp(llir.OpFSub, zero, v), p
		}
		return fc.block.BinOp(llir.OpSub, zero, v), p
	case token.NOT:
		allOnes := fc.gen.mod.IntConst(fc.gen.primitive(p), -1)
		return fc.block.BinOp(llir.OpXor, v, allOnes), p
	default:
		return nil, types.Undefined
	}
}

func (fc *funcCtx) emitBinary(n *ast.BinaryExpr) (llir.Value, types.Type) {
	switch n.Op {
	case token.LAND, token.LOR:
		return fc.emitLogical(n)
	default:
		return fc.emitArith(n)
	}
}

func (fc *funcCtx) emitArith(n *ast.BinaryExpr) (llir.Value, types.Type) {
	lv, lt := fc.emitExpr(n.Left)
	rv, rt := fc.emitExpr(n.Right)
	lp, lok := lt.(*types.Primitive)
	rp, rok := rt.(*types.Primitive)
	if !lok || !rok {
		return nil, types.Undefined
	}
	result := types.MostSpecialized(lp, rp)
	lv = fc.coercePrimitive(result, lp, lv)
	rv = fc.coercePrimitive(result, rp, rv)
	op, ok := arithOpFor(n.Op, result)
	if !ok {
		fc.gen.ctx.Diags.Errorf(fc.gen.ctx.Position(n.OpPos), "operator %s has no backend lowering", n.Op.GoString())
		return fc.gen.zeroConst(result), result
	}
	return fc.block.BinOp(op, lv, rv), result
}

// arithOpFor maps a binary operator token to its ArithOp for a given
// operand type. POW has no entry: the llir.Block contract exposes no
// exponentiation primitive and the grammar's `pow` token has never had a
// defined lowering (see DESIGN.md's Open Question decision), so a
// program that actually evaluates a pow expression gets a diagnostic
// instead of silently miscompiling.
func arithOpFor(tok token.Token, p *types.Primitive) (llir.ArithOp, bool) {
	switch tok {
	case token.ADD:
		if p.Float {
			return llir.OpFAdd, true
		}
		return llir.OpAdd, true
	case token.SUB:
		if p.Float {
			return llir.OpFSub, true
		}
		return llir.OpSub, true
	case token.MUL:
		if p.Float {
			return llir.OpFMul, true
		}
		return llir.OpMul, true
	case token.QUO:
		if p.Float {
			return llir.OpFDiv, true
		}
		if p.Signed {
			return llir.OpSDiv, true
		}
		return llir.OpUDiv, true
	case token.REM:
		if p.Float {
			return llir.OpFRem, true
		}
		if p.Signed {
			return llir.OpSRem, true
		}
		return llir.OpURem, true
	case token.AND:
		return llir.OpAnd, true
	case token.OR:
		return llir.OpOr, true
	case token.XOR:
		return llir.OpXor, true
	case token.SHL:
		return llir.OpShl, true
	case token.SHR:
		if p.Signed {
			return llir.OpAShr, true
		}
		return llir.OpLShr, true
	default:
		return 0, false
	}
}

// emitLogical lowers && and || with short-circuit evaluation: the right
// operand is only evaluated in a successor block reached conditionally
// on the left, and the result is a phi over the two paths' boolean
// values (§4.6, "logical operators do not evaluate their right operand
// unless the left didn't already decide the result").
func (fc *funcCtx) emitLogical(n *ast.BinaryExpr) (llir.Value, types.Type) {
	boolT := types.LookupPrimitive("bool")
	boolLLIR := fc.gen.primitive(boolT)

	lv, lt := fc.emitExpr(n.Left)
	lCond := fc.toBool(lv, lt)
	startBlock := fc.block

	rhsBlock := fc.newBlock("logic.rhs")
	joinBlock := fc.newBlock("logic.end")

	var shortValue int64
	if n.Op == token.LAND {
		shortValue = 0
		fc.block.CondBr(lCond, rhsBlock, joinBlock)
	} else {
		shortValue = 1
		fc.block.CondBr(lCond, joinBlock, rhsBlock)
	}

	fc.setBlock(rhsBlock)
	rv, rt := fc.emitExpr(n.Right)
	rCond := fc.toBool(rv, rt)
	rhsEnd := fc.block
	fc.block.Br(joinBlock)

	fc.setBlock(joinBlock)
	shortConst := fc.gen.mod.IntConst(boolLLIR, shortValue)
	phi := fc.block.Phi(boolLLIR,
		llir.PhiEdge{Value: shortConst, Pred: startBlock},
		llir.PhiEdge{Value: rCond, Pred: rhsEnd},
	)
	return phi, boolT
}

func (fc *funcCtx) emitCast(n *ast.CastExpr) (llir.Value, types.Type) {
	v, from := fc.emitExpr(n.Operand)
	to, ok := sema.ResolveType(fc.gen.ctx, fc.scope, n.Type)
	if !ok {
		return nil, types.Undefined
	}
	if fromP, okF := from.(*types.Primitive); okF {
		if toP, okT := to.(*types.Primitive); okT {
			if toP.Bool && !fromP.Bool {
				return fc.toBool(v, fromP), to
			}
			return fc.coercePrimitive(toP, fromP, v), to
		}
		// A bare integer/float value cast to an object handle has no
		// meaning in this language; fall through to returning the
		// original value typed as `to`, which a later well-formedness
		// diagnostic (outside codegen's scope) would reject.
		return v, to
	}
	if fromH, okF := from.(*types.ObjectHandle); okF {
		if toH, okT := to.(*types.ObjectHandle); okT && fromH.Referent != nil && toH.Referent != nil {
			return fc.emitClassCast(v, fromH.Referent, toH.Referent), to
		}
	}
	return v, to
}

// emitClassCast lowers "expr as T" between two object-handle types.
// Upcasting to an ancestor is always statically safe and is lowered as a
// chain of StructGEPs through each embedded ancestor subobject found by
// superPath. Downcasting (or a cast between unrelated types) has no
// runtime type tag to verify against in this ABI, so the pointer is
// reinterpreted in place, the same offset-folded-into-bitcast posture
// lang/inherit's BuildThunk takes for its own this-pointer adjustment
// (see DESIGN.md's Open Question decision on downcast safety).
func (fc *funcCtx) emitClassCast(ptr llir.Value, from, to *types.Virtual) llir.Value {
	if path, ok := superPath(from, to); ok {
		cur := ptr
		v := from
		for _, idx := range path {
			cur = fc.block.StructGEP(fc.gen.virtualLayout(v), cur, 1+idx)
			v = v.Supers[idx]
		}
		return cur
	}
	return fc.block.BitCast(ptr, fc.gen.mod.Pointer(fc.gen.virtualLayout(to)))
}

// superPath finds the super-list index sequence from `from` down to
// `to`, depth-first, so emitClassCast can lower an upcast as nested
// StructGEPs through exactly the embedded subobjects the static type
// hierarchy says are in between.
func superPath(from, to *types.Virtual) ([]int, bool) {
	if types.Equal(from, to) {
		return nil, true
	}
	for i, s := range from.Supers {
		if path, ok := superPath(s, to); ok {
			return append([]int{i}, path...), true
		}
	}
	return nil, false
}

// calleeNameLike flattens an identifier/member-access chain back into a
// dotted name, e.g. "ns.sub.global", the same shape lang/sema's
// (unexported) calleeName produces for call targets; codegen needs its
// own copy since it also applies this to assignment and plain-read
// targets, not just calls.
func calleeNameLike(e ast.Expr) (string, bool) {
	switch n := e.(type) {
	case *ast.IdentExpr:
		return n.Lit, true
	case *ast.MemberExpr:
		base, ok := calleeNameLike(n.Receiver)
		if !ok {
			return "", false
		}
		return base + "." + n.Name.Lit, true
	default:
		return "", false
	}
}
