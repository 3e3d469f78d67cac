// Package llvmir is the concrete lang/llir.Builder backed by the real,
// pure-Go github.com/llir/llvm library (chosen over the cgo-wrapped
// tinygo.org/x/go-llvm so that a compile of this repository never needs
// a system LLVM install; see DESIGN.md). Every lang/llir interface method
// is a thin pass-through to the corresponding llir/llvm constructor; the
// wrapper types exist purely so lang/codegen and lang/inherit can depend
// on the small lang/llir vocabulary instead of on ir/types/constant/enum
// directly.
package llvmir

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	irtypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/emberlang/ember/lang/llir"
)

type typ struct{ t irtypes.Type }

func (typ) IsLLIRType() {}

type val struct{ v value.Value }

func (val) IsLLIRValue() {}

type cst struct{ c constant.Constant }

func (cst) IsLLIRValue()    {}
func (cst) IsLLIRConstant() {}

func wrapT(t irtypes.Type) llir.Type   { return typ{t} }
func wrapV(v value.Value) llir.Value   { return val{v} }
func wrapC(c constant.Constant) llir.Constant { return cst{c} }

func unT(t llir.Type) irtypes.Type { return t.(typ).t }
func unV(v llir.Value) value.Value {
	switch x := v.(type) {
	case val:
		return x.v
	case cst:
		return x.c
	case *fn:
		return x.f
	case *global:
		return x.g
	case *param:
		return x.p
	default:
		return nil
	}
}

// unC unwraps a Constant back to its underlying constant.Constant,
// accepting both plain constants (cst) and a function's address (fn
// embeds Constant since every function value is itself one in LLVM IR).
func unC(c llir.Constant) constant.Constant {
	switch x := c.(type) {
	case cst:
		return x.c
	case *fn:
		return x.f
	default:
		return nil
	}
}

// Module wraps a single *ir.Module, the one top-level compilation unit
// emitted per session (§6.2).
type Module struct {
	M *ir.Module
}

// NewModule returns a fresh, empty module.
func NewModule() *Module { return &Module{M: ir.NewModule()} }

func (m *Module) Module() llir.Module { return m }

func (m *Module) Void() llir.Type     { return wrapT(irtypes.Void) }
func (m *Module) Int(bits int) llir.Type { return wrapT(irtypes.NewInt(uint64(bits))) }
func (m *Module) Float32() llir.Type  { return wrapT(irtypes.Float) }
func (m *Module) Float64() llir.Type  { return wrapT(irtypes.Double) }
func (m *Module) Pointer(elem llir.Type) llir.Type {
	return wrapT(irtypes.NewPointer(unT(elem)))
}
func (m *Module) Struct(fields ...llir.Type) llir.Type {
	ts := make([]irtypes.Type, len(fields))
	for i, f := range fields {
		ts[i] = unT(f)
	}
	return wrapT(irtypes.NewStruct(ts...))
}
func (m *Module) NamedStruct(name string, fields ...llir.Type) llir.Type {
	ts := make([]irtypes.Type, len(fields))
	for i, f := range fields {
		ts[i] = unT(f)
	}
	st := irtypes.NewStruct(ts...)
	st.TypeName = name
	m.M.TypeDefs = append(m.M.TypeDefs, st)
	return wrapT(st)
}
func (m *Module) ArrayOf(n int64, elem llir.Type) llir.Type {
	return wrapT(irtypes.NewArray(uint64(n), unT(elem)))
}
func (m *Module) Func(result llir.Type, params ...llir.Type) llir.Type {
	ts := make([]irtypes.Type, len(params))
	for i, p := range params {
		ts[i] = unT(p)
	}
	return wrapT(irtypes.NewFunc(unT(result), ts...))
}

func (m *Module) IntConst(t llir.Type, v int64) llir.Constant {
	return wrapC(constant.NewInt(unT(t).(*irtypes.IntType), v))
}
func (m *Module) FloatConst(t llir.Type, v float64) llir.Constant {
	return wrapC(constant.NewFloat(unT(t).(*irtypes.FloatType), v))
}
func (m *Module) NullConst(t llir.Type) llir.Constant {
	return wrapC(constant.NewNull(unT(t).(*irtypes.PointerType)))
}
func (m *Module) UndefConst(t llir.Type) llir.Constant {
	return wrapC(constant.NewUndef(unT(t)))
}
func (m *Module) StructConst(t llir.Type, fields ...llir.Constant) llir.Constant {
	cs := make([]constant.Constant, len(fields))
	for i, f := range fields {
		cs[i] = unC(f)
	}
	return wrapC(constant.NewStruct(unT(t).(*irtypes.StructType), cs...))
}
func (m *Module) ArrayConst(elem llir.Type, elems ...llir.Constant) llir.Constant {
	cs := make([]constant.Constant, len(elems))
	for i, e := range elems {
		cs[i] = unC(e)
	}
	at := irtypes.NewArray(uint64(len(elems)), unT(elem))
	return wrapC(constant.NewArray(at, cs...))
}
func (m *Module) BitCastConst(c llir.Constant, t llir.Type) llir.Constant {
	return wrapC(constant.NewBitCast(unC(c), unT(t)))
}
func (m *Module) GEPConst(elemType llir.Type, base llir.Constant, indices ...int64) llir.Constant {
	idx := make([]constant.Constant, len(indices))
	for i, n := range indices {
		idx[i] = constant.NewInt(irtypes.I32, n)
	}
	return wrapC(constant.NewGetElementPtr(unT(elemType), unC(base), idx...))
}

func (m *Module) NewGlobal(name string, t llir.Type) llir.Global {
	g := m.M.NewGlobal(name, unT(t))
	return &global{g}
}

func (m *Module) NewFunc(name string, result llir.Type, params ...llir.Type) llir.Func {
	ps := make([]*ir.Param, len(params))
	for i, p := range params {
		ps[i] = ir.NewParam("", unT(p))
	}
	f := m.M.NewFunc(name, unT(result), ps...)
	return &fn{f}
}

func (m *Module) String() string { return m.M.String() }

// SetSourceFilename implements llir.SourceFilenameSetter.
func (m *Module) SetSourceFilename(name string) { m.M.SourceFilename = name }

type global struct{ g *ir.Global }

func (global) IsLLIRValue() {}
func (g *global) SetInitializer(c llir.Constant) { g.g.Init = unC(c) }
func (g *global) SetDSOLocal(local bool)          { g.g.DSOLocal = local }
func (g *global) SetConstant(isConst bool)        { g.g.Immutable = isConst }

type param struct{ p *ir.Param }

func (param) IsLLIRValue() {}
func (p *param) SetName(name string) { p.p.LocalIdent = ir.NewLocalIdent(name) }
func (p *param) SetNoUndef()         { p.p.Attrs = append(p.p.Attrs, enum.ParamAttrNoUndef) }
func (p *param) SetByVal(t llir.Type) {
	p.p.Attrs = append(p.p.Attrs, ir.ByValAttr{Typ: unT(t)})
}

type fn struct{ f *ir.Func }

// fn implements Constant, not just Value: a function's address is always
// a compile-time constant in LLVM IR, the same way a global's is, which
// is what lets a vtable slot's array constant reference one directly.
func (fn) IsLLIRValue()    {}
func (fn) IsLLIRConstant() {}
func (f *fn) Type() llir.Type { return wrapT(f.f.Type()) }
func (f *fn) Param(i int) llir.Param { return &param{f.f.Params[i]} }
func (f *fn) NewBlock(name string) llir.Block {
	return &block{f.f.NewBlock(name)}
}
func (f *fn) SetDSOLocal(local bool)     { f.f.DSOLocal = local }
func (f *fn) SetLinkageInternal()        { f.f.Linkage = enum.LinkageInternal }

type block struct{ b *ir.Block }

func (block) IsLLIRValue() {}

func (b *block) Alloca(t llir.Type) llir.Value {
	return wrapV(b.b.NewAlloca(unT(t)))
}
func (b *block) Load(t llir.Type, ptr llir.Value) llir.Value {
	return wrapV(b.b.NewLoad(unT(t), unV(ptr)))
}
func (b *block) Store(val, ptr llir.Value) {
	b.b.NewStore(unV(val), unV(ptr))
}
func (b *block) GEP(elemType llir.Type, base llir.Value, indices ...llir.Value) llir.Value {
	vs := make([]value.Value, len(indices))
	for i, idx := range indices {
		vs[i] = unV(idx)
	}
	return wrapV(b.b.NewGetElementPtr(unT(elemType), unV(base), vs...))
}
func (b *block) StructGEP(elemType llir.Type, base llir.Value, field int) llir.Value {
	zero := constant.NewInt(irtypes.I32, 0)
	idx := constant.NewInt(irtypes.I32, int64(field))
	return wrapV(b.b.NewGetElementPtr(unT(elemType), unV(base), zero, idx))
}
func (b *block) BitCast(v llir.Value, t llir.Type) llir.Value {
	return wrapV(b.b.NewBitCast(unV(v), unT(t)))
}
func (b *block) PtrToInt(v llir.Value, t llir.Type) llir.Value {
	return wrapV(b.b.NewPtrToInt(unV(v), unT(t)))
}
func (b *block) IntToPtr(v llir.Value, t llir.Type) llir.Value {
	return wrapV(b.b.NewIntToPtr(unV(v), unT(t)))
}

var intPreds = [...]enum.IPred{
	llir.IntEQ:  enum.IPredEQ,
	llir.IntNE:  enum.IPredNE,
	llir.IntSLT: enum.IPredSLT,
	llir.IntSLE: enum.IPredSLE,
	llir.IntSGT: enum.IPredSGT,
	llir.IntSGE: enum.IPredSGE,
	llir.IntULT: enum.IPredULT,
	llir.IntULE: enum.IPredULE,
	llir.IntUGT: enum.IPredUGT,
	llir.IntUGE: enum.IPredUGE,
}

func (b *block) ICmp(pred llir.IntPred, a, bb llir.Value) llir.Value {
	return wrapV(b.b.NewICmp(intPreds[pred], unV(a), unV(bb)))
}
func (b *block) SExt(v llir.Value, t llir.Type) llir.Value {
	return wrapV(b.b.NewSExt(unV(v), unT(t)))
}
func (b *block) ZExt(v llir.Value, t llir.Type) llir.Value {
	return wrapV(b.b.NewZExt(unV(v), unT(t)))
}
func (b *block) Trunc(v llir.Value, t llir.Type) llir.Value {
	return wrapV(b.b.NewTrunc(unV(v), unT(t)))
}
func (b *block) SIToFP(v llir.Value, t llir.Type) llir.Value {
	return wrapV(b.b.NewSIToFP(unV(v), unT(t)))
}
func (b *block) UIToFP(v llir.Value, t llir.Type) llir.Value {
	return wrapV(b.b.NewUIToFP(unV(v), unT(t)))
}
func (b *block) FPToSI(v llir.Value, t llir.Type) llir.Value {
	return wrapV(b.b.NewFPToSI(unV(v), unT(t)))
}
func (b *block) FPToUI(v llir.Value, t llir.Type) llir.Value {
	return wrapV(b.b.NewFPToUI(unV(v), unT(t)))
}
func (b *block) FPExt(v llir.Value, t llir.Type) llir.Value {
	return wrapV(b.b.NewFPExt(unV(v), unT(t)))
}
func (b *block) FPTrunc(v llir.Value, t llir.Type) llir.Value {
	return wrapV(b.b.NewFPTrunc(unV(v), unT(t)))
}
func (b *block) Call(callee llir.Value, fnType llir.Type, args ...llir.Value) llir.Value {
	vs := make([]value.Value, len(args))
	for i, a := range args {
		vs[i] = unV(a)
	}
	return wrapV(b.b.NewCall(unV(callee), vs...))
}
func (b *block) BinOp(op llir.ArithOp, a, bb llir.Value) llir.Value {
	x, y := unV(a), unV(bb)
	switch op {
	case llir.OpAdd:
		return wrapV(b.b.NewAdd(x, y))
	case llir.OpSub:
		return wrapV(b.b.NewSub(x, y))
	case llir.OpMul:
		return wrapV(b.b.NewMul(x, y))
	case llir.OpSDiv:
		return wrapV(b.b.NewSDiv(x, y))
	case llir.OpUDiv:
		return wrapV(b.b.NewUDiv(x, y))
	case llir.OpSRem:
		return wrapV(b.b.NewSRem(x, y))
	case llir.OpURem:
		return wrapV(b.b.NewURem(x, y))
	case llir.OpFAdd:
		return wrapV(b.b.NewFAdd(x, y))
	case llir.OpFSub:
		return wrapV(b.b.NewFSub(x, y))
	case llir.OpFMul:
		return wrapV(b.b.NewFMul(x, y))
	case llir.OpFDiv:
		return wrapV(b.b.NewFDiv(x, y))
	case llir.OpFRem:
		return wrapV(b.b.NewFRem(x, y))
	case llir.OpAnd:
		return wrapV(b.b.NewAnd(x, y))
	case llir.OpOr:
		return wrapV(b.b.NewOr(x, y))
	case llir.OpXor:
		return wrapV(b.b.NewXor(x, y))
	case llir.OpShl:
		return wrapV(b.b.NewShl(x, y))
	case llir.OpAShr:
		return wrapV(b.b.NewAShr(x, y))
	case llir.OpLShr:
		return wrapV(b.b.NewLShr(x, y))
	default:
		return wrapV(b.b.NewAdd(x, y))
	}
}

func (b *block) Phi(t llir.Type, incoming ...llir.PhiEdge) llir.Value {
	incs := make([]*ir.Incoming, len(incoming))
	for i, e := range incoming {
		incs[i] = ir.NewIncoming(unV(e.Value), e.Pred.(*block).b)
	}
	return wrapV(b.b.NewPhi(incs...))
}
func (b *block) Br(target llir.Block) {
	b.b.NewBr(target.(*block).b)
}
func (b *block) CondBr(cond llir.Value, then, els llir.Block) {
	b.b.NewCondBr(unV(cond), then.(*block).b, els.(*block).b)
}
func (b *block) Ret(v llir.Value) {
	if v == nil {
		b.b.NewRet(nil)
		return
	}
	b.b.NewRet(unV(v))
}
func (b *block) RetVoid() { b.b.NewRet(nil) }

var (
	_ llir.Module = (*Module)(nil)
	_ llir.Global = (*global)(nil)
	_ llir.Param  = (*param)(nil)
	_ llir.Func   = (*fn)(nil)
	_ llir.Block  = (*block)(nil)
)
