// Package llir defines the abstract code-emission surface described in
// §6.2: an LLVM-IR builder interface specified only in terms of the
// operations this core needs (type construction, constants, globals,
// functions, basic blocks and instructions), with a concrete adapter
// (package llvmir) backed by the real, pure-Go github.com/llir/llvm
// library. Keeping the interface here lets lang/codegen and lang/inherit
// depend only on a small vocabulary of verbs instead of on llir/llvm's
// much larger surface directly.
package llir

// Type is an opaque backend type handle (an LLVM IR type). The marker
// method is exported so that an adapter package (e.g. llvmir) can
// implement the interface without living inside lang/llir itself.
type Type interface{ IsLLIRType() }

// Value is anything that can appear as an instruction operand: an
// instruction result, a constant, a function, or a global.
type Value interface{ IsLLIRValue() }

// Constant is a compile-time-known Value (an integer/float literal, a
// null pointer, or an aggregate of other constants).
type Constant interface {
	Value
	IsLLIRConstant()
}

// IntPred and FloatPred name the predicate for an icmp/fcmp instruction.
type IntPred int

const (
	IntEQ IntPred = iota
	IntNE
	IntSLT
	IntSLE
	IntSGT
	IntSGE
	IntULT
	IntULE
	IntUGT
	IntUGE
)

// ArithOp names a binary arithmetic, bitwise or shift instruction, kept
// as one grouped verb (mirroring IntPred for icmp) rather than a method
// per opcode so Block's method set doesn't balloon with one entry per
// LLVM binary instruction.
type ArithOp int

const (
	OpAdd ArithOp = iota
	OpSub
	OpMul
	OpSDiv
	OpUDiv
	OpSRem
	OpURem
	OpFAdd
	OpFSub
	OpFMul
	OpFDiv
	OpFRem
	OpAnd
	OpOr
	OpXor
	OpShl
	OpAShr
	OpLShr
)

// TypeBuilder constructs backend types.
type TypeBuilder interface {
	Void() Type
	Int(bits int) Type
	Float32() Type
	Float64() Type
	Pointer(elem Type) Type
	Struct(fields ...Type) Type
	NamedStruct(name string, fields ...Type) Type
	ArrayOf(n int64, elem Type) Type
	Func(result Type, params ...Type) Type
}

// ConstBuilder constructs compile-time constants. Methods are named with
// a "Const" suffix where they would otherwise collide with TypeBuilder's
// same-named type constructors (Module embeds both).
type ConstBuilder interface {
	IntConst(t Type, v int64) Constant
	FloatConst(t Type, v float64) Constant
	NullConst(t Type) Constant
	UndefConst(t Type) Constant
	StructConst(t Type, fields ...Constant) Constant
	ArrayConst(elem Type, elems ...Constant) Constant
	BitCastConst(c Constant, t Type) Constant
	GEPConst(elemType Type, base Constant, indices ...int64) Constant
}

// Global is a module-scope global variable.
type Global interface {
	Value
	SetInitializer(c Constant)
	SetDSOLocal(local bool)
	SetConstant(isConst bool)
}

// Param is a formal function parameter.
type Param interface {
	Value
	SetName(name string)
	SetNoUndef()
	SetByVal(t Type)
}

// Block is a single basic block within a function body.
type Block interface {
	Value
	Alloca(t Type) Value
	Load(t Type, ptr Value) Value
	Store(val, ptr Value)
	GEP(elemType Type, base Value, indices ...Value) Value
	StructGEP(elemType Type, base Value, field int) Value
	BitCast(v Value, t Type) Value
	PtrToInt(v Value, t Type) Value
	IntToPtr(v Value, t Type) Value
	ICmp(pred IntPred, a, b Value) Value
	BinOp(op ArithOp, a, b Value) Value
	SExt(v Value, t Type) Value
	ZExt(v Value, t Type) Value
	Trunc(v Value, t Type) Value
	SIToFP(v Value, t Type) Value
	UIToFP(v Value, t Type) Value
	FPToSI(v Value, t Type) Value
	FPToUI(v Value, t Type) Value
	FPExt(v Value, t Type) Value
	FPTrunc(v Value, t Type) Value
	Call(fn Value, fnType Type, args ...Value) Value
	Phi(t Type, incoming ...PhiEdge) Value
	Br(target Block)
	CondBr(cond Value, then, els Block)
	Ret(v Value)
	RetVoid()
}

// PhiEdge is one (value, predecessor) pair for a Phi instruction.
type PhiEdge struct {
	Value Value
	Pred  Block
}

// Func is a module-scope function: a declaration if it has no blocks,
// a definition once NewBlock has been called at least once. A function's
// address is itself a compile-time constant (the value a vtable slot or
// any other function-pointer-typed constant aggregate stores), so Func
// embeds Constant rather than just Value.
type Func interface {
	Constant
	Type() Type
	Param(i int) Param
	NewBlock(name string) Block
	SetDSOLocal(local bool)
	SetLinkageInternal()
}

// Module is the single top-level compilation unit a Builder emits into,
// matching the "one LLVM module per translation unit" framing of §6.2.
type Module interface {
	TypeBuilder
	ConstBuilder
	NewGlobal(name string, t Type) Global
	NewFunc(name string, result Type, params ...Type) Func
	String() string
}

// Builder is the facade lang/codegen and lang/inherit emit through. A
// Builder owns exactly one Module.
type Builder interface {
	Module() Module
}

// SourceFilenameSetter is an optional capability a Module may implement
// to record an identifying name for the module (the session id, per
// lang/session). Kept as a separate, narrow interface rather than part
// of Module itself since §6.2 never lists it as part of the abstract
// surface the core depends on — callers type-assert for it opportunistically.
type SourceFilenameSetter interface {
	SetSourceFilename(name string)
}
