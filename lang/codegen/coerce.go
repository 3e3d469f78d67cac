package codegen

import (
	"github.com/emberlang/ember/lang/ast"
	"github.com/emberlang/ember/lang/llir"
	"github.com/emberlang/ember/lang/types"
)

// coerceTo converts val (of static type from) into a value of static type
// to, per §4.2's coercion matrix. Primitive-to-primitive coercion is
// delegated to types.CoercionFor; an object-handle value that is already
// assignable needs no instruction at all, since every class/interface
// handle shares the same pointer representation up to the bitcast an
// upcast already performed in emitExpr. If to and from are already equal,
// val is returned unchanged.
func (fc *funcCtx) coerceTo(to, from types.Type, val llir.Value) llir.Value {
	if to == nil || from == nil || types.Equal(to, from) {
		return val
	}
	toP, toIsP := to.(*types.Primitive)
	fromP, fromIsP := from.(*types.Primitive)
	if toIsP && fromIsP {
		return fc.coercePrimitive(toP, fromP, val)
	}
	// Object handles: assignability was already checked by the caller
	// (overload resolution or an explicit assignment check); the
	// underlying pointer representation is identical up to the static
	// ancestor-offset bitcast an upcast performs, which emitExpr's
	// CastExpr/AssignExpr handling already applies before coerceTo ever
	// sees the value.
	return val
}

func (fc *funcCtx) coercePrimitive(to, from *types.Primitive, val llir.Value) llir.Value {
	toType := fc.gen.primitive(to)
	switch types.CoercionFor(to, from) {
	case types.NoCoercion:
		return val
	case types.SignExtend:
		return fc.block.SExt(val, toType)
	case types.ZeroExtend:
		return fc.block.ZExt(val, toType)
	case types.Truncate:
		return fc.block.Trunc(val, toType)
	case types.IntToFloat:
		if from.Signed {
			return fc.block.SIToFP(val, toType)
		}
		return fc.block.UIToFP(val, toType)
	case types.FloatToInt:
		if to.Signed {
			return fc.block.FPToSI(val, toType)
		}
		return fc.block.FPToUI(val, toType)
	case types.FloatExtend:
		return fc.block.FPExt(val, toType)
	case types.FloatTruncate:
		return fc.block.FPTrunc(val, toType)
	default:
		return val
	}
}

// toBool lowers val (of static type t) to an i1 used for a branch
// condition, via "not equal to zero" (§4.6: the grammar has no
// comparison operators, so every bool-typed expression is already i1 and
// every other primitive is tested against its own zero constant).
func (fc *funcCtx) toBool(val llir.Value, t types.Type) llir.Value {
	p, ok := t.(*types.Primitive)
	if !ok {
		return val
	}
	if p.Bool {
		return val
	}
	zero := fc.gen.zeroConst(p)
	return fc.block.ICmp(llir.IntNE, val, zero)
}

// zeroValue returns the zero value for t as a runtime Value, for the
// implicit-return fallback at the end of a non-void function body whose
// control flow the validate pass should already have flagged, but which
// codegen must still lower to well-formed LLIR.
func (g *Generator) zeroValue(block llir.Block, t types.Type) llir.Value {
	return g.zeroConst(t)
}

// zeroConst returns the zero-valued Constant for t: a zero scalar for a
// primitive, or a null pointer for an object handle.
func (g *Generator) zeroConst(t types.Type) llir.Constant {
	switch tt := t.(type) {
	case *types.Primitive:
		llt := g.primitive(tt)
		if tt.Float {
			return g.mod.FloatConst(llt, 0)
		}
		return g.mod.IntConst(llt, 0)
	case *types.ObjectHandle:
		return g.mod.NullConst(g.LLIRType(tt))
	case *types.Struct:
		return g.mod.UndefConst(g.LLIRType(tt))
	case *types.Virtual:
		return g.mod.UndefConst(g.LLIRType(tt))
	default:
		return g.mod.UndefConst(g.mod.Void())
	}
}

// constExpr attempts to fold init to a compile-time Constant of static
// type t, for a global variable's initializer (§3: this language has no
// non-constant global initializers). Only literals fold; anything else
// (a call, a member read) returns ok=false and the caller falls back to
// zeroConst: best-effort constant folding, zero otherwise, for
// module-scope globals.
func (g *Generator) constExpr(init ast.Expr, t types.Type) (llir.Constant, bool) {
	switch n := init.(type) {
	case *ast.NumberLit:
		p, ok := t.(*types.Primitive)
		if !ok {
			return nil, false
		}
		return numberLitConst(g, n, p), true
	case *ast.BoolLit:
		llt := g.primitive(types.LookupPrimitive("bool"))
		v := int64(0)
		if n.Value {
			v = 1
		}
		return g.mod.IntConst(llt, v), true
	default:
		return nil, false
	}
}
