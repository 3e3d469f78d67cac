// Package codegen implements declaration and expression emission to the
// LLIR backend (C5/C6, §6): lowering a resolved *ast.FuncDecl body to
// basic blocks and instructions, emitting struct/class/interface layouts
// and their `__CATA_INIT`-style initializer routines, and performing the
// coercions, overload dispatch and upcast/downcast machinery the
// resolved type information from lang/sema and lang/symtab makes
// possible.
package codegen

import (
	"fmt"

	"github.com/emberlang/ember/lang/inherit"
	"github.com/emberlang/ember/lang/llir"
	"github.com/emberlang/ember/lang/pass"
	"github.com/emberlang/ember/lang/types"
)

// InitFuncPrefix is the naming convention for a type's LLIR
// initializer/constructor routine, carried over from original_source
// (§SUPPLEMENTED FEATURES: decl_proto_pass.cpp emits one `__CATA_INIT`
// function per class/struct that stores each data member's field
// initializer, or its type's zero value when it has none).
const InitFuncPrefix = "__CATA_INIT"

// Generator lowers a whole translation unit once every semantic pass has
// converged. It owns the mapping from llir.Type primitive kind to its
// concrete backend type, memoised so every use of e.g. "i32" shares one
// llir.Type instance.
type Generator struct {
	ctx     *pass.Context
	mod     llir.Module
	ptrBits int

	primTypes map[string]llir.Type
	fnPtrType llir.Type

	// initFuncs carries a struct/class's declared __CATA_INIT llir.Func
	// from declareInitFunc to defineInitFunc, which run in separate tree
	// walks (see EmitTranslationUnit).
	initFuncs map[types.Custom]llir.Func
}

// NewGenerator returns a Generator ready to lower unit's declarations
// against the already-resolved symbol table in ctx.
func NewGenerator(ctx *pass.Context) *Generator {
	g := &Generator{ctx: ctx, mod: ctx.Builder.Module(), ptrBits: 64, primTypes: map[string]llir.Type{}, initFuncs: map[types.Custom]llir.Func{}}
	g.fnPtrType = g.mod.Pointer(g.mod.Int(8))
	return g
}

// LLIRType lowers a resolved types.Type to its backend representation.
func (g *Generator) LLIRType(t types.Type) llir.Type {
	switch tt := t.(type) {
	case *types.Primitive:
		return g.primitive(tt)
	case *types.ObjectHandle:
		return g.mod.Pointer(g.virtualLayout(tt.Referent))
	case *types.Struct:
		return g.structLayout(tt)
	case *types.Virtual:
		return g.virtualLayout(tt)
	default:
		return g.mod.Void()
	}
}

func (g *Generator) primitive(p *types.Primitive) llir.Type {
	if t, ok := g.primTypes[p.Name]; ok {
		return t
	}
	var t llir.Type
	switch {
	case p.Bool:
		t = g.mod.Int(1)
	case p.Float && p.Bits <= 32:
		t = g.mod.Float32()
	case p.Float:
		t = g.mod.Float64()
	default:
		t = g.mod.Int(p.Bits)
	}
	g.primTypes[p.Name] = t
	return t
}

// structLayout returns (building and caching once) the LLIR struct type
// for a value struct: its own non-function members, in order (§3, §6.5's
// "struct's LLIR layout is its own non-function fields").
func (g *Generator) structLayout(s *types.Struct) llir.Type {
	if s.LLIRType != nil {
		return s.LLIRType.(llir.Type)
	}
	var fields []llir.Type
	for _, m := range s.Members() {
		if _, isFn := m.Type.(*types.Function); isFn {
			continue
		}
		fields = append(fields, g.LLIRType(m.Type))
	}
	t := g.mod.NamedStruct(fmt.Sprintf("%s.%s", s.Namespace, s.Name), fields...)
	s.LLIRType = t
	return t
}

// virtualLayout returns (building and caching once) the LLIR struct type
// for a class or interface instance: a vtable pointer slot, then one
// embedded subobject per super in declaration order, then its own
// non-function, non-static data members. Interfaces
// have no data members of their own and are never instantiated directly,
// but still get a layout so an ObjectHandle to one has a concrete
// pointee type to bitcast through.
func (g *Generator) virtualLayout(v *types.Virtual) llir.Type {
	if v.LLIRType != nil {
		return v.LLIRType.(llir.Type)
	}
	fields := []llir.Type{g.mod.Pointer(g.vtableArrayType(v))}
	for _, s := range v.Supers {
		fields = append(fields, g.virtualLayout(s))
	}
	for _, m := range v.Members() {
		if _, isFn := m.Type.(*types.Function); isFn {
			continue
		}
		if m.IsStatic() {
			continue
		}
		fields = append(fields, g.LLIRType(m.Type))
	}
	t := g.mod.NamedStruct(fmt.Sprintf("%s.%s", v.Namespace, v.Name), fields...)
	v.LLIRType = t
	return t
}

func (g *Generator) vtableArrayType(v *types.Virtual) llir.Type {
	return inherit.BuildMetadataType(g.ctx.Builder, v, g.fnPtrType)
}

// vtableElemArrayType returns the bare array-of-function-pointers type
// wrapped inside v's metadata struct (vtableArrayType), for indexing a
// single slot: BuildMetadataType wraps this array in a one-field named
// struct so the metadata object has a stable, addressable global type,
// but GEPing into a specific slot needs the array type itself as the
// index base.
func (g *Generator) vtableElemArrayType(v *types.Virtual) llir.Type {
	return g.mod.ArrayOf(int64(len(v.GetVirtualMembers())), g.fnPtrType)
}

// customPtrType returns the pointer-to-layout type for c, the type every
// method on c expects its `this` argument typed as.
func (g *Generator) customPtrType(c types.Custom) llir.Type {
	switch t := c.(type) {
	case *types.Struct:
		return g.mod.Pointer(g.structLayout(t))
	case *types.Virtual:
		return g.mod.Pointer(g.virtualLayout(t))
	default:
		return g.mod.Pointer(g.mod.Void())
	}
}

// ResolveCustom satisfies types.Resolver for call sites (e.g. codegen
// itself resolving a Function.MethodOf) that only have a Generator at
// hand, forwarding to the session's symbol table.
func (g *Generator) ResolveCustom(fqn string) (types.Custom, bool) {
	return g.ctx.Table.ResolveCustom(fqn)
}

var _ types.Resolver = (*Generator)(nil)
