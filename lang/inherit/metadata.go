// Package inherit implements the virtual dispatch machinery described in
// C7 and §6.5: building a metadata object (a struct wrapping the vtable)
// for each (class, presenting-as ancestor) pair a program actually uses,
// and building this-pointer-adjusting thunks so a multiply-inherited
// subobject can call a virtual method through whichever ancestor's
// vtable slot was used to reach it. The flattening of a type's virtual
// member list itself (inherited-first, own-override-in-place) lives on
// types.Virtual.GetVirtualMembers, since it is pure type-level
// computation with no backend dependency; this package only covers the
// parts that need an llir.Builder.
package inherit

import (
	"fmt"

	"github.com/emberlang/ember/lang/llir"
	"github.com/emberlang/ember/lang/types"
)

// VTableFuncs resolves the concrete llir.Func for each virtual member
// slot of v, in GetVirtualMembers order. lookupFunc returns the function
// that fills a given slot; the caller decides which override that is
// and whether it is wrapped in a thunk (built by BuildThunk). codegen
// passes the presenting-as ancestor as v and resolves each slot to the
// instance type's most-derived override.
func VTableFuncs(v *types.Virtual, lookupFunc func(loc types.MemberLocator) llir.Value) []llir.Value {
	members := v.GetVirtualMembers()
	slots := make([]llir.Value, len(members))
	for i, loc := range members {
		slots[i] = lookupFunc(loc)
	}
	return slots
}

// BuildMetadataType returns (building once and caching) the LLIR struct
// type for v's own metadata object: a vtable array of function pointers,
// one per GetVirtualMembers slot. Every metadata object built for some
// type presenting as v uses this shape, since a vtable seen through v is
// exactly as long as v's own flattened virtual member list (§6.5).
func BuildMetadataType(b llir.Builder, v *types.Virtual, fnPtrType llir.Type) llir.Type {
	if v.MetaLLIRType != nil {
		return v.MetaLLIRType.(llir.Type)
	}
	n := len(v.GetVirtualMembers())
	arr := b.Module().ArrayOf(int64(n), fnPtrType)
	st := b.Module().NamedStruct(metaTypeName(v), arr)
	v.MetaLLIRType = st
	return st
}

func metaTypeName(v *types.Virtual) string {
	return fmt.Sprintf("%s.%s.meta", v.Namespace, v.Name)
}

// BuildMetadataObject builds (or returns the cached) global backing v's
// metadata object when instances of v present themselves as
// presentedAs. slots must already have every override/thunk resolved by
// the caller via VTableFuncs, and metaType and fnPtrType must be the
// type BuildMetadataType built, and the element type it was given, for
// presentedAs.
func BuildMetadataObject(b llir.Builder, v, presentedAs *types.Virtual, metaType, fnPtrType llir.Type, slots []llir.Constant) llir.Global {
	if g, ok := v.MetadataObjects[presentedAs]; ok {
		return g.(llir.Global)
	}
	arr := b.Module().ArrayConst(fnPtrType, slots...)
	init := b.Module().StructConst(metaType, arr)
	name := fmt.Sprintf("%s.%s.vtable_as.%s.%s", v.Namespace, v.Name, presentedAs.Namespace, presentedAs.Name)
	g := b.Module().NewGlobal(name, metaType)
	g.SetInitializer(init)
	g.SetDSOLocal(true)
	g.SetConstant(true)
	v.MetadataObjects[presentedAs] = g
	return g
}
