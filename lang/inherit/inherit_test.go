package inherit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emberlang/ember/lang/llir"
	"github.com/emberlang/ember/lang/llir/llvmir"
	"github.com/emberlang/ember/lang/token"
	"github.com/emberlang/ember/lang/types"
)

func virtualMember(name string, classifiers ...token.Token) *types.Member {
	return &types.Member{Name: name, Type: types.Void, Classifiers: token.Classifiers(classifiers)}
}

// TestVTableFuncsOrdersByDeclaration builds a two-level class hierarchy
// (base declares "area" and "perimeter" virtual, derived overrides
// "area" only) and checks that VTableFuncs fills each slot in
// GetVirtualMembers' order, with the override replacing its inherited
// slot in place rather than appending a new one.
func TestVTableFuncsOrdersByDeclaration(t *testing.T) {
	base := types.NewClass("shapes", "Base", nil)
	base.AddMember(virtualMember("area", token.VIRTUAL))
	base.AddMember(virtualMember("perimeter", token.VIRTUAL))

	derived := types.NewClass("shapes", "Derived", nil)
	derived.SetSupers([]*types.Virtual{base})
	derived.AddMember(virtualMember("area", token.OVERRIDE))

	members := derived.GetVirtualMembers()
	require.Len(t, members, 2)
	require.Equal(t, "area", members[0].Member.Name)
	require.Equal(t, "perimeter", members[1].Member.Name)
	require.Same(t, derived, members[0].Residence)
	require.Same(t, base, members[1].Residence)

	b := llvmir.NewModule()
	areaFn := b.NewFunc("shapes.Derived.area", b.Void())
	perimeterFn := b.NewFunc("shapes.Base.perimeter", b.Void())

	seen := map[string]llir.Value{
		"area":      areaFn,
		"perimeter": perimeterFn,
	}
	slots := VTableFuncs(derived, func(loc types.MemberLocator) llir.Value {
		return seen[loc.Member.Name]
	})
	require.Len(t, slots, 2)
	require.Equal(t, areaFn, slots[0])
	require.Equal(t, perimeterFn, slots[1])
}

// TestBuildMetadataTypeIsCachedAndSizedToVirtualMembers checks that the
// metadata struct type is built once (same pointer returned on a second
// call) and that its vtable array has exactly as many slots as
// GetVirtualMembers reports, including the zero-virtual-members case
// (§SUPPLEMENTED FEATURES: a class with no virtual members still gets a
// metadata object, with a zero-length vtable array, not a skipped one).
func TestBuildMetadataTypeIsCachedAndSizedToVirtualMembers(t *testing.T) {
	mod := llvmir.NewModule()
	fnPtrType := mod.Pointer(mod.Int(8))

	empty := types.NewClass("shapes", "Empty", nil)
	st1 := BuildMetadataType(mod, empty, fnPtrType)
	st2 := BuildMetadataType(mod, empty, fnPtrType)
	require.Same(t, st1, st2)
	require.Same(t, st1, empty.MetaLLIRType.(llir.Type))

	withOne := types.NewClass("shapes", "WithOne", nil)
	withOne.AddMember(virtualMember("area", token.VIRTUAL))
	BuildMetadataType(mod, withOne, fnPtrType)
	require.Len(t, withOne.GetVirtualMembers(), 1)

	ir := mod.String()
	require.Contains(t, ir, "[0 x ")
	require.Contains(t, ir, "[1 x ")
}

// TestBuildMetadataObjectCachesPerPresentedAs checks that a metadata
// object is memoised per (type, presenting-as ancestor) pair, and that
// two different presenting-as ancestors get distinct globals even for
// the same underlying type.
func TestBuildMetadataObjectCachesPerPresentedAs(t *testing.T) {
	mod := llvmir.NewModule()
	fnPtrType := mod.Pointer(mod.Int(8))

	base := types.NewClass("shapes", "Base", nil)
	base.AddMember(virtualMember("area", token.VIRTUAL))
	derived := types.NewClass("shapes", "Derived", nil)
	derived.SetSupers([]*types.Virtual{base})

	metaType := BuildMetadataType(mod, derived, fnPtrType)
	slot := mod.BitCastConst(mod.NullConst(fnPtrType), fnPtrType)

	asSelf := BuildMetadataObject(mod, derived, derived, metaType, fnPtrType, []llir.Constant{slot})
	asSelfAgain := BuildMetadataObject(mod, derived, derived, metaType, fnPtrType, []llir.Constant{slot})
	require.Equal(t, asSelf, asSelfAgain)

	asBase := BuildMetadataObject(mod, derived, base, metaType, fnPtrType, []llir.Constant{slot})
	require.NotEqual(t, asSelf, asBase)
}

// TestBuildThunkAdjustsThisAndCaches checks that BuildThunk is memoised
// per (member, presenting-as) key on the target, and that the thunk it
// builds forwards to the real implementation (by name, in the emitted
// module text) rather than calling itself.
func TestBuildThunkAdjustsThisAndCaches(t *testing.T) {
	mod := llvmir.NewModule()
	i8ptr := mod.Pointer(mod.Int(8))

	target := types.NewClass("shapes", "Derived", nil)
	presentedAs := types.NewClass("shapes", "Other", nil)

	impl := mod.NewFunc("shapes.Derived.area_impl", mod.Int(64), i8ptr)
	block := impl.NewBlock("entry")
	block.Ret(mod.IntConst(mod.Int(64), 0))

	thunk1 := BuildThunk(mod, target, presentedAs, "area", impl, i8ptr, i8ptr, nil, mod.Int(64))
	thunk2 := BuildThunk(mod, target, presentedAs, "area", impl, i8ptr, i8ptr, nil, mod.Int(64))
	require.Equal(t, thunk1, thunk2)

	ir := mod.String()
	require.Contains(t, ir, "thunk.area.as.Other")
	require.Contains(t, ir, "call i64")
	require.Contains(t, ir, "call i64 @shapes.Derived.area_impl(")
}
