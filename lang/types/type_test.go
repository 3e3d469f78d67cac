package types

import (
	"testing"

	"github.com/kylelemons/godebug/pretty"
	"github.com/stretchr/testify/require"
)

func TestEqual(t *testing.T) {
	i64 := LookupPrimitive("i64")
	i64Again := LookupPrimitive("i64")
	f64 := LookupPrimitive("f64")

	require.True(t, Equal(i64, i64Again))
	require.False(t, Equal(i64, f64))
	require.True(t, Equal(Void, Void))
	require.False(t, Equal(Undefined, Void))
	require.False(t, Equal(nil, Void))
	require.True(t, Equal(nil, nil))
}

func TestIsAssignableFromPrimitives(t *testing.T) {
	i8 := LookupPrimitive("i8")
	u64 := LookupPrimitive("u64")
	require.True(t, IsAssignableFrom(i8, u64))
	require.True(t, IsAssignableFrom(u64, i8))
	require.False(t, IsAssignableFrom(i8, Undefined))
}

func TestIsAssignableFromObjectHandles(t *testing.T) {
	base := NewClass("", "Base", nil)
	mid := NewClass("", "Mid", nil)
	mid.SetSupers([]*Virtual{base})
	leaf := NewClass("", "Leaf", nil)
	leaf.SetSupers([]*Virtual{mid})

	baseHandle := NewObjectHandle(base)
	leafHandle := NewObjectHandle(leaf)
	unrelated := NewObjectHandle(NewClass("", "Other", nil))

	require.True(t, IsAssignableFrom(baseHandle, leafHandle))
	require.False(t, IsAssignableFrom(leafHandle, baseHandle))
	require.False(t, IsAssignableFrom(baseHandle, unrelated))
	require.True(t, IsAssignableFrom(baseHandle, baseHandle))
}

func TestMostSpecialized(t *testing.T) {
	i32 := LookupPrimitive("i32")
	i64 := LookupPrimitive("i64")
	f32 := LookupPrimitive("f32")

	require.Same(t, i64, MostSpecialized(i32, i64))
	require.Same(t, i64, MostSpecialized(i64, i32))
	require.Same(t, f32, MostSpecialized(i64, f32))
	// ties favor the left-hand operand
	require.Same(t, i32, MostSpecialized(i32, LookupPrimitive("i32")))
}

func TestCoercionFor(t *testing.T) {
	i32 := LookupPrimitive("i32")
	i64 := LookupPrimitive("i64")
	u32 := LookupPrimitive("u32")
	f32 := LookupPrimitive("f32")
	f64 := LookupPrimitive("f64")

	require.Equal(t, SignExtend, CoercionFor(i64, i32))
	require.Equal(t, Truncate, CoercionFor(i32, i64))
	require.Equal(t, ZeroExtend, CoercionFor(i64, u32))
	require.Equal(t, IntToFloat, CoercionFor(f32, i32))
	require.Equal(t, FloatToInt, CoercionFor(i32, f32))
	require.Equal(t, FloatExtend, CoercionFor(f64, f32))
	require.Equal(t, FloatTruncate, CoercionFor(f32, f64))
	require.Equal(t, NoCoercion, CoercionFor(i32, i32))
}

func TestLookupPrimitiveUnknown(t *testing.T) {
	require.Nil(t, LookupPrimitive("not-a-real-type"))
}

// TestFunctionStructuralEquality compares two independently-built
// *Function values field by field. pretty.Compare gives a readable diff
// of the two trees on failure, which plain require.Equal's %+v dump
// doesn't for a nested Params/Result shape like this one.
func TestFunctionStructuralEquality(t *testing.T) {
	want := NewFunction([]Type{LookupPrimitive("i64"), LookupPrimitive("bool")}, LookupPrimitive("f64"))
	got := NewFunction([]Type{LookupPrimitive("i64"), LookupPrimitive("bool")}, LookupPrimitive("f64"))

	if diff := pretty.Compare(want, got); diff != "" {
		t.Fatalf("unexpected diff (-want +got):\n%s", diff)
	}

	other := NewFunction([]Type{LookupPrimitive("i64")}, LookupPrimitive("f64"))
	require.NotEmpty(t, pretty.Compare(want, other))
}
