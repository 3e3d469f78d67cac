package symtab

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emberlang/ember/lang/types"
)

func TestDefineAndFindNamed(t *testing.T) {
	tab := New(16)
	tab.EnterScope("ns")
	sym := &Symbol{Name: "x", FQN: tab.Qualify("x"), Type: types.LookupPrimitive("i64")}
	tab.Define(sym)

	found, ok := tab.FindNamed(tab.CurrentScope(), "x")
	require.True(t, ok)
	require.Same(t, sym, found)
	require.Equal(t, "ns.x", sym.FQN)

	tab.EnterScope("inner")
	// a name not defined in the inner scope is still found by walking
	// outward through enclosing scopes.
	found, ok = tab.FindNamed(tab.CurrentScope(), "x")
	require.True(t, ok)
	require.Same(t, sym, found)
	tab.ExitScope()
	tab.ExitScope()

	_, ok = tab.FindNamed(nil, "x")
	require.False(t, ok)
}

func TestLookupIsExactNoScopeWalk(t *testing.T) {
	tab := New(16)
	tab.EnterScope("a")
	sym := &Symbol{Name: "y", FQN: tab.Qualify("y"), Type: types.Void}
	tab.Define(sym)
	tab.ExitScope()

	_, ok := tab.Lookup("y")
	require.False(t, ok)
	found, ok := tab.Lookup("a.y")
	require.True(t, ok)
	require.Same(t, sym, found)
}

func TestFindOverloaded(t *testing.T) {
	tab := New(16)
	base := &Symbol{Name: "f`0", FQN: "f`0", Type: types.NewFunction(nil, types.Void)}
	other := &Symbol{Name: "f`1", FQN: "f`1", Type: types.NewFunction([]types.Type{types.LookupPrimitive("i64")}, types.Void)}
	tab.Define(base)
	tab.Define(other)

	overloads := tab.FindOverloaded(nil, "f")
	require.Len(t, overloads, 2)
	require.ElementsMatch(t, []*Symbol{base, other}, overloads)
}

func TestSortedFQNsIsDeterministic(t *testing.T) {
	tab := New(16)
	for _, fqn := range []string{"c", "a", "b"} {
		tab.Define(&Symbol{Name: fqn, FQN: fqn, Type: types.Void})
	}
	require.Equal(t, []string{"a", "b", "c"}, tab.SortedFQNs())
}

func TestScopeChainRebuildsQualify(t *testing.T) {
	s := ScopeChain("a.b.c")
	require.Equal(t, "a.b.c", s.FQN())
	require.Equal(t, "a.b.c.d", s.Qualify("d"))
	require.Nil(t, ScopeChain(""))
}

func TestResolveCustom(t *testing.T) {
	tab := New(16)
	st := types.NewStruct("", "Point", nil)
	tab.Define(&Symbol{Name: "Point", FQN: "Point", Type: st})

	got, ok := tab.ResolveCustom("Point")
	require.True(t, ok)
	require.Same(t, st, got)

	_, ok = tab.ResolveCustom("NotThere")
	require.False(t, ok)

	// a non-Custom type resolves to false, not a panic.
	tab.Define(&Symbol{Name: "x", FQN: "x", Type: types.LookupPrimitive("i64")})
	_, ok = tab.ResolveCustom("x")
	require.False(t, ok)
}
