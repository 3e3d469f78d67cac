package symtab

import (
	"github.com/dolthub/swiss"
	"golang.org/x/exp/slices"

	"github.com/emberlang/ember/lang/types"
)

// Table is the single flat FQN -> Symbol map for an entire compilation,
// plus the scope stack used to turn short names into FQNs while walking
// the tree (C1). There is exactly one Table per session.
type Table struct {
	syms  *swiss.Map[string, *Symbol]
	stack stack

	// overloads buckets every symbol whose FQN carries a backtick suffix
	// under its unsuffixed base FQN, so FindOverloaded doesn't need to
	// scan the whole map.
	overloads map[string][]*Symbol
}

// New returns an empty table sized for roughly size initial symbols.
func New(size int) *Table {
	if size < 16 {
		size = 16
	}
	return &Table{
		syms:      swiss.NewMap[string, *Symbol](uint32(size)),
		overloads: map[string][]*Symbol{},
	}
}

// EnterScope pushes a new named scope (a namespace, type body, or
// function body) onto the stack.
func (t *Table) EnterScope(name string) { t.stack.push(name) }

// ExitScope pops the innermost scope.
func (t *Table) ExitScope() { t.stack.pop() }

// CurrentScope returns the innermost scope on the stack, or nil at the
// top level.
func (t *Table) CurrentScope() *Scope { return t.stack.current() }

// Qualify resolves name against the current scope, producing the FQN it
// would be defined or looked up under if declared right now.
func (t *Table) Qualify(name string) string { return t.stack.current().Qualify(name) }

// Define inserts sym under its own FQN (sym.FQN must already be set,
// typically via Qualify). Re-defining the same FQN silently replaces the
// previous symbol, which is how the fixed-point prototype pass (§4.4.2)
// re-resolves a declaration across iterations without accumulating
// duplicates.
func (t *Table) Define(sym *Symbol) {
	t.syms.Put(sym.FQN, sym)
	if base, ok := splitOverload(sym.FQN); ok {
		bucket := t.overloads[base]
		for _, existing := range bucket {
			if existing.FQN == sym.FQN {
				return
			}
		}
		t.overloads[base] = append(bucket, sym)
	}
}

// FindNamed looks up a (possibly dotted) name, starting at scope and
// walking outward through its enclosing scopes until a definition is
// found, matching ordinary lexical shadowing. A name containing a '.'
// is treated as already partially or fully qualified and is tried
// verbatim at each enclosing level before the walk gives up, with the
// limitation that a qualified path is only ever resolved relative to an
// enclosing scope, never by splitting and re-resolving each dotted
// segment independently (see DESIGN.md's Open Question decisions).
func (t *Table) FindNamed(scope *Scope, name string) (*Symbol, bool) {
	for s := scope; ; {
		fqn := s.Qualify(name)
		if sym, ok := t.syms.Get(fqn); ok {
			return sym, true
		}
		if s == nil {
			break
		}
		s = s.Parent
	}
	if sym, ok := t.syms.Get(name); ok {
		return sym, true
	}
	return nil, false
}

// FindOverloaded returns every overload of name visible from scope,
// aggregating across every enclosing scope (cross_scope aggregation)
// rather than stopping at the first scope that defines any overload at
// all, since two enclosing namespaces may each contribute applicable
// overloads to a single call site. Virtual-overrider expansion (folding
// in overriding definitions reachable through dynamic dispatch from a
// statically-typed receiver) is not performed here; method-call
// candidates are gathered from the receiver type's members by
// lang/codegen's gatherMethodCandidates instead.
func (t *Table) FindOverloaded(scope *Scope, name string) []*Symbol {
	var all []*Symbol
	seen := map[string]bool{}
	for s := scope; ; {
		base := s.Qualify(name)
		for _, sym := range t.overloads[base] {
			if !seen[sym.FQN] {
				seen[sym.FQN] = true
				all = append(all, sym)
			}
		}
		if s == nil {
			break
		}
		s = s.Parent
	}
	for _, sym := range t.overloads[name] {
		if !seen[sym.FQN] {
			seen[sym.FQN] = true
			all = append(all, sym)
		}
	}
	return all
}

// ResolveCustom implements types.Resolver, letting types.ObjectTypeRef
// rehydrate a weak reference through the same table that declared it.
func (t *Table) ResolveCustom(fqn string) (types.Custom, bool) {
	sym, ok := t.syms.Get(fqn)
	if !ok {
		return nil, false
	}
	c, ok := sym.Type.(types.Custom)
	return c, ok
}

// Len returns the number of distinct FQNs currently defined.
func (t *Table) Len() int { return t.syms.Count() }

// SortedFQNs returns every defined FQN in lexical order, for deterministic
// diagnostics and for serialising a whole table's worth of symbols (§5
// "Ordering", §6.3's symbol-record list) without relying on swiss.Map's
// unspecified iteration order.
func (t *Table) SortedFQNs() []string {
	out := make([]string, 0, t.syms.Count())
	t.syms.Iter(func(fqn string, _ *Symbol) bool {
		out = append(out, fqn)
		return false
	})
	slices.Sort(out)
	return out
}

// Lookup returns the symbol defined under the exact FQN fqn, with no scope
// walking (unlike FindNamed).
func (t *Table) Lookup(fqn string) (*Symbol, bool) {
	return t.syms.Get(fqn)
}
