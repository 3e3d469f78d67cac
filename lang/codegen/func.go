package codegen

import (
	"github.com/emberlang/ember/lang/llir"
	"github.com/emberlang/ember/lang/symtab"
	"github.com/emberlang/ember/lang/types"
)

// localSlot is a stack-allocated local's storage address and static type.
type localSlot struct {
	ptr llir.Value
	t   types.Type
}

// funcCtx carries the per-function state threaded through expression and
// statement emission (§4.6): the entry block allocator, the current
// insertion block, the `this` pointer (if the function is a method), and
// the local-variable environment. One funcCtx is built per function body
// by defineFunc/defineInitFunc and never escapes this package (§9's "global
// mutable compilation state should be explicit" — here, explicit means
// threaded as a receiver rather than held in a package-level var).
type funcCtx struct {
	gen *Generator
	fn  llir.Func

	owner       types.Custom
	this        llir.Value
	thisPtrType llir.Type

	// resultType is the function's backend-lowered return type, set by
	// defineFunc (defineFunc's implicit-return fallback uses zeroValue of
	// the declared result type instead).
	resultType llir.Type

	// resultStatic is the function's declared result type (types.Void for
	// a routine with no return value); used to coerce a return
	// expression's value the same way an assignment or call argument
	// would be coerced.
	resultStatic types.Type

	// scope is the lexical scope this function body was declared under,
	// rebuilt from the function symbol's FQN via symtab.ScopeChain (see
	// its doc comment): lang/sema's own scope stack no longer exists by
	// the time lang/codegen walks the tree a second time.
	scope *symtab.Scope

	// entry is the function's first block; every local variable's alloca
	// is placed there regardless of which nested block declares it
	// (§4.6 "stack-allocate in the function entry block"), so a mem2prog
	// backend pass never has to look past a single block to promote it.
	entry llir.Block

	block      llir.Block
	terminated bool

	locals map[string]*localSlot

	blockCounter int

	// expectHint is the "expecting type" propagated into an overload
	// resolution or numeric-literal-typing decision when the destination
	// a value is about to be stored into is already known (an assignment
	// LHS, a return statement's declared result, a var decl's declared
	// type): §4.6.1's overload resolution step 4 and §4.2's literal
	// "adopts the expecting type" rule both consult it. Left nil when no
	// destination is known yet (e.g. a bare expression statement), in
	// which case resolution falls back to arity/assignability alone.
	expectHint types.Type
}

// withExpect runs body with expectHint set to t for its duration,
// restoring the previous hint afterwards so a nested call's own
// expecting type doesn't leak back out to its enclosing expression.
func (fc *funcCtx) withExpect(t types.Type, body func()) {
	prev := fc.expectHint
	fc.expectHint = t
	body()
	fc.expectHint = prev
}

func (fc *funcCtx) newBlock(name string) llir.Block {
	fc.blockCounter++
	return fc.fn.NewBlock(name)
}

func (fc *funcCtx) setBlock(b llir.Block) {
	fc.block = b
	fc.terminated = false
}
