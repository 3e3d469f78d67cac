package codegen

import (
	"github.com/emberlang/ember/lang/inherit"
	"github.com/emberlang/ember/lang/llir"
	"github.com/emberlang/ember/lang/types"
)

// initSupers runs every immediate super's own __CATA_INIT routine
// against that super's embedded subobject before owner's own field
// initializers run, so a field declared on a super is initialized
// exactly once, by its own declaring class's initializer
// (§SUPPLEMENTED FEATURES, grounded on original_source's
// decl_class.cpp call_inits). A super with no declared __CATA_INIT (an
// interface, which carries no data) is skipped.
func (g *Generator) initSupers(fc *funcCtx, owner *types.Virtual) {
	for i, s := range owner.Supers {
		initFn, ok := g.initFuncs[s]
		if !ok {
			continue
		}
		subPtr := fc.block.StructGEP(g.virtualLayout(owner), fc.this, 1+i)
		fnType := g.mod.Func(g.mod.Void(), g.mod.Pointer(g.virtualLayout(s)))
		fc.block.Call(initFn, fnType, subPtr)
	}
}

// storeVTables writes owner's own vtable-pointer slot, then recurses
// into every embedded super subobject and does the same for each:
// instPtr always points to an instance of subject's own layout (owner
// itself on the first call, then each nested ancestor subobject in
// turn), and every slot ends up holding the metadata object built for
// owner presenting as subject — including subject's own interior
// ancestors, since a super's own __CATA_INIT call (initSupers, above)
// already stamped those slots with weaker "presenting as itself"
// metadata that this pass must overwrite with owner's actual,
// most-derived one.
func (g *Generator) storeVTables(fc *funcCtx, owner, subject *types.Virtual, instPtr llir.Value) {
	slotAddr := fc.block.StructGEP(g.virtualLayout(subject), instPtr, 0)
	fc.block.Store(g.metadataFor(owner, subject), slotAddr)
	for i, s := range subject.Supers {
		subPtr := fc.block.StructGEP(g.virtualLayout(subject), instPtr, 1+i)
		g.storeVTables(fc, owner, s, subPtr)
	}
}

// metadataFor builds (or returns the cached) global for owner's vtable
// as seen through a presentedAs-typed pointer: one function pointer per
// presentedAs.GetVirtualMembers() slot, resolved to owner's own
// most-derived override of that member's name.
func (g *Generator) metadataFor(owner, presentedAs *types.Virtual) llir.Global {
	metaType := g.vtableArrayType(presentedAs)
	slots := inherit.VTableFuncs(presentedAs, func(loc types.MemberLocator) llir.Value {
		return g.resolveVTableSlot(owner, presentedAs, loc)
	})
	constSlots := make([]llir.Constant, len(slots))
	for i, s := range slots {
		c, ok := s.(llir.Constant)
		if !ok {
			constSlots[i] = g.mod.NullConst(g.fnPtrType)
			continue
		}
		constSlots[i] = g.mod.BitCastConst(c, g.fnPtrType)
	}
	return inherit.BuildMetadataObject(g.ctx.Builder, owner, presentedAs, metaType, g.fnPtrType, constSlots)
}

// resolveVTableSlot finds owner's actual override of loc.Member's name
// (owner's own flattening always knows of it, since presentedAs is one
// of owner's ancestors) and returns either its llir.Func directly, when
// it is declared on presentedAs itself, or a this-adjusting thunk
// (inherit.BuildThunk) when it is declared on a different ancestor, so
// a call made through presentedAs's vtable slot still receives a `this`
// typed the way that implementation expects.
func (g *Generator) resolveVTableSlot(owner, presentedAs *types.Virtual, loc types.MemberLocator) llir.Value {
	real := loc
	for _, l := range owner.GetVirtualMembers() {
		if l.Member.Name == loc.Member.Name {
			real = l
			break
		}
	}
	implFn, implOwner, ok := memberFuncValue(real.Member)
	if !ok {
		return nil
	}
	implVirtual, ok := implOwner.(*types.Virtual)
	if !ok || types.Equal(implVirtual, presentedAs) {
		return implFn
	}
	ft, ok := real.Member.Type.(*types.Function)
	if !ok {
		return implFn
	}
	thisPtrType := g.mod.Pointer(g.virtualLayout(presentedAs))
	targetPtrType := g.mod.Pointer(g.virtualLayout(implVirtual))
	return inherit.BuildThunk(g.ctx.Builder, implVirtual, presentedAs, loc.Member.Name, implFn, thisPtrType, targetPtrType, paramLLIRTypes(g, ft), g.LLIRType(ft.Result))
}
