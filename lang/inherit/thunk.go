package inherit

import (
	"fmt"

	"github.com/emberlang/ember/lang/llir"
	"github.com/emberlang/ember/lang/types"
)

// ThunkKey identifies a memoised thunk by the member it dispatches and
// the ancestor subobject the caller is presenting as; see
// types.Virtual.Thunks.
type ThunkKey struct {
	Member      string
	PresentedAs *types.Virtual
}

// BuildThunk returns (building once and caching on target) the
// this-adjusting thunk for calling member through target when the
// caller only has a presentedAs-typed pointer into one of target's
// multiply-inherited subobjects. The thunk:
//
//  1. receives a `this` typed as a pointer to presentedAs's layout,
//  2. bitcasts it back to a pointer to target's layout (the GEP offset
//     back to the start of the owning subobject is folded into the
//     bitcast here because every subobject in this ABI is laid out as a
//     flat struct prefix rather than at a variable runtime offset — see
//     DESIGN.md's Open Question decision on thunk layout),
//  3. forwards every argument unchanged to the real implementation,
//  4. returns its result unchanged.
//
// impl is the llir.Func the target's actual override lowers to;
// thisPtrType and targetPtrType are the pointer types of presentedAs's
// and target's layouts, and paramTypes and resultType give the rest of
// the forwarding call's signature.
func BuildThunk(b llir.Builder, target *types.Virtual, presentedAs *types.Virtual, member string, impl llir.Func, thisPtrType, targetPtrType llir.Type, paramTypes []llir.Type, resultType llir.Type) llir.Func {
	// An unnamed struct literal with this exact field set is assignable
	// to types.Virtual.Thunks' (unexported) key type, since Go treats an
	// unnamed struct type and a named type with an identical underlying
	// type as mutually assignable.
	key := struct {
		Member      string
		PresentedAs *types.Virtual
	}{member, presentedAs}
	if cached, ok := target.Thunks[key]; ok {
		return cached.(llir.Func)
	}

	name := fmt.Sprintf("%s.%s.thunk.%s.as.%s", target.Namespace, target.Name, member, presentedAs.Name)
	params := append([]llir.Type{thisPtrType}, paramTypes...)
	fn := b.Module().NewFunc(name, resultType, params...)
	fn.SetDSOLocal(true)
	fn.SetLinkageInternal()

	entry := fn.NewBlock("entry")
	adjustedThis := entry.BitCast(fn.Param(0), targetPtrType)
	args := make([]llir.Value, 0, len(params))
	args = append(args, adjustedThis)
	for i := range paramTypes {
		args = append(args, fn.Param(i+1))
	}
	implType := b.Module().Func(resultType, append([]llir.Type{targetPtrType}, paramTypes...)...)
	result := entry.Call(impl, implType, args...)
	if isVoidResult(resultType, b) {
		entry.RetVoid()
	} else {
		entry.Ret(result)
	}

	target.Thunks[key] = fn
	return fn
}

func isVoidResult(t llir.Type, b llir.Builder) bool {
	return t == b.Module().Void()
}
