package codegen

import (
	"github.com/emberlang/ember/lang/symtab"
	"github.com/emberlang/ember/lang/types"
)

// candidate pairs a call target's signature with whatever identifies the
// concrete backend value to dispatch to once it's chosen: a symbol for a
// free function, a member locator for a method (its residence tells
// virtual dispatch which ancestor's vtable slot, or thunk, to use).
type candidate struct {
	fn     *types.Function
	sym    *symtab.Symbol
	method *types.MemberLocator
}

// resolveStatus reports the outcome of resolveOverload.
type resolveStatus int

const (
	resolvedOne resolveStatus = iota
	resolvedNone
	resolvedAmbiguous
)

// resolveOverload implements §4.6.1's call-site overload resolution:
//
//  1. keep candidates whose arity matches and whose every argument is
//     assignable to the corresponding parameter;
//  2. narrow to the subset whose parameter types exactly match the
//     argument types, when any such candidate exists (this is the
//     tiebreak between, e.g., an exact i32 overload and an assignable-via-
//     widening i64 overload given an i32 argument);
//  3. when an expecting type is known, narrow to candidates whose result
//     type is assignable to it;
//  4. narrow further to candidates whose result type exactly equals the
//     expecting type, when any such candidate exists. This refines step
//     3, since primitive<-primitive assignability is unconditionally true
//     (§4.2) and so step 3 alone never discriminates between two
//     primitive-returning overloads purely by result type; exact-match
//     does (see DESIGN.md's Open Question decision that expression
//     emission needs a destination-type hint);
//  5. a single survivor resolves the call; zero is "no overload matches",
//     more than one is "ambiguous call".
func resolveOverload(cands []candidate, argTypes []types.Type, expecting types.Type) (*candidate, resolveStatus) {
	pool := filterAssignable(cands, argTypes)
	if len(pool) == 0 {
		return nil, resolvedNone
	}
	if len(pool) > 1 {
		if exact := filterExactParams(pool, argTypes); len(exact) > 0 {
			pool = exact
		}
	}
	if len(pool) > 1 && expecting != nil && expecting.IsValid() {
		if assignable := filterAssignableResult(pool, expecting); len(assignable) > 0 {
			pool = assignable
		}
		if len(pool) > 1 {
			if exact := filterExactResult(pool, expecting); len(exact) > 0 {
				pool = exact
			}
		}
	}
	switch len(pool) {
	case 1:
		c := pool[0]
		return &c, resolvedOne
	case 0:
		return nil, resolvedNone
	default:
		return nil, resolvedAmbiguous
	}
}

func filterAssignable(cands []candidate, argTypes []types.Type) []candidate {
	var out []candidate
	for _, c := range cands {
		if len(c.fn.Params) != len(argTypes) {
			continue
		}
		ok := true
		for i, p := range c.fn.Params {
			if !types.IsAssignableFrom(p, argTypes[i]) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, c)
		}
	}
	return out
}

func filterExactParams(cands []candidate, argTypes []types.Type) []candidate {
	var out []candidate
	for _, c := range cands {
		ok := true
		for i, p := range c.fn.Params {
			if !types.Equal(p, argTypes[i]) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, c)
		}
	}
	return out
}

func filterAssignableResult(cands []candidate, expecting types.Type) []candidate {
	var out []candidate
	for _, c := range cands {
		if types.IsAssignableFrom(expecting, c.fn.Result) {
			out = append(out, c)
		}
	}
	return out
}

func filterExactResult(cands []candidate, expecting types.Type) []candidate {
	var out []candidate
	for _, c := range cands {
		if types.Equal(c.fn.Result, expecting) {
			out = append(out, c)
		}
	}
	return out
}

// baseOverloadName strips a `lang/sema`.OverloadPass-applied backtick
// suffix ("name`2") back to the declared base name, mirroring
// lang/symtab's own splitOverload (kept as a separate, unexported copy
// here since member names are looked up off types.Custom directly rather
// than through the symbol table's FQN-keyed bucket for a method call).
func baseOverloadName(name string) string {
	for i := 0; i < len(name); i++ {
		if name[i] == '`' {
			return name[:i]
		}
	}
	return name
}
