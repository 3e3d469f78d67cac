// Package session bundles global mutable compilation state so it can be
// threaded explicitly rather than stashed in a module-level singleton:
// the symbol table, the diagnostics bag, the backend module builder and
// position information every pass and emission routine needs, plus a
// unique identifier for the run itself.
//
// One struct holds "what we're building" and every routine takes it as
// an explicit parameter, the same pcomp/fcomp split a bytecode compiler
// would use for its own per-compilation state.
package session

import (
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/emberlang/ember/lang/diag"
	"github.com/emberlang/ember/lang/llir"
	"github.com/emberlang/ember/lang/llir/llvmir"
	"github.com/emberlang/ember/lang/pass"
	"github.com/emberlang/ember/lang/symtab"
	"github.com/emberlang/ember/lang/token"
)

// Debug gates Debugf's ad hoc fmt.Fprintf(os.Stderr, ...) progress
// logging — an "if debug { ... }" toggle rather than a structured
// logging library this codebase's ambient style never otherwise shows.
// No routine in this repository calls Debugf.
var Debug = false

// Session is one compilation run: a fresh symbol table, diagnostics bag
// and LLIR module, tagged with a UUID that both names the bundle writer's
// staging file (lang/bundle) and identifies the emitted module.
type Session struct {
	ID uuid.UUID

	Table   *symtab.Table
	Diags   *diag.Bag
	Builder llir.Builder
	Fset    *token.FileSet

	GlobalNamespace string
}

// New creates a Session with a fresh symbol table (sized for roughly
// symTableHint entries) and a fresh LLIR module, tagged with a new UUID.
func New(globalNamespace string, symTableHint int) *Session {
	id := uuid.New()
	mod := llvmir.NewModule()
	if setter, ok := mod.Module().(llir.SourceFilenameSetter); ok {
		setter.SetSourceFilename(id.String())
	}
	return &Session{
		ID:              id,
		Table:           symtab.New(symTableHint),
		Diags:           &diag.Bag{},
		Builder:         mod,
		Fset:            token.NewFileSet(),
		GlobalNamespace: globalNamespace,
	}
}

// Context returns the *pass.Context this session's state is threaded
// through by every pass and codegen routine.
func (s *Session) Context() *pass.Context {
	return &pass.Context{Table: s.Table, Diags: s.Diags, Builder: s.Builder, Fset: s.Fset}
}

// Debugf prints a progress message to stderr when Debug is enabled.
func Debugf(format string, args ...any) {
	if Debug {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// Succeeded reports whether the session's diagnostics bag is free of
// errors (§7: "a non-zero final error count marks the session
// unsuccessful").
func (s *Session) Succeeded() bool { return !s.Diags.Failed() }
