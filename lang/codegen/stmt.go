package codegen

import (
	"github.com/emberlang/ember/lang/ast"
	"github.com/emberlang/ember/lang/llir"
	"github.com/emberlang/ember/lang/sema"
	"github.com/emberlang/ember/lang/symtab"
	"github.com/emberlang/ember/lang/types"
)

// emitBlock lowers every statement of b in order, saving and restoring
// fc.locals around the call so a name declared inside a nested block
// shadows (but does not permanently clobber) a same-named local still in
// scope afterward — the block's own alloca still lives in fc.entry per
// funcCtx.entry's contract, only the name binding is block-scoped.
func (fc *funcCtx) emitBlock(b *ast.Block) {
	saved := make(map[string]*localSlot, len(fc.locals))
	for k, v := range fc.locals {
		saved[k] = v
	}
	for _, s := range b.Stmts {
		if fc.terminated {
			break
		}
		fc.emitStmt(s)
	}
	fc.locals = saved
}

func (fc *funcCtx) emitStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.VarDecl:
		fc.emitLocalVarDecl(n)
	case *ast.ExprStmt:
		fc.emitExpr(n.X)
	case *ast.ReturnStmt:
		fc.emitReturn(n)
	case *ast.IfStmt:
		fc.emitIf(n)
	case *ast.BlockStmt:
		fc.emitBlock(n.Body)
	case *ast.ForStmt:
		// The core never lowers a range-based for loop to LLIR (see
		// ast.ForStmt's own doc comment); a program that reaches one at
		// emission time hit a gap upstream, not a codegen bug, so this
		// reports it as a diagnostic rather than panicking the process.
		start, _ := n.Span()
		fc.gen.ctx.Diags.Errorf(fc.gen.ctx.Position(start), "for loops are not yet lowered to LLIR")
	}
}

// emitLocalVarDecl allocates storage for a local declaration in fc.entry
// (never fc.block: a declaration inside a loop body or an if-branch must
// still only be allocated once per function activation, see funcCtx.entry),
// stores its initializer (or the type's zero value) into it, and binds
// the name in the current block scope.
func (fc *funcCtx) emitLocalVarDecl(n *ast.VarDecl) {
	sym, _ := n.Name.Symbol.(*symtab.Symbol)
	var declType types.Type
	if sym != nil {
		declType = sym.Type
	} else if n.DeclType != nil {
		declType, _ = sema.ResolveType(fc.gen.ctx, fc.scope, n.DeclType)
	}
	if declType == nil || !declType.IsValid() {
		return
	}
	slot := fc.entry.Alloca(fc.gen.LLIRType(declType))
	if n.Init != nil {
		fc.withExpect(declType, func() {
			v, t := fc.emitExpr(n.Init)
			fc.block.Store(fc.coerceTo(declType, t, v), slot)
		})
	} else {
		fc.block.Store(fc.gen.zeroValue(fc.block, declType), slot)
	}
	fc.locals[n.Name.Lit] = &localSlot{ptr: slot, t: declType}
	if sym != nil {
		sym.Value = slot
	}
}

func (fc *funcCtx) emitReturn(n *ast.ReturnStmt) {
	if n.Result == nil {
		fc.block.RetVoid()
		fc.terminated = true
		return
	}
	var result llir.Value
	fc.withExpect(fc.resultStatic, func() {
		v, t := fc.emitExpr(n.Result)
		result = fc.coerceTo(fc.resultStatic, t, v)
	})
	fc.block.Ret(result)
	fc.terminated = true
}

// emitIf lowers an if/else as a diamond of blocks: cond branches to a
// then-block and (if present) an else-block, both of which rejoin at a
// shared continuation block unless they already terminated (a return
// inside both branches means control never reaches the join block, so it
// is left without a predecessor rather than given a dangling terminator).
func (fc *funcCtx) emitIf(n *ast.IfStmt) {
	cond, condType := fc.emitExpr(n.Cond)
	condBool := fc.toBool(cond, condType)

	thenBlock := fc.newBlock("if.then")
	var elseBlock llir.Block
	if n.Else != nil {
		elseBlock = fc.newBlock("if.else")
	}
	joinBlock := fc.newBlock("if.end")

	if elseBlock != nil {
		fc.block.CondBr(condBool, thenBlock, elseBlock)
	} else {
		fc.block.CondBr(condBool, thenBlock, joinBlock)
	}

	fc.setBlock(thenBlock)
	fc.emitBlock(n.Then)
	thenFallsThrough := !fc.terminated
	if thenFallsThrough {
		fc.block.Br(joinBlock)
	}

	elseFallsThrough := true
	if n.Else != nil {
		fc.setBlock(elseBlock)
		fc.emitBlock(n.Else)
		elseFallsThrough = !fc.terminated
		if elseFallsThrough {
			fc.block.Br(joinBlock)
		}
	}

	fc.setBlock(joinBlock)
	if !thenFallsThrough && !elseFallsThrough {
		fc.terminated = true
	}
}
