package sema

import (
	"fmt"

	"github.com/emberlang/ember/lang/ast"
	"github.com/emberlang/ember/lang/pass"
)

// OverloadPass implements §4.4.1: every declaration list (a translation
// unit's top level, a namespace body, or a struct/class/interface body)
// that declares the same function name more than once has each
// declaration's name rewritten to "name`i" (i the declaration's 0-based
// position among same-named siblings), so that later passes can treat
// every function declaration as uniquely named within its scope. A
// group of exactly one is left untouched. The rewrite is idempotent:
// once applied, re-grouping by the now-distinct names finds singleton
// groups and does nothing further, which is what lets the fixed-point
// driver call this pass to convergence in one or two iterations.
type OverloadPass struct{}

func (OverloadPass) Name() string { return "overload" }

func (OverloadPass) Enter(ctx *pass.Context, n ast.Node) int {
	switch d := n.(type) {
	case *ast.TranslationUnit:
		return renameOverloads(d.Decls)
	case *ast.NamespaceDecl:
		return renameOverloads(d.Decls)
	case *ast.StructDecl:
		return renameOverloads(d.Members)
	case *ast.ClassDecl:
		return renameOverloads(d.Members)
	case *ast.InterfaceDecl:
		return renameOverloads(d.Members)
	default:
		return 0
	}
}

func (OverloadPass) Exit(*pass.Context, ast.Node) int { return 0 }

func renameOverloads(decls []ast.Decl) int {
	groups := map[string][]*ast.FuncDecl{}
	var order []string
	for _, d := range decls {
		fd, ok := d.(*ast.FuncDecl)
		if !ok {
			continue
		}
		if _, seen := groups[fd.Name.Lit]; !seen {
			order = append(order, fd.Name.Lit)
		}
		groups[fd.Name.Lit] = append(groups[fd.Name.Lit], fd)
	}
	changed := 0
	for _, base := range order {
		fds := groups[base]
		if len(fds) < 2 {
			continue
		}
		for i, fd := range fds {
			newName := fmt.Sprintf("%s`%d", base, i)
			if fd.Name.Lit != newName {
				fd.Name.Lit = newName
				changed++
			}
		}
	}
	return changed
}

var _ pass.Pass = OverloadPass{}
