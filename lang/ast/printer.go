package ast

import (
	"fmt"
	"io"
	"strings"

	"github.com/emberlang/ember/lang/token"
)

// Printer writes an indented textual dump of a tree, one node per line,
// mostly useful for debugging the resolver and prototype passes.
type Printer struct {
	Output io.Writer
	Fset   *token.FileSet
}

// Print writes a dump of n to p.Output.
func (p *Printer) Print(n Node) error {
	var werr error
	var v Visitor
	depth := 0
	v = VisitorFunc(func(n Node, dir VisitDirection) Visitor {
		if werr != nil {
			return nil
		}
		if dir == VisitExit {
			depth--
			return nil
		}
		pos := ""
		if p.Fset != nil {
			start, _ := n.Span()
			if start.IsValid() {
				pos = " @ " + p.Fset.Position(start).String()
			}
		}
		if _, err := fmt.Fprintf(p.Output, "%s%s%s\n", strings.Repeat("  ", depth), n.String(), pos); err != nil {
			werr = err
			return nil
		}
		depth++
		return v
	})
	Walk(v, n)
	return werr
}
