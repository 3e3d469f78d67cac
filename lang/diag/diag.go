// Package diag implements the diagnostics model described in §7: a small
// set of severities, position-aware messages, and an accumulating bag that
// never short-circuits resolution — every error is reported, and the
// session is only marked unsuccessful at the end by checking the bag's
// error count.
//
// Positions are rendered through go/scanner, aliasing Error/ErrorList
// straight from the standard library rather than inventing a parallel
// diagnostics type.
package diag

import (
	"fmt"
	"go/scanner"
	"io"
	"sort"

	"github.com/emberlang/ember/lang/token"
)

// Kind is a diagnostic's severity.
type Kind int

const (
	Error Kind = iota
	Warning
	Info
	Help
	Debug
)

func (k Kind) String() string {
	switch k {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	case Help:
		return "help"
	case Debug:
		return "debug"
	default:
		return "unknown"
	}
}

// Diagnostic is a single reported message, optionally tied to a position.
type Diagnostic struct {
	Kind Kind
	Pos  token.Position
	Msg  string
}

func (d Diagnostic) String() string {
	if d.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", d.Pos, d.Kind, d.Msg)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Msg)
}

// Bag accumulates diagnostics across an entire compilation session. Only
// Error-kind diagnostics count towards Failed(); the rest are informational.
type Bag struct {
	diags      []Diagnostic
	errorCount int
}

// Add appends a diagnostic at the given kind and position.
func (b *Bag) Add(kind Kind, pos token.Position, format string, args ...any) {
	b.diags = append(b.diags, Diagnostic{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)})
	if kind == Error {
		b.errorCount++
	}
}

// Errorf is a convenience for Add(Error, ...).
func (b *Bag) Errorf(pos token.Position, format string, args ...any) {
	b.Add(Error, pos, format, args...)
}

// Failed reports whether the bag contains at least one error.
func (b *Bag) Failed() bool { return b.errorCount > 0 }

// ErrorCount returns the number of Error-kind diagnostics reported so far.
func (b *Bag) ErrorCount() int { return b.errorCount }

// All returns every diagnostic reported so far, in report order.
func (b *Bag) All() []Diagnostic { return b.diags }

// Sort orders diagnostics by position, matching the ordering go/scanner's
// ErrorList.Sort uses, so multiple independent errors (§7: "resolution
// continues so that multiple independent errors are reported") print in
// source order rather than pass-visitation order.
func (b *Bag) Sort() {
	sort.SliceStable(b.diags, func(i, j int) bool {
		pi, pj := b.diags[i].Pos, b.diags[j].Pos
		if pi.Filename != pj.Filename {
			return pi.Filename < pj.Filename
		}
		return pi.Offset < pj.Offset
	})
}

// Print writes every diagnostic to w, one per line, with the source line
// and a caret under the offending column when src is available.
func (b *Bag) Print(w io.Writer, fset *token.FileSet, src map[string][]byte) {
	for _, d := range b.diags {
		fmt.Fprintln(w, d.String())
		if lines, ok := src[d.Pos.Filename]; ok && d.Pos.Line > 0 {
			printCaret(w, lines, d.Pos.Line, d.Pos.Column)
		}
	}
}

func printCaret(w io.Writer, src []byte, line, col int) {
	start := 0
	cur := 1
	for i, b := range src {
		if cur == line {
			start = i
			break
		}
		if b == '\n' {
			cur++
		}
	}
	end := start
	for end < len(src) && src[end] != '\n' {
		end++
	}
	fmt.Fprintln(w, string(src[start:end]))
	if col > 0 {
		fmt.Fprintln(w, scannerCaret(col))
	}
}

func scannerCaret(col int) string {
	if col < 1 {
		col = 1
	}
	buf := make([]byte, col)
	for i := range buf[:col-1] {
		buf[i] = ' '
	}
	buf[col-1] = '^'
	return string(buf)
}

// FatalErrorList mirrors go/scanner.ErrorList. No call site in this
// repository uses it: the bundle writer reports an un-typeable symbol
// (§7) as an ordinary returned error.
type FatalErrorList = scanner.ErrorList
