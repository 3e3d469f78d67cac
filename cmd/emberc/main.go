// Command emberc is the binary entry point: placeholder version/build-date
// vars swapped in at build time, os.Exit driven by the Cmd's own exit
// code.
package main

import (
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/emberlang/ember/internal/drivercmd"
	"github.com/emberlang/ember/lang/ast"
	"github.com/emberlang/ember/lang/token"
)

var (
	// placeholder values, replaced on build
	version   = "{v}" // must be N.N[.N]
	buildDate = "{d}" // must be YYYY-mm-DD
)

// noParserLoader reports that this binary was built without a parser
// wired in (§1: parsing is consumed only through an interface this
// repository never implements itself).
type noParserLoader struct{}

func (noParserLoader) Load(paths []string) (*ast.TranslationUnit, *token.FileSet, error) {
	return nil, nil, fmt.Errorf("emberc: no parser configured; this build only exercises the semantic/codegen core")
}

func main() {
	c := drivercmd.Cmd{BuildVersion: version, BuildDate: buildDate, Loader: noParserLoader{}}
	os.Exit(int(c.Main(os.Args, mainer.CurrentStdio())))
}
