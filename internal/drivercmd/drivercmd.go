// Package drivercmd implements the CLI surface: an input path (required,
// glob-expanded), --format, -O, --run, --output, --arch, with exit codes
// 0/1/2. A Cmd struct carries `flag:"..."` tags, a Validate/Main pair,
// and buildCmds reflection dispatch over per-command methods — here
// narrowed to a single Compile command, since this core's only
// externally-facing operation is "compile these inputs".
package drivercmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/mna/mainer"

	"github.com/emberlang/ember/lang/ast"
	"github.com/emberlang/ember/lang/bundle"
	"github.com/emberlang/ember/lang/codegen"
	"github.com/emberlang/ember/lang/pass"
	"github.com/emberlang/ember/lang/sema"
	"github.com/emberlang/ember/lang/session"
	"github.com/emberlang/ember/lang/token"
)

const binName = "emberc"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <path>...
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <path>...
       %[1]s -h|--help
       %[1]s -v|--version

Semantic analysis and LLIR emission core for the ember language.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       --format {ascii,color,fancy}  Diagnostic rendering style.
       -O N                      Optimiser level (informational; no
                                  optimisation passes run in this core).
       --run                     After emission, verify an entry point
                                  named "main" exists (exit 2 if not);
                                  this core does not itself execute code.
       --output <path>           Write a bundle (§6.3) to <path>.
       --arch <triple>           Target triple recorded in the bundle.
`, binName)
)

// ASTLoader resolves a set of already-expanded input file paths to a
// parsed translation unit and the file set its positions are relative
// to. Parsing itself is out of scope for this repository (§1 "Parsing
// ... remain[s an] external collaborator, consumed only through
// interfaces"); a real driver binary wires in a parser package here.
type ASTLoader interface {
	Load(paths []string) (*ast.TranslationUnit, *token.FileSet, error)
}

// Cmd is the emberc command line, parsed by github.com/mna/mainer.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	Format   string `flag:"format"`
	OptLevel int    `flag:"O"`
	Run      bool   `flag:"run"`
	Output   string `flag:"output"`
	Arch     string `flag:"arch"`

	// Loader must be set by the embedding binary before Main is called;
	// it is not a flag, since there is no textual representation of a
	// parser implementation.
	Loader ASTLoader

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string)         { c.args = args }
func (c *Cmd) SetFlags(flags map[string]bool) { c.flags = flags }

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) == 0 {
		return errors.New("no input path specified")
	}
	commands := buildCmds(c)
	c.cmdFn = commands["compile"]
	if c.cmdFn == nil {
		return errors.New("internal error: no compile command registered")
	}
	switch c.Format {
	case "", "ascii", "color", "fancy":
	default:
		return fmt.Errorf("invalid --format: %s", c.Format)
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{EnvVars: false, EnvPrefix: binName + "_"}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args); err != nil {
		if errors.Is(err, errUnrunnable) {
			return mainer.ExitCode(2)
		}
		return mainer.Failure
	}
	return mainer.Success
}

var errUnrunnable = errors.New("drivercmd: no entry point named \"main\"")

// Compile expands every glob pattern in paths, loads the resulting files
// through c.Loader, runs the full semantic pipeline and LLIR emission,
// optionally writes a bundle, and (if --run was given) checks for an
// entry point.
func (c *Cmd) Compile(_ context.Context, stdio mainer.Stdio, paths []string) error {
	if c.Loader == nil {
		err := errors.New("drivercmd: no ASTLoader configured")
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	files, err := expandGlobs(paths)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	unit, fset, err := c.Loader.Load(files)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	sess := session.New("", 256)
	sess.Fset = fset
	pctx := sess.Context()

	pass.RunPipeline(pctx, []pass.Pass{
		sema.OverloadPass{},
		sema.NewPrototypePass(),
		sema.ValidatePass{},
		sema.LocalsPass{},
	}, unit)

	if !sess.Diags.Failed() {
		codegen.NewGenerator(pctx).EmitTranslationUnit(unit)
	}

	sess.Diags.Sort()
	sess.Diags.Print(stdio.Stderr, sess.Fset, nil)
	if sess.Diags.Failed() {
		return fmt.Errorf("drivercmd: %d error(s)", sess.Diags.ErrorCount())
	}

	if c.Output != "" {
		objects := map[string][]byte{}
		if c.Arch != "" {
			objects[c.Arch] = []byte(sess.Builder.Module().String())
		}
		if err := bundle.Write(c.Output, sess, objects); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
	}

	if c.Run {
		if _, ok := sess.Table.Lookup("main"); !ok {
			fmt.Fprintln(stdio.Stderr, errUnrunnable)
			return errUnrunnable
		}
	}
	return nil
}

func expandGlobs(patterns []string) ([]string, error) {
	var out []string
	for _, p := range patterns {
		matches, err := doublestar.FilepathGlob(p)
		if err != nil {
			return nil, fmt.Errorf("drivercmd: expanding %q: %w", p, err)
		}
		if len(matches) == 0 {
			out = append(out, p)
			continue
		}
		out = append(out, matches...)
	}
	return out, nil
}

// buildCmds dispatches by reflection over v's exported methods, narrowed
// here to this driver's single "compile" verb.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)
	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type
		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
