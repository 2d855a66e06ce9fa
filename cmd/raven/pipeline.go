package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/raven-lang/raven/internal/ast"
	"github.com/raven-lang/raven/internal/config"
	"github.com/raven-lang/raven/internal/diag"
	"github.com/raven-lang/raven/internal/interp"
	"github.com/raven-lang/raven/internal/lexer"
	"github.com/raven-lang/raven/internal/module"
	"github.com/raven-lang/raven/internal/parser"
	"github.com/raven-lang/raven/internal/types"
)

// pipeline runs the stages of one source file: read, lex, parse, check and
// execute. Each stage stops at its first diagnostic.
type pipeline struct {
	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader
	logger *log.Logger

	verbose bool
	showAST bool
}

// unit is a parsed entry file with the project it belongs to.
type unit struct {
	name     string // as given on the command line, shown in diagnostics
	path     string // canonical, keys the module graph
	src      string
	prog     *ast.BlockStmt
	resolver *module.Resolver
}

// exit reports err and maps it to an exit code.
func (p *pipeline) exit(err error) int {
	if err == nil {
		return 0
	}
	_ = diag.NewFormatter(p.stderr).PrintError(err)
	return 1
}

func (p *pipeline) tracef(format string, args ...any) {
	if p.verbose {
		p.logger.Printf(format, args...)
	}
}

// parse reads and parses path.
func (p *pipeline) parse(path string) (*unit, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if canonical, err := module.Canonical(abs); err == nil {
		abs = canonical
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	src := string(data)

	m, err := config.FindOrDefault(filepath.Dir(abs))
	if err != nil {
		return nil, err
	}
	if m.Path != "" {
		p.tracef("using %s", m.Path)
	}

	p.tracef("lexing %s", path)
	if p.verbose {
		for _, tok := range lexer.New(src).Tokenize() {
			fmt.Fprintf(p.stdout, "  %-10s %-12q %s\n", tok.Type, tok.Literal, tok.Span)
		}
	}

	p.tracef("parsing %s", path)
	prog, err := parser.ParseSource(path, src)
	if err != nil {
		return nil, err
	}
	if p.showAST {
		ast.Fprint(p.stdout, prog)
	}

	resolver := m.Resolver()
	if m.Path == "" {
		// no manifest: the file's directory is the project root
		resolver = module.NewResolver(filepath.Dir(abs))
	}
	return &unit{name: path, path: abs, src: src, prog: prog, resolver: resolver}, nil
}

// check parses and type checks path.
func (p *pipeline) check(path string) (*unit, error) {
	u, err := p.parse(path)
	if err != nil {
		return nil, err
	}

	p.tracef("type checking %s", path)
	graph := module.NewGraph[*types.Module]()
	defer graph.Enter(u.path)()

	checker := types.NewChecker(
		types.WithFilename(u.name),
		types.WithResolver(u.resolver),
		types.WithGraph(graph),
	)
	if _, err := checker.Check(u.prog); err != nil {
		return nil, diag.Attach(err, u.name, u.src)
	}
	return u, nil
}

// run checks and executes path.
func (p *pipeline) run(path string) error {
	u, err := p.check(path)
	if err != nil {
		return err
	}
	_, err = p.execute(u)
	return err
}

// execute runs a checked unit and returns its interpreter, so callers can
// invoke its functions afterwards.
func (p *pipeline) execute(u *unit) (*interp.Interpreter, error) {
	p.tracef("executing %s", u.path)
	graph := module.NewGraph[*interp.Unit]()
	release := graph.Enter(u.path)

	opts := []interp.Option{
		interp.WithStdout(p.stdout),
		interp.WithFilename(u.name),
		interp.WithSource(u.src),
		interp.WithResolver(u.resolver),
		interp.WithGraph(graph),
	}
	if p.stdin != nil {
		opts = append(opts, interp.WithStdin(p.stdin))
	}
	in := interp.New(opts...)
	_, err := in.Execute(u.prog)
	release()
	if err != nil {
		return nil, diag.Attach(err, u.name, u.src)
	}
	return in, nil
}
