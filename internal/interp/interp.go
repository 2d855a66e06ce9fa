package interp

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/raven-lang/raven/internal/ast"
	"github.com/raven-lang/raven/internal/diag"
	"github.com/raven-lang/raven/internal/module"
)

// maxCallDepth bounds recursion so runaway programs fail with a diagnostic
// instead of exhausting the Go stack.
const maxCallDepth = 10000

type options struct {
	stdout   io.Writer
	stdin    io.Reader
	filename string
	source   string
	resolver *module.Resolver
	graph    *module.Graph[*Unit]
}

// Option configures an Interpreter.
type Option func(*options)

// WithStdout redirects print output.
func WithStdout(w io.Writer) Option {
	return func(o *options) { o.stdout = w }
}

// WithStdin sets where input reads from.
func WithStdin(r io.Reader) Option {
	return func(o *options) { o.stdin = r }
}

// WithFilename names the program file. Imports resolve relative to its
// directory and runtime errors carry it.
func WithFilename(filename string) Option {
	return func(o *options) { o.filename = filename }
}

// WithSource attaches the program text to runtime diagnostics.
func WithSource(src string) Option {
	return func(o *options) { o.source = src }
}

// WithResolver sets how import names map to files.
func WithResolver(r *module.Resolver) Option {
	return func(o *options) { o.resolver = r }
}

// WithGraph shares the module cache, so each file runs once per program.
func WithGraph(g *module.Graph[*Unit]) Option {
	return func(o *options) { o.graph = g }
}

// Unit is a program or an imported module: its global frame and the
// declarations made at its top level.
type Unit struct {
	Name string
	Path string

	globals  *Env
	funcs    map[string]*function
	structs  map[string]*ast.StructDecl
	enums    map[string]*ast.EnumDecl
	exported map[string]bool

	filename string
	source   string
}

func newUnit(name, filename string) *Unit {
	return &Unit{
		Name:     name,
		Path:     filename,
		globals:  NewEnv(nil),
		funcs:    make(map[string]*function),
		structs:  make(map[string]*ast.StructDecl),
		enums:    make(map[string]*ast.EnumDecl),
		exported: make(map[string]bool),
		filename: filename,
	}
}

// visible reports whether a top-level variable or function crosses the
// module boundary. Once anything is exported only exported names do.
func (u *Unit) visible(name string) bool {
	return len(u.exported) == 0 || u.exported[name]
}

type function struct {
	decl *ast.FunDecl
	unit *Unit
}

// Interpreter evaluates an AST. Its global frame survives between calls to
// Execute, so a session can feed it one statement at a time.
type Interpreter struct {
	main *Unit
	cur  *Unit // unit whose code is running
	env  *Env

	// pending return value; set by return, cleared at call boundaries
	ret *Value

	depth int

	stdout   io.Writer
	stdin    *bufio.Reader
	dir      string
	resolver *module.Resolver
	graph    *module.Graph[*Unit]
}

// New creates an interpreter with an empty global frame.
func New(opts ...Option) *Interpreter {
	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.stdout == nil {
		cfg.stdout = os.Stdout
	}
	if cfg.stdin == nil {
		cfg.stdin = os.Stdin
	}

	dir := "."
	if cfg.filename != "" {
		dir = filepath.Dir(cfg.filename)
	}
	if cfg.resolver == nil {
		cfg.resolver = module.NewResolver(dir)
	}
	if cfg.graph == nil {
		cfg.graph = module.NewGraph[*Unit]()
	}

	main := newUnit(module.BaseName(cfg.filename), cfg.filename)
	main.source = cfg.source
	return &Interpreter{
		main:     main,
		cur:      main,
		env:      main.globals,
		stdout:   cfg.stdout,
		stdin:    bufio.NewReader(cfg.stdin),
		dir:      dir,
		resolver: cfg.resolver,
		graph:    cfg.graph,
	}
}

// Execute runs node at the top level and returns its value: a block yields
// its last statement's value, declarations yield void. The first runtime
// error stops execution and is returned as a diag.Diagnostic.
func (i *Interpreter) Execute(node ast.Node) (Value, error) {
	i.ret = nil
	defer func() { i.ret = nil }()

	switch n := node.(type) {
	case ast.Stmt:
		return i.exec(n)
	case ast.Expr:
		return i.eval(n)
	}
	return VoidValue{}, nil
}

// SetSource replaces the program text attached to runtime diagnostics. A
// session calls it before executing each new input.
func (i *Interpreter) SetSource(src string) {
	i.main.source = src
}

// CallFunction invokes a top-level function of the program by name.
func (i *Interpreter) CallFunction(name string, args []Value) (Value, error) {
	fn, ok := i.main.funcs[name]
	if !ok {
		return nil, i.errorf(diag.Span{}, "Function '%s' not found", name)
	}
	i.ret = nil
	defer func() { i.ret = nil }()
	return i.call(fn, args, fn.decl.Name.Span())
}

// Lookup returns the top-level variable called name.
func (i *Interpreter) Lookup(name string) (Value, bool) {
	return i.main.globals.Get(name)
}

// Names lists the top-level variables and functions in no particular order.
func (i *Interpreter) Names() []string {
	out := i.main.globals.Names()
	for name := range i.main.funcs {
		out = append(out, name)
	}
	return out
}

// call runs fn in a fresh frame over its own unit's globals.
func (i *Interpreter) call(fn *function, args []Value, span diag.Span) (Value, error) {
	params := fn.decl.Params
	if len(args) != len(params) {
		return nil, i.errorf(span, "Function '%s' expects %d arguments, got %d", fn.decl.Name.Name, len(params), len(args))
	}
	if i.depth >= maxCallDepth {
		return nil, i.errorf(span, "Maximum call depth exceeded in '%s'", fn.decl.Name.Name)
	}

	frame := NewEnv(fn.unit.globals)
	for idx, p := range params {
		frame.Define(p.Name.Name, Copy(args[idx]))
	}

	savedEnv, savedUnit := i.env, i.cur
	i.env, i.cur, i.ret = frame, fn.unit, nil
	i.depth++
	defer func() {
		i.env, i.cur, i.ret = savedEnv, savedUnit, nil
		i.depth--
	}()

	if _, err := i.execBlock(fn.decl.Body); err != nil {
		return nil, err
	}
	if i.ret == nil {
		if rt := fn.decl.ReturnType; rt != nil && rt.String() != "void" {
			return nil, i.errorf(span, "Function '%s' ended without returning a value of type %s", fn.decl.Name.Name, rt)
		}
		return VoidValue{}, nil
	}
	return *i.ret, nil
}

func (i *Interpreter) errorf(span diag.Span, format string, args ...any) error {
	d := diag.Runtimef(span, format, args...)
	if i.cur.filename != "" {
		d = d.WithFilename(i.cur.filename)
	}
	if i.cur.source != "" {
		d = d.WithSource(i.cur.source)
	}
	return d
}
