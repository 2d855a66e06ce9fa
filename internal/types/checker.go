package types

import (
	"path/filepath"

	"github.com/raven-lang/raven/internal/ast"
	"github.com/raven-lang/raven/internal/module"
)

type options struct {
	filename string
	resolver *module.Resolver
	graph    *module.Graph[*Module]
}

// Option configures a Checker.
type Option func(*options)

// WithFilename names the file being checked. Imports resolve relative to its
// directory.
func WithFilename(filename string) Option {
	return func(o *options) { o.filename = filename }
}

// WithResolver sets how import names map to files.
func WithResolver(r *module.Resolver) Option {
	return func(o *options) { o.resolver = r }
}

// WithGraph shares a module cache, so each file is checked once per run.
func WithGraph(g *module.Graph[*Module]) Option {
	return func(o *options) { o.graph = g }
}

// Checker performs type checking on the AST. It keeps its tables between
// calls to Check, so a session can feed it one statement at a time.
type Checker struct {
	GlobalScope *Scope
	scope       *Scope

	funcs   map[string]*Function
	structs map[string]*Struct
	enums   map[string]*Enum

	// exported names; when any exist only they cross the module boundary
	exported map[string]bool

	current *Function // enclosing function, nil at top level

	filename string
	dir      string
	resolver *module.Resolver
	graph    *module.Graph[*Module]
}

// NewChecker creates a new type checker.
func NewChecker(opts ...Option) *Checker {
	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	dir := "."
	if cfg.filename != "" {
		dir = filepath.Dir(cfg.filename)
	}
	if cfg.resolver == nil {
		cfg.resolver = module.NewResolver(dir)
	}
	if cfg.graph == nil {
		cfg.graph = module.NewGraph[*Module]()
	}

	global := NewScope(nil)
	return &Checker{
		GlobalScope: global,
		scope:       global,
		funcs:       make(map[string]*Function),
		structs:     make(map[string]*Struct),
		enums:       make(map[string]*Enum),
		exported:    make(map[string]bool),
		filename:    cfg.filename,
		dir:         dir,
		resolver:    cfg.resolver,
		graph:       cfg.graph,
	}
}

// Check validates node and returns its type. A block has the type of its
// last statement. The first error stops the check and is returned as a
// diag.Diagnostic.
func (c *Checker) Check(node ast.Node) (Type, error) {
	switch n := node.(type) {
	case ast.Stmt:
		return c.checkStmt(n)
	case ast.Expr:
		return c.checkExpr(n, nil)
	}
	return TypeVoid, nil
}

// Lookup returns what the checker knows about name at the top level: a
// variable's type, a function signature, or a struct or enum declaration.
func (c *Checker) Lookup(name string) (Type, bool) {
	if sym := c.GlobalScope.Lookup(name); sym != nil {
		return sym.Type, true
	}
	if fn, ok := c.funcs[name]; ok {
		return fn, true
	}
	if st, ok := c.structs[name]; ok {
		return st, true
	}
	if en, ok := c.enums[name]; ok {
		return en, true
	}
	return nil, false
}

// Names lists every top-level name, used for editor completion.
func (c *Checker) Names() []string {
	var out []string
	for name := range c.GlobalScope.Symbols {
		out = append(out, name)
	}
	for name := range c.funcs {
		out = append(out, name)
	}
	for name := range c.structs {
		out = append(out, name)
	}
	for name := range c.enums {
		out = append(out, name)
	}
	return out
}

// Exports builds the importable surface of the checked file. When the file
// exported anything, only exported variables and functions are included.
// Structs and enums always cross.
func (c *Checker) Exports(name, path string) *Module {
	filter := len(c.exported) > 0
	mod := &Module{
		Name:    name,
		Path:    path,
		Funcs:   make(map[string]*Function),
		Vars:    make(map[string]Type),
		Structs: make(map[string]*Struct, len(c.structs)),
		Enums:   make(map[string]*Enum, len(c.enums)),
	}
	for n, fn := range c.funcs {
		if !filter || c.exported[n] {
			mod.Funcs[n] = fn
		}
	}
	for n, sym := range c.GlobalScope.Symbols {
		if _, isModule := sym.Type.(*Module); isModule {
			continue
		}
		if !filter || c.exported[n] {
			mod.Vars[n] = sym.Type
		}
	}
	for n, st := range c.structs {
		mod.Structs[n] = st
	}
	for n, en := range c.enums {
		mod.Enums[n] = en
	}
	return mod
}
