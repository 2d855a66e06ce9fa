package interp

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/raven-lang/raven/internal/ast"
	"github.com/raven-lang/raven/internal/diag"
	"github.com/raven-lang/raven/internal/module"
	"github.com/raven-lang/raven/internal/parser"
)

// loadModule resolves name and runs the file it names in a nested
// interpreter sharing this one's I/O, resolver and module graph.
func (i *Interpreter) loadModule(name string, span diag.Span) (*Unit, error) {
	path, err := i.resolver.Resolve(name, i.dir)
	if err != nil {
		return nil, i.errorf(span, "Cannot find module '%s'", name)
	}

	u, err := i.graph.Load(path, func() (*Unit, error) {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, i.errorf(span, "Cannot read module '%s': %v", name, err)
		}
		prog, err := parser.ParseSource(path, string(src))
		if err != nil {
			return nil, err
		}

		sub := &Interpreter{
			stdout:   i.stdout,
			stdin:    i.stdin,
			dir:      filepath.Dir(path),
			resolver: i.resolver,
			graph:    i.graph,
			depth:    i.depth,
		}
		sub.main = newUnit(module.BaseName(path), path)
		sub.main.source = string(src)
		sub.cur, sub.env = sub.main, sub.main.globals

		if _, err := sub.Execute(prog); err != nil {
			return nil, diag.Attach(err, path, string(src))
		}
		return sub.main, nil
	})

	var cycle *module.CycleError
	if errors.As(err, &cycle) {
		return nil, i.errorf(span, "%s", cycle.Error())
	}
	return u, err
}

func (i *Interpreter) execImport(s *ast.ImportStmt) error {
	u, err := i.loadModule(s.Path, s.Span())
	if err != nil {
		return err
	}
	i.mergeTypes(u)

	binding := u.Name
	if s.Alias != nil {
		binding = s.Alias.Name
	}
	i.env.Define(binding, &ModuleValue{Name: u.Name, Unit: u})
	return nil
}

func (i *Interpreter) execSelectiveImport(s *ast.SelectiveImportStmt) error {
	u, err := i.loadModule(s.Path, s.Span())
	if err != nil {
		return err
	}
	i.mergeTypes(u)

	for _, id := range s.Names {
		name := id.Name
		if fn, ok := u.funcs[name]; ok && u.visible(name) {
			i.cur.funcs[name] = fn
			continue
		}
		if v, ok := u.globals.Get(name); ok && u.visible(name) && v.Kind() != KindModule {
			i.env.Define(name, Copy(v))
			continue
		}
		if _, ok := u.structs[name]; ok {
			continue
		}
		if _, ok := u.enums[name]; ok {
			continue
		}
		return i.errorf(id.Span(), "Module '%s' has no exported member '%s'", u.Name, name)
	}
	return nil
}

// mergeTypes makes the module's struct and enum declarations usable in the
// current unit. They always cross the module boundary.
func (i *Interpreter) mergeTypes(u *Unit) {
	for name, decl := range u.structs {
		i.cur.structs[name] = decl
	}
	for name, decl := range u.enums {
		i.cur.enums[name] = decl
	}
}

func (i *Interpreter) moduleVar(mod *ModuleValue, name string, f *ast.FieldExpr) (Value, error) {
	v, ok := mod.Unit.globals.Get(name)
	if !ok || !mod.Unit.visible(name) || v.Kind() == KindModule {
		return nil, i.errorf(f.Field.Span(), "Module '%s' has no exported variable '%s'", mod.Name, name)
	}
	return v, nil
}

func (i *Interpreter) callModuleFunc(mod *ModuleValue, m *ast.MethodCallExpr) (Value, error) {
	name := m.Method.Name
	fn, ok := mod.Unit.funcs[name]
	if !ok || !mod.Unit.visible(name) {
		return nil, i.errorf(m.Method.Span(), "Module '%s' has no exported function '%s'", mod.Name, name)
	}
	args, err := i.evalArgs(m.Args)
	if err != nil {
		return nil, err
	}
	return i.call(fn, args, m.Span())
}
