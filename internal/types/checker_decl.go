package types

import (
	"errors"
	"os"

	"github.com/raven-lang/raven/internal/ast"
	"github.com/raven-lang/raven/internal/diag"
	"github.com/raven-lang/raven/internal/module"
	"github.com/raven-lang/raven/internal/parser"
)

func (c *Checker) checkFunDecl(d *ast.FunDecl) (Type, error) {
	name := d.Name.Name
	if _, exists := c.funcs[name]; exists {
		return nil, c.errorf(d.Name.Span(), "Function '%s' is already declared", name)
	}

	fn := &Function{Name: name}
	seen := make(map[string]bool, len(d.Params))
	for _, p := range d.Params {
		if seen[p.Name.Name] {
			return nil, c.errorf(p.Name.Span(), "Duplicate parameter '%s' in function '%s'", p.Name.Name, name)
		}
		seen[p.Name.Name] = true

		t, err := c.resolveType(p.Type)
		if err != nil {
			return nil, err
		}
		if t == TypeVoid {
			return nil, c.errorf(p.Type.Span(), "Parameter '%s' cannot have type void", p.Name.Name)
		}
		fn.Params = append(fn.Params, Param{Name: p.Name.Name, Type: t})
	}
	ret, err := c.resolveType(d.ReturnType)
	if err != nil {
		return nil, err
	}
	fn.Return = ret

	// registered before the body so the function can call itself
	c.funcs[name] = fn

	if err := c.checkFunBody(fn, d); err != nil {
		delete(c.funcs, name)
		return nil, err
	}
	return TypeVoid, nil
}

// checkFunBody checks d's body in a fresh frame whose parent is the global
// scope, so the caller's locals are not visible.
func (c *Checker) checkFunBody(fn *Function, d *ast.FunDecl) error {
	savedScope, savedFn := c.scope, c.current
	c.scope = NewScope(c.GlobalScope)
	c.current = fn
	defer func() {
		c.scope, c.current = savedScope, savedFn
	}()

	for i, p := range fn.Params {
		c.scope.Insert(p.Name, &Symbol{Name: p.Name, Type: p.Type, DefNode: d.Params[i]})
	}
	if _, err := c.checkBlock(d.Body); err != nil {
		return err
	}

	if fn.Return != TypeVoid && !containsReturn(d.Body) {
		return c.errorHint(d.Name.Span(), "Add a return statement",
			"Function '%s' must return a value of type %s", fn.Name, fn.Return)
	}
	return nil
}

// containsReturn reports whether a return statement appears in body outside
// of nested function declarations.
func containsReturn(body *ast.BlockStmt) bool {
	found := false
	ast.Walk(body, func(n ast.Node) bool {
		switch n.(type) {
		case *ast.ReturnStmt:
			found = true
		case *ast.FunDecl:
			return false
		}
		return !found
	})
	return found
}

func (c *Checker) checkStructDecl(d *ast.StructDecl) (Type, error) {
	name := d.Name.Name
	if c.typeNameTaken(name) {
		return nil, c.errorf(d.Name.Span(), "Type '%s' is already declared", name)
	}

	st := &Struct{Name: name}
	// registered first so fields may refer to the struct through arrays
	c.structs[name] = st

	seen := make(map[string]bool, len(d.Fields))
	for _, f := range d.Fields {
		if seen[f.Name.Name] {
			delete(c.structs, name)
			return nil, c.errorf(f.Name.Span(), "Duplicate field '%s' in struct '%s'", f.Name.Name, name)
		}
		seen[f.Name.Name] = true

		t, err := c.resolveType(f.Type)
		if err == nil && Identical(t, st) {
			err = c.errorf(f.Type.Span(), "Struct '%s' cannot contain itself", name)
		}
		if err == nil && t == TypeVoid {
			err = c.errorf(f.Type.Span(), "Field '%s' cannot have type void", f.Name.Name)
		}
		if err != nil {
			delete(c.structs, name)
			return nil, err
		}
		st.Fields = append(st.Fields, Field{Name: f.Name.Name, Type: t})
	}
	return TypeVoid, nil
}

func (c *Checker) checkEnumDecl(d *ast.EnumDecl) (Type, error) {
	name := d.Name.Name
	if c.typeNameTaken(name) {
		return nil, c.errorf(d.Name.Span(), "Type '%s' is already declared", name)
	}

	en := &Enum{Name: name}
	seen := make(map[string]bool, len(d.Variants))
	for _, v := range d.Variants {
		if seen[v.Name] {
			return nil, c.errorf(v.Span(), "Duplicate variant '%s' in enum '%s'", v.Name, name)
		}
		seen[v.Name] = true
		en.Variants = append(en.Variants, v.Name)
	}
	c.enums[name] = en
	return TypeVoid, nil
}

func (c *Checker) typeNameTaken(name string) bool {
	_, isStruct := c.structs[name]
	_, isEnum := c.enums[name]
	return isStruct || isEnum
}

// loadModule resolves name and checks the file it names, re-entering the
// whole pipeline. Results are shared through the module graph.
func (c *Checker) loadModule(name string, span diag.Span) (*Module, error) {
	path, err := c.resolver.Resolve(name, c.dir)
	if err != nil {
		return nil, c.errorHint(span, "Modules are looked up in the lib directory and next to the importing file",
			"Cannot find module '%s'", name)
	}

	mod, err := c.graph.Load(path, func() (*Module, error) {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, c.errorf(span, "Cannot read module '%s': %v", name, err)
		}
		prog, err := parser.ParseSource(path, string(src))
		if err != nil {
			return nil, err
		}
		sub := NewChecker(WithFilename(path), WithResolver(c.resolver), WithGraph(c.graph))
		if _, err := sub.Check(prog); err != nil {
			return nil, diag.Attach(err, path, string(src))
		}
		return sub.Exports(module.BaseName(path), path), nil
	})

	var cycle *module.CycleError
	if errors.As(err, &cycle) {
		return nil, c.errorf(span, "%s", cycle.Error())
	}
	return mod, err
}

func (c *Checker) checkImport(s *ast.ImportStmt) error {
	mod, err := c.loadModule(s.Path, s.Span())
	if err != nil {
		return err
	}
	if err := c.mergeTypes(mod, s.Span()); err != nil {
		return err
	}

	binding := module.BaseName(mod.Path)
	if s.Alias != nil {
		binding = s.Alias.Name
	}
	c.scope.Insert(binding, &Symbol{Name: binding, Type: mod, Const: true, DefNode: s})
	return nil
}

func (c *Checker) checkSelectiveImport(s *ast.SelectiveImportStmt) error {
	mod, err := c.loadModule(s.Path, s.Span())
	if err != nil {
		return err
	}
	if err := c.mergeTypes(mod, s.Span()); err != nil {
		return err
	}

	for _, id := range s.Names {
		if fn, ok := mod.Funcs[id.Name]; ok {
			c.funcs[id.Name] = fn
			continue
		}
		if t, ok := mod.Vars[id.Name]; ok {
			c.scope.Insert(id.Name, &Symbol{Name: id.Name, Type: t, DefNode: id})
			continue
		}
		if _, ok := mod.Structs[id.Name]; ok {
			continue
		}
		if _, ok := mod.Enums[id.Name]; ok {
			continue
		}
		return c.errorf(id.Span(), "Module '%s' has no exported member '%s'", mod.Name, id.Name)
	}
	return nil
}

// mergeTypes brings the module's struct and enum declarations into scope.
// The same declaration reached twice through the graph is not a conflict.
func (c *Checker) mergeTypes(mod *Module, span diag.Span) error {
	for name, st := range mod.Structs {
		if existing, ok := c.structs[name]; ok && existing != st {
			return c.errorf(span, "Struct '%s' from module '%s' conflicts with an existing declaration", name, mod.Name)
		}
		if _, ok := c.enums[name]; ok {
			return c.errorf(span, "Struct '%s' from module '%s' conflicts with an existing enum", name, mod.Name)
		}
		c.structs[name] = st
	}
	for name, en := range mod.Enums {
		if existing, ok := c.enums[name]; ok && existing != en {
			return c.errorf(span, "Enum '%s' from module '%s' conflicts with an existing declaration", name, mod.Name)
		}
		if _, ok := c.structs[name]; ok {
			return c.errorf(span, "Enum '%s' from module '%s' conflicts with an existing struct", name, mod.Name)
		}
		c.enums[name] = en
	}
	return nil
}
