package types

import "github.com/raven-lang/raven/internal/ast"

// Symbol represents a named variable in the source code.
type Symbol struct {
	Name    string
	Type    Type
	Const   bool
	DefNode ast.Node // The AST node where this symbol is defined
}

// Scope is one function frame of variables. Blocks share the frame of their
// function; a function frame's parent is the file's global scope.
type Scope struct {
	Parent  *Scope
	Symbols map[string]*Symbol
}

// NewScope creates a new scope with an optional parent.
func NewScope(parent *Scope) *Scope {
	return &Scope{
		Parent:  parent,
		Symbols: make(map[string]*Symbol),
	}
}

// Insert adds a symbol to the current scope, replacing any earlier one.
func (s *Scope) Insert(name string, sym *Symbol) {
	s.Symbols[name] = sym
}

// Lookup finds a symbol in the current scope or any parent scope.
func (s *Scope) Lookup(name string) *Symbol {
	if sym, ok := s.Symbols[name]; ok {
		return sym
	}
	if s.Parent != nil {
		return s.Parent.Lookup(name)
	}
	return nil
}
