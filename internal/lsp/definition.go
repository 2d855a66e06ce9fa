package lsp

import (
	"encoding/json"

	"github.com/raven-lang/raven/internal/ast"
)

// DefinitionParams represents definition request parameters.
type DefinitionParams struct {
	TextDocumentPositionParams
}

// TextDocumentPositionParams represents a position in a text document.
type TextDocumentPositionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

// Location represents a location in a document.
type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

func (s *Server) handleDefinition(msg *jsonrpcMessage) *jsonrpcMessage {
	var params DefinitionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return invalidParams(msg, err)
	}

	s.mu.RLock()
	doc, ok := s.Documents[params.TextDocument.URI]
	s.mu.RUnlock()

	var location *Location
	if ok && doc.Program != nil {
		location = findDefinition(doc, params.Position)
	}
	return &jsonrpcMessage{
		JSONRPC: "2.0",
		ID:      msg.ID,
		Result:  location,
	}
}

func findDefinition(doc *Document, pos Position) *Location {
	offset := positionToOffset(doc.Content, pos)
	ident := identAt(doc.Program, offset)
	if ident == nil {
		return nil
	}
	d := resolve(declarations(doc.Program), ident.Name, offset)
	if d == nil {
		return nil
	}
	return &Location{URI: doc.URI, Range: spanRange(d.name.Span())}
}

// decl is a name introduced by a let, fun, parameter, struct, enum or import.
type decl struct {
	name *ast.Ident
	node ast.Node

	// enclosing function, nil at top level
	scope *ast.FunDecl
}

func declarations(prog *ast.BlockStmt) []decl {
	var out []decl
	collect(prog, nil, &out)
	return out
}

func collect(node ast.Node, scope *ast.FunDecl, out *[]decl) {
	ast.Walk(node, func(n ast.Node) bool {
		switch d := n.(type) {
		case *ast.FunDecl:
			*out = append(*out, decl{name: d.Name, node: d, scope: scope})
			for _, p := range d.Params {
				*out = append(*out, decl{name: p.Name, node: p, scope: d})
			}
			if d.Body != nil {
				collect(d.Body, d, out)
			}
			return false
		case *ast.LetStmt:
			*out = append(*out, decl{name: d.Name, node: d, scope: scope})
		case *ast.StructDecl:
			*out = append(*out, decl{name: d.Name, node: d, scope: scope})
		case *ast.EnumDecl:
			*out = append(*out, decl{name: d.Name, node: d, scope: scope})
		case *ast.ImportStmt:
			if d.Alias != nil {
				*out = append(*out, decl{name: d.Alias, node: d, scope: scope})
			}
		case *ast.SelectiveImportStmt:
			for _, name := range d.Names {
				*out = append(*out, decl{name: name, node: d, scope: scope})
			}
		}
		return true
	})
}

// resolve picks the declaration of name visible at offset. Locals of the
// enclosing function win over globals; among equals the nearest preceding
// declaration wins, and a use before any declaration goes to the first one.
func resolve(decls []decl, name string, offset int) *decl {
	var best *decl
	for i := range decls {
		d := &decls[i]
		if d.name.Name != name {
			continue
		}
		if d.scope != nil && !d.scope.Span().Contains(offset) {
			continue
		}
		if best == nil || better(d, best, offset) {
			best = d
		}
	}
	return best
}

func better(a, b *decl, offset int) bool {
	if (a.scope != nil) != (b.scope != nil) {
		return a.scope != nil
	}
	aStart, bStart := a.name.Span().Offset, b.name.Span().Offset
	aBefore, bBefore := aStart <= offset, bStart <= offset
	if aBefore != bBefore {
		return aBefore
	}
	if aBefore {
		return aStart > bStart
	}
	return aStart < bStart
}

// identAt returns the identifier under offset. Field, method, struct literal
// field and enum variant names are members, not references, and yield nil.
func identAt(prog *ast.BlockStmt, offset int) *ast.Ident {
	var found *ast.Ident
	members := make(map[*ast.Ident]bool)
	ast.Walk(prog, func(n ast.Node) bool {
		if found != nil {
			return false
		}
		switch m := n.(type) {
		case *ast.FieldExpr:
			members[m.Field] = true
		case *ast.MethodCallExpr:
			members[m.Method] = true
		case *ast.FieldInit:
			members[m.Name] = true
		case *ast.StructField:
			members[m.Name] = true
		case *ast.EnumVariantExpr:
			members[m.Variant] = true
		case *ast.Ident:
			if m.Span().Contains(offset) && !members[m] {
				found = m
			}
			return false
		}
		return true
	})
	return found
}

// memberAt reports whether offset sits on a member name, returning the
// expression that owns it.
func memberAt(prog *ast.BlockStmt, offset int) ast.Node {
	var owner ast.Node
	ast.Walk(prog, func(n ast.Node) bool {
		switch m := n.(type) {
		case *ast.FieldExpr:
			if m.Field.Span().Contains(offset) {
				owner = m
			}
		case *ast.MethodCallExpr:
			if m.Method.Span().Contains(offset) {
				owner = m
			}
		case *ast.EnumVariantExpr:
			if m.Variant.Span().Contains(offset) {
				owner = m
			}
		}
		return owner == nil
	})
	return owner
}
