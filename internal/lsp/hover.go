package lsp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/raven-lang/raven/internal/ast"
	"github.com/raven-lang/raven/internal/builtins"
	"github.com/raven-lang/raven/internal/types"
)

// HoverParams represents hover request parameters.
type HoverParams struct {
	TextDocumentPositionParams
}

// Hover represents hover information.
type Hover struct {
	Contents MarkupContent `json:"contents"`
	Range    *Range        `json:"range,omitempty"`
}

type MarkupContent struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

func (s *Server) handleHover(msg *jsonrpcMessage) *jsonrpcMessage {
	var params HoverParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return invalidParams(msg, err)
	}

	s.mu.RLock()
	doc, ok := s.Documents[params.TextDocument.URI]
	s.mu.RUnlock()

	var hover *Hover
	if ok && doc.Program != nil && doc.Checker != nil {
		hover = getHover(doc, params.Position)
	}
	return &jsonrpcMessage{
		JSONRPC: "2.0",
		ID:      msg.ID,
		Result:  hover,
	}
}

func getHover(doc *Document, pos Position) *Hover {
	offset := positionToOffset(doc.Content, pos)

	if m, ok := memberAt(doc.Program, offset).(*ast.MethodCallExpr); ok {
		method, known := builtins.LookupMethod(m.Method.Name)
		if !known {
			return nil
		}
		return markdown(describeMethod(method), m.Method)
	}

	ident := identAt(doc.Program, offset)
	if ident == nil {
		return nil
	}

	d := resolve(declarations(doc.Program), ident.Name, offset)
	var content string
	switch {
	case d == nil:
		f, ok := builtins.LookupFunc(ident.Name)
		if !ok {
			return nil
		}
		content = fmt.Sprintf("builtin %s", f)
	case d.scope != nil:
		content = describeLocal(d)
	default:
		typ, ok := doc.Checker.Lookup(ident.Name)
		if !ok {
			return nil
		}
		content = describe(ident.Name, typ, d)
	}
	return markdown(content, ident)
}

func markdown(content string, ident *ast.Ident) *Hover {
	r := spanRange(ident.Span())
	return &Hover{
		Contents: MarkupContent{
			Kind:  "markdown",
			Value: "```raven\n" + content + "\n```",
		},
		Range: &r,
	}
}

// describe renders a top-level name with the type the checker inferred.
func describe(name string, typ types.Type, d *decl) string {
	switch t := typ.(type) {
	case *types.Function:
		return t.String()
	case *types.Struct:
		fields := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = f.Name + ": " + f.Type.String()
		}
		return "struct " + t.Name + " { " + strings.Join(fields, ", ") + " }"
	case *types.Enum:
		return "enum " + t.Name + " { " + strings.Join(t.Variants, ", ") + " }"
	case *types.Module:
		return t.String()
	}
	keyword := "let"
	if let, ok := d.node.(*ast.LetStmt); ok && let.Const {
		keyword = "const"
	}
	return fmt.Sprintf("%s %s: %s", keyword, name, typ)
}

// describeLocal renders a parameter or function local. Only declared types
// are known here.
func describeLocal(d *decl) string {
	switch n := d.node.(type) {
	case *ast.Param:
		return fmt.Sprintf("(parameter) %s: %s", n.Name.Name, n.Type)
	case *ast.LetStmt:
		keyword := "let"
		if n.Const {
			keyword = "const"
		}
		if n.Type != nil {
			return fmt.Sprintf("%s %s: %s", keyword, n.Name.Name, n.Type)
		}
		return keyword + " " + n.Name.Name
	case *ast.FunDecl:
		return "fun " + n.Name.Name
	}
	return d.name.Name
}

func describeMethod(m builtins.Method) string {
	var on []string
	if m.Receivers()&builtins.OnArray != 0 {
		on = append(on, "array")
	}
	if m.Receivers()&builtins.OnString != 0 {
		on = append(on, "string")
	}
	args := "arguments"
	if m.Arity() == 1 {
		args = "argument"
	}
	return fmt.Sprintf("(method) %s: %d %s, on %s", m, m.Arity(), args, strings.Join(on, " and "))
}
