package parser

import (
	"fmt"

	"github.com/raven-lang/raven/internal/ast"
	"github.com/raven-lang/raven/internal/lexer"
)

const typeHint = "Use: int, float, bool, string, or void"

// parseType parses a primitive or declared type name followed by any number
// of `[]` suffixes.
func (p *Parser) parseType() ast.TypeExpr {
	var typ ast.TypeExpr

	switch p.curTok.Type {
	case lexer.TYPE:
		name := p.curTok.Literal
		if name == "String" {
			name = "string"
		}
		typ = ast.NewNamedType(name, p.curTok.Span)
	case lexer.IDENT:
		typ = ast.NewNamedType(p.curTok.Literal, p.curTok.Span)
	default:
		p.errorAt(p.curTok.Span, fmt.Sprintf("Expected type, found '%s'", p.curTok.Literal), typeHint)
		return nil
	}
	p.nextToken()

	for p.curTokenIs(lexer.LBRACKET) {
		start := typ.Span()
		p.nextToken()
		if !p.expect(lexer.RBRACKET, "Expected ']' in array type", "Use: int[]") {
			return nil
		}
		typ = ast.NewArrayType(typ, p.spanFrom(start))
	}

	return typ
}

// zeroValue synthesizes the initializer of a typed let without one.
// Struct, enum and void types have no zero value.
func (p *Parser) zeroValue(name *ast.Ident, typ ast.TypeExpr) ast.Expr {
	span := typ.Span()

	switch t := typ.(type) {
	case *ast.ArrayType:
		return ast.NewArrayLit(nil, span)
	case *ast.NamedType:
		switch t.Name {
		case "int":
			return ast.NewIntLit(0, span)
		case "float":
			return ast.NewFloatLit(0, span)
		case "bool":
			return ast.NewBoolLit(false, span)
		case "string":
			return ast.NewStringLit("", span)
		case "void":
			p.errorAt(span, fmt.Sprintf("Variable '%s' cannot have type void", name.Name), typeHint)
			return nil
		}
		p.errorAt(p.curTok.Span,
			fmt.Sprintf("Variable '%s' of type %s must be initialized", name.Name, t.Name),
			fmt.Sprintf("Add an initializer: let %s: %s = ...;", name.Name, t.Name))
		return nil
	}

	p.errorAt(span, fmt.Sprintf("Unsupported type %s", typ), typeHint)
	return nil
}
