package parser

import (
	"fmt"

	"github.com/raven-lang/raven/internal/ast"
	"github.com/raven-lang/raven/internal/diag"
	"github.com/raven-lang/raven/internal/lexer"
)

var binaryOps = map[lexer.TokenType]ast.Operator{
	lexer.OR:       ast.OpOr,
	lexer.AND:      ast.OpAnd,
	lexer.EQ:       ast.OpEq,
	lexer.NOT_EQ:   ast.OpNotEq,
	lexer.LT:       ast.OpLt,
	lexer.GT:       ast.OpGt,
	lexer.LE:       ast.OpLe,
	lexer.GE:       ast.OpGe,
	lexer.PLUS:     ast.OpAdd,
	lexer.MINUS:    ast.OpSub,
	lexer.ASTERISK: ast.OpMul,
	lexer.SLASH:    ast.OpDiv,
	lexer.PERCENT:  ast.OpMod,
}

func (p *Parser) parseExpression() ast.Expr {
	return p.parseBinary(ast.PrecLowest)
}

// parseBinary is precedence climbing: an operator binds only when its
// precedence reaches minPrec, and its right operand is parsed one level
// tighter so equal precedence groups to the left.
func (p *Parser) parseBinary(minPrec int) ast.Expr {
	left := p.parseUnary()
	if p.failed() {
		return nil
	}

	for {
		op, ok := binaryOps[p.curTok.Type]
		if !ok || op.Precedence() < minPrec {
			return left
		}
		p.nextToken()

		right := p.parseBinary(op.Precedence() + 1)
		if p.failed() {
			return nil
		}
		left = ast.NewBinaryExpr(op, left, right, diag.Merge(left.Span(), right.Span()))
	}
}

func (p *Parser) parseUnary() ast.Expr {
	var op ast.Operator
	switch p.curTok.Type {
	case lexer.MINUS:
		op = ast.OpNeg
	case lexer.BANG:
		op = ast.OpNot
	default:
		return p.parsePostfix(p.parsePrimary())
	}

	start := p.curTok.Span
	p.nextToken()
	operand := p.parseUnary()
	if p.failed() {
		return nil
	}
	return ast.NewUnaryExpr(op, operand, diag.Merge(start, operand.Span()))
}

// parsePostfix greedily applies `.method(args)`, `.field` and `[index]`.
func (p *Parser) parsePostfix(expr ast.Expr) ast.Expr {
	if p.failed() {
		return nil
	}

	for {
		switch p.curTok.Type {
		case lexer.DOT:
			p.nextToken()
			name := p.expectIdent("Expected field or method name after '.'", "Use: value.field or value.method(args)")
			if name == nil {
				return nil
			}
			if p.curTokenIs(lexer.LPAREN) {
				p.nextToken()
				args, ok := p.parseArgs("method arguments", "Close the method call with ')'")
				if !ok {
					return nil
				}
				expr = ast.NewMethodCallExpr(expr, name, args, p.spanFrom(expr.Span()))
				continue
			}
			expr = ast.NewFieldExpr(expr, name, p.spanFrom(expr.Span()))

		case lexer.LBRACKET:
			p.nextToken()
			index := p.parseExpression()
			if p.failed() {
				return nil
			}
			if !p.expect(lexer.RBRACKET, "Expected ']' after index", "Close the index with ']'") {
				return nil
			}
			expr = ast.NewIndexExpr(expr, index, p.spanFrom(expr.Span()))

		default:
			return expr
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.curTok

	switch tok.Type {
	case lexer.INT:
		p.nextToken()
		return ast.NewIntLit(tok.Value.(int64), tok.Span)
	case lexer.FLOAT:
		p.nextToken()
		return ast.NewFloatLit(tok.Value.(float64), tok.Span)
	case lexer.STRING:
		p.nextToken()
		return ast.NewStringLit(tok.Value.(string), tok.Span)
	case lexer.TRUE, lexer.FALSE:
		p.nextToken()
		return ast.NewBoolLit(tok.Type == lexer.TRUE, tok.Span)

	case lexer.LPAREN:
		p.nextToken()
		inner := p.parseExpression()
		if p.failed() {
			return nil
		}
		if !p.expect(lexer.RPAREN, "Expected ')' after expression", "Close the parenthesized expression with ')'") {
			return nil
		}
		return inner

	case lexer.LBRACKET:
		p.nextToken()
		elems, ok := parseDelimited(p, delimitedConfig{
			Closing:          lexer.RBRACKET,
			AllowEmpty:       true,
			AllowTrailing:    true,
			MissingCloseMsg:  "Expected ',' or ']' in array literal",
			MissingCloseHint: "Close the array with ']'",
		}, func() (ast.Expr, bool) {
			e := p.parseExpression()
			return e, !p.failed()
		})
		if !ok {
			return nil
		}
		return ast.NewArrayLit(elems, p.spanFrom(tok.Span))

	case lexer.IDENT:
		return p.parseIdentExpr()

	case lexer.EOF:
		p.errorAt(tok.Span, "Unexpected end of input, expected an expression", "")
		return nil
	}

	p.errorAt(tok.Span,
		fmt.Sprintf("Unexpected token '%s' in expression", tok.Literal),
		"Expected a value such as a number, string, variable or '('")
	return nil
}

// parseIdentExpr parses the primaries that start with a name: calls, enum
// variants, struct literals and plain identifiers.
func (p *Parser) parseIdentExpr() ast.Expr {
	id := ast.NewIdent(p.curTok.Literal, p.curTok.Span)

	switch {
	case p.peekTokenIs(lexer.LPAREN):
		p.nextToken()
		p.nextToken()
		args, ok := p.parseArgs("function arguments", "Close the function call with ')'")
		if !ok {
			return nil
		}
		return ast.NewCallExpr(id, args, p.spanFrom(id.Span()))

	case p.peekTokenIs(lexer.DOUBLE_COLON):
		p.nextToken()
		p.nextToken()
		variant := p.expectIdent(
			fmt.Sprintf("Expected variant name after '%s::'", id.Name),
			fmt.Sprintf("Use: %s::Variant", id.Name))
		if variant == nil {
			return nil
		}
		return ast.NewEnumVariantExpr(id, variant, p.spanFrom(id.Span()))

	case p.peekTokenIs(lexer.LBRACE) && p.structLitAhead():
		return p.parseStructLit(id)
	}

	p.nextToken()
	return id
}

// structLitAhead reports whether the `{` in peekTok opens a struct literal:
// it must be followed by a field name or by `}`.
func (p *Parser) structLitAhead() bool {
	third := p.lx.PeekToken()
	return third.Type == lexer.IDENT || third.Type == lexer.RBRACE
}

func (p *Parser) parseStructLit(name *ast.Ident) ast.Expr {
	p.nextToken()
	p.nextToken()

	fields, ok := parseDelimited(p, delimitedConfig{
		Closing:          lexer.RBRACE,
		AllowEmpty:       true,
		AllowTrailing:    true,
		MissingCloseMsg:  fmt.Sprintf("Expected ',' or '}' in %s literal", name.Name),
		MissingCloseHint: fmt.Sprintf("Use: %s { field: value, ... }", name.Name),
	}, func() (*ast.FieldInit, bool) {
		fieldName := p.expectIdent("Expected field name", fmt.Sprintf("Use: %s { field: value }", name.Name))
		if fieldName == nil {
			return nil, false
		}
		if !p.expect(lexer.COLON, fmt.Sprintf("Expected ':' after field '%s'", fieldName.Name), "Use: field: value") {
			return nil, false
		}
		value := p.parseExpression()
		if p.failed() {
			return nil, false
		}
		return ast.NewFieldInit(fieldName, value, diag.Merge(fieldName.Span(), value.Span())), true
	})
	if !ok {
		return nil
	}

	return ast.NewStructLit(name, fields, p.spanFrom(name.Span()))
}

// parseArgs parses call arguments after the opening '('.
func (p *Parser) parseArgs(what, hint string) ([]ast.Expr, bool) {
	return parseDelimited(p, delimitedConfig{
		Closing:          lexer.RPAREN,
		AllowEmpty:       true,
		MissingCloseMsg:  fmt.Sprintf("Expected ',' or ')' in %s", what),
		MissingCloseHint: hint,
	}, func() (ast.Expr, bool) {
		e := p.parseExpression()
		return e, !p.failed()
	})
}
