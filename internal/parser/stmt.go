package parser

import (
	"fmt"

	"github.com/raven-lang/raven/internal/ast"
	"github.com/raven-lang/raven/internal/diag"
	"github.com/raven-lang/raven/internal/lexer"
)

const semicolonHint = "Add ';' at the end of the statement"

// parseStatement dispatches on the current token. Imports and exports are
// only accepted when topLevel is set.
func (p *Parser) parseStatement(topLevel bool) ast.Stmt {
	switch p.curTok.Type {
	case lexer.LET, lexer.CONST:
		return p.parseLetStmt(true)
	case lexer.STRUCT:
		return p.parseStructDecl()
	case lexer.ENUM:
		return p.parseEnumDecl()
	case lexer.IF:
		return p.parseIfStmt()
	case lexer.WHILE:
		return p.parseWhileStmt()
	case lexer.FOR:
		return p.parseForStmt()
	case lexer.FUN:
		return p.parseFunDecl()
	case lexer.RETURN:
		return p.parseReturnStmt()
	case lexer.PRINT:
		return p.parsePrintStmt()
	case lexer.IMPORT, lexer.EXPORT:
		if !topLevel {
			p.errorAt(p.curTok.Span,
				fmt.Sprintf("'%s' is only allowed at the top level", p.curTok.Literal),
				"Move the statement out of the block")
			return nil
		}
		if p.curTokenIs(lexer.IMPORT) {
			return p.parseImportStmt()
		}
		return p.parseExportStmt()
	case lexer.IDENT:
		return p.parseIdentStmt()
	case lexer.EOF:
		p.errorAt(p.curTok.Span, "Unexpected end of input", "")
		return nil
	default:
		p.errorAt(p.curTok.Span,
			fmt.Sprintf("Unexpected token '%s'", p.curTok.Literal),
			"Expected a statement such as let, fun, if, while, for, print or an assignment")
		return nil
	}
}

// parseBlock parses `{ stmts }`.
func (p *Parser) parseBlock(msg, hint string) *ast.BlockStmt {
	start := p.curTok.Span
	if !p.expect(lexer.LBRACE, msg, hint) {
		return nil
	}

	var stmts []ast.Stmt
	for !p.curTokenIs(lexer.RBRACE) {
		if p.curTokenIs(lexer.EOF) {
			p.errorAt(p.curTok.Span, "Expected '}' to close the block", "Add '}' to end the block")
			return nil
		}
		stmt := p.parseStatement(false)
		if p.failed() {
			return nil
		}
		stmts = append(stmts, stmt)
	}
	p.nextToken()

	return ast.NewBlockStmt(stmts, p.spanFrom(start))
}

// parseLetStmt parses let and const declarations. The for loop header passes
// terminated=false and consumes the ';' itself.
func (p *Parser) parseLetStmt(terminated bool) *ast.LetStmt {
	start := p.curTok.Span
	isConst := p.curTokenIs(lexer.CONST)
	kw := p.curTok.Literal
	p.nextToken()

	name := p.expectIdent(
		fmt.Sprintf("Expected variable name after '%s'", kw),
		"Use: let name: type = value;")
	if name == nil {
		return nil
	}

	var typ ast.TypeExpr
	if p.curTokenIs(lexer.COLON) {
		p.nextToken()
		typ = p.parseType()
		if p.failed() {
			return nil
		}
	}

	var value ast.Expr
	switch {
	case p.curTokenIs(lexer.ASSIGN):
		p.nextToken()
		value = p.parseExpression()
		if p.failed() {
			return nil
		}
	case isConst:
		p.errorAt(p.curTok.Span,
			fmt.Sprintf("Constant '%s' must be initialized", name.Name),
			fmt.Sprintf("Use: const %s = value;", name.Name))
		return nil
	case typ == nil:
		p.errorAt(p.curTok.Span,
			fmt.Sprintf("Expected ':' or '=' after variable name '%s'", name.Name),
			fmt.Sprintf("Use: let %s: int = 5; or let %s = 5;", name.Name, name.Name))
		return nil
	default:
		value = p.zeroValue(name, typ)
		if p.failed() {
			return nil
		}
	}

	if terminated && !p.expect(lexer.SEMICOLON, "Expected ';' after variable declaration", semicolonHint) {
		return nil
	}

	return ast.NewLetStmt(name, typ, value, isConst, p.spanFrom(start))
}

func (p *Parser) parseStructDecl() ast.Stmt {
	start := p.curTok.Span
	p.nextToken()

	name := p.expectIdent("Expected struct name after 'struct'", "Use: struct Point { x: int, y: int }")
	if name == nil {
		return nil
	}
	if !p.expect(lexer.LBRACE, "Expected '{' after struct name", "Add '{' to start the struct body") {
		return nil
	}

	fields, ok := parseDelimited(p, delimitedConfig{
		Closing:          lexer.RBRACE,
		AllowEmpty:       true,
		AllowTrailing:    true,
		MissingCloseMsg:  "Expected ',' or '}' in struct declaration",
		MissingCloseHint: "Separate fields with ',' and close the struct with '}'",
	}, func() (*ast.StructField, bool) {
		fieldStart := p.curTok.Span
		fieldName := p.expectIdent("Expected field name", "Use: name: type")
		if fieldName == nil {
			return nil, false
		}
		if !p.expect(lexer.COLON, fmt.Sprintf("Expected ':' after field '%s'", fieldName.Name), "Use: name: type") {
			return nil, false
		}
		typ := p.parseType()
		if p.failed() {
			return nil, false
		}
		return ast.NewStructField(fieldName, typ, p.spanFrom(fieldStart)), true
	})
	if !ok {
		return nil
	}

	return ast.NewStructDecl(name, fields, p.spanFrom(start))
}

func (p *Parser) parseEnumDecl() ast.Stmt {
	start := p.curTok.Span
	p.nextToken()

	name := p.expectIdent("Expected enum name after 'enum'", "Use: enum Color { Red, Green, Blue }")
	if name == nil {
		return nil
	}
	if !p.expect(lexer.LBRACE, "Expected '{' after enum name", "Add '{' to start the enum body") {
		return nil
	}

	variants, ok := parseDelimited(p, delimitedConfig{
		Closing:          lexer.RBRACE,
		AllowEmpty:       true,
		AllowTrailing:    true,
		MissingCloseMsg:  "Expected ',' or '}' in enum declaration",
		MissingCloseHint: "Separate variants with ',' and close the enum with '}'",
	}, func() (*ast.Ident, bool) {
		v := p.expectIdent("Expected variant name", "Variants are bare names: enum Color { Red, Green }")
		return v, v != nil
	})
	if !ok {
		return nil
	}

	return ast.NewEnumDecl(name, variants, p.spanFrom(start))
}

// parseIdentStmt parses a statement that starts with an identifier: an
// assignment or an expression used for its effect.
func (p *Parser) parseIdentStmt() ast.Stmt {
	start := p.curTok.Span
	expr := p.parseExpression()
	if p.failed() {
		return nil
	}

	switch p.curTok.Type {
	case lexer.ASSIGN:
		assign := p.parseAssignRest(start, expr)
		if assign == nil {
			return nil
		}
		if !p.expect(lexer.SEMICOLON, "Expected ';' after assignment", semicolonHint) {
			return nil
		}
		return ast.NewAssignStmt(assign.Target, assign.Value, p.spanFrom(start))

	case lexer.SEMICOLON:
		p.nextToken()
		switch expr.(type) {
		case *ast.CallExpr, *ast.MethodCallExpr:
			return ast.NewCallStmt(expr, p.spanFrom(start))
		}
		return ast.NewExprStmt(expr, p.spanFrom(start))

	default:
		if p.curTokenIs(lexer.EOF) || p.prevTok.Span.Line < p.curTok.Span.Line {
			p.errorAt(p.afterPrev(), "Expected ';' after expression", semicolonHint)
			return nil
		}
		p.errorAt(p.curTok.Span,
			fmt.Sprintf("Unexpected token '%s' after expression", p.curTok.Literal),
			"Expected '=' for an assignment or ';' to end the statement")
		return nil
	}
}

// parseAssignRest parses `= value` after an already parsed target.
func (p *Parser) parseAssignRest(start diag.Span, target ast.Expr) *ast.AssignStmt {
	switch target.(type) {
	case *ast.Ident, *ast.FieldExpr, *ast.IndexExpr:
	default:
		p.errorAt(target.Span(), "Invalid assignment target",
			"Only variables, struct fields and array elements can be assigned")
		return nil
	}

	p.nextToken() // '='
	value := p.parseExpression()
	if p.failed() {
		return nil
	}
	return ast.NewAssignStmt(target, value, p.spanFrom(start))
}

func (p *Parser) parseIfStmt() *ast.IfStmt {
	start := p.curTok.Span
	kw := p.curTok.Literal
	p.nextToken()

	cond := p.parseCondition(kw, "Use: if (condition) { ... }")
	if cond == nil {
		return nil
	}
	then := p.parseBlock(fmt.Sprintf("Expected '{' after %s condition", kw), "Add '{' to start the block")
	if then == nil {
		return nil
	}

	var elseIf *ast.IfStmt
	var els *ast.BlockStmt
	switch p.curTok.Type {
	case lexer.ELSEIF:
		elseIf = p.parseIfStmt()
		if elseIf == nil {
			return nil
		}
	case lexer.ELSE:
		p.nextToken()
		if p.curTokenIs(lexer.IF) {
			// `else if` reads as `elseif`
			elseIf = p.parseIfStmt()
			if elseIf == nil {
				return nil
			}
			break
		}
		els = p.parseBlock("Expected '{' after 'else'", "Use: else { ... }")
		if els == nil {
			return nil
		}
	}

	return ast.NewIfStmt(cond, then, elseIf, els, p.spanFrom(start))
}

// parseCondition parses a parenthesized loop or branch condition.
func (p *Parser) parseCondition(kw, usage string) ast.Expr {
	if !p.expect(lexer.LPAREN, fmt.Sprintf("Expected '(' after '%s'", kw), usage) {
		return nil
	}
	cond := p.parseExpression()
	if p.failed() {
		return nil
	}
	if !p.expect(lexer.RPAREN, "Expected ')' after condition", "Close the condition with ')'") {
		return nil
	}
	return cond
}

func (p *Parser) parseWhileStmt() ast.Stmt {
	start := p.curTok.Span
	p.nextToken()

	cond := p.parseCondition("while", "Use: while (condition) { ... }")
	if cond == nil {
		return nil
	}
	body := p.parseBlock("Expected '{' after while condition", "Use: while (condition) { ... }")
	if body == nil {
		return nil
	}

	return ast.NewWhileStmt(cond, body, p.spanFrom(start))
}

func (p *Parser) parseForStmt() ast.Stmt {
	const usage = "Use: for (let i: int = 0; i < 10; i = i + 1) { ... }"

	start := p.curTok.Span
	p.nextToken()

	if !p.expect(lexer.LPAREN, "Expected '(' after 'for'", usage) {
		return nil
	}
	if !p.curTokenIs(lexer.LET) {
		p.errorAt(p.curTok.Span, "Expected 'let' to start the for loop initializer", usage)
		return nil
	}
	init := p.parseLetStmt(false)
	if init == nil {
		return nil
	}
	if !p.expect(lexer.SEMICOLON, "Expected ';' after for loop initializer", usage) {
		return nil
	}

	cond := p.parseExpression()
	if p.failed() {
		return nil
	}
	if !p.expect(lexer.SEMICOLON, "Expected ';' after for loop condition", usage) {
		return nil
	}

	postStart := p.curTok.Span
	target := p.parseExpression()
	if p.failed() {
		return nil
	}
	if !p.curTokenIs(lexer.ASSIGN) {
		p.errorAt(p.curTok.Span, "Expected '=' in for loop increment", "Use: i = i + 1")
		return nil
	}
	post := p.parseAssignRest(postStart, target)
	if post == nil {
		return nil
	}
	if !p.expect(lexer.RPAREN, "Expected ')' after for loop header", usage) {
		return nil
	}

	body := p.parseBlock("Expected '{' after for loop header", usage)
	if body == nil {
		return nil
	}

	return ast.NewForStmt(init, cond, post, body, p.spanFrom(start))
}

func (p *Parser) parseFunDecl() ast.Stmt {
	start := p.curTok.Span
	p.nextToken()

	name := p.expectIdent("Expected function name after 'fun'", "Use: fun name(param: type) -> type { ... }")
	if name == nil {
		return nil
	}
	if !p.expect(lexer.LPAREN, fmt.Sprintf("Expected '(' after function name '%s'", name.Name), "Add '(' to start the parameter list") {
		return nil
	}

	params, ok := parseDelimited(p, delimitedConfig{
		Closing:          lexer.RPAREN,
		AllowEmpty:       true,
		MissingCloseMsg:  "Expected ',' or ')' in parameter list",
		MissingCloseHint: "Separate parameters with ',' and close the list with ')'",
	}, func() (*ast.Param, bool) {
		paramStart := p.curTok.Span
		paramName := p.expectIdent("Expected parameter name", "Use: name: type")
		if paramName == nil {
			return nil, false
		}
		if !p.expect(lexer.COLON, fmt.Sprintf("Expected ':' after parameter '%s'", paramName.Name), "Parameters need a type: name: type") {
			return nil, false
		}
		typ := p.parseType()
		if p.failed() {
			return nil, false
		}
		return ast.NewParam(paramName, typ, p.spanFrom(paramStart)), true
	})
	if !ok {
		return nil
	}

	var ret ast.TypeExpr
	if p.curTokenIs(lexer.ARROW) {
		p.nextToken()
		ret = p.parseType()
		if p.failed() {
			return nil
		}
	} else {
		ret = ast.NewNamedType("void", p.prevTok.Span)
	}

	body := p.parseBlock("Expected '{' before function body", "Add '{' to start the function body")
	if body == nil {
		return nil
	}

	return ast.NewFunDecl(name, params, ret, body, p.spanFrom(start))
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	start := p.curTok.Span
	p.nextToken()

	var value ast.Expr
	if !p.curTokenIs(lexer.SEMICOLON) {
		value = p.parseExpression()
		if p.failed() {
			return nil
		}
	}
	if !p.expect(lexer.SEMICOLON, "Expected ';' after return", semicolonHint) {
		return nil
	}

	return ast.NewReturnStmt(value, p.spanFrom(start))
}

func (p *Parser) parsePrintStmt() ast.Stmt {
	start := p.curTok.Span
	p.nextToken()

	if !p.expect(lexer.LPAREN, "Expected '(' after 'print'", "Use: print(expression);") {
		return nil
	}
	args, ok := p.parseArgs("print arguments", "Use: print(expression);")
	if !ok {
		return nil
	}
	if !p.expect(lexer.SEMICOLON, "Expected ';' after print statement", semicolonHint) {
		return nil
	}

	return ast.NewPrintStmt(args, p.spanFrom(start))
}

func (p *Parser) parseImportStmt() ast.Stmt {
	const usage = "Use: import \"module\"; or import { name } from \"module\";"

	start := p.curTok.Span
	p.nextToken()

	switch p.curTok.Type {
	case lexer.LBRACE:
		p.nextToken()
		names, ok := parseDelimited(p, delimitedConfig{
			Closing:          lexer.RBRACE,
			AllowTrailing:    true,
			MissingElemMsg:   "Expected at least one name to import",
			MissingCloseMsg:  "Expected ',' or '}' in import list",
			MissingCloseHint: usage,
		}, func() (*ast.Ident, bool) {
			id := p.expectIdent("Expected a name to import", usage)
			return id, id != nil
		})
		if !ok {
			return nil
		}
		if !p.expect(lexer.FROM, "Expected 'from' after import list", usage) {
			return nil
		}
		path, ok := p.parseImportPath(usage)
		if !ok {
			return nil
		}
		if !p.expect(lexer.SEMICOLON, "Expected ';' after import", semicolonHint) {
			return nil
		}
		return ast.NewSelectiveImportStmt(path, names, p.spanFrom(start))

	case lexer.STRING:
		path := p.curTok.Value.(string)
		p.nextToken()
		if !p.expect(lexer.SEMICOLON, "Expected ';' after import", semicolonHint) {
			return nil
		}
		return ast.NewImportStmt(path, nil, p.spanFrom(start))

	case lexer.IDENT:
		id := ast.NewIdent(p.curTok.Literal, p.curTok.Span)
		p.nextToken()
		if p.curTokenIs(lexer.FROM) {
			p.nextToken()
			path, ok := p.parseImportPath(usage)
			if !ok {
				return nil
			}
			if !p.expect(lexer.SEMICOLON, "Expected ';' after import", semicolonHint) {
				return nil
			}
			return ast.NewImportStmt(path, id, p.spanFrom(start))
		}
		if !p.expect(lexer.SEMICOLON, "Expected ';' after import", semicolonHint) {
			return nil
		}
		return ast.NewImportStmt(id.Name, nil, p.spanFrom(start))
	}

	p.errorAt(p.curTok.Span, "Expected module name after 'import'", usage)
	return nil
}

func (p *Parser) parseImportPath(usage string) (string, bool) {
	if !p.curTokenIs(lexer.STRING) {
		p.errorAt(p.curTok.Span, "Expected module path string", usage)
		return "", false
	}
	path := p.curTok.Value.(string)
	p.nextToken()
	return path, true
}

func (p *Parser) parseExportStmt() ast.Stmt {
	start := p.curTok.Span
	p.nextToken()

	var stmt ast.Stmt
	switch p.curTok.Type {
	case lexer.LET, lexer.CONST:
		stmt = p.parseLetStmt(true)
	case lexer.FUN:
		stmt = p.parseFunDecl()
	case lexer.STRUCT:
		stmt = p.parseStructDecl()
	case lexer.ENUM:
		stmt = p.parseEnumDecl()
	default:
		p.errorAt(p.curTok.Span, "Expected 'let' or 'fun' after 'export'",
			"Only let, const, fun, struct and enum declarations can be exported")
		return nil
	}
	if p.failed() {
		return nil
	}

	return ast.NewExportStmt(stmt, p.spanFrom(start))
}
