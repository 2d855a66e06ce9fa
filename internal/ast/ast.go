package ast

import "github.com/raven-lang/raven/internal/diag"

// Node represents any AST node with an associated source span.
type Node interface {
	Span() diag.Span
}

// Expr represents an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt represents a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// TypeExpr represents a type annotation expression.
type TypeExpr interface {
	Node
	typeNode()
	String() string
}

// Ident represents an identifier.
type Ident struct {
	Name string
	span diag.Span
}

// Span returns the identifier span.
func (i *Ident) Span() diag.Span { return i.span }

// NewIdent constructs an identifier node.
func NewIdent(name string, span diag.Span) *Ident {
	return &Ident{Name: name, span: span}
}

func (*Ident) exprNode() {}

// ---------------------------------------------------------------------------
// Types

// NamedType names a primitive (int, float, bool, string, void) or a declared
// struct/enum.
type NamedType struct {
	Name string
	span diag.Span
}

// Span returns the type span.
func (t *NamedType) Span() diag.Span { return t.span }

// NewNamedType constructs a named type node.
func NewNamedType(name string, span diag.Span) *NamedType {
	return &NamedType{Name: name, span: span}
}

func (t *NamedType) String() string { return t.Name }
func (*NamedType) typeNode()        {}

// ArrayType represents `elem[]`.
type ArrayType struct {
	Elem TypeExpr
	span diag.Span
}

// Span returns the type span.
func (t *ArrayType) Span() diag.Span { return t.span }

// NewArrayType constructs an array type node.
func NewArrayType(elem TypeExpr, span diag.Span) *ArrayType {
	return &ArrayType{Elem: elem, span: span}
}

func (t *ArrayType) String() string { return t.Elem.String() + "[]" }
func (*ArrayType) typeNode()        {}

// ---------------------------------------------------------------------------
// Statements

// BlockStmt is an ordered statement sequence. A whole program parses to one.
type BlockStmt struct {
	Stmts []Stmt
	span  diag.Span
}

// Span returns the block span.
func (b *BlockStmt) Span() diag.Span { return b.span }

// NewBlockStmt constructs a block node.
func NewBlockStmt(stmts []Stmt, span diag.Span) *BlockStmt {
	return &BlockStmt{Stmts: stmts, span: span}
}

func (*BlockStmt) stmtNode() {}

// LetStmt declares a variable. Type is nil for `let x = expr;`.
type LetStmt struct {
	Name  *Ident
	Type  TypeExpr
	Value Expr
	Const bool
	span  diag.Span
}

// Span returns the statement span.
func (s *LetStmt) Span() diag.Span { return s.span }

// NewLetStmt constructs a variable declaration.
func NewLetStmt(name *Ident, typ TypeExpr, value Expr, isConst bool, span diag.Span) *LetStmt {
	return &LetStmt{Name: name, Type: typ, Value: value, Const: isConst, span: span}
}

func (*LetStmt) stmtNode() {}

// Param represents a function parameter.
type Param struct {
	Name *Ident
	Type TypeExpr
	span diag.Span
}

// Span returns the parameter span.
func (p *Param) Span() diag.Span { return p.span }

// NewParam constructs a parameter node.
func NewParam(name *Ident, typ TypeExpr, span diag.Span) *Param {
	return &Param{Name: name, Type: typ, span: span}
}

// FunDecl represents a function declaration.
type FunDecl struct {
	Name       *Ident
	Params     []*Param
	ReturnType TypeExpr
	Body       *BlockStmt
	span       diag.Span
}

// Span returns the declaration span.
func (d *FunDecl) Span() diag.Span { return d.span }

// NewFunDecl constructs a function declaration node.
func NewFunDecl(name *Ident, params []*Param, returnType TypeExpr, body *BlockStmt, span diag.Span) *FunDecl {
	return &FunDecl{
		Name:       name,
		Params:     params,
		ReturnType: returnType,
		Body:       body,
		span:       span,
	}
}

func (*FunDecl) stmtNode() {}

// StructField represents a `name: type` entry of a struct declaration.
type StructField struct {
	Name *Ident
	Type TypeExpr
	span diag.Span
}

// Span returns the field span.
func (f *StructField) Span() diag.Span { return f.span }

// NewStructField constructs a struct field node.
func NewStructField(name *Ident, typ TypeExpr, span diag.Span) *StructField {
	return &StructField{Name: name, Type: typ, span: span}
}

// StructDecl represents a struct declaration.
type StructDecl struct {
	Name   *Ident
	Fields []*StructField
	span   diag.Span
}

// Span returns the declaration span.
func (d *StructDecl) Span() diag.Span { return d.span }

// NewStructDecl constructs a struct declaration node.
func NewStructDecl(name *Ident, fields []*StructField, span diag.Span) *StructDecl {
	return &StructDecl{Name: name, Fields: fields, span: span}
}

func (*StructDecl) stmtNode() {}

// EnumDecl represents an enum declaration with ordered variant names.
type EnumDecl struct {
	Name     *Ident
	Variants []*Ident
	span     diag.Span
}

// Span returns the declaration span.
func (d *EnumDecl) Span() diag.Span { return d.span }

// NewEnumDecl constructs an enum declaration node.
func NewEnumDecl(name *Ident, variants []*Ident, span diag.Span) *EnumDecl {
	return &EnumDecl{Name: name, Variants: variants, span: span}
}

func (*EnumDecl) stmtNode() {}

// ForStmt represents `for (init; cond; post) body`.
type ForStmt struct {
	Init *LetStmt
	Cond Expr
	Post *AssignStmt
	Body *BlockStmt
	span diag.Span
}

// Span returns the statement span.
func (s *ForStmt) Span() diag.Span { return s.span }

// NewForStmt constructs a for loop.
func NewForStmt(init *LetStmt, cond Expr, post *AssignStmt, body *BlockStmt, span diag.Span) *ForStmt {
	return &ForStmt{Init: init, Cond: cond, Post: post, Body: body, span: span}
}

func (*ForStmt) stmtNode() {}

// WhileStmt represents `while (cond) body`.
type WhileStmt struct {
	Cond Expr
	Body *BlockStmt
	span diag.Span
}

// Span returns the statement span.
func (s *WhileStmt) Span() diag.Span { return s.span }

// NewWhileStmt constructs a while loop.
func NewWhileStmt(cond Expr, body *BlockStmt, span diag.Span) *WhileStmt {
	return &WhileStmt{Cond: cond, Body: body, span: span}
}

func (*WhileStmt) stmtNode() {}

// AssignStmt assigns to an identifier, field access or array index.
type AssignStmt struct {
	Target Expr
	Value  Expr
	span   diag.Span
}

// Span returns the statement span.
func (s *AssignStmt) Span() diag.Span { return s.span }

// NewAssignStmt constructs an assignment.
func NewAssignStmt(target, value Expr, span diag.Span) *AssignStmt {
	return &AssignStmt{Target: target, Value: value, span: span}
}

func (*AssignStmt) stmtNode() {}

// IfStmt is one link of an if/elseif/else chain. At most one of ElseIf and
// Else is set.
type IfStmt struct {
	Cond   Expr
	Then   *BlockStmt
	ElseIf *IfStmt
	Else   *BlockStmt
	span   diag.Span
}

// Span returns the statement span.
func (s *IfStmt) Span() diag.Span { return s.span }

// NewIfStmt constructs an if statement.
func NewIfStmt(cond Expr, then *BlockStmt, elseIf *IfStmt, els *BlockStmt, span diag.Span) *IfStmt {
	return &IfStmt{Cond: cond, Then: then, ElseIf: elseIf, Else: els, span: span}
}

func (*IfStmt) stmtNode() {}

// PrintStmt represents `print(args...);`.
type PrintStmt struct {
	Args []Expr
	span diag.Span
}

// Span returns the statement span.
func (s *PrintStmt) Span() diag.Span { return s.span }

// NewPrintStmt constructs a print statement.
func NewPrintStmt(args []Expr, span diag.Span) *PrintStmt {
	return &PrintStmt{Args: args, span: span}
}

func (*PrintStmt) stmtNode() {}

// CallStmt is a function or method call used for its effect. Call is a
// *CallExpr or *MethodCallExpr.
type CallStmt struct {
	Call Expr
	span diag.Span
}

// Span returns the statement span.
func (s *CallStmt) Span() diag.Span { return s.span }

// NewCallStmt constructs a call statement.
func NewCallStmt(call Expr, span diag.Span) *CallStmt {
	return &CallStmt{Call: call, span: span}
}

func (*CallStmt) stmtNode() {}

// ExprStmt is any other expression terminated by `;`.
type ExprStmt struct {
	Expr Expr
	span diag.Span
}

// Span returns the statement span.
func (s *ExprStmt) Span() diag.Span { return s.span }

// NewExprStmt constructs an expression statement.
func NewExprStmt(expr Expr, span diag.Span) *ExprStmt {
	return &ExprStmt{Expr: expr, span: span}
}

func (*ExprStmt) stmtNode() {}

// ReturnStmt represents `return [expr];`. Value is nil for a bare return.
type ReturnStmt struct {
	Value Expr
	span  diag.Span
}

// Span returns the statement span.
func (s *ReturnStmt) Span() diag.Span { return s.span }

// NewReturnStmt constructs a return statement.
func NewReturnStmt(value Expr, span diag.Span) *ReturnStmt {
	return &ReturnStmt{Value: value, span: span}
}

func (*ReturnStmt) stmtNode() {}

// ImportStmt imports a whole module, optionally under an alias.
type ImportStmt struct {
	Path  string
	Alias *Ident
	span  diag.Span
}

// Span returns the statement span.
func (s *ImportStmt) Span() diag.Span { return s.span }

// NewImportStmt constructs an import statement.
func NewImportStmt(path string, alias *Ident, span diag.Span) *ImportStmt {
	return &ImportStmt{Path: path, Alias: alias, span: span}
}

func (*ImportStmt) stmtNode() {}

// SelectiveImportStmt represents `import { a, b } from "path";`.
type SelectiveImportStmt struct {
	Path  string
	Names []*Ident
	span  diag.Span
}

// Span returns the statement span.
func (s *SelectiveImportStmt) Span() diag.Span { return s.span }

// NewSelectiveImportStmt constructs a selective import.
func NewSelectiveImportStmt(path string, names []*Ident, span diag.Span) *SelectiveImportStmt {
	return &SelectiveImportStmt{Path: path, Names: names, span: span}
}

func (*SelectiveImportStmt) stmtNode() {}

// ExportStmt marks the wrapped declaration as visible to importers.
type ExportStmt struct {
	Stmt Stmt
	span diag.Span
}

// Span returns the statement span.
func (s *ExportStmt) Span() diag.Span { return s.span }

// NewExportStmt constructs an export statement.
func NewExportStmt(stmt Stmt, span diag.Span) *ExportStmt {
	return &ExportStmt{Stmt: stmt, span: span}
}

func (*ExportStmt) stmtNode() {}

// DeclaredName returns the name introduced by a declaration statement, or ""
// for statements that declare nothing.
func DeclaredName(stmt Stmt) string {
	switch s := stmt.(type) {
	case *LetStmt:
		return s.Name.Name
	case *FunDecl:
		return s.Name.Name
	case *StructDecl:
		return s.Name.Name
	case *EnumDecl:
		return s.Name.Name
	case *ExportStmt:
		return DeclaredName(s.Stmt)
	}
	return ""
}

// ---------------------------------------------------------------------------
// Expressions

// IntLit represents an integer literal.
type IntLit struct {
	Value int64
	span  diag.Span
}

// Span returns the literal span.
func (e *IntLit) Span() diag.Span { return e.span }

// NewIntLit constructs an integer literal.
func NewIntLit(value int64, span diag.Span) *IntLit {
	return &IntLit{Value: value, span: span}
}

func (*IntLit) exprNode() {}

// FloatLit represents a float literal.
type FloatLit struct {
	Value float64
	span  diag.Span
}

// Span returns the literal span.
func (e *FloatLit) Span() diag.Span { return e.span }

// NewFloatLit constructs a float literal.
func NewFloatLit(value float64, span diag.Span) *FloatLit {
	return &FloatLit{Value: value, span: span}
}

func (*FloatLit) exprNode() {}

// BoolLit represents true or false.
type BoolLit struct {
	Value bool
	span  diag.Span
}

// Span returns the literal span.
func (e *BoolLit) Span() diag.Span { return e.span }

// NewBoolLit constructs a boolean literal.
func NewBoolLit(value bool, span diag.Span) *BoolLit {
	return &BoolLit{Value: value, span: span}
}

func (*BoolLit) exprNode() {}

// StringLit represents a string literal with escapes already decoded.
type StringLit struct {
	Value string
	span  diag.Span
}

// Span returns the literal span.
func (e *StringLit) Span() diag.Span { return e.span }

// NewStringLit constructs a string literal.
func NewStringLit(value string, span diag.Span) *StringLit {
	return &StringLit{Value: value, span: span}
}

func (*StringLit) exprNode() {}

// ArrayLit represents `[a, b, c]`.
type ArrayLit struct {
	Elems []Expr
	span  diag.Span
}

// Span returns the literal span.
func (e *ArrayLit) Span() diag.Span { return e.span }

// NewArrayLit constructs an array literal.
func NewArrayLit(elems []Expr, span diag.Span) *ArrayLit {
	return &ArrayLit{Elems: elems, span: span}
}

func (*ArrayLit) exprNode() {}

// UnaryExpr represents `-x`, `!x` and `not x`.
type UnaryExpr struct {
	Op      Operator
	Operand Expr
	span    diag.Span
}

// Span returns the expression span.
func (e *UnaryExpr) Span() diag.Span { return e.span }

// NewUnaryExpr constructs a unary expression.
func NewUnaryExpr(op Operator, operand Expr, span diag.Span) *UnaryExpr {
	return &UnaryExpr{Op: op, Operand: operand, span: span}
}

func (*UnaryExpr) exprNode() {}

// BinaryExpr represents `left op right`.
type BinaryExpr struct {
	Op    Operator
	Left  Expr
	Right Expr
	span  diag.Span
}

// Span returns the expression span.
func (e *BinaryExpr) Span() diag.Span { return e.span }

// NewBinaryExpr constructs a binary expression.
func NewBinaryExpr(op Operator, left, right Expr, span diag.Span) *BinaryExpr {
	return &BinaryExpr{Op: op, Left: left, Right: right, span: span}
}

func (*BinaryExpr) exprNode() {}

// CallExpr represents a call of a named function or builtin.
type CallExpr struct {
	Callee *Ident
	Args   []Expr
	span   diag.Span
}

// Span returns the expression span.
func (e *CallExpr) Span() diag.Span { return e.span }

// NewCallExpr constructs a call expression.
func NewCallExpr(callee *Ident, args []Expr, span diag.Span) *CallExpr {
	return &CallExpr{Callee: callee, Args: args, span: span}
}

func (*CallExpr) exprNode() {}

// IndexExpr represents `target[index]`.
type IndexExpr struct {
	Target Expr
	Index  Expr
	span   diag.Span
}

// Span returns the expression span.
func (e *IndexExpr) Span() diag.Span { return e.span }

// NewIndexExpr constructs an index expression.
func NewIndexExpr(target, index Expr, span diag.Span) *IndexExpr {
	return &IndexExpr{Target: target, Index: index, span: span}
}

func (*IndexExpr) exprNode() {}

// MethodCallExpr represents `receiver.method(args)`.
type MethodCallExpr struct {
	Receiver Expr
	Method   *Ident
	Args     []Expr
	span     diag.Span
}

// Span returns the expression span.
func (e *MethodCallExpr) Span() diag.Span { return e.span }

// NewMethodCallExpr constructs a method call.
func NewMethodCallExpr(receiver Expr, method *Ident, args []Expr, span diag.Span) *MethodCallExpr {
	return &MethodCallExpr{Receiver: receiver, Method: method, Args: args, span: span}
}

func (*MethodCallExpr) exprNode() {}

// FieldExpr represents `target.field`.
type FieldExpr struct {
	Target Expr
	Field  *Ident
	span   diag.Span
}

// Span returns the expression span.
func (e *FieldExpr) Span() diag.Span { return e.span }

// NewFieldExpr constructs a field access.
func NewFieldExpr(target Expr, field *Ident, span diag.Span) *FieldExpr {
	return &FieldExpr{Target: target, Field: field, span: span}
}

func (*FieldExpr) exprNode() {}

// FieldInit is one `name: value` pair of a struct literal.
type FieldInit struct {
	Name  *Ident
	Value Expr
	span  diag.Span
}

// Span returns the field initializer span.
func (f *FieldInit) Span() diag.Span { return f.span }

// NewFieldInit constructs a struct literal field.
func NewFieldInit(name *Ident, value Expr, span diag.Span) *FieldInit {
	return &FieldInit{Name: name, Value: value, span: span}
}

// StructLit represents `Name { field: value, ... }`.
type StructLit struct {
	Name   *Ident
	Fields []*FieldInit
	span   diag.Span
}

// Span returns the literal span.
func (e *StructLit) Span() diag.Span { return e.span }

// NewStructLit constructs a struct literal.
func NewStructLit(name *Ident, fields []*FieldInit, span diag.Span) *StructLit {
	return &StructLit{Name: name, Fields: fields, span: span}
}

func (*StructLit) exprNode() {}

// EnumVariantExpr represents `Enum::Variant`.
type EnumVariantExpr struct {
	Enum    *Ident
	Variant *Ident
	span    diag.Span
}

// Span returns the expression span.
func (e *EnumVariantExpr) Span() diag.Span { return e.span }

// NewEnumVariantExpr constructs an enum variant reference.
func NewEnumVariantExpr(enum, variant *Ident, span diag.Span) *EnumVariantExpr {
	return &EnumVariantExpr{Enum: enum, Variant: variant, span: span}
}

func (*EnumVariantExpr) exprNode() {}
