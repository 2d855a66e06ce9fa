package types

import (
	"github.com/raven-lang/raven/internal/ast"
	"github.com/raven-lang/raven/internal/builtins"
)

func (c *Checker) checkStmt(stmt ast.Stmt) (Type, error) {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		return c.checkBlock(s)
	case *ast.LetStmt:
		return c.checkLet(s)
	case *ast.FunDecl:
		return c.checkFunDecl(s)
	case *ast.StructDecl:
		return c.checkStructDecl(s)
	case *ast.EnumDecl:
		return c.checkEnumDecl(s)
	case *ast.AssignStmt:
		return TypeVoid, c.checkAssign(s)
	case *ast.IfStmt:
		return TypeVoid, c.checkIf(s)
	case *ast.WhileStmt:
		if err := c.checkCondition(s.Cond, "While"); err != nil {
			return nil, err
		}
		_, err := c.checkBlock(s.Body)
		return TypeVoid, err
	case *ast.ForStmt:
		return TypeVoid, c.checkFor(s)
	case *ast.PrintStmt:
		return TypeVoid, c.checkFormatArgs(builtins.Print, s.Args, s.Span())
	case *ast.CallStmt:
		return c.checkExpr(s.Call, nil)
	case *ast.ExprStmt:
		return c.checkExpr(s.Expr, nil)
	case *ast.ReturnStmt:
		return c.checkReturn(s)
	case *ast.ImportStmt:
		return TypeVoid, c.checkImport(s)
	case *ast.SelectiveImportStmt:
		return TypeVoid, c.checkSelectiveImport(s)
	case *ast.ExportStmt:
		if name := ast.DeclaredName(s.Stmt); name != "" {
			c.exported[name] = true
		}
		return c.checkStmt(s.Stmt)
	}
	return nil, c.errorf(stmt.Span(), "Unsupported statement %T", stmt)
}

// checkBlock checks statements in the current scope; blocks do not open a
// scope of their own.
func (c *Checker) checkBlock(block *ast.BlockStmt) (Type, error) {
	var last Type = TypeVoid
	for _, stmt := range block.Stmts {
		t, err := c.checkStmt(stmt)
		if err != nil {
			return nil, err
		}
		last = t
	}
	return last, nil
}

func (c *Checker) checkLet(s *ast.LetStmt) (Type, error) {
	var declared Type
	if s.Type != nil {
		t, err := c.resolveType(s.Type)
		if err != nil {
			return nil, err
		}
		if t == TypeVoid {
			return nil, c.errorf(s.Type.Span(), "Variable '%s' cannot have type void", s.Name.Name)
		}
		declared = t
	}

	valueType, err := c.checkExpr(s.Value, declared)
	if err != nil {
		return nil, err
	}
	if valueType == TypeVoid {
		return nil, c.errorf(s.Value.Span(), "Cannot assign a void value to '%s'", s.Name.Name)
	}
	if declared == nil {
		declared = valueType
	} else if !Assignable(declared, valueType) {
		return nil, c.mismatch(s.Value.Span(), declared, valueType)
	}

	c.scope.Insert(s.Name.Name, &Symbol{
		Name:    s.Name.Name,
		Type:    declared,
		Const:   s.Const,
		DefNode: s,
	})
	return declared, nil
}

func (c *Checker) checkAssign(s *ast.AssignStmt) error {
	root := rootIdent(s.Target)
	if root == nil {
		return c.errorHint(s.Target.Span(), "Assign to a variable, or to a field or index of one",
			"Invalid assignment target")
	}
	sym := c.scope.Lookup(root.Name)
	if sym == nil {
		return c.errorHint(root.Span(), "Declare it first with let",
			"Undefined variable '%s'", root.Name)
	}
	if sym.Const {
		return c.errorf(s.Target.Span(), "Cannot assign to constant '%s'", root.Name)
	}
	if _, isModule := sym.Type.(*Module); isModule && root != s.Target {
		return c.errorf(s.Target.Span(), "Cannot assign to a member of module '%s'", root.Name)
	}

	targetType, err := c.checkExpr(s.Target, nil)
	if err != nil {
		return err
	}
	if idx, ok := s.Target.(*ast.IndexExpr); ok {
		if t, _ := c.checkExpr(idx.Target, nil); t == TypeString {
			return c.errorf(s.Target.Span(), "Strings are immutable; cannot assign to an index")
		}
	}
	valueType, err := c.checkExpr(s.Value, targetType)
	if err != nil {
		return err
	}
	if !Assignable(targetType, valueType) {
		return c.mismatch(s.Value.Span(), targetType, valueType)
	}
	return nil
}

// rootIdent is the variable an assignment target ultimately writes to.
func rootIdent(e ast.Expr) *ast.Ident {
	switch t := e.(type) {
	case *ast.Ident:
		return t
	case *ast.FieldExpr:
		return rootIdent(t.Target)
	case *ast.IndexExpr:
		return rootIdent(t.Target)
	}
	return nil
}

func (c *Checker) checkCondition(cond ast.Expr, what string) error {
	t, err := c.checkExpr(cond, TypeBool)
	if err != nil {
		return err
	}
	if !Assignable(TypeBool, t) {
		return c.errorf(cond.Span(), "%s condition must be bool, found %s", what, t)
	}
	return nil
}

func (c *Checker) checkIf(s *ast.IfStmt) error {
	if err := c.checkCondition(s.Cond, "If"); err != nil {
		return err
	}
	if _, err := c.checkBlock(s.Then); err != nil {
		return err
	}
	switch {
	case s.ElseIf != nil:
		return c.checkIf(s.ElseIf)
	case s.Else != nil:
		_, err := c.checkBlock(s.Else)
		return err
	}
	return nil
}

func (c *Checker) checkFor(s *ast.ForStmt) error {
	if _, err := c.checkLet(s.Init); err != nil {
		return err
	}
	if err := c.checkCondition(s.Cond, "For"); err != nil {
		return err
	}
	if err := c.checkAssign(s.Post); err != nil {
		return err
	}
	_, err := c.checkBlock(s.Body)
	return err
}

func (c *Checker) checkReturn(s *ast.ReturnStmt) (Type, error) {
	if c.current == nil {
		return nil, c.errorf(s.Span(), "Return statement outside of function")
	}
	want := c.current.Return

	if s.Value == nil {
		if want != TypeVoid {
			return nil, c.errorf(s.Span(), "Function '%s' must return a value of type %s", c.current.Name, want)
		}
		return TypeVoid, nil
	}

	got, err := c.checkExpr(s.Value, want)
	if err != nil {
		return nil, err
	}
	if want == TypeVoid {
		return nil, c.errorf(s.Value.Span(), "Function '%s' returns void but a value of type %s was returned", c.current.Name, got)
	}
	if !Assignable(want, got) {
		return nil, c.errorf(s.Value.Span(), "Return type mismatch in '%s': expected %s, found %s", c.current.Name, want, got)
	}
	return got, nil
}
