package ast

// Walk traverses the AST in depth-first order, calling fn for each node.
// If fn returns false, the children of that node are skipped.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}

	switch n := node.(type) {
	case *BlockStmt:
		for _, stmt := range n.Stmts {
			Walk(stmt, fn)
		}

	case *LetStmt:
		Walk(n.Name, fn)
		if n.Type != nil {
			Walk(n.Type, fn)
		}
		if n.Value != nil {
			Walk(n.Value, fn)
		}

	case *FunDecl:
		Walk(n.Name, fn)
		for _, param := range n.Params {
			Walk(param, fn)
		}
		if n.ReturnType != nil {
			Walk(n.ReturnType, fn)
		}
		if n.Body != nil {
			Walk(n.Body, fn)
		}

	case *Param:
		Walk(n.Name, fn)
		Walk(n.Type, fn)

	case *StructDecl:
		Walk(n.Name, fn)
		for _, field := range n.Fields {
			Walk(field, fn)
		}

	case *StructField:
		Walk(n.Name, fn)
		Walk(n.Type, fn)

	case *EnumDecl:
		Walk(n.Name, fn)
		for _, variant := range n.Variants {
			Walk(variant, fn)
		}

	case *ForStmt:
		if n.Init != nil {
			Walk(n.Init, fn)
		}
		Walk(n.Cond, fn)
		if n.Post != nil {
			Walk(n.Post, fn)
		}
		Walk(n.Body, fn)

	case *WhileStmt:
		Walk(n.Cond, fn)
		Walk(n.Body, fn)

	case *AssignStmt:
		Walk(n.Target, fn)
		Walk(n.Value, fn)

	case *IfStmt:
		Walk(n.Cond, fn)
		Walk(n.Then, fn)
		if n.ElseIf != nil {
			Walk(n.ElseIf, fn)
		}
		if n.Else != nil {
			Walk(n.Else, fn)
		}

	case *PrintStmt:
		for _, arg := range n.Args {
			Walk(arg, fn)
		}

	case *CallStmt:
		Walk(n.Call, fn)

	case *ExprStmt:
		Walk(n.Expr, fn)

	case *ReturnStmt:
		if n.Value != nil {
			Walk(n.Value, fn)
		}

	case *ImportStmt:
		if n.Alias != nil {
			Walk(n.Alias, fn)
		}

	case *SelectiveImportStmt:
		for _, name := range n.Names {
			Walk(name, fn)
		}

	case *ExportStmt:
		Walk(n.Stmt, fn)

	case *ArrayType:
		Walk(n.Elem, fn)

	case *ArrayLit:
		for _, elem := range n.Elems {
			Walk(elem, fn)
		}

	case *UnaryExpr:
		Walk(n.Operand, fn)

	case *BinaryExpr:
		Walk(n.Left, fn)
		Walk(n.Right, fn)

	case *CallExpr:
		Walk(n.Callee, fn)
		for _, arg := range n.Args {
			Walk(arg, fn)
		}

	case *IndexExpr:
		Walk(n.Target, fn)
		Walk(n.Index, fn)

	case *MethodCallExpr:
		Walk(n.Receiver, fn)
		Walk(n.Method, fn)
		for _, arg := range n.Args {
			Walk(arg, fn)
		}

	case *FieldExpr:
		Walk(n.Target, fn)
		Walk(n.Field, fn)

	case *StructLit:
		Walk(n.Name, fn)
		for _, field := range n.Fields {
			Walk(field, fn)
		}

	case *FieldInit:
		Walk(n.Name, fn)
		Walk(n.Value, fn)

	case *EnumVariantExpr:
		Walk(n.Enum, fn)
		Walk(n.Variant, fn)
	}
}
