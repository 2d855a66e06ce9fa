package interp

import (
	"github.com/raven-lang/raven/internal/ast"
)

func (i *Interpreter) exec(stmt ast.Stmt) (Value, error) {
	if i.ret != nil {
		return *i.ret, nil
	}

	switch s := stmt.(type) {
	case *ast.BlockStmt:
		return i.execBlock(s)
	case *ast.LetStmt:
		return VoidValue{}, i.execLet(s)
	case *ast.FunDecl:
		i.cur.funcs[s.Name.Name] = &function{decl: s, unit: i.cur}
		return VoidValue{}, nil
	case *ast.StructDecl:
		i.cur.structs[s.Name.Name] = s
		return VoidValue{}, nil
	case *ast.EnumDecl:
		i.cur.enums[s.Name.Name] = s
		return VoidValue{}, nil
	case *ast.AssignStmt:
		return VoidValue{}, i.execAssign(s)
	case *ast.IfStmt:
		return i.execIf(s)
	case *ast.WhileStmt:
		return VoidValue{}, i.execWhile(s)
	case *ast.ForStmt:
		return VoidValue{}, i.execFor(s)
	case *ast.PrintStmt:
		return VoidValue{}, i.print(s.Args, s.Span())
	case *ast.CallStmt:
		return i.eval(s.Call)
	case *ast.ExprStmt:
		return i.eval(s.Expr)
	case *ast.ReturnStmt:
		var v Value = VoidValue{}
		if s.Value != nil {
			var err error
			if v, err = i.eval(s.Value); err != nil {
				return nil, err
			}
		}
		i.ret = &v
		return v, nil
	case *ast.ImportStmt:
		return VoidValue{}, i.execImport(s)
	case *ast.SelectiveImportStmt:
		return VoidValue{}, i.execSelectiveImport(s)
	case *ast.ExportStmt:
		if name := ast.DeclaredName(s.Stmt); name != "" {
			i.cur.exported[name] = true
		}
		return i.exec(s.Stmt)
	}
	return nil, i.errorf(stmt.Span(), "Unsupported statement %T", stmt)
}

// execBlock runs statements in the current frame until one sets the pending
// return value.
func (i *Interpreter) execBlock(block *ast.BlockStmt) (Value, error) {
	var last Value = VoidValue{}
	for _, stmt := range block.Stmts {
		v, err := i.exec(stmt)
		if err != nil {
			return nil, err
		}
		last = v
		if i.ret != nil {
			break
		}
	}
	return last, nil
}

func (i *Interpreter) execLet(s *ast.LetStmt) error {
	v, err := i.eval(s.Value)
	if err != nil {
		return err
	}
	i.env.Define(s.Name.Name, Copy(v))
	return nil
}

func (i *Interpreter) execAssign(s *ast.AssignStmt) error {
	target, err := i.lvalueOf(s.Target)
	if err != nil {
		return err
	}
	v, err := i.eval(s.Value)
	if err != nil {
		return err
	}
	return target.set(Copy(v))
}

func (i *Interpreter) condition(cond ast.Expr) (bool, error) {
	v, err := i.eval(cond)
	if err != nil {
		return false, err
	}
	b, ok := v.(BoolValue)
	if !ok {
		return false, i.errorf(cond.Span(), "Condition must be bool, found %s", TypeName(v))
	}
	return b.Val, nil
}

func (i *Interpreter) execIf(s *ast.IfStmt) (Value, error) {
	ok, err := i.condition(s.Cond)
	if err != nil {
		return nil, err
	}
	switch {
	case ok:
		return i.execBlock(s.Then)
	case s.ElseIf != nil:
		return i.execIf(s.ElseIf)
	case s.Else != nil:
		return i.execBlock(s.Else)
	}
	return VoidValue{}, nil
}

func (i *Interpreter) execWhile(s *ast.WhileStmt) error {
	for {
		ok, err := i.condition(s.Cond)
		if err != nil || !ok {
			return err
		}
		if _, err := i.execBlock(s.Body); err != nil {
			return err
		}
		if i.ret != nil {
			return nil
		}
	}
}

func (i *Interpreter) execFor(s *ast.ForStmt) error {
	if err := i.execLet(s.Init); err != nil {
		return err
	}
	for {
		ok, err := i.condition(s.Cond)
		if err != nil || !ok {
			return err
		}
		if _, err := i.execBlock(s.Body); err != nil {
			return err
		}
		// a return inside the body leaves the loop without the increment
		if i.ret != nil {
			return nil
		}
		if err := i.execAssign(s.Post); err != nil {
			return err
		}
	}
}
