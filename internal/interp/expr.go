package interp

import (
	"math"

	"github.com/raven-lang/raven/internal/ast"
	"github.com/raven-lang/raven/internal/builtins"
)

func (i *Interpreter) eval(e ast.Expr) (Value, error) {
	switch ex := e.(type) {
	case *ast.IntLit:
		return IntValue{Val: ex.Value}, nil
	case *ast.FloatLit:
		return FloatValue{Val: ex.Value}, nil
	case *ast.BoolLit:
		return BoolValue{Val: ex.Value}, nil
	case *ast.StringLit:
		return StringValue{Val: ex.Value}, nil
	case *ast.Ident:
		v, ok := i.env.Get(ex.Name)
		if !ok {
			return nil, i.errorf(ex.Span(), "Undefined variable '%s'", ex.Name)
		}
		return v, nil
	case *ast.ArrayLit:
		elems := make([]Value, 0, len(ex.Elems))
		for _, el := range ex.Elems {
			v, err := i.eval(el)
			if err != nil {
				return nil, err
			}
			elems = append(elems, Copy(v))
		}
		return &ArrayValue{Elements: elems}, nil
	case *ast.UnaryExpr:
		return i.evalUnary(ex)
	case *ast.BinaryExpr:
		return i.evalBinary(ex)
	case *ast.CallExpr:
		return i.evalCall(ex)
	case *ast.MethodCallExpr:
		return i.evalMethodCall(ex)
	case *ast.FieldExpr:
		return i.evalField(ex)
	case *ast.IndexExpr:
		return i.evalIndexExpr(ex)
	case *ast.StructLit:
		return i.evalStructLit(ex)
	case *ast.EnumVariantExpr:
		return i.evalEnumVariant(ex)
	}
	return nil, i.errorf(e.Span(), "Unsupported expression %T", e)
}

func (i *Interpreter) evalUnary(u *ast.UnaryExpr) (Value, error) {
	v, err := i.eval(u.Operand)
	if err != nil {
		return nil, err
	}
	switch u.Op {
	case ast.OpNeg:
		switch n := v.(type) {
		case IntValue:
			return IntValue{Val: -n.Val}, nil
		case FloatValue:
			return FloatValue{Val: -n.Val}, nil
		}
	case ast.OpNot:
		if b, ok := v.(BoolValue); ok {
			return BoolValue{Val: !b.Val}, nil
		}
	}
	return nil, i.errorf(u.Span(), "Unary '%s' cannot be applied to %s", u.Op, TypeName(v))
}

func (i *Interpreter) evalBinary(b *ast.BinaryExpr) (Value, error) {
	left, err := i.eval(b.Left)
	if err != nil {
		return nil, err
	}

	if b.Op.IsLogical() {
		l, ok := left.(BoolValue)
		if !ok {
			return nil, i.errorf(b.Left.Span(), "Operator '%s' requires bool operands, found %s", b.Op, TypeName(left))
		}
		if (b.Op == ast.OpAnd && !l.Val) || (b.Op == ast.OpOr && l.Val) {
			return l, nil
		}
		right, err := i.eval(b.Right)
		if err != nil {
			return nil, err
		}
		r, ok := right.(BoolValue)
		if !ok {
			return nil, i.errorf(b.Right.Span(), "Operator '%s' requires bool operands, found %s", b.Op, TypeName(right))
		}
		return r, nil
	}

	right, err := i.eval(b.Right)
	if err != nil {
		return nil, err
	}

	switch {
	case b.Op.IsArithmetic():
		return i.arithmetic(b, left, right)
	case b.Op == ast.OpEq:
		return BoolValue{Val: Equal(left, right)}, nil
	case b.Op == ast.OpNotEq:
		return BoolValue{Val: !Equal(left, right)}, nil
	case b.Op.IsComparison():
		return i.compare(b, left, right)
	}
	return nil, i.errorf(b.Span(), "Unsupported operator %s", b.Op)
}

func (i *Interpreter) arithmetic(b *ast.BinaryExpr, left, right Value) (Value, error) {
	_, ls := left.(StringValue)
	_, rs := right.(StringValue)
	if b.Op == ast.OpAdd && (ls || rs) {
		return StringValue{Val: Format(left) + Format(right)}, nil
	}

	if l, ok := left.(IntValue); ok {
		if r, ok := right.(IntValue); ok {
			return i.intArithmetic(b, l.Val, r.Val)
		}
	}
	lf, lok := toFloat(left)
	rf, rok := toFloat(right)
	if !lok || !rok {
		return nil, i.errorf(b.Span(), "Operator '%s' cannot be applied to %s and %s", b.Op, TypeName(left), TypeName(right))
	}

	switch b.Op {
	case ast.OpAdd:
		return FloatValue{Val: lf + rf}, nil
	case ast.OpSub:
		return FloatValue{Val: lf - rf}, nil
	case ast.OpMul:
		return FloatValue{Val: lf * rf}, nil
	case ast.OpDiv:
		if rf == 0 {
			return nil, i.errorf(b.Span(), "Division by zero")
		}
		return FloatValue{Val: lf / rf}, nil
	case ast.OpMod:
		if rf == 0 {
			return nil, i.errorf(b.Span(), "Modulo by zero")
		}
		return FloatValue{Val: math.Mod(lf, rf)}, nil
	}
	return nil, i.errorf(b.Span(), "Unsupported operator %s", b.Op)
}

func (i *Interpreter) intArithmetic(b *ast.BinaryExpr, l, r int64) (Value, error) {
	switch b.Op {
	case ast.OpAdd:
		return IntValue{Val: l + r}, nil
	case ast.OpSub:
		return IntValue{Val: l - r}, nil
	case ast.OpMul:
		return IntValue{Val: l * r}, nil
	case ast.OpDiv:
		if r == 0 {
			return nil, i.errorf(b.Span(), "Division by zero")
		}
		return IntValue{Val: l / r}, nil
	case ast.OpMod:
		if r == 0 {
			return nil, i.errorf(b.Span(), "Modulo by zero")
		}
		return IntValue{Val: l % r}, nil
	}
	return nil, i.errorf(b.Span(), "Unsupported operator %s", b.Op)
}

func (i *Interpreter) compare(b *ast.BinaryExpr, left, right Value) (Value, error) {
	var cmp int
	ls, lok := left.(StringValue)
	rs, rok := right.(StringValue)
	switch {
	case lok && rok:
		switch {
		case ls.Val < rs.Val:
			cmp = -1
		case ls.Val > rs.Val:
			cmp = 1
		}
	default:
		li, lInt := left.(IntValue)
		ri, rInt := right.(IntValue)
		if lInt && rInt {
			switch {
			case li.Val < ri.Val:
				cmp = -1
			case li.Val > ri.Val:
				cmp = 1
			}
			break
		}
		lf, lok := toFloat(left)
		rf, rok := toFloat(right)
		if !lok || !rok {
			return nil, i.errorf(b.Span(), "Operator '%s' cannot be applied to %s and %s", b.Op, TypeName(left), TypeName(right))
		}
		switch {
		case lf < rf:
			cmp = -1
		case lf > rf:
			cmp = 1
		case lf != rf: // NaN
			return BoolValue{Val: false}, nil
		}
	}

	switch b.Op {
	case ast.OpLt:
		return BoolValue{Val: cmp < 0}, nil
	case ast.OpGt:
		return BoolValue{Val: cmp > 0}, nil
	case ast.OpLe:
		return BoolValue{Val: cmp <= 0}, nil
	case ast.OpGe:
		return BoolValue{Val: cmp >= 0}, nil
	}
	return nil, i.errorf(b.Span(), "Unsupported operator %s", b.Op)
}

func (i *Interpreter) evalArgs(args []ast.Expr) ([]Value, error) {
	out := make([]Value, 0, len(args))
	for _, a := range args {
		v, err := i.eval(a)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (i *Interpreter) evalCall(call *ast.CallExpr) (Value, error) {
	name := call.Callee.Name
	if fn, ok := i.cur.funcs[name]; ok {
		args, err := i.evalArgs(call.Args)
		if err != nil {
			return nil, err
		}
		return i.call(fn, args, call.Span())
	}
	if b, ok := builtins.LookupFunc(name); ok {
		return i.callBuiltin(b, call.Args, call.Span())
	}
	return nil, i.errorf(call.Callee.Span(), "Undefined function '%s'", name)
}

func (i *Interpreter) evalField(f *ast.FieldExpr) (Value, error) {
	target, err := i.eval(f.Target)
	if err != nil {
		return nil, err
	}
	name := f.Field.Name

	switch t := target.(type) {
	case *StructValue:
		v, ok := t.Get(name)
		if !ok {
			return nil, i.errorf(f.Field.Span(), "Struct '%s' has no field '%s'", t.Name, name)
		}
		return v, nil
	case *ModuleValue:
		return i.moduleVar(t, name, f)
	}
	return nil, i.errorf(f.Field.Span(), "Cannot access field '%s' on %s", name, TypeName(target))
}

func (i *Interpreter) evalIndex(e ast.Expr) (int64, error) {
	v, err := i.eval(e)
	if err != nil {
		return 0, err
	}
	n, ok := v.(IntValue)
	if !ok {
		return 0, i.errorf(e.Span(), "Array index must be int, found %s", TypeName(v))
	}
	return n.Val, nil
}

func (i *Interpreter) evalIndexExpr(ix *ast.IndexExpr) (Value, error) {
	target, err := i.eval(ix.Target)
	if err != nil {
		return nil, err
	}
	idx, err := i.evalIndex(ix.Index)
	if err != nil {
		return nil, err
	}

	switch t := target.(type) {
	case *ArrayValue:
		if idx < 0 || idx >= int64(len(t.Elements)) {
			return nil, i.errorf(ix.Span(), "Index %d out of bounds for array of length %d", idx, len(t.Elements))
		}
		return t.Elements[idx], nil
	case StringValue:
		runes := []rune(t.Val)
		if idx < 0 || idx >= int64(len(runes)) {
			return nil, i.errorf(ix.Span(), "Index %d out of bounds for string of length %d", idx, len(runes))
		}
		return StringValue{Val: string(runes[idx])}, nil
	}
	return nil, i.errorf(ix.Target.Span(), "Cannot index a value of type %s", TypeName(target))
}

// evalStructLit lays fields out in declaration order.
func (i *Interpreter) evalStructLit(lit *ast.StructLit) (Value, error) {
	decl, ok := i.cur.structs[lit.Name.Name]
	if !ok {
		return nil, i.errorf(lit.Name.Span(), "Undefined struct '%s'", lit.Name.Name)
	}

	declared := make(map[string]bool, len(decl.Fields))
	for _, f := range decl.Fields {
		declared[f.Name.Name] = true
	}

	given := make(map[string]Value, len(lit.Fields))
	for _, f := range lit.Fields {
		if !declared[f.Name.Name] {
			return nil, i.errorf(f.Name.Span(), "Struct '%s' has no field '%s'", decl.Name.Name, f.Name.Name)
		}
		v, err := i.eval(f.Value)
		if err != nil {
			return nil, err
		}
		given[f.Name.Name] = Copy(v)
	}

	st := &StructValue{Name: decl.Name.Name, Fields: make([]FieldValue, 0, len(decl.Fields))}
	for _, f := range decl.Fields {
		v, ok := given[f.Name.Name]
		if !ok {
			return nil, i.errorf(lit.Span(), "Missing field '%s' in '%s' literal", f.Name.Name, st.Name)
		}
		st.Fields = append(st.Fields, FieldValue{Name: f.Name.Name, Value: v})
	}
	return st, nil
}

func (i *Interpreter) evalEnumVariant(e *ast.EnumVariantExpr) (Value, error) {
	decl, ok := i.cur.enums[e.Enum.Name]
	if !ok {
		return nil, i.errorf(e.Enum.Span(), "Undefined enum '%s'", e.Enum.Name)
	}
	for _, v := range decl.Variants {
		if v.Name == e.Variant.Name {
			return EnumValue{Enum: decl.Name.Name, Variant: v.Name}, nil
		}
	}
	return nil, i.errorf(e.Variant.Span(), "Enum '%s' has no variant '%s'", decl.Name.Name, e.Variant.Name)
}
