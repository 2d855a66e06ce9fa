package types

import (
	"fmt"

	"github.com/raven-lang/raven/internal/ast"
	"github.com/raven-lang/raven/internal/builtins"
	"github.com/raven-lang/raven/internal/diag"
)

// checkExpr returns the type of e. expected, when not nil, is the type the
// context wants; it only matters for empty array literals.
func (c *Checker) checkExpr(e ast.Expr, expected Type) (Type, error) {
	switch n := e.(type) {
	case *ast.IntLit:
		return TypeInt, nil
	case *ast.FloatLit:
		return TypeFloat, nil
	case *ast.BoolLit:
		return TypeBool, nil
	case *ast.StringLit:
		return TypeString, nil
	case *ast.ArrayLit:
		return c.checkArrayLit(n, expected)
	case *ast.Ident:
		sym := c.scope.Lookup(n.Name)
		if sym == nil {
			return nil, c.errorf(n.Span(), "Undefined variable '%s'", n.Name)
		}
		return sym.Type, nil
	case *ast.UnaryExpr:
		return c.checkUnary(n)
	case *ast.BinaryExpr:
		return c.checkBinary(n)
	case *ast.CallExpr:
		return c.checkCall(n)
	case *ast.MethodCallExpr:
		return c.checkMethodCall(n)
	case *ast.FieldExpr:
		return c.checkField(n)
	case *ast.IndexExpr:
		return c.checkIndex(n)
	case *ast.StructLit:
		return c.checkStructLit(n)
	case *ast.EnumVariantExpr:
		en, ok := c.enums[n.Enum.Name]
		if !ok {
			return nil, c.errorf(n.Enum.Span(), "Undefined enum '%s'", n.Enum.Name)
		}
		if !en.HasVariant(n.Variant.Name) {
			return nil, c.errorf(n.Variant.Span(), "Enum '%s' has no variant '%s'", en.Name, n.Variant.Name)
		}
		return en, nil
	}
	return nil, c.errorf(e.Span(), "Unsupported expression %T", e)
}

func (c *Checker) checkArrayLit(lit *ast.ArrayLit, expected Type) (Type, error) {
	want, _ := expected.(*Array)

	if len(lit.Elems) == 0 {
		if want == nil {
			return nil, c.errorHint(lit.Span(), "Give the variable a type, e.g. let xs: int[] = [];",
				"Cannot infer the type of an empty array")
		}
		return want, nil
	}

	var wantElem Type
	if want != nil {
		wantElem = want.Elem
	}
	first, err := c.checkExpr(lit.Elems[0], wantElem)
	if err != nil {
		return nil, err
	}
	if first == TypeVoid {
		return nil, c.errorf(lit.Elems[0].Span(), "Array elements cannot be void")
	}
	for _, el := range lit.Elems[1:] {
		t, err := c.checkExpr(el, first)
		if err != nil {
			return nil, err
		}
		if !Assignable(first, t) {
			return nil, c.errorf(el.Span(), "Array elements must have the same type: expected %s, found %s", first, t)
		}
	}
	return &Array{Elem: first}, nil
}

func (c *Checker) checkUnary(u *ast.UnaryExpr) (Type, error) {
	t, err := c.checkExpr(u.Operand, nil)
	if err != nil {
		return nil, err
	}
	switch u.Op {
	case ast.OpNeg:
		if !IsNumeric(t) {
			return nil, c.errorf(u.Span(), "Unary '-' requires a number, found %s", t)
		}
		return t, nil
	case ast.OpNot:
		if t != TypeBool {
			return nil, c.errorf(u.Span(), "Unary '!' requires bool, found %s", t)
		}
		return TypeBool, nil
	}
	return nil, c.errorf(u.Span(), "Unsupported unary operator %s", u.Op)
}

func (c *Checker) checkBinary(b *ast.BinaryExpr) (Type, error) {
	left, err := c.checkExpr(b.Left, nil)
	if err != nil {
		return nil, err
	}
	right, err := c.checkExpr(b.Right, nil)
	if err != nil {
		return nil, err
	}
	if left == TypeVoid || right == TypeVoid {
		return nil, c.errorf(b.Span(), "Operator '%s' cannot be applied to void", b.Op)
	}

	switch {
	case b.Op.IsArithmetic():
		if b.Op == ast.OpAdd && (left == TypeString || right == TypeString) {
			return TypeString, nil
		}
		if left == TypeInt && right == TypeInt {
			return TypeInt, nil
		}
		if IsNumeric(left) && IsNumeric(right) {
			return TypeFloat, nil
		}
		return nil, c.errorf(b.Span(), "Operator '%s' cannot be applied to %s and %s", b.Op, left, right)

	case b.Op.IsComparison():
		if !Identical(left, right) {
			return nil, c.errorf(b.Span(), "Cannot compare %s with %s", left, right)
		}
		if b.Op != ast.OpEq && b.Op != ast.OpNotEq && !IsNumeric(left) && left != TypeString {
			return nil, c.errorf(b.Span(), "Operator '%s' cannot be applied to %s", b.Op, left)
		}
		return TypeBool, nil

	case b.Op.IsLogical():
		if left != TypeBool || right != TypeBool {
			return nil, c.errorf(b.Span(), "Operator '%s' requires bool operands, found %s and %s", b.Op, left, right)
		}
		return TypeBool, nil
	}
	return nil, c.errorf(b.Span(), "Unsupported operator %s", b.Op)
}

func (c *Checker) checkCall(call *ast.CallExpr) (Type, error) {
	name := call.Callee.Name
	if fn, ok := c.funcs[name]; ok {
		return c.checkArgs(fn, call.Args, call.Span())
	}
	if b, ok := builtins.LookupFunc(name); ok {
		return c.checkBuiltinCall(b, call)
	}
	return nil, c.errorf(call.Callee.Span(), "Undefined function '%s'", name)
}

// checkArgs checks arity and per position agreement against fn.
func (c *Checker) checkArgs(fn *Function, args []ast.Expr, span diag.Span) (Type, error) {
	if len(args) != len(fn.Params) {
		return nil, c.errorf(span, "Function '%s' expects %s, got %d", fn.Name, plural(len(fn.Params), "argument"), len(args))
	}
	for i, arg := range args {
		want := fn.Params[i].Type
		got, err := c.checkExpr(arg, want)
		if err != nil {
			return nil, err
		}
		if !Assignable(want, got) {
			return nil, c.errorf(arg.Span(), "Argument %d of '%s' must be %s, found %s", i+1, fn.Name, want, got)
		}
	}
	return fn.Return, nil
}

func (c *Checker) checkBuiltinCall(b builtins.Func, call *ast.CallExpr) (Type, error) {
	if b == builtins.Format {
		if err := c.checkFormatArgs(b, call.Args, call.Span()); err != nil {
			return nil, err
		}
		return kindType(b.Signature().Result), nil
	}

	sig := b.Signature()
	if !sig.Accepts(len(call.Args)) {
		return nil, c.errorf(call.Span(), "Builtin '%s' expects %s, got %d", b, arityText(sig), len(call.Args))
	}
	for i, arg := range call.Args {
		t, err := c.checkExpr(arg, nil)
		if err != nil {
			return nil, err
		}
		if !kindAccepts(sig.Param(i), t) {
			return nil, c.errorf(arg.Span(), "Argument %d of '%s' must be %s, found %s", i+1, b, sig.Param(i), t)
		}
	}
	return kindType(sig.Result), nil
}

// checkFormatArgs checks print and format: with more than one argument the
// first is a format string, and a literal format must have one `{}` per
// remaining argument.
func (c *Checker) checkFormatArgs(b builtins.Func, args []ast.Expr, span diag.Span) error {
	sig := b.Signature()
	if !sig.Accepts(len(args)) {
		return c.errorf(span, "'%s' expects %s, got %d", b, arityText(sig), len(args))
	}

	types := make([]Type, len(args))
	for i, arg := range args {
		t, err := c.checkExpr(arg, nil)
		if err != nil {
			return err
		}
		if t == TypeVoid {
			return c.errorf(arg.Span(), "Cannot %s a void value", b)
		}
		types[i] = t
	}

	if len(args) == 1 && b == builtins.Print {
		return nil
	}
	if types[0] != TypeString && types[0] != TypeUnknown {
		return c.errorf(args[0].Span(), "The first argument of '%s' must be a format string, found %s", b, types[0])
	}
	if lit, ok := args[0].(*ast.StringLit); ok {
		if want := builtins.Placeholders(lit.Value); want != len(args)-1 {
			return c.errorHint(args[0].Span(), "Use one {} per argument",
				"Format string has %s but %s given", plural(want, "placeholder"), plural(len(args)-1, "argument"))
		}
	}
	return nil
}

func arityText(sig builtins.Signature) string {
	switch {
	case sig.MaxArgs == builtins.Variadic:
		return "at least " + plural(sig.MinArgs, "argument")
	case sig.MinArgs == sig.MaxArgs:
		return plural(sig.MinArgs, "argument")
	}
	return fmt.Sprintf("%d to %s", sig.MinArgs, plural(sig.MaxArgs, "argument"))
}

func kindAccepts(k builtins.Kind, t Type) bool {
	if t == TypeUnknown {
		return true
	}
	switch k {
	case builtins.Int:
		return t == TypeInt
	case builtins.Bool:
		return t == TypeBool
	case builtins.String:
		return t == TypeString
	case builtins.Sequence:
		_, isArray := t.(*Array)
		return isArray || t == TypeString
	case builtins.Void:
		return t == TypeVoid
	}
	return t != TypeVoid
}

func kindType(k builtins.Kind) Type {
	switch k {
	case builtins.Int:
		return TypeInt
	case builtins.Bool:
		return TypeBool
	case builtins.String:
		return TypeString
	case builtins.Void:
		return TypeVoid
	}
	return TypeUnknown
}

func (c *Checker) checkMethodCall(m *ast.MethodCallExpr) (Type, error) {
	recv, err := c.checkExpr(m.Receiver, nil)
	if err != nil {
		return nil, err
	}
	name := m.Method.Name

	if mod, ok := recv.(*Module); ok {
		fn, ok := mod.Funcs[name]
		if !ok {
			return nil, c.errorf(m.Method.Span(), "Module '%s' has no exported function '%s'", mod.Name, name)
		}
		return c.checkArgs(fn, m.Args, m.Span())
	}

	method, ok := builtins.LookupMethod(name)
	if !ok {
		return nil, c.errorf(m.Method.Span(), "Unknown method '%s' on type %s", name, recv)
	}
	if recv == TypeUnknown {
		return TypeUnknown, nil
	}

	arr, isArray := recv.(*Array)
	switch {
	case isArray && method.Receivers()&builtins.OnArray != 0:
	case recv == TypeString && method.Receivers()&builtins.OnString != 0:
	default:
		return nil, c.errorf(m.Method.Span(), "Method '%s' is not defined on type %s", name, recv)
	}
	if len(m.Args) != method.Arity() {
		return nil, c.errorf(m.Span(), "Method '%s' expects %s, got %d", name, plural(method.Arity(), "argument"), len(m.Args))
	}

	switch method {
	case builtins.Push:
		if err := c.expectArg(m, 0, arr.Elem); err != nil {
			return nil, err
		}
		return arr, nil
	case builtins.Pop:
		return arr.Elem, nil
	case builtins.Slice:
		if err := c.expectArg(m, 0, TypeInt); err != nil {
			return nil, err
		}
		if err := c.expectArg(m, 1, TypeInt); err != nil {
			return nil, err
		}
		return recv, nil
	case builtins.Join:
		if err := c.expectArg(m, 0, TypeString); err != nil {
			return nil, err
		}
		return TypeString, nil
	case builtins.Split:
		if err := c.expectArg(m, 0, TypeString); err != nil {
			return nil, err
		}
		return &Array{Elem: TypeString}, nil
	case builtins.Replace:
		if err := c.expectArg(m, 0, TypeString); err != nil {
			return nil, err
		}
		if err := c.expectArg(m, 1, TypeString); err != nil {
			return nil, err
		}
		return TypeString, nil
	}
	return nil, c.errorf(m.Method.Span(), "Unknown method '%s' on type %s", name, recv)
}

func (c *Checker) expectArg(m *ast.MethodCallExpr, i int, want Type) error {
	got, err := c.checkExpr(m.Args[i], want)
	if err != nil {
		return err
	}
	if !Assignable(want, got) {
		return c.errorf(m.Args[i].Span(), "Argument %d of '%s' must be %s, found %s", i+1, m.Method.Name, want, got)
	}
	return nil
}

func (c *Checker) checkField(f *ast.FieldExpr) (Type, error) {
	target, err := c.checkExpr(f.Target, nil)
	if err != nil {
		return nil, err
	}
	name := f.Field.Name

	switch t := target.(type) {
	case *Struct:
		ft, ok := t.Field(name)
		if !ok {
			return nil, c.errorf(f.Field.Span(), "Struct '%s' has no field '%s'", t.Name, name)
		}
		return ft, nil
	case *Module:
		vt, ok := t.Vars[name]
		if !ok {
			return nil, c.errorf(f.Field.Span(), "Module '%s' has no exported variable '%s'", t.Name, name)
		}
		return vt, nil
	}
	if target == TypeUnknown {
		return TypeUnknown, nil
	}
	return nil, c.errorf(f.Field.Span(), "Cannot access field '%s' on type %s", name, target)
}

func (c *Checker) checkIndex(ix *ast.IndexExpr) (Type, error) {
	target, err := c.checkExpr(ix.Target, nil)
	if err != nil {
		return nil, err
	}
	index, err := c.checkExpr(ix.Index, TypeInt)
	if err != nil {
		return nil, err
	}
	if !Assignable(TypeInt, index) {
		return nil, c.errorf(ix.Index.Span(), "Array index must be int, found %s", index)
	}

	switch t := target.(type) {
	case *Array:
		return t.Elem, nil
	}
	switch target {
	case TypeString:
		return TypeString, nil
	case TypeUnknown:
		return TypeUnknown, nil
	}
	return nil, c.errorf(ix.Target.Span(), "Cannot index a value of type %s", target)
}

func (c *Checker) checkStructLit(lit *ast.StructLit) (Type, error) {
	st, ok := c.structs[lit.Name.Name]
	if !ok {
		return nil, c.errorf(lit.Name.Span(), "Undefined struct '%s'", lit.Name.Name)
	}

	seen := make(map[string]bool, len(lit.Fields))
	for _, f := range lit.Fields {
		name := f.Name.Name
		want, ok := st.Field(name)
		if !ok {
			return nil, c.errorf(f.Name.Span(), "Struct '%s' has no field '%s'", st.Name, name)
		}
		if seen[name] {
			return nil, c.errorf(f.Name.Span(), "Field '%s' is given more than once", name)
		}
		seen[name] = true

		got, err := c.checkExpr(f.Value, want)
		if err != nil {
			return nil, err
		}
		if !Assignable(want, got) {
			return nil, c.errorf(f.Value.Span(), "Field '%s' of '%s' must be %s, found %s", name, st.Name, want, got)
		}
	}
	for _, f := range st.Fields {
		if !seen[f.Name] {
			return nil, c.errorHint(lit.Span(), "Every field must be given a value",
				"Missing field '%s' in '%s' literal", f.Name, st.Name)
		}
	}
	return st, nil
}
