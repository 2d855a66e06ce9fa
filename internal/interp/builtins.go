package interp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/raven-lang/raven/internal/ast"
	"github.com/raven-lang/raven/internal/builtins"
	"github.com/raven-lang/raven/internal/diag"
)

func (i *Interpreter) callBuiltin(b builtins.Func, exprs []ast.Expr, span diag.Span) (Value, error) {
	args, err := i.evalArgs(exprs)
	if err != nil {
		return nil, err
	}
	if !b.Signature().Accepts(len(args)) {
		return nil, i.errorf(span, "Builtin '%s' cannot take %d arguments", b, len(args))
	}

	switch b {
	case builtins.Len:
		switch v := args[0].(type) {
		case *ArrayValue:
			return IntValue{Val: int64(len(v.Elements))}, nil
		case StringValue:
			return IntValue{Val: int64(utf8.RuneCountInString(v.Val))}, nil
		}
		return nil, i.errorf(exprs[0].Span(), "Argument 1 of 'len' must be an array or string, found %s", TypeName(args[0]))

	case builtins.Type:
		return StringValue{Val: TypeName(args[0])}, nil

	case builtins.Format:
		text, err := i.formatValues(b, args, exprs, span)
		if err != nil {
			return nil, err
		}
		return StringValue{Val: text}, nil

	case builtins.Input:
		if len(args) == 1 {
			prompt, err := i.stringArg(b, args, exprs, 0)
			if err != nil {
				return nil, err
			}
			if _, err := io.WriteString(i.stdout, prompt); err != nil {
				return nil, i.errorf(span, "Cannot write prompt: %v", err)
			}
		}
		line, err := i.stdin.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, i.errorf(span, "Cannot read input: %v", err)
		}
		return StringValue{Val: strings.TrimRight(line, "\r\n")}, nil

	case builtins.ReadFile:
		path, err := i.stringArg(b, args, exprs, 0)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, i.errorf(span, "Cannot read file '%s': %v", path, err)
		}
		return StringValue{Val: string(data)}, nil

	case builtins.WriteFile, builtins.AppendFile:
		path, err := i.stringArg(b, args, exprs, 0)
		if err != nil {
			return nil, err
		}
		return VoidValue{}, i.writeFile(path, builtins.ExpandNewlines(Format(args[1])), b == builtins.AppendFile, span)

	case builtins.FileExists:
		path, err := i.stringArg(b, args, exprs, 0)
		if err != nil {
			return nil, err
		}
		_, statErr := os.Stat(path)
		return BoolValue{Val: statErr == nil}, nil
	}
	return nil, i.errorf(span, "Unknown builtin '%s'", b)
}

func (i *Interpreter) stringArg(b builtins.Func, args []Value, exprs []ast.Expr, idx int) (string, error) {
	s, ok := args[idx].(StringValue)
	if !ok {
		return "", i.errorf(exprs[idx].Span(), "Argument %d of '%s' must be string, found %s", idx+1, b, TypeName(args[idx]))
	}
	return s.Val, nil
}

func (i *Interpreter) writeFile(path, content string, appendMode bool, span diag.Span) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if appendMode {
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return i.errorf(span, "Cannot write file '%s': %v", path, err)
	}
	w := bufio.NewWriter(f)
	if _, err := w.WriteString(content); err != nil {
		f.Close()
		return i.errorf(span, "Cannot write file '%s': %v", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return i.errorf(span, "Cannot write file '%s': %v", path, err)
	}
	if err := f.Close(); err != nil {
		return i.errorf(span, "Cannot write file '%s': %v", path, err)
	}
	return nil
}

// print evaluates the arguments of a print statement and writes one line.
func (i *Interpreter) print(exprs []ast.Expr, span diag.Span) error {
	args, err := i.evalArgs(exprs)
	if err != nil {
		return err
	}
	return i.printValues(args, exprs, span)
}

func (i *Interpreter) printValues(args []Value, exprs []ast.Expr, span diag.Span) error {
	text, err := i.formatValues(builtins.Print, args, exprs, span)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(i.stdout, text); err != nil {
		return i.errorf(span, "Cannot write output: %v", err)
	}
	return nil
}

// formatValues renders print and format arguments. A lone print argument is
// shown as-is; otherwise the first argument is a format string whose `{}`
// slots take the rest in order.
func (i *Interpreter) formatValues(b builtins.Func, args []Value, exprs []ast.Expr, span diag.Span) (string, error) {
	if len(args) == 0 {
		return "", i.errorf(span, "'%s' expects at least 1 argument", b)
	}
	if len(args) == 1 && b == builtins.Print {
		return Format(args[0]), nil
	}
	format, err := i.stringArg(b, args, exprs, 0)
	if err != nil {
		return "", err
	}
	rest := make([]string, 0, len(args)-1)
	for _, a := range args[1:] {
		rest = append(rest, Format(a))
	}
	text, err := builtins.Substitute(format, rest)
	if err != nil {
		return "", i.errorf(span, "Format error in '%s': %v", b, err)
	}
	return text, nil
}

func (i *Interpreter) evalMethodCall(m *ast.MethodCallExpr) (Value, error) {
	recv, err := i.eval(m.Receiver)
	if err != nil {
		return nil, err
	}
	name := m.Method.Name

	if mod, ok := recv.(*ModuleValue); ok {
		return i.callModuleFunc(mod, m)
	}

	method, ok := builtins.LookupMethod(name)
	if !ok {
		return nil, i.errorf(m.Method.Span(), "Unknown method '%s' on %s", name, TypeName(recv))
	}
	args, err := i.evalArgs(m.Args)
	if err != nil {
		return nil, err
	}
	if len(args) != method.Arity() {
		return nil, i.errorf(m.Span(), "Method '%s' expects %d arguments, got %d", name, method.Arity(), len(args))
	}

	switch r := recv.(type) {
	case *ArrayValue:
		return i.arrayMethod(method, r, args, m)
	case StringValue:
		return i.stringMethod(method, r.Val, args, m)
	}
	return nil, i.errorf(m.Method.Span(), "Method '%s' is not defined on %s", name, TypeName(recv))
}

// arrayMethod applies method to arr. Mutations persist only when the receiver
// is a bare variable; any other receiver is copied first so the change is
// dropped with the copy. A variable bound outside the current frame is
// copied too, and the copy is rebound in the frame.
func (i *Interpreter) arrayMethod(method builtins.Method, arr *ArrayValue, args []Value, m *ast.MethodCallExpr) (Value, error) {
	owner, bare := m.Receiver.(*ast.Ident)
	target := arr
	if method.Mutates() && (!bare || !i.env.Owns(owner.Name)) {
		target = Copy(arr).(*ArrayValue)
	}

	switch method {
	case builtins.Push:
		target.Elements = append(target.Elements, Copy(args[0]))
		if bare {
			i.env.Set(owner.Name, target)
		}
		return target, nil

	case builtins.Pop:
		n := len(target.Elements)
		if n == 0 {
			return nil, i.errorf(m.Span(), "Cannot pop from an empty array")
		}
		last := target.Elements[n-1]
		target.Elements = target.Elements[:n-1:n-1]
		if bare {
			i.env.Set(owner.Name, target)
		}
		return last, nil

	case builtins.Slice:
		start, end, err := i.sliceBounds(args, len(target.Elements), m)
		if err != nil {
			return nil, err
		}
		return Copy(&ArrayValue{Elements: target.Elements[start:end]}), nil

	case builtins.Join:
		sep, ok := args[0].(StringValue)
		if !ok {
			return nil, i.errorf(m.Args[0].Span(), "Argument 1 of 'join' must be string, found %s", TypeName(args[0]))
		}
		parts := make([]string, len(target.Elements))
		for idx, e := range target.Elements {
			parts[idx] = Format(e)
		}
		return StringValue{Val: strings.Join(parts, sep.Val)}, nil

	case builtins.Split, builtins.Replace:
		return nil, i.errorf(m.Method.Span(), "Method '%s' is not defined on array", method)
	}
	return nil, i.errorf(m.Method.Span(), "Unknown method '%s' on array", method)
}

func (i *Interpreter) stringMethod(method builtins.Method, s string, args []Value, m *ast.MethodCallExpr) (Value, error) {
	strs := make([]string, len(args))
	for idx, a := range args {
		if sv, ok := a.(StringValue); ok {
			strs[idx] = sv.Val
		}
	}

	switch method {
	case builtins.Slice:
		runes := []rune(s)
		start, end, err := i.sliceBounds(args, len(runes), m)
		if err != nil {
			return nil, err
		}
		return StringValue{Val: string(runes[start:end])}, nil

	case builtins.Split:
		if _, ok := args[0].(StringValue); !ok {
			return nil, i.errorf(m.Args[0].Span(), "Argument 1 of 'split' must be string, found %s", TypeName(args[0]))
		}
		parts := strings.Split(s, strs[0])
		out := &ArrayValue{Elements: make([]Value, len(parts))}
		for idx, p := range parts {
			out.Elements[idx] = StringValue{Val: p}
		}
		return out, nil

	case builtins.Replace:
		for idx, a := range args {
			if _, ok := a.(StringValue); !ok {
				return nil, i.errorf(m.Args[idx].Span(), "Argument %d of 'replace' must be string, found %s", idx+1, TypeName(a))
			}
		}
		return StringValue{Val: strings.ReplaceAll(s, strs[0], strs[1])}, nil

	case builtins.Push, builtins.Pop, builtins.Join:
		return nil, i.errorf(m.Method.Span(), "Method '%s' is not defined on string", method)
	}
	return nil, i.errorf(m.Method.Span(), "Unknown method '%s' on string", method)
}

func (i *Interpreter) sliceBounds(args []Value, length int, m *ast.MethodCallExpr) (int, int, error) {
	var bounds [2]int64
	for idx := range bounds {
		n, ok := args[idx].(IntValue)
		if !ok {
			return 0, 0, i.errorf(m.Args[idx].Span(), "Argument %d of 'slice' must be int, found %s", idx+1, TypeName(args[idx]))
		}
		bounds[idx] = n.Val
	}
	start, end := bounds[0], bounds[1]
	if start < 0 || end < start || end > int64(length) {
		return 0, 0, i.errorf(m.Span(), "Slice bounds [%d:%d] out of range for length %d", start, end, length)
	}
	return int(start), int(end), nil
}
