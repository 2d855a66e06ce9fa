package parser_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/raven-lang/raven/internal/ast"
	"github.com/raven-lang/raven/internal/diag"
	"github.com/raven-lang/raven/internal/parser"
)

func parseProgram(t *testing.T, src string) *ast.BlockStmt {
	t.Helper()

	prog, err := parser.New(src).Parse()
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if prog == nil {
		t.Fatalf("program is nil")
	}
	return prog
}

func parseError(t *testing.T, src string) diag.Diagnostic {
	t.Helper()

	_, err := parser.New(src).Parse()
	if err == nil {
		t.Fatalf("expected a parse error for %q", src)
	}
	d, ok := diag.AsDiagnostic(err)
	if !ok {
		t.Fatalf("error %v is not a diagnostic", err)
	}
	return d
}

// paren renders an expression fully parenthesized so grouping is visible.
func paren(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.Ident:
		return n.Name
	case *ast.IntLit:
		return fmt.Sprint(n.Value)
	case *ast.FloatLit:
		return fmt.Sprint(n.Value)
	case *ast.BoolLit:
		return fmt.Sprint(n.Value)
	case *ast.StringLit:
		return fmt.Sprintf("%q", n.Value)
	case *ast.UnaryExpr:
		return "(" + n.Op.String() + paren(n.Operand) + ")"
	case *ast.BinaryExpr:
		return "(" + paren(n.Left) + " " + n.Op.String() + " " + paren(n.Right) + ")"
	case *ast.CallExpr:
		return n.Callee.Name + "(" + parenList(n.Args) + ")"
	case *ast.MethodCallExpr:
		return paren(n.Receiver) + "." + n.Method.Name + "(" + parenList(n.Args) + ")"
	case *ast.FieldExpr:
		return paren(n.Target) + "." + n.Field.Name
	case *ast.IndexExpr:
		return paren(n.Target) + "[" + paren(n.Index) + "]"
	case *ast.ArrayLit:
		return "[" + parenList(n.Elems) + "]"
	case *ast.EnumVariantExpr:
		return n.Enum.Name + "::" + n.Variant.Name
	case *ast.StructLit:
		fields := make([]string, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = f.Name.Name + ": " + paren(f.Value)
		}
		return n.Name.Name + " { " + strings.Join(fields, ", ") + " }"
	}
	return fmt.Sprintf("<%T>", e)
}

func parenList(exprs []ast.Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = paren(e)
	}
	return strings.Join(parts, ", ")
}

func TestExpressionGrouping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"10 - 3 - 2", "((10 - 3) - 2)"},
		{"8 / 4 / 2", "((8 / 4) / 2)"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"-2 * 3", "((-2) * 3)"},
		{"a < b == c > d", "((a < b) == (c > d))"},
		{"a || b && c", "(a || (b && c))"},
		{"not a and b", "((!a) && b)"},
		{"!!ok", "(!(!ok))"},
		{"x % 2 == 0 or y", "(((x % 2) == 0) || y)"},
		{"a.b[0].push(1)", "a.b[0].push(1)"},
		{"len(xs) - 1", "(len(xs) - 1)"},
		{"-xs.len()", "(-xs.len())"},
		{"Color::Red", "Color::Red"},
		{"Point { x: 1, y: 2 + 3 }", "Point { x: 1, y: (2 + 3) }"},
		{"Empty {}", "Empty {  }"},
		{"[1, 2, 3,]", "[1, 2, 3]"},
		{"[]", "[]"},
		{"(p).x", "p.x"},
		{"\"a,b\".split(\",\")[1]", "\"a,b\".split(\",\")[1]"},
		{"f(g(1), h())", "f(g(1), h())"},
	}

	for i, tt := range tests {
		prog := parseProgram(t, "let v = "+tt.input+";")
		let, ok := prog.Stmts[0].(*ast.LetStmt)
		if !ok {
			t.Fatalf("tests[%d] - statement is %T, want *ast.LetStmt", i, prog.Stmts[0])
		}
		if got := paren(let.Value); got != tt.expected {
			t.Fatalf("tests[%d] - %q grouped as %s, want %s", i, tt.input, got, tt.expected)
		}
	}
}

func TestTypedLetZeroValues(t *testing.T) {
	tests := []struct {
		input    string
		typ      string
		expected string
	}{
		{"let a: int;", "int", "0"},
		{"let b: float;", "float", "0"},
		{"let c: bool;", "bool", "false"},
		{"let d: string;", "string", `""`},
		{"let e: String;", "string", `""`},
		{"let f: int[];", "int[]", "[]"},
		{"let g: int[][];", "int[][]", "[]"},
		{"let h: Point = Point { x: 1 };", "Point", "Point { x: 1 }"},
		{"let i = 3.5;", "", "3.5"},
	}

	for i, tt := range tests {
		prog := parseProgram(t, tt.input)
		let := prog.Stmts[0].(*ast.LetStmt)
		typ := ""
		if let.Type != nil {
			typ = let.Type.String()
		}
		if typ != tt.typ {
			t.Fatalf("tests[%d] - type = %q, want %q", i, typ, tt.typ)
		}
		if got := paren(let.Value); got != tt.expected {
			t.Fatalf("tests[%d] - value = %s, want %s", i, got, tt.expected)
		}
	}
}

func TestConstDeclaration(t *testing.T) {
	prog := parseProgram(t, "const limit: int = 10;")
	let := prog.Stmts[0].(*ast.LetStmt)
	if !let.Const {
		t.Fatalf("expected a const declaration")
	}
	if let.Name.Name != "limit" {
		t.Fatalf("name = %q", let.Name.Name)
	}
}

func TestIdentifierStatements(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"x = 1;", "*ast.AssignStmt"},
		{"p.x = 1;", "*ast.AssignStmt"},
		{"xs[0] = 1;", "*ast.AssignStmt"},
		{"grid[0][1] = 1;", "*ast.AssignStmt"},
		{"f(1);", "*ast.CallStmt"},
		{"xs.push(1);", "*ast.CallStmt"},
		{"m.helper();", "*ast.CallStmt"},
		{"x + 1;", "*ast.ExprStmt"},
		{"p.x;", "*ast.ExprStmt"},
	}

	for i, tt := range tests {
		prog := parseProgram(t, tt.input)
		if got := fmt.Sprintf("%T", prog.Stmts[0]); got != tt.expected {
			t.Fatalf("tests[%d] - %q parsed as %s, want %s", i, tt.input, got, tt.expected)
		}
	}
}

func TestIfChain(t *testing.T) {
	const src = `
if (x > 10) {
    print("big");
} elseif (x > 5) {
    print("medium");
} else if (x > 2) {
    print("small");
} else {
    print("tiny");
}
`
	prog := parseProgram(t, src)
	first := prog.Stmts[0].(*ast.IfStmt)
	if first.ElseIf == nil || first.Else != nil {
		t.Fatalf("first link should continue with elseif")
	}
	second := first.ElseIf
	if second.ElseIf == nil {
		t.Fatalf("`else if` should produce another link")
	}
	third := second.ElseIf
	if third.Else == nil || len(third.Else.Stmts) != 1 {
		t.Fatalf("last link should carry the else block")
	}
	if got := paren(third.Cond); got != "(x > 2)" {
		t.Fatalf("third condition = %s", got)
	}
}

func TestLoops(t *testing.T) {
	const src = `
for (let i: int = 0; i < 10; i = i + 1) {
    total = total + i;
}
while (n > 0) {
    n = n - 1;
}
`
	prog := parseProgram(t, src)

	loop := prog.Stmts[0].(*ast.ForStmt)
	if loop.Init.Name.Name != "i" {
		t.Fatalf("init declares %q", loop.Init.Name.Name)
	}
	if got := paren(loop.Cond); got != "(i < 10)" {
		t.Fatalf("cond = %s", got)
	}
	if got := paren(loop.Post.Target) + " = " + paren(loop.Post.Value); got != "i = (i + 1)" {
		t.Fatalf("post = %s", got)
	}
	if len(loop.Body.Stmts) != 1 {
		t.Fatalf("body has %d statements", len(loop.Body.Stmts))
	}

	while := prog.Stmts[1].(*ast.WhileStmt)
	if got := paren(while.Cond); got != "(n > 0)" {
		t.Fatalf("while cond = %s", got)
	}
}

func TestDeclarations(t *testing.T) {
	const src = `
fun add(a: int, b: int) -> int {
    return a + b;
}
fun greet() {
    print("hi");
    return;
}
fun names(xs: string[]) -> string[] { return xs; }
struct Point { x: int, y: int, }
enum Color { Red, Green, Blue }
`
	prog := parseProgram(t, src)

	add := prog.Stmts[0].(*ast.FunDecl)
	if len(add.Params) != 2 || add.ReturnType.String() != "int" {
		t.Fatalf("add = %d params -> %s", len(add.Params), add.ReturnType)
	}

	greet := prog.Stmts[1].(*ast.FunDecl)
	if greet.ReturnType.String() != "void" {
		t.Fatalf("default return type = %s, want void", greet.ReturnType)
	}
	ret := greet.Body.Stmts[1].(*ast.ReturnStmt)
	if ret.Value != nil {
		t.Fatalf("bare return should have no value")
	}

	names := prog.Stmts[2].(*ast.FunDecl)
	if names.Params[0].Type.String() != "string[]" || names.ReturnType.String() != "string[]" {
		t.Fatalf("names signature = %s -> %s", names.Params[0].Type, names.ReturnType)
	}

	point := prog.Stmts[3].(*ast.StructDecl)
	if len(point.Fields) != 2 || point.Fields[1].Name.Name != "y" {
		t.Fatalf("struct fields = %v", point.Fields)
	}

	color := prog.Stmts[4].(*ast.EnumDecl)
	if len(color.Variants) != 3 || color.Variants[2].Name != "Blue" {
		t.Fatalf("enum variants = %v", color.Variants)
	}
}

func TestImportsAndExports(t *testing.T) {
	const src = `
import "math.rv";
import utils;
import m from "lib/math";
import { add, PI } from "math";
export fun double(x: int) -> int { return x * 2; }
export let answer = 42;
export struct Pair { a: int, b: int }
`
	prog := parseProgram(t, src)

	tests := []struct {
		path  string
		alias string
	}{
		{"math.rv", ""},
		{"utils", ""},
		{"lib/math", "m"},
	}
	for i, tt := range tests {
		imp := prog.Stmts[i].(*ast.ImportStmt)
		alias := ""
		if imp.Alias != nil {
			alias = imp.Alias.Name
		}
		if imp.Path != tt.path || alias != tt.alias {
			t.Fatalf("tests[%d] - import %q as %q, want %q as %q", i, imp.Path, alias, tt.path, tt.alias)
		}
	}

	sel := prog.Stmts[3].(*ast.SelectiveImportStmt)
	if sel.Path != "math" || len(sel.Names) != 2 || sel.Names[1].Name != "PI" {
		t.Fatalf("selective import = %q %v", sel.Path, sel.Names)
	}

	for i, name := range []string{"double", "answer", "Pair"} {
		exp, ok := prog.Stmts[4+i].(*ast.ExportStmt)
		if !ok {
			t.Fatalf("tests[%d] - statement is %T", i, prog.Stmts[4+i])
		}
		if got := ast.DeclaredName(exp); got != name {
			t.Fatalf("tests[%d] - exported %q, want %q", i, got, name)
		}
	}
}

func TestPrintStatement(t *testing.T) {
	prog := parseProgram(t, `print("{} + {}", a, b);`)
	pr := prog.Stmts[0].(*ast.PrintStmt)
	if got := parenList(pr.Args); got != `"{} + {}", a, b` {
		t.Fatalf("print args = %s", got)
	}
}

func TestSpans(t *testing.T) {
	prog := parseProgram(t, "let total = a + b;\nprint(total);")

	let := prog.Stmts[0].(*ast.LetStmt)
	if got := let.Span(); got.Offset != 0 || got.Length != 18 {
		t.Fatalf("let span = %+v", got)
	}
	bin := let.Value.(*ast.BinaryExpr)
	if got := bin.Span(); got.Column != 12 || got.Length != 5 {
		t.Fatalf("binary span = %+v", got)
	}
	pr := prog.Stmts[1].(*ast.PrintStmt)
	if got := pr.Span(); got.Line != 1 || got.Column != 0 {
		t.Fatalf("print span = %+v", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input   string
		kind    diag.Kind
		message string
		hint    string
	}{
		{"let x: int = 5", diag.KindParse, "Expected ';' after variable declaration", "Add ';' at the end of the statement"},
		{"while x > 0 { }", diag.KindParse, "Expected '(' after 'while'", "Use: while (condition) { ... }"},
		{"while (x > 0 { }", diag.KindParse, "Expected ')' after condition", "Close the condition with ')'"},
		{"for (i = 0; i < 3; i = i + 1) {}", diag.KindParse, "Expected 'let' to start the for loop initializer", "Use: for (let i: int = 0; i < 10; i = i + 1) { ... }"},
		{"fun f() return 1;", diag.KindParse, "Expected '{' before function body", "Add '{' to start the function body"},
		{"let x: 5 = 1;", diag.KindParse, "Expected type, found '5'", "Use: int, float, bool, string, or void"},
		{"print x;", diag.KindParse, "Expected '(' after 'print'", "Use: print(expression);"},
		{"export x = 1;", diag.KindParse, "Expected 'let' or 'fun' after 'export'", "Only let, const, fun, struct and enum declarations can be exported"},
		{"const c;", diag.KindParse, "Constant 'c' must be initialized", "Use: const c = value;"},
		{"let p: Point;", diag.KindParse, "Variable 'p' of type Point must be initialized", "Add an initializer: let p: Point = ...;"},
		{"let v: void;", diag.KindParse, "Variable 'v' cannot have type void", "Use: int, float, bool, string, or void"},
		{"f() = 1;", diag.KindParse, "Invalid assignment target", "Only variables, struct fields and array elements can be assigned"},
		{"x 1;", diag.KindParse, "Unexpected token '1' after expression", "Expected '=' for an assignment or ';' to end the statement"},
		{"if (x) { import \"m\"; }", diag.KindParse, "'import' is only allowed at the top level", "Move the statement out of the block"},
		{"let x = @;", diag.KindLexical, `illegal character "@"`, ""},
		{"return 1 +;", diag.KindParse, "Unexpected token ';' in expression", "Expected a value such as a number, string, variable or '('"},
		{"f(1 2);", diag.KindParse, "Expected ',' or ')' in function arguments", "Close the function call with ')'"},
	}

	for i, tt := range tests {
		d := parseError(t, tt.input)
		if d.Kind != tt.kind {
			t.Fatalf("tests[%d] - kind = %s, want %s", i, d.Kind, tt.kind)
		}
		if d.Message != tt.message {
			t.Fatalf("tests[%d] - message = %q, want %q", i, d.Message, tt.message)
		}
		if d.Hint != tt.hint {
			t.Fatalf("tests[%d] - hint = %q, want %q", i, d.Hint, tt.hint)
		}
		if d.Source != tt.input {
			t.Fatalf("tests[%d] - source not attached", i)
		}
	}
}

func TestMissingSemicolonSpan(t *testing.T) {
	d := parseError(t, "let x = 5\nlet y = 6;")
	if d.Span.Line != 0 || d.Span.Column != 9 {
		t.Fatalf("span = %+v, want just after the 5", d.Span)
	}

	d = parseError(t, "let x: int = 5")
	if d.Span.Line != 0 || d.Span.Column != 14 {
		t.Fatalf("span = %+v, want end of input", d.Span)
	}
}

func TestFilenameAttached(t *testing.T) {
	_, err := parser.ParseSource("main.rv", "let = 1;")
	d, ok := diag.AsDiagnostic(err)
	if !ok {
		t.Fatalf("expected a diagnostic, got %v", err)
	}
	if d.Filename != "main.rv" {
		t.Fatalf("filename = %q", d.Filename)
	}
	if !strings.HasPrefix(err.Error(), "main.rv:1:5: Parse Error:") {
		t.Fatalf("error text = %q", err.Error())
	}
}

func TestIsIncomplete(t *testing.T) {
	tests := []struct {
		input      string
		incomplete bool
	}{
		{"fun f() {", true},
		{"let x = ", true},
		{"if (x) {\n print(x);", true},
		{"let s = \"open", true},
		{"let x = ;", false},
		{"let 5 = x;", false},
	}

	for i, tt := range tests {
		_, err := parser.New(tt.input).Parse()
		if err == nil {
			t.Fatalf("tests[%d] - expected an error", i)
		}
		if got := parser.IsIncomplete(err); got != tt.incomplete {
			t.Fatalf("tests[%d] - IsIncomplete(%q) = %t, want %t", i, tt.input, got, tt.incomplete)
		}
	}
}

func TestEmptyProgram(t *testing.T) {
	prog := parseProgram(t, "// nothing here\n")
	if len(prog.Stmts) != 0 {
		t.Fatalf("expected no statements, got %d", len(prog.Stmts))
	}
}
