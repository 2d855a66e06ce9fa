package interp

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/raven-lang/raven/internal/ast"
	"github.com/raven-lang/raven/internal/diag"
	"github.com/raven-lang/raven/internal/module"
	"github.com/raven-lang/raven/internal/parser"
	"github.com/raven-lang/raven/internal/types"
)

func parse(t *testing.T, src string) *ast.BlockStmt {
	t.Helper()
	prog, err := parser.ParseSource("test.rv", src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return prog
}

func run(t *testing.T, src string, opts ...Option) (*Interpreter, string, error) {
	t.Helper()
	var out bytes.Buffer
	in := New(append([]Option{WithStdout(&out)}, opts...)...)
	_, err := in.Execute(parse(t, src))
	return in, out.String(), err
}

func lookup(t *testing.T, in *Interpreter, name string) string {
	t.Helper()
	v, ok := in.Lookup(name)
	if !ok {
		t.Fatalf("variable %q is not defined", name)
	}
	return Format(v)
}

func TestEvaluatePrograms(t *testing.T) {
	tests := []struct {
		input string
		want  map[string]string
	}{
		{`let x: int = 2 + 3 * 5;`, map[string]string{"x": "17"}},
		{`let x = (2 + 3) * 5;`, map[string]string{"x": "25"}},
		{`let s: string = "a" + 1;`, map[string]string{"s": "a1"}},
		{`let s = 2.5 + " and " + true;`, map[string]string{"s": "2.5 and true"}},
		{`let x = 5.; let t = type(x);`, map[string]string{"x": "5", "t": "float"}},
		{`let a: int[] = []; a.push(5); a.push(6);`, map[string]string{"a": "[5, 6]"}},
		{`let n = len([1, 2].push(3));`, map[string]string{"n": "3"}},
		{`let a = [1, 2]; let b = a; b.push(3);`, map[string]string{"a": "[1, 2]", "b": "[1, 2, 3]"}},
		{`let a = [1, 2, 3]; let last = a.pop();`, map[string]string{"a": "[1, 2]", "last": "3"}},
		{`struct P { x: int, y: int } let v = P { x: 1, y: 2 }.x;`, map[string]string{"v": "1"}},
		{`struct P { x: int, y: int } let p = P { y: 2, x: 1 };`, map[string]string{"p": "P { x: 1, y: 2 }"}},
		{`struct P { x: int, y: int } let p = P { x: 1, y: 2 }; p.x = 10;`, map[string]string{"p": "P { x: 10, y: 2 }"}},
		{`struct Bag { items: int[] } let b = Bag { items: [] }; b.items.push(1);`, map[string]string{"b": "Bag { items: [] }"}},
		{`let g = [[1, 2], [3, 4]]; g[1][0] = 9;`, map[string]string{"g": "[[1, 2], [9, 4]]"}},
		{`let a = [1]; let b = a; b[0] = 2;`, map[string]string{"a": "[1]", "b": "[2]"}},
		{`let f = 7.0 / 2.0; let g = 1 + 0.5; let h = 3.0 * 2;`, map[string]string{"f": "3.5", "g": "1.5", "h": "6"}},
		{`let q = 7 / 2; let m = -7 % 3;`, map[string]string{"q": "3", "m": "-1"}},
		{`let sum = 0; for (let i: int = 0; i < 5; i = i + 1) { sum = sum + i; }`, map[string]string{"sum": "10"}},
		{`let n = 3; let steps = 0; while (n > 0) { n = n - 1; steps = steps + 1; }`, map[string]string{"n": "0", "steps": "3"}},
		{`let x = 5; let kind = ""; if (x < 3) { kind = "small"; } elseif (x < 10) { kind = "medium"; } else { kind = "large"; }`,
			map[string]string{"kind": "medium"}},
		{`fun find(xs: int[], t: int) -> int { let i = 0; while (i < len(xs)) { if (xs[i] == t) { return i; } i = i + 1; } return -1; } let k = find([4, 5, 6], 6);`,
			map[string]string{"k": "2"}},
		{`fun g() -> int { for (let i: int = 0; i < 10; i = i + 1) { if (i == 3) { return i; } } return -1; } let r = g();`,
			map[string]string{"r": "3"}},
		{`let parts = "a,b,c".split(","); let j = parts.join("-");`, map[string]string{"parts": `["a", "b", "c"]`, "j": "a-b-c"}},
		{`let r = "hello".replace("l", "L"); let s = "hello".slice(1, 3); let t = [1, 2, 3, 4].slice(1, 3);`,
			map[string]string{"r": "heLLo", "s": "el", "t": "[2, 3]"}},
		{`let c = "héllo"[1]; let n = len("héllo");`, map[string]string{"c": "é", "n": "5"}},
		{`enum Color { Red, Green } let c = Color::Green; let same = c == Color::Green; let diff = c != Color::Red;`,
			map[string]string{"c": "Color::Green", "same": "true", "diff": "true"}},
		{`struct P { x: int } enum E { A } let t1 = type(1); let t2 = type([1]); let t3 = type(P { x: 1 }); let t4 = type(E::A); let t5 = type(1.5);`,
			map[string]string{"t1": "int", "t2": "array", "t3": "P", "t4": "E", "t5": "float"}},
		{`let s = format("{} + {} = {}", 1, 2, 3);`, map[string]string{"s": "1 + 2 = 3"}},
		{`let a = ["x", "y"];`, map[string]string{"a": `["x", "y"]`}},
		{`let base = 10; fun add(n: int) -> int { return n + base; } let r = add(1);`, map[string]string{"r": "11"}},
		{`let count = 0; fun inc() { count = count + 1; } inc(); inc();`, map[string]string{"count": "0"}},
		{`fun boom() -> bool { return 1 / 0 == 0; } let ok = false && boom(); let ok2 = true || boom();`,
			map[string]string{"ok": "false", "ok2": "true"}},
		{`let a = "a" < "b"; let b = 2 >= 2; let c = !(1 == 1); let d = -(3);`,
			map[string]string{"a": "true", "b": "true", "c": "false", "d": "-3"}},
		{`let same = [1, 2] == [1, 2]; let other = [1] == [2];`, map[string]string{"same": "true", "other": "false"}},
	}

	for i, tt := range tests {
		in, _, err := run(t, tt.input)
		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %v", i, err)
		}
		for name, want := range tt.want {
			if got := lookup(t, in, name); got != want {
				t.Fatalf("tests[%d] - %s = %s, want %s", i, name, got, want)
			}
		}
	}
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{`let x = 5 / 0;`, "Division by zero"},
		{`let x = 5.0 / 0.0;`, "Division by zero"},
		{`let x = 5 % 0;`, "Modulo by zero"},
		{`let x = 1.5 % 0;`, "Modulo by zero"},
		{`let a = [1]; let x = a[3];`, "Index 3 out of bounds for array of length 1"},
		{`let a = [1]; a[-1] = 2;`, "Index -1 out of bounds for array of length 1"},
		{`let x = nope(1);`, "Undefined function 'nope'"},
		{`let x = y;`, "Undefined variable 'y'"},
		{`z = 1;`, "Undefined variable 'z'"},
		{`let a: int[] = []; let x = a.pop();`, "Cannot pop from an empty array"},
		{`print("{} {}", 1);`, "Format error in 'print': not enough arguments for format string: 2 placeholders, 1 arguments"},
		{`print("{}", 1, 2);`, "Format error in 'print': too many arguments for format string: 1 placeholders, 2 arguments"},
		{`let s = "abc"; s[0] = "x";`, "Strings are immutable; cannot assign to an index"},
		{`let x = "abc".slice(2, 1);`, "Slice bounds [2:1] out of range for length 3"},
		{`enum E { A } let x = E::B;`, "Enum 'E' has no variant 'B'"},
		{`fun f(n: int) -> int { return n; } let x = f(1, 2);`, "Function 'f' expects 1 arguments, got 2"},
		{`fun f() -> int { return f(); } let x = f();`, "Maximum call depth exceeded in 'f'"},
		{`let x = read_file("/definitely/not/here.txt");`, "Cannot read file '/definitely/not/here.txt'"},
		{`fun f(n: int) -> int { if (n > 0) { return 1; } } let r: int = f(0);`, "Function 'f' ended without returning a value of type int"},
	}

	for i, tt := range tests {
		_, _, err := run(t, tt.input)
		if err == nil {
			t.Fatalf("tests[%d] - expected error %q for %q", i, tt.message, tt.input)
		}
		d, ok := diag.AsDiagnostic(err)
		if !ok {
			t.Fatalf("tests[%d] - error is not a diagnostic: %v", i, err)
		}
		if d.Kind != diag.KindRuntime {
			t.Fatalf("tests[%d] - kind = %s, want %s", i, d.Kind, diag.KindRuntime)
		}
		if !strings.HasPrefix(d.Message, tt.message) {
			t.Fatalf("tests[%d] - message = %q, want %q", i, d.Message, tt.message)
		}
	}
}

func TestRuntimeErrorSpan(t *testing.T) {
	_, _, err := run(t, "let x = 1;\nlet y = x / 0;", WithFilename("calc.rv"))
	d, ok := diag.AsDiagnostic(err)
	if !ok {
		t.Fatalf("expected a diagnostic, got %v", err)
	}
	if d.Span.Line != 2 || d.Span.Column != 9 {
		t.Fatalf("span = %s, want 2:9", d.Span)
	}
	if d.Filename != "calc.rv" {
		t.Fatalf("filename = %q, want calc.rv", d.Filename)
	}
}

func TestPrintOutput(t *testing.T) {
	src := `
struct P { x: int, name: string }
print("hello");
print("{} and {}", 1, "two");
print([1, 2]);
print(["a"]);
print(P { x: 1, name: "n" });
print(format("{}!", "done"));
`
	_, out, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "hello\n1 and two\n[1, 2]\n[\"a\"]\nP { x: 1, name: \"n\" }\ndone!\n"
	if out != want {
		t.Fatalf("output = %q, want %q", out, want)
	}
}

func TestScopeIsolation(t *testing.T) {
	src := `
fun f(n: int) -> int { if (n <= 1) { return 1; } return n * f(n - 1); }
fun g() { let inner = 1; }
let n = 42;
let r = f(5);
g();
`
	in, _, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := lookup(t, in, "r"); got != "120" {
		t.Fatalf("f(5) = %s, want 120", got)
	}
	if got := lookup(t, in, "n"); got != "42" {
		t.Fatalf("caller n = %s after call, want 42", got)
	}
	if _, ok := in.Lookup("inner"); ok {
		t.Fatalf("function local leaked into globals")
	}
}

func TestFunctionsCannotMutateGlobals(t *testing.T) {
	src := `
struct P { x: int }
let x = 1;
let g: int[] = [1];
let h: int[] = [1, 2];
let p = P { x: 1 };
let grid = [[1], [2]];
fun touch() -> int {
    x = 5;
    g.push(2);
    h.pop();
    p.x = 9;
    grid[0][0] = 7;
    return x + len(g) + len(h) + p.x + grid[0][0];
}
let seen = touch();
let again = touch();
`
	in, _, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tests := []struct {
		name string
		want string
	}{
		{"x", "1"},
		{"g", "[1]"},
		{"h", "[1, 2]"},
		{"p", "P { x: 1 }"},
		{"grid", "[[1], [2]]"},
		{"seen", "24"},
		{"again", "24"},
	}
	for i, tt := range tests {
		if got := lookup(t, in, tt.name); got != tt.want {
			t.Fatalf("tests[%d] - %s = %s, want %s", i, tt.name, got, tt.want)
		}
	}
}

func TestParameterIsCopied(t *testing.T) {
	src := `
fun grow(xs: int[]) -> int[] { xs.push(9); return xs; }
let a = [1];
let b = grow(a);
`
	in, _, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := lookup(t, in, "a"); got != "[1]" {
		t.Fatalf("a = %s, want [1]", got)
	}
	if got := lookup(t, in, "b"); got != "[1, 9]" {
		t.Fatalf("b = %s, want [1, 9]", got)
	}
}

func TestCallFunction(t *testing.T) {
	in, _, err := run(t, `fun add(a: int, b: int) -> int { return a + b; } fun hello() { print("hi"); }`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v, err := in.CallFunction("add", []Value{IntValue{Val: 2}, IntValue{Val: 3}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != (IntValue{Val: 5}) {
		t.Fatalf("add(2, 3) = %s, want 5", Format(v))
	}

	v, err = in.CallFunction("hello", nil)
	if err != nil || v.Kind() != KindVoid {
		t.Fatalf("hello() = %v, %v; want void", v, err)
	}

	if _, err := in.CallFunction("missing", nil); err == nil || !strings.Contains(err.Error(), "Function 'missing' not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
	if _, err := in.CallFunction("add", []Value{IntValue{Val: 1}}); err == nil {
		t.Fatalf("expected arity error")
	}
}

func TestSessionState(t *testing.T) {
	var out bytes.Buffer
	in := New(WithStdout(&out))

	steps := []struct {
		input string
		want  string
	}{
		{`let x = 2;`, "void"},
		{`x * 21;`, "42"},
		{`return 5;`, "5"},
		{`x = x + 1;`, "void"},
		{`x;`, "3"},
		{`let y = x / 0;`, ""},
		{`x;`, "3"},
	}

	for i, tt := range steps {
		v, err := in.Execute(parse(t, tt.input))
		if tt.want == "" {
			if err == nil {
				t.Fatalf("tests[%d] - expected error", i)
			}
			continue
		}
		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %v", i, err)
		}
		if got := Format(v); got != tt.want {
			t.Fatalf("tests[%d] - value = %s, want %s", i, got, tt.want)
		}
	}
}

func TestInputAndFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	src := fmt.Sprintf(`
let name = input("Name? ");
let second = input();
let missing = input();
print("Hi {}", name);
write_file(%[1]q, "a\\nb");
append_file(%[1]q, "\\nc");
let body = read_file(%[1]q);
let there = file_exists(%[1]q);
let gone = file_exists(%[2]q);
`, path, filepath.Join(dir, "nope.txt"))

	in, out, err := run(t, src, WithStdin(strings.NewReader("Ada\nLovelace\n")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Name? Hi Ada\n" {
		t.Fatalf("output = %q", out)
	}

	tests := []struct {
		name string
		want string
	}{
		{"name", "Ada"},
		{"second", "Lovelace"},
		{"missing", ""},
		{"body", "a\nb\nc"},
		{"there", "true"},
		{"gone", "false"},
	}
	for i, tt := range tests {
		if got := lookup(t, in, tt.name); got != tt.want {
			t.Fatalf("tests[%d] - %s = %q, want %q", i, tt.name, got, tt.want)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "a\nb\nc" {
		t.Fatalf("file = %q", data)
	}
}

func writeModule(t *testing.T, dir, name, src string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestImports(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "geo.rv", `
let scale = 3;
export struct Point { x: int, y: int }
export fun origin() -> Point { return Point { x: 0, y: 0 }; }
export fun triple(n: int) -> int { return n * scale; }
export let unit = 1;
fun hidden() -> int { return 2; }
print("geo loaded");
`)
	main := filepath.Join(dir, "main.rv")

	tests := []struct {
		input   string
		want    map[string]string
		message string
	}{
		{input: `import "geo.rv"; let p: Point = geo.origin(); let u = geo.unit;`,
			want: map[string]string{"p": "Point { x: 0, y: 0 }", "u": "1"}},
		{input: `import g from "geo"; let scale = 100; let t = g.triple(2);`,
			want: map[string]string{"t": "6", "g": "<module geo>"}},
		{input: `import { origin, unit, triple } from "geo"; let p = origin(); let q = p.x + unit + triple(1);`,
			want: map[string]string{"q": "4"}},
		{input: `import { Point } from "geo"; let p = Point { x: 1, y: 2 };`,
			want: map[string]string{"p": "Point { x: 1, y: 2 }"}},
		{input: `import { hidden } from "geo";`, message: "Module 'geo' has no exported member 'hidden'"},
		{input: `import "geo"; let h = geo.hidden();`, message: "Module 'geo' has no exported function 'hidden'"},
		{input: `import "geo"; let s = geo.scale;`, message: "Module 'geo' has no exported variable 'scale'"},
		{input: `import "geo"; geo.unit = 2;`, message: "Cannot assign to a member of module 'geo'"},
		{input: `import "nowhere";`, message: "Cannot find module 'nowhere'"},
	}

	for i, tt := range tests {
		in, out, err := run(t, tt.input, WithFilename(main), WithResolver(module.NewResolver(dir)))
		if tt.message != "" {
			if err == nil || !strings.Contains(err.Error(), tt.message) {
				t.Fatalf("tests[%d] - expected %q, got %v", i, tt.message, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %v", i, err)
		}
		if out != "geo loaded\n" {
			t.Fatalf("tests[%d] - output = %q", i, out)
		}
		for name, want := range tt.want {
			if got := lookup(t, in, name); got != want {
				t.Fatalf("tests[%d] - %s = %s, want %s", i, name, got, want)
			}
		}
	}
}

func TestModuleRunsOnce(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "counter.rv", `print("loading");`)
	writeModule(t, dir, "a.rv", `import "counter";`)

	graph := module.NewGraph[*Unit]()
	_, out, err := run(t, `import "counter"; import "a"; import c from "counter";`,
		WithFilename(filepath.Join(dir, "main.rv")), WithResolver(module.NewResolver(dir)), WithGraph(graph))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "loading\n" {
		t.Fatalf("output = %q, want one load", out)
	}
	if graph.Len() != 2 {
		t.Fatalf("graph holds %d modules, want 2", graph.Len())
	}
}

func TestImportCycle(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "a.rv", `import "b"; let fromA = 1;`)
	writeModule(t, dir, "b.rv", `import "a"; let fromB = 2;`)

	_, _, err := run(t, `import "a";`, WithFilename(filepath.Join(dir, "main.rv")), WithResolver(module.NewResolver(dir)))
	if err == nil || !strings.Contains(err.Error(), "import cycle detected: a.rv -> b.rv -> a.rv") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestModuleErrorCarriesModuleFile(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "bad.rv", "let ok = 1;\nlet boom = ok / 0;\n")

	_, _, err := run(t, `import "bad";`, WithFilename(filepath.Join(dir, "main.rv")), WithResolver(module.NewResolver(dir)))
	d, ok := diag.AsDiagnostic(err)
	if !ok {
		t.Fatalf("expected a diagnostic, got %v", err)
	}
	if filepath.Base(d.Filename) != "bad.rv" || d.Span.Line != 2 {
		t.Fatalf("error at %s:%s, want bad.rv:2", d.Filename, d.Span)
	}
	if !strings.Contains(d.Source, "let boom") {
		t.Fatalf("diagnostic does not carry the module source")
	}
}

// The checker and the interpreter read the tree without changing it, so
// running them in any order gives the same results.
func TestCheckerAndInterpreterAgree(t *testing.T) {
	src := `
struct P { x: int, y: int }
fun f(n: int) -> int { if (n <= 1) { return 1; } return n * f(n - 1); }
let p = P { x: 1, y: 2 };
let xs: int[] = [];
xs.push(f(5));
let total = p.x + p.y + xs[0];
`
	prog := parse(t, src)

	check := func() string {
		typ, err := types.NewChecker().Check(prog)
		if err != nil {
			t.Fatalf("check error: %v", err)
		}
		return typ.String()
	}
	execute := func() string {
		in := New(WithStdout(&bytes.Buffer{}))
		if _, err := in.Execute(prog); err != nil {
			t.Fatalf("runtime error: %v", err)
		}
		return lookup(t, in, "total")
	}

	first := check()
	total := execute()
	if second := check(); second != first {
		t.Fatalf("checker result changed after running: %s then %s", first, second)
	}
	if again := execute(); again != total || total != "123" {
		t.Fatalf("total = %s then %s, want 123", total, again)
	}
}

func TestFormatValues(t *testing.T) {
	tests := []struct {
		value Value
		want  string
	}{
		{IntValue{Val: -4}, "-4"},
		{FloatValue{Val: 2}, "2"},
		{FloatValue{Val: 0.25}, "0.25"},
		{BoolValue{Val: true}, "true"},
		{StringValue{Val: "raw"}, "raw"},
		{VoidValue{}, "void"},
		{&ArrayValue{Elements: []Value{StringValue{Val: "q"}, IntValue{Val: 1}}}, `["q", 1]`},
		{&ArrayValue{}, "[]"},
		{&StructValue{Name: "E"}, "E {}"},
		{EnumValue{Enum: "Color", Variant: "Red"}, "Color::Red"},
		{&ModuleValue{Name: "m"}, "<module m>"},
	}
	for i, tt := range tests {
		if got := Format(tt.value); got != tt.want {
			t.Fatalf("tests[%d] - Format = %q, want %q", i, got, tt.want)
		}
	}
}
