package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func runCLI(args ...string) (code int, stdout, stderr string) {
	var out, errs bytes.Buffer
	code = run(args, &out, &errs)
	return code, out.String(), errs.String()
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	hello := filepath.Join(dir, "hello.rv")
	writeFile(t, hello, `fun greet(name: string) -> string { return "Hello, " + name; }
let total: int = 0;
for (let i: int = 1; i <= 4; i = i + 1) { total = total + i; }
print(greet("Raven"));
print("total {}", total);
`)
	typeErr := filepath.Join(dir, "type_err.rv")
	writeFile(t, typeErr, "let ok = 1;\nlet bad: int = \"s\";\n")
	runtimeErr := filepath.Join(dir, "runtime_err.rv")
	writeFile(t, runtimeErr, "let a = [1, 2];\nprint(a[5]);\n")
	parseErr := filepath.Join(dir, "parse_err.rv")
	writeFile(t, parseErr, "let x = ;\n")

	tests := []struct {
		args   []string
		code   int
		stdout []string
		stderr []string
	}{
		{[]string{"version"}, 0, []string{"raven " + version}, nil},
		{[]string{"run", hello}, 0, []string{"Hello, Raven\n", "total 10\n"}, nil},
		{[]string{"run", "-v", hello}, 0, []string{"IDENT", "Hello, Raven\n"}, []string{"raven: lexing", "raven: executing"}},
		{[]string{"run", "-show-ast", hello}, 0, []string{"Fun greet(name: string) -> string", "Hello, Raven\n"}, nil},
		{[]string{"check", hello}, 0, []string{"All checks passed\n"}, nil},
		{[]string{"ast", hello}, 0, []string{"Block\n", "Let total: int"}, nil},
		{[]string{"check", typeErr}, 1, nil, []string{"error[Type Error]: Type mismatch: expected int, found string", "type_err.rv:2:16", `2 | let bad: int = "s";`}},
		{[]string{"run", runtimeErr}, 1, nil, []string{"error[Runtime Error]: Index 5 out of bounds for array of length 2", "runtime_err.rv:2:"}},
		{[]string{"run", parseErr}, 1, nil, []string{"error[Parse Error]"}},
		{[]string{"run", filepath.Join(dir, "missing.rv")}, 1, nil, []string{"cannot read"}},
		{[]string{"check"}, 1, nil, []string{"Usage: raven check"}},
		{[]string{"frobnicate"}, 1, nil, []string{"Unknown command: frobnicate", "Usage: raven"}},
		{nil, 1, nil, []string{"Usage: raven"}},
	}

	for i, tt := range tests {
		code, stdout, stderr := runCLI(tt.args...)
		if code != tt.code {
			t.Fatalf("tests[%d] - %v exit code = %d, want %d\nstderr: %s", i, tt.args, code, tt.code, stderr)
		}
		for _, want := range tt.stdout {
			if !strings.Contains(stdout, want) {
				t.Fatalf("tests[%d] - stdout %q does not contain %q", i, stdout, want)
			}
		}
		for _, want := range tt.stderr {
			if !strings.Contains(stderr, want) {
				t.Fatalf("tests[%d] - stderr %q does not contain %q", i, stderr, want)
			}
		}
	}
}

func TestRunManifestProject(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "raven.yaml"), "name: shapes\nentry: src/main.rv\nlib: vendor\n")
	writeFile(t, filepath.Join(dir, "vendor", "geo", "geo.rv"), `export fun area(w: int, h: int) -> int { return w * h; }
let hidden = 1;
`)
	writeFile(t, filepath.Join(dir, "src", "main.rv"), `import "geo";
print("area {}", geo.area(3, 4));
`)
	prevDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prevDir) })

	code, stdout, stderr := runCLI("run")
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, stderr)
	}
	if stdout != "area 12\n" {
		t.Fatalf("stdout = %q", stdout)
	}

	writeFile(t, filepath.Join(dir, "src", "leak.rv"), "import \"geo\";\nprint(geo.hidden);\n")
	code, _, stderr = runCLI("check", filepath.Join("src", "leak.rv"))
	if code != 1 || !strings.Contains(stderr, "hidden") {
		t.Fatalf("expected unexported access to fail, got %d: %s", code, stderr)
	}
}

func TestImportCycleReported(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.rv"), "import \"b\";\nprint(1);\n")
	writeFile(t, filepath.Join(dir, "b.rv"), "import \"a\";\n")

	code, _, stderr := runCLI("run", filepath.Join(dir, "a.rv"))
	if code != 1 || !strings.Contains(stderr, "import cycle detected: a.rv -> b.rv -> a.rv") {
		t.Fatalf("expected a cycle error, got %d: %s", code, stderr)
	}
}

func TestTestCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "math_test.rv"), `fun double(n: int) -> int { return n * 2; }
fun test_double() -> bool { return double(2) == 4; }
fun test_wrong() -> bool { print("double(3) = {}", double(3)); return double(3) == 7; }
fun test_crash() -> int { let a: int[] = []; return a.pop(); }
fun helper() -> int { return 1; }
`)
	writeFile(t, filepath.Join(dir, "tests", "smoke.rv"), "let x = 1;\n")
	writeFile(t, filepath.Join(dir, "tests", "broken.rv"), "let x: int = true;\n")
	writeFile(t, filepath.Join(dir, "main.rv"), "fun test_not_collected() -> bool { return false; }\n")
	writeFile(t, filepath.Join(dir, ".hidden", "skip_test.rv"), "let y = ;\n")

	code, stdout, _ := runCLI("test", dir)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1\n%s", code, stdout)
	}

	tests := []string{
		"  ✓ test_double\n",
		"  ✗ test_wrong\n    Error: returned false\n    Output: double(3) = 6\n",
		"  ✗ test_crash\n    Error: ",
		"Cannot pop from an empty array",
		"  ✓ smoke.rv\n",
		"  ✗ broken.rv\n",
		"Test Results: 5 total, 2 passed, 3 failed\n",
	}
	for i, want := range tests {
		if !strings.Contains(stdout, want) {
			t.Fatalf("tests[%d] - output does not contain %q:\n%s", i, want, stdout)
		}
	}
	for _, unwanted := range []string{"helper", "test_not_collected", "skip_test"} {
		if strings.Contains(stdout, unwanted) {
			t.Fatalf("output mentions %s:\n%s", unwanted, stdout)
		}
	}

	writeFile(t, filepath.Join(dir, "ok", "ok_test.rv"), "fun test_ok() -> bool { return true; }\n")
	if code, stdout, _ := runCLI("test", filepath.Join(dir, "ok")); code != 0 || !strings.Contains(stdout, "1 total, 1 passed, 0 failed") {
		t.Fatalf("expected a passing run, got %d:\n%s", code, stdout)
	}
}
