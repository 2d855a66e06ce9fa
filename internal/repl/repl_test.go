package repl

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/peterh/liner"
)

// scripted feeds fixed lines and then reports EOF.
type scripted struct {
	lines   []string
	prompts []string
}

func (s *scripted) Prompt(prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	if line == "^C" {
		return "", liner.ErrPromptAborted
	}
	return line, nil
}

func runScript(t *testing.T, lines ...string) (stdout, stderr string, r *scripted) {
	t.Helper()
	var out, errs bytes.Buffer
	session := NewSession(Config{Stdout: &out, Stdin: strings.NewReader(""), Dir: t.TempDir()})
	r = &scripted{lines: lines}
	if err := New(session, &out, &errs).Loop(r); err != nil {
		t.Fatalf("loop: %v", err)
	}
	return out.String(), errs.String(), r
}

func TestLoop(t *testing.T) {
	tests := []struct {
		lines   []string
		stdout  []string
		stderr  []string
		missing []string
	}{
		{
			lines:  []string{"let x = 2;", "x * 21;"},
			stdout: []string{"42\n"},
		},
		{
			lines:  []string{"fun inc(n: int) -> int {", "  return n + 1;", "}", "inc(41);"},
			stdout: []string{"42\n"},
		},
		{
			lines:  []string{`let s = "raven";`, "s;", `print("hi {}", s);`},
			stdout: []string{"raven\n", "hi raven\n"},
		},
		{
			// a failed input keeps the earlier state
			lines:  []string{"let x = 2;", `let y: int = "s";`, "x;"},
			stdout: []string{"2\n"},
			stderr: []string{"error[Type Error]: Type mismatch: expected int, found string", "<repl>:1:14"},
		},
		{
			lines:  []string{"let x = 1 / 0;", "x;"},
			stderr: []string{"Runtime Error", "Division by zero", "1 | let x = 1 / 0;"},
		},
		{
			lines:  []string{"let x = 2;", "clear", "x;"},
			stdout: []string{"Interpreter state cleared\n"},
			stderr: []string{"Undefined variable 'x'"},
		},
		{
			lines:  []string{"help"},
			stdout: []string{"exit/quit - Exit the REPL"},
		},
		{
			lines:   []string{"quit", "print(1);"},
			stdout:  []string{"Goodbye!\n"},
			missing: []string{"1\n"},
		},
		{
			lines:   []string{"let x = 5;", "^C", "x;"},
			stdout:  []string{"5\n"},
			missing: []string{"void"},
		},
		{
			lines:   []string{"let a = [1, 2];", "a.push(3);", "a;"},
			stdout:  []string{"[1, 2, 3]\n"},
			missing: []string{"void"},
		},
	}

	for i, tt := range tests {
		stdout, stderr, _ := runScript(t, tt.lines...)
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
		for _, unwanted := range tt.missing {
			if strings.Contains(stdout, unwanted) {
				t.Fatalf("tests[%d] - stdout %q contains %q", i, stdout, unwanted)
			}
		}
	}
}

func TestContinuationPrompts(t *testing.T) {
	_, _, r := runScript(t, "if (true) {", "print(1);", "}")
	want := []string{promptMain, promptCont, promptCont, promptMain}
	if len(r.prompts) != len(want) {
		t.Fatalf("prompts = %q, want %q", r.prompts, want)
	}
	for i, p := range want {
		if r.prompts[i] != p {
			t.Fatalf("tests[%d] - prompt = %q, want %q", i, r.prompts[i], p)
		}
	}
}

func TestUnfinishedInputAtEOF(t *testing.T) {
	_, stderr, _ := runScript(t, "fun broken() -> int {")
	if !strings.Contains(stderr, "Parse Error") {
		t.Fatalf("expected a parse error for unfinished input, got %q", stderr)
	}
}

func TestComplete(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"wh", "while"},
		{"let n = le", "let n = len"},
		{"read_", "read_file"},
		{"print(tot", "print(total"},
		{"sq", "square"},
	}
	session := NewSession(Config{Dir: t.TempDir()})
	for _, src := range []string{"let total = 1;", "fun square(n: int) -> int { return n * n; }"} {
		if _, err := session.Eval(src); err != nil {
			t.Fatalf("eval %q: %v", src, err)
		}
	}
	for i, tt := range tests {
		got := complete(tt.line, session.Names())
		found := false
		for _, c := range got {
			if c == tt.want {
				found = true
			}
		}
		if !found {
			t.Fatalf("tests[%d] - complete(%q) = %q, missing %q", i, tt.line, got, tt.want)
		}
	}
	if got := complete("x + ", nil); got != nil {
		t.Fatalf("expected no completions after an operator, got %q", got)
	}
}
