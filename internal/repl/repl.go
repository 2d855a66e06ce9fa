package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"

	"github.com/raven-lang/raven/internal/builtins"
	"github.com/raven-lang/raven/internal/diag"
	"github.com/raven-lang/raven/internal/interp"
	"github.com/raven-lang/raven/internal/lexer"
	"github.com/raven-lang/raven/internal/parser"
)

const (
	promptMain  = "raven> "
	promptCont  = "  ...> "
	historyFile = ".raven_history"
)

const banner = `Raven REPL
Type 'exit' or 'quit' to exit, 'help' for help`

const helpText = `Available commands:
  exit/quit - Exit the REPL
  help      - Show this help
  clear     - Clear the interpreter state
  Any valid Raven expression or statement`

// lineReader is the part of liner.State the loop needs.
type lineReader interface {
	Prompt(prompt string) (string, error)
}

// REPL drives a Session from a line reader.
type REPL struct {
	session *Session
	out     io.Writer
	errs    *diag.Formatter

	// history receives every accepted input
	history func(string)
}

// New wraps session. Results go to out, diagnostics to errOut.
func New(session *Session, out, errOut io.Writer) *REPL {
	return &REPL{
		session: session,
		out:     out,
		errs:    diag.NewFormatter(errOut),
		history: func(string) {},
	}
}

// Run starts an interactive session on the terminal, with line editing and
// history kept in ~/.raven_history.
func Run(cfg Config) error {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	out := cfg.Stdout
	if out == nil {
		out = os.Stdout
	}
	r := New(NewSession(cfg), out, os.Stderr)
	ln.SetCompleter(func(line string) []string { return complete(line, r.session.Names()) })
	r.history = func(src string) { ln.AppendHistory(strings.ReplaceAll(src, "\n", " ")) }
	return r.Loop(ln)
}

// Loop reads inputs until EOF or an exit command.
func (r *REPL) Loop(lr lineReader) error {
	fmt.Fprintln(r.out, banner)
	for {
		src, err := r.read(lr)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(r.out)
			return nil
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			return err
		}

		switch strings.TrimSpace(src) {
		case "":
			continue
		case "exit", "quit":
			fmt.Fprintln(r.out, "Goodbye!")
			return nil
		case "help":
			fmt.Fprintln(r.out, helpText)
			continue
		case "clear":
			r.session.Reset()
			fmt.Fprintln(r.out, "Interpreter state cleared")
			continue
		}

		r.history(src)
		r.eval(src)
	}
}

func (r *REPL) eval(src string) {
	v, err := r.session.Eval(src)
	if err != nil {
		_ = r.errs.PrintError(err)
		return
	}
	if v != nil && v.Kind() != interp.KindVoid {
		fmt.Fprintln(r.out, interp.Format(v))
	}
}

// read collects lines until they parse or fail for a reason other than
// running out of input.
func (r *REPL) read(lr lineReader) (string, error) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := lr.Prompt(prompt)
		if err != nil {
			if errors.Is(err, io.EOF) && b.Len() > 0 {
				// submit what we have; the parse error will explain
				return b.String(), nil
			}
			return "", err
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.TrimSpace(src) == "" {
			return src, nil
		}
		if _, err := r.session.Parse(src); parser.IsIncomplete(err) && !isCommand(src) {
			continue
		}
		return src, nil
	}
}

func isCommand(src string) bool {
	switch strings.TrimSpace(src) {
	case "exit", "quit", "help", "clear":
		return true
	}
	return false
}

// complete offers keywords, builtin names and defined names for the word
// before the cursor.
func complete(line string, defined []string) []string {
	start := strings.LastIndexFunc(line, func(r rune) bool {
		return !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	}) + 1
	prefix := line[start:]
	if prefix == "" {
		return nil
	}

	words := lexer.Keywords()
	for _, f := range builtins.Funcs() {
		words = append(words, f.String())
	}
	words = append(words, defined...)
	sort.Strings(words)

	var out []string
	for _, w := range words {
		if strings.HasPrefix(w, prefix) {
			out = append(out, line[:start]+w)
		}
	}
	return out
}
