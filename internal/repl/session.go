// Package repl implements the interactive Raven prompt: a persistent checker
// and interpreter fed one input at a time.
package repl

import (
	"io"
	"os"
	"path/filepath"

	"github.com/raven-lang/raven/internal/ast"
	"github.com/raven-lang/raven/internal/diag"
	"github.com/raven-lang/raven/internal/interp"
	"github.com/raven-lang/raven/internal/module"
	"github.com/raven-lang/raven/internal/parser"
	"github.com/raven-lang/raven/internal/types"
)

// Filename is reported on diagnostics for interactive input.
const Filename = "<repl>"

// Config controls the streams and import resolution of a Session.
type Config struct {
	Stdout   io.Writer
	Stdin    io.Reader
	Resolver *module.Resolver

	// Dir is where relative imports and files resolve from.
	Dir string
}

// Session keeps declarations alive between inputs. A failed input leaves the
// earlier state in place.
type Session struct {
	cfg     Config
	checker *types.Checker
	interp  *interp.Interpreter
}

// NewSession starts an empty session.
func NewSession(cfg Config) *Session {
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stdin == nil {
		cfg.Stdin = os.Stdin
	}
	if cfg.Dir == "" {
		cfg.Dir = "."
	}
	if cfg.Resolver == nil {
		cfg.Resolver = module.NewResolver(cfg.Dir)
	}
	s := &Session{cfg: cfg}
	s.Reset()
	return s
}

// Reset discards every declaration.
func (s *Session) Reset() {
	filename := filepath.Join(s.cfg.Dir, Filename)
	s.checker = types.NewChecker(
		types.WithFilename(filename),
		types.WithResolver(s.cfg.Resolver),
	)
	s.interp = interp.New(
		interp.WithStdout(s.cfg.Stdout),
		interp.WithStdin(s.cfg.Stdin),
		interp.WithFilename(filename),
		interp.WithResolver(s.cfg.Resolver),
	)
}

// Parse parses one input.
func (s *Session) Parse(src string) (*ast.BlockStmt, error) {
	return parser.ParseSource(Filename, src)
}

// Eval parses, checks and runs src. The value is that of the last statement.
func (s *Session) Eval(src string) (interp.Value, error) {
	prog, err := s.Parse(src)
	if err != nil {
		return nil, err
	}
	if _, err := s.checker.Check(prog); err != nil {
		return nil, diag.Attach(err, Filename, src)
	}
	s.interp.SetSource(src)
	v, err := s.interp.Execute(prog)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Lookup returns a variable defined in the session.
func (s *Session) Lookup(name string) (interp.Value, bool) {
	return s.interp.Lookup(name)
}

// Names lists the variables and functions defined so far.
func (s *Session) Names() []string {
	return s.interp.Names()
}
