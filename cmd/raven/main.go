package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/raven-lang/raven/internal/config"
	"github.com/raven-lang/raven/internal/deps"
	"github.com/raven-lang/raven/internal/lsp"
	"github.com/raven-lang/raven/internal/repl"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: raven <command> [options]\n")
	fmt.Fprintf(w, "\nCommands:\n")
	fmt.Fprintf(w, "  run [-v] [-show-ast] [file]  Check and run a Raven program (default: the raven.yaml entry)\n")
	fmt.Fprintf(w, "  check [-show-ast] <file>     Lex, parse and type check without running\n")
	fmt.Fprintf(w, "  ast <file>                   Print the syntax tree\n")
	fmt.Fprintf(w, "  repl                         Start an interactive session\n")
	fmt.Fprintf(w, "  lsp                          Serve the language server protocol on stdio\n")
	fmt.Fprintf(w, "  deps [-update]               Fetch the git dependencies listed in raven.yaml\n")
	fmt.Fprintf(w, "  test [paths...]              Run *_test.rv files and tests/ directories\n")
	fmt.Fprintf(w, "  version                      Print the version\n")
}

// run dispatches a command line and returns the exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 1
	}

	logger := log.New(stderr, "raven: ", 0)
	command, rest := args[0], args[1:]

	switch command {
	case "run":
		return runRun(rest, stdout, stderr, logger)
	case "check":
		return runCheck(rest, stdout, stderr, logger)
	case "ast":
		return runAST(rest, stdout, stderr, logger)
	case "repl":
		return runRepl(stderr)
	case "lsp":
		return runLSP(logger)
	case "deps":
		return runDeps(rest, stderr, logger)
	case "test":
		return runTest(rest, stdout, stderr)
	case "version", "-version", "--version":
		fmt.Fprintf(stdout, "raven %s\n", version)
		return 0
	case "help", "-h", "-help", "--help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		usage(stderr)
		return 1
	}
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func runRun(args []string, stdout, stderr io.Writer, logger *log.Logger) int {
	fs := newFlagSet("run", stderr)
	verbose := fs.Bool("v", false, "trace each stage and print the tokens")
	showAST := fs.Bool("show-ast", false, "print the syntax tree before running")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	path := fs.Arg(0)
	if path == "" {
		m, err := config.Find(".")
		if err != nil || m.EntryPath() == "" {
			fmt.Fprintf(stderr, "Usage: raven run [-v] [-show-ast] <file>\n")
			fmt.Fprintf(stderr, "(no file given and no entry in %s)\n", config.ManifestName)
			return 1
		}
		path = m.EntryPath()
	}

	p := &pipeline{stdout: stdout, stderr: stderr, logger: logger, verbose: *verbose, showAST: *showAST}
	return p.exit(p.run(path))
}

func runCheck(args []string, stdout, stderr io.Writer, logger *log.Logger) int {
	fs := newFlagSet("check", stderr)
	showAST := fs.Bool("show-ast", false, "print the syntax tree")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		fmt.Fprintf(stderr, "Usage: raven check [-show-ast] <file>\n")
		return 1
	}

	p := &pipeline{stdout: stdout, stderr: stderr, logger: logger, showAST: *showAST}
	_, err := p.check(fs.Arg(0))
	if code := p.exit(err); code != 0 {
		return code
	}
	fmt.Fprintln(stdout, "All checks passed")
	return 0
}

func runAST(args []string, stdout, stderr io.Writer, logger *log.Logger) int {
	if len(args) < 1 {
		fmt.Fprintf(stderr, "Usage: raven ast <file>\n")
		return 1
	}
	p := &pipeline{stdout: stdout, stderr: stderr, logger: logger, showAST: true}
	_, err := p.parse(args[0])
	return p.exit(err)
}

func runRepl(stderr io.Writer) int {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	m, err := config.FindOrDefault(cwd)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if err := repl.Run(repl.Config{Dir: cwd, Resolver: m.Resolver()}); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func runLSP(logger *log.Logger) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	lsp.Version = version
	if err := lsp.NewServer(logger).Run(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		logger.Printf("lsp: %v", err)
		return 1
	}
	return 0
}

func runDeps(args []string, stderr io.Writer, logger *log.Logger) int {
	fs := newFlagSet("deps", stderr)
	update := fs.Bool("update", false, "ignore pinned commits and fetch the latest revisions")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	m, err := config.Find(".")
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if len(m.Dependencies) == 0 {
		logger.Printf("%s declares no dependencies", m.Path)
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	installer := &deps.Installer{
		Manifest: m,
		Logger:   logger,
		Update:   *update,
		Tool:     "raven " + version,
	}
	lock, err := installer.Install(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	logger.Printf("wrote %s (%d packages)", lock.Path, len(lock.Packages))
	return 0
}
