package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/raven-lang/raven/internal/ast"
	"github.com/raven-lang/raven/internal/interp"
	"github.com/raven-lang/raven/internal/module"
)

// TestResult represents the result of running a single test
type TestResult struct {
	Name   string
	Passed bool
	Error  error
	Output string
}

// runTest executes the test command
func runTest(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		args = []string{"."}
	}

	failed := false
	for _, path := range args {
		ok, err := runAllTests(path, stdout)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		if !ok {
			failed = true
		}
	}
	if failed {
		return 1
	}
	return 0
}

// runAllTests discovers and runs all tests in the given directory or file.
// It reports whether every test passed.
func runAllTests(path string, w io.Writer) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("accessing path %s: %w", path, err)
	}

	var testFiles []string
	if info.IsDir() {
		testFiles, err = findTestFiles(path)
		if err != nil {
			return false, fmt.Errorf("finding test files: %w", err)
		}
	} else if strings.HasSuffix(path, module.DefaultExt) {
		testFiles = []string{path}
	}

	if len(testFiles) == 0 {
		fmt.Fprintf(w, "No test files found in %s\n", path)
		return true, nil
	}

	fmt.Fprintf(w, "Running tests in %s...\n\n", path)

	var totalTests, passedTests, failedTests int
	for _, testFile := range testFiles {
		fmt.Fprintf(w, "%s\n", testFile)
		for _, result := range runTestFile(testFile) {
			totalTests++
			if result.Passed {
				passedTests++
				fmt.Fprintf(w, "  ✓ %s\n", result.Name)
				continue
			}
			failedTests++
			fmt.Fprintf(w, "  ✗ %s\n", result.Name)
			if result.Error != nil {
				fmt.Fprintf(w, "    Error: %v\n", result.Error)
			}
			if result.Output != "" {
				fmt.Fprintf(w, "    Output: %s\n", result.Output)
			}
		}
	}

	fmt.Fprintf(w, "\nTest Results: %d total, %d passed, %d failed\n", totalTests, passedTests, failedTests)
	return failedTests == 0, nil
}

// findTestFiles finds all test files in the given directory.
// Test files are those ending with _test.rv or in a tests/ directory.
func findTestFiles(dir string) ([]string, error) {
	var testFiles []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, module.DefaultExt) {
			return nil
		}
		if strings.HasSuffix(path, "_test"+module.DefaultExt) || filepath.Base(filepath.Dir(path)) == "tests" {
			testFiles = append(testFiles, path)
		}
		return nil
	})

	return testFiles, err
}

// runTestFile checks and runs a file, then calls each of its test_ functions
// on the resulting state. A test fails when it raises a runtime error or
// returns false. A file without test functions is a single test.
func runTestFile(filename string) []TestResult {
	name := filepath.Base(filename)
	var out bytes.Buffer
	p := &pipeline{
		stdout: &out,
		stderr: io.Discard,
		stdin:  strings.NewReader(""),
		logger: log.New(io.Discard, "", 0),
	}

	u, err := p.check(filename)
	if err != nil {
		return []TestResult{{Name: name, Error: err}}
	}
	in, err := p.execute(u)
	if err != nil {
		return []TestResult{{Name: name, Error: err, Output: strings.TrimSpace(out.String())}}
	}

	testFunctions := findTestFunctions(u.prog)
	if len(testFunctions) == 0 {
		return []TestResult{{Name: name, Passed: true}}
	}

	var results []TestResult
	for _, fn := range testFunctions {
		results = append(results, runSingleTest(in, fn, &out))
	}
	return results
}

// findTestFunctions finds all top-level functions whose name starts with "test_"
func findTestFunctions(prog *ast.BlockStmt) []*ast.FunDecl {
	var testFunctions []*ast.FunDecl
	for _, stmt := range prog.Stmts {
		if export, ok := stmt.(*ast.ExportStmt); ok {
			stmt = export.Stmt
		}
		if fn, ok := stmt.(*ast.FunDecl); ok && strings.HasPrefix(fn.Name.Name, "test_") {
			testFunctions = append(testFunctions, fn)
		}
	}
	return testFunctions
}

func runSingleTest(in *interp.Interpreter, fn *ast.FunDecl, out *bytes.Buffer) TestResult {
	result := TestResult{Name: fn.Name.Name}
	if len(fn.Params) > 0 {
		result.Error = errors.New("test functions take no arguments")
		return result
	}

	out.Reset()
	v, err := in.CallFunction(fn.Name.Name, nil)
	switch {
	case err != nil:
		result.Error = err
	case isFalse(v):
		result.Error = errors.New("returned false")
	default:
		result.Passed = true
	}
	if !result.Passed {
		result.Output = strings.TrimSpace(out.String())
	}
	return result
}

func isFalse(v interp.Value) bool {
	b, ok := v.(interp.BoolValue)
	return ok && !b.Val
}
