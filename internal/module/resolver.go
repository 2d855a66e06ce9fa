// Package module resolves import names to source files and tracks which
// files are loading, so imports are cached and cycles reported.
package module

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExt is the source file suffix.
const DefaultExt = ".rv"

// DefaultLibDir is the library directory under the project root.
const DefaultLibDir = "lib"

// ErrNotFound is returned when no candidate file exists for an import.
var ErrNotFound = errors.New("module not found")

// Resolver maps an import name to a source file.
type Resolver struct {
	Root   string // project root holding the library directory
	LibDir string
	Ext    string
}

// NewResolver returns a resolver rooted at root with the default layout.
func NewResolver(root string) *Resolver {
	return &Resolver{Root: root, LibDir: DefaultLibDir, Ext: DefaultExt}
}

func (r *Resolver) ext() string {
	if r == nil || r.Ext == "" {
		return DefaultExt
	}
	return r.Ext
}

func (r *Resolver) libDir() string {
	if r == nil || r.LibDir == "" {
		return DefaultLibDir
	}
	return r.LibDir
}

func (r *Resolver) root() string {
	if r == nil || r.Root == "" {
		return "."
	}
	return r.Root
}

// Candidates lists the paths tried for name, in order.
func (r *Resolver) Candidates(name, fromDir string) []string {
	ext := r.ext()
	if fromDir == "" {
		fromDir = "."
	}

	var out []string
	if strings.HasSuffix(name, ext) {
		out = append(out, relativeTo(name, fromDir))
	}
	lib := filepath.Join(r.root(), r.libDir())
	out = append(out,
		filepath.Join(lib, name+ext),
		filepath.Join(lib, name, filepath.Base(name)+ext),
		relativeTo(name, fromDir),
		relativeTo(name+ext, fromDir),
	)
	return out
}

// Resolve returns the canonical absolute path of the first candidate that is
// a regular file.
func (r *Resolver) Resolve(name, fromDir string) (string, error) {
	for _, candidate := range r.Candidates(name, fromDir) {
		info, err := os.Stat(candidate)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		return Canonical(candidate)
	}
	return "", fmt.Errorf("%w: %q", ErrNotFound, name)
}

func relativeTo(name, dir string) string {
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(dir, name)
}

// Canonical returns the absolute, symlink free form of path.
func Canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("module: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

// BaseName is the file name of path without its suffix, the default binding
// name of a plain import.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
