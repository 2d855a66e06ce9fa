package module

import (
	"path/filepath"
	"strings"
)

// CycleError reports an import that re-enters a file still being loaded.
type CycleError struct {
	Chain []string // canonical paths, first and last are the same file
}

func (e *CycleError) Error() string {
	names := make([]string, len(e.Chain))
	for i, p := range e.Chain {
		names[i] = filepath.Base(p)
	}
	return "import cycle detected: " + strings.Join(names, " -> ")
}

// Graph caches loaded modules by canonical path and keeps the stack of files
// currently loading. It is not safe for concurrent use.
type Graph[T any] struct {
	loaded  map[string]T
	loading []string
}

// NewGraph returns an empty graph.
func NewGraph[T any]() *Graph[T] {
	return &Graph[T]{loaded: make(map[string]T)}
}

// Load returns the cached module for path or builds it with load. A path that
// is already on the loading stack yields a *CycleError. Failed loads are not
// cached.
func (g *Graph[T]) Load(path string, load func() (T, error)) (T, error) {
	var zero T

	if mod, ok := g.loaded[path]; ok {
		return mod, nil
	}
	for i, p := range g.loading {
		if p == path {
			chain := append([]string{}, g.loading[i:]...)
			return zero, &CycleError{Chain: append(chain, path)}
		}
	}

	g.loading = append(g.loading, path)
	defer func() { g.loading = g.loading[:len(g.loading)-1] }()

	mod, err := load()
	if err != nil {
		return zero, err
	}
	g.loaded[path] = mod
	return mod, nil
}

// Enter pushes path on the loading stack for the duration of the returned
// release func. Entry files use it so an import of the entry is a cycle.
func (g *Graph[T]) Enter(path string) func() {
	g.loading = append(g.loading, path)
	return func() { g.loading = g.loading[:len(g.loading)-1] }
}

// Cached reports whether path has been loaded successfully.
func (g *Graph[T]) Cached(path string) bool {
	_, ok := g.loaded[path]
	return ok
}

// Len is the number of cached modules.
func (g *Graph[T]) Len() int { return len(g.loaded) }
