package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LockName is the lockfile written next to raven.yaml.
const LockName = "raven.lock"

// Lockfile records the commit each dependency resolved to.
type Lockfile struct {
	Path      string           `yaml:"-"`
	Generated string           `yaml:"generated"`
	Tool      string           `yaml:"tool"`
	Packages  []*LockedPackage `yaml:"packages"`
}

// LockedPackage is one pinned dependency.
type LockedPackage struct {
	Name   string `yaml:"name"`
	Git    string `yaml:"git"`
	Ref    string `yaml:"ref"`
	Commit string `yaml:"commit"`
}

// NewLockfile returns an empty lockfile stamped with tool.
func NewLockfile(tool string) *Lockfile {
	return &Lockfile{
		Generated: time.Now().UTC().Format(time.RFC3339),
		Tool:      strings.TrimSpace(tool),
	}
}

// LoadLockfile parses the lockfile at path. A missing file is returned as an
// error satisfying os.IsNotExist.
func LoadLockfile(path string) (*Lockfile, error) {
	if path == "" {
		return nil, fmt.Errorf("lockfile: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lock Lockfile
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&lock); err != nil {
		return nil, fmt.Errorf("lockfile: parse %s: %w", abs, err)
	}
	lock.Path = abs
	lock.normalize()
	return &lock, nil
}

// WriteLockfile writes lock to path, or to lock.Path when path is empty.
func WriteLockfile(lock *Lockfile, path string) error {
	if lock == nil {
		return fmt.Errorf("lockfile: nil lockfile")
	}
	if path == "" {
		if lock.Path == "" {
			return fmt.Errorf("lockfile: missing path")
		}
		path = lock.Path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}
	if lock.Generated == "" {
		lock.Generated = time.Now().UTC().Format(time.RFC3339)
	}
	lock.Path = abs
	lock.normalize()

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(lock); err != nil {
		return fmt.Errorf("lockfile: marshal %s: %w", abs, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("lockfile: encoder close: %w", err)
	}
	if err := os.WriteFile(abs, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("lockfile: write %s: %w", abs, err)
	}
	return nil
}

// Find returns the pinned entry for name.
func (l *Lockfile) Find(name string) (*LockedPackage, bool) {
	for _, pkg := range l.Packages {
		if pkg.Name == name {
			return pkg, true
		}
	}
	return nil, false
}

// Put adds or replaces the entry for pkg.Name.
func (l *Lockfile) Put(pkg *LockedPackage) {
	for i, existing := range l.Packages {
		if existing.Name == pkg.Name {
			l.Packages[i] = pkg
			return
		}
	}
	l.Packages = append(l.Packages, pkg)
	l.normalize()
}

// Prune drops entries whose name is not in keep.
func (l *Lockfile) Prune(keep []string) {
	wanted := make(map[string]bool, len(keep))
	for _, name := range keep {
		wanted[name] = true
	}
	out := l.Packages[:0]
	for _, pkg := range l.Packages {
		if wanted[pkg.Name] {
			out = append(out, pkg)
		}
	}
	l.Packages = out
}

func (l *Lockfile) normalize() {
	l.Tool = strings.TrimSpace(l.Tool)
	out := l.Packages[:0]
	for _, pkg := range l.Packages {
		if pkg == nil {
			continue
		}
		pkg.Name = strings.TrimSpace(pkg.Name)
		pkg.Git = strings.TrimSpace(pkg.Git)
		pkg.Ref = strings.TrimSpace(pkg.Ref)
		pkg.Commit = strings.TrimSpace(pkg.Commit)
		out = append(out, pkg)
	}
	l.Packages = out
	sort.SliceStable(l.Packages, func(i, j int) bool {
		return l.Packages[i].Name < l.Packages[j].Name
	})
}
