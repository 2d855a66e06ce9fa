// Package config loads the raven.yaml project manifest and the raven.lock
// lockfile.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/raven-lang/raven/internal/module"
)

// ManifestName is the file Find looks for.
const ManifestName = "raven.yaml"

// ErrNoManifest is returned by Find when no directory up to the root holds a
// manifest.
var ErrNoManifest = errors.New("manifest: raven.yaml not found")

// Manifest is a parsed raven.yaml. Root is the directory holding it.
type Manifest struct {
	Path         string
	Root         string
	Name         string
	Version      string
	Entry        string
	Lib          string
	Ext          string
	Dependencies map[string]*Dependency
}

// Dependency is a git-hosted module fetched into <lib>/<name>. At most one
// of Rev, Tag and Branch selects the commit; none means the default branch.
type Dependency struct {
	Git    string `yaml:"git"`
	Rev    string `yaml:"rev"`
	Tag    string `yaml:"tag"`
	Branch string `yaml:"branch"`
}

// Ref describes which commit the dependency asks for.
func (d *Dependency) Ref() string {
	switch {
	case d.Rev != "":
		return "rev " + d.Rev
	case d.Tag != "":
		return "tag " + d.Tag
	case d.Branch != "":
		return "branch " + d.Branch
	}
	return "default branch"
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

type manifestFile struct {
	Name         string                 `yaml:"name"`
	Version      string                 `yaml:"version"`
	Entry        string                 `yaml:"entry"`
	Lib          string                 `yaml:"lib"`
	Ext          string                 `yaml:"ext"`
	Dependencies map[string]*Dependency `yaml:"dependencies"`
}

// Default is the configuration used when a project has no manifest.
func Default(root string) *Manifest {
	return &Manifest{
		Root:         root,
		Lib:          module.DefaultLibDir,
		Ext:          module.DefaultExt,
		Dependencies: map[string]*Dependency{},
	}
}

// Load parses and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", abs, err)
	}
	defer file.Close()

	m, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%w (in %s)", err, abs)
	}
	m.Path = abs
	m.Root = filepath.Dir(abs)
	return m, nil
}

// Decode reads a manifest from r. Unknown keys are an error.
func Decode(r io.Reader) (*Manifest, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: file is empty")
		}
		return nil, fmt.Errorf("manifest: parse: %w", err)
	}

	m := raw.toManifest()
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (mf manifestFile) toManifest() *Manifest {
	m := &Manifest{
		Name:         strings.TrimSpace(mf.Name),
		Version:      strings.TrimSpace(mf.Version),
		Entry:        strings.TrimSpace(mf.Entry),
		Lib:          strings.TrimSpace(mf.Lib),
		Ext:          strings.TrimSpace(mf.Ext),
		Dependencies: make(map[string]*Dependency, len(mf.Dependencies)),
	}
	if m.Lib == "" {
		m.Lib = module.DefaultLibDir
	}
	if m.Ext == "" {
		m.Ext = module.DefaultExt
	}
	for name, dep := range mf.Dependencies {
		if dep == nil {
			dep = &Dependency{}
		}
		m.Dependencies[strings.TrimSpace(name)] = &Dependency{
			Git:    strings.TrimSpace(dep.Git),
			Rev:    strings.TrimSpace(dep.Rev),
			Tag:    strings.TrimSpace(dep.Tag),
			Branch: strings.TrimSpace(dep.Branch),
		}
	}
	return m
}

var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	} else if !namePattern.MatchString(m.Name) {
		errs.Issues = append(errs.Issues, fmt.Sprintf("name %q must be an identifier", m.Name))
	}
	if !strings.HasPrefix(m.Ext, ".") {
		errs.Issues = append(errs.Issues, fmt.Sprintf("ext %q must start with '.'", m.Ext))
	}
	if filepath.IsAbs(m.Lib) || strings.HasPrefix(filepath.Clean(m.Lib), "..") {
		errs.Issues = append(errs.Issues, fmt.Sprintf("lib %q must be a directory inside the project", m.Lib))
	}
	if m.Entry != "" && filepath.IsAbs(m.Entry) {
		errs.Issues = append(errs.Issues, fmt.Sprintf("entry %q must be relative to the project", m.Entry))
	}

	for _, name := range m.DependencyNames() {
		dep := m.Dependencies[name]
		if !namePattern.MatchString(name) {
			errs.Issues = append(errs.Issues, fmt.Sprintf("dependencies.%s: name must be an identifier", name))
		}
		if dep.Git == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("dependencies.%s: git must be provided", name))
		}
		selectors := 0
		for _, s := range []string{dep.Rev, dep.Tag, dep.Branch} {
			if s != "" {
				selectors++
			}
		}
		if selectors > 1 {
			errs.Issues = append(errs.Issues, fmt.Sprintf("dependencies.%s: specify at most one of rev, tag or branch", name))
		}
	}

	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// DependencyNames lists the dependencies in sorted order.
func (m *Manifest) DependencyNames() []string {
	names := make([]string, 0, len(m.Dependencies))
	for name := range m.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EntryPath is the absolute path of the entry file, or "" when none is set.
func (m *Manifest) EntryPath() string {
	if m.Entry == "" {
		return ""
	}
	return filepath.Join(m.Root, m.Entry)
}

// LibPath is the absolute directory dependencies are fetched into.
func (m *Manifest) LibPath() string {
	return filepath.Join(m.Root, m.Lib)
}

// LockPath is where the lockfile for this manifest lives.
func (m *Manifest) LockPath() string {
	return filepath.Join(m.Root, LockName)
}

// Resolver returns the module resolver for this project.
func (m *Manifest) Resolver() *module.Resolver {
	return &module.Resolver{Root: m.Root, LibDir: m.Lib, Ext: m.Ext}
}

// Find walks up from startDir looking for raven.yaml and loads the first one
// found.
func Find(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", startDir, err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return Load(candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, ErrNoManifest
		}
		dir = parent
	}
}

// FindOrDefault is Find with a fallback to Default rooted at startDir.
func FindOrDefault(startDir string) (*Manifest, error) {
	m, err := Find(startDir)
	if errors.Is(err, ErrNoManifest) {
		root, absErr := filepath.Abs(startDir)
		if absErr != nil {
			return nil, fmt.Errorf("manifest: resolve %s: %w", startDir, absErr)
		}
		return Default(root), nil
	}
	return m, err
}
