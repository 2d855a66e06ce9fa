package deps

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/raven-lang/raven/internal/config"
	"github.com/raven-lang/raven/internal/module"
)

// sourceRepo is a local git repository standing in for a remote.
type sourceRepo struct {
	t    *testing.T
	dir  string
	repo *git.Repository
}

func newSourceRepo(t *testing.T) *sourceRepo {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	return &sourceRepo{t: t, dir: dir, repo: repo}
}

func (s *sourceRepo) commit(file, contents string) string {
	s.t.Helper()
	if err := os.WriteFile(filepath.Join(s.dir, file), []byte(contents), 0o644); err != nil {
		s.t.Fatalf("write %s: %v", file, err)
	}
	worktree, err := s.repo.Worktree()
	if err != nil {
		s.t.Fatalf("Worktree: %v", err)
	}
	if _, err := worktree.Add(file); err != nil {
		s.t.Fatalf("Add: %v", err)
	}
	hash, err := worktree.Commit("update "+file, &git.CommitOptions{
		Author: &object.Signature{Name: "Raven", Email: "raven@example.com", When: time.Now()},
	})
	if err != nil {
		s.t.Fatalf("Commit: %v", err)
	}
	return hash.String()
}

func (s *sourceRepo) tag(name, commit string) {
	s.t.Helper()
	if _, err := s.repo.CreateTag(name, plumbing.NewHash(commit), nil); err != nil {
		s.t.Fatalf("CreateTag: %v", err)
	}
}

func readLib(t *testing.T, m *config.Manifest, name, file string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(m.LibPath(), name, file))
	if err != nil {
		t.Fatalf("read %s/%s: %v", name, file, err)
	}
	return string(data)
}

func TestInstallPinsAndUpdates(t *testing.T) {
	src := newSourceRepo(t)
	first := src.commit("geometry.rv", "export let version = 1;\n")
	src.tag("v1", first)
	second := src.commit("geometry.rv", "export let version = 2;\n")

	m := config.Default(t.TempDir())
	m.Dependencies["geometry"] = &config.Dependency{Git: src.dir, Tag: "v1"}

	var logs bytes.Buffer
	in := &Installer{Manifest: m, Logger: log.New(&logs, "raven: ", 0), Tool: "raven test"}
	ctx := context.Background()

	steps := []struct {
		prepare func()
		commit  func() string
		content string
	}{
		{
			prepare: func() {},
			commit:  func() string { return first },
			content: "export let version = 1;\n",
		},
		{
			// selector changed: the pin no longer applies
			prepare: func() { m.Dependencies["geometry"] = &config.Dependency{Git: src.dir} },
			commit:  func() string { return second },
			content: "export let version = 2;\n",
		},
		{
			// new upstream commit, same selector: stays on the pin
			prepare: func() { src.commit("geometry.rv", "export let version = 3;\n") },
			commit:  func() string { return second },
			content: "export let version = 2;\n",
		},
	}

	for i, step := range steps {
		step.prepare()
		lock, err := in.Install(ctx)
		if err != nil {
			t.Fatalf("tests[%d] - install: %v", i, err)
		}
		pkg, ok := lock.Find("geometry")
		if !ok || pkg.Commit != step.commit() {
			t.Fatalf("tests[%d] - locked %+v, want commit %s", i, pkg, step.commit())
		}
		if got := readLib(t, m, "geometry", "geometry.rv"); got != step.content {
			t.Fatalf("tests[%d] - geometry.rv = %q, want %q", i, got, step.content)
		}
		head, err := HeadCommit(filepath.Join(m.LibPath(), "geometry"))
		if err != nil || head != step.commit() {
			t.Fatalf("tests[%d] - HEAD = %s (%v), want %s", i, head, err, step.commit())
		}
	}

	in.Update = true
	lock, err := in.Install(ctx)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := readLib(t, m, "geometry", "geometry.rv"); got != "export let version = 3;\n" {
		t.Fatalf("after update geometry.rv = %q", got)
	}
	if pkg, _ := lock.Find("geometry"); pkg.Commit == second {
		t.Fatalf("update kept the old pin")
	}

	if !strings.Contains(logs.String(), "raven: fetching geometry (default branch)") {
		t.Fatalf("missing fetch log in %q", logs.String())
	}

	onDisk, err := config.LoadLockfile(m.LockPath())
	if err != nil {
		t.Fatalf("load lockfile: %v", err)
	}
	if onDisk.Tool != "raven test" || len(onDisk.Packages) != 1 {
		t.Fatalf("lockfile on disk = %+v", onDisk)
	}

	path, err := (&module.Resolver{Root: m.Root, LibDir: m.Lib, Ext: m.Ext}).Resolve("geometry", m.Root)
	if err != nil {
		t.Fatalf("installed module does not resolve: %v", err)
	}
	if filepath.Base(path) != "geometry.rv" {
		t.Fatalf("resolved %s", path)
	}
}

func TestInstallUpToDateSkipsFetch(t *testing.T) {
	src := newSourceRepo(t)
	src.commit("util.rv", "export fun id(n: int) -> int { return n; }\n")

	m := config.Default(t.TempDir())
	m.Dependencies["util"] = &config.Dependency{Git: src.dir}
	if _, err := (&Installer{Manifest: m}).Install(context.Background()); err != nil {
		t.Fatalf("install: %v", err)
	}

	counting := &countingFetcher{}
	if _, err := (&Installer{Manifest: m, Fetcher: counting}).Install(context.Background()); err != nil {
		t.Fatalf("second install: %v", err)
	}
	if counting.calls != 0 {
		t.Fatalf("fetcher called %d times for an up to date dependency", counting.calls)
	}
}

type countingFetcher struct {
	calls int
}

func (f *countingFetcher) Fetch(context.Context, string, plumbing.Revision, string) (string, error) {
	f.calls++
	return "", errors.New("unexpected fetch")
}

func TestInstallErrors(t *testing.T) {
	m := config.Default(t.TempDir())
	m.Dependencies["missing"] = &config.Dependency{Git: filepath.Join(t.TempDir(), "no-such-repo")}

	_, err := (&Installer{Manifest: m}).Install(context.Background())
	if err == nil || !strings.HasPrefix(err.Error(), "deps: missing: git clone") {
		t.Fatalf("expected clone error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (&Installer{Manifest: m}).Install(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestRevision(t *testing.T) {
	tests := []struct {
		dep  config.Dependency
		want string
	}{
		{config.Dependency{Rev: "abc123"}, "abc123"},
		{config.Dependency{Tag: "v1.0"}, "refs/tags/v1.0"},
		{config.Dependency{Branch: "dev"}, "refs/remotes/origin/dev"},
		{config.Dependency{}, "HEAD"},
	}
	for i, tt := range tests {
		if got := string(Revision(&tt.dep)); got != tt.want {
			t.Fatalf("tests[%d] - Revision = %q, want %q", i, got, tt.want)
		}
	}
}
