// Package deps fetches the git dependencies named in raven.yaml into the
// project's library directory and pins them in raven.lock.
package deps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/raven-lang/raven/internal/config"
)

// Fetcher places the tree of url at revision into dest and returns the
// commit it resolved to.
type Fetcher interface {
	Fetch(ctx context.Context, url string, revision plumbing.Revision, dest string) (string, error)
}

// Installer brings <lib>/<name> in line with the manifest.
type Installer struct {
	Manifest *config.Manifest
	Fetcher  Fetcher
	Logger   *log.Logger

	// Update ignores the commits pinned in the lockfile.
	Update bool

	// Tool is recorded in a freshly created lockfile.
	Tool string
}

func (in *Installer) logger() *log.Logger {
	if in.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return in.Logger
}

// Install fetches every dependency and rewrites the lockfile. A dependency
// whose git URL and ref are unchanged since the last install is checked out
// at its pinned commit.
func (in *Installer) Install(ctx context.Context) (*config.Lockfile, error) {
	m := in.Manifest
	if m == nil {
		return nil, errors.New("deps: no manifest")
	}
	fetcher := in.Fetcher
	if fetcher == nil {
		fetcher = &GitFetcher{}
	}
	logger := in.logger()

	lock, err := config.LoadLockfile(m.LockPath())
	switch {
	case os.IsNotExist(err):
		lock = config.NewLockfile(in.Tool)
	case err != nil:
		return nil, fmt.Errorf("deps: %w", err)
	}

	names := m.DependencyNames()
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("deps: %w", err)
		}
		dep := m.Dependencies[name]
		dest := filepath.Join(m.LibPath(), name)

		revision := Revision(dep)
		pinned, ok := lock.Find(name)
		if ok && !in.Update && pinned.Git == dep.Git && pinned.Ref == dep.Ref() && pinned.Commit != "" {
			if current, err := HeadCommit(dest); err == nil && current == pinned.Commit {
				logger.Printf("%s is up to date at %s", name, short(current))
				continue
			}
			revision = plumbing.Revision(pinned.Commit)
		}

		logger.Printf("fetching %s (%s) from %s", name, dep.Ref(), dep.Git)
		commit, err := fetcher.Fetch(ctx, dep.Git, revision, dest)
		if err != nil {
			return nil, fmt.Errorf("deps: %s: %w", name, err)
		}
		logger.Printf("installed %s at %s", name, short(commit))
		lock.Put(&config.LockedPackage{Name: name, Git: dep.Git, Ref: dep.Ref(), Commit: commit})
	}

	lock.Prune(names)
	if err := config.WriteLockfile(lock, m.LockPath()); err != nil {
		return nil, fmt.Errorf("deps: %w", err)
	}
	return lock, nil
}

// Revision maps the manifest selector to a git revision. The default branch
// is HEAD of the clone.
func Revision(dep *config.Dependency) plumbing.Revision {
	switch {
	case dep.Rev != "":
		return plumbing.Revision(dep.Rev)
	case dep.Tag != "":
		return plumbing.Revision("refs/tags/" + dep.Tag)
	case dep.Branch != "":
		return plumbing.Revision("refs/remotes/origin/" + dep.Branch)
	}
	return plumbing.Revision(plumbing.HEAD)
}

// HeadCommit returns the commit checked out in the repository at dir.
func HeadCommit(dir string) (string, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", err
	}
	return head.Hash().String(), nil
}

func short(commit string) string {
	if len(commit) > 12 {
		return commit[:12]
	}
	return commit
}
