package deps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// GitFetcher clones with go-git into a temporary directory next to the
// destination and swaps it into place once the checkout succeeded.
type GitFetcher struct{}

// Fetch implements Fetcher.
func (GitFetcher) Fetch(ctx context.Context, url string, revision plumbing.Revision, dest string) (string, error) {
	parent := filepath.Dir(dest)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", err
	}

	tmpDir, err := os.MkdirTemp(parent, ".fetch-*")
	if err != nil {
		return "", err
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }

	repo, err := git.PlainCloneContext(ctx, tmpDir, false, &git.CloneOptions{
		URL:  url,
		Tags: git.AllTags,
	})
	if err != nil {
		cleanup()
		return "", fmt.Errorf("git clone %s: %w", url, err)
	}

	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		cleanup()
		return "", fmt.Errorf("resolve revision %s: %w", revision, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		cleanup()
		return "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		cleanup()
		return "", fmt.Errorf("git checkout %s: %w", revision, err)
	}

	if err := os.RemoveAll(dest); err != nil {
		cleanup()
		return "", err
	}
	if err := os.Rename(tmpDir, dest); err != nil {
		cleanup()
		return "", err
	}
	return hash.String(), nil
}
