package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Fetcher materialises a git dependency and reports the commit it pinned.
type Fetcher interface {
	Fetch(ctx context.Context, name string, dep *DependencySpec) (dir string, commit string, err error)
}

// GitFetcher clones git dependencies into <cache>/pkg/<name>/<commit>.
type GitFetcher struct {
	CacheDir string
	Logger   *slog.Logger
}

// NewGitFetcher returns a fetcher writing under cacheDir.
func NewGitFetcher(cacheDir string, logger *slog.Logger) *GitFetcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &GitFetcher{CacheDir: cacheDir, Logger: logger}
}

// Fetch clones dep.Git, checks out rev, tag or branch (default HEAD) and
// moves the worktree into the cache. A commit already cached is reused.
func (f *GitFetcher) Fetch(ctx context.Context, name string, dep *DependencySpec) (string, string, error) {
	if dep == nil || dep.Git == "" {
		return "", "", fmt.Errorf("fetch %s: not a git dependency", name)
	}
	if err := os.MkdirAll(f.CacheDir, 0o755); err != nil {
		return "", "", fmt.Errorf("fetch %s: create cache: %w", name, err)
	}
	tmp, err := os.MkdirTemp(f.CacheDir, "clone-"+name+"-")
	if err != nil {
		return "", "", fmt.Errorf("fetch %s: %w", name, err)
	}
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.RemoveAll(tmp)
		}
	}()

	f.Logger.Debug("fetching dependency", "name", name, "url", dep.Git, "rev", dep.Rev, "tag", dep.Tag, "branch", dep.Branch)
	repo, err := git.PlainCloneContext(ctx, tmp, false, &git.CloneOptions{URL: dep.Git})
	if err != nil {
		return "", "", fmt.Errorf("fetch %s: clone %s: %w", name, dep.Git, err)
	}
	hash, err := repo.ResolveRevision(revisionFor(dep))
	if err != nil {
		return "", "", fmt.Errorf("fetch %s: resolve %s: %w", name, revisionFor(dep), err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return "", "", fmt.Errorf("fetch %s: worktree: %w", name, err)
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		return "", "", fmt.Errorf("fetch %s: checkout %s: %w", name, hash, err)
	}

	commit := hash.String()
	dest := PackageDir(f.CacheDir, name, commit)
	if _, err := os.Stat(dest); err == nil {
		f.Logger.Debug("dependency already cached", "name", name, "commit", commit)
		return dest, commit, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", "", fmt.Errorf("fetch %s: %w", name, err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", "", fmt.Errorf("fetch %s: %w", name, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return "", "", fmt.Errorf("fetch %s: move into cache: %w", name, err)
	}
	cleanup = false
	f.Logger.Info("dependency fetched", "name", name, "commit", commit, "dir", dest)
	return dest, commit, nil
}

func revisionFor(dep *DependencySpec) plumbing.Revision {
	switch {
	case dep.Rev != "":
		return plumbing.Revision(dep.Rev)
	case dep.Tag != "":
		return plumbing.Revision(plumbing.NewTagReferenceName(dep.Tag))
	case dep.Branch != "":
		return plumbing.Revision(plumbing.NewRemoteReferenceName("origin", dep.Branch))
	default:
		return plumbing.Revision(plumbing.HEAD)
	}
}

// PackageDir is where a resolved package lives inside the cache.
func PackageDir(cacheDir, name, version string) string {
	return filepath.Join(cacheDir, "pkg", name, version)
}
