package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const testTool = "rift test"

func initGitRepo(t *testing.T, dir string) (*git.Repository, string) {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	return repo, commitAll(t, repo, dir, "init")
}

func commitAll(t *testing.T, repo *git.Repository, dir, message string) string {
	t.Helper()
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == filepath.Join(dir, ".git") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		_, err = worktree.Add(rel)
		return err
	}); err != nil {
		t.Fatalf("stage files: %v", err)
	}
	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Rift CLI",
			Email: "rift@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return hash.String()
}

func loadTestManifest(t *testing.T, path string) *Manifest {
	t.Helper()
	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	return manifest
}

func TestInstallerPathDependencyTransitive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app", ManifestName), `
name: app
version: 0.1.0
dependencies:
  dep:
    path: ../dep
`)
	writeFile(t, filepath.Join(root, "dep", ManifestName), `
name: dep
version: 0.2.0
dependencies:
  leaf:
    path: ./vendor/leaf
`)
	writeFile(t, filepath.Join(root, "dep", "vendor", "leaf", "main.rift"), "share let leaf = 1")

	manifest := loadTestManifest(t, filepath.Join(root, "app", ManifestName))
	lock := NewLockfile(manifest.Name, testTool)
	installer := NewInstaller(manifest, filepath.Join(root, "cache"), nil, nil)

	changed, logs, err := installer.Install(context.Background(), lock)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if !changed || len(logs) != 2 {
		t.Fatalf("expected change with two log lines, got %v %q", changed, logs)
	}
	if len(lock.Packages) != 2 {
		t.Fatalf("lock packages = %#v", lock.Packages)
	}
	dep, leaf := lock.Packages[0], lock.Packages[1]
	if dep.Name != "dep" || dep.Version != "0.2.0" || dep.Source != "path:"+filepath.Join(root, "dep") {
		t.Fatalf("dep entry unexpected: %#v", dep)
	}
	if !reflect.DeepEqual(dep.Dependencies, []string{"leaf"}) {
		t.Fatalf("dep dependencies = %v", dep.Dependencies)
	}
	if leaf.Name != "leaf" || leaf.Version != "0.0.0" || leaf.Source != "path:"+filepath.Join(root, "dep", "vendor", "leaf") {
		t.Fatalf("leaf entry unexpected: %#v", leaf)
	}

	changed, _, err = installer.Install(context.Background(), lock)
	if err != nil {
		t.Fatalf("second Install: %v", err)
	}
	if changed {
		t.Fatalf("second install should leave the lockfile unchanged")
	}

	dirs := DependencyDirs(lock, filepath.Join(root, "cache"))
	if dirs["leaf"] != filepath.Join(root, "dep", "vendor", "leaf") {
		t.Fatalf("DependencyDirs = %v", dirs)
	}
}

func TestInstallerGitDependency(t *testing.T) {
	root := t.TempDir()
	repoDir := filepath.Join(root, "repo")
	writeFile(t, filepath.Join(repoDir, ManifestName), "name: gitpkg\nversion: 0.2.0")
	writeFile(t, filepath.Join(repoDir, "main.rift"), `share let origin = "git"`)
	_, rev := initGitRepo(t, repoDir)

	writeFile(t, filepath.Join(root, "app", ManifestName), `
name: app
dependencies:
  gitpkg:
    git: `+repoDir+`
    rev: `+rev+`
`)
	manifest := loadTestManifest(t, filepath.Join(root, "app", ManifestName))
	cacheDir := filepath.Join(root, "cache")
	installer := NewInstaller(manifest, cacheDir, nil, nil)
	lock := NewLockfile(manifest.Name, testTool)

	changed, _, err := installer.Install(context.Background(), lock)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if !changed || len(lock.Packages) != 1 {
		t.Fatalf("unexpected lock %#v", lock.Packages)
	}
	pkg := lock.Packages[0]
	if want := fmt.Sprintf("git+%s@%s", repoDir, rev); pkg.Source != want {
		t.Fatalf("Source = %q, want %q", pkg.Source, want)
	}
	if pkg.Version != rev {
		t.Fatalf("Version = %q, want %q", pkg.Version, rev)
	}
	cached := PackageDir(cacheDir, "gitpkg", rev)
	if _, err := os.Stat(filepath.Join(cached, "main.rift")); err != nil {
		t.Fatalf("expected checked-out source in cache: %v", err)
	}

	// A locked, cached commit is reused without cloning again.
	installer = NewInstaller(manifest, cacheDir, failingFetcher{t}, nil)
	changed, _, err = installer.Install(context.Background(), lock)
	if err != nil || changed {
		t.Fatalf("expected cached reuse, got changed=%v err=%v", changed, err)
	}
}

func TestInstallerGitBranch(t *testing.T) {
	root := t.TempDir()
	repoDir := filepath.Join(root, "repo")
	writeFile(t, filepath.Join(repoDir, "main.rift"), `share let origin = "main"`)
	repo, _ := initGitRepo(t, repoDir)

	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Branch: plumbing.NewBranchReferenceName("feature"), Create: true}); err != nil {
		t.Fatalf("create branch: %v", err)
	}
	writeFile(t, filepath.Join(repoDir, "main.rift"), `share let origin = "feature"`)
	featureRev := commitAll(t, repo, repoDir, "feature work")

	writeFile(t, filepath.Join(root, "app", ManifestName), `
name: app
dependencies:
  gitpkg:
    git: `+repoDir+`
    branch: feature
`)
	manifest := loadTestManifest(t, filepath.Join(root, "app", ManifestName))
	cacheDir := filepath.Join(root, "cache")
	lock := NewLockfile(manifest.Name, testTool)
	if _, _, err := NewInstaller(manifest, cacheDir, nil, nil).Install(context.Background(), lock); err != nil {
		t.Fatalf("Install: %v", err)
	}
	if got := lock.Packages[0].Version; got != featureRev {
		t.Fatalf("branch resolved to %s, want %s", got, featureRev)
	}
	data, err := os.ReadFile(filepath.Join(PackageDir(cacheDir, "gitpkg", featureRev), "main.rift"))
	if err != nil {
		t.Fatalf("read cached file: %v", err)
	}
	if !strings.Contains(string(data), "feature") {
		t.Fatalf("expected feature branch contents, got %q", data)
	}
}

func TestInstallerVersionDependencyUsesCache(t *testing.T) {
	root := t.TempDir()
	cacheDir := filepath.Join(root, "cache")
	writeFile(t, filepath.Join(PackageDir(cacheDir, "geometry", "1.4.0"), "main.rift"), "share let PI = 3")
	writeFile(t, filepath.Join(root, "app", ManifestName), `
name: app
dependencies:
  geometry: v1.4.0
  missing: 2.0.0
`)
	manifest := loadTestManifest(t, filepath.Join(root, "app", ManifestName))
	lock := NewLockfile(manifest.Name, testTool)
	_, _, err := NewInstaller(manifest, cacheDir, nil, nil).Install(context.Background(), lock)
	if err == nil || !strings.Contains(err.Error(), "missing 2.0.0 is not in the cache") {
		t.Fatalf("expected cache miss for missing, got %v", err)
	}

	delete(manifest.Dependencies, "missing")
	changed, _, err := NewInstaller(manifest, cacheDir, nil, nil).Install(context.Background(), lock)
	if err != nil || !changed {
		t.Fatalf("Install: changed=%v err=%v", changed, err)
	}
	if pkg := lock.Packages[0]; pkg.Version != "1.4.0" || pkg.Source != "version:1.4.0" {
		t.Fatalf("unexpected entry %#v", pkg)
	}
}

func TestInstallerRejectsForeignLockfile(t *testing.T) {
	manifest := &Manifest{Name: "app", Path: filepath.Join(t.TempDir(), ManifestName)}
	_, _, err := NewInstaller(manifest, t.TempDir(), nil, nil).Install(context.Background(), NewLockfile("other", testTool))
	if err == nil || !strings.Contains(err.Error(), `lockfile root "other" does not match`) {
		t.Fatalf("expected root mismatch, got %v", err)
	}
}

type failingFetcher struct {
	t *testing.T
}

func (f failingFetcher) Fetch(context.Context, string, *DependencySpec) (string, string, error) {
	f.t.Fatalf("fetch should not be called")
	return "", "", nil
}
