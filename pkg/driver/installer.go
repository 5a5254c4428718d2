package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Installer resolves a manifest's dependency graph into a lockfile.
type Installer struct {
	manifest *Manifest
	cacheDir string
	fetcher  Fetcher
	logger   *slog.Logger
}

// NewInstaller returns an installer using a GitFetcher when fetcher is nil.
func NewInstaller(manifest *Manifest, cacheDir string, fetcher Fetcher, logger *slog.Logger) *Installer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if fetcher == nil {
		fetcher = NewGitFetcher(cacheDir, logger)
	}
	return &Installer{manifest: manifest, cacheDir: cacheDir, fetcher: fetcher, logger: logger}
}

type pendingDependency struct {
	name    string
	spec    *DependencySpec
	baseDir string
	parent  string
}

// Install resolves every direct and transitive dependency, updating lock in
// place. It reports whether lock changed plus one human-readable line per
// resolved package.
func (in *Installer) Install(ctx context.Context, lock *Lockfile) (bool, []string, error) {
	if in.manifest == nil {
		return false, nil, fmt.Errorf("install: nil manifest")
	}
	if lock.Root != in.manifest.Name {
		return false, nil, fmt.Errorf("install: lockfile root %q does not match manifest name %q", lock.Root, in.manifest.Name)
	}
	var queue []pendingDependency
	for _, name := range in.manifest.DependencyNames() {
		queue = append(queue, pendingDependency{name: name, spec: in.manifest.Dependencies[name], baseDir: in.manifest.Dir(), parent: in.manifest.Name})
	}

	resolved := map[string]*LockedPackage{}
	var order []string
	var logs []string
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return false, nil, err
		}
		next := queue[0]
		queue = queue[1:]

		pkg, dir, err := in.resolve(ctx, next, lock)
		if err != nil {
			return false, nil, err
		}
		if existing, ok := resolved[next.name]; ok {
			if existing.Source != pkg.Source {
				return false, nil, fmt.Errorf("install: %s requires %s from %s, but it already resolved to %s", next.parent, next.name, pkg.Source, existing.Source)
			}
			continue
		}
		resolved[next.name] = pkg
		order = append(order, next.name)
		logs = append(logs, fmt.Sprintf("Resolved %s %s (%s)", pkg.Name, pkg.Version, pkg.Source))

		child, err := loadOptionalManifest(dir)
		if err != nil {
			return false, nil, err
		}
		if child == nil {
			continue
		}
		for _, depName := range child.DependencyNames() {
			pkg.Dependencies = append(pkg.Dependencies, depName)
			queue = append(queue, pendingDependency{name: depName, spec: child.Dependencies[depName], baseDir: dir, parent: pkg.Name})
		}
	}

	changed := false
	keep := make(map[string]struct{}, len(order))
	for _, name := range order {
		keep[name] = struct{}{}
		if lock.Upsert(resolved[name]) {
			changed = true
		}
	}
	if lock.Prune(keep) {
		changed = true
	}
	lock.Sort()
	return changed, logs, nil
}

func (in *Installer) resolve(ctx context.Context, dep pendingDependency, lock *Lockfile) (*LockedPackage, string, error) {
	spec := dep.spec
	switch spec.Kind() {
	case "path":
		dir := filepath.FromSlash(spec.Path)
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(dep.baseDir, dir)
		}
		dir, err := filepath.Abs(dir)
		if err != nil {
			return nil, "", fmt.Errorf("install: %s: %w", dep.name, err)
		}
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return nil, "", fmt.Errorf("install: %s: path %s is not a directory", dep.name, dir)
		}
		version := "0.0.0"
		if child, err := loadOptionalManifest(dir); err != nil {
			return nil, "", err
		} else if child != nil && child.Version != "" {
			version = child.Version
		}
		return &LockedPackage{Name: dep.name, Version: version, Source: "path:" + dir}, dir, nil

	case "git":
		if locked, ok := lock.Find(dep.name); ok && lockedGitMatches(locked, spec) {
			dir := PackageDir(in.cacheDir, dep.name, locked.Version)
			if info, err := os.Stat(dir); err == nil && info.IsDir() {
				in.logger.Debug("using locked git dependency", "name", dep.name, "commit", locked.Version)
				return &LockedPackage{Name: locked.Name, Version: locked.Version, Source: locked.Source}, dir, nil
			}
		}
		dir, commit, err := in.fetcher.Fetch(ctx, dep.name, spec)
		if err != nil {
			return nil, "", fmt.Errorf("install: %w", err)
		}
		return &LockedPackage{Name: dep.name, Version: commit, Source: fmt.Sprintf("git+%s@%s", spec.Git, commit)}, dir, nil

	default:
		version := strings.TrimPrefix(spec.Version, "v")
		dir := PackageDir(in.cacheDir, dep.name, version)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return nil, "", fmt.Errorf("install: %s %s is not in the cache at %s (version dependencies must be pre-populated)", dep.name, version, dir)
		}
		return &LockedPackage{Name: dep.name, Version: version, Source: "version:" + version}, dir, nil
	}
}

// lockedGitMatches reports whether a locked entry still satisfies spec. Only
// an explicit rev pins the commit; tags and branches are re-resolved.
func lockedGitMatches(locked *LockedPackage, spec *DependencySpec) bool {
	prefix := "git+" + spec.Git + "@"
	if !strings.HasPrefix(locked.Source, prefix) {
		return false
	}
	if spec.Rev != "" {
		return strings.HasPrefix(locked.Version, spec.Rev)
	}
	return spec.Tag == "" && spec.Branch == ""
}

func loadOptionalManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("install: %w", err)
	}
	return LoadManifest(path)
}

// DependencyDirs maps every locked package to the directory it was installed in.
func DependencyDirs(lock *Lockfile, cacheDir string) map[string]string {
	dirs := map[string]string{}
	if lock == nil {
		return dirs
	}
	for _, pkg := range lock.Packages {
		if pkg == nil {
			continue
		}
		if dir, ok := pkg.SourcePath(); ok {
			dirs[pkg.Name] = dir
			continue
		}
		dirs[pkg.Name] = PackageDir(cacheDir, pkg.Name, pkg.Version)
	}
	return dirs
}
