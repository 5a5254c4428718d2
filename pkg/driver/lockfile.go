package driver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// LockfileName sits next to rift.yml.
const LockfileName = "rift.lock"

// Lockfile records the resolved dependency graph of a package.
type Lockfile struct {
	Path     string           `yaml:"-"`
	Root     string           `yaml:"root"`
	Tool     string           `yaml:"tool"`
	Packages []*LockedPackage `yaml:"packages"`
}

// LockedPackage is one resolved dependency. Source is `path:<dir>`,
// `git+<url>@<hash>` or `version:<version>`.
type LockedPackage struct {
	Name         string   `yaml:"name"`
	Version      string   `yaml:"version"`
	Source       string   `yaml:"source"`
	Dependencies []string `yaml:"dependencies,omitempty"`
}

// NewLockfile returns an empty lockfile for root.
func NewLockfile(root, tool string) *Lockfile {
	return &Lockfile{Root: root, Tool: tool}
}

// LockfilePath returns where the lockfile for manifest lives.
func LockfilePath(manifest *Manifest) string {
	return filepath.Join(manifest.Dir(), LockfileName)
}

// LoadLockfile reads rift.lock. A missing file surfaces os.ErrNotExist.
func LoadLockfile(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lockfile: read %s: %w", path, err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	var lock Lockfile
	if err := decoder.Decode(&lock); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("lockfile: %s is empty", path)
		}
		return nil, fmt.Errorf("lockfile: parse %s: %w", path, err)
	}
	if lock.Root == "" {
		return nil, fmt.Errorf("lockfile: %s missing root", path)
	}
	lock.Path = path
	return &lock, nil
}

// WriteLockfile writes lock to path in a canonical order.
func WriteLockfile(lock *Lockfile, path string) error {
	if lock == nil {
		return fmt.Errorf("lockfile: nil lockfile")
	}
	lock.Sort()
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(lock); err != nil {
		return fmt.Errorf("lockfile: encode: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("lockfile: encode: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("lockfile: write %s: %w", path, err)
	}
	lock.Path = path
	return nil
}

// Sort orders packages by name, then by version with semver precedence.
func (l *Lockfile) Sort() {
	for _, pkg := range l.Packages {
		sort.Strings(pkg.Dependencies)
	}
	sort.SliceStable(l.Packages, func(a, b int) bool {
		pa, pb := l.Packages[a], l.Packages[b]
		if pa.Name != pb.Name {
			return pa.Name < pb.Name
		}
		va, vb := canonicalVersion(pa.Version), canonicalVersion(pb.Version)
		if semver.IsValid(va) && semver.IsValid(vb) {
			return semver.Compare(va, vb) < 0
		}
		return pa.Version < pb.Version
	})
}

// Find returns the locked package called name.
func (l *Lockfile) Find(name string) (*LockedPackage, bool) {
	if l == nil {
		return nil, false
	}
	for _, pkg := range l.Packages {
		if pkg != nil && pkg.Name == name {
			return pkg, true
		}
	}
	return nil, false
}

// Upsert replaces the entry with the same name or appends pkg. It reports
// whether the lockfile changed.
func (l *Lockfile) Upsert(pkg *LockedPackage) bool {
	for idx, existing := range l.Packages {
		if existing == nil || existing.Name != pkg.Name {
			continue
		}
		if existing.Version == pkg.Version && existing.Source == pkg.Source && sameStrings(existing.Dependencies, pkg.Dependencies) {
			return false
		}
		l.Packages[idx] = pkg
		return true
	}
	l.Packages = append(l.Packages, pkg)
	return true
}

// Prune drops packages not named in keep and reports whether any were removed.
func (l *Lockfile) Prune(keep map[string]struct{}) bool {
	out := l.Packages[:0]
	for _, pkg := range l.Packages {
		if pkg == nil {
			continue
		}
		if _, ok := keep[pkg.Name]; ok {
			out = append(out, pkg)
		}
	}
	changed := len(out) != len(l.Packages)
	l.Packages = out
	return changed
}

// SourcePath returns the directory of a `path:` source.
func (p *LockedPackage) SourcePath() (string, bool) {
	return strings.CutPrefix(p.Source, "path:")
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	a = append([]string(nil), a...)
	b = append([]string(nil), b...)
	sort.Strings(a)
	sort.Strings(b)
	for idx := range a {
		if a[idx] != b[idx] {
			return false
		}
	}
	return true
}
