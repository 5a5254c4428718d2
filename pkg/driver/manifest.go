package driver

import (
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

// ManifestName is the file name searched for by FindManifest.
const ManifestName = "rift.yml"

// DefaultMain is the entry file used when a manifest names none.
const DefaultMain = "main.rift"

var ErrManifestNotFound = errors.New("rift.yml not found")

// Manifest represents the parsed contents of rift.yml.
type Manifest struct {
	Path         string
	Name         string
	Version      string
	Main         string
	SearchPaths  []string
	Dependencies map[string]*DependencySpec
	Config       ManifestConfig
}

// ManifestConfig is the `config` section; zero values defer to other layers.
type ManifestConfig struct {
	LogLevel     string `yaml:"log_level"`
	CacheDir     string `yaml:"cache_dir"`
	MaxCallDepth int    `yaml:"max_call_depth"`
}

// DependencySpec describes a dependency descriptor in the manifest.
type DependencySpec struct {
	Version string
	Git     string
	Rev     string
	Tag     string
	Branch  string
	Path    string
}

// Kind names the source a dependency is fetched from.
func (d *DependencySpec) Kind() string {
	switch {
	case d == nil:
		return ""
	case d.Path != "":
		return "path"
	case d.Git != "":
		return "git"
	default:
		return "version"
	}
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

// LoadManifest parses rift.yml from disk, returning a validated manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()
	return ParseManifest(file, absPath)
}

// ParseManifest decodes a manifest from r; path is recorded for relative lookups.
func ParseManifest(r io.Reader, path string) (*Manifest, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", path)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", path, err)
	}

	manifest := raw.toManifest(path)
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

// FindManifest walks upwards from start until it finds rift.yml.
func FindManifest(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start directory %q: %w", start, err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	origin := dir
	for {
		candidate := filepath.Join(dir, ManifestName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found from %s upwards: %w", ManifestName, origin, ErrManifestNotFound)
		}
		dir = parent
	}
}

// Dir is the directory holding the manifest.
func (m *Manifest) Dir() string {
	return filepath.Dir(m.Path)
}

// EntryPath resolves `main` against the manifest directory.
func (m *Manifest) EntryPath() string {
	main := m.Main
	if main == "" {
		main = DefaultMain
	}
	return m.resolve(main)
}

// ResolvedSearchPaths returns search_paths made absolute.
func (m *Manifest) ResolvedSearchPaths() []string {
	out := make([]string, 0, len(m.SearchPaths))
	for _, p := range m.SearchPaths {
		out = append(out, m.resolve(p))
	}
	return out
}

// DependencyNames lists dependencies in a stable order.
func (m *Manifest) DependencyNames() []string {
	names := make([]string, 0, len(m.Dependencies))
	for name := range m.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Manifest) resolve(p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(m.Dir(), p)
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	} else if !isIdentifier(m.Name) {
		errs.Issues = append(errs.Issues, fmt.Sprintf("name %q must be a valid identifier", m.Name))
	}
	if m.Version != "" && !validVersion(m.Version) {
		errs.Issues = append(errs.Issues, fmt.Sprintf("version %q is not a semantic version", m.Version))
	}
	if m.Main != "" && filepath.Ext(m.Main) != ".rift" {
		errs.Issues = append(errs.Issues, fmt.Sprintf("main %q must be a .rift file", m.Main))
	}
	for idx, p := range m.SearchPaths {
		if p == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("search_paths[%d] must be a non-empty string", idx))
		}
	}
	if m.Config.MaxCallDepth < 0 {
		errs.Issues = append(errs.Issues, "config.max_call_depth must not be negative")
	}
	if m.Config.LogLevel != "" {
		if _, err := ParseLogLevel(m.Config.LogLevel); err != nil {
			errs.Issues = append(errs.Issues, "config."+err.Error())
		}
	}
	for _, depName := range m.DependencyNames() {
		dep := m.Dependencies[depName]
		if !isIdentifier(depName) {
			errs.Issues = append(errs.Issues, fmt.Sprintf("dependencies.%s: name must be a valid identifier", depName))
		}
		for _, issue := range dep.validate() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("dependencies.%s: %s", depName, issue))
		}
	}

	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

func (d *DependencySpec) validate() []string {
	var errs []string
	if d == nil {
		return []string{"must specify version, git, or path"}
	}
	if d.Path != "" && (d.Version != "" || d.Git != "") {
		errs = append(errs, "path dependencies cannot specify version or git source")
	}
	if d.Git != "" && d.Version != "" {
		errs = append(errs, "git dependencies cannot also specify version")
	}
	refs := 0
	for _, ref := range []string{d.Rev, d.Tag, d.Branch} {
		if ref != "" {
			refs++
		}
	}
	if refs > 0 && d.Git == "" {
		errs = append(errs, "rev, tag and branch apply only to git dependencies")
	}
	if refs > 1 {
		errs = append(errs, "specify at most one of rev, tag, branch")
	}
	if d.Version == "" && d.Git == "" && d.Path == "" {
		errs = append(errs, "must specify version, git, or path")
	}
	if d.Version != "" && !validVersion(d.Version) {
		errs = append(errs, fmt.Sprintf("invalid version %q", d.Version))
	}
	return errs
}

// validVersion accepts semantic versions with or without the leading v.
func validVersion(v string) bool {
	return semver.IsValid(canonicalVersion(v))
}

func canonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for idx, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case idx > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

type manifestFile struct {
	Name         string         `yaml:"name"`
	Version      string         `yaml:"version"`
	Main         string         `yaml:"main"`
	SearchPaths  stringList     `yaml:"search_paths"`
	Dependencies dependencyMap  `yaml:"dependencies"`
	Config       ManifestConfig `yaml:"config"`
}

type dependencyMap map[string]*DependencySpec

type stringList []string

func (mf manifestFile) toManifest(path string) *Manifest {
	deps := make(map[string]*DependencySpec, len(mf.Dependencies))
	for name, dep := range mf.Dependencies {
		if dep == nil {
			deps[name] = nil
			continue
		}
		copy := *dep
		deps[name] = &copy
	}
	return &Manifest{
		Path:         path,
		Name:         strings.TrimSpace(mf.Name),
		Version:      strings.TrimSpace(mf.Version),
		Main:         strings.TrimSpace(mf.Main),
		SearchPaths:  mf.SearchPaths.Clone(),
		Dependencies: deps,
		Config: ManifestConfig{
			LogLevel:     strings.TrimSpace(mf.Config.LogLevel),
			CacheDir:     strings.TrimSpace(mf.Config.CacheDir),
			MaxCallDepth: mf.Config.MaxCallDepth,
		},
	}
}

func (l stringList) Clone() []string {
	if len(l) == 0 {
		return nil
	}
	out := make([]string, 0, len(l))
	for _, item := range l {
		out = append(out, strings.TrimSpace(item))
	}
	return out
}

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || strings.TrimSpace(value.Value) == "" {
			*l = nil
			return nil
		}
		*l = stringList{strings.TrimSpace(value.Value)}
		return nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(value.Content))
		for _, node := range value.Content {
			var str string
			if err := node.Decode(&str); err != nil {
				return err
			}
			items = append(items, strings.TrimSpace(str))
		}
		*l = stringList(items)
		return nil
	case yaml.AliasNode:
		return l.UnmarshalYAML(value.Alias)
	case 0:
		*l = nil
		return nil
	default:
		return fmt.Errorf("manifest: expected string or sequence for list but found %s", value.ShortTag())
	}
}

func (dm *dependencyMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 || (value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
		*dm = make(dependencyMap)
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest: dependencies must be a mapping")
	}
	result := make(dependencyMap, len(value.Content)/2)
	for i := 0; i < len(value.Content); i += 2 {
		var key string
		if err := value.Content[i].Decode(&key); err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("manifest: dependency names must be non-empty")
		}
		var dep DependencySpec
		if err := dep.unmarshalYAML(value.Content[i+1]); err != nil {
			return fmt.Errorf("manifest: dependency %q: %w", key, err)
		}
		result[key] = &dep
	}
	*dm = result
	return nil
}

// unmarshalYAML accepts either a bare version string or a mapping.
func (d *DependencySpec) unmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || strings.TrimSpace(value.Value) == "" {
			*d = DependencySpec{}
			return nil
		}
		*d = DependencySpec{Version: strings.TrimSpace(value.Value)}
		return nil
	case yaml.MappingNode:
		var raw struct {
			Version string `yaml:"version"`
			Git     string `yaml:"git"`
			Rev     string `yaml:"rev"`
			Tag     string `yaml:"tag"`
			Branch  string `yaml:"branch"`
			Path    string `yaml:"path"`
		}
		if err := value.Decode(&raw); err != nil {
			return err
		}
		*d = DependencySpec{
			Version: strings.TrimSpace(raw.Version),
			Git:     strings.TrimSpace(raw.Git),
			Rev:     strings.TrimSpace(raw.Rev),
			Tag:     strings.TrimSpace(raw.Tag),
			Branch:  strings.TrimSpace(raw.Branch),
			Path:    strings.TrimSpace(raw.Path),
		}
		return nil
	case yaml.AliasNode:
		return d.unmarshalYAML(value.Alias)
	default:
		return fmt.Errorf("expected string or mapping, found %s", value.ShortTag())
	}
}
