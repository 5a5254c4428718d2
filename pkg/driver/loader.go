package driver

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/FoundationINCCorporateTeam/RIFT/pkg/ast"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/interpreter"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/parser"
)

// SourceExt is the extension of RIFT module files.
const SourceExt = ".rift"

// SourceError ties a lex, parse or read failure to the file it came from.
// Lex and parse errors already carry line:column, so the rendered form is
// file:line:column: Kind: message.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s:%v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Loader resolves `grab` requests against the file system. It implements
// interpreter.ModuleLoader.
type Loader struct {
	root         string
	searchPaths  []string
	dependencies map[string]string
	parser       *parser.ModuleParser
	logger       *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithSearchPaths appends directories searched after the importer's own.
func WithSearchPaths(paths ...string) LoaderOption {
	return func(l *Loader) {
		l.searchPaths = append(l.searchPaths, paths...)
	}
}

// WithDependencies maps installed dependency names to their directories.
func WithDependencies(deps map[string]string) LoaderOption {
	return func(l *Loader) {
		for name, dir := range deps {
			l.dependencies[name] = dir
		}
	}
}

// WithLoaderLogger sets the logger used for resolution events.
func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader builds a loader rooted at root, used for grabs that have no
// importing file (the REPL, for instance).
func NewLoader(root string, opts ...LoaderOption) (*Loader, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("loader: resolve root %q: %w", root, err)
	}
	l := &Loader{
		root:         absRoot,
		dependencies: map[string]string{},
		parser:       parser.NewModuleParser(),
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	seen := map[string]struct{}{}
	paths := l.searchPaths[:0]
	for _, p := range l.searchPaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("loader: resolve search path %q: %w", p, err)
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		paths = append(paths, abs)
	}
	l.searchPaths = paths
	return l, nil
}

// SearchPaths returns the configured search directories in order.
func (l *Loader) SearchPaths() []string {
	return append([]string(nil), l.searchPaths...)
}

// Load reads and parses one file.
func (l *Loader) Load(path string) (*ast.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &SourceError{Path: path, Err: err}
	}
	program, err := l.parser.ParseModule(data)
	if err != nil {
		return nil, &SourceError{Path: path, Err: err}
	}
	return program, nil
}

// LoadModule implements interpreter.ModuleLoader.
func (l *Loader) LoadModule(req interpreter.ModuleRequest) (*interpreter.LoadedModule, error) {
	candidates := l.candidates(req)
	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("loader: stat %s: %w", candidate, err)
		}
		if info.IsDir() {
			continue
		}
		program, err := l.Load(candidate)
		if err != nil {
			return nil, err
		}
		id, err := filepath.Abs(candidate)
		if err != nil {
			return nil, fmt.Errorf("loader: resolve %s: %w", candidate, err)
		}
		l.logger.Debug("module resolved", "module", req.Name(), "path", id)
		return &interpreter.LoadedModule{ID: id, Path: id, Program: program}, nil
	}
	l.logger.Debug("module not found", "module", req.Name(), "tried", len(candidates))
	return nil, interpreter.ErrModuleNotFound
}

// candidates lists absolute paths to try, in priority order.
func (l *Loader) candidates(req interpreter.ModuleRequest) []string {
	base := l.root
	if req.Importer != "" {
		base = filepath.Dir(req.Importer)
	}
	if req.Source != "" {
		source := filepath.FromSlash(req.Source)
		if filepath.Ext(source) == "" {
			source += SourceExt
		}
		if filepath.IsAbs(source) {
			return []string{filepath.Clean(source)}
		}
		return []string{filepath.Join(base, source)}
	}
	if len(req.Path) == 0 {
		return nil
	}
	rel := filepath.Join(req.Path...) + SourceExt
	out := []string{filepath.Join(base, rel)}
	for _, dir := range l.searchPaths {
		out = append(out, filepath.Join(dir, rel))
	}
	if dir, ok := l.dependencies[req.Path[0]]; ok {
		if len(req.Path) == 1 {
			out = append(out, dependencyEntry(dir))
		} else {
			out = append(out, filepath.Join(dir, filepath.Join(req.Path[1:]...)+SourceExt))
		}
	}
	return out
}

// dependencyEntry is the file a bare `grab dep` evaluates: the dependency's
// manifest main, or main.rift.
func dependencyEntry(dir string) string {
	manifest, err := LoadManifest(filepath.Join(dir, ManifestName))
	if err == nil {
		return manifest.EntryPath()
	}
	return filepath.Join(dir, DefaultMain)
}

// IsSourceFile reports whether name looks like a RIFT file argument.
func IsSourceFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), SourceExt)
}
