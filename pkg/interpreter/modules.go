package interpreter

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/FoundationINCCorporateTeam/RIFT/pkg/ast"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/runtime"
)

// ErrModuleNotFound is returned by a ModuleLoader that cannot resolve a request.
var ErrModuleNotFound = errors.New("module not found")

// ModuleRequest describes one `grab`: either dotted Path segments or a quoted Source.
type ModuleRequest struct {
	Path     []string
	Source   string
	Importer string
}

// Name renders the request as written in source.
func (r ModuleRequest) Name() string {
	if r.Source != "" {
		return r.Source
	}
	return strings.Join(r.Path, ".")
}

// LoadedModule is a parsed module file. ID is its canonical identity, used
// for caching and cycle detection.
type LoadedModule struct {
	ID      string
	Path    string
	Program *ast.Program
}

// ModuleLoader finds and parses module files.
type ModuleLoader interface {
	LoadModule(req ModuleRequest) (*LoadedModule, error)
}

type moduleRecord struct {
	id        string
	path      string
	env       *runtime.Environment
	exports   []string
	namespace *runtime.NamespaceValue
}

func (i *Interpreter) evaluateGrabStatement(stmt *ast.GrabStatement, env *runtime.Environment) (runtime.Value, error) {
	importer := ""
	if i.module != nil {
		importer = i.module.path
	}
	if stmt.Source != nil {
		req := ModuleRequest{Source: stmt.Source.Value, Importer: importer}
		ns, found, err := i.resolveModule(req)
		if err != nil {
			return nil, i.positioned(stmt, err)
		}
		if !found {
			return nil, i.errorAt(stmt, runtime.NameError, "cannot find module %q", req.Source)
		}
		name := strings.TrimSuffix(filepath.Base(req.Source), filepath.Ext(req.Source))
		return i.bindGrabbed(stmt, env, ns, name)
	}

	segments := make([]string, len(stmt.Path))
	for idx, id := range stmt.Path {
		segments[idx] = id.Name
	}
	ns, found, err := i.resolveModule(ModuleRequest{Path: segments, Importer: importer})
	if err != nil {
		return nil, i.positioned(stmt, err)
	}
	if found {
		return i.bindGrabbed(stmt, env, ns, segments[len(segments)-1])
	}
	if len(segments) > 1 && !stmt.IsWildcard {
		prefix := segments[:len(segments)-1]
		member := segments[len(segments)-1]
		ns, found, err := i.resolveModule(ModuleRequest{Path: prefix, Importer: importer})
		if err != nil {
			return nil, i.positioned(stmt, err)
		}
		if found {
			val, ok := ns.Exports.Get(member)
			if !ok {
				return nil, i.errorAt(stmt, runtime.NameError, "module %s does not share '%s'", ns.Name, member)
			}
			name := member
			if stmt.Alias != nil {
				name = stmt.Alias.Name
			}
			if err := env.Define(name, val, runtime.MutabilityLet, ""); err != nil {
				return nil, err
			}
			return val, nil
		}
	}
	return nil, i.errorAt(stmt, runtime.NameError, "cannot find module %s", strings.Join(segments, "."))
}

func (i *Interpreter) bindGrabbed(stmt *ast.GrabStatement, env *runtime.Environment, ns *runtime.NamespaceValue, name string) (runtime.Value, error) {
	if stmt.IsWildcard {
		var err error
		ns.Exports.Each(func(key string, value runtime.Value) bool {
			err = env.Define(key, value, runtime.MutabilityLet, "")
			return err == nil
		})
		if err != nil {
			return nil, err
		}
		return ns, nil
	}
	if stmt.Alias != nil {
		name = stmt.Alias.Name
	}
	if err := env.Define(name, ns, runtime.MutabilityLet, ""); err != nil {
		return nil, err
	}
	return ns, nil
}

func (i *Interpreter) positioned(node ast.Node, err error) error {
	if rerr, ok := err.(*RuntimeError); ok && rerr.Pos.Line == 0 {
		rerr.Pos = node.Span().Start
	}
	return err
}

// resolveModule returns the namespace for req: a registered builtin
// namespace first, then a file found by the loader.
func (i *Interpreter) resolveModule(req ModuleRequest) (*runtime.NamespaceValue, bool, error) {
	if req.Source == "" {
		if ns, ok := i.namespaces[req.Name()]; ok {
			return ns, true, nil
		}
	}
	if i.loader == nil {
		return nil, false, nil
	}
	loaded, err := i.loader.LoadModule(req)
	if err != nil {
		if errors.Is(err, ErrModuleNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	ns, err := i.evaluateLoadedModule(req.Name(), loaded)
	if err != nil {
		return nil, false, err
	}
	return ns, true, nil
}

// evaluateLoadedModule runs a module once; later grabs share the cached namespace.
func (i *Interpreter) evaluateLoadedModule(name string, loaded *LoadedModule) (*runtime.NamespaceValue, error) {
	if record, ok := i.modules[loaded.ID]; ok {
		return record.namespace, nil
	}
	for idx, id := range i.loading {
		if id == loaded.ID {
			chain := append(append([]string(nil), i.loading[idx:]...), loaded.ID)
			return nil, runtime.Errorf(runtime.NameError, "import cycle: %s", strings.Join(chain, " -> "))
		}
	}
	i.logger.Debug("loading module", "module", name, "path", loaded.Path)

	record := &moduleRecord{id: loaded.ID, path: loaded.Path, env: i.global.Extend()}
	i.loading = append(i.loading, loaded.ID)
	prevModule := i.module
	i.module = record
	_, err := i.EvaluateModule(loaded.Program, record.env)
	i.module = prevModule
	i.loading = i.loading[:len(i.loading)-1]
	if err != nil {
		return nil, err
	}

	ns := runtime.NewNamespace(name)
	for _, export := range record.exports {
		val, err := record.env.Get(export)
		if err != nil {
			return nil, err
		}
		ns.Exports.Set(export, val)
	}
	record.namespace = ns
	i.modules[loaded.ID] = record
	return ns, nil
}

func (i *Interpreter) evaluateShareStatement(stmt *ast.ShareStatement, env *runtime.Environment) (runtime.Value, error) {
	var result runtime.Value = runtime.None
	var names []string
	if stmt.Declaration != nil {
		val, err := i.evaluateStatement(stmt.Declaration, env)
		if err != nil {
			return nil, err
		}
		result = val
		names = declaredNames(stmt.Declaration)
	}
	for _, id := range stmt.Names {
		if _, err := env.Get(id.Name); err != nil {
			return nil, i.errorAt(id, runtime.NameError, "cannot share undefined name '%s'", id.Name)
		}
		names = append(names, id.Name)
	}
	if i.module != nil {
		i.module.exports = append(i.module.exports, names...)
	}
	return result, nil
}

func declaredNames(stmt ast.Statement) []string {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		return patternNames(s.Target, nil)
	case *ast.FunctionDefinition:
		if s.ID != nil {
			return []string{s.ID.Name}
		}
	case *ast.ClassDefinition:
		return []string{s.ID.Name}
	}
	return nil
}

func patternNames(pattern ast.Pattern, out []string) []string {
	switch p := pattern.(type) {
	case *ast.Identifier:
		out = append(out, p.Name)
	case *ast.TypedPattern:
		out = patternNames(p.Pattern, out)
	case *ast.ArrayPattern:
		for _, el := range p.Elements {
			out = patternNames(el, out)
		}
		if p.RestPattern != nil {
			out = patternNames(p.RestPattern, out)
		}
	case *ast.MapPattern:
		for _, field := range p.Fields {
			out = patternNames(field.Pattern, out)
		}
		if p.RestPattern != nil {
			out = patternNames(p.RestPattern, out)
		}
	}
	return out
}
