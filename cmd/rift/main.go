package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/FoundationINCCorporateTeam/RIFT/pkg/ast"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/driver"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/interpreter"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/runtime"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/stdlib"
)

const cliToolVersion = "rift 0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 1
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "run":
		return runEntry(args[1:])
	case "repl":
		return runRepl(args[1:])
	case "check":
		return runCheck(args[1:])
	case "fmt":
		return runFmt(args[1:])
	case "deps":
		return runDeps(args[1:])
	default:
		if driver.IsSourceFile(args[0]) {
			return runEntry(args)
		}
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		printUsage()
		return 1
	}
}

// session is everything needed to evaluate code for one project.
type session struct {
	manifest *driver.Manifest
	config   driver.Config
	logger   *slog.Logger
	loader   *driver.Loader
}

type sessionFlags struct {
	logLevel string
	maxDepth int
}

func (f *sessionFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.IntVar(&f.maxDepth, "max-depth", 0, "maximum conduit call depth")
}

// openSession locates the manifest governing dir (if any), resolves the
// layered configuration and prepares a module loader rooted at dir.
func openSession(dir string, flags sessionFlags) (*session, error) {
	var manifest *driver.Manifest
	manifestPath, err := driver.FindManifest(dir)
	switch {
	case err == nil:
		manifest, err = driver.LoadManifest(manifestPath)
		if err != nil {
			return nil, err
		}
	case errors.Is(err, driver.ErrManifestNotFound):
	default:
		return nil, err
	}

	cfg, err := driver.ResolveConfig(driver.Config{LogLevel: flags.logLevel, MaxCallDepth: flags.maxDepth}, manifest, nil)
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg)

	var opts []driver.LoaderOption
	opts = append(opts, driver.WithLoaderLogger(logger))
	if manifest != nil {
		lock, err := loadLockfileForManifest(manifest)
		if err != nil {
			return nil, err
		}
		opts = append(opts,
			driver.WithSearchPaths(manifest.ResolvedSearchPaths()...),
			driver.WithDependencies(driver.DependencyDirs(lock, cfg.CacheDir)),
		)
	}
	if extra := strings.TrimSpace(os.Getenv("RIFT_PATH")); extra != "" {
		opts = append(opts, driver.WithSearchPaths(filepath.SplitList(extra)...))
	}
	loader, err := driver.NewLoader(dir, opts...)
	if err != nil {
		return nil, err
	}
	return &session{manifest: manifest, config: cfg, logger: logger, loader: loader}, nil
}

// newLogger writes structured diagnostics to stderr; program output never
// goes through it.
func newLogger(cfg driver.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
}

func (s *session) interpreter(entry string) *interpreter.Interpreter {
	opts := []interpreter.Option{
		interpreter.WithLogger(s.logger),
		interpreter.WithOutput(os.Stdout),
		interpreter.WithModuleLoader(s.loader),
		interpreter.WithMaxCallDepth(s.config.MaxCallDepth),
	}
	if entry != "" {
		opts = append(opts, interpreter.WithEntryPath(entry))
	}
	interp := interpreter.New(opts...)
	stdlib.Register(interp)
	return interp
}

func runEntry(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var flags sessionFlags
	flags.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 1 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(fs.Args()[1:], " "))
		return 1
	}

	entry := fs.Arg(0)
	dir := "."
	if entry != "" {
		dir = filepath.Dir(entry)
	}
	sess, err := openSession(dir, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	if entry == "" {
		if sess.manifest == nil {
			fmt.Fprintln(os.Stderr, "rift run requires a source file (rift.yml not found)")
			return 1
		}
		entry = sess.manifest.EntryPath()
	}
	return executeEntry(sess, entry)
}

func executeEntry(sess *session, entry string) int {
	program, err := sess.loader.Load(entry)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sess.logger.Debug("running program", "entry", entry)
	if _, err := sess.interpreter(entry).Run(ctx, program); err != nil {
		fmt.Fprintln(os.Stderr, describeError(entry, err))
		return 1
	}
	return 0
}

// describeError renders a failure as file:line:col: Kind: message.
func describeError(file string, err error) string {
	var serr *driver.SourceError
	if errors.As(err, &serr) {
		return serr.Error()
	}
	var rerr *runtime.RuntimeError
	if errors.As(err, &rerr) {
		if rerr.Pos.Line > 0 {
			return fmt.Sprintf("%s:%s", file, rerr.Error())
		}
		return fmt.Sprintf("%s: %s", file, rerr.Error())
	}
	return fmt.Sprintf("%s: %v", file, err)
}

func runCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	dumpAST := fs.Bool("ast", false, "print the parsed syntax tree as JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "rift check requires at least one source file")
		return 1
	}
	loader, err := driver.NewLoader(".")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	status := 0
	for _, path := range fs.Args() {
		program, err := loader.Load(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			status = 1
			continue
		}
		if *dumpAST {
			if err := writeJSON(os.Stdout, program); err != nil {
				fmt.Fprintf(os.Stderr, "%s: encode syntax tree: %v\n", path, err)
				return 1
			}
			continue
		}
		fmt.Fprintf(os.Stdout, "%s: ok (%d statements)\n", path, len(program.Body))
	}
	return status
}

func writeJSON(w io.Writer, program *ast.Program) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(program)
}

func runFmt(args []string) int {
	fs := flag.NewFlagSet("fmt", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	write := fs.Bool("w", false, "write result to the source file instead of stdout")
	check := fs.Bool("check", false, "exit 1 if any file is not formatted")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "rift fmt requires at least one source file")
		return 1
	}
	loader, err := driver.NewLoader(".")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	status := 0
	for _, path := range fs.Args() {
		original, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			status = 1
			continue
		}
		program, err := loader.Load(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			status = 1
			continue
		}
		formatted := ast.Print(program)
		switch {
		case *check:
			if formatted != string(original) {
				fmt.Fprintln(os.Stdout, path)
				status = 1
			}
		case *write:
			if formatted == string(original) {
				continue
			}
			if err := os.WriteFile(path, []byte(formatted), 0o644); err != nil {
				fmt.Fprintln(os.Stderr, err)
				status = 1
			}
		default:
			fmt.Fprint(os.Stdout, formatted)
		}
	}
	return status
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  rift run [--log-level L] [--max-depth N] [file.rift]")
	fmt.Fprintln(os.Stderr, "  rift <file.rift>")
	fmt.Fprintln(os.Stderr, "  rift repl")
	fmt.Fprintln(os.Stderr, "  rift check [--ast] <file.rift>...")
	fmt.Fprintln(os.Stderr, "  rift fmt [-w | --check] <file.rift>...")
	fmt.Fprintln(os.Stderr, "  rift deps install")
	fmt.Fprintln(os.Stderr, "  rift version")
}
