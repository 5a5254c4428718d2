package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/FoundationINCCorporateTeam/RIFT/pkg/driver"
)

func runDeps(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "rift deps requires a subcommand (install)")
		return 1
	}
	switch args[0] {
	case "install":
		return runDepsInstall(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown deps subcommand %q\n", args[0])
		return 1
	}
}

func runDepsInstall(args []string) int {
	fs := flag.NewFlagSet("deps install", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var flags sessionFlags
	flags.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "rift deps install does not take arguments (received %s)\n", strings.Join(fs.Args(), " "))
		return 1
	}

	manifestPath, err := driver.FindManifest(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to locate %s: %v\n", driver.ManifestName, err)
		return 1
	}
	manifest, err := driver.LoadManifest(manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read manifest: %v\n", err)
		return 1
	}
	cfg, err := driver.ResolveConfig(driver.Config{LogLevel: flags.logLevel}, manifest, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	logger := newLogger(cfg)

	fmt.Fprintf(os.Stdout, "Manifest: %s\n", manifest.Path)
	fmt.Fprintf(os.Stdout, "Root package: %s\n", manifest.Name)
	fmt.Fprintf(os.Stdout, "Dependencies: %d\n", len(manifest.Dependencies))
	fmt.Fprintf(os.Stdout, "Cache directory: %s\n", cfg.CacheDir)

	lockPath := driver.LockfilePath(manifest)
	lock, err := driver.LoadLockfile(lockPath)
	lockCreated := false
	switch {
	case err == nil:
		if lock.Root != manifest.Name {
			fmt.Fprintf(os.Stderr, "lockfile root %q does not match manifest name %q\n", lock.Root, manifest.Name)
			return 1
		}
	case errors.Is(err, os.ErrNotExist):
		lock = driver.NewLockfile(manifest.Name, cliToolVersion)
		lockCreated = true
	default:
		fmt.Fprintf(os.Stderr, "failed to read lockfile: %v\n", err)
		return 1
	}
	lock.Tool = cliToolVersion

	installer := driver.NewInstaller(manifest, cfg.CacheDir, nil, logger)
	changed, logs, err := installer.Install(context.Background(), lock)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve dependencies: %v\n", err)
		return 1
	}
	for _, line := range logs {
		fmt.Fprintln(os.Stdout, line)
	}

	if changed || lockCreated {
		action := "Updated"
		if lockCreated {
			action = "Created"
		}
		if err := driver.WriteLockfile(lock, lockPath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write lockfile: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stdout, "%s %s: %s\n", action, driver.LockfileName, lockPath)
	} else {
		fmt.Fprintf(os.Stdout, "%s already up to date: %s\n", driver.LockfileName, lockPath)
	}

	fmt.Fprintln(os.Stdout, "Dependencies installed.")
	return 0
}

// loadLockfileForManifest returns nil when the project has no dependencies
// and no lockfile yet.
func loadLockfileForManifest(manifest *driver.Manifest) (*driver.Lockfile, error) {
	lockPath := driver.LockfilePath(manifest)
	lock, err := driver.LoadLockfile(lockPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if len(manifest.Dependencies) > 0 {
				return nil, fmt.Errorf("%s missing for %q; run `rift deps install`", driver.LockfileName, manifest.Name)
			}
			return nil, nil
		}
		return nil, err
	}
	if lock.Root != manifest.Name {
		return nil, fmt.Errorf("lockfile root %q does not match manifest name %q", lock.Root, manifest.Name)
	}
	return lock, nil
}
