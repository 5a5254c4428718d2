package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)+"\n"), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}

// isolate points HOME and the RIFT_* variables at a scratch directory.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("RIFT_LOG", "")
	t.Setenv("RIFT_CACHE", "")
	t.Setenv("RIFT_PATH", "")
}

func TestVersionAndUsage(t *testing.T) {
	code, stdout, _ := captureCLI(t, []string{"version"})
	if code != 0 || strings.TrimSpace(stdout) != cliToolVersion {
		t.Fatalf("version: code=%d stdout=%q", code, stdout)
	}
	code, _, stderr := captureCLI(t, []string{"frobnicate"})
	if code != 1 || !strings.Contains(stderr, `unknown command "frobnicate"`) || !strings.Contains(stderr, "Usage:") {
		t.Fatalf("unknown command: code=%d stderr=%q", code, stderr)
	}
}

func TestRunSourceFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	entry := filepath.Join(dir, "hello.rift")
	writeFile(t, filepath.Join(dir, "greet.rift"), `share conduit greet(name) @ give "hello, " + name #`)
	writeFile(t, entry, `
grab greet.greet
grab math
print(greet("rift"))
print(math.sqrt(49))
`)

	code, stdout, stderr := captureCLI(t, []string{"run", entry})
	if code != 0 {
		t.Fatalf("run exit %d, stderr=%q", code, stderr)
	}
	if stdout != "hello, rift\n7\n" {
		t.Fatalf("stdout = %q", stdout)
	}

	code, stdout, _ = captureCLI(t, []string{entry})
	if code != 0 || stdout != "hello, rift\n7\n" {
		t.Fatalf("shortcut run: code=%d stdout=%q", code, stdout)
	}
}

func TestRunReportsRuntimeErrorWithPosition(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	entry := filepath.Join(dir, "boom.rift")
	writeFile(t, entry, `
print("before")
if yes @
  fail "boom"
#
`)
	code, stdout, stderr := captureCLI(t, []string{"run", entry})
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if stdout != "before\n" {
		t.Fatalf("stdout = %q", stdout)
	}
	if want := entry + ":3:3: UserError: boom"; strings.TrimSpace(stderr) != want {
		t.Fatalf("stderr = %q, want %q", stderr, want)
	}
}

func TestRunReportsParseErrorWithPosition(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	entry := filepath.Join(dir, "broken.rift")
	writeFile(t, entry, "print(1)\nlet = 2")
	code, _, stderr := captureCLI(t, []string{"run", entry})
	if code != 1 || !strings.HasPrefix(stderr, entry+":2:") || !strings.Contains(stderr, "ParseError") {
		t.Fatalf("code=%d stderr=%q", code, stderr)
	}
}

func TestRunHonoursMaxDepthFlag(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	entry := filepath.Join(dir, "deep.rift")
	writeFile(t, entry, `
conduit down(n) @
  if n == 0 @ give 0 #
  give down(n - 1)
#
print(down(50))
`)
	code, stdout, _ := captureCLI(t, []string{"run", entry})
	if code != 0 || stdout != "0\n" {
		t.Fatalf("default depth: code=%d stdout=%q", code, stdout)
	}
	code, _, stderr := captureCLI(t, []string{"run", "--max-depth", "10", entry})
	if code != 1 || !strings.Contains(stderr, "TypeError") {
		t.Fatalf("limited depth: code=%d stderr=%q", code, stderr)
	}
}

func TestRunDebugLoggingGoesToStderr(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	entry := filepath.Join(dir, "main.rift")
	writeFile(t, entry, `print("out")`)
	code, stdout, stderr := captureCLI(t, []string{"run", "--log-level", "debug", entry})
	if code != 0 || stdout != "out\n" {
		t.Fatalf("code=%d stdout=%q", code, stdout)
	}
	if !strings.Contains(stderr, "level=DEBUG") || !strings.Contains(stderr, "running program") {
		t.Fatalf("expected debug log lines, got %q", stderr)
	}
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.rift")
	bad := filepath.Join(dir, "bad.rift")
	writeFile(t, good, "let x = 1\nprint(x)")
	writeFile(t, bad, "print(")

	code, stdout, _ := captureCLI(t, []string{"check", good})
	if code != 0 || stdout != good+": ok (2 statements)\n" {
		t.Fatalf("check good: code=%d stdout=%q", code, stdout)
	}
	code, _, stderr := captureCLI(t, []string{"check", good, bad})
	if code != 1 || !strings.HasPrefix(stderr, bad+":") {
		t.Fatalf("check bad: code=%d stderr=%q", code, stderr)
	}
	code, stdout, _ = captureCLI(t, []string{"check", "--ast", good})
	if code != 0 || !strings.Contains(stdout, `"body"`) {
		t.Fatalf("check --ast: code=%d stdout=%q", code, stdout)
	}
}

func TestFmtCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "messy.rift")
	writeFile(t, path, "let    x=1\nprint( x )")

	code, stdout, _ := captureCLI(t, []string{"fmt", path})
	if code != 0 || !strings.HasPrefix(stdout, "let x = 1\n") {
		t.Fatalf("fmt: code=%d stdout=%q", code, stdout)
	}
	code, stdout, _ = captureCLI(t, []string{"fmt", "--check", path})
	if code != 1 || strings.TrimSpace(stdout) != path {
		t.Fatalf("fmt --check on messy file: code=%d stdout=%q", code, stdout)
	}
	if code, _, stderr := captureCLI(t, []string{"fmt", "-w", path}); code != 0 {
		t.Fatalf("fmt -w: code=%d stderr=%q", code, stderr)
	}
	if code, _, _ := captureCLI(t, []string{"fmt", "--check", path}); code != 0 {
		t.Fatalf("file should be formatted after -w")
	}
}

func TestDepsInstallThenRun(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	app := filepath.Join(root, "app")
	writeFile(t, filepath.Join(app, "rift.yml"), `
name: app
version: 0.1.0
main: src/main.rift
dependencies:
  util:
    path: ../util
`)
	writeFile(t, filepath.Join(app, "src", "main.rift"), `
grab util
print(util.greet("ada"))
`)
	writeFile(t, filepath.Join(root, "util", "main.rift"), `share conduit greet(n) @ give "hi " + n #`)
	chdir(t, app)

	code, _, stderr := captureCLI(t, []string{"run"})
	if code != 1 || !strings.Contains(stderr, "rift.lock missing") {
		t.Fatalf("expected missing lockfile error, code=%d stderr=%q", code, stderr)
	}

	code, stdout, stderr := captureCLI(t, []string{"deps", "install"})
	if code != 0 {
		t.Fatalf("deps install: code=%d stderr=%q", code, stderr)
	}
	if !strings.Contains(stdout, "Created rift.lock") || !strings.Contains(stdout, "Resolved util 0.0.0") {
		t.Fatalf("deps install stdout = %q", stdout)
	}
	if _, err := os.Stat(filepath.Join(app, "rift.lock")); err != nil {
		t.Fatalf("lockfile not written: %v", err)
	}

	code, stdout, _ = captureCLI(t, []string{"deps", "install"})
	if code != 0 || !strings.Contains(stdout, "rift.lock already up to date") {
		t.Fatalf("second install: code=%d stdout=%q", code, stdout)
	}

	code, stdout, stderr = captureCLI(t, []string{"run"})
	if code != 0 || stdout != "hi ada\n" {
		t.Fatalf("run: code=%d stdout=%q stderr=%q", code, stdout, stderr)
	}
}

func TestReplReadsPipedInput(t *testing.T) {
	isolate(t)
	chdir(t, t.TempDir())
	code, stdout, stderr := captureCLIWithInput(t, []string{"repl"}, "let x = 2\nprint(\"side\")\n\"v\" + x * 21\n")
	if code != 0 {
		t.Fatalf("repl: code=%d stderr=%q", code, stderr)
	}
	if stdout != "side\n\"v42\"\n" {
		t.Fatalf("stdout = %q", stdout)
	}
}

func TestIsIncomplete(t *testing.T) {
	cases := map[string]bool{
		"conduit f() @":         true,
		"print(1)":              false,
		"let = 1":               false,
		`"still open`:           true,
		"if yes @\n  print(1)": true,
	}
	for source, want := range cases {
		if got := isIncomplete(source); got != want {
			t.Fatalf("isIncomplete(%q) = %v, want %v", source, got, want)
		}
	}
}

func captureCLI(t *testing.T, args []string) (int, string, string) {
	t.Helper()
	return captureCLIWithInput(t, args, "")
}

func captureCLIWithInput(t *testing.T, args []string, input string) (int, string, string) {
	t.Helper()

	stdin := os.Stdin
	stdout := os.Stdout
	stderr := os.Stderr

	rIn, wIn, err := os.Pipe()
	if err != nil {
		t.Fatalf("stdin pipe: %v", err)
	}
	rOut, wOut, err := os.Pipe()
	if err != nil {
		t.Fatalf("stdout pipe: %v", err)
	}
	rErr, wErr, err := os.Pipe()
	if err != nil {
		t.Fatalf("stderr pipe: %v", err)
	}
	if _, err := io.WriteString(wIn, input); err != nil {
		t.Fatalf("stdin write: %v", err)
	}
	if err := wIn.Close(); err != nil {
		t.Fatalf("stdin close: %v", err)
	}

	os.Stdin = rIn
	os.Stdout = wOut
	os.Stderr = wErr

	code := run(args)

	if err := wOut.Close(); err != nil {
		t.Fatalf("stdout close: %v", err)
	}
	if err := wErr.Close(); err != nil {
		t.Fatalf("stderr close: %v", err)
	}

	os.Stdin = stdin
	os.Stdout = stdout
	os.Stderr = stderr

	outBytes, err := io.ReadAll(rOut)
	if err != nil {
		t.Fatalf("stdout read: %v", err)
	}
	errBytes, err := io.ReadAll(rErr)
	if err != nil {
		t.Fatalf("stderr read: %v", err)
	}
	for _, f := range []*os.File{rIn, rOut, rErr} {
		if err := f.Close(); err != nil {
			t.Fatalf("pipe close: %v", err)
		}
	}

	return code, string(outBytes), string(errBytes)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (stand-in for testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory %s: %v", prev, err)
		}
	})
}
