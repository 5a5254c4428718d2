package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/FoundationINCCorporateTeam/RIFT/pkg/interpreter"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/lexer"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/parser"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/runtime"
)

const (
	promptMain  = "rift> "
	promptCont  = "  ... "
	historyFile = ".rift_history"
)

// replSession evaluates successive inputs in one persistent environment.
type replSession struct {
	interp *interpreter.Interpreter
	env    *runtime.Environment
}

func newReplSession(sess *session) *replSession {
	interp := sess.interpreter("")
	return &replSession{interp: interp, env: interp.NewModuleEnvironment()}
}

// eval runs one chunk and returns the echo for its value ("" for none).
func (r *replSession) eval(ctx context.Context, source string) (string, error) {
	program, err := parser.ParseSource(source)
	if err != nil {
		return "", err
	}
	val, err := r.interp.EvaluateProgram(ctx, program, r.env)
	if err != nil {
		return "", err
	}
	if val == nil || val == runtime.None {
		return "", nil
	}
	return r.interp.Inspect(val)
}

func runRepl(args []string) int {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var flags sessionFlags
	flags.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	sess, err := openSession(".", flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	repl := newReplSession(sess)
	defer repl.interp.Close()

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return replPiped(repl, os.Stdin)
	}
	return replInteractive(repl)
}

// replPiped evaluates all of stdin as one program, echoing its final value.
func replPiped(repl *replSession, in io.Reader) int {
	source, err := io.ReadAll(in)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	echo, err := repl.eval(context.Background(), string(source))
	if err != nil {
		fmt.Fprintln(os.Stderr, describeError("<stdin>", err))
		return 1
	}
	if echo != "" {
		fmt.Fprintln(os.Stdout, echo)
	}
	return 0
}

func replInteractive(repl *replSession) int {
	fmt.Fprintf(os.Stdout, "%s (type :quit to exit)\n", cliToolVersion)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}
	defer func() {
		if histPath == "" {
			return
		}
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		code, ok := readChunk(ln)
		if !ok {
			fmt.Fprintln(os.Stdout)
			return 0
		}
		trimmed := strings.TrimSpace(code)
		switch {
		case trimmed == "":
			continue
		case trimmed == ":quit" || trimmed == ":q":
			return 0
		case trimmed == ":help":
			fmt.Fprintln(os.Stdout, "Enter RIFT statements. Blocks may span lines. :quit exits.")
			continue
		case strings.HasPrefix(trimmed, ":"):
			fmt.Fprintln(os.Stdout, "unknown command. Type :quit to exit.")
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))

		echo, err := repl.eval(context.Background(), code)
		if err != nil {
			fmt.Fprintln(os.Stderr, describeError("<repl>", err))
			continue
		}
		if echo != "" {
			fmt.Fprintln(os.Stdout, echo)
		}
	}
}

// readChunk keeps prompting while the buffered source is an unfinished
// block, string or template.
func readChunk(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if !isIncomplete(b.String()) {
			return b.String(), true
		}
	}
}

// isIncomplete reports whether source failed only because input ended early.
func isIncomplete(source string) bool {
	_, err := parser.ParseSource(source)
	var perr *parser.ParseError
	if errors.As(err, &perr) {
		return perr.Found == "end of input"
	}
	var lerr *lexer.LexError
	if errors.As(err, &lerr) {
		return strings.HasPrefix(lerr.Message, "unterminated") && !strings.Contains(lerr.Message, "escape")
	}
	return false
}
