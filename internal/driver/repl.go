package driver

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// RunREPL implements §6's REPL contract: prompt `>>> `, blank line exits, a
// line ending in `\` continues on `... ` with the backslash replaced by a
// newline so multi-line constructs (if/while bodies, class declarations)
// stay meaningful once spliced together. Each accumulated unit runs through
// InterpretStmt one statement at a time (via the pipeline's normal scan ->
// parse -> resolve path), so a bad line only costs that line, never the
// session (§7).
func RunREPL(p *Pipeline) int {
	rl, err := readline.New(">>> ")
	if err != nil {
		fmt.Fprintf(p.Out, "plox: could not start REPL: %s\n", err)
		return ExitUsage
	}
	defer rl.Close()

	var pending strings.Builder
	continuing := false

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF (Ctrl-D) or interrupt
			break
		}

		if continuing {
			pending.WriteString("\n")
		}
		if strings.HasSuffix(line, "\\") {
			pending.WriteString(strings.TrimSuffix(line, "\\"))
			continuing = true
			rl.SetPrompt("... ")
			continue
		}
		pending.WriteString(line)

		unit := pending.String()
		pending.Reset()
		continuing = false
		rl.SetPrompt(">>> ")

		if strings.TrimSpace(unit) == "" {
			break // blank line exits (§6)
		}

		p.RunSource(unit, "")
	}
	return ExitOK
}

// runREPLFrom is a test seam letting callers drive the REPL loop from an
// arbitrary reader instead of a real terminal; chzyer/readline accepts any
// io.Reader via its Config.Stdin.
func runREPLFrom(p *Pipeline, in io.Reader, out io.Writer) int {
	cfg := &readline.Config{Prompt: ">>> ", Stdin: io.NopCloser(in), Stdout: out}
	rl, err := readline.NewEx(cfg)
	if err != nil {
		fmt.Fprintf(out, "plox: could not start REPL: %s\n", err)
		return ExitUsage
	}
	defer rl.Close()

	var pending strings.Builder
	continuing := false
	for {
		line, err := rl.Readline()
		if err != nil {
			break
		}
		if continuing {
			pending.WriteString("\n")
		}
		if strings.HasSuffix(line, "\\") {
			pending.WriteString(strings.TrimSuffix(line, "\\"))
			continuing = true
			rl.SetPrompt("... ")
			continue
		}
		pending.WriteString(line)

		unit := pending.String()
		pending.Reset()
		continuing = false
		rl.SetPrompt(">>> ")

		if strings.TrimSpace(unit) == "" {
			break
		}
		p.RunSource(unit, "")
	}
	return ExitOK
}
