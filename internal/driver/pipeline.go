package driver

import (
	"io"

	"github.com/lonelycoder306/plox/internal/ast"
	"github.com/lonelycoder306/plox/internal/debugger"
	"github.com/lonelycoder306/plox/internal/evaluator"
	"github.com/lonelycoder306/plox/internal/module"
	"github.com/lonelycoder306/plox/internal/parser"
	"github.com/lonelycoder306/plox/internal/resolver"
	"github.com/lonelycoder306/plox/internal/scanner"
	"github.com/lonelycoder306/plox/internal/source"
)

// Options controls diagnostic rendering, matching the CLI flags of §6:
// plain mode (neither set) elides positions entirely, LinePos shows
// position info, ErrorMode additionally shows the offending source line
// with a caret.
type Options struct {
	LinePos   bool
	ErrorMode bool
}

// Exit codes from §6 External Interfaces.
const (
	ExitOK          = 0
	ExitUsage       = 64
	ExitStatic      = 65
	ExitFileNotFound = 66
	ExitRuntime     = 70
)

// Pipeline bundles the collaborators the core needs from the outside world
// (§1's "source loader" and "module registry" seams) plus where program
// output and diagnostics go.
type Pipeline struct {
	Loader   source.Loader
	Registry *module.Registry
	Debugger *debugger.Debugger // nil disables breakpoint()
	Out      io.Writer
	ErrOut   io.Writer // perror's stream; nil falls back to Out
	Opts     Options

	// interp is built lazily on the first RunSource call and kept alive for
	// the Pipeline's whole lifetime, so a REPL session's later units still
	// see variables, functions, and classes an earlier unit defined (§6).
	// A file run only ever calls RunSource once, so this is invisible there.
	interp *evaluator.Interpreter
}

// RunSource runs one complete unit of source text (a file's full contents,
// or one accumulated REPL line) through scan -> parse -> resolve ->
// evaluate, printing diagnostics as it goes, and reports the process exit
// code that would apply if this were the whole program. Successive calls on
// the same Pipeline share one Interpreter, so bindings persist across REPL
// units while each unit's own diagnostics and runtime errors stay isolated
// to that unit (§7: "in the REPL they discard the current line only").
func (p *Pipeline) RunSource(text, file string) int {
	lines := splitLines(text)
	if p.Debugger != nil {
		p.Debugger.SetSource(file, text)
	}

	sc := scanner.New(text, file)
	toks := sc.ScanTokens()
	if sc.Errors().HasErrors() {
		printDiagnostics(p.Out, sc.Errors(), p.Opts, lines)
		return ExitStatic
	}

	ps := parser.New(toks, p.Loader)
	stmts := ps.ParseProgram()
	if ps.Errors().HasErrors() {
		printDiagnostics(p.Out, ps.Errors(), p.Opts, lines)
		return ExitStatic
	}

	res := resolver.New()
	res.Resolve(stmts)
	printDiagnostics(p.Out, res.Errors(), p.Opts, lines)
	if res.Errors().HasErrors() {
		return ExitStatic
	}

	if p.interp == nil {
		p.interp = evaluator.New(p.Out, map[ast.Expr]int{}, p.Registry)
		if p.ErrOut != nil {
			p.interp.SetErrOut(p.ErrOut)
		}
		if p.Debugger != nil {
			p.interp.SetDebugger(p.Debugger)
		}
	}
	p.interp.MergeDistances(res.Distances())
	p.interp.Errors().Reset()

	for _, s := range stmts {
		if !p.interp.InterpretStmt(s) {
			break
		}
	}
	printDiagnostics(p.Out, p.interp.Errors(), p.Opts, lines)
	if p.interp.Errors().HasErrors() {
		return ExitRuntime
	}
	return ExitOK
}
