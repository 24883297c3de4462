// Package debugger implements the interactive breakpoint prompt invoked by
// the built-in breakpoint() and by line-number breakpoints (§4.6). It
// implements evaluator.Debugger so the evaluator never imports this
// package — the dependency runs debugger -> evaluator, never the reverse.
package debugger

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/lonelycoder306/plox/internal/evaluator"
	"github.com/lonelycoder306/plox/internal/parser"
	"github.com/lonelycoder306/plox/internal/runtime"
	"github.com/lonelycoder306/plox/internal/scanner"
	"github.com/lonelycoder306/plox/internal/token"
)

// Debugger is a REPL keyed on the saved interpreter-and-environment pair at
// a breakpoint site (§4.6). One Debugger instance is shared across every
// breakpoint hit in a run so `log` accumulates across hits.
type Debugger struct {
	out     io.Writer
	in      *bufio.Scanner
	sources map[string][]string
}

// New builds a Debugger reading commands from in and writing output (and
// any `value` echoes, which run through the interpreter's own `print`) to
// out.
func New(out io.Writer, in io.Reader) *Debugger {
	return &Debugger{out: out, in: bufio.NewScanner(in), sources: map[string][]string{}}
}

// SetSource records a unit's text so `list` can print source context
// around the breakpoint (driver calls this once per loaded file).
func (d *Debugger) SetSource(file, text string) {
	d.sources[file] = strings.Split(text, "\n")
}

// Break enters the breakpoint prompt. A nil return resumes execution
// (`continue`); a non-nil return (always evaluator.Stop()) unwinds the
// whole run cleanly (`quit`, or EOF on the command stream).
func (d *Debugger) Break(i *evaluator.Interpreter, pos token.Position) error {
	savedEnv := i.Env()

	pterm.Info.WithWriter(d.out).Printfln("breakpoint hit at %s", pos)
	for {
		fmt.Fprint(d.out, "(debug) ")
		if !d.in.Scan() {
			fmt.Fprintln(d.out)
			return evaluator.Stop()
		}
		fields := strings.Fields(d.in.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "continue", "c":
			return nil
		case "quit", "q":
			return evaluator.Stop()
		case "list":
			d.list(pos)
		case "stack":
			d.stack(i)
		case "log":
			d.log(i)
		case "locals":
			d.printEnv(i, savedEnv, i.GlobalsEnv())
		case "globals":
			d.printEnv(i, i.GlobalsEnv(), i.BuiltinsEnv())
		case "help":
			d.help()
		case "break":
			d.setBreak(i, pos, fields)
		case "value":
			d.value(i, savedEnv, fields)
		case "step", "next", "out":
			pterm.Warning.WithWriter(d.out).Printfln("%s: not supported", fields[0])
		default:
			pterm.Error.WithWriter(d.out).Println("unknown command; try 'help'")
		}
	}
}

// list prints a small window of source around the breakpoint's line,
// caret-free (the breakpoint line itself is marked with '>').
func (d *Debugger) list(pos token.Position) {
	lines := d.sources[pos.File]
	if lines == nil {
		pterm.Warning.WithWriter(d.out).Println("no source available for this unit")
		return
	}
	lo, hi := pos.Line-3, pos.Line+2
	if lo < 1 {
		lo = 1
	}
	if hi > len(lines) {
		hi = len(lines)
	}
	for n := lo; n <= hi; n++ {
		marker := "  "
		if n == pos.Line {
			marker = "> "
		}
		fmt.Fprintf(d.out, "%s%4d |\t%s\n", marker, n, lines[n-1])
	}
}

// stack prints the live call chain, innermost first (§4.6 `stack`).
func (d *Debugger) stack(i *evaluator.Interpreter) {
	frames := i.CallStack.Frames()
	if len(frames) == 0 {
		pterm.Info.WithWriter(d.out).Println("<no active calls>")
		return
	}
	items := make([]pterm.BulletListItem, len(frames))
	for idx, f := range frames {
		items[idx] = pterm.BulletListItem{Level: 0, Text: fmt.Sprintf("%s (%s)", f.Name, f.Pos)}
	}
	_ = pterm.DefaultBulletList.WithWriter(d.out).WithItems(items).Render()
}

// log prints the cumulative trace log recorded since the interpreter was
// attached to a debugger (§4.6 `log`).
func (d *Debugger) log(i *evaluator.Interpreter) {
	if len(i.TraceLog) == 0 {
		pterm.Info.WithWriter(d.out).Println("<trace log empty>")
		return
	}
	for _, entry := range i.TraceLog {
		fmt.Fprintln(d.out, entry)
	}
}

// printEnv lists every binding visible from env, walking outward but
// stopping before (not including) stop frame -- so `locals` doesn't spill
// into globals/builtins, and `globals` doesn't spill into builtins (§4.6
// `locals`/`globals`). An inner frame's binding shadows an outer one of the
// same name.
func (d *Debugger) printEnv(i *evaluator.Interpreter, env, stop *runtime.Environment) {
	merged := map[string]runtime.Value{}
	for f := env; f != nil && f != stop; f = f.Enclosing() {
		for k, v := range f.Names() {
			if _, seen := merged[k]; !seen {
				merged[k] = v
			}
		}
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		pterm.Info.WithWriter(d.out).Println("<no bindings>")
		return
	}
	for _, k := range keys {
		fmt.Fprintf(d.out, "%s = %s\n", k, i.Stringify(merged[k]))
	}
}

func (d *Debugger) help() {
	items := []pterm.BulletListItem{
		{Level: 0, Text: "continue        resume execution"},
		{Level: 0, Text: "quit            stop execution"},
		{Level: 0, Text: "list            show source around the breakpoint"},
		{Level: 0, Text: "stack           show the current call stack"},
		{Level: 0, Text: "log             show the cumulative trace log"},
		{Level: 0, Text: "locals          show local bindings"},
		{Level: 0, Text: "globals         show global bindings"},
		{Level: 0, Text: "value l|g EXPR  evaluate EXPR in the local or global scope"},
		{Level: 0, Text: "break N         set a breakpoint on a line not yet reached"},
		{Level: 0, Text: "help            show this message"},
	}
	_ = pterm.DefaultBulletList.WithWriter(d.out).WithItems(items).Render()
}

func (d *Debugger) setBreak(i *evaluator.Interpreter, pos token.Position, fields []string) {
	if len(fields) < 2 {
		pterm.Error.WithWriter(d.out).Println("usage: break N")
		return
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		pterm.Error.WithWriter(d.out).Println("break: expected a line number")
		return
	}
	if n <= pos.Line {
		pterm.Error.WithWriter(d.out).Println("cannot set a breakpoint on a line already passed")
		return
	}
	i.Breakpoints[n] = true
}

// value implements `value (l|g) expr` (§4.6): the expression is fed through
// "print expr;" via a throwaway scanner/parser pass, then executed with the
// interpreter's environment temporarily retargeted to the saved local frame
// or globals. The environment swap is undone unconditionally, including on
// a parse error or a panic unwinding through InterpretStmt.
func (d *Debugger) value(i *evaluator.Interpreter, savedLocal *runtime.Environment, fields []string) {
	if len(fields) < 3 {
		pterm.Error.WithWriter(d.out).Println("usage: value (l|g) expr")
		return
	}
	var target *runtime.Environment
	switch fields[1] {
	case "l":
		target = savedLocal
	case "g":
		target = i.GlobalsEnv()
	default:
		pterm.Error.WithWriter(d.out).Println("usage: value (l|g) expr")
		return
	}

	prev := i.SetEnv(target)
	defer i.SetEnv(prev)

	src := "print " + strings.Join(fields[2:], " ") + ";"
	toks := scanner.New(src, "<debug>").ScanTokens()
	p := parser.New(toks, nil)
	stmts := p.ParseProgram()
	if p.Errors().HasErrors() {
		for _, item := range p.Errors().Items() {
			fmt.Fprintln(d.out, item.Format(false, ""))
		}
		return
	}
	for _, s := range stmts {
		i.InterpretStmt(s)
	}
	for _, item := range i.Errors().Items() {
		fmt.Fprintln(d.out, item.Format(false, ""))
	}
	i.Errors().Reset()
}
