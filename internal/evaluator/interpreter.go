// Package evaluator walks the AST produced by the parser, consuming the
// resolver's distance table for O(1) local variable lookup, and threading
// a typed Outcome through execution instead of using panic/recover for
// control flow (break/continue/return/report), per the specification's
// REDESIGN FLAGS. All process-wide interpreter state (the environment
// chain, call stack, trace log, breakpoints, debug mode, current class
// context) lives on one *Interpreter value rather than package globals.
package evaluator

import (
	"fmt"
	"io"

	"github.com/lonelycoder306/plox/internal/ast"
	"github.com/lonelycoder306/plox/internal/diag"
	"github.com/lonelycoder306/plox/internal/module"
	"github.com/lonelycoder306/plox/internal/runtime"
	"github.com/lonelycoder306/plox/internal/token"
)

// Debugger is implemented by internal/debugger; the evaluator calls back
// into it when the built-in breakpoint() fires or a line-number breakpoint
// is reached, keeping the dependency direction debugger -> evaluator rather
// than the reverse. A non-nil error is the REPL's cue that the debugger's
// `quit` command was used: it unwinds as a Stop signal (§4.6, §7).
type Debugger interface {
	Break(i *Interpreter, pos token.Position) error
}

// Interpreter is the single value carrying all interpreter state: the
// environment chain, call stack, trace log, breakpoints, debug flags, and
// the class-context flags `currentClass`/`inMethod` the private-access
// checks depend on (§4.5).
type Interpreter struct {
	Builtins *runtime.Environment
	Globals  *runtime.Environment
	env      *runtime.Environment

	distances map[ast.Expr]int
	CallStack *CallStack

	out    io.Writer
	errOut io.Writer

	DebugMode   bool
	Breakpoints map[int]bool
	TraceLog    []string
	debugger    Debugger

	inMethod     bool
	currentClass string // name of the class owning the method currently executing

	registry *module.Registry

	errors diag.Bag
}

// New builds an Interpreter. out receives `print` output; registry may be
// nil if the program never uses GetMod.
func New(out io.Writer, distances map[ast.Expr]int, registry *module.Registry) *Interpreter {
	builtins := runtime.NewEnvironment(nil)
	globals := runtime.NewEnvironment(builtins)
	i := &Interpreter{
		Builtins:    builtins,
		Globals:     globals,
		env:         globals,
		distances:   distances,
		CallStack:   NewCallStack(),
		out:         out,
		errOut:      out,
		Breakpoints: map[int]bool{},
		registry:    registry,
	}
	RegisterBuiltins(i)
	return i
}

func (i *Interpreter) SetDebugger(d Debugger) { i.debugger = d }

// SetErrOut redirects the built-in perror's output stream; it defaults to
// the same writer as print so captured test runs see both.
func (i *Interpreter) SetErrOut(w io.Writer) { i.errOut = w }

// MergeDistances folds a freshly resolved unit's distance entries into the
// running interpreter's table. The REPL resolves one unit (one accumulated
// line) at a time against a fresh Resolver, but keeps the same Interpreter
// across units so earlier bindings stay visible (§6 REPL); since AST nodes
// are unique per parse, later units never collide with earlier ones.
func (i *Interpreter) MergeDistances(extra map[ast.Expr]int) {
	for k, v := range extra {
		i.distances[k] = v
	}
}

func (i *Interpreter) Errors() *diag.Bag { return &i.errors }

func (i *Interpreter) Env() *runtime.Environment { return i.env }

func (i *Interpreter) SetEnv(e *runtime.Environment) *runtime.Environment {
	prev := i.env
	i.env = e
	return prev
}

// handleTopLevel reports an uncaught Reported/Stopped outcome and reports
// whether the caller should keep executing subsequent statements.
func (i *Interpreter) handleTopLevel(out outcome) bool {
	switch out.kind {
	case okReported:
		if out.err.IsWarning {
			i.reportWarning(out.err)
			return true
		}
		msg := i.stringify(out.err.Instance)
		i.errors.Add(diag.New(diag.User, token.Position{File: out.err.Locus.File, Line: out.err.Locus.Line}, msg))
		return false
	case okStopped:
		// Recursion is reported but non-fatal at top level (§7): the
		// diagnostic is already recorded by reportRuntime, and execution
		// continues with the next top-level statement. Every other Stopped
		// outcome (runtime type errors, undefined names, ...) halts the run.
		return out.recursion
	default:
		return true
	}
}

func (i *Interpreter) runtimeErr(pos token.Position, lexeme, format string, a ...interface{}) *runtime.RuntimeError {
	return runtime.NewRuntimeError(pos, lexeme, fmt.Sprintf(format, a...))
}

// trace appends a one-line execution record to TraceLog (§4.6 `log`
// command). Recording only happens once a debugger is attached, so plain
// file/REPL runs never pay for it.
func (i *Interpreter) trace(stmt ast.Stmt) {
	if i.debugger == nil {
		return
	}
	pos := stmt.Pos()
	i.TraceLog = append(i.TraceLog, fmt.Sprintf("%s:%d: %T", pos.File, pos.Line, stmt))
}

// ---- statement execution ----

func (i *Interpreter) execute(stmt ast.Stmt) outcome {
	i.trace(stmt)
	if i.debugger != nil {
		pos := stmt.Pos()
		if i.Breakpoints[pos.Line] {
			delete(i.Breakpoints, pos.Line) // only lines not yet passed (§4.6 `break N`)
			if err := i.debugger.Break(i, pos); err != nil {
				return i.reportRuntime(pos, err)
			}
		}
	}
	switch s := stmt.(type) {
	case *ast.ExpressionStmt:
		v, err := i.evaluate(s.Expression)
		if err != nil {
			return i.reportRuntime(s.Pos(), err)
		}
		i.maybeAutoPrint(s.Expression, v)
		return normal
	case *ast.PrintStmt:
		v, err := i.evaluate(s.Expression)
		if err != nil {
			return i.reportRuntime(s.Pos(), err)
		}
		fmt.Fprintln(i.out, i.stringify(v))
		return normal
	case *ast.VarStmt:
		return i.execVar(s)
	case *ast.ListStmt:
		return i.execList(s)
	case *ast.BlockStmt:
		return i.executeBlock(s.Statements, runtime.NewEnvironment(i.env))
	case *ast.IfStmt:
		return i.execIf(s)
	case *ast.WhileStmt:
		return i.execWhile(s)
	case *ast.BreakStmt:
		return broke(s.Loop)
	case *ast.ContinueStmt:
		return continued(s.Loop)
	case *ast.ReturnStmt:
		return i.execReturn(s)
	case *ast.FunctionStmt:
		fn := &runtime.Function{Decl: s, Closure: i.env}
		i.env.Define(s.Name.Lexeme, fn, ast.AccessVar)
		return normal
	case *ast.ClassStmt:
		return i.execClass(s)
	case *ast.MatchStmt:
		return i.execMatch(s)
	case *ast.GroupStmt:
		return i.execGroup(s)
	case *ast.FetchStmt:
		return i.execFetch(s)
	case *ast.ErrorStmt:
		return i.execAttempt(s)
	case *ast.ReportStmt:
		return i.execReport(s)
	}
	return normal
}

// executeBlock runs stmts in env. An uncaught warning is reported at the
// block boundary and execution continues with the next statement (§7); every
// other non-normal outcome unwinds.
func (i *Interpreter) executeBlock(stmts []ast.Stmt, env *runtime.Environment) outcome {
	prev := i.SetEnv(env)
	defer i.SetEnv(prev)
	for _, s := range stmts {
		out := i.execute(s)
		if out.kind == okReported && out.err.IsWarning {
			i.reportWarning(out.err)
			continue
		}
		if out.kind != okNormal {
			return out
		}
	}
	return normal
}

// reportWarning records an uncaught user warning as a Warning diagnostic;
// unlike a user error, it never halts the surrounding run.
func (i *Interpreter) reportWarning(ex *userException) {
	msg := i.stringify(ex.Instance)
	i.errors.Add(diag.New(diag.Warning, token.Position{File: ex.Locus.File, Line: ex.Locus.Line}, msg))
}

// reportRuntime turns an error from evaluating an expression into the
// matching Outcome: a user exception or Stop signal unwinding from a
// called function is passed through as the corresponding Outcome kind
// (not re-diagnosed as a Runtime error), everything else becomes a
// reported Runtime diagnostic that halts the current top-level statement.
func (i *Interpreter) reportRuntime(pos token.Position, err error) outcome {
	if ru, ok := err.(*reportedUnwind); ok {
		return reported(ru.ex)
	}
	if _, ok := err.(*stoppedUnwind); ok {
		return stopped
	}
	if re, ok := err.(*runtime.RuntimeError); ok {
		kind := diag.Runtime
		if re.Recursion {
			kind = diag.Recursion
		}
		i.errors.Add(diag.New(kind, re.Pos, re.Message).WithLexeme(re.Lexeme))
		return outcome{kind: okStopped, recursion: re.Recursion}
	}
	i.errors.Add(diag.New(diag.Runtime, pos, err.Error()))
	return stopped
}

// maybeAutoPrint mirrors the REPL's "print the value of a bare expression
// statement" behavior, except for assignment-shaped expressions (so `x =
// 1;` doesn't echo `1`) and the unit "no value" marker (§4.5).
func (i *Interpreter) maybeAutoPrint(expr ast.Expr, v runtime.Value) {
	switch expr.(type) {
	case *ast.Assign, *ast.Set, *ast.Modify:
		return
	}
	if IsUnit(v) {
		return
	}
	fmt.Fprintln(i.out, i.stringify(v))
}

func (i *Interpreter) execVar(s *ast.VarStmt) outcome {
	var val runtime.Value = runtime.Uninitialized
	if s.Initializer != nil {
		v, err := i.evaluate(s.Initializer)
		if err != nil {
			return i.reportRuntime(s.Pos(), err)
		}
		val = runtime.CopyOnAssign(v)
	}
	i.env.Define(s.Name.Lexeme, val, s.Access)
	return normal
}

func (i *Interpreter) execList(s *ast.ListStmt) outcome {
	v, err := i.evaluate(s.Initializer)
	if err != nil {
		return i.reportRuntime(s.Pos(), err)
	}
	i.env.Define(s.Name.Lexeme, runtime.CopyOnAssign(v), ast.AccessVar)
	return normal
}

func (i *Interpreter) execIf(s *ast.IfStmt) outcome {
	cond, err := i.evaluate(s.Condition)
	if err != nil {
		return i.reportRuntime(s.Pos(), err)
	}
	if runtime.Truthy(cond) {
		return i.execute(s.ThenBranch)
	}
	if s.ElseBranch != nil {
		return i.execute(s.ElseBranch)
	}
	return normal
}

// execWhile implements both genuine while loops and for-desugared loops
// (ForIncrement non-nil): a `continue` in a for-loop runs the increment
// before the condition is re-tested (§4.5 Control flow).
func (i *Interpreter) execWhile(s *ast.WhileStmt) outcome {
	for {
		cond, err := i.evaluate(s.Condition)
		if err != nil {
			return i.reportRuntime(s.Pos(), err)
		}
		if !runtime.Truthy(cond) {
			return normal
		}

		out := i.execute(s.Body)
		switch out.kind {
		case okBroke:
			return normal
		case okContinued:
			if s.ForIncrement != nil {
				if _, err := i.evaluate(s.ForIncrement); err != nil {
					return i.reportRuntime(s.Pos(), err)
				}
			}
			continue
		case okNormal:
			if s.ForIncrement != nil {
				if _, err := i.evaluate(s.ForIncrement); err != nil {
					return i.reportRuntime(s.Pos(), err)
				}
			}
		default:
			return out
		}
	}
}

func (i *Interpreter) execReturn(s *ast.ReturnStmt) outcome {
	if s.Value == nil {
		return returned(Unit)
	}
	v, err := i.evaluate(s.Value)
	if err != nil {
		return i.reportRuntime(s.Pos(), err)
	}
	return returned(v)
}

func (i *Interpreter) execFetch(s *ast.FetchStmt) outcome {
	if i.registry == nil {
		return i.reportRuntime(s.Pos(), fmt.Errorf("GetMod %q: no module registry configured", s.Name))
	}
	ns, err := i.registry.Load(s.Name)
	if err != nil {
		return i.reportRuntime(s.Pos(), err)
	}
	for name, v := range ns {
		if rv, ok := v.(runtime.Value); ok {
			i.env.Define(name, rv, ast.AccessFix)
		} else {
			i.env.Define(name, v, ast.AccessFix)
		}
	}
	return normal
}

func (i *Interpreter) execMatch(s *ast.MatchStmt) outcome {
	value, err := i.evaluate(s.Value)
	if err != nil {
		return i.reportRuntime(s.Pos(), err)
	}
	var defaultCase *ast.MatchCase
	matched := -1
	for idx := range s.Cases {
		c := &s.Cases[idx]
		if c.Default {
			defaultCase = c
			continue
		}
		cv, err := i.evaluate(c.Value)
		if err != nil {
			return i.reportRuntime(s.Pos(), err)
		}
		eq, err := i.valuesEqual(value, cv)
		if err != nil {
			return i.reportRuntime(s.Pos(), err)
		}
		if eq {
			matched = idx
			break
		}
	}
	if matched == -1 {
		if defaultCase == nil {
			return normal
		}
		return i.executeBlock(defaultCase.Body, runtime.NewEnvironment(i.env))
	}
	for idx := matched; idx < len(s.Cases); idx++ {
		c := &s.Cases[idx]
		out := i.executeBlock(c.Body, runtime.NewEnvironment(i.env))
		if out.kind != okNormal {
			return out
		}
		if !c.Fall {
			return normal
		}
	}
	return normal
}

func (i *Interpreter) execGroup(s *ast.GroupStmt) outcome {
	groupEnv := runtime.NewEnvironment(i.env)
	prev := i.SetEnv(groupEnv)
	for _, v := range s.Vars {
		if out := i.execute(v); out.kind != okNormal {
			i.SetEnv(prev)
			return out
		}
	}
	for _, fn := range s.Functions {
		groupEnv.Define(fn.Name.Lexeme, &runtime.Function{Decl: fn, Closure: groupEnv}, ast.AccessVar)
	}
	for _, c := range s.Classes {
		if out := i.execClass(c); out.kind != okNormal {
			i.SetEnv(prev)
			return out
		}
	}
	i.SetEnv(prev)
	group := &runtime.Group{GroupName: s.Name.Lexeme, Env: groupEnv}
	i.env.Define(s.Name.Lexeme, group, ast.AccessFix)
	return normal
}

func (i *Interpreter) execAttempt(s *ast.ErrorStmt) outcome {
	out := i.execute(s.TryBody)
	if out.kind != okReported {
		return out
	}
	if !i.matchesFilter(out.err, s.Filter) {
		return out
	}
	return i.execute(s.HandlerBody)
}

func (i *Interpreter) matchesFilter(ex *userException, filter []token.Token) bool {
	if len(filter) == 0 {
		return true
	}
	for _, f := range filter {
		if ex.Instance.Class.IsSubclassOf(f.Lexeme) {
			return true
		}
	}
	return false
}

func (i *Interpreter) execReport(s *ast.ReportStmt) outcome {
	v, err := i.evaluate(s.Value)
	if err != nil {
		return i.reportRuntime(s.Pos(), err)
	}
	inst, ok := v.(*runtime.Instance)
	if !ok || !(inst.Class.IsSubclassOf("Error") || inst.Class.IsSubclassOf("Warning")) {
		return i.reportRuntime(s.Pos(), fmt.Errorf("report requires an Error or Warning instance"))
	}
	return reported(&userException{
		Instance:  inst,
		IsWarning: inst.Class.IsSubclassOf("Warning") && !inst.Class.IsSubclassOf("Error"),
		Locus:     outcomeLocus{File: s.Pos().File, Line: s.Pos().Line},
	})
}
