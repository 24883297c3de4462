package evaluator

import (
	"github.com/lonelycoder306/plox/internal/ast"
	"github.com/lonelycoder306/plox/internal/runtime"
)

// EvaluateExpr runs a single expression to a value in the interpreter's
// current environment.
func (i *Interpreter) EvaluateExpr(e ast.Expr) (runtime.Value, error) {
	return i.evaluate(e)
}

// Stringify exposes the interpreter's stringification contract (§4.5) to
// callers outside the package (the driver's REPL echo, the debugger's
// `value`/`locals`/`globals` commands).
func (i *Interpreter) Stringify(v runtime.Value) string {
	return i.stringify(v)
}

// InterpretStmt runs one top-level statement and reports whether execution
// should continue with the next one. The driver's pipeline calls it once
// per top-level statement of a unit (a file, or one REPL line) and stops
// that unit at the first false, so in the REPL a single bad or
// warning-raising line never ends the session (§7: "in the REPL they
// discard the current line only"). The debugger's `value` command also
// runs its `print` statement through it.
func (i *Interpreter) InterpretStmt(stmt ast.Stmt) bool {
	out := i.execute(stmt)
	return i.handleTopLevel(out)
}

// GlobalsEnv and BuiltinsEnv expose the two outermost frames for the
// debugger's `globals` command and for driver bootstrapping.
func (i *Interpreter) GlobalsEnv() *runtime.Environment  { return i.Globals }
func (i *Interpreter) BuiltinsEnv() *runtime.Environment { return i.Builtins }
