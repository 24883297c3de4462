package evaluator

import (
	"github.com/lonelycoder306/plox/internal/ast"
	"github.com/lonelycoder306/plox/internal/runtime"
)

// outcomeKind tags the result of executing a statement, replacing
// host-level panic/recover with a typed result threaded through execute
// (DESIGN NOTES: "Control-flow exceptions").
type outcomeKind int

const (
	okNormal outcomeKind = iota
	okBroke
	okContinued
	okReturned
	okReported
	okStopped
)

// outcome is the `execute` result. Loop carries the loop kind for Broke/
// Continued (so the evaluator knows whether continuing must first run a
// for-loop's increment). Value carries a Returned value. Err carries a
// Reported user exception.
type outcome struct {
	kind      outcomeKind
	loop      ast.LoopKind
	value     runtime.Value
	err       *userException
	recursion bool // a Stopped outcome caused by exceeded host recursion depth (§7)
}

var normal = outcome{kind: okNormal}

func broke(loop ast.LoopKind) outcome     { return outcome{kind: okBroke, loop: loop} }
func continued(loop ast.LoopKind) outcome { return outcome{kind: okContinued, loop: loop} }
func returned(v runtime.Value) outcome    { return outcome{kind: okReturned, value: v} }
func reported(e *userException) outcome   { return outcome{kind: okReported, err: e} }
var stopped = outcome{kind: okStopped}

// userException wraps a reported Error/Warning instance with its source
// locus (§4.5 report, §7 propagation policy).
type userException struct {
	Instance *runtime.Instance
	IsWarning bool
	Locus     outcomeLocus
}

type outcomeLocus struct {
	File string
	Line int
}

// unit is the distinguished "no value" marker a call yields absent an
// explicit return; in expression-statement position it suppresses the
// evaluator's REPL auto-print (§4.5 Function invocation).
type unit struct{}

var Unit runtime.Value = unit{}

func IsUnit(v runtime.Value) bool {
	_, ok := v.(unit)
	return ok
}
