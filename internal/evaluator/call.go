package evaluator

import (
	"github.com/lonelycoder306/plox/internal/ast"
	"github.com/lonelycoder306/plox/internal/runtime"
	"github.com/lonelycoder306/plox/internal/token"
)

// evalCall implements §4.5's Call contract: evaluate callee and arguments
// (deep-copying Strings/Lists on entry; a Reference argument aliases
// instead, `reference` itself never copies, and `type` sees the wrapper),
// verify callability, check arity, push/pop a call-stack frame, and invoke.
func (i *Interpreter) evalCall(e *ast.Call) (runtime.Value, error) {
	callee, err := i.evaluate(e.Callee)
	if err != nil {
		return nil, err
	}

	builtinName := ""
	if b, ok := callee.(*runtime.Builtin); ok {
		builtinName = b.FnName
	}
	args := make([]runtime.Value, len(e.Arguments))
	for idx, a := range e.Arguments {
		v, err := i.evaluate(a)
		if err != nil {
			return nil, err
		}
		switch builtinName {
		case "type":
			args[idx] = v // type() inspects the Reference wrapper itself
		case "reference":
			args[idx] = runtime.Unwrap(v) // aliasing is the whole point
		default:
			args[idx] = runtime.CopyOnAssign(v)
		}
	}

	return i.invoke(callee, args, e.Pos())
}

// invoke dispatches a call to whichever Callable kind callee holds,
// checking arity and managing the call stack uniformly for all of them
// (user functions, builtins, bound methods, classes-as-constructors).
func (i *Interpreter) invoke(callee runtime.Value, args []runtime.Value, pos token.Position) (runtime.Value, error) {
	switch c := callee.(type) {
	case *runtime.Function:
		return i.callFunction(c, args, pos)
	case *runtime.Builtin:
		if err := checkArity(c.Name(), c.Min, c.Max, len(args), pos); err != nil {
			return nil, err
		}
		i.CallStack.Push(c.Name(), pos)
		defer i.CallStack.Pop()
		return c.Fn(args)
	case *runtime.BoundMethod:
		if err := checkArity(c.Name(), c.Min, c.Max, len(args), pos); err != nil {
			return nil, err
		}
		i.CallStack.Push(c.Name(), pos)
		defer i.CallStack.Pop()
		return c.Fn(c.Receiver, args)
	case *runtime.Class:
		return i.instantiate(c, args, pos)
	default:
		return nil, i.runtimeErr(pos, "", "can only call functions, methods, and classes")
	}
}

func checkArity(name string, min, max, got int, pos token.Position) error {
	if got < min {
		return runtime.NewRuntimeError(pos, name, "Expected minimum "+itoa(min)+" arguments but got "+itoa(got))
	}
	if got > max {
		return runtime.NewRuntimeError(pos, name, "Expected maximum "+itoa(max)+" arguments but got "+itoa(got))
	}
	return nil
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// callFunction builds a fresh environment enclosing the function's
// closure, binds positional arguments (evaluating defaults for missing
// trailing parameters, packing a variadic tail into `vargs`), and executes
// the body as a block (§4.5 Function invocation).
func (i *Interpreter) callFunction(fn *runtime.Function, args []runtime.Value, pos token.Position) (runtime.Value, error) {
	min, max := fn.Arity()
	if err := checkArity(fn.Name(), min, max, len(args), pos); err != nil {
		return nil, err
	}

	if i.CallStack.Push(fn.Name(), pos) {
		i.CallStack.Pop()
		return nil, runtime.NewRecursionError(pos, fn.Name(), "maximum recursion depth exceeded")
	}
	defer i.CallStack.Pop()

	env := runtime.NewEnvironment(fn.Closure)

	argIdx := 0
	for _, p := range fn.Decl.Params {
		if p.Variadic {
			rest := make([]runtime.Value, 0, len(args)-argIdx)
			for ; argIdx < len(args); argIdx++ {
				rest = append(rest, args[argIdx])
			}
			env.Define(p.Name.Lexeme, runtime.NewList(rest), ast.AccessVar)
			continue
		}
		if argIdx < len(args) {
			env.Define(p.Name.Lexeme, args[argIdx], ast.AccessVar)
			argIdx++
			continue
		}
		if p.Default != nil {
			prev := i.SetEnv(env)
			v, err := i.evaluate(p.Default)
			i.SetEnv(prev)
			if err != nil {
				return nil, err
			}
			env.Define(p.Name.Lexeme, runtime.CopyOnAssign(v), ast.AccessVar)
		}
	}

	wasInMethod := i.inMethod
	prevClass := i.currentClass
	if fn.IsMethod {
		i.inMethod = true
		i.currentClass = fn.OwnerName
	}
	out := i.executeBlock(fn.Decl.Body, env)
	i.inMethod = wasInMethod
	i.currentClass = prevClass

	switch out.kind {
	case okReturned:
		if fn.IsInit {
			return env.GetAt(1, "this") // this is bound one frame out, in Bind
		}
		return out.value, nil
	case okReported:
		return nil, &reportedUnwind{out.err}
	case okStopped:
		return nil, errStopped
	default:
		if fn.IsInit {
			return env.GetAt(1, "this")
		}
		return Unit, nil
	}
}

// reportedUnwind carries a user exception up through Go's error return so
// it can be re-wrapped into an outcome at the nearest attempt/handle or
// the top level, without disturbing ordinary error handling in between.
type reportedUnwind struct{ ex *userException }

func (r *reportedUnwind) Error() string { return "user exception" }

var errStopped = &stoppedUnwind{}

type stoppedUnwind struct{}

func (s *stoppedUnwind) Error() string { return "stopped" }

// Stop is the sentinel error the debugger's `quit` command returns from
// Break to unwind execution cleanly (§4.6, §7's "Stop signal... terminates
// execution cleanly"). Any error value works for Debugger.Break's contract;
// this one specifically collapses to the Stopped outcome rather than being
// reported as a Runtime diagnostic.
func Stop() error { return errStopped }
