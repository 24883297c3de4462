package evaluator

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lonelycoder306/plox/internal/ast"
	"github.com/lonelycoder306/plox/internal/runtime"
)

// RegisterBuiltins installs the native functions available in every
// program's Builtins scope, one level outward of Globals: `clock`, `type`,
// `string`, `number`, `length`, `copy`, `strformat`, `perror`, `arity`,
// `reference`, and `breakpoint`.
func RegisterBuiltins(i *Interpreter) {
	define := func(name string, min, max int, fn func(args []runtime.Value) (runtime.Value, error)) {
		i.Builtins.Define(name, &runtime.Builtin{FnName: name, Min: min, Max: max, Fn: fn}, ast.AccessFix)
	}

	define("clock", 0, 0, func(args []runtime.Value) (runtime.Value, error) {
		return &runtime.DateTime{UnixNano: time.Now().UnixNano()}, nil
	})

	define("type", 1, 1, func(args []runtime.Value) (runtime.Value, error) {
		return runtime.NewStr(typeName(args[0])), nil
	})

	define("reference", 1, 1, func(args []runtime.Value) (runtime.Value, error) {
		return &runtime.Reference{Target: runtime.Unwrap(args[0])}, nil
	})

	define("length", 1, 1, func(args []runtime.Value) (runtime.Value, error) {
		switch v := args[0].(type) {
		case *runtime.Str:
			return float64(len(v.Runes)), nil
		case *runtime.List:
			return float64(len(v.Elements)), nil
		default:
			return nil, i.runtimeErr(i.CallStack.topPos(), "length", "length requires a string or list")
		}
	})

	define("string", 1, 1, func(args []runtime.Value) (runtime.Value, error) {
		return runtime.NewStr(i.stringify(args[0])), nil
	})

	define("number", 1, 1, func(args []runtime.Value) (runtime.Value, error) {
		s, ok := args[0].(*runtime.Str)
		if !ok {
			return nil, i.runtimeErr(i.CallStack.topPos(), "number", "Invalid input to number().")
		}
		text := s.String()
		for _, r := range text {
			switch {
			case r >= '0' && r <= '9':
			case r == '.' || r == '+' || r == '-' || r == 'e' || r == 'E':
			default:
				return nil, i.runtimeErr(i.CallStack.topPos(), "number", "Invalid input to number().")
			}
		}
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, i.runtimeErr(i.CallStack.topPos(), "number", "Invalid input to number().")
		}
		return n, nil
	})

	define("copy", 1, 1, func(args []runtime.Value) (runtime.Value, error) {
		if inst, ok := args[0].(*runtime.Instance); ok {
			dup := runtime.NewInstance(inst.Class)
			for k, v := range inst.Public {
				dup.Public[k] = runtime.DeepCopy(v)
			}
			for k, v := range inst.Private {
				dup.Private[k] = runtime.DeepCopy(v)
			}
			return dup, nil
		}
		return runtime.DeepCopy(args[0]), nil
	})

	define("strformat", 1, 1, func(args []runtime.Value) (runtime.Value, error) {
		s, ok := args[0].(*runtime.Str)
		if !ok {
			return nil, i.runtimeErr(i.CallStack.topPos(), "strformat", "strformat() only accepts string arguments.")
		}
		return runtime.NewStr(expandEscapes(s.String())), nil
	})

	define("perror", 1, 1, func(args []runtime.Value) (runtime.Value, error) {
		s, ok := args[0].(*runtime.Str)
		if !ok {
			return nil, i.runtimeErr(i.CallStack.topPos(), "perror", "perror() only accepts string arguments.")
		}
		fmt.Fprintln(i.errOut, s.String())
		return Unit, nil
	})

	define("arity", 1, 1, func(args []runtime.Value) (runtime.Value, error) {
		c, ok := args[0].(runtime.Callable)
		if !ok {
			return nil, i.runtimeErr(i.CallStack.topPos(), "arity", "arity() only accepts function arguments.")
		}
		min, max := c.Arity()
		return runtime.NewList([]runtime.Value{float64(min), float64(max)}), nil
	})

	define("breakpoint", 0, 0, func(args []runtime.Value) (runtime.Value, error) {
		if i.debugger != nil {
			if err := i.debugger.Break(i, i.CallStack.topPos()); err != nil {
				return nil, err
			}
		}
		return Unit, nil
	})

	registerBaseExceptionClasses(i)
}

// registerBaseExceptionClasses installs the root `Error` and `Warning`
// classes every user exception class descends from (§4.5 `report`,
// §"Report / Attempt / Handle"): plain classes with no methods of their
// own, present purely so `class MyErr < Error {}` and
// `inst.Class.IsSubclassOf("Error"|"Warning")` have something to anchor
// to.
func registerBaseExceptionClasses(i *Interpreter) {
	newBase := func(name string) *runtime.Class {
		return &runtime.Class{
			ClassName: name,
			Private:   map[string]*runtime.Function{},
			Public:    map[string]*runtime.Function{},
		}
	}
	i.Builtins.Define("Error", newBase("Error"), ast.AccessFix)
	i.Builtins.Define("Warning", newBase("Warning"), ast.AccessFix)
}

// expandEscapes interprets backslash escape sequences in s. The scanner
// leaves string literals verbatim; turning "\n" into a newline is
// strformat's job alone.
func expandEscapes(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for idx := 0; idx < len(runes); idx++ {
		r := runes[idx]
		if r != '\\' || idx+1 == len(runes) {
			b.WriteRune(r)
			continue
		}
		idx++
		switch runes[idx] {
		case 'n':
			b.WriteRune('\n')
		case 't':
			b.WriteRune('\t')
		case 'r':
			b.WriteRune('\r')
		case 'a':
			b.WriteRune('\a')
		case 'b':
			b.WriteRune('\b')
		case 'f':
			b.WriteRune('\f')
		case 'v':
			b.WriteRune('\v')
		case '0':
			b.WriteRune(0)
		case '"':
			b.WriteRune('"')
		case '\\':
			b.WriteRune('\\')
		default:
			b.WriteRune('\\')
			b.WriteRune(runes[idx])
		}
	}
	return b.String()
}

func typeName(v runtime.Value) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case bool:
		return "Boolean"
	case float64:
		return "Number"
	case *runtime.Str:
		return "String"
	case *runtime.List:
		return "List"
	case *runtime.DateTime:
		return "DateTime"
	case *runtime.Function:
		return "Function"
	case *runtime.Builtin:
		return "Builtin"
	case *runtime.BoundMethod:
		return "InstanceMethod"
	case *runtime.Class:
		return "Class"
	case *runtime.Instance:
		return x.Class.ClassName
	case *runtime.Group:
		return "Group"
	case *runtime.Reference:
		return "Reference"
	default:
		if runtime.IsUninitialized(v) {
			return "Uninitialized"
		}
		return "Unknown"
	}
}
