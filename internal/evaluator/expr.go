package evaluator

import (
	"fmt"
	"math"
	"strings"

	"github.com/lonelycoder306/plox/internal/ast"
	"github.com/lonelycoder306/plox/internal/runtime"
)

func (i *Interpreter) evaluate(expr ast.Expr) (runtime.Value, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return i.literalValue(e), nil
	case *ast.Variable:
		return i.lookupVariable(e.Name.Lexeme, e)
	case *ast.Grouping:
		return i.evaluate(e.Expression)
	case *ast.Unary:
		return i.evalUnary(e)
	case *ast.Binary:
		return i.evalBinary(e)
	case *ast.Logical:
		return i.evalLogical(e)
	case *ast.Ternary:
		return i.evalTernary(e)
	case *ast.Comma:
		return i.evalComma(e)
	case *ast.Assign:
		return i.evalAssign(e)
	case *ast.Get:
		return i.evalGet(e)
	case *ast.Set:
		return i.evalSet(e)
	case *ast.Call:
		return i.evalCall(e)
	case *ast.Lambda:
		return &runtime.Function{
			Decl:    &ast.FunctionStmt{Params: e.Params, Body: e.Body, DefaultCount: e.DefaultCount},
			Closure: i.env,
		}, nil
	case *ast.List:
		elems := make([]runtime.Value, len(e.Elements))
		for idx, el := range e.Elements {
			v, err := i.evaluate(el)
			if err != nil {
				return nil, err
			}
			elems[idx] = runtime.CopyOnAssign(v)
		}
		return runtime.NewList(elems), nil
	case *ast.Access:
		return i.evalAccess(e)
	case *ast.Modify:
		return i.evalModify(e)
	case *ast.This:
		return i.lookupVariable("this", e)
	case *ast.Super:
		return i.evalSuper(e)
	}
	return nil, fmt.Errorf("unhandled expression %T", expr)
}

func (i *Interpreter) literalValue(e *ast.Literal) runtime.Value {
	switch v := e.Value.(type) {
	case string:
		return runtime.NewStr(v)
	default:
		return v
	}
}

// lookupVariable consults the resolver's distance table first. A name with
// no recorded distance is looked up in the current frame, then globals,
// then builtins — never the frames in between, which only resolver-known
// locals may reach (§4.5 Variable lookup).
func (i *Interpreter) lookupVariable(name string, expr ast.Expr) (runtime.Value, error) {
	if d, ok := i.distances[expr]; ok {
		return i.env.GetAt(d, name)
	}
	if i.env.Has(name) {
		return i.env.GetAt(0, name)
	}
	return i.Globals.Get(name)
}

func (i *Interpreter) evalUnary(e *ast.Unary) (runtime.Value, error) {
	right, err := i.evaluate(e.Right)
	if err != nil {
		return nil, err
	}
	right = runtime.Unwrap(right)
	switch e.Operator.Lexeme {
	case "-":
		n, ok := right.(float64)
		if !ok {
			return nil, i.runtimeErr(e.Pos(), e.Operator.Lexeme, "operand must be a number")
		}
		return -n, nil
	case "!":
		return !runtime.Truthy(right), nil
	}
	return nil, i.runtimeErr(e.Pos(), e.Operator.Lexeme, "unknown unary operator")
}

func (i *Interpreter) evalLogical(e *ast.Logical) (runtime.Value, error) {
	left, err := i.evaluate(e.Left)
	if err != nil {
		return nil, err
	}
	if e.Operator.Lexeme == "or" {
		if runtime.Truthy(left) {
			return left, nil
		}
	} else {
		if !runtime.Truthy(left) {
			return left, nil
		}
	}
	return i.evaluate(e.Right)
}

func (i *Interpreter) evalTernary(e *ast.Ternary) (runtime.Value, error) {
	cond, err := i.evaluate(e.Condition)
	if err != nil {
		return nil, err
	}
	if runtime.Truthy(cond) {
		return i.evaluate(e.Then)
	}
	return i.evaluate(e.Else)
}

func (i *Interpreter) evalComma(e *ast.Comma) (runtime.Value, error) {
	var last runtime.Value
	for _, sub := range e.Expressions {
		v, err := i.evaluate(sub)
		if err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}

func (i *Interpreter) evalAssign(e *ast.Assign) (runtime.Value, error) {
	v, err := i.evaluate(e.Value)
	if err != nil {
		return nil, err
	}
	v = runtime.CopyOnAssign(v)
	if d, ok := i.distances[e]; ok {
		if err := i.env.AssignAt(d, e.Name.Lexeme, v); err != nil {
			return nil, i.runtimeErr(e.Pos(), e.Name.Lexeme, "%s", err)
		}
		return v, nil
	}
	if i.env.Has(e.Name.Lexeme) {
		if err := i.env.AssignAt(0, e.Name.Lexeme, v); err != nil {
			return nil, i.runtimeErr(e.Pos(), e.Name.Lexeme, "%s", err)
		}
		return v, nil
	}
	if err := i.Globals.Assign(e.Name.Lexeme, v); err != nil {
		return nil, i.runtimeErr(e.Pos(), e.Name.Lexeme, "%s", err)
	}
	return v, nil
}

func (i *Interpreter) evalSuper(e *ast.Super) (runtime.Value, error) {
	d := i.distances[e]
	superVal, err := i.env.GetAt(d, "super")
	if err != nil {
		return nil, err
	}
	super, ok := superVal.(*runtime.Class)
	if !ok {
		return nil, i.runtimeErr(e.Pos(), "super", "'super' is not bound to a class")
	}
	thisVal, err := i.env.GetAt(d-1, "this")
	if err != nil {
		return nil, err
	}
	inst, ok := thisVal.(*runtime.Instance)
	if !ok {
		return nil, i.runtimeErr(e.Pos(), "super", "'this' is not bound to an instance")
	}
	method := super.FindMethod(e.Method.Lexeme, true)
	if method == nil {
		return nil, i.runtimeErr(e.Pos(), e.Method.Lexeme, "Undefined property or method '%s'", e.Method.Lexeme)
	}
	return i.bindMethod(method, inst), nil
}

// ---- arithmetic & comparison (§4.5) ----

func (i *Interpreter) evalBinary(e *ast.Binary) (runtime.Value, error) {
	left, err := i.evaluate(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluate(e.Right)
	if err != nil {
		return nil, err
	}
	left, right = runtime.Unwrap(left), runtime.Unwrap(right)

	switch e.Operator.Lexeme {
	case "+":
		return i.evalAdd(e, left, right)
	case "-", "/", "%", "**":
		return i.evalArith(e, left, right)
	case "*":
		return i.evalMul(e, left, right)
	case "<", "<=", ">", ">=":
		return i.evalCompare(e, left, right)
	case "==":
		eq, err := i.valuesEqual(left, right)
		if err != nil {
			return nil, err
		}
		return eq, nil
	case "!=":
		if ne, ok, err := i.dispatchNotEqual(e, left, right); ok || err != nil {
			return ne, err
		}
		eq, err := i.valuesEqual(left, right)
		if err != nil {
			return nil, err
		}
		return !eq, nil
	}
	return nil, i.runtimeErr(e.Pos(), e.Operator.Lexeme, "unknown binary operator")
}

// dispatchNotEqual gives a like-typed instance pair's `_ne` hook first claim
// on `!=` (§4.5); without one, the caller falls back to negated equality.
func (i *Interpreter) dispatchNotEqual(e *ast.Binary, left, right runtime.Value) (runtime.Value, bool, error) {
	l, ok := left.(*runtime.Instance)
	if !ok {
		return nil, false, nil
	}
	r, ok := right.(*runtime.Instance)
	if !ok || l.Class != r.Class {
		return nil, false, nil
	}
	method := l.Class.FindMethod("_ne", true)
	if method == nil {
		return nil, false, nil
	}
	bound := i.bindMethod(method, l)
	res, err := i.invoke(bound, []runtime.Value{r}, e.Pos())
	if err != nil {
		return nil, true, err
	}
	b, ok := res.(bool)
	if !ok {
		return nil, true, i.runtimeErr(e.Pos(), "!=", "'_ne' must return a Boolean")
	}
	return b, true, nil
}

func (i *Interpreter) evalAdd(e *ast.Binary, left, right runtime.Value) (runtime.Value, error) {
	if ln, ok := left.(float64); ok {
		if rn, ok := right.(float64); ok {
			return ln + rn, nil
		}
	}
	if ll, ok := left.(*runtime.List); ok {
		rl, ok := right.(*runtime.List)
		if !ok {
			return nil, i.runtimeErr(e.Pos(), "+", "cannot add list and non-list")
		}
		out := make([]runtime.Value, 0, len(ll.Elements)+len(rl.Elements))
		out = append(out, ll.Elements...)
		out = append(out, rl.Elements...)
		return runtime.NewList(out), nil
	}
	if _, ok := left.(*runtime.Str); ok {
		return runtime.NewStr(i.stringify(left) + i.stringify(right)), nil
	}
	if _, ok := right.(*runtime.Str); ok {
		return runtime.NewStr(i.stringify(left) + i.stringify(right)), nil
	}
	return nil, i.runtimeErr(e.Pos(), "+", "operands must be numbers, strings, or lists")
}

func (i *Interpreter) evalArith(e *ast.Binary, left, right runtime.Value) (runtime.Value, error) {
	ln, lok := left.(float64)
	rn, rok := right.(float64)
	if !lok || !rok {
		return nil, i.runtimeErr(e.Pos(), e.Operator.Lexeme, "operands must be numbers")
	}
	switch e.Operator.Lexeme {
	case "-":
		return ln - rn, nil
	case "/":
		if rn == 0 {
			return nil, i.runtimeErr(e.Pos(), "/", "division by zero")
		}
		return ln / rn, nil
	case "%":
		if rn == 0 {
			return nil, i.runtimeErr(e.Pos(), "%", "division by zero")
		}
		return math.Mod(ln, rn), nil
	case "**":
		return math.Pow(ln, rn), nil
	}
	return nil, i.runtimeErr(e.Pos(), e.Operator.Lexeme, "unknown arithmetic operator")
}

func (i *Interpreter) evalMul(e *ast.Binary, left, right runtime.Value) (runtime.Value, error) {
	if ln, ok := left.(float64); ok {
		if rn, ok := right.(float64); ok {
			return ln * rn, nil
		}
	}
	if s, ok := left.(*runtime.Str); ok {
		if n, ok := right.(float64); ok {
			return runtime.NewStr(strings.Repeat(s.String(), int(n))), nil
		}
		if b, ok := right.(bool); ok {
			return runtime.NewStr(strings.Repeat(s.String(), boolToInt(b))), nil
		}
	}
	if n, ok := left.(float64); ok {
		if s, ok := right.(*runtime.Str); ok {
			return runtime.NewStr(strings.Repeat(s.String(), int(n))), nil
		}
	}
	return nil, i.runtimeErr(e.Pos(), "*", "operands must be numbers, or a string and an integer/bool")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (i *Interpreter) evalCompare(e *ast.Binary, left, right runtime.Value) (runtime.Value, error) {
	if ln, ok := left.(float64); ok {
		rn, ok := right.(float64)
		if !ok {
			return nil, i.runtimeErr(e.Pos(), e.Operator.Lexeme, "cannot compare number and non-number")
		}
		return numCompare(e.Operator.Lexeme, ln, rn), nil
	}
	if ls, ok := left.(*runtime.Str); ok {
		rs, ok := right.(*runtime.Str)
		if !ok {
			return nil, i.runtimeErr(e.Pos(), e.Operator.Lexeme, "cannot compare string and non-string")
		}
		return strCompare(e.Operator.Lexeme, ls.String(), rs.String()), nil
	}
	if inst, ok := left.(*runtime.Instance); ok {
		return i.dunderCompare(e, inst, right)
	}
	return nil, i.runtimeErr(e.Pos(), e.Operator.Lexeme, "operands must both be numbers, strings, or comparable instances")
}

func numCompare(op string, l, r float64) bool {
	switch op {
	case "<":
		return l < r
	case "<=":
		return l <= r
	case ">":
		return l > r
	case ">=":
		return l >= r
	}
	return false
}

func strCompare(op string, l, r string) bool {
	switch op {
	case "<":
		return l < r
	case "<=":
		return l <= r
	case ">":
		return l > r
	case ">=":
		return l >= r
	}
	return false
}

var dunderNames = map[string]string{"<": "_lt", "<=": "_le", ">": "_gt", ">=": "_ge"}

func (i *Interpreter) dunderCompare(e *ast.Binary, inst *runtime.Instance, right runtime.Value) (runtime.Value, error) {
	// The interpreter itself dispatches the hook, so the private-method
	// gate does not apply: a leading-underscore hook stays reachable from
	// any comparison site.
	name := dunderNames[e.Operator.Lexeme]
	method := inst.Class.FindMethod(name, true)
	if method == nil {
		return nil, i.runtimeErr(e.Pos(), e.Operator.Lexeme, "instance has no '%s' method", name)
	}
	bound := i.bindMethod(method, inst)
	result, err := i.invoke(bound, []runtime.Value{right}, e.Pos())
	if err != nil {
		return nil, err
	}
	b, ok := result.(bool)
	if !ok {
		return nil, i.runtimeErr(e.Pos(), e.Operator.Lexeme, "'%s' must return a Boolean", name)
	}
	return b, nil
}

// valuesEqual implements §4.5's equality contract: different runtime types
// are always unequal; like-typed instances dispatch to `_eq`; otherwise
// structural equality on primitives, reference equality on objects.
func (i *Interpreter) valuesEqual(left, right runtime.Value) (bool, error) {
	left, right = runtime.Unwrap(left), runtime.Unwrap(right)
	switch l := left.(type) {
	case nil:
		return right == nil, nil
	case bool:
		r, ok := right.(bool)
		return ok && l == r, nil
	case float64:
		r, ok := right.(float64)
		return ok && l == r, nil
	case *runtime.Str:
		r, ok := right.(*runtime.Str)
		return ok && l.String() == r.String(), nil
	case *runtime.List:
		r, ok := right.(*runtime.List)
		if !ok || len(l.Elements) != len(r.Elements) {
			return false, nil
		}
		for idx := range l.Elements {
			eq, err := i.valuesEqual(l.Elements[idx], r.Elements[idx])
			if err != nil {
				return false, err
			}
			if !eq {
				return false, nil
			}
		}
		return true, nil
	case *runtime.Instance:
		r, ok := right.(*runtime.Instance)
		if !ok {
			return false, nil
		}
		if l.Class != r.Class {
			return false, nil
		}
		if method := l.Class.FindMethod("_eq", true); method != nil {
			bound := i.bindMethod(method, l)
			res, err := i.invoke(bound, []runtime.Value{r}, method.Decl.Pos())
			if err != nil {
				return false, err
			}
			b, ok := res.(bool)
			if !ok {
				return false, fmt.Errorf("'_eq' must return a Boolean")
			}
			return b, nil
		}
		return l == r, nil
	default:
		return left == right, nil
	}
}

func (i *Interpreter) stringify(v runtime.Value) string {
	return runtime.Stringify(v, func(inst *runtime.Instance) (string, bool) {
		method := inst.Class.FindMethod("_str", true)
		if method == nil {
			return "", false
		}
		bound := i.bindMethod(method, inst)
		res, err := i.invoke(bound, nil, method.Decl.Pos())
		if err != nil {
			return "", false
		}
		s, ok := res.(*runtime.Str)
		if !ok {
			return "", false
		}
		return s.String(), true
	})
}
