package evaluator

import (
	"sort"
	"strings"

	"github.com/lonelycoder306/plox/internal/runtime"
	"github.com/lonelycoder306/plox/internal/token"
)

// listArity gives each native list method's [min, max] argument range
// (§4.5 Lists), grounded on the reference implementation's dispatch table.
var listArity = map[string][2]int{
	"add": {1, 1}, "insert": {2, 2}, "pop": {0, 0}, "remove": {1, 1},
	"delete": {1, 2}, "join": {0, 0}, "unique": {0, 0},
	"forEach": {1, 1}, "transform": {1, 1}, "filter": {1, 1}, "flat": {0, 0},
	"contains": {1, 1}, "duplicate": {0, 0}, "index": {1, 1}, "indexLast": {1, 1},
	"any": {1, 1}, "all": {1, 1}, "reverse": {0, 0}, "sort": {0, 1}, "sorted": {0, 1},
	"pair": {1, 1}, "separate": {0, 0}, "sum": {0, 0}, "min": {0, 0}, "max": {0, 0},
	"average": {0, 0},
}

// listMethod binds a native list method to the receiving list (§4.5);
// calling the returned BoundMethod threads list back in as the receiver.
func (i *Interpreter) listMethod(list *runtime.List, name string, pos token.Position) (runtime.Value, error) {
	arity, ok := listArity[name]
	if !ok {
		return nil, i.runtimeErr(pos, name, "Undefined property or method '%s'", name)
	}
	return &runtime.BoundMethod{
		MethodName: name,
		Receiver:   list,
		Min:        arity[0],
		Max:        arity[1],
		Fn: func(receiver runtime.Value, args []runtime.Value) (runtime.Value, error) {
			l := receiver.(*runtime.List)
			return i.callListMethod(l, name, args, pos)
		},
	}, nil
}

func (i *Interpreter) callListMethod(l *runtime.List, name string, args []runtime.Value, pos token.Position) (runtime.Value, error) {
	switch name {
	case "add":
		l.Elements = append(l.Elements, args[0])
		return Unit, nil
	case "insert":
		idx, ok := asIndexNumber(args[0])
		if !ok {
			return nil, i.runtimeErr(pos, name, "index must be a number")
		}
		n := int(idx)
		if n < 0 || n > len(l.Elements) {
			return nil, i.runtimeErr(pos, name, "index out of range")
		}
		l.Elements = append(l.Elements[:n], append([]runtime.Value{args[1]}, l.Elements[n:]...)...)
		return Unit, nil
	case "pop":
		if len(l.Elements) == 0 {
			return nil, nil
		}
		last := l.Elements[len(l.Elements)-1]
		l.Elements = l.Elements[:len(l.Elements)-1]
		return last, nil
	case "remove":
		idx, ok := asIndexNumber(args[0])
		if !ok {
			return nil, i.runtimeErr(pos, name, "index must be a number")
		}
		n, ok := resolveIndex(idx, len(l.Elements))
		if !ok {
			return nil, i.runtimeErr(pos, name, "index out of range")
		}
		elem := l.Elements[n]
		l.Elements = append(l.Elements[:n], l.Elements[n+1:]...)
		return elem, nil
	case "delete":
		all := len(args) == 2 && runtime.Truthy(args[1])
		out := l.Elements[:0:0]
		removedOne := false
		for _, e := range l.Elements {
			if listValuesEqual(e, args[0]) && (all || !removedOne) {
				removedOne = true
				continue
			}
			out = append(out, e)
		}
		l.Elements = out
		return Unit, nil
	case "join":
		var b strings.Builder
		for _, e := range l.Elements {
			s, ok := e.(*runtime.Str)
			if !ok {
				return nil, i.runtimeErr(pos, name, "join requires every element to be a string")
			}
			b.WriteString(s.String())
		}
		return runtime.NewStr(b.String()), nil
	case "unique":
		out := make([]runtime.Value, 0, len(l.Elements))
		for _, e := range l.Elements {
			dup := false
			for _, seen := range out {
				if listValuesEqual(e, seen) {
					dup = true
					break
				}
			}
			if !dup {
				out = append(out, e)
			}
		}
		return runtime.NewList(out), nil
	case "duplicate":
		for idx, e := range l.Elements {
			for _, other := range l.Elements[idx+1:] {
				if listValuesEqual(e, other) {
					return true, nil
				}
			}
		}
		return false, nil
	case "forEach":
		for _, e := range l.Elements {
			if _, err := i.invoke(args[0], []runtime.Value{e}, pos); err != nil {
				return nil, err
			}
		}
		return Unit, nil
	case "transform":
		out := make([]runtime.Value, len(l.Elements))
		for idx, e := range l.Elements {
			v, err := i.invoke(args[0], []runtime.Value{e}, pos)
			if err != nil {
				return nil, err
			}
			out[idx] = runtime.CopyOnAssign(v)
		}
		return runtime.NewList(out), nil
	case "filter":
		out := make([]runtime.Value, 0, len(l.Elements))
		for _, e := range l.Elements {
			v, err := i.invoke(args[0], []runtime.Value{e}, pos)
			if err != nil {
				return nil, err
			}
			if runtime.Truthy(v) {
				out = append(out, e)
			}
		}
		return runtime.NewList(out), nil
	case "flat":
		return runtime.NewList(flatten(l.Elements)), nil
	case "contains":
		for _, e := range l.Elements {
			if listValuesEqual(e, args[0]) {
				return true, nil
			}
		}
		return false, nil
	case "index":
		for idx, e := range l.Elements {
			if listValuesEqual(e, args[0]) {
				return float64(idx), nil
			}
		}
		return float64(-1), nil
	case "indexLast":
		for idx := len(l.Elements) - 1; idx >= 0; idx-- {
			if listValuesEqual(l.Elements[idx], args[0]) {
				return float64(idx), nil
			}
		}
		return float64(-1), nil
	case "any":
		for _, e := range l.Elements {
			v, err := i.invoke(args[0], []runtime.Value{e}, pos)
			if err != nil {
				return nil, err
			}
			if runtime.Truthy(v) {
				return true, nil
			}
		}
		return false, nil
	case "all":
		for _, e := range l.Elements {
			v, err := i.invoke(args[0], []runtime.Value{e}, pos)
			if err != nil {
				return nil, err
			}
			if !runtime.Truthy(v) {
				return false, nil
			}
		}
		return true, nil
	case "reverse":
		out := make([]runtime.Value, len(l.Elements))
		for idx, e := range l.Elements {
			out[len(out)-1-idx] = e
		}
		return runtime.NewList(out), nil
	case "sort":
		out := append([]runtime.Value{}, l.Elements...)
		descending := len(args) == 1 && runtime.Truthy(args[0])
		if err := sortValues(out, descending); err != nil {
			return nil, i.runtimeErr(pos, name, "%s", err)
		}
		return runtime.NewList(out), nil
	case "sorted":
		descending := len(args) == 1 && runtime.Truthy(args[0])
		return isSorted(l.Elements, descending), nil
	case "pair":
		other, ok := args[0].(*runtime.List)
		if !ok {
			return nil, i.runtimeErr(pos, name, "pair requires a list argument")
		}
		n := len(l.Elements)
		if len(other.Elements) < n {
			n = len(other.Elements)
		}
		out := make([]runtime.Value, n)
		for idx := 0; idx < n; idx++ {
			out[idx] = runtime.NewList([]runtime.Value{l.Elements[idx], other.Elements[idx]})
		}
		return runtime.NewList(out), nil
	case "separate":
		left := make([]runtime.Value, len(l.Elements))
		right := make([]runtime.Value, len(l.Elements))
		for idx, e := range l.Elements {
			pairList, ok := e.(*runtime.List)
			if !ok || len(pairList.Elements) != 2 {
				return nil, i.runtimeErr(pos, name, "separate requires a list of pairs")
			}
			left[idx] = pairList.Elements[0]
			right[idx] = pairList.Elements[1]
		}
		return runtime.NewList([]runtime.Value{runtime.NewList(left), runtime.NewList(right)}), nil
	case "sum", "average":
		total := 0.0
		for _, e := range l.Elements {
			n, ok := e.(float64)
			if !ok {
				return nil, i.runtimeErr(pos, name, "%s requires every element to be a number", name)
			}
			total += n
		}
		if name == "average" {
			if len(l.Elements) == 0 {
				return nil, i.runtimeErr(pos, name, "average of an empty list is undefined")
			}
			return total / float64(len(l.Elements)), nil
		}
		return total, nil
	case "min", "max":
		if len(l.Elements) == 0 {
			return nil, i.runtimeErr(pos, name, "%s of an empty list is undefined", name)
		}
		best := l.Elements[0]
		for _, e := range l.Elements[1:] {
			less, err := lessThan(e, best)
			if err != nil {
				return nil, i.runtimeErr(pos, name, "%s", err)
			}
			if (name == "min" && less) || (name == "max" && !less && !listValuesEqual(e, best)) {
				best = e
			}
		}
		return best, nil
	}
	return nil, i.runtimeErr(pos, name, "Undefined property or method '%s'", name)
}

func flatten(elems []runtime.Value) []runtime.Value {
	out := make([]runtime.Value, 0, len(elems))
	for _, e := range elems {
		if nested, ok := e.(*runtime.List); ok {
			out = append(out, flatten(nested.Elements)...)
			continue
		}
		out = append(out, e)
	}
	return out
}

func listValuesEqual(a, b runtime.Value) bool {
	switch x := a.(type) {
	case *runtime.Str:
		y, ok := b.(*runtime.Str)
		return ok && x.String() == y.String()
	case *runtime.List:
		y, ok := b.(*runtime.List)
		if !ok || len(x.Elements) != len(y.Elements) {
			return false
		}
		for idx := range x.Elements {
			if !listValuesEqual(x.Elements[idx], y.Elements[idx]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

func lessThan(a, b runtime.Value) (bool, error) {
	switch x := a.(type) {
	case float64:
		y, ok := b.(float64)
		if !ok {
			return false, errMixedTypes
		}
		return x < y, nil
	case *runtime.Str:
		y, ok := b.(*runtime.Str)
		if !ok {
			return false, errMixedTypes
		}
		return x.String() < y.String(), nil
	default:
		return false, errMixedTypes
	}
}

var errMixedTypes = strErr("list must contain only numbers, or only strings")

type strErr string

func (e strErr) Error() string { return string(e) }

func sortValues(vs []runtime.Value, descending bool) error {
	var sortErr error
	sort.SliceStable(vs, func(a, b int) bool {
		if sortErr != nil {
			return false
		}
		less, err := lessThan(vs[a], vs[b])
		if err != nil {
			sortErr = err
			return false
		}
		if descending {
			return !less && !listValuesEqual(vs[a], vs[b])
		}
		return less
	})
	return sortErr
}

func isSorted(vs []runtime.Value, descending bool) bool {
	for idx := 1; idx < len(vs); idx++ {
		if descending {
			if less, err := lessThan(vs[idx-1], vs[idx]); err != nil || less {
				return false
			}
		} else {
			if less, err := lessThan(vs[idx], vs[idx-1]); err != nil || less {
				return false
			}
		}
	}
	return true
}
