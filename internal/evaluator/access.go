package evaluator

import (
	"github.com/lonelycoder306/plox/internal/ast"
	"github.com/lonelycoder306/plox/internal/runtime"
)

// resolveIndex normalizes a negative index (counts from the end) and
// bounds-checks it against length, per §4.5's indexing rule.
func resolveIndex(n float64, length int) (int, bool) {
	idx := int(n)
	if float64(idx) != n {
		return 0, false
	}
	if idx < 0 {
		idx += length
	}
	if idx < 0 || idx >= length {
		return 0, false
	}
	return idx, true
}

func asIndexNumber(v runtime.Value) (float64, bool) {
	n, ok := v.(float64)
	return n, ok
}

// evalAccess implements `obj[i]` and `obj[a..b]` for Strings and Lists
// (§4.5 Indexing & slicing). `a..b` is inclusive on both ends (§8's worked
// scenario: `s[1..3] = "ELL"` on "hello" replaces exactly the 3 characters
// at indices 1, 2, 3 and yields "hELLo", which only holds if `3` is itself
// included). Slice endpoints must both be non-negative and b >= a; a plain
// index supports negative counting from the end.
func (i *Interpreter) evalAccess(e *ast.Access) (runtime.Value, error) {
	obj, err := i.evaluate(e.Object)
	if err != nil {
		return nil, err
	}
	obj = runtime.Unwrap(obj)

	startV, err := i.evaluate(e.Start)
	if err != nil {
		return nil, err
	}
	start, ok := asIndexNumber(runtime.Unwrap(startV))
	if !ok {
		return nil, i.runtimeErr(e.Pos(), "", "index must be a number")
	}

	switch o := obj.(type) {
	case *runtime.Str:
		if e.End == nil {
			idx, ok := resolveIndex(start, len(o.Runes))
			if !ok {
				return nil, i.runtimeErr(e.Pos(), "", "index out of range")
			}
			return runtime.NewStr(string(o.Runes[idx])), nil
		}
		a, b, err := i.sliceBounds(e, start, len(o.Runes))
		if err != nil {
			return nil, err
		}
		return runtime.NewStr(string(o.Runes[a:b])), nil
	case *runtime.List:
		if e.End == nil {
			idx, ok := resolveIndex(start, len(o.Elements))
			if !ok {
				return nil, i.runtimeErr(e.Pos(), "", "index out of range")
			}
			return o.Elements[idx], nil
		}
		a, b, err := i.sliceBounds(e, start, len(o.Elements))
		if err != nil {
			return nil, err
		}
		out := make([]runtime.Value, b-a)
		copy(out, o.Elements[a:b])
		return runtime.NewList(out), nil
	default:
		return nil, i.runtimeErr(e.Pos(), "", "only strings and lists support indexing")
	}
}

func (i *Interpreter) sliceBounds(e *ast.Access, start float64, length int) (int, int, error) {
	endV, err := i.evaluate(e.End)
	if err != nil {
		return 0, 0, err
	}
	end, ok := asIndexNumber(runtime.Unwrap(endV))
	if !ok {
		return 0, 0, i.runtimeErr(e.Pos(), "", "slice endpoint must be a number")
	}
	a, b := int(start), int(end)
	if float64(a) != start || float64(b) != end {
		return 0, 0, i.runtimeErr(e.Pos(), "", "slice endpoints must be integers")
	}
	if a < 0 || b < 0 || b < a || b >= length {
		return 0, 0, i.runtimeErr(e.Pos(), "", "slice out of range")
	}
	// b is inclusive; callers slice with Go's half-open convention.
	return a, b + 1, nil
}

// evalModify implements write-back through Access for Strings and Lists: a
// plain index replaces one element, a slice splices in a String/List of
// the matching kind (§4.5).
func (i *Interpreter) evalModify(e *ast.Modify) (runtime.Value, error) {
	obj, err := i.evaluate(e.Access.Object)
	if err != nil {
		return nil, err
	}
	obj = runtime.Unwrap(obj)

	startV, err := i.evaluate(e.Access.Start)
	if err != nil {
		return nil, err
	}
	start, ok := asIndexNumber(runtime.Unwrap(startV))
	if !ok {
		return nil, i.runtimeErr(e.Pos(), "", "index must be a number")
	}

	value, err := i.evaluate(e.Value)
	if err != nil {
		return nil, err
	}
	value = runtime.CopyOnAssign(value)

	switch o := obj.(type) {
	case *runtime.Str:
		rhs, ok := value.(*runtime.Str)
		if !ok {
			return nil, i.runtimeErr(e.Pos(), "", "can only assign a string into a string")
		}
		if e.Access.End == nil {
			idx, ok := resolveIndex(start, len(o.Runes))
			if !ok || len(rhs.Runes) != 1 {
				return nil, i.runtimeErr(e.Pos(), "", "index out of range")
			}
			o.Runes[idx] = rhs.Runes[0]
			return rhs, nil
		}
		a, b, err := i.sliceBounds(e.Access, start, len(o.Runes))
		if err != nil {
			return nil, err
		}
		merged := append([]rune{}, o.Runes[:a]...)
		merged = append(merged, rhs.Runes...)
		merged = append(merged, o.Runes[b:]...)
		o.Runes = merged
		return rhs, nil
	case *runtime.List:
		if e.Access.End == nil {
			idx, ok := resolveIndex(start, len(o.Elements))
			if !ok {
				return nil, i.runtimeErr(e.Pos(), "", "index out of range")
			}
			o.Elements[idx] = value
			return value, nil
		}
		rhs, ok := value.(*runtime.List)
		if !ok {
			return nil, i.runtimeErr(e.Pos(), "", "can only assign a list into a list slice")
		}
		a, b, err := i.sliceBounds(e.Access, start, len(o.Elements))
		if err != nil {
			return nil, err
		}
		merged := append([]runtime.Value{}, o.Elements[:a]...)
		merged = append(merged, rhs.Elements...)
		merged = append(merged, o.Elements[b:]...)
		o.Elements = merged
		return rhs, nil
	default:
		return nil, i.runtimeErr(e.Pos(), "", "only strings and lists support indexed assignment")
	}
}
