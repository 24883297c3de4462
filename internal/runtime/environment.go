package runtime

import (
	"fmt"

	"github.com/lonelycoder306/plox/internal/ast"
)

// Environment is a single lexical frame: a name->value map, a parallel
// name->access-tag map (FIX bindings reject reassignment), and a link to
// the enclosing frame. The language is case-sensitive, so a plain Go map
// keyed by the identifier text is enough — no case-folding layer is needed.
type Environment struct {
	values    map[string]Value
	access    map[string]ast.AccessTag
	enclosing *Environment
}

func NewEnvironment(enclosing *Environment) *Environment {
	return &Environment{
		values:    make(map[string]Value),
		access:    make(map[string]ast.AccessTag),
		enclosing: enclosing,
	}
}

// Define binds name in this frame, overwriting any existing binding of the
// same name (redeclaration is rejected earlier, by the resolver).
func (e *Environment) Define(name string, value Value, tag ast.AccessTag) {
	e.values[name] = value
	e.access[name] = tag
}

// Get walks outward from this frame, failing on miss. Reading a binding
// still holding Uninitialized fails with a dedicated message (§4.4).
func (e *Environment) Get(name string) (Value, error) {
	for f := e; f != nil; f = f.enclosing {
		if v, ok := f.values[name]; ok {
			if IsUninitialized(v) {
				return nil, fmt.Errorf("Uninitialized variable '%s'", name)
			}
			return v, nil
		}
	}
	return nil, fmt.Errorf("Undefined variable or function '%s'", name)
}

// Assign walks outward, failing on miss and on a FIX-tagged binding.
func (e *Environment) Assign(name string, value Value) error {
	for f := e; f != nil; f = f.enclosing {
		if _, ok := f.values[name]; ok {
			if f.access[name] == ast.AccessFix {
				return fmt.Errorf("cannot reassign fix binding '%s'", name)
			}
			f.values[name] = value
			return nil
		}
	}
	return fmt.Errorf("Undefined variable or function '%s'", name)
}

// Has reports whether name is bound directly in this frame, without
// walking outward.
func (e *Environment) Has(name string) bool {
	_, ok := e.values[name]
	return ok
}

// Ancestor returns the frame k enclosing links out from e.
func (e *Environment) Ancestor(k int) *Environment {
	f := e
	for i := 0; i < k; i++ {
		f = f.enclosing
	}
	return f
}

// GetAt and AssignAt skip the outward walk using the resolver-computed
// distance, giving O(1) local variable access (§4.4).
func (e *Environment) GetAt(k int, name string) (Value, error) {
	f := e.Ancestor(k)
	v, ok := f.values[name]
	if !ok {
		return nil, fmt.Errorf("Undefined variable or function '%s'", name)
	}
	if IsUninitialized(v) {
		return nil, fmt.Errorf("Uninitialized variable '%s'", name)
	}
	return v, nil
}

func (e *Environment) AssignAt(k int, name string, value Value) error {
	f := e.Ancestor(k)
	if f.access[name] == ast.AccessFix {
		if _, ok := f.values[name]; ok && !IsUninitialized(f.values[name]) {
			return fmt.Errorf("cannot reassign fix binding '%s'", name)
		}
	}
	f.values[name] = value
	return nil
}

// Enclosing exposes the parent frame (used by the debugger to print the
// local/global split, §4.6).
func (e *Environment) Enclosing() *Environment { return e.enclosing }

// Names returns the bindings defined directly in this frame, for the
// debugger's `locals`/`globals` commands.
func (e *Environment) Names() map[string]Value {
	out := make(map[string]Value, len(e.values))
	for k, v := range e.values {
		out[k] = v
	}
	return out
}
