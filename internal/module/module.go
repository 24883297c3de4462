// Package module defines the registry seam for `GetMod "name";` (§6): the
// core never knows how a native module is implemented, only that a
// registered name resolves to a setup function producing a namespace of
// bindings to merge into the calling frame.
package module

import "fmt"

// Namespace is a name->value map of native bindings. The value type is
// left as interface{} here to avoid module depending on runtime (runtime
// depends on nothing in this module); the evaluator type-asserts entries
// to runtime.Value, which is a superset of interface{} by construction.
type Namespace map[string]interface{}

// Setup builds a module's namespace on demand (so registering a module
// never pays for it unless GetMod actually loads it).
type Setup func() Namespace

// Registry resolves a module name to its Setup function.
type Registry struct {
	modules map[string]Setup
}

func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]Setup)}
}

func (r *Registry) Register(name string, setup Setup) {
	r.modules[name] = setup
}

func (r *Registry) Load(name string) (Namespace, error) {
	setup, ok := r.modules[name]
	if !ok {
		return nil, fmt.Errorf("no such module %q", name)
	}
	return setup(), nil
}
