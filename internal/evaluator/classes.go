package evaluator

import (
	"sort"

	"github.com/lonelycoder306/plox/internal/ast"
	"github.com/lonelycoder306/plox/internal/runtime"
	"github.com/lonelycoder306/plox/internal/token"
)

// execClass builds the metaclass (class/static methods) and the instance
// class (private/public method dicts), binds `super` one environment out
// from `this` when a superclass is present, and assigns the finished class
// value into the name declared at the top of the block (§4.5 Classes).
func (i *Interpreter) execClass(s *ast.ClassStmt) outcome {
	i.env.Define(s.Name.Lexeme, nil, ast.AccessVar)

	var superclass *runtime.Class
	classEnv := i.env
	if s.Superclass != nil {
		v, err := i.evaluate(s.Superclass)
		if err != nil {
			return i.reportRuntime(s.Pos(), err)
		}
		sc, ok := v.(*runtime.Class)
		if !ok {
			return i.reportRuntime(s.Superclass.Pos(), i.runtimeErr(s.Superclass.Pos(), s.Superclass.Name.Lexeme, "Superclass must be a class."))
		}
		superclass = sc
		classEnv = runtime.NewEnvironment(i.env)
		classEnv.Define("super", superclass, ast.AccessFix)
	}

	classMethods := map[string]*runtime.Function{}
	for _, m := range s.ClassMethods {
		classMethods[m.Name.Lexeme] = &runtime.Function{Decl: m, Closure: classEnv}
	}

	private := map[string]*runtime.Function{}
	for _, m := range s.PrivateMethods {
		private[m.Name.Lexeme] = &runtime.Function{
			Decl: m, Closure: classEnv, IsMethod: true,
			IsInit: m.Name.Lexeme == "init", OwnerName: s.Name.Lexeme,
		}
	}
	public := map[string]*runtime.Function{}
	for _, m := range s.PublicMethods {
		public[m.Name.Lexeme] = &runtime.Function{
			Decl: m, Closure: classEnv, IsMethod: true,
			IsInit: m.Name.Lexeme == "init", OwnerName: s.Name.Lexeme,
		}
	}

	class := &runtime.Class{
		ClassName:    s.Name.Lexeme,
		Superclass:   superclass,
		Private:      private,
		Public:       public,
		ClassMethods: classMethods,
	}

	if err := i.env.Assign(s.Name.Lexeme, class); err != nil {
		return i.reportRuntime(s.Pos(), err)
	}
	return normal
}

// canAccessPrivate reports whether the method currently executing may read
// or write a private field on inst. Private fields live in a flat map on
// the instance rather than being owned by a specific class body, so being
// somewhere inMethod is not enough: the executing method's declaring class
// must be inst's own class or one of its ancestors (i.e. the method is
// declared on or inherited by inst's class), mirroring the reference
// implementation's `verifyClass` walk from the instance's class upward
// looking for the running method's owner.
func (i *Interpreter) canAccessPrivate(inst *runtime.Instance) bool {
	return i.inMethod && inst.Class.IsSubclassOf(i.currentClass)
}

// bindMethod creates the one-off environment binding `this` (and, for a
// method declared in a subclass, relying on the closure already holding
// `super` at distance 1) that every method invocation runs inside (§3).
func (i *Interpreter) bindMethod(fn *runtime.Function, inst *runtime.Instance) *runtime.Function {
	env := runtime.NewEnvironment(fn.Closure)
	env.Define("this", inst, ast.AccessFix)
	bound := *fn
	bound.Closure = env
	return &bound
}

// instantiate constructs a fresh instance, runs `init` (private fields
// visible during construction, per §4.5), and returns the instance; init's
// own return value is discarded.
func (i *Interpreter) instantiate(class *runtime.Class, args []runtime.Value, pos token.Position) (runtime.Value, error) {
	inst := runtime.NewInstance(class)
	if init := class.FindMethod("init", true); init != nil {
		bound := i.bindMethod(init, inst)
		if _, err := i.callFunction(bound, args, pos); err != nil {
			return nil, err
		}
	} else if len(args) != 0 {
		return nil, checkArity(class.Name(), 0, 0, len(args), pos)
	}
	return inst, nil
}

// findClassMethod walks the superclass chain looking up a class/static
// method (§4.5): `ClassName.method()` never touches instance methods.
func findClassMethod(c *runtime.Class, name string) *runtime.Function {
	for k := c; k != nil; k = k.Superclass {
		if m, ok := k.ClassMethods[name]; ok {
			return m
		}
	}
	return nil
}

var reflectionMethods = map[string]bool{"_fieldList": true, "_methodList": true, "_fields": true, "_methods": true}

func (i *Interpreter) evalGet(e *ast.Get) (runtime.Value, error) {
	obj, err := i.evaluate(e.Object)
	if err != nil {
		return nil, err
	}
	obj = runtime.Unwrap(obj)

	switch o := obj.(type) {
	case *runtime.Instance:
		return i.getInstanceMember(o, e)
	case *runtime.Class:
		m := findClassMethod(o, e.Name.Lexeme)
		if m == nil {
			return nil, i.runtimeErr(e.Pos(), e.Name.Lexeme, "Undefined property or method '%s'", e.Name.Lexeme)
		}
		return m, nil
	case *runtime.Group:
		v, err := o.Env.Get(e.Name.Lexeme)
		if err != nil {
			return nil, i.runtimeErr(e.Pos(), e.Name.Lexeme, "%s", err)
		}
		return v, nil
	case *runtime.List:
		return i.listMethod(o, e.Name.Lexeme, e.Pos())
	case *runtime.Str:
		return nil, i.runtimeErr(e.Pos(), e.Name.Lexeme, "strings have no methods")
	default:
		return nil, i.runtimeErr(e.Pos(), e.Name.Lexeme, "only instances, classes, groups, and lists have members")
	}
}

// getInstanceMember implements §4.5's Instance.get: private (if accessible)
// then public, then the four built-in reflection helpers, then a bound
// method via findMethod; a getter method is invoked automatically.
func (i *Interpreter) getInstanceMember(inst *runtime.Instance, e *ast.Get) (runtime.Value, error) {
	name := e.Name.Lexeme
	if v, ok := inst.Private[name]; ok {
		if !i.canAccessPrivate(inst) {
			return nil, i.runtimeErr(e.Pos(), name, "Private field '%s' is inaccessible.", name)
		}
		return v, nil
	}
	if v, ok := inst.Public[name]; ok {
		return v, nil
	}
	if reflectionMethods[name] {
		return i.reflect(inst, name), nil
	}
	method := inst.Class.FindMethod(name, i.inMethod)
	if method == nil {
		return nil, i.runtimeErr(e.Pos(), name, "Undefined property or method '%s'", name)
	}
	bound := i.bindMethod(method, inst)
	if bound.IsGetter() {
		return i.callFunction(bound, nil, e.Pos())
	}
	return bound, nil
}

// reflect implements the four built-in reflection methods (§4.5): _fieldList
// and _methodList return sorted name lists, _fields and _methods return
// [name, value] pairs and [name, min arity, max arity] triples. Only public members are visible this
// way; private state stays private even through reflection.
func (i *Interpreter) reflect(inst *runtime.Instance, name string) runtime.Value {
	switch name {
	case "_fieldList":
		names := make([]runtime.Value, 0, len(inst.Public))
		for k := range inst.Public {
			names = append(names, runtime.NewStr(k))
		}
		sortStrValues(names)
		return runtime.NewList(names)
	case "_fields":
		return fieldsAsList(inst.Public)
	case "_methodList":
		names := make([]runtime.Value, 0)
		for k := range publicMethodSet(inst.Class) {
			names = append(names, runtime.NewStr(k))
		}
		sortStrValues(names)
		return runtime.NewList(names)
	case "_methods":
		methods := publicMethodSet(inst.Class)
		names := make([]string, 0, len(methods))
		for k := range methods {
			names = append(names, k)
		}
		sort.Strings(names)
		out := make([]runtime.Value, len(names))
		for idx, k := range names {
			min, max := methods[k].Arity()
			out[idx] = runtime.NewList([]runtime.Value{runtime.NewStr(k), float64(min), float64(max)})
		}
		return runtime.NewList(out)
	}
	return nil
}

func publicMethodSet(c *runtime.Class) map[string]*runtime.Function {
	out := map[string]*runtime.Function{}
	for k := c; k != nil; k = k.Superclass {
		for name, m := range k.Public {
			if _, seen := out[name]; !seen {
				out[name] = m
			}
		}
	}
	return out
}

func fieldsAsList(fields map[string]runtime.Value) runtime.Value {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]runtime.Value, len(keys))
	for idx, k := range keys {
		out[idx] = runtime.NewList([]runtime.Value{runtime.NewStr(k), fields[k]})
	}
	return runtime.NewList(out)
}

func sortStrValues(vs []runtime.Value) {
	sort.Slice(vs, func(a, b int) bool {
		return vs[a].(*runtime.Str).String() < vs[b].(*runtime.Str).String()
	})
}

func (i *Interpreter) evalSet(e *ast.Set) (runtime.Value, error) {
	obj, err := i.evaluate(e.Object)
	if err != nil {
		return nil, err
	}
	obj = runtime.Unwrap(obj)
	inst, ok := obj.(*runtime.Instance)
	if !ok {
		return nil, i.runtimeErr(e.Pos(), e.Name.Lexeme, "only instances have settable fields")
	}
	v, err := i.evaluate(e.Value)
	if err != nil {
		return nil, err
	}
	v = runtime.CopyOnAssign(v)

	name := e.Name.Lexeme
	if _, isPriv := inst.Private[name]; isPriv {
		if !i.canAccessPrivate(inst) {
			return nil, i.runtimeErr(e.Pos(), name, "Private field '%s' is inaccessible.", name)
		}
		inst.Private[name] = v
		return v, nil
	}
	if inst.Class.FindMethod(name, true) != nil {
		return nil, i.runtimeErr(e.Pos(), name, "cannot reassign method '%s'", name)
	}
	if e.Visibility == ast.Private {
		if !i.canAccessPrivate(inst) {
			return nil, i.runtimeErr(e.Pos(), name, "Private field '%s' is inaccessible.", name)
		}
		inst.Private[name] = v
		return v, nil
	}
	inst.Public[name] = v
	return v, nil
}
