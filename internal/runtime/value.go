// Package runtime holds the tagged-union value model, the environment
// chain, and the callable contract shared by user functions, builtins,
// list/string methods, and classes (constructors). Values are plain Go
// types and pointers rather than a boxed interface hierarchy, matching the
// teacher's preference for concrete structs over interface indirection
// wherever a closed set of cases is known ahead of time.
package runtime

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lonelycoder306/plox/internal/ast"
	"github.com/lonelycoder306/plox/internal/token"
)

// Value is any runtime value. The concrete dynamic types are: nil (Nil),
// bool (Boolean), float64 (Number), *Str (String), *List (List),
// time-backed *DateTime, *Function, *Builtin, *BoundMethod, *Class,
// *Instance, *Group, *Reference, and the Uninitialized sentinel.
type Value interface{}

// Uninitialized is the distinguished sentinel bound by a `var`/`list`
// declaration with no initializer; reading it fails (§3, §4.4).
type uninitialized struct{}

var Uninitialized Value = uninitialized{}

func IsUninitialized(v Value) bool {
	_, ok := v.(uninitialized)
	return ok
}

// Str is a reference-semantic mutable text buffer (§3, §4.5): distinct from
// Go's native string type so in-place slice assignment (`s[1..3] = "ELL"`)
// is observable through every alias.
type Str struct {
	Runes []rune
}

func NewStr(s string) *Str { return &Str{Runes: []rune(s)} }

func (s *Str) String() string { return string(s.Runes) }

// Copy produces a detached deep copy, used on ordinary assignment and
// argument passing (§5).
func (s *Str) Copy() *Str {
	out := make([]rune, len(s.Runes))
	copy(out, s.Runes)
	return &Str{Runes: out}
}

// List is a reference-semantic mutable element vector (§3, §4.5).
type List struct {
	Elements []Value
}

func NewList(elems []Value) *List { return &List{Elements: elems} }

func (l *List) Copy() *List {
	out := make([]Value, len(l.Elements))
	for i, e := range l.Elements {
		out[i] = DeepCopy(e)
	}
	return &List{Elements: out}
}

// DeepCopy implements the deep-copy-on-assignment/argument-passing rule for
// Strings and Lists (§5); every other value is either immutable or passed
// by reference intentionally (Function, Class, Instance, Group).
func DeepCopy(v Value) Value {
	switch x := v.(type) {
	case *Str:
		return x.Copy()
	case *List:
		return x.Copy()
	default:
		return v
	}
}

// Reference is a one-shot alias wrapper produced by the built-in
// `reference(x)`, unwrapped on its first consumption (§5, §9 GLOSSARY).
type Reference struct {
	Target Value
}

// DateTime is an opaque result of the built-in `clock()`.
type DateTime struct {
	UnixNano int64
}

// Callable is the unified calling contract every invokable value
// implements: user functions, builtins, bound instance/list/string
// methods, and classes (as constructors), per the DESIGN NOTES'
// `trait Callable` recommendation.
type Callable interface {
	Arity() (min, max int)
	Name() string
}

// Function is a user-defined function, method, or lambda.
type Function struct {
	Decl      *ast.FunctionStmt
	Closure   *Environment
	IsMethod  bool
	IsInit    bool
	OwnerName string // declaring class, for private-access checks; "" if not a method
}

func (f *Function) Name() string {
	if f.Decl.Name.Lexeme == "" {
		return "lambda"
	}
	return f.Decl.Name.Lexeme
}

func (f *Function) Arity() (int, int) {
	min, max := 0, 0
	for _, p := range f.Decl.Params {
		if p.Variadic {
			max = 256
			continue
		}
		if p.Default == nil {
			min++
		}
		max++
	}
	return min, max
}

func (f *Function) IsGetter() bool { return f.Decl.IsGetter }

// Builtin is a native callable registered globally or as a module member.
type Builtin struct {
	FnName string
	Min    int
	Max    int
	Fn     func(args []Value) (Value, error)
}

func (b *Builtin) Name() string        { return b.FnName }
func (b *Builtin) Arity() (int, int)   { return b.Min, b.Max }

// BoundMethod is a native method bound to a receiver (a List or Instance),
// e.g. `xs.sort`. Calling it threads the receiver as the implicit first
// argument into Fn.
type BoundMethod struct {
	MethodName string
	Receiver   Value
	Min        int
	Max        int
	Fn         func(receiver Value, args []Value) (Value, error)
}

func (m *BoundMethod) Name() string      { return m.MethodName }
func (m *BoundMethod) Arity() (int, int) { return m.Min, m.Max }

// Class carries both halves of §4.5's class model: the instance side
// (private/public method dicts, optional superclass link) and the
// metaclass side (ClassMethods, holding class/static methods looked up on
// the class value itself rather than on instances).
type Class struct {
	ClassName    string
	Superclass   *Class
	Private      map[string]*Function
	Public       map[string]*Function
	ClassMethods map[string]*Function
}

func (c *Class) Name() string { return c.ClassName }

func (c *Class) Arity() (int, int) {
	if init := c.FindMethod("init", true); init != nil {
		return init.Arity()
	}
	return 0, 0
}

// FindMethod implements §4.5's lookup chain: private (only when
// allowPrivate is true), then public, then the superclass. It does not
// check which class the caller belongs to; callers outside any method
// pass false.
func (c *Class) FindMethod(name string, allowPrivate bool) *Function {
	if allowPrivate {
		if m, ok := c.Private[name]; ok {
			return m
		}
	}
	if m, ok := c.Public[name]; ok {
		return m
	}
	if c.Superclass != nil {
		return c.Superclass.FindMethod(name, allowPrivate)
	}
	return nil
}

// IsSubclassOf reports whether c is class or a descendant of ancestor, by
// name (used by `attempt/handle`'s filter-list membership check, §4.5).
func (c *Class) IsSubclassOf(name string) bool {
	for k := c; k != nil; k = k.Superclass {
		if k.ClassName == name {
			return true
		}
	}
	return false
}

// Instance is a class instance holding separate private/public field maps.
type Instance struct {
	Class   *Class
	Private map[string]Value
	Public  map[string]Value
}

func NewInstance(class *Class) *Instance {
	return &Instance{Class: class, Private: map[string]Value{}, Public: map[string]Value{}}
}

// Group is a namespace value; `.member` lookup proxies into Env, and
// members are immutable from outside (§4.5).
type Group struct {
	GroupName string
	Env       *Environment
}

func (g *Group) Name() string { return g.GroupName }

// Truthy implements §4.5's truthiness rule: only nil and false are falsy.
func Truthy(v Value) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	default:
		return true
	}
}

// Stringify implements §4.5's stringification contract. callStr, when
// non-nil, invokes an instance's user-defined `_str` method (arity 0,
// must return a String); the evaluator supplies it to avoid an import
// cycle between runtime and evaluator.
func Stringify(v Value, callStr func(inst *Instance) (string, bool)) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case bool:
		if x {
			return "true"
		}
		return "false"
	case float64:
		return formatNumber(x)
	case *Str:
		return x.String()
	case *List:
		parts := make([]string, len(x.Elements))
		for i, e := range x.Elements {
			if s, ok := e.(*Str); ok {
				parts[i] = strconv.Quote(s.String())
			} else {
				parts[i] = Stringify(e, callStr)
			}
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *Function:
		return fmt.Sprintf("<fn %s>", x.Name())
	case *Builtin:
		return "<native fn>"
	case *BoundMethod:
		return fmt.Sprintf("<native fn %s>", x.MethodName)
	case *Class:
		return fmt.Sprintf("<class %s>", x.ClassName)
	case *Instance:
		if callStr != nil {
			if s, ok := callStr(x); ok {
				return s
			}
		}
		return fmt.Sprintf("<%s instance>", x.Class.ClassName)
	case *Group:
		return fmt.Sprintf("<group %s>", x.GroupName)
	case *Reference:
		return Stringify(x.Target, callStr)
	case uninitialized:
		return "uninitialized"
	default:
		return fmt.Sprintf("%v", x)
	}
}

// formatNumber renders the shortest decimal representation of n with any
// trailing ".0" stripped (§4.5 Stringification): 3.0 -> "3", 3.14 -> "3.14".
func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// CopyOnAssign implements the assignment-boundary rule (§5): an explicit
// Reference suppresses the deep copy for exactly this one consumption and
// yields the aliased original; any other String/List is deep-copied.
func CopyOnAssign(v Value) Value {
	if r, ok := v.(*Reference); ok {
		return r.Target
	}
	return DeepCopy(v)
}

// Unwrap peels off exactly one Reference layer; every other value passes
// through unchanged (§5, §9 GLOSSARY).
func Unwrap(v Value) Value {
	if r, ok := v.(*Reference); ok {
		return r.Target
	}
	return v
}

// RuntimeError carries a source locus alongside the message, matching the
// `<Kind> error at '<lexeme>' [...]` diagnostic shape (§6, §7). Recursion
// distinguishes host-stack exhaustion (§7's own `Recursion` diagnostic
// kind) from an ordinary Runtime error so the driver can tag it correctly.
type RuntimeError struct {
	Pos       token.Position
	Lexeme    string
	Message   string
	Recursion bool
}

func (e *RuntimeError) Error() string { return e.Message }

func NewRuntimeError(pos token.Position, lexeme, message string) *RuntimeError {
	return &RuntimeError{Pos: pos, Lexeme: lexeme, Message: message}
}

// NewRecursionError builds the RuntimeError for exceeded host recursion
// depth (§7 "Recursion: host recursion depth exceeded"), reported as its
// own diagnostic kind rather than an ordinary Runtime error.
func NewRecursionError(pos token.Position, lexeme, message string) *RuntimeError {
	return &RuntimeError{Pos: pos, Lexeme: lexeme, Message: message, Recursion: true}
}
