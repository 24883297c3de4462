// Package resolver implements the static pass between parsing and
// evaluation: it walks the AST once, maintains a stack of lexical scopes,
// and records how many environment links separate each variable reference
// from the scope that binds it. The evaluator consumes that side table for
// O(1) lookups instead of walking the environment chain at run time.
package resolver

import (
	"sort"

	"github.com/lonelycoder306/plox/internal/ast"
	"github.com/lonelycoder306/plox/internal/diag"
	"github.com/lonelycoder306/plox/internal/token"
)

type functionKind int

const (
	fnNone functionKind = iota
	fnFunction
	fnLambda
	fnMethod
	fnInitializer
)

type classKind int

const (
	classNone classKind = iota
	classClass
	classSubclass
)

// binding tracks declaration state for a name within one scope: whether its
// initializer has finished running (so self-reference in an initializer can
// be rejected), and whether it has ever been read (for unused-variable
// warnings).
type binding struct {
	ready bool
	used  bool
	line  int
	name  string
}

// Resolver performs the single static pass described by the specification's
// resolver component. Distances populates a side table the evaluator
// indexes by expression identity; the resolver itself never mutates the AST.
type Resolver struct {
	scopes []map[string]*binding
	errors diag.Bag

	distances map[ast.Expr]int

	currentFunction functionKind
	currentClass    classKind

	unused []*binding
	exempt bool // inside a group: unused-variable warnings are suppressed
}

// New creates a Resolver ready to walk a top-level program. The global scope
// is not tracked here: names with no recorded distance are resolved by the
// evaluator through the global frame, then the builtins frame (§4.5).
func New() *Resolver {
	return &Resolver{distances: make(map[ast.Expr]int)}
}

func (r *Resolver) Errors() *diag.Bag { return &r.errors }

// Distances returns the expression-to-distance side table the evaluator
// uses for local variable lookup.
func (r *Resolver) Distances() map[ast.Expr]int { return r.distances }

// Resolve walks a whole program, then emits unused-variable warnings sorted
// by declaration line (§4.3).
func (r *Resolver) Resolve(stmts []ast.Stmt) {
	r.resolveStmts(stmts)
	r.reportUnused()
}

func (r *Resolver) reportUnused() {
	sort.Slice(r.unused, func(i, j int) bool { return r.unused[i].line < r.unused[j].line })
	for _, b := range r.unused {
		if b.used {
			continue
		}
		r.errors.Add(diag.New(diag.Warning, token.Position{Line: b.line}, "unused variable '"+b.name+"'"))
	}
}

// ---- scope stack ----

func (r *Resolver) beginScope() { r.scopes = append(r.scopes, map[string]*binding{}) }

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *Resolver) declare(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	scope := r.scopes[len(r.scopes)-1]
	if _, ok := scope[name.Lexeme]; ok {
		r.errorAt(name, "variable '"+name.Lexeme+"' already declared in this scope")
	}
	b := &binding{line: name.Pos.Line, name: name.Lexeme}
	scope[name.Lexeme] = b
	if !r.exempt {
		r.unused = append(r.unused, b)
	}
}

func (r *Resolver) define(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	if b, ok := r.scopes[len(r.scopes)-1][name.Lexeme]; ok {
		b.ready = true
	}
}

func (r *Resolver) resolveLocal(expr ast.Expr, name token.Token, markUsed bool) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if b, ok := r.scopes[i][name.Lexeme]; ok {
			r.distances[expr] = len(r.scopes) - 1 - i
			if markUsed {
				b.used = true
			}
			return
		}
	}
	// Not found locally: resolved at run time through globals, then builtins.
}

func (r *Resolver) errorAt(tok token.Token, message string) {
	d := diag.New(diag.Static, tok.Pos, message)
	if tok.Type == token.EOF {
		d.WithEnd()
	} else {
		d.WithLexeme(tok.Lexeme)
	}
	r.errors.Add(d)
}

// ---- statements ----

func (r *Resolver) resolveStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		r.resolveStmt(s)
	}
}

func (r *Resolver) resolveStmt(stmt ast.Stmt) {
	if stmt == nil {
		return
	}
	switch s := stmt.(type) {
	case *ast.ExpressionStmt:
		if set, ok := s.Expression.(*ast.Set); ok && set.Visibility == ast.Private && r.currentFunction != fnInitializer {
			r.errorAt(set.Name, "'safe' initialization is only legal inside 'init'")
		}
		r.resolveExpr(s.Expression)
	case *ast.PrintStmt:
		r.resolveExpr(s.Expression)
	case *ast.VarStmt:
		r.declare(s.Name)
		if s.Initializer != nil {
			r.resolveExpr(s.Initializer)
		}
		r.define(s.Name)
	case *ast.ListStmt:
		r.declare(s.Name)
		r.resolveExpr(s.Initializer)
		r.define(s.Name)
	case *ast.BlockStmt:
		r.beginScope()
		r.resolveStmts(s.Statements)
		r.endScope()
	case *ast.IfStmt:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.ThenBranch)
		if s.ElseBranch != nil {
			r.resolveStmt(s.ElseBranch)
		}
	case *ast.WhileStmt:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Body)
		r.resolveExpr(s.ForIncrement)
	case *ast.BreakStmt, *ast.ContinueStmt:
		// Loop-membership legality is already enforced by the parser.
	case *ast.ReturnStmt:
		if r.currentFunction == fnNone {
			r.errorAt(s.Keyword, "'return' outside of a function")
		}
		if s.Value != nil {
			if r.currentFunction == fnInitializer {
				r.errorAt(s.Keyword, "cannot return a value from 'init'")
			}
			r.resolveExpr(s.Value)
		}
	case *ast.FunctionStmt:
		r.declare(s.Name)
		r.define(s.Name)
		r.resolveFunction(s, fnFunction)
	case *ast.ClassStmt:
		r.resolveClass(s)
	case *ast.MatchStmt:
		r.resolveExpr(s.Value)
		for _, c := range s.Cases {
			if c.Value != nil {
				r.resolveExpr(c.Value)
			}
			r.beginScope()
			r.resolveStmts(c.Body)
			r.endScope()
		}
	case *ast.GroupStmt:
		r.resolveGroup(s)
	case *ast.FetchStmt:
		// Runtime-resolved module load; nothing to bind statically.
	case *ast.ErrorStmt:
		r.resolveStmt(s.TryBody)
		r.resolveStmt(s.HandlerBody)
	case *ast.ReportStmt:
		r.resolveExpr(s.Value)
	}
}

func (r *Resolver) resolveFunction(fn *ast.FunctionStmt, kind functionKind) {
	enclosing := r.currentFunction
	r.currentFunction = kind
	r.beginScope()
	for _, p := range fn.Params {
		r.declare(p.Name)
		if p.Default != nil {
			r.resolveExpr(p.Default)
		}
		r.define(p.Name)
	}
	r.resolveStmts(fn.Body)
	r.endScope()
	r.currentFunction = enclosing
}

// resolveClass binds `this` at distance 0 (and `super` at distance 1, when a
// superclass is present) around every method body, per §3's invariant.
func (r *Resolver) resolveClass(stmt *ast.ClassStmt) {
	enclosingClass := r.currentClass
	r.currentClass = classClass

	r.declare(stmt.Name)
	r.define(stmt.Name)

	if stmt.Superclass != nil {
		if stmt.Superclass.Name.Lexeme == stmt.Name.Lexeme {
			r.errorAt(stmt.Superclass.Name, "a class cannot inherit from itself")
		}
		r.currentClass = classSubclass
		r.resolveExpr(stmt.Superclass)
		r.beginScope()
		r.scopes[len(r.scopes)-1]["super"] = &binding{ready: true, used: true}
	}

	// Class/static methods have no `this`/`super` binding: resolve them
	// before opening the instance-method scope.
	for _, m := range stmt.ClassMethods {
		r.resolveFunction(m, fnFunction)
	}

	r.beginScope()
	r.scopes[len(r.scopes)-1]["this"] = &binding{ready: true, used: true}

	for _, m := range stmt.PublicMethods {
		r.resolveMethod(m)
	}
	for _, m := range stmt.PrivateMethods {
		if m.Name.Lexeme == "_init" {
			r.errorAt(m.Name, "'init' cannot be declared private")
		}
		r.resolveMethod(m)
	}

	r.endScope()
	if stmt.Superclass != nil {
		r.endScope()
	}
	r.currentClass = enclosingClass
}

func (r *Resolver) resolveMethod(m *ast.FunctionStmt) {
	kind := fnMethod
	if m.Name.Lexeme == "init" {
		kind = fnInitializer
	}
	r.resolveFunction(m, kind)
}

// resolveGroup resolves a namespace body in its own scope; declarations
// inside it are exempt from unused-variable warnings (§4.3).
func (r *Resolver) resolveGroup(g *ast.GroupStmt) {
	r.declare(g.Name)
	r.define(g.Name)

	prevExempt := r.exempt
	r.exempt = true
	r.beginScope()
	for _, v := range g.Vars {
		r.resolveStmt(v)
	}
	for _, fn := range g.Functions {
		r.resolveFunction(fn, fnFunction)
	}
	for _, c := range g.Classes {
		r.resolveClass(c)
	}
	r.endScope()
	r.exempt = prevExempt
}

// ---- expressions ----

func (r *Resolver) resolveExpr(expr ast.Expr) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *ast.Literal:
		// Nothing to bind.
	case *ast.Variable:
		if len(r.scopes) > 0 {
			if b, ok := r.scopes[len(r.scopes)-1][e.Name.Lexeme]; ok && !b.ready {
				r.errorAt(e.Name, "cannot read local variable '"+e.Name.Lexeme+"' in its own initializer")
			}
		}
		r.resolveLocal(e, e.Name, true)
	case *ast.Grouping:
		r.resolveExpr(e.Expression)
	case *ast.Unary:
		r.resolveExpr(e.Right)
	case *ast.Binary:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *ast.Logical:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *ast.Ternary:
		r.resolveExpr(e.Condition)
		r.resolveExpr(e.Then)
		r.resolveExpr(e.Else)
	case *ast.Comma:
		for _, sub := range e.Expressions {
			r.resolveExpr(sub)
		}
	case *ast.Assign:
		r.resolveExpr(e.Value)
		r.resolveLocal(e, e.Name, false)
	case *ast.Get:
		r.resolveExpr(e.Object)
	case *ast.Set:
		r.resolveExpr(e.Value)
		r.resolveExpr(e.Object)
	case *ast.Call:
		r.resolveExpr(e.Callee)
		for _, a := range e.Arguments {
			r.resolveExpr(a)
		}
	case *ast.Lambda:
		enclosing := r.currentFunction
		r.currentFunction = fnLambda
		r.beginScope()
		for _, p := range e.Params {
			r.declare(p.Name)
			if p.Default != nil {
				r.resolveExpr(p.Default)
			}
			r.define(p.Name)
		}
		r.resolveStmts(e.Body)
		r.endScope()
		r.currentFunction = enclosing
	case *ast.List:
		for _, el := range e.Elements {
			r.resolveExpr(el)
		}
	case *ast.Access:
		r.resolveExpr(e.Object)
		r.resolveExpr(e.Start)
		if e.End != nil {
			r.resolveExpr(e.End)
		}
	case *ast.Modify:
		r.resolveExpr(e.Access)
		r.resolveExpr(e.Value)
	case *ast.This:
		if r.currentClass == classNone {
			r.errorAt(e.Keyword, "'this' outside of a class")
		}
		r.resolveLocal(e, e.Keyword, true)
	case *ast.Super:
		if r.currentClass == classNone {
			r.errorAt(e.Keyword, "'super' outside of a class")
		} else if r.currentClass != classSubclass {
			r.errorAt(e.Keyword, "'super' used in a class with no superclass")
		}
		r.resolveLocal(e, e.Keyword, true)
	}
}
