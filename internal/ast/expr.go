package ast

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/lonelycoder306/plox/internal/token"
)

// Literal is a number, string, boolean, or nil constant.
type Literal struct {
	Token token.Token
	Value interface{}
}

func (l *Literal) exprNode()          {}
func (l *Literal) Pos() token.Position { return l.Token.Pos }
func (l *Literal) String() string     { return fmt.Sprintf("%v", l.Value) }

// Variable is a bare identifier reference.
type Variable struct {
	Name token.Token
}

func (v *Variable) exprNode()          {}
func (v *Variable) Pos() token.Position { return v.Name.Pos }
func (v *Variable) String() string     { return v.Name.Lexeme }

// Grouping is a parenthesized expression, kept distinct so Assign-target
// rewriting can tell `(x) = v` apart from `x = v`.
type Grouping struct {
	LParen     token.Token
	Expression Expr
}

func (g *Grouping) exprNode()          {}
func (g *Grouping) Pos() token.Position { return g.LParen.Pos }
func (g *Grouping) String() string     { return "(" + g.Expression.String() + ")" }

// Unary is a prefix `!` or `-` application.
type Unary struct {
	Operator token.Token
	Right    Expr
}

func (u *Unary) exprNode()          {}
func (u *Unary) Pos() token.Position { return u.Operator.Pos }
func (u *Unary) String() string     { return "(" + u.Operator.Lexeme + u.Right.String() + ")" }

// Binary is any of the arithmetic/comparison/equality infix operators.
type Binary struct {
	Left     Expr
	Operator token.Token
	Right    Expr
}

func (b *Binary) exprNode()          {}
func (b *Binary) Pos() token.Position { return b.Operator.Pos }
func (b *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left.String(), b.Operator.Lexeme, b.Right.String())
}

// Logical is `and`/`or`, which short-circuit and so are evaluated
// separately from Binary.
type Logical struct {
	Left     Expr
	Operator token.Token
	Right    Expr
}

func (l *Logical) exprNode()          {}
func (l *Logical) Pos() token.Position { return l.Operator.Pos }
func (l *Logical) String() string {
	return fmt.Sprintf("(%s %s %s)", l.Left.String(), l.Operator.Lexeme, l.Right.String())
}

// Ternary is `cond ? then : else`.
type Ternary struct {
	Question  token.Token
	Condition Expr
	Then      Expr
	Else      Expr
}

func (t *Ternary) exprNode()          {}
func (t *Ternary) Pos() token.Position { return t.Question.Pos }
func (t *Ternary) String() string {
	return fmt.Sprintf("(%s ? %s : %s)", t.Condition.String(), t.Then.String(), t.Else.String())
}

// Comma evaluates each expression for effect and yields the last one.
type Comma struct {
	Expressions []Expr
}

func (c *Comma) exprNode()          {}
func (c *Comma) Pos() token.Position { return c.Expressions[0].Pos() }
func (c *Comma) String() string {
	parts := make([]string, len(c.Expressions))
	for i, e := range c.Expressions {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

// Assign is `name = value` (also the desugared form of `+=`, `++`, etc.).
type Assign struct {
	Name  token.Token
	Value Expr
}

func (a *Assign) exprNode()          {}
func (a *Assign) Pos() token.Position { return a.Name.Pos }
func (a *Assign) String() string     { return fmt.Sprintf("(%s = %s)", a.Name.Lexeme, a.Value.String()) }

// Get reads a field or invokes a getter: `object.name`.
type Get struct {
	Object Expr
	Name   token.Token
}

func (g *Get) exprNode()          {}
func (g *Get) Pos() token.Position { return g.Name.Pos }
func (g *Get) String() string     { return g.Object.String() + "." + g.Name.Lexeme }

// Set writes a field: `object.name = value`. Visibility is Public unless
// produced by a `safe` initializer statement.
type Set struct {
	Object     Expr
	Name       token.Token
	Value      Expr
	Visibility Visibility
}

func (s *Set) exprNode()          {}
func (s *Set) Pos() token.Position { return s.Name.Pos }
func (s *Set) String() string {
	return fmt.Sprintf("(%s.%s = %s)", s.Object.String(), s.Name.Lexeme, s.Value.String())
}

// Call is a function/method invocation. LeftParen/RightParen are kept for
// precise error loci (arity mismatches point at the parens).
type Call struct {
	Callee     Expr
	LeftParen  token.Token
	RightParen token.Token
	Arguments  []Expr
}

func (c *Call) exprNode()          {}
func (c *Call) Pos() token.Position { return c.LeftParen.Pos }
func (c *Call) String() string {
	args := make([]string, len(c.Arguments))
	for i, a := range c.Arguments {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Callee.String(), strings.Join(args, ", "))
}

// Lambda is an anonymous `fun(params) { body }` expression.
type Lambda struct {
	Keyword      token.Token
	Params       []Param
	Body         []Stmt
	DefaultCount int
}

func (l *Lambda) exprNode()          {}
func (l *Lambda) Pos() token.Position { return l.Keyword.Pos }
func (l *Lambda) String() string     { return "<lambda>" }

// List is a `[e1, e2, ...]` literal.
type List struct {
	Bracket  token.Token
	Elements []Expr
}

func (l *List) exprNode()          {}
func (l *List) Pos() token.Position { return l.Bracket.Pos }
func (l *List) String() string {
	var out bytes.Buffer
	out.WriteString("[")
	for i, e := range l.Elements {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(e.String())
	}
	out.WriteString("]")
	return out.String()
}

// Access is `object[start]` (index, when End == nil) or `object[start..end]`
// (slice).
type Access struct {
	Object  Expr
	Bracket token.Token
	Start   Expr
	End     Expr // nil for a plain index
}

func (a *Access) exprNode()          {}
func (a *Access) Pos() token.Position { return a.Bracket.Pos }
func (a *Access) String() string {
	if a.End != nil {
		return fmt.Sprintf("%s[%s..%s]", a.Object.String(), a.Start.String(), a.End.String())
	}
	return fmt.Sprintf("%s[%s]", a.Object.String(), a.Start.String())
}

// Modify is an index/slice write: `access = value`.
type Modify struct {
	Access *Access
	Value  Expr
}

func (m *Modify) exprNode()          {}
func (m *Modify) Pos() token.Position { return m.Access.Pos() }
func (m *Modify) String() string {
	return fmt.Sprintf("(%s = %s)", m.Access.String(), m.Value.String())
}

// This is the `this` keyword used inside methods.
type This struct {
	Keyword token.Token
}

func (t *This) exprNode()          {}
func (t *This) Pos() token.Position { return t.Keyword.Pos }
func (t *This) String() string     { return "this" }

// Super is `super.method` inside a subclass method body.
type Super struct {
	Keyword token.Token
	Method  token.Token
}

func (s *Super) exprNode()          {}
func (s *Super) Pos() token.Position { return s.Keyword.Pos }
func (s *Super) String() string     { return "super." + s.Method.Lexeme }
