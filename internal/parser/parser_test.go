package parser

import (
	"testing"

	"github.com/lonelycoder306/plox/internal/ast"
	"github.com/lonelycoder306/plox/internal/scanner"
)

func parseProgram(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	toks := scanner.New(src, "").ScanTokens()
	p := New(toks, nil)
	stmts := p.ParseProgram()
	if p.Errors().HasErrors() {
		t.Fatalf("unexpected parse errors for %q: %v", src, p.Errors().Items())
	}
	return stmts
}

func TestVarDeclaration(t *testing.T) {
	stmts := parseProgram(t, `var x = 5;`)
	if len(stmts) != 1 {
		t.Fatalf("statement count = %d, want 1", len(stmts))
	}
	v, ok := stmts[0].(*ast.VarStmt)
	if !ok {
		t.Fatalf("stmt is %T, want *ast.VarStmt", stmts[0])
	}
	if v.Name.Lexeme != "x" {
		t.Errorf("name = %q, want %q", v.Name.Lexeme, "x")
	}
	if v.Access != ast.AccessVar {
		t.Errorf("access = %v, want AccessVar", v.Access)
	}
}

func TestFixDeclarationIsImmutable(t *testing.T) {
	stmts := parseProgram(t, `fix x = 5;`)
	v := stmts[0].(*ast.VarStmt)
	if v.Access != ast.AccessFix {
		t.Errorf("access = %v, want AccessFix", v.Access)
	}
}

func TestFunctionDeclarationWithDefaultsAndVariadic(t *testing.T) {
	// Defaults and `...` cannot share one parameter list, so each gets its
	// own declaration.
	stmts := parseProgram(t, `fun f(a, b = 1) { return a; } fun g(a, ...) { return a; }`)
	fn, ok := stmts[0].(*ast.FunctionStmt)
	if !ok {
		t.Fatalf("stmt is %T, want *ast.FunctionStmt", stmts[0])
	}
	if fn.Name.Lexeme != "f" {
		t.Errorf("name = %q, want %q", fn.Name.Lexeme, "f")
	}
	if len(fn.Params) != 2 {
		t.Fatalf("param count = %d, want 2", len(fn.Params))
	}
	if fn.Params[1].Default == nil {
		t.Errorf("param[1] should carry a default")
	}
	vfn, ok := stmts[1].(*ast.FunctionStmt)
	if !ok {
		t.Fatalf("stmt is %T, want *ast.FunctionStmt", stmts[1])
	}
	if len(vfn.Params) != 2 {
		t.Fatalf("g param count = %d, want 2", len(vfn.Params))
	}
	if !vfn.Params[1].Variadic {
		t.Errorf("g param[1] should be variadic")
	}
	if fn.DefaultCount != 1 {
		t.Errorf("DefaultCount = %d, want 1", fn.DefaultCount)
	}
}

func TestForLoopDesugarsToWhile(t *testing.T) {
	stmts := parseProgram(t, `for (var i = 0; i < 3; i = i + 1) { print i; }`)
	block, ok := stmts[0].(*ast.BlockStmt)
	if !ok {
		t.Fatalf("stmt is %T, want *ast.BlockStmt", stmts[0])
	}
	if len(block.Statements) != 2 {
		t.Fatalf("block statement count = %d, want 2 (init + while)", len(block.Statements))
	}
	if _, ok := block.Statements[0].(*ast.VarStmt); !ok {
		t.Errorf("first statement is %T, want *ast.VarStmt", block.Statements[0])
	}
	w, ok := block.Statements[1].(*ast.WhileStmt)
	if !ok {
		t.Fatalf("second statement is %T, want *ast.WhileStmt", block.Statements[1])
	}
	if w.ForIncrement == nil {
		t.Errorf("desugared for-loop should carry a ForIncrement")
	}
}

func TestClassDeclarationWithSuperclass(t *testing.T) {
	stmts := parseProgram(t, `class B < A { greet() { return "B"; } }`)
	c, ok := stmts[0].(*ast.ClassStmt)
	if !ok {
		t.Fatalf("stmt is %T, want *ast.ClassStmt", stmts[0])
	}
	if c.Name.Lexeme != "B" {
		t.Errorf("name = %q, want %q", c.Name.Lexeme, "B")
	}
	if c.Superclass == nil || c.Superclass.Name.Lexeme != "A" {
		t.Fatalf("superclass = %v, want reference to A", c.Superclass)
	}
	if len(c.PublicMethods) != 1 {
		t.Fatalf("public method count = %d, want 1", len(c.PublicMethods))
	}
}

func TestAttemptHandle(t *testing.T) {
	stmts := parseProgram(t, `attempt { report MyErr(); } handle (Error) { print "caught"; }`)
	es, ok := stmts[0].(*ast.ErrorStmt)
	if !ok {
		t.Fatalf("stmt is %T, want *ast.ErrorStmt", stmts[0])
	}
	if len(es.Filter) != 1 || es.Filter[0].Lexeme != "Error" {
		t.Fatalf("filter = %v, want [Error]", es.Filter)
	}
}

func TestBreakOutsideLoopIsParseError(t *testing.T) {
	toks := scanner.New(`break;`, "").ScanTokens()
	p := New(toks, nil)
	p.ParseProgram()
	if !p.Errors().HasErrors() {
		t.Fatalf("expected a parse error for break outside a loop")
	}
}

func TestSliceAssignmentParsesAsModify(t *testing.T) {
	stmts := parseProgram(t, `s[1..3] = "ELL";`)
	es, ok := stmts[0].(*ast.ExpressionStmt)
	if !ok {
		t.Fatalf("stmt is %T, want *ast.ExpressionStmt", stmts[0])
	}
	if _, ok := es.Expression.(*ast.Modify); !ok {
		t.Fatalf("expression is %T, want *ast.Modify", es.Expression)
	}
}

func TestMatchWithFallthroughAndDefault(t *testing.T) {
	stmts := parseProgram(t, `
		match (x)
		is 1: print "one"; fallthrough
		is 2: print "two"; end
		is ?: print "other"; end
	`)
	m, ok := stmts[0].(*ast.MatchStmt)
	if !ok {
		t.Fatalf("stmt is %T, want *ast.MatchStmt", stmts[0])
	}
	if len(m.Cases) != 3 {
		t.Fatalf("case count = %d, want 3", len(m.Cases))
	}
	if !m.Cases[0].Fall {
		t.Errorf("first case should fall through")
	}
	if !m.Cases[2].Default {
		t.Errorf("third case should be the default arm")
	}
}
