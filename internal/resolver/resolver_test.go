package resolver

import (
	"strings"
	"testing"

	"github.com/lonelycoder306/plox/internal/parser"
	"github.com/lonelycoder306/plox/internal/scanner"
)

func resolveSource(t *testing.T, src string) *Resolver {
	t.Helper()
	toks := scanner.New(src, "").ScanTokens()
	p := parser.New(toks, nil)
	stmts := p.ParseProgram()
	if p.Errors().HasErrors() {
		t.Fatalf("unexpected parse errors for %q: %v", src, p.Errors().Items())
	}
	r := New()
	r.Resolve(stmts)
	return r
}

func hasErrorContaining(r *Resolver, substr string) bool {
	for _, item := range r.Errors().Items() {
		if strings.Contains(item.Format(false, ""), substr) {
			return true
		}
	}
	return false
}

func TestResolveLocalAssignsIncreasingDistanceByNesting(t *testing.T) {
	r := resolveSource(t, `
		{
			var x = 1;
			{
				{
					print x;
				}
			}
		}
	`)
	if r.Errors().HasErrors() {
		t.Fatalf("unexpected errors: %v", r.Errors().Items())
	}
	found := false
	for _, d := range r.Distances() {
		if d == 2 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a reference at distance 2, distances = %v", r.Distances())
	}
}

func TestUnusedVariableWarns(t *testing.T) {
	r := resolveSource(t, `{ var unused = 1; }`)
	if !hasErrorContaining(r, "unused variable 'unused'") {
		t.Errorf("expected an unused-variable warning, got: %v", r.Errors().Items())
	}
}

func TestUsedVariableDoesNotWarn(t *testing.T) {
	r := resolveSource(t, `var x = 1; print x;`)
	if hasErrorContaining(r, "unused variable") {
		t.Errorf("did not expect an unused-variable warning, got: %v", r.Errors().Items())
	}
}

func TestSelfReferenceInInitializerIsStaticError(t *testing.T) {
	r := resolveSource(t, `var x = 1; { var x = x; }`)
	if !hasErrorContaining(r, "own initializer") {
		t.Errorf("expected a self-initializer error, got: %v", r.Errors().Items())
	}
}

func TestReturnOutsideFunctionIsStaticError(t *testing.T) {
	r := resolveSource(t, `return 1;`)
	if !hasErrorContaining(r, "'return' outside of a function") {
		t.Errorf("expected a return-outside-function error, got: %v", r.Errors().Items())
	}
}

func TestReturnValueFromInitIsStaticError(t *testing.T) {
	r := resolveSource(t, `class A { init() { return 1; } }`)
	if !hasErrorContaining(r, "cannot return a value from 'init'") {
		t.Errorf("expected an init-return error, got: %v", r.Errors().Items())
	}
}

func TestThisOutsideClassIsStaticError(t *testing.T) {
	r := resolveSource(t, `print this;`)
	if !hasErrorContaining(r, "'this' outside of a class") {
		t.Errorf("expected a this-outside-class error, got: %v", r.Errors().Items())
	}
}

func TestSuperWithNoSuperclassIsStaticError(t *testing.T) {
	r := resolveSource(t, `class A { greet() { return super.greet(); } }`)
	if !hasErrorContaining(r, "no superclass") {
		t.Errorf("expected a super-with-no-superclass error, got: %v", r.Errors().Items())
	}
}

func TestInheritanceCycleIsStaticError(t *testing.T) {
	r := resolveSource(t, `class A < A { }`)
	if !hasErrorContaining(r, "cannot inherit from itself") {
		t.Errorf("expected an inheritance-cycle error, got: %v", r.Errors().Items())
	}
}

func TestPrivateInitIsStaticError(t *testing.T) {
	toks := scanner.New(`class A { _init() { } }`, "").ScanTokens()
	p := parser.New(toks, nil)
	stmts := p.ParseProgram()
	if p.Errors().HasErrors() {
		t.Fatalf("unexpected parse errors: %v", p.Errors().Items())
	}
	r := New()
	r.Resolve(stmts)
	if !hasErrorContaining(r, "cannot be declared private") {
		t.Errorf("expected a private-init error, got: %v", r.Errors().Items())
	}
}

func TestSafeOutsideInitIsStaticError(t *testing.T) {
	r := resolveSource(t, `
		class A {
			greet() { safe this._x = 1; }
		}
	`)
	if !hasErrorContaining(r, "'safe' initialization is only legal inside 'init'") {
		t.Errorf("expected a safe-outside-init error, got: %v", r.Errors().Items())
	}
}

func TestSafeInsideInitIsAllowed(t *testing.T) {
	r := resolveSource(t, `
		class A {
			init() { safe this._x = 1; }
		}
	`)
	if hasErrorContaining(r, "'safe' initialization") {
		t.Errorf("did not expect a safe-legality error, got: %v", r.Errors().Items())
	}
}

func TestGroupDeclarationsAreExemptFromUnusedWarning(t *testing.T) {
	r := resolveSource(t, `group G { var unused = 1; }`)
	if hasErrorContaining(r, "unused variable") {
		t.Errorf("group members should be exempt from unused-variable warnings, got: %v", r.Errors().Items())
	}
}
