package runtime

import (
	"testing"

	"github.com/lonelycoder306/plox/internal/ast"
)

func TestDefineAndGet(t *testing.T) {
	env := NewEnvironment(nil)
	env.Define("x", 5.0, ast.AccessVar)
	v, err := env.Get("x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 5.0 {
		t.Errorf("value = %v, want 5", v)
	}
}

func TestGetWalksOutward(t *testing.T) {
	outer := NewEnvironment(nil)
	outer.Define("x", 1.0, ast.AccessVar)
	inner := NewEnvironment(outer)
	v, err := inner.Get("x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 1.0 {
		t.Errorf("value = %v, want 1", v)
	}
}

func TestGetUndefinedFails(t *testing.T) {
	env := NewEnvironment(nil)
	if _, err := env.Get("missing"); err == nil {
		t.Fatal("expected an error for an undefined variable")
	}
}

func TestGetUninitializedFails(t *testing.T) {
	env := NewEnvironment(nil)
	env.Define("x", Uninitialized, ast.AccessVar)
	_, err := env.Get("x")
	if err == nil {
		t.Fatal("expected an error reading an uninitialized variable")
	}
}

func TestAssignRejectsFixBinding(t *testing.T) {
	env := NewEnvironment(nil)
	env.Define("x", 1.0, ast.AccessFix)
	if err := env.Assign("x", 2.0); err == nil {
		t.Fatal("expected reassigning a fix binding to fail")
	}
}

func TestAssignWalksOutwardAndMutatesOwningFrame(t *testing.T) {
	outer := NewEnvironment(nil)
	outer.Define("x", 1.0, ast.AccessVar)
	inner := NewEnvironment(outer)
	if err := inner.Assign("x", 2.0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, _ := outer.Get("x")
	if v != 2.0 {
		t.Errorf("outer x = %v, want 2", v)
	}
}

func TestAssignUndefinedFails(t *testing.T) {
	env := NewEnvironment(nil)
	if err := env.Assign("missing", 1.0); err == nil {
		t.Fatal("expected an error assigning to an undefined variable")
	}
}

func TestGetAtAndAssignAt(t *testing.T) {
	global := NewEnvironment(nil)
	global.Define("x", 1.0, ast.AccessVar)
	mid := NewEnvironment(global)
	inner := NewEnvironment(mid)

	v, err := inner.GetAt(2, "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 1.0 {
		t.Errorf("value = %v, want 1", v)
	}

	if err := inner.AssignAt(2, "x", 9.0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, _ = global.Get("x")
	if v != 9.0 {
		t.Errorf("global x = %v, want 9", v)
	}
}

func TestNamesReturnsOnlyDirectBindings(t *testing.T) {
	outer := NewEnvironment(nil)
	outer.Define("a", 1.0, ast.AccessVar)
	inner := NewEnvironment(outer)
	inner.Define("b", 2.0, ast.AccessVar)

	names := inner.Names()
	if len(names) != 1 {
		t.Fatalf("names = %v, want exactly {b: 2}", names)
	}
	if names["b"] != 2.0 {
		t.Errorf("b = %v, want 2", names["b"])
	}
}
