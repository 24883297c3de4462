package runtime

import "testing"

func TestStrCopyIsDetached(t *testing.T) {
	s := NewStr("hello")
	c := s.Copy()
	c.Runes[0] = 'H'
	if s.Runes[0] == 'H' {
		t.Fatal("mutating the copy mutated the original")
	}
}

func TestListCopyIsDeep(t *testing.T) {
	inner := NewStr("a")
	l := NewList([]Value{inner})
	c := l.Copy()
	c.Elements[0].(*Str).Runes[0] = 'b'
	if inner.Runes[0] == 'b' {
		t.Fatal("list copy should deep-copy its elements")
	}
}

func TestDeepCopyPassesThroughImmutables(t *testing.T) {
	if DeepCopy(5.0) != 5.0 {
		t.Fatal("numbers should pass through DeepCopy unchanged")
	}
	if DeepCopy(nil) != nil {
		t.Fatal("nil should pass through DeepCopy unchanged")
	}
}

func TestUnwrapPeelsOneReferenceLayer(t *testing.T) {
	target := NewStr("x")
	ref := &Reference{Target: target}
	if Unwrap(ref) != Value(target) {
		t.Fatal("Unwrap should return the reference's target")
	}
	if Unwrap(target) != Value(target) {
		t.Fatal("Unwrap should pass non-references through unchanged")
	}
}

func TestTruthy(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{nil, false},
		{false, false},
		{true, true},
		{0.0, true},
		{"", true},
		{NewStr(""), true},
	}
	for _, c := range cases {
		if got := Truthy(c.v); got != c.want {
			t.Errorf("Truthy(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestFindMethodPrivateThenPublicThenSuperclass(t *testing.T) {
	base := &Class{
		ClassName: "Base",
		Private:   map[string]*Function{},
		Public:    map[string]*Function{"greet": {OwnerName: "Base"}},
	}
	sub := &Class{
		ClassName:  "Sub",
		Superclass: base,
		Private:    map[string]*Function{"secret": {OwnerName: "Sub"}},
		Public:     map[string]*Function{},
	}

	if m := sub.FindMethod("secret", true); m == nil {
		t.Fatal("expected to find own private method when allowPrivate is true")
	}
	if m := sub.FindMethod("secret", false); m != nil {
		t.Fatal("private method should not be visible when allowPrivate is false")
	}
	if m := sub.FindMethod("greet", true); m == nil {
		t.Fatal("expected to find the inherited public method")
	}
	if m := sub.FindMethod("missing", true); m != nil {
		t.Fatal("expected no method for an unknown name")
	}
}

func TestIsSubclassOf(t *testing.T) {
	base := &Class{ClassName: "Animal"}
	sub := &Class{ClassName: "Dog", Superclass: base}

	if !sub.IsSubclassOf("Animal") {
		t.Error("Dog should be a subclass of Animal")
	}
	if !sub.IsSubclassOf("Dog") {
		t.Error("a class should be considered a subclass of itself")
	}
	if sub.IsSubclassOf("Cat") {
		t.Error("Dog should not be a subclass of Cat")
	}
}

func TestStringifyNumbersStripTrailingZero(t *testing.T) {
	if got := Stringify(3.0, nil); got != "3" {
		t.Errorf("Stringify(3.0) = %q, want %q", got, "3")
	}
	if got := Stringify(3.14, nil); got != "3.14" {
		t.Errorf("Stringify(3.14) = %q, want %q", got, "3.14")
	}
}

func TestStringifyList(t *testing.T) {
	l := NewList([]Value{1.0, NewStr("a"), true, nil})
	got := Stringify(l, nil)
	want := `[1, "a", true, nil]`
	if got != want {
		t.Errorf("Stringify(list) = %q, want %q", got, want)
	}
}

func TestStringifyInstanceUsesCallStrWhenPresent(t *testing.T) {
	inst := NewInstance(&Class{ClassName: "Point"})
	got := Stringify(inst, func(i *Instance) (string, bool) { return "(0, 0)", true })
	if got != "(0, 0)" {
		t.Errorf("Stringify(instance) = %q, want %q", got, "(0, 0)")
	}
}

func TestStringifyInstanceFallsBackWithoutCallStr(t *testing.T) {
	inst := NewInstance(&Class{ClassName: "Point"})
	got := Stringify(inst, nil)
	if got != "<Point instance>" {
		t.Errorf("Stringify(instance) = %q, want %q", got, "<Point instance>")
	}
}
