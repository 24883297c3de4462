package evaluator

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lonelycoder306/plox/internal/parser"
	"github.com/lonelycoder306/plox/internal/resolver"
	"github.com/lonelycoder306/plox/internal/scanner"
)

// runProgram drives one source unit through scan -> parse -> resolve ->
// evaluate and returns what `print` produced plus the interpreter, so
// callers can inspect runtime diagnostics.
func runProgram(t *testing.T, src string) (string, *Interpreter) {
	t.Helper()
	toks := scanner.New(src, "").ScanTokens()
	p := parser.New(toks, nil)
	stmts := p.ParseProgram()
	if p.Errors().HasErrors() {
		t.Fatalf("unexpected parse errors: %v", p.Errors().Items())
	}
	r := resolver.New()
	r.Resolve(stmts)
	if r.Errors().HasErrors() {
		t.Fatalf("unexpected resolve errors: %v", r.Errors().Items())
	}

	var out bytes.Buffer
	in := New(&out, r.Distances(), nil)
	for _, s := range stmts {
		if !in.InterpretStmt(s) {
			break
		}
	}
	return out.String(), in
}

func runtimeErrorContaining(in *Interpreter, substr string) bool {
	for _, d := range in.Errors().Items() {
		if strings.Contains(d.Format(false, ""), substr) {
			return true
		}
	}
	return false
}

// ---- value vs. reference semantics ----

func TestStringAssignmentDeepCopies(t *testing.T) {
	out, in := runProgram(t, `
		var a = "hi";
		var b = a;
		b[0] = "H";
		print a;
		print b;
	`)
	if in.Errors().HasErrors() {
		t.Fatalf("unexpected errors: %v", in.Errors().Items())
	}
	if out != "hi\nHi\n" {
		t.Errorf("output = %q, want %q", out, "hi\nHi\n")
	}
}

func TestListInitializerDeepCopies(t *testing.T) {
	out, in := runProgram(t, `
		list a = ["h", "i"];
		list b = a;
		b[0] = "H";
		print a;
	`)
	if in.Errors().HasErrors() {
		t.Fatalf("unexpected errors: %v", in.Errors().Items())
	}
	if out != `["h", "i"]`+"\n" {
		t.Errorf("output = %q, want %q", out, `["h", "i"]`+"\n")
	}
}

func TestReferenceSuppressesCopyOnAssignment(t *testing.T) {
	out, in := runProgram(t, `
		var a = "hi";
		var b = reference(a);
		b[0] = "H";
		print a;
	`)
	if in.Errors().HasErrors() {
		t.Fatalf("unexpected errors: %v", in.Errors().Items())
	}
	if out != "Hi\n" {
		t.Errorf("output = %q, want %q (mutation through the alias must reach the original)", out, "Hi\n")
	}
}

func TestReferenceSuppressesCopyOnArgumentPassing(t *testing.T) {
	out, in := runProgram(t, `
		fun blank(s) { s[0] = "_"; }
		var a = "hi";
		blank(a);
		print a;
		blank(reference(a));
		print a;
	`)
	if in.Errors().HasErrors() {
		t.Fatalf("unexpected errors: %v", in.Errors().Items())
	}
	if out != "hi\n_i\n" {
		t.Errorf("output = %q, want %q", out, "hi\n_i\n")
	}
}

// ---- control flow ----

func TestForContinueRunsIncrement(t *testing.T) {
	out, in := runProgram(t, `
		var total = 0;
		for (var i = 0; i < 3; i = i + 1) {
			if (i == 1) { continue; }
			total = total + i;
		}
		print total;
	`)
	if in.Errors().HasErrors() {
		t.Fatalf("unexpected errors (the loop may not have terminated): %v", in.Errors().Items())
	}
	if out != "2\n" {
		t.Errorf("output = %q, want %q", out, "2\n")
	}
}

func TestIteratorForWalksEveryElement(t *testing.T) {
	out, in := runProgram(t, `
		list xs = [10, 20, 30];
		var total = 0;
		for (var x : xs) { total = total + x; }
		print total;
	`)
	if in.Errors().HasErrors() {
		t.Fatalf("unexpected errors: %v", in.Errors().Items())
	}
	if out != "60\n" {
		t.Errorf("output = %q, want %q", out, "60\n")
	}
}

func TestBreakLeavesLoop(t *testing.T) {
	out, _ := runProgram(t, `
		var n = 0;
		while (true) {
			n = n + 1;
			if (n == 3) { break; }
		}
		print n;
	`)
	if out != "3\n" {
		t.Errorf("output = %q, want %q", out, "3\n")
	}
}

func TestMatchFallthroughRunsUntilEnd(t *testing.T) {
	out, in := runProgram(t, `
		match (2)
			is 1: print "one"; fallthrough
			is 2: print "two"; fallthrough
			is 3: print "three"; end
			is ?: print "default"; end
	`)
	if in.Errors().HasErrors() {
		t.Fatalf("unexpected errors: %v", in.Errors().Items())
	}
	if out != "two\nthree\n" {
		t.Errorf("output = %q, want %q", out, "two\nthree\n")
	}
}

func TestMatchDefaultRunsWhenNothingMatches(t *testing.T) {
	out, _ := runProgram(t, `
		match (9)
			is 1: print "one"; end
			is ?: print "default"; end
	`)
	if out != "default\n" {
		t.Errorf("output = %q, want %q", out, "default\n")
	}
}

func TestTernaryAndComma(t *testing.T) {
	out, _ := runProgram(t, `
		var x = 1;
		print x == 1 ? "yes" : "no";
		print (x = 5, x + 1);
	`)
	if out != "yes\n6\n" {
		t.Errorf("output = %q, want %q", out, "yes\n6\n")
	}
}

// ---- attempt/handle and report ----

func TestAttemptWithNonMatchingFilterPropagates(t *testing.T) {
	out, in := runProgram(t, `
		class AErr < Error { }
		class BErr < Error { }
		attempt {
			report AErr();
		} handle (BErr) {
			print "caught";
		}
	`)
	if strings.Contains(out, "caught") {
		t.Errorf("handler ran for a non-matching error class; output = %q", out)
	}
	if !in.Errors().HasErrors() {
		t.Errorf("expected the uncaught error to surface as a diagnostic")
	}
}

func TestUncaughtWarningIsReportedAndExecutionContinues(t *testing.T) {
	out, in := runProgram(t, `
		class Careful < Warning { }
		report Careful();
		print "after";
	`)
	if !strings.Contains(out, "after") {
		t.Errorf("execution should continue past an uncaught warning; output = %q", out)
	}
	if in.Errors().Len() == 0 {
		t.Errorf("expected the warning to be recorded as a diagnostic")
	}
	if in.Errors().HasErrors() {
		t.Errorf("a warning must not count as an error: %v", in.Errors().Items())
	}
}

func TestWarningInsideFunctionBodyContinuesAtBlockBoundary(t *testing.T) {
	out, in := runProgram(t, `
		class Careful < Warning { }
		fun work() {
			report Careful();
			return "done";
		}
		print work();
	`)
	if out != "done\n" {
		t.Errorf("output = %q, want %q (the warning must not unwind the function)", out, "done\n")
	}
	if in.Errors().Len() == 0 {
		t.Errorf("expected the warning to be recorded as a diagnostic")
	}
	if in.Errors().HasErrors() {
		t.Errorf("a warning must not count as an error: %v", in.Errors().Items())
	}
}

func TestReportOnNonErrorInstanceFails(t *testing.T) {
	_, in := runProgram(t, `
		class Plain { }
		report Plain();
	`)
	if !runtimeErrorContaining(in, "Error or Warning") {
		t.Errorf("expected a report-requires-Error/Warning diagnostic, got: %v", in.Errors().Items())
	}
}

// ---- functions: defaults, variadics, arity ----

func TestDefaultParameters(t *testing.T) {
	out, _ := runProgram(t, `
		fun add(a, b = 10) { return a + b; }
		print add(1);
		print add(1, 2);
	`)
	if out != "11\n3\n" {
		t.Errorf("output = %q, want %q", out, "11\n3\n")
	}
}

func TestVariadicPacksTrailingArgumentsIntoVargs(t *testing.T) {
	out, _ := runProgram(t, `
		fun collect(first, ...) { return vargs; }
		print collect(0, 1, 2, 3);
	`)
	if out != "[1, 2, 3]\n" {
		t.Errorf("output = %q, want %q", out, "[1, 2, 3]\n")
	}
}

func TestArityMessageNamesMinimum(t *testing.T) {
	_, in := runProgram(t, `
		fun f(a, b) { return a + b; }
		f(1);
	`)
	if !runtimeErrorContaining(in, "Expected minimum 2 arguments but got 1") {
		t.Errorf("expected the minimum-arity message, got: %v", in.Errors().Items())
	}
}

func TestLambdaCapturesEnclosingScope(t *testing.T) {
	out, _ := runProgram(t, `
		var bonus = 5;
		var f = fun(x) { return x + bonus; };
		print f(1);
	`)
	if out != "6\n" {
		t.Errorf("output = %q, want %q", out, "6\n")
	}
}

// ---- scoping ----

func TestClosureCapturesDeclarationScopeNotCallerScope(t *testing.T) {
	out, _ := runProgram(t, `
		var x = "outer";
		fun show() { return x; }
		fun caller() {
			var x = "inner";
			print x;
			return show();
		}
		print caller();
	`)
	if out != "inner\nouter\n" {
		t.Errorf("output = %q, want %q (show must see its declaration scope)", out, "inner\nouter\n")
	}
}

func TestFixBindingRejectsReassignment(t *testing.T) {
	_, in := runProgram(t, `
		fix x = 1;
		x = 2;
	`)
	if !runtimeErrorContaining(in, "cannot reassign fix binding 'x'") {
		t.Errorf("expected a fix-reassignment diagnostic, got: %v", in.Errors().Items())
	}
}

func TestReadingUninitializedVariableFails(t *testing.T) {
	_, in := runProgram(t, `
		var x;
		print x;
	`)
	if !runtimeErrorContaining(in, "Uninitialized variable 'x'") {
		t.Errorf("expected an uninitialized-read diagnostic, got: %v", in.Errors().Items())
	}
}

// ---- classes ----

func TestGetterIsInvokedOnAccess(t *testing.T) {
	out, _ := runProgram(t, `
		class Circle {
			init(r) { this.r = r; }
			area { return this.r * this.r * 3; }
		}
		print Circle(2).area;
	`)
	if out != "12\n" {
		t.Errorf("output = %q, want %q", out, "12\n")
	}
}

func TestUserStringificationMethod(t *testing.T) {
	out, _ := runProgram(t, `
		class Point {
			init(x) { this.x = x; }
			_str() { return "P(" + string(this.x) + ")"; }
		}
		print Point(4);
	`)
	if out != "P(4)\n" {
		t.Errorf("output = %q, want %q", out, "P(4)\n")
	}
}

func TestUserComparisonMethods(t *testing.T) {
	out, _ := runProgram(t, `
		class Box {
			init(n) { this.n = n; }
			_lt(other) { return this.n < other.n; }
		}
		print Box(1) < Box(2);
		print Box(2) < Box(1);
	`)
	if out != "true\nfalse\n" {
		t.Errorf("output = %q, want %q", out, "true\nfalse\n")
	}
}

func TestUserNotEqualMethodIsDispatched(t *testing.T) {
	out, _ := runProgram(t, `
		class Odd {
			init(n) { this.n = n; }
			_ne(other) { return this.n != other.n; }
		}
		print Odd(1) != Odd(2);
		print Odd(1) != Odd(1);
	`)
	if out != "true\nfalse\n" {
		t.Errorf("output = %q, want %q", out, "true\nfalse\n")
	}
}

func TestClassMethodDispatchesThroughTheClass(t *testing.T) {
	out, _ := runProgram(t, `
		class MathUtil {
			class double(n) { return n * 2; }
		}
		print MathUtil.double(21);
	`)
	if out != "42\n" {
		t.Errorf("output = %q, want %q", out, "42\n")
	}
}

func TestInitAlwaysYieldsTheInstance(t *testing.T) {
	out, _ := runProgram(t, `
		class Unit {
			init() { return; }
		}
		print type(Unit());
	`)
	if out != "Unit\n" {
		t.Errorf("output = %q, want %q", out, "Unit\n")
	}
}

// ---- groups ----

func TestGroupMembersAreReadableThroughTheNamespace(t *testing.T) {
	out, _ := runProgram(t, `
		group Config {
			var limit = 5;
			fun doubled() { return limit * 2; }
		}
		print Config.limit;
		print Config.doubled();
	`)
	if out != "5\n10\n" {
		t.Errorf("output = %q, want %q", out, "5\n10\n")
	}
}

// ---- operators ----

func TestExponentIsRightAssociative(t *testing.T) {
	out, _ := runProgram(t, `print 2 ** 3 ** 2;`)
	if out != "512\n" {
		t.Errorf("output = %q, want %q", out, "512\n")
	}
}

func TestStringConcatenationCoercesTheOtherOperand(t *testing.T) {
	out, _ := runProgram(t, `print "n = " + 4;`)
	if out != "n = 4\n" {
		t.Errorf("output = %q, want %q", out, "n = 4\n")
	}
}

func TestStringRepetition(t *testing.T) {
	out, _ := runProgram(t, `
		print "ab" * 3;
		print "ab" * false;
	`)
	if out != "ababab\n\n" {
		t.Errorf("output = %q, want %q", out, "ababab\n\n")
	}
}

func TestModuloIsFloatingPoint(t *testing.T) {
	out, in := runProgram(t, `
		print 5.5 % 2;
		print 5 % 0.5;
	`)
	if in.Errors().HasErrors() {
		t.Fatalf("unexpected errors: %v", in.Errors().Items())
	}
	if out != "1.5\n0\n" {
		t.Errorf("output = %q, want %q", out, "1.5\n0\n")
	}
}

func TestModuloByZeroFails(t *testing.T) {
	_, in := runProgram(t, `print 1 % 0;`)
	if !runtimeErrorContaining(in, "division by zero") {
		t.Errorf("expected a division-by-zero diagnostic, got: %v", in.Errors().Items())
	}
}

func TestExponentSupportsFractionalPowers(t *testing.T) {
	out, _ := runProgram(t, `
		print 9 ** 0.5;
		print 2 ** (-2);
	`)
	if out != "3\n0.25\n" {
		t.Errorf("output = %q, want %q", out, "3\n0.25\n")
	}
}

func TestDivisionByZeroFails(t *testing.T) {
	_, in := runProgram(t, `print 1 / 0;`)
	if !runtimeErrorContaining(in, "division by zero") {
		t.Errorf("expected a division-by-zero diagnostic, got: %v", in.Errors().Items())
	}
}

func TestCompoundAssignmentAndPostfix(t *testing.T) {
	out, _ := runProgram(t, `
		var x = 10;
		x += 5;
		print x;
		x++;
		print x;
	`)
	if out != "15\n16\n" {
		t.Errorf("output = %q, want %q", out, "15\n16\n")
	}
}

// ---- builtins ----

func TestNumberStringRoundTrip(t *testing.T) {
	out, in := runProgram(t, `
		print number(string(123.5));
		print number("-42");
	`)
	if in.Errors().HasErrors() {
		t.Fatalf("unexpected errors: %v", in.Errors().Items())
	}
	if out != "123.5\n-42\n" {
		t.Errorf("output = %q, want %q", out, "123.5\n-42\n")
	}
}

func TestNumberRejectsNonNumericText(t *testing.T) {
	_, in := runProgram(t, `number("12ab");`)
	if !runtimeErrorContaining(in, "Invalid input to number().") {
		t.Errorf("expected a number() validation diagnostic, got: %v", in.Errors().Items())
	}
}

func TestStrformatExpandsEscapes(t *testing.T) {
	out, _ := runProgram(t, `print strformat("a\nb\tc");`)
	if out != "a\nb\tc\n" {
		t.Errorf("output = %q, want %q", out, "a\nb\tc\n")
	}
}

func TestPerrorWritesToTheErrorStream(t *testing.T) {
	toks := scanner.New(`perror("oops");`, "").ScanTokens()
	p := parser.New(toks, nil)
	stmts := p.ParseProgram()
	r := resolver.New()
	r.Resolve(stmts)

	var out, errOut bytes.Buffer
	in := New(&out, r.Distances(), nil)
	in.SetErrOut(&errOut)
	for _, s := range stmts {
		in.InterpretStmt(s)
	}
	if out.String() != "" {
		t.Errorf("stdout = %q, want empty", out.String())
	}
	if errOut.String() != "oops\n" {
		t.Errorf("error stream = %q, want %q", errOut.String(), "oops\n")
	}
}

func TestArityBuiltinReportsTheRange(t *testing.T) {
	out, _ := runProgram(t, `
		fun f(a, b = 1) { return a + b; }
		print arity(f);
	`)
	if out != "[1, 2]\n" {
		t.Errorf("output = %q, want %q", out, "[1, 2]\n")
	}
}

func TestCopyDetachesLists(t *testing.T) {
	out, _ := runProgram(t, `
		list a = [1];
		var b = copy(a);
		b.add(2);
		print a;
		print b;
	`)
	if out != "[1]\n[1, 2]\n" {
		t.Errorf("output = %q, want %q", out, "[1]\n[1, 2]\n")
	}
}

func TestCopyDetachesInstances(t *testing.T) {
	out, _ := runProgram(t, `
		class Box { init(n) { this.n = n; } }
		var a = Box(1);
		var b = copy(a);
		b.n = 2;
		print a.n;
		print b.n;
	`)
	if out != "1\n2\n" {
		t.Errorf("output = %q, want %q", out, "1\n2\n")
	}
}

func TestTypeSeesTheReferenceWrapper(t *testing.T) {
	out, _ := runProgram(t, `
		var a = "hi";
		print type(reference(a));
		print type(a);
	`)
	if out != "Reference\n"+"String\n" {
		t.Errorf("output = %q, want %q", out, "Reference\nString\n")
	}
}

// ---- list methods ----

func TestListTransformFilterSum(t *testing.T) {
	out, _ := runProgram(t, `
		list xs = [1, 2, 3, 4];
		print xs.transform(fun(x) { return x * 10; });
		print xs.filter(fun(x) { return x % 2 == 0; });
		print xs.sum();
	`)
	if out != "[10, 20, 30, 40]\n[2, 4]\n10\n" {
		t.Errorf("output = %q, want %q", out, "[10, 20, 30, 40]\n[2, 4]\n10\n")
	}
}

func TestListMinDoesNotSum(t *testing.T) {
	out, _ := runProgram(t, `
		list xs = [4, 1, 3];
		print xs.min();
		print xs.max();
	`)
	if out != "1\n4\n" {
		t.Errorf("output = %q, want %q", out, "1\n4\n")
	}
}

func TestListMutatorsShareTheReceiver(t *testing.T) {
	out, _ := runProgram(t, `
		list xs = [1, 2];
		xs.add(3);
		print xs;
		print xs.pop();
		print xs;
	`)
	if out != "[1, 2, 3]\n3\n[1, 2]\n" {
		t.Errorf("output = %q, want %q", out, "[1, 2, 3]\n3\n[1, 2]\n")
	}
}

// ---- indexing & slicing ----

func TestNegativeIndexCountsFromTheEnd(t *testing.T) {
	out, _ := runProgram(t, `
		var s = "hello";
		print s[-1];
		list xs = [1, 2, 3];
		print xs[-2];
	`)
	if out != "o\n2\n" {
		t.Errorf("output = %q, want %q", out, "o\n2\n")
	}
}

func TestSliceEndpointsAreInclusive(t *testing.T) {
	out, _ := runProgram(t, `
		var s = "hello";
		print s[1..3];
	`)
	if out != "ell\n" {
		t.Errorf("output = %q, want %q", out, "ell\n")
	}
}

func TestSliceOutOfRangeFails(t *testing.T) {
	_, in := runProgram(t, `
		var s = "hello";
		print s[1..5];
	`)
	if !runtimeErrorContaining(in, "slice out of range") {
		t.Errorf("expected a slice-out-of-range diagnostic, got: %v", in.Errors().Items())
	}
}
