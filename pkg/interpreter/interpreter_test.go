package interpreter

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/zurustar/bangla/pkg/compiler"
	"github.com/zurustar/bangla/pkg/config"
	"github.com/zurustar/bangla/pkg/object"
)

func run(t *testing.T, input string, opts ...Option) Result {
	t.Helper()
	in := New(opts...)
	res := in.Run(input)
	if len(res.ParseErrors) > 0 {
		t.Fatalf("parse errors for %q: %v", input, res.ParseErrors)
	}
	return res
}

// testEval runs input and fails the test on any error.
func testEval(t *testing.T, input string) object.Object {
	t.Helper()
	res := run(t, input)
	if res.Err != nil {
		t.Fatalf("runtime error for %q: %v", input, res.Err)
	}
	return res.Value
}

func testRuntimeError(t *testing.T, input string, kind object.ErrorKind) *object.Error {
	t.Helper()
	res := run(t, input)
	if res.Err == nil {
		t.Fatalf("expected %s error for %q, got value %s", kind, input, res.Value.Inspect())
	}
	if res.Err.Kind != kind {
		t.Fatalf("error kind for %q = %s, want %s (%s)", input, res.Err.Kind, kind, res.Err.Message)
	}
	return res.Err
}

func expectInspect(t *testing.T, input, want string) {
	t.Helper()
	got := testEval(t, input)
	if got.Inspect() != want {
		t.Errorf("%q = %s, want %s", input, got.Inspect(), want)
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"5", "5"},
		{"-5", "-5"},
		{"2 + 3 * 4", "14"},
		{"(2 + 3) * 4", "20"},
		{"10 / 4", "2.5"},
		{"7 % 3", "1"},
		{"2 ** 10", "1024"},
		{"-5 + 2", "-3"},
		{"0.1 + 0.2 > 0.3", "sotti"},
		{"3 * (3 * 3) + 10", "37"},
		{"(5 + 10 * 2 + 15 / 3) * 2 + -10", "50"},
	}

	for _, tt := range tests {
		expectInspect(t, tt.input, tt.expected)
	}
}

func TestDivisionByZero(t *testing.T) {
	for _, input := range []string{"10 / 0", "5 % 0", "dhoro z = 0; 1 / z"} {
		err := testRuntimeError(t, input, object.ErrDivisionByZero)
		if err.Message != "division by zero" {
			t.Errorf("message = %q", err.Message)
		}
	}
}

func TestStringOperations(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"Hello" + " " + "World"`, "Hello World"},
		{`"a" + 1`, "a1"},
		{`1 + "a"`, "1a"},
		{`"x" + sotti`, "xsotti"},
		{`"n: " + khali`, "n: khali"},
		{`"abc" == "abc"`, "sotti"},
		{`"abc" < "abd"`, "sotti"},
		{`"b" >= "a"`, "sotti"},
		{`"abc"[1]`, "b"},
		{`"আমি"[0]`, "আ"},
	}

	for _, tt := range tests {
		expectInspect(t, tt.input, tt.expected)
	}
}

func TestTypeMismatch(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{`1 == "1"`, "type mismatch: NUMBER == STRING"},
		{`1 - "a"`, "type mismatch: NUMBER - STRING"},
		{`sotti + sotti`, "unknown operator: BOOLEAN + BOOLEAN"},
		{`-"a"`, "unknown operator: -STRING"},
		{`"a" * "b"`, "unknown operator: STRING * STRING"},
	}

	for _, tt := range tests {
		err := testRuntimeError(t, tt.input, object.ErrType)
		if err.Message != tt.message {
			t.Errorf("%q: message = %q, want %q", tt.input, err.Message, tt.message)
		}
	}
}

func TestEquality(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 == 1", "sotti"},
		{"1 != 1", "mittha"},
		{"sotti == sotti", "sotti"},
		{"sotti != mittha", "sotti"},
		{"khali == khali", "sotti"},
		{"1 == khali", "mittha"},
		{"khali != 0", "sotti"},
		{"dhoro a = [1]; a == a", "sotti"},
		{"[1] == [1]", "mittha"},
	}

	for _, tt := range tests {
		expectInspect(t, tt.input, tt.expected)
	}
}

func TestTruthiness(t *testing.T) {
	tests := []struct {
		condition string
		truthy    bool
	}{
		{"0", false},
		{`""`, false},
		{"khali", false},
		{"mittha", false},
		{"1", true},
		{`"0"`, true},
		{"[]", true},
		{"{}", true},
		{"-1", true},
	}

	for _, tt := range tests {
		input := "jodi (" + tt.condition + ") { 1 } nahole { 2 }"
		want := "2"
		if tt.truthy {
			want = "1"
		}
		expectInspect(t, input, want)
	}
}

func TestLogicalOperatorsEvaluateBothSides(t *testing.T) {
	input := `
dhoro n = 0;
kaj tick() { n = n + 1; ferao sotti; }
dhoro a = mittha ebong tick();
dhoro b = sotti ba tick();
[a, b, n]
`
	expectInspect(t, input, "[mittha, sotti, 2]")
	expectInspect(t, "na sotti", "mittha")
	expectInspect(t, "!0", "sotti")
}

func TestChainedAssignment(t *testing.T) {
	expectInspect(t, "dhoro a; dhoro b; a = b = 5; [a, b]", "[5, 5]")

	input := `
dhoro a = 0;
dhoro b = 0;
kaj set() { a = b = 5; }
set();
[a, b]
`
	expectInspect(t, input, "[5, 5]")
}

func TestCompoundAssignment(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"dhoro x = 5; x += 2; x", "7"},
		{"dhoro x = 5; x -= 2; x", "3"},
		{"dhoro x = 5; x *= 2; x", "10"},
		{"dhoro x = 5; x /= 2; x", "2.5"},
		{`dhoro s = "a"; s += "b"; s`, "ab"},
		{"dhoro arr = [1, 2]; arr[1] += 10; arr", "[1, 12]"},
		{"dhoro m = {n: 1}; m.n += 2; m.n", "3"},
	}

	for _, tt := range tests {
		expectInspect(t, tt.input, tt.expected)
	}
}

func TestCompoundAssignmentEvaluatesTargetOnce(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`
dhoro calls = 0;
kaj idx() { calls += 1; ferao calls - 1; }
dhoro a = [1, 10];
a[idx()] += 1;
[a, calls]`, "[[2, 10], 1]"},
		{`
dhoro calls = 0;
dhoro m = {n: 1};
kaj target() { calls += 1; ferao m; }
target().n *= 5;
[m.n, calls]`, "[5, 1]"},
	}

	for _, tt := range tests {
		expectInspect(t, tt.input, tt.expected)
	}
}

func TestClosuresSurviveReturn(t *testing.T) {
	input := `
kaj adder(x) {
	ferao kaj(y) { ferao x + y; };
}
dhoro add2 = adder(2);
dhoro add10 = adder(10);
[add2(3), add10(3)]
`
	expectInspect(t, input, "[5, 13]")

	counter := `
kaj counter() {
	dhoro count = 0;
	ferao kaj() { count += 1; ferao count; };
}
dhoro next = counter();
next();
next();
next()
`
	expectInspect(t, counter, "3")
}

func TestLexicalScoping(t *testing.T) {
	expectInspect(t, "dhoro x = 1; kaj f() { x = 2; } f(); x", "2")
	expectInspect(t, "dhoro x = 1; kaj f() { dhoro x = 2; ferao x; } [f(), x]", "[2, 1]")

	// the callee sees its defining scope, not the caller's locals
	input := `
dhoro x = "global";
kaj show() { ferao x; }
kaj caller() { dhoro x = "local"; ferao show(); }
caller()
`
	expectInspect(t, input, "global")
}

func TestAssignToUndeclaredDeclaresLocally(t *testing.T) {
	expectInspect(t, "kaj f() { z = 3; ferao z; } f()", "3")

	err := testRuntimeError(t, "kaj f() { z = 3; } f(); z", object.ErrUnknownIdentifier)
	if err.Message != "identifier not found: z" {
		t.Errorf("message = %q", err.Message)
	}
}

func TestFunctionArguments(t *testing.T) {
	expectInspect(t, "kaj f(a, b) { ferao b; } f(1)", "khali")
	expectInspect(t, "kaj f(a, b) { ferao b; } f(1, 2, 3)", "2")
	expectInspect(t, "kaj f() { 5 } f()", "5")
	expectInspect(t, "kaj f() { ferao; } f()", "khali")
	expectInspect(t, "dhoro f = kaj(x) { x * 2 }; f(4)", "8")
	expectInspect(t, "kaj(x) { x * 3 }(3)", "9")
}

func TestRecursion(t *testing.T) {
	input := `
kaj fib(n) {
	jodi (n < 2) { ferao n; }
	ferao fib(n - 1) + fib(n - 2);
}
fib(15)
`
	expectInspect(t, input, "610")
}

func TestNestedLoopBreak(t *testing.T) {
	input := `
dhoro count = 0;
ghuriye (dhoro i = 0; i < 3; i += 1) {
	ghuriye (dhoro j = 0; j < 3; j += 1) {
		jodi (j == 1) { thamo; }
		count += 1;
	}
}
count
`
	expectInspect(t, input, "3")

	while := `
dhoro outer = 0;
dhoro inner = 0;
jotokkhon (outer < 2) {
	outer += 1;
	jotokkhon (sotti) {
		inner += 1;
		thamo;
	}
}
[outer, inner]
`
	expectInspect(t, while, "[2, 2]")
}

func TestForContinueRunsUpdate(t *testing.T) {
	input := `
dhoro seen = [];
ghuriye (dhoro i = 0; i < 5; i += 1) {
	jodi (i % 2 == 0) { chharo; }
	dhokao(seen, i);
}
seen
`
	expectInspect(t, input, "[1, 3]")
}

func TestWhileContinue(t *testing.T) {
	input := `
dhoro i = 0;
dhoro sum = 0;
jotokkhon (i < 5) {
	i += 1;
	jodi (i == 3) { chharo; }
	sum += i;
}
sum
`
	expectInspect(t, input, "12")
}

func TestForWithoutClauses(t *testing.T) {
	input := `
dhoro n = 0;
ghuriye (;;) {
	n += 1;
	jodi (n == 4) { thamo; }
}
n
`
	expectInspect(t, input, "4")
}

func TestReturnFromLoopInsideFunction(t *testing.T) {
	input := `
kaj find(arr, want) {
	ghuriye (dhoro i = 0; i < lambai(arr); i += 1) {
		jodi (arr[i] == want) { ferao i; }
	}
	ferao -1;
}
[find([4, 5, 6], 6), find([1], 9)]
`
	expectInspect(t, input, "[2, -1]")
}

func TestControlSignalOutsideLoop(t *testing.T) {
	err := testRuntimeError(t, "thamo;", object.ErrType)
	if err.Message != "thamo outside of a loop" {
		t.Errorf("message = %q", err.Message)
	}

	err = testRuntimeError(t, "kaj f() { chharo; }\nf();", object.ErrType)
	if !strings.Contains(err.Message, "chharo outside of a loop") {
		t.Errorf("message = %q", err.Message)
	}
}

func TestWhileScenarioPrintsInOrder(t *testing.T) {
	res := run(t, "dhoro i = 0; jotokkhon (i < 3) { dekho(i); i = i + 1; }")
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}

	want := []string{"0", "1", "2"}
	if len(res.Output) != len(want) {
		t.Fatalf("output = %q, want %q", res.Output, want)
	}
	for i := range want {
		if res.Output[i] != want[i] {
			t.Errorf("output[%d] = %q, want %q", i, res.Output[i], want[i])
		}
	}
}

func TestUndeclaredIdentifierScenario(t *testing.T) {
	res := run(t, "dekho(x);")
	if res.Err == nil {
		t.Fatal("expected an error")
	}
	if res.Err.Kind != object.ErrUnknownIdentifier {
		t.Errorf("kind = %s", res.Err.Kind)
	}
	if !strings.Contains(res.Err.Message, "identifier not found") {
		t.Errorf("message = %q", res.Err.Message)
	}
	if len(res.Output) != 0 {
		t.Errorf("output = %q, want none", res.Output)
	}
	if res.Value != res.Err {
		t.Errorf("Value should be the error")
	}
}

func TestTryCatchFinally(t *testing.T) {
	input := `
dhoro log = [];
chesta {
	dhokao(log, "try");
	felo "boom";
	dhokao(log, "after");
} dhoro_bhul (e) {
	dhokao(log, e);
} shesh {
	dhokao(log, "finally");
}
log
`
	expectInspect(t, input, `["try", "boom", "finally"]`)

	noError := `
dhoro runs = 0;
chesta { 1; } dhoro_bhul (e) { runs += 100; } shesh { runs += 1; }
runs
`
	expectInspect(t, noError, "1")
}

func TestCatchBindsMessageText(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`chesta { felo "boom"; } dhoro_bhul (e) { dekho(e); }`, "boom"},
		{`chesta { felo 42; } dhoro_bhul (e) { dekho(e); }`, "42"},
		{`chesta { felo [1, "a"]; } dhoro_bhul (e) { dekho(e); }`, `[1, "a"]`},
		{`chesta { 1 / 0; } dhoro_bhul (e) { dekho(e); }`, "division by zero"},
		{`chesta { nai(); } dhoro_bhul (e) { dekho(e); }`, "identifier not found: nai"},
		{`chesta { felo "x"; } dhoro_bhul (e) { dekho(dhoron(e)); }`, "STRING"},
	}

	for _, tt := range tests {
		res := run(t, tt.input)
		if res.Err != nil {
			t.Errorf("%q: unexpected error %v", tt.input, res.Err)
			continue
		}
		if len(res.Output) != 1 || res.Output[0] != tt.expected {
			t.Errorf("%q: output = %q, want %q", tt.input, res.Output, tt.expected)
		}
	}
}

func TestCaughtTryYieldsNull(t *testing.T) {
	expectInspect(t, "chesta { felo 1; } dhoro_bhul (e) { 42 }", "khali")
	expectInspect(t, "chesta { 7 } dhoro_bhul (e) { 42 }", "7")
}

func TestTryWithoutCatchRethrowsAfterFinally(t *testing.T) {
	res := run(t, `chesta { felo "up"; } shesh { dekho("cleanup"); }`)
	if res.Err == nil || res.Err.Kind != object.ErrThrown || res.Err.Message != "up" {
		t.Fatalf("err = %v", res.Err)
	}
	if len(res.Output) != 1 || res.Output[0] != "cleanup" {
		t.Errorf("output = %q", res.Output)
	}
}

func TestReturnInsideTry(t *testing.T) {
	input := `
dhoro cleaned = mittha;
kaj f() {
	chesta { ferao 1; } shesh { cleaned = sotti; }
	ferao 2;
}
[f(), cleaned]
`
	expectInspect(t, input, "[1, sotti]")
}

func TestUncaughtThrow(t *testing.T) {
	res := run(t, "dhoro a = 1;\nfelo \"bad\";\ndekho(a);")
	if res.Err == nil {
		t.Fatal("expected an error")
	}
	if res.Err.Kind != object.ErrThrown || res.Err.Message != "bad" || res.Err.Line != 2 {
		t.Errorf("err = %+v", res.Err)
	}
	if len(res.Output) != 0 {
		t.Errorf("output = %q", res.Output)
	}
}

func TestMaxDepthIsCapped(t *testing.T) {
	in := New(WithMaxDepth(10000000))
	if in.maxDepth != config.MaxDepthLimit {
		t.Errorf("maxDepth = %d, want %d", in.maxDepth, config.MaxDepthLimit)
	}
}

func TestTraceListsActiveCalls(t *testing.T) {
	res := run(t, "kaj f() { f(); }\nf();", WithMaxDepth(5))
	if res.Err == nil || res.Err.Kind != object.ErrStackOverflow {
		t.Fatalf("err = %v, want stack overflow", res.Err)
	}
	if len(res.Err.Trace) != 5 {
		t.Errorf("trace = %v, want 5 frames", res.Err.Trace)
	}

	res = run(t, `
sreni Box {
	khulo(x) { ferao lambai(x); }
}
kaj open() { dhoro b = notun Box(); ferao b.khulo(1); }
open();`)
	if res.Err == nil {
		t.Fatal("expected an error")
	}
	want := "in Box.khulo, in open"
	if got := res.Err.TraceString(); got != want {
		t.Errorf("trace = %q, want %q", got, want)
	}
}

func TestErrorLineAndTrace(t *testing.T) {
	res := run(t, "kaj inner() {\n  felo \"x\";\n}\nkaj outer() { inner(); }\nouter();")
	if res.Err == nil {
		t.Fatal("expected an error")
	}
	if res.Err.Line != 2 {
		t.Errorf("line = %d, want 2", res.Err.Line)
	}
	want := []string{"inner", "outer"}
	if len(res.Err.Trace) != len(want) || res.Err.Trace[0] != want[0] || res.Err.Trace[1] != want[1] {
		t.Errorf("trace = %v, want %v", res.Err.Trace, want)
	}
	if res.Err.TraceString() != "in inner, in outer" {
		t.Errorf("trace string = %q", res.Err.TraceString())
	}

	res = run(t, "dhoro a = 1;\n\ndekho(b);")
	if res.Err == nil || res.Err.Line != 3 {
		t.Errorf("err = %v, want line 3", res.Err)
	}
}

func TestClasses(t *testing.T) {
	class := `
sreni Point {
	shuru(x, y) { ei.x = x; ei.y = y; }
	jog() { ferao ei.x + ei.y; }
	kaj scale(k) { ei.x *= k; ei.y *= k; ferao ei; }
}
`
	tests := []struct {
		input    string
		expected string
	}{
		{"dhoro p = notun Point(1, 2); p.jog()", "3"},
		{"dhoro p = notun Point(1, 2); p.x = 10; p.jog()", "12"},
		{"dhoro p = notun Point(1, 2); p", "Point {x: 1, y: 2}"},
		{"notun Point(1, 2).scale(3).jog()", "9"},
		{"notun Point(4, 5).y", "5"},
		{"dhoro p = notun Point(1, 2); p.missing", "khali"},
		{`dhoro p = notun Point(1, 2); p["x"]`, "1"},
		{"dhoro p = notun Point(1, 2); p.jog == p.jog", "mittha"},
		{"dhoron(notun Point(0, 0))", "INSTANCE"},
		{"Point", "sreni Point"},
	}

	for _, tt := range tests {
		expectInspect(t, class+tt.input, tt.expected)
	}
}

func TestBoundMethodKeepsInstance(t *testing.T) {
	input := `
sreni Counter {
	shuru() { ei.n = 0; }
	inc() { ei.n += 1; ferao ei.n; }
}
dhoro c = notun Counter();
dhoro f = c.inc;
f();
f();
c.n
`
	expectInspect(t, input, "2")
}

func TestConstructorReturnIgnored(t *testing.T) {
	expectInspect(t, "sreni A { shuru() { ei.v = 1; ferao 5; } } notun A().v", "1")
	expectInspect(t, "sreni Empty { } notun Empty", "Empty {}")
	expectInspect(t, "dhoro K = sreni { get() { ferao 3; } }; notun K().get()", "3")
}

func TestDuplicateMethodOverwrites(t *testing.T) {
	expectInspect(t, "sreni A { f() { ferao 1; } f() { ferao 2; } } notun A().f()", "2")
}

func TestClassErrors(t *testing.T) {
	testRuntimeError(t, "sreni A { } A()", object.ErrNotCallable)
	testRuntimeError(t, "dhoro x = 5; notun x()", object.ErrNotCallable)
	testRuntimeError(t, "5()", object.ErrNotCallable)
	testRuntimeError(t, "ei", object.ErrUnknownIdentifier)
	testRuntimeError(t, "sreni A { } notun A().nai()", object.ErrNotCallable)
}

func TestArraysAndMaps(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"[1, 2 * 2, 3 + 3]", "[1, 4, 6]"},
		{"[1, 2, 3][2]", "3"},
		{"dhoro arr = [1, 2, 3]; arr[1] = 5; arr", "[1, 5, 3]"},
		{"dhoro a = [1]; dhoro b = a; dhokao(b, 2); a", "[1, 2]"},
		{`dhoro m = {a: 1, "b": 2}; m.a + m["b"]`, "3"},
		{`dhoro k = "key"; dhoro m = {(k): 1}; m.key`, "1"},
		{"dhoro m = {a: 1}; m.c", "khali"},
		{`dhoro m = {a: 1}; m["c"]`, "khali"},
		{`dhoro m = {}; m.x = 1; m["y"] = 2; m`, "{x: 1, y: 2}"},
		{`({b: 1, a: [2, "s"], c: {d: khali}})`, `{b: 1, a: [2, "s"], c: {d: khali}}`},
	}

	for _, tt := range tests {
		expectInspect(t, tt.input, tt.expected)
	}
}

func TestIndexErrors(t *testing.T) {
	tests := []struct {
		input string
		kind  object.ErrorKind
	}{
		{"[1, 2, 3][3]", object.ErrOutOfBounds},
		{"[1][-1]", object.ErrOutOfBounds},
		{"dhoro arr = [1]; arr[5] = 1", object.ErrOutOfBounds},
		{"[1, 2][0.5]", object.ErrType},
		{`[1]["a"]`, object.ErrType},
		{"dhoro m = {a: 1}; m[1]", object.ErrType},
		{"5[0]", object.ErrType},
		{"dhoro n = 5; n.x", object.ErrType},
		{`dhoro s = "ab"; s[0] = "c"`, object.ErrType},
		{"dhoro m = {(1): 2};", object.ErrType},
	}

	for _, tt := range tests {
		testRuntimeError(t, tt.input, tt.kind)
	}
}

func TestDekhoFormatting(t *testing.T) {
	res := run(t, `dekho("a", 1, 2.5, [1, "b"], {k: "v"}, sotti, mittha, khali); dekho();`)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	want := []string{`a 1 2.5 [1, "b"] {k: "v"} sotti mittha khali`, ""}
	if len(res.Output) != 2 || res.Output[0] != want[0] || res.Output[1] != want[1] {
		t.Errorf("output = %q, want %q", res.Output, want)
	}
}

func TestPrintSelfReferencingValues(t *testing.T) {
	res := run(t, `
sreni Node { shuru() { ei.next = ei } }
dhoro n = notun Node();
dekho(n);
dhoro a = [1];
dhokao(a, a);
dekho(a);
dekho("a=" + a);
dekho(joro(a, ";"));
dhoro m = {};
m.self = m;
dekho(m);
`)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	want := []string{
		"Node {next: Node {...}}",
		"[1, [...]]",
		"a=[1, [...]]",
		"1;[1, [...]]",
		"{self: {...}}",
	}
	if len(res.Output) != len(want) {
		t.Fatalf("output = %q, want %q", res.Output, want)
	}
	for i := range want {
		if res.Output[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, res.Output[i], want[i])
		}
	}
}

func TestImportAndExport(t *testing.T) {
	expectInspect(t, `ano "math.bang" hisabe m; 1`, "1")
	expectInspect(t, "pathao dhoro q = 4; q", "4")
	expectInspect(t, "pathao kaj helper() { ferao 7; } helper()", "7")
}

func TestStackOverflowIsCatchable(t *testing.T) {
	in := New(WithMaxDepth(50))

	res := in.Run("kaj f() { ferao f(); } f();")
	if res.Err == nil || res.Err.Kind != object.ErrStackOverflow {
		t.Fatalf("err = %v, want STACK_OVERFLOW", res.Err)
	}

	res = in.Run(`chesta { f(); } dhoro_bhul (e) { dekho("caught"); } f2 = 1; f2`)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if len(res.Output) != 1 || res.Output[0] != "caught" {
		t.Errorf("output = %q", res.Output)
	}
	if in.frames.Len() != 0 {
		t.Errorf("frames left after unwinding: %d", in.frames.Len())
	}
}

func TestLoopLimitIsNotCatchable(t *testing.T) {
	in := New(WithMaxIterations(10))

	res := in.Run("jotokkhon (sotti) { }")
	if res.Err == nil || res.Err.Kind != object.ErrLoopLimit {
		t.Fatalf("err = %v, want LOOP_LIMIT", res.Err)
	}

	res = in.Run(`chesta { ghuriye (;;) { } } dhoro_bhul (e) { dekho("caught"); } shesh { dekho("finally"); }`)
	if res.Err == nil || res.Err.Kind != object.ErrLoopLimit {
		t.Fatalf("err = %v, want LOOP_LIMIT", res.Err)
	}
	if len(res.Output) != 0 {
		t.Errorf("handlers ran: %q", res.Output)
	}

	// the limit is per loop, not per run
	res = in.Run("dhoro n = 0; ghuriye (dhoro i = 0; i < 3; i += 1) { ghuriye (dhoro j = 0; j < 8; j += 1) { n += 1; } } n")
	if res.Err != nil || res.Value.Inspect() != "24" {
		t.Errorf("value = %v, err = %v", res.Value, res.Err)
	}
}

func TestContextCancellationInterrupts(t *testing.T) {
	in := New(WithMaxIterations(0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := in.RunContext(ctx, "jotokkhon (sotti) { }")
	if res.Err == nil || res.Err.Kind != object.ErrInterrupted {
		t.Fatalf("err = %v, want INTERRUPTED", res.Err)
	}
	if res.Err.Catchable() {
		t.Error("interrupt must not be catchable")
	}

	// a later run with a live context works again
	res = in.Run("1 + 1")
	if res.Err != nil || res.Value.Inspect() != "2" {
		t.Errorf("value = %v, err = %v", res.Value, res.Err)
	}
}

func TestContextTimeout(t *testing.T) {
	in := New(WithMaxIterations(0))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res := in.RunContext(ctx, "kaj spin() { jotokkhon (sotti) { } } spin();")
	if res.Err == nil || res.Err.Kind != object.ErrInterrupted {
		t.Fatalf("err = %v, want INTERRUPTED", res.Err)
	}
}

func TestInterrupt(t *testing.T) {
	in := New(WithMaxIterations(0))
	in.RegisterBuiltin("stop", func(h object.Host, args ...object.Object) (object.Object, error) {
		in.Interrupt()
		return object.NULL, nil
	})

	res := in.Run("dhoro n = 0; jotokkhon (sotti) { n += 1; jodi (n == 3) { stop(); } } ")
	if res.Err == nil || res.Err.Kind != object.ErrInterrupted {
		t.Fatalf("err = %v, want INTERRUPTED", res.Err)
	}
	n, _ := in.Env().Get("n")
	if n.Inspect() != "3" {
		t.Errorf("n = %s, want 3", n.Inspect())
	}
}

func TestSessionPersistsAndResets(t *testing.T) {
	in := New()

	if res := in.Run("dhoro x = 41; dekho(\"first\");"); res.Failed() {
		t.Fatalf("unexpected failure: %+v", res)
	}
	res := in.Run("x + 1")
	if res.Failed() || res.Value.Inspect() != "42" {
		t.Fatalf("value = %v, err = %v", res.Value, res.Err)
	}
	if len(res.Output) != 0 {
		t.Errorf("output carried over between runs: %q", res.Output)
	}

	in.Reset()
	if len(in.Output()) != 0 {
		t.Errorf("output after reset = %q", in.Output())
	}
	res = in.Run("x")
	if res.Err == nil || res.Err.Kind != object.ErrUnknownIdentifier {
		t.Errorf("err = %v, want UNKNOWN_IDENTIFIER after reset", res.Err)
	}
}

func TestParseErrorsSkipEvaluation(t *testing.T) {
	in := New()
	res := in.Run(`dekho("never"); dhoro = 5;`)
	if !res.Failed() {
		t.Fatal("expected failure")
	}
	if len(res.ParseErrors) == 0 {
		t.Fatal("expected parse errors")
	}
	if res.Err != nil || len(res.Output) != 0 {
		t.Errorf("evaluation happened: err = %v, output = %q", res.Err, res.Output)
	}
	if !strings.Contains(res.ParseErrors[0], "line 1") {
		t.Errorf("parse error lacks position: %q", res.ParseErrors[0])
	}
}

func TestWithOutputMirrorsLines(t *testing.T) {
	var buf bytes.Buffer
	in := New(WithOutput(&buf))

	res := in.Run(`dekho("hello"); dekho(1, 2);`)
	if res.Failed() {
		t.Fatalf("unexpected failure: %v", res.Err)
	}
	if buf.String() != "hello\n1 2\n" {
		t.Errorf("writer got %q", buf.String())
	}
	if len(in.Output()) != 2 {
		t.Errorf("Output() = %q", in.Output())
	}
}

func TestWithProgramCache(t *testing.T) {
	cache := compiler.NewProgramCache(4, nil)
	in := New(WithProgramCache(cache))

	for i := 0; i < 3; i++ {
		res := in.Run("dhoro n = 2; n * 21")
		if res.Failed() || res.Value.Inspect() != "42" {
			t.Fatalf("run %d: value = %v, err = %v", i, res.Value, res.Err)
		}
	}

	hits, misses := cache.Stats()
	if hits != 2 || misses != 1 {
		t.Errorf("hits = %d, misses = %d, want 2 and 1", hits, misses)
	}
}

func TestUserBindingShadowsBuiltin(t *testing.T) {
	expectInspect(t, "kaj lambai(x) { ferao 99; } lambai([1])", "99")
	expectInspect(t, "lambai", "builtin lambai()")
}

func TestRegisterBuiltin(t *testing.T) {
	in := New()
	in.RegisterBuiltin("dui", func(h object.Host, args ...object.Object) (object.Object, error) {
		return &object.Number{Value: 2}, nil
	})
	in.RegisterBuiltin("bhul", func(h object.Host, args ...object.Object) (object.Object, error) {
		return object.NewHostError("host said no"), nil
	})

	res := in.Run("dui() * 3")
	if res.Failed() || res.Value.Inspect() != "6" {
		t.Errorf("value = %v, err = %v", res.Value, res.Err)
	}

	res = in.Run("bhul()")
	if res.Err == nil || res.Err.Kind != object.ErrHost || res.Err.Message != "host said no" {
		t.Errorf("err = %v", res.Err)
	}

	found := false
	for _, name := range in.Builtins() {
		if name == "dui" {
			found = true
		}
	}
	if !found {
		t.Error("Builtins() does not list dui")
	}
}
