package parser

import (
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/zurustar/bangla/pkg/compiler/ast"
	"github.com/zurustar/bangla/pkg/compiler/lexer"
)

func parse(t *testing.T, input string) *ast.Program {
	t.Helper()
	l := lexer.New(input)
	p := New(l)
	program := p.ParseProgram()
	checkParserErrors(t, p)
	return program
}

func checkParserErrors(t *testing.T, p *Parser) {
	t.Helper()
	errors := p.Errors()
	if len(errors) == 0 {
		return
	}

	t.Errorf("parser has %d errors", len(errors))
	for _, msg := range errors {
		t.Errorf("parser error: %q", msg)
	}
	t.FailNow()
}

func parseErrors(input string) []*ParseError {
	p := New(lexer.New(input))
	p.ParseProgram()
	return p.ParseErrors()
}

func TestLetStatements(t *testing.T) {
	tests := []struct {
		input    string
		name     string
		expected string
	}{
		{"dhoro x = 5;", "x", "5"},
		{"dhoro y = sotti;", "y", "sotti"},
		{"dhoro foo = bar;", "foo", "bar"},
		{"dhoro s = 'hi';", "s", `"hi"`},
		{"dhoro n = khali;", "n", "khali"},
	}

	for _, tt := range tests {
		program := parse(t, tt.input)
		if len(program.Statements) != 1 {
			t.Fatalf("program.Statements does not contain 1 statement. got=%d", len(program.Statements))
		}

		stmt, ok := program.Statements[0].(*ast.LetStatement)
		if !ok {
			t.Fatalf("program.Statements[0] is not ast.LetStatement. got=%T", program.Statements[0])
		}
		if stmt.Name.Value != tt.name {
			t.Errorf("stmt.Name.Value not '%s'. got=%s", tt.name, stmt.Name.Value)
		}
		if stmt.Value.String() != tt.expected {
			t.Errorf("stmt.Value = %s, want %s", stmt.Value.String(), tt.expected)
		}
	}
}

func TestLetWithoutValue(t *testing.T) {
	program := parse(t, "dhoro x;")
	stmt, ok := program.Statements[0].(*ast.LetStatement)
	if !ok {
		t.Fatalf("program.Statements[0] is not ast.LetStatement. got=%T", program.Statements[0])
	}
	if stmt.Value != nil {
		t.Errorf("stmt.Value = %v, want nil", stmt.Value)
	}
}

func TestReturnStatements(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ferao 5;", "ferao 5;"},
		{"ferao x + 1;", "ferao (x + 1);"},
		{"ferao;", "ferao;"},
		{"ferao", "ferao;"},
	}

	for _, tt := range tests {
		program := parse(t, tt.input)
		stmt, ok := program.Statements[0].(*ast.ReturnStatement)
		if !ok {
			t.Fatalf("program.Statements[0] is not ast.ReturnStatement. got=%T", program.Statements[0])
		}
		if stmt.String() != tt.expected {
			t.Errorf("got %q, want %q", stmt.String(), tt.expected)
		}
	}
}

func TestOperatorPrecedenceParsing(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"-a * b", "((-a) * b)"},
		{"!a", "(!a)"},
		{"na sotti", "(na sotti)"},
		{"a + b + c", "((a + b) + c)"},
		{"a + b - c", "((a + b) - c)"},
		{"a * b / c", "((a * b) / c)"},
		{"a + b * c", "(a + (b * c))"},
		{"2 + 3 * 4", "(2 + (3 * 4))"},
		{"a * b % c", "((a * b) % c)"},
		{"a + b % c", "(a + (b % c))"},
		{"2 ** 3 ** 2", "((2 ** 3) ** 2)"},
		{"2 * 3 ** 2", "(2 * (3 ** 2))"},
		{"-2 ** 2", "((-2) ** 2)"},
		{"a < b == b > a", "((a < b) == (b > a))"},
		{"a <= b != b >= a", "((a <= b) != (b >= a))"},
		{"a ba b ebong c", "(a ba (b ebong c))"},
		{"a == b ebong c != d", "((a == b) ebong (c != d))"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"-(5 + 5)", "(-(5 + 5))"},
		{"x = y = 5", "(x = (y = 5))"},
		{"x += 2 * 3", "(x += (2 * 3))"},
		{"x = a ba b", "(x = (a ba b))"},
		{"a + add(b * c) + d", "((a + add((b * c))) + d)"},
		{"add(a, b, 1, 2 * 3, add(6, 7 * 8))", "add(a, b, 1, (2 * 3), add(6, (7 * 8)))"},
		{"a * [1, 2][1]", "(a * ([1, 2][1]))"},
		{"obj.list[0]", "(obj.list[0])"},
		{"obj.method(1)", "obj.method(1)"},
		{"ei.x = 3", "(ei.x = 3)"},
		{"arr[i] -= 1", "((arr[i]) -= 1)"},
		{"notun Point(1, 2).x", "notun Point(1, 2).x"},
		{"notun Point", "notun Point()"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			program := parse(t, tt.input)
			if len(program.Statements) != 1 {
				t.Fatalf("expected 1 statement, got %d", len(program.Statements))
			}
			actual := strings.TrimSuffix(program.Statements[0].String(), ";")
			if actual != tt.expected {
				t.Errorf("expected=%q, got=%q", tt.expected, actual)
			}
		})
	}
}

func TestNewExpressionArguments(t *testing.T) {
	program := parse(t, "notun Point(1, 2).x;")
	stmt := program.Statements[0].(*ast.ExpressionStatement)

	member, ok := stmt.Expression.(*ast.MemberExpression)
	if !ok {
		t.Fatalf("expression is not ast.MemberExpression. got=%T", stmt.Expression)
	}
	newExp, ok := member.Object.(*ast.NewExpression)
	if !ok {
		t.Fatalf("member object is not ast.NewExpression. got=%T", member.Object)
	}
	if newExp.Class.String() != "Point" {
		t.Errorf("class = %s, want Point", newExp.Class.String())
	}
	if len(newExp.Arguments) != 2 {
		t.Errorf("got %d arguments, want 2", len(newExp.Arguments))
	}
}

func TestIfExpression(t *testing.T) {
	input := `
	jodi (x > 5) {
		dekho(x);
	} nahole jodi (x < 0) {
		dekho("neg");
	} nahole {
		dekho(0);
	}
	`

	program := parse(t, input)
	if len(program.Statements) != 1 {
		t.Fatalf("program.Statements does not contain 1 statement. got=%d", len(program.Statements))
	}

	stmt := program.Statements[0].(*ast.ExpressionStatement)
	exp, ok := stmt.Expression.(*ast.IfExpression)
	if !ok {
		t.Fatalf("stmt.Expression is not ast.IfExpression. got=%T", stmt.Expression)
	}
	if exp.Condition.String() != "(x > 5)" {
		t.Errorf("condition = %s", exp.Condition.String())
	}
	if len(exp.Consequence.Statements) != 1 {
		t.Errorf("consequence is not 1 statement. got=%d", len(exp.Consequence.Statements))
	}
	if exp.Alternative == nil || len(exp.Alternative.Statements) != 1 {
		t.Fatalf("alternative should hold the chained if")
	}

	nested, ok := exp.Alternative.Statements[0].(*ast.ExpressionStatement).Expression.(*ast.IfExpression)
	if !ok {
		t.Fatalf("alternative is not a nested if")
	}
	if nested.Alternative == nil {
		t.Error("nested if lost its nahole block")
	}
}

func TestFunctionDeclarationAndLiteral(t *testing.T) {
	program := parse(t, `
	kaj add(a, b) { ferao a + b; }
	dhoro mul = kaj(a, b) { ferao a * b; };
	dhoro noop = kaj() {};
	`)

	if len(program.Statements) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(program.Statements))
	}

	decl, ok := program.Statements[0].(*ast.FunctionDeclaration)
	if !ok {
		t.Fatalf("statement 0 is not ast.FunctionDeclaration. got=%T", program.Statements[0])
	}
	if decl.Name.Value != "add" || decl.Function.Name != "add" {
		t.Errorf("declaration name = %s/%s", decl.Name.Value, decl.Function.Name)
	}
	if decl.Function.ParameterList() != "a, b" {
		t.Errorf("parameters = %s", decl.Function.ParameterList())
	}

	let := program.Statements[1].(*ast.LetStatement)
	fn, ok := let.Value.(*ast.FunctionLiteral)
	if !ok {
		t.Fatalf("let value is not ast.FunctionLiteral. got=%T", let.Value)
	}
	if fn.Name != "mul" {
		t.Errorf("anonymous function bound by dhoro should be named mul, got %q", fn.Name)
	}

	noop := program.Statements[2].(*ast.LetStatement).Value.(*ast.FunctionLiteral)
	if len(noop.Parameters) != 0 || len(noop.Body.Statements) != 0 {
		t.Errorf("empty function parsed as %s", noop.String())
	}
}

func TestClassDeclaration(t *testing.T) {
	program := parse(t, `
	sreni Point {
		shuru(x, y) {
			ei.x = x;
			ei.y = y;
		}
		dorotto() {
			ferao ei.x + ei.y;
		}
		kaj scale(k) {
			ferao notun Point(ei.x * k, ei.y * k);
		}
		dorotto() { ferao 0; }
	}
	`)

	decl, ok := program.Statements[0].(*ast.ClassDeclaration)
	if !ok {
		t.Fatalf("statement is not ast.ClassDeclaration. got=%T", program.Statements[0])
	}
	if decl.Name.Value != "Point" {
		t.Errorf("class name = %s", decl.Name.Value)
	}
	if decl.Class.Constructor == nil || decl.Class.Constructor.ParameterList() != "x, y" {
		t.Fatalf("constructor not parsed")
	}
	if len(decl.Class.MethodOrder) != 2 {
		t.Fatalf("methods = %v, want [dorotto scale]", decl.Class.MethodOrder)
	}
	// the later definition wins
	if got := decl.Class.Methods["dorotto"].Body.String(); got != "{ ferao 0; }" {
		t.Errorf("dorotto body = %s", got)
	}
}

func TestLoops(t *testing.T) {
	t.Run("while", func(t *testing.T) {
		program := parse(t, "jotokkhon (i < 10) { i += 1; }")
		stmt, ok := program.Statements[0].(*ast.WhileStatement)
		if !ok {
			t.Fatalf("statement is not ast.WhileStatement. got=%T", program.Statements[0])
		}
		if stmt.Condition.String() != "(i < 10)" {
			t.Errorf("condition = %s", stmt.Condition.String())
		}
	})

	t.Run("for", func(t *testing.T) {
		program := parse(t, "ghuriye (dhoro i = 0; i < 10; i = i + 1) { chharo; thamo; }")
		stmt, ok := program.Statements[0].(*ast.ForStatement)
		if !ok {
			t.Fatalf("statement is not ast.ForStatement. got=%T", program.Statements[0])
		}
		if _, ok := stmt.Init.(*ast.LetStatement); !ok {
			t.Errorf("init is not ast.LetStatement. got=%T", stmt.Init)
		}
		if stmt.Condition == nil || stmt.Update == nil {
			t.Fatal("condition and update should be set")
		}
		if _, ok := stmt.Body.Statements[0].(*ast.ContinueStatement); !ok {
			t.Errorf("body[0] is not ast.ContinueStatement")
		}
		if _, ok := stmt.Body.Statements[1].(*ast.BreakStatement); !ok {
			t.Errorf("body[1] is not ast.BreakStatement")
		}
	})

	t.Run("for with empty header", func(t *testing.T) {
		program := parse(t, "ghuriye (;;) { thamo; }")
		stmt := program.Statements[0].(*ast.ForStatement)
		if stmt.Init != nil || stmt.Condition != nil || stmt.Update != nil {
			t.Errorf("empty header parsed as %s", stmt.String())
		}
	})

	t.Run("for with expression init", func(t *testing.T) {
		program := parse(t, "ghuriye (i = 0; i < 3;) { }")
		stmt := program.Statements[0].(*ast.ForStatement)
		if _, ok := stmt.Init.(*ast.ExpressionStatement); !ok {
			t.Errorf("init is not ast.ExpressionStatement. got=%T", stmt.Init)
		}
		if stmt.Update != nil {
			t.Errorf("update = %v, want nil", stmt.Update)
		}
	})
}

func TestTryStatement(t *testing.T) {
	program := parse(t, `
	chesta {
		felo "oops";
	} dhoro_bhul (e) {
		dekho(e);
	} shesh {
		dekho("done");
	}
	chesta { x(); } shesh { y(); }
	`)

	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(program.Statements))
	}

	stmt, ok := program.Statements[0].(*ast.TryStatement)
	if !ok {
		t.Fatalf("statement is not ast.TryStatement. got=%T", program.Statements[0])
	}
	if stmt.CatchParam == nil || stmt.CatchParam.Value != "e" {
		t.Errorf("catch param not parsed")
	}
	if _, ok := stmt.Block.Statements[0].(*ast.ThrowStatement); !ok {
		t.Errorf("try body is not ast.ThrowStatement. got=%T", stmt.Block.Statements[0])
	}
	if stmt.FinallyBlock == nil {
		t.Error("finally block missing")
	}

	noCatch := program.Statements[1].(*ast.TryStatement)
	if noCatch.CatchBlock != nil || noCatch.FinallyBlock == nil {
		t.Errorf("try/finally parsed as %s", noCatch.String())
	}
}

func TestModuleStatements(t *testing.T) {
	program := parse(t, `
	ano "math.bang" hisabe m;
	ano "util.bang";
	pathao kaj helper() { ferao 1; }
	`)

	imp := program.Statements[0].(*ast.ImportStatement)
	if imp.Path != "math.bang" || imp.Alias == nil || imp.Alias.Value != "m" {
		t.Errorf("import parsed as %s", imp.String())
	}
	if program.Statements[1].(*ast.ImportStatement).Alias != nil {
		t.Error("import without hisabe should have no alias")
	}
	exp := program.Statements[2].(*ast.ExportStatement)
	if _, ok := exp.Statement.(*ast.FunctionDeclaration); !ok {
		t.Errorf("exported statement is not ast.FunctionDeclaration. got=%T", exp.Statement)
	}
}

func TestMapLiteral(t *testing.T) {
	program := parse(t, `dhoro m = {naam: "Rahim", "boyos": 30, [1][0]: khali};`)
	m, ok := program.Statements[0].(*ast.LetStatement).Value.(*ast.MapLiteral)
	if !ok {
		t.Fatalf("value is not ast.MapLiteral")
	}
	if len(m.Pairs) != 3 {
		t.Fatalf("got %d pairs, want 3", len(m.Pairs))
	}
	key, ok := m.Pairs[0].Key.(*ast.StringLiteral)
	if !ok || key.Value != "naam" {
		t.Errorf("identifier key should become a string literal, got %T", m.Pairs[0].Key)
	}
	if _, ok := m.Pairs[2].Key.(*ast.IndexExpression); !ok {
		t.Errorf("computed key is not ast.IndexExpression. got=%T", m.Pairs[2].Key)
	}

	empty := parse(t, "dhoro e = {};").Statements[0].(*ast.LetStatement).Value.(*ast.MapLiteral)
	if len(empty.Pairs) != 0 {
		t.Errorf("empty map has %d pairs", len(empty.Pairs))
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input   string
		message string
		atEOF   bool
	}{
		{"dhoro = 5;", "expected next token to be IDENT, got = instead", false},
		{"dhoro x = ;", "no prefix parse function for ; found", false},
		{"5 = 3;", "invalid assignment target 5", false},
		{"jodi (x > 1) { dekho(x);", "expected } to close block, got EOF instead", true},
		{"dekho(1, 2", "expected next token to be ), got EOF instead", true},
		{"chesta { }", "chesta requires a dhoro_bhul or shesh block", true},
		{`dekho("abc`, `illegal token "\"abc"`, false},
		{"sreni { 5 }", "unexpected NUMBER in class body", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			errs := parseErrors(tt.input)
			if len(errs) == 0 {
				t.Fatalf("expected an error")
			}
			if errs[0].Message != tt.message {
				t.Errorf("message = %q, want %q", errs[0].Message, tt.message)
			}
			if errs[0].AtEOF != tt.atEOF {
				t.Errorf("AtEOF = %v, want %v", errs[0].AtEOF, tt.atEOF)
			}
		})
	}
}

func TestParseErrorCarriesPosition(t *testing.T) {
	errs := parseErrors("dhoro a = 1;\ndhoro = 2;")
	if len(errs) == 0 {
		t.Fatal("expected an error")
	}
	if errs[0].Line != 2 || errs[0].Column != 7 {
		t.Errorf("position = %d:%d, want 2:7", errs[0].Line, errs[0].Column)
	}
	if !strings.HasPrefix(errs[0].Error(), "line 2, column 7: ") {
		t.Errorf("Error() = %q", errs[0].Error())
	}
	if !strings.Contains(errs[0].Detailed(), "> 2 | dhoro = 2;") {
		t.Errorf("Detailed() lacks context: %q", errs[0].Detailed())
	}
}

func TestParserRecoversAfterError(t *testing.T) {
	p := New(lexer.New("dhoro = 1; dhoro y = 2;"))
	program := p.ParseProgram()

	if len(p.Errors()) == 0 {
		t.Fatal("expected errors")
	}
	last, ok := program.Statements[len(program.Statements)-1].(*ast.LetStatement)
	if !ok || last.Name.Value != "y" {
		t.Errorf("parser did not recover to the second dhoro")
	}
}

func TestProgramStringReparses(t *testing.T) {
	inputs := []string{
		"dhoro x = 2 + 3 * 4;",
		"kaj f(a) { jodi (a > 0) { ferao a; } nahole { ferao -a; } }",
		"dhoro m = {a: 1, 'b': [1, 2, \"q\\\"uote\"]};",
		"ghuriye (dhoro i = 0; i < 3; i += 1) { chharo; }",
		"sreni A { shuru(v) { ei.v = v; } get() { ferao ei.v; } }",
		"chesta { felo 'x'; } dhoro_bhul (e) { dekho(e); } shesh { }",
		"({a: 1});",
		"dhoro p = notun A(1).get();",
	}

	for _, input := range inputs {
		first := parse(t, input).String()
		second := parse(t, first).String()
		if first != second {
			t.Errorf("reprinted program changed:\n first: %s\nsecond: %s", first, second)
		}
	}
}

// TestPropertyNumberLiterals checks that any non-negative number printed in
// plain decimal form parses back to the same value.
func TestPropertyNumberLiterals(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("number literal round-trips", prop.ForAll(
		func(v float64) bool {
			src := strconv.FormatFloat(v, 'f', -1, 64)
			p := New(lexer.New(src))
			program := p.ParseProgram()
			if len(p.Errors()) != 0 || len(program.Statements) != 1 {
				return false
			}
			lit, ok := program.Statements[0].(*ast.ExpressionStatement).Expression.(*ast.NumberLiteral)
			return ok && lit.Value == v
		},
		gen.Float64Range(0, 1e12),
	))

	properties.Property("integer arithmetic keeps left associativity", prop.ForAll(
		func(a, b, c int) bool {
			src := strconv.Itoa(a) + " - " + strconv.Itoa(b) + " - " + strconv.Itoa(c)
			p := New(lexer.New(src))
			program := p.ParseProgram()
			if len(p.Errors()) != 0 {
				return false
			}
			want := "((" + strconv.Itoa(a) + " - " + strconv.Itoa(b) + ") - " + strconv.Itoa(c) + ");"
			return program.Statements[0].String() == want
		},
		gen.IntRange(0, 100000),
		gen.IntRange(0, 100000),
		gen.IntRange(0, 100000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
