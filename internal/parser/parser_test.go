package parser

import (
	"strings"
	"testing"

	"github.com/mkerian10/pluto/internal/ast"
	"github.com/mkerian10/pluto/internal/lexer"
)

func testParse(t *testing.T, input string) *ast.Program {
	t.Helper()
	p := New(lexer.New(input))
	program := p.ParseProgram()
	checkParserErrors(t, p)
	return program
}

func checkParserErrors(t *testing.T, p *Parser) {
	t.Helper()
	for _, err := range p.LexerErrors() {
		t.Errorf("lexer error: %s", err.Error())
	}
	for _, err := range p.Errors() {
		t.Errorf("parser error: %s", err.Error())
	}
	if t.Failed() {
		t.FailNow()
	}
}

// parseExpr parses a single-expression function body and returns the
// expression.
func parseExpr(t *testing.T, input string) ast.Expression {
	t.Helper()
	program := testParse(t, "fn test() {\n"+input+"\n}")
	fn := program.Declarations[0].(*ast.FunctionDecl)
	if len(fn.Body.Statements) != 1 {
		t.Fatalf("body has %d statements, want 1", len(fn.Body.Statements))
	}
	stmt, ok := fn.Body.Statements[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("statement is %T, want ExpressionStatement", fn.Body.Statements[0])
	}
	return stmt.Expression
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"-a * b", "((-a) * b)"},
		{"!x && y", "((!x) && y)"},
		{"a + b < c * d", "((a + b) < (c * d))"},
		{"a == b || c != d", "((a == b) || (c != d))"},
		{"a ?? b + c", "(a ?? (b + c))"},
		{"a % b - c", "((a % b) - c)"},
		{"x != none && y != none", "((x != none) && (y != none))"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr := parseExpr(t, tt.input)
			if expr.String() != tt.want {
				t.Errorf("got %s, want %s", expr.String(), tt.want)
			}
		})
	}
}

func TestPostfixPropagation(t *testing.T) {
	expr := parseExpr(t, "load()!")
	prop, ok := expr.(*ast.PropagateExpression)
	if !ok {
		t.Fatalf("expression is %T, want PropagateExpression", expr)
	}
	if prop.Kind != ast.PropagateError {
		t.Errorf("kind = %v, want PropagateError", prop.Kind)
	}
	if _, ok := prop.Expr.(*ast.CallExpression); !ok {
		t.Errorf("inner is %T, want CallExpression", prop.Expr)
	}
}

func TestPropagationWithContext(t *testing.T) {
	expr := parseExpr(t, `load()! "loading config"`)
	prop := expr.(*ast.PropagateExpression)
	if prop.Context != "loading config" {
		t.Errorf("context = %q", prop.Context)
	}
}

func TestNullablePropagation(t *testing.T) {
	expr := parseExpr(t, "find()?")
	prop, ok := expr.(*ast.PropagateExpression)
	if !ok {
		t.Fatalf("expression is %T, want PropagateExpression", expr)
	}
	if prop.Kind != ast.PropagateNone {
		t.Errorf("kind = %v, want PropagateNone", prop.Kind)
	}
}

func TestCatchExpression(t *testing.T) {
	expr := parseExpr(t, "load() catch e { fallback() }")
	c, ok := expr.(*ast.CatchExpression)
	if !ok {
		t.Fatalf("expression is %T, want CatchExpression", expr)
	}
	if c.Binding == nil || c.Binding.Value != "e" {
		t.Errorf("binding = %v, want e", c.Binding)
	}
	if len(c.Handler.Statements) != 1 {
		t.Errorf("handler has %d statements", len(c.Handler.Statements))
	}
}

func TestGenericCallDisambiguation(t *testing.T) {
	expr := parseExpr(t, "first<int>(xs)")
	call, ok := expr.(*ast.CallExpression)
	if !ok {
		t.Fatalf("expression is %T, want CallExpression", expr)
	}
	if len(call.TypeArgs) != 1 || call.TypeArgs[0].String() != "int" {
		t.Errorf("type args = %v", call.TypeArgs)
	}

	// A comparison chain must stay a comparison.
	cmp := parseExpr(t, "a < b")
	if _, ok := cmp.(*ast.InfixExpression); !ok {
		t.Errorf("a < b parsed as %T, want InfixExpression", cmp)
	}
}

func TestClosureLiteral(t *testing.T) {
	expr := parseExpr(t, "(x: int, y: int) => x + y")
	closure, ok := expr.(*ast.ClosureLiteral)
	if !ok {
		t.Fatalf("expression is %T, want ClosureLiteral", expr)
	}
	if len(closure.Params) != 2 {
		t.Fatalf("params = %d, want 2", len(closure.Params))
	}
	if closure.Expr == nil {
		t.Error("expression body missing")
	}

	grouped := parseExpr(t, "(x + y)")
	if _, ok := grouped.(*ast.InfixExpression); !ok {
		t.Errorf("(x + y) parsed as %T, want InfixExpression", grouped)
	}
}

func TestStructLiteral(t *testing.T) {
	expr := parseExpr(t, "User { name: n, age: 42 }")
	lit, ok := expr.(*ast.StructLiteral)
	if !ok {
		t.Fatalf("expression is %T, want StructLiteral", expr)
	}
	if lit.Type.Name != "User" || len(lit.Fields) != 2 {
		t.Errorf("got %s with %d fields", lit.Type.Name, len(lit.Fields))
	}

	generic := parseExpr(t, "Map<string, int> {}")
	glit := generic.(*ast.StructLiteral)
	if glit.Type.Name != "Map" || len(glit.Type.TypeArgs) != 2 {
		t.Errorf("got %s with %d type args", glit.Type.Name, len(glit.Type.TypeArgs))
	}
}

func TestInterpolatedString(t *testing.T) {
	expr := parseExpr(t, `"hello {name}!"`)
	str, ok := expr.(*ast.InterpolatedString)
	if !ok {
		t.Fatalf("expression is %T, want InterpolatedString", expr)
	}
	if len(str.Parts) != 3 {
		t.Fatalf("parts = %d, want 3", len(str.Parts))
	}
	if str.Parts[0].Text != "hello " || str.Parts[2].Text != "!" {
		t.Errorf("text parts = %q, %q", str.Parts[0].Text, str.Parts[2].Text)
	}
	if str.Parts[1].Expr == nil {
		t.Error("middle part should be an expression")
	}
}

func TestFunctionDecl(t *testing.T) {
	program := testParse(t, "pub fn add(a: int, b: int) int {\n  return a + b\n}")
	fn, ok := program.Declarations[0].(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("declaration is %T", program.Declarations[0])
	}
	if !fn.Public() {
		t.Error("fn should be pub")
	}
	if fn.Name.Value != "add" || len(fn.Params) != 2 {
		t.Errorf("got %s with %d params", fn.Name.Value, len(fn.Params))
	}
	if fn.Return == nil || fn.Return.String() != "int" {
		t.Errorf("return type = %v", fn.Return)
	}
}

func TestNullableReturnType(t *testing.T) {
	program := testParse(t, "fn get() string? {\n  return none\n}")
	fn := program.Declarations[0].(*ast.FunctionDecl)
	if fn.Return.String() != "string?" {
		t.Errorf("return type = %s", fn.Return.String())
	}
}

func TestClassDecl(t *testing.T) {
	input := strings.Join([]string{
		"class Service uses Logger [repo: Repo] impl Health {",
		"  name: string",
		"  fn check(self) bool {",
		"    return true",
		"  }",
		"  fn rename(mut self, n: string) {",
		"    self.name = n",
		"  }",
		"}",
	}, "\n")

	program := testParse(t, input)
	class, ok := program.Declarations[0].(*ast.ClassDecl)
	if !ok {
		t.Fatalf("declaration is %T", program.Declarations[0])
	}
	if len(class.Uses) != 1 || class.Uses[0].Name != "Logger" {
		t.Errorf("uses = %v", class.Uses)
	}
	if len(class.BracketDeps) != 1 || class.BracketDeps[0].Name.Value != "repo" {
		t.Errorf("bracket deps = %v", class.BracketDeps)
	}
	if len(class.Impls) != 1 || class.Impls[0].Name != "Health" {
		t.Errorf("impls = %v", class.Impls)
	}
	if len(class.Fields) != 1 || len(class.Methods) != 2 {
		t.Fatalf("fields = %d, methods = %d", len(class.Fields), len(class.Methods))
	}
	if class.Methods[0].Receiver != ast.ReceiverSelf {
		t.Errorf("check receiver = %v", class.Methods[0].Receiver)
	}
	if class.Methods[1].Receiver != ast.ReceiverMutSelf {
		t.Errorf("rename receiver = %v", class.Methods[1].Receiver)
	}
}

func TestGenericClassDecl(t *testing.T) {
	program := testParse(t, "class Box<T> {\n  value: T\n}")
	class := program.Declarations[0].(*ast.ClassDecl)
	if len(class.Generics) != 1 || class.Generics[0].Name != "T" {
		t.Errorf("generics = %v", class.Generics)
	}
}

func TestGenericBounds(t *testing.T) {
	program := testParse(t, "fn largest<T: Ordered + Show>(xs: Array<T>) T {\n  return xs[0]\n}")
	fn := program.Declarations[0].(*ast.FunctionDecl)
	if len(fn.Generics) != 1 {
		t.Fatalf("generics = %d", len(fn.Generics))
	}
	if len(fn.Generics[0].Bounds) != 2 {
		t.Errorf("bounds = %v", fn.Generics[0].Bounds)
	}
}

func TestTraitDecl(t *testing.T) {
	input := strings.Join([]string{
		"trait Shape {",
		"  fn area(self) float",
		"  fn describe(self) string {",
		`    return "shape"`,
		"  }",
		"}",
	}, "\n")
	program := testParse(t, input)
	trait := program.Declarations[0].(*ast.TraitDecl)
	if len(trait.Methods) != 2 {
		t.Fatalf("methods = %d", len(trait.Methods))
	}
	if trait.Methods[0].Body != nil {
		t.Error("area should have no default body")
	}
	if trait.Methods[1].Body == nil {
		t.Error("describe should have a default body")
	}
}

func TestEnumDecl(t *testing.T) {
	input := strings.Join([]string{
		"enum Shape {",
		"  Point",
		"  Circle { radius: float }",
		"  Rect { w: float, h: float }",
		"}",
	}, "\n")
	program := testParse(t, input)
	enum := program.Declarations[0].(*ast.EnumDecl)
	if len(enum.Variants) != 3 {
		t.Fatalf("variants = %d", len(enum.Variants))
	}
	if enum.Variants[0].Fields != nil {
		t.Error("Point should be a unit variant")
	}
	if len(enum.Variants[2].Fields) != 2 {
		t.Errorf("Rect fields = %d", len(enum.Variants[2].Fields))
	}
}

func TestErrorDecl(t *testing.T) {
	program := testParse(t, "error NotFound {\n  key: string\n}")
	decl := program.Declarations[0].(*ast.ErrorDecl)
	if decl.Name.Value != "NotFound" || len(decl.Fields) != 1 {
		t.Errorf("got %s with %d fields", decl.Name.Value, len(decl.Fields))
	}
}

func TestAppDecl(t *testing.T) {
	input := strings.Join([]string{
		"app Main[db: Database] {",
		"  ambient Logger, Metrics",
		"  fn main() {",
		"    print(\"up\")",
		"  }",
		"}",
	}, "\n")
	program := testParse(t, input)
	appDecl := program.Declarations[0].(*ast.AppDecl)
	if len(appDecl.BracketDeps) != 1 {
		t.Errorf("bracket deps = %d", len(appDecl.BracketDeps))
	}
	if len(appDecl.Ambients) != 2 {
		t.Errorf("ambients = %d", len(appDecl.Ambients))
	}
	if len(appDecl.Methods) != 1 || appDecl.Methods[0].Name.Value != "main" {
		t.Errorf("methods = %v", appDecl.Methods)
	}
}

func TestImports(t *testing.T) {
	program := testParse(t, "import util.strings\nimport net.http as web\n\nfn f() {\n}")
	if len(program.Imports) != 2 {
		t.Fatalf("imports = %d", len(program.Imports))
	}
	if program.Imports[0].Path != "util.strings" || program.Imports[0].LocalName() != "strings" {
		t.Errorf("first import = %+v", program.Imports[0])
	}
	if program.Imports[1].Alias != "web" || program.Imports[1].LocalName() != "web" {
		t.Errorf("second import = %+v", program.Imports[1])
	}
}

func TestMatchExpression(t *testing.T) {
	input := strings.Join([]string{
		"fn f(s: Shape) int {",
		"  return match s {",
		"    Shape.Point => 0",
		"    Shape.Circle { radius } => 1",
		"    Shape.Rect { w: width, h } => 2",
		"    _ => 3",
		"  }",
		"}",
	}, "\n")
	program := testParse(t, input)
	fn := program.Declarations[0].(*ast.FunctionDecl)
	ret := fn.Body.Statements[0].(*ast.ReturnStatement)
	m, ok := ret.Value.(*ast.MatchExpression)
	if !ok {
		t.Fatalf("return value is %T, want MatchExpression", ret.Value)
	}
	if len(m.Arms) != 4 {
		t.Fatalf("arms = %d", len(m.Arms))
	}

	circle := m.Arms[1].Pattern.(*ast.VariantPattern)
	if circle.Variant.Value != "Circle" || len(circle.Fields) != 1 {
		t.Errorf("circle pattern = %s", circle.String())
	}
	rect := m.Arms[2].Pattern.(*ast.VariantPattern)
	if rect.Fields[0].Binding == nil || rect.Fields[0].Binding.Value != "width" {
		t.Errorf("rect pattern = %s", rect.String())
	}
	if _, ok := m.Arms[3].Pattern.(*ast.WildcardPattern); !ok {
		t.Errorf("last arm = %T, want WildcardPattern", m.Arms[3].Pattern)
	}
}

func TestStatements(t *testing.T) {
	input := strings.Join([]string{
		"fn f() {",
		"  let x = 1",
		"  let mut y: int = 2",
		"  y = 3",
		"  y += 1",
		"  for item in items {",
		"    print(item)",
		"  }",
		"  while y < 10 {",
		"    y += 1",
		"  }",
		"  loop {",
		"    break",
		"  }",
		"  return",
		"}",
	}, "\n")
	program := testParse(t, input)
	fn := program.Declarations[0].(*ast.FunctionDecl)
	if len(fn.Body.Statements) != 8 {
		t.Fatalf("statements = %d, want 8", len(fn.Body.Statements))
	}

	let := fn.Body.Statements[1].(*ast.LetStatement)
	if !let.Mutable || let.Type == nil {
		t.Errorf("let mut y: int parsed as %s", let.String())
	}
	assign := fn.Body.Statements[3].(*ast.AssignStatement)
	if assign.Operator != "+=" {
		t.Errorf("operator = %s", assign.Operator)
	}
}

func TestIfElseChain(t *testing.T) {
	input := strings.Join([]string{
		"fn f(x: int) int {",
		"  if x > 0 {",
		"    return 1",
		"  } else if x < 0 {",
		"    return -1",
		"  } else {",
		"    return 0",
		"  }",
		"}",
	}, "\n")
	program := testParse(t, input)
	fn := program.Declarations[0].(*ast.FunctionDecl)
	ifStmt, ok := fn.Body.Statements[0].(*ast.IfExpression)
	if !ok {
		t.Fatalf("statement is %T", fn.Body.Statements[0])
	}
	elseIf, ok := ifStmt.Else.(*ast.IfExpression)
	if !ok {
		t.Fatalf("else branch is %T, want IfExpression", ifStmt.Else)
	}
	if _, ok := elseIf.Else.(*ast.Block); !ok {
		t.Errorf("final else is %T, want Block", elseIf.Else)
	}
}

func TestExternDecl(t *testing.T) {
	program := testParse(t, "extern fn gc_heap_size() int")
	decl := program.Declarations[0].(*ast.ExternFunctionDecl)
	if decl.Name.Value != "gc_heap_size" {
		t.Errorf("name = %s", decl.Name.Value)
	}
}

func TestParseErrorsCarryExpectedSet(t *testing.T) {
	p := New(lexer.New("fn (x: int) {\n}"))
	p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatal("expected parse errors")
	}
	if len(p.Errors()[0].Expected) == 0 {
		t.Error("error should carry an expected set")
	}
}

// TestParseIdempotence re-parses the canonical rendering of a program and
// requires the second rendering to be identical.
func TestParseIdempotence(t *testing.T) {
	input := strings.Join([]string{
		"enum Color {",
		"  Red",
		"  Green",
		"  Blue",
		"}",
		"",
		"class Counter {",
		"  count: int",
		"  fn bump(mut self) {",
		"    self.count += 1",
		"  }",
		"}",
		"",
		"fn pick(c: Color) int {",
		"  return match c {",
		"    Color.Red => 1",
		"    Color.Green => 2",
		"    Color.Blue => 3",
		"  }",
		"}",
	}, "\n")

	first := testParse(t, input).String()
	second := testParse(t, first).String()
	if first != second {
		t.Errorf("canonical rendering is not stable:\n--- first ---\n%s\n--- second ---\n%s", first, second)
	}
}
