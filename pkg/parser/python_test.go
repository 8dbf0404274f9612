package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/l3aro/go-flow-graph/pkg/stmt"
)

func parseSource(t *testing.T, code string) *stmt.Module {
	t.Helper()
	return Parse([]byte(code), "test.py")
}

func findFunction(t *testing.T, m *stmt.Module, name string) *stmt.Function {
	t.Helper()
	for _, fn := range m.Functions {
		if fn.Name == name {
			return fn
		}
	}
	t.Fatalf("function %q not found; have %v", name, functionNames(m))
	return nil
}

func functionNames(m *stmt.Module) []string {
	names := make([]string, 0, len(m.Functions))
	for _, fn := range m.Functions {
		names = append(names, fn.Name)
	}
	return names
}

func TestParseStatementKinds(t *testing.T) {
	code := `def test_func(items):
	x = 1
	if x > 0:
		x = 2
	while x:
		break
	for item in items:
		continue
	try:
		risky()
	except ValueError:
		pass
	return x
`
	m := parseSource(t, code)
	fn := findFunction(t, m, "test_func")
	if fn.Err != "" {
		t.Fatalf("unexpected parse error: %s", fn.Err)
	}

	wantKinds := []stmt.Kind{stmt.Simple, stmt.If, stmt.While, stmt.For, stmt.Try, stmt.Return}
	if len(fn.Body) != len(wantKinds) {
		t.Fatalf("expected %d statements, got %d", len(wantKinds), len(fn.Body))
	}
	for i, want := range wantKinds {
		if fn.Body[i].Kind != want {
			t.Errorf("statement %d: got kind %v, want %v", i, fn.Body[i].Kind, want)
		}
	}

	ifStmt := fn.Body[1]
	if ifStmt.Cond != "x > 0" {
		t.Errorf("unexpected condition text %q", ifStmt.Cond)
	}
	if len(ifStmt.Body) != 1 || ifStmt.Body[0].Kind != stmt.Simple {
		t.Errorf("unexpected if body: %+v", ifStmt.Body)
	}

	forStmt := fn.Body[3]
	if forStmt.Target != "item" || forStmt.Iter != "items" {
		t.Errorf("unexpected for fields: target=%q iter=%q", forStmt.Target, forStmt.Iter)
	}
	if len(forStmt.Body) != 1 || forStmt.Body[0].Kind != stmt.Continue {
		t.Errorf("unexpected for body: %+v", forStmt.Body)
	}

	tryStmt := fn.Body[4]
	if len(tryStmt.Handlers) != 1 || tryStmt.Handlers[0].Type != "ValueError" {
		t.Errorf("unexpected handlers: %+v", tryStmt.Handlers)
	}

	if fn.Body[5].Text != "x" {
		t.Errorf("unexpected return expression %q", fn.Body[5].Text)
	}
}

func TestParseElifChain(t *testing.T) {
	code := `def classify(x):
	if x > 0:
		return "pos"
	elif x < 0:
		return "neg"
	else:
		return "zero"
`
	m := parseSource(t, code)
	fn := findFunction(t, m, "classify")
	if fn.Err != "" {
		t.Fatalf("unexpected parse error: %s", fn.Err)
	}

	outer := fn.Body[0]
	if outer.Kind != stmt.If || outer.Cond != "x > 0" {
		t.Fatalf("unexpected outer if: %+v", outer)
	}

	// The elif nests as a single If inside the outer else.
	if len(outer.Else) != 1 || outer.Else[0].Kind != stmt.If {
		t.Fatalf("elif should nest as one If in Else, got %+v", outer.Else)
	}
	inner := outer.Else[0]
	if inner.Cond != "x < 0" {
		t.Errorf("unexpected elif condition %q", inner.Cond)
	}
	if len(inner.Else) != 1 || inner.Else[0].Kind != stmt.Return {
		t.Errorf("final else should hold the zero return, got %+v", inner.Else)
	}
}

func TestParseClassMethods(t *testing.T) {
	code := `class Greeter:
	def greet(self):
		return "hi"

	def wave(self):
		pass

def free():
	pass
`
	m := parseSource(t, code)

	findFunction(t, m, "Greeter.greet")
	findFunction(t, m, "Greeter.wave")
	findFunction(t, m, "free")
	if len(m.Functions) != 3 {
		t.Errorf("expected 3 functions, got %v", functionNames(m))
	}
}

func TestParseNestedFunctions(t *testing.T) {
	code := `def outer():
	def inner():
		return 1
	return inner()
`
	m := parseSource(t, code)

	outer := findFunction(t, m, "outer")
	findFunction(t, m, "inner")

	// The nested def also appears inline in the enclosing body.
	if len(outer.Body) != 2 || outer.Body[0].Kind != stmt.FuncDef {
		t.Fatalf("expected inline FuncDef in outer body, got %+v", outer.Body)
	}
	if outer.Body[0].Name != "inner" {
		t.Errorf("unexpected nested def name %q", outer.Body[0].Name)
	}
}

func TestParseDecoratedFunction(t *testing.T) {
	code := `@cached
def compute():
	return 42
`
	m := parseSource(t, code)
	fn := findFunction(t, m, "compute")
	if fn.Err != "" {
		t.Fatalf("unexpected parse error: %s", fn.Err)
	}
	if len(fn.Body) != 1 || fn.Body[0].Kind != stmt.Return {
		t.Errorf("unexpected body: %+v", fn.Body)
	}
}

func TestParseModuleFallback(t *testing.T) {
	code := `x = 1
if x:
	print(x)
`
	m := parseSource(t, code)

	if len(m.Functions) != 1 {
		t.Fatalf("expected one pseudo-function, got %v", functionNames(m))
	}
	fn := m.Functions[0]
	if fn.Name != "module" || fn.Line != 1 {
		t.Errorf("unexpected pseudo-function: %+v", fn)
	}
	if len(fn.Body) != 2 || fn.Body[1].Kind != stmt.If {
		t.Errorf("unexpected module body: %+v", fn.Body)
	}
}

func TestParseSyntaxError(t *testing.T) {
	code := `def broken(:
	return 1
`
	m := parseSource(t, code)

	var bad *stmt.Function
	for _, fn := range m.Functions {
		if fn.Err != "" {
			bad = fn
			break
		}
	}
	if bad == nil {
		t.Fatal("expected a function carrying a parse error")
	}
	if bad.Body != nil {
		t.Error("a failed function must not carry a half-converted body")
	}
}

func TestParseBareExcept(t *testing.T) {
	code := `def guarded():
	try:
		risky()
	except:
		pass
`
	m := parseSource(t, code)
	fn := findFunction(t, m, "guarded")
	tryStmt := fn.Body[0]
	if len(tryStmt.Handlers) != 1 {
		t.Fatalf("expected one handler, got %d", len(tryStmt.Handlers))
	}
	if tryStmt.Handlers[0].Type != "" {
		t.Errorf("bare except should have empty type, got %q", tryStmt.Handlers[0].Type)
	}
}

func TestParseExceptWithAlias(t *testing.T) {
	code := `def guarded():
	try:
		risky()
	except ValueError as e:
		handle(e)
`
	m := parseSource(t, code)
	fn := findFunction(t, m, "guarded")
	h := fn.Body[0].Handlers[0]
	if h.Type != "ValueError" {
		t.Errorf("alias must not leak into the type, got %q", h.Type)
	}
	if len(h.Body) != 1 {
		t.Errorf("unexpected handler body: %+v", h.Body)
	}
}

func TestParseCommentsDropped(t *testing.T) {
	code := `def f():
	# leading comment
	x = 1
	# trailing comment
	return x
`
	m := parseSource(t, code)
	fn := findFunction(t, m, "f")
	if len(fn.Body) != 2 {
		t.Errorf("comments should be dropped, got %d statements", len(fn.Body))
	}
}

func TestParseMultilineConditionCollapsed(t *testing.T) {
	code := `def f(a, b):
	if (a and
			b):
		return 1
`
	m := parseSource(t, code)
	fn := findFunction(t, m, "f")
	if fn.Body[0].Cond != "(a and b)" {
		t.Errorf("whitespace should collapse to single spaces, got %q", fn.Body[0].Cond)
	}
}

func TestParseExampleFixture(t *testing.T) {
	m, err := ParseFile(filepath.Join("..", "..", "testdata", "python", "example.py"))
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}

	want := []string{
		"classify",
		"first_even",
		"drain",
		"Counter.__init__",
		"Counter.bump",
		"clamp",
	}
	for _, name := range want {
		findFunction(t, m, name)
	}
	for _, fn := range m.Functions {
		if fn.Err != "" {
			t.Errorf("fixture function %s failed to parse: %s", fn.Name, fn.Err)
		}
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.py")
	code := `def hello():
	return "world"
`
	if err := os.WriteFile(path, []byte(code), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	m, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if m.Path != path {
		t.Errorf("unexpected module path %q", m.Path)
	}
	findFunction(t, m, "hello")

	if _, err := ParseFile(filepath.Join(dir, "missing.py")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
