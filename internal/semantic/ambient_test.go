package semantic

import (
	"strings"
	"testing"

	"github.com/mkerian10/pluto/internal/ast"
	"github.com/mkerian10/pluto/internal/errors"
	"github.com/mkerian10/pluto/internal/lexer"
	"github.com/mkerian10/pluto/internal/parser"
)

func desugarSource(t *testing.T, src string) (*ast.Program, *errors.List) {
	t.Helper()
	p := parser.New(lexer.New(src))
	program := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parse errors: %v", p.Errors())
	}
	diags := &errors.List{}
	Desugar(program, diags)
	return program, diags
}

func TestAmbientFieldName(t *testing.T) {
	tests := []struct {
		typeName string
		want     string
	}{
		{"Logger", "logger"},
		{"HTTPClient", "hTTPClient"},
		{"log.Logger", "logger"},
		{"db.ConnectionPool", "connectionPool"},
	}
	for _, tt := range tests {
		if got := ambientFieldName(tt.typeName); got != tt.want {
			t.Errorf("ambientFieldName(%q) = %q, want %q", tt.typeName, got, tt.want)
		}
	}
}

func TestDesugarSynthesizesInjectedFields(t *testing.T) {
	src := `
class Logger {
}

class S uses Logger [repo: Repo] {
	name: string
}

class Repo {
}

app Main {
	ambient Logger
	fn main() {
	}
}
`
	program, diags := desugarSource(t, src)
	if diags.HasErrors() {
		t.Fatalf("diagnostics: %s", diags.Format())
	}

	var s *ast.ClassDecl
	for _, d := range program.Declarations {
		if c, ok := d.(*ast.ClassDecl); ok && c.Name.Value == "S" {
			s = c
		}
	}
	if s == nil {
		t.Fatal("class S missing")
	}
	if len(s.Fields) != 3 {
		t.Fatalf("fields = %d, want 3 (repo, logger, name)", len(s.Fields))
	}
	if !s.Fields[0].Injected || s.Fields[0].Name.Value != "repo" {
		t.Errorf("first field = %s (injected=%v)", s.Fields[0].Name.Value, s.Fields[0].Injected)
	}
	if !s.Fields[1].Injected || s.Fields[1].Name.Value != "logger" {
		t.Errorf("second field = %s (injected=%v)", s.Fields[1].Name.Value, s.Fields[1].Injected)
	}
	if s.Fields[2].Injected {
		t.Error("declared field marked injected")
	}
}

func TestDesugarRewriteSkipsShadowedUses(t *testing.T) {
	src := `
class Logger {
	fn info(self, msg: string) {
	}
}

class S uses Logger {
	fn f(self) {
		logger.info("a")
		let logger = 1
		print(logger)
		for logger in items {
			print(logger)
		}
	}
}

app Main {
	ambient Logger
	fn main() {
	}
}
`
	program, diags := desugarSource(t, src)
	if diags.HasErrors() {
		t.Fatalf("diagnostics: %s", diags.Format())
	}

	rendered := program.String()
	if !strings.Contains(rendered, "self.logger.info") {
		t.Errorf("free use not rewritten:\n%s", rendered)
	}
	if strings.Contains(rendered, "print(self.logger)") {
		t.Errorf("shadowed use rewritten:\n%s", rendered)
	}
}

func TestDesugarParameterShadowing(t *testing.T) {
	src := `
class Logger {
}

class S uses Logger {
	fn f(self, logger: int) {
		print(logger)
	}
}

app Main {
	ambient Logger
	fn main() {
	}
}
`
	program, diags := desugarSource(t, src)
	if diags.HasErrors() {
		t.Fatalf("diagnostics: %s", diags.Format())
	}
	if strings.Contains(program.String(), "self.logger") {
		t.Error("parameter-shadowed ambient was rewritten")
	}
}

func TestDesugarRejectsGenericAmbientClass(t *testing.T) {
	src := `
class Logger {
}

class Cache<T> uses Logger {
}

app Main {
	ambient Logger
	fn main() {
	}
}
`
	_, diags := desugarSource(t, src)
	found := false
	for _, d := range diags.All() {
		if d.Kind == KindGenericAmbient {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %s, got:\n%s", KindGenericAmbient, diags.Format())
	}
}

func TestDesugarUnregisteredAmbient(t *testing.T) {
	src := `
class Logger {
}

class S uses Logger {
}

app Main {
	fn main() {
	}
}
`
	_, diags := desugarSource(t, src)
	found := false
	for _, d := range diags.All() {
		if d.Kind == KindUnregisteredAmbient {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %s, got:\n%s", KindUnregisteredAmbient, diags.Format())
	}
}
