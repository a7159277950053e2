package errors

import (
	"strings"
	"testing"

	"github.com/mkerian10/pluto/internal/lexer"
)

func TestDiagnosticLine(t *testing.T) {
	d := &Diagnostic{
		Kind:    "TypeError::Mismatch",
		Message: "cannot assign string to int",
		File:    "main.pluto",
		Pos:     lexer.Position{Line: 3, Column: 7},
	}
	got := d.Line()
	want := "main.pluto:3:7: TypeError::Mismatch: cannot assign string to int"
	if got != want {
		t.Errorf("Line() = %q, want %q", got, want)
	}
}

func TestWarningLinePrefix(t *testing.T) {
	d := &Diagnostic{
		Kind:     "Warning::DeadMut",
		Message:  "x is declared mut but never mutated",
		Pos:      lexer.Position{Line: 1, Column: 1},
		Severity: SeverityWarning,
	}
	if !strings.HasPrefix(d.Line(), "warning: ") {
		t.Errorf("Line() = %q, want warning prefix", d.Line())
	}
}

func TestRenderCaret(t *testing.T) {
	source := "let x = 1\nlet y = oops\nlet z = 3"
	d := &Diagnostic{
		Kind:    "TypeError::UndefinedName",
		Message: "undefined name oops",
		Pos:     lexer.Position{Line: 2, Column: 9},
	}
	got := d.Render(source)
	if !strings.Contains(got, "let y = oops") {
		t.Errorf("rendered output missing source line:\n%s", got)
	}
	lines := strings.Split(got, "\n")
	caretLine := lines[len(lines)-1]
	if !strings.HasSuffix(caretLine, "^") {
		t.Errorf("missing caret:\n%s", got)
	}
	// The caret must sit under column 9 of the quoted line.
	prefix := "   2 | "
	if idx := strings.Index(caretLine, "^"); idx != len(prefix)+8 {
		t.Errorf("caret at %d, want %d:\n%s", idx, len(prefix)+8, got)
	}
}

func TestListSeverities(t *testing.T) {
	l := &List{}
	l.Warnf("Warning::DeadMut", lexer.Position{Line: 1, Column: 1}, "unused mut")
	if l.HasErrors() {
		t.Error("warnings alone must not count as errors")
	}

	l.Errorf("TypeError::Mismatch", lexer.Position{Line: 2, Column: 1}, "bad")
	if !l.HasErrors() {
		t.Error("error not detected")
	}
	if l.ErrorCount() != 1 {
		t.Errorf("ErrorCount = %d, want 1", l.ErrorCount())
	}
	if len(l.All()) != 2 {
		t.Errorf("All() = %d, want 2", len(l.All()))
	}
}

func TestFormatOnePerLine(t *testing.T) {
	l := &List{}
	l.Errorf("LexError::UnterminatedString", lexer.Position{Line: 1, Column: 1}, "unterminated string")
	l.Errorf("ParseError::UnexpectedToken", lexer.Position{Line: 2, Column: 2}, "unexpected token")
	out := l.Format()
	if len(strings.Split(out, "\n")) != 2 {
		t.Errorf("Format() = %q, want two lines", out)
	}
}
