// Package errors defines the compiler's diagnostic type and its rendering.
// Every diagnostic carries a kind tag, a severity, and a source span; the
// renderer prints the offending line with a caret under the span start.
package errors

import (
	"fmt"
	"strings"

	"github.com/mkerian10/pluto/internal/lexer"
)

// Severity separates halting errors from advisory warnings.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is one compiler diagnostic. Kind is the taxonomy tag, such as
// "TypeError::Mismatch" or "DIError::Cycle".
type Diagnostic struct {
	Kind     string
	Message  string
	File     string
	Pos      lexer.Position
	Severity Severity
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	return d.Line()
}

// Line renders the diagnostic as a single line: file:line:col kind: message.
func (d *Diagnostic) Line() string {
	var sb strings.Builder
	if d.File != "" {
		fmt.Fprintf(&sb, "%s:", d.File)
	}
	if d.Pos.IsValid() {
		fmt.Fprintf(&sb, "%d:%d:", d.Pos.Line, d.Pos.Column)
	}
	if sb.Len() > 0 {
		sb.WriteString(" ")
	}
	fmt.Fprintf(&sb, "%s: %s", d.Kind, d.Message)
	if d.Severity == SeverityWarning {
		return "warning: " + sb.String()
	}
	return sb.String()
}

// Render formats the diagnostic with its source line and a caret.
// source may be empty, in which case only the header line is produced.
func (d *Diagnostic) Render(source string) string {
	var sb strings.Builder
	sb.WriteString(d.Line())

	line := sourceLine(source, d.Pos.Line)
	if line != "" {
		prefix := fmt.Sprintf("%4d | ", d.Pos.Line)
		sb.WriteString("\n")
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")
		col := d.Pos.Column
		if col < 1 {
			col = 1
		}
		sb.WriteString(strings.Repeat(" ", len(prefix)+col-1))
		sb.WriteString("^")
	}
	return sb.String()
}

// sourceLine extracts a 1-indexed line from source.
func sourceLine(source string, lineNum int) string {
	if source == "" || lineNum < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// List is an ordered collection of diagnostics accumulated by a pass.
type List struct {
	diags []*Diagnostic
}

// Add appends a diagnostic.
func (l *List) Add(d *Diagnostic) {
	l.diags = append(l.diags, d)
}

// Errorf appends an error-severity diagnostic with a formatted message.
func (l *List) Errorf(kind string, pos lexer.Position, format string, args ...any) {
	l.Add(&Diagnostic{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Pos:      pos,
		Severity: SeverityError,
	})
}

// Warnf appends a warning-severity diagnostic with a formatted message.
func (l *List) Warnf(kind string, pos lexer.Position, format string, args ...any) {
	l.Add(&Diagnostic{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Pos:      pos,
		Severity: SeverityWarning,
	})
}

// All returns every diagnostic in order.
func (l *List) All() []*Diagnostic {
	return l.diags
}

// HasErrors reports whether any error-severity diagnostic was recorded.
// Warnings never halt the pipeline.
func (l *List) HasErrors() bool {
	for _, d := range l.diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ErrorCount returns the number of error-severity diagnostics.
func (l *List) ErrorCount() int {
	n := 0
	for _, d := range l.diags {
		if d.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Format renders every diagnostic, one per line, for terminal output.
func (l *List) Format() string {
	lines := make([]string, len(l.diags))
	for i, d := range l.diags {
		lines[i] = d.Line()
	}
	return strings.Join(lines, "\n")
}
