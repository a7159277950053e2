package errors

import (
	"strings"

	"github.com/mkerian10/pluto/internal/lexer"
)

// lexKindNames maps lexer error kinds to diagnostic kind tags.
var lexKindNames = map[lexer.ErrorKind]string{
	lexer.ErrUnterminatedString:        "LexError::UnterminatedString",
	lexer.ErrUnterminatedInterpolation: "LexError::UnterminatedInterpolation",
	lexer.ErrInvalidEscape:             "LexError::InvalidEscape",
	lexer.ErrInvalidUTF8:               "LexError::InvalidByte",
	lexer.ErrUnexpectedChar:            "LexError::UnexpectedChar",
	lexer.ErrInvalidNumber:             "LexError::InvalidNumber",
	lexer.ErrInvalidByteLiteral:        "LexError::InvalidByteLiteral",
}

// AddLexErrors converts lexer errors into diagnostics.
func (l *List) AddLexErrors(file string, errs []lexer.Error) {
	for _, e := range errs {
		kind, ok := lexKindNames[e.Kind]
		if !ok {
			kind = "LexError"
		}
		l.Add(&Diagnostic{
			Kind:     kind,
			Message:  e.Message,
			File:     file,
			Pos:      e.Pos,
			Severity: SeverityError,
		})
	}
}

// AddParseError converts one structured parse error into a diagnostic.
func (l *List) AddParseError(file string, pos lexer.Position, message string, expected []string) {
	if len(expected) > 0 {
		message += " (expected " + strings.Join(expected, ", ") + ")"
	}
	l.Add(&Diagnostic{
		Kind:     "ParseError::UnexpectedToken",
		Message:  message,
		File:     file,
		Pos:      pos,
		Severity: SeverityError,
	})
}
