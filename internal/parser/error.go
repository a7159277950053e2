package parser

import (
	"fmt"
	"strings"

	"github.com/mkerian10/pluto/internal/lexer"
)

// Error is a structured parse error: the position of the offending token,
// a message, and a summary of what the parser expected there.
type Error struct {
	Pos      lexer.Position
	Message  string
	Expected []string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Expected) > 0 {
		return fmt.Sprintf("%s (expected %s) at %s", e.Message, strings.Join(e.Expected, ", "), e.Pos)
	}
	return fmt.Sprintf("%s at %s", e.Message, e.Pos)
}

// addError records a parse error without stopping the parse.
func (p *Parser) addError(pos lexer.Position, format string, expected []string, args ...any) {
	p.errors = append(p.errors, &Error{
		Pos:      pos,
		Message:  fmt.Sprintf(format, args...),
		Expected: expected,
	})
}

// expectError records an unexpected-token error for the current token.
func (p *Parser) expectError(want lexer.TokenType) {
	tok := p.cur()
	p.addError(tok.Pos, "expected %s, got %s", []string{want.String()}, want, tok.Type)
}

// noPrefixParseFnError records that no expression can start with the
// current token.
func (p *Parser) noPrefixParseFnError(tok lexer.Token) {
	p.addError(tok.Pos, "unexpected token %s in expression", []string{"expression"}, tok.Type)
}
