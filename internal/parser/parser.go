// Package parser implements the Pluto parser: hand-written recursive
// descent with Pratt expression parsing.
//
// Key patterns:
//   - Token cursor: the whole input is lexed up front so the parser has
//     arbitrary lookahead for the few ambiguous spots (generic call
//     arguments, closures vs grouped expressions).
//   - Newlines terminate statements; the parser skips them explicitly where
//     the grammar permits them as whitespace.
//   - Struct literals are suppressed in control-flow headers so that
//     `if x {` parses the block, not a literal (the noStructLit flag).
package parser

import (
	"github.com/mkerian10/pluto/internal/ast"
	"github.com/mkerian10/pluto/internal/lexer"
)

// Precedence levels for operators (lowest to highest).
const (
	_ int = iota
	LOWEST
	HANDLE      // catch
	COALESCE    // ??
	OR          // ||
	AND         // &&
	EQUALS      // == !=
	LESSGREATER // < > <= >=
	SUM         // + -
	PRODUCT     // * / %
	PREFIX      // -x, !x
	POSTFIX     // expr!, expr?
	CALL        // function(args)
	INDEX       // array[index]
	MEMBER      // obj.field
)

// precedences maps token types to their infix precedence levels.
var precedences = map[lexer.TokenType]int{
	lexer.CATCH:             HANDLE,
	lexer.QUESTION_QUESTION: COALESCE,
	lexer.OR:                OR,
	lexer.AND:               AND,
	lexer.EQ:                EQUALS,
	lexer.NOT_EQ:            EQUALS,
	lexer.LESS:              LESSGREATER,
	lexer.GREATER:           LESSGREATER,
	lexer.LESS_EQ:           LESSGREATER,
	lexer.GREATER_EQ:        LESSGREATER,
	lexer.PLUS:              SUM,
	lexer.MINUS:             SUM,
	lexer.ASTERISK:          PRODUCT,
	lexer.SLASH:             PRODUCT,
	lexer.PERCENT:           PRODUCT,
	lexer.BANG:              POSTFIX,
	lexer.QUESTION:          POSTFIX,
	lexer.LPAREN:            CALL,
	lexer.LBRACK:            INDEX,
	lexer.DOT:               MEMBER,
}

// prefixParseFn parses prefix expressions (literals, unary ops, grouping).
type prefixParseFn func() ast.Expression

// infixParseFn parses infix and postfix expressions.
type infixParseFn func(ast.Expression) ast.Expression

// Parser parses one Pluto source file.
type Parser struct {
	tokens []lexer.Token
	pos    int

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn

	errors    []*Error
	lexErrors []lexer.Error

	// noStructLit suppresses `Name { ... }` literals while parsing a
	// control-flow header, where `{` opens the body block instead.
	noStructLit bool
}

// New creates a Parser over the given lexer's token stream.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{}

	for {
		tok := l.NextToken()
		p.tokens = append(p.tokens, tok)
		if tok.Type == lexer.EOF {
			break
		}
	}
	p.lexErrors = l.Errors()

	p.prefixParseFns = map[lexer.TokenType]prefixParseFn{
		lexer.IDENT:        p.parseIdentifier,
		lexer.INT:          p.parseIntegerLiteral,
		lexer.FLOAT:        p.parseFloatLiteral,
		lexer.STRING:       p.parseStringLiteral,
		lexer.STRING_START: p.parseInterpolatedString,
		lexer.BYTE:         p.parseByteLiteral,
		lexer.TRUE:         p.parseBooleanLiteral,
		lexer.FALSE:        p.parseBooleanLiteral,
		lexer.NONE:         p.parseNoneLiteral,
		lexer.SELF:         p.parseSelfExpression,
		lexer.BANG:         p.parsePrefixExpression,
		lexer.MINUS:        p.parsePrefixExpression,
		lexer.LPAREN:       p.parseGroupedOrClosure,
		lexer.LBRACK:       p.parseArrayLiteral,
		lexer.LBRACE:       p.parseBlockExpression,
		lexer.IF:           p.parseIfExpression,
		lexer.MATCH:        p.parseMatchExpression,
	}

	p.infixParseFns = map[lexer.TokenType]infixParseFn{
		lexer.PLUS:              p.parseInfixExpression,
		lexer.MINUS:             p.parseInfixExpression,
		lexer.ASTERISK:          p.parseInfixExpression,
		lexer.SLASH:             p.parseInfixExpression,
		lexer.PERCENT:           p.parseInfixExpression,
		lexer.EQ:                p.parseInfixExpression,
		lexer.NOT_EQ:            p.parseInfixExpression,
		lexer.LESS:              p.parseLessOrGenericCall,
		lexer.GREATER:           p.parseInfixExpression,
		lexer.LESS_EQ:           p.parseInfixExpression,
		lexer.GREATER_EQ:        p.parseInfixExpression,
		lexer.AND:               p.parseInfixExpression,
		lexer.OR:                p.parseInfixExpression,
		lexer.QUESTION_QUESTION: p.parseInfixExpression,
		lexer.BANG:              p.parsePropagateExpression,
		lexer.QUESTION:          p.parsePropagateExpression,
		lexer.CATCH:             p.parseCatchExpression,
		lexer.LPAREN:            p.parseCallExpression,
		lexer.LBRACK:            p.parseIndexExpression,
		lexer.DOT:               p.parseMemberExpression,
	}

	return p
}

// Errors returns the list of parse errors.
func (p *Parser) Errors() []*Error {
	return p.errors
}

// LexerErrors returns all lexer errors accumulated during tokenization.
func (p *Parser) LexerErrors() []lexer.Error {
	return p.lexErrors
}

// cur returns the current token.
func (p *Parser) cur() lexer.Token {
	return p.tokens[p.pos]
}

// peek returns the token n positions ahead of the current token.
func (p *Parser) peek(n int) lexer.Token {
	idx := p.pos + n
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[idx]
}

// next advances to the next token.
func (p *Parser) next() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
}

// mark returns the current cursor position for lightweight backtracking.
func (p *Parser) mark() int { return p.pos }

// resetTo rewinds the cursor to a previously marked position.
func (p *Parser) resetTo(m int) { p.pos = m }

func (p *Parser) curIs(t lexer.TokenType) bool  { return p.cur().Type == t }
func (p *Parser) peekIs(t lexer.TokenType) bool { return p.peek(1).Type == t }

// expect advances past the current token if it matches, otherwise records
// an error and returns false.
func (p *Parser) expect(t lexer.TokenType) bool {
	if p.curIs(t) {
		p.next()
		return true
	}
	p.expectError(t)
	return false
}

// skipNewlines consumes any run of NEWLINE tokens.
func (p *Parser) skipNewlines() {
	for p.curIs(lexer.NEWLINE) {
		p.next()
	}
}

// endStatement consumes the statement terminator: a newline, or nothing
// when the statement ends at a closing brace or EOF.
func (p *Parser) endStatement() {
	switch p.cur().Type {
	case lexer.NEWLINE:
		p.next()
	case lexer.RBRACE, lexer.EOF:
	default:
		p.addError(p.cur().Pos, "unexpected token %s after statement", []string{lexer.NEWLINE.String()}, p.cur().Type)
		p.synchronize()
	}
}

// synchronize skips tokens until a plausible statement boundary, providing
// panic-mode recovery so one error does not cascade.
func (p *Parser) synchronize() {
	for !p.curIs(lexer.EOF) {
		if p.curIs(lexer.NEWLINE) {
			p.next()
			return
		}
		if p.curIs(lexer.RBRACE) {
			return
		}
		p.next()
	}
}

// ParseProgram parses a complete source file.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}

	p.skipNewlines()
	for p.curIs(lexer.IMPORT) {
		if imp := p.parseImport(); imp != nil {
			program.Imports = append(program.Imports, imp)
		}
		p.skipNewlines()
	}

	for !p.curIs(lexer.EOF) {
		decl := p.parseDeclaration()
		if decl != nil {
			program.Declarations = append(program.Declarations, decl)
		}
		p.skipNewlines()
	}

	return program
}
