package parser

import (
	"github.com/mkerian10/pluto/internal/ast"
	"github.com/mkerian10/pluto/internal/lexer"
)

// parsePattern parses one match-arm pattern.
func (p *Parser) parsePattern() ast.Pattern {
	tok := p.cur()

	switch tok.Type {
	case lexer.NONE:
		p.next()
		return &ast.NonePattern{Token: tok}

	case lexer.INT, lexer.STRING, lexer.BYTE, lexer.TRUE, lexer.FALSE:
		value := p.parseExpression(POSTFIX)
		if value == nil {
			return nil
		}
		return &ast.LiteralPattern{Token: tok, Value: value}

	case lexer.MINUS:
		// Negative literal pattern.
		value := p.parseExpression(PREFIX)
		if value == nil {
			return nil
		}
		return &ast.LiteralPattern{Token: tok, Value: value}

	case lexer.IDENT:
		if tok.Literal == "_" {
			p.next()
			return &ast.WildcardPattern{Token: tok}
		}
		if p.peekIs(lexer.DOT) {
			return p.parseVariantPattern()
		}
		p.next()
		return &ast.BindingPattern{Token: tok, Name: &ast.Identifier{Token: tok, Value: tok.Literal}}

	default:
		p.addError(tok.Pos, "unexpected token %s in pattern", []string{"pattern"}, tok.Type)
		return nil
	}
}

// parseVariantPattern parses `Enum.Variant` with an optional field list:
// `Shape.Circle { radius }` or `Shape.Circle { radius: r }`.
func (p *Parser) parseVariantPattern() ast.Pattern {
	tok := p.cur()
	pattern := &ast.VariantPattern{Token: tok}

	pattern.Enum = &ast.Identifier{Token: tok, Value: tok.Literal}
	p.next()

	// Qualified enum names keep their module prefix until flattening.
	for p.curIs(lexer.DOT) && p.peek(2).Type == lexer.DOT {
		p.next()
		pattern.Enum.Value += "." + p.cur().Literal
		p.next()
	}

	if !p.expect(lexer.DOT) {
		return nil
	}
	if !p.curIs(lexer.IDENT) {
		p.expectError(lexer.IDENT)
		return nil
	}
	pattern.Variant = &ast.Identifier{Token: p.cur(), Value: p.cur().Literal}
	p.next()

	if !p.curIs(lexer.LBRACE) {
		return pattern
	}
	pattern.HasBrace = true
	p.next()

	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		if !p.curIs(lexer.IDENT) {
			p.expectError(lexer.IDENT)
			return nil
		}
		field := ast.FieldPattern{Field: &ast.Identifier{Token: p.cur(), Value: p.cur().Literal}}
		p.next()

		if p.curIs(lexer.COLON) {
			p.next()
			if !p.curIs(lexer.IDENT) {
				p.expectError(lexer.IDENT)
				return nil
			}
			field.Binding = &ast.Identifier{Token: p.cur(), Value: p.cur().Literal}
			p.next()
		}
		pattern.Fields = append(pattern.Fields, field)

		if !p.curIs(lexer.COMMA) {
			break
		}
		p.next()
	}
	if !p.expect(lexer.RBRACE) {
		return nil
	}
	return pattern
}
