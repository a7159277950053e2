package parser

import (
	"github.com/mkerian10/pluto/internal/ast"
	"github.com/mkerian10/pluto/internal/lexer"
)

// parseType parses a type annotation, recording an error on failure.
func (p *Parser) parseType() ast.TypeExpr {
	typ := p.tryParseType()
	if typ == nil {
		p.addError(p.cur().Pos, "expected type, got %s", []string{"type"}, p.cur().Type)
	}
	return typ
}

// tryParseType parses a type annotation, returning nil without recording an
// error so speculative callers can rewind.
func (p *Parser) tryParseType() ast.TypeExpr {
	var typ ast.TypeExpr

	switch {
	case lexer.IsTypeKeyword(p.cur().Type):
		typ = &ast.NamedType{Token: p.cur(), Name: p.cur().Literal}
		p.next()
	case p.curIs(lexer.SELF_TYPE):
		typ = &ast.NamedType{Token: p.cur(), Name: "Self"}
		p.next()
	case p.curIs(lexer.FN):
		typ = p.tryParseFunctionType()
		if typ == nil {
			return nil
		}
	case p.curIs(lexer.IDENT):
		named := &ast.NamedType{Token: p.cur(), Name: p.cur().Literal}
		p.next()

		// Qualified name: module.Type.
		for p.curIs(lexer.DOT) && p.peekIs(lexer.IDENT) {
			p.next()
			named.Name += "." + p.cur().Literal
			p.next()
		}

		if p.curIs(lexer.LESS) {
			m := p.mark()
			p.next()
			args, closed := p.tryParseTypeArgs()
			if !closed {
				p.resetTo(m)
				return nil
			}
			named.TypeArgs = args
		}
		typ = named
	default:
		return nil
	}

	// `?` suffix for nullable types. A doubled suffix lexes as the `??`
	// operator token; unfold it so the checker can reject the nesting.
	for {
		switch {
		case p.curIs(lexer.QUESTION):
			tok := p.cur()
			p.next()
			typ = &ast.NullableType{Token: tok, Inner: typ}
		case p.curIs(lexer.QUESTION_QUESTION):
			tok := p.cur()
			p.next()
			typ = &ast.NullableType{Token: tok, Inner: &ast.NullableType{Token: tok, Inner: typ}}
		default:
			return typ
		}
	}
}

// tryParseFunctionType parses `fn(T1, T2) -> R`.
func (p *Parser) tryParseFunctionType() ast.TypeExpr {
	tok := p.cur()
	p.next() // consume 'fn'

	if !p.curIs(lexer.LPAREN) {
		return nil
	}
	p.next()

	ft := &ast.FunctionTypeExpr{Token: tok}
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		param := p.tryParseType()
		if param == nil {
			return nil
		}
		ft.Params = append(ft.Params, param)
		if !p.curIs(lexer.COMMA) {
			break
		}
		p.next()
	}
	if !p.curIs(lexer.RPAREN) {
		return nil
	}
	p.next()

	if p.curIs(lexer.ARROW) {
		p.next()
		ft.Return = p.tryParseType()
		if ft.Return == nil {
			return nil
		}
	}
	return ft
}

// parseGenericParams parses `<T, U: Bound + Bound>` after a declaration
// name, or returns nil when no generic list is present.
func (p *Parser) parseGenericParams() []*ast.GenericParam {
	if !p.curIs(lexer.LESS) {
		return nil
	}
	p.next()

	var params []*ast.GenericParam
	for !p.curIs(lexer.GREATER) && !p.curIs(lexer.EOF) {
		if !p.curIs(lexer.IDENT) {
			p.expectError(lexer.IDENT)
			return params
		}
		param := &ast.GenericParam{Token: p.cur(), Name: p.cur().Literal}
		p.next()

		if p.curIs(lexer.COLON) {
			p.next()
			for {
				bound := p.tryParseType()
				named, ok := bound.(*ast.NamedType)
				if !ok {
					p.addError(p.cur().Pos, "generic bound must be a trait name", []string{"trait"})
					return params
				}
				param.Bounds = append(param.Bounds, named)
				if !p.curIs(lexer.PLUS) {
					break
				}
				p.next()
			}
		}
		params = append(params, param)

		if !p.curIs(lexer.COMMA) {
			break
		}
		p.next()
	}
	p.expect(lexer.GREATER)
	return params
}
