package parser

import (
	"strconv"

	"github.com/mkerian10/pluto/internal/ast"
	"github.com/mkerian10/pluto/internal/lexer"
)

// parseExpression parses an expression with the given minimum precedence.
func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.cur().Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.cur())
		return nil
	}
	left := prefix()

	for left != nil && precedence < p.curPrecedence() {
		infix := p.infixParseFns[p.cur().Type]
		if infix == nil {
			return left
		}
		left = infix(left)
	}

	return left
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.cur().Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) parseIdentifier() ast.Expression {
	tok := p.cur()
	p.next()

	// `Name { ... }` is a struct literal unless suppressed by a
	// control-flow header.
	if p.curIs(lexer.LBRACE) && !p.noStructLit && isTypeName(tok.Literal) {
		typ := &ast.NamedType{Token: tok, Name: tok.Literal}
		return p.parseStructLiteral(typ)
	}

	return &ast.Identifier{Token: tok, Value: tok.Literal}
}

// isTypeName reports whether an identifier names a type by convention
// (initial uppercase). Struct literals are only recognized for type names.
func isTypeName(name string) bool {
	return len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z'
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	tok := p.cur()
	p.next()

	value, err := strconv.ParseInt(tok.Literal, 10, 64)
	if err != nil {
		p.addError(tok.Pos, "could not parse %q as integer", nil, tok.Literal)
		return nil
	}
	return &ast.IntegerLiteral{Token: tok, Value: value}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	tok := p.cur()
	p.next()

	value, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil {
		p.addError(tok.Pos, "could not parse %q as float", nil, tok.Literal)
		return nil
	}
	return &ast.FloatLiteral{Token: tok, Value: value}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	tok := p.cur()
	p.next()
	return &ast.StringLiteral{Token: tok, Value: tok.Literal}
}

func (p *Parser) parseByteLiteral() ast.Expression {
	tok := p.cur()
	p.next()

	var value byte
	if len(tok.Literal) > 0 {
		value = tok.Literal[0]
	}
	return &ast.ByteLiteral{Token: tok, Value: value}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	tok := p.cur()
	p.next()
	return &ast.BooleanLiteral{Token: tok, Value: tok.Type == lexer.TRUE}
}

func (p *Parser) parseNoneLiteral() ast.Expression {
	tok := p.cur()
	p.next()
	return &ast.NoneLiteral{Token: tok}
}

func (p *Parser) parseSelfExpression() ast.Expression {
	tok := p.cur()
	p.next()
	return &ast.SelfExpression{Token: tok}
}

// parseInterpolatedString assembles STRING_SEGMENT and embedded-expression
// parts between STRING_START and STRING_END.
func (p *Parser) parseInterpolatedString() ast.Expression {
	tok := p.cur()
	p.next() // consume STRING_START

	str := &ast.InterpolatedString{Token: tok}
	for !p.curIs(lexer.STRING_END) && !p.curIs(lexer.EOF) {
		switch p.cur().Type {
		case lexer.STRING_SEGMENT:
			str.Parts = append(str.Parts, ast.StringPart{Text: p.cur().Literal})
			p.next()
		case lexer.LBRACE:
			p.next()
			wasNoStruct := p.noStructLit
			p.noStructLit = false
			expr := p.parseExpression(LOWEST)
			p.noStructLit = wasNoStruct
			if expr != nil {
				str.Parts = append(str.Parts, ast.StringPart{Expr: expr})
			}
			if !p.expect(lexer.RBRACE) {
				return str
			}
		default:
			p.addError(p.cur().Pos, "unexpected token %s in interpolated string", nil, p.cur().Type)
			p.next()
		}
	}
	p.expect(lexer.STRING_END)
	return str
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	tok := p.cur()
	p.next()

	right := p.parseExpression(PREFIX)
	if right == nil {
		return nil
	}
	return &ast.PrefixExpression{Token: tok, Operator: tok.Literal, Right: right}
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	tok := p.cur()
	precedence := p.curPrecedence()
	p.next()

	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}
	return &ast.InfixExpression{Token: tok, Left: left, Operator: tok.Literal, Right: right}
}

// parseLessOrGenericCall disambiguates `f<int>(x)` and `Map<K, V> {}` from
// the `<` comparison by speculatively scanning a type-argument list.
func (p *Parser) parseLessOrGenericCall(left ast.Expression) ast.Expression {
	if ident, ok := left.(*ast.Identifier); ok {
		m := p.mark()
		p.next() // consume '<'

		typeArgs, closed := p.tryParseTypeArgs()
		if closed {
			if p.curIs(lexer.LPAREN) {
				call := p.parseCallExpression(ident)
				if ce, ok := call.(*ast.CallExpression); ok {
					ce.TypeArgs = typeArgs
				}
				return call
			}
			if p.curIs(lexer.LBRACE) && !p.noStructLit {
				typ := &ast.NamedType{Token: ident.Token, Name: ident.Value, TypeArgs: typeArgs}
				return p.parseStructLiteral(typ)
			}
		}
		p.resetTo(m)
	}

	return p.parseInfixExpression(left)
}

// tryParseTypeArgs parses `T1, T2, ...>` after a consumed `<`. It reports
// whether the closing `>` was found; on failure the caller rewinds.
func (p *Parser) tryParseTypeArgs() ([]ast.TypeExpr, bool) {
	var args []ast.TypeExpr
	for {
		typ := p.tryParseType()
		if typ == nil {
			return nil, false
		}
		args = append(args, typ)

		switch p.cur().Type {
		case lexer.COMMA:
			p.next()
		case lexer.GREATER:
			p.next()
			return args, true
		default:
			return nil, false
		}
	}
}

// parsePropagateExpression parses postfix `!` and `?`. An optional string
// after `!` attaches diagnostic context to the propagated error.
func (p *Parser) parsePropagateExpression(left ast.Expression) ast.Expression {
	tok := p.cur()
	p.next()

	expr := &ast.PropagateExpression{Token: tok, Expr: left}
	if tok.Type == lexer.QUESTION {
		expr.Kind = ast.PropagateNone
		return expr
	}

	expr.Kind = ast.PropagateError
	if p.curIs(lexer.STRING) {
		expr.Context = p.cur().Literal
		p.next()
	}
	return expr
}

// parseCatchExpression parses `expr catch e { handler }`.
func (p *Parser) parseCatchExpression(left ast.Expression) ast.Expression {
	tok := p.cur()
	p.next() // consume 'catch'

	expr := &ast.CatchExpression{Token: tok, Expr: left}
	if p.curIs(lexer.IDENT) {
		expr.Binding = &ast.Identifier{Token: p.cur(), Value: p.cur().Literal}
		p.next()
	}

	expr.Handler = p.parseBlock()
	if expr.Handler == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseCallExpression(fn ast.Expression) ast.Expression {
	tok := p.cur()
	p.next() // consume '('

	call := &ast.CallExpression{Token: tok, Function: fn}

	wasNoStruct := p.noStructLit
	p.noStructLit = false
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		arg := p.parseExpression(LOWEST)
		if arg == nil {
			break
		}
		call.Args = append(call.Args, arg)
		if !p.curIs(lexer.COMMA) {
			break
		}
		p.next()
	}
	p.noStructLit = wasNoStruct

	if !p.expect(lexer.RPAREN) {
		return nil
	}
	return call
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	tok := p.cur()
	p.next() // consume '['

	wasNoStruct := p.noStructLit
	p.noStructLit = false
	index := p.parseExpression(LOWEST)
	p.noStructLit = wasNoStruct
	if index == nil {
		return nil
	}
	if !p.expect(lexer.RBRACK) {
		return nil
	}
	return &ast.IndexExpression{Token: tok, Left: left, Index: index}
}

func (p *Parser) parseMemberExpression(left ast.Expression) ast.Expression {
	tok := p.cur()
	p.next() // consume '.'

	if !p.curIs(lexer.IDENT) {
		p.expectError(lexer.IDENT)
		return nil
	}
	prop := &ast.Identifier{Token: p.cur(), Value: p.cur().Literal}
	p.next()

	member := &ast.MemberExpression{Token: tok, Object: left, Property: prop}

	// `Enum.Variant { ... }` and `mod.Type { ... }` construction.
	if p.curIs(lexer.LBRACE) && !p.noStructLit && isTypeName(prop.Value) {
		if prefix, ok := dottedName(left); ok {
			typ := &ast.NamedType{Token: firstToken(left), Name: prefix + "." + prop.Value}
			return p.parseStructLiteral(typ)
		}
	}
	return member
}

// dottedName renders a chain of identifiers as a dotted name, or reports
// that the expression is not such a chain.
func dottedName(expr ast.Expression) (string, bool) {
	switch e := expr.(type) {
	case *ast.Identifier:
		return e.Value, true
	case *ast.MemberExpression:
		prefix, ok := dottedName(e.Object)
		if !ok {
			return "", false
		}
		return prefix + "." + e.Property.Value, true
	}
	return "", false
}

func firstToken(expr ast.Expression) lexer.Token {
	switch e := expr.(type) {
	case *ast.Identifier:
		return e.Token
	case *ast.MemberExpression:
		return firstToken(e.Object)
	}
	return lexer.Token{}
}

// parseGroupedOrClosure disambiguates `(expr)` from `(x: T) => body` by
// scanning to the matching `)` and checking for `=>`.
func (p *Parser) parseGroupedOrClosure() ast.Expression {
	if p.closureAhead() {
		return p.parseClosureLiteral()
	}

	p.next() // consume '('
	wasNoStruct := p.noStructLit
	p.noStructLit = false
	expr := p.parseExpression(LOWEST)
	p.noStructLit = wasNoStruct
	if expr == nil {
		return nil
	}
	if !p.expect(lexer.RPAREN) {
		return nil
	}
	return expr
}

// closureAhead reports whether the current '(' begins a closure literal.
func (p *Parser) closureAhead() bool {
	depth := 0
	for i := 0; ; i++ {
		tok := p.peek(i)
		switch tok.Type {
		case lexer.LPAREN:
			depth++
		case lexer.RPAREN:
			depth--
			if depth == 0 {
				return p.peek(i + 1).Type == lexer.FAT_ARROW
			}
		case lexer.EOF:
			return false
		}
	}
}

func (p *Parser) parseClosureLiteral() ast.Expression {
	tok := p.cur()
	p.next() // consume '('

	closure := &ast.ClosureLiteral{Token: tok}
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		if !p.curIs(lexer.IDENT) {
			p.expectError(lexer.IDENT)
			return nil
		}
		param := ast.ClosureParam{Name: &ast.Identifier{Token: p.cur(), Value: p.cur().Literal}}
		p.next()
		if p.curIs(lexer.COLON) {
			p.next()
			param.Type = p.parseType()
			if param.Type == nil {
				return nil
			}
		}
		closure.Params = append(closure.Params, param)
		if !p.curIs(lexer.COMMA) {
			break
		}
		p.next()
	}
	if !p.expect(lexer.RPAREN) {
		return nil
	}
	if !p.expect(lexer.FAT_ARROW) {
		return nil
	}

	if p.curIs(lexer.LBRACE) {
		closure.Body = p.parseBlock()
	} else {
		closure.Expr = p.parseExpression(LOWEST)
	}
	if closure.Body == nil && closure.Expr == nil {
		return nil
	}
	return closure
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	tok := p.cur()
	p.next() // consume '['

	arr := &ast.ArrayLiteral{Token: tok}
	wasNoStruct := p.noStructLit
	p.noStructLit = false
	for !p.curIs(lexer.RBRACK) && !p.curIs(lexer.EOF) {
		elem := p.parseExpression(LOWEST)
		if elem == nil {
			break
		}
		arr.Elements = append(arr.Elements, elem)
		if !p.curIs(lexer.COMMA) {
			break
		}
		p.next()
	}
	p.noStructLit = wasNoStruct

	if !p.expect(lexer.RBRACK) {
		return nil
	}
	return arr
}

// parseStructLiteral parses `{ field: value, ... }` after a type name.
func (p *Parser) parseStructLiteral(typ *ast.NamedType) ast.Expression {
	tok := p.cur()
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	p.skipNewlines()

	lit := &ast.StructLiteral{Token: tok, Type: typ}
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		if !p.curIs(lexer.IDENT) {
			p.expectError(lexer.IDENT)
			return nil
		}
		field := ast.StructField{Name: &ast.Identifier{Token: p.cur(), Value: p.cur().Literal}}
		p.next()
		if !p.expect(lexer.COLON) {
			return nil
		}
		field.Value = p.parseExpression(LOWEST)
		if field.Value == nil {
			return nil
		}
		lit.Fields = append(lit.Fields, field)

		if p.curIs(lexer.COMMA) {
			p.next()
		}
		p.skipNewlines()
	}
	if !p.expect(lexer.RBRACE) {
		return nil
	}
	return lit
}

func (p *Parser) parseBlockExpression() ast.Expression {
	block := p.parseBlock()
	if block == nil {
		return nil
	}
	return &ast.BlockExpression{Block: block}
}

// parseIfExpression parses `if cond { } else if ... { } else { }`.
func (p *Parser) parseIfExpression() ast.Expression {
	tok := p.cur()
	p.next() // consume 'if'

	expr := &ast.IfExpression{Token: tok}

	wasNoStruct := p.noStructLit
	p.noStructLit = true
	expr.Cond = p.parseExpression(LOWEST)
	p.noStructLit = wasNoStruct
	if expr.Cond == nil {
		return nil
	}

	expr.Then = p.parseBlock()
	if expr.Then == nil {
		return nil
	}

	if p.curIs(lexer.ELSE) {
		p.next()
		if p.curIs(lexer.IF) {
			elseIf := p.parseIfExpression()
			if elseIf == nil {
				return nil
			}
			expr.Else = elseIf.(*ast.IfExpression)
		} else {
			expr.Else = p.parseBlock()
			if expr.Else == nil {
				return nil
			}
		}
	}
	return expr
}

// parseMatchExpression parses `match scrutinee { pattern => body ... }`.
func (p *Parser) parseMatchExpression() ast.Expression {
	tok := p.cur()
	p.next() // consume 'match'

	expr := &ast.MatchExpression{Token: tok}

	wasNoStruct := p.noStructLit
	p.noStructLit = true
	expr.Scrutinee = p.parseExpression(LOWEST)
	p.noStructLit = wasNoStruct
	if expr.Scrutinee == nil {
		return nil
	}

	if !p.expect(lexer.LBRACE) {
		return nil
	}
	p.skipNewlines()

	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		pattern := p.parsePattern()
		if pattern == nil {
			return nil
		}
		if !p.expect(lexer.FAT_ARROW) {
			return nil
		}
		body := p.parseExpression(LOWEST)
		if body == nil {
			return nil
		}
		expr.Arms = append(expr.Arms, ast.MatchArm{Pattern: pattern, Body: body})

		if p.curIs(lexer.COMMA) {
			p.next()
		}
		p.skipNewlines()
	}
	if !p.expect(lexer.RBRACE) {
		return nil
	}
	return expr
}
