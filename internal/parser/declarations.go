package parser

import (
	"github.com/mkerian10/pluto/internal/ast"
	"github.com/mkerian10/pluto/internal/lexer"
)

// parseImport parses `import a.b.c` / `import a.b.c as alias`.
func (p *Parser) parseImport() *ast.ImportDecl {
	tok := p.cur()
	p.next() // consume 'import'

	if !p.curIs(lexer.IDENT) {
		p.expectError(lexer.IDENT)
		p.synchronize()
		return nil
	}

	imp := &ast.ImportDecl{Token: tok, Path: p.cur().Literal}
	p.next()
	for p.curIs(lexer.DOT) {
		p.next()
		if !p.curIs(lexer.IDENT) {
			p.expectError(lexer.IDENT)
			p.synchronize()
			return nil
		}
		imp.Path += "." + p.cur().Literal
		p.next()
	}

	if p.curIs(lexer.AS) {
		p.next()
		if !p.curIs(lexer.IDENT) {
			p.expectError(lexer.IDENT)
			p.synchronize()
			return nil
		}
		imp.Alias = p.cur().Literal
		p.next()
	}

	p.endStatement()
	return imp
}

// parseDeclaration parses one top-level declaration.
func (p *Parser) parseDeclaration() ast.Declaration {
	pub := false
	if p.curIs(lexer.PUB) {
		pub = true
		p.next()
	}

	switch p.cur().Type {
	case lexer.FN:
		fn := p.parseFunctionDecl(false)
		if fn == nil {
			return nil
		}
		fn.Pub = pub
		return fn
	case lexer.CLASS:
		return p.parseClassDecl(pub)
	case lexer.TRAIT:
		return p.parseTraitDecl(pub)
	case lexer.ENUM:
		return p.parseEnumDecl(pub)
	case lexer.ERROR:
		return p.parseErrorDecl(pub)
	case lexer.APP:
		if pub {
			p.addError(p.cur().Pos, "app declaration cannot be pub", nil)
		}
		return p.parseAppDecl()
	case lexer.EXTERN:
		return p.parseExternDecl(pub)
	case lexer.LET:
		return p.parseConstDecl(pub)
	default:
		p.addError(p.cur().Pos, "unexpected token %s at top level", []string{"declaration"}, p.cur().Type)
		p.next()
		p.synchronize()
		return nil
	}
}

// parseFunctionDecl parses a function or method. When method is true a
// `self` / `mut self` receiver is permitted as the first parameter. The
// return type, when present, follows the parameter list directly.
func (p *Parser) parseFunctionDecl(method bool) *ast.FunctionDecl {
	tok := p.cur()
	p.next() // consume 'fn'

	if !p.curIs(lexer.IDENT) {
		p.expectError(lexer.IDENT)
		p.synchronize()
		return nil
	}
	fn := &ast.FunctionDecl{Token: tok, Name: &ast.Identifier{Token: p.cur(), Value: p.cur().Literal}}
	p.next()

	fn.Generics = p.parseGenericParams()

	if !p.expect(lexer.LPAREN) {
		p.synchronize()
		return nil
	}

	// Receiver.
	if p.curIs(lexer.MUT) && p.peekIs(lexer.SELF) {
		fn.Receiver = ast.ReceiverMutSelf
		p.next()
		p.next()
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	} else if p.curIs(lexer.SELF) {
		fn.Receiver = ast.ReceiverSelf
		p.next()
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	if fn.Receiver != ast.ReceiverNone && !method {
		p.addError(tok.Pos, "receiver on a free function", nil)
	}

	fn.Params = p.parseParamList()

	if !p.expect(lexer.RPAREN) {
		p.synchronize()
		return nil
	}

	if !p.curIs(lexer.LBRACE) && !p.curIs(lexer.NEWLINE) && !p.curIs(lexer.EOF) && !p.curIs(lexer.RBRACE) {
		fn.Return = p.parseType()
	}

	if p.curIs(lexer.LBRACE) {
		fn.Body = p.parseBlock()
		if fn.Body == nil {
			return nil
		}
	}
	p.endStatement()
	return fn
}

// parseParamList parses `name: Type` pairs up to the closing paren.
func (p *Parser) parseParamList() []ast.Param {
	var params []ast.Param
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		if !p.curIs(lexer.IDENT) {
			p.expectError(lexer.IDENT)
			return params
		}
		param := ast.Param{Name: &ast.Identifier{Token: p.cur(), Value: p.cur().Literal}}
		p.next()
		if !p.expect(lexer.COLON) {
			return params
		}
		param.Type = p.parseType()
		if param.Type == nil {
			return params
		}
		params = append(params, param)
		if !p.curIs(lexer.COMMA) {
			break
		}
		p.next()
	}
	return params
}

// parseTypeList parses comma-separated named types (uses, impl, ambient).
func (p *Parser) parseTypeList() []*ast.NamedType {
	var list []*ast.NamedType
	for {
		typ := p.tryParseType()
		named, ok := typ.(*ast.NamedType)
		if !ok {
			p.addError(p.cur().Pos, "expected type name", []string{"type"})
			return list
		}
		list = append(list, named)
		if !p.curIs(lexer.COMMA) {
			return list
		}
		p.next()
	}
}

// parseDepList parses `[name: Type, ...]` bracket dependencies.
func (p *Parser) parseDepList() []ast.DepField {
	p.next() // consume '['

	var deps []ast.DepField
	for !p.curIs(lexer.RBRACK) && !p.curIs(lexer.EOF) {
		if !p.curIs(lexer.IDENT) {
			p.expectError(lexer.IDENT)
			return deps
		}
		dep := ast.DepField{Name: &ast.Identifier{Token: p.cur(), Value: p.cur().Literal}}
		p.next()
		if !p.expect(lexer.COLON) {
			return deps
		}
		typ := p.tryParseType()
		named, ok := typ.(*ast.NamedType)
		if !ok {
			p.addError(p.cur().Pos, "dependency type must be a class name", []string{"type"})
			return deps
		}
		dep.Type = named
		deps = append(deps, dep)
		if !p.curIs(lexer.COMMA) {
			break
		}
		p.next()
	}
	p.expect(lexer.RBRACK)
	return deps
}

// parseClassDecl parses a class declaration:
// class Name<T> uses A, B [dep: T] impl Tr1, Tr2 { fields methods }
func (p *Parser) parseClassDecl(pub bool) ast.Declaration {
	tok := p.cur()
	p.next() // consume 'class'

	if !p.curIs(lexer.IDENT) {
		p.expectError(lexer.IDENT)
		p.synchronize()
		return nil
	}
	class := &ast.ClassDecl{Token: tok, Name: &ast.Identifier{Token: p.cur(), Value: p.cur().Literal}}
	class.Pub = pub
	p.next()

	class.Generics = p.parseGenericParams()

	if p.curIs(lexer.USES) {
		p.next()
		class.Uses = p.parseTypeList()
	}
	if p.curIs(lexer.LBRACK) {
		class.BracketDeps = p.parseDepList()
	}
	if p.curIs(lexer.IMPL) {
		p.next()
		class.Impls = p.parseTypeList()
	}

	if !p.expect(lexer.LBRACE) {
		p.synchronize()
		return nil
	}
	p.skipNewlines()

	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		switch p.cur().Type {
		case lexer.FN:
			if m := p.parseFunctionDecl(true); m != nil {
				class.Methods = append(class.Methods, m)
			}
		case lexer.IDENT:
			field := p.parseFieldDecl()
			if field != nil {
				class.Fields = append(class.Fields, field)
			}
		default:
			p.addError(p.cur().Pos, "unexpected token %s in class body", []string{"field", "fn"}, p.cur().Type)
			p.synchronize()
		}
		p.skipNewlines()
	}
	p.expect(lexer.RBRACE)
	p.endStatement()
	return class
}

// parseFieldDecl parses `name: Type` inside a class or error body.
func (p *Parser) parseFieldDecl() *ast.FieldDecl {
	field := &ast.FieldDecl{Name: &ast.Identifier{Token: p.cur(), Value: p.cur().Literal}}
	p.next()
	if !p.expect(lexer.COLON) {
		p.synchronize()
		return nil
	}
	field.Type = p.parseType()
	if field.Type == nil {
		p.synchronize()
		return nil
	}
	p.endStatement()
	return field
}

// parseTraitDecl parses a trait: method signatures, optionally with default
// bodies.
func (p *Parser) parseTraitDecl(pub bool) ast.Declaration {
	tok := p.cur()
	p.next() // consume 'trait'

	if !p.curIs(lexer.IDENT) {
		p.expectError(lexer.IDENT)
		p.synchronize()
		return nil
	}
	trait := &ast.TraitDecl{Token: tok, Name: &ast.Identifier{Token: p.cur(), Value: p.cur().Literal}}
	trait.Pub = pub
	p.next()

	trait.Generics = p.parseGenericParams()

	if !p.expect(lexer.LBRACE) {
		p.synchronize()
		return nil
	}
	p.skipNewlines()
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		if !p.curIs(lexer.FN) {
			p.addError(p.cur().Pos, "unexpected token %s in trait body", []string{"fn"}, p.cur().Type)
			p.synchronize()
			p.skipNewlines()
			continue
		}
		if m := p.parseFunctionDecl(true); m != nil {
			trait.Methods = append(trait.Methods, m)
		}
		p.skipNewlines()
	}
	p.expect(lexer.RBRACE)
	p.endStatement()
	return trait
}

// parseEnumDecl parses an enum: unit variants and record variants.
func (p *Parser) parseEnumDecl(pub bool) ast.Declaration {
	tok := p.cur()
	p.next() // consume 'enum'

	if !p.curIs(lexer.IDENT) {
		p.expectError(lexer.IDENT)
		p.synchronize()
		return nil
	}
	enum := &ast.EnumDecl{Token: tok, Name: &ast.Identifier{Token: p.cur(), Value: p.cur().Literal}}
	enum.Pub = pub
	p.next()

	enum.Generics = p.parseGenericParams()

	if !p.expect(lexer.LBRACE) {
		p.synchronize()
		return nil
	}
	p.skipNewlines()
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		if !p.curIs(lexer.IDENT) {
			p.expectError(lexer.IDENT)
			p.synchronize()
			p.skipNewlines()
			continue
		}
		variant := &ast.EnumVariant{Name: &ast.Identifier{Token: p.cur(), Value: p.cur().Literal}}
		p.next()

		if p.curIs(lexer.LBRACE) {
			p.next()
			p.skipNewlines()
			for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
				if !p.curIs(lexer.IDENT) {
					p.expectError(lexer.IDENT)
					break
				}
				field := &ast.FieldDecl{Name: &ast.Identifier{Token: p.cur(), Value: p.cur().Literal}}
				p.next()
				if !p.expect(lexer.COLON) {
					break
				}
				field.Type = p.parseType()
				if field.Type == nil {
					break
				}
				variant.Fields = append(variant.Fields, field)
				if p.curIs(lexer.COMMA) {
					p.next()
				}
				p.skipNewlines()
			}
			p.expect(lexer.RBRACE)
		}

		enum.Variants = append(enum.Variants, variant)
		if p.curIs(lexer.COMMA) {
			p.next()
		}
		p.skipNewlines()
	}
	p.expect(lexer.RBRACE)
	p.endStatement()
	return enum
}

// parseErrorDecl parses `error Name { fields }`.
func (p *Parser) parseErrorDecl(pub bool) ast.Declaration {
	tok := p.cur()
	p.next() // consume 'error'

	if !p.curIs(lexer.IDENT) {
		p.expectError(lexer.IDENT)
		p.synchronize()
		return nil
	}
	decl := &ast.ErrorDecl{Token: tok, Name: &ast.Identifier{Token: p.cur(), Value: p.cur().Literal}}
	decl.Pub = pub
	p.next()

	if !p.expect(lexer.LBRACE) {
		p.synchronize()
		return nil
	}
	p.skipNewlines()
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		if !p.curIs(lexer.IDENT) {
			p.expectError(lexer.IDENT)
			p.synchronize()
			p.skipNewlines()
			continue
		}
		if field := p.parseFieldDecl(); field != nil {
			decl.Fields = append(decl.Fields, field)
		}
		p.skipNewlines()
	}
	p.expect(lexer.RBRACE)
	p.endStatement()
	return decl
}

// parseAppDecl parses the app singleton: bracket deps, ambient
// registrations, and methods.
func (p *Parser) parseAppDecl() ast.Declaration {
	tok := p.cur()
	p.next() // consume 'app'

	if !p.curIs(lexer.IDENT) {
		p.expectError(lexer.IDENT)
		p.synchronize()
		return nil
	}
	appDecl := &ast.AppDecl{Token: tok, Name: &ast.Identifier{Token: p.cur(), Value: p.cur().Literal}}
	p.next()

	if p.curIs(lexer.LBRACK) {
		appDecl.BracketDeps = p.parseDepList()
	}

	if !p.expect(lexer.LBRACE) {
		p.synchronize()
		return nil
	}
	p.skipNewlines()
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		switch p.cur().Type {
		case lexer.AMBIENT:
			p.next()
			appDecl.Ambients = append(appDecl.Ambients, p.parseTypeList()...)
			p.endStatement()
		case lexer.FN:
			if m := p.parseFunctionDecl(true); m != nil {
				appDecl.Methods = append(appDecl.Methods, m)
			}
		default:
			p.addError(p.cur().Pos, "unexpected token %s in app body", []string{"ambient", "fn"}, p.cur().Type)
			p.synchronize()
		}
		p.skipNewlines()
	}
	p.expect(lexer.RBRACE)
	p.endStatement()
	return appDecl
}

// parseExternDecl parses `extern fn name(params) Ret`.
func (p *Parser) parseExternDecl(pub bool) ast.Declaration {
	tok := p.cur()
	p.next() // consume 'extern'

	if !p.expect(lexer.FN) {
		p.synchronize()
		return nil
	}
	if !p.curIs(lexer.IDENT) {
		p.expectError(lexer.IDENT)
		p.synchronize()
		return nil
	}
	decl := &ast.ExternFunctionDecl{Token: tok, Name: &ast.Identifier{Token: p.cur(), Value: p.cur().Literal}}
	decl.Pub = pub
	p.next()

	if !p.expect(lexer.LPAREN) {
		p.synchronize()
		return nil
	}
	decl.Params = p.parseParamList()
	if !p.expect(lexer.RPAREN) {
		p.synchronize()
		return nil
	}
	if !p.curIs(lexer.NEWLINE) && !p.curIs(lexer.EOF) && !p.curIs(lexer.RBRACE) {
		decl.Return = p.parseType()
	}
	p.endStatement()
	return decl
}

// parseConstDecl parses a module-level `let` constant.
func (p *Parser) parseConstDecl(pub bool) ast.Declaration {
	tok := p.cur()
	p.next() // consume 'let'

	if p.curIs(lexer.MUT) {
		p.addError(p.cur().Pos, "module-level let cannot be mut", nil)
		p.next()
	}
	if !p.curIs(lexer.IDENT) {
		p.expectError(lexer.IDENT)
		p.synchronize()
		return nil
	}
	decl := &ast.ConstDecl{Token: tok, Name: &ast.Identifier{Token: p.cur(), Value: p.cur().Literal}}
	decl.Pub = pub
	p.next()

	if p.curIs(lexer.COLON) {
		p.next()
		decl.Type = p.parseType()
		if decl.Type == nil {
			p.synchronize()
			return nil
		}
	}
	if !p.expect(lexer.ASSIGN) {
		p.synchronize()
		return nil
	}
	decl.Value = p.parseExpression(LOWEST)
	if decl.Value == nil {
		p.synchronize()
		return nil
	}
	p.endStatement()
	return decl
}
