package parser

import (
	"github.com/mkerian10/pluto/internal/ast"
	"github.com/mkerian10/pluto/internal/lexer"
)

// parseBlock parses `{ statements }`.
func (p *Parser) parseBlock() *ast.Block {
	tok := p.cur()
	if !p.expect(lexer.LBRACE) {
		return nil
	}

	block := &ast.Block{Token: tok}
	p.skipNewlines()
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.skipNewlines()
	}
	if !p.expect(lexer.RBRACE) {
		return nil
	}
	return block
}

// parseStatement parses one statement and its terminator.
func (p *Parser) parseStatement() ast.Statement {
	switch p.cur().Type {
	case lexer.LET:
		return p.parseLetStatement()
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.RAISE:
		return p.parseRaiseStatement()
	case lexer.FOR:
		return p.parseForStatement()
	case lexer.WHILE:
		return p.parseWhileStatement()
	case lexer.LOOP:
		return p.parseLoopStatement()
	case lexer.BREAK:
		tok := p.cur()
		p.next()
		p.endStatement()
		return &ast.BreakStatement{Token: tok}
	case lexer.CONTINUE:
		tok := p.cur()
		p.next()
		p.endStatement()
		return &ast.ContinueStatement{Token: tok}
	default:
		return p.parseExpressionOrAssignStatement()
	}
}

func (p *Parser) parseLetStatement() ast.Statement {
	tok := p.cur()
	p.next() // consume 'let'

	stmt := &ast.LetStatement{Token: tok}
	if p.curIs(lexer.MUT) {
		stmt.Mutable = true
		p.next()
	}

	if !p.curIs(lexer.IDENT) {
		p.expectError(lexer.IDENT)
		p.synchronize()
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.cur(), Value: p.cur().Literal}
	p.next()

	if p.curIs(lexer.COLON) {
		p.next()
		stmt.Type = p.parseType()
		if stmt.Type == nil {
			p.synchronize()
			return nil
		}
	}

	if !p.expect(lexer.ASSIGN) {
		p.synchronize()
		return nil
	}

	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		p.synchronize()
		return nil
	}
	p.endStatement()
	return stmt
}

func (p *Parser) parseReturnStatement() ast.Statement {
	tok := p.cur()
	p.next() // consume 'return'

	stmt := &ast.ReturnStatement{Token: tok}
	if !p.curIs(lexer.NEWLINE) && !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		stmt.Value = p.parseExpression(LOWEST)
	}
	p.endStatement()
	return stmt
}

func (p *Parser) parseRaiseStatement() ast.Statement {
	tok := p.cur()
	p.next() // consume 'raise'

	stmt := &ast.RaiseStatement{Token: tok}
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		p.synchronize()
		return nil
	}
	p.endStatement()
	return stmt
}

func (p *Parser) parseForStatement() ast.Statement {
	tok := p.cur()
	p.next() // consume 'for'

	stmt := &ast.ForStatement{Token: tok}
	if !p.curIs(lexer.IDENT) {
		p.expectError(lexer.IDENT)
		p.synchronize()
		return nil
	}
	stmt.Variable = &ast.Identifier{Token: p.cur(), Value: p.cur().Literal}
	p.next()

	if !p.expect(lexer.IN) {
		p.synchronize()
		return nil
	}

	wasNoStruct := p.noStructLit
	p.noStructLit = true
	stmt.Iterable = p.parseExpression(LOWEST)
	p.noStructLit = wasNoStruct
	if stmt.Iterable == nil {
		p.synchronize()
		return nil
	}

	stmt.Body = p.parseBlock()
	if stmt.Body == nil {
		return nil
	}
	p.endStatement()
	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	tok := p.cur()
	p.next() // consume 'while'

	stmt := &ast.WhileStatement{Token: tok}

	wasNoStruct := p.noStructLit
	p.noStructLit = true
	stmt.Cond = p.parseExpression(LOWEST)
	p.noStructLit = wasNoStruct
	if stmt.Cond == nil {
		p.synchronize()
		return nil
	}

	stmt.Body = p.parseBlock()
	if stmt.Body == nil {
		return nil
	}
	p.endStatement()
	return stmt
}

func (p *Parser) parseLoopStatement() ast.Statement {
	tok := p.cur()
	p.next() // consume 'loop'

	stmt := &ast.LoopStatement{Token: tok}
	stmt.Body = p.parseBlock()
	if stmt.Body == nil {
		return nil
	}
	p.endStatement()
	return stmt
}

// assignOps maps assignment operator tokens to their spellings.
var assignOps = map[lexer.TokenType]string{
	lexer.ASSIGN:          "=",
	lexer.PLUS_ASSIGN:     "+=",
	lexer.MINUS_ASSIGN:    "-=",
	lexer.ASTERISK_ASSIGN: "*=",
	lexer.SLASH_ASSIGN:    "/=",
}

// parseExpressionOrAssignStatement parses either an expression statement or
// an assignment. Assignment is statement-only; the target must be an
// identifier, member access, or index expression.
func (p *Parser) parseExpressionOrAssignStatement() ast.Statement {
	tok := p.cur()
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		p.synchronize()
		return nil
	}

	if op, ok := assignOps[p.cur().Type]; ok {
		opTok := p.cur()
		p.next()

		switch expr.(type) {
		case *ast.Identifier, *ast.MemberExpression, *ast.IndexExpression:
		default:
			p.addError(opTok.Pos, "invalid assignment target", nil)
		}

		value := p.parseExpression(LOWEST)
		if value == nil {
			p.synchronize()
			return nil
		}
		p.endStatement()
		return &ast.AssignStatement{Token: opTok, Target: expr, Operator: op, Value: value}
	}

	p.endStatement()
	switch e := expr.(type) {
	case *ast.IfExpression:
		return e
	case *ast.MatchExpression:
		return e
	}
	return &ast.ExpressionStatement{Token: tok, Expression: expr}
}
