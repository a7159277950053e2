package ast

import (
	"bytes"

	"github.com/mkerian10/pluto/internal/lexer"
)

// LetStatement represents `let x = expr` / `let mut x: T = expr`.
type LetStatement struct {
	Token   lexer.Token // the 'let' token
	Mutable bool
	Name    *Identifier
	Type    TypeExpr // optional annotation
	Value   Expression
}

func (ls *LetStatement) statementNode()       {}
func (ls *LetStatement) TokenLiteral() string { return ls.Token.Literal }
func (ls *LetStatement) Pos() lexer.Position  { return ls.Token.Pos }
func (ls *LetStatement) String() string {
	var out bytes.Buffer
	out.WriteString("let ")
	if ls.Mutable {
		out.WriteString("mut ")
	}
	out.WriteString(ls.Name.Value)
	if ls.Type != nil {
		out.WriteString(": ")
		out.WriteString(ls.Type.String())
	}
	out.WriteString(" = ")
	out.WriteString(ls.Value.String())
	return out.String()
}

// AssignStatement represents `target = v` and the compound forms
// `+= -= *= /=`. Assignment is statement-only and right-associative.
type AssignStatement struct {
	Token    lexer.Token // the operator token
	Target   Expression  // Identifier, MemberExpression, or IndexExpression
	Operator string
	Value    Expression
}

func (as *AssignStatement) statementNode()       {}
func (as *AssignStatement) TokenLiteral() string { return as.Token.Literal }
func (as *AssignStatement) Pos() lexer.Position  { return as.Target.Pos() }
func (as *AssignStatement) String() string {
	return as.Target.String() + " " + as.Operator + " " + as.Value.String()
}

// ReturnStatement represents `return` / `return expr`.
type ReturnStatement struct {
	Token lexer.Token
	Value Expression // nil for bare return
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) Pos() lexer.Position  { return rs.Token.Pos }
func (rs *ReturnStatement) String() string {
	if rs.Value == nil {
		return "return"
	}
	return "return " + rs.Value.String()
}

// RaiseStatement represents `raise ErrName { field: v }`.
type RaiseStatement struct {
	Token lexer.Token
	Value Expression
}

func (rs *RaiseStatement) statementNode()       {}
func (rs *RaiseStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *RaiseStatement) Pos() lexer.Position  { return rs.Token.Pos }
func (rs *RaiseStatement) String() string {
	return "raise " + rs.Value.String()
}

// ExpressionStatement wraps an expression in statement position.
type ExpressionStatement struct {
	Token      lexer.Token
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) Pos() lexer.Position  { return es.Token.Pos }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String()
	}
	return ""
}

// ForStatement represents `for x in iterable { body }`. The loop variable
// is an implicitly mutable binding.
type ForStatement struct {
	Token    lexer.Token // the 'for' token
	Variable *Identifier
	Iterable Expression
	Body     *Block
}

func (fs *ForStatement) statementNode()       {}
func (fs *ForStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *ForStatement) Pos() lexer.Position  { return fs.Token.Pos }
func (fs *ForStatement) String() string {
	return "for " + fs.Variable.Value + " in " + fs.Iterable.String() + " " + fs.Body.String()
}

// WhileStatement represents `while cond { body }`.
type WhileStatement struct {
	Token lexer.Token
	Cond  Expression
	Body  *Block
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Literal }
func (ws *WhileStatement) Pos() lexer.Position  { return ws.Token.Pos }
func (ws *WhileStatement) String() string {
	return "while " + ws.Cond.String() + " " + ws.Body.String()
}

// LoopStatement represents `loop { body }`.
type LoopStatement struct {
	Token lexer.Token
	Body  *Block
}

func (ls *LoopStatement) statementNode()       {}
func (ls *LoopStatement) TokenLiteral() string { return ls.Token.Literal }
func (ls *LoopStatement) Pos() lexer.Position  { return ls.Token.Pos }
func (ls *LoopStatement) String() string {
	return "loop " + ls.Body.String()
}

// BreakStatement represents `break`.
type BreakStatement struct {
	Token lexer.Token
}

func (bs *BreakStatement) statementNode()       {}
func (bs *BreakStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BreakStatement) Pos() lexer.Position  { return bs.Token.Pos }
func (bs *BreakStatement) String() string       { return "break" }

// ContinueStatement represents `continue`.
type ContinueStatement struct {
	Token lexer.Token
}

func (cs *ContinueStatement) statementNode()       {}
func (cs *ContinueStatement) TokenLiteral() string { return cs.Token.Literal }
func (cs *ContinueStatement) Pos() lexer.Position  { return cs.Token.Pos }
func (cs *ContinueStatement) String() string       { return "continue" }
