package ast

import (
	"bytes"
	"strings"

	"github.com/mkerian10/pluto/internal/lexer"
)

// PrefixExpression represents a unary operation: -x, !b.
type PrefixExpression struct {
	Token    lexer.Token
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) Pos() lexer.Position  { return pe.Token.Pos }
func (pe *PrefixExpression) String() string {
	return "(" + pe.Operator + pe.Right.String() + ")"
}

// InfixExpression represents a binary operation, including `??`.
type InfixExpression struct {
	Token    lexer.Token // the operator token
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) Pos() lexer.Position  { return ie.Token.Pos }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}

// CallExpression represents a function or method call, with optional
// explicit type arguments: f(x), obj.m(x), first<int>(xs).
type CallExpression struct {
	Token    lexer.Token // the '(' token
	Function Expression  // Identifier or MemberExpression
	TypeArgs []TypeExpr
	Args     []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) Pos() lexer.Position  { return ce.Function.Pos() }
func (ce *CallExpression) String() string {
	var out bytes.Buffer
	out.WriteString(ce.Function.String())
	if len(ce.TypeArgs) > 0 {
		args := make([]string, len(ce.TypeArgs))
		for i, a := range ce.TypeArgs {
			args[i] = a.String()
		}
		out.WriteString("<" + strings.Join(args, ", ") + ">")
	}
	out.WriteString("(")
	for i, arg := range ce.Args {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(arg.String())
	}
	out.WriteString(")")
	return out.String()
}

// MemberExpression represents field or method access: obj.field.
// Before flattening it also covers module-qualified names; the flattener
// rewrites those into qualified Identifiers.
type MemberExpression struct {
	Token    lexer.Token // the '.' token
	Object   Expression
	Property *Identifier
}

func (me *MemberExpression) expressionNode()      {}
func (me *MemberExpression) TokenLiteral() string { return me.Token.Literal }
func (me *MemberExpression) Pos() lexer.Position  { return me.Object.Pos() }
func (me *MemberExpression) String() string {
	return me.Object.String() + "." + me.Property.Value
}

// IndexExpression represents container indexing: xs[i].
type IndexExpression struct {
	Token lexer.Token // the '[' token
	Left  Expression
	Index Expression
}

func (ie *IndexExpression) expressionNode()      {}
func (ie *IndexExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IndexExpression) Pos() lexer.Position  { return ie.Left.Pos() }
func (ie *IndexExpression) String() string {
	return ie.Left.String() + "[" + ie.Index.String() + "]"
}

// ArrayLiteral represents an array literal: [1, 2, 3].
type ArrayLiteral struct {
	Token    lexer.Token // the '[' token
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()      {}
func (al *ArrayLiteral) TokenLiteral() string { return al.Token.Literal }
func (al *ArrayLiteral) Pos() lexer.Position  { return al.Token.Pos }
func (al *ArrayLiteral) String() string {
	parts := make([]string, len(al.Elements))
	for i, e := range al.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// StructField is one `name: value` entry in a struct literal.
type StructField struct {
	Name  *Identifier
	Value Expression
}

// StructLiteral represents construction of a class, error, or collection
// type by name: User { name: n }, Map<string, int> {}.
type StructLiteral struct {
	Token  lexer.Token // the '{' token
	Type   *NamedType
	Fields []StructField
}

func (sl *StructLiteral) expressionNode()      {}
func (sl *StructLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StructLiteral) Pos() lexer.Position  { return sl.Type.Pos() }
func (sl *StructLiteral) String() string {
	var out bytes.Buffer
	out.WriteString(sl.Type.String())
	out.WriteString(" { ")
	for i, f := range sl.Fields {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(f.Name.Value)
		out.WriteString(": ")
		out.WriteString(f.Value.String())
	}
	if len(sl.Fields) == 0 {
		return sl.Type.String() + " {}"
	}
	out.WriteString(" }")
	return out.String()
}

// ClosureParam is one typed closure parameter.
type ClosureParam struct {
	Name *Identifier
	Type TypeExpr
}

// ClosureLiteral represents `(x: T) => expr` or `(x: T) => { block }`.
// Free variables are captured by value.
type ClosureLiteral struct {
	Token  lexer.Token // the '(' token
	Params []ClosureParam
	Body   *Block     // non-nil for block bodies
	Expr   Expression // non-nil for expression bodies
}

func (cl *ClosureLiteral) expressionNode()      {}
func (cl *ClosureLiteral) TokenLiteral() string { return cl.Token.Literal }
func (cl *ClosureLiteral) Pos() lexer.Position  { return cl.Token.Pos }
func (cl *ClosureLiteral) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	for i, p := range cl.Params {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(p.Name.Value)
		if p.Type != nil {
			out.WriteString(": " + p.Type.String())
		}
	}
	out.WriteString(") => ")
	if cl.Body != nil {
		out.WriteString(cl.Body.String())
	} else {
		out.WriteString(cl.Expr.String())
	}
	return out.String()
}

// IfExpression represents `if cond { } else { }`. In expression position
// the branch blocks' last expressions are the values.
type IfExpression struct {
	Token lexer.Token // the 'if' token
	Cond  Expression
	Then  *Block
	Else  Statement // *Block, *IfExpression for an else-if chain, or nil
}

func (ie *IfExpression) expressionNode()      {}
func (ie *IfExpression) statementNode()       {}
func (ie *IfExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IfExpression) Pos() lexer.Position  { return ie.Token.Pos }
func (ie *IfExpression) String() string {
	var out bytes.Buffer
	out.WriteString("if ")
	out.WriteString(ie.Cond.String())
	out.WriteString(" ")
	out.WriteString(ie.Then.String())
	if ie.Else != nil {
		out.WriteString(" else ")
		out.WriteString(ie.Else.String())
	}
	return out.String()
}

// MatchArm is one `pattern => body` arm of a match expression.
type MatchArm struct {
	Pattern Pattern
	Body    Expression
}

// MatchExpression represents `match scrutinee { arms }`.
type MatchExpression struct {
	Token     lexer.Token // the 'match' token
	Scrutinee Expression
	Arms      []MatchArm
}

func (me *MatchExpression) expressionNode()      {}
func (me *MatchExpression) statementNode()       {}
func (me *MatchExpression) TokenLiteral() string { return me.Token.Literal }
func (me *MatchExpression) Pos() lexer.Position  { return me.Token.Pos }
func (me *MatchExpression) String() string {
	var out bytes.Buffer
	out.WriteString("match ")
	out.WriteString(me.Scrutinee.String())
	out.WriteString(" {\n")
	for _, arm := range me.Arms {
		out.WriteString("  ")
		out.WriteString(arm.Pattern.String())
		out.WriteString(" => ")
		out.WriteString(strings.ReplaceAll(arm.Body.String(), "\n", "\n  "))
		out.WriteString("\n")
	}
	out.WriteString("}")
	return out.String()
}

// PropagateKind distinguishes `!` (error propagation) from `?` (nullable
// propagation).
type PropagateKind int

const (
	PropagateError PropagateKind = iota // expr!
	PropagateNone                       // expr?
)

// PropagateExpression represents `expr!`, `expr! "context"`, or `expr?`.
type PropagateExpression struct {
	Token   lexer.Token // the '!' or '?' token
	Expr    Expression
	Kind    PropagateKind
	Context string // optional diagnostic context after `!`
}

func (pe *PropagateExpression) expressionNode()      {}
func (pe *PropagateExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PropagateExpression) Pos() lexer.Position  { return pe.Expr.Pos() }
func (pe *PropagateExpression) String() string {
	if pe.Kind == PropagateNone {
		return pe.Expr.String() + "?"
	}
	if pe.Context != "" {
		return pe.Expr.String() + "! \"" + escapeText(pe.Context, '"') + "\""
	}
	return pe.Expr.String() + "!"
}

// CatchExpression represents `expr catch e { handler }`. The handler block's
// value is the expression's value when expr raises.
type CatchExpression struct {
	Token   lexer.Token // the 'catch' token
	Expr    Expression
	Binding *Identifier // error binding; may be nil for `catch { ... }`
	Handler *Block
}

func (ce *CatchExpression) expressionNode()      {}
func (ce *CatchExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CatchExpression) Pos() lexer.Position  { return ce.Expr.Pos() }
func (ce *CatchExpression) String() string {
	var out bytes.Buffer
	out.WriteString(ce.Expr.String())
	out.WriteString(" catch ")
	if ce.Binding != nil {
		out.WriteString(ce.Binding.Value)
		out.WriteString(" ")
	}
	out.WriteString(ce.Handler.String())
	return out.String()
}

// BlockExpression wraps a block used in expression position; the last
// expression statement is its value.
type BlockExpression struct {
	Block *Block
}

func (be *BlockExpression) expressionNode()      {}
func (be *BlockExpression) TokenLiteral() string { return be.Block.TokenLiteral() }
func (be *BlockExpression) Pos() lexer.Position  { return be.Block.Pos() }
func (be *BlockExpression) String() string       { return be.Block.String() }
