package ast

import (
	"bytes"
	"strings"

	"github.com/mkerian10/pluto/internal/lexer"
)

// NamedType is a type annotation naming a declared or primitive type, with
// optional generic arguments: int, Logger, Array<int>, Map<string, User>.
type NamedType struct {
	Token    lexer.Token
	Name     string
	TypeArgs []TypeExpr
}

func (nt *NamedType) typeExprNode()        {}
func (nt *NamedType) TokenLiteral() string { return nt.Token.Literal }
func (nt *NamedType) Pos() lexer.Position  { return nt.Token.Pos }
func (nt *NamedType) String() string {
	if len(nt.TypeArgs) == 0 {
		return nt.Name
	}
	args := make([]string, len(nt.TypeArgs))
	for i, a := range nt.TypeArgs {
		args[i] = a.String()
	}
	return nt.Name + "<" + strings.Join(args, ", ") + ">"
}

// NullableType is a `T?` annotation.
type NullableType struct {
	Token lexer.Token // the '?' token
	Inner TypeExpr
}

func (nt *NullableType) typeExprNode()        {}
func (nt *NullableType) TokenLiteral() string { return nt.Token.Literal }
func (nt *NullableType) Pos() lexer.Position  { return nt.Inner.Pos() }
func (nt *NullableType) String() string       { return nt.Inner.String() + "?" }

// FunctionTypeExpr is a `fn(T1, T2) -> R` annotation.
type FunctionTypeExpr struct {
	Token  lexer.Token // the 'fn' token
	Params []TypeExpr
	Return TypeExpr // nil means void
}

func (ft *FunctionTypeExpr) typeExprNode()        {}
func (ft *FunctionTypeExpr) TokenLiteral() string { return ft.Token.Literal }
func (ft *FunctionTypeExpr) Pos() lexer.Position  { return ft.Token.Pos }
func (ft *FunctionTypeExpr) String() string {
	var out bytes.Buffer
	out.WriteString("fn(")
	for i, p := range ft.Params {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(p.String())
	}
	out.WriteString(")")
	if ft.Return != nil {
		out.WriteString(" -> ")
		out.WriteString(ft.Return.String())
	}
	return out.String()
}

// GenericParam is one declared type parameter with optional trait bounds:
// T, T: Ordered, T: A + B.
type GenericParam struct {
	Token  lexer.Token
	Name   string
	Bounds []*NamedType
}

func (gp *GenericParam) String() string {
	if len(gp.Bounds) == 0 {
		return gp.Name
	}
	bounds := make([]string, len(gp.Bounds))
	for i, b := range gp.Bounds {
		bounds[i] = b.String()
	}
	return gp.Name + ": " + strings.Join(bounds, " + ")
}

// formatGenerics renders `<T, U: Bound>` or "" for a non-generic declaration.
func formatGenerics(params []*GenericParam) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return "<" + strings.Join(parts, ", ") + ">"
}
