package ast

import (
	"bytes"
	"strings"

	"github.com/mkerian10/pluto/internal/lexer"
)

// FieldPattern is one field of a variant pattern: `field` binds the field
// under its own name, `field: binding` binds it under another.
type FieldPattern struct {
	Field   *Identifier
	Binding *Identifier // nil when the field name itself is the binding
}

func (fp FieldPattern) String() string {
	if fp.Binding == nil {
		return fp.Field.Value
	}
	return fp.Field.Value + ": " + fp.Binding.Value
}

// VariantPattern matches one enum variant: `Color.Red` or
// `Shape.Circle { radius }`.
type VariantPattern struct {
	Token    lexer.Token
	Enum     *Identifier // enum name; qualified after flattening
	Variant  *Identifier
	Fields   []FieldPattern
	HasBrace bool // distinguishes `V {}` from `V`
}

func (vp *VariantPattern) patternNode()         {}
func (vp *VariantPattern) TokenLiteral() string { return vp.Token.Literal }
func (vp *VariantPattern) Pos() lexer.Position  { return vp.Token.Pos }
func (vp *VariantPattern) String() string {
	var out bytes.Buffer
	out.WriteString(vp.Enum.Value)
	out.WriteString(".")
	out.WriteString(vp.Variant.Value)
	if vp.HasBrace {
		parts := make([]string, len(vp.Fields))
		for i, f := range vp.Fields {
			parts[i] = f.String()
		}
		out.WriteString(" { " + strings.Join(parts, ", ") + " }")
	}
	return out.String()
}

// LiteralPattern matches a literal value (int, string, bool, byte).
type LiteralPattern struct {
	Token lexer.Token
	Value Expression
}

func (lp *LiteralPattern) patternNode()         {}
func (lp *LiteralPattern) TokenLiteral() string { return lp.Token.Literal }
func (lp *LiteralPattern) Pos() lexer.Position  { return lp.Token.Pos }
func (lp *LiteralPattern) String() string       { return lp.Value.String() }

// NonePattern matches the none value of a nullable scrutinee.
type NonePattern struct {
	Token lexer.Token
}

func (np *NonePattern) patternNode()         {}
func (np *NonePattern) TokenLiteral() string { return np.Token.Literal }
func (np *NonePattern) Pos() lexer.Position  { return np.Token.Pos }
func (np *NonePattern) String() string       { return "none" }

// BindingPattern matches anything and binds it to a name. The binding is
// implicitly mutable like other binding forms.
type BindingPattern struct {
	Token lexer.Token
	Name  *Identifier
}

func (bp *BindingPattern) patternNode()         {}
func (bp *BindingPattern) TokenLiteral() string { return bp.Token.Literal }
func (bp *BindingPattern) Pos() lexer.Position  { return bp.Token.Pos }
func (bp *BindingPattern) String() string       { return bp.Name.Value }

// WildcardPattern matches anything without binding: `_`.
type WildcardPattern struct {
	Token lexer.Token
}

func (wp *WildcardPattern) patternNode()         {}
func (wp *WildcardPattern) TokenLiteral() string { return wp.Token.Literal }
func (wp *WildcardPattern) Pos() lexer.Position  { return wp.Token.Pos }
func (wp *WildcardPattern) String() string       { return "_" }
