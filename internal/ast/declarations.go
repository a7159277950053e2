package ast

import (
	"bytes"
	"strings"

	"github.com/mkerian10/pluto/internal/lexer"
)

// declBase carries the fields shared by all declarations. QName is set by
// the module flattener; before that the qualified name is the plain name.
type declBase struct {
	Pub   bool
	QName string
}

func (d *declBase) Public() bool { return d.Pub }

// SetQualifiedName records the flattened qualified name.
func (d *declBase) SetQualifiedName(q string) { d.QName = q }

func (d *declBase) qualifiedOr(name string) string {
	if d.QName != "" {
		return d.QName
	}
	return name
}

// ImportDecl represents `import a.b.c` or `import a.b.c as alias`.
type ImportDecl struct {
	Token lexer.Token
	Path  string // dotted module path
	Alias string // "" when no alias
}

func (id *ImportDecl) TokenLiteral() string { return id.Token.Literal }
func (id *ImportDecl) Pos() lexer.Position  { return id.Token.Pos }
func (id *ImportDecl) String() string {
	if id.Alias != "" {
		return "import " + id.Path + " as " + id.Alias
	}
	return "import " + id.Path
}

// LocalName returns the name the import binds in the importing module.
func (id *ImportDecl) LocalName() string {
	if id.Alias != "" {
		return id.Alias
	}
	parts := strings.Split(id.Path, ".")
	return parts[len(parts)-1]
}

// ReceiverKind describes a method's receiver.
type ReceiverKind int

const (
	ReceiverNone    ReceiverKind = iota // associated function
	ReceiverSelf                        // fn m(self, ...)
	ReceiverMutSelf                     // fn m(mut self, ...)
)

func (rk ReceiverKind) String() string {
	switch rk {
	case ReceiverSelf:
		return "self"
	case ReceiverMutSelf:
		return "mut self"
	default:
		return ""
	}
}

// Param is one function parameter. Parameters are implicitly mutable
// bindings.
type Param struct {
	Name *Identifier
	Type TypeExpr
}

// FunctionDecl represents a free function, a method, or a trait method
// signature (Body nil for required trait methods without a default).
type FunctionDecl struct {
	declBase
	Token    lexer.Token // the 'fn' token
	Name     *Identifier
	Generics []*GenericParam
	Receiver ReceiverKind
	Params   []Param
	Return   TypeExpr // nil means void
	Body     *Block
}

func (fd *FunctionDecl) declarationNode()      {}
func (fd *FunctionDecl) TokenLiteral() string  { return fd.Token.Literal }
func (fd *FunctionDecl) Pos() lexer.Position   { return fd.Token.Pos }
func (fd *FunctionDecl) DeclName() string      { return fd.Name.Value }
func (fd *FunctionDecl) QualifiedName() string { return fd.qualifiedOr(fd.Name.Value) }

func (fd *FunctionDecl) String() string {
	var out bytes.Buffer
	if fd.Pub {
		out.WriteString("pub ")
	}
	out.WriteString("fn ")
	out.WriteString(fd.Name.Value)
	out.WriteString(formatGenerics(fd.Generics))
	out.WriteString("(")
	if fd.Receiver != ReceiverNone {
		out.WriteString(fd.Receiver.String())
		if len(fd.Params) > 0 {
			out.WriteString(", ")
		}
	}
	for i, p := range fd.Params {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(p.Name.Value)
		out.WriteString(": ")
		out.WriteString(p.Type.String())
	}
	out.WriteString(")")
	if fd.Return != nil {
		out.WriteString(" " + fd.Return.String())
	}
	if fd.Body != nil {
		out.WriteString(" " + fd.Body.String())
	}
	return out.String()
}

// FieldDecl is one class or error field. Injected marks fields synthesized
// by DI (bracket deps and ambient usages); they cannot appear in struct
// literals.
type FieldDecl struct {
	Name     *Identifier
	Type     TypeExpr
	Injected bool
}

// DepField is one `[name: Type]` bracket dependency.
type DepField struct {
	Name *Identifier
	Type *NamedType
}

// ClassDecl represents a class declaration with optional ambient usages,
// bracket dependencies, trait impls, and generic parameters.
type ClassDecl struct {
	declBase
	Token       lexer.Token // the 'class' token
	Name        *Identifier
	Generics    []*GenericParam
	Uses        []*NamedType // ambient usages (unordered set of types)
	BracketDeps []DepField   // ordered key -> type
	Impls       []*NamedType
	Fields      []*FieldDecl
	Methods     []*FunctionDecl
}

func (cd *ClassDecl) declarationNode()      {}
func (cd *ClassDecl) TokenLiteral() string  { return cd.Token.Literal }
func (cd *ClassDecl) Pos() lexer.Position   { return cd.Token.Pos }
func (cd *ClassDecl) DeclName() string      { return cd.Name.Value }
func (cd *ClassDecl) QualifiedName() string { return cd.qualifiedOr(cd.Name.Value) }

func (cd *ClassDecl) String() string {
	var out bytes.Buffer
	if cd.Pub {
		out.WriteString("pub ")
	}
	out.WriteString("class ")
	out.WriteString(cd.Name.Value)
	out.WriteString(formatGenerics(cd.Generics))
	if len(cd.Uses) > 0 {
		names := make([]string, len(cd.Uses))
		for i, u := range cd.Uses {
			names[i] = u.String()
		}
		out.WriteString(" uses " + strings.Join(names, ", "))
	}
	if len(cd.BracketDeps) > 0 {
		deps := make([]string, len(cd.BracketDeps))
		for i, d := range cd.BracketDeps {
			deps[i] = d.Name.Value + ": " + d.Type.String()
		}
		out.WriteString("[" + strings.Join(deps, ", ") + "]")
	}
	if len(cd.Impls) > 0 {
		names := make([]string, len(cd.Impls))
		for i, t := range cd.Impls {
			names[i] = t.String()
		}
		out.WriteString(" impl " + strings.Join(names, ", "))
	}
	out.WriteString(" {\n")
	writeMembers(&out, cd.Fields, cd.Methods)
	out.WriteString("}")
	return out.String()
}

// writeMembers renders non-injected fields then methods, indented one level.
func writeMembers(out *bytes.Buffer, fields []*FieldDecl, methods []*FunctionDecl) {
	for _, f := range fields {
		if f.Injected {
			continue
		}
		out.WriteString("  " + f.Name.Value + ": " + f.Type.String() + "\n")
	}
	for _, m := range methods {
		out.WriteString("  ")
		out.WriteString(strings.ReplaceAll(m.String(), "\n", "\n  "))
		out.WriteString("\n")
	}
}

// TraitDecl represents a trait: required method signatures plus optional
// default bodies.
type TraitDecl struct {
	declBase
	Token    lexer.Token
	Name     *Identifier
	Generics []*GenericParam
	Methods  []*FunctionDecl // Body == nil for required-only signatures
}

func (td *TraitDecl) declarationNode()      {}
func (td *TraitDecl) TokenLiteral() string  { return td.Token.Literal }
func (td *TraitDecl) Pos() lexer.Position   { return td.Token.Pos }
func (td *TraitDecl) DeclName() string      { return td.Name.Value }
func (td *TraitDecl) QualifiedName() string { return td.qualifiedOr(td.Name.Value) }

func (td *TraitDecl) String() string {
	var out bytes.Buffer
	if td.Pub {
		out.WriteString("pub ")
	}
	out.WriteString("trait ")
	out.WriteString(td.Name.Value)
	out.WriteString(formatGenerics(td.Generics))
	out.WriteString(" {\n")
	for _, m := range td.Methods {
		out.WriteString("  ")
		out.WriteString(strings.ReplaceAll(m.String(), "\n", "\n  "))
		out.WriteString("\n")
	}
	out.WriteString("}")
	return out.String()
}

// EnumVariant is one enum variant: unit or a named-field record.
type EnumVariant struct {
	Name   *Identifier
	Fields []*FieldDecl // nil for unit variants
}

// EnumDecl represents an enum declaration.
type EnumDecl struct {
	declBase
	Token    lexer.Token
	Name     *Identifier
	Generics []*GenericParam
	Variants []*EnumVariant
}

func (ed *EnumDecl) declarationNode()      {}
func (ed *EnumDecl) TokenLiteral() string  { return ed.Token.Literal }
func (ed *EnumDecl) Pos() lexer.Position   { return ed.Token.Pos }
func (ed *EnumDecl) DeclName() string      { return ed.Name.Value }
func (ed *EnumDecl) QualifiedName() string { return ed.qualifiedOr(ed.Name.Value) }

func (ed *EnumDecl) String() string {
	var out bytes.Buffer
	if ed.Pub {
		out.WriteString("pub ")
	}
	out.WriteString("enum ")
	out.WriteString(ed.Name.Value)
	out.WriteString(formatGenerics(ed.Generics))
	out.WriteString(" {\n")
	for _, v := range ed.Variants {
		out.WriteString("  " + v.Name.Value)
		if len(v.Fields) > 0 {
			parts := make([]string, len(v.Fields))
			for i, f := range v.Fields {
				parts[i] = f.Name.Value + ": " + f.Type.String()
			}
			out.WriteString(" { " + strings.Join(parts, ", ") + " }")
		}
		out.WriteString("\n")
	}
	out.WriteString("}")
	return out.String()
}

// ErrorDecl represents a named error type with fields. Errors are
// record-like, not sugar over enums.
type ErrorDecl struct {
	declBase
	Token  lexer.Token
	Name   *Identifier
	Fields []*FieldDecl
}

func (ed *ErrorDecl) declarationNode()      {}
func (ed *ErrorDecl) TokenLiteral() string  { return ed.Token.Literal }
func (ed *ErrorDecl) Pos() lexer.Position   { return ed.Token.Pos }
func (ed *ErrorDecl) DeclName() string      { return ed.Name.Value }
func (ed *ErrorDecl) QualifiedName() string { return ed.qualifiedOr(ed.Name.Value) }

func (ed *ErrorDecl) String() string {
	var out bytes.Buffer
	if ed.Pub {
		out.WriteString("pub ")
	}
	out.WriteString("error ")
	out.WriteString(ed.Name.Value)
	out.WriteString(" {\n")
	for _, f := range ed.Fields {
		out.WriteString("  " + f.Name.Value + ": " + f.Type.String() + "\n")
	}
	out.WriteString("}")
	return out.String()
}

// AppDecl represents the distinguished `app` singleton: bracket deps,
// ambient registrations, and an entry method.
type AppDecl struct {
	declBase
	Token       lexer.Token
	Name        *Identifier
	BracketDeps []DepField
	Ambients    []*NamedType
	Methods     []*FunctionDecl
}

func (ad *AppDecl) declarationNode()      {}
func (ad *AppDecl) TokenLiteral() string  { return ad.Token.Literal }
func (ad *AppDecl) Pos() lexer.Position   { return ad.Token.Pos }
func (ad *AppDecl) DeclName() string      { return ad.Name.Value }
func (ad *AppDecl) QualifiedName() string { return ad.qualifiedOr(ad.Name.Value) }

func (ad *AppDecl) String() string {
	var out bytes.Buffer
	out.WriteString("app ")
	out.WriteString(ad.Name.Value)
	if len(ad.BracketDeps) > 0 {
		deps := make([]string, len(ad.BracketDeps))
		for i, d := range ad.BracketDeps {
			deps[i] = d.Name.Value + ": " + d.Type.String()
		}
		out.WriteString("[" + strings.Join(deps, ", ") + "]")
	}
	out.WriteString(" {\n")
	for _, a := range ad.Ambients {
		out.WriteString("  ambient " + a.String() + "\n")
	}
	for _, m := range ad.Methods {
		out.WriteString("  ")
		out.WriteString(strings.ReplaceAll(m.String(), "\n", "\n  "))
		out.WriteString("\n")
	}
	out.WriteString("}")
	return out.String()
}

// ExternFunctionDecl represents an `extern fn` signature resolved by the
// C runtime at link time.
type ExternFunctionDecl struct {
	declBase
	Token  lexer.Token
	Name   *Identifier
	Params []Param
	Return TypeExpr
}

func (ef *ExternFunctionDecl) declarationNode()      {}
func (ef *ExternFunctionDecl) TokenLiteral() string  { return ef.Token.Literal }
func (ef *ExternFunctionDecl) Pos() lexer.Position   { return ef.Token.Pos }
func (ef *ExternFunctionDecl) DeclName() string      { return ef.Name.Value }
func (ef *ExternFunctionDecl) QualifiedName() string { return ef.qualifiedOr(ef.Name.Value) }

func (ef *ExternFunctionDecl) String() string {
	var out bytes.Buffer
	if ef.Pub {
		out.WriteString("pub ")
	}
	out.WriteString("extern fn ")
	out.WriteString(ef.Name.Value)
	out.WriteString("(")
	for i, p := range ef.Params {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(p.Name.Value + ": " + p.Type.String())
	}
	out.WriteString(")")
	if ef.Return != nil {
		out.WriteString(" " + ef.Return.String())
	}
	return out.String()
}

// ConstDecl represents a module-level `let` constant.
type ConstDecl struct {
	declBase
	Token lexer.Token
	Name  *Identifier
	Type  TypeExpr // optional
	Value Expression
}

func (cd *ConstDecl) declarationNode()      {}
func (cd *ConstDecl) TokenLiteral() string  { return cd.Token.Literal }
func (cd *ConstDecl) Pos() lexer.Position   { return cd.Token.Pos }
func (cd *ConstDecl) DeclName() string      { return cd.Name.Value }
func (cd *ConstDecl) QualifiedName() string { return cd.qualifiedOr(cd.Name.Value) }

func (cd *ConstDecl) String() string {
	var out bytes.Buffer
	if cd.Pub {
		out.WriteString("pub ")
	}
	out.WriteString("let ")
	out.WriteString(cd.Name.Value)
	if cd.Type != nil {
		out.WriteString(": " + cd.Type.String())
	}
	out.WriteString(" = ")
	out.WriteString(cd.Value.String())
	return out.String()
}
