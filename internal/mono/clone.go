package mono

import (
	"github.com/mkerian10/pluto/internal/ast"
)

// cloner deep-copies declarations while substituting type parameters in
// every type annotation. Expression structure is preserved; only type
// names change.
type cloner struct {
	subst map[string]ast.TypeExpr
}

func (c *cloner) typeExpr(t ast.TypeExpr) ast.TypeExpr {
	switch tt := t.(type) {
	case nil:
		return nil
	case *ast.NamedType:
		if replacement, ok := c.subst[tt.Name]; ok && len(tt.TypeArgs) == 0 {
			return replacement
		}
		out := &ast.NamedType{Token: tt.Token, Name: tt.Name}
		for _, a := range tt.TypeArgs {
			out.TypeArgs = append(out.TypeArgs, c.typeExpr(a))
		}
		return out
	case *ast.NullableType:
		return &ast.NullableType{Token: tt.Token, Inner: c.typeExpr(tt.Inner)}
	case *ast.FunctionTypeExpr:
		out := &ast.FunctionTypeExpr{Token: tt.Token}
		for _, p := range tt.Params {
			out.Params = append(out.Params, c.typeExpr(p))
		}
		out.Return = c.typeExpr(tt.Return)
		return out
	default:
		return t
	}
}

func (c *cloner) function(fn *ast.FunctionDecl) *ast.FunctionDecl {
	out := &ast.FunctionDecl{
		Token:    fn.Token,
		Name:     &ast.Identifier{Token: fn.Name.Token, Value: fn.Name.Value},
		Receiver: fn.Receiver,
		Body:     c.block(fn.Body),
	}
	out.Pub = fn.Public()
	for _, g := range fn.Generics {
		out.Generics = append(out.Generics, g)
	}
	for _, p := range fn.Params {
		out.Params = append(out.Params, ast.Param{
			Name: &ast.Identifier{Token: p.Name.Token, Value: p.Name.Value},
			Type: c.typeExpr(p.Type),
		})
	}
	out.Return = c.typeExpr(fn.Return)
	return out
}

func (c *cloner) class(class *ast.ClassDecl) *ast.ClassDecl {
	out := &ast.ClassDecl{
		Token: class.Token,
		Name:  &ast.Identifier{Token: class.Name.Token, Value: class.Name.Value},
	}
	out.Pub = class.Public()
	for _, f := range class.Fields {
		out.Fields = append(out.Fields, &ast.FieldDecl{
			Name:     &ast.Identifier{Token: f.Name.Token, Value: f.Name.Value},
			Type:     c.typeExpr(f.Type),
			Injected: f.Injected,
		})
	}
	for _, t := range class.Impls {
		out.Impls = append(out.Impls, c.typeExpr(t).(*ast.NamedType))
	}
	for _, m := range class.Methods {
		out.Methods = append(out.Methods, c.function(m))
	}
	return out
}

func (c *cloner) enum(enum *ast.EnumDecl) *ast.EnumDecl {
	out := &ast.EnumDecl{
		Token: enum.Token,
		Name:  &ast.Identifier{Token: enum.Name.Token, Value: enum.Name.Value},
	}
	out.Pub = enum.Public()
	for _, v := range enum.Variants {
		variant := &ast.EnumVariant{
			Name: &ast.Identifier{Token: v.Name.Token, Value: v.Name.Value},
		}
		for _, f := range v.Fields {
			variant.Fields = append(variant.Fields, &ast.FieldDecl{
				Name: &ast.Identifier{Token: f.Name.Token, Value: f.Name.Value},
				Type: c.typeExpr(f.Type),
			})
		}
		out.Variants = append(out.Variants, variant)
	}
	return out
}

func (c *cloner) block(b *ast.Block) *ast.Block {
	if b == nil {
		return nil
	}
	out := &ast.Block{Token: b.Token}
	for _, stmt := range b.Statements {
		out.Statements = append(out.Statements, c.stmt(stmt))
	}
	return out
}

func (c *cloner) stmt(stmt ast.Statement) ast.Statement {
	switch s := stmt.(type) {
	case *ast.LetStatement:
		return &ast.LetStatement{
			Token:   s.Token,
			Mutable: s.Mutable,
			Name:    &ast.Identifier{Token: s.Name.Token, Value: s.Name.Value},
			Type:    c.typeExpr(s.Type),
			Value:   c.expr(s.Value),
		}
	case *ast.AssignStatement:
		return &ast.AssignStatement{
			Token:    s.Token,
			Target:   c.expr(s.Target),
			Operator: s.Operator,
			Value:    c.expr(s.Value),
		}
	case *ast.ReturnStatement:
		out := &ast.ReturnStatement{Token: s.Token}
		if s.Value != nil {
			out.Value = c.expr(s.Value)
		}
		return out
	case *ast.RaiseStatement:
		return &ast.RaiseStatement{Token: s.Token, Value: c.expr(s.Value)}
	case *ast.ExpressionStatement:
		return &ast.ExpressionStatement{Token: s.Token, Expression: c.expr(s.Expression)}
	case *ast.ForStatement:
		return &ast.ForStatement{
			Token:    s.Token,
			Variable: &ast.Identifier{Token: s.Variable.Token, Value: s.Variable.Value},
			Iterable: c.expr(s.Iterable),
			Body:     c.block(s.Body),
		}
	case *ast.WhileStatement:
		return &ast.WhileStatement{Token: s.Token, Cond: c.expr(s.Cond), Body: c.block(s.Body)}
	case *ast.LoopStatement:
		return &ast.LoopStatement{Token: s.Token, Body: c.block(s.Body)}
	case *ast.BreakStatement:
		return &ast.BreakStatement{Token: s.Token}
	case *ast.ContinueStatement:
		return &ast.ContinueStatement{Token: s.Token}
	case *ast.Block:
		return c.block(s)
	case *ast.IfExpression:
		return c.ifExpr(s)
	case *ast.MatchExpression:
		return c.matchExpr(s)
	default:
		return stmt
	}
}

func (c *cloner) expr(expr ast.Expression) ast.Expression {
	switch e := expr.(type) {
	case nil:
		return nil
	case *ast.Identifier:
		return &ast.Identifier{Token: e.Token, Value: e.Value}
	case *ast.IntegerLiteral, *ast.FloatLiteral, *ast.BooleanLiteral,
		*ast.StringLiteral, *ast.ByteLiteral, *ast.NoneLiteral, *ast.SelfExpression:
		return e
	case *ast.InterpolatedString:
		out := &ast.InterpolatedString{Token: e.Token}
		for _, part := range e.Parts {
			if part.Expr != nil {
				out.Parts = append(out.Parts, ast.StringPart{Expr: c.expr(part.Expr)})
			} else {
				out.Parts = append(out.Parts, part)
			}
		}
		return out
	case *ast.PrefixExpression:
		return &ast.PrefixExpression{Token: e.Token, Operator: e.Operator, Right: c.expr(e.Right)}
	case *ast.InfixExpression:
		return &ast.InfixExpression{Token: e.Token, Left: c.expr(e.Left), Operator: e.Operator, Right: c.expr(e.Right)}
	case *ast.CallExpression:
		out := &ast.CallExpression{Token: e.Token, Function: c.expr(e.Function)}
		for _, t := range e.TypeArgs {
			out.TypeArgs = append(out.TypeArgs, c.typeExpr(t))
		}
		for _, a := range e.Args {
			out.Args = append(out.Args, c.expr(a))
		}
		return out
	case *ast.MemberExpression:
		return &ast.MemberExpression{
			Token:    e.Token,
			Object:   c.expr(e.Object),
			Property: &ast.Identifier{Token: e.Property.Token, Value: e.Property.Value},
		}
	case *ast.IndexExpression:
		return &ast.IndexExpression{Token: e.Token, Left: c.expr(e.Left), Index: c.expr(e.Index)}
	case *ast.ArrayLiteral:
		out := &ast.ArrayLiteral{Token: e.Token}
		for _, el := range e.Elements {
			out.Elements = append(out.Elements, c.expr(el))
		}
		return out
	case *ast.StructLiteral:
		out := &ast.StructLiteral{Token: e.Token, Type: c.typeExpr(e.Type).(*ast.NamedType)}
		for _, f := range e.Fields {
			out.Fields = append(out.Fields, ast.StructField{
				Name:  &ast.Identifier{Token: f.Name.Token, Value: f.Name.Value},
				Value: c.expr(f.Value),
			})
		}
		return out
	case *ast.ClosureLiteral:
		out := &ast.ClosureLiteral{Token: e.Token}
		for _, p := range e.Params {
			out.Params = append(out.Params, ast.ClosureParam{
				Name: &ast.Identifier{Token: p.Name.Token, Value: p.Name.Value},
				Type: c.typeExpr(p.Type),
			})
		}
		out.Body = c.block(e.Body)
		if e.Expr != nil {
			out.Expr = c.expr(e.Expr)
		}
		return out
	case *ast.IfExpression:
		return c.ifExpr(e)
	case *ast.MatchExpression:
		return c.matchExpr(e)
	case *ast.PropagateExpression:
		return &ast.PropagateExpression{Token: e.Token, Expr: c.expr(e.Expr), Kind: e.Kind, Context: e.Context}
	case *ast.CatchExpression:
		out := &ast.CatchExpression{Token: e.Token, Expr: c.expr(e.Expr), Handler: c.block(e.Handler)}
		if e.Binding != nil {
			out.Binding = &ast.Identifier{Token: e.Binding.Token, Value: e.Binding.Value}
		}
		return out
	case *ast.BlockExpression:
		return &ast.BlockExpression{Block: c.block(e.Block)}
	default:
		return expr
	}
}

func (c *cloner) ifExpr(e *ast.IfExpression) *ast.IfExpression {
	out := &ast.IfExpression{Token: e.Token, Cond: c.expr(e.Cond), Then: c.block(e.Then)}
	switch els := e.Else.(type) {
	case *ast.Block:
		out.Else = c.block(els)
	case *ast.IfExpression:
		out.Else = c.ifExpr(els)
	}
	return out
}

func (c *cloner) matchExpr(e *ast.MatchExpression) *ast.MatchExpression {
	out := &ast.MatchExpression{Token: e.Token, Scrutinee: c.expr(e.Scrutinee)}
	for _, arm := range e.Arms {
		out.Arms = append(out.Arms, ast.MatchArm{
			Pattern: c.pattern(arm.Pattern),
			Body:    c.expr(arm.Body),
		})
	}
	return out
}

func (c *cloner) pattern(p ast.Pattern) ast.Pattern {
	switch pat := p.(type) {
	case *ast.VariantPattern:
		out := &ast.VariantPattern{
			Token:    pat.Token,
			Enum:     &ast.Identifier{Token: pat.Enum.Token, Value: pat.Enum.Value},
			Variant:  &ast.Identifier{Token: pat.Variant.Token, Value: pat.Variant.Value},
			HasBrace: pat.HasBrace,
		}
		for _, f := range pat.Fields {
			field := ast.FieldPattern{Field: &ast.Identifier{Token: f.Field.Token, Value: f.Field.Value}}
			if f.Binding != nil {
				field.Binding = &ast.Identifier{Token: f.Binding.Token, Value: f.Binding.Value}
			}
			out.Fields = append(out.Fields, field)
		}
		return out
	default:
		return p
	}
}
