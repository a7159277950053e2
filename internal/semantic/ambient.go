package semantic

import (
	"strings"

	"github.com/mkerian10/pluto/internal/ast"
	"github.com/mkerian10/pluto/internal/errors"
)

// Desugar rewrites ambient-DI sugar before type registration:
//
//  1. Every class with a `uses T1, ..., Tn` clause gets hidden injected
//     fields t1..tn (the type name with its first letter lowercased), and
//     every bare reference to ti in its method bodies becomes self.ti
//     unless a local binding shadows it at that point.
//  2. Bracket dependencies become injected fields under their declared
//     names, so downstream passes see only plain fields.
//
// It also verifies each used type is registered in the app's ambient set
// and rejects ambient usage on generic classes. Desugaring runs before type
// checking so the checker sees only explicit self.field accesses.
func Desugar(program *ast.Program, diags *errors.List) {
	ambientSet := make(map[string]bool)
	var app *ast.AppDecl
	for _, decl := range program.Declarations {
		if a, ok := decl.(*ast.AppDecl); ok {
			app = a
			for _, t := range a.Ambients {
				ambientSet[t.Name] = true
			}
		}
	}

	// Top-level names still resolve without rewriting; an ambient field
	// never shadows a declaration.
	topLevel := make(map[string]bool, len(program.Declarations))
	for _, decl := range program.Declarations {
		topLevel[decl.QualifiedName()] = true
	}

	for _, decl := range program.Declarations {
		class, ok := decl.(*ast.ClassDecl)
		if !ok {
			continue
		}
		desugarClass(class, app, ambientSet, topLevel, diags)
	}
}

func desugarClass(class *ast.ClassDecl, app *ast.AppDecl, ambientSet, topLevel map[string]bool, diags *errors.List) {
	var injected []*ast.FieldDecl

	for _, dep := range class.BracketDeps {
		injected = append(injected, &ast.FieldDecl{
			Name:     dep.Name,
			Type:     dep.Type,
			Injected: true,
		})
	}

	ambientFields := make(map[string]bool)
	if len(class.Uses) > 0 {
		if len(class.Generics) > 0 {
			diags.Errorf(KindGenericAmbient, class.Pos(),
				"generic class %s cannot use ambient dependencies", class.Name.Value)
		}
		for _, use := range class.Uses {
			if app == nil || !ambientSet[use.Name] {
				diags.Errorf(KindUnregisteredAmbient, use.Pos(),
					"%s is not registered as ambient by the app", use.Name)
			}
			name := ambientFieldName(use.Name)
			ambientFields[name] = true
			injected = append(injected, &ast.FieldDecl{
				Name:     &ast.Identifier{Token: use.Token, Value: name},
				Type:     use,
				Injected: true,
			})
		}
	}

	if len(injected) > 0 {
		class.Fields = append(injected, class.Fields...)
	}
	if len(ambientFields) == 0 {
		return
	}

	rewriter := &ast.BodyRewriter{
		FreeIdent: func(id *ast.Identifier) ast.Expression {
			if !ambientFields[id.Value] || topLevel[id.Value] {
				return nil
			}
			return &ast.MemberExpression{
				Token:    id.Token,
				Object:   &ast.SelfExpression{Token: id.Token},
				Property: id,
			}
		},
	}
	for _, m := range class.Methods {
		if m.Body == nil {
			continue
		}
		bound := make([]string, len(m.Params))
		for i, p := range m.Params {
			bound[i] = p.Name.Value
		}
		rewriter.RewriteBody(m.Body, bound)
	}
}

// ambientFieldName lowercases the first letter of the type's unqualified
// name: log.Logger -> logger.
func ambientFieldName(typeName string) string {
	name := typeName
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}
