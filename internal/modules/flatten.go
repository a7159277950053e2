package modules

import (
	"strings"

	"github.com/mkerian10/pluto/internal/ast"
	"github.com/mkerian10/pluto/internal/errors"
)

// Flatten merges the loaded modules into a single program whose
// declarations all carry globally unique qualified names. Cross-module
// references are resolved here: a bare identifier resolves first to the
// declaring module's own declarations, then to the prelude; a qualified
// `x.y` resolves x as an import alias, then as a variable in scope, then as
// an enum name.
func Flatten(mods []*Module, diags *errors.List) *ast.Program {
	f := &flattener{
		modules: make(map[string]*Module, len(mods)),
		diags:   diags,
	}
	for _, m := range mods {
		f.modules[m.Path] = m
	}

	program := &ast.Program{}
	for _, m := range mods {
		f.flattenModule(m, program)
	}
	return program
}

type flattener struct {
	modules map[string]*Module
	diags   *errors.List
}

func (f *flattener) flattenModule(mod *Module, out *ast.Program) {
	for _, file := range mod.Files {
		for _, decl := range file.Program.Declarations {
			if mod.Decls[decl.DeclName()] != decl {
				continue // duplicate already reported by the resolver
			}
			f.qualifyDecl(mod, decl)
			out.Declarations = append(out.Declarations, decl)
		}
	}
}

// qualifyDecl sets the declaration's qualified name and rewrites every
// reference in its signatures and bodies.
func (f *flattener) qualifyDecl(mod *Module, decl ast.Declaration) {
	switch d := decl.(type) {
	case *ast.FunctionDecl:
		d.SetQualifiedName(mod.qualify(d.Name.Value))
		f.rewriteFunction(mod, d, genericSet(d.Generics))

	case *ast.ClassDecl:
		d.SetQualifiedName(mod.qualify(d.Name.Value))
		generics := genericSet(d.Generics)
		for _, field := range d.Fields {
			f.qualifyType(mod, field.Type, generics)
		}
		for _, dep := range d.BracketDeps {
			f.qualifyType(mod, dep.Type, generics)
		}
		for _, u := range d.Uses {
			f.qualifyType(mod, u, generics)
		}
		for _, t := range d.Impls {
			f.qualifyType(mod, t, generics)
		}
		for _, m := range d.Methods {
			merged := mergeGenerics(generics, m.Generics)
			f.rewriteFunction(mod, m, merged)
		}

	case *ast.TraitDecl:
		d.SetQualifiedName(mod.qualify(d.Name.Value))
		generics := genericSet(d.Generics)
		for _, m := range d.Methods {
			f.rewriteFunction(mod, m, mergeGenerics(generics, m.Generics))
		}

	case *ast.EnumDecl:
		d.SetQualifiedName(mod.qualify(d.Name.Value))
		generics := genericSet(d.Generics)
		for _, v := range d.Variants {
			for _, field := range v.Fields {
				f.qualifyType(mod, field.Type, generics)
			}
		}

	case *ast.ErrorDecl:
		d.SetQualifiedName(mod.qualify(d.Name.Value))
		for _, field := range d.Fields {
			f.qualifyType(mod, field.Type, nil)
		}

	case *ast.AppDecl:
		d.SetQualifiedName(mod.qualify(d.Name.Value))
		for _, dep := range d.BracketDeps {
			f.qualifyType(mod, dep.Type, nil)
		}
		for _, a := range d.Ambients {
			f.qualifyType(mod, a, nil)
		}
		for _, m := range d.Methods {
			f.rewriteFunction(mod, m, genericSet(m.Generics))
		}

	case *ast.ExternFunctionDecl:
		d.SetQualifiedName(mod.qualify(d.Name.Value))
		for _, p := range d.Params {
			f.qualifyType(mod, p.Type, nil)
		}
		f.qualifyType(mod, d.Return, nil)

	case *ast.ConstDecl:
		d.SetQualifiedName(mod.qualify(d.Name.Value))
		f.qualifyType(mod, d.Type, nil)
		es := &ast.ExpressionStatement{Expression: d.Value}
		f.rewriter(mod, nil).RewriteBody(&ast.Block{Statements: []ast.Statement{es}}, nil)
		d.Value = es.Expression
	}
}

// rewriteFunction rewrites one function's signature types and body.
func (f *flattener) rewriteFunction(mod *Module, fn *ast.FunctionDecl, generics map[string]bool) {
	for _, p := range fn.Params {
		f.qualifyType(mod, p.Type, generics)
	}
	f.qualifyType(mod, fn.Return, generics)

	if fn.Body == nil {
		return
	}
	bound := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		bound[i] = p.Name.Value
	}
	f.rewriter(mod, generics).RewriteBody(fn.Body, bound)
}

// rewriter builds the scoped body rewriter for one module.
func (f *flattener) rewriter(mod *Module, generics map[string]bool) *ast.BodyRewriter {
	resolveName := func(name string) string {
		return f.resolveTypeName(mod, name, generics)
	}
	return &ast.BodyRewriter{
		FreeIdent: func(id *ast.Identifier) ast.Expression {
			if mod.Path == "" {
				return nil
			}
			if _, ok := mod.Decls[id.Value]; ok {
				return &ast.Identifier{Token: id.Token, Value: mod.qualify(id.Value)}
			}
			return nil
		},
		Member: func(obj, prop *ast.Identifier) ast.Expression {
			target, ok := f.importTarget(mod, obj.Value)
			if !ok {
				return nil
			}
			decl, ok := target.Decls[prop.Value]
			if !ok {
				f.diags.Errorf("TypeError::UndefinedName", prop.Pos(),
					"module %s has no declaration %s", target.Path, prop.Value)
				return &ast.Identifier{Token: prop.Token, Value: target.qualify(prop.Value)}
			}
			if !decl.Public() {
				f.diags.Errorf("ModuleError::PrivateDeclaration", prop.Pos(),
					"%s.%s is not pub", target.Path, prop.Value)
			}
			return &ast.Identifier{Token: obj.Token, Value: target.qualify(prop.Value)}
		},
		TypeName:    resolveName,
		PatternName: resolveName,
	}
}

// qualifyType rewrites every named type mentioned in a signature-level
// annotation to its flattened qualified name.
func (f *flattener) qualifyType(mod *Module, t ast.TypeExpr, generics map[string]bool) {
	switch tt := t.(type) {
	case nil:
	case *ast.NamedType:
		if q := f.resolveTypeName(mod, tt.Name, generics); q != "" {
			tt.Name = q
		}
		for _, a := range tt.TypeArgs {
			f.qualifyType(mod, a, generics)
		}
	case *ast.NullableType:
		f.qualifyType(mod, tt.Inner, generics)
	case *ast.FunctionTypeExpr:
		for _, p := range tt.Params {
			f.qualifyType(mod, p, generics)
		}
		f.qualifyType(mod, tt.Return, generics)
	}
}

// resolveTypeName qualifies a type or enum name mentioned in module mod.
// Generic parameter names are never qualified.
func (f *flattener) resolveTypeName(mod *Module, name string, generics map[string]bool) string {
	if generics[name] {
		return ""
	}
	if alias, rest, ok := strings.Cut(name, "."); ok {
		// A local enum's variant: Shape.Circle inside Shape's own module.
		if _, isLocal := mod.Decls[alias]; isLocal {
			if mod.Path == "" {
				return ""
			}
			return mod.qualify(name)
		}
		target, found := f.importTarget(mod, alias)
		if !found {
			return ""
		}
		// `rest` may carry an enum variant suffix: alias.Enum.Variant.
		declName := rest
		if base, _, hasVariant := strings.Cut(rest, "."); hasVariant {
			declName = base
		}
		if decl, ok := target.Decls[declName]; ok && !decl.Public() {
			f.diags.Errorf("ModuleError::PrivateDeclaration", mod.Pos,
				"%s.%s is not pub", target.Path, declName)
		}
		return target.qualify(rest)
	}
	if _, ok := mod.Decls[name]; ok && mod.Path != "" {
		return mod.qualify(name)
	}
	return ""
}

// importTarget resolves an import's local name to its module.
func (f *flattener) importTarget(mod *Module, local string) (*Module, bool) {
	path, ok := mod.Imports[local]
	if !ok {
		return nil, false
	}
	target, ok := f.modules[path]
	return target, ok
}

func genericSet(params []*ast.GenericParam) map[string]bool {
	if len(params) == 0 {
		return nil
	}
	set := make(map[string]bool, len(params))
	for _, p := range params {
		set[p.Name] = true
	}
	return set
}

func mergeGenerics(outer map[string]bool, params []*ast.GenericParam) map[string]bool {
	if len(params) == 0 {
		return outer
	}
	merged := make(map[string]bool, len(outer)+len(params))
	for k := range outer {
		merged[k] = true
	}
	for _, p := range params {
		merged[p.Name] = true
	}
	return merged
}
