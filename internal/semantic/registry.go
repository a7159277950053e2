package semantic

import (
	"github.com/mkerian10/pluto/internal/ast"
	"github.com/mkerian10/pluto/internal/errors"
	"github.com/mkerian10/pluto/internal/types"
)

// FieldInfo is one class or error field in the type environment.
type FieldInfo struct {
	Name     string
	Type     types.Type
	Injected bool
}

// MethodInfo is one method signature in the type environment.
type MethodInfo struct {
	Name     string
	Receiver ast.ReceiverKind
	Params   []types.Type
	Return   types.Type
	Decl     *ast.FunctionDecl
	Default  bool // trait method with a default body
}

// Signature returns the method as a function type (receiver excluded).
func (m *MethodInfo) Signature() *types.Function {
	return &types.Function{Params: m.Params, Return: m.Return}
}

// ClassInfo is the registered form of a class declaration.
type ClassInfo struct {
	Name        string // qualified
	Decl        *ast.ClassDecl
	Generics    []string
	Bounds      map[string][]string // generic param -> trait names
	Fields      []*FieldInfo
	Methods     map[string]*MethodInfo
	BracketDeps []DepInfo
	AmbientDeps []string // qualified class names
	Impls       []string // qualified trait names
}

// Field returns the named field, or nil.
func (c *ClassInfo) Field(name string) *FieldInfo {
	for _, f := range c.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// HasInjected reports whether any field was synthesized by DI.
func (c *ClassInfo) HasInjected() bool {
	for _, f := range c.Fields {
		if f.Injected {
			return true
		}
	}
	return false
}

// DepInfo is one bracket dependency: an ordered key -> provider class name.
type DepInfo struct {
	Name string
	Type string // qualified class name
}

// TraitInfo is the registered form of a trait declaration.
type TraitInfo struct {
	Name     string
	Decl     *ast.TraitDecl
	Generics []string
	Methods  map[string]*MethodInfo
}

// VariantInfo is one enum variant.
type VariantInfo struct {
	Name   string
	Fields []*FieldInfo // nil for unit variants
}

// EnumInfo is the registered form of an enum declaration.
type EnumInfo struct {
	Name     string
	Decl     *ast.EnumDecl
	Generics []string
	Variants []*VariantInfo
}

// Variant returns the named variant, or nil.
func (e *EnumInfo) Variant(name string) *VariantInfo {
	for _, v := range e.Variants {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// ErrorInfo is the registered form of an error declaration.
type ErrorInfo struct {
	Name   string
	Decl   *ast.ErrorDecl
	Fields []*FieldInfo
}

// FnInfo is the registered form of a free function or extern function.
type FnInfo struct {
	Name     string // qualified
	Decl     *ast.FunctionDecl
	Extern   *ast.ExternFunctionDecl
	Generics []string
	Bounds   map[string][]string
	Params   []types.Type
	Return   types.Type

	// Fallible is resolved by whole-program error inference; it is unknown
	// until that pass completes.
	Fallible bool
}

// Type returns the function's type.
func (f *FnInfo) Type() *types.Function {
	return &types.Function{Params: f.Params, Return: f.Return}
}

// AppInfo is the registered app singleton.
type AppInfo struct {
	Name        string
	Decl        *ast.AppDecl
	BracketDeps []DepInfo
	AmbientSet  map[string]bool // qualified class names registered as ambient
	EntryMethod *MethodInfo
	Methods     map[string]*MethodInfo
}

// ConstInfo is a module-level constant.
type ConstInfo struct {
	Name string
	Decl *ast.ConstDecl
	Type types.Type
}

// Registry is the type environment: every declaration of the flattened
// program, keyed by qualified name. It is populated by the registrar and
// read-only for downstream passes, except that error inference sets
// FnInfo.Fallible.
type Registry struct {
	Classes   map[string]*ClassInfo
	Traits    map[string]*TraitInfo
	Enums     map[string]*EnumInfo
	Errors    map[string]*ErrorInfo
	Functions map[string]*FnInfo
	Consts    map[string]*ConstInfo
	App       *AppInfo
}

// NewRegistry creates an empty type environment.
func NewRegistry() *Registry {
	return &Registry{
		Classes:   make(map[string]*ClassInfo),
		Traits:    make(map[string]*TraitInfo),
		Enums:     make(map[string]*EnumInfo),
		Errors:    make(map[string]*ErrorInfo),
		Functions: make(map[string]*FnInfo),
		Consts:    make(map[string]*ConstInfo),
	}
}

// IsDeclared reports whether a qualified name is taken by any declaration.
func (r *Registry) IsDeclared(name string) bool {
	if _, ok := r.Classes[name]; ok {
		return true
	}
	if _, ok := r.Traits[name]; ok {
		return true
	}
	if _, ok := r.Enums[name]; ok {
		return true
	}
	if _, ok := r.Errors[name]; ok {
		return true
	}
	if _, ok := r.Functions[name]; ok {
		return true
	}
	if _, ok := r.Consts[name]; ok {
		return true
	}
	return r.App != nil && r.App.Name == name
}

// registrar populates the registry from the flattened program.
type registrar struct {
	reg   *Registry
	diags *errors.List
}

// Register builds the type environment for a flattened program.
func Register(program *ast.Program, diags *errors.List) *Registry {
	r := &registrar{reg: NewRegistry(), diags: diags}

	// First pass: claim names so forward references resolve.
	for _, decl := range program.Declarations {
		r.declare(decl)
	}
	// Second pass: resolve field, parameter, and return types.
	for _, decl := range program.Declarations {
		r.resolve(decl)
	}
	return r.reg
}

func (r *registrar) declare(decl ast.Declaration) {
	name := decl.QualifiedName()
	if r.reg.IsDeclared(name) {
		r.diags.Errorf(KindDuplicateDeclaration, decl.Pos(), "duplicate declaration %s", name)
		return
	}

	switch d := decl.(type) {
	case *ast.ClassDecl:
		r.reg.Classes[name] = &ClassInfo{
			Name:     name,
			Decl:     d,
			Generics: genericNames(d.Generics),
			Methods:  make(map[string]*MethodInfo),
		}
	case *ast.TraitDecl:
		r.reg.Traits[name] = &TraitInfo{
			Name:     name,
			Decl:     d,
			Generics: genericNames(d.Generics),
			Methods:  make(map[string]*MethodInfo),
		}
	case *ast.EnumDecl:
		r.reg.Enums[name] = &EnumInfo{
			Name:     name,
			Decl:     d,
			Generics: genericNames(d.Generics),
		}
	case *ast.ErrorDecl:
		r.reg.Errors[name] = &ErrorInfo{Name: name, Decl: d}
	case *ast.FunctionDecl:
		r.reg.Functions[name] = &FnInfo{
			Name:     name,
			Decl:     d,
			Generics: genericNames(d.Generics),
		}
	case *ast.ExternFunctionDecl:
		r.reg.Functions[name] = &FnInfo{Name: name, Extern: d}
	case *ast.ConstDecl:
		r.reg.Consts[name] = &ConstInfo{Name: name, Decl: d}
	case *ast.AppDecl:
		if r.reg.App != nil {
			r.diags.Errorf(KindDuplicateDeclaration, d.Pos(), "duplicate app declaration %s", name)
			return
		}
		r.reg.App = &AppInfo{
			Name:       name,
			Decl:       d,
			AmbientSet: make(map[string]bool),
			Methods:    make(map[string]*MethodInfo),
		}
	}
}

func (r *registrar) resolve(decl ast.Declaration) {
	switch d := decl.(type) {
	case *ast.ClassDecl:
		r.resolveClass(d)
	case *ast.TraitDecl:
		r.resolveTrait(d)
	case *ast.EnumDecl:
		r.resolveEnum(d)
	case *ast.ErrorDecl:
		r.resolveError(d)
	case *ast.FunctionDecl:
		r.resolveFunction(d)
	case *ast.ExternFunctionDecl:
		r.resolveExtern(d)
	case *ast.AppDecl:
		r.resolveApp(d)
	case *ast.ConstDecl:
		// Constant types are inferred from their initializers by the checker.
	}
}

func (r *registrar) resolveClass(d *ast.ClassDecl) {
	info := r.reg.Classes[d.QualifiedName()]
	if info == nil {
		return
	}
	generics := genericNames(d.Generics)
	info.Bounds = r.resolveBounds(d.Generics)

	for _, f := range d.Fields {
		fieldType := r.ResolveType
		if f.Injected {
			// Injected fields always name a provider class; whether one is
			// declared (and non-generic) is the DI validator's verdict, so
			// resolution here must not fail first.
			fieldType = r.resolveInjectedType
		}
		info.Fields = append(info.Fields, &FieldInfo{
			Name:     f.Name.Value,
			Type:     fieldType(f.Type, generics),
			Injected: f.Injected,
		})
	}
	for _, dep := range d.BracketDeps {
		info.BracketDeps = append(info.BracketDeps, DepInfo{Name: dep.Name.Value, Type: dep.Type.Name})
	}
	for _, u := range d.Uses {
		info.AmbientDeps = append(info.AmbientDeps, u.Name)
	}
	for _, t := range d.Impls {
		if _, ok := r.reg.Traits[t.Name]; !ok {
			r.diags.Errorf(KindUnknownType, t.Pos(), "unknown trait %s", t.Name)
			continue
		}
		info.Impls = append(info.Impls, t.Name)
	}
	for _, m := range d.Methods {
		if _, exists := info.Methods[m.Name.Value]; exists {
			r.diags.Errorf(KindDuplicateDeclaration, m.Pos(), "duplicate method %s.%s", info.Name, m.Name.Value)
			continue
		}
		info.Methods[m.Name.Value] = r.methodInfo(m, generics)
	}
}

func (r *registrar) resolveTrait(d *ast.TraitDecl) {
	info := r.reg.Traits[d.QualifiedName()]
	if info == nil {
		return
	}
	generics := genericNames(d.Generics)
	for _, m := range d.Methods {
		mi := r.methodInfo(m, generics)
		mi.Default = m.Body != nil
		info.Methods[m.Name.Value] = mi
	}
}

func (r *registrar) resolveEnum(d *ast.EnumDecl) {
	info := r.reg.Enums[d.QualifiedName()]
	if info == nil {
		return
	}
	generics := genericNames(d.Generics)
	for _, v := range d.Variants {
		vi := &VariantInfo{Name: v.Name.Value}
		for _, f := range v.Fields {
			vi.Fields = append(vi.Fields, &FieldInfo{
				Name: f.Name.Value,
				Type: r.ResolveType(f.Type, generics),
			})
		}
		info.Variants = append(info.Variants, vi)
	}
}

func (r *registrar) resolveError(d *ast.ErrorDecl) {
	info := r.reg.Errors[d.QualifiedName()]
	if info == nil {
		return
	}
	for _, f := range d.Fields {
		info.Fields = append(info.Fields, &FieldInfo{
			Name: f.Name.Value,
			Type: r.ResolveType(f.Type, nil),
		})
	}
}

func (r *registrar) resolveFunction(d *ast.FunctionDecl) {
	info := r.reg.Functions[d.QualifiedName()]
	if info == nil || info.Decl != d {
		return
	}
	generics := genericNames(d.Generics)
	info.Bounds = r.resolveBounds(d.Generics)
	for _, p := range d.Params {
		info.Params = append(info.Params, r.ResolveType(p.Type, generics))
	}
	info.Return = r.returnType(d.Return, generics)
}

func (r *registrar) resolveExtern(d *ast.ExternFunctionDecl) {
	info := r.reg.Functions[d.QualifiedName()]
	if info == nil || info.Extern != d {
		return
	}
	for _, p := range d.Params {
		info.Params = append(info.Params, r.ResolveType(p.Type, nil))
	}
	info.Return = r.returnType(d.Return, nil)
}

func (r *registrar) resolveApp(d *ast.AppDecl) {
	app := r.reg.App
	if app == nil || app.Decl != d {
		return
	}
	for _, dep := range d.BracketDeps {
		app.BracketDeps = append(app.BracketDeps, DepInfo{Name: dep.Name.Value, Type: dep.Type.Name})
	}
	for _, a := range d.Ambients {
		app.AmbientSet[a.Name] = true
	}
	for _, m := range d.Methods {
		mi := r.methodInfo(m, nil)
		app.Methods[m.Name.Value] = mi
		if m.Name.Value == "main" {
			app.EntryMethod = mi
		}
	}
	if app.EntryMethod == nil {
		r.diags.Errorf(KindUndefinedName, d.Pos(), "app %s has no main method", app.Name)
	}
}

func (r *registrar) methodInfo(m *ast.FunctionDecl, classGenerics []string) *MethodInfo {
	generics := classGenerics
	if len(m.Generics) > 0 {
		r.diags.Errorf(KindInvalidGenericBound, m.Pos(),
			"generic parameters are not supported on methods")
	}
	mi := &MethodInfo{
		Name:     m.Name.Value,
		Receiver: m.Receiver,
		Decl:     m,
	}
	for _, p := range m.Params {
		mi.Params = append(mi.Params, r.ResolveType(p.Type, generics))
	}
	mi.Return = r.returnType(m.Return, generics)
	return mi
}

func (r *registrar) returnType(t ast.TypeExpr, generics []string) types.Type {
	if t == nil {
		return types.VOID
	}
	return r.ResolveType(t, generics)
}

// resolveBounds validates generic bounds: every bound must be a declared,
// non-generic trait.
func (r *registrar) resolveBounds(params []*ast.GenericParam) map[string][]string {
	if len(params) == 0 {
		return nil
	}
	bounds := make(map[string][]string)
	for _, p := range params {
		for _, b := range p.Bounds {
			trait, ok := r.reg.Traits[b.Name]
			if !ok {
				r.diags.Errorf(KindInvalidGenericBound, b.Pos(), "bound %s is not a trait", b.Name)
				continue
			}
			if len(trait.Generics) > 0 || len(b.TypeArgs) > 0 {
				r.diags.Errorf(KindInvalidGenericBound, b.Pos(),
					"generic trait bounds are not supported")
				continue
			}
			bounds[p.Name] = append(bounds[p.Name], b.Name)
		}
	}
	return bounds
}

// resolveInjectedType resolves a DI-synthesized field's type as a bare
// class reference without declaring-site validation.
func (r *registrar) resolveInjectedType(t ast.TypeExpr, _ []string) types.Type {
	if nt, ok := t.(*ast.NamedType); ok {
		return types.NewClass(nt.Name)
	}
	return r.ResolveType(t, nil)
}

// ResolveType resolves a source type annotation to a semantic type,
// validating the nullable and map-key restrictions.
func (r *registrar) ResolveType(t ast.TypeExpr, generics []string) types.Type {
	reg := r.reg
	switch tt := t.(type) {
	case *ast.NamedType:
		return resolveNamed(reg, r.diags, tt, generics)
	case *ast.NullableType:
		inner := r.ResolveType(tt.Inner, generics)
		if types.IsNullable(inner) {
			r.diags.Errorf(KindNullableNotAllowed, t.Pos(), "nested nullable type %s?", inner)
			return inner
		}
		if types.IsVoid(inner) {
			r.diags.Errorf(KindNullableNotAllowed, t.Pos(), "void cannot be nullable")
			return inner
		}
		return types.NewNullable(inner)
	case *ast.FunctionTypeExpr:
		fn := &types.Function{}
		for _, p := range tt.Params {
			fn.Params = append(fn.Params, r.ResolveType(p, generics))
		}
		if tt.Return != nil {
			fn.Return = r.ResolveType(tt.Return, generics)
		} else {
			fn.Return = types.VOID
		}
		return fn
	default:
		r.diags.Errorf(KindInternal, t.Pos(), "unhandled type expression %T", t)
		return types.VOID
	}
}

// ResolveTypeExpr resolves a type annotation against a built registry; used
// by the checker for local annotations and explicit type arguments.
func ResolveTypeExpr(reg *Registry, diags *errors.List, t ast.TypeExpr, generics []string) types.Type {
	r := &registrar{reg: reg, diags: diags}
	return r.ResolveType(t, generics)
}

func resolveNamed(reg *Registry, diags *errors.List, tt *ast.NamedType, generics []string) types.Type {
	resolve := func(t ast.TypeExpr) types.Type {
		r := &registrar{reg: reg, diags: diags}
		return r.ResolveType(t, generics)
	}

	switch tt.Name {
	case "int":
		return types.INT
	case "float":
		return types.FLOAT
	case "bool":
		return types.BOOL
	case "byte":
		return types.BYTE
	case "string":
		return types.STRING
	case "bytes":
		return types.BYTES
	case "void":
		return types.VOID
	case "Array":
		if len(tt.TypeArgs) != 1 {
			diags.Errorf(KindArityMismatch, tt.Pos(), "Array takes 1 type argument, got %d", len(tt.TypeArgs))
			return types.NewArray(types.VOID)
		}
		return types.NewArray(resolve(tt.TypeArgs[0]))
	case "Map":
		if len(tt.TypeArgs) != 2 {
			diags.Errorf(KindArityMismatch, tt.Pos(), "Map takes 2 type arguments, got %d", len(tt.TypeArgs))
			return types.NewMap(types.VOID, types.VOID)
		}
		key := resolve(tt.TypeArgs[0])
		if !types.IsHashable(key) && !types.ContainsTypeParam(key) {
			diags.Errorf(KindMismatch, tt.Pos(), "map key type %s is not hashable", key)
		}
		return types.NewMap(key, resolve(tt.TypeArgs[1]))
	case "Set":
		if len(tt.TypeArgs) != 1 {
			diags.Errorf(KindArityMismatch, tt.Pos(), "Set takes 1 type argument, got %d", len(tt.TypeArgs))
			return types.NewSet(types.VOID)
		}
		elem := resolve(tt.TypeArgs[0])
		if !types.IsHashable(elem) && !types.ContainsTypeParam(elem) {
			diags.Errorf(KindMismatch, tt.Pos(), "set element type %s is not hashable", elem)
		}
		return types.NewSet(elem)
	}

	for _, g := range generics {
		if tt.Name == g {
			if len(tt.TypeArgs) > 0 {
				diags.Errorf(KindInvalidGenericBound, tt.Pos(),
					"type parameter %s cannot take type arguments", tt.Name)
			}
			return &types.TypeParam{Name: tt.Name}
		}
	}

	args := make([]types.Type, len(tt.TypeArgs))
	for i, a := range tt.TypeArgs {
		args[i] = resolve(a)
	}

	if info, ok := reg.Classes[tt.Name]; ok {
		checkArity(diags, tt, len(info.Generics), len(args))
		return &types.Named{Kind: types.NamedClass, Name: tt.Name, TypeArgs: args}
	}
	if info, ok := reg.Traits[tt.Name]; ok {
		checkArity(diags, tt, len(info.Generics), len(args))
		return &types.Named{Kind: types.NamedTrait, Name: tt.Name, TypeArgs: args}
	}
	if info, ok := reg.Enums[tt.Name]; ok {
		checkArity(diags, tt, len(info.Generics), len(args))
		return &types.Named{Kind: types.NamedEnum, Name: tt.Name, TypeArgs: args}
	}
	if _, ok := reg.Errors[tt.Name]; ok {
		return types.NewError(tt.Name)
	}

	diags.Errorf(KindUnknownType, tt.Pos(), "unknown type %s", tt.Name)
	return types.VOID
}

func checkArity(diags *errors.List, tt *ast.NamedType, want, got int) {
	if want != got {
		diags.Errorf(KindArityMismatch, tt.Pos(),
			"%s takes %d type arguments, got %d", tt.Name, want, got)
	}
}

func genericNames(params []*ast.GenericParam) []string {
	if len(params) == 0 {
		return nil
	}
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}
