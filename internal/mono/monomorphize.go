// Package mono expands generic declarations into concrete, type-specialized
// copies. Generic declarations are never lowered directly: the fixed point
// here closes the set of instantiations so that no type parameter survives
// in any reachable declaration.
package mono

import (
	"sort"
	"strings"

	"github.com/mkerian10/pluto/internal/ast"
	"github.com/mkerian10/pluto/internal/errors"
	"github.com/mkerian10/pluto/internal/lexer"
	"github.com/mkerian10/pluto/internal/semantic"
	"github.com/mkerian10/pluto/internal/types"
)

// Instance is one synthesized monomorphic copy of a generic declaration.
type Instance struct {
	Generic string // qualified name of the generic declaration
	Mangled string // GenericName__T1__T2
	Args    []types.Type
	Decl    ast.Declaration
}

// Result is the closed set of concrete instances.
type Result struct {
	Instances []*Instance
	byKey     map[string]*Instance
}

// Lookup returns the instance for a generic name and argument list.
func (r *Result) Lookup(name string, args []types.Type) *Instance {
	return r.byKey[instanceKey(name, args)]
}

// Run computes the monomorphization fixed point: seed the work list with
// every concrete use site the checker observed, synthesize a copy per
// (generic, type-args) pair, then walk the copies' recorded inner use
// sites until nothing new appears. Bounds are validated at every
// instantiation.
func Run(program *ast.Program, reg *semantic.Registry, info *semantic.Info, diags *errors.List) *Result {
	m := &monomorphizer{
		reg:       reg,
		diags:     diags,
		result:    &Result{byKey: make(map[string]*Instance)},
		templates: make(map[string][]*semantic.Instantiation),
	}

	for _, inst := range info.Instantiations {
		m.templates[inst.Owner] = append(m.templates[inst.Owner], inst)
	}

	// Seed: every fully concrete instantiation observed anywhere.
	for _, inst := range info.Instantiations {
		if !argsContainParams(inst.Args) {
			m.enqueue(inst.Name, inst.Args, inst.Pos)
		}
	}

	for len(m.worklist) > 0 {
		item := m.worklist[0]
		m.worklist = m.worklist[1:]
		m.instantiate(item)
	}

	sort.Slice(m.result.Instances, func(i, j int) bool {
		return m.result.Instances[i].Mangled < m.result.Instances[j].Mangled
	})
	return m.result
}

type workItem struct {
	name string
	args []types.Type
	pos  lexer.Position
}

type monomorphizer struct {
	reg       *semantic.Registry
	diags     *errors.List
	result    *Result
	templates map[string][]*semantic.Instantiation
	worklist  []workItem
}

func (m *monomorphizer) enqueue(name string, args []types.Type, pos lexer.Position) {
	if _, generic := m.genericDecl(name); !generic {
		return
	}
	key := instanceKey(name, args)
	if _, seen := m.result.byKey[key]; seen {
		return
	}
	// Reserve the key immediately so mutual recursion terminates.
	m.result.byKey[key] = &Instance{Generic: name, Mangled: mangle(name, args), Args: args}
	m.worklist = append(m.worklist, workItem{name: name, args: args, pos: pos})
}

// genericDecl reports whether name refers to a generic declaration and
// returns its type parameter list.
func (m *monomorphizer) genericDecl(name string) ([]string, bool) {
	if fn, ok := m.reg.Functions[name]; ok && len(fn.Generics) > 0 {
		return fn.Generics, true
	}
	if class, ok := m.reg.Classes[name]; ok && len(class.Generics) > 0 {
		return class.Generics, true
	}
	if enum, ok := m.reg.Enums[name]; ok && len(enum.Generics) > 0 {
		return enum.Generics, true
	}
	return nil, false
}

func (m *monomorphizer) instantiate(item workItem) {
	generics, ok := m.genericDecl(item.name)
	if !ok {
		return
	}
	if len(generics) != len(item.args) {
		m.diags.Errorf(semantic.KindArityMismatch, item.pos,
			"%s takes %d type arguments, got %d", item.name, len(generics), len(item.args))
		return
	}

	bindings := make(map[string]types.Type, len(generics))
	subst := make(map[string]ast.TypeExpr, len(generics))
	for i, g := range generics {
		bindings[g] = item.args[i]
		subst[g] = typeToExpr(item.args[i])
	}

	m.checkBounds(item, generics, bindings)

	instance := m.result.byKey[instanceKey(item.name, item.args)]

	cloner := &cloner{subst: subst}
	switch {
	case m.reg.Functions[item.name] != nil:
		fn := m.reg.Functions[item.name].Decl
		specialized := cloner.function(fn)
		specialized.Name = &ast.Identifier{Token: fn.Name.Token, Value: instance.Mangled}
		specialized.Generics = nil
		specialized.SetQualifiedName(instance.Mangled)
		instance.Decl = specialized
		m.enqueueInner(item.name, bindings)

	case m.reg.Classes[item.name] != nil:
		class := m.reg.Classes[item.name].Decl
		specialized := cloner.class(class)
		specialized.Name = &ast.Identifier{Token: class.Name.Token, Value: instance.Mangled}
		specialized.Generics = nil
		specialized.SetQualifiedName(instance.Mangled)
		instance.Decl = specialized
		for _, method := range class.Methods {
			m.enqueueInner(item.name+"."+method.Name.Value, bindings)
		}

	case m.reg.Enums[item.name] != nil:
		enum := m.reg.Enums[item.name].Decl
		specialized := cloner.enum(enum)
		specialized.Name = &ast.Identifier{Token: enum.Name.Token, Value: instance.Mangled}
		specialized.Generics = nil
		specialized.SetQualifiedName(instance.Mangled)
		instance.Decl = specialized
	}

	m.result.Instances = append(m.result.Instances, instance)
}

// enqueueInner substitutes the instance's bindings into the generic body's
// recorded use sites and enqueues any instantiation that became concrete.
func (m *monomorphizer) enqueueInner(owner string, bindings map[string]types.Type) {
	for _, tmpl := range m.templates[owner] {
		args := make([]types.Type, len(tmpl.Args))
		for i, a := range tmpl.Args {
			args[i] = types.Substitute(a, bindings)
		}
		if argsContainParams(args) {
			m.diags.Errorf(semantic.KindInternal, tmpl.Pos,
				"unresolved type parameter survives instantiation of %s", tmpl.Name)
			continue
		}
		m.enqueue(tmpl.Name, args, tmpl.Pos)
	}
}

// checkBounds validates `<T: Trait>` bounds against the substituted types:
// the argument must be a class that declares `impl Trait`.
func (m *monomorphizer) checkBounds(item workItem, generics []string, bindings map[string]types.Type) {
	var bounds map[string][]string
	if fn, ok := m.reg.Functions[item.name]; ok {
		bounds = fn.Bounds
	} else if class, ok := m.reg.Classes[item.name]; ok {
		bounds = class.Bounds
	}
	if len(bounds) == 0 {
		return
	}

	for _, g := range generics {
		for _, traitName := range bounds[g] {
			arg := bindings[g]
			if !m.satisfies(arg, traitName) {
				m.diags.Errorf(semantic.KindBoundNotSatisfied, item.pos,
					"%s does not satisfy bound %s on %s of %s", arg, traitName, g, item.name)
			}
		}
	}
}

func (m *monomorphizer) satisfies(arg types.Type, traitName string) bool {
	named, ok := arg.(*types.Named)
	if !ok || named.Kind != types.NamedClass {
		return false
	}
	class, ok := m.reg.Classes[named.Name]
	if !ok {
		return false
	}
	for _, impl := range class.Impls {
		if impl == traitName {
			return true
		}
	}
	return false
}

func argsContainParams(args []types.Type) bool {
	for _, a := range args {
		if types.ContainsTypeParam(a) {
			return true
		}
	}
	return false
}

func instanceKey(name string, args []types.Type) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, a := range args {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, "|")
}

// mangle builds the reserved-delimiter instance name: id__int__string.
func mangle(name string, args []types.Type) string {
	var sb strings.Builder
	sb.WriteString(name)
	for _, a := range args {
		sb.WriteString("__")
		sb.WriteString(mangleType(a))
	}
	return sb.String()
}

func mangleType(t types.Type) string {
	s := t.String()
	replacer := strings.NewReplacer(
		"<", "_", ">", "", ", ", "_", ",", "_",
		"?", "_opt", "(", "_", ")", "", " ", "_", ".", "_",
	)
	return replacer.Replace(s)
}

// typeToExpr renders a semantic type back into a source-level annotation
// for substitution into cloned declarations.
func typeToExpr(t types.Type) ast.TypeExpr {
	switch tt := t.(type) {
	case *types.Primitive:
		return &ast.NamedType{Name: tt.Name}
	case *types.Array:
		return &ast.NamedType{Name: "Array", TypeArgs: []ast.TypeExpr{typeToExpr(tt.Elem)}}
	case *types.Map:
		return &ast.NamedType{Name: "Map", TypeArgs: []ast.TypeExpr{typeToExpr(tt.Key), typeToExpr(tt.Value)}}
	case *types.Set:
		return &ast.NamedType{Name: "Set", TypeArgs: []ast.TypeExpr{typeToExpr(tt.Elem)}}
	case *types.Nullable:
		return &ast.NullableType{Inner: typeToExpr(tt.Inner)}
	case *types.Function:
		fn := &ast.FunctionTypeExpr{}
		for _, p := range tt.Params {
			fn.Params = append(fn.Params, typeToExpr(p))
		}
		if tt.Return != nil && !types.IsVoid(tt.Return) {
			fn.Return = typeToExpr(tt.Return)
		}
		return fn
	case *types.Named:
		named := &ast.NamedType{Name: tt.Name}
		for _, a := range tt.TypeArgs {
			named.TypeArgs = append(named.TypeArgs, typeToExpr(a))
		}
		return named
	case *types.TypeParam:
		return &ast.NamedType{Name: tt.Name}
	default:
		return &ast.NamedType{Name: t.String()}
	}
}
