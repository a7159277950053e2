package semantic

import (
	"github.com/mkerian10/pluto/internal/ast"
	"github.com/mkerian10/pluto/internal/errors"
	"github.com/mkerian10/pluto/internal/lexer"
	"github.com/mkerian10/pluto/internal/types"
)

// CallTarget records what a call expression resolved to. QName is the
// qualified function name, or "Class.method" for methods. Calls to closures
// and builtins get no CallTarget (they never participate in error
// inference).
type CallTarget struct {
	QName    string
	IsMethod bool
}

// Instantiation is one observed use of a generic declaration with type
// arguments; the monomorphizer seeds its work list from these.
type Instantiation struct {
	Owner string // enclosing function or method; "" at module level
	Name  string // generic declaration's qualified name
	Args  []types.Type
	Pos   lexer.Position
}

// Info is the checker's side table: expression types and call resolution,
// keyed by AST node. Downstream passes read it instead of re-inferring.
type Info struct {
	ExprTypes      map[ast.Expression]types.Type
	CallTargets    map[*ast.CallExpression]*CallTarget
	MutatingCalls  map[*ast.CallExpression]bool
	Instantiations []*Instantiation
}

// NewInfo creates an empty side table.
func NewInfo() *Info {
	return &Info{
		ExprTypes:     make(map[ast.Expression]types.Type),
		CallTargets:   make(map[*ast.CallExpression]*CallTarget),
		MutatingCalls: make(map[*ast.CallExpression]bool),
	}
}

// Analyzer type-checks the flattened, desugared program against the type
// environment.
type Analyzer struct {
	reg   *Registry
	diags *errors.List
	info  *Info

	symbols *SymbolTable

	currentReturn types.Type
	selfType      types.Type
	selfClass     *ClassInfo
	selfApp       bool
	generics      []string
	owner         string

	constState map[string]int // 0 unresolved, 1 in progress, 2 done
}

// Analyze type-checks every declaration and returns the side table.
func Analyze(program *ast.Program, reg *Registry, diags *errors.List) *Info {
	a := &Analyzer{
		reg:        reg,
		diags:      diags,
		info:       NewInfo(),
		symbols:    NewSymbolTable(),
		constState: make(map[string]int),
	}

	for name := range reg.Consts {
		a.constType(name, lexer.Position{})
	}

	for _, decl := range program.Declarations {
		switch d := decl.(type) {
		case *ast.FunctionDecl:
			if fn := reg.Functions[d.QualifiedName()]; fn != nil && fn.Decl == d {
				a.checkFunction(fn)
			}
		case *ast.ClassDecl:
			if class := reg.Classes[d.QualifiedName()]; class != nil {
				a.checkClass(class)
			}
		case *ast.TraitDecl:
			if trait := reg.Traits[d.QualifiedName()]; trait != nil {
				a.checkTrait(trait)
			}
		case *ast.AppDecl:
			if reg.App != nil && reg.App.Decl == d {
				a.checkApp(reg.App)
			}
		}
	}

	a.checkTraitSatisfaction()
	return a.info
}

// constType resolves (and memoizes) a module constant's type, detecting
// initializer cycles.
func (a *Analyzer) constType(name string, pos lexer.Position) types.Type {
	info, ok := a.reg.Consts[name]
	if !ok {
		return types.VOID
	}
	switch a.constState[name] {
	case 2:
		return info.Type
	case 1:
		a.diags.Errorf(KindInternal, pos, "constant %s depends on itself", name)
		info.Type = types.VOID
		return info.Type
	}
	a.constState[name] = 1

	a.owner = ""
	got := a.checkExpr(info.Decl.Value)
	if info.Decl.Type != nil {
		want := ResolveTypeExpr(a.reg, a.diags, info.Decl.Type, nil)
		if !types.AssignableTo(got, want) {
			a.diags.Errorf(KindMismatch, info.Decl.Pos(),
				"cannot assign %s to constant of type %s", got, want)
		}
		got = want
	}
	info.Type = got
	a.constState[name] = 2
	return got
}

func (a *Analyzer) checkFunction(fn *FnInfo) {
	if fn.Decl == nil || fn.Decl.Body == nil {
		return
	}
	a.enterFunction(fn.Name, fn.Generics, fn.Return, nil, nil, false)
	for i, p := range fn.Decl.Params {
		a.symbols.Define(p.Name.Value, fn.Params[i], true)
	}
	a.checkBlock(fn.Decl.Body)
}

func (a *Analyzer) checkClass(class *ClassInfo) {
	selfType := classSelfType(class)
	for _, name := range methodOrder(class.Decl) {
		m := class.Methods[name]
		if m == nil || m.Decl.Body == nil {
			continue
		}
		a.enterFunction(class.Name+"."+m.Name, class.Generics, m.Return, selfType, class, false)
		if m.Receiver == ast.ReceiverNone {
			a.selfType = nil
			a.selfClass = nil
		}
		for i, p := range m.Decl.Params {
			a.symbols.Define(p.Name.Value, m.Params[i], true)
		}
		a.checkBlock(m.Decl.Body)
	}
}

func (a *Analyzer) checkTrait(trait *TraitInfo) {
	selfType := &types.Named{Kind: types.NamedTrait, Name: trait.Name, TypeArgs: paramArgs(trait.Generics)}
	for _, m := range trait.Decl.Methods {
		if m.Body == nil {
			continue
		}
		mi := trait.Methods[m.Name.Value]
		a.enterFunction(trait.Name+"."+m.Name.Value, trait.Generics, mi.Return, selfType, nil, false)
		for i, p := range m.Params {
			a.symbols.Define(p.Name.Value, mi.Params[i], true)
		}
		a.checkBlock(m.Body)
	}
}

func (a *Analyzer) checkApp(app *AppInfo) {
	selfType := &types.Named{Kind: types.NamedClass, Name: app.Name}
	for _, m := range app.Decl.Methods {
		mi := app.Methods[m.Name.Value]
		if mi == nil || m.Body == nil {
			continue
		}
		a.enterFunction(app.Name+"."+m.Name.Value, nil, mi.Return, selfType, nil, true)
		for i, p := range m.Params {
			a.symbols.Define(p.Name.Value, mi.Params[i], true)
		}
		a.checkBlock(m.Body)
	}
}

// enterFunction resets the per-function checking context.
func (a *Analyzer) enterFunction(owner string, generics []string, ret types.Type, selfType types.Type, selfClass *ClassInfo, isApp bool) {
	a.owner = owner
	a.generics = generics
	a.currentReturn = ret
	a.selfType = selfType
	a.selfClass = selfClass
	a.selfApp = isApp
	a.symbols = NewSymbolTable()
}

// checkTraitSatisfaction verifies every `impl` clause: the class must
// declare a structurally matching method for each required trait method;
// default methods are inherited when not overridden.
func (a *Analyzer) checkTraitSatisfaction() {
	for _, class := range a.reg.Classes {
		for _, traitName := range class.Impls {
			trait := a.reg.Traits[traitName]
			if trait == nil {
				continue
			}
			for name, want := range trait.Methods {
				got, ok := class.Methods[name]
				if !ok {
					if want.Default {
						continue
					}
					a.diags.Errorf(KindTraitNotSatisfied, class.Decl.Pos(),
						"%s does not implement %s.%s", class.Name, traitName, name)
					continue
				}
				if !methodSignatureMatches(want, got) {
					a.diags.Errorf(KindTraitNotSatisfied, got.Decl.Pos(),
						"%s.%s does not match the signature of %s.%s",
						class.Name, name, traitName, name)
				}
			}
		}
	}
}

// methodSignatureMatches reports structural signature equality: parameter
// types, return type, and receiver-kind compatibility (an implementation
// may take `self` where the trait demands `mut self`, not the reverse).
func methodSignatureMatches(want, got *MethodInfo) bool {
	if len(want.Params) != len(got.Params) {
		return false
	}
	for i := range want.Params {
		if !want.Params[i].Equals(got.Params[i]) {
			return false
		}
	}
	if !want.Return.Equals(got.Return) {
		return false
	}
	if want.Receiver == ast.ReceiverSelf && got.Receiver == ast.ReceiverMutSelf {
		return false
	}
	return true
}

// classSelfType is the type of `self` inside a class: the class applied to
// its own type parameters.
func classSelfType(class *ClassInfo) *types.Named {
	return &types.Named{
		Kind:     types.NamedClass,
		Name:     class.Name,
		TypeArgs: paramArgs(class.Generics),
	}
}

func paramArgs(generics []string) []types.Type {
	if len(generics) == 0 {
		return nil
	}
	args := make([]types.Type, len(generics))
	for i, g := range generics {
		args[i] = &types.TypeParam{Name: g}
	}
	return args
}

// methodOrder returns method names in declaration order.
func methodOrder(decl *ast.ClassDecl) []string {
	names := make([]string, 0, len(decl.Methods))
	for _, m := range decl.Methods {
		names = append(names, m.Name.Value)
	}
	return names
}

// recordInstantiation notes a concrete or parameterized use of a generic
// declaration for the monomorphizer.
func (a *Analyzer) recordInstantiation(name string, args []types.Type, pos lexer.Position) {
	if len(args) == 0 {
		return
	}
	a.info.Instantiations = append(a.info.Instantiations, &Instantiation{
		Owner: a.owner,
		Name:  name,
		Args:  args,
		Pos:   pos,
	})
}

// scanTypeInstantiations records generic class and enum instantiations
// mentioned inside a resolved type annotation.
func (a *Analyzer) scanTypeInstantiations(t types.Type, pos lexer.Position) {
	switch tt := t.(type) {
	case *types.Named:
		if len(tt.TypeArgs) > 0 {
			a.recordInstantiation(tt.Name, tt.TypeArgs, pos)
			for _, arg := range tt.TypeArgs {
				a.scanTypeInstantiations(arg, pos)
			}
		}
	case *types.Array:
		a.scanTypeInstantiations(tt.Elem, pos)
	case *types.Map:
		a.scanTypeInstantiations(tt.Key, pos)
		a.scanTypeInstantiations(tt.Value, pos)
	case *types.Set:
		a.scanTypeInstantiations(tt.Elem, pos)
	case *types.Nullable:
		a.scanTypeInstantiations(tt.Inner, pos)
	case *types.Function:
		for _, p := range tt.Params {
			a.scanTypeInstantiations(p, pos)
		}
		if tt.Return != nil {
			a.scanTypeInstantiations(tt.Return, pos)
		}
	}
}
