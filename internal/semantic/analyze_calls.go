package semantic

import (
	"github.com/mkerian10/pluto/internal/ast"
	"github.com/mkerian10/pluto/internal/types"
)

// checkCall resolves and types a call expression, recording the resolved
// target and mutating-receiver facts for the downstream passes.
func (a *Analyzer) checkCall(ce *ast.CallExpression) types.Type {
	switch callee := ce.Function.(type) {
	case *ast.Identifier:
		return a.checkNamedCall(ce, callee)
	case *ast.MemberExpression:
		return a.checkMethodCall(ce, callee)
	default:
		// Calling an arbitrary expression: it must be function-typed.
		t := a.checkExpr(ce.Function)
		fnType, ok := t.(*types.Function)
		if !ok {
			a.diags.Errorf(KindNotCallable, ce.Function.Pos(), "%s is not callable", t)
			return types.VOID
		}
		a.checkArgs(ce, fnType.Params, nil)
		return fnType.Return
	}
}

func (a *Analyzer) checkNamedCall(ce *ast.CallExpression, id *ast.Identifier) types.Type {
	name := id.Value

	// Locals (closure values) shadow everything.
	if sym, ok := a.symbols.Resolve(name); ok {
		fnType, isFn := sym.Type.(*types.Function)
		if !isFn {
			a.diags.Errorf(KindNotCallable, id.Pos(), "%s is not callable", sym.Type)
			return types.VOID
		}
		a.checkArgs(ce, fnType.Params, nil)
		return fnType.Return
	}

	if isBuiltinFunction(name) {
		return a.checkBuiltinCall(ce, name)
	}

	if fn, ok := a.reg.Functions[name]; ok {
		return a.checkFunctionCall(ce, fn)
	}

	if _, ok := a.reg.Classes[name]; ok {
		a.diags.Errorf(KindNotCallable, id.Pos(),
			"class %s is not callable; construct it with a literal", name)
		return types.VOID
	}
	a.diags.Errorf(KindUndefinedName, id.Pos(), "undefined function %s", name)
	return types.VOID
}

// checkBuiltinCall types the prelude functions. print and to_string accept
// any stringable value; len accepts the measurable containers.
func (a *Analyzer) checkBuiltinCall(ce *ast.CallExpression, name string) types.Type {
	if len(ce.Args) != 1 {
		a.diags.Errorf(KindArityMismatch, ce.Pos(), "%s takes 1 argument, got %d", name, len(ce.Args))
		for _, arg := range ce.Args {
			a.checkExpr(arg)
		}
		return types.VOID
	}
	arg := a.checkExpr(ce.Args[0])

	switch name {
	case "print":
		if !a.stringable(arg) {
			a.diags.Errorf(KindMismatch, ce.Args[0].Pos(), "print cannot format %s", arg)
		}
		return types.VOID
	case "to_string":
		if !a.stringable(arg) {
			a.diags.Errorf(KindMismatch, ce.Args[0].Pos(), "to_string cannot format %s", arg)
		}
		return types.STRING
	case "panic":
		if !types.AssignableTo(arg, types.STRING) {
			a.diags.Errorf(KindMismatch, ce.Args[0].Pos(), "panic takes a string, got %s", arg)
		}
		return types.VOID
	case "len":
		switch t := arg.(type) {
		case *types.Array, *types.Map, *types.Set:
			return types.INT
		case *types.Primitive:
			if t.Kind == types.KindString || t.Kind == types.KindBytes {
				return types.INT
			}
		}
		a.diags.Errorf(KindMismatch, ce.Args[0].Pos(), "len is not defined for %s", arg)
		return types.INT
	}
	return types.VOID
}

// checkFunctionCall types a call to a declared function, inferring generic
// arguments left-to-right unless explicit type arguments are given.
func (a *Analyzer) checkFunctionCall(ce *ast.CallExpression, fn *FnInfo) types.Type {
	a.info.CallTargets[ce] = &CallTarget{QName: fn.Name}

	if len(fn.Generics) == 0 {
		a.checkArgs(ce, fn.Params, nil)
		return fn.Return
	}

	bindings := make(map[string]types.Type)
	if len(ce.TypeArgs) > 0 {
		if len(ce.TypeArgs) != len(fn.Generics) {
			a.diags.Errorf(KindArityMismatch, ce.Pos(),
				"%s takes %d type arguments, got %d", fn.Name, len(fn.Generics), len(ce.TypeArgs))
		}
		for i, argExpr := range ce.TypeArgs {
			if i < len(fn.Generics) {
				bindings[fn.Generics[i]] = ResolveTypeExpr(a.reg, a.diags, argExpr, a.generics)
			}
		}
		a.checkArgs(ce, fn.Params, bindings)
	} else {
		a.inferArgs(ce, fn.Params, bindings)
	}

	args := make([]types.Type, len(fn.Generics))
	for i, g := range fn.Generics {
		bound, ok := bindings[g]
		if !ok {
			a.diags.Errorf(KindGenericInference, ce.Pos(),
				"cannot infer type argument %s of %s", g, fn.Name)
			bound = types.VOID
		}
		args[i] = bound
	}
	a.recordInstantiation(fn.Name, args, ce.Pos())

	return types.Substitute(fn.Return, bindings)
}

// inferArgs checks arguments against parameters while unifying type
// parameters from the argument types, left to right.
func (a *Analyzer) inferArgs(ce *ast.CallExpression, params []types.Type, bindings map[string]types.Type) {
	if len(ce.Args) != len(params) {
		a.diags.Errorf(KindArityMismatch, ce.Pos(),
			"expected %d arguments, got %d", len(params), len(ce.Args))
	}
	for i, arg := range ce.Args {
		got := a.checkExpr(arg)
		if i >= len(params) {
			continue
		}
		if !unify(params[i], got, bindings) {
			a.diags.Errorf(KindMismatch, arg.Pos(),
				"argument %d is %s, want %s", i+1, got, types.Substitute(params[i], bindings))
		}
	}
}

// checkArgs checks arguments against (optionally substituted) parameters.
func (a *Analyzer) checkArgs(ce *ast.CallExpression, params []types.Type, bindings map[string]types.Type) {
	if len(ce.Args) != len(params) {
		a.diags.Errorf(KindArityMismatch, ce.Pos(),
			"expected %d arguments, got %d", len(params), len(ce.Args))
	}
	for i, arg := range ce.Args {
		got := a.checkExpr(arg)
		if i >= len(params) {
			continue
		}
		want := params[i]
		if bindings != nil {
			want = types.Substitute(want, bindings)
		}
		if !types.AssignableTo(got, want) && !types.ContainsTypeParam(want) {
			a.diags.Errorf(KindMismatch, arg.Pos(),
				"argument %d is %s, want %s", i+1, got, want)
		}
	}
}

// checkMethodCall types method calls: associated functions via the class
// name, instance methods, trait methods, app members, and intrinsic
// container methods.
func (a *Analyzer) checkMethodCall(ce *ast.CallExpression, me *ast.MemberExpression) types.Type {
	name := me.Property.Value

	if obj, ok := me.Object.(*ast.Identifier); ok {
		if _, isLocal := a.symbols.Resolve(obj.Value); !isLocal {
			if enum, found := a.reg.Enums[obj.Value]; found {
				a.diags.Errorf(KindNotCallable, me.Property.Pos(),
					"variant %s.%s is not callable; construct it with a literal", enum.Name, name)
				return types.VOID
			}
			if class, found := a.reg.Classes[obj.Value]; found {
				m, has := class.Methods[name]
				if !has || m.Receiver != ast.ReceiverNone {
					a.diags.Errorf(KindUndefinedName, me.Property.Pos(),
						"class %s has no associated function %s", obj.Value, name)
					return types.VOID
				}
				a.info.CallTargets[ce] = &CallTarget{QName: class.Name + "." + name, IsMethod: true}
				a.checkArgs(ce, m.Params, nil)
				return m.Return
			}
		}
	}

	objType := a.checkExpr(me.Object)

	switch t := objType.(type) {
	case *types.Named:
		switch t.Kind {
		case types.NamedClass:
			if a.reg.App != nil && t.Name == a.reg.App.Name {
				return a.checkAppCall(ce, me, name)
			}
			class := a.reg.Classes[t.Name]
			if class == nil {
				break
			}
			m, ok := class.Methods[name]
			if !ok {
				// A function-typed field is callable.
				if f := class.Field(name); f != nil {
					bindings := bindingMap(class.Generics, t.TypeArgs)
					if fnType, isFn := types.Substitute(f.Type, bindings).(*types.Function); isFn {
						a.checkArgs(ce, fnType.Params, nil)
						return fnType.Return
					}
				}
				a.diags.Errorf(KindUndefinedName, me.Property.Pos(),
					"%s has no method %s", t.Name, name)
				return types.VOID
			}
			bindings := bindingMap(class.Generics, t.TypeArgs)
			a.info.CallTargets[ce] = &CallTarget{QName: class.Name + "." + name, IsMethod: true}
			if m.Receiver == ast.ReceiverMutSelf {
				a.info.MutatingCalls[ce] = true
			}
			a.checkArgs(ce, m.Params, bindings)
			return types.Substitute(m.Return, bindings)

		case types.NamedTrait:
			trait := a.reg.Traits[t.Name]
			if trait == nil {
				break
			}
			m, ok := trait.Methods[name]
			if !ok {
				a.diags.Errorf(KindUndefinedName, me.Property.Pos(),
					"%s has no method %s", t.Name, name)
				return types.VOID
			}
			bindings := bindingMap(trait.Generics, t.TypeArgs)
			a.info.CallTargets[ce] = &CallTarget{QName: trait.Name + "." + name, IsMethod: true}
			if m.Receiver == ast.ReceiverMutSelf {
				a.info.MutatingCalls[ce] = true
			}
			a.checkArgs(ce, m.Params, bindings)
			return types.Substitute(m.Return, bindings)

		case types.NamedError:
			if name == "to_string" && len(ce.Args) == 0 {
				return types.STRING
			}
		}

	case *types.AnyError:
		if name == "to_string" && len(ce.Args) == 0 {
			return types.STRING
		}

	default:
		if bm, ok := builtinMethod(objType, name); ok {
			if bm.Mutating {
				a.info.MutatingCalls[ce] = true
			}
			a.checkArgs(ce, bm.Sig.Params, nil)
			return bm.Sig.Return
		}
	}

	a.diags.Errorf(KindUndefinedName, me.Property.Pos(), "%s has no method %s", objType, name)
	return types.VOID
}

func (a *Analyzer) checkAppCall(ce *ast.CallExpression, me *ast.MemberExpression, name string) types.Type {
	app := a.reg.App
	if m, ok := app.Methods[name]; ok {
		a.info.CallTargets[ce] = &CallTarget{QName: app.Name + "." + name, IsMethod: true}
		a.checkArgs(ce, m.Params, nil)
		return m.Return
	}
	for _, dep := range app.BracketDeps {
		if dep.Name != name {
			continue
		}
		a.diags.Errorf(KindNotCallable, me.Property.Pos(),
			"app dependency %s is not callable", name)
		return types.VOID
	}
	a.diags.Errorf(KindUndefinedName, me.Property.Pos(), "app has no method %s", name)
	return types.VOID
}
