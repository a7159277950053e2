package semantic

import (
	"strings"

	"github.com/mkerian10/pluto/internal/ast"
	"github.com/mkerian10/pluto/internal/types"
)

// checkExpr computes the type of an expression and records it in the side
// table.
func (a *Analyzer) checkExpr(expr ast.Expression) types.Type {
	t := a.exprType(expr)
	if t == nil {
		t = types.VOID
	}
	a.info.ExprTypes[expr] = t
	return t
}

func (a *Analyzer) exprType(expr ast.Expression) types.Type {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return types.INT
	case *ast.FloatLiteral:
		return types.FLOAT
	case *ast.BooleanLiteral:
		return types.BOOL
	case *ast.ByteLiteral:
		return types.BYTE
	case *ast.StringLiteral:
		return types.STRING
	case *ast.NoneLiteral:
		return types.NONE
	case *ast.SelfExpression:
		if a.selfType == nil {
			a.diags.Errorf(KindUndefinedName, e.Pos(), "self used outside a method")
			return types.VOID
		}
		return a.selfType
	case *ast.Identifier:
		return a.checkIdentifier(e)
	case *ast.InterpolatedString:
		return a.checkInterpolation(e)
	case *ast.PrefixExpression:
		return a.checkPrefix(e)
	case *ast.InfixExpression:
		return a.checkInfix(e)
	case *ast.CallExpression:
		return a.checkCall(e)
	case *ast.MemberExpression:
		return a.checkMember(e)
	case *ast.IndexExpression:
		return a.checkIndex(e)
	case *ast.ArrayLiteral:
		return a.checkArrayLiteral(e)
	case *ast.StructLiteral:
		return a.checkStructLiteral(e)
	case *ast.ClosureLiteral:
		return a.checkClosure(e)
	case *ast.IfExpression:
		return a.checkIf(e)
	case *ast.MatchExpression:
		return a.checkMatch(e)
	case *ast.PropagateExpression:
		return a.checkPropagate(e)
	case *ast.CatchExpression:
		return a.checkCatch(e)
	case *ast.BlockExpression:
		return a.checkBlock(e.Block)
	default:
		a.diags.Errorf(KindInternal, expr.Pos(), "unhandled expression %T", expr)
		return types.VOID
	}
}

func (a *Analyzer) checkIdentifier(id *ast.Identifier) types.Type {
	if sym, ok := a.symbols.Resolve(id.Value); ok {
		return sym.Type
	}
	if _, ok := a.reg.Consts[id.Value]; ok {
		return a.constType(id.Value, id.Pos())
	}
	if fn, ok := a.reg.Functions[id.Value]; ok {
		if len(fn.Generics) > 0 {
			a.diags.Errorf(KindGenericInference, id.Pos(),
				"generic function %s cannot be used as a value", id.Value)
		}
		return fn.Type()
	}
	if _, ok := a.reg.Classes[id.Value]; ok {
		a.diags.Errorf(KindNotCallable, id.Pos(),
			"class %s is not a value; construct it with a literal", id.Value)
		return types.VOID
	}
	if _, ok := a.reg.Enums[id.Value]; ok {
		a.diags.Errorf(KindUndefinedName, id.Pos(),
			"enum %s is not a value; name one of its variants", id.Value)
		return types.VOID
	}
	a.diags.Errorf(KindUndefinedName, id.Pos(), "undefined name %s", id.Value)
	return types.VOID
}

func (a *Analyzer) checkInterpolation(is *ast.InterpolatedString) types.Type {
	for _, part := range is.Parts {
		if part.Expr == nil {
			continue
		}
		t := a.checkExpr(part.Expr)
		if !a.stringable(t) {
			a.diags.Errorf(KindMismatch, part.Expr.Pos(),
				"%s cannot be interpolated into a string (no to_string)", t)
		}
	}
	return types.STRING
}

// stringable reports whether a value may appear in interpolation:
// primitives, caught errors, and any class with a to_string method.
func (a *Analyzer) stringable(t types.Type) bool {
	if isStringable(t) {
		return true
	}
	if _, ok := t.(*types.AnyError); ok {
		return true
	}
	if named, ok := t.(*types.Named); ok {
		if named.Kind == types.NamedClass {
			if class, found := a.reg.Classes[named.Name]; found {
				_, has := class.Methods["to_string"]
				return has
			}
		}
		if named.Kind == types.NamedError {
			return true
		}
	}
	return false
}

func (a *Analyzer) checkPrefix(pe *ast.PrefixExpression) types.Type {
	right := a.checkExpr(pe.Right)
	switch pe.Operator {
	case "-":
		if p, ok := right.(*types.Primitive); ok && (p.Kind == types.KindInt || p.Kind == types.KindFloat) {
			return right
		}
		a.diags.Errorf(KindMismatch, pe.Pos(), "operator - is not defined for %s", right)
	case "!":
		if right.Equals(types.BOOL) {
			return types.BOOL
		}
		a.diags.Errorf(KindMismatch, pe.Pos(), "operator ! is not defined for %s", right)
	}
	return types.VOID
}

func (a *Analyzer) checkInfix(ie *ast.InfixExpression) types.Type {
	left := a.checkExpr(ie.Left)
	right := a.checkExpr(ie.Right)

	switch ie.Operator {
	case "==", "!=":
		return a.checkEquality(ie, left, right)

	case "<", "<=", ">", ">=":
		if comparable(left) && left.Equals(right) {
			return types.BOOL
		}
		a.diags.Errorf(KindMismatch, ie.Pos(),
			"operator %s is not defined for %s and %s", ie.Operator, left, right)
		return types.BOOL

	case "&&", "||":
		if !left.Equals(types.BOOL) || !right.Equals(types.BOOL) {
			a.diags.Errorf(KindMismatch, ie.Pos(),
				"operator %s requires bool operands, got %s and %s", ie.Operator, left, right)
		}
		return types.BOOL

	case "??":
		return a.checkCoalesce(ie, left, right)

	case "+":
		if left.Equals(types.STRING) && right.Equals(types.STRING) {
			return types.STRING
		}
		fallthrough
	case "-", "*", "/", "%":
		if p, ok := left.(*types.Primitive); ok && left.Equals(right) {
			switch p.Kind {
			case types.KindInt:
				return types.INT
			case types.KindFloat:
				if ie.Operator != "%" {
					return types.FLOAT
				}
			}
		}
		a.diags.Errorf(KindMismatch, ie.Pos(),
			"operator %s is not defined for %s and %s", ie.Operator, left, right)
		return left
	}

	a.diags.Errorf(KindInternal, ie.Pos(), "unhandled operator %s", ie.Operator)
	return types.VOID
}

func comparable(t types.Type) bool {
	p, ok := t.(*types.Primitive)
	if !ok {
		return false
	}
	switch p.Kind {
	case types.KindInt, types.KindFloat, types.KindByte, types.KindString:
		return true
	}
	return false
}

func (a *Analyzer) checkEquality(ie *ast.InfixExpression, left, right types.Type) types.Type {
	_, leftNone := left.(*types.NoneType)
	_, rightNone := right.(*types.NoneType)

	if leftNone || rightNone {
		other := left
		if leftNone {
			other = right
		}
		if !leftNone || !rightNone {
			if !types.IsNullable(other) {
				a.diags.Errorf(KindMismatch, ie.Pos(),
					"%s is never none; comparison is always %v", other, ie.Operator == "!=")
			}
		}
		return types.BOOL
	}

	if !left.Equals(right) && !types.AssignableTo(right, left) && !types.AssignableTo(left, right) {
		a.diags.Errorf(KindMismatch, ie.Pos(),
			"cannot compare %s with %s", left, right)
	}
	return types.BOOL
}

// checkCoalesce types `x ?? y`: x must be nullable; the result is T when y
// is T, and Nullable<T> when y is itself nullable.
func (a *Analyzer) checkCoalesce(ie *ast.InfixExpression, left, right types.Type) types.Type {
	nullable, ok := left.(*types.Nullable)
	if !ok {
		a.diags.Errorf(KindNullableNotAllowed, ie.Left.Pos(),
			"?? requires a nullable left operand, got %s", left)
		return left
	}
	inner := nullable.Inner

	if r, ok := right.(*types.Nullable); ok {
		if !r.Inner.Equals(inner) {
			a.diags.Errorf(KindMismatch, ie.Right.Pos(),
				"?? operands disagree: %s vs %s", left, right)
		}
		return nullable
	}
	if !types.AssignableTo(right, inner) {
		a.diags.Errorf(KindMismatch, ie.Right.Pos(),
			"?? fallback must be %s, got %s", inner, right)
	}
	return inner
}

func (a *Analyzer) checkIndex(ie *ast.IndexExpression) types.Type {
	left := a.checkExpr(ie.Left)
	index := a.checkExpr(ie.Index)

	switch t := left.(type) {
	case *types.Array:
		if !index.Equals(types.INT) {
			a.diags.Errorf(KindMismatch, ie.Index.Pos(), "array index must be int, got %s", index)
		}
		return t.Elem
	case *types.Map:
		if !types.AssignableTo(index, t.Key) {
			a.diags.Errorf(KindMismatch, ie.Index.Pos(), "map key must be %s, got %s", t.Key, index)
		}
		return nullableOf(t.Value)
	case *types.Primitive:
		if t.Kind == types.KindBytes {
			if !index.Equals(types.INT) {
				a.diags.Errorf(KindMismatch, ie.Index.Pos(), "bytes index must be int, got %s", index)
			}
			return types.BYTE
		}
	}
	a.diags.Errorf(KindMismatch, ie.Pos(), "%s does not support indexing", left)
	return types.VOID
}

func (a *Analyzer) checkArrayLiteral(al *ast.ArrayLiteral) types.Type {
	if len(al.Elements) == 0 {
		// The element type comes from the annotation; checkLet accepts the
		// empty literal against any array type.
		return types.NewArray(types.VOID)
	}
	elem := a.checkExpr(al.Elements[0])
	for _, e := range al.Elements[1:] {
		t := a.checkExpr(e)
		if !types.AssignableTo(t, elem) {
			a.diags.Errorf(KindMismatch, e.Pos(),
				"array element %s does not match element type %s", t, elem)
		}
	}
	return types.NewArray(elem)
}

func (a *Analyzer) checkClosure(cl *ast.ClosureLiteral) types.Type {
	params := make([]types.Type, len(cl.Params))
	for i, p := range cl.Params {
		if p.Type == nil {
			a.diags.Errorf(KindGenericInference, p.Name.Pos(),
				"closure parameter %s needs a type annotation", p.Name.Value)
			params[i] = types.VOID
			continue
		}
		params[i] = ResolveTypeExpr(a.reg, a.diags, p.Type, a.generics)
	}

	// Free variables are captured by value; the closure body reads the
	// enclosing scopes directly.
	a.pushScope()
	for i, p := range cl.Params {
		a.symbols.Define(p.Name.Value, params[i], true)
	}
	var ret types.Type
	if cl.Body != nil {
		ret = a.checkBlock(cl.Body)
	} else {
		ret = a.checkExpr(cl.Expr)
	}
	a.popScope()

	return &types.Function{Params: params, Return: ret}
}

// checkIf types an if expression, narrowing `x != none` in the then branch
// and `x == none` in the else branch for bindings that are not reassigned
// inside the narrowed block.
func (a *Analyzer) checkIf(ie *ast.IfExpression) types.Type {
	cond := a.checkExpr(ie.Cond)
	if !cond.Equals(types.BOOL) {
		a.diags.Errorf(KindMismatch, ie.Cond.Pos(), "if condition must be bool, got %s", cond)
	}

	narrowThen, narrowElse := a.narrowedBinding(ie.Cond)

	a.pushScope()
	if narrowThen != nil && !reassigns(ie.Then, narrowThen.Name) {
		a.symbols.Define(narrowThen.Name, types.Unwrap(narrowThen.Type), narrowThen.Mutable)
	}
	thenType := a.checkBlock(ie.Then)
	a.popScope()

	var elseType types.Type = types.VOID
	if ie.Else != nil {
		a.pushScope()
		if block, ok := ie.Else.(*ast.Block); ok {
			if narrowElse != nil && !reassigns(block, narrowElse.Name) {
				a.symbols.Define(narrowElse.Name, types.Unwrap(narrowElse.Type), narrowElse.Mutable)
			}
			elseType = a.checkBlock(block)
		} else if elseIf, ok := ie.Else.(*ast.IfExpression); ok {
			elseType = a.checkIf(elseIf)
			a.info.ExprTypes[elseIf] = elseType
		}
		a.popScope()
	}

	if ie.Else != nil && thenType.Equals(elseType) {
		return thenType
	}
	return types.VOID
}

// narrowedBinding inspects a condition for `x != none` / `x == none` and
// returns the symbol narrowed in the then branch and in the else branch.
func (a *Analyzer) narrowedBinding(cond ast.Expression) (then *Symbol, els *Symbol) {
	ie, ok := cond.(*ast.InfixExpression)
	if !ok {
		return nil, nil
	}

	var id *ast.Identifier
	if l, lok := ie.Left.(*ast.Identifier); lok {
		if _, rok := ie.Right.(*ast.NoneLiteral); rok {
			id = l
		}
	} else if r, rok := ie.Right.(*ast.Identifier); rok {
		if _, lok := ie.Left.(*ast.NoneLiteral); lok {
			id = r
		}
	}
	if id == nil {
		return nil, nil
	}

	sym, found := a.symbols.Resolve(id.Value)
	if !found || !types.IsNullable(sym.Type) {
		return nil, nil
	}
	switch ie.Operator {
	case "!=":
		return sym, nil
	case "==":
		return nil, sym
	}
	return nil, nil
}

// reassigns reports whether the block assigns to name.
func reassigns(block *ast.Block, name string) bool {
	return ast.Find(block, func(n ast.Node) bool {
		assign, ok := n.(*ast.AssignStatement)
		if !ok {
			return false
		}
		id, ok := assign.Target.(*ast.Identifier)
		return ok && id.Value == name
	}) != nil
}

func (a *Analyzer) checkMatch(me *ast.MatchExpression) types.Type {
	scrutinee := a.checkExpr(me.Scrutinee)

	var result types.Type
	for i := range me.Arms {
		arm := &me.Arms[i]
		a.pushScope()
		a.checkPattern(arm.Pattern, scrutinee)
		bodyType := a.checkExpr(arm.Body)
		a.popScope()

		if result == nil {
			result = bodyType
		} else if !types.AssignableTo(bodyType, result) {
			// Heterogeneous arms are fine in statement position; the match
			// then has no value.
			result = types.VOID
		}
	}
	if result == nil {
		result = types.VOID
	}
	return result
}

func (a *Analyzer) checkPattern(pattern ast.Pattern, scrutinee types.Type) {
	switch p := pattern.(type) {
	case *ast.VariantPattern:
		named, ok := types.Unwrap(scrutinee).(*types.Named)
		if !ok || named.Kind != types.NamedEnum {
			a.diags.Errorf(KindMismatch, p.Pos(), "cannot match variants of %s", scrutinee)
			return
		}
		enum := a.reg.Enums[named.Name]
		if enum == nil {
			return
		}
		if p.Enum.Value != named.Name {
			a.diags.Errorf(KindMismatch, p.Enum.Pos(),
				"pattern names enum %s but scrutinee is %s", p.Enum.Value, named.Name)
			return
		}
		variant := enum.Variant(p.Variant.Value)
		if variant == nil {
			a.diags.Errorf(KindUndefinedName, p.Variant.Pos(),
				"enum %s has no variant %s", named.Name, p.Variant.Value)
			return
		}
		bindings := bindingMap(enum.Generics, named.TypeArgs)
		for _, f := range p.Fields {
			field := variantField(variant, f.Field.Value)
			if field == nil {
				a.diags.Errorf(KindUndefinedName, f.Field.Pos(),
					"variant %s has no field %s", variant.Name, f.Field.Value)
				continue
			}
			name := f.Field.Value
			if f.Binding != nil {
				name = f.Binding.Value
			}
			a.symbols.Define(name, types.Substitute(field.Type, bindings), true)
		}

	case *ast.LiteralPattern:
		lit := a.checkExpr(p.Value)
		if !types.AssignableTo(lit, types.Unwrap(scrutinee)) {
			a.diags.Errorf(KindMismatch, p.Pos(),
				"pattern %s does not match %s", lit, scrutinee)
		}

	case *ast.NonePattern:
		if !types.IsNullable(scrutinee) {
			a.diags.Errorf(KindMismatch, p.Pos(), "%s is never none", scrutinee)
		}

	case *ast.BindingPattern:
		a.symbols.Define(p.Name.Value, types.Unwrap(scrutinee), true)

	case *ast.WildcardPattern:
	}
}

func variantField(v *VariantInfo, name string) *FieldInfo {
	for _, f := range v.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func bindingMap(generics []string, args []types.Type) map[string]types.Type {
	if len(generics) == 0 || len(generics) != len(args) {
		return nil
	}
	m := make(map[string]types.Type, len(generics))
	for i, g := range generics {
		m[g] = args[i]
	}
	return m
}

// checkPropagate types postfix `?` and `!`.
func (a *Analyzer) checkPropagate(pe *ast.PropagateExpression) types.Type {
	inner := a.checkExpr(pe.Expr)

	if pe.Kind == ast.PropagateNone {
		nullable, ok := inner.(*types.Nullable)
		if !ok {
			a.diags.Errorf(KindNullableNotAllowed, pe.Pos(),
				"? requires a nullable operand, got %s", inner)
			return inner
		}
		if !types.IsVoid(a.currentReturn) && !types.IsNullable(a.currentReturn) {
			a.diags.Errorf(KindNullableNotAllowed, pe.Pos(),
				"? requires the enclosing function to return a nullable or void type")
		}
		return nullable.Inner
	}

	// `!`: the value passes through; fallibility is validated by
	// whole-program error inference.
	return inner
}

func (a *Analyzer) checkCatch(ce *ast.CatchExpression) types.Type {
	inner := a.checkExpr(ce.Expr)

	a.pushScope()
	if ce.Binding != nil {
		a.symbols.Define(ce.Binding.Value, types.ANYERROR, true)
	}
	handler := a.checkBlock(ce.Handler)
	a.popScope()

	if !types.IsVoid(inner) && !types.AssignableTo(handler, inner) {
		a.diags.Errorf(KindMismatch, ce.Handler.Pos(),
			"catch handler yields %s, want %s", handler, inner)
	}
	return inner
}

// checkMember types field access, enum variant access, bound methods, and
// app dependency access.
func (a *Analyzer) checkMember(me *ast.MemberExpression) types.Type {
	name := me.Property.Value

	// Enum variant or associated function access by type name.
	if obj, ok := me.Object.(*ast.Identifier); ok {
		if _, isLocal := a.symbols.Resolve(obj.Value); !isLocal {
			if enum, found := a.reg.Enums[obj.Value]; found {
				return a.checkVariantAccess(me, enum)
			}
			if class, found := a.reg.Classes[obj.Value]; found {
				if m, has := class.Methods[name]; has && m.Receiver == ast.ReceiverNone {
					return m.Signature()
				}
				a.diags.Errorf(KindUndefinedName, me.Property.Pos(),
					"class %s has no associated function %s", obj.Value, name)
				return types.VOID
			}
		}
	}

	objType := a.checkExpr(me.Object)
	return a.memberOn(objType, me, name)
}

func (a *Analyzer) memberOn(objType types.Type, me *ast.MemberExpression, name string) types.Type {
	switch t := objType.(type) {
	case *types.Named:
		switch t.Kind {
		case types.NamedClass:
			if a.reg.App != nil && t.Name == a.reg.App.Name {
				return a.appMember(me, name)
			}
			class := a.reg.Classes[t.Name]
			if class == nil {
				break
			}
			bindings := bindingMap(class.Generics, t.TypeArgs)
			if f := class.Field(name); f != nil {
				return types.Substitute(f.Type, bindings)
			}
			if m, ok := class.Methods[name]; ok {
				sig := m.Signature()
				return types.Substitute(sig, bindings)
			}
		case types.NamedTrait:
			trait := a.reg.Traits[t.Name]
			if trait != nil {
				if m, ok := trait.Methods[name]; ok {
					return m.Signature()
				}
			}
		case types.NamedError:
			errInfo := a.reg.Errors[t.Name]
			if errInfo != nil {
				for _, f := range errInfo.Fields {
					if f.Name == name {
						return f.Type
					}
				}
			}
			if name == "to_string" {
				return fn(types.STRING)
			}
		case types.NamedEnum:
			// Enum values expose no members; variants are matched.
		}
	case *types.AnyError:
		if name == "to_string" {
			return fn(types.STRING)
		}
	default:
		if bm, ok := builtinMethod(objType, name); ok {
			return bm.Sig
		}
	}

	a.diags.Errorf(KindUndefinedName, me.Property.Pos(), "%s has no member %s", objType, name)
	return types.VOID
}

func (a *Analyzer) appMember(me *ast.MemberExpression, name string) types.Type {
	app := a.reg.App
	for _, dep := range app.BracketDeps {
		if dep.Name == name {
			return types.NewClass(dep.Type)
		}
	}
	if m, ok := app.Methods[name]; ok {
		return m.Signature()
	}
	a.diags.Errorf(KindUndefinedName, me.Property.Pos(), "app has no member %s", name)
	return types.VOID
}

func (a *Analyzer) checkVariantAccess(me *ast.MemberExpression, enum *EnumInfo) types.Type {
	variant := enum.Variant(me.Property.Value)
	if variant == nil {
		a.diags.Errorf(KindUndefinedName, me.Property.Pos(),
			"enum %s has no variant %s", enum.Name, me.Property.Value)
		return types.VOID
	}
	if len(variant.Fields) > 0 {
		a.diags.Errorf(KindMismatch, me.Property.Pos(),
			"variant %s carries fields; construct it with a literal", variant.Name)
	}
	return &types.Named{Kind: types.NamedEnum, Name: enum.Name, TypeArgs: paramArgs(enum.Generics)}
}

// checkStructLiteral types class, error, enum-variant, and collection
// construction.
func (a *Analyzer) checkStructLiteral(sl *ast.StructLiteral) types.Type {
	name := sl.Type.Name

	switch name {
	case "Array", "Map", "Set":
		t := ResolveTypeExpr(a.reg, a.diags, sl.Type, a.generics)
		if len(sl.Fields) > 0 {
			a.diags.Errorf(KindMismatch, sl.Pos(), "%s literals take no fields", name)
		}
		return t
	}

	if class, ok := a.reg.Classes[name]; ok {
		return a.checkClassLiteral(sl, class)
	}
	if errInfo, ok := a.reg.Errors[name]; ok {
		return a.checkErrorLiteral(sl, errInfo)
	}
	if enumName, variantName, ok := splitVariantName(name); ok {
		if enum, found := a.reg.Enums[enumName]; found {
			return a.checkVariantLiteral(sl, enum, variantName)
		}
	}

	a.diags.Errorf(KindUnknownType, sl.Type.Pos(), "unknown type %s", name)
	return types.VOID
}

func splitVariantName(name string) (string, string, bool) {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return "", "", false
	}
	return name[:idx], name[idx+1:], true
}

func (a *Analyzer) checkClassLiteral(sl *ast.StructLiteral, class *ClassInfo) types.Type {
	if class.HasInjected() {
		a.diags.Errorf(KindManualConstruction, sl.Pos(),
			"%s has injected dependencies and cannot be constructed manually", class.Name)
	}

	bindings, args := a.literalBindings(sl, class.Generics, func(field string) types.Type {
		if f := class.Field(field); f != nil {
			return f.Type
		}
		return nil
	})

	seen := make(map[string]bool, len(sl.Fields))
	for _, f := range sl.Fields {
		field := class.Field(f.Name.Value)
		if field == nil {
			a.diags.Errorf(KindUndefinedName, f.Name.Pos(),
				"%s has no field %s", class.Name, f.Name.Value)
			continue
		}
		if field.Injected {
			a.diags.Errorf(KindManualConstruction, f.Name.Pos(),
				"field %s is injected and cannot be assigned", f.Name.Value)
			continue
		}
		seen[f.Name.Value] = true
		want := types.Substitute(field.Type, bindings)
		got := a.info.ExprTypes[f.Value]
		if !types.AssignableTo(got, want) {
			a.diags.Errorf(KindMismatch, f.Value.Pos(),
				"field %s is %s, got %s", f.Name.Value, want, got)
		}
	}
	for _, field := range class.Fields {
		if !field.Injected && !seen[field.Name] {
			a.diags.Errorf(KindMismatch, sl.Pos(),
				"missing field %s in %s literal", field.Name, class.Name)
		}
	}

	if len(class.Generics) > 0 {
		a.recordInstantiation(class.Name, args, sl.Pos())
	}
	return &types.Named{Kind: types.NamedClass, Name: class.Name, TypeArgs: args}
}

func (a *Analyzer) checkErrorLiteral(sl *ast.StructLiteral, errInfo *ErrorInfo) types.Type {
	seen := make(map[string]bool, len(sl.Fields))
	for _, f := range sl.Fields {
		got := a.checkExpr(f.Value)
		var want types.Type
		for _, field := range errInfo.Fields {
			if field.Name == f.Name.Value {
				want = field.Type
			}
		}
		if want == nil {
			a.diags.Errorf(KindUndefinedName, f.Name.Pos(),
				"%s has no field %s", errInfo.Name, f.Name.Value)
			continue
		}
		seen[f.Name.Value] = true
		if !types.AssignableTo(got, want) {
			a.diags.Errorf(KindMismatch, f.Value.Pos(),
				"field %s is %s, got %s", f.Name.Value, want, got)
		}
	}
	for _, field := range errInfo.Fields {
		if !seen[field.Name] {
			a.diags.Errorf(KindMismatch, sl.Pos(),
				"missing field %s in %s literal", field.Name, errInfo.Name)
		}
	}
	return types.NewError(errInfo.Name)
}

func (a *Analyzer) checkVariantLiteral(sl *ast.StructLiteral, enum *EnumInfo, variantName string) types.Type {
	variant := enum.Variant(variantName)
	if variant == nil {
		a.diags.Errorf(KindUndefinedName, sl.Type.Pos(),
			"enum %s has no variant %s", enum.Name, variantName)
		return types.VOID
	}

	bindings, args := a.literalBindings(sl, enum.Generics, func(field string) types.Type {
		if f := variantField(variant, field); f != nil {
			return f.Type
		}
		return nil
	})

	seen := make(map[string]bool, len(sl.Fields))
	for _, f := range sl.Fields {
		field := variantField(variant, f.Name.Value)
		if field == nil {
			a.diags.Errorf(KindUndefinedName, f.Name.Pos(),
				"variant %s has no field %s", variantName, f.Name.Value)
			continue
		}
		seen[f.Name.Value] = true
		want := types.Substitute(field.Type, bindings)
		got := a.info.ExprTypes[f.Value]
		if !types.AssignableTo(got, want) {
			a.diags.Errorf(KindMismatch, f.Value.Pos(),
				"field %s is %s, got %s", f.Name.Value, want, got)
		}
	}
	for _, field := range variant.Fields {
		if !seen[field.Name] {
			a.diags.Errorf(KindMismatch, sl.Pos(),
				"missing field %s in %s.%s literal", field.Name, enum.Name, variantName)
		}
	}

	if len(enum.Generics) > 0 {
		a.recordInstantiation(enum.Name, args, sl.Pos())
	}
	return &types.Named{Kind: types.NamedEnum, Name: enum.Name, TypeArgs: args}
}

// literalBindings resolves the generic arguments of a struct literal from
// explicit type arguments or by unifying field values against field types.
// Field values are checked here so their types are available for inference.
func (a *Analyzer) literalBindings(sl *ast.StructLiteral, generics []string, fieldType func(string) types.Type) (map[string]types.Type, []types.Type) {
	bindings := make(map[string]types.Type)

	if len(sl.Type.TypeArgs) > 0 {
		if len(sl.Type.TypeArgs) != len(generics) {
			a.diags.Errorf(KindArityMismatch, sl.Type.Pos(),
				"%s takes %d type arguments, got %d", sl.Type.Name, len(generics), len(sl.Type.TypeArgs))
		}
		for i, argExpr := range sl.Type.TypeArgs {
			if i < len(generics) {
				bindings[generics[i]] = ResolveTypeExpr(a.reg, a.diags, argExpr, a.generics)
			}
		}
		for _, f := range sl.Fields {
			a.checkExpr(f.Value)
		}
	} else {
		for _, f := range sl.Fields {
			got := a.checkExpr(f.Value)
			if want := fieldType(f.Name.Value); want != nil {
				unify(want, got, bindings)
			}
		}
	}

	args := make([]types.Type, len(generics))
	for i, g := range generics {
		bound, ok := bindings[g]
		if !ok {
			a.diags.Errorf(KindGenericInference, sl.Pos(),
				"cannot infer type argument %s of %s", g, sl.Type.Name)
			bound = types.VOID
		}
		args[i] = bound
	}
	return bindings, args
}

// unify binds type parameters in want against got, left-to-right across
// the structure. It reports whether the shapes are compatible.
func unify(want, got types.Type, bindings map[string]types.Type) bool {
	switch w := want.(type) {
	case *types.TypeParam:
		if bound, ok := bindings[w.Name]; ok {
			return bound.Equals(got)
		}
		bindings[w.Name] = got
		return true
	case *types.Array:
		g, ok := got.(*types.Array)
		return ok && unify(w.Elem, g.Elem, bindings)
	case *types.Set:
		g, ok := got.(*types.Set)
		return ok && unify(w.Elem, g.Elem, bindings)
	case *types.Map:
		g, ok := got.(*types.Map)
		return ok && unify(w.Key, g.Key, bindings) && unify(w.Value, g.Value, bindings)
	case *types.Nullable:
		if g, ok := got.(*types.Nullable); ok {
			return unify(w.Inner, g.Inner, bindings)
		}
		// T widens to T? during unification as in assignment.
		return unify(w.Inner, got, bindings)
	case *types.Function:
		g, ok := got.(*types.Function)
		if !ok || len(w.Params) != len(g.Params) {
			return false
		}
		for i := range w.Params {
			if !unify(w.Params[i], g.Params[i], bindings) {
				return false
			}
		}
		return unify(w.Return, g.Return, bindings)
	case *types.Named:
		g, ok := got.(*types.Named)
		if !ok || g.Name != w.Name || len(g.TypeArgs) != len(w.TypeArgs) {
			return false
		}
		for i := range w.TypeArgs {
			if !unify(w.TypeArgs[i], g.TypeArgs[i], bindings) {
				return false
			}
		}
		return true
	default:
		return types.AssignableTo(got, want)
	}
}
