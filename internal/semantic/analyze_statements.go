package semantic

import (
	"github.com/mkerian10/pluto/internal/ast"
	"github.com/mkerian10/pluto/internal/types"
)

// checkBlock checks a block in a fresh scope and returns the block's value
// type: the type of its final expression statement, or void.
func (a *Analyzer) checkBlock(block *ast.Block) types.Type {
	if block == nil {
		return types.VOID
	}
	a.pushScope()
	defer a.popScope()

	value := types.Type(types.VOID)
	for i, stmt := range block.Statements {
		t := a.checkStmt(stmt)
		if i == len(block.Statements)-1 {
			value = t
		}
	}
	return value
}

func (a *Analyzer) pushScope() {
	a.symbols = NewEnclosedSymbolTable(a.symbols)
}

func (a *Analyzer) popScope() {
	a.symbols = a.symbols.outer
}

// checkStmt checks one statement; expression statements yield their
// expression's type so blocks can be used as values.
func (a *Analyzer) checkStmt(stmt ast.Statement) types.Type {
	switch s := stmt.(type) {
	case *ast.LetStatement:
		a.checkLet(s)
	case *ast.AssignStatement:
		a.checkAssign(s)
	case *ast.ReturnStatement:
		a.checkReturn(s)
	case *ast.RaiseStatement:
		a.checkRaise(s)
	case *ast.ForStatement:
		a.checkFor(s)
	case *ast.WhileStatement:
		cond := a.checkExpr(s.Cond)
		if !types.AssignableTo(cond, types.BOOL) {
			a.diags.Errorf(KindMismatch, s.Cond.Pos(), "while condition must be bool, got %s", cond)
		}
		a.checkBlock(s.Body)
	case *ast.LoopStatement:
		a.checkBlock(s.Body)
	case *ast.BreakStatement, *ast.ContinueStatement:
	case *ast.Block:
		a.checkBlock(s)
	case *ast.IfExpression:
		return a.checkIf(s)
	case *ast.MatchExpression:
		return a.checkMatch(s)
	case *ast.ExpressionStatement:
		return a.checkExpr(s.Expression)
	}
	return types.VOID
}

func (a *Analyzer) checkLet(s *ast.LetStatement) {
	got := a.checkExpr(s.Value)

	var declared types.Type
	if s.Type != nil {
		declared = ResolveTypeExpr(a.reg, a.diags, s.Type, a.generics)
		a.scanTypeInstantiations(declared, s.Type.Pos())
		if !types.AssignableTo(got, declared) && !emptyArrayFor(s.Value, declared) {
			a.diags.Errorf(KindMismatch, s.Value.Pos(),
				"cannot assign %s to %s", got, declared)
		}
		got = declared
	} else if _, isNone := got.(*types.NoneType); isNone {
		a.diags.Errorf(KindGenericInference, s.Pos(),
			"cannot infer the type of %s from a bare none; add an annotation", s.Name.Value)
	}

	a.symbols.Define(s.Name.Value, got, s.Mutable)
}

func (a *Analyzer) checkAssign(s *ast.AssignStatement) {
	target := a.checkExpr(s.Target)
	value := a.checkExpr(s.Value)

	if s.Operator != "=" {
		// Compound assignment: the operand rules of the underlying operator.
		if !a.numericOrString(target, s.Operator) {
			a.diags.Errorf(KindMismatch, s.Target.Pos(),
				"operator %s is not defined for %s", s.Operator, target)
		}
		if !types.AssignableTo(value, target) {
			a.diags.Errorf(KindMismatch, s.Value.Pos(),
				"cannot apply %s with %s to %s", s.Operator, value, target)
		}
		return
	}

	if !types.AssignableTo(value, target) && !emptyArrayFor(s.Value, target) {
		a.diags.Errorf(KindMismatch, s.Value.Pos(),
			"cannot assign %s to %s", value, target)
	}
}

// emptyArrayFor accepts the untyped empty array literal against any array
// destination; its element type comes from the destination.
func emptyArrayFor(value ast.Expression, dst types.Type) bool {
	al, ok := value.(*ast.ArrayLiteral)
	if !ok || len(al.Elements) > 0 {
		return false
	}
	_, isArray := types.Unwrap(dst).(*types.Array)
	return isArray
}

func (a *Analyzer) numericOrString(t types.Type, op string) bool {
	p, ok := t.(*types.Primitive)
	if !ok {
		return false
	}
	switch p.Kind {
	case types.KindInt, types.KindFloat:
		return true
	case types.KindString:
		return op == "+="
	}
	return false
}

func (a *Analyzer) checkReturn(s *ast.ReturnStatement) {
	want := a.currentReturn
	if s.Value == nil {
		if !types.IsVoid(want) && !types.IsNullable(want) {
			a.diags.Errorf(KindMismatch, s.Pos(), "missing return value of type %s", want)
		}
		return
	}
	got := a.checkExpr(s.Value)
	if types.IsVoid(want) {
		a.diags.Errorf(KindMismatch, s.Pos(), "void function cannot return a value")
		return
	}
	if !types.AssignableTo(got, want) {
		a.diags.Errorf(KindMismatch, s.Value.Pos(), "cannot return %s from a function returning %s", got, want)
	}
}

func (a *Analyzer) checkRaise(s *ast.RaiseStatement) {
	got := a.checkExpr(s.Value)
	named, ok := got.(*types.Named)
	if !ok || named.Kind != types.NamedError {
		a.diags.Errorf(KindMismatch, s.Value.Pos(), "raise requires an error value, got %s", got)
	}
}

func (a *Analyzer) checkFor(s *ast.ForStatement) {
	iterable := a.checkExpr(s.Iterable)

	var elem types.Type
	switch t := iterable.(type) {
	case *types.Array:
		elem = t.Elem
	case *types.Set:
		elem = t.Elem
	case *types.Map:
		elem = t.Key
	case *types.Primitive:
		switch t.Kind {
		case types.KindString, types.KindBytes:
			elem = types.BYTE
		}
	}
	if elem == nil {
		a.diags.Errorf(KindMismatch, s.Iterable.Pos(), "cannot iterate over %s", iterable)
		elem = types.VOID
	}

	a.pushScope()
	a.symbols.Define(s.Variable.Value, elem, true)
	a.checkBlock(s.Body)
	a.popScope()
}
