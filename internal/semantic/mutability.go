package semantic

import (
	"github.com/mkerian10/pluto/internal/ast"
	"github.com/mkerian10/pluto/internal/errors"
)

// CheckMutability enforces the root-binding mutability rules:
//
//   - Field and index assignment require the root of the target chain to be
//     a `let mut` binding or an implicitly mutable one (parameter, loop
//     variable, match binding, catch binding). Plain variable reassignment
//     needs no mut.
//   - Assigning to self.field requires the method to declare `mut self`.
//   - Calling a `mut self` method or a mutating container builtin requires
//     the receiver's root to be mutable; on self it again requires
//     `mut self`.
//   - A `let mut` with no observed mutation gets a DeadMut warning.
func CheckMutability(program *ast.Program, info *Info, diags *errors.List) {
	for _, decl := range program.Declarations {
		switch d := decl.(type) {
		case *ast.FunctionDecl:
			checkBodyMutability(d, info, diags)
		case *ast.ClassDecl:
			for _, m := range d.Methods {
				checkBodyMutability(m, info, diags)
			}
		case *ast.TraitDecl:
			for _, m := range d.Methods {
				checkBodyMutability(m, info, diags)
			}
		case *ast.AppDecl:
			for _, m := range d.Methods {
				checkBodyMutability(m, info, diags)
			}
		}
	}
}

// mutBinding tracks one binding's mutability and, for explicit `let mut`,
// whether a mutation through it was observed.
type mutBinding struct {
	mutable bool
	decl    *ast.LetStatement // non-nil only for let mut bindings
	mutated bool
}

type mutabilityChecker struct {
	info    *Info
	diags   *errors.List
	scopes  []map[string]*mutBinding
	mutSelf bool
	letMuts []*mutBinding
}

func checkBodyMutability(fn *ast.FunctionDecl, info *Info, diags *errors.List) {
	if fn.Body == nil {
		return
	}
	c := &mutabilityChecker{
		info:    info,
		diags:   diags,
		mutSelf: fn.Receiver == ast.ReceiverMutSelf,
	}
	c.push()
	for _, p := range fn.Params {
		c.bind(p.Name.Value, true, nil)
	}
	c.block(fn.Body)
	c.pop()

	for _, b := range c.letMuts {
		if !b.mutated {
			diags.Warnf(KindDeadMut, b.decl.Pos(),
				"%s is declared mut but never mutated", b.decl.Name.Value)
		}
	}
}

func (c *mutabilityChecker) push() {
	c.scopes = append(c.scopes, map[string]*mutBinding{})
}

func (c *mutabilityChecker) pop() {
	c.scopes = c.scopes[:len(c.scopes)-1]
}

func (c *mutabilityChecker) bind(name string, mutable bool, decl *ast.LetStatement) {
	b := &mutBinding{mutable: mutable, decl: decl}
	if decl != nil && mutable {
		c.letMuts = append(c.letMuts, b)
	}
	c.scopes[len(c.scopes)-1][name] = b
}

func (c *mutabilityChecker) lookup(name string) *mutBinding {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if b, ok := c.scopes[i][name]; ok {
			return b
		}
	}
	return nil
}

func (c *mutabilityChecker) block(b *ast.Block) {
	if b == nil {
		return
	}
	c.push()
	for _, stmt := range b.Statements {
		c.stmt(stmt)
	}
	c.pop()
}

func (c *mutabilityChecker) stmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.LetStatement:
		c.expr(s.Value)
		c.bind(s.Name.Value, s.Mutable, letDecl(s))
	case *ast.AssignStatement:
		c.assign(s)
	case *ast.ReturnStatement:
		if s.Value != nil {
			c.expr(s.Value)
		}
	case *ast.RaiseStatement:
		c.expr(s.Value)
	case *ast.ExpressionStatement:
		c.expr(s.Expression)
	case *ast.ForStatement:
		c.expr(s.Iterable)
		c.push()
		c.bind(s.Variable.Value, true, nil)
		c.block(s.Body)
		c.pop()
	case *ast.WhileStatement:
		c.expr(s.Cond)
		c.block(s.Body)
	case *ast.LoopStatement:
		c.block(s.Body)
	case *ast.Block:
		c.block(s)
	case *ast.IfExpression:
		c.ifExpr(s)
	case *ast.MatchExpression:
		c.matchExpr(s)
	}
}

// assign enforces the root rule for field and index targets.
func (c *mutabilityChecker) assign(s *ast.AssignStatement) {
	c.expr(s.Value)

	switch target := s.Target.(type) {
	case *ast.Identifier:
		// Plain reassignment does not require mut, but it counts as
		// activity on a mut binding.
		if b := c.lookup(target.Value); b != nil {
			b.mutated = true
		}
	case *ast.MemberExpression:
		c.requireMutableRoot(s.Target, KindAssignToImmutable, "assign through")
		c.expr(target.Object)
	case *ast.IndexExpression:
		c.requireMutableRoot(s.Target, KindAssignToImmutable, "assign through")
		c.expr(target.Left)
		c.expr(target.Index)
	}
}

// requireMutableRoot finds the leftmost identifier of an access chain and
// checks that its binding is mutable.
func (c *mutabilityChecker) requireMutableRoot(expr ast.Expression, kind, action string) {
	root := rootOf(expr)
	switch r := root.(type) {
	case *ast.Identifier:
		b := c.lookup(r.Value)
		if b == nil {
			// Module-level constants and qualified names are immutable.
			c.diags.Errorf(kind, r.Pos(), "cannot %s immutable %s", action, r.Value)
			return
		}
		if !b.mutable {
			c.diags.Errorf(kind, r.Pos(),
				"cannot %s %s: binding is not declared mut", action, r.Value)
			return
		}
		b.mutated = true
	case *ast.SelfExpression:
		if !c.mutSelf {
			c.diags.Errorf(kind, r.Pos(),
				"cannot %s self: method does not declare mut self", action)
		}
	default:
		// Mutating a temporary (call result, literal) is always allowed;
		// the mutation dies with the value.
	}
}

// rootOf returns the leftmost expression of a member/index/call chain.
func rootOf(expr ast.Expression) ast.Expression {
	for {
		switch e := expr.(type) {
		case *ast.MemberExpression:
			expr = e.Object
		case *ast.IndexExpression:
			expr = e.Left
		case *ast.CallExpression:
			return e // a call result is a temporary root
		case *ast.PropagateExpression:
			expr = e.Expr
		default:
			return expr
		}
	}
}

func (c *mutabilityChecker) expr(expr ast.Expression) {
	switch e := expr.(type) {
	case nil:
		return
	case *ast.CallExpression:
		if c.info.MutatingCalls[e] {
			if me, ok := e.Function.(*ast.MemberExpression); ok {
				c.requireMutableRoot(me.Object, KindReceiverNotMutable, "mutate")
			}
		}
		c.expr(e.Function)
		for _, arg := range e.Args {
			c.expr(arg)
		}
	case *ast.MemberExpression:
		c.expr(e.Object)
	case *ast.IndexExpression:
		c.expr(e.Left)
		c.expr(e.Index)
	case *ast.PrefixExpression:
		c.expr(e.Right)
	case *ast.InfixExpression:
		c.expr(e.Left)
		c.expr(e.Right)
	case *ast.ArrayLiteral:
		for _, el := range e.Elements {
			c.expr(el)
		}
	case *ast.StructLiteral:
		for _, f := range e.Fields {
			c.expr(f.Value)
		}
	case *ast.InterpolatedString:
		for _, part := range e.Parts {
			if part.Expr != nil {
				c.expr(part.Expr)
			}
		}
	case *ast.ClosureLiteral:
		c.push()
		for _, p := range e.Params {
			c.bind(p.Name.Value, true, nil)
		}
		if e.Body != nil {
			c.block(e.Body)
		} else {
			c.expr(e.Expr)
		}
		c.pop()
	case *ast.IfExpression:
		c.ifExpr(e)
	case *ast.MatchExpression:
		c.matchExpr(e)
	case *ast.PropagateExpression:
		c.expr(e.Expr)
	case *ast.CatchExpression:
		c.expr(e.Expr)
		c.push()
		if e.Binding != nil {
			c.bind(e.Binding.Value, true, nil)
		}
		c.block(e.Handler)
		c.pop()
	case *ast.BlockExpression:
		c.block(e.Block)
	}
}

func (c *mutabilityChecker) ifExpr(e *ast.IfExpression) {
	c.expr(e.Cond)
	c.block(e.Then)
	switch els := e.Else.(type) {
	case *ast.Block:
		c.block(els)
	case *ast.IfExpression:
		c.ifExpr(els)
	}
}

func (c *mutabilityChecker) matchExpr(e *ast.MatchExpression) {
	c.expr(e.Scrutinee)
	for i := range e.Arms {
		arm := &e.Arms[i]
		c.push()
		switch pat := arm.Pattern.(type) {
		case *ast.VariantPattern:
			for _, f := range pat.Fields {
				if f.Binding != nil {
					c.bind(f.Binding.Value, true, nil)
				} else {
					c.bind(f.Field.Value, true, nil)
				}
			}
		case *ast.BindingPattern:
			c.bind(pat.Name.Value, true, nil)
		}
		c.expr(arm.Body)
		c.pop()
	}
}

// letDecl returns s when it is a mut binding, else nil, keeping DeadMut
// tracking to explicit let mut only.
func letDecl(s *ast.LetStatement) *ast.LetStatement {
	if s.Mutable {
		return s
	}
	return nil
}
