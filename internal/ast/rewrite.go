package ast

// BodyRewriter rewrites references inside a function body while tracking
// lexical scope. It powers the module flattener (qualifying cross-module
// references) and the ambient-DI desugarer (rewriting bare ambient names to
// self-field accesses).
//
// A binding shadows rewriting from the point of its introduction onward:
// parameters, let bindings, for-loop variables, catch bindings, closure
// parameters, and match-pattern bindings all introduce scopes.
type BodyRewriter struct {
	// FreeIdent is called for every identifier that is not bound locally at
	// its use site. A non-nil result replaces the identifier.
	FreeIdent func(id *Identifier) Expression

	// Member is called for member accesses whose object is an identifier,
	// bound locally or not, before the object itself is rewritten. A non-nil
	// result replaces the whole access.
	Member func(obj *Identifier, prop *Identifier) Expression

	// TypeName is called for every named type mentioned in the body. A
	// non-empty result replaces the type's name.
	TypeName func(name string) string

	// PatternName is called for every variant pattern's enum name. A
	// non-empty result replaces it.
	PatternName func(name string) string

	scopes []map[string]bool
}

// RewriteBody rewrites a function body. The names in bound (parameters) are
// pre-bound in the outermost scope.
func (r *BodyRewriter) RewriteBody(block *Block, bound []string) {
	r.scopes = []map[string]bool{{}}
	for _, name := range bound {
		r.bind(name)
	}
	r.rewriteBlock(block)
	r.scopes = nil
}

func (r *BodyRewriter) push() { r.scopes = append(r.scopes, map[string]bool{}) }
func (r *BodyRewriter) pop()  { r.scopes = r.scopes[:len(r.scopes)-1] }

func (r *BodyRewriter) bind(name string) {
	r.scopes[len(r.scopes)-1][name] = true
}

func (r *BodyRewriter) isBound(name string) bool {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if r.scopes[i][name] {
			return true
		}
	}
	return false
}

func (r *BodyRewriter) rewriteBlock(block *Block) {
	if block == nil {
		return
	}
	r.push()
	for _, stmt := range block.Statements {
		r.rewriteStmt(stmt)
	}
	r.pop()
}

func (r *BodyRewriter) rewriteStmt(stmt Statement) {
	switch s := stmt.(type) {
	case *LetStatement:
		s.Value = r.rewriteExpr(s.Value)
		r.rewriteType(s.Type)
		r.bind(s.Name.Value) // the binding shadows only after its own initializer
	case *AssignStatement:
		s.Target = r.rewriteExpr(s.Target)
		s.Value = r.rewriteExpr(s.Value)
	case *ReturnStatement:
		if s.Value != nil {
			s.Value = r.rewriteExpr(s.Value)
		}
	case *RaiseStatement:
		s.Value = r.rewriteExpr(s.Value)
	case *ExpressionStatement:
		s.Expression = r.rewriteExpr(s.Expression)
	case *ForStatement:
		s.Iterable = r.rewriteExpr(s.Iterable)
		r.push()
		r.bind(s.Variable.Value)
		r.rewriteBlock(s.Body)
		r.pop()
	case *WhileStatement:
		s.Cond = r.rewriteExpr(s.Cond)
		r.rewriteBlock(s.Body)
	case *LoopStatement:
		r.rewriteBlock(s.Body)
	case *Block:
		r.rewriteBlock(s)
	case *IfExpression:
		r.rewriteIf(s)
	case *MatchExpression:
		r.rewriteMatch(s)
	}
}

func (r *BodyRewriter) rewriteIf(ie *IfExpression) {
	ie.Cond = r.rewriteExpr(ie.Cond)
	r.rewriteBlock(ie.Then)
	switch e := ie.Else.(type) {
	case *Block:
		r.rewriteBlock(e)
	case *IfExpression:
		r.rewriteIf(e)
	}
}

func (r *BodyRewriter) rewriteMatch(me *MatchExpression) {
	me.Scrutinee = r.rewriteExpr(me.Scrutinee)
	for i := range me.Arms {
		arm := &me.Arms[i]
		r.push()
		switch pat := arm.Pattern.(type) {
		case *VariantPattern:
			if r.PatternName != nil {
				if q := r.PatternName(pat.Enum.Value); q != "" {
					pat.Enum.Value = q
				}
			}
			for _, f := range pat.Fields {
				if f.Binding != nil {
					r.bind(f.Binding.Value)
				} else {
					r.bind(f.Field.Value)
				}
			}
		case *BindingPattern:
			r.bind(pat.Name.Value)
		}
		arm.Body = r.rewriteExpr(arm.Body)
		r.pop()
	}
}

func (r *BodyRewriter) rewriteExpr(expr Expression) Expression {
	switch e := expr.(type) {
	case *Identifier:
		if r.FreeIdent != nil && !r.isBound(e.Value) {
			if replacement := r.FreeIdent(e); replacement != nil {
				return replacement
			}
		}
		return e

	case *MemberExpression:
		if obj, ok := e.Object.(*Identifier); ok {
			if r.Member != nil {
				if replacement := r.Member(obj, e.Property); replacement != nil {
					return replacement
				}
			}
		}
		e.Object = r.rewriteExpr(e.Object)
		return e

	case *PrefixExpression:
		e.Right = r.rewriteExpr(e.Right)
		return e
	case *InfixExpression:
		e.Left = r.rewriteExpr(e.Left)
		e.Right = r.rewriteExpr(e.Right)
		return e
	case *CallExpression:
		e.Function = r.rewriteExpr(e.Function)
		for i := range e.Args {
			e.Args[i] = r.rewriteExpr(e.Args[i])
		}
		for _, t := range e.TypeArgs {
			r.rewriteType(t)
		}
		return e
	case *IndexExpression:
		e.Left = r.rewriteExpr(e.Left)
		e.Index = r.rewriteExpr(e.Index)
		return e
	case *ArrayLiteral:
		for i := range e.Elements {
			e.Elements[i] = r.rewriteExpr(e.Elements[i])
		}
		return e
	case *StructLiteral:
		r.rewriteType(e.Type)
		for i := range e.Fields {
			e.Fields[i].Value = r.rewriteExpr(e.Fields[i].Value)
		}
		return e
	case *InterpolatedString:
		for i := range e.Parts {
			if e.Parts[i].Expr != nil {
				e.Parts[i].Expr = r.rewriteExpr(e.Parts[i].Expr)
			}
		}
		return e
	case *ClosureLiteral:
		r.push()
		for _, p := range e.Params {
			r.bind(p.Name.Value)
			r.rewriteType(p.Type)
		}
		if e.Body != nil {
			r.rewriteBlock(e.Body)
		} else {
			e.Expr = r.rewriteExpr(e.Expr)
		}
		r.pop()
		return e
	case *IfExpression:
		r.rewriteIf(e)
		return e
	case *MatchExpression:
		r.rewriteMatch(e)
		return e
	case *PropagateExpression:
		e.Expr = r.rewriteExpr(e.Expr)
		return e
	case *CatchExpression:
		e.Expr = r.rewriteExpr(e.Expr)
		r.push()
		if e.Binding != nil {
			r.bind(e.Binding.Value)
		}
		r.rewriteBlock(e.Handler)
		r.pop()
		return e
	case *BlockExpression:
		r.rewriteBlock(e.Block)
		return e
	default:
		// Literals, self, none.
		return expr
	}
}

func (r *BodyRewriter) rewriteType(t TypeExpr) {
	if t == nil || r.TypeName == nil {
		return
	}
	switch tt := t.(type) {
	case *NamedType:
		if q := r.TypeName(tt.Name); q != "" {
			tt.Name = q
		}
		for _, a := range tt.TypeArgs {
			r.rewriteType(a)
		}
	case *NullableType:
		r.rewriteType(tt.Inner)
	case *FunctionTypeExpr:
		for _, p := range tt.Params {
			r.rewriteType(p)
		}
		r.rewriteType(tt.Return)
	}
}
