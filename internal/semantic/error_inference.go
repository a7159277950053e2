package semantic

import (
	"github.com/mkerian10/pluto/internal/ast"
	"github.com/mkerian10/pluto/internal/errors"
	"github.com/mkerian10/pluto/internal/lexer"
)

// callSite is one call observed in a body, with how it handles errors:
// propagated (`!`), covered by a catch, or neither.
type callSite struct {
	owner      string
	target     string
	propagated bool
	inCatch    bool
	pos        lexer.Position
	synthetic  bool
}

// InferErrors runs whole-program error inference: a least fixed point over
// the call graph marking functions fallible, followed by call-site
// validation. A function is fallible iff it reaches a raise statement, or
// calls a fallible function outside a catch (propagated or not); a call
// covered by a catch does not make the caller fallible. `!` on any call also
// marks the caller fallible. Every call to a fallible function must be propagated
// with `!` or covered by a catch.
func InferErrors(program *ast.Program, reg *Registry, info *Info, diags *errors.List) map[string]bool {
	c := &errorInference{reg: reg, info: info, fallible: make(map[string]bool)}

	for _, decl := range program.Declarations {
		switch d := decl.(type) {
		case *ast.FunctionDecl:
			c.collectBody(d.QualifiedName(), d.Body)
		case *ast.ClassDecl:
			for _, m := range d.Methods {
				c.collectBody(d.QualifiedName()+"."+m.Name.Value, m.Body)
			}
		case *ast.TraitDecl:
			for _, m := range d.Methods {
				c.collectBody(d.QualifiedName()+"."+m.Name.Value, m.Body)
			}
		case *ast.AppDecl:
			for _, m := range d.Methods {
				c.collectBody(d.QualifiedName()+"."+m.Name.Value, m.Body)
			}
		}
	}

	// A trait method is fallible when any implementation is: model each
	// impl as a synthetic propagated call from the trait method.
	for _, class := range reg.Classes {
		for _, traitName := range class.Impls {
			trait := reg.Traits[traitName]
			if trait == nil {
				continue
			}
			for name := range trait.Methods {
				if _, ok := class.Methods[name]; !ok {
					continue
				}
				c.sites = append(c.sites, callSite{
					owner:      traitName + "." + name,
					target:     class.Name + "." + name,
					propagated: true,
					synthetic:  true,
				})
			}
		}
	}

	// Least fixed point.
	changed := true
	for changed {
		changed = false
		for _, site := range c.sites {
			if c.fallible[site.owner] {
				continue
			}
			if site.propagated && !site.synthetic {
				// `!` marks the enclosing function fallible even when the
				// callee turns out not to be.
				c.fallible[site.owner] = true
				changed = true
				continue
			}
			if c.fallible[site.target] && !site.inCatch {
				c.fallible[site.owner] = true
				changed = true
			}
		}
	}

	// Call-site validation.
	for _, site := range c.sites {
		if site.synthetic || site.propagated || site.inCatch {
			continue
		}
		if c.fallible[site.target] {
			diags.Errorf(KindUnhandled, site.pos,
				"call to fallible %s must be propagated with ! or handled with catch", site.target)
		}
	}

	// Publish fallibility on the function environment.
	for name, fn := range reg.Functions {
		fn.Fallible = c.fallible[name]
	}
	return c.fallible
}

type errorInference struct {
	reg      *Registry
	info     *Info
	sites    []callSite
	fallible map[string]bool
}

// collectBody records raise seeds and call sites for one body.
func (c *errorInference) collectBody(owner string, body *ast.Block) {
	if body == nil {
		return
	}
	c.walk(owner, body, false)
}

// walk visits a subtree tracking whether a catch covers the current site.
func (c *errorInference) walk(owner string, node ast.Node, inCatch bool) {
	switch n := node.(type) {
	case nil:
		return

	case *ast.RaiseStatement:
		c.fallible[owner] = true
		c.walk(owner, n.Value, inCatch)

	case *ast.CatchExpression:
		// The catch covers every call inside its guarded expression; the
		// handler body is outside the cover.
		c.walk(owner, n.Expr, true)
		c.walk(owner, n.Handler, inCatch)

	case *ast.PropagateExpression:
		if n.Kind == ast.PropagateError {
			if call, ok := n.Expr.(*ast.CallExpression); ok {
				c.recordCall(owner, call, true, inCatch)
				for _, arg := range call.Args {
					c.walk(owner, arg, inCatch)
				}
				c.walk(owner, call.Function, inCatch)
				return
			}
		}
		c.walk(owner, n.Expr, inCatch)

	case *ast.CallExpression:
		c.recordCall(owner, n, false, inCatch)
		c.walk(owner, n.Function, inCatch)
		for _, arg := range n.Args {
			c.walk(owner, arg, inCatch)
		}

	default:
		for _, child := range nodeChildren(node) {
			c.walk(owner, child, inCatch)
		}
	}
}

func (c *errorInference) recordCall(owner string, call *ast.CallExpression, propagated, inCatch bool) {
	target := ""
	if t, ok := c.info.CallTargets[call]; ok {
		target = t.QName
	}
	if target == "" && !propagated {
		// Builtins and closures do not participate in inference.
		return
	}
	c.sites = append(c.sites, callSite{
		owner:      owner,
		target:     target,
		propagated: propagated,
		inCatch:    inCatch,
		pos:        call.Pos(),
	})
}

// nodeChildren exposes the walker's child computation for the custom
// traversal above.
func nodeChildren(n ast.Node) []ast.Node {
	var out []ast.Node
	ast.Inspect(n, func(child ast.Node) bool {
		if child == n {
			return true
		}
		out = append(out, child)
		return false
	})
	return out
}
