package semantic

import (
	"github.com/mkerian10/pluto/internal/ast"
	"github.com/mkerian10/pluto/internal/errors"
	"github.com/mkerian10/pluto/internal/types"
)

// CheckExhaustiveness validates every match expression: enum scrutinees
// must cover all variants (or carry a wildcard arm), nullable scrutinees
// must cover none, and arms whose coverage is already implied by earlier
// arms are flagged unreachable.
func CheckExhaustiveness(program *ast.Program, reg *Registry, info *Info, diags *errors.List) {
	ast.Inspect(program, func(n ast.Node) bool {
		if me, ok := n.(*ast.MatchExpression); ok {
			checkMatchCoverage(me, reg, info, diags)
		}
		return true
	})
}

func checkMatchCoverage(me *ast.MatchExpression, reg *Registry, info *Info, diags *errors.List) {
	scrutinee := info.ExprTypes[me.Scrutinee]
	if scrutinee == nil {
		return
	}

	cov := &coverage{
		needNone: types.IsNullable(scrutinee),
		covered:  make(map[string]bool),
		literals: make(map[string]bool),
	}
	if named, ok := types.Unwrap(scrutinee).(*types.Named); ok && named.Kind == types.NamedEnum {
		cov.enum = reg.Enums[named.Name]
	}
	if types.Unwrap(scrutinee).Equals(types.BOOL) {
		cov.isBool = true
	}

	for i := range me.Arms {
		arm := &me.Arms[i]
		if cov.full() {
			diags.Errorf(KindUnreachableArm, arm.Pattern.Pos(),
				"unreachable arm: earlier arms already cover every value")
			continue
		}
		cov.add(arm.Pattern, diags)
	}

	if cov.full() {
		return
	}
	if witness := cov.witness(); witness != "" {
		diags.Errorf(KindNonExhaustive, me.Pos(),
			"match is not exhaustive: %s is not covered", witness)
	}
}

// coverage tracks which values the arms seen so far have matched.
type coverage struct {
	enum     *EnumInfo
	isBool   bool
	needNone bool

	covered   map[string]bool // variant names
	literals  map[string]bool
	wildcard  bool
	noneSeen  bool
	boolTrue  bool
	boolFalse bool
}

func (c *coverage) add(pattern ast.Pattern, diags *errors.List) {
	switch p := pattern.(type) {
	case *ast.WildcardPattern, *ast.BindingPattern:
		c.wildcard = true

	case *ast.NonePattern:
		if c.noneSeen {
			diags.Errorf(KindUnreachableArm, p.Pos(), "unreachable arm: none is already covered")
			return
		}
		c.noneSeen = true

	case *ast.VariantPattern:
		if c.covered[p.Variant.Value] {
			diags.Errorf(KindUnreachableArm, p.Pos(),
				"unreachable arm: variant %s is already covered", p.Variant.Value)
			return
		}
		c.covered[p.Variant.Value] = true

	case *ast.LiteralPattern:
		if b, ok := p.Value.(*ast.BooleanLiteral); ok {
			if (b.Value && c.boolTrue) || (!b.Value && c.boolFalse) {
				diags.Errorf(KindUnreachableArm, p.Pos(),
					"unreachable arm: %s is already covered", p.Value.String())
				return
			}
			if b.Value {
				c.boolTrue = true
			} else {
				c.boolFalse = true
			}
			return
		}
		key := p.Value.String()
		if c.literals[key] {
			diags.Errorf(KindUnreachableArm, p.Pos(),
				"unreachable arm: %s is already covered", key)
			return
		}
		c.literals[key] = true
	}
}

// full reports whether every value of the scrutinee is covered. Enum and
// bool domains can close without a wildcard; open domains (int, string)
// cannot.
func (c *coverage) full() bool {
	if c.needNone && !c.noneSeen && !c.wildcard {
		return false
	}
	if c.wildcard {
		return true
	}
	if c.enum != nil {
		for _, v := range c.enum.Variants {
			if !c.covered[v.Name] {
				return false
			}
		}
		return true
	}
	if c.isBool {
		return c.boolTrue && c.boolFalse
	}
	return false
}

// witness returns the first uncovered value for the diagnostic, in variant
// declaration order for enums.
func (c *coverage) witness() string {
	if c.needNone && !c.noneSeen && !c.wildcard {
		return "none"
	}
	if c.enum != nil {
		for _, v := range c.enum.Variants {
			if !c.covered[v.Name] {
				return c.enum.Name + "." + v.Name
			}
		}
		return ""
	}
	if c.isBool {
		if !c.boolTrue {
			return "true"
		}
		if !c.boolFalse {
			return "false"
		}
		return ""
	}
	return "_"
}
