// Package di validates the dependency-injection graph declared by bracket
// dependencies and ambient registrations, and produces the construction
// order the lowering stage wires into the synthetic entry point.
package di

import (
	"sort"
	"strings"

	"github.com/mkerian10/pluto/internal/errors"
	"github.com/mkerian10/pluto/internal/lexer"
	"github.com/mkerian10/pluto/internal/semantic"
)

// Result is the validated wiring metadata.
type Result struct {
	// Order lists every class in the DI graph such that each class appears
	// after all of its dependencies.
	Order []string

	// Providers maps each DI node to its direct dependencies in
	// declaration order (bracket deps first, then ambient deps).
	Providers map[string][]string
}

// Validate builds the DI graph rooted at the app and checks it: every
// dependency must resolve to exactly one declared class, ambient usages
// must be registered by the app, generic classes cannot participate, and
// the graph must be acyclic. Returns the topological construction order.
func Validate(reg *semantic.Registry, diags *errors.List) *Result {
	result := &Result{Providers: make(map[string][]string)}
	if reg.App == nil {
		return result
	}

	v := &validator{
		reg:    reg,
		diags:  diags,
		result: result,
		nodes:  make(map[string]bool),
	}

	// Roots: the app's bracket deps and every ambient registration.
	for _, dep := range reg.App.BracketDeps {
		v.reach(dep.Type, reg.App.Decl.Pos())
	}
	ambients := make([]string, 0, len(reg.App.AmbientSet))
	for name := range reg.App.AmbientSet {
		ambients = append(ambients, name)
	}
	sort.Strings(ambients)
	for _, name := range ambients {
		if class, ok := reg.Classes[name]; ok && len(class.Generics) > 0 {
			v.diags.Errorf(semantic.KindGenericAmbient, class.Decl.Pos(),
				"generic class %s cannot be registered as ambient", name)
			continue
		}
		v.reach(name, reg.App.Decl.Pos())
	}

	// Every class that uses ambients must name registered ones. The
	// desugarer checks this for classes it rewrites; re-checking here keeps
	// the DI validator self-contained for callers that skip desugaring.
	for _, class := range sortedClasses(reg) {
		for _, dep := range class.AmbientDeps {
			if !reg.App.AmbientSet[dep] {
				diags.Errorf(semantic.KindUnregisteredAmbient, class.Decl.Pos(),
					"%s uses %s, which the app does not register as ambient", class.Name, dep)
			}
		}
	}

	v.sortTopologically()
	return result
}

type validator struct {
	reg    *semantic.Registry
	diags  *errors.List
	result *Result
	nodes  map[string]bool
}

// reach adds a class to the DI graph and recurses into its dependencies.
func (v *validator) reach(name string, pos lexer.Position) {
	if v.nodes[name] {
		return
	}

	class, ok := v.reg.Classes[name]
	if !ok {
		v.diags.Errorf(semantic.KindMissingProvider, pos,
			"no class provides %s", name)
		return
	}
	if len(class.Generics) > 0 {
		v.diags.Errorf(semantic.KindGenericAmbient, class.Decl.Pos(),
			"generic class %s cannot participate in dependency injection", name)
		return
	}
	v.nodes[name] = true

	var deps []string
	for _, dep := range class.BracketDeps {
		deps = append(deps, dep.Type)
		v.reach(dep.Type, class.Decl.Pos())
	}
	for _, dep := range class.AmbientDeps {
		deps = append(deps, dep)
		v.reach(dep, class.Decl.Pos())
	}
	v.result.Providers[name] = deps
}

// sortTopologically orders the graph with Kahn's algorithm; on a cycle it
// reports the full cycle path for diagnostics.
func (v *validator) sortTopologically() {
	indegree := make(map[string]int, len(v.nodes))
	for name := range v.nodes {
		indegree[name] = 0
	}
	for name := range v.nodes {
		for _, dep := range v.result.Providers[name] {
			if v.nodes[dep] {
				indegree[name]++
			}
		}
	}

	queue := make([]string, 0, len(v.nodes))
	for name, deg := range indegree {
		if deg == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		v.result.Order = append(v.result.Order, name)

		var unblocked []string
		for other := range v.nodes {
			for _, dep := range v.result.Providers[other] {
				if dep == name {
					indegree[other]--
					if indegree[other] == 0 {
						unblocked = append(unblocked, other)
					}
				}
			}
		}
		sort.Strings(unblocked)
		queue = append(queue, unblocked...)
	}

	if len(v.result.Order) < len(v.nodes) {
		cycle := v.findCycle()
		pos := lexer.Position{}
		if len(cycle) > 0 {
			if class, ok := v.reg.Classes[cycle[0]]; ok {
				pos = class.Decl.Pos()
			}
		}
		v.diags.Errorf(semantic.KindDICycle, pos,
			"dependency cycle: %s", strings.Join(cycle, " -> "))
		v.result.Order = nil
	}
}

// findCycle extracts one cycle from the unresolved remainder of the graph.
func (v *validator) findCycle() []string {
	resolved := make(map[string]bool, len(v.result.Order))
	for _, name := range v.result.Order {
		resolved[name] = true
	}

	state := make(map[string]int) // 0 unvisited, 1 on stack, 2 done
	var stack []string
	var cycle []string

	var visit func(name string) bool
	visit = func(name string) bool {
		state[name] = 1
		stack = append(stack, name)
		for _, dep := range v.result.Providers[name] {
			if !v.nodes[dep] || resolved[dep] {
				continue
			}
			switch state[dep] {
			case 0:
				if visit(dep) {
					return true
				}
			case 1:
				for i, on := range stack {
					if on == dep {
						cycle = append(append(cycle, stack[i:]...), dep)
						return true
					}
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = 2
		return false
	}

	names := make([]string, 0, len(v.nodes))
	for name := range v.nodes {
		if !resolved[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		if state[name] == 0 && visit(name) {
			break
		}
	}
	return cycle
}

func sortedClasses(reg *semantic.Registry) []*semantic.ClassInfo {
	names := make([]string, 0, len(reg.Classes))
	for name := range reg.Classes {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*semantic.ClassInfo, len(names))
	for i, name := range names {
		out[i] = reg.Classes[name]
	}
	return out
}
