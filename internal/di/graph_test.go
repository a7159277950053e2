package di

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkerian10/pluto/internal/ast"
	"github.com/mkerian10/pluto/internal/errors"
	"github.com/mkerian10/pluto/internal/semantic"
)

// buildRegistry assembles a minimal type environment: classes with their
// bracket/ambient deps, and an app with roots and ambient registrations.
func buildRegistry(classes map[string][]string, ambientOf map[string][]string, appDeps []string, ambients []string) *semantic.Registry {
	reg := semantic.NewRegistry()
	for name, deps := range classes {
		info := &semantic.ClassInfo{
			Name:    name,
			Decl:    &ast.ClassDecl{Name: &ast.Identifier{Value: name}},
			Methods: map[string]*semantic.MethodInfo{},
		}
		for i, dep := range deps {
			info.BracketDeps = append(info.BracketDeps, semantic.DepInfo{
				Name: strings.ToLower(dep) + string(rune('a'+i)),
				Type: dep,
			})
		}
		info.AmbientDeps = ambientOf[name]
		reg.Classes[name] = info
	}

	app := &semantic.AppInfo{
		Name:       "Main",
		Decl:       &ast.AppDecl{Name: &ast.Identifier{Value: "Main"}},
		AmbientSet: map[string]bool{},
		Methods:    map[string]*semantic.MethodInfo{},
	}
	for _, dep := range appDeps {
		app.BracketDeps = append(app.BracketDeps, semantic.DepInfo{Name: strings.ToLower(dep), Type: dep})
	}
	for _, a := range ambients {
		app.AmbientSet[a] = true
	}
	reg.App = app
	return reg
}

func TestTopologicalOrder(t *testing.T) {
	reg := buildRegistry(map[string][]string{
		"Config":   nil,
		"Database": {"Config"},
		"Repo":     {"Database", "Config"},
	}, nil, []string{"Repo"}, nil)

	diags := &errors.List{}
	result := Validate(reg, diags)
	require.False(t, diags.HasErrors(), diags.Format())

	pos := make(map[string]int)
	for i, name := range result.Order {
		pos[name] = i
	}
	require.Less(t, pos["Config"], pos["Database"])
	require.Less(t, pos["Database"], pos["Repo"])
}

func TestOrderRespectsEveryEdge(t *testing.T) {
	reg := buildRegistry(map[string][]string{
		"A": {"B", "C"},
		"B": {"D"},
		"C": {"D"},
		"D": nil,
	}, nil, []string{"A"}, nil)

	diags := &errors.List{}
	result := Validate(reg, diags)
	require.False(t, diags.HasErrors())

	pos := make(map[string]int)
	for i, name := range result.Order {
		pos[name] = i
	}
	for node, deps := range result.Providers {
		for _, dep := range deps {
			require.Less(t, pos[dep], pos[node], "edge %s -> %s violated", node, dep)
		}
	}
}

func TestCycleReported(t *testing.T) {
	reg := buildRegistry(map[string][]string{
		"A": {"B"},
		"B": {"A"},
	}, nil, []string{"A"}, nil)

	diags := &errors.List{}
	result := Validate(reg, diags)
	require.True(t, diags.HasErrors())
	require.Empty(t, result.Order)

	var msg string
	for _, d := range diags.All() {
		if d.Kind == semantic.KindDICycle {
			msg = d.Message
		}
	}
	require.NotEmpty(t, msg)
	cyclic := strings.Contains(msg, "A -> B -> A") || strings.Contains(msg, "B -> A -> B")
	require.True(t, cyclic, "message %q should list the full cycle", msg)
}

func TestMissingProvider(t *testing.T) {
	reg := buildRegistry(map[string][]string{
		"A": {"Ghost"},
	}, nil, []string{"A"}, nil)

	diags := &errors.List{}
	Validate(reg, diags)
	require.True(t, diags.HasErrors())
	requireKind(t, diags, semantic.KindMissingProvider)
}

func TestAmbientReachability(t *testing.T) {
	// Ambient registrations are DI roots even without a bracket-dep path.
	reg := buildRegistry(map[string][]string{
		"Logger": nil,
		"Clock":  nil,
	}, nil, nil, []string{"Logger", "Clock"})

	diags := &errors.List{}
	result := Validate(reg, diags)
	require.False(t, diags.HasErrors())
	require.ElementsMatch(t, []string{"Logger", "Clock"}, result.Order)
}

func TestUnregisteredAmbientUse(t *testing.T) {
	reg := buildRegistry(map[string][]string{
		"Logger": nil,
		"S":      nil,
	}, map[string][]string{"S": {"Logger"}}, nil, nil)

	diags := &errors.List{}
	Validate(reg, diags)
	require.True(t, diags.HasErrors())
	requireKind(t, diags, semantic.KindUnregisteredAmbient)
}

func TestNoAppMeansNoGraph(t *testing.T) {
	reg := semantic.NewRegistry()
	diags := &errors.List{}
	result := Validate(reg, diags)
	require.False(t, diags.HasErrors())
	require.Empty(t, result.Order)
}

func requireKind(t *testing.T, diags *errors.List, kind string) {
	t.Helper()
	for _, d := range diags.All() {
		if d.Kind == kind {
			return
		}
	}
	t.Fatalf("no %s diagnostic found in:\n%s", kind, diags.Format())
}
