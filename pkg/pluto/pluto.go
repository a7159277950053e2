// Package pluto is the embedding API for the Pluto compiler's static
// pipeline: source text in, a validated, lowering-ready typed program (or
// diagnostics) out.
package pluto

import (
	"fmt"
	"os"

	"github.com/mkerian10/pluto/internal/ast"
	"github.com/mkerian10/pluto/internal/di"
	"github.com/mkerian10/pluto/internal/errors"
	"github.com/mkerian10/pluto/internal/lexer"
	"github.com/mkerian10/pluto/internal/modules"
	"github.com/mkerian10/pluto/internal/mono"
	"github.com/mkerian10/pluto/internal/parser"
	"github.com/mkerian10/pluto/internal/semantic"
)

// Options configures a compilation.
type Options struct {
	// StdlibDir is searched for imports after the entry file's directory.
	StdlibDir string
}

// Program is the result of running the static pipeline. When Diagnostics
// contains errors the later artifacts are nil: each pass halts the
// pipeline at its boundary.
type Program struct {
	AST         *ast.Program
	Registry    *semantic.Registry
	Info        *semantic.Info
	Fallible    map[string]bool
	DI          *di.Result
	Mono        *mono.Result
	Diagnostics *errors.List
}

// Ok reports whether the pipeline ran to completion without errors.
func (p *Program) Ok() bool {
	return !p.Diagnostics.HasErrors()
}

// Compile loads the module graph rooted at entryPath and runs the full
// static pipeline. I/O failures on the entry file surface as an error;
// everything else is reported through Program.Diagnostics.
func Compile(entryPath string, opts Options) (*Program, error) {
	if _, err := os.Stat(entryPath); err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", entryPath, err)
	}

	resolver := modules.NewResolver(opts.StdlibDir)
	mods, diags := resolver.Load(entryPath)
	if diags.HasErrors() {
		return &Program{Diagnostics: diags}, nil
	}

	flattened := modules.Flatten(mods, diags)
	if diags.HasErrors() {
		return &Program{AST: flattened, Diagnostics: diags}, nil
	}

	return run(flattened, diags), nil
}

// CheckSource runs the pipeline over a single in-memory source file with
// no imports. This is the seam the tests and tooling use.
func CheckSource(src string) *Program {
	diags := &errors.List{}

	l := lexer.New(src)
	p := parser.New(l)
	program := p.ParseProgram()

	diags.AddLexErrors("", p.LexerErrors())
	for _, perr := range p.Errors() {
		diags.AddParseError("", perr.Pos, perr.Message, perr.Expected)
	}
	if diags.HasErrors() {
		return &Program{AST: program, Diagnostics: diags}
	}
	if len(program.Imports) > 0 {
		diags.Errorf("ModuleError::MissingModule", program.Imports[0].Pos(),
			"imports are not available when checking a single source buffer")
		return &Program{AST: program, Diagnostics: diags}
	}

	return run(program, diags)
}

// pass is one stage of the pipeline; each consumes the shared program and
// halts the pipeline if it records any error-severity diagnostic.
type pass struct {
	name string
	run  func(*Program, *errors.List)
}

// run executes the semantic pipeline over a flattened program.
func run(flattened *ast.Program, diags *errors.List) *Program {
	result := &Program{AST: flattened, Diagnostics: diags}

	pipeline := []pass{
		{"ambient-desugar", func(p *Program, d *errors.List) {
			semantic.Desugar(p.AST, d)
		}},
		{"register", func(p *Program, d *errors.List) {
			p.Registry = semantic.Register(p.AST, d)
		}},
		{"typecheck", func(p *Program, d *errors.List) {
			p.Info = semantic.Analyze(p.AST, p.Registry, d)
		}},
		{"error-inference", func(p *Program, d *errors.List) {
			p.Fallible = semantic.InferErrors(p.AST, p.Registry, p.Info, d)
		}},
		{"mutability", func(p *Program, d *errors.List) {
			semantic.CheckMutability(p.AST, p.Info, d)
		}},
		{"di-validate", func(p *Program, d *errors.List) {
			p.DI = di.Validate(p.Registry, d)
		}},
		{"monomorphize", func(p *Program, d *errors.List) {
			p.Mono = mono.Run(p.AST, p.Registry, p.Info, d)
		}},
		{"exhaustiveness", func(p *Program, d *errors.List) {
			semantic.CheckExhaustiveness(p.AST, p.Registry, p.Info, d)
		}},
	}

	for _, stage := range pipeline {
		stage.run(result, diags)
		if diags.HasErrors() {
			break
		}
	}
	return result
}
