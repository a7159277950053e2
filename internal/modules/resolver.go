package modules

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/mkerian10/pluto/internal/ast"
	"github.com/mkerian10/pluto/internal/errors"
	"github.com/mkerian10/pluto/internal/lexer"
	"github.com/mkerian10/pluto/internal/parser"
)

// SourceExt is the Pluto source file extension.
const SourceExt = ".pluto"

// Resolver loads the module graph rooted at an entry file.
type Resolver struct {
	baseDir   string
	stdlibDir string

	diags   *errors.List
	modules map[string]*Module
	order   []string // postorder module paths: each module after its imports

	// DFS state for cycle detection.
	state map[string]visitState
	stack []string
}

type visitState int

const (
	unvisited visitState = iota
	visiting
	visited
)

// NewResolver creates a resolver. stdlibDir may be empty.
func NewResolver(stdlibDir string) *Resolver {
	return &Resolver{
		stdlibDir: stdlibDir,
		diags:     &errors.List{},
		modules:   make(map[string]*Module),
		state:     make(map[string]visitState),
	}
}

// Load parses the entry file and every transitively imported module,
// returning the module set in dependency order. The returned diagnostics
// carry every lex, parse, and module error found.
func (r *Resolver) Load(entryPath string) ([]*Module, *errors.List) {
	r.baseDir = filepath.Dir(entryPath)

	entry := r.parseFileModule("", entryPath, lexer.Position{})
	if entry == nil {
		return nil, r.diags
	}
	r.modules[""] = entry
	r.visit(entry)

	// Reject app declarations outside the entry module.
	for _, path := range r.order {
		mod := r.modules[path]
		if mod.Path == "" {
			continue
		}
		for _, decl := range mod.Decls {
			if app, ok := decl.(*ast.AppDecl); ok {
				r.diags.Errorf("ModuleError::AppOutsideEntry", app.Pos(),
					"app %s declared outside the entry module", app.Name.Value)
			}
		}
	}

	out := make([]*Module, 0, len(r.order))
	for _, path := range r.order {
		out = append(out, r.modules[path])
	}
	return out, r.diags
}

// visit walks the import graph depth-first, loading modules and rejecting
// cycles.
func (r *Resolver) visit(mod *Module) {
	r.state[mod.Path] = visiting
	r.stack = append(r.stack, mod.Path)

	imports := make([]string, 0, len(mod.Imports))
	for _, path := range mod.Imports {
		imports = append(imports, path)
	}
	sort.Strings(imports)

	for _, path := range imports {
		switch r.state[path] {
		case visiting:
			r.diags.Errorf("ModuleError::ImportCycle", mod.Pos,
				"import cycle: %s", r.cycleFrom(path))
			continue
		case visited:
			continue
		}

		imported := r.loadModule(path, mod)
		if imported == nil {
			continue
		}
		r.modules[path] = imported
		r.visit(imported)
	}

	r.stack = r.stack[:len(r.stack)-1]
	r.state[mod.Path] = visited
	r.order = append(r.order, mod.Path)
}

// cycleFrom renders the cycle starting at the first occurrence of path on
// the DFS stack.
func (r *Resolver) cycleFrom(path string) string {
	names := func(p string) string {
		if p == "" {
			return "<entry>"
		}
		return p
	}
	for i, p := range r.stack {
		if p == path {
			parts := make([]string, 0, len(r.stack)-i+1)
			for _, q := range r.stack[i:] {
				parts = append(parts, names(q))
			}
			parts = append(parts, names(path))
			return strings.Join(parts, " -> ")
		}
	}
	return names(path)
}

// loadModule locates and parses the module at the given dotted path: first
// a sibling file or directory of the entry, then the stdlib directory.
func (r *Resolver) loadModule(path string, from *Module) *Module {
	rel := filepath.Join(strings.Split(path, ".")...)

	for _, root := range r.searchRoots() {
		file := filepath.Join(root, rel+SourceExt)
		if fileExists(file) {
			return r.parseFileModule(path, file, from.Pos)
		}
		dir := filepath.Join(root, rel)
		if dirExists(dir) {
			return r.parseDirModule(path, dir, from.Pos)
		}
	}

	r.diags.Errorf("ModuleError::MissingModule", from.Pos,
		"cannot find module %s (looked for %s%s and %s/)", path, rel, SourceExt, rel)
	return nil
}

func (r *Resolver) searchRoots() []string {
	roots := []string{r.baseDir}
	if r.stdlibDir != "" {
		roots = append(roots, r.stdlibDir)
	}
	return roots
}

// parseFileModule parses a single-file module.
func (r *Resolver) parseFileModule(path, file string, pos lexer.Position) *Module {
	src, err := os.ReadFile(file)
	if err != nil {
		r.diags.Errorf("ModuleError::MissingModule", pos, "cannot read %s: %v", file, err)
		return nil
	}

	mod := &Module{
		Path:    path,
		Imports: make(map[string]string),
		Decls:   make(map[string]ast.Declaration),
		Pos:     pos,
	}
	r.addFile(mod, file, string(src))
	return mod
}

// parseDirModule parses every sibling .pluto file of a directory into one
// logical module.
func (r *Resolver) parseDirModule(path, dir string, pos lexer.Position) *Module {
	pattern := filepath.Join(dir, "*"+SourceExt)
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil || len(matches) == 0 {
		r.diags.Errorf("ModuleError::MissingModule", pos,
			"module directory %s contains no %s files", dir, SourceExt)
		return nil
	}
	sort.Strings(matches)

	mod := &Module{
		Path:    path,
		Imports: make(map[string]string),
		Decls:   make(map[string]ast.Declaration),
		Pos:     pos,
	}
	for _, file := range matches {
		src, err := os.ReadFile(file)
		if err != nil {
			r.diags.Errorf("ModuleError::MissingModule", pos, "cannot read %s: %v", file, err)
			continue
		}
		r.addFile(mod, file, string(src))
	}
	return mod
}

// addFile lexes and parses one file into mod, recording diagnostics and
// merging declarations and imports.
func (r *Resolver) addFile(mod *Module, file, src string) {
	l := lexer.New(src)
	p := parser.New(l)
	program := p.ParseProgram()

	r.diags.AddLexErrors(file, p.LexerErrors())
	for _, perr := range p.Errors() {
		r.diags.AddParseError(file, perr.Pos, perr.Message, perr.Expected)
	}

	mod.Files = append(mod.Files, &SourceFile{Path: file, Source: src, Program: program})

	for _, imp := range program.Imports {
		mod.Imports[imp.LocalName()] = imp.Path
	}
	for _, decl := range program.Declarations {
		name := decl.DeclName()
		if _, exists := mod.Decls[name]; exists {
			r.diags.Errorf("TypeError::DuplicateDeclaration", decl.Pos(),
				"duplicate declaration %s in module %s", name, modName(mod))
			continue
		}
		mod.Decls[name] = decl
	}
}

func modName(m *Module) string {
	if m.Path == "" {
		return "<entry>"
	}
	return m.Path
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
