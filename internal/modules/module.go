// Package modules builds the module graph for a Pluto program and flattens
// it into a single namespace of qualified declarations.
//
// A module is identified by its dotted import path. The entry file is the
// anonymous root module; `import p.q` locates either the file p/q.pluto or
// the directory p/q/, whose sibling files are merged into one logical
// module. Imports are not transitive: an imported module's own imports are
// not re-exported.
package modules

import (
	"github.com/mkerian10/pluto/internal/ast"
	"github.com/mkerian10/pluto/internal/lexer"
)

// SourceFile is one parsed file of a module, kept with its source text for
// diagnostic rendering.
type SourceFile struct {
	Path    string
	Source  string
	Program *ast.Program
}

// Module is one node of the module graph.
type Module struct {
	// Path is the dotted import path; "" for the entry module.
	Path string

	Files []*SourceFile

	// Imports maps the local name an import binds (alias or last path
	// segment) to the imported module's dotted path.
	Imports map[string]string

	// Decls maps unqualified declaration names to their declarations,
	// merged across sibling files.
	Decls map[string]ast.Declaration

	// Pos is where the module was first imported from, for diagnostics.
	Pos lexer.Position
}

// qualify returns the flattened qualified name of a declaration of this
// module. Entry-module declarations keep their unqualified names.
func (m *Module) qualify(name string) string {
	if m.Path == "" {
		return name
	}
	return m.Path + "." + name
}

// prelude is the set of names resolvable in any module without import:
// the built-in functions.
var prelude = map[string]bool{
	"print":     true,
	"len":       true,
	"to_string": true,
	"panic":     true,
}

// Prelude reports whether name is in the prelude set.
func Prelude(name string) bool {
	return prelude[name]
}
