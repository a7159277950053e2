package modules_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkerian10/pluto/internal/ast"
	"github.com/mkerian10/pluto/internal/errors"
	"github.com/mkerian10/pluto/internal/modules"
)

// writeTree lays out a source tree in a fresh temp dir and returns its
// root.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestLoadAndFlattenSingleImport(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.pluto": "import util\n\nfn run() string {\n\treturn util.helper()\n}\n",
		"util.pluto": "pub fn helper() string {\n\treturn \"ok\"\n}\n",
	})

	r := modules.NewResolver("")
	mods, diags := r.Load(filepath.Join(root, "main.pluto"))
	require.False(t, diags.HasErrors(), diags.Format())
	require.Len(t, mods, 2)

	program := modules.Flatten(mods, diags)
	require.False(t, diags.HasErrors(), diags.Format())

	names := declNames(program)
	require.Contains(t, names, "util.helper")
	require.Contains(t, names, "run")

	// The cross-module call is rewritten to the qualified name.
	rendered := program.String()
	require.Contains(t, rendered, "util.helper()")
}

func TestImportAlias(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.pluto": "import util as u\n\nfn run() string {\n\treturn u.helper()\n}\n",
		"util.pluto": "pub fn helper() string {\n\treturn \"ok\"\n}\n",
	})

	r := modules.NewResolver("")
	mods, diags := r.Load(filepath.Join(root, "main.pluto"))
	require.False(t, diags.HasErrors(), diags.Format())

	program := modules.Flatten(mods, diags)
	require.False(t, diags.HasErrors(), diags.Format())
	require.Contains(t, program.String(), "util.helper()")
}

func TestDirectoryModuleMergesSiblings(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.pluto":      "import util\n\nfn run() {\n\tutil.one()\n\tutil.two()\n}\n",
		"util/one.pluto":  "pub fn one() {\n}\n",
		"util/more.pluto": "pub fn two() {\n}\n",
	})

	r := modules.NewResolver("")
	mods, diags := r.Load(filepath.Join(root, "main.pluto"))
	require.False(t, diags.HasErrors(), diags.Format())

	program := modules.Flatten(mods, diags)
	names := declNames(program)
	require.Contains(t, names, "util.one")
	require.Contains(t, names, "util.two")
}

func TestImportCycleRejected(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.pluto": "import a\n\nfn run() {\n}\n",
		"a.pluto":    "import b\n\npub fn fa() {\n}\n",
		"b.pluto":    "import a\n\npub fn fb() {\n}\n",
	})

	r := modules.NewResolver("")
	_, diags := r.Load(filepath.Join(root, "main.pluto"))
	require.True(t, diags.HasErrors())
	requireKind(t, diags.All(), "ModuleError::ImportCycle")
}

func TestMissingModule(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.pluto": "import nowhere\n\nfn run() {\n}\n",
	})

	r := modules.NewResolver("")
	_, diags := r.Load(filepath.Join(root, "main.pluto"))
	require.True(t, diags.HasErrors())
	requireKind(t, diags.All(), "ModuleError::MissingModule")
}

func TestAppOutsideEntryRejected(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.pluto": "import sub\n\nfn run() {\n}\n",
		"sub.pluto":  "app Hidden {\n\tfn main() {\n\t}\n}\n",
	})

	r := modules.NewResolver("")
	_, diags := r.Load(filepath.Join(root, "main.pluto"))
	require.True(t, diags.HasErrors())
	requireKind(t, diags.All(), "ModuleError::AppOutsideEntry")
}

func TestPrivateDeclarationRejected(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.pluto": "import util\n\nfn run() {\n\tutil.secret()\n}\n",
		"util.pluto": "fn secret() {\n}\n",
	})

	r := modules.NewResolver("")
	mods, diags := r.Load(filepath.Join(root, "main.pluto"))
	require.False(t, diags.HasErrors(), diags.Format())

	modules.Flatten(mods, diags)
	require.True(t, diags.HasErrors())
	requireKind(t, diags.All(), "ModuleError::PrivateDeclaration")
}

func TestStdlibDirSearchedAfterEntryDir(t *testing.T) {
	root := writeTree(t, map[string]string{
		"app/main.pluto":  "import strings\n\nfn run() string {\n\treturn strings.upper(\"x\")\n}\n",
		"std/strings.pluto": "pub fn upper(s: string) string {\n\treturn s.to_upper()\n}\n",
	})

	r := modules.NewResolver(filepath.Join(root, "std"))
	mods, diags := r.Load(filepath.Join(root, "app", "main.pluto"))
	require.False(t, diags.HasErrors(), diags.Format())
	require.Len(t, mods, 2)
}

func declNames(program *ast.Program) []string {
	var names []string
	for _, d := range program.Declarations {
		names = append(names, d.QualifiedName())
	}
	return names
}

func requireKind(t *testing.T, diags []*errors.Diagnostic, kind string) {
	t.Helper()
	for _, d := range diags {
		if d.Kind == kind {
			return
		}
	}
	t.Fatalf("no %s diagnostic found", kind)
}
