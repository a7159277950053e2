package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	content := `
[project]
entry = "src/main.pluto"
stdlib = "stdlib"
output = "bin/service.plan"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "src", "main.pluto"), m.Project.Entry)
	require.Equal(t, filepath.Join(dir, "stdlib"), m.Project.Stdlib)
	require.Equal(t, filepath.Join(dir, "bin", "service.plan"), m.Project.Output)
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte("[project\nentry="), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	path := filepath.Join(root, FileName)
	require.NoError(t, os.WriteFile(path, []byte("[project]\n"), 0o644))

	require.Equal(t, path, Find(nested))
}

func TestFindReturnsEmptyWhenAbsent(t *testing.T) {
	require.Equal(t, "", Find(t.TempDir()))
}
