// Package manifest reads the optional pluto.toml project manifest.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the manifest's well-known file name.
const FileName = "pluto.toml"

// Manifest is the decoded pluto.toml.
type Manifest struct {
	Project Project `toml:"project"`
}

// Project configures a build: the entry file, an optional stdlib search
// directory, and the output path for the delegated native emission.
type Project struct {
	Entry  string `toml:"entry"`
	Stdlib string `toml:"stdlib"`
	Output string `toml:"output"`
}

// Load reads and decodes a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	// Paths in the manifest are relative to the manifest's directory.
	dir := filepath.Dir(path)
	if m.Project.Entry != "" && !filepath.IsAbs(m.Project.Entry) {
		m.Project.Entry = filepath.Join(dir, m.Project.Entry)
	}
	if m.Project.Stdlib != "" && !filepath.IsAbs(m.Project.Stdlib) {
		m.Project.Stdlib = filepath.Join(dir, m.Project.Stdlib)
	}
	if m.Project.Output != "" && !filepath.IsAbs(m.Project.Output) {
		m.Project.Output = filepath.Join(dir, m.Project.Output)
	}
	return &m, nil
}

// Find walks up from dir looking for a pluto.toml; it returns "" when none
// exists.
func Find(dir string) string {
	for {
		candidate := filepath.Join(dir, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
