// Package manifest loads genfun.yaml, the declarative description of
// a project's generic functions: documentation, parameter names and
// explicit argument precedence. Methods are always defined through
// the engine API; the manifest only declares the generics ahead of
// them.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/genfun/internal/config"
	"github.com/funvibe/genfun/internal/dispatch"
)

// Manifest is the parsed genfun.yaml.
type Manifest struct {
	Generics []GenericDecl `yaml:"generics"`
}

// GenericDecl declares one generic function.
type GenericDecl struct {
	Name string `yaml:"name"`

	// Params names the mandatory parameters, in order.
	Params []string `yaml:"params,omitempty"`

	// Doc is carried for introspection only.
	Doc string `yaml:"doc,omitempty"`

	// Precedence is the explicit argument precedence order, most
	// important parameter first. Must be a permutation of Params.
	Precedence []string `yaml:"precedence,omitempty"`
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses manifest content from bytes. The path argument is used
// only for error messages.
func Parse(data []byte, path string) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := m.validate(path); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate(path string) error {
	seen := make(map[string]bool, len(m.Generics))
	for i, decl := range m.Generics {
		if decl.Name == "" {
			return fmt.Errorf("%s: generics[%d]: missing name", path, i)
		}
		if seen[decl.Name] {
			return fmt.Errorf("%s: generics[%d]: duplicate generic '%s'", path, i, decl.Name)
		}
		seen[decl.Name] = true
		if len(decl.Precedence) > 0 && len(decl.Params) == 0 {
			return fmt.Errorf("%s: generic '%s': precedence declared without params", path, decl.Name)
		}
	}
	return nil
}

// Apply defines every declared generic on the table. Precedence
// errors surface per declaration, wrapped with the generic's name.
func (m *Manifest) Apply(t *dispatch.Table) error {
	for _, decl := range m.Generics {
		_, err := t.DefineGeneric(decl.Name, dispatch.GenericOptions{
			Documentation: decl.Doc,
			Params:        decl.Params,
			Precedence:    decl.Precedence,
		})
		if err != nil {
			return fmt.Errorf("applying manifest declaration '%s': %w", decl.Name, err)
		}
	}
	return nil
}

// Find searches for a manifest starting from dir and walking up to
// parent directories. Returns the empty string when none is found.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	for {
		for _, name := range []string{config.ManifestFileName, config.ManifestFileNameAlt} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
