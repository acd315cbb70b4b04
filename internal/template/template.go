package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/tidwall/jsonc"
	"go.yaml.in/yaml/v3"

	"github.com/ion-tools/ion/internal/blueprint"
)

var (
	// ErrNotFound marks a template name absent from every registry.
	ErrNotFound = errors.New("template not found")
	// ErrInvalid marks a declaration that fails schema or semantic validation.
	ErrInvalid = errors.New("invalid template")
	// ErrIncompatible marks a template whose requires constraint excludes
	// the running version.
	ErrIncompatible = errors.New("template requires a different ion version")
)

// DeclarationFiles are the file names a template directory may declare
// itself with, in lookup order.
var DeclarationFiles = []string{"template.yaml", "template.yml", "template.jsonc", "template.json"}

// TemplatesDir is the directory of a registry checkout holding templates.
const TemplatesDir = "templates"

// Declaration is one registry's declaration of a template.
type Declaration struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Version     string         `yaml:"version"`
	Requires    string         `yaml:"requires"`
	Project     map[string]any `yaml:"project"`
	Values      map[string]any `yaml:"values"`
	Blueprints  []yaml.Node    `yaml:"blueprints"`

	// Registry is the registry the declaration was read from.
	Registry string `yaml:"-"`
	// Dir is the template directory; relative blueprint paths resolve there.
	Dir string `yaml:"-"`
}

// FindDeclaration returns the declaration file of a template directory.
func FindDeclaration(dir string) (string, error) {
	for _, name := range DeclarationFiles {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("no %s in %s: %w", strings.Join(DeclarationFiles, "/"), dir, fs.ErrNotExist)
}

// Load reads and validates the declaration in dir.
func Load(dir, registry string) (*Declaration, error) {
	path, err := FindDeclaration(dir)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	doc, node, err := parse(path, data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w: %w", path, ErrInvalid, err)
	}

	issues, err := Validate(doc)
	if err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}
	if len(issues) > 0 {
		msgs := make([]string, len(issues))
		for i, issue := range issues {
			msgs[i] = issue.String()
		}
		return nil, fmt.Errorf("%s: %w: %s", path, ErrInvalid, strings.Join(msgs, "; "))
	}

	var d Declaration
	if err := node.Decode(&d); err != nil {
		return nil, fmt.Errorf("decoding %s: %w: %w", path, ErrInvalid, err)
	}
	if d.Name == "" {
		d.Name = filepath.Base(dir)
	}
	d.Registry = registry
	d.Dir = dir

	if d.Version != "" {
		if _, err := semver.NewVersion(d.Version); err != nil {
			return nil, fmt.Errorf("%s: %w: version %q: %w", path, ErrInvalid, d.Version, err)
		}
	}
	if d.Requires != "" {
		if _, err := semver.NewConstraint(d.Requires); err != nil {
			return nil, fmt.Errorf("%s: %w: requires %q: %w", path, ErrInvalid, d.Requires, err)
		}
	}
	return &d, nil
}

// parse decodes a YAML or JSONC declaration into a generic document for
// schema validation and a YAML node for typed decoding.
func parse(path string, data []byte) (any, *yaml.Node, error) {
	var doc any
	var node yaml.Node

	switch filepath.Ext(path) {
	case ".jsonc", ".json":
		if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
			return nil, nil, err
		}
		if err := node.Encode(doc); err != nil {
			return nil, nil, err
		}
	default:
		if err := yaml.Unmarshal(data, &node); err != nil {
			return nil, nil, err
		}
		if err := node.Decode(&doc); err != nil {
			return nil, nil, err
		}
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, &node, nil
}

// Origin names one registry's contribution to a resolved Template.
type Origin struct {
	Registry string
	Dir      string
}

// Template is a resolved template: the overlay of every registry's
// declaration of the same name.
type Template struct {
	Name        string
	Description string
	Version     *semver.Version
	Requires    *semver.Constraints
	// Registry is the highest-priority registry declaring the template.
	Registry string
	// Origins lists contributing registries from lowest to highest priority.
	Origins  []Origin
	Project  map[string]any
	Values   map[string]any
	Revision string

	sources []blueprint.Source
}

// Sources returns the winning blueprint declarations in execution order.
func (t *Template) Sources() []blueprint.Source {
	return append([]blueprint.Source(nil), t.sources...)
}

// BlueprintNames returns the blueprint names in execution order without
// decoding the declarations.
func (t *Template) BlueprintNames() []string {
	names := make([]string, 0, len(t.sources))
	for _, src := range t.sources {
		name, err := blueprint.NameOf(src.Node)
		if err != nil {
			name = "?"
		}
		names = append(names, name)
	}
	return names
}

// Blueprints decodes the blueprint declarations in execution order.
func (t *Template) Blueprints() ([]blueprint.Blueprint, error) {
	bps, err := blueprint.DecodeAll(t.sources)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", t.Name, err)
	}
	return bps, nil
}

// VersionString returns the declared version or "-".
func (t *Template) VersionString() string {
	if t.Version == nil {
		return "-"
	}
	return t.Version.String()
}

// Check reports ErrIncompatible when running is outside the template's
// requires constraint. Non-semver running versions, such as "dev", pass.
func (t *Template) Check(running string) error {
	if t.Requires == nil {
		return nil
	}
	v, err := semver.NewVersion(running)
	if err != nil {
		return nil
	}
	if !t.Requires.Check(v) {
		return fmt.Errorf("%s needs ion %s, running %s: %w", t.Name, t.Requires, v, ErrIncompatible)
	}
	return nil
}
