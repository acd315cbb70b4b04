package blueprint

import (
	"fmt"
	"slices"

	"go.yaml.in/yaml/v3"
)

// Blueprint is one independently prompted and rendered unit of a template.
type Blueprint interface {
	// Name identifies the blueprint within its template.
	Name() string
	// Kind is the variant the blueprint was decoded as.
	Kind() string
	// Targets lists the project-relative files Render may write.
	Targets() []string
	// Prompt collects input into c. It must not write files and should
	// skip questions whose answers c already holds.
	Prompt(s *Session, c *Context) error
	// Render writes output derived from the frozen c. It must not prompt.
	Render(s *Session, c *Context) error
}

// variant is the decoding side of a Blueprint.
type variant interface {
	Blueprint
	bindBase(kind, name, dir string)
	// configure applies name-dependent defaults and validates the declaration.
	configure() error
}

// kinds maps a declaration's kind to a constructor returning the variant
// with its static defaults filled in.
var kinds = map[string]func() variant{
	"project":   func() variant { return &ProjectManifest{Version: "0.1.0"} },
	"readme":    func() variant { return &Readme{InlineBadge: true} },
	"badge":     func() variant { return &BadgeBlueprint{} },
	"license":   func() variant { return &License{} },
	"gitignore": func() variant { return &Gitignore{Ignore: slices.Clone(defaultIgnores)} },
	"tests":     func() variant { return &Tests{} },
}

// Kinds returns the registered kinds in sorted order.
func Kinds() []string {
	out := make([]string, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

type header struct {
	Kind string `yaml:"kind"`
	Name string `yaml:"name"`
}

// NameOf returns the name a declaration will be registered under: its
// name field, or its kind when the name is absent.
func NameOf(node *yaml.Node) (string, error) {
	var h header
	if err := node.Decode(&h); err != nil {
		return "", fmt.Errorf("decoding blueprint header: %w", err)
	}
	if h.Name != "" {
		return h.Name, nil
	}
	if h.Kind == "" {
		return "", fmt.Errorf("blueprint declaration without kind")
	}
	return h.Kind, nil
}

// Decode builds a Blueprint from its declaration. dir is the directory of
// the template that declared it; relative template paths resolve there.
// Absent or unknown fields keep the variant defaults.
func Decode(node *yaml.Node, dir string) (Blueprint, error) {
	var h header
	if err := node.Decode(&h); err != nil {
		return nil, fmt.Errorf("decoding blueprint header: %w", err)
	}
	newVariant, ok := kinds[h.Kind]
	if !ok {
		return nil, fmt.Errorf("%q: %w", h.Kind, ErrUnknownKind)
	}
	name := h.Name
	if name == "" {
		name = h.Kind
	}

	v := newVariant()
	if err := node.Decode(v); err != nil {
		return nil, fmt.Errorf("decoding blueprint %s: %w", name, err)
	}
	v.bindBase(h.Kind, name, dir)
	if err := v.configure(); err != nil {
		return nil, fmt.Errorf("blueprint %s: %w", name, err)
	}
	return v, nil
}

// Source pairs a declaration with the template directory it came from.
type Source struct {
	Node *yaml.Node
	Dir  string
}

// DecodeAll decodes declarations in order, rejecting duplicate names.
func DecodeAll(sources []Source) ([]Blueprint, error) {
	seen := make(map[string]bool, len(sources))
	out := make([]Blueprint, 0, len(sources))
	for _, src := range sources {
		b, err := Decode(src.Node, src.Dir)
		if err != nil {
			return nil, err
		}
		if seen[b.Name()] {
			return nil, fmt.Errorf("%q: %w", b.Name(), ErrDuplicateName)
		}
		seen[b.Name()] = true
		out = append(out, b)
	}
	return out, nil
}

// base holds the identity shared by every variant.
type base struct {
	kind string
	name string
	dir  string
}

func (b *base) Name() string { return b.name }
func (b *base) Kind() string { return b.kind }

func (b *base) bindBase(kind, name, dir string) {
	b.kind, b.name, b.dir = kind, name, dir
}
