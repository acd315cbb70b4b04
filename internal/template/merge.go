package template

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/ion-tools/ion/internal/blueprint"
)

// Merge overlays declarations of one template given from lowest to
// highest priority. A blueprint declared by a higher-priority registry
// replaces the same-named one wholesale and keeps its position; new
// blueprints are appended in declared order. Metadata comes from the
// highest-priority declaration.
func Merge(decls []*Declaration) (*Template, error) {
	if len(decls) == 0 {
		return nil, fmt.Errorf("merging: %w", ErrNotFound)
	}

	var sources []blueprint.Source
	index := make(map[string]int)
	origins := make([]Origin, 0, len(decls))

	for _, d := range decls {
		seen := make(map[string]bool, len(d.Blueprints))
		for i := range d.Blueprints {
			node := &d.Blueprints[i]
			name, err := blueprint.NameOf(node)
			if err != nil {
				return nil, fmt.Errorf("%s in %s: %w: %w", d.Name, d.Registry, ErrInvalid, err)
			}
			if seen[name] {
				return nil, fmt.Errorf("%s in %s: %q: %w", d.Name, d.Registry, name, blueprint.ErrDuplicateName)
			}
			seen[name] = true

			src := blueprint.Source{Node: node, Dir: d.Dir}
			if pos, ok := index[name]; ok {
				sources[pos] = src
				continue
			}
			index[name] = len(sources)
			sources = append(sources, src)
		}
		origins = append(origins, Origin{Registry: d.Registry, Dir: d.Dir})
	}

	top := decls[len(decls)-1]
	t := &Template{
		Name:        top.Name,
		Description: top.Description,
		Registry:    top.Registry,
		Origins:     origins,
		Project:     top.Project,
		Values:      top.Values,
		sources:     sources,
	}
	if top.Version != "" {
		v, err := semver.NewVersion(top.Version)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %w", top.Name, ErrInvalid, err)
		}
		t.Version = v
	}
	if top.Requires != "" {
		c, err := semver.NewConstraint(top.Requires)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %w", top.Name, ErrInvalid, err)
		}
		t.Requires = c
	}
	return t, nil
}
