package template

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Checkout is a registry's local copy. Checkouts are scanned in priority
// order, lowest first.
type Checkout struct {
	Registry string
	Dir      string
}

// Catalog is the set of templates resolved from a list of checkouts.
type Catalog struct {
	templates map[string]*Template
	// Problems collects declarations that could not be loaded. They do not
	// hide the templates that did load.
	Problems []error
}

// Scan loads every template declared under <checkout>/templates and merges
// same-named declarations across checkouts.
func Scan(checkouts []Checkout) *Catalog {
	c := &Catalog{templates: make(map[string]*Template)}
	byName := make(map[string][]*Declaration)
	var order []string

	for _, co := range checkouts {
		root := filepath.Join(co.Dir, TemplatesDir)
		entries, err := os.ReadDir(root)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				c.Problems = append(c.Problems, fmt.Errorf("registry %s: %w", co.Registry, err))
			}
			continue
		}
		for _, e := range entries {
			if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
				continue
			}
			d, err := Load(filepath.Join(root, e.Name()), co.Registry)
			if err != nil {
				if !errors.Is(err, fs.ErrNotExist) {
					c.Problems = append(c.Problems, fmt.Errorf("registry %s: %w", co.Registry, err))
				}
				continue
			}
			if _, ok := byName[d.Name]; !ok {
				order = append(order, d.Name)
			}
			byName[d.Name] = append(byName[d.Name], d)
		}
	}

	for _, name := range order {
		t, err := Merge(byName[name])
		if err != nil {
			c.Problems = append(c.Problems, err)
			continue
		}
		if rev, err := revision(t.Origins); err == nil {
			t.Revision = rev
		}
		c.templates[name] = t
	}
	return c
}

// Len returns the number of templates.
func (c *Catalog) Len() int { return len(c.templates) }

// Names returns the template names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.templates))
	for name := range c.templates {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// List returns the templates sorted by name.
func (c *Catalog) List() []*Template {
	names := c.Names()
	out := make([]*Template, len(names))
	for i, name := range names {
		out[i] = c.templates[name]
	}
	return out
}

// Get returns the named template. An unknown name yields ErrNotFound with
// close matches in the message.
func (c *Catalog) Get(name string) (*Template, error) {
	if t, ok := c.templates[name]; ok {
		return t, nil
	}
	if suggestions := c.Suggest(name); len(suggestions) > 0 {
		return nil, fmt.Errorf("%q: %w (did you mean %s?)", name, ErrNotFound, strings.Join(suggestions, ", "))
	}
	return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
}

// Suggest returns up to three template names resembling name.
func (c *Catalog) Suggest(name string) []string {
	names := c.Names()
	var out []string
	for _, n := range names {
		if strings.EqualFold(n, name) {
			out = append(out, n)
		}
	}
	for _, m := range fuzzy.Find(name, names) {
		if len(out) == 3 {
			break
		}
		if !slices.Contains(out, m.Str) {
			out = append(out, m.Str)
		}
	}
	return out
}
