package blueprint

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// License renders LICENSE from the template's licenses/ directory or a
// built-in text.
type License struct {
	base `yaml:"-"`

	File    TemplateFile `yaml:",inline"`
	License string       `yaml:"license"`
}

func (l *License) configure() error {
	return l.File.bind(l.dir, "", "", "LICENSE")
}

func (l *License) Targets() []string { return []string{l.File.Target} }

func (l *License) key() string { return l.name + ".id" }

// Prompt picks the license: the declared one, else project.license, else
// the user's choice among the available texts.
func (l *License) Prompt(s *Session, c *Context) error {
	if c.Has(l.key()) {
		return nil
	}
	id := l.License
	if id == "" {
		id = c.String("project.license")
	}
	if id == "" {
		options := l.Available()
		def := slices.Index(options, "MIT")
		idx, err := s.Prompter.Select("License", options, max(def, 0))
		if err != nil {
			return promptError(l, err)
		}
		id = options[idx]
	}
	c.Set(l.key(), id)
	if !c.Has("project.license") {
		c.Set("project.license", id)
	}
	return nil
}

// Available lists the license identifiers offered by the declaring
// template together with the built-in ones.
func (l *License) Available() []string {
	out := BuiltinLicenses()
	entries, err := os.ReadDir(filepath.Join(l.dir, "licenses"))
	if err == nil {
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			id := licenseID(e.Name())
			if !slices.Contains(out, id) {
				out = append(out, id)
			}
		}
	}
	slices.Sort(out)
	return out
}

func (l *License) Render(s *Session, c *Context) error {
	id := c.String(l.key())
	file := l.File
	if file.Inline == "" && file.Path == "" {
		text, err := l.text(id)
		if err != nil {
			return renderError(l, file.Target, err)
		}
		file.Inline = text
	}

	data := c.Data()
	data["License"] = id
	data["Holder"] = strings.Join(c.Project().Authors, ", ")
	return renderError(l, file.Target, file.Render(s, data))
}

// text finds the license source: the template's licenses/<id>[.ext]
// first, then the built-in text.
func (l *License) text(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("no license selected")
	}
	entries, err := os.ReadDir(filepath.Join(l.dir, "licenses"))
	if err == nil {
		for _, e := range entries {
			if e.IsDir() || licenseID(e.Name()) != id {
				continue
			}
			data, err := os.ReadFile(filepath.Join(l.dir, "licenses", e.Name()))
			if err != nil {
				return "", fmt.Errorf("reading license %s: %w", id, err)
			}
			return string(data), nil
		}
	}
	if text, ok := builtinLicense(id); ok {
		return text, nil
	}
	return "", fmt.Errorf("no text available for license %q", id)
}

func licenseID(fileName string) string {
	for _, ext := range []string{".tmpl", ".txt", ".md"} {
		if id, ok := strings.CutSuffix(fileName, ext); ok {
			return id
		}
	}
	return fileName
}
