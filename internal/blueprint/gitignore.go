package blueprint

import (
	"strings"
)

var defaultIgnores = []string{".DS_Store", "/Manifest.toml", "/dev/", "/docs/build/"}

// Gitignore renders .gitignore from a list of patterns.
type Gitignore struct {
	base `yaml:"-"`

	Ignore []string `yaml:"ignore"`
	Target string   `yaml:"target"`
}

func (g *Gitignore) configure() error {
	if g.Target == "" {
		g.Target = ".gitignore"
	}
	return checkTarget(g.Target)
}

func (g *Gitignore) Targets() []string { return []string{g.Target} }

func (g *Gitignore) Prompt(*Session, *Context) error { return nil }

func (g *Gitignore) Render(s *Session, _ *Context) error {
	content := strings.Join(g.Ignore, "\n") + "\n"
	return renderError(g, g.Target, s.Write(g.Target, []byte(content)))
}
