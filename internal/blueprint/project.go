package blueprint

import (
	"context"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ion-tools/ion/internal/toolchain"
)

// projectNamespace seeds the deterministic project identifiers.
var projectNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/ion-tools/ion/projects"))

// ProjectUUID derives the project identifier from its name. Equal names
// give equal identifiers.
func ProjectUUID(name string) string {
	return uuid.NewSHA1(projectNamespace, []byte(name)).String()
}

const instantiateScript = "using Pkg; Pkg.instantiate()"

// ProjectManifest collects the project name and authors and renders
// Project.toml.
type ProjectManifest struct {
	base `yaml:"-"`

	File        TemplateFile `yaml:",inline"`
	Version     string       `yaml:"version"`
	Instantiate bool         `yaml:"instantiate"`
}

func (p *ProjectManifest) configure() error {
	return p.File.bind(p.dir, "", builtin("Project.toml.tmpl"), "Project.toml")
}

func (p *ProjectManifest) Targets() []string { return []string{p.File.Target} }

func (p *ProjectManifest) Prompt(s *Session, c *Context) error {
	if !c.Has("project.name") {
		def := ""
		if root, err := filepath.Abs(s.Root); err == nil {
			def = filepath.Base(root)
		}
		name, err := s.Prompter.Ask("Project name", def, false)
		if err != nil {
			return promptError(p, err)
		}
		c.Set("project.name", name)
	}

	if _, ok := c.Lookup("project.authors"); !ok {
		def := ""
		if s.Toolchain.Author != nil {
			author, err := s.Toolchain.Author.ReadText(context.Background())
			if err != nil {
				s.Logger.Debug("no default author", "error", err)
			}
			def = author
		}
		authors, err := s.Prompter.Ask("Authors (separated by ;)", def, true)
		if err != nil {
			return promptError(p, err)
		}
		c.Set("project.authors", authors)
	}

	if !c.Has("project.version") {
		c.Set("project.version", p.Version)
	}
	if !c.Has("project.uuid") {
		c.Set("project.uuid", ProjectUUID(c.String("project.name")))
	}
	return nil
}

// Render writes Project.toml and, when instantiate is set, resolves the
// project environment with the toolchain.
func (p *ProjectManifest) Render(s *Session, c *Context) error {
	if err := p.File.Render(s, c.Data()); err != nil {
		return renderError(p, p.File.Target, err)
	}
	if !p.Instantiate {
		return nil
	}
	root, err := filepath.Abs(s.Root)
	if err != nil {
		return renderError(p, "", err)
	}
	cmd := toolchain.Julia(s.Toolchain.JuliaBin, instantiateScript).
		ForProject(root, s.Toolchain.Compile).
		InDir(root).
		WithLogger(s.Logger)
	if _, err := cmd.Output(context.Background()); err != nil {
		return renderError(p, "", err)
	}
	return nil
}
