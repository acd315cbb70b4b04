package blueprint

// KeyInlineBadge is the Context key through which Readme tells badge
// blueprints whether their markup is inlined into the README.
const KeyInlineBadge = "readme.inline_badge"

// Readme renders README.md and collects the one-line project description.
type Readme struct {
	base `yaml:"-"`

	File        TemplateFile `yaml:",inline"`
	InlineBadge bool         `yaml:"inline_badge"`
}

func (r *Readme) configure() error {
	return r.File.bind(r.dir, "./README.md.tmpl", builtin("README.md.tmpl"), "README.md")
}

func (r *Readme) Targets() []string { return []string{r.File.Target} }

// Prompt publishes the inline_badge setting and asks for a description
// unless one is already present. An empty answer leaves it unset.
func (r *Readme) Prompt(s *Session, c *Context) error {
	c.Set(KeyInlineBadge, r.InlineBadge)
	if _, ok := c.Lookup("project.description"); ok {
		return nil
	}
	desc, err := s.Prompter.Ask("Project description (one line, empty to skip)", "", true)
	if err != nil {
		return promptError(r, err)
	}
	if desc != "" {
		c.Set("project.description", desc)
	}
	return nil
}

func (r *Readme) Render(s *Session, c *Context) error {
	data := c.Data()
	data["InlineBadge"] = r.InlineBadge
	data["Badges"] = []Badge{}
	if r.InlineBadge {
		data["Badges"] = Badges(c)
	}
	return renderError(r, r.File.Target, r.File.Render(s, data))
}
