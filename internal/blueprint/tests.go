package blueprint

// Tests renders the test entry point test/runtests.jl.
type Tests struct {
	base `yaml:"-"`

	File TemplateFile `yaml:",inline"`
}

func (t *Tests) configure() error {
	return t.File.bind(t.dir, "", builtin("runtests.jl.tmpl"), "test/runtests.jl")
}

func (t *Tests) Targets() []string { return []string{t.File.Target} }

func (t *Tests) Prompt(*Session, *Context) error { return nil }

func (t *Tests) Render(s *Session, c *Context) error {
	return renderError(t, t.File.Target, t.File.Render(s, c.Data()))
}
