package template

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"go.yaml.in/yaml/v3"

	"github.com/ion-tools/ion/internal/blueprint"
)

// Inspect returns a markdown report on t: metadata and blueprint names,
// and with verbose each blueprint's resolved configuration and targets.
// Nothing is prompted or rendered.
func Inspect(t *Template, verbose bool) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", t.Name)
	if t.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", t.Description)
	}

	b.WriteString("| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Version | %s |\n", t.VersionString())
	fmt.Fprintf(&b, "| Registry | %s |\n", t.Registry)
	if len(t.Origins) > 1 {
		regs := make([]string, len(t.Origins))
		for i, o := range t.Origins {
			regs[i] = o.Registry
		}
		fmt.Fprintf(&b, "| Merged from | %s |\n", strings.Join(regs, " < "))
	}
	if t.Requires != nil {
		fmt.Fprintf(&b, "| Requires | `%s` |\n", t.Requires)
	}
	if t.Revision != "" {
		fmt.Fprintf(&b, "| Revision | `%s` |\n", shortRevision(t.Revision))
	}

	b.WriteString("\n## Blueprints\n\n")
	if !verbose {
		for i, name := range t.BlueprintNames() {
			fmt.Fprintf(&b, "%d. %s\n", i+1, name)
		}
		return b.String(), nil
	}

	bps, err := t.Blueprints()
	if err != nil {
		return "", err
	}
	origin := make(map[string]string, len(t.sources))
	for _, src := range t.sources {
		name, _ := blueprint.NameOf(src.Node)
		origin[name] = t.registryOf(src.Dir)
	}
	for i, bp := range bps {
		fmt.Fprintf(&b, "### %d. %s (%s)\n\n", i+1, bp.Name(), bp.Kind())
		fmt.Fprintf(&b, "- Targets: %s\n", codeList(bp.Targets()))
		fmt.Fprintf(&b, "- Declared by: %s\n\n", origin[bp.Name()])
		cfg, err := yaml.Marshal(bp)
		if err != nil {
			return "", fmt.Errorf("encoding %s: %w", bp.Name(), err)
		}
		fmt.Fprintf(&b, "```yaml\n%s```\n\n", cfg)
	}
	return b.String(), nil
}

// InspectAll concatenates the reports of every template in c.
func InspectAll(c *Catalog, verbose bool) (string, error) {
	var parts []string
	for _, t := range c.List() {
		report, err := Inspect(t, verbose)
		if err != nil {
			return "", err
		}
		parts = append(parts, report)
	}
	return strings.Join(parts, "\n---\n\n"), nil
}

// RenderMarkdown renders a report for a terminal of the given width.
func RenderMarkdown(md string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}

func (t *Template) registryOf(dir string) string {
	for _, o := range t.Origins {
		if o.Dir == dir {
			return o.Registry
		}
	}
	return t.Registry
}

func codeList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = "`" + item + "`"
	}
	return strings.Join(quoted, ", ")
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
