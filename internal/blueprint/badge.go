package blueprint

import (
	"fmt"
)

// KeyBadges holds the ordered []Badge registered during the prompt phase.
const KeyBadges = "badges"

// Badge is a single badge: hover text, image URL and link URL.
type Badge struct {
	Hover string `yaml:"hover"`
	Image string `yaml:"image"`
	Link  string `yaml:"link"`
}

// Render returns the badge as markdown.
func (b Badge) Render() string {
	return fmt.Sprintf("[![%s](%s)](%s)", b.Hover, b.Image, b.Link)
}

// Badges returns the badges registered in c, in registration order. A list
// seeded from template values arrives as []any of hover/image/link maps and
// is decoded the same way.
func Badges(c *Context) []Badge {
	switch list := c.Get(KeyBadges).(type) {
	case []Badge:
		return append([]Badge(nil), list...)
	case []any:
		out := make([]Badge, 0, len(list))
		for _, item := range list {
			if b, ok := badgeOf(item); ok {
				out = append(out, b)
			}
		}
		return out
	default:
		return nil
	}
}

func badgeOf(v any) (Badge, bool) {
	switch v := v.(type) {
	case Badge:
		return v, true
	case map[string]any:
		return Badge{
			Hover: stringOf(v["hover"]),
			Image: stringOf(v["image"]),
			Link:  stringOf(v["link"]),
		}, true
	default:
		return Badge{}, false
	}
}

// BadgeBlueprint registers a badge for the README and, when the README
// does not inline badges, writes it to its own file.
type BadgeBlueprint struct {
	base `yaml:"-"`

	Badge `yaml:",inline"`
	File  TemplateFile `yaml:",inline"`
}

func (b *BadgeBlueprint) configure() error {
	if b.Hover == "" {
		b.Hover = b.name
	}
	return b.File.bind(b.dir, "", builtin("badge.md.tmpl"), "badges/"+b.name+".md")
}

func (b *BadgeBlueprint) Targets() []string { return []string{b.File.Target} }

// Prompt fills an empty image or link from badge.<name>.image/.link when a
// sibling already provided it, and asks otherwise.
func (b *BadgeBlueprint) Prompt(s *Session, c *Context) error {
	badge := b.Badge
	var err error
	if badge.Image, err = b.field(s, c, "image", badge.Image); err != nil {
		return promptError(b, err)
	}
	if badge.Link, err = b.field(s, c, "link", badge.Link); err != nil {
		return promptError(b, err)
	}

	c.Set(KeyBadges, append(Badges(c), badge))
	return nil
}

func (b *BadgeBlueprint) field(s *Session, c *Context, field, value string) (string, error) {
	key := "badge." + b.name + "." + field
	if value == "" {
		value = c.String(key)
	}
	if value == "" {
		answer, err := s.Prompter.Ask(fmt.Sprintf("Badge %s %s URL", b.name, field), "", true)
		if err != nil {
			return "", err
		}
		value = answer
	}
	c.Set(key, value)
	return value, nil
}

// Render writes the badge file unless the README inlines badges.
func (b *BadgeBlueprint) Render(s *Session, c *Context) error {
	if c.Bool(KeyInlineBadge, false) {
		return nil
	}
	data := c.Data()
	data["Badge"] = b.resolved(c)
	return renderError(b, b.File.Target, b.File.Render(s, data))
}

func (b *BadgeBlueprint) resolved(c *Context) Badge {
	badge := b.Badge
	if badge.Image == "" {
		badge.Image = c.String("badge." + b.name + ".image")
	}
	if badge.Link == "" {
		badge.Link = c.String("badge." + b.name + ".link")
	}
	return badge
}
