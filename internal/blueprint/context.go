package blueprint

import (
	"fmt"
	"maps"
	"strings"
	"time"
)

// Project is the top-level project record of a Context.
type Project struct {
	Name string
	// Description is nil when the user declined to give one.
	Description *string
	License     string
	Authors     []string
	Version     string
	UUID        string
}

// Context holds the values collected during the prompt phase. After Freeze
// it is read-only: any mutation panics.
type Context struct {
	project Project
	values  map[string]any
	frozen  bool
}

// NewContext returns an empty Context with the "year" key set from now.
func NewContext(now time.Time) *Context {
	return &Context{values: map[string]any{"year": now.Year()}}
}

// Project returns a copy of the project record.
func (c *Context) Project() Project {
	p := c.project
	p.Authors = append([]string(nil), c.project.Authors...)
	return p
}

// Lookup returns the value stored under key. Keys prefixed with "project."
// address fields of the project record.
func (c *Context) Lookup(key string) (any, bool) {
	if field, ok := strings.CutPrefix(key, "project."); ok {
		return c.projectField(field)
	}
	v, ok := c.values[key]
	return v, ok
}

// Get returns the value stored under key, or nil.
func (c *Context) Get(key string) any {
	v, _ := c.Lookup(key)
	return v
}

// String returns the value under key formatted as a string, or "".
func (c *Context) String(key string) string {
	switch v := c.Get(key).(type) {
	case nil:
		return ""
	case string:
		return v
	case *string:
		if v == nil {
			return ""
		}
		return *v
	default:
		return fmt.Sprint(v)
	}
}

// Bool returns the boolean under key, or def when absent or not a bool.
func (c *Context) Bool(key string, def bool) bool {
	if v, ok := c.Get(key).(bool); ok {
		return v
	}
	return def
}

// Has reports whether key holds a non-empty value.
func (c *Context) Has(key string) bool {
	return c.String(key) != ""
}

// Set stores value under key. It panics once the Context is frozen.
func (c *Context) Set(key string, value any) {
	c.mustBeMutable(key)
	if field, ok := strings.CutPrefix(key, "project."); ok {
		c.setProjectField(field, value)
		return
	}
	c.values[key] = value
}

// Unset removes key. It panics once the Context is frozen.
func (c *Context) Unset(key string) {
	c.mustBeMutable(key)
	if field, ok := strings.CutPrefix(key, "project."); ok {
		c.setProjectField(field, nil)
		return
	}
	delete(c.values, key)
}

// Freeze ends the prompt phase.
func (c *Context) Freeze() { c.frozen = true }

// Frozen reports whether Freeze was called.
func (c *Context) Frozen() bool { return c.frozen }

// Seed copies static values from a template declaration. Project values
// are addressed without the "project." prefix.
func (c *Context) Seed(project, values map[string]any) {
	for k, v := range project {
		c.Set("project."+k, v)
	}
	for k, v := range values {
		c.Set(k, v)
	}
}

// Data returns the view of the Context handed to the rendering engine.
func (c *Context) Data() map[string]any {
	return map[string]any{
		"Project": c.Project(),
		"Values":  maps.Clone(c.values),
		"Year":    c.values["year"],
	}
}

func (c *Context) mustBeMutable(key string) {
	if c.frozen {
		panic(fmt.Sprintf("blueprint: context key %q set during render", key))
	}
}

func (c *Context) projectField(field string) (any, bool) {
	p := c.project
	switch field {
	case "name":
		return p.Name, p.Name != ""
	case "description":
		if p.Description == nil {
			return nil, false
		}
		return *p.Description, true
	case "license":
		return p.License, p.License != ""
	case "authors":
		return p.Authors, len(p.Authors) > 0
	case "version":
		return p.Version, p.Version != ""
	case "uuid":
		return p.UUID, p.UUID != ""
	}
	v, ok := c.values["project."+field]
	return v, ok
}

func (c *Context) setProjectField(field string, value any) {
	p := &c.project
	switch field {
	case "name":
		p.Name = stringOf(value)
	case "description":
		if value == nil {
			p.Description = nil
			return
		}
		s := stringOf(value)
		p.Description = &s
	case "license":
		p.License = stringOf(value)
	case "authors":
		p.Authors = stringsOf(value)
	case "version":
		p.Version = stringOf(value)
	case "uuid":
		p.UUID = stringOf(value)
	default:
		if value == nil {
			delete(c.values, "project."+field)
			return
		}
		c.values["project."+field] = value
	}
}

func stringOf(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// isAuthorSeparator splits an author list typed as one string. Commas stay
// inside a name such as "Doe, Jane <jane@example.com>".
func isAuthorSeparator(r rune) bool { return r == ';' || r == '\n' }

func stringsOf(v any) []string {
	switch v := v.(type) {
	case nil:
		return nil
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, stringOf(item))
		}
		return out
	case string:
		var out []string
		for _, part := range strings.FieldsFunc(v, isAuthorSeparator) {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	default:
		return []string{stringOf(v)}
	}
}
