package blueprint

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Engine expands template text against a data view. A reference to a
// missing key is an error.
type Engine struct {
	funcs template.FuncMap
}

// NewEngine returns an Engine with the standard helper functions.
func NewEngine() *Engine {
	title := cases.Title(language.English)
	return &Engine{funcs: template.FuncMap{
		"title": title.String,
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"trim":  strings.TrimSpace,
		"join":  strings.Join,
		"quote": tomlQuote,
	}}
}

// Expand parses text and executes it with data.
func (e *Engine) Expand(name, text string, data any) (string, error) {
	tmpl, err := template.New(name).Funcs(e.funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parsing template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template %s: %w", name, err)
	}
	return buf.String(), nil
}

// tomlQuote renders s as a TOML basic string. Control characters use the
// \uXXXX form since TOML has no \x escape.
func tomlQuote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
