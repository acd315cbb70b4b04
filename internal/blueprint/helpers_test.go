package blueprint

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"
)

// scripted answers questions from a fixed list, then with defaults.
type scripted struct {
	answers []string
	asked   []string
}

func (p *scripted) Ask(q, def string, _ bool) (string, error) {
	p.asked = append(p.asked, q)
	if len(p.answers) == 0 {
		return def, nil
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	if a == "" {
		return def, nil
	}
	return a, nil
}

func (p *scripted) Confirm(q string, def bool) (bool, error) {
	p.asked = append(p.asked, q)
	return def, nil
}

func (p *scripted) Select(q string, _ []string, def int) (int, error) {
	p.asked = append(p.asked, q)
	return def, nil
}

var errTerminal = errors.New("terminal closed")

// failing fails every question.
type failing struct{}

func (failing) Ask(string, string, bool) (string, error) { return "", errTerminal }
func (failing) Confirm(string, bool) (bool, error) { return false, errTerminal }
func (failing) Select(string, []string, int) (int, error) { return 0, errTerminal }

func decl(t *testing.T, src string) *yaml.Node {
	t.Helper()
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		t.Fatalf("parsing declaration: %v", err)
	}
	return doc.Content[0]
}

func decode(t *testing.T, dir, src string) Blueprint {
	t.Helper()
	b, err := Decode(decl(t, src), dir)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return b
}

func fixedContext() *Context {
	return NewContext(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
}

func newSession(root string, p *scripted) *Session {
	s := NewSession(root, p)
	s.Toolchain.Author = nil
	return s
}

func promptAll(t *testing.T, s *Session, c *Context, bps ...Blueprint) {
	t.Helper()
	for _, b := range bps {
		if err := b.Prompt(s, c); err != nil {
			t.Fatalf("Prompt %s: %v", b.Name(), err)
		}
	}
	c.Freeze()
}

func renderAll(t *testing.T, s *Session, c *Context, bps ...Blueprint) {
	t.Helper()
	for _, b := range bps {
		if err := b.Render(s, c); err != nil {
			t.Fatalf("Render %s: %v", b.Name(), err)
		}
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func assertMissing(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected %s not to exist (err=%v)", filepath.Base(path), err)
	}
}
