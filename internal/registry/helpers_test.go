package registry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// makeSource writes a registry source tree with one template.yaml per entry.
func makeSource(t *testing.T, templates map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, decl := range templates {
		tdir := filepath.Join(dir, "templates", name)
		require.NoError(t, os.MkdirAll(tdir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(tdir, "template.yaml"), []byte(decl), 0644))
	}
	return dir
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	home := t.TempDir()
	c := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	return NewManager(Options{
		ResourcesRoot: filepath.Join(home, "resources"),
		StorePath:     filepath.Join(home, "registries.yaml"),
		IndexPath:     filepath.Join(home, "index.cbor"),
		Now:           c.now,
	})
}

// answer is a prompter returning a fixed confirmation.
type answer struct {
	yes   bool
	asked int
}

func (a *answer) Ask(_, def string, _ bool) (string, error) { return def, nil }
func (a *answer) Select(string, []string, int) (int, error) { return 0, nil }
func (a *answer) Confirm(string, bool) (bool, error) {
	a.asked++
	return a.yes, nil
}
