package scaffold

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/ion-tools/ion/internal/blueprint"
	"github.com/ion-tools/ion/internal/prompt"
	"github.com/ion-tools/ion/internal/template"
)

var clock = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

var errTerminal = errors.New("terminal closed")

// failing fails every question.
type failing struct{}

func (failing) Ask(string, string, bool) (string, error) { return "", errTerminal }
func (failing) Confirm(string, bool) (bool, error) { return false, errTerminal }
func (failing) Select(string, []string, int) (int, error) { return 0, errTerminal }

// loadTemplate writes a template directory and loads it as a single-origin template.
func loadTemplate(t *testing.T, decl string, files map[string]string) *template.Template {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "package")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "template.yaml"), []byte(decl), 0644); err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	d, err := template.Load(dir, "local")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	tmpl, err := template.Merge([]*template.Declaration{d})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	return tmpl
}

func newSession(root string, p prompt.Prompter) *blueprint.Session {
	s := blueprint.NewSession(root, p)
	s.Toolchain.Author = nil
	return s
}

// listFiles returns the project-relative files under root.
func listFiles(t *testing.T, root string) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, _ := filepath.Rel(root, path)
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("walking %s: %v", root, err)
	}
	slices.Sort(out)
	return out
}

const fullTemplate = `
project:
  name: Demo
  license: MIT
  authors: [Ada]
blueprints:
  - kind: project
  - kind: readme
    inline_badge: true
  - kind: badge
    name: ci
    hover: CI
    image: https://ci.example/badge.svg
    link: https://ci.example
  - kind: license
  - kind: gitignore
  - kind: tests
`

func TestScaffold(t *testing.T) {
	root := filepath.Join(t.TempDir(), "Demo")
	tmpl := loadTemplate(t, fullTemplate, nil)

	res, err := Scaffold(tmpl, newSession(root, prompt.Defaults{}), clock)
	if err != nil {
		t.Fatalf("Scaffold: %v", err)
	}

	want := []string{"Project.toml", "README.md", "LICENSE", ".gitignore", "test/runtests.jl"}
	if !slices.Equal(res.Files, want) {
		t.Errorf("Files = %v, want %v", res.Files, want)
	}
	if res.Template != "package" {
		t.Errorf("Template = %q, want package", res.Template)
	}

	readme, err := os.ReadFile(filepath.Join(root, "README.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(readme), "[![CI](https://ci.example/badge.svg)](https://ci.example)") {
		t.Errorf("README does not inline the badge:\n%s", readme)
	}
	license, err := os.ReadFile(filepath.Join(root, "LICENSE"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(license), "2024") || !strings.Contains(string(license), "Ada") {
		t.Errorf("LICENSE misses year or holder:\n%s", license)
	}
}

func TestPhaseTransitions(t *testing.T) {
	tmpl := loadTemplate(t, fullTemplate, nil)
	r, err := New(tmpl, newSession(t.TempDir(), prompt.Defaults{}), clock)
	if err != nil {
		t.Fatal(err)
	}
	if r.Phase() != Prompting {
		t.Fatalf("initial phase = %s", r.Phase())
	}
	if err := r.Render(); err == nil {
		t.Fatal("Render before Prompt should fail")
	}
	if err := r.Prompt(); err != nil {
		t.Fatal(err)
	}
	if r.Phase() != Rendering || !r.Context.Frozen() {
		t.Fatalf("after prompt: phase %s, frozen %v", r.Phase(), r.Context.Frozen())
	}
	if err := r.Prompt(); err == nil {
		t.Fatal("second Prompt should fail")
	}
	if err := r.Render(); err != nil {
		t.Fatal(err)
	}
	if r.Phase() != Done {
		t.Fatalf("final phase = %s", r.Phase())
	}
}

func TestPromptFailureWritesNothing(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out")
	tmpl := loadTemplate(t, `
blueprints:
  - kind: gitignore
  - kind: readme
  - kind: tests
`, nil)

	r, err := New(tmpl, newSession(root, failing{}), clock)
	if err != nil {
		t.Fatal(err)
	}
	err = r.Prompt()

	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("expected *Failure, got %v", err)
	}
	if f.Phase != Prompting || f.Blueprint != "readme" {
		t.Errorf("Failure = %+v", f)
	}
	var pe *blueprint.PromptError
	if !errors.As(err, &pe) || !errors.Is(err, errTerminal) {
		t.Errorf("expected a PromptError wrapping the terminal error, got %v", err)
	}
	if r.Phase() != Failed {
		t.Errorf("phase = %s, want failed", r.Phase())
	}
	if files := listFiles(t, root); len(files) != 0 {
		t.Errorf("prompt phase wrote %v", files)
	}
}

func TestRenderNeverPrompts(t *testing.T) {
	root := t.TempDir()
	tmpl := loadTemplate(t, fullTemplate, nil)
	s := newSession(root, prompt.Defaults{})
	r, err := New(tmpl, s, clock)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Prompt(); err != nil {
		t.Fatal(err)
	}
	s.Prompter = failing{}
	if err := r.Render(); err != nil {
		t.Fatalf("Render with a failing prompter: %v", err)
	}
}

func TestPartialRenderFailure(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out")
	tmpl := loadTemplate(t, `
project:
  name: Demo
  authors: Ada
  license: MIT
blueprints:
  - kind: project
  - kind: gitignore
  - kind: readme
    template: ./missing.tmpl
  - kind: license
  - kind: tests
`, nil)

	_, err := Scaffold(tmpl, newSession(root, prompt.Defaults{}), clock)
	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("expected *Failure, got %v", err)
	}
	if f.Phase != Rendering || f.Blueprint != "readme" {
		t.Errorf("Failure = %+v", f)
	}
	if want := []string{"Project.toml", ".gitignore"}; !slices.Equal(f.Written, want) {
		t.Errorf("Written = %v, want %v", f.Written, want)
	}
	var re *blueprint.RenderError
	if !errors.As(err, &re) {
		t.Errorf("expected a RenderError, got %v", err)
	}
	for _, name := range []string{"Project.toml", ".gitignore"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("message %q does not name %s", err.Error(), name)
		}
	}
	if files := listFiles(t, root); !slices.Equal(files, []string{".gitignore", "Project.toml"}) {
		t.Errorf("files on disk = %v", files)
	}
}

func TestYearOverride(t *testing.T) {
	root := t.TempDir()
	tmpl := loadTemplate(t, `
project:
  authors: Ada
values:
  year: 1999
blueprints:
  - kind: license
    license: MIT
`, nil)
	if _, err := Scaffold(tmpl, newSession(root, prompt.Defaults{}), clock); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(root, "LICENSE"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "1999") {
		t.Errorf("LICENSE does not use the overridden year:\n%s", data)
	}
}

func TestDeterministic(t *testing.T) {
	tmpl := loadTemplate(t, fullTemplate, map[string]string{
		"README.md.tmpl": "# {{.Project.Name}} {{.Project.UUID}}\n",
	})
	var trees [2]map[string]string
	for i := range trees {
		root := t.TempDir()
		if _, err := Scaffold(tmpl, newSession(root, prompt.Defaults{}), clock); err != nil {
			t.Fatal(err)
		}
		trees[i] = map[string]string{}
		for _, f := range listFiles(t, root) {
			data, err := os.ReadFile(filepath.Join(root, f))
			if err != nil {
				t.Fatal(err)
			}
			trees[i][f] = string(data)
		}
	}
	if len(trees[0]) == 0 || len(trees[0]) != len(trees[1]) {
		t.Fatalf("trees differ in size: %d vs %d", len(trees[0]), len(trees[1]))
	}
	for name, content := range trees[0] {
		if trees[1][name] != content {
			t.Errorf("%s differs between runs", name)
		}
	}
}

func TestFailureMessage(t *testing.T) {
	f := &Failure{Phase: Rendering, Blueprint: "license", Written: []string{"README.md"}, Err: errors.New("boom")}
	want := `blueprint "license" failed while rendering: boom (files already written: README.md)`
	if f.Error() != want {
		t.Errorf("Error() = %q, want %q", f.Error(), want)
	}
}
