//go:build integration

package integration_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/ion-tools/ion/internal/blueprint"
	"github.com/ion-tools/ion/internal/prompt"
	"github.com/ion-tools/ion/internal/registry"
	"github.com/ion-tools/ion/internal/scaffold"
)

var clock = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

func newSession(root string) *blueprint.Session {
	s := blueprint.NewSession(root, prompt.Defaults{})
	s.Toolchain.Author = nil
	return s
}

// TestFullFlowSingleRegistry tests the complete flow:
// add registry -> resolve template -> scaffold -> verify files.
func TestFullFlowSingleRegistry(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	m := newManager(t)

	if _, err := m.Add(ctx, setupGeneral(t, env), ""); err != nil {
		t.Fatalf("Add: %v", err)
	}

	remote := &registry.RemoteTemplate{Manager: m, Prompter: prompt.Defaults{}}
	tmpl, d, err := remote.Resolve(ctx, "package")
	if err != nil || d != prompt.Proceed {
		t.Fatalf("Resolve: %v (%s)", err, d)
	}

	root := filepath.Join(env.ProjectDir, "Example")
	res, err := scaffold.Scaffold(tmpl, newSession(root), clock)
	if err != nil {
		t.Fatalf("Scaffold: %v", err)
	}

	want := []string{"Project.toml", "README.md", "LICENSE", "test/runtests.jl"}
	if !slices.Equal(res.Files, want) {
		t.Errorf("Files = %v, want %v", res.Files, want)
	}
	assertFileContains(t, filepath.Join(root, "README.md"), "[![Docs](https://img.example/docs.svg)](https://docs.example)")
	assertFileContains(t, filepath.Join(root, "README.md"), "general readme")
	assertFileContains(t, filepath.Join(root, "Project.toml"), `name = "Example"`)
	assertFileContains(t, filepath.Join(root, "LICENSE"), "2026")
	assertFileNotExists(t, filepath.Join(root, "badges", "docs.md"))
}

// TestFullFlowMergedRegistries checks that a later registry replaces
// same-named blueprints and appends new ones.
func TestFullFlowMergedRegistries(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	m := newManager(t)

	if _, err := m.Add(ctx, setupGeneral(t, env), ""); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Add(ctx, setupCompany(t, env), ""); err != nil {
		t.Fatal(err)
	}

	remote := &registry.RemoteTemplate{Manager: m}
	tmpl, _, err := remote.Resolve(ctx, "package")
	if err != nil {
		t.Fatal(err)
	}
	if tmpl.Description != "Company Julia package" {
		t.Errorf("Description = %q", tmpl.Description)
	}
	wantNames := []string{"project", "readme", "docs", "license", "tests", "gitignore"}
	if got := tmpl.BlueprintNames(); !slices.Equal(got, wantNames) {
		t.Errorf("BlueprintNames = %v, want %v", got, wantNames)
	}

	root := filepath.Join(env.ProjectDir, "Merged")
	if _, err := scaffold.Scaffold(tmpl, newSession(root), clock); err != nil {
		t.Fatalf("Scaffold: %v", err)
	}
	assertFileContains(t, filepath.Join(root, "README.md"), "company readme")
	assertFileContains(t, filepath.Join(root, "badges", "docs.md"), "[![Docs](https://img.example/docs.svg)](https://docs.example)")
	assertFileContains(t, filepath.Join(root, ".gitignore"), "/build/")

	idx, err := m.Index()
	if err != nil {
		t.Fatal(err)
	}
	if len(idx.Entries) != 1 || !slices.Equal(idx.Entries[0].Registries, []string{"general", "company"}) {
		t.Errorf("index entries = %+v", idx.Entries)
	}
}

// TestFullFlowUpdateKeepsStaleCheckout removes one registry's source and
// checks that update-all reports it while the other registry updates.
func TestFullFlowUpdateKeepsStaleCheckout(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	m := newManager(t)

	general := setupGeneral(t, env)
	company := setupCompany(t, env)
	for _, src := range []string{general, company} {
		if _, err := m.Add(ctx, src, ""); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.RemoveAll(company); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(general, "templates", "script", "template.yaml"), "blueprints:\n  - kind: readme\n")

	err := m.Update(ctx, "")
	var regErr *registry.Error
	if !errors.As(err, &regErr) || regErr.Registry != "company" {
		t.Fatalf("Update error = %v, want a company registry error", err)
	}
	assertDirExists(t, m.Dir("company"))
	assertFileExists(t, filepath.Join(m.Dir("general"), "templates", "script", "template.yaml"))

	c, err := m.Catalog()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(c.Names(), []string{"package", "script"}) {
		t.Errorf("Names = %v", c.Names())
	}
}

// TestFullFlowDeclinedDownload verifies that declining the download offer
// leaves nothing on disk.
func TestFullFlowDeclinedDownload(t *testing.T) {
	env := setupTestEnv(t)
	m := newManager(t)

	remote := &registry.RemoteTemplate{Manager: m, Prompter: decline{}, DefaultLocator: setupGeneral(t, env)}
	tmpl, d, err := remote.Resolve(context.Background(), "package")
	if err != nil || d != prompt.Decline || tmpl != nil {
		t.Fatalf("Resolve = %v, %s, %v", tmpl, d, err)
	}
	assertFileNotExists(t, filepath.Join(env.HomeDir, "registries.yaml"))
}

type decline struct{ prompt.Defaults }

func (decline) Confirm(string, bool) (bool, error) { return false, nil }
