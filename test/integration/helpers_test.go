//go:build integration

package integration_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ion-tools/ion/internal/registry"
	"github.com/ion-tools/ion/internal/userdata"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir    string // ION_HOME, holds registries.yaml and index.cbor
	SourcesDir string // registry sources added by the tests
	ProjectDir string // parent of generated projects
}

// setupTestEnv creates isolated temp directories and sets environment variables
// so all ion operations are sandboxed. The env vars are restored after the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		HomeDir:    t.TempDir(),
		SourcesDir: t.TempDir(),
		ProjectDir: t.TempDir(),
	}
	t.Setenv("ION_HOME", env.HomeDir)
	t.Setenv("ION_RESOURCES", "")
	return env
}

// newManager builds a registry manager over the sandboxed layout.
func newManager(t *testing.T) *registry.Manager {
	t.Helper()
	resources, err := userdata.GetResourcesRoot()
	if err != nil {
		t.Fatal(err)
	}
	store, err := userdata.GetRegistriesPath()
	if err != nil {
		t.Fatal(err)
	}
	index, err := userdata.GetIndexPath()
	if err != nil {
		t.Fatal(err)
	}
	return registry.NewManager(registry.Options{
		ResourcesRoot: resources,
		StorePath:     store,
		IndexPath:     index,
	})
}

// setupGeneral writes the base registry: a package template with a
// project manifest, an inlined badge, a license and tests.
func setupGeneral(t *testing.T, env *testEnv) string {
	t.Helper()
	root := filepath.Join(env.SourcesDir, "general")
	writeFile(t, filepath.Join(root, "registry.yaml"), "name: general\n")
	writeFile(t, filepath.Join(root, "templates", "package", "template.yaml"), `description: A Julia package
version: 1.0.0
project:
  license: MIT
blueprints:
  - kind: project
  - kind: readme
  - kind: badge
    name: docs
    hover: Docs
    image: https://img.example/docs.svg
    link: https://docs.example
  - kind: license
  - kind: tests
`)
	writeFile(t, filepath.Join(root, "templates", "package", "README.md.tmpl"), `# {{.Project.Name}}
{{range .Badges}}{{.Render}}
{{end}}
general readme
`)
	return root
}

// setupCompany writes a registry overriding the package template's readme
// with a non-inlined badge layout and adding a gitignore.
func setupCompany(t *testing.T, env *testEnv) string {
	t.Helper()
	root := filepath.Join(env.SourcesDir, "company")
	writeFile(t, filepath.Join(root, "templates", "package", "template.yaml"), `description: Company Julia package
blueprints:
  - kind: readme
    inline_badge: false
  - kind: gitignore
    ignore: ["/Manifest.toml", "/build/"]
`)
	writeFile(t, filepath.Join(root, "templates", "package", "README.md.tmpl"), `# {{.Project.Name}}

company readme
`)
	return root
}

// writeFile creates a file at the given path with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// assertDirExists fails the test if the directory does not exist.
func assertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected directory to exist: %s (error: %v)", path, err)
		return
	}
	if !info.IsDir() {
		t.Errorf("expected %s to be a directory, but it is a file", path)
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}
