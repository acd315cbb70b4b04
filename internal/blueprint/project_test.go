package blueprint

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ion-tools/ion/internal/toolchain"
)

// fakeJulia writes a shell script standing in for julia that records its
// arguments, one per line, and its working directory, then exits with code.
func fakeJulia(t *testing.T, code string) (bin, argsFile, dirFile string) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available, skipping")
	}
	dir := t.TempDir()
	argsFile = filepath.Join(dir, "args")
	dirFile = filepath.Join(dir, "pwd")
	bin = filepath.Join(dir, "julia")
	script := "#!/bin/sh\n" +
		"printf '%s\\n' \"$@\" > '" + argsFile + "'\n" +
		"pwd > '" + dirFile + "'\n" +
		"exit " + code + "\n"
	if err := os.WriteFile(bin, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return bin, argsFile, dirFile
}

func instantiated(t *testing.T, bin string) (string, error) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "MyPkg")
	p := decode(t, "", "kind: project\ninstantiate: true\n")
	s := newSession(root, &scripted{answers: []string{"", "Ada"}})
	s.Toolchain.JuliaBin = bin
	c := fixedContext()
	promptAll(t, s, c, p)
	return root, p.Render(s, c)
}

func TestProjectManifestInstantiate(t *testing.T) {
	bin, argsFile, dirFile := fakeJulia(t, "0")
	root, err := instantiated(t, bin)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("julia was not run: %v", err)
	}
	got := strings.Split(strings.TrimSuffix(string(raw), "\n"), "\n")
	want := []string{
		"--project=" + abs,
		"--startup-file=no",
		"--color=yes",
		"--compile=min",
		"-e",
		"using Pkg; Pkg.instantiate()",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("julia args = %q, want %q", got, want)
	}

	pwd, err := os.ReadFile(dirFile)
	if err != nil {
		t.Fatal(err)
	}
	wantDir, _ := filepath.EvalSymlinks(abs)
	gotDir, _ := filepath.EvalSymlinks(strings.TrimSpace(string(pwd)))
	if gotDir != wantDir {
		t.Errorf("julia ran in %q, want %q", gotDir, wantDir)
	}
	if _, err := os.Stat(filepath.Join(root, "Project.toml")); err != nil {
		t.Errorf("Project.toml not written before instantiate: %v", err)
	}
}

func TestProjectManifestInstantiateFailure(t *testing.T) {
	bin, _, _ := fakeJulia(t, "1")
	root, err := instantiated(t, bin)
	if err == nil {
		t.Fatal("expected failure from julia exiting non-zero")
	}

	var re *RenderError
	if !errors.As(err, &re) {
		t.Fatalf("expected RenderError, got %v", err)
	}
	if re.Blueprint != "project" {
		t.Errorf("RenderError.Blueprint = %q", re.Blueprint)
	}
	var ce *toolchain.CommandError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CommandError in chain, got %v", err)
	}
	if ce.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", ce.ExitCode)
	}
	if _, err := os.Stat(filepath.Join(root, "Project.toml")); err != nil {
		t.Errorf("Project.toml should stay in place: %v", err)
	}
}

func TestProjectManifestWithoutInstantiateRunsNothing(t *testing.T) {
	root := filepath.Join(t.TempDir(), "MyPkg")
	p := decode(t, "", "kind: project\n")
	s := newSession(root, &scripted{answers: []string{"", "Ada"}})
	s.Toolchain.JuliaBin = filepath.Join(t.TempDir(), "missing-julia")
	c := fixedContext()
	promptAll(t, s, c, p)
	if err := p.Render(s, c); err != nil {
		t.Fatalf("Render ran julia without instantiate: %v", err)
	}
}
