package blueprint

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/ion-tools/ion/internal/prompt"
	"github.com/ion-tools/ion/internal/toolchain"
	"github.com/ion-tools/ion/internal/userdata"
)

// Toolchain configures the external commands blueprints may run.
type Toolchain struct {
	JuliaBin string
	Compile  string
	// Author supplies the default project author.
	Author toolchain.TextCommand
}

// Session carries the per-invocation collaborators shared by all
// blueprints of one scaffold run.
type Session struct {
	Root      string
	Prompter  prompt.Prompter
	Engine    *Engine
	Logger    *slog.Logger
	Toolchain Toolchain

	written []string
}

// NewSession returns a Session writing under root.
func NewSession(root string, p prompt.Prompter) *Session {
	return &Session{
		Root:     root,
		Prompter: p,
		Engine:   NewEngine(),
		Logger:   slog.New(slog.DiscardHandler),
		Toolchain: Toolchain{
			JuliaBin: "julia",
			Compile:  "min",
			Author:   toolchain.Author{},
		},
	}
}

// Written returns the project-relative paths written so far, in order.
func (s *Session) Written() []string {
	return append([]string(nil), s.written...)
}

// Resolve maps a project-relative path to an absolute path under Root.
func (s *Session) Resolve(rel string) (string, error) {
	if err := checkTarget(rel); err != nil {
		return "", err
	}
	root, err := filepath.Abs(s.Root)
	if err != nil {
		return "", fmt.Errorf("resolving project root: %w", err)
	}
	return filepath.Join(root, filepath.FromSlash(rel)), nil
}

// Write stores content at the project-relative path rel. All file system
// access goes through an os.Root at the project root, so symlinks cannot
// lead outside it. The content is written to a temporary file in the same
// directory and renamed into place, so a failure never leaves a truncated
// file behind.
func (s *Session) Write(rel string, content []byte) error {
	if err := checkTarget(rel); err != nil {
		return err
	}
	rootDir, err := filepath.Abs(s.Root)
	if err != nil {
		return fmt.Errorf("resolving project root: %w", err)
	}
	if err := os.MkdirAll(rootDir, userdata.DirPermNormal); err != nil {
		return fmt.Errorf("creating project root: %w", err)
	}
	root, err := os.OpenRoot(rootDir)
	if err != nil {
		return fmt.Errorf("opening project root: %w", err)
	}
	defer root.Close()

	name := filepath.Clean(filepath.FromSlash(rel))
	dir := filepath.Dir(name)
	if err := root.MkdirAll(dir, userdata.DirPermNormal); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.ToSlash(dir), err)
	}
	if info, err := root.Lstat(name); err == nil && info.IsDir() {
		return fmt.Errorf("%s exists and is a directory", rel)
	}

	tmpName := filepath.Join(dir, ".ion-"+uuid.NewString())
	tmp, err := root.OpenFile(tmpName, os.O_CREATE|os.O_EXCL|os.O_WRONLY, userdata.FilePermNormal)
	if err != nil {
		return fmt.Errorf("creating temporary file for %s: %w", rel, err)
	}
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		root.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	if err := tmp.Close(); err != nil {
		root.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	if err := root.Rename(tmpName, name); err != nil {
		root.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", rel, err)
	}

	rel = filepath.ToSlash(name)
	if !slices.Contains(s.written, rel) {
		s.written = append(s.written, rel)
	}
	s.Logger.Debug("wrote file", "path", rel, "bytes", len(content))
	return nil
}

// checkTarget rejects absolute paths and paths leaving the project root.
func checkTarget(rel string) error {
	if rel == "" {
		return fmt.Errorf("empty output path")
	}
	if filepath.IsAbs(rel) || strings.HasPrefix(rel, "/") || filepath.VolumeName(rel) != "" {
		return fmt.Errorf("%q: %w", rel, ErrPathEscape)
	}
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%q: %w", rel, ErrPathEscape)
	}
	if clean == "." {
		return fmt.Errorf("%q is the project root itself", rel)
	}
	return nil
}
