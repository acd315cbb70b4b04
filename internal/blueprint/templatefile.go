package blueprint

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// TemplateFile is the source of one output file: inline text or a path
// relative to the directory of the template that declared it, plus the
// project-relative target.
type TemplateFile struct {
	Inline string `yaml:"inline,omitempty"`
	Path   string `yaml:"template,omitempty"`
	Target string `yaml:"target,omitempty"`

	// dir is the template directory Path is relative to.
	dir string
	// fallback is used when Path is the variant default and does not exist.
	fallback string
	// optional marks Path as a default that may be missing.
	optional bool
}

// Source returns the template text.
func (f *TemplateFile) Source() (string, error) {
	if f.Inline != "" {
		return f.Inline, nil
	}
	if f.Path == "" {
		if f.fallback != "" {
			return f.fallback, nil
		}
		return "", fmt.Errorf("no template source for %s", f.Target)
	}
	p := f.Path
	if !filepath.IsAbs(p) {
		p = filepath.Join(f.dir, filepath.FromSlash(p))
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if f.optional && errors.Is(err, fs.ErrNotExist) && f.fallback != "" {
			return f.fallback, nil
		}
		return "", fmt.Errorf("reading template %s: %w", f.Path, err)
	}
	return string(data), nil
}

// Render expands the source with data and writes the result to Target.
// The target is validated before the source is read.
func (f *TemplateFile) Render(s *Session, data any) error {
	if _, err := s.Resolve(f.Target); err != nil {
		return err
	}
	text, err := f.Source()
	if err != nil {
		return err
	}
	out, err := s.Engine.Expand(f.Target, text, data)
	if err != nil {
		return err
	}
	return s.Write(f.Target, []byte(out))
}

// bind attaches the declaring template directory and the variant defaults.
func (f *TemplateFile) bind(dir, defaultPath, fallback, defaultTarget string) error {
	f.dir = dir
	f.fallback = fallback
	if f.Inline == "" && f.Path == "" {
		f.Path = defaultPath
		f.optional = true
	}
	if f.Target == "" {
		f.Target = defaultTarget
	}
	return checkTarget(f.Target)
}
