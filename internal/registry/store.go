package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/ion-tools/ion/internal/userdata"
)

// Store persists the registry list.
type Store struct {
	path string
}

type storeFile struct {
	Registries []Registry `yaml:"registries"`
}

// NewStore returns a Store backed by the YAML file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Load returns the registries in priority order, lowest first. A missing
// file is an empty list.
func (s *Store) Load() ([]Registry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	var f storeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	return f.Registries, nil
}

// Save replaces the registry list.
func (s *Store) Save(regs []Registry) error {
	data, err := yaml.Marshal(storeFile{Registries: regs})
	if err != nil {
		return fmt.Errorf("marshaling registries: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), userdata.DirPermNormal); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(s.path), err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, userdata.FilePermNormal); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	return nil
}

func find(regs []Registry, name string) int {
	for i := range regs {
		if regs[i].Name == name {
			return i
		}
	}
	return -1
}
