package userdata

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ion-tools/ion/internal/branding"
)

// Directory and file name constants for the ~/.ion layout.
const (
	ResourcesDir   = "resources"
	RegistriesFile = "registries.yaml"
	IndexFile      = "index.cbor"
)

// Permission constants.
const (
	DirPermNormal  os.FileMode = 0755
	FilePermNormal os.FileMode = 0644
)

// GetHomeRoot returns the Ion home directory.
// It checks the ION_HOME environment variable first, then falls back to ~/.ion.
func GetHomeRoot() (string, error) {
	if v := os.Getenv(branding.EnvVar("HOME")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, branding.HomeDir()), nil
}

// GetResourcesRoot returns the directory holding one checkout per registry.
// ION_RESOURCES overrides it; otherwise it is <home>/resources.
func GetResourcesRoot() (string, error) {
	if v := os.Getenv(branding.EnvVar("RESOURCES")); v != "" {
		return v, nil
	}
	root, err := GetHomeRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, ResourcesDir), nil
}

// GetRegistriesPath returns the path to registries.yaml.
func GetRegistriesPath() (string, error) {
	root, err := GetHomeRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, RegistriesFile), nil
}

// GetIndexPath returns the path to the template index cache.
func GetIndexPath() (string, error) {
	root, err := GetHomeRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, IndexFile), nil
}
