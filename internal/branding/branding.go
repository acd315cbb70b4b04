// Package branding provides compile-time identity values for the CLI.
//
// The values live in branding.yaml next to this file and are baked into the
// binary with //go:embed. Hard defaults cover an empty or missing file.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName         string `yaml:"cli_name"`
	DisplayName     string `yaml:"display_name"`
	Description     string `yaml:"description"`
	HomeDir         string `yaml:"home_dir"`
	EnvPrefix       string `yaml:"env_prefix"`
	DefaultRegistry string `yaml:"default_registry"`
}

func load() {
	once.Do(func() {
		defaults = brand{
			CLIName:         "ion",
			DisplayName:     "Ion",
			Description:     "Scaffold new projects from reusable templates",
			HomeDir:         ".ion",
			EnvPrefix:       "ION",
			DefaultRegistry: "https://github.com/ion-tools/templates.git",
		}
		// Overlay with embedded YAML values.
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "ion").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name (e.g., "Ion").
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".ion").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "ION").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// DefaultRegistry returns the locator offered when no registry is configured.
func DefaultRegistry() string { load(); return defaults.DefaultRegistry }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("HOME") → "ION_HOME".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
