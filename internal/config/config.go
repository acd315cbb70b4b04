package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ion-tools/ion/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Known configuration keys.
const (
	KeyDefaultRegistry = "registry.default"
	KeyJuliaBin        = "julia.bin"
	KeyJuliaCompile    = "julia.compile"
	KeyHTTPTimeout     = "http.timeout"
	KeyS3Region        = "s3.region"
	KeyS3Endpoint      = "s3.endpoint"
)

var envReplacer = strings.NewReplacer(".", "_")

func init() {
	viper.SetDefault(KeyJuliaBin, "julia")
	viper.SetDefault(KeyJuliaCompile, "min")
	viper.SetDefault(KeyHTTPTimeout, "60s")
	viper.SetDefault(KeyS3Region, "us-east-1")
}

// Dir returns the path to the Ion config directory (~/.ion/).
// ION_CONFIG_DIR overrides it.
func Dir() string {
	if v := os.Getenv(branding.EnvVar("CONFIG_DIR")); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.ion/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
// Keys map to env vars with dots replaced by underscores (julia.bin → ION_JULIA_BIN).
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(envReplacer)
	viper.AutomaticEnv()

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Duration returns a duration value, falling back to def when unset or invalid.
func Duration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
