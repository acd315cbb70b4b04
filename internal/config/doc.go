// Package config manages user-level settings stored at ~/.ion/config.yaml.
// It provides functions to load, read, and write configuration keys such as
// the default registry locator and the Julia executable used after scaffolding.
package config
