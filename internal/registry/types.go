package registry

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Kind selects how a registry's locator is fetched.
type Kind string

const (
	KindGit     Kind = "git"
	KindLocal   Kind = "local"
	KindArchive Kind = "archive"
	KindS3      Kind = "s3"
)

// Registry is a named source of templates. Its identity is the name and
// locator; updates refresh UpdatedAt and Revision only.
type Registry struct {
	Name      string    `yaml:"name"`
	Locator   string    `yaml:"locator"`
	Kind      Kind      `yaml:"kind"`
	AddedAt   time.Time `yaml:"added_at"`
	UpdatedAt time.Time `yaml:"updated_at,omitempty"`
	Revision  string    `yaml:"revision,omitempty"`
}

var archiveSuffixes = []string{".tar.gz", ".tgz", ".tar.zst"}

// DetectKind infers the fetcher kind from a locator.
func DetectKind(locator string) (Kind, error) {
	switch {
	case locator == "":
		return "", fmt.Errorf("empty locator")
	case strings.HasPrefix(locator, "s3://"):
		return KindS3, nil
	case strings.HasPrefix(locator, "file://"):
		return KindLocal, nil
	case strings.HasPrefix(locator, "git@"), strings.HasPrefix(locator, "git://"),
		strings.HasPrefix(locator, "ssh://"), strings.HasSuffix(locator, ".git"):
		return KindGit, nil
	case strings.HasPrefix(locator, "http://"), strings.HasPrefix(locator, "https://"):
		for _, suffix := range archiveSuffixes {
			if strings.HasSuffix(locator, suffix) {
				return KindArchive, nil
			}
		}
		return KindGit, nil
	}
	if info, err := os.Stat(locator); err == nil && info.IsDir() {
		return KindLocal, nil
	}
	return "", fmt.Errorf("cannot tell what kind of registry %q is", locator)
}

// NormalizeLocator makes local paths absolute so the same directory is
// recognized however it was spelled.
func NormalizeLocator(locator string, kind Kind) string {
	if kind != KindLocal {
		return strings.TrimSuffix(locator, "/")
	}
	p := strings.TrimPrefix(locator, "file://")
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

var nameCleaner = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// DefaultName derives a registry name from its locator: the last path
// element without archive or .git suffixes.
func DefaultName(locator string) string {
	p := locator
	if u, err := url.Parse(locator); err == nil && u.Scheme != "" && u.Path != "" {
		p = u.Path
		if u.Scheme == "s3" && strings.Trim(u.Path, "/") == "" {
			p = u.Host
		}
	}
	if i := strings.LastIndex(p, ":"); i >= 0 && strings.HasPrefix(locator, "git@") {
		p = p[i+1:]
	}
	p = strings.TrimRight(p, "/")
	base := filepath.Base(filepath.FromSlash(p))
	for _, suffix := range append([]string{".git"}, archiveSuffixes...) {
		base = strings.TrimSuffix(base, suffix)
	}
	base = strings.Trim(nameCleaner.ReplaceAllString(base, "-"), "-.")
	if base == "" {
		return "registry"
	}
	return base
}
