package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// excludedNames are skipped when copying a local registry.
var excludedNames = map[string]bool{
	".git":      true,
	".DS_Store": true,
}

// LocalFetcher copies a registry from a directory on disk.
type LocalFetcher struct{}

func localPath(locator string) string {
	return strings.TrimPrefix(locator, "file://")
}

// Check implements Fetcher.
func (LocalFetcher) Check(_ context.Context, locator string) error {
	info, err := os.Stat(localPath(locator))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrUnreachable, locator)
	}
	return nil
}

// Fetch implements Fetcher.
func (LocalFetcher) Fetch(_ context.Context, locator, dst string) error {
	src := localPath(locator)
	if err := copyDir(src, dst); err != nil {
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return nil
}

// copyDir recursively copies src to dst, excluding entries in excludedNames.
func copyDir(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()|0700); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if excludedNames[entry.Name()] {
			continue
		}
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
		} else if entry.Type().IsRegular() {
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
		// Symlinks and special files are not copied.
	}
	return nil
}

// copyFile copies a single file, preserving permissions.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, info.Mode().Perm())
}
