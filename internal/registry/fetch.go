package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ion-tools/ion/internal/userdata"
)

// Fetcher materializes a registry locator as a local directory.
type Fetcher interface {
	// Check verifies the locator can be reached.
	Check(ctx context.Context, locator string) error
	// Fetch writes the registry contents into dst, which does not exist yet.
	Fetch(ctx context.Context, locator, dst string) error
}

// Updater is implemented by fetchers that can refresh an existing checkout
// in place. Others are refreshed with a fresh Fetch.
type Updater interface {
	Update(ctx context.Context, locator, dir string) error
}

// stagingPattern names the directories checkouts are staged in. Registry
// names cannot start with a dot, so no checkout collides with them.
const stagingPattern = ".staging-*"

// replaceDir fills a staging directory next to dst and renames it over dst.
// dst is left untouched when fill fails.
func replaceDir(dst string, fill func(tmp string) error) error {
	parent := filepath.Dir(dst)
	if err := os.MkdirAll(parent, userdata.DirPermNormal); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}
	staging, err := os.MkdirTemp(parent, stagingPattern)
	if err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	tmp := filepath.Join(staging, filepath.Base(dst))
	if err := fill(tmp); err != nil {
		return err
	}
	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("removing old checkout: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return fmt.Errorf("finalizing checkout: %w", err)
	}
	return nil
}

// refresh updates dir from locator, in place when the fetcher supports it.
func refresh(ctx context.Context, f Fetcher, locator, dir string) error {
	if u, ok := f.(Updater); ok {
		if _, err := os.Stat(dir); err == nil {
			return u.Update(ctx, locator, dir)
		}
	}
	return replaceDir(dir, func(tmp string) error {
		return f.Fetch(ctx, locator, tmp)
	})
}
