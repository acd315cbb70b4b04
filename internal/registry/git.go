package registry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ion-tools/ion/internal/toolchain"
)

// GitFetcher clones registries with the git command line.
type GitFetcher struct {
	Logger *slog.Logger
}

func (g GitFetcher) git(args ...string) *toolchain.Command {
	cmd := toolchain.New("git", args...)
	cmd.Logger = g.Logger
	cmd.Env = []string{"GIT_TERMINAL_PROMPT=0"}
	return cmd
}

func ensureGit() error {
	if _, err := exec.LookPath("git"); err != nil {
		return fmt.Errorf("git is required for git registries: %w", err)
	}
	return nil
}

// Check runs git ls-remote against the locator.
func (g GitFetcher) Check(ctx context.Context, locator string) error {
	if err := ensureGit(); err != nil {
		return err
	}
	if _, err := g.git("ls-remote", "--heads", locator).Output(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	return nil
}

// Fetch performs a shallow clone into dst.
func (g GitFetcher) Fetch(ctx context.Context, locator, dst string) error {
	if err := ensureGit(); err != nil {
		return err
	}
	if _, err := g.git("clone", "--depth=1", "--quiet", locator, dst).Output(ctx); err != nil {
		return fmt.Errorf("cloning %s: %w", locator, err)
	}
	return nil
}

// Update pulls the checkout in place, or clones afresh when dir is not a
// git work tree.
func (g GitFetcher) Update(ctx context.Context, locator, dir string) error {
	if err := ensureGit(); err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Join(dir, ".git")); os.IsNotExist(err) {
		return replaceDir(dir, func(tmp string) error {
			return g.Fetch(ctx, locator, tmp)
		})
	}
	if _, err := g.git("pull", "--depth=1", "--rebase", "--quiet").InDir(dir).Output(ctx); err != nil {
		return fmt.Errorf("pulling %s: %w", locator, err)
	}
	return nil
}
