package toolchain

import (
	"context"
	"fmt"
)

// GitConfig reads a git configuration value, e.g. GitConfig(ctx, "user.name").
func GitConfig(ctx context.Context, key string) (string, error) {
	return New("git", "config", "--get", key).ReadText(ctx)
}

// GitAuthor returns "Name <email>" from the global git configuration, or
// just the name when no email is set. It returns an empty string when git
// is unavailable or user.name is unset.
func GitAuthor(ctx context.Context) string {
	name, err := GitConfig(ctx, "user.name")
	if err != nil || name == "" {
		return ""
	}
	email, err := GitConfig(ctx, "user.email")
	if err != nil || email == "" {
		return name
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// Author is a TextCommand reporting the git identity as GitAuthor formats it.
type Author struct{}

// ReadText implements TextCommand.
func (Author) ReadText(ctx context.Context) (string, error) {
	author := GitAuthor(ctx)
	if author == "" {
		return "", fmt.Errorf("git user.name is not set")
	}
	return author, nil
}
