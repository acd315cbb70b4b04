package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/ion-tools/ion/internal/prompt"
	"github.com/ion-tools/ion/internal/template"
)

// RemoteTemplate resolves template names against the cached checkouts and
// offers a download when a name is not cached.
type RemoteTemplate struct {
	Manager  *Manager
	Prompter prompt.Prompter
	// DefaultLocator is added when the user accepts a download and no
	// registry is registered yet.
	DefaultLocator string
}

func (r *RemoteTemplate) prompter() prompt.Prompter {
	if r.Prompter == nil {
		return prompt.Defaults{}
	}
	return r.Prompter
}

// EnsureDownloaded offers a download when no template is cached.
func (r *RemoteTemplate) EnsureDownloaded(ctx context.Context) (*template.Catalog, prompt.Decision, error) {
	c, err := r.Manager.Catalog()
	if err != nil {
		return nil, prompt.Decline, err
	}
	if c.Len() > 0 {
		return c, prompt.Proceed, nil
	}
	d, err := r.download(ctx, "No templates found. Download templates now?")
	if d == prompt.Decline || (err != nil && !r.hasCheckouts()) {
		return c, d, err
	}
	if err != nil {
		r.Manager.logger.Warn("some registries failed to download", "error", err)
	}
	c, err = r.Manager.Catalog()
	return c, prompt.Proceed, err
}

// Resolve returns the named template. When it is not cached the user is
// offered a download first; declining returns prompt.Decline and no error.
func (r *RemoteTemplate) Resolve(ctx context.Context, name string) (*template.Template, prompt.Decision, error) {
	c, err := r.Manager.Catalog()
	if err != nil {
		return nil, prompt.Decline, err
	}
	if t, err := c.Get(name); err == nil {
		return t, prompt.Proceed, nil
	}

	question := fmt.Sprintf("Template %q is not cached. Download templates now?", name)
	if c.Len() == 0 {
		question = "No templates found. Download templates now?"
	}
	d, downloadErr := r.download(ctx, question)
	if d == prompt.Decline {
		return nil, d, downloadErr
	}

	c, err = r.Manager.Catalog()
	if err != nil {
		return nil, prompt.Proceed, err
	}
	t, err := c.Get(name)
	if err != nil {
		return nil, prompt.Proceed, errors.Join(err, downloadErr)
	}
	if downloadErr != nil {
		r.Manager.logger.Warn("some registries failed to update", "error", downloadErr)
	}
	return t, prompt.Proceed, nil
}

// download asks before fetching: the default registry when none is
// registered, otherwise an update of all registries.
func (r *RemoteTemplate) download(ctx context.Context, question string) (prompt.Decision, error) {
	d, err := prompt.Offer(r.prompter(), question)
	if err != nil || d == prompt.Decline {
		return prompt.Decline, err
	}
	regs, err := r.Manager.Registries()
	if err != nil {
		return prompt.Proceed, err
	}
	if len(regs) == 0 {
		if r.DefaultLocator == "" {
			return prompt.Proceed, opError("default", "add", fmt.Errorf("no default registry configured"))
		}
		_, err := r.Manager.Add(ctx, r.DefaultLocator, "")
		return prompt.Proceed, err
	}
	return prompt.Proceed, r.Manager.Update(ctx, "")
}

func (r *RemoteTemplate) hasCheckouts() bool {
	co, err := r.Manager.Checkouts()
	return err == nil && len(co) > 0
}
