package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ion-tools/ion/internal/template"
)

// Options configures a Manager.
type Options struct {
	// ResourcesRoot holds one checkout directory per registry.
	ResourcesRoot string
	// StorePath is the registries.yaml file.
	StorePath string
	// IndexPath is the CBOR template index cache.
	IndexPath  string
	HTTPClient *http.Client
	S3Region   string
	S3Endpoint string
	Logger     *slog.Logger
	// Fetchers overrides the fetcher used per kind.
	Fetchers map[Kind]Fetcher
	Now      func() time.Time
}

// Manager adds, removes and refreshes registries and their checkouts.
type Manager struct {
	store     *Store
	root      string
	indexPath string
	fetchers  map[Kind]Fetcher
	logger    *slog.Logger
	now       func() time.Time
}

// Status describes one registry for `registry status`.
type Status struct {
	Registry
	Cached    bool
	Templates int
}

// NewManager returns a Manager with the default fetchers.
func NewManager(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	fetchers := map[Kind]Fetcher{
		KindGit:     GitFetcher{Logger: logger},
		KindLocal:   LocalFetcher{},
		KindArchive: ArchiveFetcher{Client: opts.HTTPClient},
		KindS3:      S3Fetcher{Region: opts.S3Region, Endpoint: opts.S3Endpoint},
	}
	for k, f := range opts.Fetchers {
		fetchers[k] = f
	}
	return &Manager{
		store:     NewStore(opts.StorePath),
		root:      opts.ResourcesRoot,
		indexPath: opts.IndexPath,
		fetchers:  fetchers,
		logger:    logger,
		now:       now,
	}
}

// Dir returns the checkout directory of the named registry.
func (m *Manager) Dir(name string) string {
	return filepath.Join(m.root, name)
}

// Registries returns the registered registries, lowest priority first.
func (m *Manager) Registries() ([]Registry, error) {
	return m.store.Load()
}

func (m *Manager) fetcher(kind Kind) (Fetcher, error) {
	f, ok := m.fetchers[kind]
	if !ok {
		return nil, fmt.Errorf("no fetcher for registry kind %q", kind)
	}
	return f, nil
}

func validName(name string) error {
	if name == "" || strings.HasPrefix(name, ".") || nameCleaner.MatchString(name) {
		return fmt.Errorf("invalid registry name %q: use letters, digits, '.', '_' or '-', not starting with '.'", name)
	}
	return nil
}

// Add registers locator under name (derived from the locator when empty).
// The locator must be reachable and fetch successfully; nothing is
// recorded otherwise.
func (m *Manager) Add(ctx context.Context, locator, name string) (*Registry, error) {
	kind, err := DetectKind(locator)
	if err != nil {
		return nil, opError(locator, "add", err)
	}
	locator = NormalizeLocator(locator, kind)
	if name == "" {
		name = DefaultName(locator)
	}
	if err := validName(name); err != nil {
		return nil, opError(name, "add", err)
	}

	regs, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	for _, r := range regs {
		if r.Name == name {
			return nil, opError(name, "add", fmt.Errorf("name %q: %w", name, ErrDuplicate))
		}
		if r.Locator == locator {
			return nil, opError(name, "add", fmt.Errorf("locator %s is registered as %q: %w", locator, r.Name, ErrDuplicate))
		}
	}

	f, err := m.fetcher(kind)
	if err != nil {
		return nil, opError(name, "add", err)
	}
	if err := f.Check(ctx, locator); err != nil {
		if !errors.Is(err, ErrUnreachable) {
			err = fmt.Errorf("%w: %w", ErrUnreachable, err)
		}
		return nil, opError(name, "add", err)
	}

	dir := m.Dir(name)
	start := m.now()
	if err := replaceDir(dir, func(tmp string) error { return f.Fetch(ctx, locator, tmp) }); err != nil {
		return nil, opError(name, "add", err)
	}
	m.logger.Debug("fetched registry", "registry", name, "locator", locator, "kind", kind, "duration", m.now().Sub(start))

	rev, err := template.TreeDigest(dir)
	if err != nil {
		return nil, opError(name, "add", err)
	}
	t := m.now().UTC()
	reg := Registry{Name: name, Locator: locator, Kind: kind, AddedAt: t, UpdatedAt: t, Revision: rev}
	if err := m.store.Save(append(regs, reg)); err != nil {
		_ = os.RemoveAll(dir)
		return nil, opError(name, "add", err)
	}
	return &reg, nil
}

// Remove deregisters name and deletes its checkout. Templates also
// declared by other registries remain available from them.
func (m *Manager) Remove(name string) error {
	regs, err := m.store.Load()
	if err != nil {
		return err
	}
	i := find(regs, name)
	if i < 0 {
		return opError(name, "remove", ErrNotFound)
	}
	if err := os.RemoveAll(m.Dir(name)); err != nil {
		return opError(name, "remove", fmt.Errorf("deleting checkout: %w", err))
	}
	return m.store.Save(slices.Delete(regs, i, i+1))
}

// Update refreshes the named registry, or every registry when name is
// empty. A failed refresh keeps the previous checkout; failures are
// joined and returned after all registries were tried.
func (m *Manager) Update(ctx context.Context, name string) error {
	regs, err := m.store.Load()
	if err != nil {
		return err
	}

	var targets []int
	if name == "" {
		for i := range regs {
			targets = append(targets, i)
		}
	} else {
		i := find(regs, name)
		if i < 0 {
			return opError(name, "update", ErrNotFound)
		}
		targets = []int{i}
	}

	var errs []error
	updated := 0
	for _, i := range targets {
		if err := m.updateOne(ctx, &regs[i]); err != nil {
			m.logger.Warn("registry update failed", "registry", regs[i].Name, "error", err)
			errs = append(errs, err)
			continue
		}
		updated++
	}
	if updated > 0 {
		if err := m.store.Save(regs); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) updateOne(ctx context.Context, reg *Registry) error {
	f, err := m.fetcher(reg.Kind)
	if err != nil {
		return opError(reg.Name, "update", err)
	}
	dir := m.Dir(reg.Name)
	start := m.now()
	if err := refresh(ctx, f, reg.Locator, dir); err != nil {
		return opError(reg.Name, "update", err)
	}
	m.logger.Debug("fetched registry", "registry", reg.Name, "locator", reg.Locator, "kind", reg.Kind, "duration", m.now().Sub(start))

	rev, err := template.TreeDigest(dir)
	if err != nil {
		return opError(reg.Name, "update", err)
	}
	reg.UpdatedAt = m.now().UTC()
	reg.Revision = rev
	return nil
}

// Status reports every registry with the state of its checkout.
func (m *Manager) Status() ([]Status, error) {
	regs, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	out := make([]Status, 0, len(regs))
	for _, r := range regs {
		s := Status{Registry: r}
		if info, err := os.Stat(m.Dir(r.Name)); err == nil && info.IsDir() {
			s.Cached = true
			entries, _ := os.ReadDir(filepath.Join(m.Dir(r.Name), template.TemplatesDir))
			for _, e := range entries {
				if e.IsDir() {
					s.Templates++
				}
			}
		}
		out = append(out, s)
	}
	return out, nil
}

// Checkouts returns the existing checkouts in priority order.
func (m *Manager) Checkouts() ([]template.Checkout, error) {
	regs, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	var out []template.Checkout
	for _, r := range regs {
		dir := m.Dir(r.Name)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			out = append(out, template.Checkout{Registry: r.Name, Dir: dir})
		}
	}
	return out, nil
}

// Catalog scans all checkouts.
func (m *Manager) Catalog() (*template.Catalog, error) {
	checkouts, err := m.Checkouts()
	if err != nil {
		return nil, err
	}
	c := template.Scan(checkouts)
	for _, p := range c.Problems {
		m.logger.Warn("skipping template", "error", p)
	}
	return c, nil
}
