package registry

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/ion-tools/ion/internal/template"
	"github.com/ion-tools/ion/internal/userdata"
)

// ArchiveFetcher downloads a registry packed as a .tar.gz, .tgz or
// .tar.zst over HTTP.
type ArchiveFetcher struct {
	Client *http.Client
}

func (a ArchiveFetcher) client() *http.Client {
	if a.Client != nil {
		return a.Client
	}
	return http.DefaultClient
}

// Check sends a HEAD request, falling back to GET for servers that
// reject HEAD.
func (a ArchiveFetcher) Check(ctx context.Context, locator string) error {
	for _, method := range []string{http.MethodHead, http.MethodGet} {
		req, err := http.NewRequestWithContext(ctx, method, locator, nil)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrUnreachable, err)
		}
		req.Header.Set("User-Agent", "ion-registry")
		resp, err := a.client().Do(req)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrUnreachable, err)
		}
		resp.Body.Close()
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		if resp.StatusCode != http.StatusMethodNotAllowed {
			return fmt.Errorf("%w: %s returned status %d", ErrUnreachable, locator, resp.StatusCode)
		}
	}
	return fmt.Errorf("%w: %s rejected HEAD and GET", ErrUnreachable, locator)
}

// Fetch downloads and unpacks the archive into dst. A single top-level
// directory in the archive is stripped.
func (a ArchiveFetcher) Fetch(ctx context.Context, locator, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return fmt.Errorf("creating download request: %w", err)
	}
	req.Header.Set("User-Agent", "ion-registry")

	resp, err := a.client().Do(req)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", locator, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download of %s returned status %d", locator, resp.StatusCode)
	}

	r, closeFn, err := decompressor(locator, resp.Body)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := untar(r, dst); err != nil {
		return fmt.Errorf("unpacking %s: %w", locator, err)
	}
	return stripSingleTopDir(dst)
}

func decompressor(locator string, body io.Reader) (io.Reader, func(), error) {
	path := locator
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	switch {
	case strings.HasSuffix(path, ".tar.zst"):
		zr, err := zstd.NewReader(body)
		if err != nil {
			return nil, nil, fmt.Errorf("creating zstd reader: %w", err)
		}
		return zr, zr.Close, nil
	case strings.HasSuffix(path, ".tar.gz"), strings.HasSuffix(path, ".tgz"):
		gz, err := gzip.NewReader(body)
		if err != nil {
			return nil, nil, fmt.Errorf("creating gzip reader: %w", err)
		}
		return gz, func() { gz.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unsupported archive format: %s", locator)
}

// untar extracts regular files and directories into dst. Entries that
// would land outside dst are rejected.
func untar(r io.Reader, dst string) error {
	if err := os.MkdirAll(dst, userdata.DirPermNormal); err != nil {
		return err
	}
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}

		target, err := entryPath(dst, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, userdata.DirPermNormal); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), userdata.DirPermNormal); err != nil {
				return err
			}
			mode := os.FileMode(hdr.Mode).Perm() | 0600
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return fmt.Errorf("extracting %s: %w", hdr.Name, err)
			}
			if err := out.Close(); err != nil {
				return err
			}
		}
		// Links and special files are skipped.
	}
}

func entryPath(dst, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry %q escapes the destination", name)
	}
	return filepath.Join(dst, clean), nil
}

// stripSingleTopDir hoists the contents of dir/<only> into dir when dir
// holds exactly one directory and nothing else.
func stripSingleTopDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	if len(entries) != 1 || !entries[0].IsDir() || entries[0].Name() == template.TemplatesDir {
		return nil
	}
	top := filepath.Join(dir, ".ion-unpack")
	if err := os.Rename(filepath.Join(dir, entries[0].Name()), top); err != nil {
		return fmt.Errorf("flattening archive: %w", err)
	}
	children, err := os.ReadDir(top)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := os.Rename(filepath.Join(top, child.Name()), filepath.Join(dir, child.Name())); err != nil {
			return fmt.Errorf("flattening archive: %w", err)
		}
	}
	return os.Remove(top)
}
