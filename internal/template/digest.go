package template

import (
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"
)

// TreeDigest returns the BLAKE3 digest of a directory tree: every regular
// file's slash-separated relative path and content, in lexical order.
// .git directories are skipped.
func TreeDigest(root string) (string, error) {
	h := blake3.New()
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write([]byte{0})

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if _, err := io.Copy(h, f); err != nil {
			return err
		}
		h.Write([]byte{0})
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("hashing %s: %w", root, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// revision digests every contributing template directory in priority order.
func revision(origins []Origin) (string, error) {
	h := blake3.New()
	for _, o := range origins {
		d, err := TreeDigest(o.Dir)
		if err != nil {
			return "", err
		}
		h.Write([]byte(o.Registry + "\x00" + d + "\x00"))
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
