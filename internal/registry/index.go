package registry

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"

	"github.com/ion-tools/ion/internal/userdata"
)

// IndexEntry summarizes one resolved template for listing.
type IndexEntry struct {
	Name        string   `cbor:"name"`
	Registry    string   `cbor:"registry"`
	Registries  []string `cbor:"registries"`
	Version     string   `cbor:"version"`
	Description string   `cbor:"description"`
	Blueprints  []string `cbor:"blueprints"`
	Revision    string   `cbor:"revision"`
}

// Index is the cached listing of every resolved template. It is valid
// while Stamp matches the registry list it was built from.
type Index struct {
	Stamp   string       `cbor:"stamp"`
	BuiltAt time.Time    `cbor:"built_at"`
	Entries []IndexEntry `cbor:"entries"`
}

var (
	indexEncMode cbor.EncMode
	indexDecMode cbor.DecMode
)

func init() {
	var err error
	indexEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("registry: CBOR encoder initialization failed: " + err.Error())
	}
	indexDecMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("registry: CBOR decoder initialization failed: " + err.Error())
	}
}

// stamp identifies a registry list state: any add, remove or successful
// update changes it.
func stamp(regs []Registry) string {
	h := blake3.New()
	for _, r := range regs {
		fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s\n", r.Name, r.Locator, r.UpdatedAt.UTC().Format(time.RFC3339Nano), r.Revision)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Index returns the template index, rebuilding it when the registry list
// changed since it was written. Failing to write the cache is not an error.
func (m *Manager) Index() (*Index, error) {
	regs, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	st := stamp(regs)
	if m.indexPath != "" {
		if idx, err := loadIndex(m.indexPath); err == nil && idx.Stamp == st {
			return idx, nil
		}
	}

	c, err := m.Catalog()
	if err != nil {
		return nil, err
	}
	idx := &Index{Stamp: st, BuiltAt: m.now().UTC()}
	for _, t := range c.List() {
		regsOf := make([]string, len(t.Origins))
		for i, o := range t.Origins {
			regsOf[i] = o.Registry
		}
		version := ""
		if t.Version != nil {
			version = t.Version.String()
		}
		idx.Entries = append(idx.Entries, IndexEntry{
			Name:        t.Name,
			Registry:    t.Registry,
			Registries:  regsOf,
			Version:     version,
			Description: t.Description,
			Blueprints:  t.BlueprintNames(),
			Revision:    t.Revision,
		})
	}

	if m.indexPath != "" {
		if err := saveIndex(m.indexPath, idx); err != nil {
			m.logger.Debug("could not write template index", "path", m.indexPath, "error", err)
		}
	}
	return idx, nil
}

func loadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var idx Index
	if err := indexDecMode.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &idx, nil
}

func saveIndex(path string, idx *Index) error {
	data, err := indexEncMode.Marshal(idx)
	if err != nil {
		return fmt.Errorf("encoding index: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), userdata.DirPermNormal); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, userdata.FilePermNormal); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
