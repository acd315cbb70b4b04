package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexBuiltAndCached(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	src := makeSource(t, map[string]string{"package": "description: pkg\nversion: 1.2.0\n" + readmeOnly})
	_, err := m.Add(ctx, src, "general")
	require.NoError(t, err)

	idx, err := m.Index()
	require.NoError(t, err)
	require.Len(t, idx.Entries, 1)
	e := idx.Entries[0]
	assert.Equal(t, "package", e.Name)
	assert.Equal(t, "1.2.0", e.Version)
	assert.Equal(t, "pkg", e.Description)
	assert.Equal(t, []string{"readme"}, e.Blueprints)
	assert.Equal(t, []string{"general"}, e.Registries)
	assert.FileExists(t, m.indexPath)

	// A change in the checkout alone does not invalidate the index.
	require.NoError(t, os.RemoveAll(filepath.Join(m.Dir("general"), "templates", "package")))
	cached, err := m.Index()
	require.NoError(t, err)
	assert.Len(t, cached.Entries, 1)
	assert.Equal(t, idx.Stamp, cached.Stamp)

	// An update does.
	require.NoError(t, os.MkdirAll(filepath.Join(src, "templates", "script"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "templates", "script", "template.yaml"), []byte(readmeOnly), 0644))
	require.NoError(t, m.Update(ctx, "general"))

	rebuilt, err := m.Index()
	require.NoError(t, err)
	assert.NotEqual(t, idx.Stamp, rebuilt.Stamp)
	names := []string{}
	for _, e := range rebuilt.Entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"package", "script"}, names)
}
