package registry

import (
	"archive/tar"
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tarball(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for name, body := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     0644,
			Size:     int64(len(body)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	return buf.Bytes()
}

func gzipped(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func zstded(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func serve(t *testing.T, files map[string][]byte, allowHead bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if r.Method == http.MethodHead && !allowHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			_, _ = io.Copy(w, bytes.NewReader(body))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestArchiveFetchStripsTopDir(t *testing.T) {
	archive := tarball(t, map[string]string{
		"templates-main/templates/package/template.yaml": readmeOnly,
		"templates-main/registry.yaml":                   "name: general\n",
	})
	srv := serve(t, map[string][]byte{
		"/r.tar.gz":  gzipped(t, archive),
		"/r.tar.zst": zstded(t, archive),
	}, true)

	for _, path := range []string{"/r.tar.gz", "/r.tar.zst"} {
		t.Run(path, func(t *testing.T) {
			dst := filepath.Join(t.TempDir(), "out")
			f := ArchiveFetcher{Client: srv.Client()}
			require.NoError(t, f.Check(context.Background(), srv.URL+path))
			require.NoError(t, f.Fetch(context.Background(), srv.URL+path, dst))
			assert.FileExists(t, filepath.Join(dst, "templates", "package", "template.yaml"))
			assert.FileExists(t, filepath.Join(dst, "registry.yaml"))
		})
	}
}

func TestArchiveRejectsEscapingEntry(t *testing.T) {
	srv := serve(t, map[string][]byte{
		"/evil.tgz": gzipped(t, tarball(t, map[string]string{"../../evil.txt": "x"})),
	}, true)
	parent := t.TempDir()
	dst := filepath.Join(parent, "a", "out")
	err := ArchiveFetcher{Client: srv.Client()}.Fetch(context.Background(), srv.URL+"/evil.tgz", dst)
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(parent, "evil.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestArchiveCheck(t *testing.T) {
	srv := serve(t, map[string][]byte{"/r.tar.gz": {}}, false)
	f := ArchiveFetcher{Client: srv.Client()}
	assert.NoError(t, f.Check(context.Background(), srv.URL+"/r.tar.gz"), "falls back to GET")
	assert.ErrorIs(t, f.Check(context.Background(), srv.URL+"/missing.tar.gz"), ErrUnreachable)
}

func TestAddArchiveRegistry(t *testing.T) {
	archive := gzipped(t, tarball(t, map[string]string{
		"templates/package/template.yaml": readmeOnly,
	}))
	srv := serve(t, map[string][]byte{"/company.tar.gz": archive}, true)

	home := t.TempDir()
	m := NewManager(Options{
		ResourcesRoot: filepath.Join(home, "resources"),
		StorePath:     filepath.Join(home, "registries.yaml"),
		HTTPClient:    srv.Client(),
	})
	reg, err := m.Add(context.Background(), srv.URL+"/company.tar.gz", "")
	require.NoError(t, err)
	assert.Equal(t, "company", reg.Name)
	assert.Equal(t, KindArchive, reg.Kind)

	c, err := m.Catalog()
	require.NoError(t, err)
	assert.Equal(t, []string{"package"}, c.Names())
}
