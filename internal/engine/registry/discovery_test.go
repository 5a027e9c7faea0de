package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()

	writeManifest(t, filepath.Join(first, "alpha"), `{"id":"acme.alpha","name":"Alpha","version":"1.0.0","min_api_version":"1.0.0"}`)
	writeManifest(t, filepath.Join(first, "broken"), `{"id":""}`)
	require.NoError(t, os.MkdirAll(filepath.Join(first, "no-manifest"), 0o755))
	writeManifest(t, filepath.Join(second, "alpha-copy"), `{"id":"acme.alpha","name":"Alpha 2","version":"1.0.0","min_api_version":"1.0.0"}`)
	writeManifest(t, filepath.Join(second, "beta"), `{"id":"acme.beta","name":"Beta","version":"1.0.0","min_api_version":"1.0.0"}`)

	d := NewDiscovery([]string{first, filepath.Join(first, "does-not-exist"), second}, testLogger())
	found := d.Discover()

	require.Len(t, found, 2)
	assert.Equal(t, "acme.alpha", found[0].Manifest.ID)
	assert.Equal(t, "Alpha", found[0].Manifest.Name)
	assert.Equal(t, "acme.beta", found[1].Manifest.ID)
}

func TestDiscover_FileAsSearchPath(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	assert.Empty(t, NewDiscovery([]string{file}, testLogger()).Discover())
}

func TestSearchPaths(t *testing.T) {
	paths := SearchPaths("/opt/a" + string(os.PathListSeparator) + " /opt/b ")
	require.GreaterOrEqual(t, len(paths), 2)
	assert.Equal(t, "/opt/a", paths[0])
	assert.Equal(t, "/opt/b", paths[1])
}
