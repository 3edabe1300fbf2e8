package pack_test

import (
	"archive/zip"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurora-melody/sdk/sdk/manifest"
	"github.com/aurora-melody/sdk/sdk/pack"
)

const validManifest = `{"id":"com.example.echo","name":"Echo","version":"0.1.0","author":"me","entry":"main.py"}`

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
}

func archived(t *testing.T, path string) []string {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	var names []string
	for _, f := range r.File {
		assert.Equal(t, zip.Deflate, f.Method)
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

func TestPack(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "echo")
	writeFiles(t, dir, map[string]string{
		manifest.FileName:          validManifest,
		"main.py":                  "print('hi')",
		"icon.png":                 "png",
		"lib/helpers.py":           "x = 1",
		"lib/helpers.pyc":          "compiled",
		"__pycache__/main.cpython": "cache",
		".git/config":              "[core]",
		".DS_Store":                "junk",
	})

	res, err := pack.Pack(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(parent, "com-example-echo.aml"), res.Path)
	assert.Positive(t, res.Size)
	assert.Equal(t, "Echo", res.Manifest.Name)
	assert.Equal(t, []string{"icon.png", "lib/helpers.py", "main.py", "manifest.json"}, archived(t, res.Path))
	assert.Len(t, res.Files, 4)
}

func TestPackOutputInsideFolderIsNotArchived(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		manifest.FileName: validManifest,
		"main.py":         "print('hi')",
	})
	out := filepath.Join(dir, "dist", "echo.aml")

	_, err := pack.Pack(dir, pack.WithOutput(out))
	require.NoError(t, err)
	res, err := pack.Pack(dir, pack.WithOutput(out))
	require.NoError(t, err)

	assert.Equal(t, []string{"main.py", "manifest.json"}, archived(t, res.Path))
}

func TestPackFailures(t *testing.T) {
	_, err := pack.Pack(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, pack.ErrNotDirectory)

	file := filepath.Join(t.TempDir(), "main.py")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = pack.Pack(file)
	assert.ErrorIs(t, err, pack.ErrNotDirectory)

	_, err = pack.Pack(t.TempDir())
	assert.ErrorIs(t, err, manifest.ErrNotFound)

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{manifest.FileName: `{"id":"x","name":"X","version":"v","author":"a","entry":"main.py"}`})
	_, err = pack.Pack(dir)
	assert.ErrorIs(t, err, manifest.ErrInvalid)

	dir = t.TempDir()
	writeFiles(t, dir, map[string]string{manifest.FileName: validManifest})
	_, err = pack.Pack(dir)
	assert.ErrorIs(t, err, pack.ErrEntryNotFound)
}
