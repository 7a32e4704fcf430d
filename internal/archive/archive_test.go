package archive

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalgo.org/packsmith/internal/apperr"
)

func seed(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for name, body := range map[string]string{
		"pack.mcmeta":                                    `{"pack":{"pack_format":46}}`,
		"pack.png":                                       "png",
		"assets/minecraft/items/stone.json":              "{}",
		"assets/minecraft/models/item/ruby.json":         "{}",
		"assets/minecraft/textures/item/ruby.png":        "png",
		"assets/minecraft/textures/item/ruby.png.mcmeta": "{}",
		"README.md":                                      "not shipped",
	} {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return root
}

func entries(t *testing.T, path string) []string {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

func TestBuild_Defaults(t *testing.T) {
	root := seed(t)
	output := filepath.Join(root, "OfroPack.zip")

	res, err := Build(root, output, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, res.Files)
	assert.Positive(t, res.Size)

	assert.Equal(t, []string{
		"assets/minecraft/items/stone.json",
		"assets/minecraft/models/item/ruby.json",
		"assets/minecraft/textures/item/ruby.png",
		"assets/minecraft/textures/item/ruby.png.mcmeta",
		"pack.mcmeta",
		"pack.png",
	}, entries(t, output))
}

func TestBuild_ReplacesExisting(t *testing.T) {
	root := seed(t)
	output := filepath.Join(root, "out.zip")
	require.NoError(t, os.WriteFile(output, []byte("stale"), 0o644))

	_, err := Build(root, output, []string{"pack.mcmeta"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pack.mcmeta"}, entries(t, output))
}

func TestBuild_Glob(t *testing.T) {
	root := seed(t)
	output := filepath.Join(t.TempDir(), "textures.zip")

	res, err := Build(root, output, []string{"assets/**/*.png", "pack.png"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Files)
	assert.Equal(t, []string{"assets/minecraft/textures/item/ruby.png", "pack.png"}, entries(t, output))
}

func TestBuild_MissingInclude(t *testing.T) {
	root := seed(t)
	output := filepath.Join(root, "out.zip")
	require.NoError(t, os.WriteFile(output, []byte("keep"), 0o644))

	_, err := Build(root, output, []string{"assets/", "missing.txt"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))
}
