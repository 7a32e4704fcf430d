package gallery

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalgo.org/packsmith/internal/gitrepo"
	"evalgo.org/packsmith/internal/jsonstore"
	"evalgo.org/packsmith/internal/paths"
	"evalgo.org/packsmith/internal/schema"
)

type fakeDates map[string]gitrepo.Addition

func (f fakeDates) FirstAdded(_ context.Context, path string) (gitrepo.Addition, bool) {
	a, ok := f[filepath.Base(path)]
	return a, ok
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewNRGBA(image.Rect(0, 0, w, h))))
}

func seedPack(t *testing.T) paths.Resolver {
	t.Helper()
	r := paths.New(t.TempDir())

	require.NoError(t, jsonstore.Write(r.ModelPath("sword"), schema.NewItemModel(schema.ParentHandheld, "sword")))
	writePNG(t, r.TexturePath("sword"), 16, 16)

	require.NoError(t, jsonstore.Write(r.ModelPath("flame"), schema.NewItemModel(schema.ParentGenerated, "flame")))
	writePNG(t, r.TexturePath("flame"), 16, 64)
	require.NoError(t, jsonstore.Write(r.AnimationPath("flame"), schema.NewAnimationInfo(2)))

	require.NoError(t, jsonstore.Write(r.ModelPath("lamp"), map[string]interface{}{
		"textures": map[string]string{"0": "item/lamp/0", "1": "item/lamp/1"},
	}))
	writePNG(t, r.TextureLayerPath("lamp", 0), 16, 16)
	writePNG(t, r.TextureLayerPath("lamp", 1), 16, 16)

	stone := schema.NewItemResource("minecraft:block/stone")
	stone.AddCase("sword")
	stone.AddCase("flame")
	stone.AddCase("sword")
	require.NoError(t, jsonstore.Write(r.ItemPath("stone"), stone))

	axe := schema.NewItemResource("minecraft:item/diamond_axe")
	axe.AddCase("sword")
	require.NoError(t, jsonstore.Write(r.ItemPath("diamond_axe"), axe))

	require.NoError(t, os.WriteFile(r.ItemPath("broken"), []byte("nope"), 0o644))
	return r
}

func TestGenerate(t *testing.T) {
	r := seedPack(t)
	dates := fakeDates{
		"sword.json": {Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Author: "alice"},
		"flame.json": {Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Author: "bob"},
		"lamp.json":  {Date: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), Author: "carol"},
	}

	manifest, err := NewGenerator(r, dates, zerolog.Nop()).Generate(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, manifest.Count)

	names := []string{manifest.Models[0].Name, manifest.Models[1].Name, manifest.Models[2].Name}
	assert.Equal(t, []string{"flame", "lamp", "sword"}, names)

	flame := manifest.Models[0]
	assert.Equal(t, []string{"stone"}, flame.Materials)
	assert.Equal(t, "assets/minecraft/textures/item/flame.png", flame.TextureURL)
	assert.Equal(t, "2025-03-01T00:00:00Z", flame.AddedDate)
	assert.Equal(t, "bob", flame.Author)
	require.NotNil(t, flame.Animation)
	assert.Equal(t, 4, flame.Animation.FrameCount)
	assert.Equal(t, uint32(2), flame.Animation.Frametime)

	lamp := manifest.Models[1]
	assert.Empty(t, lamp.TextureURL)
	assert.Equal(t, 2, lamp.Layers)
	assert.Equal(t, []string{}, lamp.Materials)
	assert.Nil(t, lamp.Animation)

	sword := manifest.Models[2]
	assert.Equal(t, []string{"diamond_axe", "stone"}, sword.Materials)
	assert.Nil(t, sword.Animation)
}

func TestGenerate_FallsBackToModTime(t *testing.T) {
	r := seedPack(t)
	when := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(r.ModelPath("sword"), when, when))

	manifest, err := NewGenerator(r, nil, zerolog.Nop()).Generate(context.Background())
	require.NoError(t, err)

	var sword ModelInfo
	for _, m := range manifest.Models {
		if m.Name == "sword" {
			sword = m
		}
	}
	assert.Equal(t, "2024-06-01T12:00:00Z", sword.AddedDate)
	assert.Empty(t, sword.Author)
}

func TestGenerate_EmptyPack(t *testing.T) {
	r := paths.New(t.TempDir())
	out := filepath.Join(r.Root, "models.json")

	manifest, err := NewGenerator(r, nil, zerolog.Nop()).Write(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, 0, manifest.Count)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"models":[],"count":0}`, string(data))
}
