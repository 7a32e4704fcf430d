package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolver(t *testing.T) {
	r := New("/pack")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"item", r.ItemPath("diamond_axe"), "/pack/assets/minecraft/items/diamond_axe.json"},
		{"model", r.ModelPath("ruby_sword"), "/pack/assets/minecraft/models/item/ruby_sword.json"},
		{"texture", r.TexturePath("ruby_sword"), "/pack/assets/minecraft/textures/item/ruby_sword.png"},
		{"texture dir", r.TextureDir("lamp"), "/pack/assets/minecraft/textures/item/lamp"},
		{"layer", r.TextureLayerPath("lamp", 2), "/pack/assets/minecraft/textures/item/lamp/2.png"},
		{"animation", r.AnimationPath("fire"), "/pack/assets/minecraft/textures/item/fire.png.mcmeta"},
		{"preview", r.PreviewPath("fire"), "/pack/preview/fire.png"},
		{"catalog", r.CatalogPath(), "/pack/items_textures.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, filepath.FromSlash(tt.want), tt.got)
		})
	}
}

func TestNew_DefaultsToCurrentDir(t *testing.T) {
	assert.Equal(t, ".", New("").Root)
}

func TestFromEnv(t *testing.T) {
	t.Setenv(RootEnv, "/override")
	assert.Equal(t, "/override", FromEnv(".").Root)

	t.Setenv(RootEnv, "")
	assert.Equal(t, "fallback", FromEnv("fallback").Root)
}

func TestRel(t *testing.T) {
	r := New("/pack")
	assert.Equal(t, "preview/fire.png", r.Rel(r.PreviewPath("fire")))
}
