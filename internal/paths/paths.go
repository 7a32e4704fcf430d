// Package paths derives on-disk locations of resource pack assets.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	ItemsDir    = "assets/minecraft/items"
	ModelsDir   = "assets/minecraft/models/item"
	TexturesDir = "assets/minecraft/textures/item"
	PreviewDir  = "preview"
	CatalogFile = "items_textures.json"

	// RootEnv overrides the pack root, mainly for tests.
	RootEnv = "PACKSMITH_ROOT"
)

// Resolver maps names to paths under a pack root. It performs no I/O.
type Resolver struct {
	Root string
}

func New(root string) Resolver {
	if root == "" {
		root = "."
	}
	return Resolver{Root: root}
}

// FromEnv returns a resolver rooted at $PACKSMITH_ROOT, or fallback when unset.
func FromEnv(fallback string) Resolver {
	if root := os.Getenv(RootEnv); root != "" {
		return New(root)
	}
	return New(fallback)
}

func (r Resolver) join(elem ...string) string {
	return filepath.Join(append([]string{r.Root}, elem...)...)
}

func (r Resolver) ItemsDir() string    { return r.join(ItemsDir) }
func (r Resolver) ModelsDir() string   { return r.join(ModelsDir) }
func (r Resolver) TexturesDir() string { return r.join(TexturesDir) }
func (r Resolver) PreviewDir() string  { return r.join(PreviewDir) }
func (r Resolver) CatalogPath() string { return r.join(CatalogFile) }

// ItemPath is the ItemResource file of a material.
func (r Resolver) ItemPath(material string) string {
	return r.join(ItemsDir, material+".json")
}

// ModelPath is the ItemModel file of a model.
func (r Resolver) ModelPath(name string) string {
	return r.join(ModelsDir, name+".json")
}

// TexturePath is the 2D texture of a model.
func (r Resolver) TexturePath(name string) string {
	return r.join(TexturesDir, name+".png")
}

// TextureDir holds the layer textures of a 3D model.
func (r Resolver) TextureDir(name string) string {
	return r.join(TexturesDir, name)
}

func (r Resolver) TextureLayerPath(name string, index int) string {
	return r.join(TexturesDir, name, fmt.Sprintf("%d.png", index))
}

// AnimationPath is the .mcmeta file next to a 2D texture.
func (r Resolver) AnimationPath(name string) string {
	return r.TexturePath(name) + ".mcmeta"
}

func (r Resolver) PreviewPath(name string) string {
	return r.join(PreviewDir, name+".png")
}

// Rel returns path relative to the root with forward slashes.
func (r Resolver) Rel(path string) string {
	rel, err := filepath.Rel(r.Root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
