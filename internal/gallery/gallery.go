// Package gallery builds models.json, the manifest a gallery site renders:
// every custom model with the materials that display it, when it was added
// and its animation details.
package gallery

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"evalgo.org/packsmith/internal/apperr"
	"evalgo.org/packsmith/internal/gitrepo"
	"evalgo.org/packsmith/internal/imagecheck"
	"evalgo.org/packsmith/internal/jsonstore"
	"evalgo.org/packsmith/internal/paths"
	"evalgo.org/packsmith/internal/schema"
)

// ModelInfo is one gallery entry.
type ModelInfo struct {
	Name      string   `json:"name"`
	Materials []string `json:"materials"`

	// TextureURL is the pack-relative 2D texture; empty for 3D models
	TextureURL string `json:"texture_url,omitempty"`

	// Layers is the number of layer textures of a 3D model
	Layers int `json:"layers,omitempty"`

	AddedDate string             `json:"added_date"`
	Author    string             `json:"author,omitempty"`
	Animation *AnimationMetadata `json:"animation,omitempty"`

	added time.Time
}

type AnimationMetadata struct {
	FrameCount int    `json:"frame_count"`
	Frametime  uint32 `json:"frametime"`
}

// Manifest is the content of models.json.
type Manifest struct {
	Models []ModelInfo `json:"models"`
	Count  int         `json:"count"`
}

// DateSource tells when a file entered the pack. *gitrepo.Repo implements it.
type DateSource interface {
	FirstAdded(ctx context.Context, path string) (gitrepo.Addition, bool)
}

// Generator scans a pack for models.
type Generator struct {
	paths  paths.Resolver
	dates  DateSource
	logger zerolog.Logger
	now    func() time.Time
}

// NewGenerator creates a Generator. dates may be nil, in which case file
// modification times are used.
func NewGenerator(resolver paths.Resolver, dates DateSource, logger zerolog.Logger) *Generator {
	return &Generator{
		paths:  resolver,
		dates:  dates,
		logger: logger.With().Str("component", "gallery").Logger(),
		now:    time.Now,
	}
}

// Generate builds the manifest, newest models first.
func (g *Generator) Generate(ctx context.Context) (*Manifest, error) {
	manifest := &Manifest{Models: []ModelInfo{}}

	modelFiles, err := jsonFiles(g.paths.ModelsDir())
	if err != nil {
		return nil, err
	}
	if len(modelFiles) == 0 {
		g.logger.Warn().Str("dir", g.paths.ModelsDir()).Msg("No model files found")
		return manifest, nil
	}

	index, err := g.materialIndex()
	if err != nil {
		return nil, err
	}

	for _, name := range modelFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		manifest.Models = append(manifest.Models, g.describe(ctx, name, index[name]))
	}

	sort.SliceStable(manifest.Models, func(i, j int) bool {
		a, b := manifest.Models[i], manifest.Models[j]
		if !a.added.Equal(b.added) {
			return a.added.After(b.added)
		}
		return a.Name < b.Name
	})
	manifest.Count = len(manifest.Models)

	return manifest, nil
}

// Write generates the manifest and stores it at output.
func (g *Generator) Write(ctx context.Context, output string) (*Manifest, error) {
	manifest, err := g.Generate(ctx)
	if err != nil {
		return nil, err
	}
	if err := jsonstore.Write(output, manifest); err != nil {
		return nil, err
	}
	return manifest, nil
}

func (g *Generator) describe(ctx context.Context, name string, materials []string) ModelInfo {
	info := ModelInfo{Name: name, Materials: materials}
	if info.Materials == nil {
		info.Materials = []string{}
	}

	texture := g.paths.TexturePath(name)
	if jsonstore.Exists(texture) {
		info.TextureURL = g.paths.Rel(texture)
		info.Animation = g.animation(name, texture)
	} else {
		info.Layers = countLayers(g.paths.TextureDir(name))
		if info.Layers == 0 {
			g.logger.Warn().Str("model", name).Msg("Model has no texture")
		}
	}

	info.added, info.Author = g.addedAt(ctx, g.paths.ModelPath(name))
	info.AddedDate = info.added.UTC().Format(time.RFC3339)
	return info
}

func (g *Generator) animation(name, texture string) *AnimationMetadata {
	animPath := g.paths.AnimationPath(name)
	if !jsonstore.Exists(animPath) {
		return nil
	}

	anim, err := jsonstore.Read[schema.AnimationInfo](animPath)
	if err != nil {
		g.logger.Warn().Err(err).Str("model", name).Msg("Skipping unreadable animation metadata")
		return nil
	}
	img, err := imagecheck.Open(texture)
	if err != nil {
		g.logger.Warn().Err(err).Str("model", name).Msg("Skipping animation of unreadable texture")
		return nil
	}

	return &AnimationMetadata{
		FrameCount: img.FrameCount(),
		Frametime:  anim.Animation.Frametime,
	}
}

// addedAt prefers the git history, then the file's modification time.
func (g *Generator) addedAt(ctx context.Context, path string) (time.Time, string) {
	if g.dates != nil {
		if added, ok := g.dates.FirstAdded(ctx, path); ok {
			return added.Date, added.Author
		}
	}
	if st, err := os.Stat(path); err == nil {
		return st.ModTime(), ""
	}
	return g.now(), ""
}

// materialIndex maps model name to the materials whose cases reference it,
// reading every item file once.
func (g *Generator) materialIndex() (map[string][]string, error) {
	index := make(map[string][]string)

	items, err := jsonFiles(g.paths.ItemsDir())
	if err != nil {
		return nil, err
	}

	for _, material := range items {
		resource, err := jsonstore.Read[schema.ItemResource](g.paths.ItemPath(material))
		if err != nil {
			g.logger.Warn().Err(err).Str("material", material).Msg("Skipping unreadable item file")
			continue
		}
		seen := make(map[string]bool)
		for _, c := range resource.Model.Cases {
			if seen[c.When] {
				continue
			}
			seen[c.When] = true
			index[c.When] = append(index[c.When], material)
		}
	}

	return index, nil
}

// jsonFiles lists the stems of *.json files in dir, sorted. A missing
// directory yields an empty list.
func jsonFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperr.IO("read directory", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	return names, nil
}

func countLayers(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".png" {
			n++
		}
	}
	return n
}
