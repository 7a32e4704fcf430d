package runner

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalgo.org/packsmith/internal/jsonstore"
	"evalgo.org/packsmith/internal/materials"
	"evalgo.org/packsmith/internal/pack"
	"evalgo.org/packsmith/internal/paths"
	"evalgo.org/packsmith/internal/schema"
)

func newTestProcessor(t *testing.T, opts ProcessorOptions) (*Processor, *fakeAPI, paths.Resolver, string) {
	t.Helper()
	srv := assetServer(t, map[string][]byte{
		"/ruby.png":   encodePNG(t, 16, 16),
		"/flame.png":  encodePNG(t, 16, 48),
		"/lamp.json":  []byte(`{"parent":"block/block","textures":{"0":"a","1":"b"}}`),
		"/layer0.png": encodePNG(t, 16, 16),
		"/layer1.png": encodePNG(t, 32, 32),
	})

	resolver := paths.New(t.TempDir())
	catalog := materials.FromEntries([]materials.CatalogEntry{
		{Name: "stone", Texture: "minecraft:block/stone"},
		{Name: "diamond_sword", Texture: "minecraft:item/diamond_sword"},
	})
	svc := pack.NewService(resolver, materials.Static(catalog), zerolog.Nop())

	if opts.Owner == "" {
		opts.Owner, opts.Repo = "ofro", "pack"
	}
	api := &fakeAPI{}
	p := NewProcessor(svc, api, NewDownloader(5*time.Second, 0, zerolog.Nop()), opts, zerolog.Nop())
	return p, api, resolver, srv.URL
}

func TestProcess_Model(t *testing.T) {
	p, api, r, base := newTestProcessor(t, ProcessorOptions{})
	body := fmt.Sprintf("### Materials\n\nstone, diamond_sword\n\n### Custom Model Data\n\nruby_sword\n\n### Image URL\n\n%s/ruby.png\n", base)

	res, err := p.Process(context.Background(), 7, IssueModel, body)
	require.NoError(t, err)

	assert.Equal(t, []string{"react:rocket"}, api.ops())
	assert.Equal(t, "ruby_sword", res.CustomModelData)
	assert.Equal(t, "custom-model/issue-7", res.Branch)
	assert.Equal(t, "https://raw.githubusercontent.com/ofro/pack/custom-model/issue-7/preview/ruby_sword.png", res.PreviewURL)
	assert.Empty(t, res.AddedMaterials)

	assert.True(t, jsonstore.Exists(r.ModelPath("ruby_sword")))
	assert.True(t, jsonstore.Exists(r.TexturePath("ruby_sword")))
	assert.True(t, jsonstore.Exists(r.PreviewPath("ruby_sword")))

	stone, err := jsonstore.Read[schema.ItemResource](r.ItemPath("stone"))
	require.NoError(t, err)
	assert.Equal(t, []string{"ruby_sword"}, stone.CaseNames())
}

func TestProcess_AnimatedModel(t *testing.T) {
	p, _, r, base := newTestProcessor(t, ProcessorOptions{Branch: "pr-branch"})
	body := fmt.Sprintf("### Materials\n\nstone\n\n### Custom Model Data\n\nflame\n\n### Image URL\n\n%s/flame.png\n\n### Frametime\n\n2\n", base)

	res, err := p.Process(context.Background(), 8, IssueModel, body)
	require.NoError(t, err)
	assert.Equal(t, "pr-branch", res.Branch)

	anim, err := jsonstore.Read[schema.AnimationInfo](r.AnimationPath("flame"))
	require.NoError(t, err)
	assert.Equal(t, uint32(2), anim.Animation.Frametime)
}

func TestProcess_Model3D(t *testing.T) {
	p, _, r, base := newTestProcessor(t, ProcessorOptions{})
	body := fmt.Sprintf("### Materials\n\nstone\n\n### Custom Model Data\n\nlamp\n\n### Model JSON URL\n\n%s/lamp.json\n\n### Layer Image URLs\n\n%s/layer0.png\n%s/layer1.png\n", base, base, base)

	res, err := p.Process(context.Background(), 9, IssueModel3D, body)
	require.NoError(t, err)
	assert.NotEmpty(t, res.PreviewURL)

	assert.True(t, jsonstore.Exists(r.TextureLayerPath("lamp", 0)))
	assert.True(t, jsonstore.Exists(r.TextureLayerPath("lamp", 1)))
	assert.True(t, jsonstore.Exists(r.PreviewPath("lamp")))
}

func TestProcess_Extend(t *testing.T) {
	p, _, r, base := newTestProcessor(t, ProcessorOptions{})
	ctx := context.Background()
	add := fmt.Sprintf("### Materials\n\nstone\n\n### Custom Model Data\n\nruby_sword\n\n### Image URL\n\n%s/ruby.png\n", base)
	_, err := p.Process(ctx, 1, IssueModel, add)
	require.NoError(t, err)

	res, err := p.Process(ctx, 2, IssueExtend, "### Materials\n\nstone, iron_axe\n\n### Custom Model Data\n\nruby_sword\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"stone", "iron_axe"}, res.AddedMaterials)
	assert.Empty(t, res.PreviewURL)
	assert.Equal(t, []Output{
		{"custom_model_data", "ruby_sword"},
		{"branch", "custom-model/issue-2"},
		{"added_materials", "stone,iron_axe"},
	}, res.Outputs())

	axe, err := jsonstore.Read[schema.ItemResource](r.ItemPath("iron_axe"))
	require.NoError(t, err)
	assert.Equal(t, []string{"ruby_sword"}, axe.CaseNames())
}

func TestProcess_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("reaction fails first", func(t *testing.T) {
		p, api, _, _ := newTestProcessor(t, ProcessorOptions{})
		api.failOn = "react"
		_, err := p.Process(ctx, 1, IssueExtend, "")
		require.Error(t, err)
	})

	t.Run("unparseable body", func(t *testing.T) {
		p, api, _, _ := newTestProcessor(t, ProcessorOptions{})
		_, err := p.Process(ctx, 1, IssueModel, "hello")
		require.Error(t, err)
		assert.Equal(t, []string{"react:rocket"}, api.ops())
	})

	t.Run("download fails leaves pack untouched", func(t *testing.T) {
		p, _, r, base := newTestProcessor(t, ProcessorOptions{})
		body := fmt.Sprintf("### Materials\n\nstone\n\n### Custom Model Data\n\nghost\n\n### Image URL\n\n%s/missing.png\n", base)
		_, err := p.Process(ctx, 1, IssueModel, body)
		require.Error(t, err)

		_, statErr := os.Stat(r.ModelsDir())
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("unsupported material leaves pack untouched", func(t *testing.T) {
		p, _, r, base := newTestProcessor(t, ProcessorOptions{})
		body := fmt.Sprintf("### Materials\n\nstone, diamnod_axe\n\n### Custom Model Data\n\nruby_sword\n\n### Image URL\n\n%s/ruby.png\n", base)
		_, err := p.Process(ctx, 1, IssueModel, body)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported material: diamnod_axe")

		_, statErr := os.Stat(r.ModelsDir())
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("extend unknown model", func(t *testing.T) {
		p, _, _, _ := newTestProcessor(t, ProcessorOptions{})
		_, err := p.Process(ctx, 1, IssueExtend, "### Materials\n\nstone\n\n### Custom Model Data\n\nnope\n")
		require.Error(t, err)
	})
}
