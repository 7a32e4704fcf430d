package imagecheck

import (
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalgo.org/packsmith/internal/apperr"
)

func writePNG(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 0x80, A: 0xff})
		}
	}
	path := filepath.Join(dir, "img.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestIsPowerOfTwo(t *testing.T) {
	for _, n := range []int{1, 2, 4, 8, 16, 32, 64, 128, 256, 512, 1024} {
		assert.True(t, IsPowerOfTwo(n), "%d", n)
	}
	for _, n := range []int{0, 3, 5, 6, 7, 9, 15, 17, 100, -2} {
		assert.False(t, IsPowerOfTwo(n), "%d", n)
	}
}

func TestCheckModel(t *testing.T) {
	tests := []struct {
		name     string
		w, h     int
		animated bool
		wantErr  bool
	}{
		{"static square", 16, 16, false, false},
		{"static 1x1", 1, 1, false, false},
		{"static not square", 16, 32, false, true},
		{"static not power of two", 24, 24, false, true},
		{"animated three frames", 16, 48, true, false},
		{"animated single frame", 16, 16, true, false},
		{"animated ragged height", 16, 50, true, true},
		{"animated shorter than wide", 16, 8, true, true},
		{"animated width not power of two", 12, 36, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := &Image{Path: "x.png", Format: FormatPNG, Width: tt.w, Height: tt.h}
			err := img.CheckModel(tt.animated)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperr.Is(err, apperr.KindValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, 16, 48)

	img, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, img.Format)
	assert.Equal(t, 16, img.Width)
	assert.Equal(t, 48, img.Height)
	assert.Equal(t, 3, img.FrameCount())
	assert.NotNil(t, img.Image())
}

func TestOpen_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(filepath.Join(dir, "missing.png"))
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	garbage := filepath.Join(dir, "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image at all"), 0o644))
	_, err = Open(garbage)
	assert.True(t, apperr.Is(err, apperr.KindParse))

	// A GIF named .png is rejected by content, not extension.
	disguised := filepath.Join(dir, "disguised.png")
	f, err := os.Create(disguised)
	require.NoError(t, err)
	pal := image.NewPaletted(image.Rect(0, 0, 16, 16), color.Palette{color.Black, color.White})
	require.NoError(t, gif.Encode(f, pal, nil))
	require.NoError(t, f.Close())

	_, err = Open(disguised)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Contains(t, err.Error(), "gif")
}
