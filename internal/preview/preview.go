// Package preview renders enlarged PNG previews of textures.
package preview

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"

	"evalgo.org/packsmith/internal/apperr"
	"evalgo.org/packsmith/internal/imagecheck"
	"evalgo.org/packsmith/internal/jsonstore"
)

// DefaultSize is the side of a preview in pixels.
const DefaultSize = 256

// Generate scales the texture at src to a size×size PNG at dst with
// nearest-neighbor sampling so texels stay sharp. For an animation strip
// only the first frame is rendered.
func Generate(src, dst string, size int) error {
	if size <= 0 {
		return apperr.Validation(fmt.Sprintf("preview size must be positive, got %d", size), dst)
	}

	texture, err := imagecheck.Open(src)
	if err != nil {
		return err
	}

	frame := firstFrame(texture.Image())
	out := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.NearestNeighbor.Scale(out, out.Bounds(), frame, frame.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return apperr.IO("encode preview", dst, err)
	}
	return jsonstore.WriteFile(dst, buf.Bytes(), 0o644)
}

// firstFrame returns the top square of a vertical strip taller than wide.
func firstFrame(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dy() <= b.Dx() {
		return img
	}
	frame := image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+b.Dx())
	if sub, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		return sub.SubImage(frame)
	}
	return img
}

// RawURL is where GitHub serves relPath on branch without rendering.
func RawURL(owner, repo, branch, relPath string) string {
	return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s/%s", owner, repo, branch, relPath)
}
