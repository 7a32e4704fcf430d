// Package imagecheck validates texture images before they enter the pack.
package imagecheck

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"evalgo.org/packsmith/internal/apperr"
)

// FormatPNG is the only format accepted for textures.
const FormatPNG = "png"

// Image is a decoded, PNG-verified texture.
type Image struct {
	Path   string
	Format string
	Width  int
	Height int

	img image.Image
}

// Open reads and decodes the image at path and verifies it is a PNG.
// The format is sniffed from the file content, not the extension.
func Open(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.NotFound("image", path)
		}
		return nil, apperr.IO("read image", path, err)
	}
	return Decode(path, data)
}

// Decode is Open for bytes already in memory. path is used for messages.
func Decode(path string, data []byte) (*Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperr.Parse("image", path, err)
	}

	if format != FormatPNG {
		return nil, apperr.Validation(fmt.Sprintf("image must be PNG, got %s", format), path)
	}

	b := img.Bounds()
	return &Image{
		Path:   path,
		Format: format,
		Width:  b.Dx(),
		Height: b.Dy(),
		img:    img,
	}, nil
}

// Image returns the decoded pixels.
func (i *Image) Image() image.Image {
	return i.img
}

// FrameCount is the number of square frames stacked vertically.
func (i *Image) FrameCount() int {
	if i.Width == 0 {
		return 0
	}
	return i.Height / i.Width
}

// CheckModel enforces texture size rules. A static texture is a square whose
// side is a power of two. An animated texture is a vertical strip of square
// frames: the width is a power of two and the height a whole multiple of it.
func (i *Image) CheckModel(animated bool) error {
	if !animated {
		if !IsPowerOfTwo(i.Width) || !IsPowerOfTwo(i.Height) {
			return apperr.Validation(
				fmt.Sprintf("image size must be a power of two, got %dx%d", i.Width, i.Height), i.Path)
		}
		if i.Width != i.Height {
			return apperr.Validation(
				fmt.Sprintf("image must be square, got %dx%d", i.Width, i.Height), i.Path)
		}
		return nil
	}

	if !IsPowerOfTwo(i.Width) {
		return apperr.Validation(
			fmt.Sprintf("animation frame width must be a power of two, got %dx%d", i.Width, i.Height), i.Path)
	}
	if i.Height == 0 || i.Height%i.Width != 0 {
		return apperr.Validation(
			fmt.Sprintf("animated image height must be a multiple of its width, got %dx%d", i.Width, i.Height), i.Path)
	}
	return nil
}

// IsPowerOfTwo reports n != 0 && n&(n-1) == 0.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
