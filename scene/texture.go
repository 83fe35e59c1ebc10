package scene

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"runtime"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// Texture holds CPU-side pixel data for a 2D texture.
// GLID is set by the OpenGL backend after upload; do not access directly.
type Texture struct {
	Name   string
	Width  int
	Height int
	// Pixels in RGBA8 format (4 bytes per pixel, row-major, top-to-bottom).
	Pixels []byte
	// SRGB marks colour data (albedo, emissive) as opposed to linear data.
	SRGB bool
	GLID uint32
}

// LoadTexture reads a PNG or JPEG file from disk and returns a CPU-side
// RGBA8 texture. Images larger than maxSize on either side are scaled down;
// maxSize <= 0 keeps the original size.
func LoadTexture(path string, maxSize int) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %q: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %q: %w", path, err)
	}
	return NewTextureFromImage(path, img, maxSize), nil
}

// NewTextureFromImage converts any image to RGBA8.
func NewTextureFromImage(name string, img image.Image, maxSize int) *Texture {
	src := img.Bounds()
	w, h := fitSize(src.Dx(), src.Dy(), maxSize)
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == src.Dx() && h == src.Dy() {
		draw.Draw(rgba, rgba.Bounds(), img, src.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(rgba, rgba.Bounds(), img, src, draw.Src, nil)
	}
	return &Texture{
		Name:   name,
		Width:  w,
		Height: h,
		Pixels: rgba.Pix,
	}
}

func fitSize(w, h, maxSize int) (int, int) {
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		return w, h
	}
	if w >= h {
		return maxSize, max(1, h*maxSize/w)
	}
	return max(1, w*maxSize/h), maxSize
}

// LoadTextures decodes all paths in parallel. The result slices are indexed
// like paths; a failed entry has a nil texture and a non-nil error.
func LoadTextures(paths []string, maxSize int) ([]*Texture, []error) {
	textures := make([]*Texture, len(paths))
	errs := make([]error, len(paths))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, p := range paths {
		if p == "" {
			continue
		}
		g.Go(func() error {
			textures[i], errs[i] = LoadTexture(p, maxSize)
			return nil
		})
	}
	_ = g.Wait()
	return textures, errs
}

// NewSolidTexture creates a 1x1 texture with the given RGBA color values (0-255).
func NewSolidTexture(name string, r, g, b, a uint8) *Texture {
	return &Texture{
		Name:   name,
		Width:  1,
		Height: 1,
		Pixels: []byte{r, g, b, a},
	}
}
