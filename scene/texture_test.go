package scene

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestLoadTextureConvertsToRGBA(t *testing.T) {
	path := filepath.Join(t.TempDir(), "red.png")
	writePNG(t, path, 4, 2, color.NRGBA{R: 255, A: 255})

	tex, err := LoadTexture(path, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, tex.Width)
	assert.Equal(t, 2, tex.Height)
	assert.Len(t, tex.Pixels, 4*2*4)
	assert.Equal(t, []byte{255, 0, 0, 255}, tex.Pixels[:4])
}

func TestLoadTextureDownscales(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.png")
	writePNG(t, path, 64, 32, color.White)

	tex, err := LoadTexture(path, 16)
	require.NoError(t, err)
	assert.Equal(t, 16, tex.Width)
	assert.Equal(t, 8, tex.Height)
	assert.Len(t, tex.Pixels, 16*8*4)
}

func TestLoadTextureMissing(t *testing.T) {
	_, err := LoadTexture(filepath.Join(t.TempDir(), "nope.jpg"), 0)
	assert.Error(t, err)
}

func TestLoadTexturesKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	writePNG(t, a, 2, 2, color.Black)

	textures, errs := LoadTextures([]string{a, filepath.Join(dir, "missing.png"), ""}, 0)
	require.Len(t, textures, 3)
	assert.NotNil(t, textures[0])
	assert.NoError(t, errs[0])
	assert.Nil(t, textures[1])
	assert.Error(t, errs[1])
	assert.Nil(t, textures[2])
	assert.NoError(t, errs[2])
}

func TestLoadCubeMap(t *testing.T) {
	dir := t.TempDir()
	var paths [6]string
	for i, name := range []string{"px", "nx", "py", "ny", "pz", "nz"} {
		paths[i] = filepath.Join(dir, name+".png")
		writePNG(t, paths[i], 8, 8, color.Gray{Y: uint8(i * 40)})
	}

	cm, err := LoadCubeMap(paths)
	require.NoError(t, err)
	for i, f := range cm.Faces {
		require.NotNil(t, f)
		assert.Equal(t, uint8(i*40), f.Pixels[0])
		assert.True(t, f.SRGB)
	}
}

func TestLoadCubeMapFailsOnMissingFace(t *testing.T) {
	dir := t.TempDir()
	var paths [6]string
	for i, name := range []string{"px", "nx", "py", "ny", "pz", "nz"} {
		paths[i] = filepath.Join(dir, name+".png")
		if i != 3 {
			writePNG(t, paths[i], 8, 8, color.White)
		}
	}

	_, err := LoadCubeMap(paths)
	assert.Error(t, err)
}

func TestLoadCubeMapRejectsMismatchedFaces(t *testing.T) {
	dir := t.TempDir()
	var paths [6]string
	for i, name := range []string{"px", "nx", "py", "ny", "pz", "nz"} {
		paths[i] = filepath.Join(dir, name+".png")
		size := 8
		if i == 5 {
			size = 4
		}
		writePNG(t, paths[i], size, size, color.White)
	}

	_, err := LoadCubeMap(paths)
	assert.ErrorContains(t, err, "face 5")
}
