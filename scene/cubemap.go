package scene

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Cube face order, matching GL_TEXTURE_CUBE_MAP_POSITIVE_X + i.
const (
	FacePX = iota
	FaceNX
	FacePY
	FaceNY
	FacePZ
	FaceNZ
)

// CubeMap is a six-face environment texture used as the scene background.
type CubeMap struct {
	Faces [6]*Texture
	GLID  uint32
}

// LoadCubeMap decodes the faces (px, nx, py, ny, pz, nz) in parallel. Every
// face must load and all faces must share one square size.
func LoadCubeMap(paths [6]string) (*CubeMap, error) {
	cm := &CubeMap{}
	var g errgroup.Group
	for i, p := range paths {
		g.Go(func() error {
			tex, err := LoadTexture(p, 0)
			if err != nil {
				return err
			}
			tex.SRGB = true
			cm.Faces[i] = tex
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load cube map: %w", err)
	}

	size := cm.Faces[0].Width
	for i, f := range cm.Faces {
		if f.Width != size || f.Height != size {
			return nil, fmt.Errorf("load cube map: face %d is %dx%d, want %dx%d", i, f.Width, f.Height, size, size)
		}
	}
	return cm, nil
}
