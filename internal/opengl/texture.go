package opengl

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"vr-scene/scene"
)

func internalFormat(tex *scene.Texture) int32 {
	if tex.SRGB {
		return gl.SRGB8_ALPHA8
	}
	return gl.RGBA8
}

func checkPixels(tex *scene.Texture) error {
	if tex == nil {
		return fmt.Errorf("nil texture")
	}
	if len(tex.Pixels) == 0 || len(tex.Pixels) < tex.Width*tex.Height*4 {
		return fmt.Errorf("texture %q has %d bytes of pixel data for %dx%d",
			tex.Name, len(tex.Pixels), tex.Width, tex.Height)
	}
	return nil
}

// UploadTexture uploads a scene.Texture with mipmaps and sets its GLID.
// Colour textures marked SRGB are decoded to linear by the sampler.
func UploadTexture(tex *scene.Texture) error {
	if err := checkPixels(tex); err != nil {
		return err
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internalFormat(tex),
		int32(tex.Width), int32(tex.Height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&tex.Pixels[0]))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	tex.GLID = id
	return nil
}

// UploadCubeMap uploads the six faces into one cube texture and sets the
// cube's GLID. Faces are uploaded in GL_TEXTURE_CUBE_MAP_POSITIVE_X order.
func UploadCubeMap(cube *scene.CubeMap) error {
	for i, face := range cube.Faces {
		if err := checkPixels(face); err != nil {
			return fmt.Errorf("cube face %d: %w", i, err)
		}
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	for i, face := range cube.Faces {
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i), 0, internalFormat(face),
			int32(face.Width), int32(face.Height), 0,
			gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&face.Pixels[0]))
	}
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)

	cube.GLID = id
	return nil
}

// DeleteTexture frees a previously uploaded GPU texture and zeroes its GLID.
func DeleteTexture(tex *scene.Texture) {
	if tex == nil || tex.GLID == 0 {
		return
	}
	gl.DeleteTextures(1, &tex.GLID)
	tex.GLID = 0
}

func DeleteCubeMap(cube *scene.CubeMap) {
	if cube == nil || cube.GLID == 0 {
		return
	}
	gl.DeleteTextures(1, &cube.GLID)
	cube.GLID = 0
}
