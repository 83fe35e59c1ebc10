package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"vr-scene/math"
	"vr-scene/scene"
)

// Skybox draws a cube map on an inverted unit cube. The vertex shader
// writes z = w so every fragment lands on the far plane.
type Skybox struct {
	vao  uint32
	vbo  uint32
	prog uint32

	vpLoc int32
}

const skyVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;

uniform mat4 skyVP;

out vec3 fragDir;

void main() {
    fragDir = inPosition;
    vec4 pos = skyVP * vec4(inPosition, 1.0);
    gl_Position = pos.xyww;
}
` + "\x00"

// Cube maps are authored for a left-handed lookup, hence the flipped x.
const skyFragSrc = `
#version 410 core
in vec3 fragDir;
out vec4 outColor;

uniform samplerCube sky;

void main() {
    outColor = vec4(texture(sky, vec3(-fragDir.x, fragDir.yz)).rgb, 1.0);
}
` + "\x00"

// 36 positions for a unit cube, CCW from the outside. Culling is off while
// drawing so the inside faces show.
var skyboxVerts = []float32{
	// -Z face
	-1, -1, -1, 1, 1, -1, 1, -1, -1,
	1, 1, -1, -1, -1, -1, -1, 1, -1,
	// +Z face
	-1, -1, 1, 1, -1, 1, 1, 1, 1,
	1, 1, 1, -1, 1, 1, -1, -1, 1,
	// -X face
	-1, 1, 1, -1, 1, -1, -1, -1, -1,
	-1, -1, -1, -1, -1, 1, -1, 1, 1,
	// +X face
	1, 1, 1, 1, -1, -1, 1, 1, -1,
	1, -1, -1, 1, 1, 1, 1, -1, 1,
	// -Y face
	-1, -1, -1, 1, -1, -1, 1, -1, 1,
	1, -1, 1, -1, -1, 1, -1, -1, -1,
	// +Y face
	-1, 1, -1, 1, 1, 1, 1, 1, -1,
	1, 1, 1, -1, 1, -1, -1, 1, 1,
}

func NewSkybox() (*Skybox, error) {
	prog, err := newProgram(skyVertSrc, skyFragSrc)
	if err != nil {
		return nil, fmt.Errorf("skybox shader: %w", err)
	}
	sb := &Skybox{
		prog:  prog,
		vpLoc: uniform(prog, "skyVP"),
	}
	gl.UseProgram(prog)
	gl.Uniform1i(uniform(prog, "sky"), unitSky)

	gl.GenVertexArrays(1, &sb.vao)
	gl.GenBuffers(1, &sb.vbo)
	gl.BindVertexArray(sb.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, sb.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(skyboxVerts)*4, gl.Ptr(skyboxVerts), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 12, gl.PtrOffset(0))
	gl.BindVertexArray(0)

	return sb, nil
}

// Draw renders cube, which must already be uploaded, around the camera.
// The translation row of view is dropped so the sky stays at infinity.
func (sb *Skybox) Draw(cube *scene.CubeMap, view, proj math.Mat4) {
	skyView := view
	skyView[3][0] = 0
	skyView[3][1] = 0
	skyView[3][2] = 0
	skyVP := skyView.Mul(proj)

	gl.DepthFunc(gl.LEQUAL)
	gl.DepthMask(false)
	gl.Disable(gl.CULL_FACE)
	gl.Disable(gl.BLEND)

	gl.UseProgram(sb.prog)
	gl.UniformMatrix4fv(sb.vpLoc, 1, false, &skyVP[0][0])
	gl.ActiveTexture(gl.TEXTURE0 + unitSky)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, cube.GLID)

	gl.BindVertexArray(sb.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 36)
	gl.BindVertexArray(0)

	gl.Enable(gl.CULL_FACE)
	gl.DepthMask(true)
	gl.DepthFunc(gl.LESS)
}

// Destroy frees all GPU resources owned by this skybox.
func (sb *Skybox) Destroy() {
	gl.DeleteVertexArrays(1, &sb.vao)
	gl.DeleteBuffers(1, &sb.vbo)
	gl.DeleteProgram(sb.prog)
}
