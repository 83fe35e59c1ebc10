package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"vr-scene/math"
	"vr-scene/scene"
)

// ShadowMap is a depth-only framebuffer rendered from one light, sampled
// with hardware PCF by the scene shader.
type ShadowMap struct {
	FBO      uint32
	DepthTex uint32
	Size     int32

	prog        uint32
	lightMVPLoc int32
	skinnedLoc  int32
	jointsLoc   int32
}

// NewShadowMap creates a size×size depth target and its depth-only program.
func NewShadowMap(size int) (*ShadowMap, error) {
	prog, err := newProgram(depthVertSrc, depthFragSrc)
	if err != nil {
		return nil, fmt.Errorf("depth shader: %w", err)
	}
	sm := &ShadowMap{
		Size:        int32(size),
		prog:        prog,
		lightMVPLoc: uniform(prog, "lightMVP"),
		skinnedLoc:  uniform(prog, "skinned"),
		jointsLoc:   uniform(prog, "jointMatrices"),
	}

	gl.GenTextures(1, &sm.DepthTex)
	gl.BindTexture(gl.TEXTURE_2D, sm.DepthTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT32F, sm.Size, sm.Size, 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_BORDER)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_BORDER)
	// outside the map counts as lit
	border := [4]float32{1, 1, 1, 1}
	gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &border[0])
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_MODE, gl.COMPARE_REF_TO_TEXTURE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_FUNC, gl.LEQUAL)

	gl.GenFramebuffers(1, &sm.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, sm.FBO)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, sm.DepthTex, 0)
	gl.DrawBuffer(gl.NONE)
	gl.ReadBuffer(gl.NONE)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		sm.Destroy()
		return nil, fmt.Errorf("shadow FBO incomplete: status=0x%X", status)
	}
	return sm, nil
}

// Render clears the map and draws every triangle caster from lightVP.
func (sm *ShadowMap) Render(lightVP math.Mat4, casters []Draw, upload func(*scene.Mesh) *GPUMesh) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, sm.FBO)
	gl.Viewport(0, 0, sm.Size, sm.Size)
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
	gl.Clear(gl.DEPTH_BUFFER_BIT)
	// front-face culling keeps acne off lit surfaces
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.FRONT)
	gl.UseProgram(sm.prog)

	for _, d := range casters {
		if d.Mesh.DrawMode != scene.DrawTriangles {
			continue
		}
		gpu := upload(d.Mesh)
		if gpu == nil {
			continue
		}
		lightMVP := d.Model.Mul(lightVP)
		gl.UniformMatrix4fv(sm.lightMVPLoc, 1, false, &lightMVP[0][0])
		setJoints(sm.skinnedLoc, sm.jointsLoc, d.Joints)

		gl.BindVertexArray(gpu.VAO)
		if gpu.HasIndices {
			gl.DrawElements(gl.TRIANGLES, gpu.IndexCount, gl.UNSIGNED_INT, nil)
		} else {
			gl.DrawArrays(gl.TRIANGLES, 0, int32(len(d.Mesh.Vertices)))
		}
	}
	gl.BindVertexArray(0)
	gl.CullFace(gl.BACK)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// Destroy frees GPU resources.
func (sm *ShadowMap) Destroy() {
	if sm.FBO != 0 {
		gl.DeleteFramebuffers(1, &sm.FBO)
		sm.FBO = 0
	}
	if sm.DepthTex != 0 {
		gl.DeleteTextures(1, &sm.DepthTex)
		sm.DepthTex = 0
	}
	if sm.prog != 0 {
		gl.DeleteProgram(sm.prog)
		sm.prog = 0
	}
}
