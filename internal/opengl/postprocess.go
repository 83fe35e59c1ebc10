package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// RenderTarget is the off-screen HDR buffer a frame is drawn into. Its size
// is the drawing-buffer size (logical size times the clamped pixel ratio),
// which may differ from the window framebuffer; Resolve scales it onto the
// framebuffer while encoding to sRGB.
type RenderTarget struct {
	FBO      uint32
	ColorTex uint32 // RGBA16F
	DepthRB  uint32
	Width    int32
	Height   int32

	prog       uint32
	hdrLoc     int32
	expLoc     int32
	toneMapLoc int32
	quadVAO    uint32

	Exposure float32
	// ToneMapping compresses HDR with an exponential curve; off clamps.
	ToneMapping bool
}

// ppVertSrc draws a fullscreen triangle from gl_VertexID.
const ppVertSrc = `
#version 410 core
out vec2 fragUV;
void main() {
    const vec2 pos[3] = vec2[3](
        vec2(-1.0, -1.0),
        vec2( 3.0, -1.0),
        vec2(-1.0,  3.0)
    );
    gl_Position = vec4(pos[gl_VertexID], 0.0, 1.0);
    fragUV      = pos[gl_VertexID] * 0.5 + 0.5;
}
` + "\x00"

const ppFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D hdrBuffer;
uniform float     exposure;
uniform bool      toneMapping;

vec3 linearToSRGB(vec3 c) {
    vec3 lo = c * 12.92;
    vec3 hi = 1.055 * pow(c, vec3(1.0 / 2.4)) - 0.055;
    return mix(lo, hi, step(vec3(0.0031308), c));
}

void main() {
    vec3 hdr = texture(hdrBuffer, fragUV).rgb * exposure;
    vec3 mapped = toneMapping ? vec3(1.0) - exp(-hdr) : clamp(hdr, 0.0, 1.0);
    outColor = vec4(linearToSRGB(mapped), 1.0);
}
` + "\x00"

func NewRenderTarget(width, height int) (*RenderTarget, error) {
	prog, err := newProgram(ppVertSrc, ppFragSrc)
	if err != nil {
		return nil, fmt.Errorf("post-process shader: %w", err)
	}
	rt := &RenderTarget{
		prog:       prog,
		hdrLoc:     uniform(prog, "hdrBuffer"),
		expLoc:     uniform(prog, "exposure"),
		toneMapLoc: uniform(prog, "toneMapping"),
		Exposure:   1,
	}
	gl.UseProgram(prog)
	gl.Uniform1i(rt.hdrLoc, 0)
	gl.GenVertexArrays(1, &rt.quadVAO)

	if err := rt.allocFBO(width, height); err != nil {
		rt.Destroy()
		return nil, err
	}
	return rt, nil
}

func (rt *RenderTarget) allocFBO(width, height int) error {
	rt.Width = int32(max(width, 1))
	rt.Height = int32(max(height, 1))

	gl.GenTextures(1, &rt.ColorTex)
	gl.BindTexture(gl.TEXTURE_2D, rt.ColorTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA16F, rt.Width, rt.Height, 0, gl.RGBA, gl.HALF_FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.GenRenderbuffers(1, &rt.DepthRB)
	gl.BindRenderbuffer(gl.RENDERBUFFER, rt.DepthRB)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, rt.Width, rt.Height)
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)

	gl.GenFramebuffers(1, &rt.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, rt.FBO)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, rt.ColorTex, 0)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, rt.DepthRB)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("render target %dx%d incomplete: status=0x%X", rt.Width, rt.Height, status)
	}
	return nil
}

func (rt *RenderTarget) freeFBO() {
	if rt.FBO != 0 {
		gl.DeleteFramebuffers(1, &rt.FBO)
		rt.FBO = 0
	}
	if rt.ColorTex != 0 {
		gl.DeleteTextures(1, &rt.ColorTex)
		rt.ColorTex = 0
	}
	if rt.DepthRB != 0 {
		gl.DeleteRenderbuffers(1, &rt.DepthRB)
		rt.DepthRB = 0
	}
}

// Resize reallocates the buffers at the new pixel size.
func (rt *RenderTarget) Resize(width, height int) error {
	rt.freeFBO()
	return rt.allocFBO(width, height)
}

// Bind makes the target the draw framebuffer with a matching viewport.
func (rt *RenderTarget) Bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, rt.FBO)
	gl.Viewport(0, 0, rt.Width, rt.Height)
}

// Resolve draws the target onto the default framebuffer of the given size.
func (rt *RenderTarget) Resolve(framebufferWidth, framebufferHeight int32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, framebufferWidth, framebufferHeight)
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.BLEND)

	gl.UseProgram(rt.prog)
	gl.Uniform1f(rt.expLoc, rt.Exposure)
	gl.Uniform1i(rt.toneMapLoc, boolToInt(rt.ToneMapping))
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, rt.ColorTex)
	gl.BindVertexArray(rt.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)

	gl.Enable(gl.DEPTH_TEST)
}

// Destroy frees all GPU resources owned by the target.
func (rt *RenderTarget) Destroy() {
	rt.freeFBO()
	if rt.prog != 0 {
		gl.DeleteProgram(rt.prog)
		rt.prog = 0
	}
	if rt.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &rt.quadVAO)
		rt.quadVAO = 0
	}
}
