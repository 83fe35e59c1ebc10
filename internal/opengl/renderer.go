// Package opengl is the OpenGL 4.1 core backend: scene shader, shadow map,
// cube-map sky and the off-screen target the frame is drawn into. Every
// call must happen on the thread that owns the GL context.
package opengl

import (
	"fmt"
	"log/slog"
	"strings"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"vr-scene/core"
	"vr-scene/math"
	"vr-scene/scene"
)

// GPUMesh holds the OpenGL buffer objects for an uploaded mesh.
type GPUMesh struct {
	VAO        uint32
	VBO        uint32
	EBO        uint32
	IndexCount int32
	HasIndices bool
}

// Draw is one mesh instance of a frame.
type Draw struct {
	Mesh          *scene.Mesh
	Model         math.Mat4
	Joints        []math.Mat4 // nil for rigid meshes
	ReceiveShadow bool
}

// Frame carries the per-frame state set by BeginFrame.
type Frame struct {
	Clear     core.Color
	Ambient   core.Color
	Lights    []*scene.Light
	CameraPos math.Vec3
	// LightViewProj and ShadowLight are only read when Shadows is set.
	// ShadowLight indexes Lights.
	LightViewProj math.Mat4
	Shadows       bool
	ShadowLight   int
}

type sceneUniforms struct {
	mvp, model, lightViewProj int32
	skinned, jointMatrices    int32

	lightCount     int32
	lightPos       [MaxLights]int32
	lightColor     [MaxLights]int32
	lightIntensity [MaxLights]int32
	lightRange     [MaxLights]int32

	ambientColor, cameraPos int32

	matAlbedo, matOpacity, matMetallic, matRoughness, matEmissive int32
	vertexColors, unlit, receiveShadow                            int32
	displacementScale                                             int32

	hasAlbedoMap, hasNormalMap, hasRoughnessMap, hasMetalnessMap int32
	hasAOMap, hasEmissiveMap, hasDisplacementMap                 int32

	hasShadows, shadowLight, shadowTexel int32
}

// Renderer is the OpenGL rendering backend.
type Renderer struct {
	program uint32
	u       sceneUniforms

	shadowMap *ShadowMap
	skybox    *Skybox
	target    *RenderTarget

	toneMapping bool
	exposure    float32

	logger    *slog.Logger
	gpuMeshes map[*scene.Mesh]*GPUMesh
	textures  map[*scene.Texture]struct{}
	cubes     map[*scene.CubeMap]struct{}
	// badTextures failed to upload and are skipped without logging again.
	badTextures map[*scene.Texture]struct{}
}

// NewRenderer initialises OpenGL and compiles the scene shader. The GLFW
// context must be current.
func NewRenderer(logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initialize OpenGL: %w", err)
	}
	logger.Info("OpenGL ready",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)))

	prog, err := newProgram(sceneVertSrc, sceneFragSrc)
	if err != nil {
		return nil, fmt.Errorf("scene shader: %w", err)
	}
	sky, err := NewSkybox()
	if err != nil {
		gl.DeleteProgram(prog)
		return nil, err
	}

	r := &Renderer{
		program:     prog,
		skybox:      sky,
		exposure:    1,
		logger:      logger,
		gpuMeshes:   make(map[*scene.Mesh]*GPUMesh),
		textures:    make(map[*scene.Texture]struct{}),
		cubes:       make(map[*scene.CubeMap]struct{}),
		badTextures: make(map[*scene.Texture]struct{}),
	}
	r.lookupUniforms()

	gl.UseProgram(prog)
	for name, unit := range map[string]int32{
		"albedoMap":       unitAlbedo,
		"shadowMap":       unitShadow,
		"normalMap":       unitNormal,
		"roughnessMap":    unitRoughness,
		"metalnessMap":    unitMetalness,
		"aoMap":           unitAO,
		"emissiveMap":     unitEmissive,
		"displacementMap": unitDisplacement,
	} {
		gl.Uniform1i(uniform(prog, name), unit)
	}
	ident := math.Mat4Identity()
	gl.UniformMatrix4fv(r.u.lightViewProj, 1, false, &ident[0][0])

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)

	return r, nil
}

func uniform(prog uint32, name string) int32 {
	return gl.GetUniformLocation(prog, gl.Str(name+"\x00"))
}

func (r *Renderer) lookupUniforms() {
	p := r.program
	r.u = sceneUniforms{
		mvp:           uniform(p, "mvp"),
		model:         uniform(p, "model"),
		lightViewProj: uniform(p, "lightViewProj"),
		skinned:       uniform(p, "skinned"),
		jointMatrices: uniform(p, "jointMatrices"),

		lightCount:   uniform(p, "lightCount"),
		ambientColor: uniform(p, "ambientColor"),
		cameraPos:    uniform(p, "cameraPos"),

		matAlbedo:         uniform(p, "matAlbedo"),
		matOpacity:        uniform(p, "matOpacity"),
		matMetallic:       uniform(p, "matMetallic"),
		matRoughness:      uniform(p, "matRoughness"),
		matEmissive:       uniform(p, "matEmissive"),
		vertexColors:      uniform(p, "vertexColors"),
		unlit:             uniform(p, "unlit"),
		receiveShadow:     uniform(p, "receiveShadow"),
		displacementScale: uniform(p, "displacementScale"),

		hasAlbedoMap:       uniform(p, "hasAlbedoMap"),
		hasNormalMap:       uniform(p, "hasNormalMap"),
		hasRoughnessMap:    uniform(p, "hasRoughnessMap"),
		hasMetalnessMap:    uniform(p, "hasMetalnessMap"),
		hasAOMap:           uniform(p, "hasAOMap"),
		hasEmissiveMap:     uniform(p, "hasEmissiveMap"),
		hasDisplacementMap: uniform(p, "hasDisplacementMap"),

		hasShadows:  uniform(p, "hasShadows"),
		shadowLight: uniform(p, "shadowLight"),
		shadowTexel: uniform(p, "shadowTexel"),
	}
	for i := 0; i < MaxLights; i++ {
		r.u.lightPos[i] = uniform(p, fmt.Sprintf("lightPos[%d]", i))
		r.u.lightColor[i] = uniform(p, fmt.Sprintf("lightColor[%d]", i))
		r.u.lightIntensity[i] = uniform(p, fmt.Sprintf("lightIntensity[%d]", i))
		r.u.lightRange[i] = uniform(p, fmt.Sprintf("lightRange[%d]", i))
	}
}

// ── Shadow map ────────────────────────────────────────────────────────────────

// EnableShadows creates the depth FBO.
func (r *Renderer) EnableShadows(size int) error {
	if r.shadowMap != nil {
		r.shadowMap.Destroy()
	}
	sm, err := NewShadowMap(size)
	if err != nil {
		return err
	}
	r.shadowMap = sm
	return nil
}

func (r *Renderer) HasShadowMap() bool {
	return r.shadowMap != nil
}

// ShadowPass renders casters into the shadow map from lightVP. The caller
// must bind the frame target afterwards; BeginFrame does.
func (r *Renderer) ShadowPass(lightVP math.Mat4, casters []Draw) {
	if r.shadowMap == nil {
		return
	}
	r.shadowMap.Render(lightVP, casters, r.ensureUploaded)
}

// ── Frame ─────────────────────────────────────────────────────────────────────

// BeginFrame binds an off-screen target of width×height pixels, clears it
// and sets the lighting uniforms.
func (r *Renderer) BeginFrame(width, height int, f Frame) error {
	if r.target == nil {
		t, err := NewRenderTarget(width, height)
		if err != nil {
			return err
		}
		t.ToneMapping, t.Exposure = r.toneMapping, r.exposure
		r.target = t
	} else if int32(width) != r.target.Width || int32(height) != r.target.Height {
		if err := r.target.Resize(width, height); err != nil {
			return err
		}
	}
	r.target.Bind()

	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
	gl.ClearColor(f.Clear.R, f.Clear.G, f.Clear.B, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.UseProgram(r.program)
	gl.Uniform3f(r.u.ambientColor, f.Ambient.R, f.Ambient.G, f.Ambient.B)
	gl.Uniform3f(r.u.cameraPos, f.CameraPos.X, f.CameraPos.Y, f.CameraPos.Z)

	n := 0
	for _, l := range f.Lights {
		if l == nil || n >= MaxLights {
			continue
		}
		gl.Uniform3f(r.u.lightPos[n], l.Position.X, l.Position.Y, l.Position.Z)
		gl.Uniform3f(r.u.lightColor[n], l.Color.R, l.Color.G, l.Color.B)
		gl.Uniform1f(r.u.lightIntensity[n], l.Intensity)
		gl.Uniform1f(r.u.lightRange[n], l.Range)
		n++
	}
	gl.Uniform1i(r.u.lightCount, int32(n))

	if f.Shadows && r.shadowMap != nil {
		gl.UniformMatrix4fv(r.u.lightViewProj, 1, false, &f.LightViewProj[0][0])
		gl.ActiveTexture(gl.TEXTURE0 + unitShadow)
		gl.BindTexture(gl.TEXTURE_2D, r.shadowMap.DepthTex)
		gl.Uniform1i(r.u.hasShadows, 1)
		gl.Uniform1i(r.u.shadowLight, int32(f.ShadowLight))
		gl.Uniform1f(r.u.shadowTexel, 1/float32(r.shadowMap.Size))
	} else {
		gl.Uniform1i(r.u.hasShadows, 0)
		gl.Uniform1i(r.u.shadowLight, -1)
	}
	return nil
}

// SetToneMapping configures how the HDR frame is mapped for display.
func (r *Renderer) SetToneMapping(enabled bool, exposure float32) {
	r.toneMapping, r.exposure = enabled, exposure
	if r.target != nil {
		r.target.ToneMapping, r.target.Exposure = enabled, exposure
	}
}

// DrawSkybox draws the cube map behind everything already in the depth
// buffer.
func (r *Renderer) DrawSkybox(cube *scene.CubeMap, view, proj math.Mat4) {
	if cube == nil {
		return
	}
	if cube.GLID == 0 {
		if err := UploadCubeMap(cube); err != nil {
			r.logger.Error("skybox upload failed", "err", err)
			return
		}
		r.cubes[cube] = struct{}{}
	}
	r.skybox.Draw(cube, view, proj)
}

// Present encodes the frame for display and scales it onto the default
// framebuffer.
func (r *Renderer) Present(framebufferWidth, framebufferHeight int) {
	if r.target == nil {
		return
	}
	r.target.Resolve(int32(framebufferWidth), int32(framebufferHeight))
}

// DrawMesh draws one mesh with its material. Blended materials should be
// drawn after all opaque ones.
func (r *Renderer) DrawMesh(d Draw, viewProj math.Mat4) {
	gpu := r.ensureUploaded(d.Mesh)
	if gpu == nil {
		return
	}
	mat := d.Mesh.Material
	if mat == nil {
		mat = scene.DefaultMaterial()
	}

	gl.UseProgram(r.program)
	mvp := d.Model.Mul(viewProj)
	gl.UniformMatrix4fv(r.u.mvp, 1, false, &mvp[0][0])
	gl.UniformMatrix4fv(r.u.model, 1, false, &d.Model[0][0])
	setJoints(r.u.skinned, r.u.jointMatrices, d.Joints)
	gl.Uniform1i(r.u.receiveShadow, boolToInt(d.ReceiveShadow))

	r.applyMaterial(mat)
	applyRasterState(mat)

	primitive := uint32(gl.TRIANGLES)
	if d.Mesh.DrawMode == scene.DrawLines {
		primitive = gl.LINES
	}
	gl.BindVertexArray(gpu.VAO)
	if gpu.HasIndices {
		gl.DrawElements(primitive, gpu.IndexCount, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(primitive, 0, int32(len(d.Mesh.Vertices)))
	}
	gl.BindVertexArray(0)
}

func setJoints(skinnedLoc, jointsLoc int32, joints []math.Mat4) {
	if len(joints) == 0 {
		gl.Uniform1i(skinnedLoc, 0)
		return
	}
	n := min(len(joints), maxJoints)
	gl.Uniform1i(skinnedLoc, 1)
	gl.UniformMatrix4fv(jointsLoc, int32(n), false, &joints[0][0][0])
}

func applyRasterState(mat *scene.Material) {
	if mat.DoubleSided {
		gl.Disable(gl.CULL_FACE)
	} else {
		gl.Enable(gl.CULL_FACE)
	}
	if !mat.IsBlended() {
		gl.Disable(gl.BLEND)
		gl.DepthMask(true)
		return
	}
	gl.Enable(gl.BLEND)
	gl.DepthMask(false)
	switch mat.Blending {
	case scene.BlendAdditive:
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
	default:
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	}
}

// applyMaterial sets the material uniforms and binds its textures,
// uploading them on first use.
func (r *Renderer) applyMaterial(mat *scene.Material) {
	gl.Uniform3f(r.u.matAlbedo, mat.Albedo.R, mat.Albedo.G, mat.Albedo.B)
	opacity := float32(1)
	if mat.Transparent {
		opacity = mat.Opacity
	}
	gl.Uniform1f(r.u.matOpacity, opacity)
	gl.Uniform1f(r.u.matMetallic, mat.Metallic)
	gl.Uniform1f(r.u.matRoughness, mat.Roughness)
	gl.Uniform3f(r.u.matEmissive, mat.Emissive.R, mat.Emissive.G, mat.Emissive.B)
	gl.Uniform1i(r.u.vertexColors, boolToInt(mat.VertexColors))
	gl.Uniform1i(r.u.unlit, boolToInt(mat.Unlit))
	gl.Uniform1f(r.u.displacementScale, mat.DisplacementScale)

	r.bindMap(r.u.hasAlbedoMap, unitAlbedo, mat.AlbedoMap)
	r.bindMap(r.u.hasNormalMap, unitNormal, mat.NormalMap)
	r.bindMap(r.u.hasRoughnessMap, unitRoughness, mat.RoughnessMap)
	r.bindMap(r.u.hasMetalnessMap, unitMetalness, mat.MetalnessMap)
	r.bindMap(r.u.hasAOMap, unitAO, mat.AOMap)
	r.bindMap(r.u.hasEmissiveMap, unitEmissive, mat.EmissiveMap)
	r.bindMap(r.u.hasDisplacementMap, unitDisplacement, mat.DisplacementMap)
}

func (r *Renderer) bindMap(flagLoc int32, unit uint32, tex *scene.Texture) {
	if !r.ensureTexture(tex) {
		gl.Uniform1i(flagLoc, 0)
		return
	}
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, tex.GLID)
	gl.Uniform1i(flagLoc, 1)
}

func (r *Renderer) ensureTexture(tex *scene.Texture) bool {
	if tex == nil {
		return false
	}
	if tex.GLID != 0 {
		return true
	}
	if _, bad := r.badTextures[tex]; bad {
		return false
	}
	if err := UploadTexture(tex); err != nil {
		r.logger.Warn("texture upload failed", "texture", tex.Name, "err", err)
		r.badTextures[tex] = struct{}{}
		return false
	}
	r.textures[tex] = struct{}{}
	return true
}

// ── Resource management ───────────────────────────────────────────────────────

// ReleaseMesh frees GPU buffers for the given mesh.
func (r *Renderer) ReleaseMesh(mesh *scene.Mesh) {
	if gpu, ok := r.gpuMeshes[mesh]; ok {
		gl.DeleteVertexArrays(1, &gpu.VAO)
		gl.DeleteBuffers(1, &gpu.VBO)
		if gpu.HasIndices {
			gl.DeleteBuffers(1, &gpu.EBO)
		}
		delete(r.gpuMeshes, mesh)
		mesh.GPUData = nil
	}
}

// Destroy releases all GPU resources.
func (r *Renderer) Destroy() {
	for mesh := range r.gpuMeshes {
		r.ReleaseMesh(mesh)
	}
	for tex := range r.textures {
		DeleteTexture(tex)
	}
	for cube := range r.cubes {
		DeleteCubeMap(cube)
	}
	if r.shadowMap != nil {
		r.shadowMap.Destroy()
	}
	if r.target != nil {
		r.target.Destroy()
	}
	r.skybox.Destroy()
	gl.DeleteProgram(r.program)
}

// ensureUploaded uploads vertex/index data if not already done.
func (r *Renderer) ensureUploaded(mesh *scene.Mesh) *GPUMesh {
	if gpu, ok := r.gpuMeshes[mesh]; ok {
		return gpu
	}
	if len(mesh.Vertices) == 0 {
		return nil
	}

	stride := int32(unsafe.Sizeof(core.Vertex{}))
	gpu := &GPUMesh{
		IndexCount: int32(len(mesh.Indices)),
		HasIndices: len(mesh.Indices) > 0,
	}

	gl.GenVertexArrays(1, &gpu.VAO)
	gl.GenBuffers(1, &gpu.VBO)
	gl.BindVertexArray(gpu.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(mesh.Vertices)*int(stride), gl.Ptr(mesh.Vertices), gl.STATIC_DRAW)

	var v core.Vertex
	attribs := []struct {
		size   int32
		offset uintptr
	}{
		{3, unsafe.Offsetof(v.Position)},
		{3, unsafe.Offsetof(v.Normal)},
		{2, unsafe.Offsetof(v.UV)},
		{4, unsafe.Offsetof(v.Color)},
		{3, unsafe.Offsetof(v.Tangent)},
		{3, unsafe.Offsetof(v.Bitangent)},
		{4, unsafe.Offsetof(v.Joints)},
		{4, unsafe.Offsetof(v.Weights)},
	}
	for i, a := range attribs {
		gl.EnableVertexAttribArray(uint32(i))
		gl.VertexAttribPointer(uint32(i), a.size, gl.FLOAT, false, stride, gl.PtrOffset(int(a.offset)))
	}

	if gpu.HasIndices {
		gl.GenBuffers(1, &gpu.EBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gpu.EBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, gl.Ptr(mesh.Indices), gl.STATIC_DRAW)
	}
	gl.BindVertexArray(0)

	r.gpuMeshes[mesh] = gpu
	mesh.GPUData = gpu
	return gpu
}

// ── Shader helpers ────────────────────────────────────────────────────────────

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vert)
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)
	gl.DeleteShader(vert)
	gl.DeleteShader(frag)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("link failed: %v", log)
	}
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile failed: %v", log)
	}
	return shader, nil
}

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
