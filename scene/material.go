package scene

import "vr-scene/core"

type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendAdditive
)

// Material is a metallic-roughness surface description. Maps are optional;
// a nil map falls back to the scalar factor.
type Material struct {
	Name      string
	Albedo    core.Color // multiplied with AlbedoMap when set
	Metallic  float32    // 0 = dielectric, 1 = fully metallic
	Roughness float32    // 0 = perfectly smooth, 1 = fully rough
	Emissive  core.Color

	// Opacity only takes effect when Transparent is set.
	Opacity      float32
	Transparent  bool
	Blending     BlendMode
	VertexColors bool
	Unlit        bool
	DoubleSided  bool

	AlbedoMap *Texture
	// Tangent-space normal map, OpenGL (+Y) convention.
	NormalMap *Texture
	// Roughness is read from the G channel, metalness from B, ambient
	// occlusion from R. glTF packs all three into one texture.
	RoughnessMap *Texture
	MetalnessMap *Texture
	AOMap        *Texture
	EmissiveMap  *Texture

	// DisplacementMap offsets vertices along their normal by
	// DisplacementScale * R in the vertex shader.
	DisplacementMap   *Texture
	DisplacementScale float32
}

// DefaultMaterial returns a plain white dielectric.
func DefaultMaterial() *Material {
	return NewStandardMaterial("Default")
}

func NewStandardMaterial(name string) *Material {
	return &Material{
		Name:      name,
		Albedo:    core.ColorWhite,
		Metallic:  0,
		Roughness: 1,
		Opacity:   1,
	}
}

// NewLineMaterial is an unlit material that takes its colour from vertices.
func NewLineMaterial(name string) *Material {
	m := NewStandardMaterial(name)
	m.Unlit = true
	m.VertexColors = true
	return m
}

// IsBlended reports whether the material must be drawn in the blended pass.
func (m *Material) IsBlended() bool {
	return m.Transparent || m.Blending == BlendAdditive
}
