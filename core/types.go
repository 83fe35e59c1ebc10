package core

import (
	"vr-scene/math"
)

type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}
)

// ColorFromHex converts a 0xRRGGBB value to an opaque colour.
func ColorFromHex(hex uint32) Color {
	return Color{
		R: float32((hex>>16)&0xff) / 255,
		G: float32((hex>>8)&0xff) / 255,
		B: float32(hex&0xff) / 255,
		A: 1,
	}
}

type Vertex struct {
	Position  math.Vec3
	Normal    math.Vec3
	UV        math.Vec2
	Color     Color
	Tangent   math.Vec3
	Bitangent math.Vec3
	// Skinning influences; all-zero weights mean the vertex is not skinned.
	Joints  [4]float32
	Weights [4]float32
}

// Transform is a node's local TRS. Rotation holds an orientation (set by
// model files and animations) and Euler holds additional XYZ angles in
// radians (driven by code, e.g. spinning objects). Both apply, quaternion first.
type Transform struct {
	Position math.Vec3
	Rotation math.Quaternion
	Euler    math.Vec3
	Scale    math.Vec3
}

func NewTransform() Transform {
	return Transform{
		Position: math.Vec3Zero,
		Rotation: math.QuaternionIdentity(),
		Scale:    math.Vec3One,
	}
}

func (t Transform) GetMatrix() math.Mat4 {
	scale := math.Mat4Scale(t.Scale)
	rotation := t.Rotation.ToMat4()
	translation := math.Mat4Translation(t.Position)
	if t.Euler != math.Vec3Zero {
		rotation = rotation.Mul(math.Mat4EulerXYZ(t.Euler))
	}
	return scale.Mul(rotation).Mul(translation)
}
