package math

import "github.com/chewxy/math32"

// Vec2 carries texture coordinates.
type Vec2 struct {
	X, Y float32
}

func (v Vec2) Sub(other Vec2) Vec2 { return Vec2{v.X - other.X, v.Y - other.Y} }

type Vec3 struct {
	X, Y, Z float32
}

var (
	Vec3Zero  = Vec3{0, 0, 0}
	Vec3One   = Vec3{1, 1, 1}
	Vec3Up    = Vec3{0, 1, 0}
	Vec3Down  = Vec3{0, -1, 0}
	Vec3Right = Vec3{1, 0, 0}
	Vec3Front = Vec3{0, 0, 1}
	Vec3Back  = Vec3{0, 0, -1}
)

func NewVec3(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Splat returns a vector with all three components set to s.
func Splat(s float32) Vec3 {
	return Vec3{X: s, Y: s, Z: s}
}

// Vec3FromArray converts the [x, y, z] form used by glTF and config files.
func Vec3FromArray(a [3]float32) Vec3 {
	return Vec3{X: a[0], Y: a[1], Z: a[2]}
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Mul(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// MulVec multiplies component-wise.
func (v Vec3) MulVec(o Vec3) Vec3 { return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }

func (v Vec3) Dot(o Vec3) float32 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) LengthSqr() float32 { return v.Dot(v) }
func (v Vec3) Length() float32    { return math32.Sqrt(v.LengthSqr()) }

// Normalize returns v unchanged when it has zero length.
func (v Vec3) Normalize() Vec3 {
	if l := v.Length(); l > 0 {
		return v.Mul(1 / l)
	}
	return v
}

func (v Vec3) Distance(o Vec3) float32 { return v.Sub(o).Length() }
func (v Vec3) Negate() Vec3            { return Vec3{-v.X, -v.Y, -v.Z} }
func (v Vec3) ToVec4(w float32) Vec4   { return Vec4{v.X, v.Y, v.Z, w} }

// Vec4 is a homogeneous point or a frustum plane.
type Vec4 struct {
	X, Y, Z, W float32
}

func NewVec4(x, y, z, w float32) Vec4 {
	return Vec4{X: x, Y: y, Z: z, W: w}
}

// MulMat transforms a row vector: v * m.
func (v Vec4) MulMat(m Mat4) Vec4 {
	var out [4]float32
	in := [4]float32{v.X, v.Y, v.Z, v.W}
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			out[col] += in[row] * m[row][col]
		}
	}
	return Vec4{out[0], out[1], out[2], out[3]}
}

func (v Vec4) ToVec3() Vec3 { return Vec3{v.X, v.Y, v.Z} }

// ToVec3DivW performs the perspective divide, skipping it when W is zero.
func (v Vec4) ToVec3DivW() Vec3 {
	if v.W == 0 {
		return v.ToVec3()
	}
	return Vec3{v.X / v.W, v.Y / v.W, v.Z / v.W}
}
