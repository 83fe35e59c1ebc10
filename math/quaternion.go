package math

import "github.com/chewxy/math32"

type Quaternion struct {
	X, Y, Z, W float32
}

func QuaternionIdentity() Quaternion {
	return Quaternion{X: 0, Y: 0, Z: 0, W: 1}
}

func QuaternionFromAxisAngle(axis Vec3, angle float32) Quaternion {
	s, c := math32.Sincos(angle / 2)
	axis = axis.Normalize()
	return Quaternion{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: c,
	}
}

// QuaternionFromEuler converts intrinsic XYZ Euler angles (radians).
func QuaternionFromEuler(euler Vec3) Quaternion {
	s1, c1 := math32.Sincos(euler.X / 2)
	s2, c2 := math32.Sincos(euler.Y / 2)
	s3, c3 := math32.Sincos(euler.Z / 2)

	return Quaternion{
		X: s1*c2*c3 + c1*s2*s3,
		Y: c1*s2*c3 - s1*c2*s3,
		Z: c1*c2*s3 + s1*s2*c3,
		W: c1*c2*c3 - s1*s2*s3,
	}
}

func (q Quaternion) Mul(other Quaternion) Quaternion {
	return Quaternion{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

func (q Quaternion) Dot(other Quaternion) float32 {
	return q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
}

func (q Quaternion) Normalize() Quaternion {
	length := math32.Sqrt(q.Dot(q))
	if length > 0 {
		inv := 1 / length
		return Quaternion{X: q.X * inv, Y: q.Y * inv, Z: q.Z * inv, W: q.W * inv}
	}
	return q
}

func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

func (q Quaternion) RotateVector(v Vec3) Vec3 {
	qVec := Vec3{X: q.X, Y: q.Y, Z: q.Z}
	t := qVec.Cross(v).Mul(2)
	return v.Add(t.Mul(q.W)).Add(qVec.Cross(t))
}

func (q Quaternion) ToMat4() Mat4 {
	xx := q.X * q.X
	yy := q.Y * q.Y
	zz := q.Z * q.Z
	xy := q.X * q.Y
	xz := q.X * q.Z
	yz := q.Y * q.Z
	wx := q.W * q.X
	wy := q.W * q.Y
	wz := q.W * q.Z

	return Mat4{
		{1 - 2*(yy+zz), 2 * (xy + wz), 2 * (xz - wy), 0},
		{2 * (xy - wz), 1 - 2*(xx+zz), 2 * (yz + wx), 0},
		{2 * (xz + wy), 2 * (yz - wx), 1 - 2*(xx+yy), 0},
		{0, 0, 0, 1},
	}
}

func (q Quaternion) Lerp(other Quaternion, t float32) Quaternion {
	return Quaternion{
		X: q.X + (other.X-q.X)*t,
		Y: q.Y + (other.Y-q.Y)*t,
		Z: q.Z + (other.Z-q.Z)*t,
		W: q.W + (other.W-q.W)*t,
	}.Normalize()
}

func (q Quaternion) Slerp(other Quaternion, t float32) Quaternion {
	dot := q.Dot(other)
	if dot < 0 {
		dot = -dot
		other = Quaternion{-other.X, -other.Y, -other.Z, -other.W}
	}

	if dot > 0.9995 {
		return q.Lerp(other, t)
	}

	theta0 := math32.Acos(dot)
	theta := theta0 * t
	sinTheta := math32.Sin(theta)
	sinTheta0 := math32.Sin(theta0)

	s0 := math32.Cos(theta) - dot*sinTheta/sinTheta0
	s1 := sinTheta / sinTheta0

	return Quaternion{
		X: q.X*s0 + other.X*s1,
		Y: q.Y*s0 + other.Y*s1,
		Z: q.Z*s0 + other.Z*s1,
		W: q.W*s0 + other.W*s1,
	}
}

// QuaternionFromMat4 extracts the rotation of a matrix whose upper 3x3 is a
// pure rotation.
func QuaternionFromMat4(m Mat4) Quaternion {
	// a(i, j) is the column-vector element, the transpose of the storage.
	a := func(i, j int) float32 { return m[j][i] }

	trace := a(0, 0) + a(1, 1) + a(2, 2)
	var q Quaternion
	switch {
	case trace > 0:
		s := 0.5 / math32.Sqrt(trace+1)
		q.W = 0.25 / s
		q.X = (a(2, 1) - a(1, 2)) * s
		q.Y = (a(0, 2) - a(2, 0)) * s
		q.Z = (a(1, 0) - a(0, 1)) * s
	case a(0, 0) > a(1, 1) && a(0, 0) > a(2, 2):
		s := 2 * math32.Sqrt(1+a(0, 0)-a(1, 1)-a(2, 2))
		q.W = (a(2, 1) - a(1, 2)) / s
		q.X = 0.25 * s
		q.Y = (a(0, 1) + a(1, 0)) / s
		q.Z = (a(0, 2) + a(2, 0)) / s
	case a(1, 1) > a(2, 2):
		s := 2 * math32.Sqrt(1+a(1, 1)-a(0, 0)-a(2, 2))
		q.W = (a(0, 2) - a(2, 0)) / s
		q.X = (a(0, 1) + a(1, 0)) / s
		q.Y = 0.25 * s
		q.Z = (a(1, 2) + a(2, 1)) / s
	default:
		s := 2 * math32.Sqrt(1+a(2, 2)-a(0, 0)-a(1, 1))
		q.W = (a(1, 0) - a(0, 1)) / s
		q.X = (a(0, 2) + a(2, 0)) / s
		q.Y = (a(1, 2) + a(2, 1)) / s
		q.Z = 0.25 * s
	}
	return q.Normalize()
}

// Decompose splits an affine S*R*T matrix into its parts.
func (m Mat4) Decompose() (translation Vec3, rotation Quaternion, scale Vec3) {
	translation = m.Translation()
	rows := [3]Vec3{
		{X: m[0][0], Y: m[0][1], Z: m[0][2]},
		{X: m[1][0], Y: m[1][1], Z: m[1][2]},
		{X: m[2][0], Y: m[2][1], Z: m[2][2]},
	}
	scale = Vec3{X: rows[0].Length(), Y: rows[1].Length(), Z: rows[2].Length()}
	if rows[0].Cross(rows[1]).Dot(rows[2]) < 0 {
		scale.X = -scale.X
	}

	r := Mat4Identity()
	for i, s := range [3]float32{scale.X, scale.Y, scale.Z} {
		if s == 0 {
			return translation, QuaternionIdentity(), scale
		}
		row := rows[i].Mul(1 / s)
		r[i][0], r[i][1], r[i][2] = row.X, row.Y, row.Z
	}
	return translation, QuaternionFromMat4(r), scale
}
