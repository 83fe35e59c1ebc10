package scene

import (
	"github.com/chewxy/math32"

	"vr-scene/math"
)

// ComputeTangents fills per-vertex tangent and bitangent vectors for normal
// mapping from the triangle UV gradients. Line meshes are left alone.
func ComputeTangents(m *Mesh) {
	if m.DrawMode != DrawTriangles {
		return
	}
	for i := range m.Vertices {
		m.Vertices[i].Tangent = math.Vec3{}
		m.Vertices[i].Bitangent = math.Vec3{}
	}

	for i := 0; i+2 < len(m.Indices); i += 3 {
		i0, i1, i2 := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		v0, v1, v2 := &m.Vertices[i0], &m.Vertices[i1], &m.Vertices[i2]

		e1 := v1.Position.Sub(v0.Position)
		e2 := v2.Position.Sub(v0.Position)
		d1 := v1.UV.Sub(v0.UV)
		d2 := v2.UV.Sub(v0.UV)

		denom := d1.X*d2.Y - d2.X*d1.Y
		if denom == 0 {
			continue
		}
		r := 1 / denom
		t := e1.Mul(d2.Y * r).Sub(e2.Mul(d1.Y * r))
		b := e2.Mul(d1.X * r).Sub(e1.Mul(d2.X * r))

		v0.Tangent, v1.Tangent, v2.Tangent = v0.Tangent.Add(t), v1.Tangent.Add(t), v2.Tangent.Add(t)
		v0.Bitangent, v1.Bitangent, v2.Bitangent = v0.Bitangent.Add(b), v1.Bitangent.Add(b), v2.Bitangent.Add(b)
	}

	for i := range m.Vertices {
		v := &m.Vertices[i]
		n := v.Normal

		// Gram-Schmidt against the normal.
		t := v.Tangent.Sub(n.Mul(n.Dot(v.Tangent)))
		if t.LengthSqr() < 1e-8 {
			if math32.Abs(n.X) < 0.9 {
				t = math.Vec3Right.Sub(n.Mul(n.X))
			} else {
				t = math.Vec3Up.Sub(n.Mul(n.Y))
			}
		}
		v.Tangent = t.Normalize()

		if v.Bitangent.LengthSqr() < 1e-8 {
			v.Bitangent = n.Cross(v.Tangent)
		}
		v.Bitangent = v.Bitangent.Normalize()
	}
}
