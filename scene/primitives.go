package scene

import (
	"github.com/chewxy/math32"

	"vr-scene/core"
	"vr-scene/math"
)

var primitiveGray = core.Color{R: 0.8, G: 0.8, B: 0.8, A: 1.0}

// CreateSphere generates a UV sphere with counter-clockwise outward faces.
func CreateSphere(radius float32, segments, rings int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	if rings < 2 {
		rings = 2
	}

	var vertices []core.Vertex
	var indices []uint32

	for ring := 0; ring <= rings; ring++ {
		sinPhi, cosPhi := math32.Sincos(float32(ring) * math32.Pi / float32(rings))

		for seg := 0; seg <= segments; seg++ {
			sinTheta, cosTheta := math32.Sincos(float32(seg) * 2 * math32.Pi / float32(segments))

			normal := math.Vec3{X: sinPhi * cosTheta, Y: cosPhi, Z: sinPhi * sinTheta}
			vertices = append(vertices, core.Vertex{
				Position: normal.Mul(radius),
				Normal:   normal,
				UV:       math.Vec2{X: float32(seg) / float32(segments), Y: float32(ring) / float32(rings)},
				Color:    primitiveGray,
			})
		}
	}

	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			current := uint32(ring*(segments+1) + seg)
			next := current + uint32(segments+1)

			if ring != 0 {
				indices = append(indices, current, current+1, next)
			}
			if ring != rings-1 {
				indices = append(indices, current+1, next+1, next)
			}
		}
	}

	m := CreateMeshFromData("Sphere", vertices, indices)
	ComputeTangents(m)
	return m
}

// CreatePlane generates a width x depth plane in XZ facing +Y.
func CreatePlane(width, depth float32, subdivisions int) *Mesh {
	if subdivisions < 1 {
		subdivisions = 1
	}

	var vertices []core.Vertex
	var indices []uint32

	halfW := width / 2.0
	halfD := depth / 2.0

	for z := 0; z <= subdivisions; z++ {
		for x := 0; x <= subdivisions; x++ {
			u := float32(x) / float32(subdivisions)
			v := float32(z) / float32(subdivisions)

			vertices = append(vertices, core.Vertex{
				Position: math.Vec3{X: -halfW + u*width, Y: 0, Z: -halfD + v*depth},
				Normal:   math.Vec3Up,
				UV:       math.Vec2{X: u, Y: v},
				Color:    primitiveGray,
			})
		}
	}

	for z := 0; z < subdivisions; z++ {
		for x := 0; x < subdivisions; x++ {
			topLeft := uint32(z*(subdivisions+1) + x)
			topRight := topLeft + 1
			bottomLeft := topLeft + uint32(subdivisions+1)
			bottomRight := bottomLeft + 1

			indices = append(indices, topLeft, bottomLeft, topRight)
			indices = append(indices, topRight, bottomLeft, bottomRight)
		}
	}

	m := CreateMeshFromData("Plane", vertices, indices)
	ComputeTangents(m)
	return m
}

// CreateRing generates a flat annulus in the XY plane facing +Z.
func CreateRing(innerRadius, outerRadius float32, segments int) *Mesh {
	if segments < 3 {
		segments = 3
	}

	var vertices []core.Vertex
	var indices []uint32

	for i := 0; i <= segments; i++ {
		s, c := math32.Sincos(float32(i) * 2 * math32.Pi / float32(segments))
		for _, r := range [2]float32{innerRadius, outerRadius} {
			vertices = append(vertices, core.Vertex{
				Position: math.Vec3{X: c * r, Y: s * r},
				Normal:   math.Vec3Front,
				UV:       math.Vec2{X: (c*r/outerRadius + 1) / 2, Y: (s*r/outerRadius + 1) / 2},
				Color:    core.ColorWhite,
			})
		}
	}

	for i := 0; i < segments; i++ {
		inner := uint32(i * 2)
		outer := inner + 1
		indices = append(indices, inner, outer, outer+2)
		indices = append(indices, inner, outer+2, inner+2)
	}

	return CreateMeshFromData("Ring", vertices, indices)
}

// CreateLine generates a single segment with a colour at each end.
func CreateLine(from, to math.Vec3, fromColor, toColor core.Color) *Mesh {
	vertices := []core.Vertex{
		{Position: from, Normal: math.Vec3Up, Color: fromColor},
		{Position: to, Normal: math.Vec3Up, Color: toColor},
	}
	m := CreateMeshFromData("Line", vertices, []uint32{0, 1})
	m.DrawMode = DrawLines
	return m
}

// CreateBox generates an axis-aligned box centred on the origin.
func CreateBox(width, height, depth float32) *Mesh {
	half := math.Vec3{X: width / 2, Y: height / 2, Z: depth / 2}

	faces := []struct {
		normal, u, v math.Vec3
	}{
		{normal: math.Vec3Front, u: math.Vec3Right, v: math.Vec3Up},
		{normal: math.Vec3Back, u: math.Vec3Right.Negate(), v: math.Vec3Up},
		{normal: math.Vec3Up, u: math.Vec3Right, v: math.Vec3Back},
		{normal: math.Vec3Down, u: math.Vec3Right, v: math.Vec3Front},
		{normal: math.Vec3Right, u: math.Vec3Back, v: math.Vec3Up},
		{normal: math.Vec3Right.Negate(), u: math.Vec3Front, v: math.Vec3Up},
	}

	var vertices []core.Vertex
	var indices []uint32
	for _, f := range faces {
		base := uint32(len(vertices))
		for _, corner := range [4]math.Vec2{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}} {
			p := f.normal.Add(f.u.Mul(corner.X)).Add(f.v.Mul(corner.Y)).MulVec(half)
			vertices = append(vertices, core.Vertex{
				Position: p,
				Normal:   f.normal,
				UV:       math.Vec2{X: (corner.X + 1) / 2, Y: (corner.Y + 1) / 2},
				Color:    core.ColorWhite,
			})
		}
		indices = append(indices, base, base+1, base+2, base+2, base+3, base)
	}

	m := CreateMeshFromData("Box", vertices, indices)
	ComputeTangents(m)
	return m
}

// CreateCylinder generates a capped cylinder along Y.
func CreateCylinder(radius, height float32, segments int) *Mesh {
	if segments < 3 {
		segments = 3
	}

	var vertices []core.Vertex
	var indices []uint32
	halfHeight := height / 2.0

	for i := 0; i <= segments; i++ {
		s, c := math32.Sincos(float32(i) * 2 * math32.Pi / float32(segments))
		normal := math.Vec3{X: c, Z: s}
		u := float32(i) / float32(segments)
		vertices = append(vertices,
			core.Vertex{Position: math.Vec3{X: c * radius, Y: -halfHeight, Z: s * radius}, Normal: normal, UV: math.Vec2{X: u}, Color: primitiveGray},
			core.Vertex{Position: math.Vec3{X: c * radius, Y: halfHeight, Z: s * radius}, Normal: normal, UV: math.Vec2{X: u, Y: 1}, Color: primitiveGray},
		)
	}
	for i := 0; i < segments; i++ {
		base := uint32(i * 2)
		indices = append(indices, base, base+1, base+2)
		indices = append(indices, base+2, base+1, base+3)
	}

	addCap := func(y float32, normal math.Vec3) {
		center := uint32(len(vertices))
		vertices = append(vertices, core.Vertex{Position: math.Vec3{Y: y}, Normal: normal, UV: math.Vec2{X: 0.5, Y: 0.5}, Color: primitiveGray})
		for i := 0; i <= segments; i++ {
			s, c := math32.Sincos(float32(i) * 2 * math32.Pi / float32(segments))
			vertices = append(vertices, core.Vertex{
				Position: math.Vec3{X: c * radius, Y: y, Z: s * radius},
				Normal:   normal,
				UV:       math.Vec2{X: c*0.5 + 0.5, Y: s*0.5 + 0.5},
				Color:    primitiveGray,
			})
		}
		for i := uint32(1); i <= uint32(segments); i++ {
			if normal.Y > 0 {
				indices = append(indices, center, center+i+1, center+i)
			} else {
				indices = append(indices, center, center+i, center+i+1)
			}
		}
	}
	addCap(halfHeight, math.Vec3Up)
	addCap(-halfHeight, math.Vec3Down)

	return CreateMeshFromData("Cylinder", vertices, indices)
}

// Translate moves every vertex by offset, baking it into the geometry.
func (m *Mesh) Translate(offset math.Vec3) {
	for i := range m.Vertices {
		m.Vertices[i].Position = m.Vertices[i].Position.Add(offset)
	}
	if m.HasLocalAABB {
		m.LocalAABB.Min = m.LocalAABB.Min.Add(offset)
		m.LocalAABB.Max = m.LocalAABB.Max.Add(offset)
	}
}
