package scene

import (
	stdmath "math"
	"slices"

	"github.com/chewxy/math32"

	"vr-scene/math"
)

const maxDistance = float32(stdmath.MaxFloat32)

// Ray is a half-line in world space. Direction is unit length.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
}

// Hit is the closest intersection found by Raycast.
type Hit struct {
	Node     *Node
	Distance float32
	Point    math.Vec3
	Normal   math.Vec3
	Face     int
}

// RayFromNode points along the node's local -Z axis from its world origin,
// the convention used for controller target rays.
func RayFromNode(n *Node) Ray {
	world := n.GetWorldMatrix()
	origin := world.Translation()
	ahead := world.MulVec3(math.Vec3{Z: -1})
	return Ray{Origin: origin, Direction: ahead.Sub(origin).Normalize()}
}

// Raycast returns the nearest visible triangle mesh hit by ray under root.
// Subtrees rooted at any of the skip nodes are ignored.
func Raycast(ray Ray, root *Node, skip ...*Node) (Hit, bool) {
	best := Hit{Distance: maxDistance}
	found := false

	var walk func(n *Node)
	walk = func(n *Node) {
		if !n.Visible || slices.Contains(skip, n) {
			return
		}
		if m := n.Mesh; m != nil && m.DrawMode == DrawTriangles && m.HasLocalAABB {
			world := n.GetWorldMatrix()
			if t, ok := rayBox(ray, WorldAABB(m, world)); ok && t <= best.Distance {
				if h, ok := rayMesh(ray, n, world); ok && h.Distance < best.Distance {
					best, found = h, true
				}
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	return best, found
}

// rayBox is the slab test. It returns the entry distance, or 0 when the
// origin is inside the box.
func rayBox(ray Ray, box AABB) (float32, bool) {
	tmin, tmax := float32(0), maxDistance
	origin := [3]float32{ray.Origin.X, ray.Origin.Y, ray.Origin.Z}
	dir := [3]float32{ray.Direction.X, ray.Direction.Y, ray.Direction.Z}
	lo := [3]float32{box.Min.X, box.Min.Y, box.Min.Z}
	hi := [3]float32{box.Max.X, box.Max.Y, box.Max.Z}

	for i := 0; i < 3; i++ {
		if math32.Abs(dir[i]) < 1e-8 {
			if origin[i] < lo[i] || origin[i] > hi[i] {
				return 0, false
			}
			continue
		}
		inv := 1 / dir[i]
		t1 := (lo[i] - origin[i]) * inv
		t2 := (hi[i] - origin[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math32.Max(tmin, t1)
		tmax = math32.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}

func rayMesh(ray Ray, n *Node, world math.Mat4) (Hit, bool) {
	m := n.Mesh
	best := Hit{Distance: maxDistance}
	found := false
	for i := 0; i+2 < len(m.Indices); i += 3 {
		v0 := world.MulVec3(m.Vertices[m.Indices[i]].Position)
		v1 := world.MulVec3(m.Vertices[m.Indices[i+1]].Position)
		v2 := world.MulVec3(m.Vertices[m.Indices[i+2]].Position)

		t, ok := rayTriangle(ray, v0, v1, v2)
		if !ok || t >= best.Distance {
			continue
		}
		best = Hit{
			Node:     n,
			Distance: t,
			Point:    ray.Origin.Add(ray.Direction.Mul(t)),
			Normal:   v1.Sub(v0).Cross(v2.Sub(v0)).Normalize(),
			Face:     i / 3,
		}
		found = true
	}
	return best, found
}

// rayTriangle is Möller-Trumbore. Both faces count as hits.
func rayTriangle(ray Ray, v0, v1, v2 math.Vec3) (float32, bool) {
	const epsilon = 1e-7

	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)
	if a > -epsilon && a < epsilon {
		return 0, false
	}

	f := 1 / a
	s := ray.Origin.Sub(v0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t := f * edge2.Dot(q)
	return t, t > epsilon
}
