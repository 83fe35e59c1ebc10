package renderer

import (
	"sort"

	"github.com/chewxy/math32"

	"vr-scene/math"
	"vr-scene/scene"
)

// Item is one mesh node prepared for drawing.
type Item struct {
	Node   *scene.Node
	Model  math.Mat4
	Joints []math.Mat4
	// DistSqr is the squared distance from the camera, used for ordering.
	DistSqr float32
}

// Plan is the draw order of one frame. Opaque items are sorted front to
// back, blended items back to front. Casters ignore the camera frustum.
type Plan struct {
	Opaque  []Item
	Blended []Item
	Casters []Item
	Culled  int
}

// BuildPlan walks the visible nodes of s. With cull set, meshes whose world
// bounds lie outside the camera frustum are skipped; skinned meshes are
// never culled since their bind-pose bounds do not follow the joints.
func BuildPlan(s *scene.Scene, camera *scene.Camera, cull bool) Plan {
	var plan Plan
	frustum := scene.FrustumFromVP(camera.GetViewProjectionMatrix())

	for _, node := range s.GetVisibleNodes() {
		mesh := node.Mesh
		model := node.GetWorldMatrix()
		item := Item{
			Node:    node,
			Model:   model,
			DistSqr: model.Translation().Sub(camera.Position).LengthSqr(),
		}
		if mesh.IsSkinned() {
			item.Joints = mesh.Skin.JointMatrices(model)
		}

		if node.CastShadow && mesh.DrawMode == scene.DrawTriangles {
			plan.Casters = append(plan.Casters, item)
		}

		if cull && !mesh.IsSkinned() && mesh.HasLocalAABB {
			box := scene.WorldAABB(mesh, model)
			if !box.IntersectsFrustum(&frustum) {
				plan.Culled++
				continue
			}
		}

		if mesh.Material != nil && mesh.Material.IsBlended() {
			plan.Blended = append(plan.Blended, item)
		} else {
			plan.Opaque = append(plan.Opaque, item)
		}
	}

	sort.SliceStable(plan.Opaque, func(i, j int) bool {
		return plan.Opaque[i].DistSqr < plan.Opaque[j].DistSqr
	})
	sort.SliceStable(plan.Blended, func(i, j int) bool {
		return plan.Blended[i].DistSqr > plan.Blended[j].DistSqr
	})
	return plan
}

const (
	shadowFOV  = 120 * math32.Pi / 180
	shadowNear = 0.5
	shadowFar  = 500
)

// ShadowViewProj is the perspective view-projection of a point light
// looking at focus. ok is false when the light sits on the focus point.
func ShadowViewProj(light, focus math.Vec3) (vp math.Mat4, ok bool) {
	dir := focus.Sub(light)
	if dir.LengthSqr() < 1e-8 {
		return math.Mat4Identity(), false
	}
	dir = dir.Normalize()
	up := math.Vec3Up
	if math32.Abs(dir.Dot(up)) > 0.999 {
		up = math.Vec3Front
	}
	view := math.Mat4LookAt(light, focus, up)
	proj := math.Mat4Perspective(shadowFOV, 1, shadowNear, shadowFar)
	return view.Mul(proj), true
}

// shadowLightIndex returns the index of the first shadow-casting light
// among the first limit lights, or -1.
func shadowLightIndex(lights []*scene.Light, limit int) int {
	for i, l := range lights {
		if i >= limit {
			break
		}
		if l != nil && l.CastShadow {
			return i
		}
	}
	return -1
}

// drawingBufferSize is the pixel size of the render target for a logical
// size at the given pixel ratio. Both sides are at least 1.
func drawingBufferSize(width, height int, ratio float32) (int, int) {
	if ratio <= 0 {
		ratio = 1
	}
	w := int(math32.Round(float32(width) * ratio))
	h := int(math32.Round(float32(height) * ratio))
	return max(w, 1), max(h, 1)
}
