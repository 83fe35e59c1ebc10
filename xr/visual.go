package xr

import (
	"fmt"

	"vr-scene/core"
	"vr-scene/math"
	"vr-scene/scene"
)

const (
	rayLength = 1

	reticleInner    = 0.02
	reticleOuter    = 0.04
	reticleSegments = 32
	reticleDistance = 1
	reticleOpacity  = 0.5
)

// BuildVisual returns the node drawn under a connected controller: a ray
// for tracked pointers, a reticle ring for gaze, nil for anything else.
func BuildVisual(mode TargetRayMode) *scene.Node {
	switch mode {
	case TargetRayTrackedPointer:
		return newRay()
	case TargetRayGaze:
		return newReticle()
	}
	return nil
}

func newRay() *scene.Node {
	mesh := scene.CreateLine(
		math.Vec3Zero,
		math.NewVec3(0, 0, -rayLength),
		core.Color{R: 0.5, G: 0.5, B: 0.5, A: 1},
		core.ColorBlack,
	)
	mat := scene.NewLineMaterial("ray")
	mat.Blending = scene.BlendAdditive
	mesh.Material = mat
	return scene.NewMeshNode("ray", mesh)
}

func newReticle() *scene.Node {
	mesh := scene.CreateRing(reticleInner, reticleOuter, reticleSegments)
	mesh.Translate(math.NewVec3(0, 0, -reticleDistance))

	mat := scene.NewStandardMaterial("reticle")
	mat.Unlit = true
	mat.Opacity = reticleOpacity
	mat.Transparent = true
	mat.DoubleSided = true
	mesh.Material = mat
	return scene.NewMeshNode("reticle", mesh)
}

// NewGrip builds the grip-space node for a slot with a simple controller
// body: a handle with a rounded head and a trigger.
func NewGrip(slot int) *scene.Node {
	grip := scene.NewNode(fmt.Sprintf("grip_%d", slot))

	body := scene.NewStandardMaterial("controller_body")
	body.Albedo = core.Color{R: 0.12, G: 0.12, B: 0.14, A: 1}
	body.Roughness = 0.6

	handle := scene.CreateCylinder(0.018, 0.11, 16)
	handle.Material = body
	handleNode := scene.NewMeshNode("handle", handle)
	handleNode.SetRotation(math.QuaternionFromAxisAngle(math.Vec3Right, -0.6))
	handleNode.CastShadow = true

	head := scene.CreateSphere(0.035, 16, 8)
	head.Material = body
	headNode := scene.NewMeshNode("head", head)
	headNode.SetPosition(math.NewVec3(0, 0.01, -0.045))
	headNode.SetScale(math.NewVec3(1, 0.6, 1))
	headNode.CastShadow = true

	trigger := scene.CreateBox(0.012, 0.02, 0.025)
	trigMat := scene.NewStandardMaterial("controller_trigger")
	trigMat.Albedo = core.ColorFromHex(0x3a3a40)
	trigger.Material = trigMat
	triggerNode := scene.NewMeshNode("trigger", trigger)
	triggerNode.SetPosition(math.NewVec3(0, -0.025, -0.04))

	grip.AddChild(handleNode)
	grip.AddChild(headNode)
	grip.AddChild(triggerNode)
	return grip
}
