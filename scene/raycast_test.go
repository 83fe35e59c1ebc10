package scene

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vr-scene/core"
	"vr-scene/math"
)

func TestRaycastNearestHit(t *testing.T) {
	root := NewNode("root")
	near := NewMeshNode("near", CreateBox(1, 1, 1))
	near.SetPosition(math.Vec3{Z: -3})
	far := NewMeshNode("far", CreateBox(1, 1, 1))
	far.SetPosition(math.Vec3{Z: -6})
	root.AddChild(far)
	root.AddChild(near)

	hit, ok := Raycast(Ray{Direction: math.Vec3{Z: -1}}, root)

	require.True(t, ok)
	assert.Same(t, near, hit.Node)
	assert.InDelta(t, 2.5, hit.Distance, 1e-4)
	assertVec3(t, math.Vec3{Z: -2.5}, hit.Point)
	assertVec3(t, math.Vec3{Z: 1}, hit.Normal)
}

func TestRaycastSkipsHiddenAndExcluded(t *testing.T) {
	root := NewNode("root")
	hidden := NewMeshNode("hidden", CreateBox(1, 1, 1))
	hidden.SetPosition(math.Vec3{Z: -2})
	hidden.Visible = false
	own := NewNode("own")
	ownBox := NewMeshNode("own_box", CreateBox(1, 1, 1))
	ownBox.SetPosition(math.Vec3{Z: -1})
	own.AddChild(ownBox)
	target := NewMeshNode("target", CreateBox(1, 1, 1))
	target.SetPosition(math.Vec3{Z: -5})
	root.AddChild(hidden)
	root.AddChild(own)
	root.AddChild(target)

	hit, ok := Raycast(Ray{Direction: math.Vec3{Z: -1}}, root, own)

	require.True(t, ok)
	assert.Same(t, target, hit.Node)
}

func TestRaycastIgnoresLinesAndMisses(t *testing.T) {
	root := NewNode("root")
	root.AddChild(NewMeshNode("line", CreateLine(math.Vec3{Z: -1}, math.Vec3{Z: -4}, core.ColorWhite, core.ColorWhite)))
	box := NewMeshNode("box", CreateBox(1, 1, 1))
	box.SetPosition(math.Vec3{X: 5, Z: -3})
	root.AddChild(box)

	_, ok := Raycast(Ray{Direction: math.Vec3{Z: -1}}, root)
	assert.False(t, ok)
}

func TestRayFromNodeFollowsRotation(t *testing.T) {
	n := NewNode("pointer")
	n.SetPosition(math.Vec3{X: 1, Y: 2})
	n.RotateY(math32.Pi / 2)

	ray := RayFromNode(n)

	assertVec3(t, math.Vec3{X: 1, Y: 2}, ray.Origin)
	assertVec3(t, math.Vec3{X: -1}, ray.Direction)
}
