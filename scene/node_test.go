package scene

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vr-scene/math"
)

func assertVec3(t *testing.T, want, got math.Vec3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-4, "x")
	assert.InDelta(t, want.Y, got.Y, 1e-4, "y")
	assert.InDelta(t, want.Z, got.Z, 1e-4, "z")
}

func TestAddChildReparents(t *testing.T) {
	a, b := NewNode("a"), NewNode("b")
	child := NewNode("child")

	a.AddChild(child)
	b.AddChild(child)

	assert.Empty(t, a.Children)
	require.Len(t, b.Children, 1)
	assert.Same(t, b, child.Parent)

	b.RemoveChild(child)
	assert.Nil(t, child.Parent)
	assert.Empty(t, b.Children)
}

func TestWorldMatrixAppliesParentAfterChild(t *testing.T) {
	parent := NewNode("parent")
	parent.SetPosition(math.NewVec3(0, 0, 5))
	parent.RotateY(math32.Pi / 2)

	child := NewNode("child")
	child.SetPosition(math.NewVec3(1, 0, 0))
	parent.AddChild(child)

	assertVec3(t, math.NewVec3(0, 0, 4), child.GetWorldMatrix().Translation())

	parent.SetPosition(math.NewVec3(0, 2, 5))
	assertVec3(t, math.NewVec3(0, 2, 4), child.GetWorldMatrix().Translation())
}

func TestRotateYAccumulates(t *testing.T) {
	n := NewNode("spinner")
	n.RotateY(0.25)
	n.RotateY(0.5)
	assert.InDelta(t, 0.75, n.Transform.Euler.Y, 1e-6)
	assert.Zero(t, n.Transform.Euler.X)
	assert.Zero(t, n.Transform.Euler.Z)
}

func TestFindAnimatedPreOrder(t *testing.T) {
	root := NewNode("root")
	a := NewNode("a")
	a1 := NewNode("a1")
	b := NewNode("b")
	root.AddChild(a)
	a.AddChild(a1)
	root.AddChild(b)

	clip := NewAnimationClip("idle", nil)
	for _, n := range []*Node{b, a1, a} {
		n.Mixer = NewMixer(n)
		n.Actions = append(n.Actions, n.Mixer.ClipAction(clip))
	}

	found := FindAnimated(root)
	assert.Equal(t, []*Node{a, a1, b}, found)
	assert.Equal(t, found, FindAnimated(root))
}

func TestFindAnimatedEmpty(t *testing.T) {
	root := NewNode("root")
	root.AddChild(NewNode("plain"))
	assert.Empty(t, FindAnimated(root))
	assert.Empty(t, FindAnimated(nil))
}

func TestGetVisibleNodesSkipsHiddenSubtrees(t *testing.T) {
	s := NewScene()
	shown := NewMeshNode("shown", CreateBox(1, 1, 1))
	hidden := NewMeshNode("hidden", CreateBox(1, 1, 1))
	hidden.Visible = false
	hidden.AddChild(NewMeshNode("under-hidden", CreateBox(1, 1, 1)))
	s.AddNode(shown)
	s.AddNode(hidden)

	assert.Equal(t, []*Node{shown}, s.GetVisibleNodes())
}

func TestShadowLightIsFirstCaster(t *testing.T) {
	s := NewScene()
	l1 := NewPointLight(0xffffff, 1, math.Vec3Zero)
	l2 := NewPointLight(0xffaa00, 6, math.Vec3Up)
	l2.CastShadow = true
	s.AddLight(l1)
	s.AddLight(l2)

	assert.Same(t, l2, s.ShadowLight())
}

func TestCameraAspectNeedsProjectionUpdate(t *testing.T) {
	c := NewCamera(math32.Pi/3, 1, 0.1, 100)
	before := c.GetProjectionMatrix()

	c.SetAspect(2)
	assert.Equal(t, before, c.GetProjectionMatrix())

	c.UpdateProjectionMatrix()
	assert.InDelta(t, before[0][0]/2, c.GetProjectionMatrix()[0][0], 1e-6)
	assert.Equal(t, before[1][1], c.GetProjectionMatrix()[1][1])
}

func TestCameraLookAt(t *testing.T) {
	c := NewCamera(math32.Pi/3, 1, 0.1, 100)
	c.SetPosition(math.NewVec3(0, 4, 5))
	c.LookAt(math.Vec3Zero)

	// the target sits on the view axis
	p := c.GetViewMatrix().MulVec3(math.Vec3Zero)
	assert.InDelta(t, 0, p.X, 1e-4)
	assert.InDelta(t, 0, p.Y, 1e-4)
	assert.Less(t, p.Z, float32(0))
}
