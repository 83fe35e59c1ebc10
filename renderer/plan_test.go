package renderer

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vr-scene/core"
	"vr-scene/math"
	"vr-scene/scene"
)

func testCamera() *scene.Camera {
	cam := scene.NewCamera(75*math32.Pi/180, 1, 0.1, 100)
	cam.SetPosition(math.NewVec3(0, 0, 10))
	cam.LookAt(math.Vec3Zero)
	return cam
}

func boxNode(name string, pos math.Vec3) *scene.Node {
	n := scene.NewMeshNode(name, scene.CreateBox(1, 1, 1))
	n.SetPosition(pos)
	return n
}

func names(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Node.Name
	}
	return out
}

func TestBuildPlanOrdersOpaqueFrontToBack(t *testing.T) {
	s := scene.NewScene()
	s.AddNode(boxNode("far", math.NewVec3(0, 0, -5)))
	s.AddNode(boxNode("near", math.NewVec3(0, 0, 5)))
	s.AddNode(boxNode("mid", math.NewVec3(0, 0, 0)))

	plan := BuildPlan(s, testCamera(), true)
	assert.Equal(t, []string{"near", "mid", "far"}, names(plan.Opaque))
	assert.Empty(t, plan.Blended)
	assert.Zero(t, plan.Culled)
}

func TestBuildPlanOrdersBlendedBackToFront(t *testing.T) {
	s := scene.NewScene()
	for _, tc := range []struct {
		name string
		z    float32
	}{{"near", 5}, {"far", -5}, {"mid", 0}} {
		n := boxNode(tc.name, math.NewVec3(0, 0, tc.z))
		n.Mesh.Material = scene.NewStandardMaterial(tc.name)
		n.Mesh.Material.Transparent = true
		n.Mesh.Material.Opacity = 0.5
		s.AddNode(n)
	}
	additive := boxNode("glow", math.NewVec3(0, 0, 2))
	additive.Mesh.Material = scene.NewStandardMaterial("glow")
	additive.Mesh.Material.Blending = scene.BlendAdditive
	s.AddNode(additive)

	plan := BuildPlan(s, testCamera(), true)
	assert.Empty(t, plan.Opaque)
	assert.Equal(t, []string{"far", "mid", "glow", "near"}, names(plan.Blended))
}

func TestBuildPlanCullsOutsideFrustum(t *testing.T) {
	s := scene.NewScene()
	s.AddNode(boxNode("visible", math.Vec3Zero))
	s.AddNode(boxNode("behind", math.NewVec3(0, 0, 50)))
	s.AddNode(boxNode("beyond far", math.NewVec3(0, 0, -200)))

	plan := BuildPlan(s, testCamera(), true)
	assert.Equal(t, []string{"visible"}, names(plan.Opaque))
	assert.Equal(t, 2, plan.Culled)

	plan = BuildPlan(s, testCamera(), false)
	assert.Len(t, plan.Opaque, 3)
	assert.Zero(t, plan.Culled)
}

func TestBuildPlanKeepsCulledCasters(t *testing.T) {
	s := scene.NewScene()
	caster := boxNode("caster", math.NewVec3(0, 0, 50))
	caster.CastShadow = true
	s.AddNode(caster)

	line := scene.NewMeshNode("line", scene.CreateLine(math.Vec3Zero, math.Vec3Up, core.ColorWhite, core.ColorBlack))
	line.CastShadow = true
	s.AddNode(line)

	plan := BuildPlan(s, testCamera(), true)
	assert.Equal(t, []string{"caster"}, names(plan.Casters))
	assert.Equal(t, 1, plan.Culled)
}

func TestBuildPlanSkipsHiddenSubtrees(t *testing.T) {
	s := scene.NewScene()
	group := scene.NewNode("group")
	group.Visible = false
	group.AddChild(boxNode("child", math.Vec3Zero))
	s.AddNode(group)

	plan := BuildPlan(s, testCamera(), false)
	assert.Empty(t, plan.Opaque)
}

func TestBuildPlanSkinnedMeshesAreNotCulled(t *testing.T) {
	s := scene.NewScene()
	joint := scene.NewNode("joint")
	s.AddNode(joint)

	skinned := boxNode("skinned", math.NewVec3(0, 0, 50))
	skinned.Mesh.Skin = &scene.Skin{Joints: []*scene.Node{joint}}
	s.AddNode(skinned)

	plan := BuildPlan(s, testCamera(), true)
	require.Len(t, plan.Opaque, 1)
	assert.Len(t, plan.Opaque[0].Joints, 1)
}

func TestShadowViewProj(t *testing.T) {
	light := math.NewVec3(-0.6, 3.5, -2)
	vp, ok := ShadowViewProj(light, math.Vec3Zero)
	require.True(t, ok)

	// the focus point projects to the centre of the shadow map
	clip := vp.MulVec(math.Vec4{X: 0, Y: 0, Z: 0, W: 1})
	assert.InDelta(t, 0, clip.X/clip.W, 1e-4)
	assert.InDelta(t, 0, clip.Y/clip.W, 1e-4)
	assert.Greater(t, clip.W, float32(0))

	_, ok = ShadowViewProj(light, light)
	assert.False(t, ok)

	// straight down still yields a usable matrix
	vp, ok = ShadowViewProj(math.NewVec3(0, 5, 0), math.Vec3Zero)
	require.True(t, ok)
	clip = vp.MulVec(math.Vec4{X: 0, Y: 0, Z: 0, W: 1})
	assert.False(t, math32.IsNaN(clip.X))
}

func TestShadowLightIndex(t *testing.T) {
	plain := scene.NewPointLight(0xffffff, 1, math.Vec3Zero)
	caster := scene.NewPointLight(0xffffff, 1, math.Vec3Zero)
	caster.CastShadow = true

	assert.Equal(t, -1, shadowLightIndex(nil, 4))
	assert.Equal(t, -1, shadowLightIndex([]*scene.Light{plain, plain}, 4))
	assert.Equal(t, 1, shadowLightIndex([]*scene.Light{plain, caster}, 4))
	assert.Equal(t, -1, shadowLightIndex([]*scene.Light{plain, caster}, 1))
}

func TestDrawingBufferSize(t *testing.T) {
	tests := []struct {
		w, h  int
		ratio float32
		wantW int
		wantH int
	}{
		{1280, 720, 1, 1280, 720},
		{1280, 720, 2, 2560, 1440},
		{1000, 500, 1.5, 1500, 750},
		{0, 0, 2, 1, 1},
		{800, 600, 0, 800, 600},
	}
	for _, tt := range tests {
		w, h := drawingBufferSize(tt.w, tt.h, tt.ratio)
		assert.Equal(t, tt.wantW, w)
		assert.Equal(t, tt.wantH, h)
	}
}
