package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vr-scene/core"
	"vr-scene/math"
)

// faceNormal returns the counter-clockwise normal of triangle i.
func faceNormal(m *Mesh, i int) math.Vec3 {
	a := m.Vertices[m.Indices[i*3]].Position
	b := m.Vertices[m.Indices[i*3+1]].Position
	c := m.Vertices[m.Indices[i*3+2]].Position
	return b.Sub(a).Cross(c.Sub(a))
}

func TestSphereFacesOutward(t *testing.T) {
	m := CreateSphere(1, 32, 16)
	require.NotEmpty(t, m.Indices)
	for i := 0; i < len(m.Indices)/3; i++ {
		a := m.Vertices[m.Indices[i*3]].Position
		n := faceNormal(m, i)
		assert.GreaterOrEqual(t, n.Dot(a), float32(0), "triangle %d faces inward", i)
	}
	assertVec3(t, math.NewVec3(-1, -1, -1), m.LocalAABB.Min)
	assertVec3(t, math.NewVec3(1, 1, 1), m.LocalAABB.Max)
}

func TestPlaneFacesUp(t *testing.T) {
	m := CreatePlane(10, 10, 1)
	assert.Len(t, m.Vertices, 4)
	for i := 0; i < len(m.Indices)/3; i++ {
		assert.Greater(t, faceNormal(m, i).Y, float32(0))
	}
	assertVec3(t, math.NewVec3(-5, 0, -5), m.LocalAABB.Min)
	assertVec3(t, math.NewVec3(5, 0, 5), m.LocalAABB.Max)
	assertVec3(t, math.Vec3Right, m.Vertices[0].Tangent)
}

func TestRingTranslate(t *testing.T) {
	m := CreateRing(0.02, 0.04, 32)
	assert.Len(t, m.Vertices, 66)
	assert.Len(t, m.Indices, 32*6)
	for i := 0; i < len(m.Indices)/3; i++ {
		assert.Greater(t, faceNormal(m, i).Z, float32(0))
	}

	m.Translate(math.NewVec3(0, 0, -1))
	for _, v := range m.Vertices {
		assert.Equal(t, float32(-1), v.Position.Z)
		r := v.Position.Sub(math.NewVec3(0, 0, -1)).Length()
		assert.True(t, r > 0.019 && r < 0.041, "radius %v", r)
	}
	assert.Equal(t, float32(-1), m.LocalAABB.Max.Z)
}

func TestLineHasTwoColouredEnds(t *testing.T) {
	grey := core.Color{R: 0.5, G: 0.5, B: 0.5, A: 1}
	m := CreateLine(math.Vec3Zero, math.NewVec3(0, 0, -1), grey, core.ColorBlack)

	assert.Equal(t, DrawLines, m.DrawMode)
	require.Len(t, m.Vertices, 2)
	assert.Equal(t, []uint32{0, 1}, m.Indices)
	assert.Equal(t, grey, m.Vertices[0].Color)
	assert.Equal(t, core.ColorBlack, m.Vertices[1].Color)
	assertVec3(t, math.NewVec3(0, 0, -1), m.Vertices[1].Position)
}

func TestBoxFacesOutward(t *testing.T) {
	m := CreateBox(2, 4, 6)
	assert.Len(t, m.Vertices, 24)
	for i := 0; i < len(m.Indices)/3; i++ {
		a := m.Vertices[m.Indices[i*3]]
		n := faceNormal(m, i)
		assert.Greater(t, n.Dot(a.Normal), float32(0))
	}
	assertVec3(t, math.NewVec3(-1, -2, -3), m.LocalAABB.Min)
}

func TestCylinderCapsFaceOutward(t *testing.T) {
	m := CreateCylinder(1, 2, 12)
	for i := 0; i < len(m.Indices)/3; i++ {
		a := m.Vertices[m.Indices[i*3]]
		n := faceNormal(m, i)
		if a.Normal.Y != 0 {
			assert.Greater(t, n.Dot(a.Normal), float32(0), "triangle %d", i)
		}
	}
}

func TestGridLineCount(t *testing.T) {
	m := CreateGrid(10, 10, core.ColorWhite, core.ColorBlack)
	assert.Equal(t, DrawLines, m.DrawMode)
	assert.Len(t, m.Indices, 11*2*2)
	assert.True(t, m.Material.VertexColors)
}

func TestFrustumCulling(t *testing.T) {
	c := NewCamera(1.0, 1, 0.1, 100)
	c.SetPosition(math.Vec3Zero)
	c.LookAt(math.NewVec3(0, 0, -1))
	f := FrustumFromVP(c.GetViewProjectionMatrix())

	box := CreateBox(1, 1, 1)
	world := func(p math.Vec3) AABB { return WorldAABB(box, math.Mat4Translation(p)) }

	infront := world(math.NewVec3(0, 0, -5))
	behind := world(math.NewVec3(0, 0, 5))
	farAway := world(math.NewVec3(0, 0, -500))

	assert.True(t, infront.IntersectsFrustum(&f))
	assert.False(t, behind.IntersectsFrustum(&f))
	assert.False(t, farAway.IntersectsFrustum(&f))
}

func TestSkinJointMatrices(t *testing.T) {
	joint := NewNode("joint")
	joint.SetPosition(math.NewVec3(0, 1, 0))
	skin := &Skin{
		Joints:              []*Node{joint},
		InverseBindMatrices: []math.Mat4{math.Mat4Translation(math.NewVec3(0, -1, 0))},
	}

	// bind pose gives identity
	mats := skin.JointMatrices(math.Mat4Identity())
	require.Len(t, mats, 1)
	assertVec3(t, math.NewVec3(2, 3, 4), mats[0].MulVec3(math.NewVec3(2, 3, 4)))

	// moving the joint moves the vertex
	joint.SetPosition(math.NewVec3(0, 3, 0))
	mats = skin.JointMatrices(math.Mat4Identity())
	assertVec3(t, math.NewVec3(2, 5, 4), mats[0].MulVec3(math.NewVec3(2, 3, 4)))

	// the mesh transform cancels out once the renderer applies it
	meshWorld := math.Mat4Translation(math.NewVec3(10, 0, 0))
	mats = skin.JointMatrices(meshWorld)
	assertVec3(t, math.NewVec3(2, 5, 4), mats[0].Mul(meshWorld).MulVec3(math.NewVec3(2, 3, 4)))
}
