package xr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vr-scene/scene"
)

func TestParseTargetRayMode(t *testing.T) {
	assert.Equal(t, TargetRayTrackedPointer, ParseTargetRayMode("tracked-pointer"))
	assert.Equal(t, TargetRayGaze, ParseTargetRayMode("gaze"))
	assert.Equal(t, TargetRayUnknown, ParseTargetRayMode("screen"))
	assert.Equal(t, TargetRayUnknown, ParseTargetRayMode(""))
	assert.Equal(t, "gaze", TargetRayGaze.String())
}

func TestFullCycleLeavesNoVisualAndNoSelection(t *testing.T) {
	for _, mode := range []TargetRayMode{TargetRayTrackedPointer, TargetRayGaze, TargetRayUnknown} {
		t.Run(mode.String(), func(t *testing.T) {
			c := NewController(0)
			require.NoError(t, c.Dispatch(Event{Type: EventConnected, Mode: mode}))
			require.NoError(t, c.Dispatch(Event{Type: EventSelectStart}))
			assert.True(t, c.IsSelecting())
			require.NoError(t, c.Dispatch(Event{Type: EventSelectEnd}))
			assert.False(t, c.IsSelecting())
			require.NoError(t, c.Dispatch(Event{Type: EventDisconnected}))

			assert.False(t, c.IsSelecting())
			assert.Empty(t, c.Node.Children)
			assert.Equal(t, StateDisconnected, c.State())
		})
	}
}

func TestConnectAttachesOneVisualPerMode(t *testing.T) {
	t.Run("tracked-pointer", func(t *testing.T) {
		c := NewController(0)
		require.NoError(t, c.Dispatch(Event{Type: EventConnected, Mode: TargetRayTrackedPointer}))
		require.Len(t, c.Node.Children, 1)

		mesh := c.Node.Children[0].Mesh
		require.NotNil(t, mesh)
		assert.Equal(t, scene.DrawLines, mesh.DrawMode)
		assert.Len(t, mesh.Vertices, 2)
		assert.Equal(t, float32(-1), mesh.Vertices[1].Position.Z)
		assert.Equal(t, scene.BlendAdditive, mesh.Material.Blending)
		assert.True(t, mesh.Material.VertexColors)
	})

	t.Run("gaze", func(t *testing.T) {
		c := NewController(1)
		require.NoError(t, c.Dispatch(Event{Type: EventConnected, Mode: TargetRayGaze}))
		require.Len(t, c.Node.Children, 1)

		mesh := c.Node.Children[0].Mesh
		require.NotNil(t, mesh)
		assert.Equal(t, "Ring", mesh.Name)
		assert.Equal(t, scene.DrawTriangles, mesh.DrawMode)
		assert.Equal(t, float32(-1), mesh.Vertices[0].Position.Z)
		assert.True(t, mesh.Material.Transparent)
		assert.Equal(t, float32(0.5), mesh.Material.Opacity)
	})

	t.Run("unknown", func(t *testing.T) {
		c := NewController(0)
		require.NoError(t, c.Dispatch(Event{Type: EventConnected, Mode: TargetRayUnknown}))
		assert.Empty(t, c.Node.Children)
		assert.Equal(t, StateConnectedIdle, c.State())
	})
}

func TestDoubleConnectIsRejected(t *testing.T) {
	c := NewController(0)
	require.NoError(t, c.Dispatch(Event{Type: EventConnected, Mode: TargetRayTrackedPointer}))
	require.NoError(t, c.Dispatch(Event{Type: EventSelectStart}))
	visual := c.Node.Children[0]

	err := c.Dispatch(Event{Type: EventConnected, Mode: TargetRayGaze})
	assert.ErrorIs(t, err, ErrAlreadyConnected)
	assert.Equal(t, []*scene.Node{visual}, c.Node.Children)
	assert.Equal(t, TargetRayTrackedPointer, c.Mode())
	assert.True(t, c.IsSelecting())
}

func TestEventsWhileDisconnected(t *testing.T) {
	c := NewController(0)
	for _, typ := range []EventType{EventSelectStart, EventSelectEnd, EventDisconnected} {
		assert.ErrorIs(t, c.Dispatch(Event{Type: typ}), ErrNotConnected, typ.String())
	}
	assert.Equal(t, StateDisconnected, c.State())
	assert.False(t, c.IsSelecting())
}

func TestDisconnectWhileSelectingClearsFlag(t *testing.T) {
	c := NewController(0)
	require.NoError(t, c.Dispatch(Event{Type: EventConnected, Mode: TargetRayGaze}))
	require.NoError(t, c.Dispatch(Event{Type: EventSelectStart}))
	require.NoError(t, c.Dispatch(Event{Type: EventDisconnected}))

	assert.False(t, c.IsSelecting())
	assert.Empty(t, c.Node.Children)

	// a fresh connection works again
	require.NoError(t, c.Dispatch(Event{Type: EventConnected, Mode: TargetRayTrackedPointer}))
	assert.Len(t, c.Node.Children, 1)
}

func TestDisconnectRemovesOnlyFirstChild(t *testing.T) {
	c := NewController(0)
	require.NoError(t, c.Dispatch(Event{Type: EventConnected, Mode: TargetRayGaze}))
	extra := scene.NewNode("attached-later")
	c.Node.AddChild(extra)

	require.NoError(t, c.Dispatch(Event{Type: EventDisconnected}))
	assert.Equal(t, []*scene.Node{extra}, c.Node.Children)
}
