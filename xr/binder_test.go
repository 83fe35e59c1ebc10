package xr

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vr-scene/math"
	"vr-scene/scene"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewBinderAddsNodes(t *testing.T) {
	s := scene.NewScene()
	b := NewBinder(s, quietLogger())

	require.Len(t, s.Root.Children, 4)
	for slot := 0; slot < Slots; slot++ {
		assert.Same(t, s.Root, b.Controllers[slot].Node.Parent)
		assert.Same(t, s.Root, b.Grips[slot].Parent)
		assert.Equal(t, slot, b.Controllers[slot].Slot)
		assert.NotEmpty(t, b.Grips[slot].Children)
	}
}

func TestBinderRoutesPerSlot(t *testing.T) {
	b := NewBinder(scene.NewScene(), quietLogger())

	require.NoError(t, b.Dispatch(0, Event{Type: EventConnected, Mode: TargetRayTrackedPointer}))
	require.NoError(t, b.Dispatch(1, Event{Type: EventConnected, Mode: TargetRayGaze}))
	require.NoError(t, b.Dispatch(1, Event{Type: EventSelectStart}))

	assert.False(t, b.Controllers[0].IsSelecting())
	assert.True(t, b.Controllers[1].IsSelecting())
	assert.ErrorIs(t, b.Dispatch(0, Event{Type: EventConnected}), ErrAlreadyConnected)
}

func TestBinderRejectsUnknownSlot(t *testing.T) {
	b := NewBinder(scene.NewScene(), quietLogger())

	assert.ErrorIs(t, b.Dispatch(Slots, Event{Type: EventConnected, Mode: TargetRayGaze}), ErrUnknownSlot)
	assert.ErrorIs(t, b.Dispatch(-1, Event{Type: EventSelectStart}), ErrUnknownSlot)
	for slot := 0; slot < Slots; slot++ {
		assert.Equal(t, StateDisconnected, b.Controllers[slot].State())
	}
}

type fakeJoysticks struct {
	present, gamepad, selecting [Slots]bool
}

func (f *fakeJoysticks) Present(slot int) bool   { return f.present[slot] }
func (f *fakeJoysticks) IsGamepad(slot int) bool { return f.gamepad[slot] }
func (f *fakeJoysticks) Selecting(slot int) bool { return f.selecting[slot] }

func TestGamepadSourceDispatchesChanges(t *testing.T) {
	b := NewBinder(scene.NewScene(), quietLogger())
	js := &fakeJoysticks{}
	src := NewGamepadSource(js, b)

	src.Poll()
	assert.Equal(t, StateDisconnected, b.Controllers[0].State())

	js.present[0], js.gamepad[0] = true, true
	js.present[1] = true
	src.Poll()
	assert.Equal(t, TargetRayTrackedPointer, b.Controllers[0].Mode())
	assert.Equal(t, TargetRayGaze, b.Controllers[1].Mode())

	js.selecting[0] = true
	src.Poll()
	assert.True(t, b.Controllers[0].IsSelecting())
	src.Poll()
	assert.True(t, b.Controllers[0].IsSelecting())

	js.selecting[0] = false
	src.Poll()
	assert.False(t, b.Controllers[0].IsSelecting())

	js.selecting[1] = true
	src.Poll()
	js.present[1] = false
	src.Poll()
	assert.Equal(t, StateDisconnected, b.Controllers[1].State())
	assert.Empty(t, b.Controllers[1].Node.Children)

	// reconnecting while the button is still down starts a new selection
	js.present[1] = true
	src.Poll()
	assert.True(t, b.Controllers[1].IsSelecting())
}

func TestSelectStartPicksNodeAlongRay(t *testing.T) {
	s := scene.NewScene()
	b := NewBinder(s, quietLogger())

	wall := scene.NewMeshNode("wall", scene.CreateBox(2, 2, 0.2))
	wall.SetPosition(math.Vec3{Z: -3})
	s.AddNode(wall)

	require.NoError(t, b.Dispatch(0, Event{Type: EventConnected, Mode: TargetRayGaze}))
	require.NoError(t, b.Dispatch(0, Event{Type: EventSelectStart}))
	assert.Same(t, wall, b.Targets[0])

	require.NoError(t, b.Dispatch(0, Event{Type: EventSelectEnd}))
	wall.Visible = false
	require.NoError(t, b.Dispatch(0, Event{Type: EventSelectStart}))
	assert.Nil(t, b.Targets[0])
}
