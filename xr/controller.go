// Package xr binds VR input-device events to controller nodes in the scene.
package xr

import (
	"errors"
	"fmt"

	"vr-scene/scene"
)

// TargetRayMode is the pointing modality a device reports when it connects.
type TargetRayMode int

const (
	TargetRayUnknown TargetRayMode = iota
	TargetRayTrackedPointer
	TargetRayGaze
)

// ParseTargetRayMode maps the device strings "tracked-pointer" and "gaze";
// anything else is TargetRayUnknown.
func ParseTargetRayMode(s string) TargetRayMode {
	switch s {
	case "tracked-pointer":
		return TargetRayTrackedPointer
	case "gaze":
		return TargetRayGaze
	}
	return TargetRayUnknown
}

func (m TargetRayMode) String() string {
	switch m {
	case TargetRayTrackedPointer:
		return "tracked-pointer"
	case TargetRayGaze:
		return "gaze"
	}
	return "unknown"
}

type EventType int

const (
	EventConnected EventType = iota
	EventDisconnected
	EventSelectStart
	EventSelectEnd
)

func (t EventType) String() string {
	switch t {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventSelectStart:
		return "selectstart"
	case EventSelectEnd:
		return "selectend"
	}
	return fmt.Sprintf("EventType(%d)", int(t))
}

// Event is one message from the input-device stream. Mode is only
// meaningful for EventConnected.
type Event struct {
	Type EventType
	Mode TargetRayMode
}

type State int

const (
	StateDisconnected State = iota
	StateConnectedIdle
	StateConnectedSelecting
)

func (s State) String() string {
	switch s {
	case StateConnectedIdle:
		return "connected-idle"
	case StateConnectedSelecting:
		return "connected-selecting"
	}
	return "disconnected"
}

var (
	// ErrAlreadyConnected is returned for a second connect without a
	// disconnect in between. The controller is left as it was.
	ErrAlreadyConnected = errors.New("xr: controller already connected")
	// ErrNotConnected is returned for select or disconnect events on a
	// disconnected controller.
	ErrNotConnected = errors.New("xr: controller not connected")
	// ErrUnknownSlot is returned by Binder.Dispatch for a slot outside
	// [0, Slots).
	ErrUnknownSlot = errors.New("xr: unknown controller slot")
)

// Controller is the state machine for one device slot. Its Node carries at
// most one visual while connected.
type Controller struct {
	Slot int
	Node *scene.Node

	state State
	mode  TargetRayMode
}

func NewController(slot int) *Controller {
	return &Controller{
		Slot: slot,
		Node: scene.NewNode(fmt.Sprintf("controller_%d", slot)),
	}
}

func (c *Controller) State() State {
	return c.state
}

func (c *Controller) Mode() TargetRayMode {
	return c.mode
}

func (c *Controller) IsSelecting() bool {
	return c.state == StateConnectedSelecting
}

// Dispatch applies one event. Events that do not fit the current state
// return an error and change nothing.
func (c *Controller) Dispatch(e Event) error {
	switch e.Type {
	case EventConnected:
		if c.state != StateDisconnected {
			return ErrAlreadyConnected
		}
		c.state = StateConnectedIdle
		c.mode = e.Mode
		if visual := BuildVisual(e.Mode); visual != nil {
			c.Node.AddChild(visual)
		}

	case EventDisconnected:
		if c.state == StateDisconnected {
			return ErrNotConnected
		}
		if len(c.Node.Children) > 0 {
			c.Node.RemoveChild(c.Node.Children[0])
		}
		c.state = StateDisconnected
		c.mode = TargetRayUnknown

	case EventSelectStart:
		if c.state == StateDisconnected {
			return ErrNotConnected
		}
		c.state = StateConnectedSelecting

	case EventSelectEnd:
		if c.state == StateDisconnected {
			return ErrNotConnected
		}
		c.state = StateConnectedIdle

	default:
		return fmt.Errorf("xr: unknown event %v", e.Type)
	}
	return nil
}
