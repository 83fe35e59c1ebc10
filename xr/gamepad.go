package xr

// Joysticks is the polled view of input devices in slots 0 and 1.
type Joysticks interface {
	Present(slot int) bool
	// IsGamepad reports a device with a standard gamepad mapping.
	IsGamepad(slot int) bool
	// Selecting reports whether the select control is held.
	Selecting(slot int) bool
}

// GamepadSource turns polled device state into binder events. Gamepads
// connect as tracked pointers, other joysticks as gaze devices.
type GamepadSource struct {
	joysticks Joysticks
	binder    *Binder

	present   [Slots]bool
	selecting [Slots]bool
}

func NewGamepadSource(js Joysticks, binder *Binder) *GamepadSource {
	return &GamepadSource{joysticks: js, binder: binder}
}

// Poll compares the devices with the previous poll and dispatches the
// differences. Call it once per frame on the render thread.
func (s *GamepadSource) Poll() {
	for slot := 0; slot < Slots; slot++ {
		present := s.joysticks.Present(slot)

		switch {
		case present && !s.present[slot]:
			mode := TargetRayGaze
			if s.joysticks.IsGamepad(slot) {
				mode = TargetRayTrackedPointer
			}
			s.binder.Dispatch(slot, Event{Type: EventConnected, Mode: mode})
		case !present && s.present[slot]:
			s.binder.Dispatch(slot, Event{Type: EventDisconnected})
			s.selecting[slot] = false
		}
		s.present[slot] = present
		if !present {
			continue
		}

		selecting := s.joysticks.Selecting(slot)
		if selecting != s.selecting[slot] {
			if selecting {
				s.binder.Dispatch(slot, Event{Type: EventSelectStart})
			} else {
				s.binder.Dispatch(slot, Event{Type: EventSelectEnd})
			}
			s.selecting[slot] = selecting
		}
	}
}
