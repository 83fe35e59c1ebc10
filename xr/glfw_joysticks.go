package xr

import "github.com/go-gl/glfw/v3.3/glfw"

const triggerThreshold = 0.5

// GLFWJoysticks reads glfw joystick slots. Methods must be called on the
// main thread after glfw.Init.
type GLFWJoysticks struct{}

func (GLFWJoysticks) Present(slot int) bool {
	return glfw.Joystick(slot).Present()
}

func (GLFWJoysticks) IsGamepad(slot int) bool {
	return glfw.Joystick(slot).IsGamepad()
}

// Selecting is the A button or the right trigger on a gamepad, and the first
// button on a plain joystick.
func (GLFWJoysticks) Selecting(slot int) bool {
	joy := glfw.Joystick(slot)
	if joy.IsGamepad() {
		state := joy.GetGamepadState()
		if state == nil {
			return false
		}
		return state.Buttons[glfw.ButtonA] == glfw.Press ||
			state.Axes[glfw.AxisRightTrigger] > triggerThreshold
	}
	buttons := joy.GetButtons()
	return len(buttons) > 0 && buttons[0] == glfw.Press
}
