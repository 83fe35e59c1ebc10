package scene

import (
	"vr-scene/math"
)

// Camera is a perspective camera looking from Position towards Target.
type Camera struct {
	Position    math.Vec3
	Target      math.Vec3
	Up          math.Vec3
	FOV         float32 // vertical, radians
	AspectRatio float32
	NearPlane   float32
	FarPlane    float32

	viewMatrix       math.Mat4
	projectionMatrix math.Mat4
	viewDirty        bool
}

func NewCamera(fov, aspectRatio, nearPlane, farPlane float32) *Camera {
	c := &Camera{
		Position:    math.Vec3Zero,
		Target:      math.Vec3Back,
		Up:          math.Vec3Up,
		FOV:         fov,
		AspectRatio: aspectRatio,
		NearPlane:   nearPlane,
		FarPlane:    farPlane,
		viewDirty:   true,
	}
	c.UpdateProjectionMatrix()
	return c
}

// SetAspect changes the aspect ratio. The projection matrix keeps its old
// value until UpdateProjectionMatrix is called.
func (c *Camera) SetAspect(aspect float32) {
	c.AspectRatio = aspect
}

func (c *Camera) UpdateProjectionMatrix() {
	c.projectionMatrix = math.Mat4Perspective(c.FOV, c.AspectRatio, c.NearPlane, c.FarPlane)
}

func (c *Camera) SetPosition(pos math.Vec3) {
	c.Position = pos
	c.viewDirty = true
}

func (c *Camera) LookAt(target math.Vec3) {
	c.Target = target
	c.viewDirty = true
}

func (c *Camera) GetViewMatrix() math.Mat4 {
	if c.viewDirty {
		c.viewMatrix = math.Mat4LookAt(c.Position, c.Target, c.Up)
		c.viewDirty = false
	}
	return c.viewMatrix
}

func (c *Camera) GetProjectionMatrix() math.Mat4 {
	return c.projectionMatrix
}

func (c *Camera) GetViewProjectionMatrix() math.Mat4 {
	return c.GetViewMatrix().Mul(c.projectionMatrix)
}

func (c *Camera) GetForward() math.Vec3 {
	return c.Target.Sub(c.Position).Normalize()
}
