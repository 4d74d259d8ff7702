// internal/scene/camera.go
//
// Perspective camera framing a human-scale subject
package scene

import "github.com/go-gl/mathgl/mgl32"

// Camera represents a perspective camera
type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3

	// Projection parameters
	FOV         float32 // vertical, degrees
	AspectRatio float32
	NearPlane   float32
	FarPlane    float32

	// Cached matrices
	viewMatrix       mgl32.Mat4
	projectionMatrix mgl32.Mat4
	dirty            bool
}

// NewCamera creates a new camera
func NewCamera(position, target mgl32.Vec3, fov, aspect, near, far float32) *Camera {
	c := &Camera{
		Position:    position,
		Target:      target,
		Up:          mgl32.Vec3{0, 1, 0},
		FOV:         fov,
		AspectRatio: aspect,
		NearPlane:   near,
		FarPlane:    far,
		dirty:       true,
	}
	c.updateMatrices()
	return c
}

// NewHeroCamera frames a standing character from chest height, 3m away
func NewHeroCamera(aspect float32) *Camera {
	return NewCamera(
		mgl32.Vec3{0, 1, 3},
		mgl32.Vec3{0, 1, 0},
		50.0,
		aspect,
		0.1, 100.0,
	)
}

// ViewMatrix returns the view matrix
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the projection matrix
func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.projectionMatrix
}

func (c *Camera) updateMatrices() {
	c.viewMatrix = mgl32.LookAtV(c.Position, c.Target, c.Up)
	c.projectionMatrix = mgl32.Perspective(
		mgl32.DegToRad(c.FOV),
		c.AspectRatio,
		c.NearPlane,
		c.FarPlane,
	)
	c.dirty = false
}

// SetPosition updates camera position
func (c *Camera) SetPosition(pos mgl32.Vec3) {
	c.Position = pos
	c.dirty = true
}

// SetTarget updates camera target
func (c *Camera) SetTarget(target mgl32.Vec3) {
	c.Target = target
	c.dirty = true
}

// SetAspectRatio updates aspect ratio
func (c *Camera) SetAspectRatio(aspect float32) {
	c.AspectRatio = aspect
	c.dirty = true
}

// SetViewport derives the aspect ratio from a pixel size. A zero height
// (minimized window) leaves the previous aspect in place.
func (c *Camera) SetViewport(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	c.SetAspectRatio(float32(width) / float32(height))
	return true
}
