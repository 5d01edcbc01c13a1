// Package orbit implements an orbit camera controller: rotate around a target, zoom
// between a minimum and maximum distance, with optional damping. Panning is not supported.
package orbit

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// maxPitch keeps the camera just short of the poles so the up vector stays valid.
const maxPitch = math32.Pi/2 - 0.01

const (
	// DefaultRotateSpeed is radians of rotation per pixel of pointer movement.
	DefaultRotateSpeed = 0.005
	// DefaultZoomStep scales the distance per wheel notch.
	DefaultZoomStep = 0.95
)

// Controller holds the orbit state. Angles are radians; Yaw 0 and Pitch 0 look down -Z
// from a camera on the +Z axis.
type Controller struct {
	Target        mgl32.Vec3
	Distance      float32
	Yaw           float32
	Pitch         float32
	MinDistance   float32
	MaxDistance   float32
	DampingFactor float32
	RotateSpeed   float32
	ZoomStep      float32

	yawDelta   float32
	pitchDelta float32
	zoomScale  float32
}

// New returns a controller whose camera starts at position looking at target.
func New(position, target mgl32.Vec3, minDistance, maxDistance, damping float32) *Controller {
	c := &Controller{
		Target:        target,
		MinDistance:   minDistance,
		MaxDistance:   maxDistance,
		DampingFactor: damping,
		RotateSpeed:   DefaultRotateSpeed,
		ZoomStep:      DefaultZoomStep,
		zoomScale:     1,
	}
	offset := position.Sub(target)
	c.Distance = offset.Len()
	if c.Distance > 0 {
		c.Yaw = math32.Atan2(offset[0], offset[2])
		c.Pitch = math32.Asin(clamp(offset[1]/c.Distance, -1, 1))
	}
	c.Pitch = clamp(c.Pitch, -maxPitch, maxPitch)
	c.Distance = c.clampDistance(c.Distance)
	return c
}

// Rotate queues a rotation from a pointer movement of (dx, dy) pixels.
func (c *Controller) Rotate(dx, dy float32) {
	c.yawDelta -= dx * c.RotateSpeed
	c.pitchDelta += dy * c.RotateSpeed
}

// Zoom queues a zoom from wheel notches; positive values move closer.
func (c *Controller) Zoom(wheel float32) {
	if wheel == 0 {
		return
	}
	if c.zoomScale == 0 {
		c.zoomScale = 1
	}
	c.zoomScale *= math32.Pow(c.ZoomStep, wheel)
}

// Update applies queued input and returns the camera position. With damping, only a
// DampingFactor share of the pending rotation is applied per call and the rest decays.
func (c *Controller) Update() mgl32.Vec3 {
	if c.DampingFactor > 0 && c.DampingFactor < 1 {
		c.Yaw += c.yawDelta * c.DampingFactor
		c.Pitch += c.pitchDelta * c.DampingFactor
		c.yawDelta *= 1 - c.DampingFactor
		c.pitchDelta *= 1 - c.DampingFactor
		if math32.Abs(c.yawDelta) < 1e-6 {
			c.yawDelta = 0
		}
		if math32.Abs(c.pitchDelta) < 1e-6 {
			c.pitchDelta = 0
		}
	} else {
		c.Yaw += c.yawDelta
		c.Pitch += c.pitchDelta
		c.yawDelta, c.pitchDelta = 0, 0
	}
	c.Pitch = clamp(c.Pitch, -maxPitch, maxPitch)

	if c.zoomScale != 0 && c.zoomScale != 1 {
		c.Distance *= c.zoomScale
	}
	c.zoomScale = 1
	c.Distance = c.clampDistance(c.Distance)
	return c.Position()
}

// Moving reports whether damped rotation is still settling.
func (c *Controller) Moving() bool {
	return c.yawDelta != 0 || c.pitchDelta != 0
}

// Position returns the camera position for the current angles and distance.
func (c *Controller) Position() mgl32.Vec3 {
	cp := math32.Cos(c.Pitch)
	dir := mgl32.Vec3{cp * math32.Sin(c.Yaw), math32.Sin(c.Pitch), cp * math32.Cos(c.Yaw)}
	return c.Target.Add(dir.Mul(c.Distance))
}

func (c *Controller) clampDistance(d float32) float32 {
	if c.MaxDistance > 0 {
		d = math32.Min(d, c.MaxDistance)
	}
	return math32.Max(d, c.MinDistance)
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}
