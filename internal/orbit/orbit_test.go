package orbit

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func assertVec(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got[i], 1e-4, "component %d of %v", i, got)
	}
}

func TestNewDerivesAnglesFromPosition(t *testing.T) {
	c := New(mgl32.Vec3{0, 0, 2}, mgl32.Vec3{}, 0.5, 5, 0.25)
	assert.InDelta(t, 2, c.Distance, 1e-6)
	assert.InDelta(t, 0, c.Yaw, 1e-6)
	assert.InDelta(t, 0, c.Pitch, 1e-6)
	assertVec(t, mgl32.Vec3{0, 0, 2}, c.Update())

	side := New(mgl32.Vec3{3, 0, 0}, mgl32.Vec3{}, 0.5, 5, 0)
	assert.InDelta(t, math32.Pi/2, side.Yaw, 1e-5)
	assertVec(t, mgl32.Vec3{3, 0, 0}, side.Position())
}

func TestZoomClampsDistance(t *testing.T) {
	c := New(mgl32.Vec3{0, 0, 2}, mgl32.Vec3{}, 0.5, 5, 0.25)
	c.Zoom(100)
	c.Update()
	assert.InDelta(t, 0.5, c.Distance, 1e-6)

	c.Zoom(-1000)
	c.Update()
	assert.InDelta(t, 5, c.Distance, 1e-6)

	c.Zoom(1)
	c.Update()
	assert.InDelta(t, 5*DefaultZoomStep, c.Distance, 1e-5)
}

func TestRotateWithoutDampingAppliesAtOnce(t *testing.T) {
	c := New(mgl32.Vec3{0, 0, 2}, mgl32.Vec3{}, 0.5, 5, 0)
	c.RotateSpeed = 1
	c.Rotate(-math32.Pi/2, 0)
	assertVec(t, mgl32.Vec3{2, 0, 0}, c.Update())
	assert.False(t, c.Moving())
}

func TestDampingConvergesToFullRotation(t *testing.T) {
	c := New(mgl32.Vec3{0, 0, 2}, mgl32.Vec3{}, 0.5, 5, 0.25)
	c.RotateSpeed = 1
	c.Rotate(-1, 0)

	c.Update()
	assert.InDelta(t, 0.25, c.Yaw, 1e-6)
	assert.True(t, c.Moving())

	for i := 0; i < 200 && c.Moving(); i++ {
		c.Update()
	}
	assert.False(t, c.Moving())
	assert.InDelta(t, 1, c.Yaw, 1e-4)
}

func TestPitchIsClamped(t *testing.T) {
	c := New(mgl32.Vec3{0, 0, 2}, mgl32.Vec3{}, 0.5, 5, 0)
	c.RotateSpeed = 1
	c.Rotate(0, 10)
	pos := c.Update()
	assert.InDelta(t, maxPitch, c.Pitch, 1e-6)
	assert.Greater(t, pos[1], float32(1.99))
	assert.InDelta(t, 2, pos.Len(), 1e-5)
}
