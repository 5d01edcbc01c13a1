// Package scene owns the 3D side of the window: the perspective camera driven by the orbit
// controller, background, lights, the reference grid and the model renderer.
package scene

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"configurator/internal/orbit"
)

const (
	// Grid lines are counted in steps of gridStep; the fitted model spans one unit.
	gridHalfLines  = 20
	gridStep       = 0.1
	gridMajorEvery = 5
	gridY          = -0.5
	gridMinorAlpha = 50
	gridMajorAlpha = 120
	axisLineAlpha  = 220
)

// CameraSettings configures the perspective projection and the orbit limits.
type CameraSettings struct {
	FOV         float32
	Near        float32
	Far         float32
	Distance    float32
	MinDistance float32
	MaxDistance float32
	Damping     float32
}

// Scene holds the camera, the orbit controller and the renderer.
// Update runs input and damping; Draw renders between BeginMode3D and EndMode3D.
type Scene struct {
	Camera      rl.Camera3D
	Orbit       *orbit.Controller
	Background  rl.Color
	Lights      Lighting
	GridVisible bool
	Renderer    *Renderer

	near, far float64
	dragging  bool
}

// New returns a scene looking at the origin from (0, 0, Distance). Call after the window exists.
func New(cam CameraSettings, background color.RGBA) *Scene {
	s := &Scene{
		Background: background,
		Lights:     DefaultLighting(),
		Renderer:   NewRenderer(),
		near:       float64(cam.Near),
		far:        float64(cam.Far),
	}
	s.Orbit = orbit.New(mgl32.Vec3{0, 0, cam.Distance}, mgl32.Vec3{}, cam.MinDistance, cam.MaxDistance, cam.Damping)
	s.Camera.Up = rl.NewVector3(0, 1, 0)
	s.Camera.Fovy = cam.FOV
	s.Camera.Projection = rl.CameraPerspective
	s.syncCamera(s.Orbit.Position())
	return s
}

// SetGridVisible sets whether the reference grid is drawn.
func (s *Scene) SetGridVisible(visible bool) {
	s.GridVisible = visible
}

// Update feeds mouse input to the orbit controller when pointer is true (the pointer is
// not over UI) and advances damping. Left drag rotates, the wheel zooms; panning is off.
func (s *Scene) Update(pointer bool) {
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		s.dragging = pointer
	}
	if !rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		s.dragging = false
	}
	if s.dragging {
		d := rl.GetMouseDelta()
		s.Orbit.Rotate(d.X, d.Y)
	}
	if pointer {
		if wheel := rl.GetMouseWheelMove(); wheel != 0 {
			s.Orbit.Zoom(wheel)
		}
	}
	s.syncCamera(s.Orbit.Update())
}

func (s *Scene) syncCamera(pos mgl32.Vec3) {
	s.Camera.Position = rl.NewVector3(pos.X(), pos.Y(), pos.Z())
	t := s.Orbit.Target
	s.Camera.Target = rl.NewVector3(t.X(), t.Y(), t.Z())
}

// Draw clears to the background and renders the model and grid. The projection aspect
// follows the current screen size, so a resized window needs no extra step.
func (s *Scene) Draw() {
	rl.ClearBackground(s.Background)
	rl.SetClipPlanes(s.near, s.far)
	s.Renderer.apply(s.Lights, s.Camera.Position)
	rl.BeginMode3D(s.Camera)
	s.Renderer.Draw()
	if s.GridVisible {
		drawGrid()
	}
	rl.EndMode3D()
}

// Close releases GPU resources.
func (s *Scene) Close() {
	s.Renderer.Close()
}

// drawGrid draws a grid on the XZ plane under the fitted model, with major lines and
// axis lines. Reuses start/end vectors in the loop.
func drawGrid() {
	minor := rl.NewColor(128, 128, 128, gridMinorAlpha)
	major := rl.NewColor(96, 96, 96, gridMajorAlpha)
	axisX := rl.NewColor(220, 80, 80, axisLineAlpha)
	axisZ := rl.NewColor(80, 80, 220, axisLineAlpha)

	const extent = gridHalfLines * gridStep
	var start, end rl.Vector3
	for i := -gridHalfLines; i <= gridHalfLines; i++ {
		c := minor
		if i%gridMajorEvery == 0 {
			c = major
		}
		v := float32(i) * gridStep
		start.X, start.Y, start.Z = v, gridY, -extent
		end.X, end.Y, end.Z = v, gridY, extent
		rl.DrawLine3D(start, end, c)
		start.X, start.Y, start.Z = -extent, gridY, v
		end.X, end.Y, end.Z = extent, gridY, v
		rl.DrawLine3D(start, end, c)
	}

	start.X, start.Y, start.Z = -extent, gridY, 0
	end.X, end.Y, end.Z = extent, gridY, 0
	rl.DrawLine3D(start, end, axisX)
	start.X, start.Y, start.Z = 0, gridY, -extent
	end.X, end.Y, end.Z = 0, gridY, extent
	rl.DrawLine3D(start, end, axisZ)
}
