package scenegraph

import "image/color"

// DefaultColor is the neutral gray used when a slot had no material to seed from.
var DefaultColor = color.RGBA{R: 0xCC, G: 0xCC, B: 0xCC, A: 0xFF}

// disposer tracks disposal and runs release hooks exactly once.
type disposer struct {
	disposed bool
	hooks    []func()
}

// OnDispose registers fn to run when the owner is disposed (e.g. freeing GPU state).
// If the owner is already disposed, fn runs immediately.
func (d *disposer) OnDispose(fn func()) {
	if d.disposed {
		fn()
		return
	}
	d.hooks = append(d.hooks, fn)
}

// Dispose runs the release hooks once. Later calls are no-ops.
func (d *disposer) Dispose() {
	if d.disposed {
		return
	}
	d.disposed = true
	hooks := d.hooks
	d.hooks = nil
	for _, fn := range hooks {
		fn()
	}
}

// Disposed reports whether Dispose has run.
func (d *disposer) Disposed() bool {
	return d.disposed
}

// Material is a drawable surface description. NeedsUpdate signals the renderer that
// its cached GPU-side state is stale; the renderer clears it after re-uploading.
type Material interface {
	MarkNeedsUpdate()
	NeedsUpdate() bool
	ClearNeedsUpdate()
	OnDispose(fn func())
	Dispose()
	Disposed() bool
}

// Colorer is a Material with a settable solid color.
type Colorer interface {
	Material
	Color() color.RGBA
	SetColor(c color.RGBA)
}

// SolidMaterial is a lit material with one solid color.
type SolidMaterial struct {
	disposer
	color       color.RGBA
	needsUpdate bool
}

// NewSolidMaterial returns a solid material of color c, flagged for upload.
func NewSolidMaterial(c color.RGBA) *SolidMaterial {
	return &SolidMaterial{color: c, needsUpdate: true}
}

func (m *SolidMaterial) Color() color.RGBA { return m.color }

// SetColor changes the color. Callers mark the material with MarkNeedsUpdate.
func (m *SolidMaterial) SetColor(c color.RGBA) { m.color = c }

// MarkNeedsUpdate flags the material for re-upload on the next frame.
func (m *SolidMaterial) MarkNeedsUpdate() { m.needsUpdate = true }

func (m *SolidMaterial) NeedsUpdate() bool { return m.needsUpdate }

func (m *SolidMaterial) ClearNeedsUpdate() { m.needsUpdate = false }

// PrimitiveKind is the topology of a geometry group. Only Triangles groups are drawn.
type PrimitiveKind int

const (
	Triangles PrimitiveKind = iota
	Lines
	Points
	TriangleStrip
	TriangleFan
)

func (k PrimitiveKind) String() string {
	switch k {
	case Triangles:
		return "triangles"
	case Lines:
		return "lines"
	case Points:
		return "points"
	case TriangleStrip:
		return "triangle strip"
	case TriangleFan:
		return "triangle fan"
	default:
		return "unknown"
	}
}

// LineMaterial draws line or point topology. It has no settable color.
type LineMaterial struct {
	disposer
	Kind        PrimitiveKind
	needsUpdate bool
}

// NewLineMaterial returns the material of a group of the given kind that is not drawn as
// triangles.
func NewLineMaterial(kind PrimitiveKind) *LineMaterial {
	return &LineMaterial{Kind: kind, needsUpdate: true}
}

func (m *LineMaterial) MarkNeedsUpdate() { m.needsUpdate = true }

func (m *LineMaterial) NeedsUpdate() bool { return m.needsUpdate }

func (m *LineMaterial) ClearNeedsUpdate() { m.needsUpdate = false }
