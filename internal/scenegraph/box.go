package scenegraph

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Box3 is an axis-aligned bounding box. The zero value is a degenerate box at the origin;
// use EmptyBox for an empty box that any point expands.
type Box3 struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyBox returns a box with Min=+Inf and Max=-Inf.
func EmptyBox() Box3 {
	inf := math32.Inf(1)
	return Box3{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// NewBox returns the box spanning lo and hi.
func NewBox(lo, hi mgl32.Vec3) Box3 {
	return Box3{Min: lo, Max: hi}
}

// IsEmpty reports whether the box contains no point.
func (b Box3) IsEmpty() bool {
	return b.Max[0] < b.Min[0] || b.Max[1] < b.Min[1] || b.Max[2] < b.Min[2]
}

// ExpandByPoint grows the box to include p.
func (b *Box3) ExpandByPoint(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		b.Min[i] = math32.Min(b.Min[i], p[i])
		b.Max[i] = math32.Max(b.Max[i], p[i])
	}
}

// Union grows the box to include o. Empty boxes are ignored.
func (b *Box3) Union(o Box3) {
	if o.IsEmpty() {
		return
	}
	b.ExpandByPoint(o.Min)
	b.ExpandByPoint(o.Max)
}

// Size returns the extents along each axis; zero for an empty box.
func (b Box3) Size() mgl32.Vec3 {
	if b.IsEmpty() {
		return mgl32.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint; zero for an empty box.
func (b Box3) Center() mgl32.Vec3 {
	if b.IsEmpty() {
		return mgl32.Vec3{}
	}
	return b.Min.Add(b.Max).Mul(0.5)
}

// MaxDim returns the largest of the three extents.
func (b Box3) MaxDim() float32 {
	s := b.Size()
	return math32.Max(s[0], math32.Max(s[1], s[2]))
}

// Transform returns the axis-aligned box enclosing the 8 corners of b transformed by m.
func (b Box3) Transform(m mgl32.Mat4) Box3 {
	if b.IsEmpty() {
		return b
	}
	out := EmptyBox()
	for i := 0; i < 8; i++ {
		corner := mgl32.Vec3{b.Min[0], b.Min[1], b.Min[2]}
		if i&1 != 0 {
			corner[0] = b.Max[0]
		}
		if i&2 != 0 {
			corner[1] = b.Max[1]
		}
		if i&4 != 0 {
			corner[2] = b.Max[2]
		}
		out.ExpandByPoint(mgl32.TransformCoordinate(corner, m))
	}
	return out
}

// SetFromObject sets b to the world-space bounds of every mesh-bearing node under root
// (root included). Nodes without geometry contribute nothing.
func (b *Box3) SetFromObject(root *Node) *Box3 {
	*b = EmptyBox()
	root.TraverseMeshes(func(n *Node) {
		if n.Mesh.Geometry == nil {
			return
		}
		b.Union(n.Mesh.Geometry.Bounds.Transform(n.WorldMatrix()))
	})
	return b
}
