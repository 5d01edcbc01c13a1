// Package scenegraph is the small engine-independent tree the configurator fits and binds:
// named nodes with TRS transforms, meshes with local bounds, and material slots that
// carry an explicit "needs update" flag for the renderer.
package scenegraph

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Node is one element of the tree. A node with a non-nil Mesh is drawable.
type Node struct {
	Name     string
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
	// Matrix, when set, replaces the TRS fields as the local transform.
	Matrix *mgl32.Mat4
	Mesh   *Mesh

	parent   *Node
	children []*Node
}

// NewNode returns a node with an identity transform.
func NewNode(name string) *Node {
	return &Node{
		Name:     name,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// NewMeshNode returns an identity-transform node carrying mesh.
func NewMeshNode(name string, mesh *Mesh) *Node {
	n := NewNode(name)
	n.Mesh = mesh
	return n
}

// Add attaches child under n, detaching it from any previous parent.
func (n *Node) Add(child *Node) {
	if child.parent != nil {
		child.parent.Remove(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

// Remove detaches child from n. Returns false if child was not a child of n.
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// Children returns the direct children in insertion order.
func (n *Node) Children() []*Node {
	return n.children
}

// Parent returns the parent, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Path returns the slash-joined names from the topmost ancestor down to n,
// skipping unnamed nodes. E.g. "Mandala/Layer_A".
func (n *Node) Path() string {
	var names []string
	for p := n; p != nil; p = p.parent {
		if p.Name != "" {
			names = append(names, p.Name)
		}
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, "/")
}

// LocalMatrix returns T * R * S, or Matrix when set.
func (n *Node) LocalMatrix() mgl32.Mat4 {
	if n.Matrix != nil {
		return *n.Matrix
	}
	t := mgl32.Translate3D(n.Position[0], n.Position[1], n.Position[2])
	r := n.Rotation.Normalize().Mat4()
	s := mgl32.Scale3D(n.Scale[0], n.Scale[1], n.Scale[2])
	return t.Mul4(r).Mul4(s)
}

// WorldMatrix returns the product of all local matrices from the root down to n.
func (n *Node) WorldMatrix() mgl32.Mat4 {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.LocalMatrix().Mul4(m)
	}
	return m
}

// Traverse visits n and every descendant depth-first, parents before children.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Traverse(fn)
	}
}

// TraverseMeshes is Traverse restricted to nodes that carry a mesh.
func (n *Node) TraverseMeshes(fn func(*Node)) {
	n.Traverse(func(c *Node) {
		if c.Mesh != nil {
			fn(c)
		}
	})
}

// Find returns the first node in traversal order whose name equals name.
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Traverse(func(c *Node) {
		if found == nil && c.Name == name {
			found = c
		}
	})
	return found
}

// Dispose releases the geometry and materials of every mesh in the subtree.
// The tree structure itself is left intact.
func (n *Node) Dispose() {
	n.TraverseMeshes(func(c *Node) {
		c.Mesh.Dispose()
	})
}
