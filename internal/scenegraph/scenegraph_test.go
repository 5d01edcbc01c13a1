package scenegraph

import (
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-5

func unitCube() *Geometry {
	return NewGeometry(NewBox(mgl32.Vec3{-0.5, -0.5, -0.5}, mgl32.Vec3{0.5, 0.5, 0.5}), Group{Kind: Triangles})
}

func assertVec(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got[i], eps, "component %d of %v", i, got)
	}
}

func TestEmptyBox(t *testing.T) {
	b := EmptyBox()
	assert.True(t, b.IsEmpty())
	assert.Equal(t, mgl32.Vec3{}, b.Size())
	assert.Equal(t, mgl32.Vec3{}, b.Center())

	b.ExpandByPoint(mgl32.Vec3{1, 2, 3})
	assert.False(t, b.IsEmpty())
	assert.Equal(t, float32(0), b.MaxDim())
}

func TestBoxTransform(t *testing.T) {
	b := NewBox(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{2, 1, 1})
	m := mgl32.Translate3D(1, 0, 0).Mul4(mgl32.Scale3D(2, 2, 2))
	got := b.Transform(m)
	assertVec(t, mgl32.Vec3{1, 0, 0}, got.Min)
	assertVec(t, mgl32.Vec3{5, 2, 2}, got.Max)

	rot := mgl32.HomogRotate3DZ(mgl32.DegToRad(90))
	got = b.Transform(rot)
	assertVec(t, mgl32.Vec3{-1, 0, 0}, got.Min)
	assertVec(t, mgl32.Vec3{0, 2, 1}, got.Max)
}

func TestSetFromObjectUsesWorldTransforms(t *testing.T) {
	root := NewNode("root")
	group := NewNode("group")
	group.Position = mgl32.Vec3{10, 0, 0}
	group.Scale = mgl32.Vec3{2, 2, 2}
	root.Add(group)
	group.Add(NewMeshNode("a", NewMesh(unitCube())))
	b := NewMeshNode("b", NewMesh(unitCube()))
	b.Position = mgl32.Vec3{0, 5, 0}
	root.Add(b)
	root.Add(NewNode("empty"))

	var box Box3
	box.SetFromObject(root)
	assertVec(t, mgl32.Vec3{-0.5, -1, -1}, box.Min)
	assertVec(t, mgl32.Vec3{11, 5.5, 1}, box.Max)
}

func TestSetFromObjectWithoutMeshesIsEmpty(t *testing.T) {
	root := NewNode("root")
	root.Add(NewNode("child"))
	var box Box3
	assert.True(t, box.SetFromObject(root).IsEmpty())
}

func TestMatrixOverridesTRS(t *testing.T) {
	n := NewNode("n")
	n.Position = mgl32.Vec3{100, 100, 100}
	m := mgl32.Translate3D(1, 2, 3)
	n.Matrix = &m
	assertVec(t, mgl32.Vec3{1, 2, 3}, mgl32.TransformCoordinate(mgl32.Vec3{}, n.LocalMatrix()))
}

func TestTraverseOrderAndPath(t *testing.T) {
	root := NewNode("Model")
	a := NewNode("A")
	a1 := NewNode("A1")
	b := NewNode("B")
	root.Add(a)
	a.Add(a1)
	root.Add(b)

	var names []string
	root.Traverse(func(n *Node) { names = append(names, n.Name) })
	assert.Equal(t, []string{"Model", "A", "A1", "B"}, names)
	assert.Equal(t, "Model/A/A1", a1.Path())
	assert.Same(t, a1, root.Find("A1"))
	assert.Nil(t, root.Find("missing"))

	unnamed := NewNode("")
	unnamed.Add(NewNode("leaf"))
	assert.Equal(t, "leaf", unnamed.Children()[0].Path())
}

func TestAddReparents(t *testing.T) {
	p1, p2, c := NewNode("p1"), NewNode("p2"), NewNode("c")
	p1.Add(c)
	p2.Add(c)
	assert.Empty(t, p1.Children())
	assert.Same(t, p2, c.Parent())
	assert.True(t, p2.Remove(c))
	assert.False(t, p2.Remove(c))
	assert.Nil(t, c.Parent())
}

func TestDisposeRunsHooksOnce(t *testing.T) {
	mat := NewSolidMaterial(DefaultColor)
	line := NewLineMaterial(Lines)
	geom := unitCube()
	root := NewNode("root")
	root.Add(NewMeshNode("m", NewMesh(geom, mat, line, nil)))

	calls := 0
	mat.OnDispose(func() { calls++ })
	geom.OnDispose(func() { calls++ })

	root.Dispose()
	root.Dispose()
	assert.Equal(t, 2, calls)
	assert.True(t, mat.Disposed())
	assert.True(t, line.Disposed())
	assert.True(t, geom.Disposed())

	late := false
	mat.OnDispose(func() { late = true })
	assert.True(t, late)
}

func TestSolidMaterialNeedsUpdate(t *testing.T) {
	m := NewSolidMaterial(color.RGBA{1, 2, 3, 255})
	require.True(t, m.NeedsUpdate())
	m.ClearNeedsUpdate()
	m.SetColor(color.RGBA{4, 5, 6, 255})
	assert.False(t, m.NeedsUpdate())
	m.MarkNeedsUpdate()
	assert.True(t, m.NeedsUpdate())
	assert.Equal(t, color.RGBA{4, 5, 6, 255}, m.Color())

	var _ Colorer = m
	var mat Material = NewLineMaterial(Points)
	_, ok := mat.(Colorer)
	assert.False(t, ok)
}
