package configurator

import (
	"image/color"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"configurator/internal/logger"
	"configurator/internal/manifest"
	"configurator/internal/palette"
	"configurator/internal/scenegraph"
)

var testIDs = map[Part]string{Front: "Mandala_Schicht_A", Back: "Mandala_Schicht_B"}

func cube(size float32) *scenegraph.Geometry {
	h := size / 2
	return scenegraph.NewGeometry(scenegraph.NewBox(mgl32.Vec3{-h, -h, -h}, mgl32.Vec3{h, h, h}),
		scenegraph.Group{Kind: scenegraph.Triangles})
}

func meshNode(name string, mats ...scenegraph.Material) *scenegraph.Node {
	return scenegraph.NewMeshNode(name, scenegraph.NewMesh(cube(1), mats...))
}

func newTestViewer() (*Viewer, *logger.Logger) {
	out := logger.New("")
	return New(testIDs, out.Slog(slog.LevelDebug)), out
}

func logged(out *logger.Logger, substr string) bool {
	for _, l := range out.Lines() {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

func mandala() *scenegraph.Node {
	root := scenegraph.NewNode("")
	group := scenegraph.NewNode("Mandala")
	root.Add(group)
	group.Add(meshNode("Mandala_Schicht_A", scenegraph.NewSolidMaterial(color.RGBA{10, 20, 30, 255})))
	b := meshNode("Mandala_Schicht_B", scenegraph.NewSolidMaterial(color.RGBA{40, 50, 60, 255}))
	b.Position = mgl32.Vec3{0, 0, -2}
	group.Add(b)
	return root
}

func TestFitNormalizesToUnitBox(t *testing.T) {
	root := scenegraph.NewNode("")
	a := meshNode("a")
	a.Position = mgl32.Vec3{10, 0, 0}
	a.Scale = mgl32.Vec3{4, 2, 2}
	root.Add(a)

	scale, err := Fit(root)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, scale, 1e-6)

	var box scenegraph.Box3
	box.SetFromObject(root)
	assert.InDelta(t, 1, box.MaxDim(), 1e-5)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, 0, box.Center()[i], 1e-5)
	}
}

func TestFitWithMatrixRoot(t *testing.T) {
	root := scenegraph.NewNode("")
	m := mgl32.Translate3D(5, 5, 5).Mul4(mgl32.Scale3D(3, 3, 3))
	root.Matrix = &m
	root.Add(meshNode("a"))

	_, err := Fit(root)
	require.NoError(t, err)
	var box scenegraph.Box3
	box.SetFromObject(root)
	assert.InDelta(t, 1, box.MaxDim(), 1e-5)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, 0, box.Center()[i], 1e-5)
	}
}

func TestFitRejectsDegenerateGeometry(t *testing.T) {
	flat := scenegraph.NewNode("")
	flat.Add(scenegraph.NewMeshNode("p", scenegraph.NewMesh(scenegraph.NewGeometry(
		scenegraph.NewBox(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{1, 1, 1})))))
	_, err := Fit(flat)
	assert.ErrorIs(t, err, ErrDegenerateGeometry)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, flat.Scale)

	_, err = Fit(scenegraph.NewNode("empty"))
	assert.ErrorIs(t, err, ErrDegenerateGeometry)
}

func TestAttachBindsBySubstring(t *testing.T) {
	v, _ := newTestViewer()
	root := mandala()
	root.Children()[0].Add(meshNode("Other"))

	report, err := v.Attach(root, nil)
	require.NoError(t, err)
	assert.Equal(t, map[Part]string{Front: "Mandala/Mandala_Schicht_A", Back: "Mandala/Mandala_Schicht_B"}, report.Bound)
	assert.Empty(t, report.Missing)
	assert.Same(t, root, v.Model())

	c, ok := v.Color(Front)
	require.True(t, ok)
	assert.Equal(t, color.RGBA{10, 20, 30, 255}, c, "replacement is seeded from the loaded color")
}

func TestAttachReplacesSharedMaterials(t *testing.T) {
	v, _ := newTestViewer()
	shared := scenegraph.NewSolidMaterial(color.RGBA{1, 1, 1, 255})
	root := scenegraph.NewNode("")
	front := meshNode("Mandala_Schicht_A", shared)
	back := meshNode("Mandala_Schicht_B", shared)
	root.Add(front)
	root.Add(back)

	_, err := v.Attach(root, nil)
	require.NoError(t, err)
	assert.NotSame(t, front.Mesh.Materials[0], back.Mesh.Materials[0])
	assert.True(t, shared.Disposed())

	require.NoError(t, v.Recolor(Front, "#FFD700"))
	fc, _ := v.Color(Front)
	bc, _ := v.Color(Back)
	assert.Equal(t, color.RGBA{0xFF, 0xD7, 0x00, 0xFF}, fc)
	assert.Equal(t, color.RGBA{1, 1, 1, 255}, bc)
}

func TestNodeMatchingBothIdentifiersBindsFront(t *testing.T) {
	v, out := newTestViewer()
	root := scenegraph.NewNode("")
	root.Add(meshNode("Mandala_Schicht_A_Mandala_Schicht_B"))

	report, err := v.Attach(root, nil)
	require.NoError(t, err)
	assert.Contains(t, report.Bound, Front)
	assert.Equal(t, []Part{Back}, report.Missing)
	assert.True(t, logged(out, "WARN part not bound part=back"))
}

func TestFirstCandidateWins(t *testing.T) {
	v, out := newTestViewer()
	root := scenegraph.NewNode("")
	first := meshNode("Mandala_Schicht_A.001")
	root.Add(first)
	root.Add(meshNode("Mandala_Schicht_A.002"))

	report, err := v.Attach(root, nil)
	require.NoError(t, err)
	n, ok := v.Binding(Front)
	require.True(t, ok)
	assert.Same(t, first, n)
	assert.Equal(t, []string{"Mandala_Schicht_A.002"}, report.Ambiguous[Front])
	assert.True(t, logged(out, "several nodes match part"))
}

func TestManifestTakesPrecedence(t *testing.T) {
	v, _ := newTestViewer()
	root := mandala()
	custom := meshNode("Outer")
	root.Children()[0].Add(custom)

	m := &manifest.Manifest{Parts: map[string]string{"front": "Mandala/Outer", "back": "Nope"}}
	report, err := v.Attach(root, m)
	require.NoError(t, err)

	n, ok := v.Binding(Front)
	require.True(t, ok)
	assert.Same(t, custom, n)
	_, ok = v.Binding(Back)
	assert.False(t, ok, "a manifest entry naming a missing node never falls back to substrings")
	assert.Equal(t, []Part{Back}, report.Missing)
}

func TestRecolorMultiMaterial(t *testing.T) {
	v, _ := newTestViewer()
	line := scenegraph.NewLineMaterial(scenegraph.Lines)
	root := scenegraph.NewNode("")
	n := scenegraph.NewMeshNode("Mandala_Schicht_B", scenegraph.NewMesh(cube(1),
		scenegraph.NewSolidMaterial(color.RGBA{9, 9, 9, 255}), nil, line))
	root.Add(n)
	_, err := v.Attach(root, nil)
	require.NoError(t, err)

	mats := n.Mesh.Materials
	require.Len(t, mats, 3)
	assert.Same(t, line, mats[2])
	assert.Equal(t, scenegraph.DefaultColor, mats[1].(scenegraph.Colorer).Color())

	for _, m := range mats {
		m.ClearNeedsUpdate()
	}
	require.NoError(t, v.Recolor(Back, "#333"))
	want := color.RGBA{0x33, 0x33, 0x33, 0xFF}
	for _, m := range mats[:2] {
		assert.Equal(t, want, m.(scenegraph.Colorer).Color())
		assert.True(t, m.NeedsUpdate())
	}
	assert.False(t, line.NeedsUpdate())
}

func TestRecolorErrors(t *testing.T) {
	v, out := newTestViewer()
	root := scenegraph.NewNode("")
	root.Add(meshNode("Mandala_Schicht_A", scenegraph.NewSolidMaterial(color.RGBA{1, 2, 3, 255})))
	_, err := v.Attach(root, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, v.Recolor(Back, "#FFFFFF"), ErrPartUnbound)
	assert.True(t, logged(out, "mesh for part not found or not assigned part=back"))

	assert.ErrorIs(t, v.Recolor("side", "#FFFFFF"), ErrUnknownPart)

	assert.ErrorIs(t, v.Recolor(Front, "gold"), palette.ErrInvalidColor)
	c, _ := v.Color(Front)
	assert.Equal(t, color.RGBA{1, 2, 3, 255}, c)
}

func TestRecolorWithoutColorableMaterial(t *testing.T) {
	v, _ := newTestViewer()
	root := scenegraph.NewNode("")
	root.Add(scenegraph.NewMeshNode("Mandala_Schicht_A", scenegraph.NewMesh(cube(1), scenegraph.NewLineMaterial(scenegraph.Points))))
	_, err := v.Attach(root, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, v.Recolor(Front, "#FFFFFF"), ErrNoColorableMaterial)
}

func TestAttachReleasesPreviousModel(t *testing.T) {
	v, _ := newTestViewer()
	first := mandala()
	_, err := v.Attach(first, nil)
	require.NoError(t, err)
	firstFront, _ := v.Binding(Front)
	mat := firstFront.Mesh.Materials[0]

	degenerate := scenegraph.NewNode("")
	_, err = v.Attach(degenerate, nil)
	assert.ErrorIs(t, err, ErrDegenerateGeometry)
	assert.Same(t, first, v.Model(), "a failed attach keeps the previous model")
	assert.False(t, mat.Disposed())

	second := scenegraph.NewNode("")
	second.Add(meshNode("Mandala_Schicht_B"))
	_, err = v.Attach(second, nil)
	require.NoError(t, err)
	assert.True(t, mat.Disposed())
	assert.True(t, firstFront.Mesh.Geometry.Disposed())
	_, ok := v.Binding(Front)
	assert.False(t, ok, "bindings of the previous model are cleared")

	v.Close()
	assert.Nil(t, v.Model())
	_, ok = v.Binding(Back)
	assert.False(t, ok)
}

func TestApplyDefaults(t *testing.T) {
	v, _ := newTestViewer()
	root := scenegraph.NewNode("")
	root.Add(meshNode("Mandala_Schicht_A"))
	_, err := v.Attach(root, nil)
	require.NoError(t, err)

	applied := v.ApplyDefaults(map[Part]string{Front: "#F0D9E7", Back: "#333333"})
	assert.Equal(t, []Part{Front}, applied)
	c, _ := v.Color(Front)
	assert.Equal(t, "#F0D9E7", palette.FormatColor(c))
}

func TestParsePart(t *testing.T) {
	p, err := ParsePart(" Front ")
	require.NoError(t, err)
	assert.Equal(t, Front, p)
	_, err = ParsePart("side")
	assert.ErrorIs(t, err, ErrUnknownPart)
}
