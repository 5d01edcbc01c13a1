package asset

import (
	"archive/zip"
	"context"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"configurator/internal/manifest"
	"configurator/internal/scenegraph"
)

func node(name string, mesh *uint32, children ...uint32) *gltf.Node {
	return &gltf.Node{
		Name:     name,
		Mesh:     mesh,
		Children: children,
		Rotation: [4]float32{0, 0, 0, 1},
		Scale:    [3]float32{1, 1, 1},
	}
}

// fixture builds:
//
//	Mandala
//	├── Mandala_Schicht_A  (one red triangle primitive)
//	├── Mandala_Schicht_B  (blue triangles + a line primitive)
//	└── Outline            (lines only)
func fixture() *gltf.Document {
	doc := gltf.NewDocument()
	tri := uint32(modeler.WritePosition(doc, [][3]float32{{-1, -1, 0}, {1, -1, 0}, {0, 1, 0}}))
	deep := uint32(modeler.WritePosition(doc, [][3]float32{{0, 0, -2}, {1, 0, -2}, {0, 1, 2}}))
	line := uint32(modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {0, 3, 0}}))

	doc.Materials = []*gltf.Material{
		{Name: "red", PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorFactor: &[4]float32{1, 0, 0, 1}}},
		{Name: "blue", PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorFactor: &[4]float32{0, 0, 1, 1}}},
	}
	doc.Meshes = []*gltf.Mesh{
		{Name: "a", Primitives: []*gltf.Primitive{
			{Attributes: map[string]uint32{gltf.POSITION: tri}, Material: gltf.Index(0)},
		}},
		{Name: "b", Primitives: []*gltf.Primitive{
			{Attributes: map[string]uint32{gltf.POSITION: deep}, Material: gltf.Index(1)},
			{Attributes: map[string]uint32{gltf.POSITION: line}, Mode: gltf.PrimitiveLines},
		}},
		{Name: "outline", Primitives: []*gltf.Primitive{
			{Attributes: map[string]uint32{gltf.POSITION: line}, Mode: gltf.PrimitiveLines},
		}},
	}
	a := node("Mandala_Schicht_A", gltf.Index(0))
	a.Translation = [3]float32{2, 0, 0}
	doc.Nodes = []*gltf.Node{
		node("Mandala", nil, 1, 2, 3),
		a,
		node("Mandala_Schicht_B", gltf.Index(1)),
		node("Outline", gltf.Index(2)),
	}
	doc.Scenes[0].Nodes = []uint32{0}
	return doc
}

func saveFixture(t *testing.T, doc *gltf.Document, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, gltf.SaveBinary(doc, path))
	return path
}

func TestBuildGraphFollowsRendererOrder(t *testing.T) {
	root, count, err := BuildGraph(fixture())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var names []string
	root.TraverseMeshes(func(n *scenegraph.Node) { names = append(names, n.Path()) })
	assert.Equal(t, []string{"Mandala/Mandala_Schicht_A", "Mandala/Mandala_Schicht_B", "Mandala/Outline"}, names)

	a := root.Find("Mandala_Schicht_A")
	assert.Equal(t, mgl32.Vec3{2, 0, 0}, a.Position)
	assert.Equal(t, []scenegraph.Group{{Kind: scenegraph.Triangles, EngineIndex: 0}}, a.Mesh.Geometry.Groups)
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, a.Mesh.Materials[0].(scenegraph.Colorer).Color())

	b := root.Find("Mandala_Schicht_B")
	require.True(t, b.Mesh.IsMulti())
	assert.Equal(t, []scenegraph.Group{
		{Kind: scenegraph.Triangles, EngineIndex: 1},
		{Kind: scenegraph.Lines, EngineIndex: -1},
	}, b.Mesh.Geometry.Groups)
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, b.Mesh.Materials[0].(scenegraph.Colorer).Color())
	_, isLine := b.Mesh.Materials[1].(*scenegraph.LineMaterial)
	assert.True(t, isLine)

	bounds := b.Mesh.Geometry.Bounds
	assert.Equal(t, mgl32.Vec3{0, 0, -2}, bounds.Min)
	assert.Equal(t, mgl32.Vec3{1, 1, 2}, bounds.Max, "line group is not drawn")
	assert.True(t, root.Find("Outline").Mesh.Geometry.Bounds.IsEmpty())

	var box scenegraph.Box3
	box.SetFromObject(root)
	assert.Equal(t, mgl32.Vec3{0, -1, -2}, box.Min)
	assert.Equal(t, mgl32.Vec3{3, 1, 2}, box.Max)
}

func TestBuildGraphBoundsIgnoreUndrawnPrimitives(t *testing.T) {
	doc := gltf.NewDocument()
	tri := uint32(modeler.WritePosition(doc, [][3]float32{{-1, -1, 0}, {1, -1, 0}, {0, 1, 0}}))
	strip := uint32(modeler.WritePosition(doc, [][3]float32{{-100, 0, 0}, {100, 0, 0}, {0, 1, 0}, {1, 1, 0}}))
	fan := uint32(modeler.WritePosition(doc, [][3]float32{{0, 0, -50}, {0, 0, 50}, {1, 0, 0}}))
	doc.Meshes = []*gltf.Mesh{{Name: "m", Primitives: []*gltf.Primitive{
		{Attributes: map[string]uint32{gltf.POSITION: tri}},
		{Attributes: map[string]uint32{gltf.POSITION: strip}, Mode: gltf.PrimitiveTriangleStrip},
		{Attributes: map[string]uint32{gltf.POSITION: fan}, Mode: gltf.PrimitiveTriangleFan},
	}}}
	doc.Nodes = []*gltf.Node{node("Part", gltf.Index(0))}
	doc.Scenes[0].Nodes = []uint32{0}

	root, count, err := BuildGraph(doc)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	part := root.Find("Part")
	assert.Equal(t, []scenegraph.Group{
		{Kind: scenegraph.Triangles, EngineIndex: 0},
		{Kind: scenegraph.TriangleStrip, EngineIndex: -1},
		{Kind: scenegraph.TriangleFan, EngineIndex: -1},
	}, part.Mesh.Geometry.Groups)

	var box scenegraph.Box3
	box.SetFromObject(root)
	assert.Equal(t, mgl32.Vec3{2, 2, 0}, box.Size())
}

func TestBuildGraphWithoutScenesUsesParentlessNodes(t *testing.T) {
	doc := fixture()
	doc.Scenes = nil
	doc.Scene = nil
	root, _, err := BuildGraph(doc)
	require.NoError(t, err)
	require.Len(t, root.Children(), 1)
	assert.Equal(t, "Mandala", root.Children()[0].Name)
}

func TestBuildGraphRejectsCycles(t *testing.T) {
	doc := fixture()
	doc.Nodes[1].Children = []uint32{0}
	_, _, err := BuildGraph(doc)
	assert.Error(t, err)
}

func TestApplyTransformPrefersMatrix(t *testing.T) {
	src := node("m", nil)
	src.Matrix = [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 4, 5, 6, 1}
	dst := scenegraph.NewNode("m")
	applyTransform(dst, src)
	require.NotNil(t, dst.Matrix)
	assert.Equal(t, mgl32.Vec3{4, 5, 6}, mgl32.TransformCoordinate(mgl32.Vec3{}, dst.LocalMatrix()))

	bare := &gltf.Node{}
	dst = scenegraph.NewNode("bare")
	applyTransform(dst, bare)
	assert.Nil(t, dst.Matrix)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, dst.Scale)
	assert.Equal(t, mgl32.QuatIdent(), dst.Rotation)
}

func TestLoadGLB(t *testing.T) {
	path := saveFixture(t, fixture(), "mandala.glb")
	require.NoError(t, os.WriteFile(manifest.PathFor(path), []byte("parts:\n  front: Mandala/Mandala_Schicht_A\n"), 0644))

	var last Progress
	l := &Loader{
		Override:   &manifest.Manifest{Parts: map[string]string{"back": "Mandala_Schicht_B"}},
		OnProgress: func(p Progress) { last = p },
	}
	res := <-l.Load(context.Background(), path)
	require.NoError(t, res.Err)
	assert.Equal(t, path, res.Source)
	assert.Equal(t, path, res.Path)
	assert.Equal(t, 2, res.MeshCount)
	assert.NotNil(t, res.Root.Find("Outline"))
	assert.Equal(t, 100, last.Percent)

	front, _ := res.Manifest.Lookup("front")
	back, _ := res.Manifest.Lookup("back")
	assert.Equal(t, "Mandala/Mandala_Schicht_A", front)
	assert.Equal(t, "Mandala_Schicht_B", back)
}

func TestLoadFromURL(t *testing.T) {
	data, err := os.ReadFile(saveFixture(t, fixture(), "m.glb"))
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	l := &Loader{CacheDir: t.TempDir()}
	res := l.LoadSync(context.Background(), srv.URL+"/models/mandala_01.glb")
	require.NoError(t, res.Err)
	assert.Equal(t, filepath.Join(l.CacheDir, "mandala_01.glb"), res.Path)
	assert.Nil(t, res.Manifest)
}

func TestLoadZipBundle(t *testing.T) {
	data, err := os.ReadFile(saveFixture(t, fixture(), "m.glb"))
	require.NoError(t, err)
	zipPath := filepath.Join(t.TempDir(), "mandala.zip")
	f, err := os.Create(zipPath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range map[string][]byte{
		"mandala/mandala.glb":         data,
		"mandala/mandala.parts.yaml":  []byte("parts:\n  front: Mandala_Schicht_A\n"),
		"mandala/textures/unused.txt": []byte("x"),
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(body)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	l := &Loader{CacheDir: t.TempDir()}
	res := l.LoadSync(context.Background(), zipPath)
	require.NoError(t, res.Err)
	assert.Equal(t, filepath.Join(l.CacheDir, "mandala", "mandala", "mandala.glb"), res.Path)
	assert.Equal(t, 2, res.MeshCount)
	front, ok := res.Manifest.Lookup("front")
	assert.True(t, ok)
	assert.Equal(t, "Mandala_Schicht_A", front)

	empty := filepath.Join(t.TempDir(), "empty.zip")
	f, err = os.Create(empty)
	require.NoError(t, err)
	require.NoError(t, zip.NewWriter(f).Close())
	require.NoError(t, f.Close())
	res = l.LoadSync(context.Background(), empty)
	assert.Error(t, res.Err)
}

func TestLoadFailures(t *testing.T) {
	dir := t.TempDir()
	obj := filepath.Join(dir, "model.obj")
	require.NoError(t, os.WriteFile(obj, []byte("v 0 0 0\n"), 0644))
	res := (&Loader{}).LoadSync(context.Background(), obj)
	assert.ErrorIs(t, res.Err, ErrUnsupportedFormat)
	assert.Nil(t, res.Root)

	garbage := filepath.Join(dir, "broken.glb")
	require.NoError(t, os.WriteFile(garbage, []byte("not a model"), 0644))
	res = (&Loader{}).LoadSync(context.Background(), garbage)
	assert.Error(t, res.Err)

	res = (&Loader{}).LoadSync(context.Background(), filepath.Join(dir, "missing.glb"))
	assert.ErrorIs(t, res.Err, os.ErrNotExist)

	linesOnly := fixture()
	linesOnly.Nodes[0].Children = []uint32{3}
	linesOnly.Nodes[1].Mesh = nil
	linesOnly.Nodes[2].Mesh = nil
	res = (&Loader{}).LoadSync(context.Background(), saveFixture(t, linesOnly, "lines.glb"))
	assert.ErrorIs(t, res.Err, ErrNoMeshes)
}

func TestLoadCancelled(t *testing.T) {
	path := saveFixture(t, fixture(), "m.glb")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := (&Loader{}).LoadSync(ctx, path)
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestDrainProgressDropsSupersededLoads(t *testing.T) {
	ch := make(chan Progress, 8)
	ch <- Progress{Source: "old.glb", Percent: 80}
	ch <- Progress{Source: "new.glb", Percent: 10}
	ch <- Progress{Source: "old.glb", Percent: 90}
	ch <- Progress{Source: "new.glb", Percent: 20}

	p, ok := DrainProgress(ch, "new.glb")
	require.True(t, ok)
	assert.Equal(t, 20, p.Percent)
	assert.Empty(t, ch)

	ch <- Progress{Source: "old.glb", Percent: 100}
	_, ok = DrainProgress(ch, "new.glb")
	assert.False(t, ok)
	assert.Empty(t, ch)

	_, ok = DrainProgress(ch, "")
	assert.False(t, ok)
}
