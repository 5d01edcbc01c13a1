package asset

import (
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"configurator/internal/scenegraph"
)

// primKey identifies one primitive of one document node.
type primKey struct{ node, prim int }

// engineOrder assigns renderer mesh indices the way raylib's glTF importer does:
// nodes in document order, and per node only its triangle primitives.
func engineOrder(doc *gltf.Document) (map[primKey]int, int) {
	order := map[primKey]int{}
	next := 0
	for ni, n := range doc.Nodes {
		if n == nil || n.Mesh == nil || int(*n.Mesh) >= len(doc.Meshes) {
			continue
		}
		for pi, p := range doc.Meshes[*n.Mesh].Primitives {
			if p.Mode == gltf.PrimitiveTriangles {
				order[primKey{ni, pi}] = next
				next++
			}
		}
	}
	return order, next
}

// BuildGraph converts the default scene of doc into a scenegraph tree under an unnamed
// root. It returns the tree and the number of drawable meshes the renderer will load.
func BuildGraph(doc *gltf.Document) (*scenegraph.Node, int, error) {
	order, count := engineOrder(doc)
	root := scenegraph.NewNode("")
	b := builder{doc: doc, order: order, visiting: map[int]bool{}}
	for _, ni := range sceneRoots(doc) {
		child, err := b.node(int(ni))
		if err != nil {
			return nil, 0, err
		}
		root.Add(child)
	}
	return root, count, nil
}

// sceneRoots returns the root nodes of the default scene, or of the first scene, or
// every node that is nobody's child when the document declares no scene.
func sceneRoots(doc *gltf.Document) []uint32 {
	if len(doc.Scenes) > 0 {
		si := 0
		if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
			si = int(*doc.Scene)
		}
		return doc.Scenes[si].Nodes
	}
	isChild := map[uint32]bool{}
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			isChild[c] = true
		}
	}
	var roots []uint32
	for i := range doc.Nodes {
		if !isChild[uint32(i)] {
			roots = append(roots, uint32(i))
		}
	}
	return roots
}

type builder struct {
	doc      *gltf.Document
	order    map[primKey]int
	visiting map[int]bool
}

func (b *builder) node(ni int) (*scenegraph.Node, error) {
	if ni < 0 || ni >= len(b.doc.Nodes) {
		return nil, fmt.Errorf("asset: node index %d out of range", ni)
	}
	if b.visiting[ni] {
		return nil, fmt.Errorf("asset: node %d is its own ancestor", ni)
	}
	b.visiting[ni] = true
	defer delete(b.visiting, ni)

	src := b.doc.Nodes[ni]
	dst := scenegraph.NewNode(src.Name)
	applyTransform(dst, src)

	if src.Mesh != nil {
		mi := int(*src.Mesh)
		if mi >= len(b.doc.Meshes) {
			return nil, fmt.Errorf("asset: node %q: mesh index %d out of range", src.Name, mi)
		}
		mesh, err := b.mesh(ni, b.doc.Meshes[mi])
		if err != nil {
			return nil, fmt.Errorf("asset: node %q: %w", src.Name, err)
		}
		dst.Mesh = mesh
		if dst.Name == "" {
			dst.Name = b.doc.Meshes[mi].Name
		}
	}
	for _, ci := range src.Children {
		child, err := b.node(int(ci))
		if err != nil {
			return nil, err
		}
		dst.Add(child)
	}
	return dst, nil
}

func (b *builder) mesh(ni int, m *gltf.Mesh) (*scenegraph.Mesh, error) {
	bounds := scenegraph.EmptyBox()
	var groups []scenegraph.Group
	var mats []scenegraph.Material
	for pi, p := range m.Primitives {
		kind := kindOf(p.Mode)
		idx := -1
		if i, ok := b.order[primKey{ni, pi}]; ok {
			idx = i
		}
		// Primitives the renderer does not import stay out of the fit box.
		if idx >= 0 {
			pb, err := b.primitiveBounds(p)
			if err != nil {
				return nil, err
			}
			bounds.Union(pb)
		}
		groups = append(groups, scenegraph.Group{Kind: kind, EngineIndex: idx})
		mats = append(mats, b.material(p, kind))
	}
	return scenegraph.NewMesh(scenegraph.NewGeometry(bounds, groups...), mats...), nil
}

func kindOf(mode gltf.PrimitiveMode) scenegraph.PrimitiveKind {
	switch mode {
	case gltf.PrimitiveTriangles:
		return scenegraph.Triangles
	case gltf.PrimitiveTriangleStrip:
		return scenegraph.TriangleStrip
	case gltf.PrimitiveTriangleFan:
		return scenegraph.TriangleFan
	case gltf.PrimitivePoints:
		return scenegraph.Points
	default:
		return scenegraph.Lines
	}
}

// primitiveBounds reads the POSITION accessor's min/max, falling back to scanning the data.
func (b *builder) primitiveBounds(p *gltf.Primitive) (scenegraph.Box3, error) {
	ai, ok := p.Attributes[gltf.POSITION]
	if !ok || int(ai) >= len(b.doc.Accessors) {
		return scenegraph.EmptyBox(), nil
	}
	acc := b.doc.Accessors[ai]
	if len(acc.Min) >= 3 && len(acc.Max) >= 3 {
		var lo, hi mgl32.Vec3
		for i := 0; i < 3; i++ {
			lo[i], hi[i] = float32(acc.Min[i]), float32(acc.Max[i])
		}
		return scenegraph.NewBox(lo, hi), nil
	}
	positions, err := modeler.ReadPosition(b.doc, acc, nil)
	if err != nil {
		return scenegraph.EmptyBox(), fmt.Errorf("read positions: %w", err)
	}
	box := scenegraph.EmptyBox()
	for _, v := range positions {
		box.ExpandByPoint(mgl32.Vec3{v[0], v[1], v[2]})
	}
	return box, nil
}

// material seeds the slot for one primitive. Triangle primitives without a material get
// a nil slot, which binding fills with the default gray.
func (b *builder) material(p *gltf.Primitive, kind scenegraph.PrimitiveKind) scenegraph.Material {
	if kind != scenegraph.Triangles {
		return scenegraph.NewLineMaterial(kind)
	}
	if p.Material == nil || int(*p.Material) >= len(b.doc.Materials) {
		return nil
	}
	return scenegraph.NewSolidMaterial(baseColor(b.doc.Materials[*p.Material]))
}

// baseColor converts a glTF base color factor (linear) to an sRGB color.
// A material without a factor is white, the glTF default.
func baseColor(m *gltf.Material) color.RGBA {
	if m.PBRMetallicRoughness == nil || m.PBRMetallicRoughness.BaseColorFactor == nil {
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	f := *m.PBRMetallicRoughness.BaseColorFactor
	c := colorful.LinearRgb(float64(f[0]), float64(f[1]), float64(f[2])).Clamped()
	r, g, bl := c.RGB255()
	return color.RGBA{R: r, G: g, B: bl, A: 255}
}

// applyTransform copies the node transform. A non-trivial matrix wins over TRS; zero
// rotation and scale (unset in documents built in memory) mean identity.
func applyTransform(dst *scenegraph.Node, src *gltf.Node) {
	var m mgl32.Mat4
	for i := range src.Matrix {
		m[i] = float32(src.Matrix[i])
	}
	if m != (mgl32.Mat4{}) && m != mgl32.Ident4() {
		dst.Matrix = &m
		return
	}
	t, r, s := src.Translation, src.Rotation, src.Scale
	dst.Position = mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])}
	q := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	if q.Len() > 0 {
		dst.Rotation = q
	}
	scale := mgl32.Vec3{float32(s[0]), float32(s[1]), float32(s[2])}
	if scale != (mgl32.Vec3{}) {
		dst.Scale = scale
	}
}
