package scenegraph

// Group is one drawable range of a geometry, rendered with the material in the same slot.
// EngineIndex is the index of the renderer-side mesh, or -1 when the renderer has none
// (e.g. line and point groups, which raylib does not import).
type Group struct {
	Kind        PrimitiveKind
	EngineIndex int
}

// Geometry holds the groups of a mesh and the local-space bounds of the ones the renderer
// draws.
type Geometry struct {
	disposer
	Bounds Box3
	Groups []Group
}

// NewGeometry returns a geometry with the given local bounds and groups.
func NewGeometry(bounds Box3, groups ...Group) *Geometry {
	return &Geometry{Bounds: bounds, Groups: groups}
}

// Mesh pairs a geometry with its material slots. One slot means a single material;
// several slots form an ordered collection matching Geometry.Groups.
type Mesh struct {
	Geometry  *Geometry
	Materials []Material
}

// NewMesh returns a mesh with the given geometry and material slots.
func NewMesh(geom *Geometry, materials ...Material) *Mesh {
	return &Mesh{Geometry: geom, Materials: materials}
}

// IsMulti reports whether the mesh has more than one material slot.
func (m *Mesh) IsMulti() bool {
	return len(m.Materials) > 1
}

// Dispose releases the geometry and every non-nil material slot.
func (m *Mesh) Dispose() {
	if m.Geometry != nil {
		m.Geometry.Dispose()
	}
	for _, mat := range m.Materials {
		if mat != nil {
			mat.Dispose()
		}
	}
}
