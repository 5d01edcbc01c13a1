package scene

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"configurator/internal/scenegraph"
)

// Renderer draws the attached scenegraph model with the meshes raylib uploaded for the same
// file. Each scenegraph material gets its own raylib material; dirty materials are
// re-uploaded at the start of the next Draw.
type Renderer struct {
	lit    *litShader
	model  rl.Model
	loaded bool
	root   *scenegraph.Node
	draws  []drawCall
	mats   map[scenegraph.Material]*gpuMaterial
}

type drawCall struct {
	mesh int32
	mat  *gpuMaterial
}

type gpuMaterial struct {
	src scenegraph.Material
	mtl rl.Material
}

// NewRenderer returns an empty renderer. Call after the window exists.
func NewRenderer() *Renderer {
	return &Renderer{lit: loadLitShader(), mats: map[scenegraph.Material]*gpuMaterial{}}
}

// Root returns the scenegraph model being drawn, or nil.
func (r *Renderer) Root() *scenegraph.Node {
	return r.root
}

// MeshCount returns the number of raylib meshes of the current model.
func (r *Renderer) MeshCount() int {
	if !r.loaded {
		return 0
	}
	return int(r.model.MeshCount)
}

// LoadModel uploads the file at path and checks that raylib produced want meshes, the
// number the scenegraph was built with. On mismatch the upload is released.
func LoadModel(path string, want int) (rl.Model, error) {
	m := rl.LoadModel(path)
	if m.MeshCount == 0 || m.Meshes == nil {
		rl.UnloadModel(m)
		return rl.Model{}, fmt.Errorf("scene: %s: no meshes uploaded", path)
	}
	if int(m.MeshCount) != want {
		rl.UnloadModel(m)
		return rl.Model{}, fmt.Errorf("scene: %s: uploaded %d meshes, scene graph has %d", path, m.MeshCount, want)
	}
	return m, nil
}

// Replace releases the current GPU model and its materials, then takes ownership of model
// and draws it with the materials of root. root must already be attached and bound so its
// material slots are final.
func (r *Renderer) Replace(model rl.Model, root *scenegraph.Node) {
	r.release()
	r.model, r.loaded, r.root = model, true, root
	meshes := int32(model.MeshCount)
	root.TraverseMeshes(func(n *scenegraph.Node) {
		mesh := n.Mesh
		if mesh.Geometry == nil {
			return
		}
		for i, g := range mesh.Geometry.Groups {
			if g.Kind != scenegraph.Triangles || g.EngineIndex < 0 || int32(g.EngineIndex) >= meshes {
				continue
			}
			src := slot(mesh, i)
			if src == nil {
				continue
			}
			r.draws = append(r.draws, drawCall{mesh: int32(g.EngineIndex), mat: r.material(src)})
		}
	})
}

func slot(mesh *scenegraph.Mesh, i int) scenegraph.Material {
	switch {
	case i < len(mesh.Materials):
		return mesh.Materials[i]
	case len(mesh.Materials) > 0:
		return mesh.Materials[0]
	}
	return nil
}

func (r *Renderer) material(src scenegraph.Material) *gpuMaterial {
	if gm, ok := r.mats[src]; ok {
		return gm
	}
	gm := &gpuMaterial{src: src, mtl: rl.LoadMaterialDefault()}
	if r.lit != nil {
		gm.mtl.Shader = r.lit.shader
	}
	r.mats[src] = gm
	src.MarkNeedsUpdate()
	src.OnDispose(func() { r.unloadMaterial(src) })
	return gm
}

func (r *Renderer) unloadMaterial(src scenegraph.Material) {
	gm, ok := r.mats[src]
	if !ok {
		return
	}
	delete(r.mats, src)
	// UnloadMaterial frees any non-default shader; the lit shader is shared.
	gm.mtl.Shader.ID = rl.GetShaderIdDefault()
	rl.UnloadMaterial(gm.mtl)
	for i := range r.draws {
		if r.draws[i].mat == gm {
			r.draws[i].mat = nil
		}
	}
}

// sync re-uploads the color of every dirty material.
func (r *Renderer) sync() {
	for src, gm := range r.mats {
		if !src.NeedsUpdate() {
			continue
		}
		c := scenegraph.DefaultColor
		if col, ok := src.(scenegraph.Colorer); ok {
			c = col.Color()
		}
		gm.mtl.GetMap(rl.MapDiffuse).Color = c
		src.ClearNeedsUpdate()
	}
}

// Draw draws the model inside an active 3D mode. Meshes are drawn with the root's world
// matrix: raylib bakes node transforms into the vertices, so only the fit transform of the
// root remains to apply.
func (r *Renderer) Draw() {
	if !r.loaded || r.root == nil {
		return
	}
	r.sync()
	transform := toMatrix(r.root.WorldMatrix())
	meshes := r.model.GetMeshes()
	for _, d := range r.draws {
		if d.mat == nil {
			continue
		}
		rl.DrawMesh(meshes[d.mesh], d.mat.mtl, transform)
	}
}

func (r *Renderer) apply(lights Lighting, viewPos rl.Vector3) {
	if r.lit != nil {
		r.lit.apply(lights, viewPos)
	}
}

func (r *Renderer) release() {
	for src := range r.mats {
		r.unloadMaterial(src)
	}
	r.draws = nil
	if r.loaded {
		rl.UnloadModel(r.model)
	}
	r.model, r.loaded, r.root = rl.Model{}, false, nil
}

// Close releases the model, the materials and the shader.
func (r *Renderer) Close() {
	r.release()
	if r.lit != nil {
		r.lit.unload()
		r.lit = nil
	}
}

func toMatrix(m mgl32.Mat4) rl.Matrix {
	return rl.Matrix{
		M0: m[0], M1: m[1], M2: m[2], M3: m[3],
		M4: m[4], M5: m[5], M6: m[6], M7: m[7],
		M8: m[8], M9: m[9], M10: m[10], M11: m[11],
		M12: m[12], M13: m[13], M14: m[14], M15: m[15],
	}
}
