// Package configurator holds the viewer context: the currently displayed model, the
// binding of product parts to its meshes, and the recolor operation driven by the palette.
package configurator

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"strings"

	"configurator/internal/manifest"
	"configurator/internal/palette"
	"configurator/internal/scenegraph"
)

// Part names a recolorable region of the product.
type Part string

const (
	Front Part = "front"
	Back  Part = "back"
)

// Parts lists the known parts in binding precedence order.
var Parts = []Part{Front, Back}

var (
	ErrPartUnbound         = errors.New("part not bound")
	ErrUnknownPart         = errors.New("unknown part")
	ErrNoColorableMaterial = errors.New("no colorable material")
)

// ParsePart maps a user string ("front", "Back") to a known part.
func ParsePart(s string) (Part, error) {
	p := Part(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Parts {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPart, s)
}

// BindReport describes the outcome of binding a freshly attached model.
type BindReport struct {
	// Bound maps each bound part to the path of its node.
	Bound map[Part]string
	// Missing lists the parts that found no node.
	Missing []Part
	// Ambiguous lists, per part, the extra candidates that were ignored.
	Ambiguous map[Part][]string
}

// Viewer owns the displayed model and its part bindings. It is not safe for concurrent
// use; the frame loop and the UI handlers run on the same goroutine.
type Viewer struct {
	identifiers map[Part]string
	log         *slog.Logger

	model    *scenegraph.Node
	bindings map[Part]*scenegraph.Node
}

// New returns a viewer that binds parts whose node names contain the given identifiers.
func New(identifiers map[Part]string, log *slog.Logger) *Viewer {
	if log == nil {
		log = slog.Default()
	}
	ids := make(map[Part]string, len(identifiers))
	for p, id := range identifiers {
		ids[p] = id
	}
	return &Viewer{
		identifiers: ids,
		log:         log,
		bindings:    map[Part]*scenegraph.Node{},
	}
}

// Model returns the attached model root, or nil.
func (v *Viewer) Model() *scenegraph.Node {
	return v.model
}

// Binding returns the node bound to part.
func (v *Viewer) Binding(part Part) (*scenegraph.Node, bool) {
	n, ok := v.bindings[part]
	return n, ok && n != nil
}

// Identifier returns the substring used to match part.
func (v *Viewer) Identifier(part Part) string {
	return v.identifiers[part]
}

// Attach fits root into the unit box, releases the previous model and binds the parts of
// root. When fitting fails the previous model and its bindings are left untouched.
func (v *Viewer) Attach(root *scenegraph.Node, m *manifest.Manifest) (BindReport, error) {
	if _, err := Fit(root); err != nil {
		return BindReport{}, err
	}
	v.Detach()
	v.model = root
	report := v.bind(root, m)
	for _, p := range report.Missing {
		v.log.Warn("part not bound", "part", string(p), "identifier", v.identifiers[p])
	}
	for p, extra := range report.Ambiguous {
		v.log.Warn("several nodes match part, keeping first", "part", string(p), "bound", report.Bound[p], "ignored", strings.Join(extra, ","))
	}
	v.log.Info("model attached", "bound", len(report.Bound), "missing", len(report.Missing))
	return report, nil
}

// Detach disposes the attached model and clears every binding.
func (v *Viewer) Detach() {
	if v.model != nil {
		v.model.Dispose()
		v.model = nil
	}
	clear(v.bindings)
}

// Close releases the viewer's model.
func (v *Viewer) Close() {
	v.Detach()
}

func (v *Viewer) bind(root *scenegraph.Node, m *manifest.Manifest) BindReport {
	report := BindReport{Bound: map[Part]string{}, Ambiguous: map[Part][]string{}}

	refs := map[Part]string{}
	for _, p := range Parts {
		if ref, ok := m.Lookup(string(p)); ok {
			refs[p] = ref
		}
	}

	root.TraverseMeshes(func(n *scenegraph.Node) {
		replaceMaterials(n.Mesh)

		path := n.Path()
		claimed := false
		for _, p := range Parts {
			var match bool
			if ref, ok := refs[p]; ok {
				match = n.Name == ref || path == ref
			} else if id := v.identifiers[p]; id != "" {
				match = strings.Contains(n.Name, id)
			}
			if !match {
				continue
			}
			if claimed {
				v.log.Debug("node matches several parts", "node", path, "skipped", string(p))
				continue
			}
			claimed = true
			if _, taken := v.bindings[p]; taken {
				report.Ambiguous[p] = append(report.Ambiguous[p], path)
				continue
			}
			v.bindings[p] = n
			report.Bound[p] = path
		}
	})

	for _, p := range Parts {
		if _, ok := v.bindings[p]; !ok {
			report.Missing = append(report.Missing, p)
		}
	}
	if len(report.Ambiguous) == 0 {
		report.Ambiguous = nil
	}
	return report
}

// replaceMaterials gives each colorable slot its own SolidMaterial so that recoloring one
// part never leaks into another mesh sharing the source material. Line and point slots
// are kept as they are.
func replaceMaterials(mesh *scenegraph.Mesh) {
	for i, old := range mesh.Materials {
		if _, isLine := old.(*scenegraph.LineMaterial); isLine {
			continue
		}
		seed := scenegraph.DefaultColor
		if c, ok := old.(scenegraph.Colorer); ok {
			seed = c.Color()
		}
		mesh.Materials[i] = scenegraph.NewSolidMaterial(seed)
		if old != nil {
			old.Dispose()
		}
	}
	if len(mesh.Materials) == 0 {
		mesh.Materials = []scenegraph.Material{scenegraph.NewSolidMaterial(scenegraph.DefaultColor)}
	}
}

// Recolor sets every colorable material of the mesh bound to part to value and flags
// them for re-upload. Failures are logged and returned; nothing is changed.
func (v *Viewer) Recolor(part Part, value string) error {
	c, err := palette.ParseColor(value)
	if err != nil {
		v.log.Warn("invalid color", "part", string(part), "value", value)
		return err
	}
	n, ok := v.Binding(part)
	if !ok {
		if !isKnown(part) {
			v.log.Warn("unknown part", "part", string(part))
			return fmt.Errorf("%w: %q", ErrUnknownPart, part)
		}
		v.log.Warn("mesh for part not found or not assigned", "part", string(part))
		return fmt.Errorf("%w: %s", ErrPartUnbound, part)
	}

	var targets []scenegraph.Colorer
	for _, mat := range n.Mesh.Materials {
		if cm, ok := mat.(scenegraph.Colorer); ok {
			targets = append(targets, cm)
		}
	}
	if len(targets) == 0 {
		v.log.Warn("mesh has no colorable material", "part", string(part), "node", n.Path())
		return fmt.Errorf("%w: %s", ErrNoColorableMaterial, part)
	}
	for _, cm := range targets {
		cm.SetColor(c)
		cm.MarkNeedsUpdate()
	}
	v.log.Debug("recolored", "part", string(part), "color", palette.FormatColor(c), "materials", len(targets))
	return nil
}

// Color returns the current color of part, read from its first colorable material.
func (v *Viewer) Color(part Part) (color.RGBA, bool) {
	n, ok := v.Binding(part)
	if !ok {
		return color.RGBA{}, false
	}
	for _, mat := range n.Mesh.Materials {
		if cm, ok := mat.(scenegraph.Colorer); ok {
			return cm.Color(), true
		}
	}
	return color.RGBA{}, false
}

// ApplyDefaults recolors each bound part with its default and returns the parts that
// were recolored. Unbound parts are skipped silently.
func (v *Viewer) ApplyDefaults(defaults map[Part]string) []Part {
	var applied []Part
	for _, p := range Parts {
		value, ok := defaults[p]
		if !ok {
			continue
		}
		if _, bound := v.Binding(p); !bound {
			continue
		}
		if err := v.Recolor(p, value); err == nil {
			applied = append(applied, p)
		}
	}
	return applied
}

func isKnown(p Part) bool {
	for _, known := range Parts {
		if p == known {
			return true
		}
	}
	return false
}
