package ui

import (
	"fmt"

	"configurator/internal/ui/style"
)

// Inspector is a right-side panel with the loaded model, its part bindings and current
// colors. It is shown while the console is open.
type Inspector struct {
	engine *Engine
	panel  *Node
	lines  []*Node
}

// NewInspector creates an Inspector styled by .inspector and .inspector-line.
func NewInspector(e *Engine) *Inspector {
	return &Inspector{engine: e, panel: NewNode("panel", "", "", "inspector")}
}

// Info holds what the inspector shows. The app fills it; ui does not depend on the viewer.
type Info struct {
	Model  string
	Meshes int
	// Parts are preformatted "part node color" lines.
	Parts  []string
	Status string
}

// AppendNodes lays out and appends the inspector nodes to dst when visible is true.
// When visible is false, dst is returned unchanged. Call every frame.
func (in *Inspector) AppendNodes(dst []*Node, visible bool, info Info, screenW, screenH float32) []*Node {
	if !visible {
		return dst
	}
	model := info.Model
	if model == "" {
		model = "(none)"
	}
	texts := []string{
		"Model: " + model,
		fmt.Sprintf("Meshes: %d", info.Meshes),
	}
	texts = append(texts, info.Parts...)
	if info.Status != "" {
		texts = append(texts, "Status: "+info.Status)
	}
	for len(in.lines) < len(texts) {
		in.lines = append(in.lines, NewNode("label", "", "", "inspector-line"))
	}
	lines := in.lines[:len(texts)]

	ps := in.engine.Style(in.panel)
	ls := in.engine.Style(NewNode("label", "", "", "inspector-line"))
	lineH := ls.Height.Resolve(screenH)
	if !ls.Height.Set {
		lineH = ls.FontSize + 4
	}
	panelW := ps.Width.Resolve(screenW)
	if !ps.Width.Set {
		panelW = 360
	}
	in.panel.Bounds = style.Anchor(ps, screenW, screenH, panelW, 2*ps.Padding+float32(len(lines))*lineH)
	inner := in.panel.Bounds.Inset(ps.Padding)
	for i, n := range lines {
		n.Text = texts[i]
		n.Bounds = style.Rect{X: inner.X, Y: inner.Y + float32(i)*lineH, W: inner.W, H: lineH}
	}
	dst = append(dst, in.panel)
	return append(dst, lines...)
}
