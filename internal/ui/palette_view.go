package ui

import (
	"strings"

	"configurator/internal/palette"
	"configurator/internal/ui/style"
)

// PaletteView draws one panel per palette container: a title and a wrapped grid of
// swatches with class "color-option", plus "selected" on highlighted ones. Hovering a
// swatch shows its name in a tooltip; clicking it recolors the part through the palette.
type PaletteView struct {
	engine  *Engine
	pal     *palette.Palette
	panels  []*panelView
	tooltip *Node

	screenW, screenH float32
	gen              int
	laidOut          bool
}

type panelView struct {
	container *palette.Container
	panel     *Node
	title     *Node
	swatches  []*Node
	boxes     []style.Rect
}

// NewPaletteView builds the nodes for every container of pal.
func NewPaletteView(e *Engine, pal *palette.Palette) *PaletteView {
	v := &PaletteView{
		engine:  e,
		pal:     pal,
		tooltip: NewNode("label", "", "", "tooltip"),
	}
	v.tooltip.Hidden = true
	for _, c := range pal.Containers() {
		pv := &panelView{
			container: c,
			panel:     NewNode("panel", c.ID, "", "palette"),
			title:     NewNode("label", "", title(c.Part), "palette-title"),
		}
		for _, s := range c.Swatches {
			n := NewNode("swatch", "", "", "color-option")
			if rgba, err := palette.ParseColor(s.Value); err == nil {
				n.Background = &rgba
			}
			pv.swatches = append(pv.swatches, n)
		}
		v.panels = append(v.panels, pv)
	}
	v.Sync()
	return v
}

func title(part string) string {
	if part == "" {
		return "Color"
	}
	return strings.ToUpper(part[:1]) + part[1:] + " color"
}

// Layout positions panels for a screen of w×h. It only recomputes when the size or the
// engine's style generation changed since the last call.
func (v *PaletteView) Layout(w, h float32) {
	if v.laidOut && w == v.screenW && h == v.screenH && v.gen == v.engine.Generation() {
		return
	}
	v.screenW, v.screenH, v.gen, v.laidOut = w, h, v.engine.Generation(), true
	for _, pv := range v.panels {
		v.layoutPanel(pv, w, h)
	}
}

func (v *PaletteView) layoutPanel(pv *panelView, w, h float32) {
	ps := v.engine.Style(pv.panel)
	ts := v.engine.Style(pv.title)
	ss := v.engine.Style(&Node{Type: "swatch", Classes: []string{"color-option"}})

	panelW := ps.Width.Resolve(w)
	if !ps.Width.Set {
		panelW = 6*ss.Width.Resolve(w) + 5*ps.Gap + 2*ps.Padding
	}
	innerW := panelW - 2*ps.Padding
	titleH := ts.Height.Resolve(h)
	if !ts.Height.Set {
		titleH = ts.FontSize
	}
	sw, sh := ss.Width.Resolve(w), ss.Height.Resolve(h)

	_, gridH := style.Flow(0, 0, innerW, sw, sh, ps.Gap, len(pv.swatches))
	contentH := 2*ps.Padding + titleH + ps.Gap + gridH
	pv.panel.Bounds = style.Anchor(ps, w, h, panelW, contentH)

	inner := pv.panel.Bounds.Inset(ps.Padding)
	pv.title.Bounds = style.Rect{X: inner.X, Y: inner.Y, W: inner.W, H: titleH}
	pv.boxes, _ = style.Flow(inner.X, inner.Y+titleH+ps.Gap, inner.W, sw, sh, ps.Gap, len(pv.swatches))
	for i, n := range pv.swatches {
		n.Bounds = pv.boxes[i]
	}
}

// Contains reports whether (x, y) is over any panel, so callers can keep the pointer from
// also driving the camera.
func (v *PaletteView) Contains(x, y float32) bool {
	for _, pv := range v.panels {
		if pv.panel.Bounds.Contains(x, y) {
			return true
		}
	}
	return false
}

// Update applies pointer state: hover flags, the tooltip, and on click the recolor of the
// swatch under the pointer. The error of a failed recolor is returned; the highlight is
// then left as it was.
func (v *PaletteView) Update(x, y float32, clicked bool, recolor palette.RecolorFunc) error {
	v.tooltip.Hidden = true
	var err error
	for _, pv := range v.panels {
		hit := style.HitTest(pv.boxes, x, y)
		for i, n := range pv.swatches {
			n.Hover = i == hit
		}
		if hit < 0 {
			continue
		}
		v.showTooltip(pv.container.Swatches[hit].Name, x, y)
		if clicked {
			err = v.pal.Click(pv.container.Part, hit, recolor)
			v.Sync()
		}
	}
	return err
}

func (v *PaletteView) showTooltip(text string, x, y float32) {
	t := v.tooltip
	t.Text = text
	t.Hidden = false
	c := v.engine.Style(t)
	tw := v.engine.MeasureText(text, c.FontSize) + 2*c.Padding
	th := c.FontSize + 2*c.Padding
	tx, ty := x+12, y-th-8
	if tx+tw > v.screenW {
		tx = v.screenW - tw
	}
	if ty < 0 {
		ty = y + 20
	}
	t.Bounds = style.Rect{X: tx, Y: ty, W: tw, H: th}
}

// Sync copies the containers' selection state into the swatch classes.
func (v *PaletteView) Sync() {
	for _, pv := range v.panels {
		for i, n := range pv.swatches {
			n.SetClass("selected", pv.container.Swatches[i].Selected)
		}
	}
}

// AppendNodes appends every palette node to dst in draw order, tooltip last.
func (v *PaletteView) AppendNodes(dst []*Node) []*Node {
	for _, pv := range v.panels {
		dst = append(dst, pv.panel, pv.title)
		dst = append(dst, pv.swatches...)
	}
	return append(dst, v.tooltip)
}
