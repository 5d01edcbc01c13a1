// Package ui draws the CSS-styled 2D overlay (palette panels, tooltip, inspector) with raylib.
package ui

import (
	"image/color"
	"os"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"configurator/internal/ui/style"
)

// Engine holds the stylesheet and draws nodes with raylib. Draw order is node order.
// Resolved styles are cached per element signature (type, id, classes, hover) and only
// recomputed after the sheet changes or Invalidate is called, so per-frame drawing does
// not re-run the cascade.
// If a font is loaded (LoadFont), text is drawn with it; otherwise raylib's default font is used.
type Engine struct {
	sheet *style.Sheet
	cache map[string]style.Computed
	font  rl.Font
	gen   int
}

// New creates an engine with the built-in stylesheet.
func New() *Engine {
	e := &Engine{cache: map[string]style.Computed{}}
	if sheet, err := style.Parse(style.DefaultCSS); err == nil {
		e.sheet = sheet
	}
	return e
}

// LoadCSS parses the CSS file at path and appends its rules after the built-in ones, so
// the file only needs to restate what it changes.
func (e *Engine) LoadCSS(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	sheet, err := style.Parse(string(data))
	if err != nil {
		return err
	}
	base, _ := style.Parse(style.DefaultCSS)
	e.SetStylesheet(base.Merge(sheet))
	return nil
}

// SetStylesheet replaces the stylesheet.
func (e *Engine) SetStylesheet(sheet *style.Sheet) {
	e.sheet = sheet
	e.Invalidate()
}

// Stylesheet returns the current stylesheet (may be nil).
func (e *Engine) Stylesheet() *style.Sheet {
	return e.sheet
}

// Invalidate drops cached styles and bumps the layout generation. Views compare
// Generation to know their cached layout is stale (e.g. after a window resize).
func (e *Engine) Invalidate() {
	clear(e.cache)
	e.gen++
}

// Generation changes every time Invalidate is called.
func (e *Engine) Generation() int {
	return e.gen
}

// LoadFont loads a TTF/OTF font for text rendering. If loading fails, the engine keeps its
// current font. Call after the window/OpenGL context exists.
func (e *Engine) LoadFont(path string) error {
	f := rl.LoadFont(path)
	if f.Texture.ID == 0 {
		return os.ErrNotExist
	}
	e.UnloadFont()
	e.font = f
	return nil
}

// Font returns the loaded font; a zero texture ID means raylib's default font.
func (e *Engine) Font() rl.Font {
	return e.font
}

// UnloadFont releases the loaded font, if any.
func (e *Engine) UnloadFont() {
	if e.font.Texture.ID != 0 {
		rl.UnloadFont(e.font)
		e.font = rl.Font{}
	}
}

// Style returns the computed style of n, including its inline background.
func (e *Engine) Style(n *Node) style.Computed {
	key := signature(n)
	c, ok := e.cache[key]
	if !ok {
		c = style.Resolve(e.sheet.Match(n.element()))
		e.cache[key] = c
	}
	if n.Background != nil {
		c.Background = *n.Background
	}
	return c
}

func signature(n *Node) string {
	var b strings.Builder
	b.WriteString(n.Type)
	b.WriteByte('#')
	b.WriteString(n.ID)
	for _, c := range n.Classes {
		b.WriteByte('.')
		b.WriteString(c)
	}
	if n.Hover {
		b.WriteString(":hover")
	}
	return b.String()
}

// MeasureText returns the width of text at size in pixels.
func (e *Engine) MeasureText(text string, size float32) float32 {
	if e.font.Texture.ID != 0 {
		return rl.MeasureTextEx(e.font, text, size, 1).X
	}
	return float32(rl.MeasureText(text, int32(size)))
}

// Place sizes n to its text plus padding (unless the style fixes the size) and anchors it
// in the viewport according to its left/top/right/bottom properties.
func (e *Engine) Place(n *Node, screenW, screenH float32) {
	c := e.Style(n)
	w := e.MeasureText(n.Text, c.FontSize) + 2*c.Padding
	h := c.FontSize + 2*c.Padding
	n.Bounds = style.Anchor(c, screenW, screenH, w, h)
}

// Draw draws nodes in order: background, border, then text.
func (e *Engine) Draw(nodes []*Node) {
	for _, n := range nodes {
		if n.Hidden {
			continue
		}
		c := e.Style(n)
		if c.Hidden() {
			continue
		}
		e.drawNode(n, c)
	}
}

func (e *Engine) drawNode(n *Node, c style.Computed) {
	r := rl.Rectangle{X: n.Bounds.X, Y: n.Bounds.Y, Width: n.Bounds.W, Height: n.Bounds.H}
	if c.Background.A > 0 && r.Width > 0 && r.Height > 0 {
		rl.DrawRectangleRec(r, rlColor(c.Background))
	}
	if c.HasBorder() && r.Width > 0 && r.Height > 0 {
		rl.DrawRectangleLinesEx(r, c.BorderWidth, rlColor(c.Border))
	}
	if n.Text == "" {
		return
	}
	pos := rl.NewVector2(n.Bounds.X+c.Padding, n.Bounds.Y+c.Padding)
	if n.Type == "label" && n.Bounds.H > 0 {
		// labels with a fixed height are vertically centered
		pos.Y = n.Bounds.Y + (n.Bounds.H-c.FontSize)/2
	}
	if e.font.Texture.ID != 0 {
		rl.DrawTextEx(e.font, n.Text, pos, c.FontSize, 1, rlColor(c.Color))
	} else {
		rl.DrawText(n.Text, int32(pos.X), int32(pos.Y), int32(c.FontSize), rlColor(c.Color))
	}
}

func rlColor(c color.RGBA) rl.Color {
	return rl.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}
