package style

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelector(t *testing.T) {
	sel, err := ParseSelector("panel#colorOptionsFront.palette:hover")
	require.NoError(t, err)
	assert.Equal(t, Selector{Type: "panel", ID: "colorOptionsFront", Classes: []string{"palette"}, Hover: true}, sel)
	assert.Equal(t, 121, sel.Specificity())

	for _, bad := range []string{"", "#a .b", "a > b", ".x:focus", "[title]", ".", "*"} {
		_, err := ParseSelector(bad)
		assert.Error(t, err, bad)
	}
}

func TestMatchCascade(t *testing.T) {
	sheet, err := Parse(`
.color-option { border: 1px solid #999; width: 32px }
.color-option.selected { border: 3px solid #000 }
.color-option:hover { border: 2px solid #555 }
#special { width: 40px }
@media print { .color-option { width: 1px } }
.a .b, .c { color: #FFF }
`)
	require.NoError(t, err)
	assert.Equal(t, []string{".a .b"}, sheet.Skipped)

	plain := Resolve(sheet.Match(Element{Classes: []string{"color-option"}}))
	assert.Equal(t, float32(1), plain.BorderWidth)
	assert.Equal(t, Px(32), plain.Width)

	hovered := Resolve(sheet.Match(Element{Classes: []string{"color-option"}, Hover: true}))
	assert.Equal(t, float32(2), hovered.BorderWidth)

	selected := Resolve(sheet.Match(Element{Classes: []string{"color-option", "selected"}}))
	assert.Equal(t, float32(3), selected.BorderWidth)
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, selected.Border)

	both := Resolve(sheet.Match(Element{Classes: []string{"color-option", "selected"}, Hover: true}))
	assert.Equal(t, float32(2), both.BorderWidth, "equal specificity: later rule wins")

	byID := Resolve(sheet.Match(Element{ID: "special", Classes: []string{"color-option"}}))
	assert.Equal(t, Px(40), byID.Width)

	c := Resolve(sheet.Match(Element{Classes: []string{"c"}}))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, c.Color)
}

func TestDefaultCSSParses(t *testing.T) {
	sheet, err := Parse(DefaultCSS)
	require.NoError(t, err)
	assert.Empty(t, sheet.Skipped)

	front := Resolve(sheet.Match(Element{ID: "colorOptionsFront", Classes: []string{"palette"}}))
	assert.Equal(t, Px(16), front.Left)
	assert.Equal(t, Px(16), front.Bottom)
	assert.Equal(t, uint8(0xE0), front.Background.A)

	sel := Resolve(sheet.Match(Element{Classes: []string{"color-option", "selected"}, Hover: true}))
	assert.Equal(t, float32(3), sel.BorderWidth, "selection stays visible under the pointer")
}

func TestParseColorAndLength(t *testing.T) {
	c, ok := ParseColor("#11223380")
	require.True(t, ok)
	assert.Equal(t, color.RGBA{0x11, 0x22, 0x33, 0x80}, c)
	_, ok = ParseColor("#1122338G")
	assert.False(t, ok)
	c, ok = ParseColor("transparent")
	assert.True(t, ok)
	assert.Equal(t, uint8(0), c.A)

	l, ok := ParseLength("50%")
	require.True(t, ok)
	assert.Equal(t, float32(400), l.Resolve(800))
	l, ok = ParseLength("12px")
	require.True(t, ok)
	assert.Equal(t, float32(12), l.Resolve(800))
	_, ok = ParseLength("auto")
	assert.False(t, ok)

	assert.Equal(t, float32(0), Resolve(map[string]string{"border": "none"}).BorderWidth)
	assert.True(t, Resolve(map[string]string{"display": "none"}).Hidden())
}

func TestAnchor(t *testing.T) {
	c := Resolve(map[string]string{"right": "16px", "bottom": "16px", "width": "200px"})
	assert.Equal(t, Rect{X: 584, Y: 484, W: 200, H: 100}, Anchor(c, 800, 600, 50, 100))

	centered := Resolve(map[string]string{"left": "50%", "top": "10px"})
	assert.Equal(t, Rect{X: 350, Y: 10, W: 100, H: 20}, Anchor(centered, 800, 600, 100, 20))

	pct := Resolve(map[string]string{"width": "25%"})
	assert.Equal(t, float32(200), Anchor(pct, 800, 600, 0, 0).W)
}

func TestFlowAndHitTest(t *testing.T) {
	boxes, height := Flow(10, 20, 100, 30, 30, 5, 7)
	require.Len(t, boxes, 7)
	assert.Equal(t, Rect{X: 10, Y: 20, W: 30, H: 30}, boxes[0])
	assert.Equal(t, Rect{X: 80, Y: 20, W: 30, H: 30}, boxes[2])
	assert.Equal(t, Rect{X: 10, Y: 55, W: 30, H: 30}, boxes[3], "three per row")
	assert.Equal(t, float32(3*30+2*5), height)

	assert.Equal(t, 3, HitTest(boxes, 15, 60))
	assert.Equal(t, -1, HitTest(boxes, 42, 25), "gap between swatches")
	assert.Equal(t, -1, HitTest(boxes, 40, 25), "right edge is exclusive")

	none, h := Flow(0, 0, 100, 10, 10, 0, 0)
	assert.Nil(t, none)
	assert.Equal(t, float32(0), h)

	assert.Equal(t, Rect{X: 2, Y: 2, W: 6, H: 0}, Rect{X: 0, Y: 0, W: 10, H: 3}.Inset(2))
}
