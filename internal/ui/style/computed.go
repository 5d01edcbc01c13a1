package style

import (
	"image/color"
	"strconv"
	"strings"

	"configurator/internal/palette"
)

// Length is a CSS length in pixels or percent. The zero value is unset.
type Length struct {
	Value   float32
	Percent bool
	Set     bool
}

// Px returns a pixel length.
func Px(v float32) Length { return Length{Value: v, Set: true} }

// Resolve returns the length in pixels relative to total.
func (l Length) Resolve(total float32) float32 {
	if l.Percent {
		return total * l.Value / 100
	}
	return l.Value
}

// ParseLength parses "12", "12px" or "50%".
func ParseLength(s string) (Length, bool) {
	s = strings.TrimSpace(s)
	pct := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(strings.TrimSuffix(s, "%"), "px")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: float32(v), Percent: pct, Set: true}, true
}

// ParseColor accepts #RGB, #RRGGBB, #RRGGBBAA and "transparent".
func ParseColor(s string) (color.RGBA, bool) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "transparent") {
		return color.RGBA{}, true
	}
	if len(s) == 9 && s[0] == '#' {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return color.RGBA{}, false
		}
		c, err := palette.ParseColor(s[:7])
		if err != nil {
			return color.RGBA{}, false
		}
		c.A = uint8(a)
		return c, true
	}
	c, err := palette.ParseColor(s)
	return c, err == nil
}

// Computed holds resolved values used for layout and drawing.
type Computed struct {
	Display     string
	Background  color.RGBA
	Color       color.RGBA
	Border      color.RGBA
	BorderWidth float32
	Width       Length
	Height      Length
	Left        Length
	Top         Length
	Right       Length
	Bottom      Length
	Padding     float32
	Gap         float32
	FontSize    float32
}

// Hidden reports whether the element is not displayed.
func (c Computed) Hidden() bool { return c.Display == "none" }

// HasBorder reports whether a border should be drawn.
func (c Computed) HasBorder() bool { return c.BorderWidth > 0 && c.Border.A > 0 }

// Default returns the style of an element no rule matched.
func Default() Computed {
	return Computed{
		Color:    color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Border:   color.RGBA{A: 255},
		Padding:  4,
		FontSize: 20,
	}
}

// Resolve builds a Computed from matched properties. Unknown properties and
// unparseable values are ignored.
func Resolve(props map[string]string) Computed {
	out := Default()
	for k, v := range props {
		switch k {
		case "display":
			out.Display = strings.ToLower(v)
		case "background", "background-color":
			if c, ok := ParseColor(v); ok {
				out.Background = c
			}
		case "color":
			if c, ok := ParseColor(v); ok {
				out.Color = c
			}
		case "border":
			out.Border, out.BorderWidth = parseBorder(v, out.Border)
		case "border-color":
			if c, ok := ParseColor(v); ok {
				out.Border = c
			}
		case "border-width":
			if l, ok := ParseLength(v); ok && !l.Percent {
				out.BorderWidth = l.Value
			}
		case "width":
			setLength(&out.Width, v)
		case "height":
			setLength(&out.Height, v)
		case "left", "x":
			setLength(&out.Left, v)
		case "top", "y":
			setLength(&out.Top, v)
		case "right":
			setLength(&out.Right, v)
		case "bottom":
			setLength(&out.Bottom, v)
		case "padding":
			setPx(&out.Padding, v)
		case "gap":
			setPx(&out.Gap, v)
		case "font-size":
			setPx(&out.FontSize, v)
		}
	}
	return out
}

func setLength(dst *Length, v string) {
	if l, ok := ParseLength(v); ok {
		*dst = l
	}
}

func setPx(dst *float32, v string) {
	if l, ok := ParseLength(v); ok && !l.Percent && l.Value >= 0 {
		*dst = l.Value
	}
}

// parseBorder reads shorthand like "2px solid #000" or "#999". A color without a width
// means a 1px border; "none" removes it.
func parseBorder(v string, fallback color.RGBA) (color.RGBA, float32) {
	if strings.EqualFold(strings.TrimSpace(v), "none") {
		return fallback, 0
	}
	c, w := fallback, float32(0)
	for _, tok := range strings.Fields(v) {
		if col, ok := ParseColor(tok); ok {
			c = col
			if w == 0 {
				w = 1
			}
			continue
		}
		if l, ok := ParseLength(tok); ok && !l.Percent {
			w = l.Value
		}
	}
	return c, w
}
