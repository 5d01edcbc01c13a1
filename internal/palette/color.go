package palette

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidColor is returned when a color value is not a #RGB or #RRGGBB hex string.
var ErrInvalidColor = errors.New("invalid color value")

// ParseColor parses a color value (#RGB or #RRGGBB, case-insensitive) into an opaque RGBA.
func ParseColor(value string) (color.RGBA, error) {
	s := strings.TrimSpace(value)
	if len(s) == 4 && s[0] == '#' {
		s = "#" + string([]byte{s[1], s[1], s[2], s[2], s[3], s[3]})
	}
	if len(s) != 7 || s[0] != '#' || !isHex(s[1:]) {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, value)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, value)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}

// FormatColor renders c as an upper-case #RRGGBB string.
func FormatColor(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
