package ui

import (
	"image/color"
	"slices"

	"configurator/internal/ui/style"
)

// Node is a single UI element: panel, label, swatch. Type, ID and Classes are matched
// against the stylesheet; Bounds is set by whoever lays the node out.
type Node struct {
	Type    string // "panel", "label", "swatch"
	ID      string
	Classes []string
	Text    string
	// Background, when set, overrides the stylesheet background (swatch fill).
	Background *color.RGBA
	Hover      bool
	Hidden     bool
	Bounds     style.Rect
}

// NewNode creates a node with type, id, text and classes.
func NewNode(typ, id, text string, classes ...string) *Node {
	return &Node{Type: typ, ID: id, Text: text, Classes: classes}
}

// HasClass reports whether the node carries class name.
func (n *Node) HasClass(name string) bool {
	return slices.Contains(n.Classes, name)
}

// SetClass adds or removes class name. It reports whether the class list changed.
func (n *Node) SetClass(name string, on bool) bool {
	i := slices.Index(n.Classes, name)
	switch {
	case on && i < 0:
		n.Classes = append(n.Classes, name)
		return true
	case !on && i >= 0:
		n.Classes = slices.Delete(n.Classes, i, i+1)
		return true
	}
	return false
}

func (n *Node) element() style.Element {
	return style.Element{Type: n.Type, ID: n.ID, Classes: n.Classes, Hover: n.Hover}
}
