// Package palette holds the color catalog offered to the user and the per-part swatch
// containers with their "selected" highlight state.
package palette

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Entry is one catalog color: a display label and a color value (#RGB or #RRGGBB).
type Entry struct {
	Name  string `mapstructure:"name" yaml:"name"`
	Value string `mapstructure:"value" yaml:"value"`
}

// DefaultCatalog returns the built-in 20-color catalog.
func DefaultCatalog() []Entry {
	return []Entry{
		{Name: "White", Value: "#FFFFFF"},
		{Name: "Black", Value: "#000000"},
		{Name: "Light Pink", Value: "#F0D9E7"},
		{Name: "Dark Gray", Value: "#333333"},
		{Name: "Blue", Value: "#007bff"},
		{Name: "Green", Value: "#28a745"},
		{Name: "Red", Value: "#dc3545"},
		{Name: "Yellow", Value: "#ffc107"},
		{Name: "Cyan", Value: "#17a2b8"},
		{Name: "Magenta", Value: "#e83e8c"},
		{Name: "Orange", Value: "#fd7e14"},
		{Name: "Violet", Value: "#6f42c1"},
		{Name: "Turquoise", Value: "#20c997"},
		{Name: "Brown", Value: "#795548"},
		{Name: "Gray", Value: "#6c757d"},
		{Name: "Purple", Value: "#9c27b0"},
		{Name: "Sky Blue", Value: "#87CEEB"},
		{Name: "Mint", Value: "#98FB98"},
		{Name: "Coral", Value: "#FF7F50"},
		{Name: "Gold", Value: "#FFD700"},
	}
}

// Validate checks that every entry has a name and a parseable color value.
func Validate(catalog []Entry) error {
	if len(catalog) == 0 {
		return errors.New("palette: empty catalog")
	}
	for i, e := range catalog {
		if strings.TrimSpace(e.Name) == "" {
			return fmt.Errorf("palette: entry %d: missing name", i)
		}
		if _, err := ParseColor(e.Value); err != nil {
			return fmt.Errorf("palette: entry %d (%s): %w", i, e.Name, err)
		}
	}
	return nil
}

// Swatch is one clickable palette element for a single catalog color of a part.
type Swatch struct {
	Name     string // hover label
	Value    string // color value as authored in the catalog
	Selected bool
}

// Container groups the swatches of one part (e.g. "colorOptionsFront").
type Container struct {
	ID       string
	Part     string
	Swatches []*Swatch
}

// ContainerID returns the container identifier for part: "front" -> "colorOptionsFront".
func ContainerID(part string) string {
	r, size := utf8.DecodeRuneInString(part)
	if r == utf8.RuneError {
		return "colorOptions"
	}
	return "colorOptions" + string(unicode.ToUpper(r)) + part[size:]
}

// Select recomputes the highlight: every swatch whose value equals value
// (case-insensitive) is selected, every other swatch is cleared. Returns the number selected.
func (c *Container) Select(value string) int {
	value = strings.TrimSpace(value)
	n := 0
	for _, s := range c.Swatches {
		s.Selected = strings.EqualFold(s.Value, value)
		if s.Selected {
			n++
		}
	}
	return n
}

// Selected returns the currently selected swatches.
func (c *Container) Selected() []*Swatch {
	var out []*Swatch
	for _, s := range c.Swatches {
		if s.Selected {
			out = append(out, s)
		}
	}
	return out
}

// Palette owns one Container per part, in part order.
type Palette struct {
	catalog    []Entry
	containers []*Container
}

// New builds a palette with one swatch per catalog entry for each part.
func New(catalog []Entry, parts ...string) *Palette {
	p := &Palette{catalog: append([]Entry(nil), catalog...)}
	for _, part := range parts {
		c := &Container{ID: ContainerID(part), Part: part}
		for _, e := range catalog {
			c.Swatches = append(c.Swatches, &Swatch{Name: e.Name, Value: e.Value})
		}
		p.containers = append(p.containers, c)
	}
	return p
}

// Catalog returns a copy of the catalog the palette was built from.
func (p *Palette) Catalog() []Entry {
	return append([]Entry(nil), p.catalog...)
}

// Containers returns the containers in part order.
func (p *Palette) Containers() []*Container {
	return p.containers
}

// Container returns the container for part, or nil.
func (p *Palette) Container(part string) *Container {
	for _, c := range p.containers {
		if c.Part == part {
			return c
		}
	}
	return nil
}

// RecolorFunc applies value to part. It is the palette's only link to the 3D side.
type RecolorFunc func(part, value string) error

// Click handles a click on swatch index of part: recolor first, then refresh that part's
// highlight. The highlight mirrors the color the mesh actually carries, so a failed
// recolor (unbound part, rejected value) leaves it untouched and returns the error;
// it does not select the clicked swatch.
func (p *Palette) Click(part string, index int, recolor RecolorFunc) error {
	c := p.Container(part)
	if c == nil {
		return fmt.Errorf("palette: no container for part %q", part)
	}
	if index < 0 || index >= len(c.Swatches) {
		return fmt.Errorf("palette: swatch %d out of range for %s", index, c.ID)
	}
	value := c.Swatches[index].Value
	if err := recolor(part, value); err != nil {
		return err
	}
	c.Select(value)
	return nil
}

// Refresh recomputes the highlight of part's container for an externally applied value
// (e.g. a default color set after load).
func (p *Palette) Refresh(part, value string) {
	if c := p.Container(part); c != nil {
		c.Select(value)
	}
}
