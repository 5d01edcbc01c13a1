package style

// Rect is an axis-aligned box in screen pixels.
type Rect struct {
	X, Y, W, H float32
}

// Contains reports whether (x, y) lies inside r. The right and bottom edges are exclusive.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && y >= r.Y && x < r.X+r.W && y < r.Y+r.H
}

// Inset shrinks r by p on every side.
func (r Rect) Inset(p float32) Rect {
	w, h := max(0, r.W-2*p), max(0, r.H-2*p)
	return Rect{X: r.X + p, Y: r.Y + p, W: w, H: h}
}

// Anchor places a box inside a viewport of vw×vh. Width and height come from the style or,
// when unset, from the content size. Left/top percentages position the box the way
// "left: 50%" centers it: a share of the free space. Right/bottom are used when left/top
// are unset.
func Anchor(c Computed, vw, vh, contentW, contentH float32) Rect {
	w, h := contentW, contentH
	if c.Width.Set {
		w = c.Width.Resolve(vw)
	}
	if c.Height.Set {
		h = c.Height.Resolve(vh)
	}
	return Rect{X: place(c.Left, c.Right, vw, w), Y: place(c.Top, c.Bottom, vh, h), W: w, H: h}
}

func place(start, end Length, total, size float32) float32 {
	switch {
	case start.Set && start.Percent:
		return (total - size) * start.Value / 100
	case start.Set:
		return start.Value
	case end.Set:
		return total - size - end.Resolve(total)
	}
	return 0
}

// Flow lays out n items of w×h left to right within width, wrapping to new rows, with gap
// between items and rows. Items start at (x, y). It returns the item boxes and the height
// of the block.
func Flow(x, y, width, w, h, gap float32, n int) ([]Rect, float32) {
	if n <= 0 {
		return nil, 0
	}
	perRow := 1
	if w > 0 && width > w {
		perRow = max(1, int((width+gap)/(w+gap)))
	}
	out := make([]Rect, n)
	for i := range out {
		row, col := i/perRow, i%perRow
		out[i] = Rect{X: x + float32(col)*(w+gap), Y: y + float32(row)*(h+gap), W: w, H: h}
	}
	rows := (n + perRow - 1) / perRow
	return out, float32(rows)*h + float32(rows-1)*gap
}

// HitTest returns the index of the first box containing (x, y), or -1.
func HitTest(boxes []Rect, x, y float32) int {
	for i, b := range boxes {
		if b.Contains(x, y) {
			return i
		}
	}
	return -1
}
