package configurator

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"configurator/internal/scenegraph"
)

// ErrDegenerateGeometry is returned by Fit when the model's bounds have no usable size.
var ErrDegenerateGeometry = errors.New("degenerate geometry")

// Fit normalizes a parentless root so that its world bounding box has a largest extent
// of 1 and is centered at the origin. It returns the applied scale factor.
// Nothing is modified when the bounds are empty, zero-sized or non-finite.
func Fit(root *scenegraph.Node) (float32, error) {
	var box scenegraph.Box3
	box.SetFromObject(root)
	maxDim := box.MaxDim()
	if box.IsEmpty() || !finite(maxDim) || maxDim <= 0 {
		return 0, fmt.Errorf("%w: largest extent %v", ErrDegenerateGeometry, maxDim)
	}
	scale := 1 / maxDim
	if !finite(scale) {
		return 0, fmt.Errorf("%w: largest extent %v", ErrDegenerateGeometry, maxDim)
	}

	if root.Matrix != nil {
		m := root.Matrix.Mul4(mgl32.Scale3D(scale, scale, scale))
		root.Matrix = &m
	} else {
		root.Scale = root.Scale.Mul(scale)
	}

	box.SetFromObject(root)
	center := box.Center()
	if root.Matrix != nil {
		m := mgl32.Translate3D(-center[0], -center[1], -center[2]).Mul4(*root.Matrix)
		root.Matrix = &m
	} else {
		root.Position = root.Position.Sub(center)
	}
	return scale, nil
}

func finite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}
