package transform

import "math"

// Rect is the extent type: a floating-point origin plus size describing an
// image's coordinate space. Transforms shift and resize it; pixel buffers
// stay (0,0)-anchored internally while the extent carries the analytic
// coordinates.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// NormalizedRect is a rectangle whose components are fractions in [0,1]
// relative to an image extent, as emitted by detector models. It is a
// distinct type so it cannot be passed where absolute pixel coordinates are
// required without an explicit conversion.
type NormalizedRect Rect

// AbsoluteRect is a rectangle in pixel units.
type AbsoluteRect Rect

func (r Rect) MaxX() float64 { return r.X + r.Width }

func (r Rect) MaxY() float64 { return r.Y + r.Height }

func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Intersect returns the overlap of two rects. The result is empty when they
// do not overlap.
func (r Rect) Intersect(other Rect) Rect {
	x0 := math.Max(r.X, other.X)
	y0 := math.Max(r.Y, other.Y)
	x1 := math.Min(r.MaxX(), other.MaxX())
	y1 := math.Min(r.MaxY(), other.MaxY())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Valid reports whether every component is finite and inside [0,1].
func (n NormalizedRect) Valid() bool {
	for _, v := range []float64{n.X, n.Y, n.Width, n.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 1 {
			return false
		}
	}
	return true
}

// NormalizedToAbsolute scales a normalized rectangle against an image extent,
// yielding pixel coordinates. It is pure arithmetic and never fails for
// finite inputs; callers must run it before cropping with a detector box.
func NormalizedToAbsolute(extent Rect, n NormalizedRect) AbsoluteRect {
	return AbsoluteRect{
		X:      n.X * extent.Width,
		Y:      n.Y * extent.Height,
		Width:  n.Width * extent.Width,
		Height: n.Height * extent.Height,
	}
}
