package transform

import "math"

const affineEpsilon = 1e-9

// AffineTransform is a 2x3 matrix mapping (x, y) to
// (A*x + C*y + TX, B*x + D*y + TY).
type AffineTransform struct {
	A, B, C, D, TX, TY float64
}

// Identity returns the transform that maps every point to itself.
func Identity() AffineTransform {
	return AffineTransform{A: 1, D: 1}
}

// Rotation returns a pure rotation by angleRadians about the origin.
// Positive angles rotate counter-clockwise; callers pass negative values for
// clockwise rotation.
func Rotation(angleRadians float64) AffineTransform {
	sin, cos := math.Sincos(angleRadians)
	return AffineTransform{A: cos, B: sin, C: -sin, D: cos}
}

// Translation returns a pure translation by (dx, dy).
func Translation(dx, dy float64) AffineTransform {
	return AffineTransform{A: 1, D: 1, TX: dx, TY: dy}
}

// Scaling returns a scale by (sx, sy) about the origin.
func Scaling(sx, sy float64) AffineTransform {
	return AffineTransform{A: sx, D: sy}
}

// Mul composes two transforms: the receiver is applied first, then other.
// Composition is associative.
func (t AffineTransform) Mul(other AffineTransform) AffineTransform {
	return AffineTransform{
		A:  t.A*other.A + t.B*other.C,
		B:  t.A*other.B + t.B*other.D,
		C:  t.C*other.A + t.D*other.C,
		D:  t.C*other.B + t.D*other.D,
		TX: t.TX*other.A + t.TY*other.C + other.TX,
		TY: t.TX*other.B + t.TY*other.D + other.TY,
	}
}

// Apply maps a single point through the transform.
func (t AffineTransform) Apply(x, y float64) (float64, float64) {
	return t.A*x + t.C*y + t.TX, t.B*x + t.D*y + t.TY
}

// ApplyRect maps a rect through the transform and returns the bounding box
// of its four transformed corners. This is the new-extent contract: rotated
// or translated images get a shifted, resized extent rather than a fixed
// canvas.
func (t AffineTransform) ApplyRect(r Rect) Rect {
	x0, y0 := t.Apply(r.X, r.Y)
	x1, y1 := t.Apply(r.MaxX(), r.Y)
	x2, y2 := t.Apply(r.X, r.MaxY())
	x3, y3 := t.Apply(r.MaxX(), r.MaxY())

	minX := math.Min(math.Min(x0, x1), math.Min(x2, x3))
	maxX := math.Max(math.Max(x0, x1), math.Max(x2, x3))
	minY := math.Min(math.Min(y0, y1), math.Min(y2, y3))
	maxY := math.Max(math.Max(y0, y1), math.Max(y2, y3))

	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// IsIdentity reports whether the transform leaves every point unchanged.
func (t AffineTransform) IsIdentity() bool {
	return t.IsTranslation() &&
		math.Abs(t.TX) < affineEpsilon && math.Abs(t.TY) < affineEpsilon
}

// IsTranslation reports whether the linear part of the transform is the
// identity, i.e. the transform only shifts coordinates.
func (t AffineTransform) IsTranslation() bool {
	return math.Abs(t.A-1) < affineEpsilon && math.Abs(t.B) < affineEpsilon &&
		math.Abs(t.C) < affineEpsilon && math.Abs(t.D-1) < affineEpsilon
}

// Similarity decomposes the transform into a rotation angle and a uniform
// scale when the linear part is a rotation combined with uniform scaling and
// no reflection. ok is false for shear, non-uniform scale, or mirrored
// transforms.
func (t AffineTransform) Similarity() (angle, scale float64, ok bool) {
	sx := math.Hypot(t.A, t.B)
	sy := math.Hypot(t.C, t.D)
	if sx < affineEpsilon || math.Abs(sx-sy) > affineEpsilon*math.Max(1, sx) {
		return 0, 0, false
	}
	// Columns must be orthogonal and the determinant positive.
	if math.Abs(t.A*t.C+t.B*t.D) > affineEpsilon*sx*sy {
		return 0, 0, false
	}
	if t.A*t.D-t.B*t.C <= 0 {
		return 0, 0, false
	}
	return math.Atan2(t.B, t.A), sx, true
}

// IsFinite reports whether every matrix entry is a finite number.
func (t AffineTransform) IsFinite() bool {
	for _, v := range []float64{t.A, t.B, t.C, t.D, t.TX, t.TY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
