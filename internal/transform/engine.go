package transform

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrTransformFailed covers any failure to construct or apply an
	// affine or crop operation, including parameters the active renderer
	// cannot express. The causes are not distinguished further.
	ErrTransformFailed = errors.New("transform failed")

	// ErrFilterConstruction is returned when a color adjustment cannot be
	// built from its parameters, before any pixels are touched.
	ErrFilterConstruction = errors.New("filter construction failed")

	// ErrInvalidOrientation is returned for orientation tags outside the
	// recognized set.
	ErrInvalidOrientation = errors.New("invalid orientation")

	// ErrDecodeFailed is returned when caller-supplied image data cannot
	// be interpreted.
	ErrDecodeFailed = errors.New("decode failed")
)

// ColorAdjustment parameterizes the per-pixel color filter. Each value is a
// relative change where 0 leaves the channel untouched. Values are passed
// through to the renderer without clamping; only non-finite values are
// rejected.
type ColorAdjustment struct {
	Saturation float64
	Contrast   float64
	Brightness float64
}

func (a ColorAdjustment) validate() error {
	for _, v := range []float64{a.Saturation, a.Contrast, a.Brightness} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite adjustment value", ErrFilterConstruction)
		}
	}
	return nil
}

// Image is an immutable handle to decoded pixel data plus its extent. Every
// operation yields a new handle; no handle is mutated after construction, so
// renderers may share underlying buffers between handles.
type Image interface {
	Extent() Rect
}

// Renderer is the rendering backend the engine delegates pixel work to.
// Implementations must be safe for use from a single goroutine; callers that
// parallelize use one renderer per worker rather than sharing one.
type Renderer interface {
	Decode(ctx context.Context, data []byte) (Image, error)
	ApplyAffine(ctx context.Context, img Image, m AffineTransform) (Image, error)
	AdjustColor(ctx context.Context, img Image, adj ColorAdjustment) (Image, error)
	Crop(ctx context.Context, img Image, r AbsoluteRect) (Image, error)
	Encode(ctx context.Context, img Image, format string, quality int) ([]byte, error)
}

// Engine exposes the transform operations over Image values. It holds no
// state beyond the renderer it delegates to; all operations are
// deterministic functions of their inputs.
type Engine struct {
	renderer Renderer
}

// NewEngine builds an engine on the default renderer for this build.
func NewEngine() (*Engine, error) {
	r, err := newRenderer()
	if err != nil {
		return nil, fmt.Errorf("build renderer: %w", err)
	}
	return &Engine{renderer: r}, nil
}

// NewEngineWithRenderer builds an engine on an explicit renderer.
func NewEngineWithRenderer(r Renderer) *Engine {
	return &Engine{renderer: r}
}

// Decode interprets encoded image bytes into an Image handle anchored at
// (0,0).
func (e *Engine) Decode(ctx context.Context, data []byte) (Image, error) {
	return e.renderer.Decode(ctx, data)
}

// Encode serializes an Image into the given format ("jpeg", "png", "webp");
// an empty format keeps the source format.
func (e *Engine) Encode(ctx context.Context, img Image, format string, quality int) ([]byte, error) {
	return e.renderer.Encode(ctx, img, format, quality)
}

// Rotate rotates the image by angleRadians (positive = counter-clockwise).
func (e *Engine) Rotate(ctx context.Context, img Image, angleRadians float64) (Image, error) {
	return e.ApplyAffine(ctx, img, Rotation(angleRadians))
}

// Translate shifts the image extent by (dx, dy). Pure translation touches no
// pixels, so round trips restore the original extent origin exactly.
func (e *Engine) Translate(ctx context.Context, img Image, dx, dy float64) (Image, error) {
	return e.ApplyAffine(ctx, img, Translation(dx, dy))
}

// ApplyAffine applies the matrix to the image. The resulting extent is the
// bounding box of the transformed input extent.
func (e *Engine) ApplyAffine(ctx context.Context, img Image, m AffineTransform) (Image, error) {
	if !m.IsFinite() {
		return nil, fmt.Errorf("%w: non-finite matrix", ErrTransformFailed)
	}
	return e.renderer.ApplyAffine(ctx, img, m)
}

// AdjustColor applies the saturation/contrast/brightness filter.
func (e *Engine) AdjustColor(ctx context.Context, img Image, adj ColorAdjustment) (Image, error) {
	if err := adj.validate(); err != nil {
		return nil, err
	}
	return e.renderer.AdjustColor(ctx, img, adj)
}

// Crop restricts the image to r. The rectangle must already be in absolute
// pixel coordinates; convert detector boxes with NormalizedToAbsolute first.
// The rectangle is intersected with the image extent, and an empty
// intersection fails with ErrTransformFailed.
func (e *Engine) Crop(ctx context.Context, img Image, r AbsoluteRect) (Image, error) {
	return e.renderer.Crop(ctx, img, r)
}

// FixOrientation corrects a photo captured with a non-upright orientation
// tag. Rotations shift the extent origin away from (0,0), so each correction
// re-anchors the result with a follow-up translation; downstream consumers
// assume a (0,0)-anchored extent. Unrecognized tags fail with
// ErrInvalidOrientation, and a failing sub-step fails the whole operation
// with no partial result.
func (e *Engine) FixOrientation(ctx context.Context, img Image, o Orientation) (Image, error) {
	var angle float64
	switch o {
	case OrientationUpright:
		return img, nil
	case OrientationUpsideDown:
		angle = math.Pi
	case OrientationRotatedRight:
		angle = math.Pi / 2
	case OrientationRotatedLeft:
		angle = -math.Pi / 2
	default:
		return nil, fmt.Errorf("%w: tag %d", ErrInvalidOrientation, int(o))
	}

	rotated, err := e.Rotate(ctx, img, angle)
	if err != nil {
		return nil, err
	}

	extent := rotated.Extent()
	return e.Translate(ctx, rotated, -extent.X, -extent.Y)
}
