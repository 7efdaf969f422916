package transform

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/clone"
	bildtransform "github.com/anthonynsimon/bild/transform"
	_ "golang.org/x/image/webp"
)

// bildRenderer is the pure-Go rendering backend. Arbitrary shear and
// non-uniform scale are outside what it can resample, so ApplyAffine accepts
// identity, translation, and similarity (rotation plus uniform scale)
// matrices and fails the rest.
type bildRenderer struct{}

type bildImage struct {
	px     *image.RGBA
	extent Rect
	format string
}

func (i bildImage) Extent() Rect { return i.extent }

func (bildRenderer) Decode(ctx context.Context, data []byte) (Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	bounds := src.Bounds()
	return bildImage{
		px:     clone.AsRGBA(src),
		extent: Rect{Width: float64(bounds.Dx()), Height: float64(bounds.Dy())},
		format: format,
	}, nil
}

func (bildRenderer) ApplyAffine(ctx context.Context, img Image, m AffineTransform) (Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := asBildImage(img)
	if err != nil {
		return nil, err
	}

	newExtent := m.ApplyRect(src.extent)

	// Identity and pure translation never resample: the buffer is shared
	// (handles are read-only) and only the extent moves.
	if m.IsTranslation() {
		return bildImage{px: src.px, extent: newExtent, format: src.format}, nil
	}

	angle, scale, ok := m.Similarity()
	if !ok {
		return nil, fmt.Errorf("%w: matrix is not a similarity transform", ErrTransformFailed)
	}

	px := src.px
	if math.Abs(scale-1) > affineEpsilon {
		w := int(math.Round(float64(px.Bounds().Dx()) * scale))
		h := int(math.Round(float64(px.Bounds().Dy()) * scale))
		if w < 1 || h < 1 {
			return nil, fmt.Errorf("%w: scale %.6f collapses the image", ErrTransformFailed, scale)
		}
		px = bildtransform.Resize(px, w, h, bildtransform.Linear)
	}

	if math.Abs(angle) > affineEpsilon {
		// The extent follows the mathematical convention; the pixel
		// grid direction is the backend's.
		px = bildtransform.Rotate(px, angle*180/math.Pi, &bildtransform.RotationOptions{ResizeBounds: true})
	}
	if px == nil || px.Bounds().Empty() {
		return nil, fmt.Errorf("%w: renderer produced an empty image", ErrTransformFailed)
	}

	return bildImage{px: px, extent: newExtent, format: src.format}, nil
}

func (bildRenderer) AdjustColor(ctx context.Context, img Image, adj ColorAdjustment) (Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := asBildImage(img)
	if err != nil {
		return nil, err
	}

	px := adjust.Saturation(src.px, adj.Saturation)
	px = adjust.Contrast(px, adj.Contrast)
	px = adjust.Brightness(px, adj.Brightness)

	return bildImage{px: px, extent: src.extent, format: src.format}, nil
}

func (bildRenderer) Crop(ctx context.Context, img Image, r AbsoluteRect) (Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := asBildImage(img)
	if err != nil {
		return nil, err
	}

	clipped := src.extent.Intersect(Rect(r))
	if clipped.Empty() {
		return nil, fmt.Errorf("%w: crop rect (%.1f,%.1f %.1fx%.1f) does not intersect extent", ErrTransformFailed, r.X, r.Y, r.Width, r.Height)
	}

	// Map from extent coordinates into the (0,0)-anchored buffer.
	x0 := int(math.Round(clipped.X - src.extent.X))
	y0 := int(math.Round(clipped.Y - src.extent.Y))
	x1 := int(math.Round(clipped.MaxX() - src.extent.X))
	y1 := int(math.Round(clipped.MaxY() - src.extent.Y))

	bufRect := image.Rect(x0, y0, x1, y1).
		Add(src.px.Bounds().Min).
		Intersect(src.px.Bounds())
	if bufRect.Empty() {
		return nil, fmt.Errorf("%w: crop rect maps outside the pixel buffer", ErrTransformFailed)
	}

	return bildImage{
		px:     bildtransform.Crop(src.px, bufRect),
		extent: clipped,
		format: src.format,
	}, nil
}

func (bildRenderer) Encode(ctx context.Context, img Image, format string, quality int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := asBildImage(img)
	if err != nil {
		return nil, err
	}

	if format == "" {
		format = src.format
	}

	var buf bytes.Buffer
	switch normalizeFormat(format) {
	case "jpeg":
		if quality <= 0 || quality > 100 {
			quality = 80
		}
		if err := jpeg.Encode(&buf, src.px, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	case "png":
		encoder := png.Encoder{CompressionLevel: png.DefaultCompression}
		if err := encoder.Encode(&buf, src.px); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	case "webp":
		return nil, fmt.Errorf("webp export requires the govips build tag")
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}

	return buf.Bytes(), nil
}

func asBildImage(img Image) (bildImage, error) {
	src, ok := img.(bildImage)
	if !ok {
		return bildImage{}, fmt.Errorf("%w: image handle belongs to another renderer", ErrTransformFailed)
	}
	return src, nil
}

func normalizeFormat(format string) string {
	if format == "jpg" {
		return "jpeg"
	}
	return format
}
