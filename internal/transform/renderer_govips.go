//go:build govips && cgo

package transform

import (
	"context"
	"fmt"
	"math"

	"github.com/davidbyttow/govips/v2/vips"
)

// govipsRenderer delegates pixel work to libvips. vips operations mutate the
// ImageRef in place, so every operation works on a copy to preserve the
// copy-on-transform contract.
type govipsRenderer struct{}

type vipsImage struct {
	ref    *vips.ImageRef
	extent Rect
	format string
}

func (i vipsImage) Extent() Rect { return i.extent }

func (govipsRenderer) Decode(ctx context.Context, data []byte) (Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ref, err := vips.NewImageFromBuffer(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	format := "png"
	switch vips.DetermineImageType(data) {
	case vips.ImageTypeJPEG:
		format = "jpeg"
	case vips.ImageTypeWEBP:
		format = "webp"
	}

	return vipsImage{
		ref:    ref,
		extent: Rect{Width: float64(ref.Width()), Height: float64(ref.Height())},
		format: format,
	}, nil
}

func (govipsRenderer) ApplyAffine(ctx context.Context, img Image, m AffineTransform) (Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := asVipsImage(img)
	if err != nil {
		return nil, err
	}

	newExtent := m.ApplyRect(src.extent)

	if m.IsTranslation() {
		ref, err := src.ref.Copy()
		if err != nil {
			return nil, fmt.Errorf("%w: copy image: %v", ErrTransformFailed, err)
		}
		return vipsImage{ref: ref, extent: newExtent, format: src.format}, nil
	}

	angle, scale, ok := m.Similarity()
	if !ok {
		return nil, fmt.Errorf("%w: matrix is not a similarity transform", ErrTransformFailed)
	}

	ref, err := src.ref.Copy()
	if err != nil {
		return nil, fmt.Errorf("%w: copy image: %v", ErrTransformFailed, err)
	}
	if err := ref.Similarity(scale, angle*180/math.Pi, &vips.ColorRGBA{}, 0, 0, 0, 0); err != nil {
		return nil, fmt.Errorf("%w: similarity: %v", ErrTransformFailed, err)
	}

	return vipsImage{ref: ref, extent: newExtent, format: src.format}, nil
}

func (govipsRenderer) AdjustColor(ctx context.Context, img Image, adj ColorAdjustment) (Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := asVipsImage(img)
	if err != nil {
		return nil, err
	}

	ref, err := src.ref.Copy()
	if err != nil {
		return nil, fmt.Errorf("%w: copy image: %v", ErrFilterConstruction, err)
	}
	if err := ref.Modulate(1+adj.Brightness, 1+adj.Saturation, 0); err != nil {
		return nil, fmt.Errorf("%w: modulate: %v", ErrFilterConstruction, err)
	}
	if err := ref.Linear1(1+adj.Contrast, -128*adj.Contrast); err != nil {
		return nil, fmt.Errorf("%w: contrast: %v", ErrFilterConstruction, err)
	}

	return vipsImage{ref: ref, extent: src.extent, format: src.format}, nil
}

func (govipsRenderer) Crop(ctx context.Context, img Image, r AbsoluteRect) (Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := asVipsImage(img)
	if err != nil {
		return nil, err
	}

	clipped := src.extent.Intersect(Rect(r))
	if clipped.Empty() {
		return nil, fmt.Errorf("%w: crop rect (%.1f,%.1f %.1fx%.1f) does not intersect extent", ErrTransformFailed, r.X, r.Y, r.Width, r.Height)
	}

	ref, err := src.ref.Copy()
	if err != nil {
		return nil, fmt.Errorf("%w: copy image: %v", ErrTransformFailed, err)
	}

	left := int(math.Round(clipped.X - src.extent.X))
	top := int(math.Round(clipped.Y - src.extent.Y))
	width := int(math.Round(clipped.Width))
	height := int(math.Round(clipped.Height))
	if err := ref.ExtractArea(left, top, width, height); err != nil {
		return nil, fmt.Errorf("%w: extract area: %v", ErrTransformFailed, err)
	}

	return vipsImage{ref: ref, extent: clipped, format: src.format}, nil
}

func (govipsRenderer) Encode(ctx context.Context, img Image, format string, quality int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := asVipsImage(img)
	if err != nil {
		return nil, err
	}

	if format == "" {
		format = src.format
	}

	switch normalizeFormat(format) {
	case "jpeg":
		params := vips.NewJpegExportParams()
		if quality > 0 && quality <= 100 {
			params.Quality = quality
		}
		data, _, err := src.ref.ExportJpeg(params)
		if err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
		return data, nil
	case "webp":
		params := vips.NewWebpExportParams()
		if quality > 0 && quality <= 100 {
			params.Quality = quality
		}
		data, _, err := src.ref.ExportWebp(params)
		if err != nil {
			return nil, fmt.Errorf("encode webp: %w", err)
		}
		return data, nil
	case "png":
		params := vips.NewPngExportParams()
		if quality > 0 && quality <= 100 {
			params.Quality = quality
		}
		data, _, err := src.ref.ExportPng(params)
		if err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

func asVipsImage(img Image) (vipsImage, error) {
	src, ok := img.(vipsImage)
	if !ok {
		return vipsImage{}, fmt.Errorf("%w: image handle belongs to another renderer", ErrTransformFailed)
	}
	return src, nil
}
