package pipeline

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/dunamismax/photofix/internal/domain"
	"github.com/dunamismax/photofix/internal/transform"
)

// applyStep maps one pipeline step onto the engine operation it names.
// Normalized crop rects are converted against the current extent before the
// engine sees them; the engine itself only accepts absolute rectangles.
func applyStep(ctx context.Context, engine *transform.Engine, img transform.Image, step domain.TransformStep) (transform.Image, error) {
	switch strings.ToLower(strings.TrimSpace(step.Op)) {
	case domain.OpRotate:
		return engine.Rotate(ctx, img, step.AngleDegrees*math.Pi/180)

	case domain.OpTranslate:
		return engine.Translate(ctx, img, step.DX, step.DY)

	case domain.OpAdjustColor:
		return engine.AdjustColor(ctx, img, transform.ColorAdjustment{
			Saturation: step.Saturation,
			Contrast:   step.Contrast,
			Brightness: step.Brightness,
		})

	case domain.OpCrop:
		if step.Rect == nil {
			return nil, errors.New("crop step requires a rect")
		}
		rect := transform.AbsoluteRect{
			X: step.Rect.X, Y: step.Rect.Y,
			Width: step.Rect.Width, Height: step.Rect.Height,
		}
		if step.NormalizedRect {
			rect = transform.NormalizedToAbsolute(img.Extent(), transform.NormalizedRect{
				X: step.Rect.X, Y: step.Rect.Y,
				Width: step.Rect.Width, Height: step.Rect.Height,
			})
		}
		return engine.Crop(ctx, img, rect)

	case domain.OpFixOrientation:
		orientation, err := transform.ParseOrientation(step.Orientation)
		if err != nil {
			return nil, err
		}
		return engine.FixOrientation(ctx, img, orientation)

	default:
		return nil, &UnsupportedOpError{Op: step.Op}
	}
}

func encodeStep(ctx context.Context, engine *transform.Engine, img transform.Image, step domain.TransformStep) ([]byte, string, error) {
	format := normalizeOutputFormat(strings.ToLower(strings.TrimSpace(step.Format)))
	data, err := engine.Encode(ctx, img, format, step.Quality)
	if err != nil {
		return nil, "", err
	}
	return data, format, nil
}

type UnsupportedOpError struct {
	Op string
}

func (e *UnsupportedOpError) Error() string {
	return "unsupported transform op: " + e.Op
}

func width(img transform.Image) int {
	return int(math.Round(img.Extent().Width))
}

func height(img transform.Image) int {
	return int(math.Round(img.Extent().Height))
}

func normalizeOutputFormat(format string) string {
	switch format {
	case "jpg":
		return "jpeg"
	case "jpeg", "webp":
		return format
	default:
		return "png"
	}
}
