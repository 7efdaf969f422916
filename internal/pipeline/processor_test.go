package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/dunamismax/photofix/internal/domain"
	"github.com/dunamismax/photofix/internal/transform"
)

func TestLocalProcessor_FileInChainedTransformsFileOut(t *testing.T) {
	tmp := t.TempDir()
	inputPath := filepath.Join(tmp, "input.png")
	outputDir := filepath.Join(tmp, "out")

	srcBytes := buildTestPNG(t, 100, 200)
	if err := os.WriteFile(inputPath, srcBytes, 0o644); err != nil {
		t.Fatalf("write input image: %v", err)
	}

	processor, err := NewLocalProcessor(outputDir)
	if err != nil {
		t.Fatalf("new local processor: %v", err)
	}

	req := Request{
		JobID:      "job-local-1",
		SourceType: SourceTypeLocalFile,
		ObjectKey:  inputPath,
		Pipeline: []domain.TransformStep{
			{
				ID:          "upright",
				Op:          domain.OpFixOrientation,
				Orientation: 2,
				Format:      "png",
			},
			{
				ID:             "detector_crop",
				Op:             domain.OpCrop,
				Rect:           &domain.RectSpec{X: 0.1, Y: 0.2, Width: 0.5, Height: 0.5},
				NormalizedRect: true,
				Format:         "png",
			},
			{
				ID:         "corrected",
				Op:         domain.OpAdjustColor,
				Brightness: 0.2,
				Format:     "jpeg",
				Quality:    85,
			},
		},
	}

	result, err := processor.Process(context.Background(), req)
	if err != nil {
		t.Fatalf("process request: %v", err)
	}

	if result.SourceBytes != len(srcBytes) {
		t.Fatalf("expected source_bytes=%d, got %d", len(srcBytes), result.SourceBytes)
	}
	if len(result.Outputs) != 3 {
		t.Fatalf("expected 3 outputs, got %d", len(result.Outputs))
	}

	upright := result.Outputs[0]
	if upright.Width != 200 || upright.Height != 100 {
		t.Fatalf("expected orientation-corrected 200x100, got %dx%d", upright.Width, upright.Height)
	}
	verifyImageWidthWithin(t, upright.Path, 200, 1)

	cropped := result.Outputs[1]
	if cropped.Width != 100 || cropped.Height != 50 {
		t.Fatalf("expected cropped 100x50, got %dx%d", cropped.Width, cropped.Height)
	}

	corrected := result.Outputs[2]
	if corrected.Format != "jpeg" {
		t.Fatalf("expected jpeg output format, got %s", corrected.Format)
	}
	if corrected.Width != cropped.Width || corrected.Height != cropped.Height {
		t.Fatal("expected color adjustment to preserve dimensions")
	}
}

func TestLocalProcessor_UnsupportedSourceType(t *testing.T) {
	processor, err := NewLocalProcessor(t.TempDir())
	if err != nil {
		t.Fatalf("new local processor: %v", err)
	}

	_, err = processor.Process(context.Background(), Request{
		JobID:      "job-unsupported",
		SourceType: "s3_presigned",
		ObjectKey:  "uploads/job/source",
		Pipeline: []domain.TransformStep{
			{
				ID:           "straighten",
				Op:           domain.OpRotate,
				AngleDegrees: -2,
			},
		},
	})
	if err == nil {
		t.Fatal("expected unsupported source_type error")
	}
}

func TestLocalProcessor_InvalidOrientationTagPropagates(t *testing.T) {
	tmp := t.TempDir()
	inputPath := filepath.Join(tmp, "input.png")
	if err := os.WriteFile(inputPath, buildTestPNG(t, 32, 32), 0o644); err != nil {
		t.Fatalf("write input image: %v", err)
	}

	processor, err := NewLocalProcessor(filepath.Join(tmp, "out"))
	if err != nil {
		t.Fatalf("new local processor: %v", err)
	}

	_, err = processor.Process(context.Background(), Request{
		JobID:      "job-bad-orientation",
		SourceType: SourceTypeLocalFile,
		ObjectKey:  inputPath,
		Pipeline: []domain.TransformStep{
			{
				ID:          "upright",
				Op:          domain.OpFixOrientation,
				Orientation: 99,
			},
		},
	})
	if !errors.Is(err, transform.ErrInvalidOrientation) {
		t.Fatalf("expected ErrInvalidOrientation, got %v", err)
	}
}

func buildTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x * 255) / w),
				G: uint8((y * 255) / h),
				B: 140,
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode source png: %v", err)
	}
	return buf.Bytes()
}

// Pixel buffers after rotation may differ from the analytic extent by a
// rounding pixel, so file-level dimension checks carry a tolerance.
func verifyImageWidthWithin(t *testing.T, path string, want, tolerance int) {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open image %s: %v", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		t.Fatalf("decode image %s: %v", path, err)
	}

	got := img.Bounds().Dx()
	if got < want-tolerance || got > want+tolerance {
		t.Fatalf("expected width %d±%d, got %d", want, tolerance, got)
	}
}
