package transform

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"
)

func TestDecodeRejectsGarbage(t *testing.T) {
	engine := newTestEngine(t)

	_, err := engine.Decode(context.Background(), []byte("not an image"))
	if !errors.Is(err, ErrDecodeFailed) {
		t.Fatalf("expected ErrDecodeFailed, got %v", err)
	}
}

func TestFixOrientationUprightIsNoOp(t *testing.T) {
	engine := newTestEngine(t)
	img := decodeTestImage(t, engine, 120, 80)

	got, err := engine.FixOrientation(context.Background(), img, OrientationUpright)
	if err != nil {
		t.Fatalf("fix orientation: %v", err)
	}
	if got != img {
		t.Fatal("expected upright correction to return the input image")
	}
}

func TestFixOrientationRotatedRightSwapsAndReanchors(t *testing.T) {
	engine := newTestEngine(t)
	img := decodeTestImage(t, engine, 100, 200)

	got, err := engine.FixOrientation(context.Background(), img, OrientationRotatedRight)
	if err != nil {
		t.Fatalf("fix orientation: %v", err)
	}

	extent := got.Extent()
	if extent.X != 0 || extent.Y != 0 {
		t.Fatalf("expected (0,0)-anchored extent, got origin (%v,%v)", extent.X, extent.Y)
	}
	assertClose(t, "width", extent.Width, 200)
	assertClose(t, "height", extent.Height, 100)
}

func TestFixOrientationReanchorsAllNonTrivialCases(t *testing.T) {
	engine := newTestEngine(t)
	img := decodeTestImage(t, engine, 90, 50)

	for _, o := range []Orientation{OrientationUpsideDown, OrientationRotatedRight, OrientationRotatedLeft} {
		got, err := engine.FixOrientation(context.Background(), img, o)
		if err != nil {
			t.Fatalf("%v: fix orientation: %v", o, err)
		}
		extent := got.Extent()
		if extent.X != 0 || extent.Y != 0 {
			t.Fatalf("%v: expected (0,0)-anchored extent, got origin (%v,%v)", o, extent.X, extent.Y)
		}
	}
}

func TestFixOrientationRejectsUnknownTag(t *testing.T) {
	engine := newTestEngine(t)
	img := decodeTestImage(t, engine, 20, 20)

	_, err := engine.FixOrientation(context.Background(), img, Orientation(99))
	if !errors.Is(err, ErrInvalidOrientation) {
		t.Fatalf("expected ErrInvalidOrientation, got %v", err)
	}
}

func TestRotateQuarterTurnRoundTripRestoresExtent(t *testing.T) {
	engine := newTestEngine(t)
	img := decodeTestImage(t, engine, 100, 200)

	rotated, err := engine.Rotate(context.Background(), img, math.Pi/2)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	back, err := engine.Rotate(context.Background(), rotated, -math.Pi/2)
	if err != nil {
		t.Fatalf("rotate back: %v", err)
	}

	extent := back.Extent()
	assertClose(t, "width", extent.Width, 100)
	assertClose(t, "height", extent.Height, 200)
}

func TestTranslateRoundTripIsExact(t *testing.T) {
	engine := newTestEngine(t)
	img := decodeTestImage(t, engine, 40, 30)

	moved, err := engine.Translate(context.Background(), img, 5.5, -3.25)
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if moved.Extent().X != 5.5 || moved.Extent().Y != -3.25 {
		t.Fatalf("expected extent origin (5.5,-3.25), got (%v,%v)", moved.Extent().X, moved.Extent().Y)
	}

	back, err := engine.Translate(context.Background(), moved, -5.5, 3.25)
	if err != nil {
		t.Fatalf("translate back: %v", err)
	}
	extent := back.Extent()
	if extent.X != 0 || extent.Y != 0 {
		t.Fatalf("expected exact (0,0) origin after round trip, got (%v,%v)", extent.X, extent.Y)
	}
	if extent.Width != 40 || extent.Height != 30 {
		t.Fatalf("expected 40x30 extent, got %vx%v", extent.Width, extent.Height)
	}
}

func TestApplyAffineRejectsUnsupportedMatrices(t *testing.T) {
	engine := newTestEngine(t)
	img := decodeTestImage(t, engine, 32, 32)

	shear := AffineTransform{A: 1, B: 0, C: 0.5, D: 1}
	if _, err := engine.ApplyAffine(context.Background(), img, shear); !errors.Is(err, ErrTransformFailed) {
		t.Fatalf("expected ErrTransformFailed for shear, got %v", err)
	}

	if _, err := engine.ApplyAffine(context.Background(), img, Scaling(2, 3)); !errors.Is(err, ErrTransformFailed) {
		t.Fatalf("expected ErrTransformFailed for non-uniform scale, got %v", err)
	}

	bad := AffineTransform{A: math.NaN(), D: 1}
	if _, err := engine.ApplyAffine(context.Background(), img, bad); !errors.Is(err, ErrTransformFailed) {
		t.Fatalf("expected ErrTransformFailed for non-finite matrix, got %v", err)
	}
}

func TestApplyAffineUniformScale(t *testing.T) {
	engine := newTestEngine(t)
	img := decodeTestImage(t, engine, 50, 80)

	got, err := engine.ApplyAffine(context.Background(), img, Scaling(2, 2))
	if err != nil {
		t.Fatalf("apply affine: %v", err)
	}
	extent := got.Extent()
	assertClose(t, "width", extent.Width, 100)
	assertClose(t, "height", extent.Height, 160)
}

func TestCropClipsToExtent(t *testing.T) {
	engine := newTestEngine(t)
	img := decodeTestImage(t, engine, 200, 100)

	got, err := engine.Crop(context.Background(), img, AbsoluteRect{X: 50, Y: 25, Width: 100, Height: 50})
	if err != nil {
		t.Fatalf("crop: %v", err)
	}
	want := Rect{X: 50, Y: 25, Width: 100, Height: 50}
	if got.Extent() != want {
		t.Fatalf("expected extent %+v, got %+v", want, got.Extent())
	}

	clipped, err := engine.Crop(context.Background(), img, AbsoluteRect{X: 150, Y: 50, Width: 200, Height: 200})
	if err != nil {
		t.Fatalf("crop beyond bounds: %v", err)
	}
	wantClipped := Rect{X: 150, Y: 50, Width: 50, Height: 50}
	if clipped.Extent() != wantClipped {
		t.Fatalf("expected clipped extent %+v, got %+v", wantClipped, clipped.Extent())
	}
}

func TestCropFailsOutsideExtent(t *testing.T) {
	engine := newTestEngine(t)
	img := decodeTestImage(t, engine, 64, 64)

	_, err := engine.Crop(context.Background(), img, AbsoluteRect{X: 500, Y: 500, Width: 10, Height: 10})
	if !errors.Is(err, ErrTransformFailed) {
		t.Fatalf("expected ErrTransformFailed, got %v", err)
	}
}

func TestCropNormalizedDetectorBox(t *testing.T) {
	engine := newTestEngine(t)
	img := decodeTestImage(t, engine, 1000, 2000)

	box := NormalizedToAbsolute(img.Extent(), NormalizedRect{X: 0.1, Y: 0.2, Width: 0.5, Height: 0.5})
	got, err := engine.Crop(context.Background(), img, box)
	if err != nil {
		t.Fatalf("crop: %v", err)
	}
	want := Rect{X: 100, Y: 400, Width: 500, Height: 1000}
	if got.Extent() != want {
		t.Fatalf("expected extent %+v, got %+v", want, got.Extent())
	}
}

func TestAdjustColorChangesPixels(t *testing.T) {
	engine := newTestEngine(t)
	img := decodeTestImage(t, engine, 30, 30)

	adjusted, err := engine.AdjustColor(context.Background(), img, ColorAdjustment{Brightness: 0.5})
	if err != nil {
		t.Fatalf("adjust color: %v", err)
	}
	if adjusted.Extent() != img.Extent() {
		t.Fatal("expected color adjustment to preserve the extent")
	}

	before, err := engine.Encode(context.Background(), img, "png", 0)
	if err != nil {
		t.Fatalf("encode source: %v", err)
	}
	after, err := engine.Encode(context.Background(), adjusted, "png", 0)
	if err != nil {
		t.Fatalf("encode adjusted: %v", err)
	}
	if bytes.Equal(before, after) {
		t.Fatal("expected brightened image bytes to differ from source")
	}
}

func TestAdjustColorRejectsNonFiniteValues(t *testing.T) {
	engine := newTestEngine(t)
	img := decodeTestImage(t, engine, 10, 10)

	_, err := engine.AdjustColor(context.Background(), img, ColorAdjustment{Saturation: math.NaN()})
	if !errors.Is(err, ErrFilterConstruction) {
		t.Fatalf("expected ErrFilterConstruction, got %v", err)
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func decodeTestImage(t *testing.T, engine *Engine, w, h int) Image {
	t.Helper()

	img, err := engine.Decode(context.Background(), buildTestPNG(t, w, h))
	if err != nil {
		t.Fatalf("decode test image: %v", err)
	}
	return img
}

func buildTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x * 255) / w),
				G: uint8((y * 255) / h),
				B: 120,
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
