package transform

import (
	"math"
	"testing"
)

func TestNormalizedToAbsoluteConcrete(t *testing.T) {
	extent := Rect{Width: 1000, Height: 2000}
	got := NormalizedToAbsolute(extent, NormalizedRect{X: 0.1, Y: 0.2, Width: 0.5, Height: 0.5})

	want := AbsoluteRect{X: 100, Y: 400, Width: 500, Height: 1000}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestNormalizedToAbsoluteIsLinear(t *testing.T) {
	extent := Rect{Width: 640, Height: 480}
	n := NormalizedRect{X: 0.2, Y: 0.4, Width: 0.6, Height: 0.5}
	const k = 0.5

	scaled := NormalizedToAbsolute(extent, NormalizedRect{
		X: n.X * k, Y: n.Y * k, Width: n.Width * k, Height: n.Height * k,
	})
	base := NormalizedToAbsolute(extent, n)

	assertClose(t, "x", scaled.X, base.X*k)
	assertClose(t, "y", scaled.Y, base.Y*k)
	assertClose(t, "width", scaled.Width, base.Width*k)
	assertClose(t, "height", scaled.Height, base.Height*k)
}

func TestNormalizedRectValid(t *testing.T) {
	if !(NormalizedRect{X: 0, Y: 0, Width: 1, Height: 1}).Valid() {
		t.Fatal("expected full-frame rect to be valid")
	}
	if (NormalizedRect{X: 0.1, Y: 0.2, Width: 1.2, Height: 0.5}).Valid() {
		t.Fatal("expected width > 1 to be invalid")
	}
	if (NormalizedRect{X: math.NaN()}).Valid() {
		t.Fatal("expected NaN component to be invalid")
	}
	if (NormalizedRect{X: -0.01, Width: 0.5, Height: 0.5}).Valid() {
		t.Fatal("expected negative component to be invalid")
	}
}

func TestRectIntersect(t *testing.T) {
	a := Rect{Width: 100, Height: 100}

	got := a.Intersect(Rect{X: 50, Y: 60, Width: 100, Height: 100})
	want := Rect{X: 50, Y: 60, Width: 50, Height: 40}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	if !a.Intersect(Rect{X: 200, Y: 200, Width: 10, Height: 10}).Empty() {
		t.Fatal("expected disjoint rects to produce an empty intersection")
	}
}
