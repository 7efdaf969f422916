package transform

import "fmt"

// Orientation is the capture-orientation tag attached to a photo. Only the
// four tags produced by the capture path are recognized; anything else,
// including the mirrored EXIF variants, fails closed with
// ErrInvalidOrientation rather than guessing a correction.
type Orientation int

const (
	OrientationUpright      Orientation = 0
	OrientationUpsideDown   Orientation = 1
	OrientationRotatedRight Orientation = 2
	OrientationRotatedLeft  Orientation = 3
)

// ParseOrientation validates a raw orientation tag.
func ParseOrientation(raw int) (Orientation, error) {
	switch o := Orientation(raw); o {
	case OrientationUpright, OrientationUpsideDown, OrientationRotatedRight, OrientationRotatedLeft:
		return o, nil
	default:
		return 0, fmt.Errorf("%w: tag %d", ErrInvalidOrientation, raw)
	}
}

func (o Orientation) String() string {
	switch o {
	case OrientationUpright:
		return "upright"
	case OrientationUpsideDown:
		return "upside_down"
	case OrientationRotatedRight:
		return "rotated_right"
	case OrientationRotatedLeft:
		return "rotated_left"
	default:
		return fmt.Sprintf("orientation(%d)", int(o))
	}
}
