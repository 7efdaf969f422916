package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	JobStatusCreated    = "created"
	JobStatusQueued     = "queued"
	JobStatusProcessing = "processing"
	JobStatusSucceeded  = "succeeded"
	JobStatusFailed     = "failed"

	SourceTypeLocalFile   = "local_file"
	SourceTypeS3Presigned = "s3_presigned"
)

const (
	OpRotate         = "rotate"
	OpTranslate      = "translate"
	OpAdjustColor    = "adjust_color"
	OpCrop           = "crop"
	OpFixOrientation = "fix_orientation"
)

type CreateJobRequest struct {
	SourceType string          `json:"source_type"`
	WebhookURL string          `json:"webhook_url,omitempty"`
	ObjectKey  string          `json:"object_key,omitempty"`
	Pipeline   []TransformStep `json:"pipeline"`
}

// TransformStep is one operation in a photo's transform chain. The output of
// each step feeds the next, and every step's result is emitted.
type TransformStep struct {
	ID string `json:"id"`
	Op string `json:"op"`

	// rotate
	AngleDegrees float64 `json:"angle_degrees,omitempty"`

	// translate
	DX float64 `json:"dx,omitempty"`
	DY float64 `json:"dy,omitempty"`

	// adjust_color: relative changes, 0 leaves the channel untouched
	Saturation float64 `json:"saturation,omitempty"`
	Contrast   float64 `json:"contrast,omitempty"`
	Brightness float64 `json:"brightness,omitempty"`

	// crop: pixel units unless NormalizedRect is set, in which case all
	// four components must be fractions in [0,1] of the current extent
	Rect           *RectSpec `json:"rect,omitempty"`
	NormalizedRect bool      `json:"normalized_rect,omitempty"`

	// fix_orientation: raw capture orientation tag (0..3)
	Orientation int `json:"orientation,omitempty"`

	Format  string `json:"format,omitempty"`
	Quality int    `json:"quality,omitempty"`
}

type RectSpec struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Job struct {
	ID         string
	UserID     string
	Status     string
	SourceType string
	WebhookURL string
	Pipeline   []TransformStep
	ObjectKey  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (r CreateJobRequest) Validate() error {
	sourceType := strings.ToLower(strings.TrimSpace(r.SourceType))
	if sourceType == "" {
		return errors.New("source_type is required")
	}
	if sourceType != SourceTypeLocalFile && sourceType != SourceTypeS3Presigned {
		return fmt.Errorf("unsupported source_type: %s", r.SourceType)
	}
	if sourceType == SourceTypeLocalFile && strings.TrimSpace(r.ObjectKey) == "" {
		return errors.New("object_key is required for source_type=local_file")
	}
	if len(r.Pipeline) == 0 {
		return errors.New("pipeline must contain at least one step")
	}
	for i, step := range r.Pipeline {
		if err := step.Validate(); err != nil {
			return fmt.Errorf("pipeline[%d]: %w", i, err)
		}
	}
	return nil
}

func (s TransformStep) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return errors.New("id is required")
	}

	switch strings.ToLower(strings.TrimSpace(s.Op)) {
	case OpRotate:
		if !isFinite(s.AngleDegrees) {
			return errors.New("rotate requires a finite angle_degrees")
		}
	case OpTranslate:
		if !isFinite(s.DX) || !isFinite(s.DY) {
			return errors.New("translate requires finite dx and dy")
		}
	case OpAdjustColor:
		if !isFinite(s.Saturation) || !isFinite(s.Contrast) || !isFinite(s.Brightness) {
			return errors.New("adjust_color requires finite saturation, contrast and brightness")
		}
	case OpCrop:
		if s.Rect == nil {
			return errors.New("crop requires rect")
		}
		if s.Rect.Width <= 0 || s.Rect.Height <= 0 {
			return errors.New("crop rect requires positive width and height")
		}
		if s.NormalizedRect {
			for _, v := range []float64{s.Rect.X, s.Rect.Y, s.Rect.Width, s.Rect.Height} {
				if !isFinite(v) || v < 0 || v > 1 {
					return errors.New("normalized crop rect components must be in [0,1]")
				}
			}
		}
	case OpFixOrientation:
		if s.Orientation < 0 || s.Orientation > 3 {
			return fmt.Errorf("unrecognized orientation tag: %d", s.Orientation)
		}
	case "":
		return errors.New("op is required")
	default:
		return fmt.Errorf("unsupported op: %s", s.Op)
	}

	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
