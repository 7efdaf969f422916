package queue

import (
	"testing"
	"time"

	"github.com/dunamismax/photofix/internal/domain"
)

func TestTransformPhotoTaskRoundTrip(t *testing.T) {
	payload := TransformPhotoPayload{
		JobID:      "job-123",
		SourceType: "s3_presigned",
		ObjectKey:  "uploads/job-123/source",
		Pipeline: []domain.TransformStep{
			{
				ID:          "upright",
				Op:          domain.OpFixOrientation,
				Orientation: 3,
			},
			{
				ID:             "detector_crop",
				Op:             domain.OpCrop,
				Rect:           &domain.RectSpec{X: 0.1, Y: 0.2, Width: 0.5, Height: 0.5},
				NormalizedRect: true,
			},
		},
		RequestedAt: time.Now().UTC(),
	}

	task, err := NewTransformPhotoTask(payload)
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if task.Type() != TypeTransformPhoto {
		t.Fatalf("expected task type %s, got %s", TypeTransformPhoto, task.Type())
	}

	parsed, err := ParseTransformPhotoPayload(task)
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if parsed.JobID != payload.JobID {
		t.Fatalf("expected job_id %s, got %s", payload.JobID, parsed.JobID)
	}
	if len(parsed.Pipeline) != 2 {
		t.Fatalf("expected 2 pipeline steps, got %d", len(parsed.Pipeline))
	}
	if parsed.Pipeline[1].Rect == nil || parsed.Pipeline[1].Rect.Width != 0.5 {
		t.Fatalf("expected crop rect to survive the round trip, got %+v", parsed.Pipeline[1].Rect)
	}
}
