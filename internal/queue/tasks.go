package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dunamismax/photofix/internal/domain"
	"github.com/hibiken/asynq"
)

const TypeTransformPhoto = "photo:transform"

type TransformPhotoPayload struct {
	JobID       string                 `json:"job_id"`
	SourceType  string                 `json:"source_type"`
	WebhookURL  string                 `json:"webhook_url,omitempty"`
	ObjectKey   string                 `json:"object_key"`
	Pipeline    []domain.TransformStep `json:"pipeline"`
	RequestedAt time.Time              `json:"requested_at"`
}

func NewTransformPhotoTask(payload TransformPhotoPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal transform payload: %w", err)
	}
	return asynq.NewTask(TypeTransformPhoto, body), nil
}

func ParseTransformPhotoPayload(task *asynq.Task) (TransformPhotoPayload, error) {
	var payload TransformPhotoPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return TransformPhotoPayload{}, fmt.Errorf("unmarshal transform payload: %w", err)
	}
	return payload, nil
}
