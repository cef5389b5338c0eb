package jobs

import "time"

type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

type EnqueueRequest struct {
	Source    string
	DedupeKey string
	Payload   JobPayload
}

type JobPayload struct {
	SourceURL      string  `json:"source_url"`
	TargetLanguage string  `json:"target_language"`
	Level          string  `json:"level,omitempty"`
	CategoryIDs    []int64 `json:"category_ids,omitempty"`
}

// ImportJob tracks one external-video import through the ingestion
// pipeline. Stage and Message mirror the most recent progress event so
// pollers see where a running import is.
type ImportJob struct {
	ID        string     `json:"id"`
	Source    string     `json:"source"`
	DedupeKey string     `json:"dedupe_key"`
	Payload   JobPayload `json:"payload"`
	Status    Status     `json:"status"`
	Stage     string     `json:"stage,omitempty"`
	Message   string     `json:"message,omitempty"`
	VideoID   int64      `json:"video_id,omitempty"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
