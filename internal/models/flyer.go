package models

import "time"

// FlyerStatus tracks the lifecycle of a flyer generation job.
type FlyerStatus string

const (
	FlyerStatusQueued     FlyerStatus = "QUEUED"
	FlyerStatusProcessing FlyerStatus = "PROCESSING"
	FlyerStatusDone       FlyerStatus = "DONE"
	FlyerStatusFailed     FlyerStatus = "FAILED"
)

// FlyerJob records one flyer generation request. State lives in Redis; the
// rendered PDF lives on disk under the flyers storage dir. The record is
// snapshotted at enqueue time because the worker has no caller session to
// fetch it with later.
type FlyerJob struct {
	ID         string      `json:"id"`
	CaptiveID  int64       `json:"captive_id"`
	Captive    *Captive    `json:"captive,omitempty"`
	Status     FlyerStatus `json:"status"`
	FilePath   string      `json:"file_path,omitempty"`
	Error      string      `json:"error,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
}
