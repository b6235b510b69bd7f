// Package jobs runs named, retried, durably-tracked background tasks:
// a handler registry keyed by kind, an in-memory in-flight cache
// mirroring cache.Cache's role in the upload-job coordinator, and a
// Postgres-backed Store for the durable Job record spec.md §4.12
// requires.
package jobs

import (
	"context"
	"encoding/json"
	"time"
)

type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Job is the durable record of one named task: its kind, its
// JSON-serializable input, its current phase, and (on failure) a
// truncated error string.
type Job struct {
	ID         string
	Kind       string
	Input      json.RawMessage
	Output     json.RawMessage
	Status     Status
	Attempts   int
	MaxRetries int
	Error      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Handler executes one job attempt. Handlers must be idempotent with
// respect to the persisted Job record: check status before mutating
// any downstream state a retry could repeat.
type Handler func(ctx context.Context, job *Job) error
