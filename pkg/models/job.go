package models

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of an analysis job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Valid reports whether s is one of the four defined states.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s permits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// CanTransitionTo reports whether the transition s -> to is legal.
// Transitions are monotonic: pending -> processing -> completed|failed.
func (s JobStatus) CanTransitionTo(to JobStatus) bool {
	switch s {
	case JobStatusPending:
		return to == JobStatusProcessing || to == JobStatusFailed
	case JobStatusProcessing:
		return to == JobStatusCompleted || to == JobStatusFailed
	default:
		return false
	}
}

// Job tracks one PGN analysis from submission to a terminal state. The API
// returns the id on POST /jobs; the client polls GET /jobs/{id} until status
// is completed or failed. InputPath is the staged upload, owned by the job
// until deletion. Results and Error are mutually exclusive and both absent
// while the job is non-terminal.
type Job struct {
	ID                    uuid.UUID       `json:"id"`
	Status                JobStatus       `json:"status"`
	Message               string          `json:"message"`
	InputPath             string          `json:"input_path"`
	Results               *AnalysisReport `json:"results,omitempty"`
	Error                 *string         `json:"error,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
	CompletedAt           *time.Time      `json:"completed_at,omitempty"`
	ProcessingTimeSeconds *float64        `json:"processing_time_seconds,omitempty"`
}
