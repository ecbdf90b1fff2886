package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/openingcoach/openingcoach/pkg/models"
)

var ErrNotFound = errors.New("job not found")
var ErrAlreadyExists = errors.New("job already exists")

// ErrInvalidTransition is returned when an update would move a job out of a
// terminal state or otherwise break the lifecycle ordering. Hitting it
// indicates a bug in the dispatcher, not a user-facing condition.
var ErrInvalidTransition = errors.New("invalid job status transition")

// Store is the job persistence interface. All record access goes through
// here; no component caches a record across a goroutine boundary.
type Store interface {
	Ping(ctx context.Context) error
	Create(ctx context.Context, job *models.Job) error
	Get(ctx context.Context, id uuid.UUID) (*models.Job, error)
	// Update applies a read-modify-write over the full record: only fields
	// named by opts change, everything else is preserved, and UpdatedAt is
	// always refreshed. Status changes are validated against the lifecycle
	// state machine.
	Update(ctx context.Context, id uuid.UUID, opts ...UpdateOption) (*models.Job, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*models.Job, error)
}

type updateParams struct {
	Status                *models.JobStatus
	Message               *string
	Results               *models.AnalysisReport
	Error                 *string
	CompletedAt           *time.Time
	ProcessingTimeSeconds *float64
}

// UpdateOption names one field changed by Store.Update.
type UpdateOption func(*updateParams)

func WithStatus(s models.JobStatus) UpdateOption {
	return func(p *updateParams) { p.Status = &s }
}

func WithMessage(msg string) UpdateOption {
	return func(p *updateParams) { p.Message = &msg }
}

func WithResults(r *models.AnalysisReport) UpdateOption {
	return func(p *updateParams) { p.Results = r }
}

func WithError(msg string) UpdateOption {
	return func(p *updateParams) { p.Error = &msg }
}

func WithCompletedAt(t time.Time) UpdateOption {
	return func(p *updateParams) { p.CompletedAt = &t }
}

func WithProcessingTime(seconds float64) UpdateOption {
	return func(p *updateParams) { p.ProcessingTimeSeconds = &seconds }
}
