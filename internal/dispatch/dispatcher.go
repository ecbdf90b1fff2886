package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/openingcoach/openingcoach/internal/cache"
	"github.com/openingcoach/openingcoach/internal/store"
	"github.com/openingcoach/openingcoach/pkg/models"
)

const jobCacheTTL = 30 * time.Minute

// AnalyzeFunc is the external work function: it analyzes the staged PGN file
// and returns a structured report. The dispatcher treats it as opaque.
type AnalyzeFunc func(ctx context.Context, pgnPath string) (*models.AnalysisReport, error)

// Dispatcher owns the submission path: it persists a pending record, runs
// the analysis on the pool in the background, and drives the record to a
// terminal state. Submit is the only path that triggers execution, so each
// job is executed at most once.
type Dispatcher struct {
	store   store.Store
	cache   cache.Cache
	pool    *Pool
	analyze AnalyzeFunc
	timeout time.Duration
}

// NewDispatcher creates a Dispatcher. timeout is the per-job wall-clock
// deadline, including any time spent queued behind other jobs.
func NewDispatcher(st store.Store, ca cache.Cache, pool *Pool, analyze AnalyzeFunc, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		store:   st,
		cache:   ca,
		pool:    pool,
		analyze: analyze,
		timeout: timeout,
	}
}

// Submit creates a pending job for the staged PGN file and schedules its
// analysis in the background. It returns as soon as the record is persisted,
// never waiting on the work function.
func (d *Dispatcher) Submit(ctx context.Context, pgnPath string) (*models.Job, error) {
	now := time.Now().UTC()
	job := &models.Job{
		ID:        uuid.New(),
		Status:    models.JobStatusPending,
		Message:   "Job submitted successfully",
		InputPath: pgnPath,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := d.store.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}
	d.cacheJob(ctx, job)

	go d.run(job.ID, pgnPath)

	return job, nil
}

// run drives one job to a terminal state. It recovers from panics in the
// orchestration itself so a bug here can never leave a record stuck in
// processing while the process is alive.
func (d *Dispatcher) run(jobID uuid.UUID, pgnPath string) {
	ctx := context.Background()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic dispatching job", "job_id", jobID, "error", r, "stack", string(debug.Stack()))
			d.markFailed(ctx, jobID, fmt.Sprintf("internal error: %v", r),
				store.WithProcessingTime(time.Since(start).Seconds()))
		}
	}()

	job, err := d.store.Update(ctx, jobID,
		store.WithStatus(models.JobStatusProcessing),
		store.WithMessage("Processing PGN file..."),
	)
	if err != nil {
		// A racing delete is harmless: the job is gone, nothing to drive.
		if errors.Is(err, store.ErrNotFound) {
			slog.Debug("job deleted before processing started", "job_id", jobID)
			return
		}
		slog.Error("marking job processing", "job_id", jobID, "error", err)
		return
	}
	d.cacheJob(ctx, job)

	runCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	report, err := d.pool.Run(runCtx, func(taskCtx context.Context) (*models.AnalysisReport, error) {
		return d.analyze(taskCtx, pgnPath)
	})

	switch {
	case errors.Is(err, ErrTimedOut):
		msg := fmt.Sprintf("analysis timed out after %d seconds", int(d.timeout.Seconds()))
		slog.Error("job timed out", "job_id", jobID, "timeout", d.timeout)
		d.markFailed(ctx, jobID, msg,
			store.WithProcessingTime(time.Since(start).Seconds()))

	case err != nil:
		slog.Error("job failed", "job_id", jobID, "error", err)
		d.markFailed(ctx, jobID, err.Error(),
			store.WithProcessingTime(time.Since(start).Seconds()))

	default:
		completedAt := time.Now().UTC()
		elapsed := time.Since(start).Seconds()

		job, err := d.store.Update(ctx, jobID,
			store.WithStatus(models.JobStatusCompleted),
			store.WithMessage("Analysis completed successfully"),
			store.WithResults(report),
			store.WithCompletedAt(completedAt),
			store.WithProcessingTime(elapsed),
		)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				slog.Error("marking job completed", "job_id", jobID, "error", err)
			}
			return
		}
		d.cacheJob(ctx, job)
		slog.Info("job completed", "job_id", jobID, "processing_time_seconds", elapsed)
	}
}

// markFailed records a terminal failure. An update against a deleted job is
// a no-op, not an error. extra carries fields only some failure paths set,
// such as the processing time of a job that actually entered execution.
func (d *Dispatcher) markFailed(ctx context.Context, jobID uuid.UUID, msg string, extra ...store.UpdateOption) {
	opts := append([]store.UpdateOption{
		store.WithStatus(models.JobStatusFailed),
		store.WithMessage("Analysis failed: " + msg),
		store.WithError(msg),
		store.WithCompletedAt(time.Now().UTC()),
	}, extra...)
	job, err := d.store.Update(ctx, jobID, opts...)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Error("marking job failed", "job_id", jobID, "error", err)
		}
		return
	}
	d.cacheJob(ctx, job)
}

// FailInterrupted is the restart reconciliation policy: every record left
// pending or processing by an unclean shutdown is marked failed. It runs at
// startup only when enabled in config; when disabled, orphaned records stay
// visible as stuck processing jobs.
func (d *Dispatcher) FailInterrupted(ctx context.Context) (int, error) {
	jobs, err := d.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing jobs: %w", err)
	}

	var failed int
	for _, job := range jobs {
		if job.Status.Terminal() {
			continue
		}
		d.markFailed(ctx, job.ID, "interrupted by server restart")
		failed++
	}
	return failed, nil
}

// cacheJob best-effort publishes the record for the read path. Failures are
// ignored: the store remains authoritative.
func (d *Dispatcher) cacheJob(ctx context.Context, job *models.Job) {
	data, err := json.Marshal(job)
	if err != nil {
		return
	}
	_ = d.cache.Set(ctx, cache.JobKey(job.ID), data, jobCacheTTL)
}
