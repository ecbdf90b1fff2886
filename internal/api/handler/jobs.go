package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/openingcoach/openingcoach/internal/api/response"
	"github.com/openingcoach/openingcoach/internal/cache"
	"github.com/openingcoach/openingcoach/internal/store"
	"github.com/openingcoach/openingcoach/pkg/models"
)

const (
	maxUploadBytes  = 10 << 20 // 10 MiB
	readCacheTTL    = 30 * time.Second
	uploadFieldName = "pgn_file"
)

// Submitter is the slice of the dispatcher the handlers depend on.
type Submitter interface {
	Submit(ctx context.Context, pgnPath string) (*models.Job, error)
}

// Jobs bundles the job endpoints: submit, status, list, delete.
type Jobs struct {
	dispatcher Submitter
	store      store.Store
	cache      cache.Cache
	uploadsDir string
}

// NewJobs creates the job handler set.
func NewJobs(d Submitter, st store.Store, ca cache.Cache, uploadsDir string) *Jobs {
	return &Jobs{dispatcher: d, store: st, cache: ca, uploadsDir: uploadsDir}
}

// jobSummary is the projection returned by submit and list.
type jobSummary struct {
	ID        uuid.UUID        `json:"id"`
	Status    models.JobStatus `json:"status"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// jobDetail is the full projection returned by the status endpoint.
type jobDetail struct {
	ID                    uuid.UUID              `json:"id"`
	Status                models.JobStatus       `json:"status"`
	Message               string                 `json:"message"`
	Results               *models.AnalysisReport `json:"results,omitempty"`
	Error                 *string                `json:"error,omitempty"`
	CreatedAt             time.Time              `json:"created_at"`
	UpdatedAt             time.Time              `json:"updated_at"`
	CompletedAt           *time.Time             `json:"completed_at,omitempty"`
	ProcessingTimeSeconds *float64               `json:"processing_time_seconds,omitempty"`
}

func summarize(job *models.Job) jobSummary {
	return jobSummary{
		ID:        job.ID,
		Status:    job.Status,
		Message:   job.Message,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
}

func detail(job *models.Job) jobDetail {
	return jobDetail{
		ID:                    job.ID,
		Status:                job.Status,
		Message:               job.Message,
		Results:               job.Results,
		Error:                 job.Error,
		CreatedAt:             job.CreatedAt,
		UpdatedAt:             job.UpdatedAt,
		CompletedAt:           job.CompletedAt,
		ProcessingTimeSeconds: job.ProcessingTimeSeconds,
	}
}

// Submit handles POST /jobs: it validates and stages the uploaded PGN file,
// then hands it to the dispatcher. The response never waits on analysis.
func (h *Jobs) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile(uploadFieldName)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
			fmt.Sprintf("Multipart field %q is required", uploadFieldName), nil)
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pgn") {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
			"Please upload a PGN file", nil)
		return
	}

	staged, err := h.stageUpload(file)
	if err != nil {
		slog.Error("staging upload", "error", err)
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"Failed to store uploaded file", nil)
		return
	}

	job, err := h.dispatcher.Submit(r.Context(), staged)
	if err != nil {
		os.Remove(staged)
		slog.Error("submitting job", "error", err)
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"Failed to submit job", nil)
		return
	}

	response.Accepted(w, summarize(job))
}

func (h *Jobs) stageUpload(src io.Reader) (string, error) {
	if err := os.MkdirAll(h.uploadsDir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads directory: %w", err)
	}
	tmp, err := os.CreateTemp(h.uploadsDir, "upload-*.pgn")
	if err != nil {
		return "", fmt.Errorf("create staged file: %w", err)
	}
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write staged file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close staged file: %w", err)
	}
	return tmp.Name(), nil
}

// Status handles GET /jobs/{id}. Reads go through the cache; the store is
// authoritative on a miss.
func (h *Jobs) Status(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid job id", nil)
		return
	}

	if data, ok, _ := h.cache.Get(r.Context(), cache.JobKey(id)); ok {
		var job models.Job
		if err := json.Unmarshal(data, &job); err == nil {
			response.JSON(w, detail(&job))
			return
		}
	}

	job, err := h.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Job not found", nil)
		return
	}
	if err != nil {
		slog.Error("reading job", "job_id", id, "error", err)
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read job", nil)
		return
	}

	// Only terminal records are published from the read path. A non-terminal
	// snapshot may already be stale by the time we got here, and writing it
	// would overwrite the dispatcher's final update; terminal records never
	// change, so they are always safe to cache.
	if job.Status.Terminal() {
		if data, err := json.Marshal(job); err == nil {
			_ = h.cache.Set(r.Context(), cache.JobKey(id), data, readCacheTTL)
		}
	}
	response.JSON(w, detail(job))
}

// List handles GET /jobs. Order is whatever the store returns.
func (h *Jobs) List(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.store.List(r.Context())
	if err != nil {
		slog.Error("listing jobs", "error", err)
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list jobs", nil)
		return
	}

	summaries := make([]jobSummary, 0, len(jobs))
	for _, job := range jobs {
		summaries = append(summaries, summarize(job))
	}
	response.JSON(w, summaries)
}

// Delete handles DELETE /jobs/{id}: it removes the record and the staged
// input file. Deleting is safe at any status; an in-flight execution's final
// update simply no-ops against the missing record.
func (h *Jobs) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid job id", nil)
		return
	}

	job, err := h.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Job not found", nil)
		return
	}
	if err != nil {
		slog.Error("reading job for delete", "job_id", id, "error", err)
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete job", nil)
		return
	}

	if job.InputPath != "" {
		if err := os.Remove(job.InputPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("removing staged input", "job_id", id, "path", job.InputPath, "error", err)
		}
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Job not found", nil)
			return
		}
		slog.Error("deleting job", "job_id", id, "error", err)
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete job", nil)
		return
	}
	_ = h.cache.Delete(r.Context(), cache.JobKey(id))

	response.JSON(w, map[string]string{
		"message": fmt.Sprintf("Job %s deleted successfully", id),
	})
}
