package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/openingcoach/openingcoach/pkg/models"
)

// FileStore implements the Store interface with one JSON file per job under
// a single directory. Records are written atomically (temp file + rename) so
// a crash mid-write never leaves a corrupt record; whatever was last renamed
// into place survives a restart.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates the jobs directory if needed and returns a FileStore.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("jobs directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create jobs directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Ping verifies the jobs directory is still accessible.
func (s *FileStore) Ping(_ context.Context) error {
	_, err := os.Stat(s.dir)
	return err
}

func (s *FileStore) path(id uuid.UUID) string {
	return filepath.Join(s.dir, id.String()+".json")
}

func (s *FileStore) Create(_ context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path(job.ID)); err == nil {
		return ErrAlreadyExists
	}
	return s.write(job)
}

func (s *FileStore) Get(_ context.Context, id uuid.UUID) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(id)
}

func (s *FileStore) Update(_ context.Context, id uuid.UUID, opts ...UpdateOption) (*models.Job, error) {
	var p updateParams
	for _, opt := range opts {
		opt(&p)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	job, err := s.read(id)
	if err != nil {
		return nil, err
	}

	if p.Status != nil && *p.Status != job.Status {
		if !job.Status.CanTransitionTo(*p.Status) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, job.Status, *p.Status)
		}
		job.Status = *p.Status
	}
	if p.Message != nil {
		job.Message = *p.Message
	}
	if p.Results != nil {
		job.Results = p.Results
	}
	if p.Error != nil {
		job.Error = p.Error
	}
	if p.CompletedAt != nil {
		t := p.CompletedAt.UTC()
		job.CompletedAt = &t
	}
	if p.ProcessingTimeSeconds != nil {
		job.ProcessingTimeSeconds = p.ProcessingTimeSeconds
	}
	job.UpdatedAt = time.Now().UTC()

	if err := s.write(job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *FileStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

// List returns every readable record in the jobs directory. Files that fail
// to decode are skipped with a warning rather than failing the whole listing.
func (s *FileStore) List(_ context.Context) ([]*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read jobs directory: %w", err)
	}

	jobs := make([]*models.Job, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id, err := uuid.Parse(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		job, err := s.read(id)
		if err != nil {
			slog.Warn("skipping unreadable job record", "file", entry.Name(), "error", err)
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// read loads a record. Callers must hold s.mu.
func (s *FileStore) read(id uuid.UUID) (*models.Job, error) {
	data, err := os.ReadFile(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read job %s: %w", id, err)
	}

	var job models.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", id, err)
	}
	return &job, nil
}

// write persists a record atomically. Callers must hold s.mu.
func (s *FileStore) write(job *models.Job) error {
	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.ID, err)
	}

	tmp, err := os.CreateTemp(s.dir, job.ID.String()+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp record: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write job %s: %w", job.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp record: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(job.ID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename job %s: %w", job.ID, err)
	}
	return nil
}
