package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/soochol/stickyparam/internal/param"
	"github.com/soochol/stickyparam/internal/repository"
)

// ErrUnknownParameter is returned when a request names a parameter the job
// does not define.
var ErrUnknownParameter = fmt.Errorf("%w: unknown parameter", param.ErrInvalidDefinition)

// JobService manages job definitions and their parameter sets.
type JobService struct {
	repo repository.JobRepository
	now  func() time.Time
}

// NewJobService creates a JobService.
func NewJobService(repo repository.JobRepository) *JobService {
	return &JobService{repo: repo, now: time.Now}
}

// Create validates and stores a new job.
func (s *JobService) Create(ctx context.Context, job *param.Job) error {
	if err := job.Normalize(); err != nil {
		return err
	}
	now := s.now()
	job.CreatedAt = now
	job.UpdatedAt = now
	return s.repo.Create(ctx, job)
}

// Get retrieves a job by name.
func (s *JobService) Get(ctx context.Context, name string) (*param.Job, error) {
	return s.repo.Get(ctx, name)
}

// List returns all jobs.
func (s *JobService) List(ctx context.Context) ([]*param.Job, error) {
	return s.repo.List(ctx)
}

// Update replaces the definition of an existing job. Jobs cannot be renamed.
func (s *JobService) Update(ctx context.Context, name string, job *param.Job) error {
	if job.Name == "" {
		job.Name = name
	}
	if job.Name != name {
		return fmt.Errorf("%w: cannot rename job %s to %s", param.ErrInvalidDefinition, name, job.Name)
	}
	if err := job.Normalize(); err != nil {
		return err
	}

	existing, err := s.repo.Get(ctx, name)
	if err != nil {
		return err
	}
	job.CreatedAt = existing.CreatedAt
	job.UpdatedAt = s.now()
	return s.repo.Update(ctx, job)
}

// Delete removes a job. Its run history is kept.
func (s *JobService) Delete(ctx context.Context, name string) error {
	return s.repo.Delete(ctx, name)
}

// PinDefault replaces a parameter's static default with v. A value whose
// type does not match the parameter leaves the definition as it was.
func (s *JobService) PinDefault(ctx context.Context, jobName, paramName string, v param.Value) (*param.Job, error) {
	job, err := s.repo.Get(ctx, jobName)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, d := range job.Parameters {
		if d.Name == paramName {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s in job %s", ErrUnknownParameter, paramName, jobName)
	}

	before := job.Parameters[idx].Default
	job.Parameters[idx] = job.Parameters[idx].CopyWithDefault(v)
	if job.Parameters[idx].Default == before {
		slog.Debug("pin default left definition unchanged",
			"job", jobName, "param", paramName, "value_type", v.Type)
		return job, nil
	}

	job.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, job); err != nil {
		return nil, err
	}
	slog.Info("pinned parameter default", "job", jobName, "param", paramName, "default", job.Parameters[idx].Default)
	return job, nil
}

// Seed creates each job that does not exist yet. Existing jobs are left
// untouched so that edits made through the API survive restarts.
func (s *JobService) Seed(ctx context.Context, jobs []param.Job) error {
	for i := range jobs {
		job := jobs[i]
		job.Parameters = append([]param.Definition(nil), jobs[i].Parameters...)
		err := s.Create(ctx, &job)
		if errors.Is(err, repository.ErrExists) {
			continue
		}
		if err != nil {
			return fmt.Errorf("seed job %s: %w", job.Name, err)
		}
		slog.Info("seeded job", "job", job.Name, "parameters", len(job.Parameters))
	}
	return nil
}
