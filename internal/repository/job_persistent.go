package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/soochol/stickyparam/internal/param"
)

// JobDB defines the DB-layer methods needed by the persistent job repo.
// *db.DB satisfies this interface.
type JobDB interface {
	CreateJob(ctx context.Context, job *param.Job) error
	GetJob(ctx context.Context, name string) (*param.Job, error)
	ListJobs(ctx context.Context) ([]*param.Job, error)
	UpdateJob(ctx context.Context, job *param.Job) error
	DeleteJob(ctx context.Context, name string) error
}

// PersistentJobRepository wraps a MemoryJobRepository with a PostgreSQL backend.
// Job definitions are configuration, so DB write failures are returned.
// Reads try memory first, falling back to the database.
type PersistentJobRepository struct {
	mem *MemoryJobRepository
	db  JobDB
}

func NewPersistentJobRepository(mem *MemoryJobRepository, db JobDB) *PersistentJobRepository {
	return &PersistentJobRepository{mem: mem, db: db}
}

func (r *PersistentJobRepository) Create(ctx context.Context, job *param.Job) error {
	if _, err := r.Get(ctx, job.Name); err == nil {
		return fmt.Errorf("%w: job %s", ErrExists, job.Name)
	}
	if err := r.db.CreateJob(ctx, job); err != nil {
		return fmt.Errorf("db create job: %w", err)
	}
	r.mem.put(ctx, job)
	return nil
}

func (r *PersistentJobRepository) Get(ctx context.Context, name string) (*param.Job, error) {
	job, err := r.mem.Get(ctx, name)
	if err == nil {
		return job, nil
	}

	dbJob, dbErr := r.db.GetJob(ctx, name)
	if dbErr != nil {
		if !errors.Is(dbErr, sql.ErrNoRows) {
			slog.Warn("db get job failed", "job", name, "err", dbErr)
		}
		return nil, err // return original ErrNotFound
	}

	r.mem.put(ctx, dbJob)
	return dbJob, nil
}

func (r *PersistentJobRepository) List(ctx context.Context) ([]*param.Job, error) {
	jobs, err := r.db.ListJobs(ctx)
	if err == nil {
		return jobs, nil
	}
	slog.Warn("db list jobs failed, falling back to in-memory", "err", err)
	return r.mem.List(ctx)
}

func (r *PersistentJobRepository) Update(ctx context.Context, job *param.Job) error {
	if err := r.db.UpdateJob(ctx, job); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: job %s", ErrNotFound, job.Name)
		}
		return fmt.Errorf("db update job: %w", err)
	}
	r.mem.put(ctx, job)
	return nil
}

func (r *PersistentJobRepository) Delete(ctx context.Context, name string) error {
	if err := r.db.DeleteJob(ctx, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = r.mem.Delete(ctx, name)
			return fmt.Errorf("%w: job %s", ErrNotFound, name)
		}
		return fmt.Errorf("db delete job: %w", err)
	}
	_ = r.mem.Delete(ctx, name)
	return nil
}
