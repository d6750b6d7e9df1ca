package repository

import (
	"context"
	"errors"
	"fmt"

	memstore "github.com/soochol/stickyparam/internal/repository/memory"
	"github.com/soochol/stickyparam/internal/param"
)

// MemoryJobRepository is a thread-safe in-memory JobRepository.
type MemoryJobRepository struct {
	store *memstore.Store[*param.Job]
}

func NewMemoryJobRepository() *MemoryJobRepository {
	return &MemoryJobRepository{
		store: memstore.New(func(j *param.Job) string { return j.Name }, cloneJob),
	}
}

func (r *MemoryJobRepository) Create(ctx context.Context, job *param.Job) error {
	err := r.store.Insert(ctx, job)
	if errors.Is(err, memstore.ErrExists) {
		return fmt.Errorf("%w: job %s", ErrExists, job.Name)
	}
	return err
}

func (r *MemoryJobRepository) Get(ctx context.Context, name string) (*param.Job, error) {
	j, err := r.store.Get(ctx, name)
	if errors.Is(err, memstore.ErrNotFound) {
		return nil, fmt.Errorf("%w: job %s", ErrNotFound, name)
	}
	return j, err
}

func (r *MemoryJobRepository) List(ctx context.Context) ([]*param.Job, error) {
	return r.store.All(ctx)
}

func (r *MemoryJobRepository) Update(ctx context.Context, job *param.Job) error {
	err := r.store.Replace(ctx, job)
	if errors.Is(err, memstore.ErrNotFound) {
		return fmt.Errorf("%w: job %s", ErrNotFound, job.Name)
	}
	return err
}

// put stores job unconditionally; used to cache rows read from the database.
func (r *MemoryJobRepository) put(ctx context.Context, job *param.Job) {
	_ = r.store.Set(ctx, job)
}

func (r *MemoryJobRepository) Delete(ctx context.Context, name string) error {
	err := r.store.Delete(ctx, name)
	if errors.Is(err, memstore.ErrNotFound) {
		return fmt.Errorf("%w: job %s", ErrNotFound, name)
	}
	return err
}
