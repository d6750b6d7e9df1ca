package repository

import (
	"context"
	"errors"
	"fmt"

	memstore "github.com/soochol/stickyparam/internal/repository/memory"
	"github.com/soochol/stickyparam/internal/param"
)

// MemoryScheduleRepository stores schedules in memory.
type MemoryScheduleRepository struct {
	store *memstore.Store[*param.Schedule]
}

func NewMemoryScheduleRepository() *MemoryScheduleRepository {
	return &MemoryScheduleRepository{
		store: memstore.New(func(s *param.Schedule) string { return s.ID }, cloneSchedule),
	}
}

func (r *MemoryScheduleRepository) Create(ctx context.Context, schedule *param.Schedule) error {
	return r.store.Set(ctx, schedule)
}

func (r *MemoryScheduleRepository) Get(ctx context.Context, id string) (*param.Schedule, error) {
	s, err := r.store.Get(ctx, id)
	if errors.Is(err, memstore.ErrNotFound) {
		return nil, fmt.Errorf("%w: schedule %s", ErrNotFound, id)
	}
	return s, err
}

func (r *MemoryScheduleRepository) Update(ctx context.Context, schedule *param.Schedule) error {
	err := r.store.Replace(ctx, schedule)
	if errors.Is(err, memstore.ErrNotFound) {
		return fmt.Errorf("%w: schedule %s", ErrNotFound, schedule.ID)
	}
	return err
}

func (r *MemoryScheduleRepository) Delete(ctx context.Context, id string) error {
	err := r.store.Delete(ctx, id)
	if errors.Is(err, memstore.ErrNotFound) {
		return fmt.Errorf("%w: schedule %s", ErrNotFound, id)
	}
	return err
}

func (r *MemoryScheduleRepository) List(ctx context.Context) ([]*param.Schedule, error) {
	return r.store.All(ctx)
}

func (r *MemoryScheduleRepository) ListByJob(ctx context.Context, jobName string) ([]*param.Schedule, error) {
	return r.store.Filter(ctx, func(s *param.Schedule) bool {
		return s.JobName == jobName
	})
}
