package repository

import (
	"context"
	"log/slog"

	"github.com/soochol/stickyparam/internal/param"
)

// ScheduleDB defines the DB-layer methods needed by the persistent schedule repo.
type ScheduleDB interface {
	CreateSchedule(ctx context.Context, s *param.Schedule) error
	GetSchedule(ctx context.Context, id string) (*param.Schedule, error)
	UpdateSchedule(ctx context.Context, s *param.Schedule) error
	DeleteSchedule(ctx context.Context, id string) error
	ListSchedules(ctx context.Context) ([]*param.Schedule, error)
}

// PersistentScheduleRepository wraps a MemoryScheduleRepository with a PostgreSQL backend.
// Writes go to both stores (DB failure is logged but non-fatal).
// Reads try memory first, falling back to the database.
type PersistentScheduleRepository struct {
	mem *MemoryScheduleRepository
	db  ScheduleDB
}

func NewPersistentScheduleRepository(mem *MemoryScheduleRepository, db ScheduleDB) *PersistentScheduleRepository {
	return &PersistentScheduleRepository{mem: mem, db: db}
}

func (r *PersistentScheduleRepository) Create(ctx context.Context, schedule *param.Schedule) error {
	_ = r.mem.Create(ctx, schedule)
	if err := r.db.CreateSchedule(ctx, schedule); err != nil {
		slog.Warn("db create schedule failed, in-memory only", "err", err)
	}
	return nil
}

func (r *PersistentScheduleRepository) Get(ctx context.Context, id string) (*param.Schedule, error) {
	s, err := r.mem.Get(ctx, id)
	if err == nil {
		return s, nil
	}

	dbSched, dbErr := r.db.GetSchedule(ctx, id)
	if dbErr != nil {
		return nil, err // return original ErrNotFound
	}

	_ = r.mem.Create(ctx, dbSched)
	return dbSched, nil
}

func (r *PersistentScheduleRepository) Update(ctx context.Context, schedule *param.Schedule) error {
	if _, err := r.Get(ctx, schedule.ID); err != nil {
		return err
	}
	_ = r.mem.Update(ctx, schedule)
	if err := r.db.UpdateSchedule(ctx, schedule); err != nil {
		slog.Warn("db update schedule failed, in-memory only", "err", err)
	}
	return nil
}

func (r *PersistentScheduleRepository) Delete(ctx context.Context, id string) error {
	memErr := r.mem.Delete(ctx, id)
	if err := r.db.DeleteSchedule(ctx, id); err != nil {
		slog.Warn("db delete schedule failed", "err", err)
	}
	return memErr
}

func (r *PersistentScheduleRepository) List(ctx context.Context) ([]*param.Schedule, error) {
	schedules, err := r.db.ListSchedules(ctx)
	if err == nil {
		return schedules, nil
	}
	slog.Warn("db list schedules failed, falling back to in-memory", "err", err)
	return r.mem.List(ctx)
}

func (r *PersistentScheduleRepository) ListByJob(ctx context.Context, jobName string) ([]*param.Schedule, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*param.Schedule
	for _, s := range all {
		if s.JobName == jobName {
			out = append(out, s)
		}
	}
	return out, nil
}
