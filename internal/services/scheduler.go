package services

// scheduler.go holds the SchedulerService facade and its public API.
// Cron helpers live in scheduler_cron.go, run dispatch in scheduler_dispatch.go.

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/soochol/stickyparam/internal/param"
	"github.com/soochol/stickyparam/internal/param/ports"
	"github.com/soochol/stickyparam/internal/repository"
)

// SchedulerService triggers jobs on cron schedules. Each firing starts a run
// whose parameters take their resolved defaults unless the schedule
// overrides them.
type SchedulerService struct {
	cron         *cron.Cron
	scheduleRepo repository.ScheduleRepository
	jobs         *JobService
	triggerer    ports.Triggerer
	entryMap     map[string]cron.EntryID // schedule ID → cron entry
	mu           sync.RWMutex
	now          func() time.Time
}

// NewSchedulerService creates a SchedulerService.
func NewSchedulerService(scheduleRepo repository.ScheduleRepository, jobs *JobService, triggerer ports.Triggerer) *SchedulerService {
	return &SchedulerService{
		cron:         cron.New(cron.WithSeconds()),
		scheduleRepo: scheduleRepo,
		jobs:         jobs,
		triggerer:    triggerer,
		entryMap:     make(map[string]cron.EntryID),
		now:          time.Now,
	}
}

// Start begins the cron scheduler and loads existing schedules from the repository.
func (s *SchedulerService) Start(ctx context.Context) error {
	schedules, err := s.scheduleRepo.List(ctx)
	if err != nil {
		slog.Warn("scheduler: failed to load schedules", "err", err)
	} else {
		for _, sched := range schedules {
			if sched.Enabled {
				if err := s.registerCronJob(sched); err != nil {
					slog.Warn("scheduler: failed to register schedule",
						"id", sched.ID, "err", err)
				}
			}
		}
		slog.Info("scheduler: loaded schedules", "count", len(schedules))
	}

	s.cron.Start()
	slog.Info("scheduler: started")
	return nil
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("scheduler: stopped")
}

// AddSchedule validates, stores and registers a new schedule.
func (s *SchedulerService) AddSchedule(ctx context.Context, schedule *param.Schedule) error {
	if schedule.Timezone == "" {
		schedule.Timezone = "UTC"
	}
	cronSched, err := s.validate(ctx, schedule)
	if err != nil {
		return err
	}

	now := s.now()
	schedule.ID = "sched-" + uuid.NewString()
	schedule.NextRunAt = cronSched.Next(now)
	schedule.CreatedAt = now
	schedule.UpdatedAt = now

	if err := s.scheduleRepo.Create(ctx, schedule); err != nil {
		return err
	}

	if schedule.Enabled {
		return s.registerCronJob(schedule)
	}
	return nil
}

// RemoveSchedule removes a schedule and its cron job.
func (s *SchedulerService) RemoveSchedule(ctx context.Context, id string) error {
	s.unregisterCronJob(id)
	return s.scheduleRepo.Delete(ctx, id)
}

// UpdateSchedule updates a schedule and re-registers its cron job.
func (s *SchedulerService) UpdateSchedule(ctx context.Context, schedule *param.Schedule) error {
	existing, err := s.scheduleRepo.Get(ctx, schedule.ID)
	if err != nil {
		return err
	}
	if schedule.Timezone == "" {
		schedule.Timezone = "UTC"
	}
	cronSched, err := s.validate(ctx, schedule)
	if err != nil {
		return err
	}

	s.unregisterCronJob(schedule.ID)

	now := s.now()
	schedule.CreatedAt = existing.CreatedAt
	schedule.LastRunAt = existing.LastRunAt
	schedule.LastRunID = existing.LastRunID
	schedule.NextRunAt = cronSched.Next(now)
	schedule.UpdatedAt = now
	if err := s.scheduleRepo.Update(ctx, schedule); err != nil {
		return err
	}

	if schedule.Enabled {
		return s.registerCronJob(schedule)
	}
	return nil
}

// PauseSchedule disables a schedule without deleting it.
func (s *SchedulerService) PauseSchedule(ctx context.Context, id string) error {
	schedule, err := s.scheduleRepo.Get(ctx, id)
	if err != nil {
		return err
	}

	s.unregisterCronJob(id)

	schedule.Enabled = false
	schedule.UpdatedAt = s.now()
	return s.scheduleRepo.Update(ctx, schedule)
}

// ResumeSchedule re-enables a paused schedule.
func (s *SchedulerService) ResumeSchedule(ctx context.Context, id string) error {
	schedule, err := s.scheduleRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if schedule.Enabled {
		return nil
	}

	now := s.now()
	schedule.Enabled = true
	schedule.UpdatedAt = now
	if cronSched, err := parseCronExpr(schedule.CronExpr, schedule.Timezone); err == nil {
		schedule.NextRunAt = cronSched.Next(now)
	}

	if err := s.scheduleRepo.Update(ctx, schedule); err != nil {
		return err
	}

	return s.registerCronJob(schedule)
}

// GetSchedule retrieves a schedule by ID.
func (s *SchedulerService) GetSchedule(ctx context.Context, id string) (*param.Schedule, error) {
	return s.scheduleRepo.Get(ctx, id)
}

// ListSchedules returns all schedules, or those of one job when jobName is set.
func (s *SchedulerService) ListSchedules(ctx context.Context, jobName string) ([]*param.Schedule, error) {
	if jobName != "" {
		return s.scheduleRepo.ListByJob(ctx, jobName)
	}
	return s.scheduleRepo.List(ctx)
}

// TriggerNow fires a schedule immediately, bypassing the cron timer. It
// follows the same path as a cron firing and returns the started run.
func (s *SchedulerService) TriggerNow(ctx context.Context, id string) (*param.RunRecord, error) {
	if _, err := s.scheduleRepo.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.executeScheduledRun(ctx, id)
}

// validate checks the cron expression, the job and the override names.
func (s *SchedulerService) validate(ctx context.Context, schedule *param.Schedule) (cron.Schedule, error) {
	if schedule.JobName == "" {
		return nil, fmt.Errorf("%w: schedule job name is required", param.ErrInvalidDefinition)
	}
	cronSched, err := parseCronExpr(schedule.CronExpr, schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: cron expression %q: %v", param.ErrInvalidDefinition, schedule.CronExpr, err)
	}
	job, err := s.jobs.Get(ctx, schedule.JobName)
	if err != nil {
		return nil, err
	}
	for name := range schedule.Parameters {
		if _, ok := job.Parameter(name); !ok {
			return nil, fmt.Errorf("%w: %s in job %s", ErrUnknownParameter, name, job.Name)
		}
	}
	return cronSched, nil
}
