package services

import (
	"context"
	"log/slog"

	"github.com/soochol/stickyparam/internal/param"
	"github.com/soochol/stickyparam/internal/param/ports"
)

// executeScheduledRun starts a run for the schedule and records it on the
// schedule. The schedule is re-read so that edits made since registration
// are honoured.
func (s *SchedulerService) executeScheduledRun(ctx context.Context, id string) (*param.RunRecord, error) {
	schedule, err := s.scheduleRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	slog.Info("scheduler: executing scheduled run",
		"schedule", schedule.ID, "job", schedule.JobName)

	run, runErr := s.triggerer.Trigger(ctx, schedule.JobName, ports.TriggerInput{
		Raw:  schedule.Parameters,
		Type: param.TriggerCron,
		Ref:  schedule.ID,
	})

	now := s.now()
	schedule.LastRunAt = &now
	if runErr == nil {
		schedule.LastRunID = run.ID
	}
	if cronSched, parseErr := parseCronExpr(schedule.CronExpr, schedule.Timezone); parseErr == nil {
		schedule.NextRunAt = cronSched.Next(now)
	}
	schedule.UpdatedAt = now

	if updateErr := s.scheduleRepo.Update(ctx, schedule); updateErr != nil {
		slog.Warn("scheduler: failed to update schedule after run", "schedule", id, "err", updateErr)
	}
	if runErr != nil {
		return nil, runErr
	}
	return run, nil
}
