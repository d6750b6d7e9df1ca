package services

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/soochol/stickyparam/internal/param"
)

// parseCronExpr tries 6-field (with seconds) then 5-field (standard) parsing.
// If timezone is non-empty and non-UTC, it is applied via the CRON_TZ= prefix.
func parseCronExpr(expr string, timezone string) (cron.Schedule, error) {
	if timezone != "" && timezone != "UTC" {
		expr = "CRON_TZ=" + timezone + " " + expr
	}
	parser6 := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser6.Parse(expr)
	if err == nil {
		return sched, nil
	}
	parser5 := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return parser5.Parse(expr)
}

// registerCronJob registers a cron entry for the schedule and stores the
// resulting EntryID in entryMap. An existing entry is replaced.
func (s *SchedulerService) registerCronJob(schedule *param.Schedule) error {
	cronSched, err := parseCronExpr(schedule.CronExpr, schedule.Timezone)
	if err != nil {
		return err
	}

	id := schedule.ID
	s.unregisterCronJob(id)
	entryID := s.cron.Schedule(cronSched, cron.FuncJob(func() {
		if _, err := s.executeScheduledRun(context.Background(), id); err != nil {
			slog.Error("scheduler: scheduled run failed", "schedule", id, "err", err)
		}
	}))

	s.mu.Lock()
	s.entryMap[id] = entryID
	s.mu.Unlock()

	slog.Info("scheduler: registered cron job",
		"id", id, "job", schedule.JobName, "cron", schedule.CronExpr, "tz", schedule.Timezone)
	return nil
}

func (s *SchedulerService) unregisterCronJob(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entryID, ok := s.entryMap[id]; ok {
		s.cron.Remove(entryID)
		delete(s.entryMap, id)
	}
}
