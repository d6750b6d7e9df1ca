package repository

import (
	"context"
	"maps"

	"github.com/soochol/stickyparam/internal/param"
)

// ScheduleRepository abstracts persistence for cron schedules.
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *param.Schedule) error
	Get(ctx context.Context, id string) (*param.Schedule, error)
	Update(ctx context.Context, schedule *param.Schedule) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*param.Schedule, error)
	ListByJob(ctx context.Context, jobName string) ([]*param.Schedule, error)
}

func cloneSchedule(s *param.Schedule) *param.Schedule {
	c := *s
	c.Parameters = maps.Clone(s.Parameters)
	if s.LastRunAt != nil {
		t := *s.LastRunAt
		c.LastRunAt = &t
	}
	return &c
}
