package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/soochol/stickyparam/internal/param"
	"github.com/soochol/stickyparam/internal/param/ports"
)

var _ ports.Triggerer = (*ParameterService)(nil)

// DefaultLookback is the number of runs fetched per history page when none is configured.
const DefaultLookback = 50

// JobDefaults is the parameter form of a job: every definition with the
// default a new run would get.
type JobDefaults struct {
	Job         string             `json:"job"`
	Parameters  []param.Resolution `json:"parameters"`
	HistorySize int                `json:"history_size"`
}

// ParameterService resolves parameter defaults and seeds new runs.
type ParameterService struct {
	jobs     *JobService
	history  ports.RunHistoryPort
	lookback int
}

// NewParameterService creates a ParameterService. lookback is the page size
// used while walking a job's history; values <= 0 select DefaultLookback.
func NewParameterService(jobs *JobService, history ports.RunHistoryPort, lookback int) *ParameterService {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	return &ParameterService{jobs: jobs, history: history, lookback: lookback}
}

// Defaults resolves every parameter of the job against a single history snapshot.
func (s *ParameterService) Defaults(ctx context.Context, jobName string) (*JobDefaults, error) {
	job, err := s.jobs.Get(ctx, jobName)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, job)
}

func (s *ParameterService) resolve(ctx context.Context, job *param.Job) (*JobDefaults, error) {
	snapshot, err := s.snapshot(ctx, job)
	if err != nil {
		return nil, err
	}

	resolved := param.ResolveAll(job.Parameters, snapshot)
	for _, r := range resolved {
		if r.MismatchedType != "" {
			slog.Warn("stored parameter value has a different type, using static default",
				"job", job.Name, "param", r.Definition.Name,
				"stored_type", r.MismatchedType, "want", r.Definition.ValueType())
		}
	}
	return &JobDefaults{Job: job.Name, Parameters: resolved, HistorySize: len(snapshot)}, nil
}

// snapshot walks the job's history newest first, a page at a time, until
// every sticky parameter has the run it resolves against or the history runs
// out. Pages after the first contribute only successful runs: the newest run
// overall is always on the first page.
func (s *ParameterService) snapshot(ctx context.Context, job *param.Job) ([]*param.RunRecord, error) {
	sticky, successfulOnly := false, false
	for _, d := range job.Parameters {
		if p, ok := d.Sticky(); ok {
			sticky = true
			successfulOnly = successfulOnly || p.SuccessfulOnly
		}
	}
	if !sticky {
		return nil, nil
	}

	var history []*param.RunRecord
	for offset := 0; ; offset += s.lookback {
		page, total, err := s.history.History(ctx, job.Name, s.lookback, offset)
		if err != nil {
			return nil, err
		}
		found := false
		for _, rec := range page {
			if rec.WasSuccessful() {
				found = true
			} else if offset > 0 {
				continue
			}
			history = append(history, rec)
		}
		if !successfulOnly || found || len(page) == 0 || offset+len(page) >= total {
			return history, nil
		}
	}
}

// Trigger starts a run of the job. Submitted values are coerced by their
// definitions; every other parameter takes its resolved default.
func (s *ParameterService) Trigger(ctx context.Context, jobName string, in ports.TriggerInput) (*param.RunRecord, error) {
	job, err := s.jobs.Get(ctx, jobName)
	if err != nil {
		return nil, err
	}

	submitted := make(map[string]param.Value, len(in.Raw)+len(in.Bound))
	for name, raw := range in.Raw {
		d, ok := job.Parameter(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s in job %s", ErrUnknownParameter, name, jobName)
		}
		submitted[name] = d.CreateValue(raw)
	}
	for _, data := range in.Bound {
		name, err := param.BoundName(data)
		if err != nil {
			return nil, err
		}
		d, ok := job.Parameter(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s in job %s", ErrUnknownParameter, name, jobName)
		}
		v, err := d.BindValue(data)
		if err != nil {
			return nil, err
		}
		submitted[name] = v
	}

	defaults, err := s.resolve(ctx, job)
	if err != nil {
		return nil, err
	}

	values := make(map[string]param.Value, len(defaults.Parameters))
	for _, r := range defaults.Parameters {
		if v, ok := submitted[r.Definition.Name]; ok {
			values[r.Definition.Name] = v
			continue
		}
		values[r.Definition.Name] = r.Value
	}

	trigger := in.Type
	if trigger == "" {
		trigger = param.TriggerManual
	}
	return s.history.StartRun(ctx, jobName, trigger, in.Ref, values)
}
