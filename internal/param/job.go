package param

import (
	"fmt"
	"time"
)

// Job is a reusable pipeline configuration and its parameter set.
type Job struct {
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Parameters  []Definition `json:"parameters" yaml:"parameters"`
	CreatedAt   time.Time    `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time    `json:"updated_at" yaml:"-"`
}

// Normalize validates the job and normalizes each parameter definition in
// place. Parameter names must be unique within the job.
func (j *Job) Normalize() error {
	if j.Name == "" {
		return fmt.Errorf("%w: job name is required", ErrInvalidDefinition)
	}
	seen := make(map[string]bool, len(j.Parameters))
	for i, d := range j.Parameters {
		nd, err := d.Normalize()
		if err != nil {
			return fmt.Errorf("job %s: %w", j.Name, err)
		}
		if seen[nd.Name] {
			return fmt.Errorf("%w: job %s: duplicate parameter %q", ErrInvalidDefinition, j.Name, nd.Name)
		}
		seen[nd.Name] = true
		j.Parameters[i] = nd
	}
	return nil
}

// Parameter returns the definition named name.
func (j *Job) Parameter(name string) (Definition, bool) {
	for _, d := range j.Parameters {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

// Schedule triggers a job on a cron expression. Parameters are raw
// overrides; every other parameter takes its resolved default.
type Schedule struct {
	ID         string            `json:"id"`
	JobName    string            `json:"job_name"`
	CronExpr   string            `json:"cron_expr"`
	Timezone   string            `json:"timezone"`
	Parameters map[string]string `json:"parameters,omitempty"`
	Enabled    bool              `json:"enabled"`
	NextRunAt  time.Time         `json:"next_run_at"`
	LastRunAt  *time.Time        `json:"last_run_at,omitempty"`
	LastRunID  string            `json:"last_run_id,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}
