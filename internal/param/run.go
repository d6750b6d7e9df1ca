package param

import (
	"maps"
	"time"
)

// RunStatus represents the lifecycle state of a job run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSuccess   RunStatus = "success"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// TriggerType identifies how a run was initiated.
type TriggerType string

const (
	TriggerManual TriggerType = "manual"
	TriggerCron   TriggerType = "cron"
	TriggerAPI    TriggerType = "api"
)

// RunRecord is one executed instance of a job together with the parameter
// values it ran with. Sequence is assigned per job and grows with recency.
type RunRecord struct {
	ID          string           `json:"id"`
	JobName     string           `json:"job_name"`
	Sequence    int64            `json:"sequence"`
	Status      RunStatus        `json:"status"`
	Parameters  map[string]Value `json:"parameters"`
	TriggerType TriggerType      `json:"trigger_type"`
	TriggerRef  string           `json:"trigger_ref,omitempty"`
	Error       *string          `json:"error,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	StartedAt   *time.Time       `json:"started_at,omitempty"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

func (r *RunRecord) WasSuccessful() bool {
	return r.Status == RunStatusSuccess
}

// Finished reports whether the run reached a terminal status.
func (r *RunRecord) Finished() bool {
	switch r.Status {
	case RunStatusSuccess, RunStatusFailed, RunStatusCancelled:
		return true
	}
	return false
}

// Clone returns a copy that shares no mutable state with r.
func (r *RunRecord) Clone() *RunRecord {
	c := *r
	c.Parameters = maps.Clone(r.Parameters)
	if r.Error != nil {
		e := *r.Error
		c.Error = &e
	}
	if r.StartedAt != nil {
		t := *r.StartedAt
		c.StartedAt = &t
	}
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
