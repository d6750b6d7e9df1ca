package ports

import (
	"context"

	"github.com/soochol/stickyparam/internal/param"
)

// TriggerInput carries the user-supplied side of a new run. Raw holds form
// strings keyed by parameter name; Bound holds JSON form entries of the
// shape {"name": ..., "value": ...}. Parameters absent from both take their
// resolved default.
type TriggerInput struct {
	Raw   map[string]string
	Bound [][]byte
	Type  param.TriggerType
	Ref   string
}

// Triggerer starts runs seeded with resolved parameter defaults.
type Triggerer interface {
	Trigger(ctx context.Context, jobName string, in TriggerInput) (*param.RunRecord, error)
}
