package ports

import (
	"context"

	"github.com/soochol/stickyparam/internal/param"
)

// RunHistoryPort is the interface for recording and querying job run history.
// Services should depend on this interface rather than *RunHistoryService directly.
type RunHistoryPort interface {
	StartRun(ctx context.Context, jobName string, trigger param.TriggerType, triggerRef string, values map[string]param.Value) (*param.RunRecord, error)
	CompleteRun(ctx context.Context, id string) error
	FailRun(ctx context.Context, id string, errMsg string) error
	CancelRun(ctx context.Context, id string) error
	GetRun(ctx context.Context, id string) (*param.RunRecord, error)
	ListRuns(ctx context.Context, jobName string, limit, offset int) ([]*param.RunRecord, int, error)
	ListAllRuns(ctx context.Context, limit, offset int, status string) ([]*param.RunRecord, int, error)
	// History returns a page of the job's runs, newest first, as copies the
	// caller may keep, along with the job's total run count.
	History(ctx context.Context, jobName string, limit, offset int) ([]*param.RunRecord, int, error)
}
