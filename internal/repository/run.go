package repository

import (
	"context"

	"github.com/soochol/stickyparam/internal/param"
)

// RunRepository abstracts persistence for job run records.
// Implementations hand out copies: mutating a returned record never
// changes stored history.
type RunRepository interface {
	// Create stores a new record. A zero Sequence is replaced with the
	// next sequence number for the record's job.
	Create(ctx context.Context, record *param.RunRecord) error
	Get(ctx context.Context, id string) (*param.RunRecord, error)
	Update(ctx context.Context, record *param.RunRecord) error
	// ListByJob returns a job's runs ordered by sequence, newest first.
	ListByJob(ctx context.Context, jobName string, limit, offset int) ([]*param.RunRecord, int, error)
	// ListAll returns all runs. status filters by run status when non-empty ("" = all).
	ListAll(ctx context.Context, limit, offset int, status string) ([]*param.RunRecord, int, error)
}

func paginate(all []*param.RunRecord, limit, offset int) []*param.RunRecord {
	total := len(all)
	if offset >= total {
		return nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return all[offset:end]
}
