package repository

import (
	"context"
	"log/slog"

	"github.com/soochol/stickyparam/internal/param"
)

// RunDB defines the DB-layer methods needed by the persistent run repo.
type RunDB interface {
	CreateRun(ctx context.Context, r *param.RunRecord) error
	GetRun(ctx context.Context, id string) (*param.RunRecord, error)
	UpdateRun(ctx context.Context, r *param.RunRecord) error
	ListRunsByJob(ctx context.Context, jobName string, limit, offset int) ([]*param.RunRecord, int, error)
	ListAllRuns(ctx context.Context, limit, offset int, status string) ([]*param.RunRecord, int, error)
	MarkOrphanedRunsFailed(ctx context.Context) (int64, error)
}

// PersistentRunRepository wraps a MemoryRunRepository with a PostgreSQL backend.
// Writes go to both stores (DB failure is logged but non-fatal).
// Reads try memory first, falling back to the database. The database
// assigns sequence numbers when it is reachable.
type PersistentRunRepository struct {
	mem *MemoryRunRepository
	db  RunDB
}

func NewPersistentRunRepository(mem *MemoryRunRepository, db RunDB) *PersistentRunRepository {
	return &PersistentRunRepository{mem: mem, db: db}
}

func (r *PersistentRunRepository) Create(ctx context.Context, record *param.RunRecord) error {
	if err := r.db.CreateRun(ctx, record); err != nil {
		slog.Warn("db create run failed, in-memory only", "run", record.ID, "err", err)
	}
	return r.mem.Create(ctx, record)
}

func (r *PersistentRunRepository) Get(ctx context.Context, id string) (*param.RunRecord, error) {
	rec, err := r.mem.Get(ctx, id)
	if err == nil {
		return rec, nil
	}

	dbRec, dbErr := r.db.GetRun(ctx, id)
	if dbErr != nil {
		return nil, err // return original ErrNotFound
	}

	_ = r.mem.Create(ctx, dbRec)
	return dbRec, nil
}

func (r *PersistentRunRepository) Update(ctx context.Context, record *param.RunRecord) error {
	memErr := r.mem.Update(ctx, record)
	if err := r.db.UpdateRun(ctx, record); err != nil {
		slog.Warn("db update run failed, in-memory only", "run", record.ID, "err", err)
		return memErr
	}
	if memErr != nil {
		_ = r.mem.Create(ctx, record)
	}
	return nil
}

func (r *PersistentRunRepository) ListByJob(ctx context.Context, jobName string, limit, offset int) ([]*param.RunRecord, int, error) {
	runs, total, err := r.db.ListRunsByJob(ctx, jobName, limit, offset)
	if err == nil {
		return runs, total, nil
	}
	slog.Warn("db list runs failed, falling back to in-memory", "job", jobName, "err", err)
	return r.mem.ListByJob(ctx, jobName, limit, offset)
}

func (r *PersistentRunRepository) ListAll(ctx context.Context, limit, offset int, status string) ([]*param.RunRecord, int, error) {
	runs, total, err := r.db.ListAllRuns(ctx, limit, offset, status)
	if err == nil {
		return runs, total, nil
	}
	slog.Warn("db list all runs failed, falling back to in-memory", "err", err)
	return r.mem.ListAll(ctx, limit, offset, status)
}

func (r *PersistentRunRepository) MarkOrphanedRunsFailed(ctx context.Context) (int64, error) {
	_, _ = r.mem.MarkOrphanedRunsFailed(ctx)
	return r.db.MarkOrphanedRunsFailed(ctx)
}
