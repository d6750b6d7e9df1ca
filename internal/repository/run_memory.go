package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/soochol/stickyparam/internal/param"
)

const maxRunsPerJob = 1000

// MemoryRunRepository stores run records in memory with per-job FIFO
// eviction, so one busy job never pushes out another job's history.
// Sequence counters survive eviction so numbering never goes backwards.
type MemoryRunRepository struct {
	mu      sync.RWMutex
	records map[string]*param.RunRecord
	order   map[string][]string // job name → run IDs in insertion order
	seq     map[string]int64
}

func NewMemoryRunRepository() *MemoryRunRepository {
	return &MemoryRunRepository{
		records: make(map[string]*param.RunRecord),
		order:   make(map[string][]string),
		seq:     make(map[string]int64),
	}
}

func (r *MemoryRunRepository) Create(_ context.Context, record *param.RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[record.ID]; ok {
		return fmt.Errorf("%w: run %s", ErrExists, record.ID)
	}

	if record.Sequence == 0 {
		record.Sequence = r.seq[record.JobName] + 1
	}
	if record.Sequence > r.seq[record.JobName] {
		r.seq[record.JobName] = record.Sequence
	}

	// FIFO eviction when the job is at capacity.
	ids := r.order[record.JobName]
	if len(ids) >= maxRunsPerJob {
		delete(r.records, ids[0])
		ids = ids[1:]
	}

	r.records[record.ID] = record.Clone()
	r.order[record.JobName] = append(ids, record.ID)
	return nil
}

func (r *MemoryRunRepository) Get(_ context.Context, id string) (*param.RunRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: run %s", ErrNotFound, id)
	}
	return rec.Clone(), nil
}

func (r *MemoryRunRepository) Update(_ context.Context, record *param.RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[record.ID]; !ok {
		return fmt.Errorf("%w: run %s", ErrNotFound, record.ID)
	}
	r.records[record.ID] = record.Clone()
	return nil
}

func (r *MemoryRunRepository) ListByJob(_ context.Context, jobName string, limit, offset int) ([]*param.RunRecord, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var filtered []*param.RunRecord
	for _, rec := range r.records {
		if rec.JobName == jobName {
			filtered = append(filtered, rec)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Sequence > filtered[j].Sequence
	})

	return cloneAll(paginate(filtered, limit, offset)), len(filtered), nil
}

func (r *MemoryRunRepository) ListAll(_ context.Context, limit, offset int, status string) ([]*param.RunRecord, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*param.RunRecord, 0, len(r.records))
	for _, rec := range r.records {
		if status == "" || string(rec.Status) == status {
			all = append(all, rec)
		}
	}

	// Sort by created_at descending.
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	return cloneAll(paginate(all, limit, offset)), len(all), nil
}

// MarkOrphanedRunsFailed fails every run still marked running.
func (r *MemoryRunRepository) MarkOrphanedRunsFailed(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg := "orphaned: server restarted during execution"
	now := time.Now()
	var n int64
	for _, rec := range r.records {
		if rec.Status == param.RunStatusRunning {
			rec.Status = param.RunStatusFailed
			e := msg
			rec.Error = &e
			completed := now
			rec.CompletedAt = &completed
			n++
		}
	}
	return n, nil
}

func cloneAll(recs []*param.RunRecord) []*param.RunRecord {
	if recs == nil {
		return nil
	}
	out := make([]*param.RunRecord, len(recs))
	for i, rec := range recs {
		out[i] = rec.Clone()
	}
	return out
}
