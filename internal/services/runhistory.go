package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/soochol/stickyparam/internal/param"
	"github.com/soochol/stickyparam/internal/param/ports"
	"github.com/soochol/stickyparam/internal/repository"
)

// ErrRunFinished is returned when finishing a run that already finished.
var ErrRunFinished = errors.New("run already finished")

var _ ports.RunHistoryPort = (*RunHistoryService)(nil)

// RunHistoryService manages job run records.
type RunHistoryService struct {
	runRepo repository.RunRepository
	now     func() time.Time
}

// NewRunHistoryService creates a RunHistoryService.
func NewRunHistoryService(runRepo repository.RunRepository) *RunHistoryService {
	return &RunHistoryService{runRepo: runRepo, now: time.Now}
}

// StartRun records a new running run with the effective parameter values.
func (s *RunHistoryService) StartRun(ctx context.Context, jobName string, trigger param.TriggerType, triggerRef string, values map[string]param.Value) (*param.RunRecord, error) {
	if jobName == "" {
		return nil, fmt.Errorf("%w: job name is required", param.ErrInvalidDefinition)
	}
	if values == nil {
		values = map[string]param.Value{}
	}

	now := s.now()
	record := &param.RunRecord{
		ID:          "run-" + uuid.NewString(),
		JobName:     jobName,
		Status:      param.RunStatusRunning,
		Parameters:  values,
		TriggerType: trigger,
		TriggerRef:  triggerRef,
		CreatedAt:   now,
		StartedAt:   &now,
	}

	if err := s.runRepo.Create(ctx, record); err != nil {
		return nil, err
	}
	slog.Info("run started", "run", record.ID, "job", jobName, "sequence", record.Sequence, "trigger", trigger)
	return record, nil
}

// CompleteRun marks a run as successful.
func (s *RunHistoryService) CompleteRun(ctx context.Context, id string) error {
	return s.finish(ctx, id, param.RunStatusSuccess, nil)
}

// FailRun marks a run as failed with an error message.
func (s *RunHistoryService) FailRun(ctx context.Context, id string, errMsg string) error {
	return s.finish(ctx, id, param.RunStatusFailed, &errMsg)
}

// CancelRun marks a run as cancelled.
func (s *RunHistoryService) CancelRun(ctx context.Context, id string) error {
	return s.finish(ctx, id, param.RunStatusCancelled, nil)
}

func (s *RunHistoryService) finish(ctx context.Context, id string, status param.RunStatus, errMsg *string) error {
	record, err := s.runRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if record.Finished() {
		return fmt.Errorf("%w: %s is %s", ErrRunFinished, id, record.Status)
	}

	now := s.now()
	record.Status = status
	record.Error = errMsg
	record.CompletedAt = &now
	if err := s.runRepo.Update(ctx, record); err != nil {
		return err
	}
	slog.Info("run finished", "run", id, "job", record.JobName, "status", status)
	return nil
}

// GetRun retrieves a single run record.
func (s *RunHistoryService) GetRun(ctx context.Context, id string) (*param.RunRecord, error) {
	return s.runRepo.Get(ctx, id)
}

// ListRuns returns runs for a specific job, newest first, with pagination.
func (s *RunHistoryService) ListRuns(ctx context.Context, jobName string, limit, offset int) ([]*param.RunRecord, int, error) {
	return s.runRepo.ListByJob(ctx, jobName, limit, offset)
}

// ListAllRuns returns all runs with pagination. status filters by run status when non-empty.
func (s *RunHistoryService) ListAllRuns(ctx context.Context, limit, offset int, status string) ([]*param.RunRecord, int, error) {
	return s.runRepo.ListAll(ctx, limit, offset, status)
}

// History returns a newest-first page of a job's runs and the job's total run count.
func (s *RunHistoryService) History(ctx context.Context, jobName string, limit, offset int) ([]*param.RunRecord, int, error) {
	runs, total, err := s.runRepo.ListByJob(ctx, jobName, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("load history of %s: %w", jobName, err)
	}
	return runs, total, nil
}

// CleanupOrphanedRuns marks all running runs as failed.
// Should be called once at server startup.
func (s *RunHistoryService) CleanupOrphanedRuns(ctx context.Context) {
	type orphanCleaner interface {
		MarkOrphanedRunsFailed(ctx context.Context) (int64, error)
	}
	if c, ok := s.runRepo.(orphanCleaner); ok {
		n, err := c.MarkOrphanedRunsFailed(ctx)
		if err != nil {
			slog.Warn("failed to clean up orphaned runs", "err", err)
			return
		}
		if n > 0 {
			slog.Info("marked orphaned runs as failed", "count", n)
		}
	}
}
