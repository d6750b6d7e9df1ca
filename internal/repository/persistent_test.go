package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/soochol/stickyparam/internal/param"
	"github.com/soochol/stickyparam/internal/repository"
)

var errFake = errors.New("fake db error")

// stubDB is a fake DB that records calls and returns canned data.
type stubDB struct {
	jobs      map[string]*param.Job
	runs      []*param.RunRecord
	seq       int64
	schedules []*param.Schedule
	writeErr  error
	listErr   error
}

func newStubDB() *stubDB { return &stubDB{jobs: map[string]*param.Job{}} }

func (s *stubDB) CreateJob(_ context.Context, j *param.Job) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.jobs[j.Name] = j
	return nil
}
func (s *stubDB) GetJob(_ context.Context, name string) (*param.Job, error) {
	if j, ok := s.jobs[name]; ok {
		return j, nil
	}
	return nil, fmt.Errorf("job %s: %w", name, sql.ErrNoRows)
}
func (s *stubDB) ListJobs(_ context.Context) ([]*param.Job, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []*param.Job
	for _, j := range s.jobs {
		out = append(out, j)
	}
	return out, nil
}
func (s *stubDB) UpdateJob(_ context.Context, j *param.Job) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	if _, ok := s.jobs[j.Name]; !ok {
		return fmt.Errorf("update job %s: %w", j.Name, sql.ErrNoRows)
	}
	s.jobs[j.Name] = j
	return nil
}

func (s *stubDB) DeleteJob(_ context.Context, name string) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	if _, ok := s.jobs[name]; !ok {
		return fmt.Errorf("delete job %s: %w", name, sql.ErrNoRows)
	}
	delete(s.jobs, name)
	return nil
}

func (s *stubDB) CreateRun(_ context.Context, r *param.RunRecord) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.seq += 10
	r.Sequence = s.seq
	s.runs = append(s.runs, r)
	return nil
}
func (s *stubDB) GetRun(_ context.Context, id string) (*param.RunRecord, error) {
	for _, r := range s.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, sql.ErrNoRows
}
func (s *stubDB) UpdateRun(_ context.Context, _ *param.RunRecord) error { return s.writeErr }
func (s *stubDB) ListRunsByJob(_ context.Context, job string, _, _ int) ([]*param.RunRecord, int, error) {
	if s.listErr != nil {
		return nil, 0, s.listErr
	}
	var out []*param.RunRecord
	for _, r := range s.runs {
		if r.JobName == job {
			out = append(out, r)
		}
	}
	return out, len(out), nil
}
func (s *stubDB) ListAllRuns(_ context.Context, _, _ int, _ string) ([]*param.RunRecord, int, error) {
	if s.listErr != nil {
		return nil, 0, s.listErr
	}
	return s.runs, len(s.runs), nil
}
func (s *stubDB) MarkOrphanedRunsFailed(_ context.Context) (int64, error) { return 0, nil }

func (s *stubDB) CreateSchedule(_ context.Context, sc *param.Schedule) error {
	s.schedules = append(s.schedules, sc)
	return s.writeErr
}
func (s *stubDB) GetSchedule(_ context.Context, id string) (*param.Schedule, error) {
	for _, sc := range s.schedules {
		if sc.ID == id {
			return sc, nil
		}
	}
	return nil, sql.ErrNoRows
}
func (s *stubDB) UpdateSchedule(_ context.Context, _ *param.Schedule) error { return s.writeErr }
func (s *stubDB) DeleteSchedule(_ context.Context, _ string) error          { return s.writeErr }
func (s *stubDB) ListSchedules(_ context.Context) ([]*param.Schedule, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.schedules, nil
}

func newTestJob(name string) *param.Job {
	return &param.Job{
		Name: name,
		Parameters: []param.Definition{
			{Kind: param.KindPersistentBoolean, Name: "DEPLOY", Default: false},
		},
		CreatedAt: time.Now(),
	}
}

func TestPersistentJobRepository_CreateAndGet(t *testing.T) {
	stub := newStubDB()
	repo := repository.NewPersistentJobRepository(repository.NewMemoryJobRepository(), stub)
	ctx := context.Background()

	if err := repo.Create(ctx, newTestJob("build")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(stub.jobs) != 1 {
		t.Errorf("expected 1 job in DB stub, got %d", len(stub.jobs))
	}
	if err := repo.Create(ctx, newTestJob("build")); !errors.Is(err, repository.ErrExists) {
		t.Errorf("duplicate Create error = %v, want ErrExists", err)
	}

	got, err := repo.Get(ctx, "build")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.Parameters) != 1 {
		t.Errorf("expected 1 parameter, got %d", len(got.Parameters))
	}
}

func TestPersistentJobRepository_DeleteMissing(t *testing.T) {
	ctx := context.Background()
	db := newStubDB()
	repo := repository.NewPersistentJobRepository(repository.NewMemoryJobRepository(), db)

	if err := repo.Delete(ctx, "ghost"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("Delete(ghost) err = %v, want ErrNotFound", err)
	}

	if err := repo.Create(ctx, &param.Job{Name: "build"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Delete(ctx, "build"); err != nil {
		t.Fatalf("Delete(build): %v", err)
	}
	if err := repo.Delete(ctx, "build"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("second Delete(build) err = %v, want ErrNotFound", err)
	}
	if err := repo.Update(ctx, &param.Job{Name: "build"}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("Update(build) after delete err = %v, want ErrNotFound", err)
	}
}

func TestPersistentJobRepository_CreateSurfacesDBError(t *testing.T) {
	stub := newStubDB()
	stub.writeErr = errFake
	mem := repository.NewMemoryJobRepository()
	repo := repository.NewPersistentJobRepository(mem, stub)

	if err := repo.Create(context.Background(), newTestJob("build")); !errors.Is(err, errFake) {
		t.Fatalf("Create error = %v, want errFake", err)
	}
	if _, err := mem.Get(context.Background(), "build"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("job cached in memory despite DB failure")
	}
}

func TestPersistentJobRepository_GetFallsBackToDb(t *testing.T) {
	stub := newStubDB()
	stub.jobs["from-db"] = newTestJob("from-db")
	repo := repository.NewPersistentJobRepository(repository.NewMemoryJobRepository(), stub)

	got, err := repo.Get(context.Background(), "from-db")
	if err != nil {
		t.Fatalf("Get fallback failed: %v", err)
	}
	if got.Name != "from-db" {
		t.Errorf("expected from-db, got %s", got.Name)
	}

	if _, err := repo.Get(context.Background(), "ghost"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Get(ghost) error = %v, want ErrNotFound", err)
	}
}

func TestPersistentJobRepository_ListFallsBackToMemory(t *testing.T) {
	mem := repository.NewMemoryJobRepository()
	_ = mem.Create(context.Background(), newTestJob("mem-only"))
	stub := newStubDB()
	stub.listErr = errFake
	repo := repository.NewPersistentJobRepository(mem, stub)

	list, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List memory fallback failed: %v", err)
	}
	if len(list) != 1 || list[0].Name != "mem-only" {
		t.Errorf("expected memory fallback with mem-only, got %v", list)
	}
}

func TestPersistentRunRepository_DBAssignsSequence(t *testing.T) {
	stub := newStubDB()
	repo := repository.NewPersistentRunRepository(repository.NewMemoryRunRepository(), stub)
	ctx := context.Background()

	r := &param.RunRecord{ID: "run-1", JobName: "build", Status: param.RunStatusRunning}
	if err := repo.Create(ctx, r); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if r.Sequence != 10 {
		t.Errorf("Sequence = %d, want 10 from DB", r.Sequence)
	}

	got, err := repo.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Sequence != 10 {
		t.Errorf("cached Sequence = %d, want 10", got.Sequence)
	}
}

func TestPersistentRunRepository_DBFailureIsNonFatal(t *testing.T) {
	stub := newStubDB()
	stub.writeErr = errFake
	stub.listErr = errFake
	repo := repository.NewPersistentRunRepository(repository.NewMemoryRunRepository(), stub)
	ctx := context.Background()

	r := &param.RunRecord{ID: "run-1", JobName: "build", Status: param.RunStatusRunning}
	if err := repo.Create(ctx, r); err != nil {
		t.Fatalf("Create should not fail on DB error: %v", err)
	}
	if r.Sequence != 1 {
		t.Errorf("Sequence = %d, want 1 from memory", r.Sequence)
	}

	r.Status = param.RunStatusSuccess
	if err := repo.Update(ctx, r); err != nil {
		t.Fatalf("Update should not fail on DB error: %v", err)
	}

	runs, total, err := repo.ListByJob(ctx, "build", 10, 0)
	if err != nil {
		t.Fatalf("ListByJob fallback failed: %v", err)
	}
	if total != 1 || runs[0].Status != param.RunStatusSuccess {
		t.Errorf("expected one successful run from memory, got %d", total)
	}
}

func TestPersistentScheduleRepository_GetFallsBackToDb(t *testing.T) {
	stub := newStubDB()
	stub.schedules = []*param.Schedule{{ID: "sched-1", JobName: "build"}}
	repo := repository.NewPersistentScheduleRepository(repository.NewMemoryScheduleRepository(), stub)

	got, err := repo.Get(context.Background(), "sched-1")
	if err != nil {
		t.Fatalf("Get fallback failed: %v", err)
	}
	if got.JobName != "build" {
		t.Errorf("JobName = %q, want build", got.JobName)
	}

	byJob, err := repo.ListByJob(context.Background(), "build")
	if err != nil || len(byJob) != 1 {
		t.Errorf("ListByJob = %v, %v; want one schedule", byJob, err)
	}
}
