package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soochol/stickyparam/internal/param"
	"github.com/soochol/stickyparam/internal/repository"
)

type fixture struct {
	jobs    *JobService
	runs    *RunHistoryService
	params  *ParameterService
	runRepo *repository.MemoryRunRepository
}

func newFixture(t *testing.T, jobs ...param.Job) *fixture {
	t.Helper()
	runRepo := repository.NewMemoryRunRepository()
	f := &fixture{
		jobs:    NewJobService(repository.NewMemoryJobRepository()),
		runs:    NewRunHistoryService(runRepo),
		runRepo: runRepo,
	}
	f.params = NewParameterService(f.jobs, f.runs, 0)
	require.NoError(t, f.jobs.Seed(context.Background(), jobs))
	return f
}

func deployJob(successfulOnly bool) param.Job {
	return param.Job{
		Name: "build",
		Parameters: []param.Definition{
			{Kind: param.KindPersistentBoolean, Name: "DEPLOY", Default: true, SuccessfulOnly: successfulOnly, Description: "deploy after build"},
			{Kind: param.KindString, Name: "TARGET", Default: "staging"},
		},
	}
}
