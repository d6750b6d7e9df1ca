package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/soochol/stickyparam/internal/config"
	"github.com/soochol/stickyparam/internal/db"
	"github.com/soochol/stickyparam/internal/repository"
	"github.com/soochol/stickyparam/internal/services"
)

type app struct {
	database  *db.DB
	jobs      *services.JobService
	runs      *services.RunHistoryService
	params    *services.ParameterService
	scheduler *services.SchedulerService
}

// wireApp builds the service graph. With a database URL the repositories
// write through to PostgreSQL; otherwise everything lives in memory.
func wireApp(ctx context.Context, cfg *config.Config) (*app, error) {
	var (
		jobRepo      repository.JobRepository      = repository.NewMemoryJobRepository()
		runRepo      repository.RunRepository      = repository.NewMemoryRunRepository()
		scheduleRepo repository.ScheduleRepository = repository.NewMemoryScheduleRepository()
		database     *db.DB
	)

	if cfg.Database.URL != "" {
		var err error
		database, err = db.New(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return nil, err
		}
		jobRepo = repository.NewPersistentJobRepository(repository.NewMemoryJobRepository(), database)
		runRepo = repository.NewPersistentRunRepository(repository.NewMemoryRunRepository(), database)
		scheduleRepo = repository.NewPersistentScheduleRepository(repository.NewMemoryScheduleRepository(), database)
		slog.Info("using PostgreSQL storage")
	} else {
		slog.Info("using in-memory storage")
	}

	a := &app{database: database}
	a.jobs = services.NewJobService(jobRepo)
	a.runs = services.NewRunHistoryService(runRepo)
	a.params = services.NewParameterService(a.jobs, a.runs, cfg.History.Lookback)
	a.scheduler = services.NewSchedulerService(scheduleRepo, a.jobs, a.params)

	if err := a.jobs.Seed(ctx, cfg.Jobs); err != nil {
		a.Close()
		return nil, fmt.Errorf("seed jobs: %w", err)
	}
	return a, nil
}

func (a *app) Close() {
	if a.database != nil {
		if err := a.database.Close(); err != nil {
			slog.Warn("closing database", "err", err)
		}
	}
}
