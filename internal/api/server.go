package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/soochol/stickyparam/internal/param"
	"github.com/soochol/stickyparam/internal/repository"
	"github.com/soochol/stickyparam/internal/services"
)

type Server struct {
	jobSvc        *services.JobService
	paramSvc      *services.ParameterService
	runHistorySvc *services.RunHistoryService
	schedulerSvc  *services.SchedulerService
	jwtSecret     []byte
}

func NewServer(jobSvc *services.JobService, paramSvc *services.ParameterService, runHistorySvc *services.RunHistoryService) *Server {
	return &Server{
		jobSvc:        jobSvc,
		paramSvc:      paramSvc,
		runHistorySvc: runHistorySvc,
	}
}

// SetSchedulerService configures the scheduler service.
func (s *Server) SetSchedulerService(svc *services.SchedulerService) {
	s.schedulerSvc = svc
}

// SetJWTSecret requires an HS256 bearer token on every /api route.
func (s *Server) SetJWTSecret(secret string) {
	s.jwtSecret = []byte(secret)
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Route("/api", func(r chi.Router) {
		if len(s.jwtSecret) > 0 {
			r.Use(requireBearer(s.jwtSecret))
		}
		r.Route("/jobs", func(r chi.Router) {
			r.Post("/", s.createJob)
			r.Get("/", s.listJobs)
			r.Get("/{name}", s.getJob)
			r.Put("/{name}", s.updateJob)
			r.Delete("/{name}", s.deleteJob)
			r.Get("/{name}/parameters", s.getJobParameters)
			r.Put("/{name}/parameters/{param}/default", s.pinParameterDefault)
			r.Post("/{name}/build", s.buildJob)
			r.Get("/{name}/runs", s.listJobRuns)
		})
		r.Route("/runs", func(r chi.Router) {
			r.Get("/", s.listRuns)
			r.Get("/{id}", s.getRun)
			r.Post("/{id}/complete", s.completeRun)
			r.Post("/{id}/fail", s.failRun)
			r.Post("/{id}/cancel", s.cancelRun)
		})
		r.Route("/schedules", func(r chi.Router) {
			r.Post("/", s.createSchedule)
			r.Get("/", s.listSchedules)
			r.Get("/{id}", s.getSchedule)
			r.Put("/{id}", s.updateSchedule)
			r.Delete("/{id}", s.deleteSchedule)
			r.Post("/{id}/pause", s.pauseSchedule)
			r.Post("/{id}/resume", s.resumeSchedule)
			r.Post("/{id}/trigger", s.triggerSchedule)
		})
		r.Get("/parameter-kinds", s.listParameterKinds)
	})

	return r
}

// listParameterKinds returns the parameter kinds a job definition may use.
// GET /api/parameter-kinds
func (s *Server) listParameterKinds(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(param.Kinds())
}

// writeServiceError maps service errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, repository.ErrExists), errors.Is(err, services.ErrRunFinished):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, param.ErrInvalidDefinition):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
