package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/soochol/stickyparam/internal/param"
	"github.com/soochol/stickyparam/internal/param/ports"
)

// createJob stores a new job definition.
// POST /api/jobs
func (s *Server) createJob(w http.ResponseWriter, r *http.Request) {
	var job param.Job
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.jobSvc.Create(r.Context(), &job); err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(job)
}

// GET /api/jobs
func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.jobSvc.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if jobs == nil {
		jobs = []*param.Job{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(jobs)
}

// GET /api/jobs/{name}
func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobSvc.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job)
}

// updateJob replaces a job definition. The name in the body, if any, must
// match the path.
// PUT /api/jobs/{name}
func (s *Server) updateJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var job param.Job
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.jobSvc.Update(r.Context(), name, &job); err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job)
}

// DELETE /api/jobs/{name}
func (s *Server) deleteJob(w http.ResponseWriter, r *http.Request) {
	if err := s.jobSvc.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getJobParameters returns every parameter of a job with the default a new
// run would receive.
// GET /api/jobs/{name}/parameters
func (s *Server) getJobParameters(w http.ResponseWriter, r *http.Request) {
	defaults, err := s.paramSvc.Defaults(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(defaults)
}

// pinParameterDefault replaces a parameter's static default. The body is a
// form entry: {"value": true}.
// PUT /api/jobs/{name}/parameters/{param}/default
func (s *Server) pinParameterDefault(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	paramName := chi.URLParam(r, "param")

	job, err := s.jobSvc.Get(r.Context(), name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	def, ok := job.Parameter(paramName)
	if !ok {
		http.Error(w, "parameter not found", http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	value, err := def.BindValue(body)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	updated, err := s.jobSvc.PinDefault(r.Context(), name, paramName, value)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

type buildRequest struct {
	// Parameters holds raw form strings keyed by parameter name.
	Parameters map[string]string `json:"parameters"`
	// Values holds typed form entries of the shape {"name": ..., "value": ...}.
	Values []json.RawMessage `json:"values"`
	Ref    string            `json:"ref"`
}

// buildJob starts a run. Parameters left out of the request take their
// resolved defaults.
// POST /api/jobs/{name}/build
func (s *Server) buildJob(w http.ResponseWriter, r *http.Request) {
	var req buildRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	bound := make([][]byte, len(req.Values))
	for i, v := range req.Values {
		bound[i] = v
	}

	run, err := s.paramSvc.Trigger(r.Context(), chi.URLParam(r, "name"), ports.TriggerInput{
		Raw:   req.Parameters,
		Bound: bound,
		Type:  param.TriggerAPI,
		Ref:   req.Ref,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(run)
}
