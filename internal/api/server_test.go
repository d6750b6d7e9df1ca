package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/soochol/stickyparam/internal/param"
	"github.com/soochol/stickyparam/internal/repository"
	"github.com/soochol/stickyparam/internal/services"
)

// newTestServer creates a Server wired with all services backed by
// in-memory stores and one seeded job "build".
func newTestServer(t *testing.T) *Server {
	t.Helper()
	jobSvc := services.NewJobService(repository.NewMemoryJobRepository())
	runHistorySvc := services.NewRunHistoryService(repository.NewMemoryRunRepository())
	paramSvc := services.NewParameterService(jobSvc, runHistorySvc, 0)
	schedulerSvc := services.NewSchedulerService(repository.NewMemoryScheduleRepository(), jobSvc, paramSvc)
	t.Cleanup(schedulerSvc.Stop)

	err := jobSvc.Create(context.Background(), &param.Job{
		Name: "build",
		Parameters: []param.Definition{
			{Kind: param.KindPersistentBoolean, Name: "DEPLOY", Default: true},
			{Kind: param.KindString, Name: "TARGET", Default: "staging"},
		},
	})
	if err != nil {
		t.Fatalf("seed job: %v", err)
	}

	srv := NewServer(jobSvc, paramSvc, runHistorySvc)
	srv.SetSchedulerService(schedulerSvc)
	return srv
}

func doRequest(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, w.Body.String())
	}
	return v
}

func TestListParameterKinds(t *testing.T) {
	srv := newTestServer(t)

	w := doRequest(t, srv, "GET", "/api/parameter-kinds", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	kinds := decode[[]param.KindInfo](t, w)
	if len(kinds) != 3 {
		t.Fatalf("expected 3 kinds, got %d", len(kinds))
	}
	if kinds[0].DisplayName != "Persistent Boolean Parameter" {
		t.Fatalf("unexpected first kind: %+v", kinds[0])
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("OPTIONS", "/api/jobs", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Fatal("expected Access-Control-Allow-Origin header")
	}
}
