package adminhandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ems/internal/auth"
	"ems/internal/platform/jobs"
	"ems/internal/transport/http/middleware"
)

func newRouter(role string, save jobs.Func) (http.Handler, *jobs.Service) {
	svc := jobs.New()
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := middleware.WithUser(req.Context(), auth.UserContext{Email: "root@example.com", RoleName: role})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	NewHandler(svc, save).RegisterRoutes(r)
	return r, svc
}

func do(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestSaveRecordsRun(t *testing.T) {
	saves := 0
	h, svc := newRouter(auth.RoleAdmin, func(context.Context) (any, error) {
		saves++
		return map[string]int{"employees": 2}, nil
	})

	rec := do(h, http.MethodPost, "/admin/save")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, saves)
	assert.JSONEq(t, `{"employees":2}`, string(mustData(t, rec)))

	runs := svc.Runs(0)
	require.Len(t, runs, 1)
	assert.Equal(t, jobs.JobSave, runs[0].Type)
	assert.Equal(t, jobs.StatusCompleted, runs[0].Status)
}

func TestSaveFailure(t *testing.T) {
	h, svc := newRouter(auth.RoleAdmin, func(context.Context) (any, error) {
		return nil, errors.New("read-only file system")
	})

	rec := do(h, http.MethodPost, "/admin/save")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, jobs.StatusFailed, svc.Runs(1)[0].Status)
}

func TestListAndExportRuns(t *testing.T) {
	h, svc := newRouter(auth.RoleAdmin, nil)
	noop := func(context.Context) (any, error) { return nil, nil }
	_, _ = svc.RunNow(context.Background(), jobs.JobAutosave, noop)
	_, _ = svc.RunNow(context.Background(), jobs.JobPayroll, noop)
	_, _ = svc.RunNow(context.Background(), jobs.JobAutosave, noop)

	rec := do(h, http.MethodGet, "/admin/jobs?jobType=autosave")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-Total-Count"))
	var runs []jobs.Run
	require.NoError(t, json.Unmarshal(mustData(t, rec), &runs))
	assert.Len(t, runs, 2)

	rec = do(h, http.MethodGet, "/admin/jobs?limit=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Total-Count"))

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, "/admin/jobs?limit=-3").Code)

	rec = do(h, http.MethodGet, "/admin/jobs/export")
	require.Equal(t, http.StatusOK, rec.Code)
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "id,job_type,status,error,started_at,completed_at", lines[0])
}

func TestManagerCannotAdminister(t *testing.T) {
	h, _ := newRouter(auth.RoleManager, nil)
	assert.Equal(t, http.StatusForbidden, do(h, http.MethodPost, "/admin/save").Code)
	assert.Equal(t, http.StatusForbidden, do(h, http.MethodGet, "/admin/jobs").Code)
}

func mustData(t *testing.T, rec *httptest.ResponseRecorder) json.RawMessage {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Data
}
