package corehandler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ems/internal/auth"
	"ems/internal/domain/ledger"
	"ems/internal/transport/http/middleware"
)

var fixedNow = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code   string `json:"code"`
		Fields []struct {
			Field  string `json:"field"`
			Reason string `json:"reason"`
		} `json:"fields"`
	} `json:"error"`
}

func newRouter(t *testing.T, role string) (http.Handler, *ledger.Store) {
	t.Helper()
	seq := 0
	store := ledger.NewStore(
		ledger.WithClock(func() time.Time { return fixedNow }),
		ledger.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%03d", seq)
		}),
	)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := middleware.WithUser(req.Context(), auth.UserContext{Email: "user@example.com", RoleName: role})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	NewHandler(store, &sync.Mutex{}).RegisterRoutes(r)
	return r, store
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func TestEmployeeLifecycle(t *testing.T) {
	h, _ := newRouter(t, auth.RoleManager)

	code, env := do(t, h, http.MethodPost, "/employees", `{"name":"Alice","department":"Engineering","basicSalary":60000}`)
	require.Equal(t, http.StatusCreated, code)
	var created ledger.Employee
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "id-001", created.ID)
	assert.Equal(t, ledger.RoleEmployee, created.Role)
	assert.True(t, created.Active)

	code, env = do(t, h, http.MethodPatch, "/employees/id-001", `{"department":"Research","active":false}`)
	require.Equal(t, http.StatusOK, code)
	var updated ledger.Employee
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Research", updated.Department)
	assert.False(t, updated.Active)

	code, _ = do(t, h, http.MethodPost, "/employees/id-001/notes", `{"note":"shipped the release"}`)
	assert.Equal(t, http.StatusCreated, code)

	code, env = do(t, h, http.MethodGet, "/employees?department=research", "")
	require.Equal(t, http.StatusOK, code)
	var listed []ledger.Employee
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed, 1)
	assert.Len(t, listed[0].ProgressNotes, 1)
}

func TestEmployeeErrors(t *testing.T) {
	h, _ := newRouter(t, auth.RoleManager)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantField  string
	}{
		{name: "missing name", method: http.MethodPost, path: "/employees", body: `{"basicSalary":100}`, wantStatus: http.StatusBadRequest, wantField: "name"},
		{name: "negative salary", method: http.MethodPost, path: "/employees", body: `{"name":"Bob","basicSalary":-1}`, wantStatus: http.StatusBadRequest, wantField: "basicSalary"},
		{name: "bad email", method: http.MethodPost, path: "/employees", body: `{"name":"Bob","email":"bob"}`, wantStatus: http.StatusBadRequest, wantField: "email"},
		{name: "unknown employee", method: http.MethodGet, path: "/employees/nope", wantStatus: http.StatusNotFound},
		{name: "patch unknown employee", method: http.MethodPatch, path: "/employees/nope", body: `{"name":"X"}`, wantStatus: http.StatusNotFound},
		{name: "blank note", method: http.MethodPost, path: "/employees/nope/notes", body: `{"note":""}`, wantStatus: http.StatusBadRequest, wantField: "note"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, env := do(t, h, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.wantStatus, code)
			assert.False(t, env.Success)
			if tc.wantField != "" {
				require.NotNil(t, env.Error)
				require.NotEmpty(t, env.Error.Fields)
				assert.Equal(t, tc.wantField, env.Error.Fields[0].Field)
			}
		})
	}
}

func TestViewerCannotWrite(t *testing.T) {
	h, _ := newRouter(t, auth.RoleViewer)

	code, _ := do(t, h, http.MethodPost, "/employees", `{"name":"Alice"}`)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = do(t, h, http.MethodGet, "/employees", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestCheckInAndOut(t *testing.T) {
	h, store := newRouter(t, auth.RoleManager)
	_, err := store.AddEmployee(ledger.NewEmployee{Name: "Alice"})
	require.NoError(t, err)

	code, _ := do(t, h, http.MethodPost, "/employees/id-001/check-in", `{"at":"09:00:00"}`)
	require.Equal(t, http.StatusOK, code)

	code, env := do(t, h, http.MethodPost, "/employees/id-001/check-out", `{"at":"17:30:00"}`)
	require.Equal(t, http.StatusOK, code)
	var rec ledger.AttendanceRecord
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	assert.Equal(t, 8.5, rec.Hours)

	code, _ = do(t, h, http.MethodPost, "/employees/id-001/check-in", `{"at":"9am"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, h, http.MethodPost, "/employees/nope/check-in", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCheckInBodyWithoutContentLength(t *testing.T) {
	h, store := newRouter(t, auth.RoleManager)
	_, err := store.AddEmployee(ledger.NewEmployee{Name: "Alice"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/employees/id-001/check-in", strings.NewReader(`{"at":"08:15:00"}`))
	req.ContentLength = -1
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	e, err := store.Employee("id-001")
	require.NoError(t, err)
	require.Len(t, e.Attendance, 1)
	require.NotNil(t, e.Attendance[0].CheckIn)
	assert.Equal(t, "08:15:00", e.Attendance[0].CheckIn.Format(ledger.ClockLayout))

	code, _ := do(t, h, http.MethodPost, "/employees/id-001/check-in", "")
	require.Equal(t, http.StatusOK, code)
	e, err = store.Employee("id-001")
	require.NoError(t, err)
	assert.Equal(t, "09:00:00", e.Attendance[0].CheckIn.Format(ledger.ClockLayout))
}

func TestRewardsAndLeaderboard(t *testing.T) {
	h, store := newRouter(t, auth.RoleAdmin)
	_, err := store.AddEmployee(ledger.NewEmployee{Name: "Alice"})
	require.NoError(t, err)
	_, err = store.AddEmployee(ledger.NewEmployee{Name: "Bob"})
	require.NoError(t, err)

	code, env := do(t, h, http.MethodPost, "/employees/id-002/points", `{"delta":30}`)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"points":30}`, string(env.Data))

	code, env = do(t, h, http.MethodPost, "/employees/id-001/points", `{"delta":-10}`)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"points":0}`, string(env.Data))

	code, env = do(t, h, http.MethodPost, "/employees/id-001/badges", `{"badge":"Mentor"}`)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"granted":true,"badges":["Mentor"],"points":50}`, string(env.Data))

	code, env = do(t, h, http.MethodPost, "/employees/id-001/badges", `{"badge":"Mentor"}`)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"granted":false,"badges":["Mentor"],"points":50}`, string(env.Data))

	code, env = do(t, h, http.MethodGet, "/leaderboard?top=1", "")
	require.Equal(t, http.StatusOK, code)
	var board []ledger.LeaderboardEntry
	require.NoError(t, json.Unmarshal(env.Data, &board))
	require.Len(t, board, 1)
	assert.Equal(t, "Alice", board[0].Name)

	code, _ = do(t, h, http.MethodGet, "/leaderboard?top=zero", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestTaskWorkflow(t *testing.T) {
	h, store := newRouter(t, auth.RoleManager)
	_, err := store.AddEmployee(ledger.NewEmployee{Name: "Alice"})
	require.NoError(t, err)
	_, err = store.AddEmployee(ledger.NewEmployee{Name: "Bob"})
	require.NoError(t, err)

	code, env := do(t, h, http.MethodPost, "/tasks", `{"title":"Write docs","assigneeId":"id-001","priority":"High","dueDate":"2025-03-20"}`)
	require.Equal(t, http.StatusCreated, code)
	var task ledger.Task
	require.NoError(t, json.Unmarshal(env.Data, &task))
	assert.Equal(t, ledger.StatusPending, task.Status)

	code, _ = do(t, h, http.MethodPost, "/tasks/"+task.ID+"/assign", `{"employeeId":"id-002"}`)
	require.Equal(t, http.StatusOK, code)
	alice, err := store.Employee("id-001")
	require.NoError(t, err)
	assert.Empty(t, alice.TaskIDs)

	code, env = do(t, h, http.MethodPost, "/tasks/"+task.ID+"/progress", `{"percent":150,"note":"done"}`)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &task))
	assert.Equal(t, 100, task.ProgressPercent)
	assert.Equal(t, ledger.StatusCompleted, task.Status)

	code, env = do(t, h, http.MethodGet, "/tasks?status=Completed&assigneeId=id-002", "")
	require.Equal(t, http.StatusOK, code)
	var tasks []ledger.Task
	require.NoError(t, json.Unmarshal(env.Data, &tasks))
	assert.Len(t, tasks, 1)

	code, _ = do(t, h, http.MethodPost, "/tasks", `{"title":"Bad","priority":"Urgent"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, h, http.MethodPost, "/tasks/"+task.ID+"/progress", `{"note":"no percent"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, h, http.MethodPost, "/tasks/nope/assign", `{"employeeId":"id-001"}`)
	assert.Equal(t, http.StatusNotFound, code)
}
