package payrollhandler

import (
	"encoding/json"
	"errors"
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
	"ems/internal/domain/payroll"
	"ems/internal/platform/jobs"
	"ems/internal/platform/metrics"
	"ems/internal/transport/http/middleware"
)

type fakeSaver struct {
	calls int
	err   error
}

func (f *fakeSaver) SavePayrolls([]ledger.PayrollRecord) error {
	f.calls++
	return f.err
}

type fixture struct {
	router  http.Handler
	store   *ledger.Store
	saver   *fakeSaver
	jobs    *jobs.Service
	metrics *metrics.Collector
}

func newFixture(t *testing.T, role string) fixture {
	t.Helper()
	seq := 0
	store := ledger.NewStore(
		ledger.WithClock(func() time.Time { return time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC) }),
		ledger.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%03d", seq)
		}),
	)
	for _, e := range []ledger.NewEmployee{
		{Name: "Alice", Department: "Engineering", BasicSalary: 60000},
		{Name: "Bob", Department: "Sales", BasicSalary: 20000},
	} {
		_, err := store.AddEmployee(e)
		require.NoError(t, err)
	}

	saver := &fakeSaver{}
	f := fixture{store: store, saver: saver, jobs: jobs.New(), metrics: metrics.New()}
	engine := payroll.NewEngine(store, saver, payroll.Options{ReportDir: t.TempDir()})

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := middleware.WithUser(req.Context(), auth.UserContext{Email: "admin@example.com", RoleName: role})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	NewHandler(store, engine, f.jobs, f.metrics, &sync.Mutex{}).RegisterRoutes(r)
	f.router = r
	return f
}

func (f fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func TestComputePayslip(t *testing.T) {
	f := newFixture(t, auth.RoleManager)

	rec := f.do(http.MethodPost, "/payroll/employees/id-001/payslip", `{"year":2025,"month":3,"otherDeductions":100}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var record ledger.PayrollRecord
	decodeData(t, rec, &record)
	assert.Equal(t, 78000.0, record.Gross)
	assert.Equal(t, 8308.33, record.Tax)
	assert.Equal(t, 100.0, record.OtherDeductions)
	assert.Equal(t, 69591.67, record.Net)
	assert.Equal(t, uint64(1), f.metrics.Snapshot()["payslipsTotal"])

	rec = f.do(http.MethodGet, "/payroll/employees/id-001/payslip?year=2025&month=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=payslip_id-001_2025_3.txt", rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "PAYSLIP")
}

func TestComputePayslipErrors(t *testing.T) {
	f := newFixture(t, auth.RoleManager)

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{name: "month out of range", path: "/payroll/employees/id-001/payslip", body: `{"year":2025,"month":13}`, wantStatus: http.StatusBadRequest},
		{name: "negative deduction", path: "/payroll/employees/id-001/payslip", body: `{"year":2025,"month":3,"otherDeductions":-5}`, wantStatus: http.StatusBadRequest},
		{name: "unknown employee", path: "/payroll/employees/nope/payslip", body: `{"year":2025,"month":3}`, wantStatus: http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantStatus, f.do(http.MethodPost, tc.path, tc.body).Code)
		})
	}

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/payroll/employees/id-001/payslip?year=2025&month=3", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/payroll/employees/id-001/payslip?year=2025", "").Code)
}

func TestRunPayrollRecordsJob(t *testing.T) {
	f := newFixture(t, auth.RoleAdmin)

	rec := f.do(http.MethodPost, "/payroll/run", `{"year":2025,"month":3,"deductions":{"id-002":500}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var result runResult
	decodeData(t, rec, &result)
	assert.Equal(t, "2025-03", result.Period)
	require.Equal(t, 2, result.Count)
	assert.Equal(t, 24741.67, result.Records[1].Net)
	assert.Equal(t, 1, f.saver.calls)

	runs := f.jobs.Runs(0)
	require.Len(t, runs, 1)
	assert.Equal(t, jobs.JobPayroll, runs[0].Type)
	assert.Equal(t, jobs.StatusCompleted, runs[0].Status)
	assert.Equal(t, uint64(1), f.metrics.Snapshot()["payrollRunsTotal"])

	rec = f.do(http.MethodGet, "/payroll?year=2025&month=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var records []ledger.PayrollRecord
	decodeData(t, rec, &records)
	assert.Len(t, records, 2)
}

func TestRunPayrollSaveFailure(t *testing.T) {
	f := newFixture(t, auth.RoleAdmin)
	f.saver.err = errors.New("disk full")

	rec := f.do(http.MethodPost, "/payroll/run", `{"year":2025,"month":3}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	runs := f.jobs.Runs(0)
	require.Len(t, runs, 1)
	assert.Equal(t, jobs.StatusFailed, runs[0].Status)
	assert.Len(t, f.store.Payrolls(), 2)
}

func TestRunPayrollRejectsNegativeDeduction(t *testing.T) {
	f := newFixture(t, auth.RoleAdmin)
	rec := f.do(http.MethodPost, "/payroll/run", `{"year":2025,"month":3,"deductions":{"id-001":-1}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.jobs.Runs(0))
}

func TestExport(t *testing.T) {
	f := newFixture(t, auth.RoleManager)
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/payroll/run", `{"year":2025,"month":3}`).Code)

	rec := f.do(http.MethodGet, "/payroll/export?year=2025&month=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "payroll_2025_03.csv")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 3)

	rec = f.do(http.MethodGet, "/payroll/export?year=2025&month=3&format=xlsx", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "payroll_2025_03.xlsx")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"))

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/payroll/export?year=2025&month=3&format=pdf", "").Code)
}

func TestViewerCannotRunPayroll(t *testing.T) {
	f := newFixture(t, auth.RoleViewer)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodPost, "/payroll/run", `{"year":2025,"month":3}`).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/payroll", "").Code)
}
