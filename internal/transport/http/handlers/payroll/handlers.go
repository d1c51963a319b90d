package payrollhandler

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"ems/internal/auth"
	"ems/internal/domain/ledger"
	"ems/internal/domain/payroll"
	"ems/internal/platform/jobs"
	"ems/internal/platform/metrics"
	"ems/internal/transport/http/api"
	"ems/internal/transport/http/middleware"
	"ems/internal/transport/http/shared"
)

type Handler struct {
	Ledger  *ledger.Store
	Engine  *payroll.Engine
	Jobs    *jobs.Service
	Metrics *metrics.Collector
	Lock    sync.Locker
}

func NewHandler(store *ledger.Store, engine *payroll.Engine, jobsSvc *jobs.Service, collector *metrics.Collector, lock sync.Locker) *Handler {
	return &Handler{Ledger: store, Engine: engine, Jobs: jobsSvc, Metrics: collector, Lock: lock}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermLedgerRead)).Get("/", h.handleListRecords)
		r.With(middleware.RequirePermission(auth.PermPayrollRun)).Post("/run", h.handleRunPayroll)
		r.With(middleware.RequirePermission(auth.PermPayrollRun)).Post("/employees/{employeeID}/payslip", h.handleComputePayslip)
		r.With(middleware.RequirePermission(auth.PermLedgerRead)).Get("/employees/{employeeID}/payslip", h.handleDownloadPayslip)
		r.With(middleware.RequirePermission(auth.PermPayrollRun)).Get("/export", h.handleExport)
	})
}

type payslipRequest struct {
	Year            int     `json:"year" validate:"required,gte=1"`
	Month           int     `json:"month" validate:"required,gte=1,lte=12"`
	OtherDeductions float64 `json:"otherDeductions" validate:"gte=0"`
}

type runRequest struct {
	Year       int                `json:"year" validate:"required,gte=1"`
	Month      int                `json:"month" validate:"required,gte=1,lte=12"`
	Deductions map[string]float64 `json:"deductions"`
}

type runResult struct {
	Period  string                 `json:"period"`
	Count   int                    `json:"count"`
	Records []ledger.PayrollRecord `json:"records"`
}

func (h *Handler) handleListRecords(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	year, month, hasPeriod, ok := periodQuery(w, r, false)
	if !ok {
		return
	}
	h.Lock.Lock()
	defer h.Lock.Unlock()

	records := h.Ledger.Payrolls()
	if hasPeriod {
		records = h.Ledger.PayrollsForPeriod(year, month)
	}
	if records == nil {
		records = []ledger.PayrollRecord{}
	}
	api.Success(w, records, reqID)
}

func (h *Handler) handleComputePayslip(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload payslipRequest
	if !shared.Bind(w, r, &payload, reqID) {
		return
	}
	h.Lock.Lock()
	defer h.Lock.Unlock()

	rec, err := h.Engine.ComputePayslip(chi.URLParam(r, "employeeID"), payload.Year, payload.Month, payload.OtherDeductions)
	if err != nil {
		api.FromError(w, err, reqID)
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordPayslip()
	}
	api.Created(w, rec, reqID)
}

// handleRunPayroll pays every employee for the period and records the run in
// the job history. Records produced before a save failure are still returned
// in the job details but the request fails.
func (h *Handler) handleRunPayroll(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload runRequest
	if !shared.Bind(w, r, &payload, reqID) {
		return
	}
	for id, amount := range payload.Deductions {
		if amount < 0 {
			api.ValidationFailed(w, []api.FieldIssue{{Field: "deductions." + id, Reason: "must not be negative"}}, reqID)
			return
		}
	}

	details, err := h.Jobs.RunNow(r.Context(), jobs.JobPayroll, func(context.Context) (any, error) {
		h.Lock.Lock()
		defer h.Lock.Unlock()
		records, err := h.Engine.GenerateMonthlyPayroll(payload.Year, payload.Month, payload.Deductions)
		if h.Metrics != nil {
			h.Metrics.RecordPayroll(len(records))
		}
		if records == nil {
			records = []ledger.PayrollRecord{}
		}
		return runResult{
			Period:  payroll.Period(payload.Year, payload.Month),
			Count:   len(records),
			Records: records,
		}, err
	})
	if err != nil {
		api.FromError(w, err, reqID)
		return
	}
	api.Success(w, details, reqID)
}

func (h *Handler) handleDownloadPayslip(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	year, month, _, ok := periodQuery(w, r, true)
	if !ok {
		return
	}
	employeeID := chi.URLParam(r, "employeeID")

	h.Lock.Lock()
	if _, err := h.Ledger.Employee(employeeID); err != nil {
		h.Lock.Unlock()
		api.FromError(w, err, reqID)
		return
	}
	var path string
	for _, rec := range h.Ledger.PayrollsForPeriod(year, month) {
		if rec.EmployeeID == employeeID {
			path = rec.PayslipPath
		}
	}
	h.Lock.Unlock()

	if path == "" {
		api.Fail(w, http.StatusNotFound, "not_found", "no payslip for this period", reqID)
		return
	}
	serveAttachment(w, r, path, "text/plain; charset=utf-8")
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	year, month, _, ok := periodQuery(w, r, true)
	if !ok {
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	h.Lock.Lock()
	var (
		path        string
		err         error
		contentType string
	)
	switch format {
	case "csv":
		path, err = h.Engine.ExportPayrollCSV(year, month, "")
		contentType = "text/csv"
	case "xlsx":
		path, err = h.Engine.ExportPayrollXLSX(year, month, "")
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		err = &ledger.FieldError{Field: "format", Reason: "must be one of csv, xlsx"}
	}
	h.Lock.Unlock()

	if err != nil {
		api.FromError(w, err, reqID)
		return
	}
	serveAttachment(w, r, path, contentType)
}

func serveAttachment(w http.ResponseWriter, r *http.Request, path, contentType string) {
	w.Header().Set("Content-Type", contentType)
	shared.Attachment(w, path)
	http.ServeFile(w, r, path)
}

// periodQuery reads year and month from the query string. When required is
// false both may be omitted.
func periodQuery(w http.ResponseWriter, r *http.Request, required bool) (year, month int, present, ok bool) {
	reqID := middleware.GetRequestID(r.Context())
	rawYear, rawMonth := r.URL.Query().Get("year"), r.URL.Query().Get("month")
	if rawYear == "" && rawMonth == "" && !required {
		return 0, 0, false, true
	}
	var errs []api.FieldIssue
	year, err := strconv.Atoi(rawYear)
	if err != nil {
		errs = append(errs, api.FieldIssue{Field: "year", Reason: "must be an integer"})
	}
	month, err = strconv.Atoi(rawMonth)
	if err != nil {
		errs = append(errs, api.FieldIssue{Field: "month", Reason: "must be an integer"})
	}
	if len(errs) == 0 && !payroll.ValidPeriod(year, month) {
		errs = append(errs, api.FieldIssue{Field: payroll.ErrInvalidPeriod.Field, Reason: payroll.ErrInvalidPeriod.Reason})
	}
	if len(errs) > 0 {
		api.ValidationFailed(w, errs, reqID)
		return 0, 0, false, false
	}
	return year, month, true, true
}
