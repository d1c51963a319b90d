package reportshandler

import (
	"bytes"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"ems/internal/auth"
	"ems/internal/domain/reports"
	"ems/internal/transport/http/api"
	"ems/internal/transport/http/middleware"
	"ems/internal/transport/http/shared"
)

type Handler struct {
	Service *reports.Service
	Lock    sync.Locker
}

func NewHandler(service *reports.Service, lock sync.Locker) *Handler {
	return &Handler{Service: service, Lock: lock}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermReportsWrite)).Post("/employees/{employeeID}", h.handleEmployeeReport)
		r.With(middleware.RequirePermission(auth.PermReportsWrite)).Post("/company", h.handleCompanyReport)
	})
	r.Route("/dashboard", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermLedgerRead))
		r.Get("/feed", h.handleFeed)
		r.Get("/summary", h.handleSummary)
		r.Post("/feed/analyze", h.handleAnalyzeFeed)
	})
}

type reportResponse struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type analysisResponse struct {
	Summary reports.FeedSummary `json:"summary"`
	Rows    []reports.FeedRow   `json:"rows"`
}

func (h *Handler) handleEmployeeReport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	h.Lock.Lock()
	path, err := h.Service.EmployeeReport(chi.URLParam(r, "employeeID"))
	h.Lock.Unlock()
	if err != nil {
		api.FromError(w, err, reqID)
		return
	}
	respondReport(w, path, reqID)
}

func (h *Handler) handleCompanyReport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	h.Lock.Lock()
	path, err := h.Service.CompanyReport()
	h.Lock.Unlock()
	if err != nil {
		api.FromError(w, err, reqID)
		return
	}
	respondReport(w, path, reqID)
}

func respondReport(w http.ResponseWriter, path, reqID string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		api.FromError(w, err, reqID)
		return
	}
	api.Created(w, reportResponse{Path: path, Content: string(raw)}, reqID)
}

// handleFeed streams the progress feed as CSV. The feed is rendered into a
// buffer under the lock so a write failure can still produce an error envelope.
func (h *Handler) handleFeed(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var buf bytes.Buffer
	h.Lock.Lock()
	err := h.Service.WriteProgressFeed(&buf)
	h.Lock.Unlock()
	if err != nil {
		api.FromError(w, err, reqID)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	shared.Attachment(w, "progress_feed.csv")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Warn("write feed failed", "requestId", reqID, "err", err)
	}
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	h.Lock.Lock()
	rows := h.Service.ProgressFeed()
	h.Lock.Unlock()
	api.Success(w, analysisResponse{Summary: reports.Summarize(rows), Rows: rows}, middleware.GetRequestID(r.Context()))
}

// handleAnalyzeFeed reads an uploaded progress feed CSV, re-forecasts it under
// the attendanceAdj and tasksAdj query adjustments and returns the summary.
func (h *Handler) handleAnalyzeFeed(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var issues []api.FieldIssue
	attAdj := floatQuery(r, "attendanceAdj", &issues)
	taskAdj := floatQuery(r, "tasksAdj", &issues)
	if len(issues) > 0 {
		api.ValidationFailed(w, issues, reqID)
		return
	}

	rows, err := reports.ReadProgressFeed(r.Body)
	if err != nil {
		api.FromError(w, err, reqID)
		return
	}
	reports.ApplyForecast(rows, attAdj, taskAdj)
	api.Success(w, analysisResponse{Summary: reports.Summarize(rows), Rows: rows}, reqID)
}

func floatQuery(r *http.Request, key string, issues *[]api.FieldIssue) float64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*issues = append(*issues, api.FieldIssue{Field: key, Reason: "must be a number"})
		return 0
	}
	return v
}
