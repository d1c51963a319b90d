package adminhandler

import (
	"encoding/csv"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"ems/internal/auth"
	"ems/internal/platform/jobs"
	"ems/internal/transport/http/api"
	"ems/internal/transport/http/middleware"
	"ems/internal/transport/http/shared"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 100
)

type Handler struct {
	Jobs *jobs.Service
	// Save persists the whole ledger. It takes the workspace lock itself.
	Save jobs.Func
}

func NewHandler(jobsSvc *jobs.Service, save jobs.Func) *Handler {
	return &Handler{Jobs: jobsSvc, Save: save}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermSystemAdmin))
		r.Post("/save", h.handleSave)
		r.Get("/jobs", h.handleListRuns)
		r.Get("/jobs/export", h.handleExportRuns)
	})
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	details, err := h.Jobs.RunNow(r.Context(), jobs.JobSave, h.Save)
	if err != nil {
		api.FromError(w, err, reqID)
		return
	}
	api.Success(w, details, reqID)
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	limit := defaultRunsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			api.ValidationFailed(w, []api.FieldIssue{{Field: "limit", Reason: "must be a positive integer"}}, reqID)
			return
		}
		limit = min(parsed, maxRunsLimit)
	}

	runs := h.Jobs.Runs(limit)
	if jobType := r.URL.Query().Get("jobType"); jobType != "" {
		filtered := runs[:0]
		for _, run := range runs {
			if run.Type == jobType {
				filtered = append(filtered, run)
			}
		}
		runs = filtered
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(len(runs)))
	api.Success(w, runs, reqID)
}

func (h *Handler) handleExportRuns(w http.ResponseWriter, r *http.Request) {
	runs := h.Jobs.Runs(0)

	w.Header().Set("Content-Type", "text/csv")
	shared.Attachment(w, "job-runs.csv")
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "job_type", "status", "error", "started_at", "completed_at"}); err != nil {
		slog.Warn("job export header failed", "err", err)
	}
	for _, run := range runs {
		completed := ""
		if run.CompletedAt != nil {
			completed = run.CompletedAt.Format(time.RFC3339)
		}
		if err := writer.Write([]string{run.ID, run.Type, run.Status, run.Error, run.StartedAt.Format(time.RFC3339), completed}); err != nil {
			slog.Warn("job export row failed", "err", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		slog.Warn("job export flush failed", "err", err)
	}
}
