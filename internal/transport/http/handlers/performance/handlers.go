package performancehandler

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"ems/internal/auth"
	"ems/internal/domain/performance"
	"ems/internal/transport/http/api"
	"ems/internal/transport/http/middleware"
)

type Handler struct {
	Service *performance.Service
	Lock    sync.Locker
}

func NewHandler(service *performance.Service, lock sync.Locker) *Handler {
	return &Handler{Service: service, Lock: lock}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/performance", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermLedgerRead))
		r.Get("/employees/{employeeID}/kpi", h.handleKPI)
		r.Get("/employees/{employeeID}/behavior", h.handleBehavior)
		r.Get("/employees/{employeeID}/forecast", h.handleForecast)
		r.Get("/departments", h.handleDepartments)
		r.Get("/completion", h.handleCompletion)
	})
}

type forecastResponse struct {
	EmployeeID string                         `json:"employeeId"`
	Snapshot   performance.EfficiencySnapshot `json:"snapshot"`
	Current    float64                        `json:"current"`
	Predicted  float64                        `json:"predicted"`
	Projection []float64                      `json:"projection"`
}

func (h *Handler) handleKPI(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	h.Lock.Lock()
	defer h.Lock.Unlock()

	kpi, err := h.Service.EmployeeKPI(chi.URLParam(r, "employeeID"))
	if err != nil {
		api.FromError(w, err, reqID)
		return
	}
	api.Success(w, kpi, reqID)
}

func (h *Handler) handleBehavior(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	h.Lock.Lock()
	defer h.Lock.Unlock()

	b, err := h.Service.Behavior(chi.URLParam(r, "employeeID"))
	if err != nil {
		api.FromError(w, err, reqID)
		return
	}
	api.Success(w, b, reqID)
}

// handleForecast predicts next-period efficiency. attendanceAdj and tasksAdj
// are what-if percentage adjustments and default to 0.
func (h *Handler) handleForecast(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var issues []api.FieldIssue
	attAdj := floatQuery(r, "attendanceAdj", &issues)
	taskAdj := floatQuery(r, "tasksAdj", &issues)
	if len(issues) > 0 {
		api.ValidationFailed(w, issues, reqID)
		return
	}

	h.Lock.Lock()
	snap, err := h.Service.Snapshot(chi.URLParam(r, "employeeID"))
	forecaster := h.Service.Forecaster()
	h.Lock.Unlock()
	if err != nil {
		api.FromError(w, err, reqID)
		return
	}

	current := snap.Progress()
	predicted := forecaster.Forecast(snap, attAdj, taskAdj)
	api.Success(w, forecastResponse{
		EmployeeID: chi.URLParam(r, "employeeID"),
		Snapshot:   snap,
		Current:    current,
		Predicted:  predicted,
		Projection: performance.ProjectEfficiency(current, predicted, performance.ProjectionMonths),
	}, reqID)
}

func (h *Handler) handleDepartments(w http.ResponseWriter, r *http.Request) {
	h.Lock.Lock()
	defer h.Lock.Unlock()
	api.Success(w, h.Service.DepartmentPerformance(), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCompletion(w http.ResponseWriter, r *http.Request) {
	h.Lock.Lock()
	defer h.Lock.Unlock()
	api.Success(w, map[string]float64{"completionRate": h.Service.CompanyCompletionRate()}, middleware.GetRequestID(r.Context()))
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
