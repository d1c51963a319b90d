package leavehandler

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"ems/internal/auth"
	"ems/internal/domain/ledger"
	"ems/internal/transport/http/api"
	"ems/internal/transport/http/middleware"
	"ems/internal/transport/http/shared"
)

type Handler struct {
	Ledger *ledger.Store
	Lock   sync.Locker
}

func NewHandler(store *ledger.Store, lock sync.Locker) *Handler {
	return &Handler{Ledger: store, Lock: lock}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leaves", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermLedgerRead)).Get("/", h.handleListRequests)
		r.With(middleware.RequirePermission(auth.PermLeaveWrite)).Post("/", h.handleCreateRequest)
		r.With(middleware.RequirePermission(auth.PermLedgerRead)).Get("/{leaveID}", h.handleGetRequest)
		r.With(middleware.RequirePermission(auth.PermLeaveApprove)).Post("/{leaveID}/status", h.handleSetStatus)
	})
}

type leaveRequest struct {
	EmployeeID string `json:"employeeId" validate:"required"`
	StartDate  string `json:"startDate" validate:"required"`
	EndDate    string `json:"endDate" validate:"required"`
	Reason     string `json:"reason"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=Pending Approved Rejected"`
}

// leaveView adds the inclusive day count to a stored request.
type leaveView struct {
	ledger.LeaveRequest
	Days float64 `json:"days"`
}

func viewOf(l ledger.LeaveRequest) leaveView {
	return leaveView{LeaveRequest: l, Days: l.Days()}
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	status := ledger.LeaveStatus(r.URL.Query().Get("status"))
	employeeID := r.URL.Query().Get("employeeId")
	h.Lock.Lock()
	defer h.Lock.Unlock()

	out := []leaveView{}
	for _, l := range h.Ledger.Leaves() {
		if status != "" && l.Status != status {
			continue
		}
		if employeeID != "" && l.EmployeeID != employeeID {
			continue
		}
		out = append(out, viewOf(l))
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	h.Lock.Lock()
	defer h.Lock.Unlock()

	l, err := h.Ledger.Leave(chi.URLParam(r, "leaveID"))
	if err != nil {
		api.FromError(w, err, reqID)
		return
	}
	api.Success(w, viewOf(l), reqID)
}

func (h *Handler) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload leaveRequest
	if !shared.Bind(w, r, &payload, reqID) {
		return
	}
	start, err := shared.ParseDate(payload.StartDate)
	if err != nil {
		api.ValidationFailed(w, []api.FieldIssue{{Field: "startDate", Reason: "must be a valid date"}}, reqID)
		return
	}
	end, err := shared.ParseDate(payload.EndDate)
	if err != nil {
		api.ValidationFailed(w, []api.FieldIssue{{Field: "endDate", Reason: "must be a valid date"}}, reqID)
		return
	}
	h.Lock.Lock()
	defer h.Lock.Unlock()

	l, err := h.Ledger.RequestLeave(payload.EmployeeID, start, end, payload.Reason)
	if err != nil {
		api.FromError(w, err, reqID)
		return
	}
	api.Created(w, viewOf(l), reqID)
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload statusRequest
	if !shared.Bind(w, r, &payload, reqID) {
		return
	}
	h.Lock.Lock()
	defer h.Lock.Unlock()

	l, err := h.Ledger.SetLeaveStatus(chi.URLParam(r, "leaveID"), ledger.LeaveStatus(payload.Status))
	if err != nil {
		api.FromError(w, err, reqID)
		return
	}
	user, _ := middleware.GetUser(r.Context())
	slog.Info("leave status changed", "leaveId", l.ID, "status", l.Status, "by", user.Email)
	api.Success(w, viewOf(l), reqID)
}
