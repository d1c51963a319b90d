package corehandler

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"ems/internal/auth"
	"ems/internal/domain/ledger"
	"ems/internal/transport/http/api"
	"ems/internal/transport/http/middleware"
	"ems/internal/transport/http/shared"
)

// Handler serves employees, attendance, tasks and rewards. Every call holds
// Lock for its whole duration.
type Handler struct {
	Ledger *ledger.Store
	Lock   sync.Locker
}

func NewHandler(store *ledger.Store, lock sync.Locker) *Handler {
	return &Handler{Ledger: store, Lock: lock}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermLedgerRead)).Get("/", h.handleListEmployees)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite)).Post("/", h.handleCreateEmployee)
		r.With(middleware.RequirePermission(auth.PermLedgerRead)).Get("/{employeeID}", h.handleGetEmployee)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite)).Patch("/{employeeID}", h.handleUpdateEmployee)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite)).Post("/{employeeID}/notes", h.handleAddNote)
		r.With(middleware.RequirePermission(auth.PermAttendanceWrite)).Post("/{employeeID}/check-in", h.handleCheckIn)
		r.With(middleware.RequirePermission(auth.PermAttendanceWrite)).Post("/{employeeID}/check-out", h.handleCheckOut)
		r.With(middleware.RequirePermission(auth.PermRewardsWrite)).Post("/{employeeID}/points", h.handleAwardPoints)
		r.With(middleware.RequirePermission(auth.PermRewardsWrite)).Post("/{employeeID}/badges", h.handleAssignBadge)
	})
	r.Route("/tasks", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermLedgerRead)).Get("/", h.handleListTasks)
		r.With(middleware.RequirePermission(auth.PermTasksWrite)).Post("/", h.handleCreateTask)
		r.With(middleware.RequirePermission(auth.PermLedgerRead)).Get("/{taskID}", h.handleGetTask)
		r.With(middleware.RequirePermission(auth.PermTasksWrite)).Post("/{taskID}/assign", h.handleAssignTask)
		r.With(middleware.RequirePermission(auth.PermTasksWrite)).Post("/{taskID}/progress", h.handleTaskProgress)
	})
	r.With(middleware.RequirePermission(auth.PermLedgerRead)).Get("/leaderboard", h.handleLeaderboard)
}

type createEmployeeRequest struct {
	Name        string  `json:"name" validate:"required"`
	Role        string  `json:"role"`
	Department  string  `json:"department"`
	Email       string  `json:"email" validate:"omitempty,email"`
	BasicSalary float64 `json:"basicSalary" validate:"gte=0"`
}

type updateEmployeeRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=1"`
	Role        *string  `json:"role"`
	Department  *string  `json:"department"`
	Email       *string  `json:"email" validate:"omitempty,email"`
	Active      *bool    `json:"active"`
	BasicSalary *float64 `json:"basicSalary" validate:"omitempty,gte=0"`
	Points      *int     `json:"points" validate:"omitempty,gte=0"`
}

type noteRequest struct {
	Note string `json:"note" validate:"required"`
}

type clockRequest struct {
	At string `json:"at" validate:"omitempty,datetime=15:04:05"`
}

type pointsRequest struct {
	Delta int `json:"delta"`
}

type badgeRequest struct {
	Badge string `json:"badge" validate:"required"`
}

type createTaskRequest struct {
	Title      string `json:"title" validate:"required"`
	AssigneeID string `json:"assigneeId"`
	Priority   string `json:"priority" validate:"omitempty,oneof=Low Medium High"`
	DueDate    string `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	Comments   string `json:"comments"`
	Attachment string `json:"attachment"`
}

type assignTaskRequest struct {
	EmployeeID string `json:"employeeId" validate:"required"`
}

type progressRequest struct {
	Percent *int   `json:"percent" validate:"required"`
	Note    string `json:"note"`
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	department := strings.TrimSpace(r.URL.Query().Get("department"))
	h.Lock.Lock()
	defer h.Lock.Unlock()

	employees := h.Ledger.Employees()
	if department != "" {
		filtered := employees[:0]
		for _, e := range employees {
			if strings.EqualFold(e.Department, department) {
				filtered = append(filtered, e)
			}
		}
		employees = filtered
	}
	api.Success(w, employees, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	h.Lock.Lock()
	defer h.Lock.Unlock()

	e, err := h.Ledger.Employee(chi.URLParam(r, "employeeID"))
	if err != nil {
		api.FromError(w, err, reqID)
		return
	}
	api.Success(w, e, reqID)
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload createEmployeeRequest
	if !shared.Bind(w, r, &payload, reqID) {
		return
	}
	h.Lock.Lock()
	defer h.Lock.Unlock()

	e, err := h.Ledger.AddEmployee(ledger.NewEmployee{
		Name:        payload.Name,
		Role:        payload.Role,
		Department:  payload.Department,
		Email:       payload.Email,
		BasicSalary: payload.BasicSalary,
	})
	if err != nil {
		api.FromError(w, err, reqID)
		return
	}
	api.Created(w, e, reqID)
}

func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload updateEmployeeRequest
	if !shared.Bind(w, r, &payload, reqID) {
		return
	}
	h.Lock.Lock()
	defer h.Lock.Unlock()

	e, err := h.Ledger.UpdateEmployee(chi.URLParam(r, "employeeID"), ledger.EmployeeUpdate{
		Name:        payload.Name,
		Role:        payload.Role,
		Department:  payload.Department,
		Email:       payload.Email,
		Active:      payload.Active,
		BasicSalary: payload.BasicSalary,
		Points:      payload.Points,
	})
	if err != nil {
		api.FromError(w, err, reqID)
		return
	}
	api.Success(w, e, reqID)
}

func (h *Handler) handleAddNote(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload noteRequest
	if !shared.Bind(w, r, &payload, reqID) {
		return
	}
	h.Lock.Lock()
	defer h.Lock.Unlock()

	note, err := h.Ledger.AddProgressNote(chi.URLParam(r, "employeeID"), payload.Note)
	if err != nil {
		api.FromError(w, err, reqID)
		return
	}
	api.Created(w, note, reqID)
}

func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	h.handleClock(w, r, (*ledger.Store).CheckIn)
}

func (h *Handler) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	h.handleClock(w, r, (*ledger.Store).CheckOut)
}

// handleClock runs a check-in or check-out. The body is optional; an "at"
// clock time applies to today, otherwise the current time is used.
func (h *Handler) handleClock(w http.ResponseWriter, r *http.Request, record func(*ledger.Store, string, time.Time) error) {
	reqID := middleware.GetRequestID(r.Context())
	var payload clockRequest
	if !shared.BindOptional(w, r, &payload, reqID) {
		return
	}
	h.Lock.Lock()
	defer h.Lock.Unlock()

	at, err := shared.ParseClock(h.Ledger.Today(), payload.At)
	if err != nil {
		api.ValidationFailed(w, []api.FieldIssue{{Field: "at", Reason: "must be a time in HH:MM:SS format"}}, reqID)
		return
	}
	employeeID := chi.URLParam(r, "employeeID")
	if err := record(h.Ledger, employeeID, at); err != nil {
		api.FromError(w, err, reqID)
		return
	}
	e, err := h.Ledger.Employee(employeeID)
	if err != nil {
		api.FromError(w, err, reqID)
		return
	}
	var today *ledger.AttendanceRecord
	for i := range e.Attendance {
		if ledger.SameDay(e.Attendance[i].Date, h.Ledger.Today()) {
			today = &e.Attendance[i]
		}
	}
	api.Success(w, today, reqID)
}

func (h *Handler) handleAwardPoints(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload pointsRequest
	if !shared.Bind(w, r, &payload, reqID) {
		return
	}
	h.Lock.Lock()
	defer h.Lock.Unlock()

	points, err := h.Ledger.AwardPoints(chi.URLParam(r, "employeeID"), payload.Delta)
	if err != nil {
		api.FromError(w, err, reqID)
		return
	}
	api.Success(w, map[string]int{"points": points}, reqID)
}

func (h *Handler) handleAssignBadge(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload badgeRequest
	if !shared.Bind(w, r, &payload, reqID) {
		return
	}
	h.Lock.Lock()
	defer h.Lock.Unlock()

	employeeID := chi.URLParam(r, "employeeID")
	granted, err := h.Ledger.AssignBadge(employeeID, payload.Badge)
	if err != nil {
		api.FromError(w, err, reqID)
		return
	}
	e, err := h.Ledger.Employee(employeeID)
	if err != nil {
		api.FromError(w, err, reqID)
		return
	}
	api.Success(w, map[string]any{"granted": granted, "badges": e.Badges, "points": e.Points}, reqID)
}

func (h *Handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	top := ledger.DefaultLeaderboardSize
	if raw := r.URL.Query().Get("top"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			api.ValidationFailed(w, []api.FieldIssue{{Field: "top", Reason: "must be a positive integer"}}, reqID)
			return
		}
		top = parsed
	}
	h.Lock.Lock()
	defer h.Lock.Unlock()
	api.Success(w, h.Ledger.Leaderboard(top), reqID)
}

func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	status := ledger.TaskStatus(r.URL.Query().Get("status"))
	assignee := r.URL.Query().Get("assigneeId")
	h.Lock.Lock()
	defer h.Lock.Unlock()

	tasks := h.Ledger.Tasks()
	filtered := tasks[:0]
	for _, t := range tasks {
		if status != "" && t.Status != status {
			continue
		}
		if assignee != "" && t.AssigneeID != assignee {
			continue
		}
		filtered = append(filtered, t)
	}
	api.Success(w, filtered, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	h.Lock.Lock()
	defer h.Lock.Unlock()

	t, err := h.Ledger.Task(chi.URLParam(r, "taskID"))
	if err != nil {
		api.FromError(w, err, reqID)
		return
	}
	api.Success(w, t, reqID)
}

func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload createTaskRequest
	if !shared.Bind(w, r, &payload, reqID) {
		return
	}
	var due *time.Time
	if payload.DueDate != "" {
		parsed, err := shared.ParseDate(payload.DueDate)
		if err != nil {
			api.ValidationFailed(w, []api.FieldIssue{{Field: "dueDate", Reason: "must be a date in YYYY-MM-DD format"}}, reqID)
			return
		}
		due = &parsed
	}
	h.Lock.Lock()
	defer h.Lock.Unlock()

	t, err := h.Ledger.CreateTask(ledger.NewTask{
		Title:      payload.Title,
		AssigneeID: payload.AssigneeID,
		Priority:   ledger.Priority(payload.Priority),
		DueDate:    due,
		Comments:   payload.Comments,
		Attachment: payload.Attachment,
	})
	if err != nil {
		api.FromError(w, err, reqID)
		return
	}
	api.Created(w, t, reqID)
}

func (h *Handler) handleAssignTask(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload assignTaskRequest
	if !shared.Bind(w, r, &payload, reqID) {
		return
	}
	h.Lock.Lock()
	defer h.Lock.Unlock()

	t, err := h.Ledger.AssignTask(chi.URLParam(r, "taskID"), payload.EmployeeID)
	if err != nil {
		api.FromError(w, err, reqID)
		return
	}
	api.Success(w, t, reqID)
}

func (h *Handler) handleTaskProgress(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload progressRequest
	if !shared.Bind(w, r, &payload, reqID) {
		return
	}
	h.Lock.Lock()
	defer h.Lock.Unlock()

	t, err := h.Ledger.UpdateTaskProgress(chi.URLParam(r, "taskID"), *payload.Percent, payload.Note)
	if err != nil {
		api.FromError(w, err, reqID)
		return
	}
	api.Success(w, t, reqID)
}
