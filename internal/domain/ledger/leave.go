package ledger

import (
	"errors"
	"strings"
	"time"
)

func (s *Store) RequestLeave(employeeID string, start, end time.Time, reason string) (LeaveRequest, error) {
	e, ok := s.employees[employeeID]
	if !ok {
		return LeaveRequest{}, ErrEmployeeNotFound
	}
	if start.IsZero() || end.IsZero() {
		return LeaveRequest{}, invalid("start_date", "and end_date are required")
	}
	start, end = DayOf(start), DayOf(end)
	if _, err := CalculateDays(start, end); err != nil {
		return LeaveRequest{}, invalid("end_date", "must not be before start_date")
	}
	l := LeaveRequest{
		ID:          s.newID(),
		EmployeeID:  employeeID,
		StartDate:   start,
		EndDate:     end,
		Reason:      strings.TrimSpace(reason),
		Status:      LeaveStatusPending,
		RequestedAt: s.now(),
	}
	s.putLeave(l)
	e.LeaveIDs = append(e.LeaveIDs, l.ID)
	return l, nil
}

func (s *Store) SetLeaveStatus(leaveID string, status LeaveStatus) (LeaveRequest, error) {
	l, ok := s.leaves[leaveID]
	if !ok {
		return LeaveRequest{}, ErrLeaveNotFound
	}
	if !status.Valid() {
		return LeaveRequest{}, invalid("status", "must be one of Pending, Approved, Rejected")
	}
	l.Status = status
	return *l, nil
}

// Days is the inclusive length of the request. Inverted ranges loaded from
// files count as 0.
func (l LeaveRequest) Days() float64 {
	days, err := CalculateDays(l.StartDate, l.EndDate)
	if err != nil {
		return 0
	}
	return days
}

// CalculateDays returns inclusive day count between start and end.
func CalculateDays(start, end time.Time) (float64, error) {
	start, end = DayOf(start), DayOf(end)
	if end.Before(start) {
		return 0, errors.New("end date before start date")
	}
	return float64(int(end.Sub(start).Hours()/24+0.5)) + 1, nil
}
