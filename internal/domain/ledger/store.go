package ledger

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Store holds every ledger collection in memory. It performs no locking;
// callers that share a Store across goroutines must serialize access.
type Store struct {
	employees     map[string]*Employee
	employeeOrder []string
	tasks         map[string]*Task
	taskOrder     []string
	leaves        map[string]*LeaveRequest
	leaveOrder    []string
	payrolls      map[string]*PayrollRecord
	payrollOrder  []string

	now   func() time.Time
	newID func() string
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		employees: map[string]*Employee{},
		tasks:     map[string]*Task{},
		leaves:    map[string]*LeaveRequest{},
		payrolls:  map[string]*PayrollRecord{},
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Now() time.Time {
	return s.now()
}

func (s *Store) NewID() string {
	return s.newID()
}

// Today is the current calendar day in the store clock's location.
func (s *Store) Today() time.Time {
	return DayOf(s.now())
}

func (s *Store) Employee(id string) (Employee, error) {
	e, ok := s.employees[id]
	if !ok {
		return Employee{}, ErrEmployeeNotFound
	}
	return e.clone(), nil
}

func (s *Store) Employees() []Employee {
	out := make([]Employee, 0, len(s.employeeOrder))
	for _, id := range s.employeeOrder {
		out = append(out, s.employees[id].clone())
	}
	return out
}

func (s *Store) Task(id string) (Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return Task{}, ErrTaskNotFound
	}
	return t.clone(), nil
}

func (s *Store) Tasks() []Task {
	out := make([]Task, 0, len(s.taskOrder))
	for _, id := range s.taskOrder {
		out = append(out, s.tasks[id].clone())
	}
	return out
}

func (s *Store) Leave(id string) (LeaveRequest, error) {
	l, ok := s.leaves[id]
	if !ok {
		return LeaveRequest{}, ErrLeaveNotFound
	}
	return *l, nil
}

func (s *Store) Leaves() []LeaveRequest {
	out := make([]LeaveRequest, 0, len(s.leaveOrder))
	for _, id := range s.leaveOrder {
		out = append(out, *s.leaves[id])
	}
	return out
}

func (s *Store) Payrolls() []PayrollRecord {
	out := make([]PayrollRecord, 0, len(s.payrollOrder))
	for _, id := range s.payrollOrder {
		out = append(out, *s.payrolls[id])
	}
	return out
}

// PayrollsForPeriod returns every record for the period, duplicates included.
func (s *Store) PayrollsForPeriod(year, month int) []PayrollRecord {
	var out []PayrollRecord
	for _, id := range s.payrollOrder {
		p := s.payrolls[id]
		if p.Year == year && p.Month == month {
			out = append(out, *p)
		}
	}
	return out
}

// AddPayroll appends a payroll record. Records for an already paid period are
// kept side by side; nothing is replaced.
func (s *Store) AddPayroll(rec PayrollRecord) PayrollRecord {
	if rec.ID == "" {
		rec.ID = s.newID()
	}
	if rec.GeneratedAt.IsZero() {
		rec.GeneratedAt = s.now()
	}
	s.putPayroll(rec)
	return rec
}

// CompletedTaskCount counts the employee's owned tasks that are Completed.
func (s *Store) CompletedTaskCount(employeeID string) int {
	e, ok := s.employees[employeeID]
	if !ok {
		return 0
	}
	completed := 0
	for _, id := range e.TaskIDs {
		if t, ok := s.tasks[id]; ok && t.Status == StatusCompleted {
			completed++
		}
	}
	return completed
}

// RestoreEmployee inserts a pre-built employee, generating an ID when absent.
// An existing employee with the same ID is replaced in place.
func (s *Store) RestoreEmployee(e Employee) Employee {
	if e.ID == "" {
		e.ID = s.newID()
	}
	stored := e.clone()
	if _, exists := s.employees[e.ID]; !exists {
		s.employeeOrder = append(s.employeeOrder, e.ID)
	}
	s.employees[e.ID] = &stored
	return stored.clone()
}

// RestoreTask inserts a pre-built task and links it to its assignee when the
// assignee is known.
func (s *Store) RestoreTask(t Task) Task {
	if t.ID == "" {
		t.ID = s.newID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now()
	}
	t.ProgressPercent = ClampProgress(t.ProgressPercent)
	stored := t.clone()
	if _, exists := s.tasks[t.ID]; !exists {
		s.taskOrder = append(s.taskOrder, t.ID)
	}
	s.tasks[t.ID] = &stored
	if e, ok := s.employees[t.AssigneeID]; ok {
		e.TaskIDs = appendUnique(e.TaskIDs, t.ID)
	}
	return stored.clone()
}

// RestoreAttendance attaches a record to an employee, replacing any record
// already held for the same day.
func (s *Store) RestoreAttendance(employeeID string, rec AttendanceRecord) error {
	e, ok := s.employees[employeeID]
	if !ok {
		return ErrEmployeeNotFound
	}
	rec.Date = DayOf(rec.Date)
	if existing := e.attendanceOn(rec.Date); existing != nil {
		*existing = rec
		return nil
	}
	e.Attendance = append(e.Attendance, rec)
	return nil
}

// RestoreNote appends a progress note as read, keeping its timestamp.
func (s *Store) RestoreNote(employeeID string, n Note) error {
	e, ok := s.employees[employeeID]
	if !ok {
		return ErrEmployeeNotFound
	}
	if n.At.IsZero() {
		n.At = s.now()
	}
	e.ProgressNotes = append(e.ProgressNotes, n)
	return nil
}

func (s *Store) RestoreLeave(l LeaveRequest) LeaveRequest {
	if l.ID == "" {
		l.ID = s.newID()
	}
	if l.RequestedAt.IsZero() {
		l.RequestedAt = s.now()
	}
	if !l.Status.Valid() {
		l.Status = LeaveStatusPending
	}
	s.putLeave(l)
	if e, ok := s.employees[l.EmployeeID]; ok {
		e.LeaveIDs = appendUnique(e.LeaveIDs, l.ID)
	}
	return l
}

func (s *Store) RestorePayroll(p PayrollRecord) PayrollRecord {
	return s.AddPayroll(p)
}

func (s *Store) putLeave(l LeaveRequest) {
	if _, exists := s.leaves[l.ID]; !exists {
		s.leaveOrder = append(s.leaveOrder, l.ID)
	}
	s.leaves[l.ID] = &l
}

func (s *Store) putPayroll(p PayrollRecord) {
	if _, exists := s.payrolls[p.ID]; !exists {
		s.payrollOrder = append(s.payrollOrder, p.ID)
	}
	s.payrolls[p.ID] = &p
}

func (e *Employee) attendanceOn(day time.Time) *AttendanceRecord {
	for i := range e.Attendance {
		if SameDay(e.Attendance[i].Date, day) {
			return &e.Attendance[i]
		}
	}
	return nil
}

func (e Employee) clone() Employee {
	out := e
	out.Badges = append([]string(nil), e.Badges...)
	out.TaskIDs = append([]string(nil), e.TaskIDs...)
	out.LeaveIDs = append([]string(nil), e.LeaveIDs...)
	out.ProgressNotes = append([]Note(nil), e.ProgressNotes...)
	out.Attendance = make([]AttendanceRecord, len(e.Attendance))
	for i, rec := range e.Attendance {
		out.Attendance[i] = AttendanceRecord{
			Date:     rec.Date,
			CheckIn:  copyTime(rec.CheckIn),
			CheckOut: copyTime(rec.CheckOut),
			Hours:    rec.Hours,
		}
	}
	return out
}

func (t Task) clone() Task {
	out := t
	out.DueDate = copyTime(t.DueDate)
	out.Updates = append([]Note(nil), t.Updates...)
	return out
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

// DayOf truncates t to midnight in its own location.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Round2 rounds to two decimals. Non-finite input yields 0.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}
