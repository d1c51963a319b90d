package flatfile

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ems/internal/domain/ledger"
)

// Repository persists ledger collections as CSV files inside one directory.
type Repository struct {
	dir string
}

func New(dir string) *Repository {
	return &Repository{dir: dir}
}

func (r *Repository) Dir() string {
	return r.dir
}

func (r *Repository) path(name string) string {
	return filepath.Join(r.dir, name)
}

// Load reads every collection into s. Employees load first so that tasks,
// attendance and leave rows can link to them.
func (r *Repository) Load(s *ledger.Store) error {
	steps := []func(*ledger.Store) error{
		r.loadEmployees,
		r.loadNotes,
		r.loadTasks,
		r.loadAttendance,
		r.loadLeaves,
		r.loadPayrolls,
	}
	for _, step := range steps {
		if err := step(s); err != nil {
			return err
		}
	}
	return nil
}

// Save writes every collection. A failure stops at the failing file; files
// already written are not rolled back.
func (r *Repository) Save(s *ledger.Store) error {
	employees := s.Employees()
	if err := r.SaveEmployees(employees); err != nil {
		return err
	}
	if err := r.SaveNotes(employees); err != nil {
		return err
	}
	if err := r.SaveTasks(s.Tasks()); err != nil {
		return err
	}
	if err := r.SaveAttendance(employees); err != nil {
		return err
	}
	if err := r.SaveLeaves(s.Leaves()); err != nil {
		return err
	}
	return r.SavePayrolls(s.Payrolls())
}

func (r *Repository) loadEmployees(s *ledger.Store) error {
	t, err := readTable(r.path(EmployeesFile), employeeRequired)
	if err != nil {
		return err
	}
	for _, row := range t.rows {
		name := t.get(row, "name")
		if name == "" {
			t.skip(row, errors.New("name is empty"))
			continue
		}
		salary, err := parseFloat("basic_salary", t.first(row, "basic_salary", "salary"))
		if err != nil || salary < 0 {
			t.skip(row, fmt.Errorf("basic_salary: invalid value %q", t.first(row, "basic_salary", "salary")))
			continue
		}
		role := t.get(row, "role")
		if role == "" {
			role = ledger.RoleEmployee
		}
		points := 0
		if raw := t.get(row, "points"); raw != "" {
			if points, err = parseInt("points", raw); err != nil {
				t.skip(row, err)
				continue
			}
		}
		active := true
		if raw := t.get(row, "active"); raw != "" {
			if active, err = strconv.ParseBool(raw); err != nil {
				t.skip(row, fmt.Errorf("active: invalid value %q", raw))
				continue
			}
		}
		s.RestoreEmployee(ledger.Employee{
			ID:          t.get(row, "id"),
			Name:        name,
			Role:        role,
			Department:  t.get(row, "department"),
			Email:       t.get(row, "email"),
			Active:      active,
			BasicSalary: salary,
			Points:      max(points, 0),
			Badges:      splitBadges(t.get(row, "badges")),
		})
	}
	return nil
}

func splitBadges(raw string) []string {
	var badges []string
	for _, b := range strings.Split(raw, badgeSeparator) {
		if b = strings.TrimSpace(b); b != "" {
			badges = append(badges, b)
		}
	}
	return badges
}

func (r *Repository) SaveEmployees(employees []ledger.Employee) error {
	rows := make([][]string, 0, len(employees))
	for _, e := range employees {
		rows = append(rows, []string{
			e.ID,
			e.Name,
			e.Role,
			e.Department,
			e.Email,
			formatFloat(e.BasicSalary),
			strconv.Itoa(e.Points),
			strings.Join(e.Badges, badgeSeparator),
			strconv.FormatBool(e.Active),
		})
	}
	return WriteTable(r.path(EmployeesFile), EmployeeColumns, rows)
}

func (r *Repository) loadNotes(s *ledger.Store) error {
	t, err := readTable(r.path(NotesFile), noteRequired)
	if err != nil {
		return err
	}
	for _, row := range t.rows {
		n := ledger.Note{Text: t.get(row, "note")}
		if n.Text == "" {
			t.skip(row, errors.New("note is empty"))
			continue
		}
		if raw := t.get(row, "timestamp"); raw != "" {
			if n.At, err = time.Parse(time.RFC3339, raw); err != nil {
				t.skip(row, fmt.Errorf("timestamp: %w", err))
				continue
			}
		}
		if err := s.RestoreNote(t.get(row, "employee_id"), n); err != nil {
			t.skip(row, err)
		}
	}
	return nil
}

func (r *Repository) SaveNotes(employees []ledger.Employee) error {
	var rows [][]string
	for _, e := range employees {
		for _, n := range e.ProgressNotes {
			rows = append(rows, []string{e.ID, n.At.Format(time.RFC3339), n.Text})
		}
	}
	return WriteTable(r.path(NotesFile), NoteColumns, rows)
}

func (r *Repository) loadTasks(s *ledger.Store) error {
	t, err := readTable(r.path(TasksFile), taskRequired)
	if err != nil {
		return err
	}
	for _, row := range t.rows {
		task, err := parseTask(t, row)
		if err != nil {
			t.skip(row, err)
			continue
		}
		s.RestoreTask(task)
	}
	return nil
}

func parseTask(t *table, r row) (ledger.Task, error) {
	task := ledger.Task{
		ID:         t.get(r, "task_id"),
		Title:      t.get(r, "title"),
		AssigneeID: t.get(r, "employee_id"),
		Priority:   ledger.Priority(t.get(r, "priority")),
		Comments:   t.get(r, "comments"),
		Attachment: t.get(r, "attachment"),
	}
	if task.Title == "" {
		return task, errors.New("title is empty")
	}
	if task.Priority == "" {
		task.Priority = ledger.PriorityMedium
	}
	if !task.Priority.Valid() {
		return task, fmt.Errorf("priority: unknown value %q", task.Priority)
	}
	if raw := t.get(r, "due_date"); raw != "" {
		due, err := time.Parse(ledger.DateLayout, raw)
		if err != nil {
			return task, fmt.Errorf("due_date: %w", err)
		}
		task.DueDate = &due
	}

	status := ledger.TaskStatus(t.get(r, "status"))
	if status == "" {
		status = ledger.StatusPending
	}
	if !status.Valid() {
		return task, fmt.Errorf("status: unknown value %q", status)
	}
	if raw := t.get(r, "progress_percent"); raw != "" {
		progress, err := parseInt("progress_percent", raw)
		if err != nil {
			return task, err
		}
		task.ProgressPercent = ledger.ClampProgress(progress)
	} else {
		task.ProgressPercent = progressForStatus(status)
	}
	task.Status = ledger.StatusForProgress(task.ProgressPercent)
	return task, nil
}

// progressForStatus infers progress for files written without a
// progress_percent column.
func progressForStatus(status ledger.TaskStatus) int {
	switch status {
	case ledger.StatusCompleted:
		return 100
	case ledger.StatusInProgress:
		return 50
	default:
		return 0
	}
}

func (r *Repository) SaveTasks(tasks []ledger.Task) error {
	rows := make([][]string, 0, len(tasks))
	for _, task := range tasks {
		due := ""
		if task.DueDate != nil {
			due = task.DueDate.Format(ledger.DateLayout)
		}
		rows = append(rows, []string{
			task.ID,
			task.AssigneeID,
			task.Title,
			string(task.Priority),
			string(task.Status),
			due,
			task.Comments,
			task.Attachment,
			strconv.Itoa(task.ProgressPercent),
		})
	}
	return WriteTable(r.path(TasksFile), TaskColumns, rows)
}

func (r *Repository) loadAttendance(s *ledger.Store) error {
	t, err := readTable(r.path(AttendanceFile), attendanceRequired)
	if err != nil {
		return err
	}
	for _, row := range t.rows {
		employeeID := t.get(row, "employee_id")
		if employeeID == "" {
			t.skip(row, errors.New("employee_id is empty"))
			continue
		}
		rec, err := parseAttendance(t, row)
		if err != nil {
			t.skip(row, err)
			continue
		}
		if err := s.RestoreAttendance(employeeID, rec); err != nil {
			t.skip(row, err)
		}
	}
	return nil
}

func parseAttendance(t *table, r row) (ledger.AttendanceRecord, error) {
	day, err := time.Parse(ledger.DateLayout, t.get(r, "date"))
	if err != nil {
		return ledger.AttendanceRecord{}, fmt.Errorf("date: %w", err)
	}
	hours, err := parseFloat("work_hours", t.first(r, "work_hours", "hours"))
	if err != nil {
		return ledger.AttendanceRecord{}, err
	}
	rec := ledger.AttendanceRecord{Date: day, Hours: hours}
	if rec.CheckIn, err = clockOn(day, t.get(r, "check_in")); err != nil {
		return ledger.AttendanceRecord{}, fmt.Errorf("check_in: %w", err)
	}
	if rec.CheckOut, err = clockOn(day, t.get(r, "check_out")); err != nil {
		return ledger.AttendanceRecord{}, fmt.Errorf("check_out: %w", err)
	}
	return rec, nil
}

func clockOn(day time.Time, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	c, err := time.Parse(ledger.ClockLayout, raw)
	if err != nil {
		return nil, err
	}
	v := time.Date(day.Year(), day.Month(), day.Day(), c.Hour(), c.Minute(), c.Second(), 0, day.Location())
	return &v, nil
}

func (r *Repository) SaveAttendance(employees []ledger.Employee) error {
	var rows [][]string
	for _, e := range employees {
		for _, rec := range e.Attendance {
			status := attendanceAbsent
			if rec.Hours > 0 {
				status = attendancePresent
			}
			rows = append(rows, []string{
				e.ID,
				rec.Date.Format(ledger.DateLayout),
				status,
				formatFloat(rec.Hours),
				formatClock(rec.CheckIn),
				formatClock(rec.CheckOut),
			})
		}
	}
	return WriteTable(r.path(AttendanceFile), AttendanceColumns, rows)
}

func formatClock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(ledger.ClockLayout)
}

func (r *Repository) loadLeaves(s *ledger.Store) error {
	t, err := readTable(r.path(LeavesFile), leaveRequired)
	if err != nil {
		return err
	}
	for _, row := range t.rows {
		start, err := time.Parse(ledger.DateLayout, t.get(row, "start_date"))
		if err != nil {
			t.skip(row, fmt.Errorf("start_date: %w", err))
			continue
		}
		end, err := time.Parse(ledger.DateLayout, t.get(row, "end_date"))
		if err != nil {
			t.skip(row, fmt.Errorf("end_date: %w", err))
			continue
		}
		s.RestoreLeave(ledger.LeaveRequest{
			ID:         t.get(row, "leave_id"),
			EmployeeID: t.get(row, "employee_id"),
			StartDate:  start,
			EndDate:    end,
			Reason:     t.get(row, "reason"),
			Status:     ledger.LeaveStatus(t.get(row, "status")),
		})
	}
	return nil
}

func (r *Repository) SaveLeaves(leaves []ledger.LeaveRequest) error {
	rows := make([][]string, 0, len(leaves))
	for _, l := range leaves {
		rows = append(rows, []string{
			l.ID,
			l.EmployeeID,
			l.StartDate.Format(ledger.DateLayout),
			l.EndDate.Format(ledger.DateLayout),
			l.Reason,
			string(l.Status),
		})
	}
	return WriteTable(r.path(LeavesFile), LeaveColumns, rows)
}

func (r *Repository) loadPayrolls(s *ledger.Store) error {
	t, err := readTable(r.path(PayrollsFile), payrollRequired)
	if err != nil {
		return err
	}
	for _, row := range t.rows {
		rec, err := parsePayroll(t, row)
		if err != nil {
			t.skip(row, err)
			continue
		}
		s.RestorePayroll(rec)
	}
	return nil
}

func parsePayroll(t *table, r row) (ledger.PayrollRecord, error) {
	rec := ledger.PayrollRecord{
		ID:          t.get(r, "payroll_id"),
		EmployeeID:  t.get(r, "emp_id"),
		PayslipPath: t.get(r, "payslip_path"),
	}
	var err error
	if rec.Year, err = parseInt("year", t.get(r, "year")); err != nil {
		return rec, err
	}
	if rec.Month, err = parseInt("month", t.get(r, "month")); err != nil {
		return rec, err
	}
	amounts := []struct {
		col string
		dst *float64
	}{
		{"gross", &rec.Gross},
		{"tax", &rec.Tax},
		{"other_deductions", &rec.OtherDeductions},
		{"net", &rec.Net},
	}
	for _, a := range amounts {
		if *a.dst, err = parseFloat(a.col, t.get(r, a.col)); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

func (r *Repository) SavePayrolls(records []ledger.PayrollRecord) error {
	return WritePayrolls(r.path(PayrollsFile), records)
}

// WritePayrolls writes records in the payroll layout to an arbitrary path.
func WritePayrolls(path string, records []ledger.PayrollRecord) error {
	rows := make([][]string, 0, len(records))
	for _, p := range records {
		rows = append(rows, PayrollRow(p))
	}
	return WriteTable(path, PayrollColumns, rows)
}

func PayrollRow(p ledger.PayrollRecord) []string {
	return []string{
		p.ID,
		p.EmployeeID,
		strconv.Itoa(p.Year),
		strconv.Itoa(p.Month),
		formatFloat(p.Gross),
		formatFloat(p.Tax),
		formatFloat(p.OtherDeductions),
		formatFloat(p.Net),
		p.PayslipPath,
	}
}
