package flatfile

const (
	EmployeesFile  = "employees.csv"
	TasksFile      = "tasks.csv"
	AttendanceFile = "attendance.csv"
	LeavesFile     = "leave_requests.csv"
	PayrollsFile   = "payrolls.csv"
	NotesFile      = "progress_notes.csv"

	attendancePresent = "Present"
	attendanceAbsent  = "Absent"

	badgeSeparator = ";"
)

var (
	EmployeeColumns   = []string{"id", "name", "role", "department", "email", "basic_salary", "points", "badges", "active"}
	TaskColumns       = []string{"task_id", "employee_id", "title", "priority", "status", "due_date", "comments", "attachment", "progress_percent"}
	AttendanceColumns = []string{"employee_id", "date", "status", "work_hours", "check_in", "check_out"}
	LeaveColumns      = []string{"leave_id", "employee_id", "start_date", "end_date", "reason", "status"}
	PayrollColumns    = []string{"payroll_id", "emp_id", "year", "month", "gross", "tax", "other_deductions", "net", "payslip_path"}
	NoteColumns       = []string{"employee_id", "timestamp", "note"}
)

// Columns a file must carry for its rows to be interpretable at all.
var (
	employeeRequired   = []string{"name"}
	taskRequired       = []string{"title"}
	attendanceRequired = []string{"employee_id", "date"}
	leaveRequired      = []string{"employee_id", "start_date", "end_date"}
	payrollRequired    = []string{"emp_id", "year", "month"}
	noteRequired       = []string{"employee_id", "note"}
)
