package ledger

import "time"

type Employee struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Role          string             `json:"role"`
	Department    string             `json:"department"`
	Email         string             `json:"email"`
	Active        bool               `json:"active"`
	BasicSalary   float64            `json:"basicSalary"`
	Points        int                `json:"points"`
	Badges        []string           `json:"badges"`
	TaskIDs       []string           `json:"taskIds"`
	Attendance    []AttendanceRecord `json:"attendance"`
	ProgressNotes []Note             `json:"progressNotes"`
	LeaveIDs      []string           `json:"leaveIds"`
}

// AttendanceRecord is one calendar day of presence for an employee.
// Hours is only derived at check-out.
type AttendanceRecord struct {
	Date     time.Time  `json:"date"`
	CheckIn  *time.Time `json:"checkIn,omitempty"`
	CheckOut *time.Time `json:"checkOut,omitempty"`
	Hours    float64    `json:"hours"`
}

type Note struct {
	At   time.Time `json:"ts"`
	Text string    `json:"note"`
}

type Task struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	AssigneeID      string     `json:"assigneeId,omitempty"`
	Priority        Priority   `json:"priority"`
	Status          TaskStatus `json:"status"`
	DueDate         *time.Time `json:"dueDate,omitempty"`
	ProgressPercent int        `json:"progressPercent"`
	Comments        string     `json:"comments,omitempty"`
	Attachment      string     `json:"attachment,omitempty"`
	Updates         []Note     `json:"updates"`
	CreatedAt       time.Time  `json:"createdAt"`
}

type LeaveRequest struct {
	ID          string      `json:"id"`
	EmployeeID  string      `json:"employeeId"`
	StartDate   time.Time   `json:"startDate"`
	EndDate     time.Time   `json:"endDate"`
	Reason      string      `json:"reason"`
	Status      LeaveStatus `json:"status"`
	RequestedAt time.Time   `json:"requestedAt"`
}

type PayrollRecord struct {
	ID              string    `json:"id"`
	EmployeeID      string    `json:"employeeId"`
	Year            int       `json:"year"`
	Month           int       `json:"month"`
	Gross           float64   `json:"gross"`
	Tax             float64   `json:"tax"`
	OtherDeductions float64   `json:"otherDeductions"`
	Net             float64   `json:"net"`
	PayslipPath     string    `json:"payslipPath"`
	GeneratedAt     time.Time `json:"generatedAt"`
}

type NewEmployee struct {
	Name        string
	Role        string
	Department  string
	Email       string
	BasicSalary float64
}

// EmployeeUpdate lists the mutable employee fields. Nil fields are left untouched.
type EmployeeUpdate struct {
	Name        *string
	Role        *string
	Department  *string
	Email       *string
	Active      *bool
	BasicSalary *float64
	Points      *int
}

type NewTask struct {
	Title      string
	AssigneeID string
	Priority   Priority
	DueDate    *time.Time
	Comments   string
	Attachment string
}

type LeaderboardEntry struct {
	EmployeeID string `json:"employeeId"`
	Name       string `json:"name"`
	Points     int    `json:"points"`
	Completed  int    `json:"completed"`
}
