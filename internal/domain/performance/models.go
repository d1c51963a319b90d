package performance

type KPI struct {
	EmployeeID  string  `json:"employeeId"`
	Assigned    int     `json:"assigned"`
	Completed   int     `json:"completed"`
	AvgProgress float64 `json:"avgProgress"`
	Hours       float64 `json:"hours"`
}

type Behavior struct {
	EmployeeID      string  `json:"employeeId"`
	AttendanceScore float64 `json:"attendanceScore"`
	LateTasks       int     `json:"lateTasks"`
	LateScore       float64 `json:"lateScore"`
	Score           float64 `json:"score"`
}

// EfficiencySnapshot is the per-employee row the efficiency forecast works on.
type EfficiencySnapshot struct {
	Efficiency     float64 `json:"efficiency"`
	Attendance     float64 `json:"attendance"`
	TasksCompleted float64 `json:"tasksCompleted"`
	TasksPending   float64 `json:"tasksPending"`
	BasicSalary    float64 `json:"basicSalary"`
}
