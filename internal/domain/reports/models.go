package reports

const (
	EmployeeReportPrefix = "employee_report_"
	CompanyReportFile    = "company_report.txt"

	recentLimit = 10
)

// Progress feed column names, in the order they are written.
const (
	ColName           = "Name"
	ColDepartment     = "Department"
	ColTasksCompleted = "Tasks_Completed"
	ColTasksPending   = "Tasks_Pending"
	ColTasksAssigned  = "Tasks_Assigned"
	ColEfficiency     = "Efficiency_%"
	ColAttendance     = "Attendance_%"
	ColProgress       = "Progress_%"
	ColBasicSalary    = "Basic_Salary"
	ColBehaviorScore  = "Behavior_Score"
	ColPredictedNext  = "Predicted_Eff_Next"
)

var FeedColumns = []string{
	ColName, ColDepartment, ColTasksCompleted, ColTasksPending, ColTasksAssigned,
	ColEfficiency, ColAttendance, ColProgress, ColBasicSalary, ColBehaviorScore, ColPredictedNext,
}

// FeedRequiredColumns must be present in an ingested progress feed.
var FeedRequiredColumns = []string{ColTasksCompleted, ColTasksPending, ColEfficiency, ColAttendance, ColBasicSalary, ColName}

// FeedRow is one employee line of the dashboard progress feed.
type FeedRow struct {
	Name           string  `json:"name"`
	Department     string  `json:"department"`
	TasksCompleted float64 `json:"tasksCompleted"`
	TasksPending   float64 `json:"tasksPending"`
	TasksAssigned  float64 `json:"tasksAssigned"`
	Efficiency     float64 `json:"efficiency"`
	Attendance     float64 `json:"attendance"`
	Progress       float64 `json:"progress"`
	BasicSalary    float64 `json:"basicSalary"`
	BehaviorScore  float64 `json:"behaviorScore"`
	PredictedNext  float64 `json:"predictedNext"`
}

// FeedSummary condenses a feed into the dashboard's highlight figures.
type FeedSummary struct {
	Employees        int     `json:"employees"`
	AvgEfficiency    float64 `json:"avgEfficiency"`
	AvgAttendance    float64 `json:"avgAttendance"`
	AvgPredicted     float64 `json:"avgPredicted"`
	TopPerformer     string  `json:"topPerformer,omitempty"`
	LowestAttendance string  `json:"lowestAttendance,omitempty"`
}
