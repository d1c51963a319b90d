package performance

import (
	"time"

	"ems/internal/domain/ledger"
)

// Ledger is the read surface analytics needs. *ledger.Store satisfies it.
type Ledger interface {
	Employee(id string) (ledger.Employee, error)
	Employees() []ledger.Employee
	Task(id string) (ledger.Task, error)
	Tasks() []ledger.Task
	Today() time.Time
}

// Service derives read-only metrics. Nothing it computes is cached.
type Service struct {
	ledger Ledger
}

func NewService(l Ledger) *Service {
	return &Service{ledger: l}
}

func (s *Service) EmployeeKPI(employeeID string) (KPI, error) {
	e, err := s.ledger.Employee(employeeID)
	if err != nil {
		return KPI{}, err
	}
	return s.kpiFor(e), nil
}

func (s *Service) kpiFor(e ledger.Employee) KPI {
	k := KPI{EmployeeID: e.ID, Assigned: len(e.TaskIDs)}
	progressSum := 0
	for _, id := range e.TaskIDs {
		t, err := s.ledger.Task(id)
		if err != nil {
			continue
		}
		progressSum += t.ProgressPercent
		if t.Status == ledger.StatusCompleted {
			k.Completed++
		}
	}
	if k.Assigned > 0 {
		k.AvgProgress = ledger.Round2(float64(progressSum) / float64(k.Assigned))
	}
	k.Hours = ledger.Round2(e.TotalHours())
	return k
}

// BehaviorScore blends attendance regularity with task punctuality.
func (s *Service) BehaviorScore(employeeID string) (float64, error) {
	b, err := s.Behavior(employeeID)
	if err != nil {
		return 0, err
	}
	return b.Score, nil
}

func (s *Service) Behavior(employeeID string) (Behavior, error) {
	e, err := s.ledger.Employee(employeeID)
	if err != nil {
		return Behavior{}, err
	}
	return s.behaviorFor(e, s.ledger.Today()), nil
}

func (s *Service) behaviorFor(e ledger.Employee, today time.Time) Behavior {
	b := Behavior{EmployeeID: e.ID}
	b.AttendanceScore = AttendanceScore(e.PresentDays(), len(e.Attendance))
	for _, id := range e.TaskIDs {
		t, err := s.ledger.Task(id)
		if err != nil {
			continue
		}
		if t.Overdue(today) {
			b.LateTasks++
		}
	}
	b.LateScore = LateScore(b.LateTasks)
	b.Score = CombineBehavior(b.AttendanceScore, b.LateScore)
	return b
}

// DepartmentPerformance averages the avg-progress KPI per department.
// Employees without a department are grouped under UnknownDepartment.
func (s *Service) DepartmentPerformance() map[string]float64 {
	groups := map[string][]float64{}
	for _, e := range s.ledger.Employees() {
		dept := e.Department
		if dept == "" {
			dept = UnknownDepartment
		}
		groups[dept] = append(groups[dept], s.kpiFor(e).AvgProgress)
	}
	out := make(map[string]float64, len(groups))
	for dept, scores := range groups {
		out[dept] = ledger.Round2(mean(scores))
	}
	return out
}

func (s *Service) CompanyCompletionRate() float64 {
	tasks := s.ledger.Tasks()
	done := 0
	for _, t := range tasks {
		if t.Status == ledger.StatusCompleted {
			done++
		}
	}
	return CompletionRate(done, len(tasks))
}

// Snapshot builds the forecast input row for one employee from ledger state.
func (s *Service) Snapshot(employeeID string) (EfficiencySnapshot, error) {
	e, err := s.ledger.Employee(employeeID)
	if err != nil {
		return EfficiencySnapshot{}, err
	}
	k := s.kpiFor(e)
	return EfficiencySnapshot{
		Efficiency:     k.AvgProgress,
		Attendance:     AttendanceScore(e.PresentDays(), len(e.Attendance)),
		TasksCompleted: float64(k.Completed),
		TasksPending:   float64(k.Assigned - k.Completed),
		BasicSalary:    e.BasicSalary,
	}, nil
}

// Forecaster trains the efficiency model on every employee's snapshot.
func (s *Service) Forecaster() Forecaster {
	employees := s.ledger.Employees()
	samples := make([]EfficiencySnapshot, 0, len(employees))
	for _, e := range employees {
		if snap, err := s.Snapshot(e.ID); err == nil {
			samples = append(samples, snap)
		}
	}
	return NewForecaster(samples)
}
