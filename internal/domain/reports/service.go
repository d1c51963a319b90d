package reports

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ems/internal/domain/ledger"
	"ems/internal/domain/performance"
)

type Ledger interface {
	performance.Ledger
	Roster() []ledger.Roster
	Leaderboard(topN int) []ledger.LeaderboardEntry
	Now() time.Time
}

type Service struct {
	ledger    Ledger
	perf      *performance.Service
	reportDir string
}

func NewService(l Ledger, perf *performance.Service, reportDir string) *Service {
	if reportDir == "" {
		reportDir = "reports"
	}
	return &Service{ledger: l, perf: perf, reportDir: reportDir}
}

// EmployeeReport writes employee_report_<id>.txt and returns its path.
func (s *Service) EmployeeReport(employeeID string) (string, error) {
	e, err := s.ledger.Employee(employeeID)
	if err != nil {
		return "", err
	}
	return s.write(EmployeeReportPrefix+e.ID+".txt", s.employeeLines(e))
}

func (s *Service) employeeLines(e ledger.Employee) []string {
	badges := "None"
	if len(e.Badges) > 0 {
		badges = strings.Join(e.Badges, ", ")
	}
	lines := []string{
		"EMPLOYEE REPORT",
		"================",
		"Name: " + e.Name,
		"Email: " + e.Email,
		"Role: " + e.Role,
		"Department: " + e.Department,
		fmt.Sprintf("Basic Salary: %.2f", e.BasicSalary),
		fmt.Sprintf("Points: %d", e.Points),
		"Badges: " + badges,
		"",
		"Tasks:",
	}
	for _, id := range e.TaskIDs {
		t, err := s.ledger.Task(id)
		if err != nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s | Status: %s | Progress: %d%% | Due: %s",
			t.Title, t.Status, t.ProgressPercent, formatDay(t.DueDate)))
	}

	lines = append(lines, "", "Recent Progress Notes:")
	for _, n := range lastN(e.ProgressNotes, recentLimit) {
		lines = append(lines, fmt.Sprintf("[%s] %s", n.At.Format(time.RFC3339), n.Text))
	}

	lines = append(lines, "", "Attendance (last 10):")
	for _, rec := range lastN(e.Attendance, recentLimit) {
		lines = append(lines, fmt.Sprintf("- %s: in=%s out=%s hours=%s",
			rec.Date.Format(ledger.DateLayout), formatClock(rec.CheckIn), formatClock(rec.CheckOut),
			strconv.FormatFloat(rec.Hours, 'f', -1, 64)))
	}
	return lines
}

// CompanyReport writes company_report.txt with the roster, the leaderboard
// and the company completion rate.
func (s *Service) CompanyReport() (string, error) {
	lines := []string{
		"COMPANY REPORT",
		"================",
		"Generated at: " + s.ledger.Now().Format(time.RFC3339),
		"",
		"Employees:",
	}
	for _, r := range s.ledger.Roster() {
		lines = append(lines, fmt.Sprintf("- %s (%s) Dept: %s Salary: %.2f", r.Name, r.Role, r.Department, r.BasicSalary))
	}
	lines = append(lines, "", "Leaderboard:")
	for i, entry := range s.ledger.Leaderboard(ledger.DefaultLeaderboardSize) {
		lines = append(lines, fmt.Sprintf("%d. %s - Points: %d Completed: %d", i+1, entry.Name, entry.Points, entry.Completed))
	}
	lines = append(lines, "", fmt.Sprintf("Task Completion Rate: %s%%",
		strconv.FormatFloat(s.perf.CompanyCompletionRate(), 'f', -1, 64)))
	return s.write(CompanyReportFile, lines)
}

func (s *Service) write(name string, lines []string) (string, error) {
	if err := os.MkdirAll(s.reportDir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(s.reportDir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path, nil
}

func lastN[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}

func formatDay(t *time.Time) string {
	if t == nil {
		return "None"
	}
	return t.Format(ledger.DateLayout)
}

func formatClock(t *time.Time) string {
	if t == nil {
		return "None"
	}
	return t.Format(ledger.ClockLayout)
}
