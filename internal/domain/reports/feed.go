package reports

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ems/internal/domain/ledger"
	"ems/internal/domain/performance"
)

// ProgressFeed builds one dashboard row per employee from ledger state.
// Efficiency is the average task progress and attendance is the attendance
// score, so an employee with no attendance history reads as neutral.
func (s *Service) ProgressFeed() []FeedRow {
	employees := s.ledger.Employees()
	rows := make([]FeedRow, 0, len(employees))
	for _, e := range employees {
		snap, err := s.perf.Snapshot(e.ID)
		if err != nil {
			continue
		}
		behavior, err := s.perf.BehaviorScore(e.ID)
		if err != nil {
			continue
		}
		row := FeedRow{
			Name:           e.Name,
			Department:     e.Department,
			TasksCompleted: snap.TasksCompleted,
			TasksPending:   snap.TasksPending,
			TasksAssigned:  snap.TasksCompleted + snap.TasksPending,
			Efficiency:     snap.Efficiency,
			Attendance:     ledger.Round2(snap.Attendance),
			Progress:       ledger.Round2(snap.Progress()),
			BasicSalary:    e.BasicSalary,
			BehaviorScore:  behavior,
		}
		rows = append(rows, row)
	}
	ApplyForecast(rows, 0, 0)
	return rows
}

func (s *Service) WriteProgressFeed(w io.Writer) error {
	return WriteFeed(w, s.ProgressFeed())
}

func WriteFeed(w io.Writer, rows []FeedRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(FeedColumns); err != nil {
		return fmt.Errorf("write feed header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.Name,
			r.Department,
			num(r.TasksCompleted),
			num(r.TasksPending),
			num(r.TasksAssigned),
			num(r.Efficiency),
			num(r.Attendance),
			num(r.Progress),
			num(r.BasicSalary),
			num(r.BehaviorScore),
			num(r.PredictedNext),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write feed row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadProgressFeed parses an uploaded feed. Missing required columns fail the
// whole feed; non-numeric cells read as 0. Assigned tasks and progress are
// always derived from the completed and pending counts.
func ReadProgressFeed(r io.Reader) ([]FeedRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ledger.FieldError{Field: ColName, Reason: "feed is empty"}
	}
	if err != nil {
		return nil, fmt.Errorf("read feed header: %w", err)
	}
	index := map[string]int{}
	for i, col := range header {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		if _, dup := index[col]; !dup {
			index[col] = i
		}
	}
	for _, col := range FeedRequiredColumns {
		if _, ok := index[col]; !ok {
			return nil, &ledger.FieldError{Field: col, Reason: "missing required column"}
		}
	}

	cell := func(record []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	value := func(record []string, col string) float64 {
		v, err := strconv.ParseFloat(cell(record, col), 64)
		if err != nil {
			return 0
		}
		return v
	}

	var rows []FeedRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read feed: %w", err)
		}
		row := FeedRow{
			Name:           cell(record, ColName),
			Department:     cell(record, ColDepartment),
			TasksCompleted: value(record, ColTasksCompleted),
			TasksPending:   value(record, ColTasksPending),
			Efficiency:     value(record, ColEfficiency),
			Attendance:     value(record, ColAttendance),
			BasicSalary:    value(record, ColBasicSalary),
			BehaviorScore:  value(record, ColBehaviorScore),
		}
		row.TasksAssigned = row.TasksCompleted + row.TasksPending
		row.Progress = ledger.Round2(row.snapshot().Progress())
		rows = append(rows, row)
	}
	ApplyForecast(rows, 0, 0)
	return rows, nil
}

// ApplyForecast recomputes PredictedNext for every row under the given
// attendance and completed-task adjustments, both in percent. The efficiency
// model is trained on the unadjusted rows themselves.
func ApplyForecast(rows []FeedRow, attendanceAdjPct, tasksCompletedAdjPct float64) {
	samples := make([]performance.EfficiencySnapshot, len(rows))
	for i, r := range rows {
		samples[i] = r.snapshot()
	}
	f := performance.NewForecaster(samples)
	for i := range rows {
		rows[i].PredictedNext = ledger.Round2(f.Forecast(samples[i], attendanceAdjPct, tasksCompletedAdjPct))
	}
}

func (r FeedRow) snapshot() performance.EfficiencySnapshot {
	return performance.EfficiencySnapshot{
		Efficiency:     r.Efficiency,
		Attendance:     r.Attendance,
		TasksCompleted: r.TasksCompleted,
		TasksPending:   r.TasksPending,
		BasicSalary:    r.BasicSalary,
	}
}

// Summarize reports feed-wide averages plus the top performer by efficiency
// and the employee with the lowest attendance. Ties keep the first row.
func Summarize(rows []FeedRow) FeedSummary {
	sum := FeedSummary{Employees: len(rows)}
	if len(rows) == 0 {
		return sum
	}
	var eff, att, pred float64
	top, low := rows[0], rows[0]
	for _, r := range rows {
		eff += r.Efficiency
		att += r.Attendance
		pred += r.PredictedNext
		if r.Efficiency > top.Efficiency {
			top = r
		}
		if r.Attendance < low.Attendance {
			low = r
		}
	}
	n := float64(len(rows))
	sum.AvgEfficiency = ledger.Round2(eff / n)
	sum.AvgAttendance = ledger.Round2(att / n)
	sum.AvgPredicted = ledger.Round2(pred / n)
	sum.TopPerformer = top.Name
	sum.LowestAttendance = low.Name
	return sum
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
