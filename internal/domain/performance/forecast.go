package performance

import "math"

// Progress is the completed share of assigned tasks as a percentage.
func (s EfficiencySnapshot) Progress() float64 {
	assigned := s.TasksCompleted + s.TasksPending
	if assigned <= 0 {
		return 0
	}
	return s.TasksCompleted / assigned * 100
}

// ForecastEfficiency estimates next month's efficiency by scaling the current
// efficiency with the relative change in attendance and task progress.
// Any degenerate result falls back to the current efficiency.
func ForecastEfficiency(s EfficiencySnapshot, attendanceAdjPct, tasksCompletedAdjPct float64) float64 {
	attendance := math.Max(0, s.Attendance*(1+attendanceAdjPct/100))
	adjusted := s
	adjusted.TasksCompleted = math.Max(0, s.TasksCompleted*(1+tasksCompletedAdjPct/100))
	progress := adjusted.Progress()

	baseProgress := s.Progress()
	if baseProgress <= 0 {
		baseProgress = 1
	}
	eff := s.Efficiency *
		(attendance / math.Max(minDivisor, s.Attendance)) *
		(progress / math.Max(minDivisor, baseProgress))
	if math.IsNaN(eff) || math.IsInf(eff, 0) || eff <= 0 {
		return s.Efficiency
	}
	return clampPercent(eff)
}

// ProjectEfficiency extends current and next-month values into a damped
// monthly series of the given length.
func ProjectEfficiency(current, next float64, months int) []float64 {
	if months <= 0 {
		months = ProjectionMonths
	}
	values := []float64{current}
	if months == 1 {
		return values
	}
	values = append(values, next)
	step := (next - current) / projectionPace
	for i := 2; i < months; i++ {
		v := values[len(values)-1] + step*math.Pow(projectionDamping, float64(i-2))
		values = append(values, clampPercent(v))
	}
	return values
}

func clampPercent(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}
