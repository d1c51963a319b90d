package performance

import "ems/internal/domain/ledger"

// AttendanceScore is the share of attendance days with positive hours, as a
// percentage. Employees without history get the neutral score.
func AttendanceScore(presentDays, totalDays int) float64 {
	if totalDays <= 0 {
		return NeutralAttendanceScore
	}
	return float64(presentDays) / float64(totalDays) * 100
}

// LateScore deducts LatePenalty per overdue task, floored at zero.
func LateScore(lateTasks int) float64 {
	score := 100 - LatePenalty*float64(lateTasks)
	if score < 0 {
		return 0
	}
	return score
}

func CombineBehavior(attendanceScore, lateScore float64) float64 {
	return ledger.Round2(AttendanceWeight*attendanceScore + PunctualityWeight*lateScore)
}

// CompletionRate is done/total as a percentage, 0 when total is 0.
func CompletionRate(done, total int) float64 {
	if total <= 0 {
		return 0
	}
	return ledger.Round2(float64(done) / float64(total) * 100)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
