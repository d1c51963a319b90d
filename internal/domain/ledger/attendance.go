package ledger

import "time"

// CheckIn records the check-in time on today's attendance record, creating
// the record when none exists. A zero at means now.
func (s *Store) CheckIn(employeeID string, at time.Time) error {
	e, ok := s.employees[employeeID]
	if !ok {
		return ErrEmployeeNotFound
	}
	now := s.now()
	if at.IsZero() {
		at = now
	}
	today := DayOf(now)
	if rec := e.attendanceOn(today); rec != nil {
		rec.CheckIn = &at
		return nil
	}
	e.Attendance = append(e.Attendance, AttendanceRecord{Date: today, CheckIn: &at})
	return nil
}

// CheckOut records the check-out time on today's record and derives worked
// hours from the check-in clock time. Without a check-in hours stay 0.
func (s *Store) CheckOut(employeeID string, at time.Time) error {
	e, ok := s.employees[employeeID]
	if !ok {
		return ErrEmployeeNotFound
	}
	now := s.now()
	if at.IsZero() {
		at = now
	}
	today := DayOf(now)
	rec := e.attendanceOn(today)
	if rec == nil {
		e.Attendance = append(e.Attendance, AttendanceRecord{Date: today, CheckOut: &at})
		return nil
	}
	rec.CheckOut = &at
	if rec.CheckIn != nil {
		rec.Hours = WorkedHours(*rec.CheckIn, at)
	}
	return nil
}

// WorkedHours is the same-day duration between two clock times in hours,
// rounded to two decimals. Check-outs at or before check-in yield 0.
func WorkedHours(checkIn, checkOut time.Time) float64 {
	seconds := clockSeconds(checkOut) - clockSeconds(checkIn)
	if seconds <= 0 {
		return 0
	}
	return Round2(float64(seconds) / 3600.0)
}

// TotalHours sums every recorded attendance hour.
func (e Employee) TotalHours() float64 {
	total := 0.0
	for _, rec := range e.Attendance {
		total += rec.Hours
	}
	return total
}

// PresentDays counts attendance records with positive hours.
func (e Employee) PresentDays() int {
	present := 0
	for _, rec := range e.Attendance {
		if rec.Hours > 0 {
			present++
		}
	}
	return present
}

// clockSeconds is the time-of-day offset in whole seconds.
func clockSeconds(t time.Time) int {
	h, m, sec := t.Clock()
	return h*3600 + m*60 + sec
}
