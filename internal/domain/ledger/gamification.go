package ledger

import (
	"sort"
	"strings"
)

// AwardPoints adds delta to the employee's points. Negative deltas are
// accepted but the balance never drops below zero.
func (s *Store) AwardPoints(employeeID string, delta int) (int, error) {
	e, ok := s.employees[employeeID]
	if !ok {
		return 0, ErrEmployeeNotFound
	}
	e.Points += delta
	if e.Points < 0 {
		e.Points = 0
	}
	return e.Points, nil
}

// AssignBadge grants a badge once. The first grant adds BadgeBonus points;
// repeated grants are no-ops and report false.
func (s *Store) AssignBadge(employeeID, badge string) (bool, error) {
	e, ok := s.employees[employeeID]
	if !ok {
		return false, ErrEmployeeNotFound
	}
	badge = strings.TrimSpace(badge)
	if badge == "" {
		return false, invalid("badge", "is required")
	}
	for _, held := range e.Badges {
		if held == badge {
			return false, nil
		}
	}
	e.Badges = append(e.Badges, badge)
	e.Points += BadgeBonus
	return true, nil
}

// Leaderboard ranks employees by points, then completed tasks, both
// descending. Equal entries keep insertion order.
func (s *Store) Leaderboard(topN int) []LeaderboardEntry {
	if topN <= 0 {
		topN = DefaultLeaderboardSize
	}
	entries := make([]LeaderboardEntry, 0, len(s.employeeOrder))
	for _, id := range s.employeeOrder {
		e := s.employees[id]
		entries = append(entries, LeaderboardEntry{
			EmployeeID: e.ID,
			Name:       e.Name,
			Points:     e.Points,
			Completed:  s.CompletedTaskCount(e.ID),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].Completed > entries[j].Completed
	})
	if len(entries) > topN {
		entries = entries[:topN]
	}
	return entries
}
