package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignBadgeIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	e := mustEmployee(t, s, "Charlie Ray", "Design", 35000)

	granted, err := s.AssignBadge(e.ID, "Mentor")
	require.NoError(t, err)
	assert.True(t, granted)
	granted, err = s.AssignBadge(e.ID, "Mentor")
	require.NoError(t, err)
	assert.False(t, granted)

	got, _ := s.Employee(e.ID)
	assert.Equal(t, []string{"Mentor"}, got.Badges)
	assert.Equal(t, BadgeBonus, got.Points)
}

func TestAwardPointsNeverNegative(t *testing.T) {
	s := newTestStore(t)
	e := mustEmployee(t, s, "Charlie Ray", "Design", 35000)

	points, err := s.AwardPoints(e.ID, 80)
	require.NoError(t, err)
	assert.Equal(t, 80, points)

	points, err = s.AwardPoints(e.ID, -200)
	require.NoError(t, err)
	assert.Equal(t, 0, points)

	_, err = s.AwardPoints("missing", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLeaderboardOrdering(t *testing.T) {
	s := newTestStore(t)
	a := mustEmployee(t, s, "A", "Eng", 1)
	b := mustEmployee(t, s, "B", "Eng", 1)
	c := mustEmployee(t, s, "C", "Eng", 1)
	d := mustEmployee(t, s, "D", "Eng", 1)

	_, _ = s.AwardPoints(a.ID, 100)
	_, _ = s.AwardPoints(b.ID, 150)
	_, _ = s.AwardPoints(c.ID, 100)
	_, _ = s.AwardPoints(d.ID, 100)

	done, _ := s.CreateTask(NewTask{Title: "done", AssigneeID: c.ID})
	_, _ = s.UpdateTaskProgress(done.ID, 100, "")

	board := s.Leaderboard(0)
	require.Len(t, board, 4)
	names := []string{board[0].Name, board[1].Name, board[2].Name, board[3].Name}
	assert.Equal(t, []string{"B", "C", "A", "D"}, names)
	assert.Equal(t, 1, board[1].Completed)

	top := s.Leaderboard(2)
	require.Len(t, top, 2)
	assert.Equal(t, "B", top[0].Name)
}
