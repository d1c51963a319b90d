package ledger

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	seq := 0
	return NewStore(
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%03d", seq)
		}),
	)
}

func mustEmployee(t *testing.T, s *Store, name, department string, salary float64) Employee {
	t.Helper()
	e, err := s.AddEmployee(NewEmployee{Name: name, Role: RoleEmployee, Department: department, BasicSalary: salary})
	require.NoError(t, err)
	return e
}

func clock(h, m, sec int) time.Time {
	return time.Date(fixedNow.Year(), fixedNow.Month(), fixedNow.Day(), h, m, sec, 0, time.UTC)
}
