package payroll

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ems/internal/domain/ledger"
)

var fixedNow = time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)

type fakeSaver struct {
	saved [][]ledger.PayrollRecord
	err   error
}

func (f *fakeSaver) SavePayrolls(records []ledger.PayrollRecord) error {
	f.saved = append(f.saved, records)
	return f.err
}

func newFixture(t *testing.T, opts Options) (*ledger.Store, *fakeSaver, *Engine) {
	t.Helper()
	seq := 0
	store := ledger.NewStore(
		ledger.WithClock(func() time.Time { return fixedNow }),
		ledger.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%03d", seq)
		}),
	)
	if opts.ReportDir == "" {
		opts.ReportDir = t.TempDir()
	}
	saver := &fakeSaver{}
	return store, saver, NewEngine(store, saver, opts)
}

func addEmployee(t *testing.T, s *ledger.Store, name string, salary float64) ledger.Employee {
	t.Helper()
	e, err := s.AddEmployee(ledger.NewEmployee{Name: name, Role: "Engineer", Department: "Engineering", BasicSalary: salary})
	require.NoError(t, err)
	return e
}

func TestComputePayslipWritesTextPayslip(t *testing.T) {
	store, _, engine := newFixture(t, Options{})
	alice := addEmployee(t, store, "Alice Smith", 60000)

	rec, err := engine.ComputePayslip(alice.ID, 2025, 3, 0)
	require.NoError(t, err)

	assert.Equal(t, 78000.0, rec.Gross)
	assert.Equal(t, 8308.33, rec.Tax)
	assert.Equal(t, 69691.67, rec.Net)
	assert.Equal(t, filepath.Join(engine.ReportDir(), "payslip_id-001_2025_3.txt"), rec.PayslipPath)
	assert.Equal(t, fixedNow, rec.GeneratedAt)

	raw, err := os.ReadFile(rec.PayslipPath)
	require.NoError(t, err)
	want := strings.Join([]string{
		"PAYSLIP",
		"=======",
		"Employee: Alice Smith (id-001)",
		"Role: Engineer | Dept: Engineering",
		"Period: 2025-03",
		"",
		"Basic Salary: 60000.00",
		"HRA (20%): 12000.00",
		"Allowances (10%): 6000.00",
		"Gross (monthly): 78000.00",
		"",
		"Annual Tax (est): 99700.00",
		"Monthly Tax (est): 8308.33",
		"Other Deductions: 0.00",
		"",
		"Net Pay (monthly): 69691.67",
		"",
		"Generated at: 2025-03-31T12:00:00Z",
		"",
	}, "\n")
	assert.Equal(t, want, string(raw))

	_, err = os.Stat(strings.TrimSuffix(rec.PayslipPath, ".txt") + ".pdf")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestComputePayslipWritesPDFWhenEnabled(t *testing.T) {
	store, _, engine := newFixture(t, Options{PDF: true})
	alice := addEmployee(t, store, "Alice Smith", 60000)

	rec, err := engine.ComputePayslip(alice.ID, 2025, 3, 250)
	require.NoError(t, err)

	info, err := os.Stat(strings.TrimSuffix(rec.PayslipPath, ".txt") + ".pdf")
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestComputePayslipErrors(t *testing.T) {
	store, _, engine := newFixture(t, Options{})
	alice := addEmployee(t, store, "Alice Smith", 60000)

	_, err := engine.ComputePayslip("missing", 2025, 3, 0)
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	_, err = engine.ComputePayslip(alice.ID, 2025, 13, 0)
	assert.ErrorIs(t, err, ledger.ErrValidation)

	_, err = engine.ComputePayslip(alice.ID, 2025, 3, -1)
	assert.ErrorIs(t, err, ledger.ErrValidation)

	assert.Empty(t, store.Payrolls())
}

// A second run for the same period is not deduplicated.
func TestComputePayslipTwiceKeepsBothRecords(t *testing.T) {
	store, _, engine := newFixture(t, Options{})
	alice := addEmployee(t, store, "Alice Smith", 60000)

	first, err := engine.ComputePayslip(alice.ID, 2025, 3, 0)
	require.NoError(t, err)
	second, err := engine.ComputePayslip(alice.ID, 2025, 3, 0)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, store.PayrollsForPeriod(2025, 3), 2)
}

func TestGenerateMonthlyPayroll(t *testing.T) {
	store, saver, engine := newFixture(t, Options{})
	alice := addEmployee(t, store, "Alice Smith", 60000)
	bob := addEmployee(t, store, "Bob Jones", 20000)

	records, err := engine.GenerateMonthlyPayroll(2025, 3, map[string]float64{bob.ID: 500})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, alice.ID, records[0].EmployeeID)
	assert.Equal(t, bob.ID, records[1].EmployeeID)
	assert.Equal(t, 500.0, records[1].OtherDeductions)
	// 26000 gross, 312000 annual, 3100 tax, 258.33 monthly.
	assert.Equal(t, 26000.0, records[1].Gross)
	assert.Equal(t, 258.33, records[1].Tax)
	assert.Equal(t, 25241.67, records[1].Net)

	require.Len(t, saver.saved, 1)
	assert.Len(t, saver.saved[0], 2)
}

func TestGenerateMonthlyPayrollSkipsInvalidDeductions(t *testing.T) {
	store, saver, engine := newFixture(t, Options{})
	alice := addEmployee(t, store, "Alice Smith", 60000)
	addEmployee(t, store, "Bob Jones", 20000)

	records, err := engine.GenerateMonthlyPayroll(2025, 3, map[string]float64{alice.ID: -10})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Bob Jones", mustName(t, store, records[0].EmployeeID))
	require.Len(t, saver.saved, 1)
}

func TestGenerateMonthlyPayrollSaveFailure(t *testing.T) {
	store, saver, engine := newFixture(t, Options{})
	addEmployee(t, store, "Alice Smith", 60000)
	saver.err = errors.New("disk full")

	records, err := engine.GenerateMonthlyPayroll(2025, 3, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Len(t, records, 1)
}

func TestExportPayrollCSV(t *testing.T) {
	store, _, engine := newFixture(t, Options{})
	alice := addEmployee(t, store, "Alice Smith", 60000)
	_, err := engine.ComputePayslip(alice.ID, 2025, 3, 0)
	require.NoError(t, err)
	_, err = engine.ComputePayslip(alice.ID, 2025, 4, 0)
	require.NoError(t, err)

	path, err := engine.ExportPayrollCSV(2025, 3, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(engine.ReportDir(), "payroll_2025_03.csv"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "payroll_id,emp_id,year,month,gross,tax,other_deductions,net,payslip_path", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "id-002,id-001,2025,3,78000,8308.33,0,69691.67,"))
}

func TestExportPayrollXLSX(t *testing.T) {
	store, _, engine := newFixture(t, Options{})
	alice := addEmployee(t, store, "Alice Smith", 60000)
	_, err := engine.ComputePayslip(alice.ID, 2025, 3, 0)
	require.NoError(t, err)

	path, err := engine.ExportPayrollXLSX(2025, 3, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(engine.ReportDir(), "payroll_2025_03.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(payrollSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "payroll_id", rows[0][0])
	assert.Equal(t, "id-001", rows[1][1])
	assert.Equal(t, "78000", rows[1][4])
}

func mustName(t *testing.T, s *ledger.Store, id string) string {
	t.Helper()
	e, err := s.Employee(id)
	require.NoError(t, err)
	return e.Name
}
