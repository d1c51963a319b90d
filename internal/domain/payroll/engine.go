package payroll

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ems/internal/domain/ledger"
	"ems/internal/platform/flatfile"
)

type Store interface {
	Employee(id string) (ledger.Employee, error)
	Employees() []ledger.Employee
	AddPayroll(rec ledger.PayrollRecord) ledger.PayrollRecord
	Payrolls() []ledger.PayrollRecord
	PayrollsForPeriod(year, month int) []ledger.PayrollRecord
	Now() time.Time
}

type Saver interface {
	SavePayrolls(records []ledger.PayrollRecord) error
}

type Options struct {
	ReportDir string
	// PDF also writes a .pdf payslip next to each text payslip.
	PDF bool
}

type Engine struct {
	store Store
	saver Saver
	opts  Options
}

func NewEngine(store Store, saver Saver, opts Options) *Engine {
	if opts.ReportDir == "" {
		opts.ReportDir = "reports"
	}
	return &Engine{store: store, saver: saver, opts: opts}
}

func (e *Engine) ReportDir() string {
	return e.opts.ReportDir
}

// ComputePayslip calculates pay for one employee, writes the payslip and
// appends a payroll record. Calling it twice for a period yields two records.
func (e *Engine) ComputePayslip(employeeID string, year, month int, otherDeductions float64) (ledger.PayrollRecord, error) {
	if !ValidPeriod(year, month) {
		return ledger.PayrollRecord{}, ErrInvalidPeriod
	}
	if otherDeductions < 0 {
		return ledger.PayrollRecord{}, ErrNegativeDeduction
	}
	emp, err := e.store.Employee(employeeID)
	if err != nil {
		return ledger.PayrollRecord{}, err
	}

	slip := NewPayslip(emp, year, month, Compute(emp.BasicSalary, otherDeductions), e.store.Now())
	if err := os.MkdirAll(e.opts.ReportDir, 0o755); err != nil {
		return ledger.PayrollRecord{}, fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(e.opts.ReportDir, PayslipFileName(emp.ID, year, month))
	if err := writeTextPayslip(path, slip); err != nil {
		return ledger.PayrollRecord{}, err
	}
	if e.opts.PDF {
		pdfPath := strings.TrimSuffix(path, ".txt") + ".pdf"
		if err := writePDFPayslip(pdfPath, slip); err != nil {
			slog.Warn("pdf payslip failed", "employeeId", emp.ID, "path", pdfPath, "err", err)
		}
	}
	return e.store.AddPayroll(slip.Record(path)), nil
}

// GenerateMonthlyPayroll pays every employee in roster order and then
// persists the whole payroll collection. Per-employee failures are logged
// and left out of the result.
func (e *Engine) GenerateMonthlyPayroll(year, month int, deductions map[string]float64) ([]ledger.PayrollRecord, error) {
	if !ValidPeriod(year, month) {
		return nil, ErrInvalidPeriod
	}
	var records []ledger.PayrollRecord
	for _, emp := range e.store.Employees() {
		rec, err := e.ComputePayslip(emp.ID, year, month, deductions[emp.ID])
		if err != nil {
			slog.Warn("payslip skipped", "employeeId", emp.ID, "period", Period(year, month), "err", err)
			continue
		}
		records = append(records, rec)
	}
	if e.saver != nil {
		if err := e.saver.SavePayrolls(e.store.Payrolls()); err != nil {
			return records, fmt.Errorf("save payrolls: %w", err)
		}
	}
	return records, nil
}

// ExportPayrollCSV writes the period's records in the payroll layout. An
// empty outPath means payroll_YYYY_MM.csv in the report directory.
func (e *Engine) ExportPayrollCSV(year, month int, outPath string) (string, error) {
	if !ValidPeriod(year, month) {
		return "", ErrInvalidPeriod
	}
	if outPath == "" {
		outPath = filepath.Join(e.opts.ReportDir, ExportFileName(year, month, "csv"))
	}
	if err := flatfile.WritePayrolls(outPath, e.store.PayrollsForPeriod(year, month)); err != nil {
		return "", err
	}
	return outPath, nil
}
