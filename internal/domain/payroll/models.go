package payroll

import (
	"fmt"
	"time"

	"ems/internal/domain/ledger"
)

// Payslip is the rendered view of one employee's pay for one period.
type Payslip struct {
	EmployeeID  string    `json:"employeeId"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	Department  string    `json:"department"`
	Year        int       `json:"year"`
	Month       int       `json:"month"`
	Breakdown   Breakdown `json:"breakdown"`
	GeneratedAt time.Time `json:"generatedAt"`
}

func NewPayslip(e ledger.Employee, year, month int, b Breakdown, at time.Time) Payslip {
	return Payslip{
		EmployeeID:  e.ID,
		Name:        e.Name,
		Role:        e.Role,
		Department:  e.Department,
		Year:        year,
		Month:       month,
		Breakdown:   b,
		GeneratedAt: at,
	}
}

func (p Payslip) Period() string {
	return Period(p.Year, p.Month)
}

// Period formats a payroll period as YYYY-MM.
func Period(year, month int) string {
	return fmt.Sprintf("%d-%02d", year, month)
}

// Record converts the payslip into the ledger's persisted payroll row.
func (p Payslip) Record(path string) ledger.PayrollRecord {
	return ledger.PayrollRecord{
		EmployeeID:      p.EmployeeID,
		Year:            p.Year,
		Month:           p.Month,
		Gross:           p.Breakdown.Gross,
		Tax:             p.Breakdown.MonthlyTax,
		OtherDeductions: p.Breakdown.OtherDeductions,
		Net:             p.Breakdown.Net,
		PayslipPath:     path,
		GeneratedAt:     p.GeneratedAt,
	}
}

// ValidPeriod reports whether year and month name a calendar month.
func ValidPeriod(year, month int) bool {
	return year > 0 && month >= 1 && month <= 12
}

func PayslipFileName(employeeID string, year, month int) string {
	return fmt.Sprintf("payslip_%s_%d_%d.txt", employeeID, year, month)
}

func ExportFileName(year, month int, ext string) string {
	return fmt.Sprintf("payroll_%d_%02d.%s", year, month, ext)
}
