package payroll

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// section groups payslip lines; the text renderer separates sections with a
// blank line and the PDF renderer with extra spacing.
type section []string

func (p Payslip) sections() []section {
	b := p.Breakdown
	return []section{
		{
			fmt.Sprintf("Employee: %s (%s)", p.Name, p.EmployeeID),
			fmt.Sprintf("Role: %s | Dept: %s", p.Role, p.Department),
			fmt.Sprintf("Period: %s", p.Period()),
		},
		{
			fmt.Sprintf("Basic Salary: %.2f", b.Basic),
			fmt.Sprintf("HRA (20%%): %.2f", b.HRA),
			fmt.Sprintf("Allowances (10%%): %.2f", b.Allowances),
			fmt.Sprintf("Gross (monthly): %.2f", b.Gross),
		},
		{
			fmt.Sprintf("Annual Tax (est): %.2f", b.AnnualTax),
			fmt.Sprintf("Monthly Tax (est): %.2f", b.MonthlyTax),
			fmt.Sprintf("Other Deductions: %.2f", b.OtherDeductions),
		},
		{
			fmt.Sprintf("Net Pay (monthly): %.2f", b.Net),
		},
	}
}

func (p Payslip) generatedLine() string {
	return "Generated at: " + p.GeneratedAt.Format(time.RFC3339)
}

// Text renders the plain-text payslip.
func (p Payslip) Text() string {
	var sb strings.Builder
	sb.WriteString("PAYSLIP\n")
	sb.WriteString("=======\n")
	for i, sec := range p.sections() {
		if i > 0 {
			sb.WriteString("\n")
		}
		for _, line := range sec {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")
	sb.WriteString(p.generatedLine())
	sb.WriteString("\n")
	return sb.String()
}

func writeTextPayslip(path string, p Payslip) error {
	if err := os.WriteFile(path, []byte(p.Text()), 0o644); err != nil {
		return fmt.Errorf("write payslip: %w", err)
	}
	return nil
}
