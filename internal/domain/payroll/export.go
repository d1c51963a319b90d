package payroll

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"ems/internal/domain/ledger"
	"ems/internal/platform/flatfile"
)

const payrollSheet = "Payroll"

// ExportPayrollXLSX writes the same rows as ExportPayrollCSV to a
// spreadsheet. Amounts and period fields are stored as numbers.
func (e *Engine) ExportPayrollXLSX(year, month int, outPath string) (string, error) {
	if !ValidPeriod(year, month) {
		return "", ErrInvalidPeriod
	}
	if outPath == "" {
		outPath = filepath.Join(e.opts.ReportDir, ExportFileName(year, month, "xlsx"))
	}
	if err := writePayrollSheet(outPath, e.store.PayrollsForPeriod(year, month)); err != nil {
		return "", err
	}
	return outPath, nil
}

func writePayrollSheet(path string, records []ledger.PayrollRecord) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", payrollSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := setRow(f, 1, toCells(flatfile.PayrollColumns)); err != nil {
		return err
	}
	for i, p := range records {
		row := []any{p.ID, p.EmployeeID, p.Year, p.Month, p.Gross, p.Tax, p.OtherDeductions, p.Net, p.PayslipPath}
		if err := setRow(f, i+2, row); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, rowNum int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(payrollSheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", rowNum, err)
	}
	return nil
}

func toCells(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
