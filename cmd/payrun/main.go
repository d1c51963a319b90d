// Command payrun generates one month's payroll from the flat-file ledger,
// exports it and saves the ledger back.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"ems/internal/app/server"
	"ems/internal/platform/config"
)

type deductionsFile struct {
	Deductions map[string]float64 `yaml:"deductions"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("payrun failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	now := time.Now()
	year := flag.Int("year", now.Year(), "payroll year")
	month := flag.Int("month", int(now.Month()), "payroll month (1-12)")
	pdf := flag.Bool("pdf", cfg.PayslipPDF, "also write PDF payslips")
	xlsx := flag.Bool("xlsx", false, "also export an .xlsx workbook")
	deductionsPath := flag.String("deductions", "", "YAML file mapping employee IDs to other deductions")
	flag.StringVar(&cfg.DataDir, "data", cfg.DataDir, "ledger data directory")
	flag.StringVar(&cfg.ReportDir, "reports", cfg.ReportDir, "payslip and export directory")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	deductions, err := loadDeductions(*deductionsPath)
	if err != nil {
		return err
	}
	ws, err := server.OpenWorkspace(server.WorkspaceOptions{DataDir: cfg.DataDir, ReportDir: cfg.ReportDir, PayslipPDF: *pdf})
	if err != nil {
		return err
	}

	records, err := ws.Payroll.GenerateMonthlyPayroll(*year, *month, deductions)
	if err != nil {
		return err
	}
	csvPath, err := ws.Payroll.ExportPayrollCSV(*year, *month, "")
	if err != nil {
		return err
	}
	slog.Info("payroll exported", "path", csvPath, "payslips", len(records))
	if *xlsx {
		xlsxPath, err := ws.Payroll.ExportPayrollXLSX(*year, *month, "")
		if err != nil {
			return err
		}
		slog.Info("payroll workbook exported", "path", xlsxPath)
	}
	if _, err := ws.Save(context.Background()); err != nil {
		return err
	}

	total := 0.0
	for _, rec := range records {
		total += rec.Net
	}
	fmt.Printf("%d-%02d: %d payslips, total net %.2f\n", *year, *month, len(records), total)
	return nil
}

func loadDeductions(path string) (map[string]float64, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deductions: %w", err)
	}
	var file deductionsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse deductions: %w", err)
	}
	return file.Deductions, nil
}
