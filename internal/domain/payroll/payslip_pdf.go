package payroll

import (
	"github.com/jung-kurt/gofpdf"
)

func writePDFPayslip(path string, p Payslip) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	for _, sec := range p.sections() {
		for _, line := range sec {
			pdf.Cell(0, 8, line)
			pdf.Ln(7)
		}
		pdf.Ln(3)
	}
	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 8, p.generatedLine())

	return pdf.OutputFileAndClose(path)
}
