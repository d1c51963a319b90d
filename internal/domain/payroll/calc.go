package payroll

import (
	"math"

	"ems/internal/domain/ledger"
)

type Breakdown struct {
	Basic           float64 `json:"basic"`
	HRA             float64 `json:"hra"`
	Allowances      float64 `json:"allowances"`
	Gross           float64 `json:"gross"`
	AnnualIncome    float64 `json:"annualIncome"`
	AnnualTax       float64 `json:"annualTax"`
	MonthlyTax      float64 `json:"monthlyTax"`
	OtherDeductions float64 `json:"otherDeductions"`
	Net             float64 `json:"net"`
}

// Compute runs basic salary through gross, annual income, annual tax and
// monthly tax to net pay. It is a pure function of its inputs.
func Compute(basic, otherDeductions float64) Breakdown {
	b := Breakdown{
		Basic:           basic,
		HRA:             basic * HRARate,
		Allowances:      basic * AllowanceRate,
		Gross:           GrossMonthly(basic),
		OtherDeductions: otherDeductions,
	}
	b.AnnualIncome = b.Gross * MonthsPerYear
	b.AnnualTax = AnnualTax(b.AnnualIncome, DefaultBrackets)
	b.MonthlyTax = ledger.Round2(b.AnnualTax / MonthsPerYear)
	b.Net = ledger.Round2(b.Gross - b.MonthlyTax - otherDeductions)
	return b
}

func GrossMonthly(basic float64) float64 {
	return ledger.Round2(basic + basic*HRARate + basic*AllowanceRate)
}

// AnnualTax allocates income through the brackets in order; each band only
// taxes the portion not already consumed by lower bands.
func AnnualTax(income float64, brackets []Bracket) float64 {
	remaining := income
	tax := 0.0
	for _, b := range brackets {
		if remaining <= 0 {
			break
		}
		taxable := math.Min(b.Width, remaining)
		tax += taxable * b.Rate
		remaining -= taxable
	}
	return ledger.Round2(tax)
}
