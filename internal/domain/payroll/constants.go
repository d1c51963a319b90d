package payroll

import "math"

const (
	HRARate       = 0.20
	AllowanceRate = 0.10
	MonthsPerYear = 12
)

// Bracket is one band of the progressive annual tax table. Width is the
// amount of income the band covers.
type Bracket struct {
	Width float64
	Rate  float64
}

// DefaultBrackets is an illustrative progressive table:
// 0-250k 0%, 250k-500k 5%, 500k-1M 20%, above 1M 30%.
var DefaultBrackets = []Bracket{
	{Width: 250000, Rate: 0},
	{Width: 250000, Rate: 0.05},
	{Width: 500000, Rate: 0.20},
	{Width: math.Inf(1), Rate: 0.30},
}
