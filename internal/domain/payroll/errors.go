package payroll

import "ems/internal/domain/ledger"

var (
	ErrInvalidPeriod     = &ledger.FieldError{Field: "period", Reason: "must be a valid year and month 1-12"}
	ErrNegativeDeduction = &ledger.FieldError{Field: "other_deductions", Reason: "must not be negative"}
)
