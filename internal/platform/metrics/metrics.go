package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	clientErrors    uint64
	totalDurationMs uint64
	payslips        uint64
	payrollRuns     uint64
	saves           uint64
	saveFailures    uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	} else if status >= 400 {
		atomic.AddUint64(&c.clientErrors, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// RecordPayroll counts one payroll run producing n payslips.
func (c *Collector) RecordPayroll(n int) {
	atomic.AddUint64(&c.payrollRuns, 1)
	if n > 0 {
		atomic.AddUint64(&c.payslips, uint64(n))
	}
}

func (c *Collector) RecordPayslip() {
	atomic.AddUint64(&c.payslips, 1)
}

func (c *Collector) RecordSave(err error) {
	atomic.AddUint64(&c.saves, 1)
	if err != nil {
		atomic.AddUint64(&c.saveFailures, 1)
	}
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":     total,
		"errorsTotal":       atomic.LoadUint64(&c.errorRequests),
		"clientErrorsTotal": atomic.LoadUint64(&c.clientErrors),
		"avgDurationMs":     avg,
		"totalDurationMs":   totalMs,
		"payslipsTotal":     atomic.LoadUint64(&c.payslips),
		"payrollRunsTotal":  atomic.LoadUint64(&c.payrollRuns),
		"savesTotal":        atomic.LoadUint64(&c.saves),
		"saveFailuresTotal": atomic.LoadUint64(&c.saveFailures),
	}
}
