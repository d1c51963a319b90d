package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"ems/internal/domain/ledger"
	"ems/internal/domain/payroll"
	"ems/internal/domain/performance"
	"ems/internal/domain/reports"
	"ems/internal/platform/flatfile"
	"ems/internal/platform/metrics"
)

// Workspace owns the in-memory ledger and every service built on it. All
// ledger access from HTTP handlers and background jobs goes through mu.
type Workspace struct {
	mu sync.Mutex

	Store       *ledger.Store
	Repo        *flatfile.Repository
	Payroll     *payroll.Engine
	Performance *performance.Service
	Reports     *reports.Service
	Metrics     *metrics.Collector
}

type WorkspaceOptions struct {
	DataDir    string
	ReportDir  string
	PayslipPDF bool
	Metrics    *metrics.Collector
	StoreOpts  []ledger.Option
}

// OpenWorkspace loads the ledger from the data directory. Missing files load
// as empty collections.
func OpenWorkspace(opts WorkspaceOptions) (*Workspace, error) {
	store := ledger.NewStore(opts.StoreOpts...)
	repo := flatfile.New(opts.DataDir)
	if err := repo.Load(store); err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	perf := performance.NewService(store)
	collector := opts.Metrics
	if collector == nil {
		collector = metrics.New()
	}
	return &Workspace{
		Store:       store,
		Repo:        repo,
		Payroll:     payroll.NewEngine(store, repo, payroll.Options{ReportDir: opts.ReportDir, PDF: opts.PayslipPDF}),
		Performance: perf,
		Reports:     reports.NewService(store, perf, opts.ReportDir),
		Metrics:     collector,
	}, nil
}

func (w *Workspace) Locker() sync.Locker {
	return &w.mu
}

// Save writes every collection to the data directory. It has the jobs.Func
// shape so it can run as the autosave job or an on-demand save.
func (w *Workspace) Save(context.Context) (any, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	err := w.Repo.Save(w.Store)
	w.Metrics.RecordSave(err)
	if err != nil {
		return nil, fmt.Errorf("save ledger: %w", err)
	}
	details := map[string]any{
		"dir":       w.Repo.Dir(),
		"employees": len(w.Store.Employees()),
		"tasks":     len(w.Store.Tasks()),
		"leaves":    len(w.Store.Leaves()),
		"payrolls":  len(w.Store.Payrolls()),
	}
	slog.Info("ledger saved", "dir", w.Repo.Dir(), "employees", details["employees"])
	return details, nil
}
