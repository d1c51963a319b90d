package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	JobAutosave = "autosave"
	JobPayroll  = "monthly_payroll"
	JobSave     = "manual_save"

	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"

	historyLimit = 100
)

type Func func(context.Context) (any, error)

// Run is the recorded outcome of one job execution.
type Run struct {
	ID          string     `json:"id"`
	Type        string     `json:"jobType"`
	Status      string     `json:"status"`
	Details     any        `json:"details,omitempty"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type schedule struct {
	jobType  string
	interval time.Duration
	run      Func
}

type Service struct {
	queue     chan job
	schedules []schedule

	mu      sync.Mutex
	history []Run
}

type job struct {
	Type string
	Run  Func
}

func New() *Service {
	return &Service{queue: make(chan job, 128)}
}

// Every registers a periodic job. It must be called before Start; a
// non-positive interval disables the job.
func (s *Service) Every(jobType string, interval time.Duration, run Func) {
	if interval <= 0 {
		return
	}
	s.schedules = append(s.schedules, schedule{jobType: jobType, interval: interval, run: run})
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	for _, sc := range s.schedules {
		go s.schedule(ctx, sc)
	}
}

func (s *Service) Enqueue(jobType string, run Func) bool {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
		return true
	default:
		slog.Warn("job queue full", "jobType", jobType)
		return false
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run Func) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

// Runs returns the most recent job runs, newest first.
func (s *Service) Runs(limit int) []Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	out := make([]Run, 0, limit)
	for i := len(s.history) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.history[i])
	}
	return out
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := s.begin(j.Type)
	details, err := j.Run(ctx)
	s.finish(runID, details, err)
	return details, err
}

func (s *Service) begin(jobType string) string {
	run := Run{ID: uuid.NewString(), Type: jobType, Status: StatusRunning, StartedAt: time.Now().UTC()}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, run)
	if len(s.history) > historyLimit {
		s.history = s.history[len(s.history)-historyLimit:]
	}
	return run.ID
}

func (s *Service) finish(runID string, details any, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].ID != runID {
			continue
		}
		completed := time.Now().UTC()
		s.history[i].CompletedAt = &completed
		s.history[i].Details = details
		s.history[i].Status = StatusCompleted
		if err != nil {
			s.history[i].Status = StatusFailed
			s.history[i].Error = err.Error()
		}
		return
	}
	slog.Warn("job run evicted before completion", "runId", runID)
}

func (s *Service) schedule(ctx context.Context, sc schedule) {
	ticker := time.NewTicker(sc.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(sc.jobType, sc.run)
		}
	}
}
