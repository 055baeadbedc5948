// Package cron runs named housekeeping jobs on fixed intervals and keeps the
// outcome of each run for the admin endpoints.
package cron

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

type JobStatus string

const (
	StatusIdle    JobStatus = "idle"
	StatusRunning JobStatus = "running"
	StatusFulfill JobStatus = "fulfill"
	StatusReject  JobStatus = "reject"
)

var (
	ErrUnknownJob = errors.New("unknown job")
	ErrJobRunning = errors.New("job already running")
)

// Job is a task run every Interval once the scheduler starts.
type Job struct {
	Name        string
	Description string
	Interval    time.Duration
	Fn          func(ctx context.Context) error
}

// ListItem is a snapshot of one job.
type ListItem struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      JobStatus  `json:"status"`
	Message     string     `json:"message,omitempty"`
	Runs        int        `json:"runs"`
	NextDate    *time.Time `json:"nextDate"`
	LastRunAt   *time.Time `json:"lastRunAt,omitempty"`
	LastTook    string     `json:"lastTook,omitempty"`
}

type entry struct {
	job Job

	mu      sync.Mutex
	status  JobStatus
	message string
	runs    int
	next    time.Time
	lastRun *time.Time
	took    time.Duration
}

// claim marks the entry running; false means a run is already in flight.
func (e *entry) claim() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status == StatusRunning {
		return false
	}
	e.status = StatusRunning
	return true
}

func (e *entry) finish(started time.Time, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.runs++
	e.lastRun = &started
	e.took = time.Since(started)
	e.next = time.Now().Add(e.job.Interval)
	if err != nil {
		e.status, e.message = StatusReject, err.Error()
		return
	}
	e.status, e.message = StatusFulfill, ""
}

func (e *entry) snapshot() ListItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	next := e.next
	item := ListItem{
		Name:        e.job.Name,
		Description: e.job.Description,
		Status:      e.status,
		Message:     e.message,
		Runs:        e.runs,
		NextDate:    &next,
		LastRunAt:   e.lastRun,
	}
	if e.lastRun != nil {
		item.LastTook = e.took.Round(time.Millisecond).String()
	}
	return item
}

type Scheduler struct {
	mu      sync.RWMutex
	entries map[string]*entry
	logger  *zap.Logger
	wg      sync.WaitGroup
}

func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{entries: make(map[string]*entry), logger: logger.Named("cron")}
}

// Register adds or replaces a job. Jobs registered after Start never tick.
func (s *Scheduler) Register(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[job.Name] = &entry{job: job, status: StatusIdle, next: time.Now().Add(job.Interval)}
}

// Start ticks every registered job until ctx is cancelled. Wait blocks until
// the tickers have exited.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		s.wg.Add(1)
		go s.tick(ctx, e)
	}
}

func (s *Scheduler) Wait() { s.wg.Wait() }

func (s *Scheduler) tick(ctx context.Context, e *entry) {
	defer s.wg.Done()
	ticker := time.NewTicker(e.job.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.execute(ctx, e); err != nil && !errors.Is(err, ErrJobRunning) {
				s.logger.Warn("job failed", zap.String("job", e.job.Name), zap.Error(err))
			}
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, e *entry) error {
	if !e.claim() {
		return ErrJobRunning
	}
	started := time.Now()
	err := e.job.Fn(ctx)
	e.finish(started, err)
	if err != nil {
		return err
	}
	s.logger.Debug("job finished", zap.String("job", e.job.Name), zap.Duration("took", time.Since(started)))
	return nil
}

// Run executes a job immediately and returns its error. A job that is
// already running is not started twice.
func (s *Scheduler) Run(ctx context.Context, name string) error {
	s.mu.RLock()
	e, ok := s.entries[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("job %q: %w", name, ErrUnknownJob)
	}
	if err := s.execute(ctx, e); err != nil {
		return fmt.Errorf("job %q: %w", name, err)
	}
	return nil
}

// List returns all jobs ordered by name.
func (s *Scheduler) List() []ListItem {
	s.mu.RLock()
	items := make([]ListItem, 0, len(s.entries))
	for _, e := range s.entries {
		items = append(items, e.snapshot())
	}
	s.mu.RUnlock()
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items
}
