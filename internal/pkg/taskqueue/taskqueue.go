package taskqueue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultWorkers  = 2
	defaultCapacity = 1024
	defaultTimeout  = 5 * time.Second
)

var (
	ErrQueueFull   = errors.New("task queue full")
	ErrQueueClosed = errors.New("task queue closed")
)

// Task is a unit of best-effort background work. Failures are logged and
// never reach the request that queued it.
type Task struct {
	ID   string
	Type string
	Fn   func(ctx context.Context) error
}

// Stats is a snapshot of queue counters.
type Stats struct {
	Enqueued  int64 `json:"enqueued"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Dropped   int64 `json:"dropped"`
}

// Options configures a Queue. Zero values pick defaults.
type Options struct {
	Workers  int
	Capacity int
	Timeout  time.Duration
	// OnFailure is called after a task returns an error.
	OnFailure func(task Task, err error)
}

// Queue is a bounded in-process queue drained by a fixed worker pool.
type Queue struct {
	tasks   chan Task
	logger  *zap.Logger
	timeout time.Duration
	onFail  func(Task, error)

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	enqueued  atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

// New starts the workers and returns the queue.
func New(logger *zap.Logger, opts Options) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Capacity <= 0 {
		opts.Capacity = defaultCapacity
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	q := &Queue{
		tasks:   make(chan Task, opts.Capacity),
		logger:  logger.Named("taskqueue"),
		timeout: opts.Timeout,
		onFail:  opts.OnFailure,
	}
	for i := 0; i < opts.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

// Enqueue schedules fn without blocking. A full or closed queue drops the task.
func (q *Queue) Enqueue(taskType string, fn func(ctx context.Context) error) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.dropped.Add(1)
		return ErrQueueClosed
	}

	task := Task{ID: uuid.NewString(), Type: taskType, Fn: fn}
	select {
	case q.tasks <- task:
		q.enqueued.Add(1)
		return nil
	default:
		q.dropped.Add(1)
		q.logger.Warn("task dropped, queue full", zap.String("type", taskType))
		return ErrQueueFull
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for task := range q.tasks {
		q.run(task)
	}
}

func (q *Queue) run(task Task) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	err := safeCall(ctx, task.Fn)
	if err != nil {
		q.failed.Add(1)
		q.logger.Warn("task failed", zap.String("id", task.ID), zap.String("type", task.Type), zap.Error(err))
		if q.onFail != nil {
			q.onFail(task, err)
		}
		return
	}
	q.completed.Add(1)
}

func safeCall(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("task panicked")
		}
	}()
	return fn(ctx)
}

// Close stops accepting tasks and waits for queued ones to finish or ctx to end.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.tasks)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) Stats() Stats {
	return Stats{
		Enqueued:  q.enqueued.Load(),
		Completed: q.completed.Load(),
		Failed:    q.failed.Load(),
		Dropped:   q.dropped.Load(),
	}
}
