package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull is returned when the buffer has no room. Enqueue never blocks.
	ErrQueueFull = errors.New("jobs: queue full")
	// ErrQueueStopped is returned once Stop has been called or before Start.
	ErrQueueStopped = errors.New("jobs: queue not running")
)

// Job represents a queued background task.
type Job struct {
	ID       string
	Type     string
	Payload  interface{}
	Attempt  int
	Enqueued time.Time
}

// Handler processes a job.
type Handler func(context.Context, Job) error

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers      int
	BufferSize   int
	MaxRetries   int
	RetryDelay   time.Duration
	DrainTimeout time.Duration
	Logger       *zap.Logger
}

// Queue is an in-memory job dispatcher backed by goroutines. Jobs still buffered
// at Stop are drained until DrainTimeout elapses.
type Queue struct {
	name    string
	handler Handler
	cfg     QueueConfig
	logger  *zap.Logger

	jobs    chan Job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.RWMutex
	running bool
}

// NewQueue builds a new queue with the provided handler.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 16
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue{
		name:    name,
		handler: handler,
		cfg:     cfg,
		logger:  cfg.Logger,
		jobs:    make(chan Job, cfg.BufferSize),
	}
}

// Start begins worker consumption. Calling it twice has no effect.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.running = true
	q.logger.Info("queue started", zap.String("queue", q.name), zap.Int("workers", q.cfg.Workers))
}

// Stop refuses new jobs, drains the buffer and waits for workers to exit.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	close(q.jobs)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(q.cfg.DrainTimeout):
		q.cancel()
		<-done
		q.logger.Warn("queue drain timed out", zap.String("queue", q.name))
	}
	q.cancel()
	q.logger.Info("queue stopped", zap.String("queue", q.name))
}

// Enqueue pushes a job without blocking.
func (q *Queue) Enqueue(job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if !q.running {
		return fmt.Errorf("%s: %w", q.name, ErrQueueStopped)
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}

	select {
	case q.jobs <- job:
		return nil
	default:
		return fmt.Errorf("%s: %w", q.name, ErrQueueFull)
	}
}

// Pending returns the number of buffered jobs.
func (q *Queue) Pending() int {
	return len(q.jobs)
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for job := range q.jobs {
		q.process(job)
	}
}

func (q *Queue) process(job Job) {
	for {
		err := q.handler(q.ctx, job)
		if err == nil {
			return
		}
		job.Attempt++
		if job.Attempt > q.cfg.MaxRetries || q.ctx.Err() != nil {
			q.logger.Error("job failed",
				zap.String("queue", q.name),
				zap.String("job_id", job.ID),
				zap.String("type", job.Type),
				zap.Int("attempts", job.Attempt),
				zap.Error(err),
			)
			return
		}
		q.logger.Warn("job failed, retrying",
			zap.String("queue", q.name),
			zap.String("job_id", job.ID),
			zap.Int("attempt", job.Attempt),
			zap.Error(err),
		)

		timer := time.NewTimer(q.cfg.RetryDelay)
		select {
		case <-q.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
