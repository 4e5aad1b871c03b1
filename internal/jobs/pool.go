// Package jobs runs background units of work on a fixed set of workers.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/alexanderramin/studyplan/internal/logger"
)

var (
	// ErrQueueFull is returned by Submit when every buffer slot is taken.
	ErrQueueFull = errors.New("job queue full")

	// ErrStopped is returned by Submit after Stop was called.
	ErrStopped = errors.New("job pool stopped")
)

// Job is one unit of work. Fail, when set, is called with the error of a
// failed or panicking Run, so the owner can record the outcome.
type Job struct {
	Name string
	ID   string
	Run  func(ctx context.Context) error
	Fail func(ctx context.Context, err error, stack string)
}

// Observer is told about every finished job.
type Observer interface {
	OnJobDone(name string, duration time.Duration, err error)
}

type Pool struct {
	queue       chan Job
	concurrency int
	log         *logger.Logger
	observer    Observer

	mu      sync.Mutex
	stopped bool
	started bool
	wg      sync.WaitGroup
}

func NewPool(concurrency, queueSize int, log *logger.Logger, observer Observer) *Pool {
	if concurrency <= 0 {
		concurrency = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Pool{
		queue:       make(chan Job, queueSize),
		concurrency: concurrency,
		log:         log.With("component", "JobPool"),
		observer:    observer,
	}
}

// Start launches the workers. They run until ctx is done or Stop drains
// the queue. Calling Start twice has no effect.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true
	for i := 0; i < p.concurrency; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
	p.log.Info("job pool started", "workers", p.concurrency, "queue_size", cap(p.queue))
}

// Submit enqueues job without blocking.
func (p *Pool) Submit(job Job) error {
	if job.Run == nil {
		return fmt.Errorf("job %q has no Run func", job.Name)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return ErrStopped
	}
	select {
	case p.queue <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop refuses new jobs, lets the workers finish what is queued and
// waits for them.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.queue)
	p.mu.Unlock()
	p.wg.Wait()
	p.log.Info("job pool stopped")
}

// Pending is the number of queued jobs not yet picked up.
func (p *Pool) Pending() int {
	return len(p.queue)
}

func (p *Pool) worker(ctx context.Context, n int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.queue:
			if !ok {
				return
			}
			p.run(ctx, job)
		}
	}
}

func (p *Pool) run(ctx context.Context, job Job) {
	start := time.Now()
	stack, err := p.safeRun(ctx, job)
	if err != nil && job.Fail != nil {
		job.Fail(ctx, err, stack)
	}
	if p.observer != nil {
		p.observer.OnJobDone(job.Name, time.Since(start), err)
	}
	if err != nil {
		p.log.Warn("job failed", "job", job.Name, "job_id", job.ID, "error", err)
		return
	}
	p.log.Debug("job done", "job", job.Name, "job_id", job.ID, "duration_ms", time.Since(start).Milliseconds())
}

// safeRun converts a panic inside Run into an error plus the stack at
// the point of the panic.
func (p *Pool) safeRun(ctx context.Context, job Job) (stack string, err error) {
	defer func() {
		if r := recover(); r != nil {
			stack = string(debug.Stack())
			err = &PanicError{Value: r}
			p.log.Error("job panic", "job", job.Name, "job_id", job.ID, "panic", r)
		}
	}()
	return "", job.Run(ctx)
}

// PanicError wraps a value recovered from a panicking job.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
