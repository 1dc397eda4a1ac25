package worker

import (
	"context"
	"sync"

	"github.com/osse101/TillSync_Go/internal/logger"
)

// Job represents a task to be executed by a worker
type Job interface {
	Name() string
	Process(ctx context.Context) error
}

// Pool represents a worker pool
type Pool struct {
	workers  int
	jobQueue chan Job
	wg       sync.WaitGroup
	cancel   context.CancelFunc
	stopOnce sync.Once
}

// NewPool creates a new worker pool
func NewPool(workers int, queueSize int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		workers:  workers,
		jobQueue: make(chan Job, queueSize),
	}
}

// Start starts the workers. Jobs run with ctx, which Stop cancels.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case job := <-p.jobQueue:
			if err := job.Process(ctx); err != nil {
				logger.FromContext(ctx).Error(LogMsgWorkerJobFailed, "job", job.Name(), "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Enqueue adds a job without blocking. It reports false, and logs, when the
// queue is full: a dropped sync is picked up by the next tick anyway.
func (p *Pool) Enqueue(ctx context.Context, job Job) bool {
	select {
	case p.jobQueue <- job:
		return true
	default:
		logger.FromContext(ctx).Warn(LogMsgWorkerJobDropped, "job", job.Name())
		return false
	}
}

// Stop cancels running jobs between their suspension points and waits for the workers
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		if p.cancel != nil {
			p.cancel()
		}
		p.wg.Wait()
		logger.Info(LogMsgPoolStopped)
	})
}
