package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/osse101/TillSync_Go/internal/logger"
	"github.com/osse101/TillSync_Go/internal/worker"
)

// Scheduler enqueues jobs on the worker pool at fixed intervals
type Scheduler struct {
	workerPool *worker.Pool
	quit       chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
}

// New creates a new scheduler
func New(pool *worker.Pool) *Scheduler {
	return &Scheduler{
		workerPool: pool,
		quit:       make(chan struct{}),
	}
}

// Schedule enqueues job every interval until Stop. A non-positive interval
// disables the job. A tick that finds the pool full is skipped.
func (s *Scheduler) Schedule(ctx context.Context, interval time.Duration, job worker.Job) {
	if interval <= 0 {
		logger.FromContext(ctx).Info(LogMsgJobDisabled, "job", job.Name())
		return
	}

	logger.FromContext(ctx).Info(LogMsgJobScheduled, "job", job.Name(), "interval", interval)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.workerPool.Enqueue(ctx, job)
			case <-s.quit:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops all scheduled jobs
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.quit)
		s.wg.Wait()
	})
}
