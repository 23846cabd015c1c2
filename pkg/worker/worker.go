package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/hazemkhaled/text-extractor/pkg/logger"
)

// Job is one unit of background work.
type Job func(ctx context.Context)

// Pool is a fixed-size in-process worker pool. Jobs accepted before Stop
// are run to completion; there is no persistence, a process restart drops
// whatever was queued.
type Pool struct {
	jobs        chan Job
	concurrency int
	wg          sync.WaitGroup
	logger      logger.Logger
	mu          sync.Mutex
	stopped     bool
	cancel      context.CancelFunc
}

type Config struct {
	Concurrency int
	QueueDepth  int
}

func NewPool(cfg Config, log logger.Logger) *Pool {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = 64
	}
	return &Pool{
		jobs:        make(chan Job, cfg.QueueDepth),
		concurrency: cfg.Concurrency,
		logger:      log.Named("worker"),
	}
}

// Start launches the workers. The pool stops accepting work when Stop is
// called.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.concurrency; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for job := range p.jobs {
				p.runJob(ctx, id, job)
			}
		}(i)
	}
	p.logger.Info("Worker pool started",
		logger.Int("concurrency", p.concurrency),
	)
}

func (p *Pool) runJob(ctx context.Context, workerID int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Job panicked",
				logger.Int("worker", workerID),
				logger.Any("panic", r),
				logger.Stack(),
			)
		}
	}()
	job(ctx)
}

// Submit queues a job. It fails when the queue is full or the pool is
// stopped; the caller decides whether that is a 503 or a retry.
func (p *Pool) Submit(job Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return fmt.Errorf("worker pool is stopped")
	}
	select {
	case p.jobs <- job:
		return nil
	default:
		return fmt.Errorf("worker queue is full")
	}
}

// Stop drains the queue and waits for in-flight jobs.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
	if p.cancel != nil {
		p.cancel()
	}
	p.logger.Info("Worker pool stopped")
}
