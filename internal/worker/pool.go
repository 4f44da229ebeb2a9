package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/STTM-NSU/advisor-workspace/internal/config"
	"github.com/STTM-NSU/advisor-workspace/internal/logger"
	"github.com/STTM-NSU/advisor-workspace/internal/metrics"
)

var (
	ErrRejected = errors.New("worker pool saturated")
	ErrShutdown = errors.New("worker pool is shut down")
)

// Policy decides what happens to a task when the queue is full and max workers run.
type Policy int

const (
	CallerRuns Policy = iota
	Reject
)

func (p Policy) String() string {
	if p == Reject {
		return "reject"
	}
	return "caller-runs"
}

// Pool runs tasks on up to Max goroutines. Core workers live until Shutdown, extra
// workers started on a full queue exit after KeepAlive without work.
type Pool struct {
	name   string
	cfg    config.WorkerConfig
	policy Policy

	tasks   chan func()
	mu      sync.Mutex
	workers int
	closed  bool
	wg      sync.WaitGroup

	logger logger.Logger
}

func NewPool(name string, cfg config.WorkerConfig, policy Policy, logger logger.Logger) *Pool {
	cfg.Setup(1, 1, 1)
	p := &Pool{
		name:   name,
		cfg:    cfg,
		policy: policy,
		tasks:  make(chan func(), cfg.Queue),
		logger: logger.With("component", "worker-pool", "pool", name),
	}
	p.logger.Infof("pool started: core=%d max=%d queue=%d policy=%s", cfg.Core, cfg.Max, cfg.Queue, policy)
	return p
}

func (p *Pool) Name() string {
	return p.name
}

// Size returns the number of running workers.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.workers
}

// Submit schedules task. With CallerRuns a saturated pool runs task on the calling
// goroutine before returning; with Reject it returns ErrRejected.
func (p *Pool) Submit(task func()) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.count("shutdown")
		return ErrShutdown
	}

	if p.workers < p.cfg.Core {
		p.startLocked(task, true)
		p.mu.Unlock()
		p.count("started")
		return nil
	}

	select {
	case p.tasks <- task:
		p.mu.Unlock()
		p.count("queued")
		return nil
	default:
	}

	if p.workers < p.cfg.Max {
		p.startLocked(task, false)
		p.mu.Unlock()
		p.count("started")
		return nil
	}
	p.mu.Unlock()

	if p.policy == CallerRuns {
		p.count("caller_runs")
		p.run(task)
		return nil
	}
	p.count("rejected")
	p.logger.Warnf("task rejected: %d workers busy and queue of %d full", p.cfg.Max, p.cfg.Queue)
	return ErrRejected
}

// Shutdown stops accepting tasks, lets the workers drain the queue and waits for
// them or for ctx.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Infof("pool stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) startLocked(first func(), core bool) {
	p.workers++
	metrics.WorkersActive.WithLabelValues(p.name).Set(float64(p.workers))
	p.wg.Add(1)
	go p.worker(first, core)
}

func (p *Pool) worker(first func(), core bool) {
	defer p.wg.Done()
	defer func() {
		p.mu.Lock()
		p.workers--
		metrics.WorkersActive.WithLabelValues(p.name).Set(float64(p.workers))
		p.mu.Unlock()
	}()

	p.run(first)

	if core {
		for task := range p.tasks {
			p.run(task)
		}
		return
	}

	idle := time.NewTimer(p.cfg.KeepAlive)
	defer idle.Stop()
	for {
		select {
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			p.run(task)
			idle.Reset(p.cfg.KeepAlive)
		case <-idle.C:
			return
		}
	}
}

func (p *Pool) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Errorf("task panicked: %v", r)
		}
	}()
	task()
}

func (p *Pool) count(disposition string) {
	metrics.WorkerTasksTotal.WithLabelValues(p.name, disposition).Inc()
}
