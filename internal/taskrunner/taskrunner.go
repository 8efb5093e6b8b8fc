// Package taskrunner executes render jobs with an in-process worker
// pool. It is the default backend when no Redis queue is configured.
package taskrunner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"clipforge/internal/service"
	"clipforge/log"
)

const (
	defaultQueueSize   = 64
	defaultConcurrency = 2
)

var (
	ErrRunnerStopped = errors.New("task runner stopped")
	ErrQueueFull     = errors.New("task queue is full")
)

// Config controls in-process task runner behavior.
type Config struct {
	QueueSize   int
	Concurrency int
}

// DefaultConfig returns a single-host-friendly default config.
func DefaultConfig() Config {
	return Config{
		QueueSize:   defaultQueueSize,
		Concurrency: defaultConcurrency,
	}
}

// RenderTaskPayload contains render job enqueue data.
type RenderTaskPayload struct {
	JobID string `json:"job_id"`
}

// Runner executes queued render jobs with in-memory workers.
type Runner struct {
	service *service.Service
	config  Config

	queue  chan RenderTaskPayload
	ctx    context.Context
	cancel context.CancelFunc

	workerWg sync.WaitGroup
	closed   atomic.Bool
}

// New creates and starts a task runner.
func New(svc *service.Service, cfg Config) *Runner {
	if svc == nil {
		svc = service.NewService()
	}

	cfg = normalizeConfig(cfg)
	ctx, cancel := context.WithCancel(context.Background())

	runner := &Runner{
		service: svc,
		config:  cfg,
		queue:   make(chan RenderTaskPayload, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	for i := 0; i < cfg.Concurrency; i++ {
		runner.workerWg.Add(1)
		go runner.worker(i + 1)
	}

	return runner
}

func normalizeConfig(cfg Config) Config {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return cfg
}

// SubmitRenderTask queues a render job for execution.
func (r *Runner) SubmitRenderTask(payload RenderTaskPayload) error {
	if payload.JobID == "" {
		return errors.New("render task job id is required")
	}
	if r.closed.Load() {
		return ErrRunnerStopped
	}

	select {
	case <-r.ctx.Done():
		return ErrRunnerStopped
	case r.queue <- payload:
		log.GetLogger().Info("[TaskRunner] render task submitted",
			zap.String("job_id", payload.JobID))
		return nil
	default:
		return ErrQueueFull
	}
}

func (r *Runner) worker(workerID int) {
	defer r.workerWg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		default:
		}

		select {
		case <-r.ctx.Done():
			return
		case task := <-r.queue:
			r.processTask(workerID, task)
		}
	}
}

func (r *Runner) processTask(workerID int, task RenderTaskPayload) {
	if err := r.service.ProcessRenderJob(task.JobID); err != nil {
		log.GetLogger().Error("[TaskRunner] render task failed",
			zap.Int("worker_id", workerID),
			zap.String("job_id", task.JobID),
			zap.Error(err))
		return
	}

	log.GetLogger().Info("[TaskRunner] render task completed",
		zap.Int("worker_id", workerID),
		zap.String("job_id", task.JobID))
}

// Close stops workers and rejects new tasks.
func (r *Runner) Close() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}

	r.cancel()
	r.workerWg.Wait()
}

// Pending returns the number of queued tasks waiting for workers.
func (r *Runner) Pending() int {
	return len(r.queue)
}
