package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/emberwell/pulsecheck-backend/internal/data/repos"
	types "github.com/emberwell/pulsecheck-backend/internal/domain"
	"github.com/emberwell/pulsecheck-backend/internal/jobs/runtime"
	"github.com/emberwell/pulsecheck-backend/internal/observability"
	"github.com/emberwell/pulsecheck-backend/internal/platform/dbctx"
	"github.com/emberwell/pulsecheck-backend/internal/platform/envutil"
	"github.com/emberwell/pulsecheck-backend/internal/platform/logger"
)

const (
	maxAttempts       = 5
	retryDelay        = 30 * time.Second
	staleRunning      = 30 * time.Minute
	pollInterval      = 1 * time.Second
	heartbeatInterval = 30 * time.Second
)

// Worker polls job_run for claimable rows and dispatches them to registered
// handlers. Claims go through FOR UPDATE SKIP LOCKED, so any number of
// loops (and instances) can poll the same table without double-running a
// job.
type Worker struct {
	db       *gorm.DB
	log      *logger.Logger
	repo     repos.JobRunRepo
	registry *runtime.Registry
}

func NewWorker(db *gorm.DB, baseLog *logger.Logger, repo repos.JobRunRepo, registry *runtime.Registry) *Worker {
	return &Worker{
		db:       db,
		log:      baseLog.With("component", "JobWorker"),
		repo:     repo,
		registry: registry,
	}
}

// Start launches WORKER_CONCURRENCY polling loops. Loops exit when ctx is
// canceled; in-flight handlers finish their current run first.
func (w *Worker) Start(ctx context.Context) {
	concurrency := envutil.Int("WORKER_CONCURRENCY", 4)
	if concurrency < 1 {
		concurrency = 1
	}
	w.log.Info("Starting job worker pool", "concurrency", concurrency, "job_types", w.registry.Types())

	for i := 0; i < concurrency; i++ {
		workerID := i + 1
		go w.runLoop(ctx, workerID)
	}
}

func (w *Worker) runLoop(ctx context.Context, workerID int) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Worker loop stopped", "worker_id", workerID)
			return
		case <-ticker.C:
			// Drain until the queue is empty so a burst does not wait
			// one tick per job.
			for w.runOnce(ctx, workerID) {
				if ctx.Err() != nil {
					return
				}
			}
		}
	}
}

// runOnce claims and dispatches at most one job. It reports whether a job
// was processed so the loop can keep draining.
func (w *Worker) runOnce(ctx context.Context, workerID int) bool {
	job, err := w.repo.ClaimNextRunnable(dbctx.Context{Ctx: ctx}, maxAttempts, retryDelay, staleRunning)
	if err != nil {
		w.log.Warn("ClaimNextRunnable failed", "worker_id", workerID, "error", err)
		return false
	}
	if job == nil {
		return false
	}
	w.dispatch(ctx, workerID, job)
	return true
}

func (w *Worker) dispatch(ctx context.Context, workerID int, job *types.JobRun) {
	start := time.Now()
	jc := runtime.NewContext(ctx, w.db, job, w.repo)

	h, ok := w.registry.Get(job.JobType)
	if !ok {
		w.log.Warn("No handler registered for job_type",
			"worker_id", workerID,
			"job_type", job.JobType,
			"job_id", job.ID,
		)
		jc.Fail("dispatch", &missingHandlerError{JobType: job.JobType})
		w.observe(job, start)
		return
	}

	stopBeat := w.startHeartbeat(ctx, job)
	func() {
		defer func() {
			if r := recover(); r != nil {
				w.log.Error("Job handler panic",
					"worker_id", workerID,
					"job_id", job.ID,
					"job_type", job.JobType,
					"panic", r,
				)
				jc.Fail("panic", errFromRecover(r))
			}
		}()

		if runErr := h.Run(jc); runErr != nil {
			// Handlers normally call jc.Fail themselves; this is a
			// safety net for ones that only return the error.
			jc.Fail("run", runErr)
		}
	}()
	stopBeat()
	w.observe(job, start)
}

// startHeartbeat keeps heartbeat_at fresh while a handler runs so a slow
// job is not reclaimed as stale by another loop. The returned stop func
// must be called once the handler finishes.
func (w *Worker) startHeartbeat(ctx context.Context, job *types.JobRun) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := w.repo.Heartbeat(dbctx.Context{Ctx: ctx}, job.ID); err != nil {
					w.log.Warn("Job heartbeat failed", "job_id", job.ID, "error", err)
				}
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// observe records processing metrics. Fail/Succeed keep the in-memory row
// in sync with storage, so the row's status after the handler returns is
// the run outcome.
func (w *Worker) observe(job *types.JobRun, start time.Time) {
	observability.Current().ObserveJob(job.JobType, job.Status, time.Since(start))
}

type missingHandlerError struct{ JobType string }

func (e *missingHandlerError) Error() string {
	return "no handler registered for job_type=" + e.JobType
}

func errFromRecover(v any) error { return &panicError{Val: v} }

type panicError struct{ Val any }

func (e *panicError) Error() string { return fmt.Sprintf("panic: %v", e.Val) }
