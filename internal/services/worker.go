package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/cv-project/internal/metrics"
	"alfredoptarigan/cv-project/internal/models"
	"alfredoptarigan/cv-project/internal/repositories"
)

// JobHandler runs one job. The returned string is stored as the task result;
// a non-nil error marks the task failed.
type JobHandler func(ctx context.Context, payload json.RawMessage) (string, error)

type JobHandle struct {
	ID   uuid.UUID
	Type string
}

func (h JobHandle) String() string {
	return h.ID.String()
}

// JobQueue accepts named jobs without waiting for them to run.
type JobQueue interface {
	Register(jobType string, handler JobHandler)
	Enqueue(ctx context.Context, jobType string, payload interface{}) (JobHandle, error)
	Start(ctx context.Context)
	Stop()
}

type WorkerOptions struct {
	Concurrency  int
	QueueSize    int
	PollInterval time.Duration
	// StaleAfter is how long a task may stay processing before the poller
	// assumes its worker died and queues it again. It must exceed the
	// longest job.
	StaleAfter time.Duration
}

const (
	workerIdle int32 = iota
	workerRunning
	workerStopped
)

type worker struct {
	taskRepo     repositories.TaskRepository
	handlersMu   sync.RWMutex
	handlers     map[string]JobHandler
	jobQueue     chan uuid.UUID
	concurrency  int
	pollInterval time.Duration
	staleAfter   time.Duration
	state        atomic.Int32
	wg           sync.WaitGroup
	stopChan     chan struct{}
	log          *zap.Logger
}

func NewWorker(taskRepo repositories.TaskRepository, opts WorkerOptions, log *zap.Logger) JobQueue {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 100
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 10 * time.Second
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = 15 * time.Minute
	}

	return &worker{
		taskRepo:     taskRepo,
		handlers:     make(map[string]JobHandler),
		jobQueue:     make(chan uuid.UUID, opts.QueueSize),
		concurrency:  opts.Concurrency,
		pollInterval: opts.PollInterval,
		staleAfter:   opts.StaleAfter,
		stopChan:     make(chan struct{}),
		log:          log,
	}
}

// Register implements JobQueue.
func (w *worker) Register(jobType string, handler JobHandler) {
	w.handlersMu.Lock()
	defer w.handlersMu.Unlock()
	w.handlers[jobType] = handler
}

func (w *worker) handler(jobType string) (JobHandler, bool) {
	w.handlersMu.RLock()
	defer w.handlersMu.RUnlock()
	h, ok := w.handlers[jobType]
	return h, ok
}

// Start implements JobQueue.
func (w *worker) Start(ctx context.Context) {
	if !w.state.CompareAndSwap(workerIdle, workerRunning) {
		return
	}

	w.log.Info("🚀 Starting worker", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPendingJobs(ctx)

	w.log.Info("✅ Worker started successfully")
}

// Stop implements JobQueue. Jobs already running are allowed to finish.
func (w *worker) Stop() {
	if !w.state.CompareAndSwap(workerRunning, workerStopped) {
		w.state.Store(workerStopped)
		return
	}

	w.log.Info("🛑 Stopping worker...")
	close(w.stopChan)
	w.wg.Wait()
	w.log.Info("✅ Worker stopped")
}

// Enqueue implements JobQueue. The task row is written before the job is handed
// to the pool, so a full channel only delays the job until the next poll.
func (w *worker) Enqueue(ctx context.Context, jobType string, payload interface{}) (JobHandle, error) {
	if _, ok := w.handler(jobType); !ok {
		return JobHandle{}, fmt.Errorf("%w: %s", ErrUnknownJob, jobType)
	}
	if w.state.Load() != workerRunning {
		metrics.JobsTotal.WithLabelValues(jobType, "unavailable").Inc()
		return JobHandle{}, fmt.Errorf("%w: worker not running", ErrQueueUnavailable)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return JobHandle{}, fmt.Errorf("failed to encode %s payload: %w", jobType, err)
	}

	task := &models.TaskRecord{
		ID:      uuid.New(),
		Type:    jobType,
		Payload: string(body),
		Status:  models.TaskQueued,
	}
	if err := w.taskRepo.Create(task); err != nil {
		metrics.JobsTotal.WithLabelValues(jobType, "unavailable").Inc()
		return JobHandle{}, fmt.Errorf("%w: %v", ErrQueueUnavailable, err)
	}

	metrics.JobsTotal.WithLabelValues(jobType, "enqueued").Inc()
	w.push(task.ID)

	return JobHandle{ID: task.ID, Type: jobType}, nil
}

func (w *worker) push(id uuid.UUID) {
	select {
	case w.jobQueue <- id:
		w.log.Debug("📥 Job enqueued", zap.Stringer("task_id", id))
	default:
		w.log.Warn("⚠️ Job channel full, leaving task for the poller", zap.Stringer("task_id", id))
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()
	w.log.Debug("👷 Worker goroutine started", zap.Int("worker", workerID))

	for {
		select {
		case <-w.stopChan:
			w.log.Debug("👷 Worker goroutine stopped", zap.Int("worker", workerID))
			return
		case id := <-w.jobQueue:
			w.runTask(ctx, workerID, id)
		}
	}
}

func (w *worker) runTask(ctx context.Context, workerID int, id uuid.UUID) {
	claimed, err := w.taskRepo.Claim(id)
	if err != nil {
		w.log.Warn("⚠️ Failed to claim task", zap.Stringer("task_id", id), zap.Error(err))
		return
	}
	if !claimed {
		return
	}

	task, err := w.taskRepo.FindByID(id)
	if err != nil {
		w.log.Warn("⚠️ Claimed task disappeared", zap.Stringer("task_id", id), zap.Error(err))
		return
	}

	log := w.log.With(
		zap.Int("worker", workerID),
		zap.Stringer("task_id", id),
		zap.String("type", task.Type),
	)

	handler, ok := w.handler(task.Type)
	if !ok {
		w.fail(log, task, fmt.Sprintf("no handler registered for %q", task.Type))
		return
	}

	log.Info("👷 Processing job")
	start := time.Now()
	result, err := safeRun(ctx, handler, json.RawMessage(task.Payload))
	metrics.JobDuration.WithLabelValues(task.Type).Observe(time.Since(start).Seconds())

	if err != nil {
		w.fail(log, task, err.Error())
		return
	}

	if err := w.taskRepo.UpdateResult(task.ID, result); err != nil {
		log.Warn("⚠️ Failed to store job result", zap.Error(err))
	}
	metrics.JobsTotal.WithLabelValues(task.Type, "completed").Inc()
	log.Info("✅ Job completed", zap.String("result", result))
}

func (w *worker) fail(log *zap.Logger, task *models.TaskRecord, msg string) {
	if err := w.taskRepo.UpdateError(task.ID, msg); err != nil {
		log.Warn("⚠️ Failed to store job error", zap.Error(err))
	}
	metrics.JobsTotal.WithLabelValues(task.Type, "failed").Inc()
	log.Warn("❌ Job failed", zap.String("error", msg))
}

func safeRun(ctx context.Context, handler JobHandler, payload json.RawMessage) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return handler(ctx, payload)
}

func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.log.Debug("🔄 Starting pending jobs poller", zap.Duration("interval", w.pollInterval))
	w.requeuePending()

	for {
		select {
		case <-w.stopChan:
			w.log.Debug("🔄 Pending jobs poller stopped")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.requeuePending()
		}
	}
}

func (w *worker) requeuePending() {
	requeued, err := w.taskRepo.RequeueStale(time.Now().Add(-w.staleAfter))
	if err != nil {
		w.log.Warn("⚠️ Failed to requeue stale jobs", zap.Error(err))
	} else if requeued > 0 {
		w.log.Warn("♻️ Requeued stale jobs", zap.Int64("count", requeued))
	}

	pending, err := w.taskRepo.FindPendingJobs(10)
	if err != nil {
		w.log.Warn("⚠️ Failed to fetch pending jobs", zap.Error(err))
		return
	}

	if len(pending) > 0 {
		w.log.Info("📋 Found pending jobs", zap.Int("count", len(pending)))
	}
	for _, task := range pending {
		w.push(task.ID)
	}
}
