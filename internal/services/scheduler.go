package services

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler enqueues periodic jobs on cron schedules.
type Scheduler struct {
	cron  *cron.Cron
	queue JobQueue
	log   *zap.Logger
}

func NewScheduler(queue JobQueue, log *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:  cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		queue: queue,
		log:   log,
	}
}

// Add schedules jobType. Empty specs are skipped.
func (s *Scheduler) Add(spec, jobType string) error {
	if spec == "" {
		return nil
	}

	_, err := s.cron.AddFunc(spec, func() {
		handle, err := s.queue.Enqueue(context.Background(), jobType, nil)
		if err != nil {
			s.log.Warn("⚠️ Scheduled job not queued", zap.String("type", jobType), zap.Error(err))
			return
		}
		s.log.Info("⏰ Scheduled job queued", zap.String("type", jobType), zap.Stringer("task_id", handle))
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", spec, jobType, err)
	}
	return nil
}

func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("✅ Scheduler started", zap.Int("entries", s.Entries()))
}

// Stop waits for running schedule callbacks, which only enqueue.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
