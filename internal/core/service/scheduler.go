package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"
)

// Job is a unit of scheduled work. It must return once ctx is done.
type Job func(ctx context.Context)

type scheduledJob struct {
	name     string
	schedule cron.Schedule
	run      Job
}

// Scheduler fires registered jobs on cron schedules. A job never overlaps
// with itself: fire times missed while it runs are skipped.
type Scheduler struct {
	clock clock.Clock
	log   logrus.FieldLogger

	mu   sync.Mutex
	jobs []scheduledJob
}

func NewScheduler(clk clock.Clock, log logrus.FieldLogger) *Scheduler {
	return &Scheduler{clock: clk, log: log}
}

// Register adds a job under a standard five-field cron expression. Descriptors
// such as "@hourly" and "@every 10m" are accepted too.
func (s *Scheduler) Register(name, spec string, job Job) error {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", spec, name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, scheduledJob{name: name, schedule: schedule, run: job})

	s.log.WithFields(logrus.Fields{"job": name, "schedule": spec}).Info("Registered scheduled job")
	return nil
}

// RunNow runs job immediately on the calling goroutine.
func (s *Scheduler) RunNow(ctx context.Context, name string, job Job) {
	s.log.WithField("job", name).Info("Running job")
	job(ctx)
}

// Start runs every registered job on its schedule and blocks until ctx is
// done and all jobs have returned.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	jobs := append([]scheduledJob(nil), s.jobs...)
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, job := range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.loop(ctx, job)
		}()
	}
	wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, job scheduledJob) {
	for {
		now := s.clock.Now()
		next := job.schedule.Next(now)
		if next.IsZero() {
			s.log.WithField("job", job.name).Warn("Schedule has no future activations")
			return
		}

		timer := s.clock.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C():
		}

		s.log.WithFields(logrus.Fields{
			"job":       job.name,
			"scheduled": next.Format(time.RFC3339),
		}).Debug("Scheduled job fired")
		job.run(ctx)
	}
}
