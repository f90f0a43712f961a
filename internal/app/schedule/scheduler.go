// Package schedule runs background jobs on fixed intervals.
package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is one periodic task. Run is invoked once per Interval; a failed run
// is logged and retried on the next tick.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

type Scheduler struct {
	Logger *slog.Logger
}

// Start runs every job until ctx is cancelled and blocks until all of them
// have returned.
func (s Scheduler) Start(ctx context.Context, jobs ...Job) {
	var wg sync.WaitGroup
	for _, job := range jobs {
		if job.Run == nil || job.Interval <= 0 {
			s.logger().WarnContext(ctx, "job skipped", "job", job.Name)
			continue
		}
		wg.Add(1)
		go func(job Job) {
			defer wg.Done()
			s.loop(ctx, job)
		}(job)
	}
	wg.Wait()
}

func (s Scheduler) loop(ctx context.Context, job Job) {
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := job.Run(ctx); err != nil && ctx.Err() == nil {
				s.logger().ErrorContext(ctx, "job failed", "job", job.Name, "error", err)
			}
		}
	}
}

func (s Scheduler) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
