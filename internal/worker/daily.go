package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dompet/internal/services"
)

// DailyRunner is the job the scheduler triggers.
type DailyRunner interface {
	Run(ctx context.Context, now time.Time) (services.DailyResult, error)
}

// DailyScheduler fires the daily job once per day at a wall-clock time in
// a fixed location.
type DailyScheduler struct {
	job  DailyRunner
	at   time.Duration // offset from local midnight
	loc  *time.Location
	now  func() time.Time
	wait func(ctx context.Context, d time.Duration) bool
}

// ParseClock parses "HH:MM" into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func NewDailyScheduler(job DailyRunner, at time.Duration, loc *time.Location) *DailyScheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &DailyScheduler{
		job:  job,
		at:   at,
		loc:  loc,
		now:  time.Now,
		wait: sleepCtx,
	}
}

// Next returns the first firing time strictly after from.
func (s *DailyScheduler) Next(from time.Time) time.Time {
	local := from.In(s.loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	next := midnight.Add(s.at)
	if !next.After(local) {
		midnight = time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, s.loc)
		next = midnight.Add(s.at)
	}
	return next
}

// RunOnce executes the job for the current instant.
func (s *DailyScheduler) RunOnce(ctx context.Context) (services.DailyResult, error) {
	now := s.now().In(s.loc)
	slog.InfoContext(ctx, "Running daily job", "at", now.Format(time.RFC3339))
	res, err := s.job.Run(ctx, now)
	if err != nil {
		slog.ErrorContext(ctx, "Daily job failed", "error", err)
		return res, err
	}
	slog.InfoContext(ctx, "Daily job complete",
		"bills_due", res.BillsDue,
		"recurring_executed", res.RecurringExecuted)
	return res, nil
}

// Start blocks, running the job at every firing time until ctx is cancelled.
// Job failures are logged and do not stop the loop.
func (s *DailyScheduler) Start(ctx context.Context) error {
	for {
		next := s.Next(s.now())
		slog.InfoContext(ctx, "Next daily run scheduled", "next_run", next.Format(time.RFC3339))
		if !s.wait(ctx, next.Sub(s.now())) {
			return ctx.Err()
		}
		_, _ = s.RunOnce(ctx)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d < 0 {
		d = 0
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
