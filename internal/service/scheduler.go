package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/stocktrack/stockkeeper/internal/models"
)

// StartScheduler runs the automatic backup loop until ctx is cancelled. Once
// per day, when the wall clock passes the configured schedule time and the
// scheduler is enabled, it creates one AUTOMATIC backup per configured
// format. Transient failures are retried with exponential backoff.
func (s *BackupService) StartScheduler(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		var lastRun string // date of the last successful run, YYYY-MM-DD
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				lastRun = s.tickScheduler(ctx, time.Now(), lastRun)
			}
		}
	}()
}

// tickScheduler runs one scheduler check and returns the updated last-run
// date. Split out of the loop for testability.
func (s *BackupService) tickScheduler(ctx context.Context, now time.Time, lastRun string) string {
	cfg, err := s.config.Get(ctx)
	if err != nil {
		s.log.Error("scheduler failed to load config", zap.Error(err))
		return lastRun
	}
	if !cfg.Enabled {
		return lastRun
	}

	hour, minute, err := models.ParseScheduleTime(cfg.ScheduleTime)
	if err != nil {
		s.log.Error("scheduler has invalid schedule time",
			zap.String("scheduleTime", cfg.ScheduleTime), zap.Error(err))
		return lastRun
	}

	today := now.Format("2006-01-02")
	due := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if now.Before(due) || lastRun == today {
		return lastRun
	}

	for _, format := range cfg.Formats {
		format := format
		op := func() error {
			_, err := s.Create(ctx, models.Automatic, format, "scheduler")
			return err
		}
		policy := backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
		if err := backoff.Retry(op, policy); err != nil {
			s.log.Error("scheduled backup failed",
				zap.String("format", string(format)), zap.Error(err))
		}
	}
	return today
}
