package core

// scheduler.go runs background maintenance for the audit log.
//
// The retention job deletes audit entries older than the configured number of
// days. It runs once on start, then every CheckInterval, and stops when the
// context is cancelled. A failed run is logged and retried on the next tick.

import (
	"context"
	"log/slog"
	"time"
)

// AuditRetentionConfig holds configuration for the retention job.
// Zero values fall back to the defaults noted on each field.
type AuditRetentionConfig struct {
	RetentionDays int           // Days to keep audit entries (default: 90)
	CheckInterval time.Duration // How often to run (default: 24h)
}

func (c AuditRetentionConfig) withDefaults() AuditRetentionConfig {
	if c.RetentionDays <= 0 {
		c.RetentionDays = 90
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = 24 * time.Hour
	}
	return c
}

// auditPurger is implemented by recorders that can drop old entries.
type auditPurger interface {
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// StartAuditRetention blocks, purging old audit entries periodically until ctx
// is cancelled. It returns immediately if the configured recorder cannot purge.
func (s *Service) StartAuditRetention(ctx context.Context, cfg AuditRetentionConfig) {
	purger, ok := s.audit.(auditPurger)
	if !ok {
		return
	}
	cfg = cfg.withDefaults()

	slog.Info("audit retention started",
		"retention_days", cfg.RetentionDays,
		"check_interval", cfg.CheckInterval.String(),
	)

	s.runRetentionJob(ctx, purger, cfg)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("audit retention stopped")
			return
		case <-ticker.C:
			s.runRetentionJob(ctx, purger, cfg)
		}
	}
}

func (s *Service) runRetentionJob(ctx context.Context, purger auditPurger, cfg AuditRetentionConfig) {
	start := time.Now()
	cutoff := start.UTC().AddDate(0, 0, -cfg.RetentionDays)

	purged, err := purger.PurgeBefore(ctx, cutoff)
	if err != nil {
		slog.Error("audit purge failed", "error", err)
		return
	}

	slog.Info("purged audit log entries",
		"entries_purged", purged,
		"cutoff", cutoff.Format(time.RFC3339),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
