package results

import (
	"context"
	"time"

	"hypotest/internal/metrics"
)

// RunCleanup removes expired results every interval until ctx is done.
// A failed pass is logged and retried on the next tick.
func (s *Store) RunCleanup(ctx context.Context, interval time.Duration) error {
	logger := s.logger.With("Cleanup")
	logger.Info("cleanup loop started (interval %s, ttl %s)", interval, s.opts.TTL)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("cleanup loop stopped")
			return nil
		case <-ticker.C:
			removed, err := s.Cleanup(ctx)
			metrics.RecordCleanup(removed, err)
			if err != nil && ctx.Err() == nil {
				logger.Error("cleanup pass failed: %v", err)
				continue
			}
			if removed > 0 {
				logger.Debug("cleanup pass removed %d entries", removed)
			}
		}
	}
}
