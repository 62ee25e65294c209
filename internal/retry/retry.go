// Package retry runs a stage with a bounded number of attempts and a fixed
// pause between them. No exponential backoff, no jitter: the external
// scheduler owns run cadence.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/vioflow/ainews/internal/logger"
)

type Config struct {
	MaxAttempts int
	Delay       time.Duration
}

// Do invokes fn up to MaxAttempts times. The error of the final attempt is
// wrapped so structured categories survive errors.As.
func Do(ctx context.Context, cfg Config, name string, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			if attempt > 1 {
				logger.Info("stage recovered", "stage", name, "attempt", attempt)
			}
			return nil
		}

		// lastErr is already sanitized by the stage boundary; safe to log.
		logger.Warn("stage attempt failed",
			"stage", name, "attempt", attempt, "max", cfg.MaxAttempts, "err", lastErr)

		if attempt == cfg.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.Delay):
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", name, cfg.MaxAttempts, lastErr)
}
