package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/classroom-chat/internal/repository"
)

// StartSessionSweeper purges expired sessions on an interval until ctx is
// cancelled. Lazy deletion on access keeps the store correct without it;
// the sweep only bounds growth from sessions that are never touched again.
func StartSessionSweeper(ctx context.Context, sessions repository.SessionRepository, interval time.Duration, logger *zap.Logger) {
	if sessions == nil || interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := sessions.SweepExpired(ctx)
				if err != nil {
					logger.Warn("session sweep failed", zap.Error(err))
					continue
				}
				if removed > 0 {
					logger.Info("swept expired sessions", zap.Int64("removed", removed))
				}
			}
		}
	}()
}
