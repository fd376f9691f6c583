// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ExpiredSweeper removes temporary articles whose expiration has passed and
// returns how many were deleted.
type ExpiredSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// CountRebuilder recomputes every section's cached article count.
type CountRebuilder interface {
	RebuildAllCounts(ctx context.Context) error
}

// ExpiredArticleSweepJob creates the job that deletes expired temporary
// articles. It runs once at startup and then on the given interval.
func ExpiredArticleSweepJob(sweeper ExpiredSweeper, interval time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:     "expired-article-sweep",
		Interval: interval,
		Run: func(ctx context.Context) error {
			deleted, err := sweeper.SweepExpired(ctx)
			if err != nil {
				return err
			}
			if deleted > 0 {
				logger.Info("swept expired temporary articles",
					zap.Int64("deleted", deleted))
			}
			return nil
		},
	}
}

// ArticleCountRebuildJob creates the job that reconciles the denormalized
// per-section article counts against the articles collection. The counts are
// maintained incrementally on writes; this catches any drift.
func ArticleCountRebuildJob(rebuilder CountRebuilder, interval time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:     "article-count-rebuild",
		Interval: interval,
		Run: func(ctx context.Context) error {
			start := time.Now()
			if err := rebuilder.RebuildAllCounts(ctx); err != nil {
				return err
			}
			logger.Debug("rebuilt section article counts",
				zap.Duration("duration", time.Since(start)))
			return nil
		},
	}
}
