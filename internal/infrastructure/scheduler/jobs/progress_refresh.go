package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sledzspecke/smk-progress-hub/internal/application/query"
	"github.com/sledzspecke/smk-progress-hub/internal/infrastructure/persistence/projections"
	eredis "github.com/sledzspecke/smk-progress-hub/internal/infrastructure/persistence/redis"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS REFRESH JOB
// ══════════════════════════════════════════════════════════════════════════════

// ProgressRefreshJob recomputes the overall progress view of every active
// specialization and warms the cache with it. Reads between refreshes then
// serve from Redis instead of walking the whole aggregate.
type ProgressRefreshJob struct {
	specs    SpecializationLister
	progress *query.GetOverallProgressHandler
	cache    *eredis.Cache
	cards    *projections.TrainingCardView
	logger   *slog.Logger
	timeout  time.Duration
}

// NewProgressRefreshJob creates the periodic progress cache warmer. The card
// view may be nil when no process reads it.
func NewProgressRefreshJob(
	specs SpecializationLister,
	progress *query.GetOverallProgressHandler,
	cache *eredis.Cache,
	cards *projections.TrainingCardView,
	logger *slog.Logger,
) *ProgressRefreshJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressRefreshJob{
		specs:    specs,
		progress: progress,
		cache:    cache,
		cards:    cards,
		logger:   logger.With("job", "progress_refresh"),
		timeout:  10 * time.Minute,
	}
}

// Name implements scheduler.Job.
func (j *ProgressRefreshJob) Name() string { return "progress_refresh" }

// Description implements scheduler.Job.
func (j *ProgressRefreshJob) Description() string {
	return "Recomputes and caches progress views for active specializations"
}

// Run implements scheduler.Job.
func (j *ProgressRefreshJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	specs, err := j.specs.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active specializations: %w", err)
	}

	refreshed, failed := 0, 0
	for _, spec := range specs {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		view, err := j.progress.Handle(ctx, query.GetOverallProgressQuery{
			SpecializationID: spec.ID.String(),
		})
		if err != nil {
			failed++
			j.logger.Error("failed to compute progress",
				"specialization_id", spec.ID.String(), "error", err)
			continue
		}

		if j.cards != nil {
			j.cards.ApplyProgress(spec.UserID.String(), view)
		}

		key := eredis.ProgressKey(spec.ID.String())
		if err := j.cache.Set(ctx, key, view, eredis.TTLProgressCache); err != nil {
			failed++
			j.logger.Warn("failed to cache progress view",
				"specialization_id", spec.ID.String(), "error", err)
			continue
		}
		refreshed++
	}

	j.logger.Info("progress refresh finished", "refreshed", refreshed, "failed", failed)
	return nil
}
