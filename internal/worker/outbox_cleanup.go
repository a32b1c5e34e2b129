package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

// OutboxCleanup deletes relayed events older than the retention window.
type OutboxCleanup struct {
	repo      repository.OutboxRepository
	retention time.Duration
	interval  time.Duration
	logger    *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewOutboxCleanup(repo repository.OutboxRepository, retention, interval time.Duration, logger *zap.Logger, metrics *metrics.Metrics) *OutboxCleanup {
	return &OutboxCleanup{
		repo:      repo,
		retention: retention,
		interval:  interval,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
	}
}

// Schedule registers the job on s. The first run happens immediately.
func (w *OutboxCleanup) Schedule(ctx context.Context, s *gocron.Scheduler) error {
	_, err := s.Every(w.interval).Do(func() {
		if _, err := w.Cleanup(ctx); err != nil {
			w.logger.Error("outbox cleanup failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule outbox cleanup: %w", err)
	}
	return nil
}

func (w *OutboxCleanup) Cleanup(ctx context.Context) (int64, error) {
	cutoff := w.now().Add(-w.retention)

	rows, err := w.repo.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup outbox events: %w", err)
	}

	w.metrics.OutboxEventsPurged.Add(float64(rows))
	w.logger.Info("cleaned up outbox events", zap.Int64("rows", rows), zap.Time("cutoff", cutoff))
	return rows, nil
}
