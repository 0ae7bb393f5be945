package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/apptqueue/internal/repository"
	"github.com/jwalitptl/apptqueue/pkg/logger"
	"github.com/jwalitptl/apptqueue/pkg/metrics"
)

// ActivityCleanupWorker purges activity rows older than the retention window.
type ActivityCleanupWorker struct {
	repo            repository.ActivityRepository
	retentionDays   int
	cleanupInterval time.Duration
	logger          *logger.Logger
	metrics         *metrics.Metrics
	now             func() time.Time
}

func NewActivityCleanupWorker(repo repository.ActivityRepository, retentionDays int, cleanupInterval time.Duration, log *logger.Logger, m *metrics.Metrics) *ActivityCleanupWorker {
	return &ActivityCleanupWorker{
		repo:            repo,
		retentionDays:   retentionDays,
		cleanupInterval: cleanupInterval,
		logger:          log,
		metrics:         m,
		now:             time.Now,
	}
}

func (w *ActivityCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.Cleanup(ctx); err != nil {
				w.logger.Error(err, "Error cleaning up activity logs")
			}
		}
	}
}

func (w *ActivityCleanupWorker) Cleanup(ctx context.Context) (int64, error) {
	cutoff := w.now().AddDate(0, 0, -w.retentionDays)

	rows, err := w.repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup activity logs: %w", err)
	}
	if w.metrics != nil {
		w.metrics.ActivityEntriesPurged.Add(float64(rows))
	}

	w.logger.Info("Cleaned up activity logs", "rows", rows, "cutoff", cutoff.Format(time.RFC3339))
	return rows, nil
}
